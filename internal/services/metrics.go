package services

import "github.com/prometheus/client_golang/prometheus"

var workshopRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ideaboard_workshop_requests_total",
		Help: "AI workshop requests by operation and outcome",
	},
	[]string{"op", "outcome"},
)

func init() {
	prometheus.MustRegister(workshopRequests)
}

func observeWorkshop(op string, err error) {
	outcome := "ok"
	if err != nil {
		switch KindOf(err) {
		case KindValidation:
			outcome = "invalid"
		default:
			outcome = "error"
		}
	}
	workshopRequests.WithLabelValues(op, outcome).Inc()
}
