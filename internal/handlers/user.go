package handlers

import (
	"ideaboard/internal/response"
	"ideaboard/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	stats *services.StatsService
}

func NewUserHandler(stats *services.StatsService) *UserHandler {
	return &UserHandler{stats: stats}
}

// Stats GET /user/stats
func (h *UserHandler) Stats(c *gin.Context) {
	stats, err := h.stats.Stats(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}
