package services

import (
	"context"

	"github.com/sourcegraph/conc/pool"
)

type UserStats struct {
	TotalIdeas    int64 `json:"totalIdeas"`
	TotalVotes    int64 `json:"totalVotes"`
	TotalComments int64 `json:"totalComments"`
}

type StatsService struct {
	users UserRepository
}

func NewStatsService(users UserRepository) *StatsService {
	return &StatsService{users: users}
}

// Stats counts the ideas the user authored and the votes and comments those
// ideas received.
func (s *StatsService) Stats(ctx context.Context, userID string) (*UserStats, error) {
	var stats UserStats

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) (err error) {
		stats.TotalIdeas, err = s.users.CountIdeas(ctx, userID)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		stats.TotalVotes, err = s.users.CountVotesReceived(ctx, userID)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		stats.TotalComments, err = s.users.CountCommentsReceived(ctx, userID)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, ErrInternal("Failed to fetch stats", err)
	}
	return &stats, nil
}
