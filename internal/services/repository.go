package services

import (
	"context"

	"ideaboard/internal/dao"
	"ideaboard/internal/models"
)

// IdeaRepository is implemented by dao.IdeaDAO. Lookups of missing rows return
// dao.ErrNotFound and unique violations dao.ErrDuplicate.
type IdeaRepository interface {
	List(ctx context.Context, f dao.IdeaFilter) ([]models.Idea, error)
	CommentCounts(ctx context.Context, ideaIDs []string) (map[string]int64, error)
	VotedIdeaIDs(ctx context.Context, userID string, ideaIDs []string) ([]string, error)
	Find(ctx context.Context, id string) (*models.Idea, error)
	FindDetail(ctx context.Context, id string) (*models.Idea, error)
	HasVoted(ctx context.Context, userID, ideaID string) (bool, error)
	Create(ctx context.Context, idea *models.Idea) error
	Update(ctx context.Context, id string, columns map[string]interface{}) (*models.Idea, error)
	Delete(ctx context.Context, id string) error
	ToggleVote(ctx context.Context, userID, ideaID string) (bool, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	Find(ctx context.Context, id string) (*models.Comment, error)
	ToggleReaction(ctx context.Context, userID, commentID, emoji string) (bool, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	CountIdeas(ctx context.Context, authorID string) (int64, error)
	CountVotesReceived(ctx context.Context, authorID string) (int64, error)
	CountCommentsReceived(ctx context.Context, authorID string) (int64, error)
}

var (
	_ IdeaRepository    = (*dao.IdeaDAO)(nil)
	_ CommentRepository = (*dao.CommentDAO)(nil)
	_ UserRepository    = (*dao.UserDAO)(nil)
)

// displayUser keeps only the fields shown next to content.
func displayUser(u *models.User) models.User {
	return models.User{ID: u.ID, Name: u.Name, Image: u.Image}
}
