package services

import (
	"context"
	"errors"
	"strings"

	"ideaboard/internal/cache"
	"ideaboard/internal/dao"
	"ideaboard/internal/models"
)

const maxEmojiBytes = 32

type CommentService struct {
	ideas    IdeaRepository
	comments CommentRepository
	cache    cache.Cache
}

func NewCommentService(ideas IdeaRepository, comments CommentRepository, c cache.Cache) *CommentService {
	if c == nil {
		c = cache.Nop{}
	}
	return &CommentService{ideas: ideas, comments: comments, cache: c}
}

// AddComment stores content on the idea as written by caller.
func (s *CommentService) AddComment(ctx context.Context, caller *models.User, ideaID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrValidation("Comment content is required")
	}

	if _, err := s.ideas.Find(ctx, ideaID); err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, ErrNotFound("Idea not found")
		}
		return nil, ErrInternal("Failed to create comment", err)
	}

	comment := &models.Comment{
		Content: content,
		UserID:  caller.ID,
		IdeaID:  ideaID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, ErrInternal("Failed to create comment", err)
	}
	s.cache.Delete(ctx, cache.IdeaKey(ideaID))

	comment.User = displayUser(caller)
	comment.Reactions = []models.Reaction{}
	return comment, nil
}

type ReactionResult struct {
	Added bool   `json:"added"`
	Emoji string `json:"emoji"`
}

// ToggleReaction flips the caller's reaction with emoji on the comment. Each
// emoji is toggled independently of the caller's other reactions.
func (s *CommentService) ToggleReaction(ctx context.Context, commentID, callerID, emoji string) (*ReactionResult, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return nil, ErrValidation("Emoji is required")
	}
	if len(emoji) > maxEmojiBytes {
		return nil, ErrValidation("Emoji is too long")
	}

	comment, err := s.comments.Find(ctx, commentID)
	if errors.Is(err, dao.ErrNotFound) {
		return nil, ErrNotFound("Comment not found")
	}
	if err != nil {
		return nil, ErrInternal("Failed to toggle reaction", err)
	}

	added, err := s.comments.ToggleReaction(ctx, callerID, commentID, emoji)
	if err != nil {
		return nil, ErrInternal("Failed to toggle reaction", err)
	}
	s.cache.Delete(ctx, cache.IdeaKey(comment.IdeaID))

	return &ReactionResult{Added: added, Emoji: emoji}, nil
}
