package dao

import (
	"context"
	"errors"

	"ideaboard/internal/models"

	"gorm.io/gorm"
)

type CommentDAO struct {
	db *gorm.DB
}

func NewCommentDAO(db *gorm.DB) *CommentDAO {
	return &CommentDAO{db: db}
}

func (d *CommentDAO) Create(ctx context.Context, comment *models.Comment) error {
	return translate(d.db.WithContext(ctx).Omit("User", "Reactions").Create(comment).Error)
}

func (d *CommentDAO) Find(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

// ToggleReaction removes the (user, comment, emoji) reaction when present and
// creates it otherwise, reporting whether it now exists. Losing an insert race
// to a concurrent request leaves the reaction present, so a duplicate key is
// reported as added rather than as an error.
func (d *CommentDAO) ToggleReaction(ctx context.Context, userID, commentID, emoji string) (bool, error) {
	db := d.db.WithContext(ctx)

	var existing models.Reaction
	err := db.Where("user_id = ? AND comment_id = ? AND emoji = ?", userID, commentID, emoji).
		Limit(1).
		Find(&existing).Error
	if err != nil {
		return false, translate(err)
	}

	if existing.ID != "" {
		if err := db.Delete(&existing).Error; err != nil {
			return false, translate(err)
		}
		return false, nil
	}

	err = translate(db.Omit("User").Create(&models.Reaction{
		UserID:    userID,
		CommentID: commentID,
		Emoji:     emoji,
	}).Error)
	if errors.Is(err, ErrDuplicate) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
