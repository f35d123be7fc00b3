package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reaction is one user's emoji on a comment. At most one row exists per (user, comment, emoji).
type Reaction struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Emoji     string    `gorm:"size:32;not null;uniqueIndex:idx_reaction_user_comment_emoji,priority:3" json:"emoji"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_reaction_user_comment_emoji,priority:1" json:"userId"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	CommentID string    `gorm:"size:36;not null;index;uniqueIndex:idx_reaction_user_comment_emoji,priority:2" json:"commentId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r *Reaction) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
