package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	UserID    string     `gorm:"size:36;not null;index" json:"userId"`
	User      User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	IdeaID    string     `gorm:"size:36;not null;index" json:"ideaId"`
	Reactions []Reaction `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"reactions"`
	CreatedAt time.Time  `gorm:"index" json:"createdAt"`

	ReactionCounts []ReactionCount `gorm:"-" json:"reactionCounts,omitempty"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// ReactionCount is the number of reactions with one emoji on a comment.
type ReactionCount struct {
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
}

// CountReactions groups the comment's reactions by emoji, in first-seen order.
func (c Comment) CountReactions() []ReactionCount {
	index := make(map[string]int)
	counts := make([]ReactionCount, 0)
	for _, r := range c.Reactions {
		if i, ok := index[r.Emoji]; ok {
			counts[i].Count++
			continue
		}
		index[r.Emoji] = len(counts)
		counts = append(counts, ReactionCount{Emoji: r.Emoji, Count: 1})
	}
	return counts
}
