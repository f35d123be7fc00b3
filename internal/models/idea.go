package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IdeaType string

const (
	IdeaTypeFeature IdeaType = "FEATURE"
	IdeaTypeProduct IdeaType = "PRODUCT"
)

// ParseIdeaType upper-cases s and reports whether it names a known type.
func ParseIdeaType(s string) (IdeaType, bool) {
	t := IdeaType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case IdeaTypeFeature, IdeaTypeProduct:
		return t, true
	}
	return "", false
}

type IdeaStatus string

const (
	IdeaStatusDraft       IdeaStatus = "DRAFT"
	IdeaStatusSubmitted   IdeaStatus = "SUBMITTED"
	IdeaStatusUnderReview IdeaStatus = "UNDER_REVIEW"
	IdeaStatusApproved    IdeaStatus = "APPROVED"
	IdeaStatusInProgress  IdeaStatus = "IN_PROGRESS"
	IdeaStatusCompleted   IdeaStatus = "COMPLETED"
	IdeaStatusRejected    IdeaStatus = "REJECTED"
)

// ParseIdeaStatus upper-cases s and reports whether it names a known status.
func ParseIdeaStatus(s string) (IdeaStatus, bool) {
	st := IdeaStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case IdeaStatusDraft, IdeaStatusSubmitted, IdeaStatusUnderReview, IdeaStatusApproved,
		IdeaStatusInProgress, IdeaStatusCompleted, IdeaStatusRejected:
		return st, true
	}
	return "", false
}

type Idea struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	Title         string     `gorm:"not null" json:"title"`
	Description   string     `gorm:"type:text;not null" json:"description"`
	Type          IdeaType   `gorm:"type:varchar(20);not null;index" json:"type"`
	Status        IdeaStatus `gorm:"type:varchar(20);not null;default:'SUBMITTED';index" json:"status"`
	Product       string     `json:"product,omitempty"`
	AIDevelopment string     `gorm:"type:text" json:"aiDevelopment,omitempty"`
	// VoteCount mirrors count(votes where idea_id = id); only ToggleVote changes it.
	VoteCount int64     `gorm:"not null;default:0;index" json:"voteCount"`
	AuthorID  string    `gorm:"size:36;not null;index" json:"authorId"`
	Author    User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Comments  []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments,omitempty"`
	Votes     []Vote    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// 非数据库字段，用于查询时填充
	CommentCount int64 `gorm:"-" json:"commentCount"`
}

func (i *Idea) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
