package dao

import (
	"context"

	"ideaboard/internal/models"

	"gorm.io/gorm"
)

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{db: db}
}

// Create inserts the user; an already registered email yields ErrDuplicate.
func (d *UserDAO) Create(ctx context.Context, user *models.User) error {
	return translate(d.db.WithContext(ctx).Create(user).Error)
}

func (d *UserDAO) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (d *UserDAO) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := d.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (d *UserDAO) CountIdeas(ctx context.Context, authorID string) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&models.Idea{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, translate(err)
}

// CountVotesReceived counts votes cast on ideas the user authored.
func (d *UserDAO) CountVotesReceived(ctx context.Context, authorID string) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&models.Vote{}).
		Joins("JOIN ideas ON ideas.id = votes.idea_id").
		Where("ideas.author_id = ?", authorID).
		Count(&count).Error
	return count, translate(err)
}

// CountCommentsReceived counts comments left on ideas the user authored.
func (d *UserDAO) CountCommentsReceived(ctx context.Context, authorID string) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&models.Comment{}).
		Joins("JOIN ideas ON ideas.id = comments.idea_id").
		Where("ideas.author_id = ?", authorID).
		Count(&count).Error
	return count, translate(err)
}
