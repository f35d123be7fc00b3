package dao

import (
	"context"
	"strings"

	"ideaboard/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	SortVotes  = "votes"
	SortRecent = "recent"
)

// IdeaFilter narrows List. Zero values mean "no filter", except Status: an
// empty Status matches every status but DRAFT.
type IdeaFilter struct {
	Type     models.IdeaType
	Status   models.IdeaStatus
	Search   string
	AuthorID string
	Sort     string
}

type IdeaDAO struct {
	db *gorm.DB
}

func NewIdeaDAO(db *gorm.DB) *IdeaDAO {
	return &IdeaDAO{db: db}
}

func (d *IdeaDAO) List(ctx context.Context, f IdeaFilter) ([]models.Idea, error) {
	q := d.db.WithContext(ctx).Preload("Author", selectAuthor)

	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	} else {
		q = q.Where("status <> ?", models.IdeaStatusDraft)
	}
	if f.AuthorID != "" {
		q = q.Where("author_id = ?", f.AuthorID)
	}
	if f.Search != "" {
		pattern := "%" + escapeLike(f.Search) + "%"
		q = q.Where("(title ILIKE ? OR description ILIKE ?)", pattern, pattern)
	}

	if f.Sort == SortRecent {
		q = q.Order("created_at DESC")
	} else {
		q = q.Order("vote_count DESC").Order("created_at DESC")
	}

	var ideas []models.Idea
	if err := q.Find(&ideas).Error; err != nil {
		return nil, translate(err)
	}
	return ideas, nil
}

// escapeLike stops user input from acting as LIKE wildcards.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// CommentCounts returns comment totals keyed by idea id in one grouped query.
// Ideas without comments are absent from the map.
func (d *IdeaDAO) CommentCounts(ctx context.Context, ideaIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(ideaIDs))
	if len(ideaIDs) == 0 {
		return counts, nil
	}

	type countResult struct {
		IdeaID string
		Count  int64
	}
	var results []countResult
	err := d.db.WithContext(ctx).Model(&models.Comment{}).
		Select("idea_id, COUNT(*) AS count").
		Where("idea_id IN ?", ideaIDs).
		Group("idea_id").
		Scan(&results).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, r := range results {
		counts[r.IdeaID] = r.Count
	}
	return counts, nil
}

// VotedIdeaIDs returns the subset of ideaIDs the user has voted on.
func (d *IdeaDAO) VotedIdeaIDs(ctx context.Context, userID string, ideaIDs []string) ([]string, error) {
	voted := make([]string, 0)
	if len(ideaIDs) == 0 {
		return voted, nil
	}
	err := d.db.WithContext(ctx).Model(&models.Vote{}).
		Where("user_id = ? AND idea_id IN ?", userID, ideaIDs).
		Pluck("idea_id", &voted).Error
	if err != nil {
		return nil, translate(err)
	}
	return voted, nil
}

func (d *IdeaDAO) Find(ctx context.Context, id string) (*models.Idea, error) {
	var idea models.Idea
	err := d.db.WithContext(ctx).Preload("Author", selectAuthor).Where("id = ?", id).First(&idea).Error
	if err != nil {
		return nil, translate(err)
	}
	return &idea, nil
}

// FindDetail loads the idea with its author and every comment, newest first,
// each with its reactions and the reacting users.
func (d *IdeaDAO) FindDetail(ctx context.Context, id string) (*models.Idea, error) {
	var idea models.Idea
	err := d.db.WithContext(ctx).
		Preload("Author", selectAuthor).
		Preload("Comments", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at DESC")
		}).
		Preload("Comments.User", selectAuthor).
		Preload("Comments.Reactions", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at ASC")
		}).
		Preload("Comments.Reactions.User", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "name")
		}).
		Where("id = ?", id).
		First(&idea).Error
	if err != nil {
		return nil, translate(err)
	}
	return &idea, nil
}

func (d *IdeaDAO) CountVotes(ctx context.Context, ideaID string) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&models.Vote{}).Where("idea_id = ?", ideaID).Count(&count).Error
	return count, translate(err)
}

func (d *IdeaDAO) HasVoted(ctx context.Context, userID, ideaID string) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&models.Vote{}).
		Where("user_id = ? AND idea_id = ?", userID, ideaID).
		Count(&count).Error
	return count > 0, translate(err)
}

func (d *IdeaDAO) Create(ctx context.Context, idea *models.Idea) error {
	return translate(d.db.WithContext(ctx).Omit("Author", "Comments", "Votes").Create(idea).Error)
}

// Update applies column updates to the idea and returns the stored row.
func (d *IdeaDAO) Update(ctx context.Context, id string, columns map[string]interface{}) (*models.Idea, error) {
	res := d.db.WithContext(ctx).Model(&models.Idea{}).Where("id = ?", id).Updates(columns)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return d.Find(ctx, id)
}

// Delete removes the idea together with its votes, comments and their
// reactions in one transaction.
func (d *IdeaDAO) Delete(ctx context.Context, id string) error {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("idea_id = ?", id)
		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("idea_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("idea_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Idea{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate(err)
}

// ToggleVote adds the user's vote when absent and removes it when present,
// adjusting vote_count in the same transaction. The idea row is locked first
// so concurrent toggles on one idea serialise. A duplicate insert rolls back
// and returns ErrDuplicate.
func (d *IdeaDAO) ToggleVote(ctx context.Context, userID, ideaID string) (bool, error) {
	var voted bool
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var idea models.Idea
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", ideaID).
			First(&idea).Error; err != nil {
			return err
		}

		var existing models.Vote
		if err := tx.Where("user_id = ? AND idea_id = ?", userID, ideaID).Limit(1).Find(&existing).Error; err != nil {
			return err
		}

		delta := 1
		if existing.ID != "" {
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			delta = -1
		} else {
			if err := tx.Create(&models.Vote{UserID: userID, IdeaID: ideaID}).Error; err != nil {
				return err
			}
			voted = true
		}

		return tx.Model(&models.Idea{}).
			Where("id = ?", ideaID).
			UpdateColumn("vote_count", gorm.Expr("vote_count + ?", delta)).Error
	})
	if err != nil {
		return false, translate(err)
	}
	return voted, nil
}
