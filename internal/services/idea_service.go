package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"ideaboard/internal/cache"
	"ideaboard/internal/dao"
	"ideaboard/internal/logger"
	"ideaboard/internal/models"
	"ideaboard/internal/utils"

	"go.uber.org/zap"
)

type IdeaService struct {
	ideas IdeaRepository
	cache cache.Cache
	ttl   time.Duration
}

func NewIdeaService(ideas IdeaRepository, c cache.Cache, ttl time.Duration) *IdeaService {
	if c == nil {
		c = cache.Nop{}
	}
	return &IdeaService{ideas: ideas, cache: c, ttl: ttl}
}

// ListQuery carries the raw query string values of GET /ideas.
type ListQuery struct {
	Type     string
	Status   string
	Search   string
	AuthorID string
	Sort     string
}

type ListResult struct {
	Ideas     []models.Idea `json:"ideas"`
	UserVotes []string      `json:"userVotes"`
}

func (q ListQuery) filter() (dao.IdeaFilter, error) {
	f := dao.IdeaFilter{
		Search:   strings.TrimSpace(q.Search),
		AuthorID: strings.TrimSpace(q.AuthorID),
		Sort:     dao.SortVotes,
	}
	if q.Type != "" && !strings.EqualFold(q.Type, "all") {
		t, ok := models.ParseIdeaType(q.Type)
		if !ok {
			return f, ErrValidation("Invalid idea type")
		}
		f.Type = t
	}
	if q.Status != "" && !strings.EqualFold(q.Status, "all") {
		st, ok := models.ParseIdeaStatus(q.Status)
		if !ok {
			return f, ErrValidation("Invalid status")
		}
		f.Status = st
	}
	if strings.EqualFold(q.Sort, dao.SortRecent) {
		f.Sort = dao.SortRecent
	}
	return f, nil
}

// List returns the matching ideas with comment counts. When callerID is set,
// UserVotes holds the ids among them the caller has voted on.
func (s *IdeaService) List(ctx context.Context, q ListQuery, callerID string) (*ListResult, error) {
	f, err := q.filter()
	if err != nil {
		return nil, err
	}

	ideas, err := s.ideas.List(ctx, f)
	if err != nil {
		return nil, ErrInternal("Failed to fetch ideas", err)
	}

	ids := make([]string, len(ideas))
	for i := range ideas {
		ids[i] = ideas[i].ID
	}

	counts, err := s.ideas.CommentCounts(ctx, ids)
	if err != nil {
		return nil, ErrInternal("Failed to fetch ideas", err)
	}
	for i := range ideas {
		ideas[i].CommentCount = counts[ideas[i].ID]
	}

	result := &ListResult{Ideas: ideas, UserVotes: []string{}}
	if callerID != "" && len(ids) > 0 {
		voted, err := s.ideas.VotedIdeaIDs(ctx, callerID, ids)
		if err != nil {
			return nil, ErrInternal("Failed to fetch ideas", err)
		}
		result.UserVotes = voted
	}
	return result, nil
}

// IdeaDetail is the cacheable part of GET /ideas/:id.
type IdeaDetail struct {
	models.Idea
	Comments          []models.Comment `json:"comments"`
	DescriptionHTML   string           `json:"descriptionHtml"`
	AIDevelopmentHTML string           `json:"aiDevelopmentHtml,omitempty"`
}

type GetResult struct {
	Idea     *IdeaDetail `json:"idea"`
	HasVoted bool        `json:"hasVoted"`
}

// Get returns the idea with its comments. HasVoted is always computed for the
// caller, never cached.
func (s *IdeaService) Get(ctx context.Context, id, callerID string) (*GetResult, error) {
	detail, err := s.detail(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &GetResult{Idea: detail}
	if callerID != "" {
		voted, err := s.ideas.HasVoted(ctx, callerID, id)
		if err != nil {
			return nil, ErrInternal("Failed to fetch idea", err)
		}
		result.HasVoted = voted
	}
	return result, nil
}

// detail serves the comment tree from cache but always reads the idea row
// itself, so vote counts and edits are never older than the row. An entry
// written after a concurrent invalidation is dropped once its updatedAt no
// longer matches.
func (s *IdeaService) detail(ctx context.Context, id string) (*IdeaDetail, error) {
	key := cache.IdeaKey(id)
	row, err := s.ideas.Find(ctx, id)
	if errors.Is(err, dao.ErrNotFound) {
		s.cache.Delete(ctx, key)
		return nil, ErrNotFound("Idea not found")
	}
	if err != nil {
		return nil, ErrInternal("Failed to fetch idea", err)
	}

	if data, ok := s.cache.Get(ctx, key); ok {
		var detail IdeaDetail
		if err := json.Unmarshal(data, &detail); err != nil {
			logger.L.Warn("discarding unreadable cache entry", zap.String("key", key))
		} else if detail.UpdatedAt.Equal(row.UpdatedAt) {
			detail.VoteCount = row.VoteCount
			return &detail, nil
		}
		s.cache.Delete(ctx, key)
	}

	idea, err := s.ideas.FindDetail(ctx, id)
	if errors.Is(err, dao.ErrNotFound) {
		return nil, ErrNotFound("Idea not found")
	}
	if err != nil {
		return nil, ErrInternal("Failed to fetch idea", err)
	}

	comments := idea.Comments
	if comments == nil {
		comments = []models.Comment{}
	}
	for i := range comments {
		comments[i].ReactionCounts = comments[i].CountReactions()
	}
	idea.Comments = nil
	idea.CommentCount = int64(len(comments))

	detail := &IdeaDetail{
		Idea:              *idea,
		Comments:          comments,
		DescriptionHTML:   utils.RenderMarkdown(idea.Description),
		AIDevelopmentHTML: utils.RenderMarkdown(idea.AIDevelopment),
	}

	if data, err := json.Marshal(detail); err == nil {
		s.cache.Set(ctx, key, data, s.ttl)
	}
	return detail, nil
}

type CreateIdeaInput struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Type          string `json:"type"`
	Product       string `json:"product"`
	AIDevelopment string `json:"aiDevelopment"`
	Status        string `json:"status"`
}

// Create stores a new idea authored by caller. Status defaults to SUBMITTED.
func (s *IdeaService) Create(ctx context.Context, caller *models.User, in CreateIdeaInput) (*models.Idea, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" || strings.TrimSpace(in.Type) == "" {
		return nil, ErrValidation("Missing required fields")
	}
	ideaType, ok := models.ParseIdeaType(in.Type)
	if !ok {
		return nil, ErrValidation("Invalid idea type")
	}
	status := models.IdeaStatusSubmitted
	if in.Status != "" {
		if status, ok = models.ParseIdeaStatus(in.Status); !ok {
			return nil, ErrValidation("Invalid status")
		}
	}

	idea := &models.Idea{
		Title:         title,
		Description:   description,
		Type:          ideaType,
		Status:        status,
		Product:       strings.TrimSpace(in.Product),
		AIDevelopment: in.AIDevelopment,
		AuthorID:      caller.ID,
	}
	if err := s.ideas.Create(ctx, idea); err != nil {
		return nil, ErrInternal("Failed to create idea", err)
	}
	idea.Author = displayUser(caller)
	return idea, nil
}

// IdeaPatch lists the fields an author may change. Nil fields are left as is.
type IdeaPatch struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Product       *string `json:"product"`
	Status        *string `json:"status"`
	AIDevelopment *string `json:"aiDevelopment"`
}

// decodePatch reads a PATCH body, rejecting keys IdeaPatch does not declare.
func decodePatch(body []byte) (IdeaPatch, error) {
	var patch IdeaPatch
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		if strings.HasPrefix(err.Error(), "json: unknown field") {
			return patch, ErrValidation("Unsupported field in request body")
		}
		return patch, ErrValidation("Invalid request body")
	}
	return patch, nil
}

func (p IdeaPatch) columns() (map[string]interface{}, error) {
	columns := make(map[string]interface{})
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return nil, ErrValidation("Title cannot be empty")
		}
		columns["title"] = title
	}
	if p.Description != nil {
		description := strings.TrimSpace(*p.Description)
		if description == "" {
			return nil, ErrValidation("Description cannot be empty")
		}
		columns["description"] = description
	}
	if p.Product != nil {
		columns["product"] = strings.TrimSpace(*p.Product)
	}
	if p.Status != nil {
		status, ok := models.ParseIdeaStatus(*p.Status)
		if !ok {
			return nil, ErrValidation("Invalid status")
		}
		columns["status"] = status
	}
	if p.AIDevelopment != nil {
		columns["ai_development"] = *p.AIDevelopment
	}
	if len(columns) == 0 {
		return nil, ErrValidation("No fields to update")
	}
	return columns, nil
}

// owned loads the idea and checks callerID authored it.
func (s *IdeaService) owned(ctx context.Context, id, callerID, failure string) (*models.Idea, error) {
	idea, err := s.ideas.Find(ctx, id)
	if errors.Is(err, dao.ErrNotFound) {
		return nil, ErrNotFound("Idea not found")
	}
	if err != nil {
		return nil, ErrInternal(failure, err)
	}
	if idea.AuthorID != callerID {
		return nil, ErrForbidden()
	}
	return idea, nil
}

// Update applies the JSON patch in body. The idea must exist and belong to
// callerID before the body is looked at.
func (s *IdeaService) Update(ctx context.Context, id, callerID string, body []byte) (*models.Idea, error) {
	if _, err := s.owned(ctx, id, callerID, "Failed to update idea"); err != nil {
		return nil, err
	}
	patch, err := decodePatch(body)
	if err != nil {
		return nil, err
	}
	columns, err := patch.columns()
	if err != nil {
		return nil, err
	}

	idea, err := s.ideas.Update(ctx, id, columns)
	if errors.Is(err, dao.ErrNotFound) {
		return nil, ErrNotFound("Idea not found")
	}
	if err != nil {
		return nil, ErrInternal("Failed to update idea", err)
	}
	s.invalidate(ctx, id)
	return idea, nil
}

func (s *IdeaService) Delete(ctx context.Context, id, callerID string) error {
	if _, err := s.owned(ctx, id, callerID, "Failed to delete idea"); err != nil {
		return err
	}

	err := s.ideas.Delete(ctx, id)
	if errors.Is(err, dao.ErrNotFound) {
		return ErrNotFound("Idea not found")
	}
	if err != nil {
		return ErrInternal("Failed to delete idea", err)
	}
	s.invalidate(ctx, id)
	return nil
}

type VoteResult struct {
	Voted   bool   `json:"voted"`
	Message string `json:"message"`
}

// ToggleVote flips the caller's vote on the idea.
func (s *IdeaService) ToggleVote(ctx context.Context, ideaID, callerID string) (*VoteResult, error) {
	voted, err := s.ideas.ToggleVote(ctx, callerID, ideaID)
	switch {
	case errors.Is(err, dao.ErrNotFound):
		return nil, ErrNotFound("Idea not found")
	case errors.Is(err, dao.ErrDuplicate):
		return nil, ErrConflict("Vote already recorded", err)
	case err != nil:
		return nil, ErrInternal("Failed to toggle vote", err)
	}
	s.invalidate(ctx, ideaID)

	if voted {
		return &VoteResult{Voted: true, Message: "Vote added"}, nil
	}
	return &VoteResult{Voted: false, Message: "Vote removed"}, nil
}

func (s *IdeaService) invalidate(ctx context.Context, ideaID string) {
	s.cache.Delete(ctx, cache.IdeaKey(ideaID))
}
