// Package testutil holds an in-memory store that behaves like the dao package
// for service and handler tests.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"ideaboard/internal/dao"
	"ideaboard/internal/models"

	"github.com/google/uuid"
)

type MemStore struct {
	mu        sync.Mutex
	clock     time.Time
	fail      error
	users     map[string]models.User
	ideas     map[string]models.Idea
	votes     map[string]models.Vote
	comments  map[string]models.Comment
	reactions map[string]models.Reaction
}

func NewMemStore() *MemStore {
	return &MemStore{
		clock:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:     make(map[string]models.User),
		ideas:     make(map[string]models.Idea),
		votes:     make(map[string]models.Vote),
		comments:  make(map[string]models.Comment),
		reactions: make(map[string]models.Reaction),
	}
}

// FailWith makes every later call return err. Pass nil to recover.
func (s *MemStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *MemStore) Ideas() *IdeaStore       { return &IdeaStore{s} }
func (s *MemStore) Comments() *CommentStore { return &CommentStore{s} }
func (s *MemStore) Users() *UserStore       { return &UserStore{s} }

// tick returns a strictly increasing timestamp so orderings are stable.
func (s *MemStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *MemStore) author(id string) models.User {
	u := s.users[id]
	return models.User{ID: u.ID, Name: u.Name, Image: u.Image}
}

// VoteRows counts the vote rows stored for the idea.
func (s *MemStore) VoteRows(ideaID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.votes {
		if v.IdeaID == ideaID {
			n++
		}
	}
	return n
}

// CommentRows counts the comment rows stored for the idea.
func (s *MemStore) CommentRows(ideaID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.comments {
		if c.IdeaID == ideaID {
			n++
		}
	}
	return n
}

// ReactionRows counts the reaction rows stored for the comment.
func (s *MemStore) ReactionRows(commentID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.reactions {
		if r.CommentID == commentID {
			n++
		}
	}
	return n
}

type IdeaStore struct{ s *MemStore }

func (st *IdeaStore) List(_ context.Context, f dao.IdeaFilter) ([]models.Idea, error) {
	s := st.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}

	search := strings.ToLower(f.Search)
	ideas := make([]models.Idea, 0)
	for _, idea := range s.ideas {
		if f.Type != "" && idea.Type != f.Type {
			continue
		}
		if f.Status != "" && idea.Status != f.Status {
			continue
		}
		if f.Status == "" && idea.Status == models.IdeaStatusDraft {
			continue
		}
		if f.AuthorID != "" && idea.AuthorID != f.AuthorID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(idea.Title), search) &&
			!strings.Contains(strings.ToLower(idea.Description), search) {
			continue
		}
		idea.Author = s.author(idea.AuthorID)
		ideas = append(ideas, idea)
	}

	sort.Slice(ideas, func(i, j int) bool {
		if f.Sort != dao.SortRecent && ideas[i].VoteCount != ideas[j].VoteCount {
			return ideas[i].VoteCount > ideas[j].VoteCount
		}
		return ideas[i].CreatedAt.After(ideas[j].CreatedAt)
	})
	return ideas, nil
}

func (st *IdeaStore) CommentCounts(_ context.Context, ideaIDs []string) (map[string]int64, error) {
	s := st.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}

	wanted := make(map[string]bool, len(ideaIDs))
	for _, id := range ideaIDs {
		wanted[id] = true
	}
	counts := make(map[string]int64)
	for _, c := range s.comments {
		if wanted[c.IdeaID] {
			counts[c.IdeaID]++
		}
	}
	return counts, nil
}

func (st *IdeaStore) VotedIdeaIDs(_ context.Context, userID string, ideaIDs []string) ([]string, error) {
	s := st.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}

	voted := make([]string, 0)
	for _, id := range ideaIDs {
		for _, v := range s.votes {
			if v.IdeaID == id && v.UserID == userID {
				voted = append(voted, id)
				break
			}
		}
	}
	return voted, nil
}

func (st *IdeaStore) Find(_ context.Context, id string) (*models.Idea, error) {
	s := st.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}

	idea, ok := s.ideas[id]
	if !ok {
		return nil, dao.ErrNotFound
	}
	idea.Author = s.author(idea.AuthorID)
	return &idea, nil
}

func (st *IdeaStore) FindDetail(_ context.Context, id string) (*models.Idea, error) {
	s := st.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}

	idea, ok := s.ideas[id]
	if !ok {
		return nil, dao.ErrNotFound
	}
	idea.Author = s.author(idea.AuthorID)

	idea.Comments = make([]models.Comment, 0)
	for _, c := range s.comments {
		if c.IdeaID != id {
			continue
		}
		c.User = s.author(c.UserID)
		c.Reactions = make([]models.Reaction, 0)
		for _, r := range s.reactions {
			if r.CommentID == c.ID {
				r.User = models.User{ID: r.UserID, Name: s.users[r.UserID].Name}
				c.Reactions = append(c.Reactions, r)
			}
		}
		sort.Slice(c.Reactions, func(i, j int) bool {
			return c.Reactions[i].CreatedAt.Before(c.Reactions[j].CreatedAt)
		})
		idea.Comments = append(idea.Comments, c)
	}
	sort.Slice(idea.Comments, func(i, j int) bool {
		return idea.Comments[i].CreatedAt.After(idea.Comments[j].CreatedAt)
	})
	return &idea, nil
}

func (st *IdeaStore) HasVoted(_ context.Context, userID, ideaID string) (bool, error) {
	s := st.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return false, s.fail
	}
	_, ok := s.findVote(userID, ideaID)
	return ok, nil
}

func (s *MemStore) findVote(userID, ideaID string) (models.Vote, bool) {
	for _, v := range s.votes {
		if v.UserID == userID && v.IdeaID == ideaID {
			return v, true
		}
	}
	return models.Vote{}, false
}

func (st *IdeaStore) Create(_ context.Context, idea *models.Idea) error {
	s := st.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}

	if idea.ID == "" {
		idea.ID = uuid.NewString()
	}
	if idea.Status == "" {
		idea.Status = models.IdeaStatusSubmitted
	}
	idea.CreatedAt = s.tick()
	idea.UpdatedAt = idea.CreatedAt

	row := *idea
	row.Author = models.User{}
	row.Comments = nil
	row.Votes = nil
	s.ideas[idea.ID] = row
	return nil
}

func (st *IdeaStore) Update(_ context.Context, id string, columns map[string]interface{}) (*models.Idea, error) {
	s := st.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}

	idea, ok := s.ideas[id]
	if !ok {
		return nil, dao.ErrNotFound
	}
	for column, value := range columns {
		switch column {
		case "title":
			idea.Title = value.(string)
		case "description":
			idea.Description = value.(string)
		case "product":
			idea.Product = value.(string)
		case "status":
			idea.Status = value.(models.IdeaStatus)
		case "ai_development":
			idea.AIDevelopment = value.(string)
		default:
			panic("testutil: unexpected column " + column)
		}
	}
	idea.UpdatedAt = s.tick()
	s.ideas[id] = idea

	idea.Author = s.author(idea.AuthorID)
	return &idea, nil
}

func (st *IdeaStore) Delete(_ context.Context, id string) error {
	s := st.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}

	if _, ok := s.ideas[id]; !ok {
		return dao.ErrNotFound
	}
	for cid, c := range s.comments {
		if c.IdeaID != id {
			continue
		}
		for rid, r := range s.reactions {
			if r.CommentID == cid {
				delete(s.reactions, rid)
			}
		}
		delete(s.comments, cid)
	}
	for vid, v := range s.votes {
		if v.IdeaID == id {
			delete(s.votes, vid)
		}
	}
	delete(s.ideas, id)
	return nil
}

func (st *IdeaStore) ToggleVote(_ context.Context, userID, ideaID string) (bool, error) {
	s := st.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return false, s.fail
	}

	idea, ok := s.ideas[ideaID]
	if !ok {
		return false, dao.ErrNotFound
	}
	if v, ok := s.findVote(userID, ideaID); ok {
		delete(s.votes, v.ID)
		idea.VoteCount--
		s.ideas[ideaID] = idea
		return false, nil
	}

	v := models.Vote{ID: uuid.NewString(), UserID: userID, IdeaID: ideaID, CreatedAt: s.tick()}
	s.votes[v.ID] = v
	idea.VoteCount++
	s.ideas[ideaID] = idea
	return true, nil
}

type CommentStore struct{ s *MemStore }

func (st *CommentStore) Create(_ context.Context, comment *models.Comment) error {
	s := st.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}

	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	comment.CreatedAt = s.tick()
	row := *comment
	row.User = models.User{}
	row.Reactions = nil
	s.comments[comment.ID] = row
	return nil
}

func (st *CommentStore) Find(_ context.Context, id string) (*models.Comment, error) {
	s := st.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}

	c, ok := s.comments[id]
	if !ok {
		return nil, dao.ErrNotFound
	}
	return &c, nil
}

func (st *CommentStore) ToggleReaction(_ context.Context, userID, commentID, emoji string) (bool, error) {
	s := st.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return false, s.fail
	}

	for id, r := range s.reactions {
		if r.UserID == userID && r.CommentID == commentID && r.Emoji == emoji {
			delete(s.reactions, id)
			return false, nil
		}
	}
	r := models.Reaction{
		ID:        uuid.NewString(),
		Emoji:     emoji,
		UserID:    userID,
		CommentID: commentID,
		CreatedAt: s.tick(),
	}
	s.reactions[r.ID] = r
	return true, nil
}

type UserStore struct{ s *MemStore }

func (st *UserStore) Create(_ context.Context, user *models.User) error {
	s := st.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}

	for _, u := range s.users {
		if u.Email == user.Email {
			return dao.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = s.tick()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = *user
	return nil
}

func (st *UserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s := st.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}

	u, ok := s.users[id]
	if !ok {
		return nil, dao.ErrNotFound
	}
	return &u, nil
}

func (st *UserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s := st.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}

	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, dao.ErrNotFound
}

func (st *UserStore) CountIdeas(_ context.Context, authorID string) (int64, error) {
	s := st.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return 0, s.fail
	}

	var n int64
	for _, idea := range s.ideas {
		if idea.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

func (st *UserStore) CountVotesReceived(_ context.Context, authorID string) (int64, error) {
	s := st.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return 0, s.fail
	}

	var n int64
	for _, v := range s.votes {
		if s.ideas[v.IdeaID].AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

func (st *UserStore) CountCommentsReceived(_ context.Context, authorID string) (int64, error) {
	s := st.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return 0, s.fail
	}

	var n int64
	for _, c := range s.comments {
		if s.ideas[c.IdeaID].AuthorID == authorID {
			n++
		}
	}
	return n, nil
}
