package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"ideaboard/internal/cache"
	"ideaboard/internal/dao"
	"ideaboard/internal/models"
	"ideaboard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ IdeaRepository    = (*testutil.IdeaStore)(nil)
	_ CommentRepository = (*testutil.CommentStore)(nil)
	_ UserRepository    = (*testutil.UserStore)(nil)
)

type fixture struct {
	store    *testutil.MemStore
	cache    *cache.Local
	ideas    *IdeaService
	comments *CommentService
	accounts *AccountService
	stats    *StatsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewMemStore()
	c, err := cache.NewLocal(100)
	require.NoError(t, err)
	return &fixture{
		store:    store,
		cache:    c,
		ideas:    NewIdeaService(store.Ideas(), c, time.Minute),
		comments: NewCommentService(store.Ideas(), store.Comments(), c),
		accounts: NewAccountService(store.Users()),
		stats:    NewStatsService(store.Users()),
	}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := f.accounts.Register(context.Background(), RegisterInput{
		Name:     name,
		Email:    name + "@example.com",
		Password: "password",
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) idea(t *testing.T, author *models.User, title string) *models.Idea {
	t.Helper()
	idea, err := f.ideas.Create(context.Background(), author, CreateIdeaInput{
		Title:       title,
		Description: "About " + title,
		Type:        "feature",
	})
	require.NoError(t, err)
	return idea
}

func assertKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, KindOf(err), "unexpected error %v", err)
}

func TestCreateIdea(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")

	idea, err := f.ideas.Create(ctx, alice, CreateIdeaInput{
		Title:       "Dark mode",
		Description: "Add a dark theme",
		Type:        "FEATURE",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, idea.ID)
	assert.Equal(t, models.IdeaTypeFeature, idea.Type)
	assert.Equal(t, models.IdeaStatusSubmitted, idea.Status)
	assert.EqualValues(t, 0, idea.VoteCount)
	assert.Equal(t, alice.ID, idea.AuthorID)
	assert.Equal(t, "alice", idea.Author.Name)
	assert.Empty(t, idea.Author.Email)

	draft, err := f.ideas.Create(ctx, alice, CreateIdeaInput{
		Title:       "Draft",
		Description: "Later",
		Type:        "product",
		Status:      "draft",
	})
	require.NoError(t, err)
	assert.Equal(t, models.IdeaStatusDraft, draft.Status)
	assert.Equal(t, models.IdeaTypeProduct, draft.Type)
}

func TestCreateIdeaValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")

	cases := []CreateIdeaInput{
		{Description: "d", Type: "FEATURE"},
		{Title: "t", Description: "   ", Type: "FEATURE"},
		{Title: "t", Description: "d"},
		{Title: "t", Description: "d", Type: "SERVICE"},
		{Title: "t", Description: "d", Type: "FEATURE", Status: "SHIPPED"},
	}
	for _, in := range cases {
		_, err := f.ideas.Create(ctx, alice, in)
		assertKind(t, err, KindValidation)
	}

	count, err := f.store.Users().CountIdeas(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestListIdeas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	dark := f.idea(t, alice, "Dark mode")
	export := f.idea(t, bob, "CSV export")
	_, err := f.ideas.Create(ctx, bob, CreateIdeaInput{Title: "Secret", Description: "wip", Type: "PRODUCT", Status: "DRAFT"})
	require.NoError(t, err)

	_, err = f.ideas.ToggleVote(ctx, dark.ID, bob.ID)
	require.NoError(t, err)
	_, err = f.comments.AddComment(ctx, bob, dark.ID, "Great idea!")
	require.NoError(t, err)

	res, err := f.ideas.List(ctx, ListQuery{}, "")
	require.NoError(t, err)
	require.Len(t, res.Ideas, 2)
	assert.Equal(t, dark.ID, res.Ideas[0].ID)
	assert.EqualValues(t, 1, res.Ideas[0].CommentCount)
	assert.Equal(t, "alice", res.Ideas[0].Author.Name)
	assert.Empty(t, res.UserVotes)
	assert.NotNil(t, res.UserVotes)

	res, err = f.ideas.List(ctx, ListQuery{Status: "all", Sort: "recent"}, bob.ID)
	require.NoError(t, err)
	require.Len(t, res.Ideas, 2)
	assert.Equal(t, export.ID, res.Ideas[0].ID)
	assert.Equal(t, []string{dark.ID}, res.UserVotes)

	res, err = f.ideas.List(ctx, ListQuery{Status: "draft"}, "")
	require.NoError(t, err)
	require.Len(t, res.Ideas, 1)
	assert.Equal(t, "Secret", res.Ideas[0].Title)

	res, err = f.ideas.List(ctx, ListQuery{Type: "all", Search: "EXPORT"}, "")
	require.NoError(t, err)
	require.Len(t, res.Ideas, 1)
	assert.Equal(t, export.ID, res.Ideas[0].ID)

	res, err = f.ideas.List(ctx, ListQuery{AuthorID: alice.ID}, "")
	require.NoError(t, err)
	require.Len(t, res.Ideas, 1)

	_, err = f.ideas.List(ctx, ListQuery{Type: "gadget"}, "")
	assertKind(t, err, KindValidation)
}

func TestListIdeasStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.store.FailWith(errors.New("connection refused"))

	_, err := f.ideas.List(context.Background(), ListQuery{}, "")
	assertKind(t, err, KindInternal)
	assert.Equal(t, "Failed to fetch ideas", err.(*Error).Message)
}

func TestToggleVoteDuplicateIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	idea := f.idea(t, alice, "Dark mode")

	f.store.FailWith(fmt.Errorf("insert vote: %w", dao.ErrDuplicate))
	_, err := f.ideas.ToggleVote(ctx, idea.ID, alice.ID)
	assertKind(t, err, KindConflict)
	assert.Equal(t, "Vote already recorded", err.(*Error).Message)
	assert.ErrorIs(t, err, dao.ErrDuplicate)
}

func TestToggleVoteScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	idea := f.idea(t, alice, "Dark mode")

	res, err := f.ideas.ToggleVote(ctx, idea.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, res.Voted)
	assert.Equal(t, "Vote added", res.Message)

	got, err := f.ideas.Get(ctx, idea.ID, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.Idea.VoteCount)
	assert.True(t, got.HasVoted)

	res, err = f.ideas.ToggleVote(ctx, idea.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, res.Voted)
	assert.Equal(t, "Vote removed", res.Message)

	got, err = f.ideas.Get(ctx, idea.ID, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, got.Idea.VoteCount)
	assert.False(t, got.HasVoted)
	assert.Equal(t, 0, f.store.VoteRows(idea.ID))

	_, err = f.ideas.ToggleVote(ctx, "missing", bob.ID)
	assertKind(t, err, KindNotFound)
}

func TestVoteCountMatchesRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	idea := f.idea(t, alice, "Counter")

	voters := []*models.User{f.user(t, "v1"), f.user(t, "v2"), f.user(t, "v3")}
	for round := 0; round < 5; round++ {
		for i, v := range voters {
			if (round+i)%2 == 0 {
				_, err := f.ideas.ToggleVote(ctx, idea.ID, v.ID)
				require.NoError(t, err)
			}
		}
		got, err := f.store.Ideas().Find(ctx, idea.ID)
		require.NoError(t, err)
		assert.EqualValues(t, f.store.VoteRows(idea.ID), got.VoteCount)
	}
}

func TestGetIdea(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	idea := f.idea(t, alice, "Dark mode")

	first, err := f.comments.AddComment(ctx, bob, idea.ID, "first")
	require.NoError(t, err)
	second, err := f.comments.AddComment(ctx, alice, idea.ID, "**second**")
	require.NoError(t, err)
	_, err = f.comments.ToggleReaction(ctx, first.ID, alice.ID, "👍")
	require.NoError(t, err)
	_, err = f.comments.ToggleReaction(ctx, first.ID, bob.ID, "👍")
	require.NoError(t, err)

	got, err := f.ideas.Get(ctx, idea.ID, "")
	require.NoError(t, err)
	assert.False(t, got.HasVoted)
	assert.Equal(t, "alice", got.Idea.Author.Name)
	assert.EqualValues(t, 2, got.Idea.CommentCount)
	require.Len(t, got.Idea.Comments, 2)
	assert.Equal(t, second.ID, got.Idea.Comments[0].ID)
	assert.Equal(t, first.ID, got.Idea.Comments[1].ID)
	assert.Equal(t, []models.ReactionCount{{Emoji: "👍", Count: 2}}, got.Idea.Comments[1].ReactionCounts)
	assert.Len(t, got.Idea.Comments[1].Reactions, 2)
	assert.Contains(t, got.Idea.DescriptionHTML, "About Dark mode")

	_, err = f.ideas.Get(ctx, "missing", "")
	assertKind(t, err, KindNotFound)
}

func TestGetIdeaServesFromCacheUntilMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	idea := f.idea(t, alice, "Cached")

	_, err := f.ideas.Get(ctx, idea.ID, "")
	require.NoError(t, err)
	_, ok := f.cache.Get(ctx, cache.IdeaKey(idea.ID))
	require.True(t, ok)

	// Comments come from the cached entry while it is current.
	data, ok := f.cache.Get(ctx, cache.IdeaKey(idea.ID))
	require.True(t, ok)
	var cached IdeaDetail
	require.NoError(t, json.Unmarshal(data, &cached))
	cached.Comments = []models.Comment{{ID: "from-cache", Content: "cached"}}
	data, err = json.Marshal(cached)
	require.NoError(t, err)
	f.cache.Set(ctx, cache.IdeaKey(idea.ID), data, time.Minute)

	got, err := f.ideas.Get(ctx, idea.ID, "")
	require.NoError(t, err)
	require.Len(t, got.Idea.Comments, 1)
	assert.Equal(t, "from-cache", got.Idea.Comments[0].ID)

	_, err = f.comments.AddComment(ctx, alice, idea.ID, "invalidate")
	require.NoError(t, err)
	_, ok = f.cache.Get(ctx, cache.IdeaKey(idea.ID))
	assert.False(t, ok)

	got, err = f.ideas.Get(ctx, idea.ID, "")
	require.NoError(t, err)
	assert.Len(t, got.Idea.Comments, 1)
}

func TestGetIdeaIgnoresEntryWrittenAfterInvalidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	idea := f.idea(t, alice, "Dark mode")
	key := cache.IdeaKey(idea.ID)

	_, err := f.ideas.Get(ctx, idea.ID, bob.ID)
	require.NoError(t, err)
	stale, ok := f.cache.Get(ctx, key)
	require.True(t, ok)

	// A reader that loaded the row before the vote stores its copy after
	// the vote has invalidated the key.
	_, err = f.ideas.ToggleVote(ctx, idea.ID, bob.ID)
	require.NoError(t, err)
	f.cache.Set(ctx, key, stale, time.Minute)

	got, err := f.ideas.Get(ctx, idea.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, got.HasVoted)
	assert.EqualValues(t, 1, got.Idea.VoteCount)

	// Same for an edit: the stale entry no longer matches the row.
	_, err = f.ideas.Update(ctx, idea.ID, alice.ID, []byte(`{"title":"Dark theme"}`))
	require.NoError(t, err)
	f.cache.Set(ctx, key, stale, time.Minute)

	got, err = f.ideas.Get(ctx, idea.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dark theme", got.Idea.Title)
	assert.EqualValues(t, 1, got.Idea.VoteCount)
}

func TestUpdateIdea(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	idea := f.idea(t, alice, "Dark mode")

	updated, err := f.ideas.Update(ctx, idea.ID, alice.ID, []byte(`{"title":"Dark theme","status":"under_review"}`))
	require.NoError(t, err)
	assert.Equal(t, "Dark theme", updated.Title)
	assert.Equal(t, models.IdeaStatusUnderReview, updated.Status)
	assert.Equal(t, "About Dark mode", updated.Description)

	_, err = f.ideas.Update(ctx, idea.ID, bob.ID, []byte(`{"title":"Hijacked"}`))
	assertKind(t, err, KindForbidden)

	got, err := f.store.Ideas().Find(ctx, idea.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dark theme", got.Title)

	_, err = f.ideas.Update(ctx, "missing", bob.ID, []byte(`{"title":"Hijacked"}`))
	assertKind(t, err, KindNotFound)

	for _, body := range []string{`{"title":" "}`, `{}`, `{"status":"SHIPPED"}`, `{"voteCount":9}`, `not json`} {
		_, err = f.ideas.Update(ctx, idea.ID, alice.ID, []byte(body))
		assertKind(t, err, KindValidation)
	}
}

func TestUpdateIdeaChecksOwnershipBeforeBody(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	idea := f.idea(t, alice, "Dark mode")

	_, err := f.ideas.Update(ctx, "missing", bob.ID, []byte(`{"authorId":"x"}`))
	assertKind(t, err, KindNotFound)
	_, err = f.ideas.Update(ctx, idea.ID, bob.ID, []byte(`{"authorId":"x"}`))
	assertKind(t, err, KindForbidden)
	_, err = f.ideas.Update(ctx, idea.ID, bob.ID, []byte(`{`))
	assertKind(t, err, KindForbidden)

	_, err = f.ideas.Update(ctx, idea.ID, alice.ID, []byte(`{"authorId":"x"}`))
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "Unsupported field in request body", svcErr.Message)
}

func TestDeleteIdea(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	idea := f.idea(t, alice, "Dark mode")

	_, err := f.ideas.ToggleVote(ctx, idea.ID, bob.ID)
	require.NoError(t, err)
	comment, err := f.comments.AddComment(ctx, bob, idea.ID, "nice")
	require.NoError(t, err)
	_, err = f.comments.ToggleReaction(ctx, comment.ID, alice.ID, "🚀")
	require.NoError(t, err)

	assertKind(t, f.ideas.Delete(ctx, idea.ID, bob.ID), KindForbidden)
	_, err = f.store.Ideas().Find(ctx, idea.ID)
	require.NoError(t, err)

	require.NoError(t, f.ideas.Delete(ctx, idea.ID, alice.ID))
	assert.Equal(t, 0, f.store.VoteRows(idea.ID))
	assert.Equal(t, 0, f.store.CommentRows(idea.ID))
	assert.Equal(t, 0, f.store.ReactionRows(comment.ID))

	assertKind(t, f.ideas.Delete(ctx, idea.ID, alice.ID), KindNotFound)
}

func TestCommentAndReactionScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	idea := f.idea(t, alice, "Dark mode")

	comment, err := f.comments.AddComment(ctx, alice, idea.ID, "  Great idea!  ")
	require.NoError(t, err)
	assert.Equal(t, "Great idea!", comment.Content)
	assert.Equal(t, "alice", comment.User.Name)

	res, err := f.comments.ToggleReaction(ctx, comment.ID, bob.ID, "👍")
	require.NoError(t, err)
	assert.Equal(t, &ReactionResult{Added: true, Emoji: "👍"}, res)

	res, err = f.comments.ToggleReaction(ctx, comment.ID, bob.ID, "👍")
	require.NoError(t, err)
	assert.Equal(t, &ReactionResult{Added: false, Emoji: "👍"}, res)
	assert.Equal(t, 0, f.store.ReactionRows(comment.ID))
}

func TestReactionsAreIndependentPerEmoji(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	idea := f.idea(t, alice, "Emoji")
	comment, err := f.comments.AddComment(ctx, alice, idea.ID, "hello")
	require.NoError(t, err)

	for _, emoji := range []string{"🚀", "🚀"} {
		_, err := f.comments.ToggleReaction(ctx, comment.ID, alice.ID, emoji)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, f.store.ReactionRows(comment.ID))

	for _, emoji := range []string{"🚀", "❤️"} {
		res, err := f.comments.ToggleReaction(ctx, comment.ID, alice.ID, emoji)
		require.NoError(t, err)
		assert.True(t, res.Added)
	}
	assert.Equal(t, 2, f.store.ReactionRows(comment.ID))
}

func TestCommentValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	idea := f.idea(t, alice, "Validation")

	_, err := f.comments.AddComment(ctx, alice, idea.ID, "   ")
	assertKind(t, err, KindValidation)
	_, err = f.comments.AddComment(ctx, alice, "missing", "hello")
	assertKind(t, err, KindNotFound)

	_, err = f.comments.ToggleReaction(ctx, "missing", alice.ID, "👍")
	assertKind(t, err, KindNotFound)
	_, err = f.comments.ToggleReaction(ctx, "missing", alice.ID, "")
	assertKind(t, err, KindValidation)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	one := f.idea(t, alice, "One")
	two := f.idea(t, alice, "Two")
	f.idea(t, bob, "Bob's")

	for _, id := range []string{one.ID, two.ID} {
		_, err := f.ideas.ToggleVote(ctx, id, bob.ID)
		require.NoError(t, err)
	}
	_, err := f.comments.AddComment(ctx, bob, one.ID, "nice")
	require.NoError(t, err)

	stats, err := f.stats.Stats(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, &UserStats{TotalIdeas: 2, TotalVotes: 2, TotalComments: 1}, stats)

	f.store.FailWith(errors.New("down"))
	_, err = f.stats.Stats(ctx, alice.ID)
	assertKind(t, err, KindInternal)
}

func TestAccounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice, err := f.accounts.Register(ctx, RegisterInput{Name: "Alice", Email: " Alice@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", alice.Email)
	assert.NotEmpty(t, alice.Image)
	assert.NotEqual(t, "secret1", alice.Password)

	_, err = f.accounts.Register(ctx, RegisterInput{Name: "Other", Email: "alice@example.com", Password: "secret1"})
	assertKind(t, err, KindConflict)
	_, err = f.accounts.Register(ctx, RegisterInput{Name: "Short", Email: "short@example.com", Password: "123"})
	assertKind(t, err, KindValidation)
	_, err = f.accounts.Register(ctx, RegisterInput{Name: "Bad", Email: "not-an-email", Password: "secret1"})
	assertKind(t, err, KindValidation)

	got, err := f.accounts.Authenticate(ctx, "ALICE@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = f.accounts.Authenticate(ctx, "alice@example.com", "wrong")
	assertKind(t, err, KindUnauthorized)
	_, err = f.accounts.Authenticate(ctx, "nobody@example.com", "secret1")
	assertKind(t, err, KindUnauthorized)

	_, err = f.accounts.FindByID(ctx, "missing")
	assertKind(t, err, KindNotFound)
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := ErrInternal("Failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed: boom", err.Error())
	assert.Equal(t, KindInternal, KindOf(cause))
	assert.Equal(t, "not_found", KindNotFound.String())
}
