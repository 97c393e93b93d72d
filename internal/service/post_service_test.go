package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediumish/internal/apperr"
)

func TestPostService_CreatePost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	p, err := env.svc.CreatePost(ctx, alice, "Hello", "World")
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "alice", p.Author.Username)
	assert.Empty(t, p.Likes)
	assert.Empty(t, p.Comments)
	assert.Equal(t, env.clock.Now(), p.CreatedAt)

	_, err = env.svc.CreatePost(ctx, alice, "  ", "body")
	assert.ErrorIs(t, err, ErrPostFieldsRequired)
	_, err = env.svc.CreatePost(ctx, "ghost", "t", "c")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPostService_ToggleLikeTwiceRestoresCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	id := env.post(t, alice, "Hello", "World")

	n, err := env.svc.ToggleLike(ctx, id, bob)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = env.svc.ToggleLike(ctx, id, alice)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = env.svc.ToggleLike(ctx, id, bob)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = env.svc.ToggleLike(ctx, id, bob)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = env.svc.ToggleLike(ctx, "missing", bob)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPostService_GetPostViewerFlags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	id := env.post(t, alice, "Hello", "World")

	_, err := env.svc.ToggleLike(ctx, id, bob)
	require.NoError(t, err)
	_, err = env.svc.ToggleSave(ctx, bob, id)
	require.NoError(t, err)
	_, err = env.svc.ToggleFollow(ctx, bob, alice)
	require.NoError(t, err)

	forBob, err := env.svc.GetPost(ctx, id, bob)
	require.NoError(t, err)
	assert.True(t, forBob.IsLiked)
	assert.True(t, forBob.IsSaved)
	assert.True(t, forBob.IsFollowingAuthor)
	assert.Equal(t, 1, forBob.AuthorFollowerCount)

	forAlice, err := env.svc.GetPost(ctx, id, alice)
	require.NoError(t, err)
	assert.False(t, forAlice.IsLiked)
	assert.False(t, forAlice.IsSaved)
	assert.False(t, forAlice.IsFollowingAuthor)

	_, err = env.svc.GetPost(ctx, "missing", bob)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestPostService_AddComment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	id := env.post(t, alice, "Hello", "World")

	_, err := env.svc.AddComment(ctx, id, bob, "first!")
	require.NoError(t, err)
	env.clock.Advance(1)
	comments, err := env.svc.AddComment(ctx, id, alice, "thanks")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first!", comments[0].Text)
	assert.Equal(t, "bob", comments[0].Author.Username)
	assert.Equal(t, "alice", comments[1].Author.Username)

	_, err = env.svc.AddComment(ctx, id, bob, " ")
	assert.ErrorIs(t, err, ErrCommentRequired)
	_, err = env.svc.AddComment(ctx, "missing", bob, "hi")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPostService_ListPostsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	first := env.post(t, alice, "one", "1")
	second := env.post(t, alice, "two", "2")

	posts, err := env.svc.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, second, posts[0].ID)
	assert.Equal(t, first, posts[1].ID)
	assert.Equal(t, "alice", posts[0].Author.Username)

	since, err := env.svc.ListPostsAfter(ctx, posts[1].Seq)
	require.NoError(t, err)
	require.Len(t, since, 1)
	assert.Equal(t, second, since[0].ID)
}

func TestPostService_SearchPosts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	older := env.post(t, alice, "Go concurrency", "<p>channels and goroutines</p>")
	bodyOnly := env.post(t, alice, "Cooking", "I write go code while the pasta boils")
	newer := env.post(t, alice, "Go generics", "type parameters")
	env.post(t, alice, "Unrelated", "nothing to see")

	got, err := env.svc.SearchPosts(ctx, "GO")
	require.NoError(t, err)
	ids := make([]string, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	// title hits outrank body hits; equal scores go newest first
	assert.Equal(t, []string{newer, older, bodyOnly}, ids)

	none, err := env.svc.SearchPosts(ctx, "xyz123")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	punct, err := env.svc.SearchPosts(ctx, "?!")
	require.NoError(t, err)
	assert.Empty(t, punct)

	_, err = env.svc.SearchPosts(ctx, "   ")
	assert.ErrorIs(t, err, ErrSearchQueryRequired)
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))
}
