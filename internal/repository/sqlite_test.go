package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediumish/internal/models"
	"mediumish/internal/repository"
	"mediumish/internal/repository/db"
)

var base = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func setupRepo(t *testing.T) (*repository.Repository, *sql.DB) {
	t.Helper()
	conn, err := db.InitDB(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return repository.NewRepository(conn), conn
}

func addUser(t *testing.T, r *repository.Repository, id, username string) {
	t.Helper()
	require.NoError(t, r.Users.Create(context.Background(), models.User{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    base,
	}))
}

func addPost(t *testing.T, r *repository.Repository, authorID, title string, at time.Time) string {
	t.Helper()
	p := &models.Post{Title: title, Content: "body of " + title, Author: models.Author{ID: authorID}, CreatedAt: at}
	require.NoError(t, r.Posts.Create(context.Background(), p))
	return p.ID
}

func TestUsers_CreateRejectsDuplicates(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()
	addUser(t, r, "u1", "alice")

	err := r.Users.Create(ctx, models.User{ID: "u2", Username: "alice", Email: "other@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	err = r.Users.Create(ctx, models.User{ID: "u3", Username: "alice2", Email: "ALICE@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	u, err := r.Users.GetByEmail(ctx, "Alice@Example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "u1", u.ID)
}

func TestUsers_CreateAddsDefaultReadingList(t *testing.T) {
	r, _ := setupRepo(t)
	addUser(t, r, "u1", "alice")

	lists, err := r.ReadingLists.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, models.DefaultReadingList, lists[0].Name)
	assert.Empty(t, lists[0].PostIDs)
}

func TestUsers_ResetPasswordIsSingleUse(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()
	addUser(t, r, "u1", "alice")

	require.NoError(t, r.Users.SetResetToken(ctx, "u1", "tok", base.Add(time.Hour)))

	ok, err := r.Users.ResetPassword(ctx, "tok", "new-hash", base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, ok, "expired token must not match")

	ok, err = r.Users.ResetPassword(ctx, "tok", "new-hash", base.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Users.ResetPassword(ctx, "tok", "other-hash", base.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)

	u, err := r.Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", u.PasswordHash)
	assert.Empty(t, u.ResetToken)
	assert.True(t, u.ResetTokenExpiry.IsZero())
}

func TestFollows_ToggleIsInvolution(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()
	addUser(t, r, "a", "alice")
	addUser(t, r, "b", "bob")

	on, err := r.Follows.Toggle(ctx, "a", "b", base)
	require.NoError(t, err)
	assert.True(t, on)

	followers, err := r.Follows.Followers(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, followers)
	following, err := r.Follows.Following(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, following)

	on, err = r.Follows.Toggle(ctx, "a", "b", base)
	require.NoError(t, err)
	assert.False(t, on)

	followers, err = r.Follows.Followers(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, followers)
	following, err = r.Follows.Following(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, following)
}

func TestFollows_ToggleUnknownUser(t *testing.T) {
	r, _ := setupRepo(t)
	addUser(t, r, "a", "alice")

	_, err := r.Follows.Toggle(context.Background(), "a", "ghost", base)
	assert.True(t, errors.Is(err, repository.ErrMissingReference), "got %v", err)
}

func TestFollows_LeaderboardOrdering(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	// followee ids chosen so that ties break on id
	for _, id := range []string{"a", "b", "c", "d"} {
		addUser(t, r, id, "user-"+id)
	}
	for i := 0; i < 5; i++ {
		addUser(t, r, fmt.Sprintf("f%d", i), fmt.Sprintf("fan%d", i))
	}
	follow := func(follower, followee string) {
		_, err := r.Follows.Toggle(ctx, follower, followee, base)
		require.NoError(t, err)
	}
	for i := 0; i < 5; i++ {
		follow(fmt.Sprintf("f%d", i), "b")
	}
	for i := 0; i < 3; i++ {
		follow(fmt.Sprintf("f%d", i), "d")
		follow(fmt.Sprintf("f%d", i), "c")
	}
	follow("f0", "a")

	top, err := r.Follows.Leaderboard(ctx, 4)
	require.NoError(t, err)
	require.Len(t, top, 4)

	var ids []string
	var counts []int
	for _, e := range top {
		ids = append(ids, e.ID)
		counts = append(counts, e.FollowerCount)
	}
	assert.Equal(t, []string{"b", "c", "d", "a"}, ids)
	assert.Equal(t, []int{5, 3, 3, 1}, counts)
}

func TestPosts_ListNewestFirstWithLikes(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()
	addUser(t, r, "a", "alice")
	addUser(t, r, "b", "bob")

	first := addPost(t, r, "a", "first", base)
	second := addPost(t, r, "a", "second", base.Add(time.Minute))
	tie := addPost(t, r, "b", "tie", base.Add(time.Minute))

	liked, count, err := r.Posts.ToggleLike(ctx, first, "b", base)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)

	posts, err := r.Posts.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, []string{tie, second, first}, []string{posts[0].ID, posts[1].ID, posts[2].ID})
	assert.Equal(t, "bob", posts[0].Author.Username)
	assert.Equal(t, []string{"b"}, posts[2].Likes)
	assert.Equal(t, 1, posts[2].LikeCount)
	assert.Empty(t, posts[1].Likes)
	assert.NotNil(t, posts[1].Comments)
	assert.Empty(t, posts[1].Comments)

	recent, err := r.Posts.List(ctx, posts[2].Seq)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestPosts_ListAfterFollowsStoreOrderNotTimestamps(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()
	addUser(t, r, "a", "alice")

	// stamped later, stored first
	late := &models.Post{Title: "late", Content: "x", Author: models.Author{ID: "a"}, CreatedAt: base.Add(time.Hour)}
	require.NoError(t, r.Posts.Create(ctx, late))
	// stamped earlier, stored after the cursor moved past late
	early := &models.Post{Title: "early", Content: "y", Author: models.Author{ID: "a"}, CreatedAt: base}
	require.NoError(t, r.Posts.Create(ctx, early))
	require.Greater(t, early.Seq, late.Seq)

	got, err := r.Posts.List(ctx, late.Seq)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, early.ID, got[0].ID)

	all, err := r.Posts.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPosts_ListCarriesComments(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()
	addUser(t, r, "a", "alice")
	addUser(t, r, "b", "bob")
	id := addPost(t, r, "a", "post", base)
	quiet := addPost(t, r, "a", "quiet", base.Add(time.Minute))

	require.NoError(t, r.Posts.AddComment(ctx, &models.Comment{PostID: id, Text: "first", Author: models.Author{ID: "b"}, CreatedAt: base}))
	require.NoError(t, r.Posts.AddComment(ctx, &models.Comment{PostID: id, Text: "second", Author: models.Author{ID: "a"}, CreatedAt: base.Add(time.Second)}))

	posts, err := r.Posts.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, quiet, posts[0].ID)
	assert.Empty(t, posts[0].Comments)
	require.Len(t, posts[1].Comments, 2)
	assert.Equal(t, "first", posts[1].Comments[0].Text)
	assert.Equal(t, "bob", posts[1].Comments[0].Author.Username)
	assert.Equal(t, 2, posts[1].CommentCount)
}

func TestFollows_FollowerCount(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()
	addUser(t, r, "a", "alice")
	addUser(t, r, "b", "bob")
	addUser(t, r, "c", "carol")

	n, err := r.Follows.FollowerCount(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	for _, f := range []string{"b", "c"} {
		_, err := r.Follows.Toggle(ctx, f, "a", base)
		require.NoError(t, err)
	}
	n, err = r.Follows.FollowerCount(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPosts_ToggleLikeTwiceRestores(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()
	addUser(t, r, "a", "alice")
	id := addPost(t, r, "a", "post", base)

	_, _, err := r.Posts.ToggleLike(ctx, id, "a", base)
	require.NoError(t, err)
	liked, count, err := r.Posts.ToggleLike(ctx, id, "a", base)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Zero(t, count)

	_, _, err = r.Posts.ToggleLike(ctx, "missing", "a", base)
	assert.ErrorIs(t, err, repository.ErrMissingReference)
}

func TestPosts_CommentsChronological(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()
	addUser(t, r, "a", "alice")
	addUser(t, r, "b", "bob")
	id := addPost(t, r, "a", "post", base)

	require.NoError(t, r.Posts.AddComment(ctx, &models.Comment{PostID: id, Text: "one", Author: models.Author{ID: "b"}, CreatedAt: base.Add(time.Second)}))
	require.NoError(t, r.Posts.AddComment(ctx, &models.Comment{PostID: id, Text: "two", Author: models.Author{ID: "a"}, CreatedAt: base.Add(2 * time.Second)}))

	p, err := r.Posts.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Len(t, p.Comments, 2)
	assert.Equal(t, "one", p.Comments[0].Text)
	assert.Equal(t, "bob", p.Comments[0].Author.Username)
	assert.Equal(t, "two", p.Comments[1].Text)
	assert.Equal(t, 2, p.CommentCount)

	err = r.Posts.AddComment(ctx, &models.Comment{PostID: "missing", Text: "x", Author: models.Author{ID: "a"}})
	assert.ErrorIs(t, err, repository.ErrMissingReference)

	missing, err := r.Posts.GetByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestReadingLists_ToggleAndLibrary(t *testing.T) {
	r, conn := setupRepo(t)
	ctx := context.Background()
	addUser(t, r, "a", "alice")
	addUser(t, r, "b", "bob")
	p1 := addPost(t, r, "b", "p1", base)
	p2 := addPost(t, r, "b", "p2", base.Add(time.Minute))

	require.NoError(t, r.ReadingLists.Create(ctx, "a", "Later", base.Add(time.Second)))

	// default list deleted out of band is recreated on save
	_, err := conn.ExecContext(ctx, `DELETE FROM reading_lists WHERE user_id = ? AND name = ?`, "a", models.DefaultReadingList)
	require.NoError(t, err)

	saved, err := r.ReadingLists.ToggleDefault(ctx, "a", p2, base.Add(2*time.Second))
	require.NoError(t, err)
	assert.True(t, saved)
	saved, err = r.ReadingLists.ToggleDefault(ctx, "a", p1, base.Add(3*time.Second))
	require.NoError(t, err)
	assert.True(t, saved)

	isSaved, err := r.ReadingLists.IsSaved(ctx, "a", p1)
	require.NoError(t, err)
	assert.True(t, isSaved)

	lib, err := r.ReadingLists.Library(ctx, "a")
	require.NoError(t, err)
	require.Len(t, lib, 2)
	assert.Equal(t, "Later", lib[0].Name)
	assert.Empty(t, lib[0].Posts)
	assert.Equal(t, models.DefaultReadingList, lib[1].Name)
	require.Len(t, lib[1].Posts, 2)
	assert.Equal(t, p2, lib[1].Posts[0].ID)
	assert.Equal(t, "bob", lib[1].Posts[0].Author.Username)

	saved, err = r.ReadingLists.ToggleDefault(ctx, "a", p1, base.Add(4*time.Second))
	require.NoError(t, err)
	assert.False(t, saved)

	lists, err := r.ReadingLists.ListByUser(ctx, "a")
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, []string{p2}, lists[1].PostIDs)

	_, err = r.ReadingLists.ToggleDefault(ctx, "a", "missing", base)
	assert.ErrorIs(t, err, repository.ErrMissingReference)
}

func TestUsers_Stats(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()
	addUser(t, r, "a", "alice")
	addUser(t, r, "b", "bob")
	p := addPost(t, r, "a", "p", base)
	addPost(t, r, "a", "q", base)
	_, _, err := r.Posts.ToggleLike(ctx, p, "b", base)
	require.NoError(t, err)
	_, err = r.Follows.Toggle(ctx, "b", "a", base)
	require.NoError(t, err)

	s, err := r.Users.Stats(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, models.UserStats{TotalPosts: 2, TotalLikesReceived: 1, TotalFollowers: 1}, s)
}
