package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"mediumish/internal/models"
	"mediumish/internal/repository"
	"mediumish/internal/search"
)

type PostService struct {
	posts   repository.Posts
	users   repository.Users
	follows repository.Follows
	lists   repository.ReadingLists
	now     func() time.Time
}

func NewPostService(repos *repository.Repository, now func() time.Time) *PostService {
	if now == nil {
		now = time.Now
	}
	return &PostService{
		posts:   repos.Posts,
		users:   repos.Users,
		follows: repos.Follows,
		lists:   repos.ReadingLists,
		now:     now,
	}
}

func (s *PostService) CreatePost(ctx context.Context, authorID, title, content string) (models.Post, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return models.Post{}, ErrPostFieldsRequired
	}
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return models.Post{}, err
	}
	if author == nil {
		return models.Post{}, ErrUserNotFound
	}

	p := models.Post{
		Title:     title,
		Content:   content,
		Author:    models.Author{ID: author.ID, Username: author.Username},
		CreatedAt: s.now().UTC(),
	}
	if err := s.posts.Create(ctx, &p); err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return models.Post{}, ErrUserNotFound
		}
		return models.Post{}, err
	}
	p.Comments = []models.Comment{}
	return p, nil
}

// GetPost returns the post with flags computed for viewerID.
func (s *PostService) GetPost(ctx context.Context, postID, viewerID string) (models.PostDetail, error) {
	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return models.PostDetail{}, err
	}
	if p == nil {
		return models.PostDetail{}, ErrPostNotFound
	}

	d := models.PostDetail{Post: *p}
	for _, id := range p.Likes {
		if id == viewerID {
			d.IsLiked = true
			break
		}
	}
	if d.IsSaved, err = s.lists.IsSaved(ctx, viewerID, postID); err != nil {
		return models.PostDetail{}, err
	}
	if d.IsFollowingAuthor, err = s.follows.IsFollowing(ctx, viewerID, p.Author.ID); err != nil {
		return models.PostDetail{}, err
	}
	if d.AuthorFollowerCount, err = s.follows.FollowerCount(ctx, p.Author.ID); err != nil {
		return models.PostDetail{}, err
	}
	return d, nil
}

func (s *PostService) ListPosts(ctx context.Context) ([]models.Post, error) {
	return s.posts.List(ctx, 0)
}

// ListPostsAfter returns posts published after the feed position cursor
// (a Post.Seq), newest first. Positions follow commit order, so a post
// stamped earlier but stored later is still returned.
func (s *PostService) ListPostsAfter(ctx context.Context, cursor int64) ([]models.Post, error) {
	return s.posts.List(ctx, cursor)
}

// SearchPosts ranks every post against query. A query with no searchable
// terms matches nothing.
func (s *PostService) SearchPosts(ctx context.Context, query string) ([]models.Post, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrSearchQueryRequired
	}
	all, err := s.posts.List(ctx, 0)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Post, len(all))
	docs := make([]search.Document, 0, len(all))
	for _, p := range all {
		byID[p.ID] = p
		docs = append(docs, search.Document{ID: p.ID, Title: p.Title, Content: p.Content, CreatedAt: p.CreatedAt})
	}

	ranked := search.Rank(query, docs)
	out := make([]models.Post, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, byID[r.ID])
	}
	return out, nil
}

// ToggleLike flips userID's like and returns the post's like count.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID string) (int, error) {
	ok, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrPostNotFound
	}

	_, count, err := s.posts.ToggleLike(ctx, postID, userID, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return count, nil
}

// AddComment appends a comment and returns the whole thread, oldest first.
func (s *PostService) AddComment(ctx context.Context, postID, authorID, text string) ([]models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrCommentRequired
	}
	ok, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPostNotFound
	}

	c := models.Comment{PostID: postID, Text: text, Author: models.Author{ID: authorID}, CreatedAt: s.now().UTC()}
	if err := s.posts.AddComment(ctx, &c); err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.posts.Comments(ctx, postID)
}
