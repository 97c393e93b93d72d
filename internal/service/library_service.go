package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"mediumish/internal/models"
	"mediumish/internal/repository"
)

type LibraryService struct {
	users repository.Users
	posts repository.Posts
	lists repository.ReadingLists
	now   func() time.Time
}

func NewLibraryService(repos *repository.Repository, now func() time.Time) *LibraryService {
	if now == nil {
		now = time.Now
	}
	return &LibraryService{users: repos.Users, posts: repos.Posts, lists: repos.ReadingLists, now: now}
}

// CreateList appends an empty list and returns all of the user's lists.
func (s *LibraryService) CreateList(ctx context.Context, userID, name string) ([]models.ReadingList, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrListNameRequired
	}
	if err := s.lists.Create(ctx, userID, name, s.now()); err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.lists.ListByUser(ctx, userID)
}

// ToggleSave flips postID in the user's default list.
func (s *LibraryService) ToggleSave(ctx context.Context, userID, postID string) (bool, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return false, err
	}
	ok, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, ErrPostNotFound
	}

	saved, err := s.lists.ToggleDefault(ctx, userID, postID, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return false, ErrPostNotFound
		}
		return false, err
	}
	return saved, nil
}

func (s *LibraryService) GetLibrary(ctx context.Context, userID string) ([]models.LibraryList, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.lists.Library(ctx, userID)
}

func (s *LibraryService) requireUser(ctx context.Context, userID string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}
	return nil
}
