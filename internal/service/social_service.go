package service

import (
	"context"
	"errors"
	"time"

	"mediumish/internal/models"
	"mediumish/internal/repository"
)

// DefaultLeaderboardSize is used when Leaderboard is called with limit <= 0.
const DefaultLeaderboardSize = 10

type SocialService struct {
	users   repository.Users
	follows repository.Follows
	now     func() time.Time
}

func NewSocialService(users repository.Users, follows repository.Follows, now func() time.Time) *SocialService {
	if now == nil {
		now = time.Now
	}
	return &SocialService{users: users, follows: follows, now: now}
}

// ToggleFollow flips the follower -> target edge and reports the new state.
// The edge is a single row, so both users' views change together.
func (s *SocialService) ToggleFollow(ctx context.Context, followerID, targetID string) (bool, error) {
	if followerID == targetID {
		return false, ErrSelfFollow
	}
	for _, id := range []string{followerID, targetID} {
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			return false, err
		}
		if u == nil {
			return false, ErrUserNotFound
		}
	}

	following, err := s.follows.Toggle(ctx, followerID, targetID, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	return following, nil
}

// Leaderboard returns the most-followed users; ties are ordered by id.
func (s *SocialService) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	return s.follows.Leaderboard(ctx, limit)
}
