package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"mediumish/internal/models"
	"mediumish/internal/repository"
	"mediumish/internal/session"
)

// ProfileUpdate holds the optional fields of PUT /users/profile. A nil field
// is left untouched; an empty username is treated as absent, an empty bio
// clears it.
type ProfileUpdate struct {
	Username *string
	Bio      *string
}

type ProfileService struct {
	users   repository.Users
	follows repository.Follows
	lists   repository.ReadingLists
	issuer  *session.Issuer
}

func NewProfileService(repos *repository.Repository, issuer *session.Issuer) *ProfileService {
	return &ProfileService{
		users:   repos.Users,
		follows: repos.Follows,
		lists:   repos.ReadingLists,
		issuer:  issuer,
	}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (models.PublicUser, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.PublicUser{}, err
	}
	if u == nil {
		return models.PublicUser{}, ErrUserNotFound
	}
	return s.public(ctx, u)
}

func (s *ProfileService) public(ctx context.Context, u *models.User) (models.PublicUser, error) {
	followers, err := s.follows.Followers(ctx, u.ID)
	if err != nil {
		return models.PublicUser{}, err
	}
	following, err := s.follows.Following(ctx, u.ID)
	if err != nil {
		return models.PublicUser{}, err
	}
	lists, err := s.lists.ListByUser(ctx, u.ID)
	if err != nil {
		return models.PublicUser{}, err
	}
	return u.Public(followers, following, lists), nil
}

// UpdateProfile applies upd and returns the new profile with a token that
// carries the new username. Tokens issued earlier stay valid until expiry.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (models.PublicUser, string, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.PublicUser{}, "", err
	}
	if u == nil {
		return models.PublicUser{}, "", ErrUserNotFound
	}

	if upd.Username != nil {
		if name := strings.TrimSpace(*upd.Username); name != "" && name != u.Username {
			other, err := s.users.GetByUsername(ctx, name)
			if err != nil {
				return models.PublicUser{}, "", err
			}
			if other != nil && other.ID != u.ID {
				return models.PublicUser{}, "", ErrUsernameTaken
			}
			u.Username = name
		}
	}
	if upd.Bio != nil {
		if utf8.RuneCountInString(*upd.Bio) > models.MaxBioLength {
			return models.PublicUser{}, "", ErrBioTooLong
		}
		u.Bio = *upd.Bio
	}

	if err := s.users.UpdateProfile(ctx, u.ID, u.Username, u.Bio); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return models.PublicUser{}, "", ErrUsernameTaken
		}
		return models.PublicUser{}, "", err
	}

	profile, err := s.public(ctx, u)
	if err != nil {
		return models.PublicUser{}, "", err
	}
	token, err := s.issuer.Issue(identityOf(u))
	if err != nil {
		return models.PublicUser{}, "", err
	}
	return profile, token, nil
}

func (s *ProfileService) Stats(ctx context.Context, userID string) (models.UserStats, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.UserStats{}, err
	}
	if u == nil {
		return models.UserStats{}, ErrUserNotFound
	}
	return s.users.Stats(ctx, userID)
}
