package service

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"mediumish/internal/models"
	"mediumish/internal/notify"
	"mediumish/internal/repository"
	"mediumish/internal/session"
)

// Authorization covers the credential lifecycle: sign-up, login and password reset.
type Authorization interface {
	Register(ctx context.Context, in RegisterInput) (string, error)
	Login(ctx context.Context, email, password string) (LoginResult, error)
	RequestPasswordReset(ctx context.Context, email string) error
	CompletePasswordReset(ctx context.Context, token, newPassword string) error
	ParseToken(accessToken string) (session.Identity, error)
}

// Profiles exposes public user views and self-service profile edits.
type Profiles interface {
	GetProfile(ctx context.Context, userID string) (models.PublicUser, error)
	UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (models.PublicUser, string, error)
	Stats(ctx context.Context, userID string) (models.UserStats, error)
}

// Posts owns articles, their likes and their comments.
type Posts interface {
	CreatePost(ctx context.Context, authorID, title, content string) (models.Post, error)
	GetPost(ctx context.Context, postID, viewerID string) (models.PostDetail, error)
	ListPosts(ctx context.Context) ([]models.Post, error)
	ListPostsAfter(ctx context.Context, cursor int64) ([]models.Post, error)
	SearchPosts(ctx context.Context, query string) ([]models.Post, error)
	ToggleLike(ctx context.Context, postID, userID string) (int, error)
	AddComment(ctx context.Context, postID, authorID, text string) ([]models.Comment, error)
}

// Social is the follow graph.
type Social interface {
	ToggleFollow(ctx context.Context, followerID, targetID string) (bool, error)
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

// Library manages reading lists.
type Library interface {
	CreateList(ctx context.Context, userID, name string) ([]models.ReadingList, error)
	ToggleSave(ctx context.Context, userID, postID string) (bool, error)
	GetLibrary(ctx context.Context, userID string) ([]models.LibraryList, error)
}

// Service aggregates all sub-services handed to the HTTP layer.
type Service struct {
	Authorization
	Profiles
	Posts
	Social
	Library
}

// Config carries the collaborators that are not stores.
type Config struct {
	Issuer        *session.Issuer
	Notifier      notify.Notifier
	ResetURL      string
	ResetTokenTTL time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// Now defaults to time.Now.
	Now func() time.Time
}

func (c Config) withDefaults() Config {
	if c.ResetTokenTTL <= 0 {
		c.ResetTokenTTL = DefaultResetTokenTTL
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = bcrypt.DefaultCost
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, cfg Config) *Service {
	cfg = cfg.withDefaults()
	return &Service{
		Authorization: NewAuthService(repos.Users, cfg),
		Profiles:      NewProfileService(repos, cfg.Issuer),
		Posts:         NewPostService(repos, cfg.Now),
		Social:        NewSocialService(repos.Users, repos.Follows, cfg.Now),
		Library:       NewLibraryService(repos, cfg.Now),
	}
}
