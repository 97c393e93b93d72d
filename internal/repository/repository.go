package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"mediumish/internal/models"
)

// ErrDuplicate reports a uniqueness violation (username or email taken).
var ErrDuplicate = errors.New("duplicate entry")

// ErrMissingReference reports a write that referenced a user or post that
// does not exist.
var ErrMissingReference = errors.New("referenced entity does not exist")

// Lookups return (nil, nil) when the entity does not exist.

type Users interface {
	// Create stores u and its default reading list in one transaction.
	Create(ctx context.Context, u models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, id, username, bio string) error
	SetResetToken(ctx context.Context, id, token string, expiry time.Time) error
	// ResetPassword swaps the hash of the user holding token if it has not
	// expired at now, clearing the token. It reports whether a user matched.
	ResetPassword(ctx context.Context, token, passwordHash string, now time.Time) (bool, error)
	Stats(ctx context.Context, id string) (models.UserStats, error)
}

type Follows interface {
	// Toggle adds the edge if absent, removes it if present, and reports
	// whether it exists afterwards.
	Toggle(ctx context.Context, followerID, followeeID string, now time.Time) (bool, error)
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	Followers(ctx context.Context, userID string) ([]string, error)
	FollowerCount(ctx context.Context, userID string) (int, error)
	Following(ctx context.Context, userID string) ([]string, error)
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

type Posts interface {
	// Create assigns ID and CreatedAt when empty.
	Create(ctx context.Context, p *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	// List returns posts newest-first; a positive afterSeq keeps only posts
	// published after that feed position.
	List(ctx context.Context, afterSeq int64) ([]models.Post, error)
	Exists(ctx context.Context, id string) (bool, error)
	ToggleLike(ctx context.Context, postID, userID string, now time.Time) (liked bool, count int, err error)
	AddComment(ctx context.Context, c *models.Comment) error
	Comments(ctx context.Context, postID string) ([]models.Comment, error)
}

type ReadingLists interface {
	Create(ctx context.Context, userID, name string, now time.Time) error
	ListByUser(ctx context.Context, userID string) ([]models.ReadingList, error)
	// ToggleDefault flips postID in the user's default list, recreating the
	// list if it is missing, and reports whether the post is saved afterwards.
	ToggleDefault(ctx context.Context, userID, postID string, now time.Time) (bool, error)
	IsSaved(ctx context.Context, userID, postID string) (bool, error)
	Library(ctx context.Context, userID string) ([]models.LibraryList, error)
}

// Repository groups the stores handed to the service layer.
type Repository struct {
	Users        Users
	Follows      Follows
	Posts        Posts
	ReadingLists ReadingLists
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Users:        NewUserRepository(db),
		Follows:      NewFollowSQLite(db),
		Posts:        NewPostSQLite(db),
		ReadingLists: NewReadingListSQLite(db),
	}
}
