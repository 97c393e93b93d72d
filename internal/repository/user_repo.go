package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mediumish/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ Users = (*UserRepository)(nil)

const (
	insertUserSQL = `INSERT INTO users (id, username, email, password_hash, bio, created_at) VALUES (?, ?, ?, ?, ?, ?)`

	insertReadingListSQL = `INSERT INTO reading_lists (id, user_id, name, created_at) VALUES (?, ?, ?, ?)`

	selectUserSQL = `SELECT id, username, email, password_hash, bio, reset_token, reset_token_expiry, created_at FROM users`

	selectUserByIDSQL       = selectUserSQL + ` WHERE id = ?`
	selectUserByEmailSQL    = selectUserSQL + ` WHERE email = ?`
	selectUserByUsernameSQL = selectUserSQL + ` WHERE username = ?`

	updateProfileSQL = `UPDATE users SET username = ?, bio = ? WHERE id = ?`

	setResetTokenSQL = `UPDATE users SET reset_token = ?, reset_token_expiry = ? WHERE id = ?`

	resetPasswordSQL = `UPDATE users SET password_hash = ?, reset_token = NULL, reset_token_expiry = NULL
		WHERE reset_token = ? AND reset_token_expiry > ?`

	selectUserStatsSQL = `SELECT
		(SELECT COUNT(*) FROM posts WHERE author_id = ?),
		(SELECT COUNT(*) FROM post_likes pl JOIN posts p ON p.id = pl.post_id WHERE p.author_id = ?),
		(SELECT COUNT(*) FROM follows WHERE followee_id = ?)`
)

// Create inserts the user and its default reading list atomically.
// A username or email collision yields ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, u models.User) error {
	createdAt := nowOr(u.CreatedAt)
	err := withTx(ctx, r.db, func(tx DBTX) error {
		if _, err := tx.ExecContext(ctx, insertUserSQL,
			u.ID, u.Username, u.Email, u.PasswordHash, u.Bio, toUnix(createdAt),
		); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, insertReadingListSQL,
			uuid.NewString(), u.ID, models.DefaultReadingList, toUnix(createdAt),
		)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert user %q: %w", u.Username, ErrDuplicate)
		}
		return fmt.Errorf("insert user %q: %w", u.Username, err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, selectUserByIDSQL, id)
}

// GetByEmail matches case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUserByEmailSQL, email)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, selectUserByUsernameSQL, username)
}

func (r *UserRepository) getOne(ctx context.Context, query, arg string) (*models.User, error) {
	var (
		u          models.User
		resetToken sql.NullString
		resetExp   sql.NullInt64
		createdAt  int64
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Bio, &resetToken, &resetExp, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user %q: %w", arg, err)
	}
	u.ResetToken = resetToken.String
	if resetExp.Valid {
		u.ResetTokenExpiry = fromUnix(resetExp.Int64)
	}
	u.CreatedAt = fromUnix(createdAt)
	return &u, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id, username, bio string) error {
	if _, err := r.db.ExecContext(ctx, updateProfileSQL, username, bio, id); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update user %q: %w", id, ErrDuplicate)
		}
		return fmt.Errorf("update user %q: %w", id, err)
	}
	return nil
}

// SetResetToken overwrites any previous token.
func (r *UserRepository) SetResetToken(ctx context.Context, id, token string, expiry time.Time) error {
	if _, err := r.db.ExecContext(ctx, setResetTokenSQL, token, toUnix(expiry), id); err != nil {
		return fmt.Errorf("set reset token for %q: %w", id, err)
	}
	return nil
}

func (r *UserRepository) ResetPassword(ctx context.Context, token, passwordHash string, now time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, resetPasswordSQL, passwordHash, token, toUnix(now))
	if err != nil {
		return false, fmt.Errorf("reset password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reset password rows affected: %w", err)
	}
	return n == 1, nil
}

func (r *UserRepository) Stats(ctx context.Context, id string) (models.UserStats, error) {
	var s models.UserStats
	err := r.db.QueryRowContext(ctx, selectUserStatsSQL, id, id, id).
		Scan(&s.TotalPosts, &s.TotalLikesReceived, &s.TotalFollowers)
	if err != nil {
		return models.UserStats{}, fmt.Errorf("select stats for %q: %w", id, err)
	}
	return s, nil
}
