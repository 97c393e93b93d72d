package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mediumish/internal/models"
)

// FollowSQLite stores each follow relation as one row, so a user's followers
// and the other user's following can never disagree.
type FollowSQLite struct {
	db *sql.DB
}

func NewFollowSQLite(db *sql.DB) *FollowSQLite { return &FollowSQLite{db: db} }

var _ Follows = (*FollowSQLite)(nil)

const (
	deleteFollowSQL = `DELETE FROM follows WHERE follower_id = ? AND followee_id = ?`
	insertFollowSQL = `INSERT INTO follows (follower_id, followee_id, created_at) VALUES (?, ?, ?)`
	existsFollowSQL = `SELECT 1 FROM follows WHERE follower_id = ? AND followee_id = ?`

	selectFollowersSQL = `SELECT follower_id FROM follows WHERE followee_id = ? ORDER BY created_at, follower_id`
	selectFollowingSQL = `SELECT followee_id FROM follows WHERE follower_id = ? ORDER BY created_at, followee_id`
	countFollowersSQL  = `SELECT COUNT(*) FROM follows WHERE followee_id = ?`

	selectLeaderboardSQL = `SELECT u.id, u.username, COUNT(f.follower_id) AS follower_count
		FROM users u LEFT JOIN follows f ON f.followee_id = u.id
		GROUP BY u.id, u.username
		ORDER BY follower_count DESC, u.id ASC
		LIMIT ?`
)

// Toggle removes the edge if it exists, otherwise inserts it.
func (r *FollowSQLite) Toggle(ctx context.Context, followerID, followeeID string, now time.Time) (bool, error) {
	var following bool
	err := withTx(ctx, r.db, func(tx DBTX) error {
		res, err := tx.ExecContext(ctx, deleteFollowSQL, followerID, followeeID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n > 0 {
			following = false
			return nil
		}
		if _, err := tx.ExecContext(ctx, insertFollowSQL, followerID, followeeID, toUnix(nowOr(now))); err != nil {
			return err
		}
		following = true
		return nil
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, fmt.Errorf("toggle follow %q -> %q: %w", followerID, followeeID, ErrMissingReference)
		}
		return false, fmt.Errorf("toggle follow %q -> %q: %w", followerID, followeeID, err)
	}
	return following, nil
}

func (r *FollowSQLite) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, existsFollowSQL, followerID, followeeID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("select follow %q -> %q: %w", followerID, followeeID, err)
	}
	return true, nil
}

func (r *FollowSQLite) Followers(ctx context.Context, userID string) ([]string, error) {
	return r.ids(ctx, selectFollowersSQL, userID)
}

func (r *FollowSQLite) Following(ctx context.Context, userID string) ([]string, error) {
	return r.ids(ctx, selectFollowingSQL, userID)
}

func (r *FollowSQLite) FollowerCount(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countFollowersSQL, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count followers of %q: %w", userID, err)
	}
	return n, nil
}

func (r *FollowSQLite) ids(ctx context.Context, query, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("select edges of %q: %w", userID, err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Leaderboard ranks users by follower count; equal counts are ordered by id.
func (r *FollowSQLite) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	rows, err := r.db.QueryContext(ctx, selectLeaderboardSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("select leaderboard: %w", err)
	}
	defer rows.Close()

	out := make([]models.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.ID, &e.Username, &e.FollowerCount); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
