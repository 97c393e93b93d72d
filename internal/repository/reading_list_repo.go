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

type ReadingListSQLite struct {
	db *sql.DB
}

func NewReadingListSQLite(db *sql.DB) *ReadingListSQLite { return &ReadingListSQLite{db: db} }

var _ ReadingLists = (*ReadingListSQLite)(nil)

const (
	selectListsSQL = `SELECT rl.id, rl.name, rlp.post_id
		FROM reading_lists rl
		LEFT JOIN reading_list_posts rlp ON rlp.list_id = rl.id
		WHERE rl.user_id = ?
		ORDER BY rl.created_at, rl.rowid, rlp.added_at, rlp.rowid`

	selectDefaultListSQL = `SELECT id FROM reading_lists WHERE user_id = ? AND name = ?
		ORDER BY created_at, rowid LIMIT 1`

	deleteListPostSQL = `DELETE FROM reading_list_posts WHERE list_id = ? AND post_id = ?`
	insertListPostSQL = `INSERT INTO reading_list_posts (list_id, post_id, added_at) VALUES (?, ?, ?)`

	isSavedSQL = `SELECT 1 FROM reading_list_posts
		WHERE post_id = ? AND list_id = (` + selectDefaultListSQL + `)`

	selectLibrarySQL = `SELECT rl.id, rl.name, p.id, p.title, p.author_id, u.username, p.created_at,
		(SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.id)
		FROM reading_lists rl
		LEFT JOIN reading_list_posts rlp ON rlp.list_id = rl.id
		LEFT JOIN posts p ON p.id = rlp.post_id
		LEFT JOIN users u ON u.id = p.author_id
		WHERE rl.user_id = ?
		ORDER BY rl.created_at, rl.rowid, rlp.added_at, rlp.rowid`
)

// Create adds an empty list. Names need not be unique.
func (r *ReadingListSQLite) Create(ctx context.Context, userID, name string, now time.Time) error {
	_, err := r.db.ExecContext(ctx, insertReadingListSQL, uuid.NewString(), userID, name, toUnix(nowOr(now)))
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert list for %q: %w", userID, ErrMissingReference)
		}
		return fmt.Errorf("insert list for %q: %w", userID, err)
	}
	return nil
}

// ListByUser returns the user's lists in creation order, each with its post
// ids in the order they were saved.
func (r *ReadingListSQLite) ListByUser(ctx context.Context, userID string) ([]models.ReadingList, error) {
	rows, err := r.db.QueryContext(ctx, selectListsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("select lists of %q: %w", userID, err)
	}
	defer rows.Close()

	lists := make([]models.ReadingList, 0, 2)
	for rows.Next() {
		var (
			id, name string
			postID   sql.NullString
		)
		if err := rows.Scan(&id, &name, &postID); err != nil {
			return nil, err
		}
		if n := len(lists); n == 0 || lists[n-1].ID != id {
			lists = append(lists, models.ReadingList{ID: id, Name: name, PostIDs: []string{}})
		}
		if postID.Valid {
			last := &lists[len(lists)-1]
			last.PostIDs = append(last.PostIDs, postID.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lists, nil
}

func (r *ReadingListSQLite) ToggleDefault(ctx context.Context, userID, postID string, now time.Time) (bool, error) {
	now = nowOr(now)
	var saved bool
	err := withTx(ctx, r.db, func(tx DBTX) error {
		var listID string
		err := tx.QueryRowContext(ctx, selectDefaultListSQL, userID, models.DefaultReadingList).Scan(&listID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			listID = uuid.NewString()
			if _, err := tx.ExecContext(ctx, insertReadingListSQL, listID, userID, models.DefaultReadingList, toUnix(now)); err != nil {
				return err
			}
		case err != nil:
			return err
		}

		res, err := tx.ExecContext(ctx, deleteListPostSQL, listID, postID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx, insertListPostSQL, listID, postID, toUnix(now)); err != nil {
			return err
		}
		saved = true
		return nil
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, fmt.Errorf("toggle save %q for %q: %w", postID, userID, ErrMissingReference)
		}
		return false, fmt.Errorf("toggle save %q for %q: %w", postID, userID, err)
	}
	return saved, nil
}

// IsSaved reports whether postID is in the user's default list.
func (r *ReadingListSQLite) IsSaved(ctx context.Context, userID, postID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, isSavedSQL, postID, userID, models.DefaultReadingList).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("select saved %q for %q: %w", postID, userID, err)
	}
	return true, nil
}

// Library resolves every list of the user into post summaries.
func (r *ReadingListSQLite) Library(ctx context.Context, userID string) ([]models.LibraryList, error) {
	rows, err := r.db.QueryContext(ctx, selectLibrarySQL, userID)
	if err != nil {
		return nil, fmt.Errorf("select library of %q: %w", userID, err)
	}
	defer rows.Close()

	lists := make([]models.LibraryList, 0, 2)
	for rows.Next() {
		var (
			listID, name                      string
			postID, title, authorID, username sql.NullString
			createdAt                         sql.NullInt64
			likeCount                         int
		)
		if err := rows.Scan(&listID, &name, &postID, &title, &authorID, &username, &createdAt, &likeCount); err != nil {
			return nil, err
		}
		if n := len(lists); n == 0 || lists[n-1].ID != listID {
			lists = append(lists, models.LibraryList{ID: listID, Name: name, Posts: []models.PostSummary{}})
		}
		if !postID.Valid {
			continue
		}
		last := &lists[len(lists)-1]
		last.Posts = append(last.Posts, models.PostSummary{
			ID:        postID.String,
			Title:     title.String,
			Author:    models.Author{ID: authorID.String, Username: username.String},
			LikeCount: likeCount,
			CreatedAt: fromUnix(createdAt.Int64),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lists, nil
}
