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

type PostSQLite struct {
	db *sql.DB
}

func NewPostSQLite(db *sql.DB) *PostSQLite { return &PostSQLite{db: db} }

var _ Posts = (*PostSQLite)(nil)

const (
	insertPostSQL = `INSERT INTO posts (id, title, content, author_id, created_at) VALUES (?, ?, ?, ?, ?)`

	selectPostSQL = `SELECT p.seq, p.id, p.title, p.content, p.author_id, u.username, p.created_at,
		(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id)
		FROM posts p JOIN users u ON u.id = p.author_id`

	selectPostByIDSQL = selectPostSQL + ` WHERE p.id = ?`

	listPostsSQL = selectPostSQL + ` WHERE p.seq > ? ORDER BY p.created_at DESC, p.seq DESC`

	selectPostLikesSQL = `SELECT user_id FROM post_likes WHERE post_id = ? ORDER BY created_at, user_id`

	listPostLikesSQL = `SELECT pl.post_id, pl.user_id FROM post_likes pl
		JOIN posts p ON p.id = pl.post_id
		WHERE p.seq > ?
		ORDER BY pl.created_at, pl.user_id`

	listPostCommentsSQL = `SELECT c.id, c.post_id, c.text, c.author_id, u.username, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
		JOIN posts p ON p.id = c.post_id
		WHERE p.seq > ?
		ORDER BY c.created_at, c.rowid`

	existsPostSQL = `SELECT 1 FROM posts WHERE id = ?`

	deleteLikeSQL = `DELETE FROM post_likes WHERE post_id = ? AND user_id = ?`
	insertLikeSQL = `INSERT INTO post_likes (post_id, user_id, created_at) VALUES (?, ?, ?)`
	countLikesSQL = `SELECT COUNT(*) FROM post_likes WHERE post_id = ?`

	insertCommentSQL = `INSERT INTO comments (id, post_id, author_id, text, created_at) VALUES (?, ?, ?, ?, ?)`

	selectCommentsSQL = `SELECT c.id, c.post_id, c.text, c.author_id, u.username, c.created_at
		FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.post_id = ?
		ORDER BY c.created_at, c.rowid`
)

// Create inserts p, filling in ID and CreatedAt when they are empty.
func (r *PostSQLite) Create(ctx context.Context, p *models.Post) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = nowOr(p.CreatedAt)

	res, err := r.db.ExecContext(ctx, insertPostSQL, p.ID, p.Title, p.Content, p.Author.ID, toUnix(p.CreatedAt))
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert post by %q: %w", p.Author.ID, ErrMissingReference)
		}
		return fmt.Errorf("insert post by %q: %w", p.Author.ID, err)
	}
	if p.Seq, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("insert post by %q: %w", p.Author.ID, err)
	}
	p.Likes = []string{}
	p.Comments = []models.Comment{}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(s rowScanner) (models.Post, error) {
	var (
		p         models.Post
		createdAt int64
	)
	if err := s.Scan(&p.Seq, &p.ID, &p.Title, &p.Content, &p.Author.ID, &p.Author.Username, &createdAt, &p.CommentCount); err != nil {
		return models.Post{}, err
	}
	p.CreatedAt = fromUnix(createdAt)
	p.Likes = []string{}
	p.Comments = []models.Comment{}
	return p, nil
}

func scanComment(s rowScanner) (models.Comment, error) {
	var (
		c         models.Comment
		createdAt int64
	)
	if err := s.Scan(&c.ID, &c.PostID, &c.Text, &c.Author.ID, &c.Author.Username, &createdAt); err != nil {
		return models.Comment{}, err
	}
	c.CreatedAt = fromUnix(createdAt)
	return c, nil
}

// GetByID loads the post with its likes and comments.
func (r *PostSQLite) GetByID(ctx context.Context, id string) (*models.Post, error) {
	p, err := scanPost(r.db.QueryRowContext(ctx, selectPostByIDSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select post %q: %w", id, err)
	}

	likes, err := r.likes(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Likes = likes
	p.LikeCount = len(likes)

	comments, err := r.Comments(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Comments = comments
	p.CommentCount = len(comments)
	return &p, nil
}

func (r *PostSQLite) likes(ctx context.Context, postID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, selectPostLikesSQL, postID)
	if err != nil {
		return nil, fmt.Errorf("select likes of %q: %w", postID, err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		out = append(out, uid)
	}
	return out, rows.Err()
}

// List returns posts newest-first with likes and comments. A positive
// afterSeq keeps only posts published after that position.
func (r *PostSQLite) List(ctx context.Context, afterSeq int64) ([]models.Post, error) {
	rows, err := r.db.QueryContext(ctx, listPostsSQL, afterSeq)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	posts := make([]models.Post, 0, 32)
	index := make(map[string]int)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		index[p.ID] = len(posts)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	if len(posts) == 0 {
		return posts, nil
	}

	// later passes run after the previous cursor is closed: the pool has one connection
	if err := r.attachLikes(ctx, afterSeq, posts, index); err != nil {
		return nil, err
	}
	if err := r.attachComments(ctx, afterSeq, posts, index); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostSQLite) attachLikes(ctx context.Context, afterSeq int64, posts []models.Post, index map[string]int) error {
	rows, err := r.db.QueryContext(ctx, listPostLikesSQL, afterSeq)
	if err != nil {
		return fmt.Errorf("list post likes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var postID, userID string
		if err := rows.Scan(&postID, &userID); err != nil {
			return err
		}
		if i, ok := index[postID]; ok {
			posts[i].Likes = append(posts[i].Likes, userID)
			posts[i].LikeCount++
		}
	}
	return rows.Err()
}

func (r *PostSQLite) attachComments(ctx context.Context, afterSeq int64, posts []models.Post, index map[string]int) error {
	rows, err := r.db.QueryContext(ctx, listPostCommentsSQL, afterSeq)
	if err != nil {
		return fmt.Errorf("list post comments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return err
		}
		if i, ok := index[c.PostID]; ok {
			posts[i].Comments = append(posts[i].Comments, c)
		}
	}
	return rows.Err()
}

func (r *PostSQLite) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, existsPostSQL, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("select post %q: %w", id, err)
	}
	return true, nil
}

// ToggleLike removes the (post, user) like if present, otherwise adds it,
// and returns the resulting state and like count.
func (r *PostSQLite) ToggleLike(ctx context.Context, postID, userID string, now time.Time) (bool, int, error) {
	var (
		liked bool
		count int
	)
	err := withTx(ctx, r.db, func(tx DBTX) error {
		res, err := tx.ExecContext(ctx, deleteLikeSQL, postID, userID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			if _, err := tx.ExecContext(ctx, insertLikeSQL, postID, userID, toUnix(nowOr(now))); err != nil {
				return err
			}
			liked = true
		}
		return tx.QueryRowContext(ctx, countLikesSQL, postID).Scan(&count)
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, 0, fmt.Errorf("toggle like %q on %q: %w", userID, postID, ErrMissingReference)
		}
		return false, 0, fmt.Errorf("toggle like %q on %q: %w", userID, postID, err)
	}
	return liked, count, nil
}

// AddComment appends c, filling in ID and CreatedAt when they are empty.
func (r *PostSQLite) AddComment(ctx context.Context, c *models.Comment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = nowOr(c.CreatedAt)

	_, err := r.db.ExecContext(ctx, insertCommentSQL, c.ID, c.PostID, c.Author.ID, c.Text, toUnix(c.CreatedAt))
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert comment on %q: %w", c.PostID, ErrMissingReference)
		}
		return fmt.Errorf("insert comment on %q: %w", c.PostID, err)
	}
	return nil
}

// Comments returns the post's comments oldest-first with author usernames.
func (r *PostSQLite) Comments(ctx context.Context, postID string) ([]models.Comment, error) {
	rows, err := r.db.QueryContext(ctx, selectCommentsSQL, postID)
	if err != nil {
		return nil, fmt.Errorf("select comments of %q: %w", postID, err)
	}
	defer rows.Close()

	out := make([]models.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
