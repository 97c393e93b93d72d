package models

import "time"

// Author is the display projection of a post or comment author.
type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Post is a published article with its likes and comments. Likes and
// Comments are never nil once loaded from the store.
type Post struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Author       Author    `json:"author"`
	Likes        []string  `json:"likes"`
	LikeCount    int       `json:"likeCount"`
	Comments     []Comment `json:"comments"`
	CommentCount int       `json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
	// Seq is the store's publication order, used as the live feed cursor.
	Seq int64 `json:"-"`
}

// Comment is embedded in exactly one post.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"-"`
	Text      string    `json:"text"`
	Author    Author    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostDetail is a post as seen by a particular viewer.
type PostDetail struct {
	Post
	AuthorFollowerCount int  `json:"authorFollowerCount"`
	IsLiked             bool `json:"isLiked"`
	IsSaved             bool `json:"isSaved"`
	IsFollowingAuthor   bool `json:"isFollowingAuthor"`
}

// PostSummary is how a post appears inside a reading list.
type PostSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    Author    `json:"author"`
	LikeCount int       `json:"likeCount"`
	CreatedAt time.Time `json:"createdAt"`
}
