package models

import "time"

// MaxBioLength is the longest bio a user may store.
const MaxBioLength = 160

// User is the canonical stored user. It never leaves the service layer;
// handlers return PublicUser.
type User struct {
	ID               string
	Username         string
	Email            string
	PasswordHash     string
	Bio              string
	ResetToken       string // empty when no reset is pending
	ResetTokenExpiry time.Time
	CreatedAt        time.Time
}

// PublicUser is the only user shape exposed over the API: no password hash,
// no reset token.
type PublicUser struct {
	ID             string        `json:"id"`
	Username       string        `json:"username"`
	Email          string        `json:"email"`
	Bio            string        `json:"bio"`
	Followers      []string      `json:"followers"`
	Following      []string      `json:"following"`
	FollowerCount  int           `json:"followerCount"`
	FollowingCount int           `json:"followingCount"`
	ReadingLists   []ReadingList `json:"readingLists"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// Public projects u together with its graph edges and lists.
func (u User) Public(followers, following []string, lists []ReadingList) PublicUser {
	if followers == nil {
		followers = []string{}
	}
	if following == nil {
		following = []string{}
	}
	if lists == nil {
		lists = []ReadingList{}
	}
	return PublicUser{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Bio:            u.Bio,
		Followers:      followers,
		Following:      following,
		FollowerCount:  len(followers),
		FollowingCount: len(following),
		ReadingLists:   lists,
		CreatedAt:      u.CreatedAt,
	}
}

// LeaderboardEntry is one row of the most-followed ranking.
type LeaderboardEntry struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	FollowerCount int    `json:"followerCount"`
}

// UserStats summarizes a user's reach.
type UserStats struct {
	TotalPosts         int `json:"totalPosts"`
	TotalLikesReceived int `json:"totalLikesReceived"`
	TotalFollowers     int `json:"totalFollowers"`
}
