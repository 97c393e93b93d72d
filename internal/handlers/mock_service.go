package handlers

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"mediumish/internal/models"
	"mediumish/internal/service"
	"mediumish/internal/session"
)

// ---- Service Mocks ----

type mockAuth struct {
	registerID  string
	registerErr error
	loginRes    service.LoginResult
	loginErr    error
	forgotErr   error
	resetErr    error
	parseIdent  session.Identity
	parseErr    error

	lastRegister    service.RegisterInput
	lastLoginEmail  string
	lastLoginPass   string
	lastForgotEmail string
	lastResetToken  string
	lastResetPass   string
	lastParseToken  string
}

func (m *mockAuth) Register(_ context.Context, in service.RegisterInput) (string, error) {
	m.lastRegister = in
	return m.registerID, m.registerErr
}
func (m *mockAuth) Login(_ context.Context, email, password string) (service.LoginResult, error) {
	m.lastLoginEmail = email
	m.lastLoginPass = password
	return m.loginRes, m.loginErr
}
func (m *mockAuth) RequestPasswordReset(_ context.Context, email string) error {
	m.lastForgotEmail = email
	return m.forgotErr
}
func (m *mockAuth) CompletePasswordReset(_ context.Context, token, newPassword string) error {
	m.lastResetToken = token
	m.lastResetPass = newPassword
	return m.resetErr
}
func (m *mockAuth) ParseToken(token string) (session.Identity, error) {
	m.lastParseToken = token
	return m.parseIdent, m.parseErr
}

type mockProfiles struct {
	profile  models.PublicUser
	token    string
	stats    models.UserStats
	err      error
	lastID   string
	lastUpd  service.ProfileUpdate
	updCalls int
}

func (m *mockProfiles) GetProfile(_ context.Context, userID string) (models.PublicUser, error) {
	m.lastID = userID
	return m.profile, m.err
}
func (m *mockProfiles) UpdateProfile(_ context.Context, userID string, upd service.ProfileUpdate) (models.PublicUser, string, error) {
	m.lastID = userID
	m.lastUpd = upd
	m.updCalls++
	return m.profile, m.token, m.err
}
func (m *mockProfiles) Stats(_ context.Context, userID string) (models.UserStats, error) {
	m.lastID = userID
	return m.stats, m.err
}

type mockPosts struct {
	mu sync.Mutex

	posts     []models.Post
	since     []models.Post
	detail    models.PostDetail
	likes     int
	comments  []models.Comment
	err       error
	listErr   error
	sinceErr  error
	sinceCall int
	cursors   []int64

	lastQuery  string
	lastPostID string
	lastUserID string
	lastTitle  string
	lastText   string
}

func (m *mockPosts) CreatePost(_ context.Context, authorID, title, content string) (models.Post, error) {
	m.lastUserID = authorID
	m.lastTitle = title
	if m.err != nil {
		return models.Post{}, m.err
	}
	return models.Post{ID: "p1", Title: title, Content: content, Author: models.Author{ID: authorID}}, nil
}
func (m *mockPosts) GetPost(_ context.Context, postID, viewerID string) (models.PostDetail, error) {
	m.lastPostID = postID
	m.lastUserID = viewerID
	return m.detail, m.err
}
func (m *mockPosts) ListPosts(context.Context) ([]models.Post, error) {
	return m.posts, m.listErr
}
func (m *mockPosts) ListPostsAfter(_ context.Context, cursor int64) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinceCall++
	m.cursors = append(m.cursors, cursor)
	if m.sinceCall == 1 {
		return m.since, m.sinceErr
	}
	return nil, m.sinceErr
}
func (m *mockPosts) seenCursors() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.cursors...)
}
func (m *mockPosts) SearchPosts(_ context.Context, query string) ([]models.Post, error) {
	m.lastQuery = query
	return m.posts, m.err
}
func (m *mockPosts) ToggleLike(_ context.Context, postID, userID string) (int, error) {
	m.lastPostID = postID
	m.lastUserID = userID
	return m.likes, m.err
}
func (m *mockPosts) AddComment(_ context.Context, postID, authorID, text string) ([]models.Comment, error) {
	m.lastPostID = postID
	m.lastUserID = authorID
	m.lastText = text
	return m.comments, m.err
}

type mockSocial struct {
	following  bool
	entries    []models.LeaderboardEntry
	err        error
	lastFrom   string
	lastTarget string
	lastLimit  int
}

func (m *mockSocial) ToggleFollow(_ context.Context, followerID, targetID string) (bool, error) {
	m.lastFrom = followerID
	m.lastTarget = targetID
	return m.following, m.err
}
func (m *mockSocial) Leaderboard(_ context.Context, limit int) ([]models.LeaderboardEntry, error) {
	m.lastLimit = limit
	return m.entries, m.err
}

type mockLibrary struct {
	lists      []models.ReadingList
	library    []models.LibraryList
	saved      bool
	err        error
	lastUserID string
	lastPostID string
	lastName   string
}

func (m *mockLibrary) CreateList(_ context.Context, userID, name string) ([]models.ReadingList, error) {
	m.lastUserID = userID
	m.lastName = name
	return m.lists, m.err
}
func (m *mockLibrary) ToggleSave(_ context.Context, userID, postID string) (bool, error) {
	m.lastUserID = userID
	m.lastPostID = postID
	return m.saved, m.err
}
func (m *mockLibrary) GetLibrary(_ context.Context, userID string) ([]models.LibraryList, error) {
	m.lastUserID = userID
	return m.library, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

// authedService returns a Service whose token parser accepts any token as userID.
func authedService(userID string) (*service.Service, *mockAuth) {
	auth := &mockAuth{parseIdent: session.Identity{UserID: userID, Email: userID + "@x.com", Username: userID}}
	return &service.Service{Authorization: auth}, auth
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
