package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"mediumish/internal/models"
	"mediumish/internal/notify"
	"mediumish/internal/repository"
	"mediumish/internal/session"
)

const (
	// DefaultResetTokenTTL bounds how long a password reset link stays usable.
	DefaultResetTokenTTL = time.Hour

	resetTokenBytes = 32
	resetSubject    = "Password Reset Request"
)

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Username string `json:"username"`
	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int64 `json:"expiresIn"`
}

// AuthService handles user auth logic
type AuthService struct {
	users    repository.Users
	issuer   *session.Issuer
	notifier notify.Notifier
	resetURL string
	resetTTL time.Duration
	cost     int
	now      func() time.Time
}

func NewAuthService(users repository.Users, cfg Config) *AuthService {
	cfg = cfg.withDefaults()
	return &AuthService{
		users:    users,
		issuer:   cfg.Issuer,
		notifier: cfg.Notifier,
		resetURL: cfg.ResetURL,
		resetTTL: cfg.ResetTokenTTL,
		cost:     cfg.BcryptCost,
		now:      cfg.Now,
	}
}

// Register hashes the password and creates the user with its default
// reading list. The store's unique constraints decide concurrent races.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, error) {
	username := strings.TrimSpace(in.Username)
	email := normalizeEmail(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return "", ErrMissingCredentials
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return "", err
	}

	u := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", ErrUserExists
		}
		return "", err
	}
	return u.ID, nil
}

// Login validates credentials and returns a signed token. Unknown email and
// wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return LoginResult{}, err
	}
	if u == nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(identityOf(u))
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{
		Token:     token,
		UserID:    u.ID,
		Email:     u.Email,
		Username:  u.Username,
		ExpiresIn: int64(s.issuer.TTL() / time.Second),
	}, nil
}

// RequestPasswordReset stores a fresh token, replacing any previous one, and
// mails the reset link. Delivery is attempted once.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if u == nil {
		return ErrEmailNotFound
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}
	if err := s.users.SetResetToken(ctx, u.ID, token, s.now().Add(s.resetTTL)); err != nil {
		return err
	}

	body := "Click this link to reset your password: " + s.resetLink(token)
	if err := s.notifier.Send(u.Email, resetSubject, body); err != nil {
		return fmt.Errorf("%w: %w", ErrSendResetEmail, err)
	}
	return nil
}

// CompletePasswordReset consumes token. The match, the expiry check and the
// clearing happen in one statement, so a token works at most once.
func (s *AuthService) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" {
		return ErrResetTokenInvalid
	}
	if newPassword == "" {
		return ErrPasswordRequired
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	ok, err := s.users.ResetPassword(ctx, token, hash, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrResetTokenInvalid
	}
	return nil
}

// ParseToken verifies accessToken and returns the identity it carries.
func (s *AuthService) ParseToken(accessToken string) (session.Identity, error) {
	return s.issuer.Verify(accessToken)
}

func (s *AuthService) resetLink(token string) string {
	sep := "?"
	if strings.Contains(s.resetURL, "?") {
		sep = "&"
	}
	return s.resetURL + sep + "token=" + token
}

func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func newResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func identityOf(u *models.User) session.Identity {
	return session.Identity{UserID: u.ID, Email: u.Email, Username: u.Username}
}
