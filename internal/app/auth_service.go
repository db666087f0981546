// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"time"

	"timetrack/internal/domain"

	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates that the provided email or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrEmailTaken indicates that the email is already registered.
	ErrEmailTaken = errors.New("a user with that email already exists")
)

const (
	sessionTTL = 7 * 24 * time.Hour
	bcryptCost = 12
)

// dummyHash is a structurally valid cost-12 bcrypt hash. When a login
// targets an unknown email (or an SSO account without a password) we
// still run one comparison against it, so response timing does not
// reveal whether the email exists.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// AuthService handles registration, authentication and session management.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	clock    clockwork.Clock
}

// NewAuthService creates a new authentication service.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository, clock clockwork.Clock) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		clock:    clock,
	}
}

// Register creates a new user account. The email is normalised before
// storage; the password is hashed and never kept in plain text.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*domain.Identity, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, invalid("email", "invalid email address")
	}
	if len(password) < 6 {
		return nil, invalid("password", "password must be at least 6 characters")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, email, strings.TrimSpace(name), string(hash))
	if errors.Is(err, domain.ErrEmailExists) {
		// Lost a race with a concurrent registration for the same email.
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return user.Identity(), nil
}

// Authenticate checks an email/password pair and returns the matching
// identity. Wrong credentials are ErrInvalidCredentials, never a
// storage fault; only genuine store failures propagate as other errors.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.Identity, error) {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	hash := dummyHash
	if user != nil && user.PasswordHash != "" {
		hash = user.PasswordHash
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil || user == nil || user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	return user.Identity(), nil
}

// CreateSession issues a new opaque session token for the user. If
// persistence fails no token is returned, so the caller never hands a
// dangling credential to the client.
func (s *AuthService) CreateSession(ctx context.Context, userID int64) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	expiresAt := s.clock.Now().Add(sessionTTL)
	if err := s.sessions.Create(ctx, userID, token, expiresAt); err != nil {
		return "", err
	}
	return token, nil
}

// ValidateSession resolves a session token to the owner's identity.
// Expired sessions are deleted on sight; a best-effort sweep removes
// all expired rows before each lookup and never blocks validation.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	now := s.clock.Now()
	if err := s.sessions.DeleteExpiredBefore(ctx, now); err != nil {
		slog.WarnContext(ctx, "expired session sweep failed", "error", err)
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if now.After(session.ExpiresAt) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}

	return user.Identity(), nil
}

// DeleteSession invalidates a session. Deleting an absent token is not
// an error.
func (s *AuthService) DeleteSession(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// LoginWithSSO creates a session for an externally authenticated email
// (e.g. a verified OIDC claim), provisioning the account on first
// login. SSO accounts carry an empty password hash and cannot be
// logged into with a password.
func (s *AuthService) LoginWithSSO(ctx context.Context, email, name string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", invalid("email", "email claim is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		user, err = s.users.Create(ctx, email, strings.TrimSpace(name), "")
		if errors.Is(err, domain.ErrEmailExists) {
			// Concurrent first login for the same account.
			user, err = s.users.GetByEmail(ctx, email)
		}
		if err != nil {
			return "", err
		}
		if user == nil {
			return "", ErrInvalidCredentials
		}
	}

	return s.CreateSession(ctx, user.ID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
