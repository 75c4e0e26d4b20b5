// Package session holds the identity of the acting user and the
// login/logout lifecycle that produces it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/PaulBabatuyi/furgo/internal/auth"
	"github.com/PaulBabatuyi/furgo/internal/data"
	"github.com/PaulBabatuyi/furgo/internal/normalize"
)

var (
	// ErrInvalidCredentials hides whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthenticated is returned for missing, invalid or revoked tokens.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Session is the active user's identifier and role.
type Session struct {
	UserID      string
	Role        data.Role
	DisplayName string
	TokenID     string
	ExpiresAt   time.Time
}

type ctxKey struct{}

// NewContext returns ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by NewContext.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}

// UserFinder looks up accounts by email.
type UserFinder interface {
	GetUserByEmail(ctx context.Context, email string) (*data.User, error)
}

// Manager issues sessions on login and revokes them on logout. Revoked
// token IDs are kept in memory until the token would have expired anyway.
type Manager struct {
	users  UserFinder
	tokens *auth.JWTManager
	logger *slog.Logger

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> expiry
}

// NewManager returns a Manager.
func NewManager(users UserFinder, tokens *auth.JWTManager, logger *slog.Logger) *Manager {
	return &Manager{
		users:   users,
		tokens:  tokens,
		logger:  logger,
		revoked: map[string]time.Time{},
	}
}

// Login checks the credentials and returns a signed token with the
// session it encodes.
func (m *Manager) Login(ctx context.Context, email, password string) (string, *Session, error) {
	user, err := m.users.GetUserByEmail(ctx, normalize.Email(email))
	if errors.Is(err, data.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("find user: %w", err)
	}
	if err := auth.CheckPassword(user.Password, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	return m.Issue(user)
}

// Issue signs a token for user without checking credentials. Used right
// after registration.
func (m *Manager) Issue(user *data.User) (string, *Session, error) {
	token, claims, err := m.tokens.GenerateToken(user.ID, string(user.Role), user.DisplayName())
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	m.logger.Info("session started", "user_id", user.ID, "role", user.Role)
	return token, fromClaims(claims), nil
}

// Authenticate verifies token and returns its session.
func (m *Manager) Authenticate(token string) (*Session, error) {
	claims, err := m.tokens.VerifyToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	m.mu.Lock()
	_, revoked := m.revoked[claims.ID]
	m.mu.Unlock()
	if revoked {
		return nil, fmt.Errorf("%w: session ended", ErrUnauthenticated)
	}
	return fromClaims(claims), nil
}

// Logout revokes the session's token. Logging out twice is not an error.
func (m *Manager) Logout(s *Session) {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for jti, exp := range m.revoked {
		if exp.Before(now) {
			delete(m.revoked, jti)
		}
	}
	m.revoked[s.TokenID] = s.ExpiresAt
	m.logger.Info("session ended", "user_id", s.UserID)
}

func fromClaims(c *auth.Claims) *Session {
	s := &Session{
		UserID:      c.UserID,
		Role:        data.Role(c.Role),
		DisplayName: c.Name,
		TokenID:     c.ID,
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s
}
