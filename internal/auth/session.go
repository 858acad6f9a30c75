package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/justsurfingit/job-portal/internal/apperr"
	"github.com/justsurfingit/job-portal/internal/models"
)

// Secret is the HMAC signing key. It never prints its value.
type Secret []byte

func (Secret) String() string   { return "[redacted]" }
func (Secret) GoString() string { return "[redacted]" }

// Identity is who a verified session token says the caller is.
type Identity struct {
	AccountID uuid.UUID
	Role      models.Role
	ExpiresAt time.Time
}

type Session struct {
	Token     string
	ExpiresAt time.Time
}

type sessionClaims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

type SessionManager struct {
	secret Secret
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*SessionManager)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *SessionManager) { m.now = now }
}

func NewSessionManager(secret Secret, ttl time.Duration, opts ...Option) (*SessionManager, error) {
	if len(secret) < 32 {
		return nil, errors.New("session secret must be at least 32 bytes")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	m := &SessionManager{secret: secret, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Issue signs a token for the account. The expiry is truncated to the
// second, matching what the token can carry.
func (m *SessionManager) Issue(accountID uuid.UUID, role models.Role) (Session, error) {
	now := m.now()
	exp := now.Add(m.ttl).Truncate(time.Second)

	claims := sessionClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.secret))
	if err != nil {
		return Session{}, fmt.Errorf("sign session token: %w", err)
	}
	return Session{Token: token, ExpiresAt: exp}, nil
}

// Authenticate verifies the token and returns its identity. Every failure
// (malformed, expired, bad signature, unknown role) is the same
// ErrUnauthenticated.
func (m *SessionManager) Authenticate(token string) (Identity, error) {
	if token == "" {
		return Identity{}, apperr.ErrUnauthenticated
	}

	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(m.secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Identity{}, apperr.ErrUnauthenticated
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, apperr.ErrUnauthenticated
	}
	role, err := models.ParseRole(string(claims.Role))
	if err != nil {
		return Identity{}, apperr.ErrUnauthenticated
	}
	return Identity{AccountID: id, Role: role, ExpiresAt: claims.ExpiresAt.Time}, nil
}
