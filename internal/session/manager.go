package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/cavos-labs/forma-app/internal/upstream"
	"github.com/golang-jwt/jwt/v5"
)

const (
	jwtIssuer = "forma-gateway"

	// CookieName carries the signed session token.
	CookieName = "forma_session"

	durableTokenTTL = 30 * 24 * time.Hour
	browserTokenTTL = 24 * time.Hour
)

type tokenClaims struct {
	SessionID string `json:"sid"`
	Scope     Scope  `json:"scope"`
	jwt.RegisteredClaims
}

// Manager owns both session scopes and the signed cookie that binds a
// browser to its server-side session.
type Manager struct {
	durable Store
	browser Store
	secret  string
}

func NewManager(durable, browser Store, secret string) *Manager {
	return &Manager{durable: durable, browser: browser, secret: secret}
}

func (m *Manager) storeFor(scope Scope) Store {
	if scope == ScopeDurable {
		return m.durable
	}
	return m.browser
}

// Create stores a new session in the scope chosen by rememberMe and returns
// it with a signed token for the cookie.
func (m *Manager) Create(ctx context.Context, user upstream.User, gym upstream.Gym, rememberMe bool) (*Session, string, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, "", err
	}

	s := &Session{
		ID:         id,
		User:       user,
		Gym:        gym,
		RememberMe: rememberMe,
		CreatedAt:  time.Now(),
	}

	if err := m.storeFor(s.Scope()).Save(ctx, s); err != nil {
		return nil, "", err
	}

	token, err := m.signToken(s)
	if err != nil {
		return nil, "", err
	}
	return s, token, nil
}

// Resolve validates a cookie token and loads its session. No upstream call
// is made; restoring identity is purely a store read.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	claims, err := m.parseToken(token)
	if err != nil {
		return nil, err
	}
	return m.storeFor(claims.Scope).Get(ctx, claims.SessionID)
}

func (m *Manager) Delete(ctx context.Context, s *Session) error {
	return m.storeFor(s.Scope()).Delete(ctx, s.ID)
}

// SetGymActive flips the stored gym to active after checkout, mirroring the
// refreshGymStatus flow on the success view.
func (m *Manager) SetGymActive(ctx context.Context, s *Session) error {
	s.Gym.IsActive = true
	return m.storeFor(s.Scope()).Save(ctx, s)
}

// UpdateGym replaces the stored gym snapshot.
func (m *Manager) UpdateGym(ctx context.Context, s *Session, gym upstream.Gym) error {
	s.Gym = gym
	return m.storeFor(s.Scope()).Save(ctx, s)
}

// SavePrefs stores preferences under the user, not the session, in the
// durable scope. Signing out deletes the session but never the prefs.
func (m *Manager) SavePrefs(ctx context.Context, s *Session, p Prefs) error {
	return m.durable.SavePrefs(ctx, s.User.ID, p)
}

func (m *Manager) Prefs(ctx context.Context, s *Session) (Prefs, error) {
	return m.durable.Prefs(ctx, s.User.ID)
}

// CookieMaxAge is the Max-Age for the session cookie: 0 makes it a browser
// session cookie, matching the sessionStorage scope.
func CookieMaxAge(rememberMe bool) int {
	if rememberMe {
		return int(durableTokenTTL / time.Second)
	}
	return 0
}

func (m *Manager) signToken(s *Session) (string, error) {
	if m.secret == "" {
		return "", errors.New("session secret cannot be empty")
	}

	ttl := browserTokenTTL
	if s.RememberMe {
		ttl = durableTokenTTL
	}

	now := time.Now()
	claims := &tokenClaims{
		SessionID: s.ID,
		Scope:     s.Scope(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secret))
}

func (m *Manager) parseToken(tokenString string) (*tokenClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&tokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(m.secret), nil
		},
		jwt.WithIssuer(jwtIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func newSessionID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
