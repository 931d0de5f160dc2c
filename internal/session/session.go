package session

import (
	"errors"
	"time"

	"github.com/cavos-labs/forma-app/internal/upstream"
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrInvalidToken = errors.New("invalid session token")
)

// Scope says which store holds a session: durable survives gateway restarts
// (the "remember me" case), browser lives only as long as the session store.
type Scope string

const (
	ScopeDurable Scope = "durable"
	ScopeBrowser Scope = "browser"
)

// Session is the signed-in operator's identity: the user plus the gym
// (tenant) every membership, payment and workout call is scoped to. It is a
// convenience copy for session continuity, never a source of truth.
type Session struct {
	ID         string        `json:"id"`
	User       upstream.User `json:"user"`
	Gym        upstream.Gym  `json:"gym"`
	RememberMe bool          `json:"remember_me"`
	CreatedAt  time.Time     `json:"created_at"`
}

func (s *Session) Scope() Scope {
	if s.RememberMe {
		return ScopeDurable
	}
	return ScopeBrowser
}

// Prefs holds the operator's language and theme choice, stored under its own
// key so it outlives sign-out.
type Prefs struct {
	Language string `json:"language"`
	Theme    string `json:"theme"`
}

func DefaultPrefs() Prefs {
	return Prefs{Language: "es", Theme: "dark"}
}
