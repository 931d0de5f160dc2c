package session

import (
	"context"
	"sync"
)

// Store persists sessions and preferences for one scope.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	SavePrefs(ctx context.Context, id string, p Prefs) error
	Prefs(ctx context.Context, id string) (Prefs, error)
}

// MemoryStore is the browser-session scope: sessions vanish when the store
// does. No TTL bookkeeping is needed at this scale.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	prefs    map[string]Prefs
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		prefs:    make(map[string]Prefs),
	}
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *s
	m.sessions[s.ID] = &copied
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *s
	return &copied, nil
}

// Delete removes a session. Preferences are keyed by user and kept.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) SavePrefs(_ context.Context, id string, p Prefs) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[id] = p
	return nil
}

func (m *MemoryStore) Prefs(_ context.Context, id string) (Prefs, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.prefs[id]
	if !ok {
		return DefaultPrefs(), nil
	}
	return p, nil
}

// Clear drops everything, ending every browser-scoped session at once.
func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]*Session)
	m.prefs = make(map[string]Prefs)
}
