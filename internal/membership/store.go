package membership

import (
	"context"
	"sync"

	"github.com/cavos-labs/forma-app/internal/metrics"
	"github.com/cavos-labs/forma-app/internal/upstream"
)

const defaultPageSize = 100

// Lister is the slice of the upstream client the store depends on.
type Lister interface {
	ListMemberships(ctx context.Context, p upstream.ListMembershipsParams) (*upstream.MembershipsResponse, error)
}

// Config scopes a store to one gym.
type Config struct {
	GymID           string
	PageSize        int
	FallbackOnError bool
}

// Store holds the current membership collection for one operator. A reload
// replaces the collection wholesale; overlapping reloads resolve
// last-write-wins, so the collection always reflects exactly one upstream
// response (or the fallback dataset).
type Store struct {
	client Lister
	cfg    Config

	mu       sync.RWMutex
	records  []upstream.Membership
	loaded   bool
	fallback bool
}

func NewStore(client Lister, cfg Config) *Store {
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	return &Store{client: client, cfg: cfg}
}

// Reload fetches a fresh page scoped by status and replaces the collection.
// The free-text search never reaches the API. On failure the store shows the
// placeholder dataset when FallbackOnError is set, otherwise it empties out;
// either way the error is returned so the caller can surface it.
func (s *Store) Reload(ctx context.Context, status StatusFilter) error {
	resp, err := s.client.ListMemberships(ctx, upstream.ListMembershipsParams{
		GymID:  s.cfg.GymID,
		Limit:  s.cfg.PageSize,
		Offset: 0,
		Status: status.Upstream(),
	})
	if err != nil {
		metrics.RecordReload("memberships", "error")
		s.mu.Lock()
		s.loaded = true
		s.fallback = s.cfg.FallbackOnError
		if s.cfg.FallbackOnError {
			s.records = PlaceholderMemberships()
		} else {
			s.records = nil
		}
		s.mu.Unlock()
		return err
	}

	metrics.RecordReload("memberships", "success")
	s.mu.Lock()
	s.records = resp.Memberships
	s.loaded = true
	s.fallback = false
	s.mu.Unlock()
	return nil
}

// All returns a copy of the current collection in upstream order.
func (s *Store) All() []upstream.Membership {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]upstream.Membership, len(s.records))
	copy(out, s.records)
	return out
}

// Find looks a membership up by ID in the current collection.
func (s *Store) Find(id string) (upstream.Membership, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.records {
		if m.ID == id {
			return m, true
		}
	}
	return upstream.Membership{}, false
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Fallback reports whether the collection currently holds placeholder data.
func (s *Store) Fallback() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fallback
}
