package payment

import (
	"context"
	"sync"

	"github.com/cavos-labs/forma-app/internal/metrics"
	"github.com/cavos-labs/forma-app/internal/upstream"
)

const defaultPageSize = 100

// Lister is the slice of the upstream client the store depends on.
type Lister interface {
	ListPayments(ctx context.Context, p upstream.ListPaymentsParams) (*upstream.PaymentsResponse, error)
}

// Config scopes a store to one gym.
type Config struct {
	GymID    string
	PageSize int
}

// Store holds the current payment collection for one operator. Unlike the
// membership store there is no placeholder fallback: a failed reload leaves
// an empty collection so the review queue never shows stale or invented
// records.
type Store struct {
	client Lister
	cfg    Config

	mu      sync.RWMutex
	records []upstream.Payment
	loaded  bool
}

func NewStore(client Lister, cfg Config) *Store {
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	return &Store{client: client, cfg: cfg}
}

// Reload fetches a fresh page scoped by status and replaces the collection
// wholesale. Overlapping reloads resolve last-write-wins.
func (s *Store) Reload(ctx context.Context, status StatusFilter) error {
	resp, err := s.client.ListPayments(ctx, upstream.ListPaymentsParams{
		GymID:  s.cfg.GymID,
		Limit:  s.cfg.PageSize,
		Offset: 0,
		Status: status.Upstream(),
	})
	if err != nil {
		metrics.RecordReload("payments", "error")
		s.mu.Lock()
		s.records = nil
		s.loaded = true
		s.mu.Unlock()
		return err
	}

	metrics.RecordReload("payments", "success")
	s.mu.Lock()
	s.records = resp.Payments
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// All returns a copy of the current collection in upstream order.
func (s *Store) All() []upstream.Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]upstream.Payment, len(s.records))
	copy(out, s.records)
	return out
}

// Find looks a payment up by ID in the current collection.
func (s *Store) Find(id string) (upstream.Payment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.records {
		if p.ID == id {
			return p, true
		}
	}
	return upstream.Payment{}, false
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}
