package membership

import (
	"context"
	"sync"

	"github.com/cavos-labs/forma-app/internal/overlay"
	"github.com/cavos-labs/forma-app/internal/upstream"
)

// View is one operator's memberships screen: the backing collection plus the
// filter and overlay state the visible list is derived from. Filters are
// view state, never collection state; changing them cannot corrupt the
// records.
type View struct {
	store   *Store
	overlay *overlay.Coordinator

	mu     sync.Mutex
	status StatusFilter
	query  string
}

func NewView(client Lister, cfg Config) *View {
	return &View{
		store:   NewStore(client, cfg),
		overlay: overlay.NewCoordinator(),
		status:  FilterAll,
	}
}

func (v *View) Overlay() *overlay.Coordinator { return v.overlay }

func (v *View) Store() *Store { return v.store }

// EnsureLoaded performs the initial fetch once; later calls are no-ops.
func (v *View) EnsureLoaded(ctx context.Context) error {
	if v.store.Loaded() {
		return nil
	}
	return v.Refresh(ctx)
}

// Refresh re-fetches the collection under the current status filter.
func (v *View) Refresh(ctx context.Context) error {
	v.mu.Lock()
	status := v.status
	v.mu.Unlock()
	return v.store.Reload(ctx, status)
}

// SetStatus switches the status tab and re-fetches. The search query is left
// untouched and re-applies to the new collection.
func (v *View) SetStatus(ctx context.Context, status StatusFilter) error {
	v.mu.Lock()
	v.status = status
	v.mu.Unlock()
	return v.store.Reload(ctx, status)
}

// SetQuery updates the free-text search. Purely client-side: no fetch.
func (v *View) SetQuery(q string) {
	v.mu.Lock()
	v.query = q
	v.mu.Unlock()
}

func (v *View) Filters() (StatusFilter, string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status, v.query
}

// Visible derives the rendered list from the collection and both filters.
// Deriving mutates nothing, so it is repeatable for free.
func (v *View) Visible() []upstream.Membership {
	status, query := v.Filters()
	return Derive(v.store.All(), status, query)
}

// Counts are computed over the whole collection, not the visible subset.
func (v *View) Counts() Counts {
	return countByStatus(v.store.All())
}
