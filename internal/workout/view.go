package workout

import (
	"context"
	"sync"
	"time"

	"github.com/cavos-labs/forma-app/internal/metrics"
	"github.com/cavos-labs/forma-app/internal/upstream"
)

// Lister is the slice of the upstream client the calendar depends on.
type Lister interface {
	ListWorkouts(ctx context.Context, p upstream.ListWorkoutsParams) (*upstream.WorkoutsResponse, error)
}

// View is one operator's workout calendar: the displayed month plus that
// month's workouts. Mutations re-fetch the month so the grid always reflects
// the API's view.
type View struct {
	client Lister
	gymID  string

	mu       sync.RWMutex
	year     int
	month    time.Month
	workouts []upstream.DailyWorkout
	loaded   bool
}

func NewView(client Lister, gymID string, now time.Time) *View {
	return &View{
		client: client,
		gymID:  gymID,
		year:   now.Year(),
		month:  now.Month(),
	}
}

func (v *View) Month() (int, time.Month) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.year, v.month
}

// SetMonth jumps the calendar to a month and fetches it.
func (v *View) SetMonth(ctx context.Context, year int, month time.Month) error {
	v.mu.Lock()
	v.year = year
	v.month = month
	v.mu.Unlock()
	return v.Refresh(ctx)
}

// EnsureLoaded performs the initial fetch once; later calls are no-ops.
func (v *View) EnsureLoaded(ctx context.Context) error {
	v.mu.RLock()
	loaded := v.loaded
	v.mu.RUnlock()
	if loaded {
		return nil
	}
	return v.Refresh(ctx)
}

// Refresh re-fetches the displayed month.
func (v *View) Refresh(ctx context.Context) error {
	year, month := v.Month()
	resp, err := v.client.ListWorkouts(ctx, upstream.ListWorkoutsParams{
		GymID: v.gymID,
		Year:  year,
		Month: int(month),
	})
	if err != nil {
		metrics.RecordReload("workouts", "error")
		v.mu.Lock()
		v.workouts = nil
		v.loaded = true
		v.mu.Unlock()
		return err
	}

	metrics.RecordReload("workouts", "success")
	v.mu.Lock()
	v.workouts = resp.Workouts
	v.loaded = true
	v.mu.Unlock()
	return nil
}

// Workouts returns a copy of the displayed month's workouts.
func (v *View) Workouts() []upstream.DailyWorkout {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]upstream.DailyWorkout, len(v.workouts))
	copy(out, v.workouts)
	return out
}

// Grid lays the displayed month out as calendar cells.
func (v *View) Grid(today time.Time) []Cell {
	year, month := v.Month()
	return MonthGrid(year, month, v.Workouts(), today)
}

// Find returns the displayed month's workout on a date, if any.
func (v *View) Find(date string) (upstream.DailyWorkout, bool) {
	return FindByDate(v.Workouts(), date)
}
