package membership

import (
	"errors"

	"github.com/cavos-labs/forma-app/internal/search"
	"github.com/cavos-labs/forma-app/internal/upstream"
)

var ErrInvalidStatusFilter = errors.New("invalid status filter")

// StatusFilter is either "all" or one of the membership statuses.
type StatusFilter string

const FilterAll StatusFilter = "all"

// ParseStatusFilter accepts "", "all" or a concrete membership status.
func ParseStatusFilter(s string) (StatusFilter, error) {
	if s == "" || s == string(FilterAll) {
		return FilterAll, nil
	}
	if !upstream.MembershipStatus(s).Valid() {
		return "", ErrInvalidStatusFilter
	}
	return StatusFilter(s), nil
}

// Upstream returns the status to scope the server-side query with; empty
// means unscoped.
func (f StatusFilter) Upstream() upstream.MembershipStatus {
	if f == FilterAll {
		return ""
	}
	return upstream.MembershipStatus(f)
}

func (f StatusFilter) matches(m upstream.Membership) bool {
	return f == FilterAll || m.Status == upstream.MembershipStatus(f)
}

// Counts are the per-tab totals, computed from the unfiltered collection.
type Counts struct {
	All            int `json:"all"`
	Active         int `json:"active"`
	PendingPayment int `json:"pending_payment"`
	Expired        int `json:"expired"`
	Inactive       int `json:"inactive"`
	Cancelled      int `json:"cancelled"`
}

func countByStatus(records []upstream.Membership) Counts {
	c := Counts{All: len(records)}
	for _, m := range records {
		switch m.Status {
		case upstream.MembershipActive:
			c.Active++
		case upstream.MembershipPendingPayment:
			c.PendingPayment++
		case upstream.MembershipExpired:
			c.Expired++
		case upstream.MembershipInactive:
			c.Inactive++
		case upstream.MembershipCancelled:
			c.Cancelled++
		}
	}
	return c
}

// matchesSearch checks the member's full name and email.
func matchesSearch(m upstream.Membership, query string) bool {
	return search.Matches(query,
		m.User.FirstName+" "+m.User.LastName,
		m.User.Email,
	)
}

// Derive is the pure filter composition: status first, then free-text
// search, preserving source order.
func Derive(records []upstream.Membership, status StatusFilter, query string) []upstream.Membership {
	visible := make([]upstream.Membership, 0, len(records))
	for _, m := range records {
		if status.matches(m) && matchesSearch(m, query) {
			visible = append(visible, m)
		}
	}
	return visible
}
