package payment

import (
	"errors"

	"github.com/cavos-labs/forma-app/internal/search"
	"github.com/cavos-labs/forma-app/internal/upstream"
)

var ErrInvalidStatusFilter = errors.New("invalid status filter")

// StatusFilter is either "all" or one of the payment statuses.
type StatusFilter string

const FilterAll StatusFilter = "all"

func ParseStatusFilter(s string) (StatusFilter, error) {
	if s == "" || s == string(FilterAll) {
		return FilterAll, nil
	}
	if !upstream.PaymentStatus(s).Valid() {
		return "", ErrInvalidStatusFilter
	}
	return StatusFilter(s), nil
}

// Upstream returns the status to scope the server-side query with; empty
// means unscoped.
func (f StatusFilter) Upstream() upstream.PaymentStatus {
	if f == FilterAll {
		return ""
	}
	return upstream.PaymentStatus(f)
}

func (f StatusFilter) matches(p upstream.Payment) bool {
	return f == FilterAll || p.Status == upstream.PaymentStatus(f)
}

// Counts are the per-tab totals over the whole collection.
type Counts struct {
	All       int `json:"all"`
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Cancelled int `json:"cancelled"`
}

func countByStatus(records []upstream.Payment) Counts {
	c := Counts{All: len(records)}
	for _, p := range records {
		switch p.Status {
		case upstream.PaymentPending:
			c.Pending++
		case upstream.PaymentApproved:
			c.Approved++
		case upstream.PaymentRejected:
			c.Rejected++
		case upstream.PaymentCancelled:
			c.Cancelled++
		}
	}
	return c
}

// matchesSearch checks the payer's full name and email plus the SINPE
// transfer reference.
func matchesSearch(p upstream.Payment, query string) bool {
	ref := ""
	if p.SinpeReference != nil {
		ref = *p.SinpeReference
	}
	return search.Matches(query,
		p.User.FirstName+" "+p.User.LastName,
		p.User.Email,
		ref,
	)
}

// Derive is the pure filter composition: status first, then free-text
// search, preserving source order.
func Derive(records []upstream.Payment, status StatusFilter, query string) []upstream.Payment {
	visible := make([]upstream.Payment, 0, len(records))
	for _, p := range records {
		if status.matches(p) && matchesSearch(p, query) {
			visible = append(visible, p)
		}
	}
	return visible
}
