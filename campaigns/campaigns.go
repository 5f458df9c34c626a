// Package campaigns consumes the backend's campaign (petition) API and
// provides the client-side filtering and sorting the campaign list page is
// built on.
package campaigns

import (
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
)

// Status is a campaign's lifecycle state as reported by the backend.
type Status string

const (
	// StatusPending means the campaign awaits admin approval.
	StatusPending Status = "pending"
	// StatusOpen means the campaign is collecting signatures.
	StatusOpen Status = "open"
	// StatusClosed means the campaign no longer accepts signatures.
	StatusClosed Status = "closed"
)

// Campaign is one petition as returned by the list endpoint.
type Campaign struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	Status         Status     `json:"status"`
	Anonymous      bool       `json:"anonymous"`
	SignatureCount int        `json:"signature_count"`
	SignedByCaller bool       `json:"signed_by_caller"`
	CreatedAt      time.Time  `json:"created_at"`
	Deadline       *time.Time `json:"deadline,omitempty"`
}

// Draft is the payload for creating a campaign.
type Draft struct {
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Anonymous bool       `json:"anonymous"`
	Deadline  *time.Time `json:"deadline,omitempty"`
}

// Validate will run validation rules
func (d Draft) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Title, validation.Required, validation.Length(3, 200)),
		validation.Field(&d.Content, validation.Required),
	)
}

// Filter selects campaigns client-side. The zero value matches everything;
// Status narrows to one lifecycle state and Query does a case-insensitive
// substring match over titles.
type Filter struct {
	Status Status
	Query  string
}

// Match reports whether the campaign passes the filter.
func (f Filter) Match(c Campaign) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Query != "" && !strings.Contains(strings.ToLower(c.Title), strings.ToLower(f.Query)) {
		return false
	}
	return true
}

// Apply returns the campaigns passing the filter, preserving input order.
func Apply(list []Campaign, f Filter) []Campaign {
	out := make([]Campaign, 0, len(list))
	for _, c := range list {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

// SortOrder names a campaign list ordering.
type SortOrder string

const (
	// SortNewest orders by creation time, most recent first.
	SortNewest SortOrder = "newest"
	// SortDeadline orders by deadline, soonest first; campaigns without a
	// deadline sort last.
	SortDeadline SortOrder = "deadline"
	// SortMostSigned orders by signature count, highest first.
	SortMostSigned SortOrder = "most_signed"
)

// Sort returns a sorted copy of the list. The sort is stable so equal
// elements keep their fetched order; an unknown order returns the copy
// unchanged.
func Sort(list []Campaign, order SortOrder) []Campaign {
	out := make([]Campaign, len(list))
	copy(out, list)

	switch order {
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	case SortDeadline:
		sort.SliceStable(out, func(i, j int) bool {
			di, dj := out[i].Deadline, out[j].Deadline
			switch {
			case di == nil:
				return false
			case dj == nil:
				return true
			default:
				return di.Before(*dj)
			}
		})
	case SortMostSigned:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].SignatureCount > out[j].SignatureCount
		})
	}

	return out
}
