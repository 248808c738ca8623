// Package memstore is the in-memory fallback store, selected when the
// durable store cannot be opened at startup. It implements the same
// repository contracts with the same semantics, guarded by a single
// read-write mutex, and comes seeded with a handful of sample issues so the
// board is usable out of the box. Data does not survive a restart.
package memstore

import (
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/SENODROOM/PublicBoard-Backend/internal/model"
	"github.com/SENODROOM/PublicBoard-Backend/internal/repository"
)

var (
	_ repository.IssueRepository    = (*Store)(nil)
	_ repository.UserRepository     = (*Store)(nil)
	_ repository.DonationRepository = (*Store)(nil)
)

// Store holds all records behind one mutex. Every method copies on the way
// in and on the way out so callers can never alias internal state.
type Store struct {
	mu        sync.RWMutex
	issues    map[string]*model.Issue
	users     map[string]*model.User
	donations map[string]*model.Donation
}

// New returns a store seeded with sample issues.
func New() *Store {
	s := &Store{
		issues:    make(map[string]*model.Issue),
		users:     make(map[string]*model.User),
		donations: make(map[string]*model.Donation),
	}
	s.seed()
	return s
}

// NewEmpty returns a store with no seed data, for tests.
func NewEmpty() *Store {
	return &Store{
		issues:    make(map[string]*model.Issue),
		users:     make(map[string]*model.User),
		donations: make(map[string]*model.Donation),
	}
}

func (s *Store) seed() {
	now := time.Now()
	days := func(n int) time.Time { return now.Add(-time.Duration(n) * 24 * time.Hour) }

	resolvedAt := days(1)
	samples := []model.Issue{
		{
			Title:       "Broken streetlight on Main Street",
			Description: "The streetlight near the community center has been out for a week. It creates a safety hazard for pedestrians at night.",
			Category:    model.CategoryInfrastructure,
			Location:    "Main Street, near Community Center",
			Status:      model.StatusOpen,
			Reporter:    model.Reporter{Name: "John Smith"},
			CreatedAt:   days(7),
			UpdatedAt:   days(7),
		},
		{
			Title:       "Need more badminton shuttles for community center",
			Description: "The community center badminton court is running low on shuttles. We need about 2 dozen new ones for the upcoming tournament.",
			Category:    model.CategoryCommunity,
			Location:    "Community Center - Sports Hall",
			Status:      model.StatusInProgress,
			Reporter:    model.Reporter{Name: "Sarah Chen"},
			CreatedAt:   days(3),
			UpdatedAt:   days(1),
		},
		{
			Title:       "Pothole on Oak Avenue",
			Description: "Large pothole developing on Oak Avenue near the school. Cars are swerving to avoid it.",
			Category:    model.CategoryInfrastructure,
			Location:    "Oak Avenue, near Lincoln Elementary",
			Status:      model.StatusPendingReview,
			Reporter:    model.Reporter{Name: "Mike Johnson"},
			CreatedAt:   days(5),
			UpdatedAt:   days(2),
		},
		{
			Title:       "Stray cats need food at the park",
			Description: "There are several stray cats near the north entrance of Central Park that appear hungry. Would appreciate if someone could help with cat food.",
			Category:    model.CategoryPersonal,
			Location:    "Central Park, North Entrance",
			Status:      model.StatusResolved,
			Reporter:    model.Reporter{Name: "Emily Davis"},
			ResolvedAt:  &resolvedAt,
			CreatedAt:   days(10),
			UpdatedAt:   days(1),
		},
	}

	for i := range samples {
		issue := samples[i]
		issue.ID = xid.New().String()
		issue.Supporters = []string{}
		issue.Updates = []model.UpdateEntry{}
		s.issues[issue.ID] = &issue
	}
}

func cloneIssue(i *model.Issue) *model.Issue {
	c := *i
	c.Supporters = append([]string{}, i.Supporters...)
	c.Updates = append([]model.UpdateEntry{}, i.Updates...)
	if i.ResolvedAt != nil {
		t := *i.ResolvedAt
		c.ResolvedAt = &t
	}
	return &c
}

func cloneUser(u *model.User) *model.User {
	c := *u
	return &c
}

func cloneDonation(d *model.Donation) *model.Donation {
	c := *d
	return &c
}

func newID() string {
	return xid.New().String()
}

// pageSlice applies the paging window to an already-sorted slice.
func pageSlice[T any](records []T, page repository.Page) []T {
	start := page.Offset()
	if start >= len(records) {
		return []T{}
	}
	end := start + page.Limit
	if end > len(records) {
		end = len(records)
	}
	return append([]T{}, records[start:end]...)
}

func compareStrings(a, b string, desc bool) bool {
	if desc {
		return a > b
	}
	return a < b
}

func compareTimes(a, b time.Time, desc bool) bool {
	if desc {
		return a.After(b)
	}
	return a.Before(b)
}

func compareInts(a, b int, desc bool) bool {
	if desc {
		return a > b
	}
	return a < b
}
