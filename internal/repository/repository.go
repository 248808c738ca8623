// Package repository defines the store adapter contract: a uniform set of
// find/get/create/update/delete operations implemented by two interchangeable
// backends — the durable sqlite store and the in-memory fallback store.
// Callers depend only on these interfaces; which backend is live is decided
// once at startup (see Stores).
package repository

import (
	"context"

	"github.com/SENODROOM/PublicBoard-Backend/internal/model"
)

// Filter is a conjunction of optional issue predicates. Search matches as a
// case-insensitive substring over title, description, location, and reporter
// name. Zero values mean "no constraint".
type Filter struct {
	Status         string
	Category       string
	Search         string
	ReporterUserID string
}

// Sort names a whitelisted field with an optional descending flag.
// The zero value means "createdAt descending".
type Sort struct {
	Field string
	Desc  bool
}

// DefaultSort is applied when the caller supplies no sort.
var DefaultSort = Sort{Field: "createdAt", Desc: true}

// Page carries the pagination request. Normalize applies the documented
// defaults (page 1, limit 20) and clamps the limit.
type Page struct {
	Page  int
	Limit int
}

// MaxPageLimit caps how many records one page may request.
const MaxPageLimit = 100

// Normalize returns a copy with defaults applied.
func (p Page) Normalize() Page {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Offset returns the number of records to skip for this page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PagedIssues is one page of an issue listing plus the paging envelope.
type PagedIssues struct {
	Records    []model.Issue
	Total      int
	Page       int
	TotalPages int
}

// PagedUsers is one page of a user listing.
type PagedUsers struct {
	Records    []model.User
	Total      int
	Page       int
	TotalPages int
}

// PagedDonations is one page of a donation listing.
type PagedDonations struct {
	Records    []model.Donation
	Total      int
	Page       int
	TotalPages int
}

// TotalPages computes the page count for a total at the given limit.
func TotalPages(total, limit int) int {
	if total == 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// IssueRepository is the store adapter for issues. Both implementations must
// behave identically: same validation failures, same filter and sort
// semantics, same not-found signaling via apperror.ErrNotFound.
//
// ApplyStatus and ToggleSupport are single atomic read-modify-write
// operations on one issue: the fallback store runs them under its write
// lock, the durable store inside a transaction.
type IssueRepository interface {
	Find(ctx context.Context, filter Filter, sort Sort) ([]model.Issue, error)
	FindPage(ctx context.Context, filter Filter, sort Sort, page Page) (*PagedIssues, error)
	GetByID(ctx context.Context, id string) (*model.Issue, error)
	// Create assigns the ID and timestamps, defaults the status to Open, and
	// rejects invalid input with a ValidationError before persisting anything.
	Create(ctx context.Context, issue *model.Issue) error
	// ApplyStatus sets the status, stamps ResolvedAt when entering Resolved,
	// appends entry to the update log when non-nil, refreshes UpdatedAt, and
	// returns the updated issue.
	ApplyStatus(ctx context.Context, id, status string, entry *model.UpdateEntry) (*model.Issue, error)
	// ToggleSupport adds userID to the supporters set if absent, removes it
	// if present, recomputes SupportCount from the set, and reports whether
	// the user supports the issue after the call.
	ToggleSupport(ctx context.Context, id, userID string) (*model.Issue, bool, error)
	Delete(ctx context.Context, id string) error
	// BulkStatus and BulkDelete apply per-record; partial application on
	// partial failure is acceptable. The returned count is the number of
	// records actually matched.
	BulkStatus(ctx context.Context, ids []string, status string) (int, error)
	BulkDelete(ctx context.Context, ids []string) (int, error)
}

// UserFilter constrains user listings.
type UserFilter struct {
	Role   string
	Search string // substring over name and email
}

// UserRepository is the store adapter for accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	FindUserPage(ctx context.Context, filter UserFilter, sort Sort, page Page) (*PagedUsers, error)
	UpdateRole(ctx context.Context, id, role string) (*model.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	DeleteUser(ctx context.Context, id string) error
}

// DonationFilter constrains donation listings.
type DonationFilter struct {
	Status string
}

// DonationRepository is the store adapter for donations.
type DonationRepository interface {
	CreateDonation(ctx context.Context, donation *model.Donation) error
	// ListCompleted returns completed donations, newest first.
	ListCompleted(ctx context.Context) ([]model.Donation, error)
	FindDonationPage(ctx context.Context, filter DonationFilter, sort Sort, page Page) (*PagedDonations, error)
}

// DonationStats aggregates completed donations.
type DonationStats struct {
	TotalRaised   float64 `json:"totalRaised"`
	DonationCount int     `json:"donationCount"`
	AvgDonation   float64 `json:"avgDonation"`
}

// IssueStats counts issues per status.
type IssueStats struct {
	Total         int `json:"total"`
	Open          int `json:"open"`
	InProgress    int `json:"inProgress"`
	PendingReview int `json:"pendingReview"`
	Resolved      int `json:"resolved"`
}

// CategoryCount is one bucket of the per-category breakdown.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// MonthCount is one bucket of the month-over-month creation trend.
type MonthCount struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Count int `json:"count"`
}

// Overview is the admin dashboard rollup.
type Overview struct {
	TotalUsers        int              `json:"totalUsers"`
	TotalIssues       int              `json:"totalIssues"`
	TotalDonations    int              `json:"totalDonations"`
	IssueStats        IssueStats       `json:"issueStats"`
	DonationStats     DonationStats    `json:"donationStats"`
	ResolutionRate    int              `json:"resolutionRate"`
	RecentIssues      []model.Issue    `json:"recentIssues"`
	RecentUsers       []model.User     `json:"recentUsers"`
	RecentDonations   []model.Donation `json:"recentDonations"`
	CategoryBreakdown []CategoryCount  `json:"categoryBreakdown"`
	MonthlyIssues     []MonthCount     `json:"monthlyIssues"`
}

// ReportRepository serves read-only aggregations. Only the durable store
// implements it; in fallback mode Stores.Reports is nil and the reporting
// service answers Unavailable.
type ReportRepository interface {
	IssueStats(ctx context.Context) (*IssueStats, error)
	DonationStats(ctx context.Context) (*DonationStats, error)
	Overview(ctx context.Context) (*Overview, error)
}

// Store modes reported by diagnostics.
const (
	ModeDurable  = "durable"
	ModeFallback = "fallback"
)

// Stores bundles the adapters selected at startup. It is immutable after
// construction: the durable-store probe runs once, and a mid-process outage
// is not auto-recovered (a restart re-probes).
type Stores struct {
	Mode      string
	Issues    IssueRepository
	Users     UserRepository
	Donations DonationRepository
	Reports   ReportRepository // nil in fallback mode
}

// Durable reports whether the durable store backs this process.
func (s *Stores) Durable() bool {
	return s.Mode == ModeDurable
}
