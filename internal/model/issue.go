// Package model defines the data structures shared by every storage backend.
// Validation lives here so the durable and fallback stores enforce identical
// rules — a record that one store accepts must be accepted by the other.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/SENODROOM/PublicBoard-Backend/internal/apperror"
)

// Issue statuses. Transitions are unrestricted (any status to any other),
// but the value must always be one of these.
const (
	StatusOpen          = "Open"
	StatusInProgress    = "In Progress"
	StatusPendingReview = "Pending Review"
	StatusResolved      = "Resolved"
)

// Issue categories.
const (
	CategoryInfrastructure = "Infrastructure"
	CategoryCommunity      = "Community Resources"
	CategoryPersonal       = "Personal Concern"
	CategoryOther          = "Other"
)

// Statuses lists every valid issue status, in lifecycle order.
var Statuses = []string{StatusOpen, StatusInProgress, StatusPendingReview, StatusResolved}

// Categories lists every valid issue category.
var Categories = []string{CategoryInfrastructure, CategoryCommunity, CategoryPersonal, CategoryOther}

// Field length limits applied on create and update.
const (
	MaxTitleLength        = 200
	MaxDescriptionLength  = 2000
	MaxLocationLength     = 200
	MaxReporterNameLength = 100
)

// Reporter identifies who filed an issue. UserID is a weak reference to a
// User record; it is empty for anonymous reports and is never rewritten when
// the user is deleted.
type Reporter struct {
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	UserID string `json:"userId,omitempty"`
}

// UpdateEntry is one element of an issue's append-only update log.
type UpdateEntry struct {
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	UpdatedBy string    `json:"updatedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// Issue is a citizen-filed report tracked on the board.
//
// Supporters is the source of truth for SupportCount: every mutation that
// touches the supporters set recomputes the count in the same critical
// section, so the two can never drift.
//
// ResolvedAt is stamped on every transition into Resolved and is never
// cleared when the status later moves away from Resolved.
type Issue struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Category     string        `json:"category"`
	Location     string        `json:"location,omitempty"`
	Status       string        `json:"status"`
	Reporter     Reporter      `json:"reporter"`
	Supporters   []string      `json:"supporters"`
	SupportCount int           `json:"supportCount"`
	Updates      []UpdateEntry `json:"updates"`
	ResolvedAt   *time.Time    `json:"resolvedAt,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// ValidStatus reports whether s is one of the defined issue statuses.
func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// ValidCategory reports whether c is one of the defined issue categories.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Supports reports whether userID is currently in the supporters set.
func (i *Issue) Supports(userID string) bool {
	for _, s := range i.Supporters {
		if s == userID {
			return true
		}
	}
	return false
}

// ValidateNew checks the fields a caller supplies when filing an issue.
// Stores call this from Create so both backends reject the same input.
// Location is optional; see DESIGN.md for the validation profile decision.
func (i *Issue) ValidateNew() error {
	if strings.TrimSpace(i.Title) == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if len(i.Title) > MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("title cannot be more than %d characters", MaxTitleLength))
	}
	if strings.TrimSpace(i.Description) == "" {
		return apperror.ValidationFailed("description", "description is required")
	}
	if len(i.Description) > MaxDescriptionLength {
		return apperror.ValidationFailed("description",
			fmt.Sprintf("description cannot be more than %d characters", MaxDescriptionLength))
	}
	if !ValidCategory(i.Category) {
		return apperror.ValidationFailed("category",
			fmt.Sprintf("%q is not a valid category", i.Category))
	}
	if len(i.Location) > MaxLocationLength {
		return apperror.ValidationFailed("location",
			fmt.Sprintf("location cannot be more than %d characters", MaxLocationLength))
	}
	if strings.TrimSpace(i.Reporter.Name) == "" {
		return apperror.ValidationFailed("reporter.name", "reporter name is required")
	}
	if len(i.Reporter.Name) > MaxReporterNameLength {
		return apperror.ValidationFailed("reporter.name",
			fmt.Sprintf("reporter name cannot be more than %d characters", MaxReporterNameLength))
	}
	if i.Status != "" && !ValidStatus(i.Status) {
		return apperror.ValidationFailed("status",
			fmt.Sprintf("%q is not a valid status", i.Status))
	}
	return nil
}
