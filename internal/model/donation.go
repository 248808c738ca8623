package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/SENODROOM/PublicBoard-Backend/internal/apperror"
)

// Donation statuses.
const (
	DonationPending   = "pending"
	DonationCompleted = "completed"
	DonationFailed    = "failed"
	DonationRefunded  = "refunded"
)

// DonationStatuses lists every valid donation status.
var DonationStatuses = []string{DonationPending, DonationCompleted, DonationFailed, DonationRefunded}

// MaxDonationMessageLength caps the optional donor message.
const MaxDonationMessageLength = 500

// Donor is a snapshot of who donated. UserID is a weak reference — historical
// donations keep their snapshot even if the account is deleted.
type Donor struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	UserID string `json:"userId,omitempty"`
}

// Donation records a contribution, optionally tied to a specific issue.
// Payments are simulated: PaymentRef carries a generated reference, there is
// no real processor behind it.
type Donation struct {
	ID           string    `json:"id"`
	Donor        Donor     `json:"donor"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency"`
	Message      string    `json:"message,omitempty"`
	IsAnonymous  bool      `json:"isAnonymous"`
	Status       string    `json:"status"`
	RelatedIssue string    `json:"relatedIssue,omitempty"`
	PaymentRef   string    `json:"paymentRef,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ValidDonationStatus reports whether s is one of the defined donation statuses.
func ValidDonationStatus(s string) bool {
	for _, v := range DonationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Validate checks a donation before it is persisted.
func (d *Donation) Validate() error {
	if d.Amount < 1 {
		return apperror.ValidationFailed("amount", "minimum donation is $1")
	}
	if strings.TrimSpace(d.Donor.Name) == "" {
		return apperror.ValidationFailed("name", "donor name is required")
	}
	if len(d.Message) > MaxDonationMessageLength {
		return apperror.ValidationFailed("message",
			fmt.Sprintf("message cannot be more than %d characters", MaxDonationMessageLength))
	}
	if d.Status != "" && !ValidDonationStatus(d.Status) {
		return apperror.ValidationFailed("status",
			fmt.Sprintf("%q is not a valid donation status", d.Status))
	}
	return nil
}

// Sanitized returns a copy safe for public listing: anonymous donations hide
// the donor identity.
func (d Donation) Sanitized() Donation {
	if d.IsAnonymous {
		d.Donor = Donor{Name: "Anonymous"}
	}
	return d
}
