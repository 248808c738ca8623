package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/SENODROOM/PublicBoard-Backend/internal/model"
	"github.com/SENODROOM/PublicBoard-Backend/internal/repository"
)

// compile-time check that *DB implements repository.DonationRepository
var _ repository.DonationRepository = (*DB)(nil)

const donationColumns = `id, donor_name, donor_email, donor_user_id, amount,
	currency, message, is_anonymous, status, related_issue, payment_ref, created_at`

var donationSortColumns = map[string]string{
	"createdAt": "created_at",
	"amount":    "amount",
	"status":    "status",
}

func scanDonation(row interface{ Scan(...any) error }) (*model.Donation, error) {
	var d model.Donation
	err := row.Scan(
		&d.ID, &d.Donor.Name, &d.Donor.Email, &d.Donor.UserID, &d.Amount,
		&d.Currency, &d.Message, &d.IsAnonymous, &d.Status, &d.RelatedIssue,
		&d.PaymentRef, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDonation validates and inserts a donation record.
func (db *DB) CreateDonation(ctx context.Context, donation *model.Donation) error {
	if donation.Status == "" {
		donation.Status = model.DonationPending
	}
	if donation.Currency == "" {
		donation.Currency = "usd"
	}
	if err := donation.Validate(); err != nil {
		return err
	}

	donation.ID = xid.New().String()
	donation.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO donations (id, donor_name, donor_email, donor_user_id, amount,
		 currency, message, is_anonymous, status, related_issue, payment_ref, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		donation.ID, donation.Donor.Name, donation.Donor.Email, donation.Donor.UserID,
		donation.Amount, donation.Currency, donation.Message, donation.IsAnonymous,
		donation.Status, donation.RelatedIssue, donation.PaymentRef, donation.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating donation: %w", err)
	}
	return nil
}

// ListCompleted returns completed donations, newest first.
func (db *DB) ListCompleted(ctx context.Context) ([]model.Donation, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+donationColumns+` FROM donations
		 WHERE status = ? ORDER BY created_at DESC`,
		model.DonationCompleted,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing donations: %w", err)
	}
	defer rows.Close()

	donations := []model.Donation{}
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning donation row: %w", err)
		}
		donations = append(donations, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating donations: %w", err)
	}
	return donations, nil
}

// FindDonationPage returns one page of donations, optionally filtered by status.
func (db *DB) FindDonationPage(ctx context.Context, filter repository.DonationFilter, sort repository.Sort, page repository.Page) (*repository.PagedDonations, error) {
	page = page.Normalize()

	where := ""
	var args []any
	if filter.Status != "" {
		where = "WHERE status = ?"
		args = append(args, filter.Status)
	}

	var total int
	if err := db.conn.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM donations %s`, where), args...,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("sqlite: counting donations: %w", err)
	}

	col, ok := donationSortColumns[sort.Field]
	if !ok {
		sort = repository.DefaultSort
		col = donationSortColumns[sort.Field]
	}
	dir := "ASC"
	if sort.Desc {
		dir = "DESC"
	}

	rows, err := db.conn.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM donations %s ORDER BY %s %s LIMIT ? OFFSET ?`,
			donationColumns, where, col, dir),
		append(args, page.Limit, page.Offset())...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing donations: %w", err)
	}
	defer rows.Close()

	donations := []model.Donation{}
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning donation row: %w", err)
		}
		donations = append(donations, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating donations: %w", err)
	}

	return &repository.PagedDonations{
		Records:    donations,
		Total:      total,
		Page:       page.Page,
		TotalPages: repository.TotalPages(total, page.Limit),
	}, nil
}
