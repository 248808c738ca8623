package sqlite

import (
	"context"
	"testing"

	"github.com/SENODROOM/PublicBoard-Backend/internal/model"
)

// newTestDB opens a fresh in-memory database per test. The schema is
// migrated by New, and t.Cleanup closes the connection.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestIssue(t *testing.T, db *DB, title, category string) *model.Issue {
	t.Helper()
	issue := &model.Issue{
		Title:       title,
		Description: "A description long enough to be useful.",
		Category:    category,
		Reporter:    model.Reporter{Name: "Test Reporter"},
	}
	if err := db.Create(context.Background(), issue); err != nil {
		t.Fatalf("failed to create test issue: %v", err)
	}
	return issue
}

func createTestUser(t *testing.T, db *DB, name, email string) *model.User {
	t.Helper()
	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: "$2a$04$fakehashforstoragetests",
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestDonation(t *testing.T, db *DB, name string, amount float64, status string) *model.Donation {
	t.Helper()
	donation := &model.Donation{
		Donor:  model.Donor{Name: name},
		Amount: amount,
		Status: status,
	}
	if err := db.CreateDonation(context.Background(), donation); err != nil {
		t.Fatalf("failed to create test donation: %v", err)
	}
	return donation
}
