package sqlite

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/SENODROOM/PublicBoard-Backend/internal/model"
	"github.com/SENODROOM/PublicBoard-Backend/internal/repository"
)

// compile-time check that *DB implements repository.ReportRepository
var _ repository.ReportRepository = (*DB)(nil)

// IssueStats counts issues per status in one pass.
func (db *DB) IssueStats(ctx context.Context) (*repository.IssueStats, error) {
	var s repository.IssueStats
	err := db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'Open' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'In Progress' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'Pending Review' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'Resolved' THEN 1 ELSE 0 END), 0)
		FROM issues`,
	).Scan(&s.Total, &s.Open, &s.InProgress, &s.PendingReview, &s.Resolved)
	if err != nil {
		return nil, fmt.Errorf("sqlite: aggregating issue stats: %w", err)
	}
	return &s, nil
}

// DonationStats aggregates completed donations only — pending, failed, and
// refunded records never count toward the totals.
func (db *DB) DonationStats(ctx context.Context) (*repository.DonationStats, error) {
	var s repository.DonationStats
	err := db.conn.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0), COUNT(*), COALESCE(AVG(amount), 0)
		FROM donations WHERE status = ?`,
		model.DonationCompleted,
	).Scan(&s.TotalRaised, &s.DonationCount, &s.AvgDonation)
	if err != nil {
		return nil, fmt.Errorf("sqlite: aggregating donation stats: %w", err)
	}
	s.AvgDonation = math.Round(s.AvgDonation*100) / 100
	return &s, nil
}

// Overview assembles the admin dashboard rollup.
func (db *DB) Overview(ctx context.Context) (*repository.Overview, error) {
	issueStats, err := db.IssueStats(ctx)
	if err != nil {
		return nil, err
	}
	donationStats, err := db.DonationStats(ctx)
	if err != nil {
		return nil, err
	}

	var totalUsers int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&totalUsers); err != nil {
		return nil, fmt.Errorf("sqlite: counting users: %w", err)
	}

	recentIssues, err := db.Find(ctx, repository.Filter{}, repository.DefaultSort)
	if err != nil {
		return nil, err
	}
	if len(recentIssues) > 5 {
		recentIssues = recentIssues[:5]
	}

	recentUsers, err := db.recentUsers(ctx, 5)
	if err != nil {
		return nil, err
	}
	recentDonations, err := db.recentCompletedDonations(ctx, 5)
	if err != nil {
		return nil, err
	}

	breakdown, err := db.categoryBreakdown(ctx)
	if err != nil {
		return nil, err
	}
	monthly, err := db.monthlyIssues(ctx, 6)
	if err != nil {
		return nil, err
	}

	resolutionRate := 0
	if issueStats.Total > 0 {
		resolutionRate = int(math.Round(float64(issueStats.Resolved) / float64(issueStats.Total) * 100))
	}

	return &repository.Overview{
		TotalUsers:        totalUsers,
		TotalIssues:       issueStats.Total,
		TotalDonations:    donationStats.DonationCount,
		IssueStats:        *issueStats,
		DonationStats:     *donationStats,
		ResolutionRate:    resolutionRate,
		RecentIssues:      recentIssues,
		RecentUsers:       recentUsers,
		RecentDonations:   recentDonations,
		CategoryBreakdown: breakdown,
		MonthlyIssues:     monthly,
	}, nil
}

func (db *DB) recentUsers(ctx context.Context, limit int) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing recent users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}
	return users, nil
}

func (db *DB) recentCompletedDonations(ctx context.Context, limit int) ([]model.Donation, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+donationColumns+` FROM donations
		 WHERE status = ? ORDER BY created_at DESC LIMIT ?`,
		model.DonationCompleted, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing recent donations: %w", err)
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

func (db *DB) categoryBreakdown(ctx context.Context) ([]repository.CategoryCount, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT category, COUNT(*) AS n FROM issues
		GROUP BY category ORDER BY n DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: aggregating categories: %w", err)
	}
	defer rows.Close()

	breakdown := []repository.CategoryCount{}
	for rows.Next() {
		var c repository.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("sqlite: scanning category row: %w", err)
		}
		breakdown = append(breakdown, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating categories: %w", err)
	}
	return breakdown, nil
}

// monthlyIssues buckets issue creation by calendar month (UTC), newest
// buckets selected, returned oldest-to-newest for charting. Timestamps
// round-trip through the driver as time.Time but are not stored in a form
// strftime can parse, so bucketing happens here rather than in SQL.
func (db *DB) monthlyIssues(ctx context.Context, buckets int) ([]repository.MonthCount, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT created_at FROM issues`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: aggregating monthly issues: %w", err)
	}
	defer rows.Close()

	counts := map[[2]int]int{}
	for rows.Next() {
		var createdAt time.Time
		if err := rows.Scan(&createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning created_at: %w", err)
		}
		createdAt = createdAt.UTC()
		counts[[2]int{createdAt.Year(), int(createdAt.Month())}]++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating months: %w", err)
	}

	monthly := make([]repository.MonthCount, 0, len(counts))
	for key, n := range counts {
		monthly = append(monthly, repository.MonthCount{Year: key[0], Month: key[1], Count: n})
	}
	sort.Slice(monthly, func(i, j int) bool {
		if monthly[i].Year != monthly[j].Year {
			return monthly[i].Year > monthly[j].Year
		}
		return monthly[i].Month > monthly[j].Month
	})
	if len(monthly) > buckets {
		monthly = monthly[:buckets]
	}

	// reverse to oldest-first
	for i, j := 0, len(monthly)-1; i < j; i, j = i+1, j-1 {
		monthly[i], monthly[j] = monthly[j], monthly[i]
	}
	return monthly, nil
}
