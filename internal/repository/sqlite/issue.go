package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/SENODROOM/PublicBoard-Backend/internal/apperror"
	"github.com/SENODROOM/PublicBoard-Backend/internal/model"
	"github.com/SENODROOM/PublicBoard-Backend/internal/repository"
)

// compile-time check that *DB implements repository.IssueRepository
var _ repository.IssueRepository = (*DB)(nil)

const issueColumns = `id, title, description, category, location, status,
	reporter_name, reporter_email, reporter_user_id, support_count,
	resolved_at, created_at, updated_at`

// issueSortColumns whitelists sortable fields. Anything else falls back to
// the default sort so a caller can never inject an ORDER BY expression.
var issueSortColumns = map[string]string{
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
	"title":        "title",
	"status":       "status",
	"category":     "category",
	"supportCount": "support_count",
}

func issueOrderBy(sort repository.Sort) string {
	col, ok := issueSortColumns[sort.Field]
	if !ok {
		sort = repository.DefaultSort
		col = issueSortColumns[sort.Field]
	}
	dir := "ASC"
	if sort.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s", col, dir)
}

// issueWhere builds the WHERE clause for a filter. All predicates are ANDed;
// the search term matches as a case-insensitive substring across title,
// description, location, and reporter name.
func issueWhere(filter repository.Filter) (string, []any) {
	var conds []string
	var args []any

	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.ReporterUserID != "" {
		conds = append(conds, "reporter_user_id = ?")
		args = append(args, filter.ReporterUserID)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		conds = append(conds,
			"(LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(location) LIKE ? OR LOWER(reporter_name) LIKE ?)")
		args = append(args, like, like, like, like)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// querier is the read surface shared by *sql.DB and *sql.Tx, so issue
// hydration can run either standalone or inside a mutation's transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanIssue(row interface{ Scan(...any) error }) (*model.Issue, error) {
	var i model.Issue
	var resolvedAt sql.NullTime
	err := row.Scan(
		&i.ID, &i.Title, &i.Description, &i.Category, &i.Location, &i.Status,
		&i.Reporter.Name, &i.Reporter.Email, &i.Reporter.UserID, &i.SupportCount,
		&resolvedAt, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		i.ResolvedAt = &t
	}
	i.Supporters = []string{}
	i.Updates = []model.UpdateEntry{}
	return &i, nil
}

// loadIssueRelations fills the supporters set and update log for one issue.
func loadIssueRelations(ctx context.Context, q querier, issue *model.Issue) error {
	rows, err := q.QueryContext(ctx,
		`SELECT user_id FROM issue_supporters WHERE issue_id = ? ORDER BY user_id`,
		issue.ID,
	)
	if err != nil {
		return fmt.Errorf("loading supporters for issue %s: %w", issue.ID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return fmt.Errorf("scanning supporter row: %w", err)
		}
		issue.Supporters = append(issue.Supporters, userID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating supporters: %w", err)
	}

	urows, err := q.QueryContext(ctx,
		`SELECT message, status, updated_by, created_at
		 FROM issue_updates WHERE issue_id = ? ORDER BY id`,
		issue.ID,
	)
	if err != nil {
		return fmt.Errorf("loading updates for issue %s: %w", issue.ID, err)
	}
	defer urows.Close()
	for urows.Next() {
		var u model.UpdateEntry
		if err := urows.Scan(&u.Message, &u.Status, &u.UpdatedBy, &u.CreatedAt); err != nil {
			return fmt.Errorf("scanning update row: %w", err)
		}
		issue.Updates = append(issue.Updates, u)
	}
	if err := urows.Err(); err != nil {
		return fmt.Errorf("iterating updates: %w", err)
	}

	return nil
}

// Create validates and inserts a new issue. The ID, timestamps, and default
// Open status are assigned here; nothing is persisted when validation fails.
func (db *DB) Create(ctx context.Context, issue *model.Issue) error {
	if issue.Status == "" {
		issue.Status = model.StatusOpen
	}
	if err := issue.ValidateNew(); err != nil {
		return err
	}

	issue.ID = xid.New().String()
	now := time.Now()
	issue.CreatedAt = now
	issue.UpdatedAt = now
	if issue.Supporters == nil {
		issue.Supporters = []string{}
	}
	if issue.Updates == nil {
		issue.Updates = []model.UpdateEntry{}
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO issues (id, title, description, category, location, status,
		 reporter_name, reporter_email, reporter_user_id, support_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		issue.ID, issue.Title, issue.Description, issue.Category, issue.Location,
		issue.Status, issue.Reporter.Name, issue.Reporter.Email, issue.Reporter.UserID,
		issue.CreatedAt, issue.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating issue: %w", err)
	}

	return nil
}

// GetByID retrieves a single issue with its supporters and update log.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Issue, error) {
	return getIssue(ctx, db.conn, id)
}

func getIssue(ctx context.Context, q querier, id string) (*model.Issue, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE id = ?`, id)

	issue, err := scanIssue(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("issue", id)
		}
		return nil, fmt.Errorf("sqlite: getting issue %s: %w", id, err)
	}

	if err := loadIssueRelations(ctx, q, issue); err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return issue, nil
}

// Find returns every issue matching the filter, in the requested order.
func (db *DB) Find(ctx context.Context, filter repository.Filter, sort repository.Sort) ([]model.Issue, error) {
	where, args := issueWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM issues %s %s`, issueColumns, where, issueOrderBy(sort))

	return db.queryIssues(ctx, query, args...)
}

// FindPage returns one page of matching issues plus the paging envelope.
func (db *DB) FindPage(ctx context.Context, filter repository.Filter, sort repository.Sort, page repository.Page) (*repository.PagedIssues, error) {
	page = page.Normalize()
	where, args := issueWhere(filter)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM issues %s`, where)
	if err := db.conn.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("sqlite: counting issues: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM issues %s %s LIMIT ? OFFSET ?`,
		issueColumns, where, issueOrderBy(sort))
	issues, err := db.queryIssues(ctx, query, append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, err
	}

	return &repository.PagedIssues{
		Records:    issues,
		Total:      total,
		Page:       page.Page,
		TotalPages: repository.TotalPages(total, page.Limit),
	}, nil
}

func (db *DB) queryIssues(ctx context.Context, query string, args ...any) ([]model.Issue, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing issues: %w", err)
	}
	defer rows.Close()

	issues := []model.Issue{}
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning issue row: %w", err)
		}
		issues = append(issues, *issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating issues: %w", err)
	}

	for idx := range issues {
		if err := loadIssueRelations(ctx, db.conn, &issues[idx]); err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
	}

	return issues, nil
}

// ApplyStatus sets the status inside one transaction: the status column,
// the ResolvedAt stamp when entering Resolved, and the optional update-log
// append all commit together or not at all.
func (db *DB) ApplyStatus(ctx context.Context, id, status string, entry *model.UpdateEntry) (*model.Issue, error) {
	if !model.ValidStatus(status) {
		return nil, apperror.ValidationFailed("status",
			fmt.Sprintf("%q is not a valid status", status))
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning status transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	result, err := tx.ExecContext(ctx,
		`UPDATE issues
		 SET status = ?,
		     resolved_at = CASE WHEN ? = ? THEN ? ELSE resolved_at END,
		     updated_at = ?
		 WHERE id = ?`,
		status, status, model.StatusResolved, now, now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating issue %s status: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return nil, apperror.NotFound("issue", id)
	}

	if entry != nil {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO issue_updates (issue_id, message, status, updated_by, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			id, entry.Message, status, entry.UpdatedBy, now,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: appending update to issue %s: %w", id, err)
		}
	}

	// read before commit so the snapshot cannot include a later writer
	issue, err := getIssue(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing status update: %w", err)
	}

	return issue, nil
}

// ToggleSupport flips userID's membership in the supporters set and
// recomputes support_count from the set inside the same transaction, so the
// counter can never drift from the set.
func (db *DB) ToggleSupport(ctx context.Context, id, userID string) (*model.Issue, bool, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: beginning support transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM issues WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: checking issue %s: %w", id, err)
	}
	if exists == 0 {
		return nil, false, apperror.NotFound("issue", id)
	}

	var supported int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM issue_supporters WHERE issue_id = ? AND user_id = ?`,
		id, userID,
	).Scan(&supported)
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: checking supporter: %w", err)
	}

	nowSupporting := supported == 0
	if nowSupporting {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO issue_supporters (issue_id, user_id) VALUES (?, ?)`, id, userID)
	} else {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM issue_supporters WHERE issue_id = ? AND user_id = ?`, id, userID)
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: toggling supporter: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE issues
		 SET support_count = (SELECT COUNT(*) FROM issue_supporters WHERE issue_id = ?),
		     updated_at = ?
		 WHERE id = ?`,
		id, time.Now(), id,
	)
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: recomputing support count: %w", err)
	}

	issue, err := getIssue(ctx, tx, id)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("sqlite: committing support toggle: %w", err)
	}

	return issue, nowSupporting, nil
}

// Delete removes an issue; supporters and updates cascade.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM issues WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting issue %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("issue", id)
	}
	return nil
}

// BulkStatus applies a status to every matched issue and returns how many
// were actually matched. Not atomic across the set — partial application on
// partial failure is acceptable by contract.
func (db *DB) BulkStatus(ctx context.Context, ids []string, status string) (int, error) {
	if !model.ValidStatus(status) {
		return 0, apperror.ValidationFailed("status",
			fmt.Sprintf("%q is not a valid status", status))
	}

	matched := 0
	for _, id := range ids {
		if _, err := db.ApplyStatus(ctx, id, status, nil); err != nil {
			if isNotFound(err) {
				continue
			}
			return matched, err
		}
		matched++
	}
	return matched, nil
}

// BulkDelete removes every matched issue and returns how many were matched.
func (db *DB) BulkDelete(ctx context.Context, ids []string) (int, error) {
	matched := 0
	for _, id := range ids {
		if err := db.Delete(ctx, id); err != nil {
			if isNotFound(err) {
				continue
			}
			return matched, err
		}
		matched++
	}
	return matched, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}
