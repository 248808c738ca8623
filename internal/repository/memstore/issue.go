package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/SENODROOM/PublicBoard-Backend/internal/apperror"
	"github.com/SENODROOM/PublicBoard-Backend/internal/model"
	"github.com/SENODROOM/PublicBoard-Backend/internal/repository"
)

func matchIssue(issue *model.Issue, filter repository.Filter) bool {
	if filter.Status != "" && issue.Status != filter.Status {
		return false
	}
	if filter.Category != "" && issue.Category != filter.Category {
		return false
	}
	if filter.ReporterUserID != "" && issue.Reporter.UserID != filter.ReporterUserID {
		return false
	}
	if filter.Search != "" {
		term := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(issue.Title), term) &&
			!strings.Contains(strings.ToLower(issue.Description), term) &&
			!strings.Contains(strings.ToLower(issue.Location), term) &&
			!strings.Contains(strings.ToLower(issue.Reporter.Name), term) {
			return false
		}
	}
	return true
}

func sortIssues(issues []model.Issue, s repository.Sort) {
	switch s.Field {
	case "createdAt", "updatedAt", "title", "status", "category", "supportCount":
	default:
		s = repository.DefaultSort
	}
	sort.SliceStable(issues, func(a, b int) bool {
		ia, ib := &issues[a], &issues[b]
		switch s.Field {
		case "updatedAt":
			return compareTimes(ia.UpdatedAt, ib.UpdatedAt, s.Desc)
		case "title":
			return compareStrings(ia.Title, ib.Title, s.Desc)
		case "status":
			return compareStrings(ia.Status, ib.Status, s.Desc)
		case "category":
			return compareStrings(ia.Category, ib.Category, s.Desc)
		case "supportCount":
			return compareInts(ia.SupportCount, ib.SupportCount, s.Desc)
		default:
			return compareTimes(ia.CreatedAt, ib.CreatedAt, s.Desc)
		}
	})
}

// collectIssues snapshots matching issues under the read lock already held
// by the caller.
func (s *Store) collectIssues(filter repository.Filter, srt repository.Sort) []model.Issue {
	issues := []model.Issue{}
	for _, issue := range s.issues {
		if matchIssue(issue, filter) {
			issues = append(issues, *cloneIssue(issue))
		}
	}
	sortIssues(issues, srt)
	return issues
}

// Find returns every issue matching the filter, in the requested order.
func (s *Store) Find(ctx context.Context, filter repository.Filter, srt repository.Sort) ([]model.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectIssues(filter, srt), nil
}

// FindPage returns one page of matching issues plus the paging envelope.
func (s *Store) FindPage(ctx context.Context, filter repository.Filter, srt repository.Sort, page repository.Page) (*repository.PagedIssues, error) {
	page = page.Normalize()

	s.mu.RLock()
	issues := s.collectIssues(filter, srt)
	s.mu.RUnlock()

	total := len(issues)
	return &repository.PagedIssues{
		Records:    pageSlice(issues, page),
		Total:      total,
		Page:       page.Page,
		TotalPages: repository.TotalPages(total, page.Limit),
	}, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*model.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	issue, ok := s.issues[id]
	if !ok {
		return nil, apperror.NotFound("issue", id)
	}
	return cloneIssue(issue), nil
}

// Create validates and stores a new issue. The ID, timestamps, and default
// Open status are assigned here; nothing is stored when validation fails.
func (s *Store) Create(ctx context.Context, issue *model.Issue) error {
	if issue.Status == "" {
		issue.Status = model.StatusOpen
	}
	if err := issue.ValidateNew(); err != nil {
		return err
	}

	issue.ID = newID()
	now := time.Now()
	issue.CreatedAt = now
	issue.UpdatedAt = now
	if issue.Supporters == nil {
		issue.Supporters = []string{}
	}
	if issue.Updates == nil {
		issue.Updates = []model.UpdateEntry{}
	}
	issue.SupportCount = len(issue.Supporters)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.issues[issue.ID] = cloneIssue(issue)
	return nil
}

// ApplyStatus sets the status, stamps ResolvedAt when entering Resolved,
// appends the update entry when non-nil, and refreshes UpdatedAt, all under
// the write lock.
func (s *Store) ApplyStatus(ctx context.Context, id, status string, entry *model.UpdateEntry) (*model.Issue, error) {
	if !model.ValidStatus(status) {
		return nil, apperror.ValidationFailed("status", "invalid status value")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issues[id]
	if !ok {
		return nil, apperror.NotFound("issue", id)
	}

	now := time.Now()
	issue.Status = status
	if status == model.StatusResolved {
		issue.ResolvedAt = &now
	}
	if entry != nil {
		e := *entry
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		issue.Updates = append(issue.Updates, e)
	}
	issue.UpdatedAt = now

	return cloneIssue(issue), nil
}

// ToggleSupport flips userID's membership in the supporters set and keeps
// SupportCount equal to the set size, atomically under the write lock.
func (s *Store) ToggleSupport(ctx context.Context, id, userID string) (*model.Issue, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issues[id]
	if !ok {
		return nil, false, apperror.NotFound("issue", id)
	}

	nowSupporting := true
	if issue.Supports(userID) {
		supporters := issue.Supporters[:0]
		for _, uid := range issue.Supporters {
			if uid != userID {
				supporters = append(supporters, uid)
			}
		}
		issue.Supporters = supporters
		nowSupporting = false
	} else {
		issue.Supporters = append(issue.Supporters, userID)
	}
	sort.Strings(issue.Supporters)
	issue.SupportCount = len(issue.Supporters)
	issue.UpdatedAt = time.Now()

	return cloneIssue(issue), nowSupporting, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.issues[id]; !ok {
		return apperror.NotFound("issue", id)
	}
	delete(s.issues, id)
	return nil
}

// BulkStatus applies the status change per issue and reports how many
// matched. Missing IDs are skipped, not errors.
func (s *Store) BulkStatus(ctx context.Context, ids []string, status string) (int, error) {
	if !model.ValidStatus(status) {
		return 0, apperror.ValidationFailed("status", "invalid status value")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	matched := 0
	for _, id := range ids {
		issue, ok := s.issues[id]
		if !ok {
			continue
		}
		issue.Status = status
		if status == model.StatusResolved {
			t := now
			issue.ResolvedAt = &t
		}
		issue.UpdatedAt = now
		matched++
	}
	return matched, nil
}

// BulkDelete removes the named issues and reports how many existed.
func (s *Store) BulkDelete(ctx context.Context, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := 0
	for _, id := range ids {
		if _, ok := s.issues[id]; !ok {
			continue
		}
		delete(s.issues, id)
		matched++
	}
	return matched, nil
}
