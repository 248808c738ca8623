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

func matchUser(user *model.User, filter repository.UserFilter) bool {
	if filter.Role != "" && user.Role != filter.Role {
		return false
	}
	if filter.Search != "" {
		term := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(user.Name), term) &&
			!strings.Contains(strings.ToLower(user.Email), term) {
			return false
		}
	}
	return true
}

func sortUsers(users []model.User, s repository.Sort) {
	switch s.Field {
	case "createdAt", "name", "email", "role":
	default:
		s = repository.DefaultSort
	}
	sort.SliceStable(users, func(a, b int) bool {
		ua, ub := &users[a], &users[b]
		switch s.Field {
		case "name":
			return compareStrings(ua.Name, ub.Name, s.Desc)
		case "email":
			return compareStrings(ua.Email, ub.Email, s.Desc)
		case "role":
			return compareStrings(ua.Role, ub.Role, s.Desc)
		default:
			return compareTimes(ua.CreatedAt, ub.CreatedAt, s.Desc)
		}
	})
}

// CreateUser stores a new account. Emails are normalized to lower case and
// must be unique.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	if !model.ValidRole(user.Role) {
		return apperror.ValidationFailed("role", "invalid role value")
	}

	email := strings.ToLower(user.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.ToLower(existing.Email) == email {
			return apperror.Conflict("email already in use")
		}
	}

	user.ID = newID()
	user.Email = email
	user.CreatedAt = time.Now()
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return cloneUser(user), nil
}

// GetUserByEmail matches case-insensitively.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	target := strings.ToLower(email)
	for _, user := range s.users {
		if strings.ToLower(user.Email) == target {
			return cloneUser(user), nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (s *Store) FindUserPage(ctx context.Context, filter repository.UserFilter, srt repository.Sort, page repository.Page) (*repository.PagedUsers, error) {
	page = page.Normalize()

	s.mu.RLock()
	users := []model.User{}
	for _, user := range s.users {
		if matchUser(user, filter) {
			users = append(users, *cloneUser(user))
		}
	}
	s.mu.RUnlock()

	sortUsers(users, srt)
	total := len(users)
	return &repository.PagedUsers{
		Records:    pageSlice(users, page),
		Total:      total,
		Page:       page.Page,
		TotalPages: repository.TotalPages(total, page.Limit),
	}, nil
}

func (s *Store) UpdateRole(ctx context.Context, id, role string) (*model.User, error) {
	if !model.ValidRole(role) {
		return nil, apperror.ValidationFailed("role", "invalid role value")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	user.Role = role
	return cloneUser(user), nil
}

func (s *Store) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	user.PasswordHash = passwordHash
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(s.users, id)
	return nil
}
