package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SENODROOM/PublicBoard-Backend/internal/apperror"
	"github.com/SENODROOM/PublicBoard-Backend/internal/model"
	"github.com/SENODROOM/PublicBoard-Backend/internal/repository"
	"github.com/SENODROOM/PublicBoard-Backend/internal/repository/memstore"
)

func TestRegister_HappyPath(t *testing.T) {
	store := memstore.NewEmpty()
	svc := newTestAuthService(t, store, "admin@example.com")

	res, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Jane Doe",
		Email:    "Jane@Example.COM",
		Password: "hunter22",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "jane@example.com", res.User.Email)
	assert.Equal(t, model.RoleUser, res.User.Role)
	assert.NotEmpty(t, res.User.PasswordHash)
	assert.NotEqual(t, "hunter22", res.User.PasswordHash)
}

func TestRegister_Validation(t *testing.T) {
	store := memstore.NewEmpty()
	svc := newTestAuthService(t, store, "admin@example.com")
	ctx := context.Background()

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"missing name", RegisterInput{Email: "a@b.com", Password: "hunter22"}},
		{"bad email", RegisterInput{Name: "A", Email: "not-an-email", Password: "hunter22"}},
		{"short password", RegisterInput{Name: "A", Email: "a@b.com", Password: "four"}},
		{"reserved admin email", RegisterInput{Name: "A", Email: "Admin@Example.com", Password: "hunter22"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.in)
			require.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	store := memstore.NewEmpty()
	svc := newTestAuthService(t, store, "")
	ctx := context.Background()

	mustRegister(t, svc, "First", "taken@example.com", "password1")

	_, err := svc.Register(ctx, RegisterInput{Name: "Second", Email: "TAKEN@example.com", Password: "password1"})
	require.ErrorIs(t, err, apperror.ErrConflict)
}

func TestLogin_RoundTrip(t *testing.T) {
	store := memstore.NewEmpty()
	svc := newTestAuthService(t, store, "")
	ctx := context.Background()

	user := mustRegister(t, svc, "Jane", "jane@example.com", "hunter22")

	res, err := svc.Login(ctx, "JANE@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.User.ID)
	assert.NotEmpty(t, res.Token)
}

func TestLogin_WrongCredentials(t *testing.T) {
	store := memstore.NewEmpty()
	svc := newTestAuthService(t, store, "")
	ctx := context.Background()

	mustRegister(t, svc, "Jane", "jane@example.com", "hunter22")

	_, err := svc.Login(ctx, "jane@example.com", "wrong-password")
	require.ErrorIs(t, err, apperror.ErrUnauthenticated)

	_, err = svc.Login(ctx, "nobody@example.com", "hunter22")
	require.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestSeedAdmin_CreatesWhenAbsent(t *testing.T) {
	store := memstore.NewEmpty()
	svc := newTestAuthService(t, store, "admin@example.com")
	ctx := context.Background()

	require.NoError(t, svc.SeedAdmin(ctx, "Admin", "admin@example.com", "toplevel-secret"))

	admin, err := store.GetUserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	res, err := svc.Login(ctx, "admin@example.com", "toplevel-secret")
	require.NoError(t, err)
	assert.True(t, res.User.IsAdmin())
}

func TestSeedAdmin_PromotesAndResyncsPassword(t *testing.T) {
	store := memstore.NewEmpty()
	svc := newTestAuthService(t, store, "")
	ctx := context.Background()

	existing := mustRegister(t, svc, "Future Admin", "admin@example.com", "old-password")
	require.Equal(t, model.RoleUser, existing.Role)

	require.NoError(t, svc.SeedAdmin(ctx, "Admin", "admin@example.com", "new-password"))

	admin, err := store.GetUserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	_, err = svc.Login(ctx, "admin@example.com", "old-password")
	require.ErrorIs(t, err, apperror.ErrUnauthenticated)

	_, err = svc.Login(ctx, "admin@example.com", "new-password")
	require.NoError(t, err)
}

func TestSeedAdmin_SkipsWhenUnconfigured(t *testing.T) {
	store := memstore.NewEmpty()
	svc := newTestAuthService(t, store, "")
	ctx := context.Background()

	require.NoError(t, svc.SeedAdmin(ctx, "Admin", "", ""))

	page, err := store.FindUserPage(ctx, repository.UserFilter{}, repository.Sort{}, repository.Page{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}
