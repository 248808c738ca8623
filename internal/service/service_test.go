package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/SENODROOM/PublicBoard-Backend/internal/auth"
	"github.com/SENODROOM/PublicBoard-Backend/internal/model"
	"github.com/SENODROOM/PublicBoard-Backend/internal/repository/memstore"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestAuthService(t *testing.T, store *memstore.Store, adminEmail string) *AuthService {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)
	return NewAuthService(store, tokens, passwords, adminEmail, testLogger())
}

func mustRegister(t *testing.T, svc *AuthService, name, email, password string) *model.User {
	t.Helper()
	res, err := svc.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: password})
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	return res.User
}

func makeAdmin(t *testing.T, store *memstore.Store, user *model.User) *model.User {
	t.Helper()
	admin, err := store.UpdateRole(context.Background(), user.ID, model.RoleAdmin)
	if err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	return admin
}
