package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SENODROOM/PublicBoard-Backend/internal/model"
	"github.com/SENODROOM/PublicBoard-Backend/internal/repository/memstore"
)

func seedUser(t *testing.T, store *memstore.Store, role string) *model.User {
	t.Helper()
	user := &model.User{Name: "Test User", Email: "test@example.com", PasswordHash: "irrelevant", Role: role}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

func principalEcho(t *testing.T, got **model.User) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := PrincipalFromContext(r.Context()); ok {
			*got = user
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequirePrincipal_ValidToken(t *testing.T) {
	ts := newTestTokenService(t)
	store := memstore.NewEmpty()
	user := seedUser(t, store, model.RoleUser)

	token, err := ts.Generate(user.ID)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var got *model.User
	handler := RequirePrincipal(ts, store)(principalEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got == nil || got.ID != user.ID {
		t.Fatalf("principal not injected, got %+v", got)
	}
}

func TestRequirePrincipal_MissingHeader(t *testing.T) {
	ts := newTestTokenService(t)
	store := memstore.NewEmpty()

	handler := RequirePrincipal(ts, store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequirePrincipal_VanishedUser(t *testing.T) {
	ts := newTestTokenService(t)
	store := memstore.NewEmpty()
	user := seedUser(t, store, model.RoleUser)

	token, _ := ts.Generate(user.ID)
	if err := store.DeleteUser(context.Background(), user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	handler := RequirePrincipal(ts, store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestOptionalPrincipal_Anonymous(t *testing.T) {
	ts := newTestTokenService(t)
	store := memstore.NewEmpty()

	var got *model.User
	handler := OptionalPrincipal(ts, store)(principalEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got != nil {
		t.Fatalf("anonymous request should carry no principal, got %+v", got)
	}
}

func TestRequireAdmin_RejectsNonAdmin(t *testing.T) {
	ts := newTestTokenService(t)
	store := memstore.NewEmpty()
	user := seedUser(t, store, model.RoleUser)

	token, _ := ts.Generate(user.ID)

	handler := RequirePrincipal(ts, store)(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestRequireAdmin_AllowsAdmin(t *testing.T) {
	ts := newTestTokenService(t)
	store := memstore.NewEmpty()
	admin := seedUser(t, store, model.RoleAdmin)

	token, _ := ts.Generate(admin.ID)

	var got *model.User
	handler := RequirePrincipal(ts, store)(RequireAdmin(principalEcho(t, &got)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got == nil || !got.IsAdmin() {
		t.Fatalf("admin principal not injected, got %+v", got)
	}
}
