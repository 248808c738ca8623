package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/SENODROOM/PublicBoard-Backend/internal/model"
	"github.com/SENODROOM/PublicBoard-Backend/internal/repository"
)

// contextKey is unexported so only this package can place or read the
// principal in a request context.
type contextKey string

const principalKey contextKey = "principal"

// RequirePrincipal enforces authentication. It reads "Authorization: Bearer
// <token>", validates the token, and loads the user fresh from the store so
// the role is always current. A token whose user has since been deleted is
// rejected. The loaded *model.User is placed in the request context.
func RequirePrincipal(tokens *TokenService, users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := extractPrincipal(r, tokens, users)
			if err != nil {
				writeUnauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalPrincipal loads the principal when a valid token is present but
// never blocks the request. Anonymous requests pass through untouched.
func OptionalPrincipal(tokens *TokenService, users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, err := extractPrincipal(r, tokens, users); err == nil {
				ctx := context.WithValue(r.Context(), principalKey, user)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects non-admin principals. Layer it after RequirePrincipal.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := PrincipalFromContext(r.Context())
		if !ok {
			writeUnauthorized(w)
			return
		}
		if !user.IsAdmin() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":"forbidden","message":"admin access required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PrincipalFromContext returns the authenticated user, or (nil, false) for
// an anonymous request.
func PrincipalFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(principalKey).(*model.User)
	return user, ok && user != nil
}

func extractPrincipal(r *http.Request, tokens *TokenService, users repository.UserRepository) (*model.User, error) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return nil, errors.New("auth: missing bearer token")
	}

	userID, err := tokens.Validate(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return nil, err
	}

	return users.GetUserByID(r.Context(), userID)
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthenticated","message":"valid authentication required"}`))
}
