package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kmoran/personal-library/auth"
	"github.com/kmoran/personal-library/models"
)

type contextKey string

const userKey contextKey = "user"

// Auth verifies the bearer token and stores the resolved user on the
// request context. Missing, malformed, expired, and orphaned tokens all
// yield the same 401.
func Auth(svc *auth.Service) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeError(w, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}
			user, err := svc.Authenticate(r.Context(), parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}
			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated users whose role is not in the allowed
// set. It must run after Auth.
func RequireRole(roles ...string) func(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}
			if !allowed[user.Role] {
				writeError(w, http.StatusForbidden, "User role "+user.Role+" is not authorized to access this route")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}

// WithUser is used by tests to seed an authenticated context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   msg,
	})
}
