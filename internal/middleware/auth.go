package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmynk/recitals/internal/apperr"
	"github.com/mmynk/recitals/internal/models"
	"github.com/mmynk/recitals/internal/respond"
	"github.com/mmynk/recitals/internal/storage"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// userKey is the context key for the authenticated user.
const userKey contextKey = "user"

const (
	msgInvalidToken            = "Missing or invalid token"
	msgInsufficientPermissions = "Insufficient permissions"
)

// TokenVerifier checks a bearer token and returns the subject it was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserLookup resolves a token subject to a stored user.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// UserFromContext returns the authenticated user, or nil outside RequireAuth.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

// GetUserID returns the authenticated user's ID, or "" if there is none.
func GetUserID(ctx context.Context) string {
	if user := UserFromContext(ctx); user != nil {
		return user.ID
	}
	return ""
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// RequireAuth returns a middleware that validates the token in the
// Authorization header, resolves it to a user and adds that user to the
// request context. Both "Bearer <token>" and a bare token are accepted.
func RequireAuth(verifier TokenVerifier, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Preflight requests carry no credentials.
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				reject(w, r, "missing_token")
				return
			}

			subject, err := verifier.Verify(token)
			if err != nil {
				reject(w, r, "invalid_token")
				return
			}

			user, err := users.GetUserByID(r.Context(), subject)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					reject(w, r, "unknown_user")
					return
				}
				respond.Error(w, r, apperr.Internal("failed to resolve user", err))
				return
			}

			setLoggedUser(r.Context(), user.ID)
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireAdmin rejects requests whose authenticated user is not an admin.
// It must run after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		user := UserFromContext(r.Context())
		if user == nil {
			reject(w, r, "missing_token")
			return
		}
		if !user.IsAdmin() {
			authFailures.WithLabelValues("not_admin").Inc()
			slog.Warn("Admin access denied", "user_id", user.ID, "path", r.URL.Path)
			respond.Error(w, r, apperr.Permissions(msgInsufficientPermissions))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	switch {
	case len(parts) == 2 && strings.EqualFold(parts[0], "Bearer"):
		return parts[1]
	case len(parts) == 1 && !strings.EqualFold(parts[0], "Bearer"):
		return parts[0]
	}
	return ""
}

func reject(w http.ResponseWriter, r *http.Request, reason string) {
	authFailures.WithLabelValues(reason).Inc()
	respond.Error(w, r, apperr.Authorization(msgInvalidToken))
}
