// Package api implements the StudyDesk REST API using chi.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/haneul/studydesk/internal/models"
)

type contextKey string

const userKey contextKey = "user"

// Approver reports whether a user's account has been approved.
type Approver interface {
	IsApproved(ctx context.Context, userID string) (bool, error)
}

// AuthMiddleware validates a Bearer token against the configured token
// map and stores the resolved user on the request context. When
// enabled is false every request runs as fallback (local single-user
// mode).
//
// Non-anonymous users must additionally be approved; anonymous users
// pass without the approval check but see only their own data like
// everyone else.
func AuthMiddleware(enabled bool, users map[string]models.User, fallback models.User, approver Approver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r.WithContext(withUser(r.Context(), fallback)))
				return
			}
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			u, ok := users[strings.TrimPrefix(auth, "Bearer ")]
			if !ok {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			if !u.Anonymous && approver != nil {
				approved, err := approver.IsApproved(r.Context(), u.ID)
				if err != nil {
					writeError(w, err)
					return
				}
				if !approved {
					writeJSON(w, http.StatusForbidden, errorBody("account pending approval"))
					return
				}
			}
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), u)))
		})
	}
}

func withUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFrom returns the authenticated user stored by AuthMiddleware.
func UserFrom(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey).(models.User)
	return u, ok
}

// requestUser is the handler-side accessor. A missing user means the
// route was mounted outside the auth middleware, which is a wiring
// bug; the request is rejected rather than served unscoped.
func requestUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	u, ok := UserFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
	}
	return u, ok
}
