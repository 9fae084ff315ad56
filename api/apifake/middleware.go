package apifake

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-course-portal/users"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyUserID stores the authenticated user ID
const ContextKeyUserID ContextKey = "user_id"

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

func (b *Backend) RecordingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("Fake backend request")
		next(w, r)
	}
}

// RequireAuth validates the Bearer access token and injects the user ID
func (b *Backend) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeJSON(w, http.StatusUnauthorized, detail("Authentication credentials were not provided."))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			writeJSON(w, http.StatusUnauthorized, detail("Authorization header must contain two space-delimited values"))
			return
		}

		b.lock.RLock()
		c, err := b.verify(parts[1], tokenTypeAccess)
		b.lock.RUnlock()
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"detail": "Given token not valid for any token type",
				"code":   "token_not_valid",
			})
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyUserID, c.UserID)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin must be chained after RequireAuth
func (b *Backend) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !b.currentUser(r).IsAdmin() {
			writeJSON(w, http.StatusForbidden, detail("You do not have permission to perform this action."))
			return
		}
		next(w, r)
	}
}

// currentUser returns a copy of the authenticated account or nil
func (b *Backend) currentUser(r *http.Request) *users.User {
	id, ok := r.Context().Value(ContextKeyUserID).(int)
	if !ok {
		return nil
	}
	b.lock.RLock()
	defer b.lock.RUnlock()
	a, ok := b.accounts[id]
	if !ok {
		return nil
	}
	u := a.user
	return &u
}
