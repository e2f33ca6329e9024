// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/pressroom-io/pressroom/internal/model"
	"github.com/pressroom-io/pressroom/internal/store"
	"github.com/pressroom-io/pressroom/internal/workflow"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request-scoped data.
const (
	ContextKeyUser ContextKey = "user"
)

// Session keys.
const (
	SessionKeyUserID = "user_id"
)

// Auth creates middleware that requires a session-authenticated user,
// redirecting to login otherwise.
func Auth(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LoadUser creates middleware that loads the session user into the request
// context. Accounts that have left the active state are logged out: an
// archived or re-drafted user keeps their session cookie but loses access.
func LoadUser(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			user, err := queries.GetUserByID(r.Context(), userID)
			if err != nil || !user.IsActive() {
				_ = sm.Destroy(r.Context())
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser retrieves the current user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *model.User {
	user, ok := r.Context().Value(ContextKeyUser).(model.User)
	if !ok {
		return nil
	}
	return &user
}

// GetActor returns the workflow actor for the current request, or a zero
// actor when unauthenticated.
func GetActor(r *http.Request) workflow.Actor {
	if user := GetUser(r); user != nil {
		return user.Actor()
	}
	return workflow.Actor{}
}

// GetUserIDPtr returns a pointer to the current user's ID, or nil. Useful
// for optional user ID parameters in event logging.
func GetUserIDPtr(r *http.Request) *int64 {
	if user := GetUser(r); user != nil {
		id := user.ID
		return &id
	}
	return nil
}

// roleLevel returns a numeric level for the role hierarchy. Higher level
// means more authority; readers and unknown roles have none.
func roleLevel(role string) int {
	switch role {
	case workflow.RoleAdmin:
		return 3
	case workflow.RoleEditor:
		return 2
	case workflow.RoleJournalist:
		return 1
	default:
		return 0
	}
}

// RequireRole creates middleware that requires a minimum user role. Roles
// are hierarchical: admin > editor > journalist. RequireRole("journalist")
// admits all three; readers are always rejected.
func RequireRole(minRole string) func(http.Handler) http.Handler {
	minLevel := roleLevel(minRole)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			if roleLevel(user.Role) < minLevel {
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", user.ID,
					"user_role", user.Role,
					"required_role", minRole,
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin requires admin role.
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(workflow.RoleAdmin)
}

// RequireEditor requires at least editor role.
func RequireEditor() func(http.Handler) http.Handler {
	return RequireRole(workflow.RoleEditor)
}
