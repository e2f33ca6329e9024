// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pressroom-io/pressroom/internal/auth"
	"github.com/pressroom-io/pressroom/internal/middleware"
	"github.com/pressroom-io/pressroom/internal/model"
	"github.com/pressroom-io/pressroom/internal/store"
)

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the request body for POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenPairResponse carries a freshly issued token pair. The raw tokens
// appear here once; only their hashes are stored.
type TokenPairResponse struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// Login handles POST /auth/login: password check behind IP rate limiting
// and per-account lockout, then a new access/refresh token pair.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		WriteBadRequest(w, "Email and password are required", nil)
		return
	}

	if locked, remaining := h.login.IsAccountLocked(req.Email); locked {
		WriteError(w, http.StatusTooManyRequests, "account_locked",
			fmt.Sprintf("Account locked, try again in %s", remaining.Round(time.Second)), nil)
		return
	}

	user, err := h.queries.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			WriteInternalError(w, "Login failed")
			return
		}
		// Burn a hash check anyway so missing accounts take as long as
		// wrong passwords.
		_, _ = auth.CheckPassword(req.Password, auth.DummyHash)
		h.failLogin(ctx, w, req.Email, nil)
		return
	}

	ok, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		h.failLogin(ctx, w, req.Email, &user.ID)
		return
	}

	if !user.IsActive() {
		_ = h.events.LogAuthEvent(ctx, model.EventLevelWarning,
			"login rejected for non-active account", &user.ID,
			map[string]any{"email": req.Email, "status": user.Status})
		WriteForbidden(w, "Account is not active")
		return
	}

	h.login.RecordSuccessfulLogin(req.Email)

	pair, err := h.issueTokenPair(ctx, user.ID)
	if err != nil {
		slog.Error("issuing token pair", "user_id", user.ID, "error", err)
		WriteInternalError(w, "Login failed")
		return
	}

	if err := h.queries.TouchUserLogin(ctx, user.ID, time.Now()); err != nil {
		slog.Warn("recording login time", "user_id", user.ID, "error", err)
	}
	_ = h.events.LogAuthEvent(ctx, model.EventLevelInfo, "user logged in", &user.ID,
		map[string]any{"email": req.Email})

	WriteSuccess(w, pair, nil)
}

// Refresh handles POST /auth/refresh: exchanges a live refresh token for a
// new pair and revokes the old one.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		WriteBadRequest(w, "Refresh token is required", nil)
		return
	}

	token, err := h.queries.GetTokenByHash(ctx, model.HashToken(req.RefreshToken))
	if err != nil || token.Kind != model.TokenKindRefresh || !token.IsValid(time.Now()) {
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			slog.Error("refresh token lookup", "error", err)
		}
		WriteUnauthorized(w, "Invalid token")
		return
	}

	user, err := h.queries.GetUserByID(ctx, token.UserID)
	if err != nil || !user.IsActive() {
		WriteUnauthorized(w, "Invalid token")
		return
	}

	// Rotation: the presented refresh token is spent either way.
	if err := h.queries.RevokeToken(ctx, token.ID, time.Now()); err != nil {
		slog.Error("revoking refresh token", "token_id", token.ID, "error", err)
		WriteInternalError(w, "Refresh failed")
		return
	}

	pair, err := h.issueTokenPair(ctx, user.ID)
	if err != nil {
		slog.Error("issuing token pair", "user_id", user.ID, "error", err)
		WriteInternalError(w, "Refresh failed")
		return
	}

	WriteSuccess(w, pair, nil)
}

// Logout handles POST /auth/logout: revokes every live token of the caller.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}

	if err := h.queries.RevokeUserTokens(r.Context(), user.ID, time.Now()); err != nil {
		slog.Error("revoking user tokens", "user_id", user.ID, "error", err)
		WriteInternalError(w, "Logout failed")
		return
	}
	_ = h.events.LogAuthEvent(r.Context(), model.EventLevelInfo, "user logged out", &user.ID, nil)

	WriteSuccess(w, map[string]string{"status": "logged_out"}, nil)
}

// Me handles GET /auth/me: returns the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}
	WriteSuccess(w, user, nil)
}

func (h *Handler) issueTokenPair(ctx context.Context, userID int64) (TokenPairResponse, error) {
	now := time.Now()
	access := auth.NewAccessToken()
	refresh := auth.NewRefreshToken()

	_, err := h.queries.CreateToken(ctx, store.CreateTokenParams{
		UserID:    userID,
		TokenHash: model.HashToken(access),
		Kind:      model.TokenKindAccess,
		ExpiresAt: now.Add(h.accessTTL),
		CreatedAt: now,
	})
	if err != nil {
		return TokenPairResponse{}, fmt.Errorf("storing access token: %w", err)
	}

	_, err = h.queries.CreateToken(ctx, store.CreateTokenParams{
		UserID:    userID,
		TokenHash: model.HashToken(refresh),
		Kind:      model.TokenKindRefresh,
		ExpiresAt: now.Add(h.refreshTTL),
		CreatedAt: now,
	})
	if err != nil {
		return TokenPairResponse{}, fmt.Errorf("storing refresh token: %w", err)
	}

	return TokenPairResponse{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  now.Add(h.accessTTL),
		RefreshExpiresAt: now.Add(h.refreshTTL),
	}, nil
}

// failLogin records a failed attempt and answers with a uniform 401.
func (h *Handler) failLogin(ctx context.Context, w http.ResponseWriter, email string, userID *int64) {
	locked, lockDuration := h.login.RecordFailedAttempt(email)
	_ = h.events.LogAuthEvent(ctx, model.EventLevelWarning, "failed login attempt", userID,
		map[string]any{"email": email, "locked": locked})
	if locked {
		WriteError(w, http.StatusTooManyRequests, "account_locked",
			fmt.Sprintf("Account locked, try again in %s", lockDuration.Round(time.Second)), nil)
		return
	}
	WriteUnauthorized(w, "Invalid credentials")
}
