// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pressroom-io/pressroom/internal/auth"
	"github.com/pressroom-io/pressroom/internal/middleware"
	"github.com/pressroom-io/pressroom/internal/model"
	"github.com/pressroom-io/pressroom/internal/store"
	"github.com/pressroom-io/pressroom/internal/workflow"
)

// CreateUserRequest is the request body for POST /users. New accounts start
// in draft and go through review like any other entity.
type CreateUserRequest struct {
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
}

// UpdateUserRequest is the request body for PUT /users/{id}.
type UpdateUserRequest struct {
	Email       *string   `json:"email,omitempty"`
	Name        *string   `json:"name,omitempty"`
	Role        *string   `json:"role,omitempty"`
	Permissions *[]string `json:"permissions,omitempty"`
	Password    *string   `json:"password,omitempty"`
}

var knownRoles = map[string]bool{
	workflow.RoleAdmin:      true,
	workflow.RoleEditor:     true,
	workflow.RoleJournalist: true,
	workflow.RoleUser:       true,
}

// CreateUser handles POST /users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActor(r)

	if !workflow.CanCreate(workflow.KindUser, actor) {
		WriteForbidden(w, "Action not permitted")
		return
	}

	var req CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	fieldErrors := make(map[string]string)
	if req.Email == "" {
		fieldErrors["email"] = "Email is required"
	}
	if len(req.Password) < 8 {
		fieldErrors["password"] = "Password must be at least 8 characters"
	}
	if req.Name == "" {
		fieldErrors["name"] = "Name is required"
	}
	if !knownRoles[req.Role] {
		fieldErrors["role"] = "Unknown role"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	if _, err := h.queries.GetUserByEmail(ctx, req.Email); err == nil {
		WriteValidationError(w, map[string]string{"email": "Email already in use"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		WriteInternalError(w, "Failed to hash password")
		return
	}

	permissions := "[]"
	if len(req.Permissions) > 0 {
		raw, err := json.Marshal(req.Permissions)
		if err != nil {
			WriteBadRequest(w, "Invalid permissions", nil)
			return
		}
		permissions = string(raw)
	}

	now := time.Now()
	user, err := h.queries.CreateUser(ctx, store.CreateUserParams{
		PublicID:     uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Name:         req.Name,
		Permissions:  permissions,
		Status:       workflow.StatusDraft,
		CreatedBy:    actor.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		slog.Error("creating user", "error", err)
		WriteInternalError(w, "Failed to create user")
		return
	}

	WriteCreated(w, user)
}

// UpdateUser handles PUT /users/{id}.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActor(r)

	user, ok := requireEntityByID(w, r, "user", func(id int64) (model.User, error) {
		return h.queries.GetUserByID(ctx, id)
	})
	if !ok {
		return
	}

	if err := h.moderation.CanEdit(ctx, workflow.KindUser, user.ID, actor); err != nil {
		writeServiceError(w, err)
		return
	}

	var req UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	params := store.UpdateUserParams{
		ID:          user.ID,
		Email:       user.Email,
		Role:        user.Role,
		Name:        user.Name,
		Permissions: user.Permissions,
		UpdatedAt:   time.Now(),
	}
	if req.Email != nil {
		params.Email = strings.TrimSpace(strings.ToLower(*req.Email))
	}
	if req.Name != nil {
		params.Name = *req.Name
	}
	if req.Role != nil {
		if !knownRoles[*req.Role] {
			WriteValidationError(w, map[string]string{"role": "Unknown role"})
			return
		}
		params.Role = *req.Role
	}
	if req.Permissions != nil {
		raw, err := json.Marshal(*req.Permissions)
		if err != nil {
			WriteBadRequest(w, "Invalid permissions", nil)
			return
		}
		params.Permissions = string(raw)
	}

	if params.Email == "" {
		WriteValidationError(w, map[string]string{"email": "Email is required"})
		return
	}
	if req.Password != nil && len(*req.Password) < 8 {
		WriteValidationError(w, map[string]string{"password": "Password must be at least 8 characters"})
		return
	}

	updated, err := h.queries.UpdateUser(ctx, params)
	if err != nil {
		slog.Error("updating user", "user_id", user.ID, "error", err)
		WriteInternalError(w, "Failed to update user")
		return
	}

	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			WriteInternalError(w, "Failed to hash password")
			return
		}
		if err := h.queries.UpdateUserPassword(ctx, user.ID, hash, time.Now()); err != nil {
			slog.Error("updating password", "user_id", user.ID, "error", err)
			WriteInternalError(w, "Failed to update password")
			return
		}
		// Password changes invalidate every outstanding token.
		if err := h.queries.RevokeUserTokens(ctx, user.ID, time.Now()); err != nil {
			slog.Warn("revoking tokens after password change", "user_id", user.ID, "error", err)
		}
	}

	WriteSuccess(w, updated, nil)
}
