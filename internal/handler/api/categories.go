// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pressroom-io/pressroom/internal/middleware"
	"github.com/pressroom-io/pressroom/internal/model"
	"github.com/pressroom-io/pressroom/internal/store"
	"github.com/pressroom-io/pressroom/internal/util"
	"github.com/pressroom-io/pressroom/internal/workflow"
)

// CreateCategoryRequest is the request body for POST /categories.
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
}

// UpdateCategoryRequest is the request body for PUT /categories/{id}.
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CreateCategory handles POST /categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActor(r)

	if !workflow.CanCreate(workflow.KindCategory, actor) {
		WriteForbidden(w, "Action not permitted")
		return
	}

	var req CreateCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		WriteValidationError(w, map[string]string{"name": "Name is required"})
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = util.Slugify(req.Name)
	}
	if !util.IsValidSlug(slug) {
		WriteValidationError(w, map[string]string{"slug": "Invalid slug"})
		return
	}

	now := time.Now()
	category, err := h.queries.CreateCategory(ctx, store.CreateCategoryParams{
		PublicID:    uuid.NewString(),
		Name:        req.Name,
		Slug:        slug,
		Description: nullString(req.Description),
		Status:      workflow.StatusDraft,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		slog.Error("creating category", "error", err)
		WriteInternalError(w, "Failed to create category")
		return
	}

	WriteCreated(w, category)
}

// UpdateCategory handles PUT /categories/{id}.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActor(r)

	category, ok := requireEntityByID(w, r, "category", func(id int64) (model.Category, error) {
		return h.queries.GetCategoryByID(ctx, id)
	})
	if !ok {
		return
	}

	if err := h.moderation.CanEdit(ctx, workflow.KindCategory, category.ID, actor); err != nil {
		writeServiceError(w, err)
		return
	}

	var req UpdateCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	params := store.UpdateCategoryParams{
		ID:          category.ID,
		Name:        category.Name,
		Slug:        category.Slug,
		Description: category.Description,
		UpdatedAt:   time.Now(),
	}
	if req.Name != nil {
		params.Name = *req.Name
	}
	if req.Slug != nil {
		params.Slug = *req.Slug
	}
	if req.Description != nil {
		params.Description = nullString(*req.Description)
	}

	if params.Name == "" {
		WriteValidationError(w, map[string]string{"name": "Name is required"})
		return
	}
	if !util.IsValidSlug(params.Slug) {
		WriteValidationError(w, map[string]string{"slug": "Invalid slug"})
		return
	}

	updated, err := h.queries.UpdateCategory(ctx, params)
	if err != nil {
		slog.Error("updating category", "category_id", category.ID, "error", err)
		WriteInternalError(w, "Failed to update category")
		return
	}

	WriteSuccess(w, updated, nil)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
