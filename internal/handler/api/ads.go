// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pressroom-io/pressroom/internal/middleware"
	"github.com/pressroom-io/pressroom/internal/model"
	"github.com/pressroom-io/pressroom/internal/store"
	"github.com/pressroom-io/pressroom/internal/workflow"
)

// CreateAdRequest is the request body for POST /ads.
type CreateAdRequest struct {
	Title     string     `json:"title"`
	Placement string     `json:"placement"`
	TargetURL string     `json:"target_url"`
	ImageURL  string     `json:"image_url,omitempty"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
}

// UpdateAdRequest is the request body for PUT /ads/{id}.
type UpdateAdRequest struct {
	Title     *string    `json:"title,omitempty"`
	Placement *string    `json:"placement,omitempty"`
	TargetURL *string    `json:"target_url,omitempty"`
	ImageURL  *string    `json:"image_url,omitempty"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
}

// CreateAd handles POST /ads.
func (h *Handler) CreateAd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActor(r)

	if !workflow.CanCreate(workflow.KindAd, actor) {
		WriteForbidden(w, "Action not permitted")
		return
	}

	var req CreateAdRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	fieldErrors := make(map[string]string)
	if req.Title == "" {
		fieldErrors["title"] = "Title is required"
	}
	if req.Placement == "" {
		fieldErrors["placement"] = "Placement is required"
	}
	if req.TargetURL == "" {
		fieldErrors["target_url"] = "Target URL is required"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	now := time.Now()
	ad, err := h.queries.CreateAd(ctx, store.CreateAdParams{
		PublicID:  uuid.NewString(),
		Title:     req.Title,
		Placement: req.Placement,
		TargetURL: req.TargetURL,
		ImageURL:  nullString(req.ImageURL),
		Status:    workflow.StatusDraft,
		CreatedBy: actor.ID,
		StartsAt:  nullTime(req.StartsAt),
		EndsAt:    nullTime(req.EndsAt),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		slog.Error("creating ad", "error", err)
		WriteInternalError(w, "Failed to create ad")
		return
	}

	WriteCreated(w, ad)
}

// UpdateAd handles PUT /ads/{id}.
func (h *Handler) UpdateAd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActor(r)

	ad, ok := requireEntityByID(w, r, "ad", func(id int64) (model.Ad, error) {
		return h.queries.GetAdByID(ctx, id)
	})
	if !ok {
		return
	}

	if err := h.moderation.CanEdit(ctx, workflow.KindAd, ad.ID, actor); err != nil {
		writeServiceError(w, err)
		return
	}

	var req UpdateAdRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	params := store.UpdateAdParams{
		ID:        ad.ID,
		Title:     ad.Title,
		Placement: ad.Placement,
		TargetURL: ad.TargetURL,
		ImageURL:  ad.ImageURL,
		StartsAt:  ad.StartsAt,
		EndsAt:    ad.EndsAt,
		UpdatedAt: time.Now(),
	}
	if req.Title != nil {
		params.Title = *req.Title
	}
	if req.Placement != nil {
		params.Placement = *req.Placement
	}
	if req.TargetURL != nil {
		params.TargetURL = *req.TargetURL
	}
	if req.ImageURL != nil {
		params.ImageURL = nullString(*req.ImageURL)
	}
	if req.StartsAt != nil {
		params.StartsAt = nullTime(req.StartsAt)
	}
	if req.EndsAt != nil {
		params.EndsAt = nullTime(req.EndsAt)
	}

	if params.Title == "" {
		WriteValidationError(w, map[string]string{"title": "Title is required"})
		return
	}

	updated, err := h.queries.UpdateAd(ctx, params)
	if err != nil {
		slog.Error("updating ad", "ad_id", ad.ID, "error", err)
		WriteInternalError(w, "Failed to update ad")
		return
	}

	WriteSuccess(w, updated, nil)
}
