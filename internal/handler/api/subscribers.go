// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pressroom-io/pressroom/internal/middleware"
	"github.com/pressroom-io/pressroom/internal/model"
)

// SubscribeRequest is the request body for POST /subscribers.
type SubscribeRequest struct {
	Email string `json:"email"`
}

// UnsubscribeRequest is the request body for POST /subscribers/unsubscribe.
type UnsubscribeRequest struct {
	Token string `json:"token"`
}

// Subscribe handles POST /subscribers: public newsletter signup.
// Re-subscribing a previously unsubscribed address reactivates it.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SubscribeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		WriteValidationError(w, map[string]string{"email": "A valid email is required"})
		return
	}

	existing, err := h.queries.GetSubscriberByEmail(ctx, email)
	if err == nil {
		if existing.Status == model.SubscriberStatusActive {
			WriteSuccess(w, map[string]string{"status": "subscribed"}, nil)
			return
		}
		if err := h.queries.ResubscribeSubscriber(ctx, existing.ID); err != nil {
			slog.Error("resubscribing", "subscriber_id", existing.ID, "error", err)
			WriteInternalError(w, "Failed to subscribe")
			return
		}
		WriteSuccess(w, map[string]string{"status": "subscribed"}, nil)
		return
	}
	if !errors.Is(err, sql.ErrNoRows) {
		WriteInternalError(w, "Failed to subscribe")
		return
	}

	if _, err := h.queries.CreateSubscriber(ctx, email, uuid.NewString(), time.Now()); err != nil {
		slog.Error("creating subscriber", "error", err)
		WriteInternalError(w, "Failed to subscribe")
		return
	}

	WriteCreated(w, map[string]string{"status": "subscribed"})
}

// Unsubscribe handles POST /subscribers/unsubscribe. The token was issued at
// signup, so no authentication is needed.
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req UnsubscribeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Token == "" {
		WriteBadRequest(w, "Token is required", nil)
		return
	}

	subscriber, err := h.queries.GetSubscriberByToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Unknown token")
		} else {
			WriteInternalError(w, "Failed to unsubscribe")
		}
		return
	}

	if err := h.queries.UnsubscribeSubscriber(ctx, subscriber.ID, time.Now()); err != nil {
		slog.Error("unsubscribing", "subscriber_id", subscriber.ID, "error", err)
		WriteInternalError(w, "Failed to unsubscribe")
		return
	}

	WriteSuccess(w, map[string]string{"status": "unsubscribed"}, nil)
}

// ListSubscribers handles GET /subscribers: the admin listing.
func (h *Handler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActor(r)

	if !actor.Privileged() {
		WriteForbidden(w, "Action not permitted")
		return
	}

	page, perPage := parsePagination(r, 50, 200)
	subscribers, err := h.queries.ListSubscribers(ctx, listParamsFor(page, perPage))
	if err != nil {
		WriteInternalError(w, "Failed to list subscribers")
		return
	}

	total, err := h.queries.CountSubscribersByStatus(ctx, model.SubscriberStatusActive)
	if err != nil {
		WriteInternalError(w, "Failed to count subscribers")
		return
	}

	WriteSuccess(w, nonNil(subscribers), &Meta{
		Total: total, Page: page, PerPage: perPage,
		Pages: totalPages(total, perPage),
	})
}
