// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pressroom-io/pressroom/internal/cache"
	"github.com/pressroom-io/pressroom/internal/middleware"
	"github.com/pressroom-io/pressroom/internal/service"
	"github.com/pressroom-io/pressroom/internal/store"
	"github.com/pressroom-io/pressroom/internal/workflow"
)

// listPage is the cached form of one listing page.
type listPage struct {
	Items json.RawMessage `json:"items"`
	Total int64           `json:"total"`
}

// List handles GET /{kind}. Privileged callers see every status and may
// filter with ?status=; everyone else sees only live entities.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, ok := parseKindParam(w, r)
	if !ok {
		return
	}
	actor := middleware.GetActor(r)

	page, perPage := parsePagination(r, 20, 100)
	params := listParamsFor(page, perPage)

	status := workflow.Status(r.URL.Query().Get("status"))
	if !actor.Privileged() {
		status = kind.LiveStatus()
	}
	if status != "" && !kind.ValidStatus(status) {
		WriteBadRequest(w, "Unknown status", map[string]string{"status": string(status)})
		return
	}

	// Live listings are the hot path; serve them from cache when possible.
	cacheKey := ""
	if status == kind.LiveStatus() {
		cacheKey = cache.ListKey(kind, status, int64(page))
		if cached, ok := h.cachedPage(ctx, cacheKey); ok {
			WriteSuccess(w, cached.Items, &Meta{
				Total: cached.Total, Page: page, PerPage: perPage,
				Pages: totalPages(cached.Total, perPage),
			})
			return
		}
	}

	items, total, err := h.listByKind(ctx, kind, status, params)
	if err != nil {
		slog.Error("listing entities", "kind", kind, "error", err)
		WriteInternalError(w, "Failed to list entities")
		return
	}

	if cacheKey != "" {
		h.storePage(ctx, cacheKey, items, total)
	}

	WriteSuccess(w, items, &Meta{
		Total: total, Page: page, PerPage: perPage,
		Pages: totalPages(total, perPage),
	})
}

// Get handles GET /{kind}/{id}. Non-privileged callers only see live
// entities, except for their own.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKindParam(w, r)
	if !ok {
		return
	}
	actor := middleware.GetActor(r)

	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid entity ID", nil)
		return
	}

	entity, ref, err := h.getByKind(r.Context(), kind, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if !actor.Privileged() && ref.Status != kind.LiveStatus() && !ref.Owns(actor) {
		// Hidden entities look absent rather than forbidden.
		WriteNotFound(w, "Entity not found")
		return
	}

	WriteSuccess(w, entity, nil)
}

// ReviewQueue handles GET /{kind}/review-queue and GET /review-queue.
// Privileged callers only; with a kind the combined queue is filtered to it.
func (h *Handler) ReviewQueue(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r)

	var kind workflow.Kind
	if raw := chi.URLParam(r, "kind"); raw != "" {
		kind = workflow.Kind(raw)
	} else if raw := r.URL.Query().Get("kind"); raw != "" {
		kind = workflow.Kind(raw)
	}
	if kind != "" && !kind.Valid() {
		WriteNotFound(w, "Unknown entity kind")
		return
	}

	items, err := h.queue.ReviewQueue(r.Context(), actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if kind != "" {
		filtered := items[:0]
		for _, item := range items {
			if item.Kind == kind {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}
	if items == nil {
		items = []service.QueueItem{}
	}

	WriteSuccess(w, items, &Meta{Total: int64(len(items))})
}

// Submit handles POST /{kind}/{id}/submit.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, workflow.ActionSubmit)
}

// Approve handles POST /{kind}/{id}/approve.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, workflow.ActionApprove)
}

// RejectRequest is the request body for POST /{kind}/{id}/reject.
type RejectRequest struct {
	Comment string `json:"comment"`
}

// Reject handles POST /{kind}/{id}/reject. The comment may be empty; it is
// stored as given.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, workflow.ActionReject)
}

// Archive handles POST /{kind}/{id}/archive.
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, workflow.ActionArchive)
}

// Publish handles PATCH /{kind}/{id}/publish.
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, workflow.ActionPublish)
}

// Unpublish handles PATCH /{kind}/{id}/unpublish.
func (h *Handler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, workflow.ActionUnpublish)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, action workflow.Action) {
	kind, ok := parseKindParam(w, r)
	if !ok {
		return
	}
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid entity ID", nil)
		return
	}

	in := service.TransitionInput{
		Kind:   kind,
		ID:     id,
		Action: action,
		Actor:  middleware.GetActor(r),
	}
	if action == workflow.ActionReject {
		var req RejectRequest
		// A missing or empty body means an empty comment, not a client error.
		_ = json.NewDecoder(r.Body).Decode(&req)
		in.Comment = req.Comment
	}

	result, err := h.moderation.Transition(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, result, nil)
}

// Delete handles DELETE /{kind}/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKindParam(w, r)
	if !ok {
		return
	}
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid entity ID", nil)
		return
	}

	if err := h.moderation.Delete(r.Context(), kind, id, middleware.GetActor(r)); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listByKind(ctx context.Context, kind workflow.Kind, status workflow.Status, params store.ListParams) (any, int64, error) {
	byStatus := store.ListByStatusParams{Status: status, Limit: params.Limit, Offset: params.Offset}

	switch kind {
	case workflow.KindArticle:
		if status == "" {
			items, err := h.queries.ListArticles(ctx, params)
			if err != nil {
				return nil, 0, err
			}
			total, err := h.queries.CountArticles(ctx)
			return nonNil(items), total, err
		}
		items, err := h.queries.ListArticlesByStatus(ctx, byStatus)
		if err != nil {
			return nil, 0, err
		}
		total, err := h.queries.CountArticlesByStatus(ctx, status)
		return nonNil(items), total, err
	case workflow.KindCategory:
		if status == "" {
			items, err := h.queries.ListCategories(ctx, params)
			if err != nil {
				return nil, 0, err
			}
			total, err := h.queries.CountCategories(ctx)
			return nonNil(items), total, err
		}
		items, err := h.queries.ListCategoriesByStatus(ctx, byStatus)
		if err != nil {
			return nil, 0, err
		}
		total, err := h.queries.CountCategoriesByStatus(ctx, status)
		return nonNil(items), total, err
	case workflow.KindAd:
		if status == "" {
			items, err := h.queries.ListAds(ctx, params)
			if err != nil {
				return nil, 0, err
			}
			total, err := h.queries.CountAds(ctx)
			return nonNil(items), total, err
		}
		items, err := h.queries.ListAdsByStatus(ctx, byStatus)
		if err != nil {
			return nil, 0, err
		}
		total, err := h.queries.CountAdsByStatus(ctx, status)
		return nonNil(items), total, err
	case workflow.KindUser:
		if status == "" {
			items, err := h.queries.ListUsers(ctx, params)
			if err != nil {
				return nil, 0, err
			}
			total, err := h.queries.CountUsers(ctx)
			return nonNil(items), total, err
		}
		items, err := h.queries.ListUsersByStatus(ctx, byStatus)
		if err != nil {
			return nil, 0, err
		}
		total, err := h.queries.CountUsersByStatus(ctx, status)
		return nonNil(items), total, err
	default:
		return nil, 0, service.ErrUnknownKind
	}
}

// wrapLookup maps a row lookup failure to the service error vocabulary.
func wrapLookup(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return service.ErrNotFound
	}
	return fmt.Errorf("loading entity: %w", err)
}

// nonNil keeps empty listings encoding as [] instead of null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func (h *Handler) getByKind(ctx context.Context, kind workflow.Kind, id int64) (any, workflow.EntityRef, error) {
	switch kind {
	case workflow.KindArticle:
		a, err := h.queries.GetArticleByID(ctx, id)
		if err != nil {
			return nil, workflow.EntityRef{}, wrapLookup(err)
		}
		return a, a.Ref(), nil
	case workflow.KindCategory:
		c, err := h.queries.GetCategoryByID(ctx, id)
		if err != nil {
			return nil, workflow.EntityRef{}, wrapLookup(err)
		}
		return c, c.Ref(), nil
	case workflow.KindAd:
		a, err := h.queries.GetAdByID(ctx, id)
		if err != nil {
			return nil, workflow.EntityRef{}, wrapLookup(err)
		}
		return a, a.Ref(), nil
	case workflow.KindUser:
		u, err := h.queries.GetUserByID(ctx, id)
		if err != nil {
			return nil, workflow.EntityRef{}, wrapLookup(err)
		}
		return u, u.Ref(), nil
	default:
		return nil, workflow.EntityRef{}, service.ErrUnknownKind
	}
}

func (h *Handler) cachedPage(ctx context.Context, key string) (listPage, bool) {
	if h.cache == nil {
		return listPage{}, false
	}
	raw, err := h.cache.Get(ctx, key)
	if err != nil {
		return listPage{}, false
	}
	var page listPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return listPage{}, false
	}
	return page, true
}

func (h *Handler) storePage(ctx context.Context, key string, items any, total int64) {
	if h.cache == nil {
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	encoded, err := json.Marshal(listPage{Items: raw, Total: total})
	if err != nil {
		return
	}
	if err := h.cache.Set(ctx, key, encoded, 0); err != nil {
		slog.Warn("caching list page", "key", key, "error", err)
	}
}
