// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pressroom-io/pressroom/internal/middleware"
	"github.com/pressroom-io/pressroom/internal/model"
	"github.com/pressroom-io/pressroom/internal/service"
	"github.com/pressroom-io/pressroom/internal/store"
	"github.com/pressroom-io/pressroom/internal/util"
	"github.com/pressroom-io/pressroom/internal/workflow"
)

// CreateArticleRequest is the request body for POST /articles.
type CreateArticleRequest struct {
	Title       string     `json:"title"`
	Slug        string     `json:"slug,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	Body        string     `json:"body,omitempty"`
	CategoryID  *int64     `json:"category_id,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// UpdateArticleRequest is the request body for PUT /articles/{id}.
// Omitted fields keep their current values.
type UpdateArticleRequest struct {
	Title       *string    `json:"title,omitempty"`
	Slug        *string    `json:"slug,omitempty"`
	Summary     *string    `json:"summary,omitempty"`
	Body        *string    `json:"body,omitempty"`
	CategoryID  *int64     `json:"category_id,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// CreateArticle handles POST /articles. New articles always start in draft.
func (h *Handler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActor(r)

	if !workflow.CanCreate(workflow.KindArticle, actor) {
		WriteForbidden(w, "Action not permitted")
		return
	}

	var req CreateArticleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" {
		WriteValidationError(w, map[string]string{"title": "Title is required"})
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = util.Slugify(req.Title)
	}
	if !util.IsValidSlug(slug) {
		WriteValidationError(w, map[string]string{"slug": "Invalid slug"})
		return
	}
	exists, err := h.queries.ArticleSlugExists(ctx, slug)
	if err != nil {
		WriteInternalError(w, "Failed to check slug")
		return
	}
	if exists {
		WriteValidationError(w, map[string]string{"slug": "Slug already exists"})
		return
	}

	now := time.Now()
	article, err := h.queries.CreateArticle(ctx, store.CreateArticleParams{
		PublicID:    uuid.NewString(),
		Title:       req.Title,
		Slug:        slug,
		Summary:     req.Summary,
		Body:        req.Body,
		Status:      workflow.StatusDraft,
		CategoryID:  nullInt64(req.CategoryID),
		CreatedBy:   actor.ID,
		ScheduledAt: nullTime(req.ScheduledAt),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		slog.Error("creating article", "error", err)
		WriteInternalError(w, "Failed to create article")
		return
	}

	// The creating journalist is the main author until someone reorders.
	if _, err := h.queries.AddArticleAuthor(ctx, article.ID, actor.ID, now); err != nil {
		slog.Warn("adding initial author", "article_id", article.ID, "error", err)
	}

	WriteCreated(w, article)
}

// UpdateArticle handles PUT /articles/{id}. Workflow columns are untouched;
// content edits are only allowed while the workflow permits editing.
func (h *Handler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActor(r)

	article, ok := requireEntityByID(w, r, "article", func(id int64) (model.Article, error) {
		return h.queries.GetArticleByID(ctx, id)
	})
	if !ok {
		return
	}

	if err := h.moderation.CanEdit(ctx, workflow.KindArticle, article.ID, actor); err != nil {
		writeServiceError(w, err)
		return
	}

	var req UpdateArticleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	params := store.UpdateArticleParams{
		ID:          article.ID,
		Title:       article.Title,
		Slug:        article.Slug,
		Summary:     article.Summary,
		Body:        article.Body,
		CategoryID:  article.CategoryID,
		ScheduledAt: article.ScheduledAt,
		UpdatedAt:   time.Now(),
	}
	if req.Title != nil {
		params.Title = *req.Title
	}
	if req.Slug != nil {
		params.Slug = *req.Slug
	}
	if req.Summary != nil {
		params.Summary = *req.Summary
	}
	if req.Body != nil {
		params.Body = *req.Body
	}
	if req.CategoryID != nil {
		params.CategoryID = nullInt64(req.CategoryID)
	}
	if req.ScheduledAt != nil {
		params.ScheduledAt = nullTime(req.ScheduledAt)
	}

	if params.Title == "" {
		WriteValidationError(w, map[string]string{"title": "Title is required"})
		return
	}
	if params.Slug != article.Slug {
		if !util.IsValidSlug(params.Slug) {
			WriteValidationError(w, map[string]string{"slug": "Invalid slug"})
			return
		}
		exists, err := h.queries.ArticleSlugExists(ctx, params.Slug)
		if err != nil {
			WriteInternalError(w, "Failed to check slug")
			return
		}
		if exists {
			WriteValidationError(w, map[string]string{"slug": "Slug already exists"})
			return
		}
	}

	updated, err := h.queries.UpdateArticle(ctx, params)
	if err != nil {
		slog.Error("updating article", "article_id", article.ID, "error", err)
		WriteInternalError(w, "Failed to update article")
		return
	}

	WriteSuccess(w, updated, nil)
}

// PublicArticleResponse is the public read form of a published article,
// with the markdown body rendered and sanitized.
type PublicArticleResponse struct {
	PublicID    string     `json:"public_id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Summary     string     `json:"summary"`
	BodyHTML    string     `json:"body_html"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// GetPublishedArticle handles GET /published/{slug}: the public read surface.
func (h *Handler) GetPublishedArticle(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	article, err := h.queries.GetArticleBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Article not found")
		} else {
			WriteInternalError(w, "Failed to retrieve article")
		}
		return
	}
	if !article.IsPublished() {
		WriteNotFound(w, "Article not found")
		return
	}

	rendered, err := service.RenderMarkdown(article.Body)
	if err != nil {
		slog.Error("rendering article body", "article_id", article.ID, "error", err)
		WriteInternalError(w, "Failed to render article")
		return
	}

	resp := PublicArticleResponse{
		PublicID: article.PublicID,
		Title:    article.Title,
		Slug:     article.Slug,
		Summary:  article.Summary,
		BodyHTML: string(rendered),
	}
	if article.PublishedAt.Valid {
		t := article.PublishedAt.Time
		resp.PublishedAt = &t
	}

	WriteSuccess(w, resp, nil)
}

// ListArticleAuthors handles GET /articles/{id}/authors.
func (h *Handler) ListArticleAuthors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	article, ok := requireEntityByID(w, r, "article", func(id int64) (model.Article, error) {
		return h.queries.GetArticleByID(ctx, id)
	})
	if !ok {
		return
	}

	authors, err := h.queries.ListArticleAuthors(ctx, article.ID)
	if err != nil {
		WriteInternalError(w, "Failed to list authors")
		return
	}

	WriteSuccess(w, nonNil(authors), nil)
}

// AuthorRequest is the request body for POST /articles/{id}/authors.
type AuthorRequest struct {
	UserID int64 `json:"user_id"`
}

// AddArticleAuthor handles POST /articles/{id}/authors.
func (h *Handler) AddArticleAuthor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActor(r)

	article, ok := requireEntityByID(w, r, "article", func(id int64) (model.Article, error) {
		return h.queries.GetArticleByID(ctx, id)
	})
	if !ok {
		return
	}
	if err := h.moderation.CanEdit(ctx, workflow.KindArticle, article.ID, actor); err != nil {
		writeServiceError(w, err)
		return
	}

	var req AuthorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID <= 0 {
		WriteValidationError(w, map[string]string{"user_id": "User ID is required"})
		return
	}
	if _, err := h.queries.GetUserByID(ctx, req.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "User not found")
		} else {
			WriteInternalError(w, "Failed to retrieve user")
		}
		return
	}

	author, err := h.queries.AddArticleAuthor(ctx, article.ID, req.UserID, time.Now())
	if err != nil {
		slog.Error("adding author", "article_id", article.ID, "user_id", req.UserID, "error", err)
		WriteInternalError(w, "Failed to add author")
		return
	}

	WriteCreated(w, author)
}

// RemoveArticleAuthor handles DELETE /articles/{id}/authors/{userID}.
func (h *Handler) RemoveArticleAuthor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActor(r)

	article, ok := requireEntityByID(w, r, "article", func(id int64) (model.Article, error) {
		return h.queries.GetArticleByID(ctx, id)
	})
	if !ok {
		return
	}
	if err := h.moderation.CanEdit(ctx, workflow.KindArticle, article.ID, actor); err != nil {
		writeServiceError(w, err)
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		WriteBadRequest(w, "Invalid user ID", nil)
		return
	}

	if err := h.queries.RemoveArticleAuthor(ctx, article.ID, userID); err != nil {
		slog.Error("removing author", "article_id", article.ID, "user_id", userID, "error", err)
		WriteInternalError(w, "Failed to remove author")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReorderAuthorsRequest is the request body for POST /articles/{id}/authors/reorder.
// UserIDs must list every current author; index 0 becomes the main author.
type ReorderAuthorsRequest struct {
	UserIDs []int64 `json:"user_ids"`
}

// ReorderArticleAuthors handles POST /articles/{id}/authors/reorder. The
// whole reorder is one transaction; the response carries the confirmed
// order so callers replace rather than patch their local copy.
func (h *Handler) ReorderArticleAuthors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActor(r)

	article, ok := requireEntityByID(w, r, "article", func(id int64) (model.Article, error) {
		return h.queries.GetArticleByID(ctx, id)
	})
	if !ok {
		return
	}
	if err := h.moderation.CanEdit(ctx, workflow.KindArticle, article.ID, actor); err != nil {
		writeServiceError(w, err)
		return
	}

	var req ReorderAuthorsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.UserIDs) == 0 {
		WriteValidationError(w, map[string]string{"user_ids": "At least one author is required"})
		return
	}

	if err := store.ReorderArticleAuthors(ctx, h.db, article.ID, req.UserIDs); err != nil {
		WriteBadRequest(w, "Reorder failed: "+err.Error(), nil)
		return
	}

	authors, err := h.queries.ListArticleAuthors(ctx, article.ID)
	if err != nil {
		WriteInternalError(w, "Failed to list authors")
		return
	}

	WriteSuccess(w, authors, nil)
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}
