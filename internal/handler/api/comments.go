// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pressroom-io/pressroom/internal/middleware"
	"github.com/pressroom-io/pressroom/internal/model"
	"github.com/pressroom-io/pressroom/internal/service"
	"github.com/pressroom-io/pressroom/internal/store"
	"github.com/pressroom-io/pressroom/internal/workflow"
)

// CreateCommentRequest is the request body for POST /articles/{id}/comments.
type CreateCommentRequest struct {
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
	Body        string `json:"body"`
}

// CreateComment handles POST /articles/{id}/comments: public submission on a
// published article. Comments are created in review and invisible until a
// moderator approves them.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	article, ok := requireEntityByID(w, r, "article", func(id int64) (model.Article, error) {
		return h.queries.GetArticleByID(ctx, id)
	})
	if !ok {
		return
	}
	if !article.IsPublished() {
		WriteNotFound(w, "Article not found")
		return
	}

	var req CreateCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	fieldErrors := make(map[string]string)
	if strings.TrimSpace(req.AuthorName) == "" {
		fieldErrors["author_name"] = "Name is required"
	}
	if strings.TrimSpace(req.Body) == "" {
		fieldErrors["body"] = "Comment body is required"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	comment, err := h.queries.CreateComment(ctx, store.CreateCommentParams{
		ArticleID:   article.ID,
		AuthorName:  strings.TrimSpace(req.AuthorName),
		AuthorEmail: strings.TrimSpace(strings.ToLower(req.AuthorEmail)),
		Body:        service.SanitizeHTML(req.Body),
		CreatedAt:   time.Now(),
	})
	if err != nil {
		slog.Error("creating comment", "article_id", article.ID, "error", err)
		WriteInternalError(w, "Failed to create comment")
		return
	}

	WriteCreated(w, comment)
}

// ListArticleComments handles GET /articles/{id}/comments: published
// comments only, for the public read surface.
func (h *Handler) ListArticleComments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	article, ok := requireEntityByID(w, r, "article", func(id int64) (model.Article, error) {
		return h.queries.GetArticleByID(ctx, id)
	})
	if !ok {
		return
	}

	comments, err := h.queries.ListPublishedComments(ctx, article.ID)
	if err != nil {
		WriteInternalError(w, "Failed to list comments")
		return
	}

	WriteSuccess(w, nonNil(comments), nil)
}

// ListCommentsInReview handles GET /comments/review-queue. Privileged only.
func (h *Handler) ListCommentsInReview(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r)
	if !workflow.CanViewReviewQueue(actor) {
		WriteForbidden(w, "Action not permitted")
		return
	}

	comments, err := h.queries.ListCommentsInReview(r.Context())
	if err != nil {
		WriteInternalError(w, "Failed to list comments")
		return
	}

	WriteSuccess(w, nonNil(comments), &Meta{Total: int64(len(comments))})
}

// ApproveComment handles POST /comments/{id}/approve.
func (h *Handler) ApproveComment(w http.ResponseWriter, r *http.Request) {
	h.reviewComment(w, r, workflow.ActionApprove)
}

// RejectComment handles POST /comments/{id}/reject.
func (h *Handler) RejectComment(w http.ResponseWriter, r *http.Request) {
	h.reviewComment(w, r, workflow.ActionReject)
}

// reviewComment applies an approve or reject decision. Comments only know
// the in_review, published and rejected states; submit and archive do not
// apply to them.
func (h *Handler) reviewComment(w http.ResponseWriter, r *http.Request, action workflow.Action) {
	ctx := r.Context()
	actor := middleware.GetActor(r)

	if !actor.Privileged() {
		WriteForbidden(w, "Action not permitted")
		return
	}

	comment, ok := requireEntityByID(w, r, "comment", func(id int64) (model.Comment, error) {
		return h.queries.GetCommentByID(ctx, id)
	})
	if !ok {
		return
	}
	if comment.Status != workflow.StatusInReview {
		WriteError(w, http.StatusConflict, "invalid_transition",
			"comment is not awaiting review", nil)
		return
	}

	params := store.ReviewCommentParams{
		ID:         comment.ID,
		ReviewedBy: sql.NullInt64{Int64: actor.ID, Valid: true},
		ReviewedAt: sql.NullTime{Time: time.Now(), Valid: true},
	}
	decision := "comment approved"
	switch action {
	case workflow.ActionApprove:
		params.Status = workflow.StatusPublished
	case workflow.ActionReject:
		var req RejectRequest
		_ = decodeBodyQuietly(r, &req)
		params.Status = workflow.StatusRejected
		params.ReviewComment = sql.NullString{String: req.Comment, Valid: true}
		decision = "comment rejected"
	}

	updated, err := h.queries.ReviewComment(ctx, params)
	if err != nil {
		slog.Error("reviewing comment", "comment_id", comment.ID, "error", err)
		WriteInternalError(w, "Failed to review comment")
		return
	}

	_ = h.events.LogInfo(ctx, model.EventCategoryWorkflow, decision, &actor.ID,
		map[string]any{"comment_id": comment.ID, "article_id": comment.ArticleID})

	WriteSuccess(w, updated, nil)
}

// decodeBodyQuietly decodes an optional JSON body, tolerating its absence.
func decodeBodyQuietly(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
