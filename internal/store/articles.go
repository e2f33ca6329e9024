// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pressroom-io/pressroom/internal/model"
	"github.com/pressroom-io/pressroom/internal/workflow"
)

const articleColumns = `id, public_id, title, slug, summary, body, status, review_comment,
	category_id, created_by, submitted_by, reviewed_by,
	created_at, updated_at, submitted_at, reviewed_at, published_at, scheduled_at`

func scanArticle(row interface{ Scan(...any) error }) (model.Article, error) {
	var a model.Article
	err := row.Scan(
		&a.ID, &a.PublicID, &a.Title, &a.Slug, &a.Summary, &a.Body, &a.Status, &a.ReviewComment,
		&a.CategoryID, &a.CreatedBy, &a.SubmittedBy, &a.ReviewedBy,
		&a.CreatedAt, &a.UpdatedAt, &a.SubmittedAt, &a.ReviewedAt, &a.PublishedAt, &a.ScheduledAt,
	)
	return a, err
}

func (q *Queries) queryArticles(ctx context.Context, query string, args ...any) ([]model.Article, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []model.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// CreateArticleParams holds fields for creating an article.
type CreateArticleParams struct {
	PublicID    string
	Title       string
	Slug        string
	Summary     string
	Body        string
	Status      workflow.Status
	CategoryID  sql.NullInt64
	CreatedBy   int64
	ScheduledAt sql.NullTime
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateArticle inserts a new article and returns it.
func (q *Queries) CreateArticle(ctx context.Context, arg CreateArticleParams) (model.Article, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO articles (public_id, title, slug, summary, body, status, category_id, created_by, scheduled_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+articleColumns,
		arg.PublicID, arg.Title, arg.Slug, arg.Summary, arg.Body, arg.Status,
		arg.CategoryID, arg.CreatedBy, arg.ScheduledAt, arg.CreatedAt, arg.UpdatedAt,
	)
	return scanArticle(row)
}

// GetArticleByID returns an article by its numeric id.
func (q *Queries) GetArticleByID(ctx context.Context, id int64) (model.Article, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	return scanArticle(row)
}

// GetArticleBySlug returns an article by its slug.
func (q *Queries) GetArticleBySlug(ctx context.Context, slug string) (model.Article, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE slug = ?`, slug)
	return scanArticle(row)
}

// ListArticles returns articles ordered by most recently updated.
func (q *Queries) ListArticles(ctx context.Context, arg ListParams) ([]model.Article, error) {
	return q.queryArticles(ctx, `
		SELECT `+articleColumns+` FROM articles
		ORDER BY updated_at DESC LIMIT ? OFFSET ?`, arg.Limit, arg.Offset)
}

// ListArticlesByStatus returns articles in the given status.
func (q *Queries) ListArticlesByStatus(ctx context.Context, arg ListByStatusParams) ([]model.Article, error) {
	return q.queryArticles(ctx, `
		SELECT `+articleColumns+` FROM articles WHERE status = ?
		ORDER BY updated_at DESC LIMIT ? OFFSET ?`, arg.Status, arg.Limit, arg.Offset)
}

// ListArticlesInReview returns the full review queue ordered by submission
// time, oldest first.
func (q *Queries) ListArticlesInReview(ctx context.Context) ([]model.Article, error) {
	return q.queryArticles(ctx, `
		SELECT `+articleColumns+` FROM articles WHERE status = ?
		ORDER BY submitted_at ASC`, workflow.StatusInReview)
}

// ListPublishedArticles returns published articles ordered by publication
// time, newest first.
func (q *Queries) ListPublishedArticles(ctx context.Context, arg ListParams) ([]model.Article, error) {
	return q.queryArticles(ctx, `
		SELECT `+articleColumns+` FROM articles WHERE status = ?
		ORDER BY published_at DESC LIMIT ? OFFSET ?`, workflow.StatusPublished, arg.Limit, arg.Offset)
}

// ListScheduledArticlesDue returns draft articles whose scheduled_at has passed.
func (q *Queries) ListScheduledArticlesDue(ctx context.Context, now time.Time) ([]model.Article, error) {
	return q.queryArticles(ctx, `
		SELECT `+articleColumns+` FROM articles
		WHERE status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?
		ORDER BY scheduled_at ASC`, workflow.StatusDraft, now)
}

// CountArticles returns the total number of articles.
func (q *Queries) CountArticles(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count)
	return count, err
}

// CountArticlesByStatus returns the number of articles in the given status.
func (q *Queries) CountArticlesByStatus(ctx context.Context, status workflow.Status) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles WHERE status = ?`, status).Scan(&count)
	return count, err
}

// UpdateArticleParams holds the editable article fields.
type UpdateArticleParams struct {
	ID          int64
	Title       string
	Slug        string
	Summary     string
	Body        string
	CategoryID  sql.NullInt64
	ScheduledAt sql.NullTime
	UpdatedAt   time.Time
}

// UpdateArticle updates the editable fields of an article and returns it.
// Workflow columns are only touched by SetArticleWorkflow.
func (q *Queries) UpdateArticle(ctx context.Context, arg UpdateArticleParams) (model.Article, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE articles SET title = ?, slug = ?, summary = ?, body = ?, category_id = ?, scheduled_at = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+articleColumns,
		arg.Title, arg.Slug, arg.Summary, arg.Body, arg.CategoryID, arg.ScheduledAt, arg.UpdatedAt, arg.ID,
	)
	return scanArticle(row)
}

// SetArticleWorkflow writes the full workflow column set for one article.
func (q *Queries) SetArticleWorkflow(ctx context.Context, arg SetWorkflowParams) (model.Article, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE articles SET status = ?, review_comment = ?, submitted_by = ?, reviewed_by = ?,
			submitted_at = ?, reviewed_at = ?, published_at = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+articleColumns,
		arg.Status, arg.ReviewComment, arg.SubmittedBy, arg.ReviewedBy,
		arg.SubmittedAt, arg.ReviewedAt, arg.PublishedAt, arg.UpdatedAt, arg.ID,
	)
	return scanArticle(row)
}

// DeleteArticle removes an article. Comments and author links cascade.
func (q *Queries) DeleteArticle(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	return err
}

// ArticleSlugExists reports whether a slug is already taken.
func (q *Queries) ArticleSlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles WHERE slug = ?`, slug).Scan(&count)
	return count > 0, err
}
