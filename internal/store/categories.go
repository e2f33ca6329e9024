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

const categoryColumns = `id, public_id, name, slug, description, status, review_comment,
	created_by, submitted_by, reviewed_by,
	created_at, updated_at, submitted_at, reviewed_at, published_at`

func scanCategory(row interface{ Scan(...any) error }) (model.Category, error) {
	var c model.Category
	err := row.Scan(
		&c.ID, &c.PublicID, &c.Name, &c.Slug, &c.Description, &c.Status, &c.ReviewComment,
		&c.CreatedBy, &c.SubmittedBy, &c.ReviewedBy,
		&c.CreatedAt, &c.UpdatedAt, &c.SubmittedAt, &c.ReviewedAt, &c.PublishedAt,
	)
	return c, err
}

func (q *Queries) queryCategories(ctx context.Context, query string, args ...any) ([]model.Category, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateCategoryParams holds fields for creating a category.
type CreateCategoryParams struct {
	PublicID    string
	Name        string
	Slug        string
	Description sql.NullString
	Status      workflow.Status
	CreatedBy   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateCategory inserts a new category and returns it.
func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (model.Category, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO categories (public_id, name, slug, description, status, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+categoryColumns,
		arg.PublicID, arg.Name, arg.Slug, arg.Description, arg.Status, arg.CreatedBy, arg.CreatedAt, arg.UpdatedAt,
	)
	return scanCategory(row)
}

// GetCategoryByID returns a category by its numeric id.
func (q *Queries) GetCategoryByID(ctx context.Context, id int64) (model.Category, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	return scanCategory(row)
}

// ListCategories returns categories ordered by name.
func (q *Queries) ListCategories(ctx context.Context, arg ListParams) ([]model.Category, error) {
	return q.queryCategories(ctx, `
		SELECT `+categoryColumns+` FROM categories
		ORDER BY name ASC LIMIT ? OFFSET ?`, arg.Limit, arg.Offset)
}

// ListCategoriesByStatus returns a page of categories in the given status.
func (q *Queries) ListCategoriesByStatus(ctx context.Context, arg ListByStatusParams) ([]model.Category, error) {
	return q.queryCategories(ctx, `
		SELECT `+categoryColumns+` FROM categories WHERE status = ?
		ORDER BY name ASC LIMIT ? OFFSET ?`, arg.Status, arg.Limit, arg.Offset)
}

// ListCategoriesInReview returns the category review queue, oldest first.
func (q *Queries) ListCategoriesInReview(ctx context.Context) ([]model.Category, error) {
	return q.queryCategories(ctx, `
		SELECT `+categoryColumns+` FROM categories WHERE status = ?
		ORDER BY submitted_at ASC`, workflow.StatusInReview)
}

// CountCategories returns the total number of categories.
func (q *Queries) CountCategories(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count)
	return count, err
}

// CountCategoriesByStatus returns the number of categories in the given status.
func (q *Queries) CountCategoriesByStatus(ctx context.Context, status workflow.Status) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE status = ?`, status).Scan(&count)
	return count, err
}

// UpdateCategoryParams holds the editable category fields.
type UpdateCategoryParams struct {
	ID          int64
	Name        string
	Slug        string
	Description sql.NullString
	UpdatedAt   time.Time
}

// UpdateCategory updates the editable fields of a category and returns it.
func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (model.Category, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE categories SET name = ?, slug = ?, description = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+categoryColumns,
		arg.Name, arg.Slug, arg.Description, arg.UpdatedAt, arg.ID,
	)
	return scanCategory(row)
}

// SetCategoryWorkflow writes the full workflow column set for one category.
func (q *Queries) SetCategoryWorkflow(ctx context.Context, arg SetWorkflowParams) (model.Category, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE categories SET status = ?, review_comment = ?, submitted_by = ?, reviewed_by = ?,
			submitted_at = ?, reviewed_at = ?, published_at = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+categoryColumns,
		arg.Status, arg.ReviewComment, arg.SubmittedBy, arg.ReviewedBy,
		arg.SubmittedAt, arg.ReviewedAt, arg.PublishedAt, arg.UpdatedAt, arg.ID,
	)
	return scanCategory(row)
}

// DeleteCategory removes a category. Articles keep a NULL category.
func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	return err
}
