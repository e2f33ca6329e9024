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

const adColumns = `id, public_id, title, placement, target_url, image_url, status, review_comment,
	created_by, submitted_by, reviewed_by,
	created_at, updated_at, submitted_at, reviewed_at, published_at, starts_at, ends_at`

func scanAd(row interface{ Scan(...any) error }) (model.Ad, error) {
	var a model.Ad
	err := row.Scan(
		&a.ID, &a.PublicID, &a.Title, &a.Placement, &a.TargetURL, &a.ImageURL, &a.Status, &a.ReviewComment,
		&a.CreatedBy, &a.SubmittedBy, &a.ReviewedBy,
		&a.CreatedAt, &a.UpdatedAt, &a.SubmittedAt, &a.ReviewedAt, &a.PublishedAt, &a.StartsAt, &a.EndsAt,
	)
	return a, err
}

func (q *Queries) queryAds(ctx context.Context, query string, args ...any) ([]model.Ad, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ads []model.Ad
	for rows.Next() {
		a, err := scanAd(rows)
		if err != nil {
			return nil, err
		}
		ads = append(ads, a)
	}
	return ads, rows.Err()
}

// CreateAdParams holds fields for creating an ad.
type CreateAdParams struct {
	PublicID  string
	Title     string
	Placement string
	TargetURL string
	ImageURL  sql.NullString
	Status    workflow.Status
	CreatedBy int64
	StartsAt  sql.NullTime
	EndsAt    sql.NullTime
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateAd inserts a new ad and returns it.
func (q *Queries) CreateAd(ctx context.Context, arg CreateAdParams) (model.Ad, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO ads (public_id, title, placement, target_url, image_url, status, created_by, starts_at, ends_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+adColumns,
		arg.PublicID, arg.Title, arg.Placement, arg.TargetURL, arg.ImageURL, arg.Status,
		arg.CreatedBy, arg.StartsAt, arg.EndsAt, arg.CreatedAt, arg.UpdatedAt,
	)
	return scanAd(row)
}

// GetAdByID returns an ad by its numeric id.
func (q *Queries) GetAdByID(ctx context.Context, id int64) (model.Ad, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+adColumns+` FROM ads WHERE id = ?`, id)
	return scanAd(row)
}

// ListAds returns ads ordered by most recently updated.
func (q *Queries) ListAds(ctx context.Context, arg ListParams) ([]model.Ad, error) {
	return q.queryAds(ctx, `
		SELECT `+adColumns+` FROM ads
		ORDER BY updated_at DESC LIMIT ? OFFSET ?`, arg.Limit, arg.Offset)
}

// ListAdsByStatus returns a page of ads in the given status.
func (q *Queries) ListAdsByStatus(ctx context.Context, arg ListByStatusParams) ([]model.Ad, error) {
	return q.queryAds(ctx, `
		SELECT `+adColumns+` FROM ads WHERE status = ?
		ORDER BY updated_at DESC LIMIT ? OFFSET ?`, arg.Status, arg.Limit, arg.Offset)
}

// ListAdsInReview returns the ad review queue, oldest first.
func (q *Queries) ListAdsInReview(ctx context.Context) ([]model.Ad, error) {
	return q.queryAds(ctx, `
		SELECT `+adColumns+` FROM ads WHERE status = ?
		ORDER BY submitted_at ASC`, workflow.StatusInReview)
}

// CountAds returns the total number of ads.
func (q *Queries) CountAds(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ads`).Scan(&count)
	return count, err
}

// CountAdsByStatus returns the number of ads in the given status.
func (q *Queries) CountAdsByStatus(ctx context.Context, status workflow.Status) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ads WHERE status = ?`, status).Scan(&count)
	return count, err
}

// UpdateAdParams holds the editable ad fields.
type UpdateAdParams struct {
	ID        int64
	Title     string
	Placement string
	TargetURL string
	ImageURL  sql.NullString
	StartsAt  sql.NullTime
	EndsAt    sql.NullTime
	UpdatedAt time.Time
}

// UpdateAd updates the editable fields of an ad and returns it.
func (q *Queries) UpdateAd(ctx context.Context, arg UpdateAdParams) (model.Ad, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE ads SET title = ?, placement = ?, target_url = ?, image_url = ?, starts_at = ?, ends_at = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+adColumns,
		arg.Title, arg.Placement, arg.TargetURL, arg.ImageURL, arg.StartsAt, arg.EndsAt, arg.UpdatedAt, arg.ID,
	)
	return scanAd(row)
}

// SetAdWorkflow writes the full workflow column set for one ad.
func (q *Queries) SetAdWorkflow(ctx context.Context, arg SetWorkflowParams) (model.Ad, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE ads SET status = ?, review_comment = ?, submitted_by = ?, reviewed_by = ?,
			submitted_at = ?, reviewed_at = ?, published_at = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+adColumns,
		arg.Status, arg.ReviewComment, arg.SubmittedBy, arg.ReviewedBy,
		arg.SubmittedAt, arg.ReviewedAt, arg.PublishedAt, arg.UpdatedAt, arg.ID,
	)
	return scanAd(row)
}

// DeleteAd removes an ad.
func (q *Queries) DeleteAd(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM ads WHERE id = ?`, id)
	return err
}
