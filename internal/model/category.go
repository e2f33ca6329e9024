// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"

	"github.com/pressroom-io/pressroom/internal/workflow"
)

// Category is a workflow-governed article category.
type Category struct {
	ID            int64           `json:"id"`
	PublicID      string          `json:"public_id"`
	Name          string          `json:"name"`
	Slug          string          `json:"slug"`
	Description   sql.NullString  `json:"description,omitempty"`
	Status        workflow.Status `json:"status"`
	ReviewComment sql.NullString  `json:"review_comment,omitempty"`
	CreatedBy     int64           `json:"created_by"`
	SubmittedBy   sql.NullInt64   `json:"submitted_by,omitempty"`
	ReviewedBy    sql.NullInt64   `json:"reviewed_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	SubmittedAt   sql.NullTime    `json:"submitted_at,omitempty"`
	ReviewedAt    sql.NullTime    `json:"reviewed_at,omitempty"`
	PublishedAt   sql.NullTime    `json:"published_at,omitempty"`
}

// Ref returns the entity fields workflow decisions depend on.
func (c *Category) Ref() workflow.EntityRef {
	return workflow.EntityRef{
		Kind:          workflow.KindCategory,
		Status:        c.Status,
		CreatedByID:   c.CreatedBy,
		SubmittedByID: c.SubmittedBy.Int64,
	}
}
