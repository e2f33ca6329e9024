// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"

	"github.com/pressroom-io/pressroom/internal/workflow"
)

// Ad placements.
const (
	AdPlacementHeader  = "header"
	AdPlacementSidebar = "sidebar"
	AdPlacementInline  = "inline"
	AdPlacementFooter  = "footer"
)

// ValidAdPlacements contains all valid ad placements.
var ValidAdPlacements = []string{AdPlacementHeader, AdPlacementSidebar, AdPlacementInline, AdPlacementFooter}

// Ad is a workflow-governed advertisement slot.
type Ad struct {
	ID            int64           `json:"id"`
	PublicID      string          `json:"public_id"`
	Title         string          `json:"title"`
	Placement     string          `json:"placement"`
	TargetURL     string          `json:"target_url"`
	ImageURL      sql.NullString  `json:"image_url,omitempty"`
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
	StartsAt      sql.NullTime    `json:"starts_at,omitempty"`
	EndsAt        sql.NullTime    `json:"ends_at,omitempty"`
}

// Ref returns the entity fields workflow decisions depend on.
func (a *Ad) Ref() workflow.EntityRef {
	return workflow.EntityRef{
		Kind:          workflow.KindAd,
		Status:        a.Status,
		CreatedByID:   a.CreatedBy,
		SubmittedByID: a.SubmittedBy.Int64,
	}
}

// IsValidAdPlacement checks if a placement is valid.
func IsValidAdPlacement(p string) bool {
	for _, known := range ValidAdPlacements {
		if p == known {
			return true
		}
	}
	return false
}
