// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including Article, Category, Ad, User, Comment, and the
// newsletter Subscriber.
package model

import (
	"database/sql"
	"time"

	"github.com/pressroom-io/pressroom/internal/workflow"
)

// Article is a workflow-governed news article.
type Article struct {
	ID            int64           `json:"id"`
	PublicID      string          `json:"public_id"`
	Title         string          `json:"title"`
	Slug          string          `json:"slug"`
	Summary       string          `json:"summary"`
	Body          string          `json:"body"`
	Status        workflow.Status `json:"status"`
	ReviewComment sql.NullString  `json:"review_comment,omitempty"`
	CategoryID    sql.NullInt64   `json:"category_id,omitempty"`
	CreatedBy     int64           `json:"created_by"`
	SubmittedBy   sql.NullInt64   `json:"submitted_by,omitempty"`
	ReviewedBy    sql.NullInt64   `json:"reviewed_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	SubmittedAt   sql.NullTime    `json:"submitted_at,omitempty"`
	ReviewedAt    sql.NullTime    `json:"reviewed_at,omitempty"`
	PublishedAt   sql.NullTime    `json:"published_at,omitempty"`
	ScheduledAt   sql.NullTime    `json:"scheduled_at,omitempty"`
}

// Ref returns the entity fields workflow decisions depend on.
func (a *Article) Ref() workflow.EntityRef {
	return workflow.EntityRef{
		Kind:          workflow.KindArticle,
		Status:        a.Status,
		CreatedByID:   a.CreatedBy,
		SubmittedByID: a.SubmittedBy.Int64,
	}
}

// IsPublished returns true if the article is published.
func (a *Article) IsPublished() bool {
	return a.Status == workflow.StatusPublished
}

// ArticleAuthor links an article to an author user. Exactly one link per
// article carries IsMain among a non-empty author set; Position 0 is the
// main author by convention.
type ArticleAuthor struct {
	ID        int64     `json:"id"`
	ArticleID int64     `json:"article_id"`
	UserID    int64     `json:"user_id"`
	IsMain    bool      `json:"is_main"`
	Position  int64     `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}
