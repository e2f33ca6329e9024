// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"

	"github.com/pressroom-io/pressroom/internal/workflow"
)

// Comment is a reader comment on a published article. Comments are created
// directly in review and only support approve/reject moderation; there is
// no draft or archive path for them.
type Comment struct {
	ID            int64           `json:"id"`
	ArticleID     int64           `json:"article_id"`
	AuthorName    string          `json:"author_name"`
	AuthorEmail   string          `json:"author_email"`
	Body          string          `json:"body"`
	Status        workflow.Status `json:"status"`
	ReviewComment sql.NullString  `json:"review_comment,omitempty"`
	ReviewedBy    sql.NullInt64   `json:"reviewed_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	ReviewedAt    sql.NullTime    `json:"reviewed_at,omitempty"`
}
