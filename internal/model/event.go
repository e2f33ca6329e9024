// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Event levels.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories.
const (
	EventCategoryAuth     = "auth"
	EventCategoryWorkflow = "workflow"
	EventCategoryArticle  = "article"
	EventCategoryUser     = "user"
	EventCategorySystem   = "system"
)

// Event is an audit log entry. Every mutating workflow action appends one.
type Event struct {
	ID        int64         `json:"id"`
	Level     string        `json:"level"`
	Category  string        `json:"category"`
	Message   string        `json:"message"`
	UserID    sql.NullInt64 `json:"user_id,omitempty"`
	Metadata  string        `json:"metadata"` // JSON object
	CreatedAt time.Time     `json:"created_at"`
}
