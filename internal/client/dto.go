// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/pressroom-io/pressroom/internal/workflow"
)

// Entity is the wire shape of a workflow-governed record. The four kinds
// share one schema client-side: the label and content fields that differ
// per kind (title vs name vs email) are all present and the absent ones
// decode to their zero value.
type Entity struct {
	ID          int64  `json:"id"`
	PublicID    string `json:"public_id"`
	Title       string `json:"title"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Slug        string `json:"slug"`
	Summary     string `json:"summary"`
	Body        string `json:"body"`
	Description string `json:"description"`
	Placement   string `json:"placement"`
	Role        string `json:"role"`

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
	ActivatedAt   sql.NullTime    `json:"activated_at,omitempty"`
}

// Label returns the human identifier for the entity, whichever label
// field its kind uses.
func (e *Entity) Label() string {
	switch {
	case e.Title != "":
		return e.Title
	case e.Name != "":
		return e.Name
	default:
		return e.Email
	}
}

// Content returns the searchable body text of the entity.
func (e *Entity) Content() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{e.Summary, e.Body, e.Description} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Ref converts the entity into the form workflow decisions consume.
func (e *Entity) Ref(kind workflow.Kind) workflow.EntityRef {
	return workflow.EntityRef{
		Kind:          kind,
		Status:        e.Status,
		CreatedByID:   e.CreatedBy,
		SubmittedByID: e.SubmittedBy.Int64,
	}
}

// QueueItem is one entry of the server-built review queue.
type QueueItem struct {
	Kind        workflow.Kind `json:"kind"`
	ID          int64         `json:"id"`
	PublicID    string        `json:"public_id"`
	Title       string        `json:"title"`
	SubmittedBy sql.NullInt64 `json:"submitted_by,omitempty"`
	SubmittedAt sql.NullTime  `json:"submitted_at,omitempty"`
}

// TransitionResult reports a completed workflow transition.
type TransitionResult struct {
	Kind workflow.Kind   `json:"kind"`
	ID   int64           `json:"id"`
	From workflow.Status `json:"from"`
	To   workflow.Status `json:"to"`
}

// Meta carries list pagination data.
type Meta struct {
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Pages   int   `json:"pages"`
}

// TokenPair is an access/refresh token pair with expiry times.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// Account is the authenticated caller as reported by the server.
type Account struct {
	ID          int64           `json:"id"`
	PublicID    string          `json:"public_id"`
	Email       string          `json:"email"`
	Name        string          `json:"name"`
	Role        string          `json:"role"`
	Permissions string          `json:"permissions"`
	Status      workflow.Status `json:"status"`
}

// Actor converts the account into a workflow actor for advisory
// permission checks.
func (a *Account) Actor() workflow.Actor {
	actor := workflow.Actor{ID: a.ID, Role: a.Role}
	if a.Permissions != "" && a.Permissions != "[]" {
		var perms []string
		if err := json.Unmarshal([]byte(a.Permissions), &perms); err == nil {
			actor.Permissions = perms
		}
	}
	return actor
}
