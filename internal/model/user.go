// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pressroom-io/pressroom/internal/workflow"
)

// User is a platform account. Users are themselves workflow-governed:
// new accounts start in draft and go through review before becoming active.
type User struct {
	ID            int64           `json:"id"`
	PublicID      string          `json:"public_id"`
	Email         string          `json:"email"`
	PasswordHash  string          `json:"-"` // Never expose in JSON
	Role          string          `json:"role"`
	Name          string          `json:"name"`
	Permissions   string          `json:"permissions"` // JSON array of capability strings
	Status        workflow.Status `json:"status"`
	ReviewComment sql.NullString  `json:"review_comment,omitempty"`
	CreatedBy     int64           `json:"created_by"`
	SubmittedBy   sql.NullInt64   `json:"submitted_by,omitempty"`
	ReviewedBy    sql.NullInt64   `json:"reviewed_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	SubmittedAt   sql.NullTime    `json:"submitted_at,omitempty"`
	ReviewedAt    sql.NullTime    `json:"reviewed_at,omitempty"`
	ActivatedAt   sql.NullTime    `json:"activated_at,omitempty"`
	LastLoginAt   sql.NullTime    `json:"last_login_at,omitempty"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == workflow.RoleAdmin
}

// IsActive returns true if the account may log in.
func (u *User) IsActive() bool {
	return u.Status == workflow.StatusActive
}

// Actor converts the user into a workflow actor.
func (u *User) Actor() workflow.Actor {
	return workflow.Actor{
		ID:          u.ID,
		Role:        u.Role,
		Permissions: u.PermissionList(),
	}
}

// PermissionList parses the JSON permissions column. Returns nil when the
// column is empty or malformed.
func (u *User) PermissionList() []string {
	if u.Permissions == "" || u.Permissions == "[]" {
		return nil
	}
	var perms []string
	_ = json.Unmarshal([]byte(u.Permissions), &perms)
	return perms
}

// Ref returns the entity fields workflow decisions depend on.
func (u *User) Ref() workflow.EntityRef {
	return workflow.EntityRef{
		Kind:          workflow.KindUser,
		Status:        u.Status,
		CreatedByID:   u.CreatedBy,
		SubmittedByID: u.SubmittedBy.Int64,
	}
}
