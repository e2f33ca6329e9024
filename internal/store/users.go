// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/pressroom-io/pressroom/internal/model"
	"github.com/pressroom-io/pressroom/internal/workflow"
)

const userColumns = `id, public_id, email, password_hash, role, name, permissions, status, review_comment,
	created_by, submitted_by, reviewed_by,
	created_at, updated_at, submitted_at, reviewed_at, activated_at, last_login_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.PublicID, &u.Email, &u.PasswordHash, &u.Role, &u.Name, &u.Permissions, &u.Status, &u.ReviewComment,
		&u.CreatedBy, &u.SubmittedBy, &u.ReviewedBy,
		&u.CreatedAt, &u.UpdatedAt, &u.SubmittedAt, &u.ReviewedAt, &u.ActivatedAt, &u.LastLoginAt,
	)
	return u, err
}

func (q *Queries) queryUsers(ctx context.Context, query string, args ...any) ([]model.User, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateUserParams holds fields for creating a user.
type CreateUserParams struct {
	PublicID     string
	Email        string
	PasswordHash string
	Role         string
	Name         string
	Permissions  string
	Status       workflow.Status
	CreatedBy    int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser inserts a new user and returns it.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	permissions := arg.Permissions
	if permissions == "" {
		permissions = "[]"
	}
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO users (public_id, email, password_hash, role, name, permissions, status, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+userColumns,
		arg.PublicID, arg.Email, arg.PasswordHash, arg.Role, arg.Name, permissions,
		arg.Status, arg.CreatedBy, arg.CreatedAt, arg.UpdatedAt,
	)
	return scanUser(row)
}

// GetUserByID returns a user by its numeric id.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail returns a user by email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// ListUsers returns users ordered by creation time, newest first.
func (q *Queries) ListUsers(ctx context.Context, arg ListParams) ([]model.User, error) {
	return q.queryUsers(ctx, `
		SELECT `+userColumns+` FROM users
		ORDER BY created_at DESC LIMIT ? OFFSET ?`, arg.Limit, arg.Offset)
}

// ListUsersByStatus returns a page of users in the given status.
func (q *Queries) ListUsersByStatus(ctx context.Context, arg ListByStatusParams) ([]model.User, error) {
	return q.queryUsers(ctx, `
		SELECT `+userColumns+` FROM users WHERE status = ?
		ORDER BY created_at DESC LIMIT ? OFFSET ?`, arg.Status, arg.Limit, arg.Offset)
}

// ListUsersInReview returns the user review queue, oldest first.
func (q *Queries) ListUsersInReview(ctx context.Context) ([]model.User, error) {
	return q.queryUsers(ctx, `
		SELECT `+userColumns+` FROM users WHERE status = ?
		ORDER BY submitted_at ASC`, workflow.StatusInReview)
}

// CountUsers returns the total number of users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

// CountUsersByStatus returns the number of users in the given status.
func (q *Queries) CountUsersByStatus(ctx context.Context, status workflow.Status) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE status = ?`, status).Scan(&count)
	return count, err
}

// UpdateUserParams holds the editable user fields.
type UpdateUserParams struct {
	ID          int64
	Email       string
	Role        string
	Name        string
	Permissions string
	UpdatedAt   time.Time
}

// UpdateUser updates the editable fields of a user and returns it.
func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE users SET email = ?, role = ?, name = ?, permissions = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+userColumns,
		arg.Email, arg.Role, arg.Name, arg.Permissions, arg.UpdatedAt, arg.ID,
	)
	return scanUser(row)
}

// UpdateUserPassword replaces a user's password hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, id int64, passwordHash string, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx, `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, updatedAt, id)
	return err
}

// TouchUserLogin stamps last_login_at.
func (q *Queries) TouchUserLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := q.db.ExecContext(ctx, `UPDATE users SET last_login_at = ? WHERE id = ?`, at, id)
	return err
}

// SetUserWorkflow writes the full workflow column set for one user.
// PublishedAt maps to the activated_at column.
func (q *Queries) SetUserWorkflow(ctx context.Context, arg SetWorkflowParams) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE users SET status = ?, review_comment = ?, submitted_by = ?, reviewed_by = ?,
			submitted_at = ?, reviewed_at = ?, activated_at = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+userColumns,
		arg.Status, arg.ReviewComment, arg.SubmittedBy, arg.ReviewedBy,
		arg.SubmittedAt, arg.ReviewedAt, arg.PublishedAt, arg.UpdatedAt, arg.ID,
	)
	return scanUser(row)
}

// DeleteUser removes a user account.
func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}
