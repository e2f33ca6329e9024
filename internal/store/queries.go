// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store implements the authoritative entity store: typed SQL
// queries over the SQLite schema for every moderated entity kind plus
// comments, subscribers, tokens, and the event log.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pressroom-io/pressroom/internal/workflow"
)

// DBTX is the subset of *sql.DB / *sql.Tx the queries need.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries provides typed access to the database.
type Queries struct {
	db DBTX
}

// New creates a Queries instance bound to the given database or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries instance bound to the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// ListParams holds limit/offset pagination.
type ListParams struct {
	Limit  int64
	Offset int64
}

// ListByStatusParams holds a status filter plus pagination.
type ListByStatusParams struct {
	Status workflow.Status
	Limit  int64
	Offset int64
}

// SetWorkflowParams carries the full workflow column set for one entity.
// Transitions load the entity first and pass previous values for columns
// the action does not touch, so a single UPDATE covers every action.
type SetWorkflowParams struct {
	ID            int64
	Status        workflow.Status
	ReviewComment sql.NullString
	SubmittedBy   sql.NullInt64
	ReviewedBy    sql.NullInt64
	SubmittedAt   sql.NullTime
	ReviewedAt    sql.NullTime
	PublishedAt   sql.NullTime // Maps to activated_at for users
	UpdatedAt     time.Time
}
