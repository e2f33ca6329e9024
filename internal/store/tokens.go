// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/pressroom-io/pressroom/internal/model"
)

const tokenColumns = `id, user_id, token_hash, kind, expires_at, created_at, last_used_at, revoked_at`

func scanToken(row interface{ Scan(...any) error }) (model.APIToken, error) {
	var t model.APIToken
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.Kind, &t.ExpiresAt, &t.CreatedAt, &t.LastUsedAt, &t.RevokedAt)
	return t, err
}

// CreateTokenParams holds fields for persisting a token hash.
type CreateTokenParams struct {
	UserID    int64
	TokenHash string
	Kind      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// CreateToken stores a token hash and returns the record.
func (q *Queries) CreateToken(ctx context.Context, arg CreateTokenParams) (model.APIToken, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO api_tokens (user_id, token_hash, kind, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+tokenColumns,
		arg.UserID, arg.TokenHash, arg.Kind, arg.ExpiresAt, arg.CreatedAt,
	)
	return scanToken(row)
}

// GetTokenByHash returns a token record by its hash.
func (q *Queries) GetTokenByHash(ctx context.Context, tokenHash string) (model.APIToken, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+tokenColumns+` FROM api_tokens WHERE token_hash = ?`, tokenHash)
	return scanToken(row)
}

// TouchToken stamps last_used_at.
func (q *Queries) TouchToken(ctx context.Context, id int64, at time.Time) error {
	_, err := q.db.ExecContext(ctx, `UPDATE api_tokens SET last_used_at = ? WHERE id = ?`, at, id)
	return err
}

// RevokeToken marks one token revoked.
func (q *Queries) RevokeToken(ctx context.Context, id int64, at time.Time) error {
	_, err := q.db.ExecContext(ctx, `UPDATE api_tokens SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL`, at, id)
	return err
}

// RevokeUserTokens revokes every live token of a user.
func (q *Queries) RevokeUserTokens(ctx context.Context, userID int64, at time.Time) error {
	_, err := q.db.ExecContext(ctx, `UPDATE api_tokens SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL`, at, userID)
	return err
}

// DeleteExpiredTokens removes tokens that expired before the cutoff.
func (q *Queries) DeleteExpiredTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM api_tokens WHERE expires_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
