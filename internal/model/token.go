// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"
)

// Token kinds.
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

// APIToken is a bearer token issued at login. Only the SHA-256 hash of the
// raw token is stored; the raw value is returned to the caller once.
type APIToken struct {
	ID         int64        `json:"id"`
	UserID     int64        `json:"user_id"`
	TokenHash  string       `json:"-"`
	Kind       string       `json:"kind"`
	ExpiresAt  time.Time    `json:"expires_at"`
	CreatedAt  time.Time    `json:"created_at"`
	LastUsedAt sql.NullTime `json:"last_used_at,omitempty"`
	RevokedAt  sql.NullTime `json:"revoked_at,omitempty"`
}

// IsValid reports whether the token is neither revoked nor expired at now.
func (t *APIToken) IsValid(now time.Time) bool {
	return !t.RevokedAt.Valid && now.Before(t.ExpiresAt)
}

// HashToken returns the hex SHA-256 digest of a raw bearer token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
