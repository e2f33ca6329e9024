// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Token prefixes distinguish access and refresh tokens at a glance and make
// leaked tokens greppable.
const (
	AccessTokenPrefix  = "pra_"
	RefreshTokenPrefix = "prr_"
)

// NewAccessToken generates a raw access token.
func NewAccessToken() string {
	return AccessTokenPrefix + randomTokenBody()
}

// NewRefreshToken generates a raw refresh token.
func NewRefreshToken() string {
	return RefreshTokenPrefix + randomTokenBody()
}

// randomTokenBody returns two concatenated UUIDv4 values without hyphens,
// 256 bits of randomness.
func randomTokenBody() string {
	a := strings.ReplaceAll(uuid.NewString(), "-", "")
	b := strings.ReplaceAll(uuid.NewString(), "-", "")
	return a + b
}

// ParseBearer extracts the raw token from an Authorization header value.
// Returns an error when the header is missing or not in Bearer form.
func ParseBearer(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("missing Authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", fmt.Errorf("invalid Authorization header format, use: Bearer <token>")
	}
	if parts[1] == "" {
		return "", fmt.Errorf("empty bearer token")
	}
	return parts[1], nil
}
