// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Subscriber statuses.
const (
	SubscriberStatusActive       = "active"
	SubscriberStatusUnsubscribed = "unsubscribed"
)

// Subscriber is a newsletter subscription record.
type Subscriber struct {
	ID             int64        `json:"id"`
	Email          string       `json:"email"`
	Status         string       `json:"status"`
	Token          string       `json:"-"` // Unsubscribe token, never exposed in listings
	CreatedAt      time.Time    `json:"created_at"`
	UnsubscribedAt sql.NullTime `json:"unsubscribed_at,omitempty"`
}
