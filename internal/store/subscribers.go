// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/pressroom-io/pressroom/internal/model"
)

const subscriberColumns = `id, email, status, token, created_at, unsubscribed_at`

func scanSubscriber(row interface{ Scan(...any) error }) (model.Subscriber, error) {
	var s model.Subscriber
	err := row.Scan(&s.ID, &s.Email, &s.Status, &s.Token, &s.CreatedAt, &s.UnsubscribedAt)
	return s, err
}

// CreateSubscriber inserts a new active subscriber and returns it.
func (q *Queries) CreateSubscriber(ctx context.Context, email, token string, at time.Time) (model.Subscriber, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO subscribers (email, status, token, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING `+subscriberColumns,
		email, model.SubscriberStatusActive, token, at,
	)
	return scanSubscriber(row)
}

// GetSubscriberByEmail returns a subscriber by email.
func (q *Queries) GetSubscriberByEmail(ctx context.Context, email string) (model.Subscriber, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+subscriberColumns+` FROM subscribers WHERE email = ?`, email)
	return scanSubscriber(row)
}

// GetSubscriberByToken returns a subscriber by unsubscribe token.
func (q *Queries) GetSubscriberByToken(ctx context.Context, token string) (model.Subscriber, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+subscriberColumns+` FROM subscribers WHERE token = ?`, token)
	return scanSubscriber(row)
}

// ListSubscribers returns subscribers, newest first.
func (q *Queries) ListSubscribers(ctx context.Context, arg ListParams) ([]model.Subscriber, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+subscriberColumns+` FROM subscribers
		ORDER BY created_at DESC LIMIT ? OFFSET ?`, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subscribers []model.Subscriber
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		subscribers = append(subscribers, s)
	}
	return subscribers, rows.Err()
}

// CountSubscribersByStatus returns the number of subscribers in a status.
func (q *Queries) CountSubscribersByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subscribers WHERE status = ?`, status).Scan(&count)
	return count, err
}

// UnsubscribeSubscriber marks a subscriber unsubscribed.
func (q *Queries) UnsubscribeSubscriber(ctx context.Context, id int64, at time.Time) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE subscribers SET status = ?, unsubscribed_at = ? WHERE id = ?`,
		model.SubscriberStatusUnsubscribed, at, id)
	return err
}

// ResubscribeSubscriber reactivates a previously unsubscribed address.
func (q *Queries) ResubscribeSubscriber(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE subscribers SET status = ?, unsubscribed_at = NULL WHERE id = ?`,
		model.SubscriberStatusActive, id)
	return err
}
