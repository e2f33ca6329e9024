// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/pressroom-io/pressroom/internal/cache"
	"github.com/pressroom-io/pressroom/internal/store"
	"github.com/pressroom-io/pressroom/internal/workflow"
)

// QueueItem is one entry in the combined review queue.
type QueueItem struct {
	Kind        workflow.Kind `json:"kind"`
	ID          int64         `json:"id"`
	PublicID    string        `json:"public_id"`
	Title       string        `json:"title"`
	SubmittedBy sql.NullInt64 `json:"submitted_by,omitempty"`
	SubmittedAt sql.NullTime  `json:"submitted_at,omitempty"`
}

// QueueService builds the review queue: every entity sitting in in_review,
// across all kinds, ordered by submission time, oldest first.
type QueueService struct {
	queries  *store.Queries
	cache    cache.Cacher
	cacheTTL time.Duration
}

// NewQueueService creates a QueueService. The cache may be nil.
func NewQueueService(db *sql.DB, c cache.Cacher, ttl time.Duration) *QueueService {
	return &QueueService{
		queries:  store.New(db),
		cache:    c,
		cacheTTL: ttl,
	}
}

// ReviewQueue returns the combined review queue. Visibility is gated by the
// privileged tier: non-privileged actors get ErrForbidden, never an empty
// queue.
func (s *QueueService) ReviewQueue(ctx context.Context, actor workflow.Actor) ([]QueueItem, error) {
	if !workflow.CanViewReviewQueue(actor) {
		return nil, fmt.Errorf("%w: %s may not view the review queue", ErrForbidden, actor.Role)
	}

	if items, ok := s.cached(ctx); ok {
		return items, nil
	}

	items, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	s.store(ctx, items)
	return items, nil
}

func (s *QueueService) build(ctx context.Context) ([]QueueItem, error) {
	var items []QueueItem

	articles, err := s.queries.ListArticlesInReview(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing articles in review: %w", err)
	}
	for _, a := range articles {
		items = append(items, QueueItem{
			Kind: workflow.KindArticle, ID: a.ID, PublicID: a.PublicID,
			Title: a.Title, SubmittedBy: a.SubmittedBy, SubmittedAt: a.SubmittedAt,
		})
	}

	categories, err := s.queries.ListCategoriesInReview(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories in review: %w", err)
	}
	for _, c := range categories {
		items = append(items, QueueItem{
			Kind: workflow.KindCategory, ID: c.ID, PublicID: c.PublicID,
			Title: c.Name, SubmittedBy: c.SubmittedBy, SubmittedAt: c.SubmittedAt,
		})
	}

	ads, err := s.queries.ListAdsInReview(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing ads in review: %w", err)
	}
	for _, a := range ads {
		items = append(items, QueueItem{
			Kind: workflow.KindAd, ID: a.ID, PublicID: a.PublicID,
			Title: a.Title, SubmittedBy: a.SubmittedBy, SubmittedAt: a.SubmittedAt,
		})
	}

	users, err := s.queries.ListUsersInReview(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users in review: %w", err)
	}
	for _, u := range users {
		items = append(items, QueueItem{
			Kind: workflow.KindUser, ID: u.ID, PublicID: u.PublicID,
			Title: u.Name, SubmittedBy: u.SubmittedBy, SubmittedAt: u.SubmittedAt,
		})
	}

	// Entities without a submission stamp sort last.
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].SubmittedAt, items[j].SubmittedAt
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Time.Before(b.Time)
	})

	return items, nil
}

func (s *QueueService) cached(ctx context.Context) ([]QueueItem, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, cache.QueueKey())
	if err != nil {
		return nil, false
	}
	var items []QueueItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (s *QueueService) store(ctx context.Context, items []QueueItem) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cache.QueueKey(), data, s.cacheTTL); err != nil {
		slog.Warn("caching review queue failed", "error", err)
	}
}
