// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic jobs: publishing articles whose scheduled
// time has arrived and pruning expired API tokens.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pressroom-io/pressroom/internal/model"
	"github.com/pressroom-io/pressroom/internal/service"
	"github.com/pressroom-io/pressroom/internal/store"
)

// Scheduler handles scheduled tasks.
type Scheduler struct {
	db     *sql.DB
	cron   *cron.Cron
	events *service.EventService
	logger *slog.Logger
}

// New creates a new scheduler instance.
func New(db *sql.DB, events *service.EventService, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:     db,
		cron:   cron.New(),
		events: events,
		logger: logger,
	}
}

// Start registers the jobs and begins the cron loop. Scheduled publishing
// runs every minute; token pruning runs hourly.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("* * * * *", func() {
		if err := s.publishDueArticles(); err != nil {
			s.logger.Error("failed to process scheduled articles", "error", err)
		}
	})
	if err != nil {
		return err
	}

	_, err = s.cron.AddFunc("0 * * * *", func() {
		if err := s.pruneExpiredTokens(); err != nil {
			s.logger.Error("failed to prune expired tokens", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// publishDueArticles publishes draft articles whose scheduled time has
// arrived. Scheduled publishing is the editorial shortcut applied by the
// system: no review pass, straight to published.
func (s *Scheduler) publishDueArticles() error {
	ctx := context.Background()
	queries := store.New(s.db)

	now := time.Now()
	articles, err := queries.ListScheduledArticlesDue(ctx, now)
	if err != nil {
		return err
	}

	if len(articles) == 0 {
		return nil
	}

	s.logger.Info("processing scheduled articles", "count", len(articles))

	for _, article := range articles {
		if err := s.publishArticle(ctx, queries, article, now); err != nil {
			s.logger.Error("failed to publish scheduled article",
				"article_id", article.ID,
				"title", article.Title,
				"error", err,
			)
			continue
		}

		s.logger.Info("published scheduled article",
			"article_id", article.ID,
			"title", article.Title,
			"scheduled_at", article.ScheduledAt.Time,
		)
	}

	return nil
}

func (s *Scheduler) publishArticle(ctx context.Context, queries *store.Queries, article model.Article, now time.Time) error {
	_, err := queries.SetArticleWorkflow(ctx, store.SetWorkflowParams{
		ID:            article.ID,
		Status:        article.Ref().Kind.LiveStatus(),
		ReviewComment: article.ReviewComment,
		SubmittedBy:   article.SubmittedBy,
		ReviewedBy:    article.ReviewedBy,
		SubmittedAt:   article.SubmittedAt,
		ReviewedAt:    article.ReviewedAt,
		PublishedAt:   sql.NullTime{Time: now, Valid: true},
		UpdatedAt:     now,
	})
	if err != nil {
		return err
	}

	if s.events != nil {
		_ = s.events.LogInfo(ctx, model.EventCategoryArticle,
			"scheduled article published", nil, map[string]any{
				"article_id":   article.ID,
				"title":        article.Title,
				"scheduled_at": article.ScheduledAt.Time.Format(time.RFC3339),
				"published_at": now.Format(time.RFC3339),
			})
	}
	return nil
}

// pruneExpiredTokens deletes API tokens past their expiry.
func (s *Scheduler) pruneExpiredTokens() error {
	ctx := context.Background()
	queries := store.New(s.db)

	deleted, err := queries.DeleteExpiredTokens(ctx, time.Now())
	if err != nil {
		return err
	}
	if deleted > 0 {
		s.logger.Info("pruned expired tokens", "count", deleted)
	}
	return nil
}
