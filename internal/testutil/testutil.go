// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the Pressroom project.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pressroom-io/pressroom/internal/model"
	"github.com/pressroom-io/pressroom/internal/store"
	"github.com/pressroom-io/pressroom/internal/workflow"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary test database with migrations applied.
// Returns the database and a cleanup function that should be deferred.
func TestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "pressroom-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}
}

// CreateUser inserts a user with the given role and status for use in tests.
func CreateUser(t *testing.T, q *store.Queries, role string, status workflow.Status) model.User {
	t.Helper()

	now := time.Now()
	u, err := q.CreateUser(context.Background(), store.CreateUserParams{
		PublicID:     uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "not-a-real-hash",
		Role:         role,
		Name:         "Test " + role,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

// CreateArticle inserts a draft article owned by the given user.
func CreateArticle(t *testing.T, q *store.Queries, createdBy int64, title string) model.Article {
	t.Helper()

	now := time.Now()
	a, err := q.CreateArticle(context.Background(), store.CreateArticleParams{
		PublicID:  uuid.NewString(),
		Title:     title,
		Slug:      uuid.NewString(),
		Status:    workflow.StatusDraft,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}
	return a
}
