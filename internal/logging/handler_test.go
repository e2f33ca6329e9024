package logging

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pressroom-io/pressroom/internal/model"
	"github.com/pressroom-io/pressroom/internal/store"
	"github.com/pressroom-io/pressroom/internal/testutil"
)

func newTestLogger(t *testing.T) (*slog.Logger, *store.Queries) {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	inner := slog.NewTextHandler(io.Discard, nil)
	return slog.New(NewEventLogHandler(inner, db)), store.New(db)
}

func TestEventLogHandler_WarnIsRecorded(t *testing.T) {
	logger, q := newTestLogger(t)

	logger.Warn("login failed", "category", model.EventCategoryAuth, "email", "x@example.com")

	events, err := q.ListEvents(context.Background(), store.ListParams{Limit: 10})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	e := events[0]
	if e.Level != model.EventLevelWarning {
		t.Errorf("Level = %q, want %q", e.Level, model.EventLevelWarning)
	}
	if e.Category != model.EventCategoryAuth {
		t.Errorf("Category = %q, want %q", e.Category, model.EventCategoryAuth)
	}
	if e.Message != "login failed" {
		t.Errorf("Message = %q", e.Message)
	}
}

func TestEventLogHandler_InfoIsNotRecorded(t *testing.T) {
	logger, q := newTestLogger(t)

	logger.Info("routine startup message")

	count, err := q.CountEvents(context.Background())
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestEventCategory_Inference(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"token refresh rejected", model.EventCategoryAuth},
		{"article publish failed", model.EventCategoryArticle},
		{"review queue rebuild slow", model.EventCategoryWorkflow},
		{"user account locked", model.EventCategoryUser},
		{"disk nearly full", model.EventCategorySystem},
	}

	for _, tt := range tests {
		r := slog.NewRecord(time.Now(), slog.LevelWarn, tt.message, 0)
		if got := eventCategory(r); got != tt.want {
			t.Errorf("eventCategory(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}
