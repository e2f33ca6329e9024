package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressroom-io/pressroom/internal/store"
	"github.com/pressroom-io/pressroom/internal/testutil"
	"github.com/pressroom-io/pressroom/internal/workflow"
)

func submitAt(t *testing.T, q *store.Queries, kind workflow.Kind, id, actorID int64, at time.Time) {
	t.Helper()

	params := store.SetWorkflowParams{
		ID:          id,
		Status:      workflow.StatusInReview,
		SubmittedBy: sql.NullInt64{Int64: actorID, Valid: true},
		SubmittedAt: sql.NullTime{Time: at, Valid: true},
		UpdatedAt:   at,
	}

	var err error
	switch kind {
	case workflow.KindArticle:
		_, err = q.SetArticleWorkflow(context.Background(), params)
	case workflow.KindUser:
		_, err = q.SetUserWorkflow(context.Background(), params)
	default:
		t.Fatalf("unsupported kind %s", kind)
	}
	require.NoError(t, err)
}

func TestReviewQueue_OrderedAcrossKinds(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	q := store.New(db)
	editor := testutil.CreateUser(t, q, workflow.RoleEditor, workflow.StatusActive)
	journalist := testutil.CreateUser(t, q, workflow.RoleJournalist, workflow.StatusActive)

	base := time.Now()
	newer := testutil.CreateArticle(t, q, journalist.ID, "Newer")
	older := testutil.CreateArticle(t, q, journalist.ID, "Older")
	candidate := testutil.CreateUser(t, q, workflow.RoleJournalist, workflow.StatusDraft)

	submitAt(t, q, workflow.KindArticle, newer.ID, journalist.ID, base.Add(2*time.Hour))
	submitAt(t, q, workflow.KindArticle, older.ID, journalist.ID, base)
	submitAt(t, q, workflow.KindUser, candidate.ID, editor.ID, base.Add(time.Hour))

	svc := NewQueueService(db, nil, 0)
	items, err := svc.ReviewQueue(context.Background(), editor.Actor())
	require.NoError(t, err)
	require.Len(t, items, 3)

	// Oldest submission first, regardless of kind.
	assert.Equal(t, older.ID, items[0].ID)
	assert.Equal(t, workflow.KindArticle, items[0].Kind)
	assert.Equal(t, candidate.ID, items[1].ID)
	assert.Equal(t, workflow.KindUser, items[1].Kind)
	assert.Equal(t, newer.ID, items[2].ID)
}

func TestReviewQueue_VisibilityGated(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	q := store.New(db)
	journalist := testutil.CreateUser(t, q, workflow.RoleJournalist, workflow.StatusActive)
	reader := testutil.CreateUser(t, q, workflow.RoleUser, workflow.StatusActive)

	// Even the submitter of queue content cannot see the queue.
	article := testutil.CreateArticle(t, q, journalist.ID, "Mine")
	submitAt(t, q, workflow.KindArticle, article.ID, journalist.ID, time.Now())

	svc := NewQueueService(db, nil, 0)

	_, err := svc.ReviewQueue(context.Background(), journalist.Actor())
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.ReviewQueue(context.Background(), reader.Actor())
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestReviewQueue_EmptyIsEmpty(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	q := store.New(db)
	admin := testutil.CreateUser(t, q, workflow.RoleAdmin, workflow.StatusActive)

	svc := NewQueueService(db, nil, 0)
	items, err := svc.ReviewQueue(context.Background(), admin.Actor())
	require.NoError(t, err)
	assert.Empty(t, items)
}
