// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressroom-io/pressroom/internal/cache"
	"github.com/pressroom-io/pressroom/internal/model"
	"github.com/pressroom-io/pressroom/internal/store"
	"github.com/pressroom-io/pressroom/internal/testutil"
	"github.com/pressroom-io/pressroom/internal/workflow"
)

type moderationFixture struct {
	db      *sql.DB
	queries *store.Queries
	svc     *ModerationService
	cache   *cache.MemoryCache

	admin      workflow.Actor
	editor     workflow.Actor
	journalist workflow.Actor
	reader     workflow.Actor
}

func setupModeration(t *testing.T) *moderationFixture {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	q := store.New(db)
	c := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })

	admin := testutil.CreateUser(t, q, workflow.RoleAdmin, workflow.StatusActive)
	editor := testutil.CreateUser(t, q, workflow.RoleEditor, workflow.StatusActive)
	journalist := testutil.CreateUser(t, q, workflow.RoleJournalist, workflow.StatusActive)
	reader := testutil.CreateUser(t, q, workflow.RoleUser, workflow.StatusActive)

	return &moderationFixture{
		db:         db,
		queries:    q,
		svc:        NewModerationService(db, c, NewEventService(db)),
		cache:      c,
		admin:      admin.Actor(),
		editor:     editor.Actor(),
		journalist: journalist.Actor(),
		reader:     reader.Actor(),
	}
}

func (f *moderationFixture) draftArticle(t *testing.T, owner workflow.Actor) model.Article {
	t.Helper()
	return testutil.CreateArticle(t, f.queries, owner.ID, "Test Article")
}

func (f *moderationFixture) transition(t *testing.T, kind workflow.Kind, id int64, action workflow.Action, actor workflow.Actor) TransitionResult {
	t.Helper()
	res, err := f.svc.Transition(context.Background(), TransitionInput{
		Kind: kind, ID: id, Action: action, Actor: actor,
	})
	require.NoError(t, err)
	return res
}

func TestTransition_SubmitStampsSubmitter(t *testing.T) {
	f := setupModeration(t)
	article := f.draftArticle(t, f.journalist)

	res := f.transition(t, workflow.KindArticle, article.ID, workflow.ActionSubmit, f.journalist)

	assert.Equal(t, workflow.StatusDraft, res.From)
	assert.Equal(t, workflow.StatusInReview, res.To)

	updated := res.Entity.(model.Article)
	assert.Equal(t, f.journalist.ID, updated.SubmittedBy.Int64)
	assert.True(t, updated.SubmittedAt.Valid)
}

func TestTransition_ApproveClearsReviewComment(t *testing.T) {
	f := setupModeration(t)
	article := f.draftArticle(t, f.journalist)

	f.transition(t, workflow.KindArticle, article.ID, workflow.ActionSubmit, f.journalist)

	_, err := f.svc.Transition(context.Background(), TransitionInput{
		Kind: workflow.KindArticle, ID: article.ID,
		Action: workflow.ActionReject, Actor: f.editor,
		Comment: "needs a second source",
	})
	require.NoError(t, err)

	// Resubmission keeps the rejection comment visible to reviewers.
	res := f.transition(t, workflow.KindArticle, article.ID, workflow.ActionSubmit, f.journalist)
	assert.Equal(t, "needs a second source", res.Entity.(model.Article).ReviewComment.String)

	res = f.transition(t, workflow.KindArticle, article.ID, workflow.ActionApprove, f.editor)
	updated := res.Entity.(model.Article)
	assert.Equal(t, workflow.StatusPublished, updated.Status)
	assert.False(t, updated.ReviewComment.Valid, "approve must clear the review comment")
	assert.Equal(t, f.editor.ID, updated.ReviewedBy.Int64)
	assert.True(t, updated.PublishedAt.Valid)
}

func TestTransition_RejectAcceptsEmptyComment(t *testing.T) {
	f := setupModeration(t)
	article := f.draftArticle(t, f.journalist)
	f.transition(t, workflow.KindArticle, article.ID, workflow.ActionSubmit, f.journalist)

	res, err := f.svc.Transition(context.Background(), TransitionInput{
		Kind: workflow.KindArticle, ID: article.ID,
		Action: workflow.ActionReject, Actor: f.editor,
	})
	require.NoError(t, err)

	updated := res.Entity.(model.Article)
	assert.Equal(t, workflow.StatusRejected, updated.Status)
	assert.True(t, updated.ReviewComment.Valid, "empty comment is stored, not NULL")
	assert.Equal(t, "", updated.ReviewComment.String)
}

func TestTransition_JournalistCannotApprove(t *testing.T) {
	f := setupModeration(t)
	article := f.draftArticle(t, f.journalist)
	f.transition(t, workflow.KindArticle, article.ID, workflow.ActionSubmit, f.journalist)

	_, err := f.svc.Transition(context.Background(), TransitionInput{
		Kind: workflow.KindArticle, ID: article.ID,
		Action: workflow.ActionApprove, Actor: f.journalist,
	})
	assert.ErrorIs(t, err, ErrForbidden)

	// The entity must be untouched by the denied request.
	current, err := f.queries.GetArticleByID(context.Background(), article.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusInReview, current.Status)
}

func TestTransition_JournalistCannotTouchOthersDraft(t *testing.T) {
	f := setupModeration(t)
	other := f.draftArticle(t, f.editor)

	_, err := f.svc.Transition(context.Background(), TransitionInput{
		Kind: workflow.KindArticle, ID: other.ID,
		Action: workflow.ActionSubmit, Actor: f.journalist,
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestTransition_ReaderForbidden(t *testing.T) {
	f := setupModeration(t)
	article := f.draftArticle(t, f.journalist)

	_, err := f.svc.Transition(context.Background(), TransitionInput{
		Kind: workflow.KindArticle, ID: article.ID,
		Action: workflow.ActionSubmit, Actor: f.reader,
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestTransition_ArchivedIsTerminal(t *testing.T) {
	f := setupModeration(t)
	article := f.draftArticle(t, f.journalist)

	f.transition(t, workflow.KindArticle, article.ID, workflow.ActionPublish, f.admin)
	f.transition(t, workflow.KindArticle, article.ID, workflow.ActionArchive, f.admin)

	for _, action := range []workflow.Action{
		workflow.ActionSubmit, workflow.ActionApprove, workflow.ActionReject,
		workflow.ActionPublish, workflow.ActionUnpublish, workflow.ActionArchive,
	} {
		_, err := f.svc.Transition(context.Background(), TransitionInput{
			Kind: workflow.KindArticle, ID: article.ID,
			Action: action, Actor: f.admin,
		})
		assert.ErrorIs(t, err, workflow.ErrInvalidTransition, "action %s", action)
	}
}

func TestTransition_PublishShortcutFromDraft(t *testing.T) {
	f := setupModeration(t)
	article := f.draftArticle(t, f.editor)

	res := f.transition(t, workflow.KindArticle, article.ID, workflow.ActionPublish, f.editor)
	updated := res.Entity.(model.Article)
	assert.Equal(t, workflow.StatusPublished, updated.Status)
	assert.True(t, updated.PublishedAt.Valid)

	res = f.transition(t, workflow.KindArticle, article.ID, workflow.ActionUnpublish, f.editor)
	updated = res.Entity.(model.Article)
	assert.Equal(t, workflow.StatusDraft, updated.Status)
	assert.False(t, updated.PublishedAt.Valid, "unpublish clears the publication stamp")
}

func TestTransition_UserApprovalLandsActive(t *testing.T) {
	f := setupModeration(t)
	q := f.queries

	candidate := testutil.CreateUser(t, q, workflow.RoleJournalist, workflow.StatusDraft)

	f.transition(t, workflow.KindUser, candidate.ID, workflow.ActionSubmit, f.admin)
	res := f.transition(t, workflow.KindUser, candidate.ID, workflow.ActionApprove, f.admin)

	updated := res.Entity.(model.User)
	assert.Equal(t, workflow.StatusActive, updated.Status, "users go live as active, not published")
	assert.True(t, updated.ActivatedAt.Valid)
}

func TestTransition_NotFound(t *testing.T) {
	f := setupModeration(t)

	_, err := f.svc.Transition(context.Background(), TransitionInput{
		Kind: workflow.KindArticle, ID: 9999,
		Action: workflow.ActionSubmit, Actor: f.admin,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransition_UnknownKind(t *testing.T) {
	f := setupModeration(t)

	_, err := f.svc.Transition(context.Background(), TransitionInput{
		Kind: "widgets", ID: 1,
		Action: workflow.ActionSubmit, Actor: f.admin,
	})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestTransition_InvalidatesCache(t *testing.T) {
	f := setupModeration(t)
	ctx := context.Background()
	article := f.draftArticle(t, f.editor)

	key := cache.EntityKey(workflow.KindArticle, article.ID)
	listKey := cache.ListKey(workflow.KindArticle, workflow.StatusPublished, 1)
	require.NoError(t, f.cache.Set(ctx, key, []byte("stale"), 0))
	require.NoError(t, f.cache.Set(ctx, listKey, []byte("stale"), 0))

	f.transition(t, workflow.KindArticle, article.ID, workflow.ActionPublish, f.editor)

	_, err := f.cache.Get(ctx, key)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
	_, err = f.cache.Get(ctx, listKey)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestTransition_WritesAuditEvent(t *testing.T) {
	f := setupModeration(t)
	article := f.draftArticle(t, f.journalist)

	f.transition(t, workflow.KindArticle, article.ID, workflow.ActionSubmit, f.journalist)

	events, err := f.queries.ListEvents(context.Background(), store.ListParams{Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, model.EventCategoryWorkflow, events[0].Category)
	assert.Equal(t, f.journalist.ID, events[0].UserID.Int64)
}

func TestDelete_PermissionGated(t *testing.T) {
	f := setupModeration(t)
	ctx := context.Background()
	article := f.draftArticle(t, f.editor)

	err := f.svc.Delete(ctx, workflow.KindArticle, article.ID, f.journalist)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.svc.Delete(ctx, workflow.KindArticle, article.ID, f.admin))

	_, err = f.queries.GetArticleByID(ctx, article.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCanEdit(t *testing.T) {
	f := setupModeration(t)
	ctx := context.Background()
	article := f.draftArticle(t, f.journalist)

	assert.NoError(t, f.svc.CanEdit(ctx, workflow.KindArticle, article.ID, f.journalist))
	assert.NoError(t, f.svc.CanEdit(ctx, workflow.KindArticle, article.ID, f.editor))
	assert.ErrorIs(t, f.svc.CanEdit(ctx, workflow.KindArticle, article.ID, f.reader), ErrForbidden)

	// Once in review, the owner loses edit access.
	f.transition(t, workflow.KindArticle, article.ID, workflow.ActionSubmit, f.journalist)
	assert.ErrorIs(t, f.svc.CanEdit(ctx, workflow.KindArticle, article.ID, f.journalist), ErrForbidden)
	assert.NoError(t, f.svc.CanEdit(ctx, workflow.KindArticle, article.ID, f.editor))
}
