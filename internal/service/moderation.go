// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressroom-io/pressroom/internal/cache"
	"github.com/pressroom-io/pressroom/internal/model"
	"github.com/pressroom-io/pressroom/internal/store"
	"github.com/pressroom-io/pressroom/internal/workflow"
)

var (
	// ErrForbidden is returned when the actor may not perform the action.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when the target entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnknownKind is returned for an unrecognized entity kind.
	ErrUnknownKind = errors.New("unknown entity kind")
)

// TransitionInput describes one requested workflow transition.
type TransitionInput struct {
	Kind   workflow.Kind
	ID     int64
	Action workflow.Action
	Actor  workflow.Actor

	// Comment is the reviewer's note on reject. An empty comment is
	// accepted and stored as an empty string, not NULL.
	Comment string
}

// TransitionResult reports a completed transition. Entity holds the updated
// model (model.Article, model.Category, model.Ad, or model.User).
type TransitionResult struct {
	Kind   workflow.Kind   `json:"kind"`
	ID     int64           `json:"id"`
	From   workflow.Status `json:"from"`
	To     workflow.Status `json:"to"`
	Entity any             `json:"entity"`
}

// ModerationService drives workflow transitions for every moderated entity
// kind. It is the single write path for workflow columns: permission checks,
// the transition table, side data stamping, audit events, and cache
// invalidation all happen here.
type ModerationService struct {
	queries *store.Queries
	cache   cache.Cacher
	events  *EventService
	now     func() time.Time
}

// NewModerationService creates a ModerationService. The cache may be nil.
func NewModerationService(db *sql.DB, c cache.Cacher, events *EventService) *ModerationService {
	return &ModerationService{
		queries: store.New(db),
		cache:   c,
		events:  events,
		now:     time.Now,
	}
}

// workflowState is the prior workflow column set of an entity. Transitions
// start from it and overwrite only the columns the action touches.
type workflowState struct {
	ref           workflow.EntityRef
	reviewComment sql.NullString
	submittedBy   sql.NullInt64
	reviewedBy    sql.NullInt64
	submittedAt   sql.NullTime
	reviewedAt    sql.NullTime
	publishedAt   sql.NullTime
}

// Transition applies one workflow action. The permission check runs against
// the entity's current state before anything is written, so a forbidden or
// illegal request leaves the entity untouched.
func (s *ModerationService) Transition(ctx context.Context, in TransitionInput) (TransitionResult, error) {
	state, err := s.load(ctx, in.Kind, in.ID)
	if err != nil {
		return TransitionResult{}, err
	}

	if !workflow.CanAct(state.ref, in.Actor, in.Action) {
		return TransitionResult{}, fmt.Errorf("%w: %s may not %s %s %d",
			ErrForbidden, in.Actor.Role, in.Action, in.Kind, in.ID)
	}

	next, err := workflow.Next(in.Kind, state.ref.Status, in.Action)
	if err != nil {
		return TransitionResult{}, err
	}

	now := s.now()
	params := store.SetWorkflowParams{
		ID:            in.ID,
		Status:        next,
		ReviewComment: state.reviewComment,
		SubmittedBy:   state.submittedBy,
		ReviewedBy:    state.reviewedBy,
		SubmittedAt:   state.submittedAt,
		ReviewedAt:    state.reviewedAt,
		PublishedAt:   state.publishedAt,
		UpdatedAt:     now,
	}

	switch in.Action {
	case workflow.ActionSubmit:
		// The review comment from a previous rejection is left in place
		// so reviewers can see what the resubmission responds to.
		params.SubmittedBy = sql.NullInt64{Int64: in.Actor.ID, Valid: true}
		params.SubmittedAt = sql.NullTime{Time: now, Valid: true}
	case workflow.ActionApprove:
		params.ReviewComment = sql.NullString{}
		params.ReviewedBy = sql.NullInt64{Int64: in.Actor.ID, Valid: true}
		params.ReviewedAt = sql.NullTime{Time: now, Valid: true}
		params.PublishedAt = sql.NullTime{Time: now, Valid: true}
	case workflow.ActionReject:
		params.ReviewComment = sql.NullString{String: in.Comment, Valid: true}
		params.ReviewedBy = sql.NullInt64{Int64: in.Actor.ID, Valid: true}
		params.ReviewedAt = sql.NullTime{Time: now, Valid: true}
	case workflow.ActionPublish:
		params.PublishedAt = sql.NullTime{Time: now, Valid: true}
	case workflow.ActionUnpublish:
		params.PublishedAt = sql.NullTime{}
	case workflow.ActionArchive:
		// Archive keeps every stamp as a record of how the entity got here.
	}

	entity, err := s.save(ctx, in.Kind, params)
	if err != nil {
		return TransitionResult{}, fmt.Errorf("applying %s to %s %d: %w", in.Action, in.Kind, in.ID, err)
	}

	s.invalidate(ctx, in.Kind, in.ID)
	s.logTransition(ctx, in, state.ref.Status, next)

	return TransitionResult{
		Kind:   in.Kind,
		ID:     in.ID,
		From:   state.ref.Status,
		To:     next,
		Entity: entity,
	}, nil
}

// Delete removes an entity after a permission check.
func (s *ModerationService) Delete(ctx context.Context, kind workflow.Kind, id int64, actor workflow.Actor) error {
	state, err := s.load(ctx, kind, id)
	if err != nil {
		return err
	}

	if !workflow.CanAct(state.ref, actor, workflow.ActionDelete) {
		return fmt.Errorf("%w: %s may not delete %s %d", ErrForbidden, actor.Role, kind, id)
	}

	switch kind {
	case workflow.KindArticle:
		err = s.queries.DeleteArticle(ctx, id)
	case workflow.KindCategory:
		err = s.queries.DeleteCategory(ctx, id)
	case workflow.KindAd:
		err = s.queries.DeleteAd(ctx, id)
	case workflow.KindUser:
		err = s.queries.DeleteUser(ctx, id)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err != nil {
		return fmt.Errorf("deleting %s %d: %w", kind, id, err)
	}

	s.invalidate(ctx, kind, id)
	if s.events != nil {
		_ = s.events.LogInfo(ctx, model.EventCategoryWorkflow,
			fmt.Sprintf("%s %d deleted", kind, id), &actor.ID,
			map[string]any{"kind": kind, "id": id})
	}
	return nil
}

// CanEdit reports whether the actor may edit the entity, loading its current
// state first. Handlers call this before applying content updates.
func (s *ModerationService) CanEdit(ctx context.Context, kind workflow.Kind, id int64, actor workflow.Actor) error {
	state, err := s.load(ctx, kind, id)
	if err != nil {
		return err
	}
	if !workflow.CanAct(state.ref, actor, workflow.ActionEdit) {
		return fmt.Errorf("%w: %s may not edit %s %d", ErrForbidden, actor.Role, kind, id)
	}
	return nil
}

func (s *ModerationService) load(ctx context.Context, kind workflow.Kind, id int64) (workflowState, error) {
	var state workflowState

	switch kind {
	case workflow.KindArticle:
		a, err := s.queries.GetArticleByID(ctx, id)
		if err != nil {
			return state, wrapNotFound(kind, id, err)
		}
		state = workflowState{
			ref:           a.Ref(),
			reviewComment: a.ReviewComment,
			submittedBy:   a.SubmittedBy,
			reviewedBy:    a.ReviewedBy,
			submittedAt:   a.SubmittedAt,
			reviewedAt:    a.ReviewedAt,
			publishedAt:   a.PublishedAt,
		}
	case workflow.KindCategory:
		c, err := s.queries.GetCategoryByID(ctx, id)
		if err != nil {
			return state, wrapNotFound(kind, id, err)
		}
		state = workflowState{
			ref:           c.Ref(),
			reviewComment: c.ReviewComment,
			submittedBy:   c.SubmittedBy,
			reviewedBy:    c.ReviewedBy,
			submittedAt:   c.SubmittedAt,
			reviewedAt:    c.ReviewedAt,
			publishedAt:   c.PublishedAt,
		}
	case workflow.KindAd:
		a, err := s.queries.GetAdByID(ctx, id)
		if err != nil {
			return state, wrapNotFound(kind, id, err)
		}
		state = workflowState{
			ref:           a.Ref(),
			reviewComment: a.ReviewComment,
			submittedBy:   a.SubmittedBy,
			reviewedBy:    a.ReviewedBy,
			submittedAt:   a.SubmittedAt,
			reviewedAt:    a.ReviewedAt,
			publishedAt:   a.PublishedAt,
		}
	case workflow.KindUser:
		u, err := s.queries.GetUserByID(ctx, id)
		if err != nil {
			return state, wrapNotFound(kind, id, err)
		}
		state = workflowState{
			ref:           u.Ref(),
			reviewComment: u.ReviewComment,
			submittedBy:   u.SubmittedBy,
			reviewedBy:    u.ReviewedBy,
			submittedAt:   u.SubmittedAt,
			reviewedAt:    u.ReviewedAt,
			publishedAt:   u.ActivatedAt,
		}
	default:
		return state, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	return state, nil
}

func (s *ModerationService) save(ctx context.Context, kind workflow.Kind, params store.SetWorkflowParams) (any, error) {
	switch kind {
	case workflow.KindArticle:
		return s.queries.SetArticleWorkflow(ctx, params)
	case workflow.KindCategory:
		return s.queries.SetCategoryWorkflow(ctx, params)
	case workflow.KindAd:
		return s.queries.SetAdWorkflow(ctx, params)
	case workflow.KindUser:
		return s.queries.SetUserWorkflow(ctx, params)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func (s *ModerationService) invalidate(ctx context.Context, kind workflow.Kind, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.EntityKey(kind, id)); err != nil {
		slog.Warn("cache invalidation failed", "key", cache.EntityKey(kind, id), "error", err)
	}
	if err := s.cache.DeleteByPrefix(ctx, cache.ListPrefix(kind)); err != nil {
		slog.Warn("cache invalidation failed", "prefix", cache.ListPrefix(kind), "error", err)
	}
	_ = s.cache.Delete(ctx, cache.QueueKey())
}

func (s *ModerationService) logTransition(ctx context.Context, in TransitionInput, from, to workflow.Status) {
	if s.events == nil {
		return
	}
	metadata := map[string]any{
		"kind": in.Kind,
		"id":   in.ID,
		"from": from,
		"to":   to,
	}
	if in.Action == workflow.ActionReject && in.Comment != "" {
		metadata["comment"] = in.Comment
	}
	_ = s.events.LogInfo(ctx, model.EventCategoryWorkflow,
		fmt.Sprintf("%s %d: %s (%s -> %s)", in.Kind, in.ID, in.Action, from, to),
		&in.Actor.ID, metadata)
}

func wrapNotFound(kind workflow.Kind, id int64, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %d", ErrNotFound, kind, id)
	}
	return fmt.Errorf("loading %s %d: %w", kind, id, err)
}
