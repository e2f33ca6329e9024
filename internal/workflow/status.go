// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package workflow implements the content publication lifecycle shared by
// every moderated entity kind (articles, categories, ads, users): the status
// set, the transition table, and the actor permission rules that decide who
// may trigger which transition.
package workflow

import (
	"errors"
	"fmt"
)

// Status is a lifecycle state of a moderated entity.
type Status string

// Lifecycle states. Users use StatusActive as their live state; every other
// kind uses StatusPublished.
const (
	StatusDraft     Status = "draft"
	StatusInReview  Status = "in_review"
	StatusRejected  Status = "rejected"
	StatusPublished Status = "published"
	StatusActive    Status = "active"
	StatusArchived  Status = "archived"
)

// Action is an explicit transition trigger.
type Action string

// Workflow actions. ActionEdit and ActionDelete are not transitions but are
// gated by the same permission rules.
const (
	ActionEdit      Action = "edit"
	ActionSubmit    Action = "submit"
	ActionApprove   Action = "approve"
	ActionReject    Action = "reject"
	ActionArchive   Action = "archive"
	ActionPublish   Action = "publish"
	ActionUnpublish Action = "unpublish"
	ActionDelete    Action = "delete"
)

// Kind identifies a moderated entity kind.
type Kind string

// Moderated entity kinds.
const (
	KindArticle  Kind = "articles"
	KindCategory Kind = "categories"
	KindAd       Kind = "ads"
	KindUser     Kind = "users"
)

// Kinds lists all moderated entity kinds.
var Kinds = []Kind{KindArticle, KindCategory, KindAd, KindUser}

// ErrInvalidTransition is returned when an action is not legal from the
// entity's current status.
var ErrInvalidTransition = errors.New("invalid workflow transition")

// LiveStatus returns the kind's live state: "active" for users,
// "published" for everything else.
func (k Kind) LiveStatus() Status {
	if k == KindUser {
		return StatusActive
	}
	return StatusPublished
}

// Valid reports whether k is a known entity kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Statuses returns the closed status set for the kind.
func (k Kind) Statuses() []Status {
	return []Status{StatusDraft, StatusInReview, StatusRejected, k.LiveStatus(), StatusArchived}
}

// ValidStatus reports whether s belongs to the kind's status set.
func (k Kind) ValidStatus(s Status) bool {
	for _, known := range k.Statuses() {
		if s == known {
			return true
		}
	}
	return false
}

// transition describes one row of the transition table: the statuses an
// action may fire from and the status it lands in. A nil to() means the
// target depends on the kind's live status.
type transition struct {
	from []Status
	to   func(k Kind) Status
}

// transitions is the single transition table shared by all entity kinds,
// parameterized only by the kind's live-status label.
var transitions = map[Action]transition{
	ActionSubmit: {
		from: []Status{StatusDraft, StatusRejected},
		to:   func(Kind) Status { return StatusInReview },
	},
	ActionApprove: {
		from: []Status{StatusInReview},
		to:   func(k Kind) Status { return k.LiveStatus() },
	},
	ActionReject: {
		from: []Status{StatusInReview},
		to:   func(Kind) Status { return StatusRejected },
	},
	ActionArchive: {
		from: []Status{StatusPublished, StatusActive},
		to:   func(Kind) Status { return StatusArchived },
	},
	// Editorial shortcut bypassing review. Allowed from any non-archived
	// status; distinct from approve.
	ActionPublish: {
		from: []Status{StatusDraft, StatusInReview, StatusRejected, StatusPublished, StatusActive},
		to:   func(k Kind) Status { return k.LiveStatus() },
	},
	ActionUnpublish: {
		from: []Status{StatusPublished, StatusActive},
		to:   func(Kind) Status { return StatusDraft },
	},
}

// Next returns the status the entity lands in when action fires from the
// current status. Returns ErrInvalidTransition when the action is not legal
// from the current status, including every action against StatusArchived:
// archived is terminal.
func Next(kind Kind, current Status, action Action) (Status, error) {
	t, ok := transitions[action]
	if !ok {
		return "", fmt.Errorf("%w: %q is not a transition action", ErrInvalidTransition, action)
	}
	for _, from := range t.from {
		if current == from && kind.ValidStatus(from) {
			return t.to(kind), nil
		}
	}
	return "", fmt.Errorf("%w: cannot %s %s from %q", ErrInvalidTransition, action, kind, current)
}

// CanTransition reports whether action is legal from the current status.
func CanTransition(kind Kind, current Status, action Action) bool {
	_, err := Next(kind, current, action)
	return err == nil
}

// Transitions returns the actions legal from the current status, in a fixed
// order suitable for rendering action menus.
func Transitions(kind Kind, current Status) []Action {
	var actions []Action
	for _, a := range []Action{ActionSubmit, ActionApprove, ActionReject, ActionPublish, ActionUnpublish, ActionArchive} {
		if CanTransition(kind, current, a) {
			actions = append(actions, a)
		}
	}
	return actions
}
