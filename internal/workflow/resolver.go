// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package workflow

// Actor roles. Admin and editor form the privileged tier; journalists are
// owner-constrained; every other role has no workflow authority.
const (
	RoleAdmin      = "admin"
	RoleEditor     = "editor"
	RoleJournalist = "journalist"
	RoleUser       = "user"
)

// Actor is the identity a workflow decision is made for.
type Actor struct {
	ID          int64
	Role        string
	Permissions []string
}

// Privileged reports whether the actor belongs to the privileged tier
// (admin or editor) and may act on any entity regardless of ownership.
func (a Actor) Privileged() bool {
	return a.Role == RoleAdmin || a.Role == RoleEditor
}

// OwnerConstrained reports whether the actor belongs to the
// owner-constrained tier (journalist).
func (a Actor) OwnerConstrained() bool {
	return a.Role == RoleJournalist
}

// HasPermission reports whether the actor's capability list contains perm.
func (a Actor) HasPermission(perm string) bool {
	for _, p := range a.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// EntityRef carries the fields of a moderated entity that permission
// decisions depend on. SubmittedByID is zero when the entity was never
// submitted.
type EntityRef struct {
	Kind          Kind
	Status        Status
	CreatedByID   int64
	SubmittedByID int64
}

// Owns reports whether the actor created or submitted the entity.
func (ref EntityRef) Owns(actor Actor) bool {
	return (ref.CreatedByID != 0 && ref.CreatedByID == actor.ID) ||
		(ref.SubmittedByID != 0 && ref.SubmittedByID == actor.ID)
}

// CanAct decides whether the actor may invoke action against the entity.
//
// Privileged actors may do anything. Owner-constrained actors may only edit
// or submit entities they created or submitted, and only while those are in
// draft or rejected; they may never approve, reject, or archive. Everyone
// else may do nothing. Status preconditions of the transition table are
// checked here too, so approve/reject are denied outside in_review before
// any store call is made.
func CanAct(ref EntityRef, actor Actor, action Action) bool {
	if actor.Privileged() {
		if action == ActionEdit || action == ActionDelete {
			return true
		}
		return CanTransition(ref.Kind, ref.Status, action)
	}

	if !actor.OwnerConstrained() {
		return false
	}

	if action != ActionEdit && action != ActionSubmit {
		return false
	}
	if ref.Status != StatusDraft && ref.Status != StatusRejected {
		return false
	}
	return ref.Owns(actor)
}

// CanCreate reports whether the actor may create a new entity of the kind.
// The privileged tier creates anything; journalists only draft articles.
func CanCreate(kind Kind, actor Actor) bool {
	if actor.Privileged() {
		return true
	}
	return actor.OwnerConstrained() && kind == KindArticle
}

// CanViewReviewQueue reports whether the actor may see the review queue at
// all. Queue visibility is gated by the privileged tier, not by individual
// entity ownership: a journalist never sees the queue, even for entities
// they submitted.
func CanViewReviewQueue(actor Actor) bool {
	return actor.Privileged()
}
