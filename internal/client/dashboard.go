// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"context"
	"errors"
	"sync"

	"github.com/pressroom-io/pressroom/internal/workflow"
)

// Dashboard action errors. ErrNotAllowed comes from the advisory
// permission pre-check and carries no server round-trip.
var (
	ErrBusy       = errors.New("entity has an action in flight")
	ErrClosed     = errors.New("dashboard is closed")
	ErrNotAllowed = errors.New("action not permitted for this actor")
	ErrNotLoaded  = errors.New("entity not present in the loaded list")
)

// Notifier receives operator-facing notices from dashboard actions.
// Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// Dashboard is the action layer of one admin view: it holds the fetched
// entity list and review queue for a kind, gates workflow actions through
// the advisory permission check and a per-entity busy guard, and reloads
// both collections after every successful transition. Safe for concurrent
// use; actions on different entities run independently.
type Dashboard struct {
	client   *Client
	kind     workflow.Kind
	actor    workflow.Actor
	notifier Notifier

	mu       sync.Mutex
	closed   bool
	busy     map[int64]bool
	entities []Entity
	queue    []QueueItem
	derived  bool
}

// NewDashboard builds a dashboard for one entity kind. notifier may be
// nil to discard notices.
func NewDashboard(c *Client, kind workflow.Kind, actor workflow.Actor, notifier Notifier) *Dashboard {
	return &Dashboard{
		client:   c,
		kind:     kind,
		actor:    actor,
		notifier: notifier,
		busy:     make(map[int64]bool),
	}
}

// Load fetches the entity list and, for privileged actors, the review
// queue. Called on mount and reused by Act after each transition.
func (d *Dashboard) Load(ctx context.Context) error {
	entities, err := d.client.ListAll(ctx, d.kind, "")
	if err != nil {
		return err
	}

	var (
		queue   []QueueItem
		derived bool
	)
	if workflow.CanViewReviewQueue(d.actor) {
		queue, derived, err = d.client.ReviewQueue(ctx, d.kind)
		if err != nil {
			return err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.entities = entities
	d.queue = queue
	d.derived = derived
	return nil
}

// Entities returns the loaded entity list.
func (d *Dashboard) Entities() []Entity {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.entities
}

// ReviewQueue returns the loaded queue and whether it was derived from a
// list fallback.
func (d *Dashboard) ReviewQueue() ([]QueueItem, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queue, d.derived
}

// Busy reports whether an action is in flight for the entity.
func (d *Dashboard) Busy(id int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busy[id]
}

// Close stops the dashboard. In-flight requests finish in the background
// and their results are discarded.
func (d *Dashboard) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
}

// Act runs one workflow action against one entity: advisory permission
// check first (denied actions never reach the network), then the busy
// guard for that id, then the transition. The transition is awaited before
// the list and queue reloads are issued; those two run concurrently with
// each other. The busy flag is cleared on every path.
func (d *Dashboard) Act(ctx context.Context, id int64, action workflow.Action, comment string) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	entity, ok := d.lookup(id)
	if !ok {
		d.mu.Unlock()
		return ErrNotLoaded
	}
	if !workflow.CanAct(entity.Ref(d.kind), d.actor, action) {
		d.mu.Unlock()
		return ErrNotAllowed
	}
	if d.busy[id] {
		d.mu.Unlock()
		return ErrBusy
	}
	d.busy[id] = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		delete(d.busy, id)
		d.mu.Unlock()
	}()

	result, err := d.client.Transition(ctx, d.kind, id, action, comment)
	if err != nil {
		d.notify("action failed: " + errMessage(err))
		return err
	}

	if err := d.reload(ctx); err != nil {
		d.notify("reload failed: " + errMessage(err))
		return err
	}

	d.notify(string(result.Kind) + " moved to " + string(result.To))
	return nil
}

// Delete removes one entity after the same permission and busy gates as
// Act. Confirmation happens above this layer.
func (d *Dashboard) Delete(ctx context.Context, id int64) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	entity, ok := d.lookup(id)
	if !ok {
		d.mu.Unlock()
		return ErrNotLoaded
	}
	if !workflow.CanAct(entity.Ref(d.kind), d.actor, workflow.ActionDelete) {
		d.mu.Unlock()
		return ErrNotAllowed
	}
	if d.busy[id] {
		d.mu.Unlock()
		return ErrBusy
	}
	d.busy[id] = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		delete(d.busy, id)
		d.mu.Unlock()
	}()

	if err := d.client.Delete(ctx, d.kind, id); err != nil {
		d.notify("delete failed: " + errMessage(err))
		return err
	}
	return d.reload(ctx)
}

// lookup finds an entity by id in the loaded list. Callers hold d.mu.
func (d *Dashboard) lookup(id int64) (Entity, bool) {
	for i := range d.entities {
		if d.entities[i].ID == id {
			return d.entities[i], true
		}
	}
	return Entity{}, false
}

// reload refreshes the list and the queue concurrently, then applies both
// unless the dashboard closed while waiting.
func (d *Dashboard) reload(ctx context.Context) error {
	var (
		wg         sync.WaitGroup
		entities   []Entity
		queue      []QueueItem
		derived    bool
		listErr    error
		queueErr   error
		wantsQueue = workflow.CanViewReviewQueue(d.actor)
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		entities, listErr = d.client.ListAll(ctx, d.kind, "")
	}()
	if wantsQueue {
		wg.Add(1)
		go func() {
			defer wg.Done()
			queue, derived, queueErr = d.client.ReviewQueue(ctx, d.kind)
		}()
	}
	wg.Wait()

	if listErr != nil {
		return listErr
	}
	if queueErr != nil {
		return queueErr
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.entities = entities
	if wantsQueue {
		d.queue = queue
		d.derived = derived
	}
	return nil
}

func (d *Dashboard) notify(message string) {
	if d.notifier != nil {
		d.notifier.Notify(message)
	}
}

func errMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
