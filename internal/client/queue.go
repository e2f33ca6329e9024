// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"strings"

	"github.com/mozillazg/go-unidecode"

	"github.com/pressroom-io/pressroom/internal/workflow"
)

// QueuePageSize is the fixed page size of queue and list projections.
const QueuePageSize = 25

// Queue is an in-memory projection over an already-fetched entity
// collection: free-text search, status/category filters and pagination.
// The page is clamped into [1, pages] after every mutation so it can never
// point past the filtered result set. Not safe for concurrent use; each
// dashboard owns its own Queue.
type Queue struct {
	items         []Entity
	categoryNames map[int64]string
	derived       bool

	search   string
	status   workflow.Status
	category int64

	page     int
	filtered []Entity
}

// NewQueue builds a projection over items. categoryNames may be nil; it
// only feeds category-name search and filtering.
func NewQueue(items []Entity, categoryNames map[int64]string) *Queue {
	q := &Queue{
		items:         items,
		categoryNames: categoryNames,
		page:          1,
	}
	q.refilter()
	return q
}

// SetDerived marks the projection as built from a list fallback rather
// than the dedicated queue endpoint.
func (q *Queue) SetDerived(derived bool) { q.derived = derived }

// Derived reports whether the projection came from the list fallback.
// Derived queues must not feed authoritative counts.
func (q *Queue) Derived() bool { return q.derived }

// Replace swaps in a freshly fetched collection, keeping current filters.
func (q *Queue) Replace(items []Entity) {
	q.items = items
	q.refilter()
}

// SetSearch applies a free-text filter. Matching is case- and
// diacritic-insensitive substring over label, content, status and
// category name.
func (q *Queue) SetSearch(s string) {
	q.search = strings.TrimSpace(s)
	q.refilter()
}

// SetStatusFilter narrows the projection to one status; empty clears it.
func (q *Queue) SetStatusFilter(status workflow.Status) {
	q.status = status
	q.refilter()
}

// SetCategoryFilter narrows the projection to one category; 0 clears it.
func (q *Queue) SetCategoryFilter(categoryID int64) {
	q.category = categoryID
	q.refilter()
}

// SetPage moves to page n, clamped into [1, Pages()].
func (q *Queue) SetPage(n int) {
	q.page = n
	q.clampPage()
}

// Page returns the current page number.
func (q *Queue) Page() int { return q.page }

// Pages returns the page count of the filtered collection, at least 1.
func (q *Queue) Pages() int {
	pages := (len(q.filtered) + QueuePageSize - 1) / QueuePageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// Len returns the filtered item count.
func (q *Queue) Len() int { return len(q.filtered) }

// PageItems returns the entities on the current page.
func (q *Queue) PageItems() []Entity {
	start := (q.page - 1) * QueuePageSize
	if start >= len(q.filtered) {
		return nil
	}
	end := start + QueuePageSize
	if end > len(q.filtered) {
		end = len(q.filtered)
	}
	return q.filtered[start:end]
}

func (q *Queue) refilter() {
	needle := fold(q.search)

	q.filtered = q.filtered[:0]
	for _, e := range q.items {
		if q.status != "" && e.Status != q.status {
			continue
		}
		if q.category != 0 && (!e.CategoryID.Valid || e.CategoryID.Int64 != q.category) {
			continue
		}
		if needle != "" && !q.matches(&e, needle) {
			continue
		}
		q.filtered = append(q.filtered, e)
	}
	q.clampPage()
}

func (q *Queue) matches(e *Entity, needle string) bool {
	if strings.Contains(fold(e.Label()), needle) {
		return true
	}
	if strings.Contains(fold(e.Content()), needle) {
		return true
	}
	if strings.Contains(fold(string(e.Status)), needle) {
		return true
	}
	if e.CategoryID.Valid {
		if name, ok := q.categoryNames[e.CategoryID.Int64]; ok && strings.Contains(fold(name), needle) {
			return true
		}
	}
	return false
}

func (q *Queue) clampPage() {
	if pages := q.Pages(); q.page > pages {
		q.page = pages
	}
	if q.page < 1 {
		q.page = 1
	}
}

// fold normalizes text for matching: diacritics stripped, lowercased.
func fold(s string) string {
	return strings.ToLower(unidecode.Unidecode(s))
}
