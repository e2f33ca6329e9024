// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pressroom-io/pressroom/internal/workflow"
)

func queueEntities(n int, status workflow.Status) []Entity {
	items := make([]Entity, n)
	for i := range items {
		items[i] = Entity{
			ID:     int64(i + 1),
			Title:  fmt.Sprintf("Story %d", i+1),
			Status: status,
		}
	}
	return items
}

func TestQueuePageClampOnShrinkingFilter(t *testing.T) {
	q := NewQueue(queueEntities(60, workflow.StatusInReview), nil)

	assert.Equal(t, 3, q.Pages())
	q.SetPage(3)
	assert.Equal(t, 3, q.Page())
	assert.Len(t, q.PageItems(), 10)

	// A search that shrinks the set below the current page pulls the page
	// back into range.
	q.SetSearch("Story 1")
	assert.LessOrEqual(t, q.Page(), q.Pages())
	assert.GreaterOrEqual(t, q.Page(), 1)
	assert.NotEmpty(t, q.PageItems())

	// A filter that empties the set still leaves a valid page.
	q.SetSearch("no such story")
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 1, q.Pages())
	assert.Equal(t, 1, q.Page())
	assert.Empty(t, q.PageItems())

	// Clearing the filter keeps the page in range.
	q.SetSearch("")
	assert.Equal(t, 60, q.Len())
	assert.Equal(t, 1, q.Page())
}

func TestQueueSetPageClampsBothEnds(t *testing.T) {
	q := NewQueue(queueEntities(30, workflow.StatusInReview), nil)

	q.SetPage(0)
	assert.Equal(t, 1, q.Page())
	q.SetPage(-5)
	assert.Equal(t, 1, q.Page())
	q.SetPage(99)
	assert.Equal(t, 2, q.Page())
}

func TestQueueSearchIgnoresCaseAndDiacritics(t *testing.T) {
	items := []Entity{
		{ID: 1, Title: "Élection Coverage", Status: workflow.StatusInReview},
		{ID: 2, Title: "Budget Vote", Status: workflow.StatusInReview},
		{ID: 3, Title: "Café Review", Body: "the best café in town", Status: workflow.StatusDraft},
	}
	q := NewQueue(items, nil)

	q.SetSearch("election")
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, int64(1), q.PageItems()[0].ID)

	q.SetSearch("CAFE")
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, int64(3), q.PageItems()[0].ID)

	// Status text is searchable too.
	q.SetSearch("in_review")
	assert.Equal(t, 2, q.Len())
}

func TestQueueSearchesCategoryName(t *testing.T) {
	items := []Entity{
		{ID: 1, Title: "Match Report", Status: workflow.StatusInReview, CategoryID: sql.NullInt64{Int64: 7, Valid: true}},
		{ID: 2, Title: "Court Ruling", Status: workflow.StatusInReview, CategoryID: sql.NullInt64{Int64: 8, Valid: true}},
	}
	q := NewQueue(items, map[int64]string{7: "Sports", 8: "Justice"})

	q.SetSearch("sports")
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, int64(1), q.PageItems()[0].ID)
}

func TestQueueStatusAndCategoryFilters(t *testing.T) {
	items := []Entity{
		{ID: 1, Title: "A", Status: workflow.StatusInReview, CategoryID: sql.NullInt64{Int64: 7, Valid: true}},
		{ID: 2, Title: "B", Status: workflow.StatusDraft, CategoryID: sql.NullInt64{Int64: 7, Valid: true}},
		{ID: 3, Title: "C", Status: workflow.StatusInReview},
	}
	q := NewQueue(items, nil)

	q.SetStatusFilter(workflow.StatusInReview)
	assert.Equal(t, 2, q.Len())

	q.SetCategoryFilter(7)
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, int64(1), q.PageItems()[0].ID)

	q.SetStatusFilter("")
	q.SetCategoryFilter(0)
	assert.Equal(t, 3, q.Len())
}

func TestQueueReplaceKeepsFiltersAndClamps(t *testing.T) {
	q := NewQueue(queueEntities(60, workflow.StatusInReview), nil)
	q.SetPage(3)

	q.Replace(queueEntities(5, workflow.StatusInReview))
	assert.Equal(t, 1, q.Page())
	assert.Equal(t, 5, q.Len())
}
