package cache

import (
	"fmt"

	"github.com/pressroom-io/pressroom/internal/workflow"
)

// Key layout: "<kind>:<id>" for single entities and "<kind>:list:" as the
// prefix for every cached listing of that kind. Invalidation after a
// workflow transition deletes the entity key and the whole listing prefix.

// EntityKey returns the cache key for one entity.
func EntityKey(kind workflow.Kind, id int64) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

// ListKey returns the cache key for a paginated listing.
func ListKey(kind workflow.Kind, status workflow.Status, page int64) string {
	return fmt.Sprintf("%s:list:%s:%d", kind, status, page)
}

// ListPrefix returns the prefix covering every cached listing of a kind.
func ListPrefix(kind workflow.Kind) string {
	return string(kind) + ":list:"
}

// QueueKey returns the cache key for the combined review queue.
func QueueKey() string {
	return "queue:review"
}
