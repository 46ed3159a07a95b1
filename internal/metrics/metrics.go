package metrics

import (
	"sync/atomic"
)

// Metrics tracks counters for a single notify run.
type Metrics struct {
	ResourcesParsed     uint64 `json:"resources_parsed"`
	ResourcesSuppressed uint64 `json:"resources_suppressed"`
	CommentsListed      uint64 `json:"comments_listed"`
	CommentsCreated     uint64 `json:"comments_created"`
	CommentsUpdated     uint64 `json:"comments_updated"`
	CommentsSkipped     uint64 `json:"comments_skipped"`
}

var global = &Metrics{}

// ResourcesParsed adds n to the count of resources read from the diff.
func ResourcesParsed(n int) { atomic.AddUint64(&global.ResourcesParsed, uint64(n)) }

// ResourceSuppressed increments the count of resources dropped as noise.
func ResourceSuppressed() { atomic.AddUint64(&global.ResourcesSuppressed, 1) }

// CommentsListed adds n to the count of existing comments inspected.
func CommentsListed(n int) { atomic.AddUint64(&global.CommentsListed, uint64(n)) }

// CommentCreated increments the count of comments posted.
func CommentCreated() { atomic.AddUint64(&global.CommentsCreated, 1) }

// CommentUpdated increments the count of comments edited in place.
func CommentUpdated() { atomic.AddUint64(&global.CommentsUpdated, 1) }

// CommentSkipped increments the count of runs that had no thread to comment on.
func CommentSkipped() { atomic.AddUint64(&global.CommentsSkipped, 1) }

// Get returns a snapshot of the current metrics.
func Get() Metrics {
	return Metrics{
		ResourcesParsed:     atomic.LoadUint64(&global.ResourcesParsed),
		ResourcesSuppressed: atomic.LoadUint64(&global.ResourcesSuppressed),
		CommentsListed:      atomic.LoadUint64(&global.CommentsListed),
		CommentsCreated:     atomic.LoadUint64(&global.CommentsCreated),
		CommentsUpdated:     atomic.LoadUint64(&global.CommentsUpdated),
		CommentsSkipped:     atomic.LoadUint64(&global.CommentsSkipped),
	}
}

// Reset resets all metrics to zero (useful for testing).
func Reset() {
	atomic.StoreUint64(&global.ResourcesParsed, 0)
	atomic.StoreUint64(&global.ResourcesSuppressed, 0)
	atomic.StoreUint64(&global.CommentsListed, 0)
	atomic.StoreUint64(&global.CommentsCreated, 0)
	atomic.StoreUint64(&global.CommentsUpdated, 0)
	atomic.StoreUint64(&global.CommentsSkipped, 0)
}
