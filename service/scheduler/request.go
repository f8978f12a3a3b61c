package scheduler

import (
	"time"

	"github.com/viant/asyncloader/service/view"
)

// OnCompleted is invoked at most once with the created view.
type OnCompleted func(view.View)

// OnFailed is invoked at most once with the failure cause.
type OnFailed func(error)

// Request describes one unit of resolution work. All fields are fixed at
// submission; only cancellation state changes afterwards, and only under
// the scheduler lock.
type Request struct {
	ID          string
	Reference   string
	Priority    int
	SubmittedAt time.Time
	Placement   view.Placement

	onCompleted OnCompleted
	onFailed    OnFailed

	// preload marks a cache-population request whose produced view is
	// discarded without being displayed.
	preload bool

	// cancelled transitions false to true exactly once.
	cancelled bool

	// consumed guards the single-shot callback contract: once set,
	// neither callback may fire again.
	consumed bool

	// seq is a submission sequence number breaking timestamp ties.
	seq uint64

	// heapIdx is the request's position in the pending heap, maintained
	// by pendingQueue.Swap so cancellation can remove in O(log N).
	heapIdx int
}

// Age returns how long ago the request was submitted.
func (r *Request) Age(now time.Time) time.Duration {
	return now.Sub(r.SubmittedAt)
}
