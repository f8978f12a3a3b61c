package scheduler

import "container/heap"

// pendingQueue orders requests by (priority desc, submittedAt asc, seq asc).
// The root is always the next request to admit. heapIdx bookkeeping in
// Swap allows O(log N) removal when a pending request is cancelled.
type pendingQueue struct {
	items []*Request
}

func newPendingQueue() *pendingQueue {
	q := &pendingQueue{}
	heap.Init(q)
	return q
}

func (q *pendingQueue) Len() int { return len(q.items) }

func (q *pendingQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if !a.SubmittedAt.Equal(b.SubmittedAt) {
		return a.SubmittedAt.Before(b.SubmittedAt)
	}
	return a.seq < b.seq
}

func (q *pendingQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].heapIdx = i
	q.items[j].heapIdx = j
}

func (q *pendingQueue) Push(x any) {
	r := x.(*Request)
	r.heapIdx = len(q.items)
	q.items = append(q.items, r)
}

func (q *pendingQueue) Pop() any {
	old := q.items
	n := len(old)
	r := old[n-1]
	old[n-1] = nil
	r.heapIdx = -1
	q.items = old[:n-1]
	return r
}

// push inserts a request.
func (q *pendingQueue) push(r *Request) {
	heap.Push(q, r)
}

// pop removes and returns the highest priority request, or nil when empty.
func (q *pendingQueue) pop() *Request {
	if len(q.items) == 0 {
		return nil
	}
	return heap.Pop(q).(*Request)
}

// remove takes r out of the queue if present, reporting whether it was.
func (q *pendingQueue) remove(r *Request) bool {
	if r.heapIdx < 0 || r.heapIdx >= len(q.items) || q.items[r.heapIdx] != r {
		return false
	}
	heap.Remove(q, r.heapIdx)
	return true
}

// find returns the queued request with the supplied id, or nil.
func (q *pendingQueue) find(id string) *Request {
	for _, r := range q.items {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// all returns the queued requests in arbitrary order.
func (q *pendingQueue) all() []*Request {
	return q.items
}

// clear empties the queue and returns the removed requests.
func (q *pendingQueue) clear() []*Request {
	removed := q.items
	for _, r := range removed {
		r.heapIdx = -1
	}
	q.items = nil
	return removed
}
