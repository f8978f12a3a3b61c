package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func pendingRequest(id string, priority int, submittedAt time.Time, seq uint64) *Request {
	return &Request{ID: id, Priority: priority, SubmittedAt: submittedAt, seq: seq, heapIdx: -1}
}

func TestPendingQueue_Ordering(t *testing.T) {
	now := time.Now()
	q := newPendingQueue()
	q.push(pendingRequest("low", 1, now, 1))
	q.push(pendingRequest("high", 9, now.Add(time.Second), 2))
	q.push(pendingRequest("mid", 5, now, 3))

	assert.Equal(t, "high", q.pop().ID)
	assert.Equal(t, "mid", q.pop().ID)
	assert.Equal(t, "low", q.pop().ID)
	assert.Nil(t, q.pop())
}

func TestPendingQueue_TieBreakBySubmission(t *testing.T) {
	now := time.Now()
	q := newPendingQueue()
	q.push(pendingRequest("later", 3, now.Add(time.Millisecond), 3))
	q.push(pendingRequest("earlier", 3, now, 1))
	q.push(pendingRequest("sameInstant", 3, now, 2))

	assert.Equal(t, "earlier", q.pop().ID)
	// equal timestamps fall back to submission sequence
	assert.Equal(t, "sameInstant", q.pop().ID)
	assert.Equal(t, "later", q.pop().ID)
}

func TestPendingQueue_Remove(t *testing.T) {
	now := time.Now()
	q := newPendingQueue()
	a := pendingRequest("a", 1, now, 1)
	b := pendingRequest("b", 2, now, 2)
	c := pendingRequest("c", 3, now, 3)
	q.push(a)
	q.push(b)
	q.push(c)

	assert.True(t, q.remove(b))
	assert.False(t, q.remove(b))
	assert.Nil(t, q.find("b"))
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, "c", q.pop().ID)
	assert.Equal(t, "a", q.pop().ID)
}

func TestPendingQueue_Clear(t *testing.T) {
	now := time.Now()
	q := newPendingQueue()
	q.push(pendingRequest("a", 1, now, 1))
	q.push(pendingRequest("b", 2, now, 2))

	removed := q.clear()
	assert.Equal(t, 2, len(removed))
	assert.Equal(t, 0, q.Len())
}
