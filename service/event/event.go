package event

import "time"

// Kind classifies a request lifecycle transition.
type Kind string

const (
	KindSubmitted Kind = "submitted"
	KindQueued    Kind = "queued"
	KindStarted   Kind = "started"
	KindCompleted Kind = "completed"
	KindFailed    Kind = "failed"
	KindCancelled Kind = "cancelled"
	KindTimeout   Kind = "timeout"
)

// Event describes one request lifecycle transition.
type Event struct {
	Kind      Kind      `json:"kind"`
	RequestID string    `json:"requestID"`
	Reference string    `json:"reference"`
	Priority  int       `json:"priority,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
