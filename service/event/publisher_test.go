package event

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPublisher_ListenerReceivesEvents(t *testing.T) {
	publisher := NewPublisher(nil)

	var mu sync.Mutex
	var received []Event
	listener := NewListener(publisher, func(e *Event) {
		mu.Lock()
		received = append(received, *e)
		mu.Unlock()
	})
	listener.Start()
	defer listener.Stop()

	publisher.Publish(KindSubmitted, "id-1", "menu", 5, nil)
	publisher.Publish(KindFailed, "id-1", "menu", 5, fmt.Errorf("boom"))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, KindSubmitted, received[0].Kind)
	assert.Equal(t, "id-1", received[0].RequestID)
	assert.Equal(t, KindFailed, received[1].Kind)
	assert.Equal(t, "boom", received[1].Error)
}

func TestPublisher_NilSafe(t *testing.T) {
	var publisher *Publisher
	// publishing through a nil publisher is a no-op
	publisher.Publish(KindCompleted, "id", "ref", 0, nil)
}
