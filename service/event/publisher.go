package event

import (
	"context"
	"log"
	"time"

	"github.com/viant/asyncloader/service/messaging"
	"github.com/viant/asyncloader/service/messaging/memory"
)

// Publisher fans request lifecycle events out to an optional listener
// through a messaging queue. Publishing is best effort: a full queue
// drops the event rather than stalling the scheduler.
type Publisher struct {
	queue messaging.Queue[Event]
}

// NewPublisher creates a publisher backed by the supplied queue. A nil
// queue defaults to an in-memory one.
func NewPublisher(queue messaging.Queue[Event]) *Publisher {
	if queue == nil {
		queue = memory.NewQueue[Event](memory.DefaultConfig())
	}
	return &Publisher{queue: queue}
}

// Publish records an event. Delivery is best effort.
func (p *Publisher) Publish(kind Kind, requestID, reference string, priority int, err error) {
	if p == nil {
		return
	}
	e := Event{
		Kind:      kind,
		RequestID: requestID,
		Reference: reference,
		Priority:  priority,
		CreatedAt: time.Now(),
	}
	if err != nil {
		e.Error = err.Error()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_ = p.queue.Publish(ctx, &e)
}

// Consume retrieves the next event, blocking until one is available or
// ctx is done.
func (p *Publisher) Consume(ctx context.Context) (*Event, error) {
	msg, err := p.queue.Consume(ctx)
	if err != nil || msg == nil {
		return nil, err
	}
	if err = msg.Ack(); err != nil {
		return nil, err
	}
	return msg.T(), nil
}

// Listener dispatches consumed events to a handler on its own goroutine.
type Listener struct {
	publisher *Publisher
	handler   func(*Event)
	cancelFn  context.CancelFunc
}

// NewListener creates a listener bound to publisher.
func NewListener(publisher *Publisher, handler func(*Event)) *Listener {
	return &Listener{publisher: publisher, handler: handler}
}

// Start begins consuming events.
func (l *Listener) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	l.cancelFn = cancel
	go func() {
		for {
			e, err := l.publisher.Consume(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("error consuming event: %v", err)
				continue
			}
			l.handler(e)
		}
	}()
}

// Stop terminates the consuming goroutine.
func (l *Listener) Stop() {
	if l.cancelFn != nil {
		l.cancelFn()
	}
}
