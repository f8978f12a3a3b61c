package asyncloader

import (
	"context"
	"time"

	"github.com/viant/asyncloader/service/cache"
	"github.com/viant/asyncloader/service/event"
	"github.com/viant/asyncloader/service/loader"
	lmemory "github.com/viant/asyncloader/service/loader/memory"
	"github.com/viant/asyncloader/service/messaging"
	"github.com/viant/asyncloader/service/scheduler"
	"github.com/viant/asyncloader/service/view"
)

// Service is the process-wide façade composing the scheduler, cache,
// loader and view factory. Every operation is synchronous from the
// caller's perspective; completion and failure callbacks may fire later,
// asynchronously, from the loading pipeline.
type Service struct {
	config     *Config
	loader     loader.Service
	factory    view.Factory
	cache      *cache.Service
	events     *event.Publisher
	eventQueue messaging.Queue[event.Event]
	scheduler  *scheduler.Service
}

// New creates a Service. Collaborators not supplied through options fall
// back to in-memory defaults.
func New(options ...Option) (*Service, error) {
	s := &Service{}
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()
	var err error
	s.scheduler, err = scheduler.New(
		scheduler.WithLoader(s.loader),
		scheduler.WithViewFactory(s.factory),
		scheduler.WithCache(s.cache),
		scheduler.WithEvents(s.events),
		scheduler.WithConfig(s.config.schedulerConfig()),
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) ensureBaseSetup() {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if s.loader == nil {
		s.loader = lmemory.New(lmemory.DefaultConfig())
	}
	if s.factory == nil {
		s.factory = view.NewReflectiveFactory()
	}
	if s.cache == nil {
		s.cache = cache.New()
	}
	if s.events == nil {
		s.events = event.NewPublisher(s.eventQueue)
	}
}

// Start launches background maintenance. It is required only for the
// periodic cancelled-id pruning; submissions work without it.
func (s *Service) Start(ctx context.Context) error {
	return s.scheduler.Start(ctx)
}

// Shutdown stops background maintenance.
func (s *Service) Shutdown() {
	s.scheduler.Shutdown()
}

// Submit requests resolution of reference into a displayed view.
// Returns the request id, or an empty id when the reference is rejected
// (the rejection is reported synchronously through onFailed).
func (s *Service) Submit(ctx context.Context, reference string, placement view.Placement, priority int, onCompleted scheduler.OnCompleted, onFailed scheduler.OnFailed) string {
	return s.scheduler.Submit(ctx, reference, placement, priority, onCompleted, onFailed)
}

// Preload resolves reference only to populate the cache. Returns an
// empty id when already cached or invalid.
func (s *Service) Preload(ctx context.Context, reference string, priority int) string {
	return s.scheduler.Preload(ctx, reference, priority)
}

// Cancel aborts the request with the supplied id.
func (s *Service) Cancel(ctx context.Context, id string) bool {
	return s.scheduler.Cancel(ctx, id)
}

// CancelAll aborts every active and pending request.
func (s *Service) CancelAll(ctx context.Context) int {
	return s.scheduler.CancelAll(ctx)
}

// ActiveCount returns the number of requests currently loading.
func (s *Service) ActiveCount() int {
	return s.scheduler.ActiveCount()
}

// PendingCount returns the number of requests awaiting a slot.
func (s *Service) PendingCount() int {
	return s.scheduler.PendingCount()
}

// IsLoading reports whether reference is being resolved or queued.
func (s *Service) IsLoading(reference string) bool {
	return s.scheduler.IsLoading(reference)
}

// SetMaxConcurrent updates the concurrency limit, clamped to at least 1.
func (s *Service) SetMaxConcurrent(ctx context.Context, limit int) {
	s.scheduler.SetMaxConcurrent(ctx, limit)
}

// SetLoadTimeout updates the per-request timeout, clamped to at least
// one second.
func (s *Service) SetLoadTimeout(timeout time.Duration) {
	s.scheduler.SetLoadTimeout(timeout)
}

// Statistics returns the request counters.
func (s *Service) Statistics() scheduler.Statistics {
	return s.scheduler.Statistics()
}

// RequestStatus reports where the request with the supplied id sits.
func (s *Service) RequestStatus(id string) scheduler.Status {
	return s.scheduler.RequestStatus(id)
}

// ClearCache empties the resolved class cache and cancels in-flight
// preloads.
func (s *Service) ClearCache(ctx context.Context) {
	s.scheduler.ClearCache(ctx)
}

// CacheStatistics returns resolved class cache occupancy.
func (s *Service) CacheStatistics() cache.Statistics {
	return s.cache.Statistics()
}

// DebugInfo renders a dump of the internal state.
func (s *Service) DebugInfo() string {
	return s.scheduler.DebugInfo()
}

// Events returns the lifecycle event publisher.
func (s *Service) Events() *event.Publisher {
	return s.events
}

// Cache returns the resolved class cache.
func (s *Service) Cache() *cache.Service {
	return s.cache
}
