package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/viant/asyncloader/internal/clock"
	"github.com/viant/asyncloader/internal/idgen"
	"github.com/viant/asyncloader/service/cache"
	"github.com/viant/asyncloader/service/event"
	"github.com/viant/asyncloader/service/loader"
	"github.com/viant/asyncloader/service/view"
	"github.com/viant/asyncloader/tracing"
)

// Config represents scheduler configuration.
type Config struct {
	// MaxConcurrent bounds the number of loads resolving at once.
	MaxConcurrent int

	// LoadTimeout is the per-request resolution deadline.
	LoadTimeout time.Duration

	// CleanupInterval governs periodic pruning of the cancelled-id ledger.
	CleanupInterval time.Duration

	// CancelledIDCap bounds the cancelled-id ledger size.
	CancelledIDCap int
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent:   3,
		LoadTimeout:     30 * time.Second,
		CleanupInterval: 5 * time.Second,
		CancelledIDCap:  100,
	}
}

// Status describes where a request currently sits.
type Status string

const (
	StatusActive    Status = "active"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
	StatusUnknown   Status = "unknown"
)

// Statistics holds monotonically increasing request counters.
type Statistics struct {
	TotalSubmitted int64 `json:"totalSubmitted"`
	Completed      int64 `json:"completed"`
	Failed         int64 `json:"failed"`
	Cancelled      int64 `json:"cancelled"`
}

// Service owns the active set and pending queue: it decides when to
// start, queue or reject work, admits at most MaxConcurrent concurrent
// loads and drains the queue as slots free up. A single mutex guards all
// state; no two admission or cancellation decisions ever interleave.
// Callbacks always fire outside the lock so they may re-enter the
// scheduler safely.
type Service struct {
	mu      sync.Mutex
	config  Config
	loader  loader.Service
	factory view.Factory
	cache   *cache.Service
	events  *event.Publisher

	active       map[string]*Request
	pending      *pendingQueue
	handles      map[string]loader.Handle
	timers       map[string]*time.Timer
	cancelledIDs *idLedger
	seq          uint64

	totalSubmitted int64
	completed      int64
	failed         int64
	cancelled      int64

	shutdownCh chan struct{}
	janitorWg  sync.WaitGroup
	started    bool
}

// Option customises the scheduler service.
type Option func(*Service)

// WithLoader sets the resolution collaborator.
func WithLoader(l loader.Service) Option {
	return func(s *Service) { s.loader = l }
}

// WithViewFactory sets the view creation collaborator.
func WithViewFactory(f view.Factory) Option {
	return func(s *Service) { s.factory = f }
}

// WithCache sets the resolved class cache.
func WithCache(c *cache.Service) Option {
	return func(s *Service) { s.cache = c }
}

// WithEvents sets the lifecycle event publisher.
func WithEvents(p *event.Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithConfig sets the scheduler configuration.
func WithConfig(config Config) Option {
	return func(s *Service) { s.config = config }
}

// New creates a scheduler service.
func New(options ...Option) (*Service, error) {
	s := &Service{
		config:       DefaultConfig(),
		active:       make(map[string]*Request),
		pending:      newPendingQueue(),
		handles:      make(map[string]loader.Handle),
		timers:       make(map[string]*time.Timer),
		cancelledIDs: newIDLedger(),
		shutdownCh:   make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if s.factory == nil {
		return nil, fmt.Errorf("view factory is required")
	}
	if s.cache == nil {
		s.cache = cache.New()
	}
	if s.config.MaxConcurrent < 1 {
		s.config.MaxConcurrent = DefaultConfig().MaxConcurrent
	}
	if s.config.LoadTimeout <= 0 {
		s.config.LoadTimeout = DefaultConfig().LoadTimeout
	}
	if s.config.CleanupInterval <= 0 {
		s.config.CleanupInterval = DefaultConfig().CleanupInterval
	}
	if s.config.CancelledIDCap <= 0 {
		s.config.CancelledIDCap = DefaultConfig().CancelledIDCap
	}
	return s, nil
}

// Start launches the janitor goroutine pruning the cancelled-id ledger.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	interval := s.config.CleanupInterval
	s.mu.Unlock()

	s.janitorWg.Add(1)
	go func() {
		defer s.janitorWg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.cleanup()
			case <-s.shutdownCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Shutdown stops the janitor. In-flight requests are untouched; use
// CancelAll to abort them.
func (s *Service) Shutdown() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()
	close(s.shutdownCh)
	s.janitorWg.Wait()
}

// Submit registers a resolution request and returns its id, or an empty
// id when the reference is rejected. Completion and failure are reported
// through the supplied callbacks, each invoked at most once.
func (s *Service) Submit(ctx context.Context, reference string, placement view.Placement, priority int, onCompleted OnCompleted, onFailed OnFailed) string {
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("scheduler.Submit %s", reference), "INTERNAL")
	if strings.TrimSpace(reference) == "" {
		log.Printf("submit: invalid reference")
		if onFailed != nil {
			onFailed(ErrInvalidReference)
		}
		tracing.EndSpan(span, ErrInvalidReference)
		return ""
	}
	request := s.newRequest(reference, placement, priority, onCompleted, onFailed)
	span.WithAttributes(map[string]string{"request.id": request.ID, "reference": reference})
	s.submitRequest(ctx, request)
	tracing.EndSpan(span, nil)
	return request.ID
}

// Preload resolves reference only to populate the cache: the produced
// view is detached without being displayed. Returns an empty id when the
// reference is invalid or already cached. Preloads go through the same
// admission path as any other request.
func (s *Service) Preload(ctx context.Context, reference string, priority int) string {
	if strings.TrimSpace(reference) == "" {
		log.Printf("preload: invalid reference")
		return ""
	}
	if s.cache.Has(reference) {
		log.Printf("preload: %v already cached", reference)
		return ""
	}
	request := s.newRequest(reference, view.Placement{}, priority, nil, nil)
	request.preload = true
	request.onCompleted = func(v view.View) {
		if v != nil {
			v.Detach()
		}
		log.Printf("preload: cached %v", reference)
	}
	request.onFailed = func(err error) {
		log.Printf("preload: failed to preload %v: %v", reference, err)
	}
	s.submitRequest(ctx, request)
	return request.ID
}

func (s *Service) newRequest(reference string, placement view.Placement, priority int, onCompleted OnCompleted, onFailed OnFailed) *Request {
	return &Request{
		ID:          idgen.New(),
		Reference:   reference,
		Priority:    priority,
		SubmittedAt: clock.Now(),
		Placement:   placement,
		onCompleted: onCompleted,
		onFailed:    onFailed,
		heapIdx:     -1,
	}
}

func (s *Service) submitRequest(ctx context.Context, request *Request) {
	s.mu.Lock()
	s.totalSubmitted++
	s.seq++
	request.seq = s.seq

	if class, ok := s.cache.Get(request.Reference); ok {
		s.mu.Unlock()
		s.events.Publish(event.KindSubmitted, request.ID, request.Reference, request.Priority, nil)
		log.Printf("submit: cache hit for %v, creating view immediately", request.Reference)
		s.instantiate(ctx, request, class)
		return
	}
	if len(s.active) < s.config.MaxConcurrent {
		s.active[request.ID] = request
		s.mu.Unlock()
		s.events.Publish(event.KindSubmitted, request.ID, request.Reference, request.Priority, nil)
		s.startLoading(ctx, request)
		return
	}
	s.pending.push(request)
	queued := s.pending.Len()
	s.mu.Unlock()
	s.events.Publish(event.KindQueued, request.ID, request.Reference, request.Priority, nil)
	log.Printf("submit: request %v queued (queue size: %d)", request.ID, queued)
}

// startLoading issues the asynchronous load for an already admitted
// request, re-checking the cache first since a concurrent submission for
// the same reference may have populated it while this one was queued.
func (s *Service) startLoading(ctx context.Context, request *Request) {
	s.mu.Lock()
	if _, ok := s.active[request.ID]; !ok {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if class, ok := s.cache.Get(request.Reference); ok {
		s.instantiate(ctx, request, class)
		s.release(ctx, request.ID)
		return
	}

	s.events.Publish(event.KindStarted, request.ID, request.Reference, request.Priority, nil)
	timer := time.AfterFunc(s.loadTimeout(), func() {
		s.handleTimeout(ctx, request.ID)
	})
	s.mu.Lock()
	if _, ok := s.active[request.ID]; !ok {
		timer.Stop()
		s.mu.Unlock()
		return
	}
	s.timers[request.ID] = timer
	s.mu.Unlock()

	handle, err := s.loader.Load(ctx, request.Reference, func(class *loader.Class, err error) {
		s.onLoadCompleted(ctx, request, class, err)
	})
	if err != nil {
		log.Printf("startLoading: failed to issue load for %v: %v", request.Reference, err)
		s.clearTimer(request.ID)
		s.fail(request, fmt.Errorf("%w: %w", ErrLoadFailure, err))
		s.release(ctx, request.ID)
		return
	}
	s.mu.Lock()
	if _, ok := s.active[request.ID]; ok {
		s.handles[request.ID] = handle
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	// request terminated before the handle could be recorded
	handle.Cancel()
}

// onLoadCompleted is delivered from a loader goroutine once per request,
// unless the handle was cancelled first.
func (s *Service) onLoadCompleted(ctx context.Context, request *Request, class *loader.Class, err error) {
	s.mu.Lock()
	s.clearTimerLocked(request.ID)
	delete(s.handles, request.ID)
	cancelled := request.cancelled || s.cancelledIDs.contains(request.ID)
	s.mu.Unlock()

	if cancelled {
		log.Printf("onLoadCompleted: request %v was cancelled, discarding result", request.ID)
		s.release(ctx, request.ID)
		return
	}
	switch {
	case err != nil:
		s.fail(request, fmt.Errorf("%w: %w", ErrLoadFailure, err))
	case class == nil:
		s.fail(request, fmt.Errorf("%w: no class resolved for %v", ErrLoadFailure, request.Reference))
	default:
		s.cache.Put(request.Reference, class)
		s.instantiate(ctx, request, class)
	}
	s.release(ctx, request.ID)
}

// instantiate creates the view for a resolved class and settles the
// request. Never called with the lock held.
func (s *Service) instantiate(ctx context.Context, request *Request, class *loader.Class) {
	aView, err := s.factory.Create(ctx, class, request.Placement)
	if err != nil {
		s.fail(request, fmt.Errorf("%w: %w", ErrInstantiation, err))
		return
	}
	s.complete(request, aView)
}

func (s *Service) complete(request *Request, aView view.View) {
	s.mu.Lock()
	if request.consumed {
		s.mu.Unlock()
		return
	}
	request.consumed = true
	s.completed++
	cb := request.onCompleted
	s.mu.Unlock()
	if cb != nil {
		cb(aView)
	}
	s.events.Publish(event.KindCompleted, request.ID, request.Reference, request.Priority, nil)
}

func (s *Service) fail(request *Request, err error) {
	s.mu.Lock()
	if request.consumed {
		s.mu.Unlock()
		return
	}
	request.consumed = true
	s.failed++
	cb := request.onFailed
	s.mu.Unlock()
	if cb != nil {
		cb(err)
	}
	kind := event.KindFailed
	if errors.Is(err, ErrLoadTimeout) {
		kind = event.KindTimeout
	}
	s.events.Publish(kind, request.ID, request.Reference, request.Priority, err)
}

// release frees the request's slot and admits pending work. Every path
// that removes a request from the active set funnels through here so a
// slot can never be lost.
func (s *Service) release(ctx context.Context, id string) {
	s.mu.Lock()
	delete(s.active, id)
	admitted := s.admitLocked()
	s.mu.Unlock()
	for _, next := range admitted {
		s.startLoading(ctx, next)
	}
}

// admitLocked moves pending requests into the active set up to the
// concurrency limit, skipping any cancelled in the meantime.
func (s *Service) admitLocked() []*Request {
	var admitted []*Request
	for len(s.active) < s.config.MaxConcurrent {
		next := s.pending.pop()
		if next == nil {
			break
		}
		if next.cancelled || s.cancelledIDs.contains(next.ID) {
			continue
		}
		s.active[next.ID] = next
		admitted = append(admitted, next)
	}
	return admitted
}

// handleTimeout behaves as an explicit cancel of an active request,
// except the caller is told through onFailed and the event counts as a
// failure rather than a cancellation.
func (s *Service) handleTimeout(ctx context.Context, id string) {
	s.mu.Lock()
	request, ok := s.active[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	if handle, ok := s.handles[id]; ok {
		handle.Cancel()
		delete(s.handles, id)
	}
	delete(s.timers, id)
	request.cancelled = true
	s.cancelledIDs.add(id)
	delete(s.active, id)
	admitted := s.admitLocked()
	s.mu.Unlock()

	log.Printf("handleTimeout: request %v timed out", id)
	s.fail(request, ErrLoadTimeout)
	for _, next := range admitted {
		s.startLoading(ctx, next)
	}
}

// Cancel aborts the request with the supplied id. Returns false when the
// id is unknown or the request already reached a terminal state.
func (s *Service) Cancel(ctx context.Context, id string) bool {
	if id == "" {
		return false
	}
	s.mu.Lock()
	if request, ok := s.active[id]; ok {
		if handle, ok := s.handles[id]; ok {
			handle.Cancel()
			delete(s.handles, id)
		}
		s.clearTimerLocked(id)
		request.cancelled = true
		request.consumed = true
		s.cancelledIDs.add(id)
		delete(s.active, id)
		s.cancelled++
		admitted := s.admitLocked()
		s.mu.Unlock()

		log.Printf("cancel: cancelled active request %v", id)
		s.events.Publish(event.KindCancelled, id, request.Reference, request.Priority, nil)
		for _, next := range admitted {
			s.startLoading(ctx, next)
		}
		return true
	}
	if request := s.pending.find(id); request != nil {
		s.pending.remove(request)
		request.cancelled = true
		request.consumed = true
		s.cancelledIDs.add(id)
		s.cancelled++
		s.mu.Unlock()

		log.Printf("cancel: cancelled pending request %v", id)
		s.events.Publish(event.KindCancelled, id, request.Reference, request.Priority, nil)
		return true
	}
	s.mu.Unlock()
	return false
}

// CancelAll aborts every active and pending request and returns how many
// were cancelled.
func (s *Service) CancelAll(ctx context.Context) int {
	s.mu.Lock()
	var cancelled []*Request
	for id, request := range s.active {
		if handle, ok := s.handles[id]; ok {
			handle.Cancel()
		}
		s.clearTimerLocked(id)
		request.cancelled = true
		request.consumed = true
		s.cancelledIDs.add(id)
		cancelled = append(cancelled, request)
	}
	for _, request := range s.pending.clear() {
		request.cancelled = true
		request.consumed = true
		s.cancelledIDs.add(request.ID)
		cancelled = append(cancelled, request)
	}
	s.active = make(map[string]*Request)
	s.handles = make(map[string]loader.Handle)
	s.timers = make(map[string]*time.Timer)
	s.cancelled += int64(len(cancelled))
	s.mu.Unlock()

	log.Printf("cancelAll: cancelled %d requests", len(cancelled))
	for _, request := range cancelled {
		s.events.Publish(event.KindCancelled, request.ID, request.Reference, request.Priority, nil)
	}
	return len(cancelled)
}

// ActiveCount returns the number of requests currently loading.
func (s *Service) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// PendingCount returns the number of requests awaiting a slot.
func (s *Service) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending.Len()
}

// IsLoading reports whether reference appears, uncancelled, in the
// active set or the pending queue.
func (s *Service) IsLoading(reference string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, request := range s.active {
		if request.Reference == reference && !request.cancelled {
			return true
		}
	}
	for _, request := range s.pending.all() {
		if request.Reference == reference && !request.cancelled {
			return true
		}
	}
	return false
}

// SetMaxConcurrent updates the concurrency limit, clamped to at least 1,
// and immediately admits pending requests up to the new limit.
func (s *Service) SetMaxConcurrent(ctx context.Context, limit int) {
	if limit < 1 {
		limit = 1
	}
	s.mu.Lock()
	s.config.MaxConcurrent = limit
	admitted := s.admitLocked()
	s.mu.Unlock()
	log.Printf("setMaxConcurrent: set to %d", limit)
	for _, next := range admitted {
		s.startLoading(ctx, next)
	}
}

// SetLoadTimeout updates the per-request timeout, clamped to at least
// one second. Applies to loads started afterwards.
func (s *Service) SetLoadTimeout(timeout time.Duration) {
	if timeout < time.Second {
		timeout = time.Second
	}
	s.mu.Lock()
	s.config.LoadTimeout = timeout
	s.mu.Unlock()
	log.Printf("setLoadTimeout: set to %v", timeout)
}

// Statistics returns a snapshot of the request counters.
func (s *Service) Statistics() Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Statistics{
		TotalSubmitted: s.totalSubmitted,
		Completed:      s.completed,
		Failed:         s.failed,
		Cancelled:      s.cancelled,
	}
}

// RequestStatus reports where the request with the supplied id sits.
// Cancellation wins over the other states while the id remains in the
// cancelled ledger.
func (s *Service) RequestStatus(id string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelledIDs.contains(id) {
		return StatusCancelled
	}
	if _, ok := s.active[id]; ok {
		return StatusActive
	}
	if s.pending.find(id) != nil {
		return StatusPending
	}
	return StatusUnknown
}

// ClearCache empties the resolved class cache and cancels in-flight
// preload requests, which exist solely to populate it. UI-bound requests
// whose references happen to match are untouched.
func (s *Service) ClearCache(ctx context.Context) {
	evicted := s.cache.Clear()
	s.mu.Lock()
	var preloads []string
	for id, request := range s.active {
		if request.preload {
			preloads = append(preloads, id)
		}
	}
	for _, request := range s.pending.all() {
		if request.preload {
			preloads = append(preloads, request.ID)
		}
	}
	s.mu.Unlock()
	for _, id := range preloads {
		s.Cancel(ctx, id)
	}
	log.Printf("clearCache: evicted %d entries, cancelled %d preloads", evicted, len(preloads))
}

// CacheStatistics returns resolved class cache occupancy.
func (s *Service) CacheStatistics() cache.Statistics {
	return s.cache.Statistics()
}

// DebugInfo renders a dump of the scheduler state.
func (s *Service) DebugInfo() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b strings.Builder
	fmt.Fprintf(&b, "=== async loader debug info ===\n")
	fmt.Fprintf(&b, "active requests: %d\n", len(s.active))
	fmt.Fprintf(&b, "pending requests: %d\n", s.pending.Len())
	fmt.Fprintf(&b, "max concurrent loads: %d\n", s.config.MaxConcurrent)
	fmt.Fprintf(&b, "load timeout: %v\n", s.config.LoadTimeout)
	fmt.Fprintf(&b, "cancelled request ids: %d\n", s.cancelledIDs.size())
	fmt.Fprintf(&b, "total: %d, completed: %d, failed: %d, cancelled: %d\n",
		s.totalSubmitted, s.completed, s.failed, s.cancelled)
	now := clock.Now()
	for _, request := range s.active {
		fmt.Fprintf(&b, "  id: %v, reference: %v, priority: %d, age: %v\n",
			request.ID, request.Reference, request.Priority, request.Age(now))
	}
	return b.String()
}

func (s *Service) cleanup() {
	s.mu.Lock()
	pruned := s.cancelledIDs.prune(s.config.CancelledIDCap)
	s.mu.Unlock()
	if pruned > 0 {
		log.Printf("cleanup: pruned %d cancelled request ids", pruned)
	}
}

func (s *Service) loadTimeout() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.LoadTimeout
}

func (s *Service) clearTimer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearTimerLocked(id)
}

func (s *Service) clearTimerLocked(id string) {
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
}
