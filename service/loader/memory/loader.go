package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/asyncloader/service/loader"
)

// Config controls the in-memory loader behaviour.
type Config struct {
	// Latency is the simulated resolution delay per load.
	Latency time.Duration
}

// DefaultConfig returns a standard configuration for the memory loader.
func DefaultConfig() Config {
	return Config{}
}

// Service resolves references against a registry held in memory. It is the
// default loader and doubles as a deterministic test double.
type Service struct {
	config  Config
	mu      sync.RWMutex
	classes map[string]*loader.Class
	errors  map[string]error
}

// New creates a memory loader.
func New(config Config) *Service {
	return &Service{
		config:  config,
		classes: make(map[string]*loader.Class),
		errors:  make(map[string]error),
	}
}

// Register adds a class under the supplied reference.
func (s *Service) Register(reference string, class *loader.Class) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classes[reference] = class
}

// RegisterError makes every load of reference fail with err.
func (s *Service) RegisterError(reference string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors[reference] = err
}

type handle struct {
	cancelled atomic.Bool
	cancelFn  context.CancelFunc
}

func (h *handle) Cancel() {
	if h.cancelled.CompareAndSwap(false, true) {
		h.cancelFn()
	}
}

// Load resolves reference asynchronously after the configured latency.
func (s *Service) Load(ctx context.Context, reference string, done func(*loader.Class, error)) (loader.Handle, error) {
	if reference == "" {
		return nil, fmt.Errorf("reference was empty")
	}
	loadCtx, cancel := context.WithCancel(ctx)
	h := &handle{cancelFn: cancel}
	go func() {
		defer cancel()
		if s.config.Latency > 0 {
			select {
			case <-time.After(s.config.Latency):
			case <-loadCtx.Done():
				return
			}
		}
		s.mu.RLock()
		class, ok := s.classes[reference]
		err := s.errors[reference]
		s.mu.RUnlock()

		if h.cancelled.Load() || loadCtx.Err() != nil {
			return
		}
		if err != nil {
			done(nil, err)
			return
		}
		if !ok {
			done(nil, fmt.Errorf("class not found for %v", reference))
			return
		}
		done(class, nil)
	}()
	return h, nil
}

var _ loader.Service = (*Service)(nil)
