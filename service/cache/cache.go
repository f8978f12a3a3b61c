package cache

import (
	"sync"

	"github.com/viant/asyncloader/service/loader"
)

// Statistics describes cache occupancy.
type Statistics struct {
	Entries int `json:"entries"`
	// SizeBytes is a rough estimate covering reference keys and entry
	// overhead, kept for parity with the debug surface.
	SizeBytes int `json:"sizeBytes"`
}

// Service maps references to resolved classes. Entries are added on first
// successful resolution and never expire; only Clear empties the map.
type Service struct {
	mu      sync.RWMutex
	classes map[string]*loader.Class
}

// New creates an empty cache.
func New() *Service {
	return &Service{classes: make(map[string]*loader.Class)}
}

// Has reports whether reference is cached.
func (s *Service) Has(reference string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.classes[reference]
	return ok
}

// Get returns the cached class for reference, or nil and false on miss.
func (s *Service) Get(reference string) (*loader.Class, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	class, ok := s.classes[reference]
	return class, ok
}

// Put stores class under reference. It is idempotent: a concurrent
// population race keeps the first entry.
func (s *Service) Put(reference string, class *loader.Class) {
	if reference == "" || class == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.classes[reference]; ok {
		return
	}
	s.classes[reference] = class
}

// Clear empties the cache and returns the number of evicted entries.
func (s *Service) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := len(s.classes)
	s.classes = make(map[string]*loader.Class)
	return evicted
}

// Statistics returns current occupancy.
func (s *Service) Statistics() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := Statistics{Entries: len(s.classes)}
	for reference, class := range s.classes {
		stats.SizeBytes += len(reference) + len(class.Name) + entryOverhead
	}
	return stats
}

const entryOverhead = 64
