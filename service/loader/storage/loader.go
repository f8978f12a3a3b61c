package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
	"github.com/viant/asyncloader/service/loader"
	"github.com/viant/x"
	"gopkg.in/yaml.v3"
)

// Service resolves references against class definitions stored on any
// file system the afs abstraction supports (file, mem, s3, gs, ...).
// A reference is either an absolute storage URL or a path relative to
// the configured base URL; the definition is expected to be YAML.
type Service struct {
	fs       afs.Service
	baseURL  string
	registry *x.Registry
}

// New creates a storage backed loader. registry is optional; when
// supplied, resolved classes are bound to a registered Go type matching
// the definition name.
func New(fs afs.Service, baseURL string, registry *x.Registry) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs, baseURL: baseURL, registry: registry}
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

// Load fetches and decodes the class definition for reference.
func (s *Service) Load(ctx context.Context, reference string, done func(*loader.Class, error)) (loader.Handle, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, fmt.Errorf("reference was empty")
	}
	loadCtx, cancel := context.WithCancel(ctx)
	h := &handle{cancelFn: cancel}
	go func() {
		defer cancel()
		class, err := s.resolve(loadCtx, reference)
		if h.cancelled.Load() || loadCtx.Err() != nil {
			return
		}
		done(class, err)
	}()
	return h, nil
}

func (s *Service) resolve(ctx context.Context, reference string) (*loader.Class, error) {
	URL := reference
	if !strings.Contains(URL, "://") && s.baseURL != "" {
		URL = url.Join(s.baseURL, reference)
	}
	if filepath.Ext(URL) == "" {
		URL += ".yaml"
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load class definition from %s: %w", URL, err)
	}
	definition := map[string]interface{}{}
	if err = yaml.Unmarshal(data, &definition); err != nil {
		return nil, fmt.Errorf("failed to decode class definition %s: %w", URL, err)
	}
	class := &loader.Class{
		Name:       className(definition, URL),
		Definition: definition,
	}
	if s.registry != nil {
		class.Type = s.registry.Lookup(class.Name)
	}
	return class, nil
}

func className(definition map[string]interface{}, URL string) string {
	if name, ok := definition["name"].(string); ok && name != "" {
		return name
	}
	base := filepath.Base(url.Path(URL))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

var _ loader.Service = (*Service)(nil)
