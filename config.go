package asyncloader

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/afs"
	"github.com/viant/asyncloader/service/scheduler"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the loader configuration. It
// can be populated from JSON, YAML, environment driven tooling, etc. The
// zero-value is useful – all fields inherit their package defaults.
type Config struct {
	// MaxConcurrent bounds simultaneous loads.
	MaxConcurrent int `json:"maxConcurrent" yaml:"maxConcurrent"`

	// LoadTimeoutSeconds is the per-request resolution deadline.
	LoadTimeoutSeconds float64 `json:"loadTimeoutSeconds" yaml:"loadTimeoutSeconds"`

	// CleanupIntervalSeconds governs pruning of the cancelled-id ledger.
	CleanupIntervalSeconds float64 `json:"cleanupIntervalSeconds" yaml:"cleanupIntervalSeconds"`

	// CancelledIDCap bounds the cancelled-id ledger size.
	CancelledIDCap int `json:"cancelledIdCap" yaml:"cancelledIdCap"`
}

// DefaultConfig returns a Config populated with the package defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxConcurrent:          3,
		LoadTimeoutSeconds:     30,
		CleanupIntervalSeconds: 5,
		CancelledIDCap:         100,
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.MaxConcurrent < 0 {
		return fmt.Errorf("maxConcurrent must be >= 0")
	}
	if c.LoadTimeoutSeconds < 0 {
		return fmt.Errorf("loadTimeoutSeconds must be >= 0")
	}
	if c.CleanupIntervalSeconds < 0 {
		return fmt.Errorf("cleanupIntervalSeconds must be >= 0")
	}
	if c.CancelledIDCap < 0 {
		return fmt.Errorf("cancelledIdCap must be >= 0")
	}
	return nil
}

// LoadConfig loads a YAML configuration from the supplied URL (any
// scheme the afs abstraction supports).
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", URL, err)
	}
	config := DefaultConfig()
	if err = yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", URL, err)
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// schedulerConfig converts the serialisable form into scheduler settings;
// zero values fall back to scheduler defaults.
func (c *Config) schedulerConfig() scheduler.Config {
	result := scheduler.DefaultConfig()
	if c == nil {
		return result
	}
	if c.MaxConcurrent > 0 {
		result.MaxConcurrent = c.MaxConcurrent
	}
	if c.LoadTimeoutSeconds > 0 {
		result.LoadTimeout = time.Duration(c.LoadTimeoutSeconds * float64(time.Second))
	}
	if c.CleanupIntervalSeconds > 0 {
		result.CleanupInterval = time.Duration(c.CleanupIntervalSeconds * float64(time.Second))
	}
	if c.CancelledIDCap > 0 {
		result.CancelledIDCap = c.CancelledIDCap
	}
	return result
}
