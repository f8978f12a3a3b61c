package asyncloader

import (
	"github.com/viant/asyncloader/service/cache"
	"github.com/viant/asyncloader/service/event"
	"github.com/viant/asyncloader/service/loader"
	"github.com/viant/asyncloader/service/messaging"
	"github.com/viant/asyncloader/service/view"
	"github.com/viant/asyncloader/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the Service.
type Option func(s *Service)

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

// WithConfig sets the loader configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithEventQueue sets the queue carrying lifecycle events.
func WithEventQueue(queue messaging.Queue[event.Event]) Option {
	return func(s *Service) { s.eventQueue = queue }
}

// WithTracing configures OpenTelemetry tracing. If outputFile is empty
// the stdout exporter is used; otherwise traces are written to the
// supplied file path. Safe to call multiple times – the first successful
// initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter, enabling integrations such as OTLP, Jaeger or Zipkin.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
