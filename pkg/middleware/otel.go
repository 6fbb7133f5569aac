package middleware

import (
	"github.com/vango-dev/histroute/pkg/router"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for histroute controllers.
const defaultTracerName = "histroute"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "histroute").
	TracerName string

	// Tracer overrides the tracer resolved from the global provider.
	Tracer trace.Tracer

	// IncludeURL includes the location in spans. URLs may carry user data
	// in their query string. Enabled by default.
	IncludeURL bool

	// Filter determines which events to trace.
	// Return true to trace the event, false to skip.
	// If nil, all update and redirect events are traced.
	Filter func(ev *router.Event) bool

	// AttributeExtractor adds custom attributes for each traced event.
	AttributeExtractor func(ev *router.Event) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracer sets the tracer directly.
func WithTracer(tracer trace.Tracer) OTelOption {
	return func(c *OTelConfig) {
		c.Tracer = tracer
	}
}

// WithIncludeURL enables/disables including the location in spans.
func WithIncludeURL(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeURL = include
	}
}

// WithEventFilter sets a filter function for events.
func WithEventFilter(filter func(ev *router.Event) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(ev *router.Event) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// defaultOTelConfig returns the default OpenTelemetry configuration.
func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
		IncludeURL: true,
	}
}

// OpenTelemetry creates middleware that traces controller updates and
// redirects.
//
// The middleware:
//   - Creates a span per event named "histroute.update" or "histroute.redirect"
//   - Stores the span context on the event, so the update a redirect
//     triggers becomes a child span
//   - Records the route transition and 404 state as attributes
//   - Records errors and sets span status
//
// Subscription events are not traced.
//
// Example:
//
//	c, err := router.New(routes, urlpattern.Compile, browser,
//	    router.WithMiddleware(middleware.OpenTelemetry(
//	        middleware.WithTracerName("my-app"),
//	    )),
//	)
//
// The tracer uses the global OpenTelemetry tracer provider unless WithTracer
// is given. Configure the provider in main() with otel.SetTracerProvider.
func OpenTelemetry(opts ...OTelOption) router.Middleware {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	tracer := config.Tracer
	if tracer == nil {
		tracer = otel.Tracer(config.TracerName)
	}

	return router.MiddlewareFunc(func(ev *router.Event, next func() error) error {
		if ev.Kind != router.EventUpdate && ev.Kind != router.EventRedirect {
			return next()
		}
		if config.Filter != nil && !config.Filter(ev) {
			return next()
		}

		attrs := []attribute.KeyValue{
			attribute.String("histroute.event", ev.Kind.String()),
		}
		if ev.Kind == router.EventRedirect {
			attrs = append(attrs,
				attribute.String("histroute.target", string(ev.Route)),
				attribute.String("histroute.mode", ev.Mode.String()),
			)
		}
		if config.IncludeURL && ev.URL != nil {
			attrs = append(attrs, attribute.String("histroute.url", ev.URL.String()))
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(ev)...)
		}

		spanCtx, span := tracer.Start(
			ev.Context(),
			"histroute."+ev.Kind.String(),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		ev.WithContext(spanCtx)

		err := next()

		span.SetAttributes(
			attribute.String("histroute.from", string(ev.From)),
			attribute.String("histroute.to", string(ev.To)),
			attribute.Bool("histroute.changed", ev.Changed),
			attribute.Bool("histroute.not_found", ev.Is404()),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return err
	})
}

// SpanFromEvent returns the span the OpenTelemetry middleware started for
// ev, or nil when the event is not traced.
func SpanFromEvent(ev *router.Event) trace.Span {
	span := trace.SpanFromContext(ev.Context())
	if !span.SpanContext().IsValid() && !span.IsRecording() {
		return nil
	}
	return span
}
