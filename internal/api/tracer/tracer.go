// Package tracer provides a lightweight tracing abstraction for the API client.
//
// The client emits one span per request without depending directly on
// OpenTelemetry throughout the codebase. Implementations:
//   - NoopTracer: for tests and the default console configuration
//   - OTelTracer: OpenTelemetry adapter, enabled via PROPADMIN_TRACING
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording any error that occurred.
	// If err is non-nil, the span is marked as failed.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	SetAttributes(attrs ...Attribute)

	// AddEvent records a timestamped event within the span.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans for request tracing.
// Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span with the given name and attributes.
	// The returned context contains the new span and should be passed down.
	// The span must be ended by calling Span.End().
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int creates an integer attribute.
func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: int64(value)}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names used by the API client.
const (
	SpanRequest   = "adminapi.request"
	SpanCSRFPrime = "adminapi.csrf_prime"
)

// Attribute keys used by the API client.
const (
	AttrMethod     = "http.method"
	AttrPath       = "http.path"
	AttrStatus     = "http.status_code"
	AttrRequestID  = "request_id"
	AttrCSRFHeader = "csrf_header_set"
)

// Event names used by the API client.
const (
	EventAuthErrorDispatched = "auth_error.dispatched"
)
