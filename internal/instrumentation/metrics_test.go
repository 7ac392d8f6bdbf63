package instrumentation

import (
	"context"
	"testing"
	"time"
)

func newTestProvider(t *testing.T, ctx context.Context) *Provider {
	t.Helper()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })
	return provider
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil")
	}

	// Should not panic
	metrics.RecordHTTPRequest(ctx, "POST", "/api/command", 200, 100*time.Millisecond)
	metrics.RecordHTTPRequest(ctx, "GET", "/api/health", 500, 50*time.Millisecond)
}

func TestMetrics_RecordCommand(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	// Should not panic
	metrics.RecordCommand(ctx, "create_event", StatusSuccess, 2*time.Second)
	metrics.RecordCommand(ctx, "unknown", StatusError, 500*time.Millisecond)
}

func TestMetrics_RecordToolInvocation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	// Should not panic
	metrics.RecordToolInvocation(ctx, "calendar.save_event", StatusSuccess, 5*time.Millisecond)
	metrics.RecordToolInvocation(ctx, "calendar.cancel_event", StatusError, 2*time.Millisecond)
}

func TestMetrics_RecordModelRequest(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	// Should not panic
	metrics.RecordModelRequest(ctx, "llama3.2", StatusSuccess, 3*time.Second)
	metrics.RecordModelRequest(ctx, "llama3.2", StatusError, 60*time.Second)
}

func TestMetrics_AddActiveEvents(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	metrics.AddActiveEvents(ctx, 1)
	metrics.AddActiveEvents(ctx, -1)
}

func TestMetrics_UninitializedIsNoop(t *testing.T) {
	// The zero value stands in when instrumentation is disabled; every
	// recording method must be a safe no-op.
	m := &Metrics{}
	ctx := context.Background()

	m.RecordHTTPRequest(ctx, "GET", "/", 200, time.Millisecond)
	m.RecordCommand(ctx, "create_event", StatusSuccess, time.Second)
	m.RecordToolInvocation(ctx, "calendar.find_events", StatusSuccess, time.Millisecond)
	m.RecordModelRequest(ctx, "llama3.2", StatusSuccess, time.Second)
	m.AddActiveEvents(ctx, 1)
}
