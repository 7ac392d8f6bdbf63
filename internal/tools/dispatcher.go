package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/scheddy/scheddy/internal/logging"
)

// MetricsRecorder records tool invocation metrics. Satisfied by
// instrumentation.Metrics; kept as a local interface so this package does
// not depend on the instrumentation wiring.
type MetricsRecorder interface {
	RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration)
}

// Dispatcher routes a (tool name, argument map) pair to the matching
// handler. It is the trust boundary of the pipeline: everything before it
// deals with untrusted parsed text, everything after with validated handler
// logic. Handler failures of any kind become failed responses; they never
// propagate as errors or panics.
type Dispatcher struct {
	registry *Registry
	logger   logging.Logger
	metrics  MetricsRecorder
	ready    atomic.Bool
}

// NewDispatcher creates a dispatcher over the given registry. The
// dispatcher refuses requests until SetReady(true) is called, which the
// server does once all tools are registered.
func NewDispatcher(registry *Registry, logger logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Dispatcher{
		registry: registry,
		logger:   logger,
	}
}

// SetMetrics attaches a metrics recorder for tool invocations.
func (d *Dispatcher) SetMetrics(m MetricsRecorder) {
	d.metrics = m
}

// SetReady marks the dispatcher as initialized. Until then every dispatch
// fails with "server not initialized".
func (d *Dispatcher) SetReady(ready bool) {
	d.ready.Store(ready)
}

// Dispatch executes the request and always returns a response whose ID
// equals the request's.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	if !d.ready.Load() {
		return d.fail(req, "server not initialized")
	}

	_, handler, ok := d.registry.Get(req.Tool)
	if !ok {
		return d.fail(req, fmt.Sprintf("tool %q not found", req.Tool))
	}

	start := time.Now()
	result, err := d.invoke(ctx, handler, req.Arguments)
	duration := time.Since(start)

	status := logging.StatusSuccess
	if err != nil {
		status = logging.StatusError
	}
	if d.metrics != nil {
		d.metrics.RecordToolInvocation(ctx, req.Tool, status, duration)
	}
	d.logger.Debug("tool dispatched",
		logging.Tool(req.Tool),
		logging.Status(status),
		slog.Duration(logging.KeyDuration, duration),
		logging.Err(err),
	)

	if err != nil {
		return d.fail(req, err.Error())
	}

	return Response{
		ID:      req.ID,
		Success: true,
		Result:  result,
		Meta: map[string]string{
			"tool":      req.Tool,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}
}

// invoke runs the handler, converting a panic into an error so a buggy
// handler cannot take down the request.
func (d *Dispatcher) invoke(ctx context.Context, handler Handler, args map[string]any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler(ctx, args)
}

func (d *Dispatcher) fail(req Request, msg string) Response {
	return Response{
		ID:    req.ID,
		Error: msg,
		Meta: map[string]string{
			"tool":      req.Tool,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}
}
