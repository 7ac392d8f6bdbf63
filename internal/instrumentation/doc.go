// Package instrumentation provides OpenTelemetry instrumentation for the
// scheddy assistant server.
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Command Pipeline Metrics:
//   - commands_total: Counter of processed commands by operation kind and status
//   - command_duration_seconds: Histogram of end-to-end command durations
//
// Tool Metrics:
//   - tool_invocations_total: Counter of calendar tool invocations by tool name and status
//   - tool_duration_seconds: Histogram of tool execution durations
//
// Model Metrics:
//   - model_requests_total: Counter of language model requests by model and status
//   - model_request_duration_seconds: Histogram of model completion durations
//
// Store Metrics:
//   - calendar_events_active: Gauge of non-cancelled events in the store
//
// # Tracing
//
// Spans are created for tool invocations (tool.<name>) and model
// completions (model.generate). Tracing is disabled by default.
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: scheddy)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "scheddy",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordCommand(ctx, "create_event", "success", time.Since(start))
package instrumentation
