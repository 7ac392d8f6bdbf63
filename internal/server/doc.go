// Package server provides the server context, HTTP API, health checks,
// metrics server, and MCP bridge for the scheddy assistant.
//
// # Key Components
//
// ServerContext wires the full pipeline: the event store, the calendar
// tool registry and dispatcher, the language model client, and the
// command orchestrator. One context is shared by every transport.
//
// APIServer exposes the pipeline over HTTP:
//   - POST /api/command: process a natural language command
//   - GET /api/health: server and model service health
//   - GET /api/examples: sample commands per operation kind
//
// NewMCPServer mirrors the calendar tool registry onto a Model Context
// Protocol server and adds an assistant_command tool for free-form text,
// so MCP clients can drive the same pipeline.
//
// HealthChecker serves /healthz and /readyz probe endpoints; readiness
// includes a ping of the language model service.
//
// MetricsServer serves Prometheus metrics on a dedicated port, separate
// from API traffic.
package server
