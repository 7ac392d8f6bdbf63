package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/scheddy/scheddy/internal/assistant"
	"github.com/scheddy/scheddy/internal/instrumentation"
	"github.com/scheddy/scheddy/internal/logging"
)

const (
	// DefaultAPIAddr is the default address for the assistant API server.
	DefaultAPIAddr = ":8080"

	// DefaultAPIReadTimeout bounds reading of a command request.
	DefaultAPIReadTimeout = 15 * time.Second

	// DefaultAPIWriteTimeout bounds writing a response. Command processing
	// includes a model round trip, so this is deliberately generous.
	DefaultAPIWriteTimeout = 120 * time.Second

	// maxCommandBodyBytes caps the request body for /api/command.
	maxCommandBodyBytes = 64 * 1024
)

// CommandRequest is the JSON body accepted by POST /api/command.
type CommandRequest struct {
	Command string            `json:"command"`
	Context map[string]string `json:"context,omitempty"`
}

// CommandResponse wraps the pipeline result with request timing.
type CommandResponse struct {
	*assistant.Result
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

// APIServer exposes the assistant pipeline over HTTP.
type APIServer struct {
	serverContext *ServerContext
	health        *HealthChecker
	metrics       *instrumentation.Metrics
	httpServer    *http.Server
	addr          string
}

// NewAPIServer creates the assistant HTTP server. The metrics recorder may
// be nil when instrumentation is disabled.
func NewAPIServer(sc *ServerContext, addr string, metrics *instrumentation.Metrics) *APIServer {
	if addr == "" {
		addr = DefaultAPIAddr
	}
	return &APIServer{
		serverContext: sc,
		health:        NewHealthChecker(sc),
		metrics:       metrics,
		addr:          addr,
	}
}

// Health returns the health checker backing the probe endpoints.
func (s *APIServer) Health() *HealthChecker {
	return s.health
}

// Handler builds the HTTP routing for the assistant API.
func (s *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /api/command", s.instrumented("/api/command", s.handleCommand))
	mux.Handle("GET /api/health", s.instrumented("/api/health", s.handleHealth))
	mux.Handle("GET /api/examples", s.instrumented("/api/examples", s.handleExamples))
	s.health.RegisterHealthEndpoints(mux)
	return mux
}

// Start starts the API server in a blocking manner.
func (s *APIServer) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: DefaultAPIReadTimeout,
		WriteTimeout:      DefaultAPIWriteTimeout,
	}

	s.serverContext.Logger().Info("starting assistant API server", "addr", s.addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the API server.
func (s *APIServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	if s.httpServer != nil {
		s.serverContext.Logger().Info("shutting down assistant API server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Addr returns the configured listen address.
func (s *APIServer) Addr() string {
	return s.addr
}

// statusRecorder captures the response status for request metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *APIServer) instrumented(path string, handler http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		handler(rec, r)
		if s.metrics != nil {
			s.metrics.RecordHTTPRequest(r.Context(), r.Method, path, rec.status, time.Since(start))
		}
	})
}

func (s *APIServer) handleCommand(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCommandBodyBytes)

	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	start := time.Now()
	result := s.serverContext.Orchestrator().Process(r.Context(), req.Command, req.Context)
	duration := time.Since(start)

	if s.metrics != nil {
		op := "unknown"
		if result.Operation != nil {
			op = string(result.Operation.Kind)
		}
		status := instrumentation.StatusError
		if result.Success {
			status = instrumentation.StatusSuccess
		}
		s.metrics.RecordCommand(r.Context(), op, status, duration)
	}

	// Handler failures keep 200: the envelope's success flag and code carry
	// the outcome. Only input and extraction failures change the status.
	status := http.StatusOK
	if !result.Success {
		switch result.Code {
		case assistant.CodeEmptyCommand:
			status = http.StatusBadRequest
		case assistant.CodeExtractionFailed:
			status = http.StatusBadGateway
		}
	}

	writeJSON(w, status, CommandResponse{
		Result:           result,
		ProcessingTimeMs: duration.Milliseconds(),
	})
}

func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"server": healthStatusOK,
	}
	status := healthStatusOK
	code := http.StatusOK

	if s.serverContext.IsShutdown() {
		checks["server"] = healthStatusShuttingDown
		status = healthStatusNotReady
		code = http.StatusServiceUnavailable
	}

	if client := s.serverContext.LLMClient(); client != nil {
		if err := client.Ping(r.Context()); err != nil {
			s.serverContext.Logger().Warn("model health check failed", logging.Err(err))
			checks["model"] = healthStatusUnreachable
			status = healthStatusNotReady
			code = http.StatusServiceUnavailable
		} else {
			checks["model"] = healthStatusOK
		}
	}

	writeJSON(w, code, HealthResponse{Status: status, Checks: checks})
}

func (s *APIServer) handleExamples(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"examples": assistant.Examples(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": msg,
	})
}
