package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/scheddy/scheddy/internal/assistant"
	"github.com/scheddy/scheddy/internal/event"
	"github.com/scheddy/scheddy/internal/instrumentation"
	"github.com/scheddy/scheddy/internal/intent"
	"github.com/scheddy/scheddy/internal/llm"
	"github.com/scheddy/scheddy/internal/logging"
	"github.com/scheddy/scheddy/internal/tools"
)

// ServerContext holds the wired pipeline shared by the HTTP API, the MCP
// bridge, and the one-shot CLI command.
type ServerContext struct {
	ctx           context.Context
	cancel        context.CancelFunc
	store         event.Store
	registry      *tools.Registry
	dispatcher    *tools.Dispatcher
	calendarTools *tools.CalendarTools
	llmClient     *llm.Client
	orchestrator  *assistant.Orchestrator
	logger        *slog.Logger
	mu            sync.RWMutex
	shutdown      bool
}

// NewServerContext creates a server context, registers the calendar tools
// on a fresh registry, and marks the dispatcher ready.
func NewServerContext(ctx context.Context, store event.Store, llmClient *llm.Client, logger *slog.Logger) *ServerContext {
	if logger == nil {
		logger = slog.Default()
	}
	shutdownCtx, cancel := context.WithCancel(ctx)

	registry := tools.NewRegistry()
	calendarTools := tools.RegisterCalendarTools(registry, store)

	dispatcher := tools.NewDispatcher(registry, logging.NewSlogAdapter(logger))
	dispatcher.SetReady(true)

	extractor := intent.NewExtractor(llmClient)
	orchestrator := assistant.NewOrchestrator(extractor, dispatcher, logger)

	return &ServerContext{
		ctx:           shutdownCtx,
		cancel:        cancel,
		store:         store,
		registry:      registry,
		dispatcher:    dispatcher,
		calendarTools: calendarTools,
		llmClient:     llmClient,
		orchestrator:  orchestrator,
		logger:        logger,
	}
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Store returns the event store.
func (sc *ServerContext) Store() event.Store {
	return sc.store
}

// Registry returns the tool registry.
func (sc *ServerContext) Registry() *tools.Registry {
	return sc.registry
}

// Dispatcher returns the tool dispatcher.
func (sc *ServerContext) Dispatcher() *tools.Dispatcher {
	return sc.dispatcher
}

// LLMClient returns the language model client. May be nil in tests.
func (sc *ServerContext) LLMClient() *llm.Client {
	return sc.llmClient
}

// Orchestrator returns the command orchestrator.
func (sc *ServerContext) Orchestrator() *assistant.Orchestrator {
	return sc.orchestrator
}

// Logger returns the structured logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// SetMetrics attaches the metrics recorder to every instrumented part of
// the pipeline: tool dispatch, model requests, and the active-events gauge.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.dispatcher.SetMetrics(m)
	sc.calendarTools.SetGauge(m)
	if sc.llmClient != nil {
		sc.llmClient.SetMetrics(m)
	}
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context. Safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.dispatcher.SetReady(false)
	sc.cancel()
	return nil
}
