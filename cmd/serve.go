package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/scheddy/scheddy/internal/event"
	"github.com/scheddy/scheddy/internal/gcal"
	"github.com/scheddy/scheddy/internal/instrumentation"
	"github.com/scheddy/scheddy/internal/llm"
	"github.com/scheddy/scheddy/internal/server"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode      bool
		transport      string
		httpAddr       string
		ollamaURL      string
		model          string
		storeBackend   string
		calendarID     string
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the assistant server",
		Long: `Start the scheddy assistant server.

The server needs a locally running Ollama-compatible model endpoint for
intent extraction. Events live in an in-memory store by default; pass
--store gcal to operate on a Google Calendar instead (requires a cached
OAuth token, see "scheddy auth").`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(serveOptions{
				transport:    transport,
				debugMode:    debugMode,
				httpAddr:     httpAddr,
				ollamaURL:    ollamaURL,
				model:        model,
				storeBackend: storeBackend,
				calendarID:   calendarID,
				metrics: MetricsConfig{
					Enabled: metricsEnabled,
					Addr:    metricsAddr,
				},
			})
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "http", "Transport type: http or stdio (MCP)")
	cmd.Flags().StringVar(&httpAddr, "http-addr", server.DefaultAPIAddr, "HTTP API listen address")
	cmd.Flags().StringVar(&ollamaURL, "ollama-url", "", "Ollama endpoint URL. Can also use OLLAMA_URL env var.")
	cmd.Flags().StringVar(&model, "model", "", "Model name for intent extraction. Can also use SCHEDDY_MODEL env var.")
	cmd.Flags().StringVar(&storeBackend, "store", "memory", "Event store backend: memory or gcal")
	cmd.Flags().StringVar(&calendarID, "calendar-id", "", "Google Calendar id (default: primary). Only used with --store gcal.")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

type serveOptions struct {
	transport    string
	debugMode    bool
	httpAddr     string
	ollamaURL    string
	model        string
	storeBackend string
	calendarID   string
	metrics      MetricsConfig
}

func runServe(opts serveOptions) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := setupLogger(opts.debugMode)

	// Load metrics config from environment if not set via flags
	if opts.metrics.Addr == "" || opts.metrics.Addr == server.DefaultMetricsAddr {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			opts.metrics.Addr = addr
		}
	}
	if os.Getenv("METRICS_ENABLED") == "false" {
		opts.metrics.Enabled = false
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil && opts.transport != "stdio" {
			logger.Error("error during instrumentation shutdown", "error", err)
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if opts.transport != "stdio" && opts.metrics.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    opts.metrics.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
			logger.Info("metrics server started", "addr", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	store, err := buildStore(shutdownCtx, opts.storeBackend, opts.calendarID)
	if err != nil {
		return err
	}

	llmClient := buildLLMClient(opts.ollamaURL, opts.model)
	serverContext := server.NewServerContext(shutdownCtx, store, llmClient, logger)
	defer func() { _ = serverContext.Shutdown() }()

	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
	}

	switch opts.transport {
	case "stdio":
		return runStdioServer(server.NewMCPServer(serverContext, version))
	case "http":
		return runHTTPServer(shutdownCtx, serverContext, metricsServer, opts.httpAddr, provider, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: http, stdio)", opts.transport)
	}
}

func runHTTPServer(shutdownCtx context.Context, sc *server.ServerContext, metricsServer *server.MetricsServer, addr string, provider *instrumentation.Provider, logger *slog.Logger) error {
	var metrics *instrumentation.Metrics
	if provider.Enabled() {
		metrics = provider.Metrics()
	}

	api := server.NewAPIServer(sc, addr, metrics)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := api.Start(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	case <-shutdownCtx.Done():
	}

	logger.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancel()

	if err := api.Shutdown(ctx); err != nil {
		logger.Error("error during API server shutdown", "error", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Error("error during metrics server shutdown", "error", err)
		}
	}
	return nil
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// buildStore picks the event store backend.
func buildStore(ctx context.Context, backend, calendarID string) (event.Store, error) {
	switch backend {
	case "", "memory":
		return event.NewMemoryStore(), nil
	case "gcal":
		store, err := gcal.NewStore(ctx, calendarID)
		if err != nil {
			return nil, fmt.Errorf("failed to create Google Calendar store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s (supported: memory, gcal)", backend)
	}
}

// buildLLMClient assembles the model client from flags and environment.
func buildLLMClient(ollamaURL, model string) *llm.Client {
	if ollamaURL == "" {
		ollamaURL = os.Getenv("OLLAMA_URL")
	}
	if model == "" {
		model = os.Getenv("SCHEDDY_MODEL")
	}

	var llmOpts []llm.Option
	if ollamaURL != "" {
		llmOpts = append(llmOpts, llm.WithBaseURL(ollamaURL))
	}
	if model != "" {
		llmOpts = append(llmOpts, llm.WithModel(model))
	}
	return llm.NewClient(llmOpts...)
}

// setupLogger configures the default slog logger. Logs go to stderr so the
// stdio transport keeps stdout clean for the protocol stream.
func setupLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
