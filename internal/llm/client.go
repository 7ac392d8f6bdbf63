package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/scheddy/scheddy/internal/logging"
)

const (
	// DefaultBaseURL is the default address of a local Ollama-compatible
	// text-generation service.
	DefaultBaseURL = "http://localhost:11434"

	// DefaultModel is the model used when none is configured.
	DefaultModel = "llama3.2"

	// DefaultTemperature favors deterministic output; the extractor depends
	// on the model producing the same JSON for the same prompt.
	DefaultTemperature = 0.1

	// DefaultTimeout bounds a single generation call. Local models can be
	// slow on first load, so this is generous.
	DefaultTimeout = 60 * time.Second

	generatePath = "/api/generate"
	tagsPath     = "/api/tags"
)

// MetricsRecorder records model request metrics. Satisfied by
// instrumentation.Metrics; kept as a local interface so this package does
// not depend on the instrumentation wiring.
type MetricsRecorder interface {
	RecordModelRequest(ctx context.Context, model, status string, duration time.Duration)
}

// Client talks to an Ollama-compatible text-generation endpoint. The
// endpoint is treated as a black box: it accepts a prompt and returns free
// text that may violate any schema the prompt asked for.
type Client struct {
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
	metrics     MetricsRecorder
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the service base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temp float64) Option {
	return func(c *Client) { c.temperature = temp }
}

// WithMaxTokens caps the number of generated tokens.
func WithMaxTokens(n int) Option {
	return func(c *Client) { c.maxTokens = n }
}

// WithTimeout bounds each HTTP call to the service.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a text-generation client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		model:       DefaultModel,
		temperature: DefaultTemperature,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetMetrics attaches a metrics recorder for generation calls.
func (c *Client) SetMetrics(m MetricsRecorder) {
	c.metrics = m
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// BaseURL returns the configured service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Generate sends the prompt to the text-generation endpoint and returns the
// raw response text. Any transport failure or non-2xx status is returned as
// an error; callers decide how to degrade.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := c.generate(ctx, prompt)
	if c.metrics != nil {
		status := logging.StatusSuccess
		if err != nil {
			status = logging.StatusError
		}
		c.metrics.RecordModelRequest(ctx, c.model, status, time.Since(start))
	}
	return text, err
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: c.temperature,
			NumPredict:  c.maxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("text generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("text generation service returned %s: %s", resp.Status, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("failed to decode generate response: %w", err)
	}

	return genResp.Response, nil
}

// Ping checks whether the text-generation service is reachable. It is used
// by the health endpoint to report the collaborator's status.
func (c *Client) Ping(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+tagsPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create ping request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("text generation service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("text generation service returned %s", resp.Status)
	}
	return nil
}
