package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.False(t, req.Stream)
		assert.InDelta(t, 0.1, req.Options.Temperature, 0.001)

		json.NewEncoder(w).Encode(generateResponse{
			Model:    req.Model,
			Response: `{"operation":"create_event"}`,
			Done:     true,
		})
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithModel("test-model"))
	text, err := client.Generate(context.Background(), "schedule a meeting")
	require.NoError(t, err)
	assert.Equal(t, `{"operation":"create_event"}`, text)
}

type recordedModelRequest struct {
	model    string
	status   string
	duration time.Duration
}

type fakeModelMetrics struct {
	requests []recordedModelRequest
}

func (f *fakeModelMetrics) RecordModelRequest(_ context.Context, model, status string, duration time.Duration) {
	f.requests = append(f.requests, recordedModelRequest{model: model, status: status, duration: duration})
}

func TestGenerateRecordsMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Response: "ok", Done: true})
	}))
	defer srv.Close()

	recorder := &fakeModelMetrics{}
	client := NewClient(WithBaseURL(srv.URL), WithModel("test-model"))
	client.SetMetrics(recorder)

	_, err := client.Generate(context.Background(), "hello")
	require.NoError(t, err)

	require.Len(t, recorder.requests, 1)
	assert.Equal(t, "test-model", recorder.requests[0].model)
	assert.Equal(t, "success", recorder.requests[0].status)
	assert.GreaterOrEqual(t, recorder.requests[0].duration, time.Duration(0))

	// Failed calls are recorded with an error status.
	client = NewClient(WithBaseURL("http://127.0.0.1:1"))
	client.SetMetrics(recorder)
	_, err = client.Generate(context.Background(), "hello")
	require.Error(t, err)

	require.Len(t, recorder.requests, 2)
	assert.Equal(t, "error", recorder.requests[1].status)
}

func TestGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestGenerateUnreachable(t *testing.T) {
	client := NewClient(
		WithBaseURL("http://127.0.0.1:1"),
		WithTimeout(500*time.Millisecond),
	)
	_, err := client.Generate(context.Background(), "hello")
	require.Error(t, err)
}

func TestGenerateContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.Generate(ctx, "hello")
	require.Error(t, err)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	assert.NoError(t, client.Ping(context.Background()))
}

func TestPingDown(t *testing.T) {
	client := NewClient(
		WithBaseURL("http://127.0.0.1:1"),
		WithTimeout(500*time.Millisecond),
	)
	assert.Error(t, client.Ping(context.Background()))
}

func TestOptions(t *testing.T) {
	client := NewClient(
		WithBaseURL("http://example.com"),
		WithModel("mistral"),
		WithTemperature(0.5),
		WithMaxTokens(256),
	)
	assert.Equal(t, "http://example.com", client.BaseURL())
	assert.Equal(t, "mistral", client.Model())
}

func TestDefaults(t *testing.T) {
	client := NewClient()
	assert.Equal(t, DefaultBaseURL, client.BaseURL())
	assert.Equal(t, DefaultModel, client.Model())
}
