package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scheddy/scheddy/internal/assistant"
	"github.com/scheddy/scheddy/internal/event"
	"github.com/scheddy/scheddy/internal/llm"
)

// fakeModelServer stands in for the local model endpoint. Every completion
// request returns the configured reply.
func fakeModelServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/generate":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"model":    "llama3.2",
				"response": reply,
				"done":     true,
			})
		case "/api/tags":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestAPI(t *testing.T, modelURL string) (*APIServer, *event.MemoryStore) {
	t.Helper()
	store := event.NewMemoryStore()
	client := llm.NewClient(llm.WithBaseURL(modelURL), llm.WithTimeout(5*time.Second))
	sc := NewServerContext(context.Background(), store, client, nil)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return NewAPIServer(sc, ":0", nil), store
}

func postCommand(t *testing.T, handler http.Handler, body string) (*httptest.ResponseRecorder, CommandResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/command", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp CommandResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestAPICommandCreateEvent(t *testing.T) {
	reply := `{
		"operation": "create_event",
		"confidence": 0.95,
		"event": {
			"title": "Team sync",
			"start": "2025-06-12T09:00:00Z",
			"end": "2025-06-12T09:30:00Z"
		}
	}`
	model := fakeModelServer(t, reply)
	api, store := newTestAPI(t, model.URL)

	rec, resp := postCommand(t, api.Handler(), `{"command":"schedule a team sync thursday morning"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Event)
	assert.Equal(t, "Team sync", resp.Event.Title)
	assert.GreaterOrEqual(t, resp.ProcessingTimeMs, int64(0))

	all, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAPICommandEmpty(t *testing.T) {
	model := fakeModelServer(t, "{}")
	api, _ := newTestAPI(t, model.URL)

	rec, resp := postCommand(t, api.Handler(), `{"command":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, assistant.CodeEmptyCommand, resp.Code)
}

func TestAPICommandModelUnreachable(t *testing.T) {
	api, _ := newTestAPI(t, "http://127.0.0.1:1")

	rec, resp := postCommand(t, api.Handler(), `{"command":"schedule something"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, assistant.CodeExtractionFailed, resp.Code)
}

func TestAPICommandGarbageReplyFallsBackToSearch(t *testing.T) {
	// A reply the extractor cannot parse yields an unknown operation,
	// which must search instead of mutating.
	model := fakeModelServer(t, "sorry, I don't know what you mean")
	api, store := newTestAPI(t, model.URL)

	seeded, err := store.Create(context.Background(), &event.Event{
		Title:  "Protected",
		Start:  time.Date(2025, 6, 12, 10, 0, 0, 0, time.UTC),
		End:    time.Date(2025, 6, 12, 11, 0, 0, 0, time.UTC),
		Status: event.StatusConfirmed,
	})
	require.NoError(t, err)

	rec, resp := postCommand(t, api.Handler(), `{"command":"Cancel my 10am appointment"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	stored, err := store.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, event.StatusConfirmed, stored.Status)
}

func TestAPICommandHandlerFailureKeeps200(t *testing.T) {
	// A handler failure is part of the normal envelope: the status stays
	// 200 and the body carries success=false with the execution code.
	reply := `{
		"operation": "delete_event",
		"confidence": 0.9,
		"event": {"title": "Standup"}
	}`
	model := fakeModelServer(t, reply)
	api, _ := newTestAPI(t, model.URL)

	rec, resp := postCommand(t, api.Handler(), `{"command":"cancel the standup"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, assistant.CodeExecutionFailed, resp.Code)
	assert.Contains(t, resp.Message, "id is required")
}

func TestAPICommandInvalidBody(t *testing.T) {
	model := fakeModelServer(t, "{}")
	api, _ := newTestAPI(t, model.URL)

	req := httptest.NewRequest(http.MethodPost, "/api/command", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIExamples(t *testing.T) {
	model := fakeModelServer(t, "{}")
	api, _ := newTestAPI(t, model.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/examples", nil)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Examples []assistant.Example `json:"examples"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Examples)
}

func TestAPIHealth(t *testing.T) {
	t.Run("model reachable", func(t *testing.T) {
		model := fakeModelServer(t, "{}")
		api, _ := newTestAPI(t, model.URL)

		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()
		api.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "ok", resp.Checks["model"])
	})

	t.Run("model unreachable", func(t *testing.T) {
		api, _ := newTestAPI(t, "http://127.0.0.1:1")

		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()
		api.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "unreachable", resp.Checks["model"])
	})
}

func TestHealthChecker(t *testing.T) {
	model := fakeModelServer(t, "{}")
	api, _ := newTestAPI(t, model.URL)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Readiness flips once the server is marked not ready.
	api.Health().SetReady(false)
	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServerContextShutdown(t *testing.T) {
	model := fakeModelServer(t, "{}")
	api, _ := newTestAPI(t, model.URL)
	sc := api.serverContext

	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())

	// Idempotent.
	require.NoError(t, sc.Shutdown())

	// The dispatcher refuses work after shutdown.
	rec, resp := postCommand(t, api.Handler(), `{"command":"find my meetings"}`)
	_ = rec
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "not initialized")
}

func TestNewMCPServer(t *testing.T) {
	model := fakeModelServer(t, "{}")
	api, _ := newTestAPI(t, model.URL)

	mcpSrv := NewMCPServer(api.serverContext, "test")
	require.NotNil(t, mcpSrv)
}
