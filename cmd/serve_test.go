package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/scheddy/scheddy/internal/event"
)

func TestNewServeCmdFlags(t *testing.T) {
	cmd := newServeCmd()

	for _, name := range []string{"transport", "http-addr", "ollama-url", "model", "store", "calendar-id", "metrics-enabled", "metrics-addr", "debug"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected flag %q to be defined", name)
		}
	}

	if got := cmd.Flags().Lookup("transport").DefValue; got != "http" {
		t.Errorf("transport default = %q, want http", got)
	}
	if got := cmd.Flags().Lookup("store").DefValue; got != "memory" {
		t.Errorf("store default = %q, want memory", got)
	}
}

func TestBuildStore(t *testing.T) {
	store, err := buildStore(context.Background(), "memory", "")
	if err != nil {
		t.Fatalf("buildStore(memory) error = %v", err)
	}
	if _, ok := store.(*event.MemoryStore); !ok {
		t.Errorf("buildStore(memory) = %T, want *event.MemoryStore", store)
	}

	// Empty backend defaults to memory.
	store, err = buildStore(context.Background(), "", "")
	if err != nil {
		t.Fatalf("buildStore(\"\") error = %v", err)
	}
	if _, ok := store.(*event.MemoryStore); !ok {
		t.Errorf("buildStore(\"\") = %T, want *event.MemoryStore", store)
	}

	if _, err := buildStore(context.Background(), "redis", ""); err == nil {
		t.Error("expected error for unsupported backend")
	}

	// The backend vocabulary is memory|gcal; the error names both.
	_, err = buildStore(context.Background(), "google", "")
	if err == nil || !strings.Contains(err.Error(), "gcal") {
		t.Errorf("buildStore(google) error = %v, want unsupported-backend error naming gcal", err)
	}
}

func TestBuildLLMClientEnvFallback(t *testing.T) {
	t.Setenv("OLLAMA_URL", "http://model-host:11434")
	t.Setenv("SCHEDDY_MODEL", "mistral")

	client := buildLLMClient("", "")
	if client == nil {
		t.Fatal("expected client")
	}
	if client.BaseURL() != "http://model-host:11434" {
		t.Errorf("BaseURL = %q, want env value", client.BaseURL())
	}
	if client.Model() != "mistral" {
		t.Errorf("Model = %q, want env value", client.Model())
	}

	// Flags win over environment.
	client = buildLLMClient("http://flag-host:11434", "llama3.2")
	if client.BaseURL() != "http://flag-host:11434" {
		t.Errorf("BaseURL = %q, want flag value", client.BaseURL())
	}
}
