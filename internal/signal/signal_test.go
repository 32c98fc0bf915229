package signal_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jbony2888/entryflow/internal/classify"
	"github.com/jbony2888/entryflow/internal/signal"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func completionsServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func testClient(base string) *signal.Client {
	cfg := &signal.Config{
		Enabled: true,
		BaseURL: base,
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: "5s",
	}
	return signal.NewClient(cfg, discard())
}

func TestProposeValid(t *testing.T) {
	content := `{
		"doc_type": "FORM_FILLED",
		"fields": {"name": "Maria Lopez", "school": "Lincoln Elementary"},
		"rationale": "labeled fields with inline values"
	}`
	server := completionsServer(t, content, http.StatusOK)
	defer server.Close()

	got := testClient(server.URL).Propose(context.Background(), "Name: Maria Lopez", "entry.txt")
	if got == nil {
		t.Fatal("Propose() = nil, want suggestion")
	}
	if got.DocType != classify.DocFormFilled {
		t.Errorf("DocType = %v, want %v", got.DocType, classify.DocFormFilled)
	}
	if got.Fields["name"] != "Maria Lopez" {
		t.Errorf("Fields[name] = %q", got.Fields["name"])
	}
	if got.Rationale == "" {
		t.Error("Rationale should carry through")
	}
}

func TestProposeUnknownDocType(t *testing.T) {
	content := `{"doc_type": "SOMETHING_ELSE", "fields": {}, "rationale": ""}`
	server := completionsServer(t, content, http.StatusOK)
	defer server.Close()

	got := testClient(server.URL).Propose(context.Background(), "text", "entry.txt")
	if got == nil {
		t.Fatal("Propose() = nil, want suggestion with unknown doc type")
	}
	if got.DocType != classify.DocUnknown {
		t.Errorf("DocType = %v, want %v", got.DocType, classify.DocUnknown)
	}
}

func TestProposeSchemaViolation(t *testing.T) {
	// "ssn" is not an allowed field key
	content := `{"doc_type": "FORM_FILLED", "fields": {"ssn": "000-00-0000"}, "rationale": ""}`
	server := completionsServer(t, content, http.StatusOK)
	defer server.Close()

	if got := testClient(server.URL).Propose(context.Background(), "text", "entry.txt"); got != nil {
		t.Errorf("Propose() = %+v, want nil for schema violation", got)
	}
}

func TestProposeProviderError(t *testing.T) {
	server := completionsServer(t, "", http.StatusInternalServerError)
	defer server.Close()

	if got := testClient(server.URL).Propose(context.Background(), "text", "entry.txt"); got != nil {
		t.Errorf("Propose() = %+v, want nil for provider error", got)
	}
}

func TestProposeMalformedContent(t *testing.T) {
	server := completionsServer(t, "not json at all {", http.StatusOK)
	defer server.Close()

	if got := testClient(server.URL).Propose(context.Background(), "text", "entry.txt"); got != nil {
		t.Errorf("Propose() = %+v, want nil for malformed content", got)
	}
}

func TestDisabledPropose(t *testing.T) {
	if got := (signal.Disabled{}).Propose(context.Background(), "text", "entry.txt"); got != nil {
		t.Errorf("Disabled.Propose() = %+v, want nil", got)
	}
}

func TestConfigFinalize(t *testing.T) {
	cfg := &signal.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if cfg.Model == "" || cfg.BaseURL == "" || cfg.Timeout != "45s" {
		t.Errorf("defaults not applied: %+v", cfg)
	}

	enabled := &signal.Config{Enabled: true}
	if err := enabled.Finalize(nil); err == nil {
		t.Error("Finalize() should reject enabled config without api_key")
	}
}

func TestNewSelectsExtractor(t *testing.T) {
	if _, ok := signal.New(&signal.Config{}, discard()).(signal.Disabled); !ok {
		t.Error("New() with disabled config should return Disabled")
	}
	cfg := &signal.Config{Enabled: true, APIKey: "k", Timeout: "5s"}
	if _, ok := signal.New(cfg, discard()).(*signal.Client); !ok {
		t.Error("New() with enabled config should return Client")
	}
}
