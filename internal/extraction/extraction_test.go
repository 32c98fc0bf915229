package extraction_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/jbony2888/entryflow/internal/extraction"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLocalExtractInvalidBytes(t *testing.T) {
	local := extraction.NewLocal(discard())

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"invalid utf8", []byte{0xff, 0xfe, 0x00, 0x80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := local.Extract(context.Background(), extraction.Page{Data: tt.data, Filename: "entry.txt", Number: 1})

			if !result.Failed {
				t.Error("Failed = false, want true")
			}
			if result.Text != "" {
				t.Errorf("Text = %q, want empty", result.Text)
			}
			if result.Confidence != 0 {
				t.Errorf("Confidence = %v, want 0", result.Confidence)
			}
			if result.Provider != extraction.ProviderLocal {
				t.Errorf("Provider = %q, want %q", result.Provider, extraction.ProviderLocal)
			}
		})
	}
}

func TestLocalExtractConfidenceTiers(t *testing.T) {
	local := extraction.NewLocal(discard())

	rich := `Name: Maria Lopez
School: Lincoln Elementary
Email: maria@example.com

` + strings.Repeat("my favorite teacher always believed in every student she taught ", 12)

	tests := []struct {
		name string
		text string
		want float64
	}{
		{"bare prose", "hello world", 0.3},
		{"labels only", "Name: Maria\nSchool: Lincoln", 0.5},
		{"fully featured", rich, 0.95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := local.Extract(context.Background(), extraction.Page{Data: []byte(tt.text), Filename: "entry.txt", Number: 1})

			if result.Failed {
				t.Fatal("Failed = true, want false")
			}
			if result.Text != tt.text {
				t.Error("Text should carry the decoded input unchanged")
			}
			if diff := result.Confidence - tt.want; diff > 0.001 || diff < -0.001 {
				t.Errorf("Confidence = %v, want %v", result.Confidence, tt.want)
			}
		})
	}
}

func TestStubExtract(t *testing.T) {
	fixed := extraction.Result{Text: "canned", Confidence: 0.8, Provider: extraction.ProviderStub}
	stub := extraction.NewStub(fixed)

	for i := 0; i < 3; i++ {
		got := stub.Extract(context.Background(), extraction.Page{})
		if got.Text != fixed.Text || got.Confidence != fixed.Confidence || got.Provider != fixed.Provider {
			t.Fatalf("Extract() = %+v, want %+v", got, fixed)
		}
	}
}

func TestPreparePageNonPDF(t *testing.T) {
	data := []byte("Name: Maria\n\nplain text entry")

	page, count := extraction.PreparePage(data, "entry.txt", 3, discard())

	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if page.Number != 1 {
		t.Errorf("Number = %d, want 1 for non-pdf input", page.Number)
	}
	if string(page.Data) != string(data) {
		t.Error("non-pdf bytes should pass through untouched")
	}
}

func TestPreparePageMalformedPDF(t *testing.T) {
	data := []byte("%PDF-1.7 but truncated garbage")

	page, count := extraction.PreparePage(data, "entry.pdf", 1, discard())

	if count != 1 {
		t.Errorf("count = %d, want 1 for unreadable pdf", count)
	}
	if string(page.Data) != string(data) {
		t.Error("unreadable pdf bytes should pass through for the adapter to degrade")
	}
}

func TestConfigFinalizeDefaults(t *testing.T) {
	cfg := &extraction.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Provider != extraction.ProviderLocal {
		t.Errorf("Provider = %q, want %q", cfg.Provider, extraction.ProviderLocal)
	}
	if cfg.Timeout != "30s" {
		t.Errorf("Timeout = %q, want 30s", cfg.Timeout)
	}
	if cfg.Page != 1 {
		t.Errorf("Page = %d, want 1", cfg.Page)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     extraction.Config
		wantErr bool
	}{
		{"hosted without endpoint", extraction.Config{Provider: extraction.ProviderHosted}, true},
		{"hosted with endpoint", extraction.Config{Provider: extraction.ProviderHosted, Endpoint: "http://ocr.local"}, false},
		{"unknown provider", extraction.Config{Provider: "cloud"}, true},
		{"bad timeout", extraction.Config{Provider: extraction.ProviderLocal, Timeout: "never"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("Finalize() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewSelectsProvider(t *testing.T) {
	cfg := &extraction.Config{Provider: extraction.ProviderLocal, Timeout: "5s", Page: 1}
	adapter, err := extraction.New(cfg, discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if adapter == nil {
		t.Fatal("New() returned nil adapter")
	}

	if _, err := extraction.New(&extraction.Config{Provider: "bogus"}, discard()); err == nil {
		t.Error("New() with unknown provider should error")
	}
}
