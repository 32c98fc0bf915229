package signal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jbony2888/entryflow/internal/classify"
	"github.com/jbony2888/entryflow/pkg/formatting"
)

const promptTextLimit = 4000

// Client proposes suggestions through an OpenAI-compatible chat
// completions endpoint. Sampling runs at temperature zero so repeated
// calls over identical text stay as reproducible as the provider allows.
type Client struct {
	cfg    *Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a signal client from the config.
func NewClient(cfg *Config, logger *slog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.TimeoutDuration()},
		logger: logger.With("system", "signal"),
	}
}

type suggestionPayload struct {
	DocType   string            `json:"doc_type"`
	Fields    map[string]string `json:"fields"`
	Rationale string            `json:"rationale"`
}

// Propose requests an advisory suggestion for the given text. Any
// provider error, timeout, schema violation, or malformed payload
// collapses to nil, the no-suggestion sentinel.
func (c *Client) Propose(ctx context.Context, text, filename string) *Suggestion {
	start := time.Now()
	schema := suggestionSchema()

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     0,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": systemPrompt()},
			{"role": "user", "content": userPrompt(text, filename)},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	raw, err := c.post(ctx, body)
	if err != nil {
		c.logger.Warn("signal degraded to no suggestion",
			"filename", filename,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil || len(cc.Choices) == 0 {
		c.logger.Warn("signal response undecodable", "filename", filename, "error", err)
		return nil
	}

	payload, err := formatting.Parse[suggestionPayload](cc.Choices[0].Message.Content)
	if err != nil {
		c.logger.Warn("signal content unparseable", "filename", filename, "error", err)
		return nil
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	if err := validateAgainstSchema(schema, encoded); err != nil {
		c.logger.Warn("signal payload rejected by schema", "filename", filename, "error", err)
		return nil
	}

	suggestion := &Suggestion{
		DocType:   classify.ParseDocType(payload.DocType),
		Fields:    payload.Fields,
		Rationale: payload.Rationale,
	}

	c.logger.Info("signal proposed",
		"filename", filename,
		"doc_type", suggestion.DocType,
		"fields", len(suggestion.Fields),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return suggestion
}

func (c *Client) post(ctx context.Context, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider http error: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider status %d: %s", resp.StatusCode, raw)
	}

	return raw, nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
