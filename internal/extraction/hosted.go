package extraction

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// hosted calls an external OCR service over HTTP. Every failure mode
// (auth, network, malformed response) degrades to a failed Result.
type hosted struct {
	endpoint string
	token    string
	http     *http.Client
	logger   *slog.Logger
}

func newHosted(cfg *Config, logger *slog.Logger) *hosted {
	return &hosted{
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		http:     &http.Client{Timeout: cfg.TimeoutDuration()},
		logger:   logger.With("system", "extraction", "provider", ProviderHosted),
	}
}

type hostedRequest struct {
	Filename string `json:"filename"`
	Page     int    `json:"page"`
	Data     string `json:"data"`
}

type hostedResponse struct {
	Text       string             `json:"text"`
	Regions    []RegionConfidence `json:"regions"`
	Confidence float64            `json:"confidence"`
}

func (h *hosted) Extract(ctx context.Context, page Page) Result {
	start := time.Now()

	raw, err := h.post(ctx, hostedRequest{
		Filename: page.Filename,
		Page:     page.Number,
		Data:     base64.StdEncoding.EncodeToString(page.Data),
	})
	if err != nil {
		h.logger.Warn("extraction degraded to failure",
			"filename", page.Filename,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return Failure(ProviderHosted)
	}

	var resp hostedResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		h.logger.Warn("extraction response malformed", "filename", page.Filename, "error", err)
		return Failure(ProviderHosted)
	}

	h.logger.Info("extraction complete",
		"filename", page.Filename,
		"text_len", len(resp.Text),
		"confidence", resp.Confidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return Result{
		Text:       resp.Text,
		Regions:    resp.Regions,
		Confidence: clamp(resp.Confidence),
		Provider:   ProviderHosted,
	}
}

func (h *hosted) post(ctx context.Context, body hostedRequest) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction http error: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("extraction status %d: %s", resp.StatusCode, raw)
	}

	return raw, nil
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
