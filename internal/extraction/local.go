package extraction

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jbony2888/entryflow/internal/classify"
)

var (
	reEmail = regexp.MustCompile(`\b[\w.+-]+@[\w-]+\.[\w.]+\b`)
	rePhone = regexp.MustCompile(`\b\d{3}[-.\s]?\d{3,4}[-.\s]?\d{4}\b`)
)

// Local is the deterministic engine for typed (non-scanned) submissions.
// It reads the page bytes as UTF-8 text and scores confidence from entry
// form artifacts the way a triage pass would, without any external calls.
type Local struct {
	logger *slog.Logger
}

// NewLocal creates a local extraction adapter.
func NewLocal(logger *slog.Logger) *Local {
	return &Local{logger: logger.With("system", "extraction", "provider", ProviderLocal)}
}

func (l *Local) Extract(_ context.Context, page Page) Result {
	if len(page.Data) == 0 || !utf8.Valid(page.Data) {
		l.logger.Warn("local extraction degraded to failure",
			"filename", page.Filename,
			"bytes", len(page.Data),
		)
		return Failure(ProviderLocal)
	}

	text := string(page.Data)
	confidence := heuristicConfidence(text)

	return Result{
		Text: text,
		Regions: []RegionConfidence{
			{Region: "page", Confidence: confidence},
		},
		Confidence: confidence,
		Provider:   ProviderLocal,
	}
}

// heuristicConfidence scores decoded text by the entry-form artifacts it
// carries. Each artifact class contributes a fixed increment; the score is
// a triage signal only.
func heuristicConfidence(text string) float64 {
	features := classify.ExtractFeatures(text)

	score := 0.3
	if features.DistinctLabels >= 2 {
		score += 0.2
	}
	if reEmail.MatchString(text) || rePhone.MatchString(text) {
		score += 0.15
	}
	if features.WordCount >= 60 {
		score += 0.2
	}
	if len(strings.TrimSpace(text)) > 400 {
		score += 0.1
	}
	return clamp(score)
}
