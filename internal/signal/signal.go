// Package signal produces the advisory AI extraction signal. A signal is
// a proposal only: the verifier decides what, if anything, becomes
// authoritative. Extractors never surface provider errors to the
// pipeline; every failure collapses to the no-suggestion sentinel (a nil
// *Suggestion).
package signal

import (
	"context"

	"github.com/jbony2888/entryflow/internal/classify"
)

// Suggestion is an advisory proposal for a submission's document type and
// field values. DocType has already passed through the closed-enum
// boundary; unparseable provider strings arrive as DocUnknown.
type Suggestion struct {
	DocType   classify.DocType  `json:"doc_type"`
	Fields    map[string]string `json:"fields"`
	Rationale string            `json:"rationale"`
}

// Extractor proposes a suggestion for raw extracted text. A nil return is
// the explicit no-suggestion sentinel; implementations must return it on
// provider error, timeout, or malformed output instead of an error.
type Extractor interface {
	Propose(ctx context.Context, text, filename string) *Suggestion
}

// Disabled is the extractor used when no signal provider is configured.
type Disabled struct{}

func (Disabled) Propose(_ context.Context, _, _ string) *Suggestion {
	return nil
}
