package audit

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jbony2888/entryflow/internal/classify"
	"github.com/jbony2888/entryflow/internal/extraction"
	"github.com/jbony2888/entryflow/internal/review"
	"github.com/jbony2888/entryflow/internal/signal"
	"github.com/jbony2888/entryflow/internal/verify"
)

// Builder accumulates a trace across the stages of one processing
// attempt. Stages record into it as they finish; Build produces the
// immutable trace for persistence.
type Builder struct {
	trace Trace
}

// NewBuilder starts a trace for one attempt against a submission.
func NewBuilder(submissionID uuid.UUID, attempt int) *Builder {
	return &Builder{
		trace: Trace{
			ID:           uuid.New(),
			SubmissionID: submissionID,
			Attempt:      attempt,
		},
	}
}

// Input records the document identity entering the attempt.
func (b *Builder) Input(filename, fingerprint string, sizeBytes int64, pageCount int) *Builder {
	b.trace.Input.Filename = filename
	b.trace.Input.Fingerprint = fingerprint
	b.trace.Input.SizeBytes = sizeBytes
	b.trace.Input.PageCount = pageCount
	return b
}

// Extraction records the text extraction result.
func (b *Builder) Extraction(res extraction.Result) *Builder {
	b.trace.Input.Provider = res.Provider
	b.trace.Input.Confidence = res.Confidence
	b.trace.Input.ExtractionFailed = res.Failed
	return b
}

// Signals records the advisory suggestion, the deterministic features,
// and the reconciliation verdict. A nil suggestion is recorded as such.
func (b *Builder) Signals(sug *signal.Suggestion, features classify.Features, outcome verify.Outcome) *Builder {
	b.trace.Signals = SignalSnapshot{
		DeterministicType: outcome.DocType,
		TypeProvenance:    outcome.TypeProvenance,
		Discrepancy:       outcome.Discrepancy,
		Features:          features,
	}
	if sug != nil {
		b.trace.Signals.Suggested = true
		b.trace.Signals.SuggestedType = sug.DocType
		b.trace.Signals.SuggestedFields = sug.Fields
		b.trace.Signals.Rationale = sug.Rationale
	}
	return b
}

// Review records every evaluated rule and the decision outcome.
func (b *Builder) Review(status string, verified verify.Outcome, decision review.Outcome) *Builder {
	b.trace.RulesApplied = decision.RulesApplied
	b.trace.Outcome = OutcomeSnapshot{
		Status:      status,
		DocType:     verified.DocType,
		NeedsReview: decision.NeedsReview,
		ReasonCodes: decision.ReasonCodes,
		Fields:      verified.Fields,
	}
	return b
}

// Error appends a non-fatal error encountered during the attempt.
func (b *Builder) Error(stage string, err error) *Builder {
	b.trace.Errors = append(b.trace.Errors, fmt.Sprintf("%s: %v", stage, err))
	return b
}

// Build returns the accumulated trace.
func (b *Builder) Build() Trace {
	return b.trace
}
