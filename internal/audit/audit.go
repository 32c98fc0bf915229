// Package audit persists the append-only decision trail: one trace per
// processing attempt capturing inputs, signals, every rule applied, and
// the outcome, plus discrete events for actions outside the pipeline.
// Records are never updated or deleted.
package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/jbony2888/entryflow/internal/classify"
	"github.com/jbony2888/entryflow/internal/review"
	"github.com/jbony2888/entryflow/internal/verify"
)

// Trace is the complete record of one processing attempt.
type Trace struct {
	ID           uuid.UUID           `json:"id"`
	SubmissionID uuid.UUID           `json:"submission_id"`
	Attempt      int                 `json:"attempt"`
	Input        InputSnapshot       `json:"input"`
	Signals      SignalSnapshot      `json:"signals"`
	RulesApplied []review.RuleResult `json:"rules_applied"`
	Outcome      OutcomeSnapshot     `json:"outcome"`
	Errors       []string            `json:"errors,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

// InputSnapshot captures what entered the attempt.
type InputSnapshot struct {
	Filename         string  `json:"filename"`
	Fingerprint      string  `json:"fingerprint"`
	SizeBytes        int64   `json:"size_bytes"`
	PageCount        int     `json:"page_count"`
	Provider         string  `json:"provider"`
	Confidence       float64 `json:"confidence"`
	ExtractionFailed bool    `json:"extraction_failed"`
}

// SignalSnapshot captures the advisory suggestion alongside the
// deterministic classification so discrepancies stay inspectable.
type SignalSnapshot struct {
	Suggested         bool                  `json:"suggested"`
	SuggestedType     classify.DocType      `json:"suggested_type,omitempty"`
	SuggestedFields   map[string]string     `json:"suggested_fields,omitempty"`
	Rationale         string                `json:"rationale,omitempty"`
	DeterministicType classify.DocType      `json:"deterministic_type"`
	TypeProvenance    verify.TypeProvenance `json:"type_provenance"`
	Discrepancy       bool                  `json:"discrepancy"`
	Features          classify.Features     `json:"features"`
}

// OutcomeSnapshot captures what the attempt decided.
type OutcomeSnapshot struct {
	Status      string              `json:"status"`
	DocType     classify.DocType    `json:"doc_type"`
	NeedsReview bool                `json:"needs_review"`
	ReasonCodes []review.ReasonCode `json:"reason_codes"`
	Fields      verify.FieldSet     `json:"fields"`
}

// EventType labels a discrete audited action.
type EventType string

// Event types.
const (
	EventStageCompleted   EventType = "STAGE_COMPLETED"
	EventDuplicateSkipped EventType = "DUPLICATE_SKIPPED"
	EventApproved         EventType = "APPROVED"
	EventFieldsEdited     EventType = "FIELDS_EDITED"
	EventError            EventType = "ERROR"
)

// Event is a single audited action on a submission.
type Event struct {
	ID           uuid.UUID      `json:"id"`
	SubmissionID uuid.UUID      `json:"submission_id"`
	Type         EventType      `json:"type"`
	Actor        string         `json:"actor"`
	Detail       map[string]any `json:"detail,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
