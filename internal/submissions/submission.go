// Package submissions implements the submission domain for entryflow.
// It provides types, data access, and business logic for registering
// entry documents by content fingerprint, tracking their review status,
// and applying human actions.
package submissions

import (
	"time"

	"github.com/google/uuid"

	"github.com/jbony2888/entryflow/internal/classify"
	"github.com/jbony2888/entryflow/internal/review"
	"github.com/jbony2888/entryflow/internal/verify"
)

// Submission represents a registered entry document. Identity is the
// content fingerprint: identical bytes always map to the same record
// regardless of filename or upload time.
type Submission struct {
	ID            uuid.UUID           `json:"id"`
	Fingerprint   string              `json:"fingerprint"`
	Filename      string              `json:"filename"`
	SizeBytes     int64               `json:"size_bytes"`
	Owner         string              `json:"owner"`
	Status        Status              `json:"status"`
	NeedsReview   bool                `json:"needs_review"`
	DocType       classify.DocType    `json:"doc_type"`
	ReasonCodes   []review.ReasonCode `json:"reason_codes"`
	Fields        verify.FieldSet     `json:"fields"`
	FailureReason *string             `json:"failure_reason,omitempty"`
	ApprovedBy    *string             `json:"approved_by,omitempty"`
	ApprovedAt    *time.Time          `json:"approved_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// Finalized reports whether the submission has reached a state that
// duplicate re-submission must not re-run.
func (s *Submission) Finalized() bool {
	return s.Status == StatusApproved || s.Status == StatusProcessed
}

// RegisterCommand carries the data needed to register a submission at
// ingestion. The fingerprint is derived from the bytes by the caller.
type RegisterCommand struct {
	Fingerprint string
	Filename    string
	SizeBytes   int64
	Owner       string
}

// CompleteCommand carries a finished processing attempt's results.
type CompleteCommand struct {
	DocType     classify.DocType
	Fields      verify.FieldSet
	ReasonCodes []review.ReasonCode
}
