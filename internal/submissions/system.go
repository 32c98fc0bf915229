package submissions

import (
	"context"

	"github.com/google/uuid"

	"github.com/jbony2888/entryflow/internal/audit"
	"github.com/jbony2888/entryflow/pkg/pagination"
)

// System defines the public contract for submission domain operations.
type System interface {
	Handler(intake Intake, audits audit.System, maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Submission], error)

	Find(ctx context.Context, id uuid.UUID) (*Submission, error)
	FindByFingerprint(ctx context.Context, fingerprint string) (*Submission, error)

	// Register creates the record for a fingerprint or returns the
	// existing one. The bool reports whether a new record was created.
	Register(ctx context.Context, cmd RegisterCommand) (*Submission, bool, error)

	// Complete applies a finished processing attempt's results. Fields
	// whose stored provenance is manual survive the update.
	Complete(ctx context.Context, id uuid.UUID, cmd CompleteCommand) (*Submission, error)

	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	Approve(ctx context.Context, id uuid.UUID, actor string) (*Submission, error)
	EditFields(ctx context.Context, id uuid.UUID, edits map[string]string) (*Submission, error)
}

// Intake accepts raw document bytes for registration and processing.
// The pipeline's intake service implements it; the handler depends on
// the interface so ingestion stays decoupled from orchestration.
type Intake interface {
	Submit(ctx context.Context, data []byte, filename, owner string) (*Submission, bool, error)
}
