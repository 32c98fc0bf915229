package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Recorder wraps a System for callers whose primary work must not abort
// when the audit sink fails. Failures are logged and swallowed; the
// canonical state transition proceeds regardless.
type Recorder struct {
	sys    System
	logger *slog.Logger
}

// NewRecorder creates a best-effort recorder over sys.
func NewRecorder(sys System, logger *slog.Logger) *Recorder {
	return &Recorder{
		sys:    sys,
		logger: logger.With("system", "audit"),
	}
}

// Trace persists a trace, logging instead of failing on error.
func (r *Recorder) Trace(ctx context.Context, trace Trace) {
	if err := r.sys.RecordTrace(ctx, trace); err != nil {
		r.logger.Error("trace write failed",
			"submission_id", trace.SubmissionID,
			"attempt", trace.Attempt,
			"error", err,
		)
	}
}

// Event persists an event, logging instead of failing on error.
func (r *Recorder) Event(ctx context.Context, submissionID uuid.UUID, eventType EventType, actor string, detail map[string]any) {
	if err := r.sys.RecordEvent(ctx, submissionID, eventType, actor, detail); err != nil {
		r.logger.Error("event write failed",
			"submission_id", submissionID,
			"type", eventType,
			"error", err,
		)
	}
}
