package audit

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for audit operations. There are no
// update or delete operations: the trail is append-only.
type System interface {
	RecordTrace(ctx context.Context, trace Trace) error
	RecordEvent(ctx context.Context, submissionID uuid.UUID, eventType EventType, actor string, detail map[string]any) error
	TracesFor(ctx context.Context, submissionID uuid.UUID) ([]Trace, error)
	EventsFor(ctx context.Context, submissionID uuid.UUID) ([]Event, error)
}
