package pipeline

import (
	"context"
	"log/slog"

	"github.com/jbony2888/entryflow/internal/audit"
	"github.com/jbony2888/entryflow/internal/submissions"
)

// Intake registers incoming documents and enqueues processing work. It
// implements submissions.Intake.
type Intake struct {
	subs   submissions.System
	queue  Queue
	audits *audit.Recorder
	logger *slog.Logger
}

// NewIntake creates the intake service.
func NewIntake(subs submissions.System, queue Queue, audits *audit.Recorder, logger *slog.Logger) *Intake {
	return &Intake{
		subs:   subs,
		queue:  queue,
		audits: audits,
		logger: logger.With("system", "intake"),
	}
}

// Submit fingerprints the document, registers it, and enqueues a
// processing job. A fingerprint already finalized is returned without
// re-running anything; a registered but unfinalized record is
// re-enqueued, which the queue deduplicates against in-flight jobs.
// The bool reports whether processing was enqueued.
func (i *Intake) Submit(ctx context.Context, data []byte, filename, owner string) (*submissions.Submission, bool, error) {
	if len(data) == 0 {
		return nil, false, submissions.ErrInvalidFile
	}

	fingerprint := submissions.Fingerprint(data)

	sub, created, err := i.subs.Register(ctx, submissions.RegisterCommand{
		Fingerprint: fingerprint,
		Filename:    filename,
		SizeBytes:   int64(len(data)),
		Owner:       owner,
	})
	if err != nil {
		return nil, false, err
	}

	if !created && sub.Finalized() {
		i.logger.Info("duplicate submission skipped",
			"id", sub.ID,
			"fingerprint", fingerprint,
			"status", sub.Status,
		)
		i.audits.Event(ctx, sub.ID, audit.EventDuplicateSkipped, "system", map[string]any{
			"fingerprint": fingerprint,
			"filename":    filename,
			"status":      sub.Status,
		})
		return sub, false, nil
	}

	if err := i.queue.Enqueue(ctx, sub.ID, filename, data); err != nil {
		return nil, false, err
	}

	return sub, true, nil
}
