// Package pipeline orchestrates document processing: durable queueing,
// worker dispatch, and the staged run from extraction through review.
// Audit writes are best-effort; the canonical state transition on the
// submission record is the step that must not be lost.
package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jbony2888/entryflow/internal/audit"
	"github.com/jbony2888/entryflow/internal/classify"
	"github.com/jbony2888/entryflow/internal/extraction"
	"github.com/jbony2888/entryflow/internal/review"
	"github.com/jbony2888/entryflow/internal/segment"
	"github.com/jbony2888/entryflow/internal/signal"
	"github.com/jbony2888/entryflow/internal/submissions"
	"github.com/jbony2888/entryflow/internal/verify"
)

// Orchestrator runs one processing attempt end to end.
type Orchestrator struct {
	subs      submissions.System
	audits    *audit.Recorder
	extractor extraction.Adapter
	signals   signal.Extractor
	logger    *slog.Logger
	page      int
}

// NewOrchestrator creates an orchestrator over the given subsystems.
// page selects which document page is processed.
func NewOrchestrator(
	subs submissions.System,
	audits *audit.Recorder,
	extractor extraction.Adapter,
	signals signal.Extractor,
	logger *slog.Logger,
	page int,
) *Orchestrator {
	return &Orchestrator{
		subs:      subs,
		audits:    audits,
		extractor: extractor,
		signals:   signals,
		logger:    logger.With("system", "orchestrator"),
		page:      page,
	}
}

// Process runs the staged pipeline for one job. A nil return means the
// job is finished, including the duplicate-skip case. A transient error
// asks the pool to retry; any other error is permanent for this job.
func (o *Orchestrator) Process(ctx context.Context, job *Job) error {
	sub, err := o.subs.Find(ctx, job.SubmissionID)
	if err != nil {
		if errors.Is(err, submissions.ErrNotFound) {
			return err
		}
		return Transient(err)
	}

	if sub.Finalized() {
		o.logger.Info("skipping finalized submission",
			"id", sub.ID,
			"status", sub.Status,
		)
		o.audits.Event(ctx, sub.ID, audit.EventDuplicateSkipped, "pipeline", map[string]any{
			"status":  sub.Status,
			"attempt": job.Attempt,
		})
		return nil
	}

	builder := audit.NewBuilder(sub.ID, job.Attempt)

	page, pageCount := extraction.PreparePage(job.Payload, job.Filename, o.page, o.logger)
	builder.Input(job.Filename, sub.Fingerprint, sub.SizeBytes, pageCount)

	res := o.extractor.Extract(ctx, page)
	builder.Extraction(res)
	if res.Failed {
		builder.Error("extraction", errors.New("provider reported failure"))
	}
	o.stageDone(ctx, sub.ID, job.Attempt, "extraction", map[string]any{
		"provider":   res.Provider,
		"confidence": res.Confidence,
		"failed":     res.Failed,
	})

	metadata, body := segment.Split(res.Text)
	o.stageDone(ctx, sub.ID, job.Attempt, "segmentation", map[string]any{
		"metadata_len": len(metadata),
		"body_len":     len(body),
	})

	var (
		sug      *signal.Suggestion
		features classify.Features
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sug = o.signals.Propose(gctx, res.Text, job.Filename)
		return nil
	})
	g.Go(func() error {
		features = classify.ExtractFeatures(res.Text)
		return nil
	})
	// both branches are advisory or pure and never fail
	_ = g.Wait()
	o.stageDone(ctx, sub.ID, job.Attempt, "signals", map[string]any{
		"suggested":       sug != nil,
		"distinct_labels": features.DistinctLabels,
	})

	outcome := verify.Verify(sug, features, res.Text, metadata, body)
	builder.Signals(sug, features, outcome)
	o.stageDone(ctx, sub.ID, job.Attempt, "verification", map[string]any{
		"doc_type":        outcome.DocType,
		"type_provenance": outcome.TypeProvenance,
		"discrepancy":     outcome.Discrepancy,
	})

	decision := review.Evaluate(outcome.Fields, res)
	o.stageDone(ctx, sub.ID, job.Attempt, "validation", map[string]any{
		"needs_review": decision.NeedsReview,
		"reason_codes": decision.ReasonCodes,
	})

	updated, err := o.subs.Complete(ctx, sub.ID, submissions.CompleteCommand{
		DocType:     outcome.DocType,
		Fields:      outcome.Fields,
		ReasonCodes: decision.ReasonCodes,
	})
	if err != nil {
		if errors.Is(err, submissions.ErrInvalidTransition) {
			// finalized between our check and the write; nothing to redo
			o.logger.Info("completion superseded", "id", sub.ID, "error", err)
			return nil
		}
		if errors.Is(err, submissions.ErrNotFound) {
			return err
		}
		return Transient(err)
	}

	builder.Review(string(updated.Status), outcome, decision)
	o.audits.Trace(ctx, builder.Build())
	o.stageDone(ctx, updated.ID, job.Attempt, "completion", map[string]any{
		"status":       updated.Status,
		"doc_type":     outcome.DocType,
		"reason_codes": decision.ReasonCodes,
		"discrepancy":  outcome.Discrepancy,
	})

	o.logger.Info("submission processed",
		"id", updated.ID,
		"attempt", job.Attempt,
		"doc_type", outcome.DocType,
		"provider", res.Provider,
		"confidence", res.Confidence,
	)
	return nil
}

// stageDone appends a stage-completion event before the next stage runs,
// so a worker killed mid-attempt still leaves a per-stage trail.
func (o *Orchestrator) stageDone(ctx context.Context, id uuid.UUID, attempt int, stage string, detail map[string]any) {
	detail["stage"] = stage
	detail["attempt"] = attempt
	o.audits.Event(ctx, id, audit.EventStageCompleted, "pipeline", detail)
}
