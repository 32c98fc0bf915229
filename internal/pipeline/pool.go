package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jbony2888/entryflow/internal/audit"
	"github.com/jbony2888/entryflow/internal/submissions"
	"github.com/jbony2888/entryflow/pkg/lifecycle"
)

// Pool runs a fixed set of workers that lease jobs from the queue and
// hand them to the orchestrator. Retry and burial policy lives here:
// the orchestrator only says whether a failure is transient.
type Pool struct {
	queue  Queue
	orch   *Orchestrator
	subs   submissions.System
	audits *audit.Recorder
	cfg    Config
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewPool creates a worker pool.
func NewPool(
	queue Queue,
	orch *Orchestrator,
	subs submissions.System,
	audits *audit.Recorder,
	cfg Config,
	logger *slog.Logger,
) *Pool {
	return &Pool{
		queue:  queue,
		orch:   orch,
		subs:   subs,
		audits: audits,
		cfg:    cfg,
		logger: logger.With("system", "pool"),
	}
}

// Start registers the pool with the lifecycle coordinator. Workers poll
// until the coordinator's context is cancelled; shutdown waits for
// in-flight jobs to finish.
func (p *Pool) Start(lc *lifecycle.Coordinator) {
	ctx := lc.Context()

	lc.OnStartup(func() {
		for i := 0; i < p.cfg.Workers; i++ {
			p.wg.Add(1)
			go p.worker(ctx, i)
		}
		p.logger.Info("worker pool started", "workers", p.cfg.Workers)
	})

	lc.OnShutdown(func() {
		<-ctx.Done()
		p.wg.Wait()
		p.logger.Info("worker pool stopped")
	})
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	logger := p.logger.With("worker", id)
	ticker := time.NewTicker(p.cfg.PollIntervalDuration())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		// drain available work before going back to sleep
		for {
			job, err := p.queue.Dequeue(ctx)
			if err != nil {
				logger.Error("dequeue failed", "error", err)
				break
			}
			if job == nil {
				break
			}
			p.handle(ctx, logger, job)

			if ctx.Err() != nil {
				return
			}
		}
	}
}

func (p *Pool) handle(ctx context.Context, logger *slog.Logger, job *Job) {
	err := p.orch.Process(ctx, job)
	if err == nil {
		if ackErr := p.queue.Ack(ctx, job.ID); ackErr != nil {
			logger.Error("ack failed", "job", job.ID, "error", ackErr)
		}
		return
	}

	if IsTransient(err) && job.Attempt < p.cfg.MaxAttempts {
		delay := backoff(p.cfg.RetryBackoffDuration(), job.Attempt)
		if reqErr := p.queue.Requeue(ctx, job.ID, delay, err.Error()); reqErr != nil {
			logger.Error("requeue failed", "job", job.ID, "error", reqErr)
		}
		return
	}

	logger.Error("job exhausted",
		"job", job.ID,
		"submission_id", job.SubmissionID,
		"attempt", job.Attempt,
		"error", err,
	)

	if buryErr := p.queue.Bury(ctx, job.ID, err.Error()); buryErr != nil {
		logger.Error("bury failed", "job", job.ID, "error", buryErr)
	}
	if failErr := p.subs.MarkFailed(ctx, job.SubmissionID, err.Error()); failErr != nil {
		logger.Error("mark failed errored", "submission_id", job.SubmissionID, "error", failErr)
	}
	p.audits.Event(ctx, job.SubmissionID, audit.EventError, "pipeline", map[string]any{
		"attempt": job.Attempt,
		"error":   err.Error(),
	})
}

// backoff doubles the base delay per prior attempt.
func backoff(base time.Duration, attempt int) time.Duration {
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	return d
}
