package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jbony2888/entryflow/pkg/repository"
)

// Job is one leased unit of processing work. The payload carries the
// document bytes so a worker on any node can process it.
type Job struct {
	ID           uuid.UUID
	SubmissionID uuid.UUID
	Filename     string
	Payload      []byte
	Attempt      int
}

// Queue is the durable work queue contract the pool and intake depend on.
type Queue interface {
	Enqueue(ctx context.Context, submissionID uuid.UUID, filename string, payload []byte) error
	Dequeue(ctx context.Context) (*Job, error)
	Ack(ctx context.Context, id uuid.UUID) error
	Requeue(ctx context.Context, id uuid.UUID, delay time.Duration, reason string) error
	Bury(ctx context.Context, id uuid.UUID, reason string) error
}

type pgQueue struct {
	db     *sql.DB
	logger *slog.Logger
	lease  time.Duration
}

// NewQueue creates a Postgres-backed queue. Leases use FOR UPDATE SKIP
// LOCKED so concurrent workers never double-claim, and expired leases
// are reclaimed automatically on the next dequeue.
func NewQueue(db *sql.DB, logger *slog.Logger, lease time.Duration) Queue {
	return &pgQueue{
		db:     db,
		logger: logger.With("system", "queue"),
		lease:  lease,
	}
}

func (q *pgQueue) Enqueue(ctx context.Context, submissionID uuid.UUID, filename string, payload []byte) error {
	stmt := `
		INSERT INTO jobs(id, submission_id, filename, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (submission_id) WHERE status IN ('queued', 'leased') DO NOTHING`

	_, err := repository.WithTx(ctx, q.db, func(tx *sql.Tx) (struct{}, error) {
		_, err := tx.ExecContext(ctx, stmt, uuid.New(), submissionID, filename, payload)
		return struct{}{}, err
	})
	if err != nil {
		return fmt.Errorf("enqueue job: %w", err)
	}

	q.logger.Info("job enqueued", "submission_id", submissionID, "filename", filename)
	return nil
}

func (q *pgQueue) Dequeue(ctx context.Context) (*Job, error) {
	stmt := `
		WITH next AS (
			SELECT id FROM jobs
			WHERE (status = 'queued' AND run_after <= now())
				OR (status = 'leased' AND leased_until < now())
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE jobs j
		SET status = 'leased',
			attempts = j.attempts + 1,
			leased_until = now() + make_interval(secs => $1),
			updated_at = now()
		FROM next
		WHERE j.id = next.id
		RETURNING j.id, j.submission_id, j.filename, j.payload, j.attempts`

	job, err := repository.WithTx(ctx, q.db, func(tx *sql.Tx) (Job, error) {
		return repository.QueryOne(ctx, tx, stmt, []any{q.lease.Seconds()}, scanJob)
	})

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("dequeue job: %w", err)
	}
	return &job, nil
}

func (q *pgQueue) Ack(ctx context.Context, id uuid.UUID) error {
	stmt := `
		UPDATE jobs
		SET status = 'done', payload = ''::bytea, updated_at = now()
		WHERE id = $1`

	_, err := repository.WithTx(ctx, q.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, stmt, id)
	})
	if err != nil {
		return fmt.Errorf("ack job: %w", err)
	}
	return nil
}

func (q *pgQueue) Requeue(ctx context.Context, id uuid.UUID, delay time.Duration, reason string) error {
	stmt := `
		UPDATE jobs
		SET status = 'queued',
			run_after = now() + make_interval(secs => $2),
			last_error = $3,
			leased_until = NULL,
			updated_at = now()
		WHERE id = $1`

	_, err := repository.WithTx(ctx, q.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, stmt, id, delay.Seconds(), reason)
	})
	if err != nil {
		return fmt.Errorf("requeue job: %w", err)
	}

	q.logger.Warn("job requeued", "id", id, "delay", delay, "reason", reason)
	return nil
}

func (q *pgQueue) Bury(ctx context.Context, id uuid.UUID, reason string) error {
	stmt := `
		UPDATE jobs
		SET status = 'dead', last_error = $2, payload = ''::bytea, updated_at = now()
		WHERE id = $1`

	_, err := repository.WithTx(ctx, q.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, stmt, id, reason)
	})
	if err != nil {
		return fmt.Errorf("bury job: %w", err)
	}

	q.logger.Error("job buried", "id", id, "reason", reason)
	return nil
}

func scanJob(s repository.Scanner) (Job, error) {
	var j Job
	err := s.Scan(&j.ID, &j.SubmissionID, &j.Filename, &j.Payload, &j.Attempt)
	return j, err
}
