package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jbony2888/entryflow/pkg/query"
	"github.com/jbony2888/entryflow/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates an audit repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "audit"),
	}
}

func (r *repo) RecordTrace(ctx context.Context, trace Trace) error {
	if trace.ID == uuid.Nil {
		trace.ID = uuid.New()
	}

	rawInput, err := json.Marshal(trace.Input)
	if err != nil {
		return fmt.Errorf("encode trace input: %w", err)
	}
	rawSignals, err := json.Marshal(trace.Signals)
	if err != nil {
		return fmt.Errorf("encode trace signals: %w", err)
	}
	rawRules, err := json.Marshal(trace.RulesApplied)
	if err != nil {
		return fmt.Errorf("encode trace rules: %w", err)
	}
	rawOutcome, err := json.Marshal(trace.Outcome)
	if err != nil {
		return fmt.Errorf("encode trace outcome: %w", err)
	}
	rawErrors, err := json.Marshal(trace.Errors)
	if err != nil {
		return fmt.Errorf("encode trace errors: %w", err)
	}

	q := `
		INSERT INTO audit_traces(id, submission_id, attempt, input, signals, rules_applied, outcome, errors)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx, q,
			trace.ID,
			trace.SubmissionID,
			trace.Attempt,
			rawInput,
			rawSignals,
			rawRules,
			rawOutcome,
			rawErrors,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("trace recorded",
		"submission_id", trace.SubmissionID,
		"attempt", trace.Attempt,
	)
	return nil
}

func (r *repo) RecordEvent(
	ctx context.Context,
	submissionID uuid.UUID,
	eventType EventType,
	actor string,
	detail map[string]any,
) error {
	rawDetail, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("encode event detail: %w", err)
	}

	q := `
		INSERT INTO audit_events(id, submission_id, event_type, actor, detail)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx, q,
			uuid.New(),
			submissionID,
			eventType,
			actor,
			rawDetail,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("event recorded",
		"submission_id", submissionID,
		"type", eventType,
		"actor", actor,
	)
	return nil
}

func (r *repo) TracesFor(ctx context.Context, submissionID uuid.UUID) ([]Trace, error) {
	qb := query.
		NewBuilder(traceProjection, traceSort).
		WhereEquals("SubmissionID", submissionID)

	q, args := qb.Build()
	traces, err := repository.QueryMany(ctx, r.db, q, args, scanTrace)
	if err != nil {
		return nil, fmt.Errorf("query traces: %w", err)
	}
	return traces, nil
}

func (r *repo) EventsFor(ctx context.Context, submissionID uuid.UUID) ([]Event, error) {
	qb := query.
		NewBuilder(eventProjection, eventSort).
		WhereEquals("SubmissionID", submissionID)

	q, args := qb.Build()
	events, err := repository.QueryMany(ctx, r.db, q, args, scanEvent)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return events, nil
}
