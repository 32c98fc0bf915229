package submissions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/jbony2888/entryflow/internal/audit"
	"github.com/jbony2888/entryflow/internal/classify"
	"github.com/jbony2888/entryflow/internal/verify"
	"github.com/jbony2888/entryflow/pkg/pagination"
	"github.com/jbony2888/entryflow/pkg/query"
	"github.com/jbony2888/entryflow/pkg/repository"
)

const returningColumns = `id, fingerprint, filename, size_bytes, owner, status, needs_review, doc_type,
		reason_codes, fields, failure_reason, approved_by, approved_at, created_at, updated_at`

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a submission repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "submissions"),
		pagination: pagination,
	}
}

func (r *repo) Handler(intake Intake, audits audit.System, maxUploadSize int64) *Handler {
	return NewHandler(r, intake, audits, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Submission], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Filename", "Owner")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	subs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanSubmission)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}

	result := pagination.NewPageResult(subs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Submission, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	sub, err := repository.QueryOne(ctx, r.db, q, args, scanSubmission)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &sub, nil
}

func (r *repo) FindByFingerprint(ctx context.Context, fingerprint string) (*Submission, error) {
	q, args := query.NewBuilder(projection).BuildSingle("Fingerprint", fingerprint)

	sub, err := repository.QueryOne(ctx, r.db, q, args, scanSubmission)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &sub, nil
}

func (r *repo) Register(ctx context.Context, cmd RegisterCommand) (*Submission, bool, error) {
	q := fmt.Sprintf(`
		INSERT INTO submissions(id, fingerprint, filename, size_bytes, owner, status, needs_review)
		VALUES ($1, $2, $3, $4, $5, $6, true)
		ON CONFLICT (fingerprint) DO NOTHING
		RETURNING %s`, returningColumns)

	insertArgs := []any{
		uuid.New(),
		cmd.Fingerprint,
		cmd.Filename,
		cmd.SizeBytes,
		cmd.Owner,
		StatusPendingReview,
	}

	sub, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Submission, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanSubmission)
	})

	if err == nil {
		r.logger.Info("submission registered",
			"id", sub.ID,
			"fingerprint", sub.Fingerprint,
			"filename", sub.Filename,
		)
		return &sub, true, nil
	}

	// DO NOTHING yields no row when the fingerprint already exists.
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	existing, findErr := r.FindByFingerprint(ctx, cmd.Fingerprint)
	if findErr != nil {
		return nil, false, findErr
	}

	r.logger.Info("submission already registered",
		"id", existing.ID,
		"fingerprint", existing.Fingerprint,
	)
	return existing, false, nil
}

func (r *repo) Complete(ctx context.Context, id uuid.UUID, cmd CompleteCommand) (*Submission, error) {
	rawCodes, err := json.Marshal(cmd.ReasonCodes)
	if err != nil {
		return nil, fmt.Errorf("encode reason codes: %w", err)
	}

	q := fmt.Sprintf(`
		UPDATE submissions
		SET status = $2, needs_review = true, doc_type = $3, reason_codes = $4, fields = $5,
			failure_reason = NULL, updated_at = now()
		WHERE id = $1
		RETURNING %s`, returningColumns)

	sub, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Submission, error) {
		current, err := lockFields(ctx, tx, id)
		if err != nil {
			return Submission{}, err
		}
		if !current.status.CanTransitionTo(StatusProcessed) {
			return Submission{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.status, StatusProcessed)
		}

		// Manual edits made while the attempt ran survive the result.
		merged := verify.Merge(current.fields, cmd.Fields)
		rawFields, err := json.Marshal(merged)
		if err != nil {
			return Submission{}, fmt.Errorf("encode fields: %w", err)
		}

		args := []any{id, StatusProcessed, cmd.DocType, rawCodes, rawFields}
		return repository.QueryOne(ctx, tx, q, args, scanSubmission)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("submission completed",
		"id", sub.ID,
		"doc_type", sub.DocType,
		"reason_codes", sub.ReasonCodes,
	)
	return &sub, nil
}

func (r *repo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	q := `
		UPDATE submissions
		SET status = $2, failure_reason = $3, updated_at = now()
		WHERE id = $1`

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		current, err := lockFields(ctx, tx, id)
		if err != nil {
			return struct{}{}, err
		}
		if !current.status.CanTransitionTo(StatusFailed) {
			return struct{}{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.status, StatusFailed)
		}
		if err := repository.ExecExpectOne(ctx, tx, q, id, StatusFailed, reason); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Warn("submission failed", "id", id, "reason", reason)
	return nil
}

func (r *repo) Approve(ctx context.Context, id uuid.UUID, actor string) (*Submission, error) {
	q := fmt.Sprintf(`
		UPDATE submissions
		SET status = $2, needs_review = false, approved_by = $3, approved_at = now(), updated_at = now()
		WHERE id = $1
		RETURNING %s`, returningColumns)

	sub, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Submission, error) {
		current, err := lockFields(ctx, tx, id)
		if err != nil {
			return Submission{}, err
		}
		if !current.status.CanTransitionTo(StatusApproved) {
			return Submission{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.status, StatusApproved)
		}

		args := []any{id, StatusApproved, actor}
		return repository.QueryOne(ctx, tx, q, args, scanSubmission)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("submission approved", "id", sub.ID, "actor", actor)
	return &sub, nil
}

func (r *repo) EditFields(ctx context.Context, id uuid.UUID, edits map[string]string) (*Submission, error) {
	for key := range edits {
		if !editableField(key) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, key)
		}
	}

	q := fmt.Sprintf(`
		UPDATE submissions
		SET fields = $2, updated_at = now()
		WHERE id = $1
		RETURNING %s`, returningColumns)

	sub, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Submission, error) {
		current, err := lockFields(ctx, tx, id)
		if err != nil {
			return Submission{}, err
		}

		fields := current.fields
		if fields == nil {
			fields = make(verify.FieldSet, len(edits))
		}
		for key, value := range edits {
			fields[key] = verify.Field{Value: value, Provenance: verify.ProvenanceManual}
		}

		rawFields, err := json.Marshal(fields)
		if err != nil {
			return Submission{}, fmt.Errorf("encode fields: %w", err)
		}

		return repository.QueryOne(ctx, tx, q, []any{id, rawFields}, scanSubmission)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("submission fields edited", "id", sub.ID, "keys", editKeys(edits))
	return &sub, nil
}

type lockedRow struct {
	status Status
	fields verify.FieldSet
}

// lockFields reads status and fields under FOR UPDATE so concurrent
// writers serialize on the row.
func lockFields(ctx context.Context, tx *sql.Tx, id uuid.UUID) (lockedRow, error) {
	q := `SELECT status, fields FROM submissions WHERE id = $1 FOR UPDATE`

	return repository.QueryOne(ctx, tx, q, []any{id}, func(s repository.Scanner) (lockedRow, error) {
		var (
			row lockedRow
			raw []byte
		)
		if err := s.Scan(&row.status, &raw); err != nil {
			return row, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &row.fields); err != nil {
				return row, fmt.Errorf("decode fields: %w", err)
			}
		}
		return row, nil
	})
}

func editableField(key string) bool {
	if key == verify.FieldBody {
		return true
	}
	return slices.Contains(classify.FieldLabels, classify.LabelKey(key))
}

func editKeys(edits map[string]string) []string {
	keys := make([]string, 0, len(edits))
	for key := range edits {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
