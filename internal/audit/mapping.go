package audit

import (
	"encoding/json"
	"fmt"

	"github.com/jbony2888/entryflow/pkg/query"
	"github.com/jbony2888/entryflow/pkg/repository"
)

var traceProjection = query.
	NewProjectionMap("public", "audit_traces", "t").
	Project("id", "ID").
	Project("submission_id", "SubmissionID").
	Project("attempt", "Attempt").
	Project("input", "Input").
	Project("signals", "Signals").
	Project("rules_applied", "RulesApplied").
	Project("outcome", "Outcome").
	Project("errors", "Errors").
	Project("created_at", "CreatedAt")

var eventProjection = query.
	NewProjectionMap("public", "audit_events", "e").
	Project("id", "ID").
	Project("submission_id", "SubmissionID").
	Project("event_type", "Type").
	Project("actor", "Actor").
	Project("detail", "Detail").
	Project("created_at", "CreatedAt")

var traceSort = query.SortField{Field: "Attempt"}

var eventSort = query.SortField{Field: "CreatedAt"}

func scanTrace(s repository.Scanner) (Trace, error) {
	var (
		t          Trace
		rawInput   []byte
		rawSignals []byte
		rawRules   []byte
		rawOutcome []byte
		rawErrors  []byte
	)

	if err := s.Scan(
		&t.ID,
		&t.SubmissionID,
		&t.Attempt,
		&rawInput,
		&rawSignals,
		&rawRules,
		&rawOutcome,
		&rawErrors,
		&t.CreatedAt,
	); err != nil {
		return t, err
	}

	for _, col := range []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"input", rawInput, &t.Input},
		{"signals", rawSignals, &t.Signals},
		{"rules_applied", rawRules, &t.RulesApplied},
		{"outcome", rawOutcome, &t.Outcome},
		{"errors", rawErrors, &t.Errors},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dst); err != nil {
			return t, fmt.Errorf("decode trace %s: %w", col.name, err)
		}
	}

	return t, nil
}

func scanEvent(s repository.Scanner) (Event, error) {
	var (
		e         Event
		rawDetail []byte
	)

	if err := s.Scan(
		&e.ID,
		&e.SubmissionID,
		&e.Type,
		&e.Actor,
		&rawDetail,
		&e.CreatedAt,
	); err != nil {
		return e, err
	}

	if len(rawDetail) > 0 {
		if err := json.Unmarshal(rawDetail, &e.Detail); err != nil {
			return e, fmt.Errorf("decode event detail: %w", err)
		}
	}

	return e, nil
}
