package submissions

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jbony2888/entryflow/pkg/query"
	"github.com/jbony2888/entryflow/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "submissions", "s").
	Project("id", "ID").
	Project("fingerprint", "Fingerprint").
	Project("filename", "Filename").
	Project("size_bytes", "SizeBytes").
	Project("owner", "Owner").
	Project("status", "Status").
	Project("needs_review", "NeedsReview").
	Project("doc_type", "DocType").
	Project("reason_codes", "ReasonCodes").
	Project("fields", "Fields").
	Project("failure_reason", "FailureReason").
	Project("approved_by", "ApprovedBy").
	Project("approved_at", "ApprovedAt").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for submission queries.
// Nil fields are ignored. Filename uses case-insensitive contains
// matching; the rest use exact matching.
type Filters struct {
	Status      *string `json:"status,omitempty"`
	Filename    *string `json:"filename,omitempty"`
	Owner       *string `json:"owner,omitempty"`
	Fingerprint *string `json:"fingerprint,omitempty"`
	DocType     *string `json:"doc_type,omitempty"`
	NeedsReview *bool   `json:"needs_review,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereContains("Filename", f.Filename).
		WhereEquals("Owner", f.Owner).
		WhereEquals("Fingerprint", f.Fingerprint).
		WhereEquals("DocType", f.DocType).
		WhereEquals("NeedsReview", f.NeedsReview)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		if status, ok := ParseStatus(s); ok {
			v := string(status)
			f.Status = &v
		}
	}

	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}

	if o := values.Get("owner"); o != "" {
		f.Owner = &o
	}

	if fp := values.Get("fingerprint"); fp != "" {
		f.Fingerprint = &fp
	}

	if dt := values.Get("doc_type"); dt != "" {
		f.DocType = &dt
	}

	if nr := values.Get("needs_review"); nr != "" {
		if v, err := strconv.ParseBool(nr); err == nil {
			f.NeedsReview = &v
		}
	}

	return f
}

func scanSubmission(s repository.Scanner) (Submission, error) {
	var (
		sub       Submission
		rawCodes  []byte
		rawFields []byte
	)

	if err := s.Scan(
		&sub.ID,
		&sub.Fingerprint,
		&sub.Filename,
		&sub.SizeBytes,
		&sub.Owner,
		&sub.Status,
		&sub.NeedsReview,
		&sub.DocType,
		&rawCodes,
		&rawFields,
		&sub.FailureReason,
		&sub.ApprovedBy,
		&sub.ApprovedAt,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	); err != nil {
		return sub, err
	}

	if len(rawCodes) > 0 {
		if err := json.Unmarshal(rawCodes, &sub.ReasonCodes); err != nil {
			return sub, fmt.Errorf("decode reason codes: %w", err)
		}
	}
	if len(rawFields) > 0 {
		if err := json.Unmarshal(rawFields, &sub.Fields); err != nil {
			return sub, fmt.Errorf("decode fields: %w", err)
		}
	}

	return sub, nil
}
