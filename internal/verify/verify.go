package verify

import (
	"strings"

	"github.com/jbony2888/entryflow/internal/classify"
	"github.com/jbony2888/entryflow/internal/signal"
)

// TypeProvenance records how the final document type was settled.
type TypeProvenance string

// Type provenance values. The final type is always the deterministic
// classification; the tag records whether the advisory signal agreed,
// was overridden, or never arrived.
const (
	TypeVerified   TypeProvenance = "verified"
	TypeOverridden TypeProvenance = "overridden"
	TypeFallback   TypeProvenance = "fallback"
)

// Outcome is the reconciled classification and field set for one
// processing attempt.
type Outcome struct {
	DocType        classify.DocType `json:"doc_type"`
	TypeProvenance TypeProvenance   `json:"type_provenance"`
	Discrepancy    bool             `json:"discrepancy"`
	Fields         FieldSet         `json:"fields"`
}

// Verify reconciles an advisory suggestion against deterministic features
// and rule-based extraction. Pure given its inputs: identical arguments
// always produce identical outcomes.
//
// The final document type is the deterministic classification. A
// suggested type that fails the agreement predicate is recorded as a
// discrepancy, never promoted. A suggested field value is accepted only
// when it is verifiable as a case- and diacritic-insensitive substring of
// the raw extracted text; otherwise rule extraction applies, and failing
// that the field is null.
func Verify(sug *signal.Suggestion, features classify.Features, rawText, metadata, body string) Outcome {
	deterministic := classify.Classify(features)

	out := Outcome{
		DocType: deterministic,
		Fields:  make(FieldSet, len(classify.FieldLabels)+1),
	}

	switch {
	case sug == nil:
		out.TypeProvenance = TypeFallback
	case agrees(sug.DocType, deterministic, features):
		out.TypeProvenance = TypeVerified
	default:
		out.TypeProvenance = TypeOverridden
		out.Discrepancy = true
	}

	ruleFields := ExtractFields(metadata)

	for _, key := range classify.FieldLabels {
		field := Field{Provenance: ProvenanceNull}

		if sug != nil {
			if value, ok := sug.Fields[string(key)]; ok && verifiable(rawText, value) {
				field = Field{Value: strings.TrimSpace(value), Provenance: ProvenanceAIVerified}
			}
		}
		if field.Provenance == ProvenanceNull {
			if value, ok := ruleFields[key]; ok {
				field = Field{Value: value, Provenance: ProvenanceRuleExtracted}
			}
		}

		out.Fields[string(key)] = field
	}

	if strings.TrimSpace(body) != "" {
		out.Fields[FieldBody] = Field{Value: body, Provenance: ProvenanceRuleExtracted}
	} else {
		out.Fields[FieldBody] = Field{Provenance: ProvenanceNull}
	}

	return out
}

// agrees is the explicit compatibility predicate between a suggested type
// and the deterministic one. Exact match agrees. One adjacency is
// tolerated: a filled form read deterministically as a labeled body when
// at least two distinct labels are present, since the two types share
// that boundary. Everything else is a discrepancy.
func agrees(suggested, deterministic classify.DocType, f classify.Features) bool {
	if suggested == deterministic {
		return true
	}
	if suggested == classify.DocFormFilled &&
		deterministic == classify.DocBodyWithHeader &&
		f.DistinctLabels >= 2 {
		return true
	}
	return false
}

// verifiable reports whether a suggested value appears verbatim in the
// raw text under case- and diacritic-insensitive comparison. Trivially
// short values are rejected.
func verifiable(rawText, value string) bool {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) < 2 {
		return false
	}
	return strings.Contains(classify.Fold(rawText), classify.Fold(trimmed))
}
