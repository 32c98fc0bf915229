// Package verify reconciles the advisory AI signal with deterministic
// features and rule-based extraction. It is the sole source of truth for
// final document types and field values; the AI signal never becomes
// authoritative without passing verification here.
package verify

// Provenance records where a field value came from.
type Provenance string

// Provenance tags. ProvenanceManual is only ever set by a human edit
// outside this package; the verifier preserves it and never assigns it.
const (
	ProvenanceAIVerified    Provenance = "ai_verified"
	ProvenanceRuleExtracted Provenance = "rule_extracted"
	ProvenanceManual        Provenance = "manual"
	ProvenanceNull          Provenance = "null"
)

// FieldBody is the FieldSet key carrying the essay body text.
const FieldBody = "body"

// Field is a single extracted value with its provenance tag.
type Field struct {
	Value      string     `json:"value"`
	Provenance Provenance `json:"provenance"`
}

// FieldSet maps semantic field keys to provenance-tagged values.
type FieldSet map[string]Field

// Value returns the field value, or empty when the field is absent or null.
func (fs FieldSet) Value(key string) string {
	f, ok := fs[key]
	if !ok || f.Provenance == ProvenanceNull {
		return ""
	}
	return f.Value
}

// Merge overlays next onto existing with manual-edit protection: a field
// whose existing provenance is manual survives every later pass,
// including bulk defaults. The inputs are not mutated.
func Merge(existing, next FieldSet) FieldSet {
	merged := make(FieldSet, len(next)+len(existing))
	for key, f := range next {
		merged[key] = f
	}
	for key, f := range existing {
		if f.Provenance == ProvenanceManual {
			merged[key] = f
		}
	}
	return merged
}
