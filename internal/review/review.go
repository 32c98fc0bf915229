// Package review evaluates validation rules over a reconciled field set
// and produces the review decision. There is no automatic clean terminal
// state: every record needs review until an explicit human approval, and
// the default pending code records that when nothing else applies.
package review

import (
	"fmt"
	"strings"

	"github.com/jbony2888/entryflow/internal/classify"
	"github.com/jbony2888/entryflow/internal/extraction"
	"github.com/jbony2888/entryflow/internal/verify"
)

// ReasonCode labels why a record requires review. The set is closed;
// nothing outside these constants ever reaches persistence.
type ReasonCode string

// Reason codes.
const (
	CodeMissingSubjectName ReasonCode = "MISSING_SUBJECT_NAME"
	CodeMissingOrgName     ReasonCode = "MISSING_ORG_NAME"
	CodeMissingLevel       ReasonCode = "MISSING_LEVEL"
	CodeEmptyBody          ReasonCode = "EMPTY_BODY"
	CodeShortBody          ReasonCode = "SHORT_BODY"
	CodeLowConfidence      ReasonCode = "LOW_CONFIDENCE"
	CodeExtractionFailed   ReasonCode = "EXTRACTION_FAILED"
	CodeEscalated          ReasonCode = "ESCALATED"
	CodePendingReview      ReasonCode = "PENDING_REVIEW"
)

// Confidence thresholds. Escalation is the stricter sub-threshold used
// for priority routing.
const (
	LowConfidenceThreshold = 0.5
	EscalationThreshold    = 0.3
)

// ShortBodyWords is the word count below which a non-empty body is flagged.
const ShortBodyWords = 50

// RuleResult records one evaluated rule, triggered or not, so the audit
// trace can show every rule that ran.
type RuleResult struct {
	Rule      string `json:"rule"`
	Triggered bool   `json:"triggered"`
	Detail    string `json:"detail,omitempty"`
}

// Outcome is the review decision for one processing attempt.
type Outcome struct {
	NeedsReview  bool         `json:"needs_review"`
	ReasonCodes  []ReasonCode `json:"reason_codes"`
	RulesApplied []RuleResult `json:"rules_applied"`
}

// Evaluate runs every rule against the field set and extraction result.
// Rules are never short-circuited: each one is applied and recorded even
// when earlier rules already triggered. NeedsReview is unconditionally
// true; only the explicit approval action clears it.
func Evaluate(fields verify.FieldSet, ext extraction.Result) Outcome {
	wordCount := len(strings.Fields(fields.Value(verify.FieldBody)))

	rules := []struct {
		code      ReasonCode
		triggered bool
		detail    string
	}{
		{CodeMissingSubjectName, fields.Value(string(classify.LabelName)) == "", "required field absent"},
		{CodeMissingOrgName, fields.Value(string(classify.LabelSchool)) == "", "required field absent"},
		{CodeMissingLevel, fields.Value(string(classify.LabelGrade)) == "", "required field absent"},
		{CodeEmptyBody, wordCount == 0, "body word count is zero"},
		{CodeShortBody, wordCount > 0 && wordCount < ShortBodyWords, fmt.Sprintf("body word count %d below %d", wordCount, ShortBodyWords)},
		{CodeExtractionFailed, ext.Failed, "extraction provider reported failure"},
		{CodeLowConfidence, ext.Confidence < LowConfidenceThreshold, fmt.Sprintf("confidence %.2f below %.2f", ext.Confidence, LowConfidenceThreshold)},
		{CodeEscalated, ext.Confidence < EscalationThreshold, fmt.Sprintf("confidence %.2f below %.2f", ext.Confidence, EscalationThreshold)},
	}

	out := Outcome{
		NeedsReview:  true,
		ReasonCodes:  make([]ReasonCode, 0, len(rules)),
		RulesApplied: make([]RuleResult, 0, len(rules)+1),
	}

	for _, r := range rules {
		result := RuleResult{Rule: string(r.code), Triggered: r.triggered}
		if r.triggered {
			result.Detail = r.detail
			out.ReasonCodes = append(out.ReasonCodes, r.code)
		}
		out.RulesApplied = append(out.RulesApplied, result)
	}

	if len(out.ReasonCodes) == 0 {
		out.ReasonCodes = append(out.ReasonCodes, CodePendingReview)
		out.RulesApplied = append(out.RulesApplied, RuleResult{
			Rule:      string(CodePendingReview),
			Triggered: true,
			Detail:    "no field-level issue; approval is never implicit",
		})
	}

	return out
}
