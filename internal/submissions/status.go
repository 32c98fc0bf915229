package submissions

import "strings"

// Status is the lifecycle state of a submission. There is no clean
// terminal state reachable by the pipeline alone: APPROVED requires an
// explicit human action.
type Status string

// Submission statuses.
const (
	StatusPendingReview Status = "PENDING_REVIEW"
	StatusProcessed     Status = "PROCESSED"
	StatusApproved      Status = "APPROVED"
	StatusFailed        Status = "FAILED"
)

// CanTransitionTo reports whether the transition from s to target is
// legal. APPROVED is terminal. FAILED may return to PROCESSED when a
// later attempt succeeds after infrastructure recovery.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPendingReview:
		return target == StatusProcessed || target == StatusApproved || target == StatusFailed
	case StatusProcessed:
		return target == StatusApproved || target == StatusFailed
	case StatusFailed:
		return target == StatusProcessed || target == StatusFailed
	default:
		return false
	}
}

// ParseStatus normalizes a string to a known status. Unknown values
// return false.
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusPendingReview:
		return StatusPendingReview, true
	case StatusProcessed:
		return StatusProcessed, true
	case StatusApproved:
		return StatusApproved, true
	case StatusFailed:
		return StatusFailed, true
	default:
		return "", false
	}
}
