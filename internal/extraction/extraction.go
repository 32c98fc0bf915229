// Package extraction provides the pluggable text-extraction layer. Every
// provider satisfies the same failure-safe contract: Extract returns a
// Result and never an error. Provider failure degrades to an empty result
// with the Failed flag set so the pipeline can record it as a reason code
// instead of propagating an exception.
package extraction

import "context"

// RegionConfidence carries a per-region extraction confidence value.
type RegionConfidence struct {
	Region     string  `json:"region"`
	Confidence float64 `json:"confidence"`
}

// Result is the outcome of one extraction attempt on one page.
// Confidence is a bounded triage heuristic in [0,1], never a statistical
// accuracy claim.
type Result struct {
	Text       string             `json:"text"`
	Regions    []RegionConfidence `json:"regions,omitempty"`
	Confidence float64            `json:"confidence"`
	Failed     bool               `json:"failed"`
	Provider   string             `json:"provider"`
}

// Failure returns the degraded result a provider emits when it cannot
// extract anything.
func Failure(provider string) Result {
	return Result{Confidence: 0.0, Failed: true, Provider: provider}
}

// Adapter extracts text from a single designated page. Implementations
// must not return errors or panic; every failure mode degrades to a
// Result with Failed set. Multi-page handling is the caller's concern.
type Adapter interface {
	Extract(ctx context.Context, page Page) Result
}
