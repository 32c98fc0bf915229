package extraction

import "context"

// Stub returns a fixed result on every call. It backs the "stub" provider
// for deterministic environments and test doubles for pipeline tests.
type Stub struct {
	result Result
}

// NewStub creates an adapter that always returns result.
func NewStub(result Result) *Stub {
	return &Stub{result: result}
}

func (s *Stub) Extract(_ context.Context, _ Page) Result {
	return s.result
}
