package extension

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateExtension = errors.New("extension already registered")
	ErrExtensionDisabled  = errors.New("extension disabled")
)

// Phase names a step of a run.
type Phase string

const (
	PhaseInject      Phase = "inject"
	PhasePostProcess Phase = "post_process"
	PhaseTeardown    Phase = "teardown"
)

// PhaseError reports which phase of which extension failed.
type PhaseError struct {
	Extension string
	Phase     Phase
	Err       error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("extension %s: %s failed: %v", e.Extension, e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

// panicError turns a recovered value into an error.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
