package runner

import (
	"fmt"
	"strings"
)

// StepError reports a failed step action with enough context to identify
// the failing task and the underlying tool's message.
type StepError struct {
	Task string
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("task %q: step %q: %v", e.Task, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// DeferredFailure is returned when a run flagged failures but continued to
// completion: a compile step with keep_going set failed while the test task
// was requested. The process exits with a distinguished code so CI can tell
// "compiled with errors, tests still streamed" apart from a hard failure.
type DeferredFailure struct {
	Errs []error
}

func (e *DeferredFailure) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("run completed with %d deferred failure(s): %s", len(e.Errs), strings.Join(msgs, "; "))
}

func (e *DeferredFailure) Unwrap() []error { return e.Errs }
