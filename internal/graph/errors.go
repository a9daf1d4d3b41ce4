package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownTask is returned when a requested or referenced task name
	// has not been declared.
	ErrUnknownTask = errors.New("unknown task")
	// ErrCycle is returned when the prerequisite graph is not acyclic.
	ErrCycle = errors.New("cyclic dependency")
)

// Error wraps graph validation failures with the offending detail.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func unknownTask(name string) error {
	return &Error{Kind: ErrUnknownTask, Msg: fmt.Sprintf("%q is not declared", name)}
}

func cycleError(path []string) error {
	return &Error{Kind: ErrCycle, Msg: strings.Join(path, " -> ")}
}
