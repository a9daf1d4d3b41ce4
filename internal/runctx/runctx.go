// Package runctx carries per-run information through context.Context.
//
// The runner records the originally requested top-level task before any
// action executes, so step handlers can branch on "was test mode requested"
// without consulting ambient globals.
package runctx

import "context"

// Info describes a single top-level run. It is written once by the runner
// and read-only afterwards.
type Info struct {
	// Task is the task name requested at the CLI.
	Task string
	// CI reports whether the process is running under continuous
	// integration (the CI environment variable).
	CI bool
	// TestMode reports whether the requested task is the test task.
	// Compile steps with keep_going set use this to defer failures
	// instead of aborting the run.
	TestMode bool
}

type key struct{}

var infoKey = key{}

// WithInfo returns a new context carrying the run info.
func WithInfo(ctx context.Context, info Info) context.Context {
	return context.WithValue(ctx, infoKey, info)
}

// FromContext extracts the run info from a context. The zero Info is
// returned when none was recorded, which behaves as "not test mode".
func FromContext(ctx context.Context) Info {
	if info, ok := ctx.Value(infoKey).(Info); ok {
		return info
	}
	return Info{}
}
