package rigfile

import "github.com/hashicorp/hcl/v2"

// Model is the loaded, format-agnostic task declaration set. It is built
// once at startup and never mutated afterwards.
type Model struct {
	// Tasks maps task name to its declaration. Redeclaring a name during
	// loading overwrites the earlier declaration.
	Tasks map[string]*Task
	// Order preserves first-declaration order across all loaded files.
	Order []string
}

// Task is a named, possibly-dependent unit of build work. A task with no
// steps is a pure grouping node: its prerequisites run, nothing else.
type Task struct {
	Name  string
	Deps  []string
	Steps []*Step
}

// Step is one invocation of a registered step type. The argument body stays
// raw HCL until execution time, when the runner decodes it into the
// handler's input struct against the run's eval context.
type Step struct {
	Type string
	// KeepGoing marks a step whose failure is deferred instead of aborting
	// the run when the top-level task is the test task.
	KeepGoing bool
	Body      hcl.Body
	// DeclFile is the rig file the step was declared in, for error context.
	DeclFile string
}
