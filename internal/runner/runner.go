// Package runner executes a requested task against the task graph: it
// resolves the transitive prerequisite order, then runs each task's steps
// strictly sequentially, aborting on the first failure.
package runner

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/zclconf/go-cty/cty"

	"github.com/taskrig/taskrig/internal/ctxlog"
	"github.com/taskrig/taskrig/internal/graph"
	"github.com/taskrig/taskrig/internal/memo"
	"github.com/taskrig/taskrig/internal/registry"
	"github.com/taskrig/taskrig/internal/rigfile"
	"github.com/taskrig/taskrig/internal/runctx"
)

// TestTask is the task name whose request puts the run into test mode.
const TestTask = "test"

// Runner binds a loaded model to the step registry and executes tasks.
type Runner struct {
	model *rigfile.Model
	reg   *registry.Registry
	graph *graph.Graph

	// Derived environment values are computed lazily, at most once per
	// Runner, during the single-threaded execution phase.
	envVars *memo.Value[cty.Value]
	ci      *memo.Value[bool]
}

// New builds a Runner and its dependency graph from the loaded model.
func New(model *rigfile.Model, reg *registry.Registry) *Runner {
	g := graph.New()
	for _, name := range model.Order {
		task := model.Tasks[name]
		g.Add(task.Name, task.Deps)
	}
	return &Runner{
		model:   model,
		reg:     reg,
		graph:   g,
		envVars: memo.New(environMap),
		ci:      memo.New(ciFlag),
	}
}

// Graph exposes the built task graph, primarily for task listing.
func (r *Runner) Graph() *graph.Graph {
	return r.graph
}

// Run executes the named task and every transitive prerequisite, each
// exactly once, every prerequisite before any task that depends on it.
//
// Resolution happens before any action runs, so an unknown task or a cycle
// performs no side effects. A failing step aborts the remaining sequence,
// except steps marked keep_going while the test task was requested: those
// failures are deferred, the run continues to completion, and the deferred
// failures surface as a *DeferredFailure.
func (r *Runner) Run(ctx context.Context, taskName string) error {
	logger := ctxlog.FromContext(ctx)

	order, err := r.graph.Resolve(taskName)
	if err != nil {
		return err
	}
	logger.Debug("Task order resolved.", "task", taskName, "order", order)

	info := runctx.Info{
		Task:     taskName,
		CI:       r.ci.Get(),
		TestMode: taskName == TestTask,
	}
	ctx = runctx.WithInfo(ctx, info)

	var deferred []error
	for _, name := range order {
		task := r.model.Tasks[name]
		if len(task.Steps) == 0 {
			logger.Debug("Grouping task, nothing to execute.", "task", name)
			continue
		}
		for _, step := range task.Steps {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := r.executeStep(ctx, task, step)
			if err == nil {
				continue
			}
			if step.KeepGoing && info.TestMode {
				logger.Error("Step failed, continuing in test mode.", "task", name, "step", step.Type, "error", err)
				deferred = append(deferred, err)
				continue
			}
			return err
		}
	}

	if len(deferred) > 0 {
		return &DeferredFailure{Errs: deferred}
	}
	return nil
}

// executeStep decodes the step's arguments and invokes its registered
// handler.
func (r *Runner) executeStep(ctx context.Context, task *rigfile.Task, step *rigfile.Step) error {
	logger := ctxlog.FromContext(ctx).With("task", task.Name, "step", step.Type)
	logger.Info("▶️ Starting step")

	handler, ok := r.reg.Step(step.Type)
	if !ok {
		return &StepError{Task: task.Name, Step: step.Type, Err: fmt.Errorf("unknown step type '%s' (declared in %s)", step.Type, step.DeclFile)}
	}

	var input any
	if handler.NewInput != nil {
		input = handler.NewInput()
	}
	if input != nil && step.Body != nil {
		if diags := gohcl.DecodeBody(step.Body, r.buildEvalContext(), input); diags.HasErrors() {
			return &StepError{Task: task.Name, Step: step.Type, Err: diags}
		}
	}

	handlerFunc := reflect.ValueOf(handler.Fn)
	callArgs := []reflect.Value{reflect.ValueOf(ctx)}
	if input == nil {
		callArgs = append(callArgs, reflect.Zero(handlerFunc.Type().In(1)))
	} else {
		callArgs = append(callArgs, reflect.ValueOf(input))
	}

	results := handlerFunc.Call(callArgs)
	output, errResult := results[0].Interface(), results[1].Interface()
	if errResult != nil {
		return &StepError{Task: task.Name, Step: step.Type, Err: errResult.(error)}
	}

	if ctyOutput, ok := output.(cty.Value); ok {
		logger.Debug("Step output.", "data", ctyOutput.GoString())
	}

	logger.Info("✅ Finished step")
	return nil
}
