// Package execstep runs an external command as a build step. Compilers,
// linters, test runners and documentation generators are all invoked
// through it; the step only observes success or failure.
package execstep

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/zclconf/go-cty/cty"

	"github.com/taskrig/taskrig/internal/ctxlog"
	"github.com/taskrig/taskrig/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the exec step.
type Input struct {
	Command string            `hcl:"command"`
	Args    []string          `hcl:"args,optional"`
	Dir     string            `hcl:"dir,optional"`
	Env     map[string]string `hcl:"env,optional"`
}

// OnRunExec is the handler for the 'exec' step. The command's output streams
// to the process's own stdout/stderr; the step does not complete until the
// command has fully drained both.
func OnRunExec(ctx context.Context, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx).With("command", input.Command)
	logger.Info("Running command", "args", input.Args)

	cmd := exec.CommandContext(ctx, input.Command, input.Args...)
	cmd.Dir = input.Dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	for k, v := range input.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	if err := cmd.Run(); err != nil {
		return cty.NilVal, fmt.Errorf("command '%s' failed: %w", input.Command, err)
	}

	logger.Debug("Command finished.")
	return cty.ObjectVal(map[string]cty.Value{
		"exit_code": cty.NumberIntVal(0),
	}), nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("exec", &registry.RegisteredStep{
		NewInput: func() any { return new(Input) },
		Fn:       OnRunExec,
	})
}
