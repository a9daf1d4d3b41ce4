// Package clean deletes build artifacts matched by file patterns. The step
// is idempotent: paths that are already gone are not an error.
package clean

import (
	"context"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/zclconf/go-cty/cty"

	"github.com/taskrig/taskrig/internal/ctxlog"
	"github.com/taskrig/taskrig/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the clean step.
type Input struct {
	Paths []string `hcl:"paths"`
}

// OnRunClean is the handler for the 'clean' step.
func OnRunClean(ctx context.Context, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	removed := 0
	for _, pattern := range input.Paths {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return cty.NilVal, fmt.Errorf("invalid glob pattern '%s': %w", pattern, err)
		}
		for _, match := range matches {
			logger.Debug("Removing path.", "path", match)
			if err := os.RemoveAll(match); err != nil {
				return cty.NilVal, fmt.Errorf("failed to remove '%s': %w", match, err)
			}
			removed++
		}
	}

	logger.Info("Clean finished", "removed", removed)
	return cty.ObjectVal(map[string]cty.Value{
		"removed": cty.NumberIntVal(int64(removed)),
	}), nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("clean", &registry.RegisteredStep{
		NewInput: func() any { return new(Input) },
		Fn:       OnRunClean,
	})
}
