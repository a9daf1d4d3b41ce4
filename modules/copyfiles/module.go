// Package copyfiles copies built artifacts into a destination directory,
// e.g. compiled output into the project root for distribution.
package copyfiles

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/zclconf/go-cty/cty"

	"github.com/taskrig/taskrig/internal/ctxlog"
	"github.com/taskrig/taskrig/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the copy step.
type Input struct {
	Sources []string `hcl:"sources"`
	Dest    string   `hcl:"dest"`
}

// OnRunCopy is the handler for the 'copy' step. Matched files keep their
// base names under the destination directory.
func OnRunCopy(ctx context.Context, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	if err := os.MkdirAll(input.Dest, 0755); err != nil {
		return cty.NilVal, fmt.Errorf("failed to create destination '%s': %w", input.Dest, err)
	}

	copied := 0
	for _, pattern := range input.Sources {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return cty.NilVal, fmt.Errorf("invalid glob pattern '%s': %w", pattern, err)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return cty.NilVal, err
			}
			if info.IsDir() {
				continue
			}
			dest := filepath.Join(input.Dest, filepath.Base(match))
			if err := copyFile(match, dest, info.Mode()); err != nil {
				return cty.NilVal, fmt.Errorf("failed to copy '%s' to '%s': %w", match, dest, err)
			}
			logger.Debug("Copied file.", "source", match, "dest", dest)
			copied++
		}
	}

	logger.Info("Copy finished", "copied", copied, "dest", input.Dest)
	return cty.ObjectVal(map[string]cty.Value{
		"copied": cty.NumberIntVal(int64(copied)),
	}), nil
}

func copyFile(src, dest string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("copy", &registry.RegisteredStep{
		NewInput: func() any { return new(Input) },
		Fn:       OnRunCopy,
	})
}
