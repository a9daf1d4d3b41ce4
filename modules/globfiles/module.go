// Package globfiles expands `**`-style file patterns into sorted file
// lists for downstream steps.
package globfiles

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/zclconf/go-cty/cty"

	"github.com/taskrig/taskrig/internal/ctxlog"
	"github.com/taskrig/taskrig/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// cache memoizes expansion results per pattern set. Steps run strictly
	// sequentially, so no locking is needed; the cache lives for the
	// process, matching the single-pass run model.
	cache map[string][]string
}

// Input defines the arguments for the glob step.
type Input struct {
	Patterns []string `hcl:"patterns"`
}

// Expand resolves the given patterns against the working directory,
// deduplicated and sorted. Results are computed at most once per pattern
// set.
func (m *Module) Expand(patterns []string) ([]string, error) {
	key := strings.Join(patterns, "\x00")
	if cached, ok := m.cache[key]; ok {
		return cached, nil
	}

	seen := make(map[string]struct{})
	var matches []string
	for _, pattern := range patterns {
		found, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern '%s': %w", pattern, err)
		}
		for _, f := range found {
			if _, dup := seen[f]; !dup {
				seen[f] = struct{}{}
				matches = append(matches, f)
			}
		}
	}
	sort.Strings(matches)

	if m.cache == nil {
		m.cache = make(map[string][]string)
	}
	m.cache[key] = matches
	return matches, nil
}

// onRunGlob is the handler for the 'glob' step.
func (m *Module) onRunGlob(ctx context.Context, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	matches, err := m.Expand(input.Patterns)
	if err != nil {
		return cty.NilVal, err
	}
	logger.Info("Expanded glob patterns", "patterns", input.Patterns, "matches", len(matches))

	vals := make([]cty.Value, len(matches))
	for i, match := range matches {
		vals[i] = cty.StringVal(match)
	}
	if len(vals) == 0 {
		return cty.ObjectVal(map[string]cty.Value{
			"files": cty.ListValEmpty(cty.String),
		}), nil
	}
	return cty.ObjectVal(map[string]cty.Value{
		"files": cty.ListVal(vals),
	}), nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("glob", &registry.RegisteredStep{
		NewInput: func() any { return new(Input) },
		Fn:       m.onRunGlob,
	})
}
