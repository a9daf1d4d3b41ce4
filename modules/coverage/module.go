// Package coverage enforces a minimum line-coverage threshold from an LCOV
// tracefile produced by an instrumented test run.
package coverage

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/taskrig/taskrig/internal/ctxlog"
	"github.com/taskrig/taskrig/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the coverage step.
type Input struct {
	Tracefile string `hcl:"tracefile"`
	// Threshold is the minimum percentage of executed lines per source
	// file for the run to be considered complete.
	Threshold float64 `hcl:"threshold"`
}

// fileCoverage holds per-file line counters from the tracefile.
type fileCoverage struct {
	File  string
	Found int
	Hit   int
}

// Percent returns the line-coverage percentage. A file with no
// instrumentable lines counts as fully covered.
func (c fileCoverage) Percent() float64 {
	if c.Found == 0 {
		return 100
	}
	return float64(c.Hit) / float64(c.Found) * 100
}

// parseTracefile reads the SF/LF/LH records of an LCOV tracefile.
func parseTracefile(path string) ([]fileCoverage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tracefile '%s': %w", path, err)
	}
	defer f.Close()

	var files []fileCoverage
	var current *fileCoverage

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "SF:"):
			files = append(files, fileCoverage{File: strings.TrimPrefix(line, "SF:")})
			current = &files[len(files)-1]
		case strings.HasPrefix(line, "LF:"):
			if current == nil {
				return nil, fmt.Errorf("malformed tracefile '%s': LF record before SF", path)
			}
			current.Found, err = strconv.Atoi(strings.TrimPrefix(line, "LF:"))
			if err != nil {
				return nil, fmt.Errorf("malformed tracefile '%s': %w", path, err)
			}
		case strings.HasPrefix(line, "LH:"):
			if current == nil {
				return nil, fmt.Errorf("malformed tracefile '%s': LH record before SF", path)
			}
			current.Hit, err = strconv.Atoi(strings.TrimPrefix(line, "LH:"))
			if err != nil {
				return nil, fmt.Errorf("malformed tracefile '%s': %w", path, err)
			}
		case line == "end_of_record":
			current = nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return files, nil
}

// OnRunCoverage is the handler for the 'coverage' step. Every source file
// below the threshold is reported in a single error, not just the first.
func OnRunCoverage(ctx context.Context, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := parseTracefile(input.Tracefile)
	if err != nil {
		return cty.NilVal, err
	}
	if len(files) == 0 {
		return cty.NilVal, fmt.Errorf("tracefile '%s' contains no coverage records", input.Tracefile)
	}

	var below []string
	totalFound, totalHit := 0, 0
	for _, fc := range files {
		totalFound += fc.Found
		totalHit += fc.Hit
		if fc.Percent() < input.Threshold {
			below = append(below, fmt.Sprintf("%s (%.1f%%)", fc.File, fc.Percent()))
		}
		logger.Debug("File coverage.", "file", fc.File, "percent", fc.Percent())
	}

	total := fileCoverage{Found: totalFound, Hit: totalHit}.Percent()
	logger.Info("Coverage computed", "files", len(files), "total_percent", total, "threshold", input.Threshold)

	if len(below) > 0 {
		return cty.NilVal, fmt.Errorf("coverage below %.1f%% threshold for: %s", input.Threshold, strings.Join(below, ", "))
	}

	return cty.ObjectVal(map[string]cty.Value{
		"total_percent": cty.NumberFloatVal(total),
		"files":         cty.NumberIntVal(int64(len(files))),
	}), nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("coverage", &registry.RegisteredStep{
		NewInput: func() any { return new(Input) },
		Fn:       OnRunCoverage,
	})
}
