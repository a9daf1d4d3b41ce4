// Package rigfile loads task declarations ("rig files") from HCL into the
// model consumed by the graph builder and runner.
package rigfile

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/taskrig/taskrig/internal/ctxlog"
)

// fileRoot decodes all top-level blocks recognized in any rig file.
type fileRoot struct {
	Tasks []*taskBlock `hcl:"task,block"`
}

type taskBlock struct {
	Name  string       `hcl:"name,label"`
	Deps  []string     `hcl:"deps,optional"`
	Steps []*stepBlock `hcl:"step,block"`
}

type stepBlock struct {
	Type      string   `hcl:"type,label"`
	KeepGoing bool     `hcl:"keep_going,optional"`
	Body      hcl.Body `hcl:",remain"`
}

// Loader parses rig files into a Model.
type Loader struct{}

// NewLoader creates a new rig file loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file reachable from the given paths and merges the
// declared tasks into a single model. A path may be a single file or a
// directory walked recursively. A later declaration of an existing task
// name overwrites the earlier one.
func (l *Loader) Load(ctx context.Context, paths ...string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Rig file loader started.", "path_count", len(paths))

	files, err := findRigFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no rig files found under %v", paths)
	}
	logger.Debug("Discovered rig files.", "count", len(files))

	model := &Model{Tasks: make(map[string]*Task)}
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse rig file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode rig file %s: %w", file, diags)
		}

		for _, block := range root.Tasks {
			task := translateTask(block, file)
			if _, exists := model.Tasks[task.Name]; !exists {
				model.Order = append(model.Order, task.Name)
			} else {
				logger.Debug("Task redeclared, overwriting earlier declaration.", "task", task.Name, "file", file)
			}
			model.Tasks[task.Name] = task
		}
	}

	logger.Debug("Rig file loading complete.", "tasks", len(model.Tasks))
	return model, nil
}

func translateTask(block *taskBlock, file string) *Task {
	task := &Task{
		Name: block.Name,
		Deps: append([]string(nil), block.Deps...),
	}
	for _, sb := range block.Steps {
		task.Steps = append(task.Steps, &Step{
			Type:      sb.Type,
			KeepGoing: sb.KeepGoing,
			Body:      sb.Body,
			DeclFile:  file,
		})
	}
	return task
}

// findRigFiles walks all given paths and returns a deduplicated, flat list
// of .hcl files. A missing path is not an error; absent optional config
// directories are simply skipped.
func findRigFiles(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})

	add := func(p string) {
		if _, dup := seen[p]; !dup {
			all = append(all, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if filepath.Ext(path) == ".hcl" {
				add(path)
			}
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(p) == ".hcl" {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return all, nil
}
