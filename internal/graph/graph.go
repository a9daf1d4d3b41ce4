// Package graph models the build-task dependency graph and resolves the
// execution order for a requested task.
package graph

import (
	"sort"
	"sync"
)

// Graph is a mapping from task name to its ordered prerequisite list.
// All operations on the graph are concurrency-safe, though a run resolves
// and executes on a single goroutine.
type Graph struct {
	mutex sync.RWMutex
	nodes map[string]*node
	// order preserves first-declaration order for listing.
	order []string
}

// node represents a single task vertex. Prerequisites keep their declared
// order; resolution order depends on it.
type node struct {
	name string
	deps []string
}

// New creates an initialized, empty Graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*node)}
}

// Add declares a task with its prerequisites. Redeclaring an existing name
// overwrites its prerequisite list; the task keeps its original position in
// the listing order.
func (g *Graph) Add(name string, deps []string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, exists := g.nodes[name]; !exists {
		g.order = append(g.order, name)
	}
	g.nodes[name] = &node{name: name, deps: append([]string(nil), deps...)}
}

// Names returns all declared task names, sorted.
func (g *Graph) Names() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	names := make([]string, len(g.order))
	copy(names, g.order)
	sort.Strings(names)
	return names
}

// Dependencies returns the declared prerequisite list for a task.
func (g *Graph) Dependencies(name string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[name]
	if !ok {
		return nil, unknownTask(name)
	}
	return append([]string(nil), n.deps...), nil
}

// Resolve computes the execution order for the named task: the transitive
// closure of its prerequisites, each visited exactly once in declaration
// order (first visit wins on diamond dependencies), every prerequisite
// before any task that depends on it, the requested task last.
//
// A cycle anywhere in the reachable subgraph is reported as ErrCycle with
// the offending path; no partial order is returned.
func (g *Graph) Resolve(name string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	if _, ok := g.nodes[name]; !ok {
		return nil, unknownTask(name)
	}

	// Classic DFS with a recursion-stack set for cycle detection. The
	// stack slice doubles as the reported cycle path.
	visited := make(map[string]bool, len(g.nodes))
	inStack := make(map[string]bool)
	var stack []string
	var resolved []string

	var visit func(taskName string) error
	visit = func(taskName string) error {
		if visited[taskName] {
			return nil
		}
		if inStack[taskName] {
			return cycleError(append(stack, taskName))
		}

		n, ok := g.nodes[taskName]
		if !ok {
			return unknownTask(taskName)
		}

		inStack[taskName] = true
		stack = append(stack, taskName)

		for _, dep := range n.deps {
			if err := visit(dep); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		delete(inStack, taskName)
		visited[taskName] = true
		resolved = append(resolved, taskName)
		return nil
	}

	if err := visit(name); err != nil {
		return nil, err
	}
	return resolved, nil
}
