// Package registry holds the explicit mapping from step type name to its Go
// handler. Step implementations register themselves here at startup; there
// is no discovery by naming convention.
package registry

import (
	"fmt"
	"reflect"
)

// Module is the interface every step package implements to be registered.
type Module interface {
	Register(r *Registry)
}

// RegisteredStep holds the compiled Go parts of a step handler.
//
// Fn must have the signature
//
//	func(ctx context.Context, input *T) (cty.Value, error)
//
// where *T is the value produced by NewInput. The runner decodes the step's
// HCL body into the input struct before calling Fn.
type RegisteredStep struct {
	NewInput func() any
	Fn       any
}

// Registry holds all registered step handlers for a single application
// instance.
type Registry struct {
	steps map[string]*RegisteredStep
}

// New creates an initialized, empty Registry.
func New() *Registry {
	return &Registry{steps: make(map[string]*RegisteredStep)}
}

// RegisterStep registers a Go handler for a step type. Registering a
// duplicate name is a programmer error and panics.
func (r *Registry) RegisterStep(name string, step *RegisteredStep) {
	if _, exists := r.steps[name]; exists {
		panic(fmt.Sprintf("step handler with name '%s' already registered", name))
	}
	if step.Fn == nil {
		panic(fmt.Sprintf("step handler '%s' has no handler function", name))
	}
	if kind := reflect.TypeOf(step.Fn).Kind(); kind != reflect.Func {
		panic(fmt.Sprintf("step handler '%s' is not a function: %s", name, kind))
	}
	r.steps[name] = step
}

// Step looks up the handler for a step type.
func (r *Registry) Step(name string) (*RegisteredStep, bool) {
	step, ok := r.steps[name]
	return step, ok
}

// StepNames returns the registered step type names, unordered.
func (r *Registry) StepNames() []string {
	names := make([]string, 0, len(r.steps))
	for name := range r.steps {
		names = append(names, name)
	}
	return names
}
