package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func noopStep() *RegisteredStep {
	return &RegisteredStep{
		NewInput: func() any { return new(struct{}) },
		Fn: func(ctx context.Context, input *struct{}) (cty.Value, error) {
			return cty.NilVal, nil
		},
	}
}

func TestRegisterStep_AndLookup(t *testing.T) {
	t.Parallel()

	r := New()
	r.RegisterStep("exec", noopStep())

	step, ok := r.Step("exec")
	require.True(t, ok)
	require.NotNil(t, step.Fn)

	_, ok = r.Step("publish")
	require.False(t, ok)
}

func TestRegisterStep_DuplicateNamePanics(t *testing.T) {
	t.Parallel()

	r := New()
	r.RegisterStep("exec", noopStep())

	require.Panics(t, func() { r.RegisterStep("exec", noopStep()) })
}

func TestRegisterStep_MissingHandlerPanics(t *testing.T) {
	t.Parallel()

	r := New()

	require.Panics(t, func() { r.RegisterStep("exec", &RegisteredStep{}) })
}

func TestRegisterStep_NonFunctionHandlerPanics(t *testing.T) {
	t.Parallel()

	r := New()

	require.Panics(t, func() { r.RegisterStep("exec", &RegisteredStep{Fn: 42}) })
}

func TestStepNames(t *testing.T) {
	t.Parallel()

	r := New()
	r.RegisterStep("exec", noopStep())
	r.RegisterStep("clean", noopStep())

	require.ElementsMatch(t, []string{"exec", "clean"}, r.StepNames())
}
