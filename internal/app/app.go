package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/taskrig/taskrig/internal/ctxlog"
	"github.com/taskrig/taskrig/internal/registry"
	"github.com/taskrig/taskrig/internal/rigfile"
	"github.com/taskrig/taskrig/internal/runner"
)

// Loader abstracts the rig file format from the application.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*rigfile.Model, error)
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	model    *rigfile.Model
	runner   *runner.Runner
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Failure to load the rig files is a fatal startup error and panics; the
// CLI entrypoint recovers it into a clean exit message.
func NewApp(outW io.Writer, cfg *Config, loader Loader, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, cfg.RigPath)
	if err != nil {
		panic(fmt.Errorf("failed to load rig files: %w", err))
	}
	logger.Debug("Rig files loaded into unified model.", "tasks", len(model.Tasks))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All step modules registered.", "count", len(modules), "steps", reg.StepNames())

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		model:    model,
		runner:   runner.New(model, reg),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded task model. This is primarily for testing.
func (a *App) Model() *rigfile.Model {
	return a.model
}
