package app

import (
	"context"
	"fmt"

	"github.com/taskrig/taskrig/internal/ctxlog"
)

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if cfg.ListTasks {
		for _, name := range a.runner.Graph().Names() {
			fmt.Fprintln(a.outW, name)
		}
		return nil
	}

	a.logger.Info("🚀 Starting run.", "task", cfg.TaskName)
	if err := a.runner.Run(ctx, cfg.TaskName); err != nil {
		return err
	}
	a.logger.Info("🏁 Run finished.", "task", cfg.TaskName)

	a.logger.Debug("App.Run method finished.")
	return nil
}
