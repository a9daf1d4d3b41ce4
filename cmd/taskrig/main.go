package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/taskrig/taskrig/internal/app"
	"github.com/taskrig/taskrig/internal/cli"
	"github.com/taskrig/taskrig/internal/rigfile"
	"github.com/taskrig/taskrig/internal/runner"
)

// main is the entrypoint for the taskrig application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) (err error) {
	appConfig, shouldExit, parseErr := cli.Parse(args, outW)
	if parseErr != nil {
		return parseErr
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical startup errors (unreadable rig files), so
	// we recover here to provide a clean exit message to the user.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("a critical startup error occurred: %v", r)
		}
	}()

	loader := rigfile.NewLoader()
	rigApp := app.NewApp(outW, appConfig, loader)

	if runErr := rigApp.Run(context.Background(), appConfig); runErr != nil {
		// A run that flagged failures but streamed to completion exits with
		// the reserved code 8 so CI can distinguish it from a hard failure.
		var deferred *runner.DeferredFailure
		if errors.As(runErr, &deferred) {
			return &cli.ExitError{Code: 8, Message: deferred.Error()}
		}
		return runErr
	}
	return nil
}
