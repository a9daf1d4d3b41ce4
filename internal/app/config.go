package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
// It is built once at startup from CLI flags and passed by reference; no
// component resolves configuration from ambient globals.
type Config struct {
	// RigPath is a rig file or a directory of rig files.
	RigPath string
	// TaskName is the single task requested at the CLI.
	TaskName string
	// ListTasks prints the declared task names instead of running.
	ListTasks bool

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.RigPath == "" {
		return nil, errors.New("RigPath is a required configuration field and cannot be empty")
	}
	if cfg.TaskName == "" && !cfg.ListTasks {
		return nil, errors.New("a task name is required")
	}
	return &cfg, nil
}
