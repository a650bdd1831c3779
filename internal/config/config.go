// Package config sets up the logging of the application.
package config

import (
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/snesdisasm/internal/options"
)

// CreateLogger creates a logger for the verbosity flags. Debug output
// takes precedence over quiet mode.
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	switch {
	case debug:
		cfg.Level = log.DebugLevel
	case quiet:
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// LoggerForOptions creates the logger for the program options.
func LoggerForOptions(opts options.Program) *log.Logger {
	return CreateLogger(opts.Debug, opts.Quiet)
}
