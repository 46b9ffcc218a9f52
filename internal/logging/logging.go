// Package logging configures cmdeck's component loggers.
//
// All log output goes to stderr; stdout is reserved for command output and
// tailed log bytes. Setup must run before New so child loggers inherit the
// configured level and formatter.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Setup configures the default logger. quiet wins over verbose.
func Setup(verbose, quiet, jsonFormat bool) {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	if quiet {
		level = log.ErrorLevel
	}

	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	if jsonFormat {
		log.SetFormatter(log.JSONFormatter)
	} else {
		log.SetFormatter(log.TextFormatter)
	}
}

// New creates a logger with the given component prefix.
func New(component string) *log.Logger {
	return log.WithPrefix(component)
}

// SetOutput overrides the output writer of the default logger.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}
