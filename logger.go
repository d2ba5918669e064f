package config

import (
	"os"

	"github.com/charmbracelet/log"
)

// logger reports diagnostics that are deliberately not part of the error
// surface, such as unknown tree keys and deprecation notices.
var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "config"})

// SetLogger replaces the package logger. Pass a logger with a higher
// level to silence unknown-key warnings.
func SetLogger(l *log.Logger) {
	if l != nil {
		logger = l
	}
}

// Logger returns the package logger, for callers that want to emit
// configuration diagnostics with the same prefix and formatting.
func Logger() *log.Logger {
	return logger
}
