// Package logging builds the leveled loggers handed to every component.
package logging

import (
	"io"
	stdlog "log"

	"github.com/charmbracelet/log"
)

// New returns a logger tagged with prefix. Debug output is enabled when debug
// is set (the --debug flag of both commands).
func New(w io.Writer, prefix string, debug bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		ReportTimestamp: true,
		Level:           log.InfoLevel,
	})
	if debug {
		l.SetLevel(log.DebugLevel)
		l.Info("Enable debug log.")
	}
	return l
}

// Discard is a logger for tests and for callers that pass nil.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// Std adapts l to the standard library logger, for packages such as
// net/http and gorilla/handlers that only accept *log.Logger or io.Writer.
func Std(l *log.Logger, level log.Level) *stdlog.Logger {
	return l.StandardLog(log.StandardLogOptions{ForceLevel: level})
}
