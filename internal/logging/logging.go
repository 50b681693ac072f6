// Package logging wraps the standard library's log package in a simple
// verbose/quiet convention (a bool field gating log.Printf) instead of
// pulling in a structured logging library.
package logging

import "log"

// Logger gates diagnostic output behind a Verbose flag. Warnings and
// errors always print; routine progress only prints when Verbose is set.
// The zero value is a quiet logger that still surfaces warnings/errors,
// matching the default false value every -verbose flag defines.
type Logger struct {
	Verbose bool
	prefix  string
}

// New creates a Logger. prefix, if non-empty, is prepended to every
// message (e.g. "orchestrator: ").
func New(prefix string, verbose bool) *Logger {
	return &Logger{Verbose: verbose, prefix: prefix}
}

// Printf logs a routine progress message, only when Verbose is set.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || !l.Verbose {
		return
	}
	log.Printf(l.prefix+format, args...)
}

// Warnf always logs, prefixed with "WARNING: ".
func (l *Logger) Warnf(format string, args ...any) {
	prefix := ""
	if l != nil {
		prefix = l.prefix
	}
	log.Printf(prefix+"WARNING: "+format, args...)
}
