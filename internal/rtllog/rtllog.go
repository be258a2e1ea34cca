// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package rtllog wraps the standard library's log package with a verbosity
// flag, the same way the rest of this module's ancestry logs progress:
// plain log.Print calls, no structured logging library.
package rtllog

import (
	"io"
	"log"
	"os"
)

// Logger prints progress and diagnostic messages, gated by Verbose.
type Logger struct {
	*log.Logger
	Verbose bool
}

// New returns a Logger writing to w with no prefix or timestamp, matching
// how a CLI tool's own diagnostics should look next to compiler-style
// error output.
func New(w io.Writer) *Logger {
	return &Logger{Logger: log.New(w, "", 0)}
}

// Default returns a Logger writing to stderr.
func Default() *Logger { return New(os.Stderr) }

// Progress logs a message only when Verbose is set — the per-optimization
// -O level summaries and the feedback-arc-set diagnostic are Progress
// calls, not Print calls, so a quiet run stays quiet.
func (l *Logger) Progress(format string, args ...interface{}) {
	if l.Verbose {
		l.Printf(format, args...)
	}
}
