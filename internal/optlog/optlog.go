// Package optlog provides a minimal, injectable logging shim for
// phase-boundary and rule-application diagnostics. The teacher logs
// directly through the standard library log package at module boundaries
// (internal/server/server.go, cmd/trigo/main.go); this package follows the
// same convention instead of introducing a structured logging library.
package optlog

import (
	"io"
	"log"
	"os"
)

// Logger wraps *log.Logger so callers can redirect or silence diagnostics
// (e.g. in tests) without the optimizer reaching for os.Stdout directly.
type Logger struct {
	*log.Logger
}

// New returns a Logger writing to w with the given prefix.
func New(w io.Writer, prefix string) *Logger {
	return &Logger{Logger: log.New(w, prefix, log.LstdFlags)}
}

// Default returns a Logger writing to os.Stderr with the "optimizer: "
// prefix, the package-level default used when the caller supplies none.
func Default() *Logger {
	return New(os.Stderr, "optimizer: ")
}

// Discard returns a Logger that drops every message, used by tests and by
// callers that want the optimizer silent.
func Discard() *Logger {
	return New(io.Discard, "")
}

// PhaseStart logs the start of an optimization phase.
func (l *Logger) PhaseStart(phase string, round int) {
	if l == nil {
		return
	}
	l.Printf("phase=%s round=%d: starting", phase, round)
}

// PhaseEnd logs the end of an optimization phase, reporting whether it
// produced a change this round.
func (l *Logger) PhaseEnd(phase string, round int, changed bool) {
	if l == nil {
		return
	}
	l.Printf("phase=%s round=%d: done changed=%v", phase, round, changed)
}

// RuleApplied logs a rule firing successfully on a group.
func (l *Logger) RuleApplied(rule string, groupID int64) {
	if l == nil {
		return
	}
	l.Printf("rule=%s group=%d: applied", rule, groupID)
}

// RuleFailed logs a rule's Apply returning an error (distinct from simply
// declaring itself inapplicable).
func (l *Logger) RuleFailed(rule string, groupID int64, err error) {
	if l == nil {
		return
	}
	l.Printf("rule=%s group=%d: failed: %v", rule, groupID, err)
}
