package optlog

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerWritesExpectedFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "")
	l.SetFlags(0)
	l.PhaseStart("logical", 1)
	l.RuleApplied("CombineFilter", 7)

	out := buf.String()
	if !strings.Contains(out, "phase=logical round=1: starting") {
		t.Fatalf("missing phase-start line, got %q", out)
	}
	if !strings.Contains(out, "rule=CombineFilter group=7: applied") {
		t.Fatalf("missing rule-applied line, got %q", out)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.PhaseStart("rewrite", 0)
	l.RuleFailed("X", 1, nil)
}
