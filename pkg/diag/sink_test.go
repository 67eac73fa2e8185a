package diag

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestReportWritesEachDiagnostic(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf, Options{})
	if err := s.Report(Diagnostic{Severity: Message, Title: "note", Message: "hello"}); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("output = %q, want it to contain the message", buf.String())
	}
	if s.ExitCode() != 0 {
		t.Errorf("ExitCode = %d, want 0 (no errors reported)", s.ExitCode())
	}
}

func TestWerrorPromotesWarningToError(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf, Options{Werror: true})
	s.Report(Diagnostic{Severity: Warning, Title: "w", Message: "careful"})
	if s.ErrorCount() != 1 {
		t.Errorf("ErrorCount = %d, want 1", s.ErrorCount())
	}
	if s.ExitCode() != 1 {
		t.Errorf("ExitCode = %d, want 1", s.ExitCode())
	}
}

func TestWfatalErrorsAbortsOnFirstError(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf, Options{WfatalErrors: true})
	err := s.Report(Diagnostic{Severity: Error, Title: "e", Message: "boom"})
	var abort *AbortCompilation
	if !errors.As(err, &abort) {
		t.Fatalf("Report err = %v, want *AbortCompilation", err)
	}
	if abort.ErrorsSeen != 1 {
		t.Errorf("ErrorsSeen = %d, want 1", abort.ErrorsSeen)
	}
}

func TestFmaxErrorsAbortsAfterLimit(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf, Options{FmaxErrors: 2})
	if err := s.Report(Diagnostic{Severity: Error, Title: "e1", Message: "one"}); err != nil {
		t.Fatalf("first Report should not abort: %v", err)
	}
	err := s.Report(Diagnostic{Severity: Error, Title: "e2", Message: "two"})
	var abort *AbortCompilation
	if !errors.As(err, &abort) {
		t.Fatalf("second Report err = %v, want *AbortCompilation", err)
	}
}

func TestFmaxErrorsZeroMeansUnlimited(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf, Options{FmaxErrors: 0})
	for i := 0; i < 10; i++ {
		if err := s.Report(Diagnostic{Severity: Error, Title: "e", Message: "x"}); err != nil {
			t.Fatalf("Report %d: unexpected abort %v", i, err)
		}
	}
	if s.ErrorCount() != 10 {
		t.Errorf("ErrorCount = %d, want 10", s.ErrorCount())
	}
}

func TestDiagnosticStringIncludesRange(t *testing.T) {
	d := Diagnostic{
		Severity: Error,
		Title:    "malformed_ir",
		Message:  "dangling value reference",
		Range:    &Range{Document: "Widget.il", Start: 42},
	}
	s := d.String()
	if !strings.Contains(s, "Widget.il") || !strings.Contains(s, "42") {
		t.Errorf("String() = %q, want it to mention the range", s)
	}
}
