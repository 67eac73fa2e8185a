package diag

import (
	"fmt"
	"io"
)

// Options is the subset of the driver-visible config surface (§6.2) a Sink
// needs to decide whether to abort: Werror promotes warnings to errors,
// WfatalErrors aborts on the first error, FmaxErrors (0 = unlimited) bails
// after that many errors.
type Options struct {
	Werror       bool
	WfatalErrors bool
	FmaxErrors   int
}

// Sink collects diagnostics, writing each one to W as it arrives (the same
// "print as you go" style as cmd/ralph-cc/main.go's checkDebugFlags/
// preprocessing error reporting) and tracking whether the driver should
// stop. It never panics or calls os.Exit itself; Report returns
// *AbortCompilation when the configured limits are exceeded, and the
// caller decides how to react.
type Sink struct {
	W      io.Writer
	Opts   Options
	errors int
}

// NewSink returns a Sink writing to w under opts.
func NewSink(w io.Writer, opts Options) *Sink {
	return &Sink{W: w, Opts: opts}
}

// Report writes d and, if it counts as an error under Werror, updates the
// error count. It returns a non-nil *AbortCompilation once Wfatal-errors
// or fmax-errors says to stop.
func (s *Sink) Report(d Diagnostic) error {
	if s.Opts.Werror && d.Severity == Warning {
		d.Severity = Error
	}
	fmt.Fprintln(s.W, d.String())

	if d.Severity != Error {
		return nil
	}
	s.errors++

	if s.Opts.WfatalErrors {
		return &AbortCompilation{Reason: "-Wfatal-errors", ErrorsSeen: s.errors}
	}
	if s.Opts.FmaxErrors > 0 && s.errors >= s.Opts.FmaxErrors {
		return &AbortCompilation{Reason: "-fmax-errors exceeded", ErrorsSeen: s.errors}
	}
	return nil
}

// ErrorCount returns how many diagnostics have been reported as errors
// (after any Werror promotion) so far.
func (s *Sink) ErrorCount() int { return s.errors }

// ExitCode implements §6.3: 0 on success, 1 if any error was ever emitted.
func (s *Sink) ExitCode() int {
	if s.errors > 0 {
		return 1
	}
	return 0
}
