package diag

import "fmt"

// AbortCompilation is raised by a Sink when fmax-errors is exceeded or
// Wfatal-errors is set and an error diagnostic is reported (§7). It
// propagates up through transforms unchanged; the driver decides what to
// do with a method whose compilation aborted mid-way.
type AbortCompilation struct {
	Reason string
	// Errors seen is how many error-severity diagnostics had already been
	// reported when the sink aborted.
	ErrorsSeen int
}

func (e *AbortCompilation) Error() string {
	return fmt.Sprintf("compilation aborted after %d error(s): %s", e.ErrorsSeen, e.Reason)
}

// UnavailableSource reports that the front-end failed to provide a
// requested source file. Reported as an ordinary error diagnostic unless
// the driver has asked for Wfatal-errors.
type UnavailableSource struct {
	Document string
}

func (e *UnavailableSource) Error() string {
	return fmt.Sprintf("source unavailable: %s", e.Document)
}
