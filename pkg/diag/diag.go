// Package diag defines diagnostics as values (§6.3): a Diagnostic carries a
// severity, a short title, a message body, and an optional source range,
// rendered by whoever owns the writer (the driver) rather than printed
// directly from the core. No logging framework is involved here, matching
// cmd/ralph-cc/main.go's own plain fmt.Fprintf warning/error style.
package diag

import "fmt"

// Severity classifies a Diagnostic.
type Severity int

const (
	Message Severity = iota
	Warning
	Error
	Event
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Event:
		return "event"
	default:
		return "message"
	}
}

// Range locates a Diagnostic in a source document: a document name plus a
// start offset and length. Either field may be zero-valued when no precise
// range is known.
type Range struct {
	Document string
	Start    int
	Length   int
}

// Diagnostic is one reportable event: a severity, a short title, a longer
// message body, and an optional source Range.
type Diagnostic struct {
	Severity Severity
	Title    string
	Message  string
	Range    *Range
}

func (d Diagnostic) String() string {
	if d.Range == nil {
		return fmt.Sprintf("%s: %s: %s", d.Severity, d.Title, d.Message)
	}
	return fmt.Sprintf("%s:%d: %s: %s: %s", d.Range.Document, d.Range.Start, d.Severity, d.Title, d.Message)
}
