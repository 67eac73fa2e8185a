package translator

import "fmt"

// MalformedIR is raised when the input bytecode cannot be translated into a
// well-formed graph: a stack-depth/type disagreement between two
// predecessors of the same block, or an opcode referencing a value that
// was never pushed.
type MalformedIR struct {
	Reason string
}

func (e *MalformedIR) Error() string {
	return fmt.Sprintf("malformed IR: %s", e.Reason)
}

// IncompatibleStackContents is the specific MalformedIR raised by
// analyzeBlock's re-entry check (§4.5 step 3): a block reached twice with
// disagreeing incoming stack types.
func IncompatibleStackContents(blockHint string, want, got []string) error {
	return &MalformedIR{Reason: fmt.Sprintf(
		"block %s: incoming stack types %v disagree with previously established %v", blockHint, got, want)}
}

// NotSupportedOperation is raised for an opcode the translator has no
// lowering for. Coverage is intentionally a representative subset (§4.5
// step 4); this is the explicit "opcode table is partial" error path
// rather than a silent fallthrough.
type NotSupportedOperation struct {
	Opcode string
}

func (e *NotSupportedOperation) Error() string {
	return fmt.Sprintf("not supported operation: opcode %s has no translation", e.Opcode)
}
