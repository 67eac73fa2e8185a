// Package validator checks a flow graph's conformance to the invariants
// in the data model: instruction argument validity and prototype
// conformance, and block-flow/branch well-formedness.
package validator

import (
	"fmt"

	"github.com/milcore/milc/pkg/ir"
	"github.com/milcore/milc/pkg/irtype"
	"github.com/milcore/milc/pkg/proto"
	"github.com/milcore/milc/pkg/tag"
)

// Validate walks every block and instruction in g and collects every
// invariant violation it finds; it never aborts early; an empty result
// means g is valid (§4.4, testable property 3).
func Validate(g ir.Graph) []error {
	var errs []error

	if g.EntryPoint().IsZero() || !g.ContainsBlock(g.EntryPoint()) {
		errs = append(errs, fmt.Errorf("entry point %s is not a block in the graph", g.EntryPoint()))
	}

	g.Blocks(func(b tag.Block, bb ir.BasicBlock) {
		for _, v := range bb.Instrs {
			instr, ok := g.GetInstruction(v)
			if !ok {
				errs = append(errs, fmt.Errorf("block %s: instruction tag %s has no bound instruction", b, v))
				continue
			}
			errs = append(errs, validateInstructionArgs(g, b, v, instr)...)
		}
		errs = append(errs, validateFlow(g, b, bb)...)
	})

	return errs
}

func validateInstructionArgs(g ir.Graph, owner tag.Block, v tag.Value, instr ir.Instruction) []error {
	var errs []error
	types := make([]irtype.Type, len(instr.Args))
	for i, a := range instr.Args {
		if !g.ContainsValue(a) {
			errs = append(errs, fmt.Errorf("block %s, value %s: argument %d (%s) is not in the graph", owner, v, i, a))
			continue
		}
		t, _ := g.GetValueType(a)
		types[i] = t
	}
	if len(errs) > 0 {
		return errs
	}
	for _, msg := range proto.CheckConformance(instr.Proto, types) {
		errs = append(errs, fmt.Errorf("block %s, value %s: %s", owner, v, msg))
	}
	return errs
}

func validateFlow(g ir.Graph, owner tag.Block, bb ir.BasicBlock) []error {
	var errs []error
	switch f := bb.Flow.(type) {
	case ir.Jump:
		errs = append(errs, validateBranch(g, owner, f.Branch, ir.ArgValue)...)
	case ir.Return:
		errs = append(errs, validateFlowInstructionArgs(g, owner, f.Instr)...)
	case ir.Switch:
		errs = append(errs, validateFlowInstructionArgs(g, owner, f.Cond)...)
		for _, c := range f.Cases {
			errs = append(errs, validateBranch(g, owner, c.Branch, ir.ArgValue)...)
		}
		errs = append(errs, validateBranch(g, owner, f.Default, ir.ArgValue)...)
	case ir.Try:
		errs = append(errs, validateFlowInstructionArgs(g, owner, f.Inner)...)
		errs = append(errs, validateBranch(g, owner, f.Success, ir.ArgTryResult)...)
		errs = append(errs, validateBranch(g, owner, f.Exception, ir.ArgTryException)...)
	case ir.Unreachable:
		// nothing to validate
	default:
		errs = append(errs, fmt.Errorf("block %s: unrecognized flow %T", owner, f))
	}
	return errs
}

func validateFlowInstructionArgs(g ir.Graph, owner tag.Block, instr ir.Instruction) []error {
	var errs []error
	for i, a := range instr.Args {
		if !g.ContainsValue(a) {
			errs = append(errs, fmt.Errorf("block %s: flow-level instruction argument %d (%s) is not in the graph", owner, i, a))
		}
	}
	return errs
}

// validateBranch checks that br's target exists, that its argument count
// matches the target's parameter count, and that each argument is
// compatible with its corresponding parameter: Value arguments by type
// equality, and extra (non-Value) arguments only when extraAllowed permits
// that kind (§4.4).
func validateBranch(g ir.Graph, owner tag.Block, br ir.Branch, extraAllowed ir.ArgKind) []error {
	var errs []error
	target, ok := g.GetBasicBlock(br.Target)
	if !ok {
		errs = append(errs, fmt.Errorf("block %s: branch to block %s outside of graph", owner, br.Target))
		return errs
	}
	if len(br.Args) != len(target.Params) {
		errs = append(errs, fmt.Errorf("block %s: branch to %s has %d arguments, target expects %d",
			owner, br.Target, len(br.Args), len(target.Params)))
		return errs
	}
	for i, a := range br.Args {
		switch a.Kind {
		case ir.ArgValue:
			if !g.ContainsValue(a.Value) {
				errs = append(errs, fmt.Errorf("block %s: branch argument %d (%s) is not in the graph", owner, i, a.Value))
				continue
			}
			argType, _ := g.GetValueType(a.Value)
			if !irtype.Equal(argType, target.Params[i].Type) {
				errs = append(errs, fmt.Errorf("block %s: branch argument %d type %s does not match target parameter type %s",
					owner, i, argType, target.Params[i].Type))
			}
		case ir.ArgTryResult, ir.ArgTryException:
			if a.Kind != extraAllowed {
				errs = append(errs, fmt.Errorf("block %s: branch argument %d has kind %s, not permitted on this branch",
					owner, i, a.Kind))
			}
		default:
			errs = append(errs, fmt.Errorf("block %s: branch argument %d has unrecognized kind %v", owner, i, a.Kind))
		}
	}
	return errs
}
