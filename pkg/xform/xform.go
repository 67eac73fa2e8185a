// Package xform implements the intraprocedural transform scaffold (§4.6):
// each transform converts a graph to a builder, walks its instructions,
// rewrites in place via Replace/InsertBefore, and returns the builder's
// resulting snapshot. Transforms are pure: Apply never mutates its input
// graph, only the builder it creates over a copy of it.
package xform

import (
	"github.com/milcore/milc/pkg/ir"
	"github.com/milcore/milc/pkg/tag"
)

// Transform rewrites a graph and returns the rewritten graph.
type Transform interface {
	Apply(g ir.Graph) (ir.Graph, error)
}

// Func adapts a plain function to the Transform interface.
type Func func(g ir.Graph) (ir.Graph, error)

func (f Func) Apply(g ir.Graph) (ir.Graph, error) { return f(g) }

// boundInstruction is one instruction visited during a walk, alongside the
// block that owns it.
type boundInstruction struct {
	block tag.Block
	value tag.Value
	instr ir.Instruction
}

// snapshotInstructions captures every instruction currently in g, in
// block/instruction order, so a transform can walk a stable list while
// rewriting the builder underneath it (matching §4.6's "walk, then
// rewrite" shape rather than reacting to a moving target).
func snapshotInstructions(g ir.Graph) []boundInstruction {
	var out []boundInstruction
	g.Blocks(func(b tag.Block, bb ir.BasicBlock) {
		for _, v := range bb.Instrs {
			instr, ok := g.GetInstruction(v)
			if !ok {
				continue
			}
			out = append(out, boundInstruction{block: b, value: v, instr: instr})
		}
	})
	return out
}
