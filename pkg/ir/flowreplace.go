package ir

import (
	"github.com/milcore/milc/pkg/irtype"
	"github.com/milcore/milc/pkg/proto"
	"github.com/milcore/milc/pkg/tag"
)

// FlowRebuilder produces the flow that should replace owner's current flow
// once the flow-level instruction being lowered has been resolved to
// replacement (a pure reference to its final value, at the tag that now
// holds it). Transforms supply this to describe what owner's flow looked
// like structurally around the instruction being replaced.
type FlowRebuilder func(replacement Instruction) Flow

// ReplaceFlowInstruction substitutes instanceGraph — the implementation
// body of whatever flow-level instruction owner currently embeds — for
// that instruction, binding instanceGraph's entry parameters to arguments
// (in order). rebuild describes owner's new flow once the instruction's
// result is known.
//
// If instanceGraph is a single block whose flow is a bare Return, its body
// is spliced directly into owner and rebuild is invoked immediately with a
// Copy of the returned value — no continuation block is created. Otherwise
// a continuation block is created, parametrized on resultType, instanceGraph
// is Include'd with its Returns routed into that continuation, owner is
// rewired to jump into the included entry with arguments, and rebuild's
// result becomes the continuation's flow.
func (b *Builder) ReplaceFlowInstruction(owner tag.Block, instanceGraph Graph, arguments []tag.Value, resultType irtype.Type, rebuild FlowRebuilder) {
	entry := instanceGraph.EntryPoint()
	entryBB, _ := instanceGraph.GetBasicBlock(entry)

	if isSingleReturnBlock(instanceGraph, entry) {
		ret := entryBB.Flow.(Return)
		remap := map[tag.Value]tag.Value{}
		for i, p := range entryBB.Params {
			if i < len(arguments) {
				remap[p.Tag] = arguments[i]
			}
		}
		for _, v := range entryBB.Instrs {
			orig, _ := instanceGraph.GetInstruction(v)
			newArgs := make([]tag.Value, len(orig.Args))
			for i, a := range orig.Args {
				if r, ok := remap[a]; ok {
					newArgs[i] = r
				} else {
					newArgs[i] = a
				}
			}
			sel := b.AppendInstruction(owner, Instruction{Proto: orig.Proto, Args: newArgs}, v.Hint())
			remap[v] = sel.Tag
		}
		retArgs := make([]tag.Value, len(ret.Instr.Args))
		for i, a := range ret.Instr.Args {
			if r, ok := remap[a]; ok {
				retArgs[i] = r
			} else {
				retArgs[i] = a
			}
		}
		b.UpdateBlockFlow(owner, rebuild(Instruction{Proto: ret.Instr.Proto, Args: retArgs}))
		return
	}

	cont := b.AddBlock("replace.k")
	resultTag := b.NewValueTag("replace.result")
	b.Block(cont).SetParameters([]Param{{Tag: resultTag, Type: resultType}})

	returnHandler := func(ret Return, _ tag.Block) Flow {
		var args []BranchArg
		if len(ret.Instr.Args) > 0 {
			args = []BranchArg{Value(ret.Instr.Args[0])}
		}
		return Jump{Branch: Branch{Target: cont, Args: args}}
	}
	entryTag := b.Include(instanceGraph, returnHandler, nil)

	args := make([]BranchArg, len(arguments))
	for i, a := range arguments {
		args[i] = Value(a)
	}
	b.UpdateBlockFlow(owner, Jump{Branch: Branch{Target: entryTag, Args: args}})

	b.Block(cont).SetFlow(rebuild(Instruction{Proto: proto.Intern(proto.Copy{T: resultType}), Args: []tag.Value{resultTag}}))
}

func isSingleReturnBlock(g Graph, entry tag.Block) bool {
	count := 0
	isReturn := false
	g.Blocks(func(t tag.Block, bb BasicBlock) {
		count++
		if t == entry {
			_, isReturn = bb.Flow.(Return)
		}
	})
	return count == 1 && isReturn
}
