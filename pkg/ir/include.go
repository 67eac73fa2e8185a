package ir

import (
	"github.com/milcore/milc/pkg/proto"
	"github.com/milcore/milc/pkg/tag"
)

// ReturnHandler is called once per copied Return flow during Include; its
// result replaces that Return as the copied block's new flow.
type ReturnHandler func(ret Return, enclosing tag.Block) Flow

// Include inlines callee into the builder's current graph: every callee
// block and value is copied under a fresh tag, every instruction argument
// and branch target is rewritten through the remap, every copied Return is
// handed to returnHandler, and — when exceptionBranch is supplied — every
// copied instruction that may throw is wrapped in a Try flow routing
// failure to exceptionBranch. It returns the remapped entry-point tag.
func (b *Builder) Include(callee Graph, returnHandler ReturnHandler, exceptionBranch *Branch) tag.Block {
	blockRemap := map[tag.Block]tag.Block{}
	valueRemap := map[tag.Value]tag.Value{}

	var order []tag.Block
	callee.Blocks(func(t tag.Block, _ BasicBlock) {
		order = append(order, t)
	})

	// Pass 1: allocate a host block for every callee block.
	for _, old := range order {
		blockRemap[old] = b.AddBlock(old.Hint())
	}

	// Pass 2: reserve a fresh value tag for every callee value (params and
	// instruction results) before any instruction argument is rewritten,
	// so forward references within the callee resolve regardless of
	// iteration order.
	for _, old := range order {
		bb, _ := callee.GetBasicBlock(old)
		for _, p := range bb.Params {
			valueRemap[p.Tag] = b.NewValueTag(p.Tag.Hint())
		}
		for _, v := range bb.Instrs {
			valueRemap[v] = b.NewValueTag(v.Hint())
		}
	}

	remapArgs := func(args []tag.Value) []tag.Value {
		out := make([]tag.Value, len(args))
		for i, a := range args {
			out[i] = valueRemap[a]
		}
		return out
	}
	remapBranch := func(br Branch) Branch {
		args := make([]BranchArg, len(br.Args))
		for i, a := range br.Args {
			if a.Kind == ArgValue {
				args[i] = Value(valueRemap[a.Value])
			} else {
				args[i] = a
			}
		}
		return Branch{Target: blockRemap[br.Target], Args: args}
	}
	remapInstr := func(in Instruction) Instruction {
		return Instruction{Proto: in.Proto, Args: remapArgs(in.Args)}
	}

	// Pass 3: bind remapped parameters and instructions into their new
	// blocks, under the tags reserved in pass 2.
	for _, old := range order {
		bb, _ := callee.GetBasicBlock(old)
		newBlock := blockRemap[old]

		params := make([]Param, len(bb.Params))
		for i, p := range bb.Params {
			params[i] = Param{Tag: valueRemap[p.Tag], Type: p.Type}
		}
		b.Block(newBlock).SetParameters(params)

		for _, v := range bb.Instrs {
			orig, _ := callee.GetInstruction(v)
			b.bindInstruction(newBlock, valueRemap[v], remapInstr(orig))
		}
	}

	// Pass 4: translate each copied block's flow, routing Returns through
	// returnHandler and (optionally) wrapping throwing instructions.
	for _, old := range order {
		bb, _ := callee.GetBasicBlock(old)
		newBlock := blockRemap[old]

		tail := newBlock
		if exceptionBranch != nil {
			tail = b.wrapThrowing(newBlock, *exceptionBranch)
		}

		var newFlow Flow
		switch f := bb.Flow.(type) {
		case Jump:
			newFlow = Jump{Branch: remapBranch(f.Branch)}
		case Return:
			newFlow = returnHandler(Return{Instr: remapInstr(f.Instr)}, tail)
		case Switch:
			cases := make([]SwitchCase, len(f.Cases))
			for i, c := range f.Cases {
				cases[i] = SwitchCase{Values: c.Values, Branch: remapBranch(c.Branch)}
			}
			newFlow = Switch{Cond: remapInstr(f.Cond), Cases: cases, Default: remapBranch(f.Default)}
		case Try:
			newFlow = Try{
				Inner:     remapInstr(f.Inner),
				Success:   remapBranch(f.Success),
				Exception: remapBranch(f.Exception),
			}
		case Unreachable:
			newFlow = Unreachable{}
		}
		b.UpdateBlockFlow(tail, newFlow)
	}

	entry, ok := blockRemap[callee.EntryPoint()]
	if !ok {
		return tag.Block{}
	}
	return entry
}

// bindInstruction places instr into block's instruction list under the
// pre-reserved tag v, bypassing the fresh-tag minting InsertInstruction
// normally performs. Used only by Include, which must preserve identity
// between a callee value and the host tag chosen for it in an earlier pass.
func (b *Builder) bindInstruction(block tag.Block, v tag.Value, instr Instruction) {
	b.swap(func(g Graph) Graph {
		bb, ok := g.GetBasicBlock(block)
		if !ok {
			return g
		}
		instrs := make([]tag.Value, len(bb.Instrs)+1)
		copy(instrs, bb.Instrs)
		instrs[len(bb.Instrs)] = v
		bb.Instrs = instrs
		g.blocks = g.blocks.Set(block, bb)
		g.values = g.values.Set(v, instr)
		g.types = g.types.Set(v, instr.Proto.ResultType())
		g.owners = g.owners.Set(v, block)
		return g
	})
}

// wrapThrowing repeatedly splits block at its first may-throw instruction,
// reusing that instruction's own value tag as the continuation block's
// sole parameter (so later instructions in the original block, which
// reference it by that tag, keep resolving without rewriting). It returns
// the tag of the final fragment, onto which the block's original flow
// should be attached.
func (b *Builder) wrapThrowing(block tag.Block, exceptionBranch Branch) tag.Block {
	for {
		bb, ok := b.Snapshot().GetBasicBlock(block)
		if !ok {
			return block
		}
		throwIdx := -1
		for i, v := range bb.Instrs {
			instr, _ := b.Snapshot().GetInstruction(v)
			if instr.Proto.Exceptions() == proto.MayThrow {
				throwIdx = i
				break
			}
		}
		if throwIdx < 0 {
			return block
		}

		throwingTag := bb.Instrs[throwIdx]
		instr, _ := b.Snapshot().GetInstruction(throwingTag)
		remaining := append([]tag.Value(nil), bb.Instrs[throwIdx+1:]...)

		cont := b.AddBlock(throwingTag.Hint() + ".k")

		b.swap(func(g Graph) Graph {
			headBB, _ := g.GetBasicBlock(block)
			headBB.Instrs = append([]tag.Value(nil), headBB.Instrs[:throwIdx]...)
			g.blocks = g.blocks.Set(block, headBB)

			// throwingTag moves from "instruction result of block" to
			// "parameter of cont"; its type is unchanged.
			g.values = g.values.Delete(throwingTag)
			g.owners = g.owners.Set(throwingTag, cont)

			contBB, _ := g.GetBasicBlock(cont)
			contBB.Params = []Param{{Tag: throwingTag, Type: instr.Proto.ResultType()}}
			contBB.Instrs = remaining
			g.blocks = g.blocks.Set(cont, contBB)

			for _, v := range remaining {
				g.owners = g.owners.Set(v, cont)
			}
			return g
		})

		b.UpdateBlockFlow(block, Try{
			Inner:     instr,
			Success:   Branch{Target: cont, Args: []BranchArg{TryResultArg()}},
			Exception: exceptionBranch,
		})

		block = cont
	}
}
