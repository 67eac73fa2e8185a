// Package translator lowers pkg/cil stack-based bytecode into pkg/ir's
// control-flow graph by abstract interpretation of the virtual operand
// stack: each branch-target region becomes one basic block, and operand
// stack contents at block boundaries become SSA-like block parameters.
package translator

import (
	"github.com/milcore/milc/pkg/cil"
	"github.com/milcore/milc/pkg/ir"
	"github.com/milcore/milc/pkg/irtype"
	"github.com/milcore/milc/pkg/proto"
	"github.com/milcore/milc/pkg/tag"
)

// stackVal is one operand-stack slot: the IR value carrying it, and its
// type (kept alongside the tag so analyzeBlock can compare incoming stack
// shapes without a graph round trip).
type stackVal struct {
	tag tag.Value
	typ irtype.Type
}

type translator struct {
	b        *ir.Builder
	blockOf  map[*cil.Instruction]tag.Block
	analyzed map[tag.Block]bool
	incoming map[tag.Block][]irtype.Type

	thisType   irtype.Type
	thisSlot   tag.Value
	paramTypes []irtype.Type
	paramSlots []tag.Value
	localTypes []irtype.Type
	localSlots []tag.Value

	// thisSlotParam / paramTagsParam are the entry block's own parameter
	// tags (distinct from the alloca'd stack slots above), recorded so
	// Translate can build the returned MethodBody's signature.
	thisSlotParam  tag.Value
	paramTagsParam []tag.Value

	returnType irtype.Type
}

// Translate runs the full §4.5 algorithm over body and returns the
// resulting graph-backed method, or a MalformedIR/NotSupportedOperation
// error if the bytecode cannot be lowered.
func Translate(body cil.MethodBody) (ir.MethodBody, error) {
	t := &translator{
		b:          ir.NewBuilder(ir.New()),
		blockOf:    map[*cil.Instruction]tag.Block{},
		analyzed:   map[tag.Block]bool{},
		incoming:   map[tag.Block][]irtype.Type{},
		thisType:   body.This,
		paramTypes: body.Params,
		returnType: body.ReturnType,
	}
	for _, l := range body.Locals {
		t.localTypes = append(t.localTypes, l.Type)
	}

	t.findBlockStarts(body)

	entry := t.b.AddBlock("entry")
	t.buildEntry(entry, body)
	t.b.WithEntryPoint(entry)

	if body.Entry == nil {
		t.b.Block(entry).SetFlow(ir.Return{Instr: t.defaultReturnInstr()})
	} else {
		firstReal, ok := t.blockOf[body.Entry]
		if !ok {
			return ir.MethodBody{}, &MalformedIR{Reason: "first instruction was not registered as a block start"}
		}
		t.b.Block(entry).SetFlow(ir.Jump{Branch: ir.Branch{Target: firstReal}})
		if err := t.analyzeBlock(body.Entry, nil); err != nil {
			return ir.MethodBody{}, err
		}
	}

	var this *ir.Param
	if body.This != nil {
		this = &ir.Param{Tag: t.thisSlotParam, Type: body.This}
	}
	params := make([]ir.Param, len(body.Params))
	for i, pt := range body.Params {
		params[i] = ir.Param{Tag: t.paramTagsParam[i], Type: pt}
	}

	return ir.MethodBody{
		Graph:      t.b.Snapshot(),
		ReturnType: body.ReturnType,
		This:       this,
		Params:     params,
	}, nil
}

// findBlockStarts is §4.5 step 1: the body's first instruction, every
// branch target, and every instruction immediately following a
// block-terminating opcode (ret/throw/br/brtrue/brfalse) starts a block.
func (t *translator) findBlockStarts(body cil.MethodBody) {
	instrs := body.Instructions()
	if len(instrs) == 0 {
		return
	}
	starts := map[*cil.Instruction]bool{instrs[0]: true}
	for _, in := range instrs {
		switch in.Opcode {
		case cil.OpBr, cil.OpBrtrue, cil.OpBrfalse:
			if in.Target != nil {
				starts[in.Target] = true
			}
			if in.Next != nil {
				starts[in.Next] = true
			}
		case cil.OpRet, cil.OpThrow:
			if in.Next != nil {
				starts[in.Next] = true
			}
		}
	}
	for _, in := range instrs {
		if starts[in] {
			t.blockOf[in] = t.b.AddBlock("L")
		}
	}
}

// buildEntry is §4.5 step 2.
func (t *translator) buildEntry(entry tag.Block, body cil.MethodBody) {
	var entryParams []ir.Param

	if body.This != nil {
		v := t.b.NewValueTag("this")
		entryParams = append(entryParams, ir.Param{Tag: v, Type: body.This})
		t.thisSlotParam = v
	}
	t.paramTagsParam = make([]tag.Value, len(body.Params))
	for i, pt := range body.Params {
		v := t.b.NewValueTag("arg")
		entryParams = append(entryParams, ir.Param{Tag: v, Type: pt})
		t.paramTagsParam[i] = v
	}
	t.b.Block(entry).SetParameters(entryParams)

	if body.This != nil {
		slot := t.b.AppendInstruction(entry, ir.Instruction{Proto: proto.Intern(proto.Alloca{T: body.This})}, "this.addr")
		t.thisSlot = slot.Tag
		t.b.AppendInstruction(entry, ir.Instruction{
			Proto: proto.Intern(proto.Store{T: body.This}),
			Args:  []tag.Value{t.thisSlotParam, slot.Tag},
		}, "")
	}
	t.paramSlots = make([]tag.Value, len(body.Params))
	for i, pt := range body.Params {
		slot := t.b.AppendInstruction(entry, ir.Instruction{Proto: proto.Intern(proto.Alloca{T: pt})}, "arg.addr")
		t.paramSlots[i] = slot.Tag
		t.b.AppendInstruction(entry, ir.Instruction{
			Proto: proto.Intern(proto.Store{T: pt}),
			Args:  []tag.Value{t.paramTagsParam[i], slot.Tag},
		}, "")
	}
	t.localSlots = make([]tag.Value, len(t.localTypes))
	for i, lt := range t.localTypes {
		slot := t.b.AppendInstruction(entry, ir.Instruction{Proto: proto.Intern(proto.Alloca{T: lt})}, "loc.addr")
		t.localSlots[i] = slot.Tag
	}
}

func (t *translator) defaultReturnInstr() ir.Instruction {
	if irtype.Equal(t.returnType, irtype.Void) {
		return ir.Instruction{Proto: proto.Intern(proto.Constant{Value: irtype.ConstDefault{Ty: irtype.Void}, T: irtype.Void})}
	}
	return ir.Instruction{Proto: proto.Intern(proto.Constant{Value: irtype.ConstDefault{Ty: t.returnType}, T: t.returnType})}
}

func typeStrings(ts []irtype.Type) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		if t == nil {
			out[i] = "<nil>"
			continue
		}
		out[i] = t.String()
	}
	return out
}

func typesMatch(a, b []irtype.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !irtype.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func stackTypesOf(s []stackVal) []irtype.Type {
	out := make([]irtype.Type, len(s))
	for i, v := range s {
		out[i] = v.typ
	}
	return out
}

func branchArgsOf(s []stackVal) []ir.BranchArg {
	out := make([]ir.BranchArg, len(s))
	for i, v := range s {
		out[i] = ir.Value(v.tag)
	}
	return out
}
