package translator

import (
	"github.com/milcore/milc/pkg/cil"
	"github.com/milcore/milc/pkg/ir"
	"github.com/milcore/milc/pkg/irtype"
	"github.com/milcore/milc/pkg/proto"
	"github.com/milcore/milc/pkg/tag"
)

// analyzeBlock is §4.5 step 3.
func (t *translator) analyzeBlock(first *cil.Instruction, incoming []irtype.Type) error {
	block, ok := t.blockOf[first]
	if !ok {
		return &MalformedIR{Reason: "branch target was never registered as a block start"}
	}

	if t.analyzed[block] {
		want := t.incoming[block]
		if !typesMatch(want, incoming) {
			return IncompatibleStackContents(block.String(), typeStrings(want), typeStrings(incoming))
		}
		return nil
	}
	t.analyzed[block] = true
	t.incoming[block] = incoming

	params := make([]ir.Param, len(incoming))
	stack := make([]stackVal, len(incoming))
	for i, ty := range incoming {
		v := t.b.NewValueTag("s")
		params[i] = ir.Param{Tag: v, Type: ty}
		stack[i] = stackVal{tag: v, typ: ty}
	}
	t.b.Block(block).SetParameters(params)

	current := first
	for {
		terminal, err := t.translateInstr(block, current, &stack)
		if err != nil {
			return err
		}
		if terminal {
			return nil
		}
		next := current.Next
		if next == nil {
			return &MalformedIR{Reason: "instruction stream ended without a terminating instruction"}
		}
		if nextBlock, isStart := t.blockOf[next]; isStart {
			t.b.Block(block).SetFlow(ir.Jump{Branch: ir.Branch{Target: nextBlock, Args: branchArgsOf(stack)}})
			return t.analyzeBlock(next, stackTypesOf(stack))
		}
		current = next
	}
}

// translateInstr mutates *stack per in's opcode semantics (§4.5 step 4) and
// reports whether in terminated its block (in which case the block's flow
// has already been set, and any target blocks have already been recursed
// into).
func (t *translator) translateInstr(block tag.Block, in *cil.Instruction, stack *[]stackVal) (bool, error) {
	switch in.Opcode {
	case cil.OpNop:
		return false, nil

	case cil.OpLdcI4:
		v := t.b.AppendInstruction(block, ir.Instruction{
			Proto: proto.Intern(proto.Constant{Value: irtype.ConstInt32(in.IntOperand), T: irtype.Int32}),
		}, "c").Tag
		push(stack, v, irtype.Int32)
		return false, nil

	case cil.OpLdarg:
		slot, ty, err := t.argSlot(int(in.IntOperand))
		if err != nil {
			return false, err
		}
		v := t.b.AppendInstruction(block, ir.Instruction{
			Proto: proto.Intern(proto.Load{T: ty}), Args: []tag.Value{slot},
		}, "").Tag
		push(stack, v, ty)
		return false, nil

	case cil.OpLdloc:
		idx := int(in.IntOperand)
		if idx < 0 || idx >= len(t.localSlots) {
			return false, &MalformedIR{Reason: "ldloc index out of range"}
		}
		ty := t.localTypes[idx]
		v := t.b.AppendInstruction(block, ir.Instruction{
			Proto: proto.Intern(proto.Load{T: ty}), Args: []tag.Value{t.localSlots[idx]},
		}, "").Tag
		push(stack, v, ty)
		return false, nil

	case cil.OpStloc:
		idx := int(in.IntOperand)
		if idx < 0 || idx >= len(t.localSlots) {
			return false, &MalformedIR{Reason: "stloc index out of range"}
		}
		val, err := pop(stack)
		if err != nil {
			return false, err
		}
		t.b.AppendInstruction(block, ir.Instruction{
			Proto: proto.Intern(proto.Store{T: t.localTypes[idx]}),
			Args:  []tag.Value{val.tag, t.localSlots[idx]},
		}, "")
		return false, nil

	case cil.OpAdd, cil.OpSub, cil.OpMul, cil.OpDiv:
		return false, t.translateArith(block, in.Opcode, stack)

	case cil.OpCeq, cil.OpClt, cil.OpCgt:
		return false, t.translateCompare(block, in.Opcode, stack)

	case cil.OpCall:
		return false, t.translateCall(block, in, proto.Static, stack)
	case cil.OpCallvirt:
		return false, t.translateCall(block, in, proto.Virtual, stack)

	case cil.OpNewobj:
		return false, t.translateNewobj(block, in, stack)

	case cil.OpThrow:
		val, err := pop(stack)
		if err != nil {
			return false, err
		}
		t.b.AppendInstruction(block, ir.Instruction{
			Proto: proto.Intern(proto.Intrinsic{Name: "rt.throw", Ret: irtype.Void, Params: []irtype.Type{val.typ}, Throws: proto.MayThrow}),
			Args:  []tag.Value{val.tag},
		}, "")
		t.b.Block(block).SetFlow(ir.Unreachable{})
		return true, nil

	case cil.OpRet:
		if irtype.Equal(t.returnType, irtype.Void) {
			t.b.Block(block).SetFlow(ir.Return{Instr: t.defaultReturnInstr()})
			return true, nil
		}
		val, err := pop(stack)
		if err != nil {
			return false, err
		}
		t.b.Block(block).SetFlow(ir.Return{Instr: ir.Instruction{
			Proto: proto.Intern(proto.Copy{T: t.returnType}),
			Args:  []tag.Value{val.tag},
		}})
		return true, nil

	case cil.OpBr:
		if in.Target == nil {
			return false, &MalformedIR{Reason: "br with no target"}
		}
		target, ok := t.blockOf[in.Target]
		if !ok {
			return false, &MalformedIR{Reason: "br target was never registered as a block start"}
		}
		t.b.Block(block).SetFlow(ir.Jump{Branch: ir.Branch{Target: target, Args: branchArgsOf(*stack)}})
		return true, t.analyzeBlock(in.Target, stackTypesOf(*stack))

	case cil.OpBrtrue, cil.OpBrfalse:
		return true, t.translateConditionalBranch(block, in, stack)

	default:
		return false, &NotSupportedOperation{Opcode: in.Opcode.String()}
	}
}

func (t *translator) argSlot(idx int) (tag.Value, irtype.Type, error) {
	if t.thisType != nil {
		if idx == 0 {
			return t.thisSlot, t.thisType, nil
		}
		idx--
	}
	if idx < 0 || idx >= len(t.paramSlots) {
		return tag.Value{}, nil, &MalformedIR{Reason: "ldarg index out of range"}
	}
	return t.paramSlots[idx], t.paramTypes[idx], nil
}

func (t *translator) translateArith(block tag.Block, op cil.Opcode, stack *[]stackVal) error {
	rhs, err := pop(stack)
	if err != nil {
		return err
	}
	lhs, err := pop(stack)
	if err != nil {
		return err
	}
	if !irtype.Equal(lhs.typ, rhs.typ) {
		return &MalformedIR{Reason: "arithmetic operands have disagreeing types"}
	}
	v := t.b.AppendInstruction(block, ir.Instruction{
		Proto: proto.Intern(proto.Intrinsic{Name: arithName(op), Ret: lhs.typ, Params: []irtype.Type{lhs.typ, rhs.typ}}),
		Args:  []tag.Value{lhs.tag, rhs.tag},
	}, "").Tag
	push(stack, v, lhs.typ)
	return nil
}

func arithName(op cil.Opcode) string {
	switch op {
	case cil.OpAdd:
		return "arith.add"
	case cil.OpSub:
		return "arith.sub"
	case cil.OpMul:
		return "arith.mul"
	case cil.OpDiv:
		return "arith.div"
	default:
		return "arith.unknown"
	}
}

func (t *translator) translateCompare(block tag.Block, op cil.Opcode, stack *[]stackVal) error {
	rhs, err := pop(stack)
	if err != nil {
		return err
	}
	lhs, err := pop(stack)
	if err != nil {
		return err
	}
	if !irtype.Equal(lhs.typ, rhs.typ) {
		return &MalformedIR{Reason: "comparison operands have disagreeing types"}
	}
	var name string
	switch op {
	case cil.OpCeq:
		name = "arith.ceq"
	case cil.OpClt:
		name = "arith.clt"
	case cil.OpCgt:
		name = "arith.cgt"
	}
	v := t.b.AppendInstruction(block, ir.Instruction{
		Proto: proto.Intern(proto.Intrinsic{Name: name, Ret: irtype.Bool, Params: []irtype.Type{lhs.typ, rhs.typ}}),
		Args:  []tag.Value{lhs.tag, rhs.tag},
	}, "").Tag
	push(stack, v, irtype.Bool)
	return nil
}

func (t *translator) translateCall(block tag.Block, in *cil.Instruction, lookup proto.Lookup, stack *[]stackVal) error {
	sig := in.Call
	if sig == nil {
		return &MalformedIR{Reason: "call/callvirt instruction carries no signature"}
	}
	args, err := popN(stack, len(sig.Params))
	if err != nil {
		return err
	}
	argTags := make([]tag.Value, len(args))
	for i, a := range args {
		argTags[i] = a.tag
	}
	p := proto.Intern(proto.Call{Method: sig.Method, Lookup: lookup, Ret: sig.Ret, Params: sig.Params})
	sel := t.b.AppendInstruction(block, ir.Instruction{Proto: p, Args: argTags}, "")
	if !irtype.Equal(sig.Ret, irtype.Void) {
		push(stack, sel.Tag, sig.Ret)
	}
	return nil
}

func (t *translator) translateNewobj(block tag.Block, in *cil.Instruction, stack *[]stackVal) error {
	sig := in.Call
	if sig == nil {
		return &MalformedIR{Reason: "newobj instruction carries no signature"}
	}
	args, err := popN(stack, len(sig.Params))
	if err != nil {
		return err
	}
	argTags := make([]tag.Value, len(args))
	for i, a := range args {
		argTags[i] = a.tag
	}
	result := irtype.Named(sig.Method.String())
	p := proto.Intern(proto.NewObject{Ctor: sig.Method, Result: result, Params: sig.Params})
	sel := t.b.AppendInstruction(block, ir.Instruction{Proto: p, Args: argTags}, "obj")
	push(stack, sel.Tag, result)
	return nil
}

// translateConditionalBranch is §4.5 step 4's brtrue/brfalse rule: pop the
// condition, emit a Switch whose Default is the taken branch and whose one
// case matches the not-taken value; brfalse differs from brtrue only in that
// case value (true instead of false).
func (t *translator) translateConditionalBranch(block tag.Block, in *cil.Instruction, stack *[]stackVal) error {
	cond, err := pop(stack)
	if err != nil {
		return err
	}
	if in.Target == nil || in.Next == nil {
		return &MalformedIR{Reason: "conditional branch missing a target or fallthrough"}
	}
	taken, ok := t.blockOf[in.Target]
	if !ok {
		return &MalformedIR{Reason: "conditional branch target was never registered as a block start"}
	}
	notTaken, ok := t.blockOf[in.Next]
	if !ok {
		return &MalformedIR{Reason: "conditional branch fallthrough was never registered as a block start"}
	}

	args := branchArgsOf(*stack)
	takenBranch := ir.Branch{Target: taken, Args: args}
	notTakenBranch := ir.Branch{Target: notTaken, Args: args}

	caseValue := false
	if in.Opcode == cil.OpBrfalse {
		caseValue = true
	}
	t.b.Block(block).SetFlow(ir.Switch{
		Cond: ir.Instruction{Proto: proto.Intern(proto.Copy{T: irtype.Bool}), Args: []tag.Value{cond.tag}},
		Cases: []ir.SwitchCase{
			{Values: []irtype.Constant{irtype.ConstBool{Value: caseValue}}, Branch: notTakenBranch},
		},
		Default: takenBranch,
	})

	stackTypes := stackTypesOf(*stack)
	if err := t.analyzeBlock(in.Target, stackTypes); err != nil {
		return err
	}
	return t.analyzeBlock(in.Next, stackTypes)
}

func push(stack *[]stackVal, v tag.Value, ty irtype.Type) {
	*stack = append(*stack, stackVal{tag: v, typ: ty})
}

func pop(stack *[]stackVal) (stackVal, error) {
	s := *stack
	if len(s) == 0 {
		return stackVal{}, &MalformedIR{Reason: "pop from an empty operand stack"}
	}
	v := s[len(s)-1]
	*stack = s[:len(s)-1]
	return v, nil
}

// popN pops n values, returning them in push order (oldest/bottom-most
// first) — the natural argument order for a call's Params list.
func popN(stack *[]stackVal, n int) ([]stackVal, error) {
	out := make([]stackVal, n)
	for i := n - 1; i >= 0; i-- {
		v, err := pop(stack)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
