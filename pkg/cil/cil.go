// Package cil models the stack-based bytecode the translator consumes: a
// linear instruction stream (each instruction knows its Next), a local
// variable slot list, and an optional `this` parameter.
package cil

import (
	"fmt"

	"github.com/milcore/milc/pkg/irtype"
	"github.com/milcore/milc/pkg/tag"
)

// Opcode names one stack-machine operation. Coverage here matches
// pkg/translator's implemented subset (§4.5 step 4 is explicit that
// opcode coverage is representative, not exhaustive).
type Opcode int

const (
	OpNop Opcode = iota
	OpLdcI4
	OpLdarg
	OpLdloc
	OpStloc
	OpRet
	OpBr
	OpBrtrue
	OpBrfalse
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpCeq
	OpClt
	OpCgt
	OpCall
	OpCallvirt
	OpNewobj
	OpThrow
)

func (o Opcode) String() string {
	switch o {
	case OpNop:
		return "nop"
	case OpLdcI4:
		return "ldc.i4"
	case OpLdarg:
		return "ldarg"
	case OpLdloc:
		return "ldloc"
	case OpStloc:
		return "stloc"
	case OpRet:
		return "ret"
	case OpBr:
		return "br"
	case OpBrtrue:
		return "brtrue"
	case OpBrfalse:
		return "brfalse"
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	case OpCeq:
		return "ceq"
	case OpClt:
		return "clt"
	case OpCgt:
		return "cgt"
	case OpCall:
		return "call"
	case OpCallvirt:
		return "callvirt"
	case OpNewobj:
		return "newobj"
	case OpThrow:
		return "throw"
	default:
		return fmt.Sprintf("opcode(%d)", int(o))
	}
}

// CallSignature describes a method or constructor reference carried by a
// call/callvirt/newobj instruction.
type CallSignature struct {
	Method tag.QualifiedName
	Ret    irtype.Type
	Params []irtype.Type
}

// Instruction is one bytecode instruction. Only the fields meaningful to
// its Opcode are populated; the rest are left zero.
type Instruction struct {
	Opcode Opcode

	// IntOperand carries ldc.i4's constant, and ldarg/ldloc/stloc's slot
	// index.
	IntOperand int32

	// Target is the branch target for br/brtrue/brfalse.
	Target *Instruction

	// Call is the callee signature for call/callvirt/newobj.
	Call *CallSignature

	// Next is the next instruction in program order, nil at the end of
	// the stream.
	Next *Instruction
}

func (i *Instruction) String() string {
	switch i.Opcode {
	case OpLdcI4:
		return fmt.Sprintf("ldc.i4 %d", i.IntOperand)
	case OpLdarg, OpLdloc, OpStloc:
		return fmt.Sprintf("%s %d", i.Opcode, i.IntOperand)
	case OpBr, OpBrtrue, OpBrfalse:
		return fmt.Sprintf("%s <target>", i.Opcode)
	case OpCall, OpCallvirt, OpNewobj:
		if i.Call != nil {
			return fmt.Sprintf("%s %s", i.Opcode, i.Call.Method)
		}
		return i.Opcode.String()
	default:
		return i.Opcode.String()
	}
}

// Local is one local variable slot.
type Local struct {
	Type irtype.Type
}

// MethodBody is a complete bytecode method: its signature (optional this,
// ordered parameter types, return type), its local slots, and the entry
// instruction of its linear instruction stream.
type MethodBody struct {
	This       irtype.Type // nil for a static method
	Params     []irtype.Type
	ReturnType irtype.Type
	Locals     []Local
	Entry      *Instruction
}

// Instructions returns every instruction in program order, following Next.
func (m MethodBody) Instructions() []*Instruction {
	var out []*Instruction
	for i := m.Entry; i != nil; i = i.Next {
		out = append(out, i)
	}
	return out
}
