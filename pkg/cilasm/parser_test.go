package cilasm

import (
	"testing"

	"github.com/milcore/milc/pkg/cil"
	"github.com/milcore/milc/pkg/irtype"
)

func parse(t *testing.T, src string) cil.MethodBody {
	t.Helper()
	p := NewParser(NewLexer(src))
	body := p.ParseMethodBody()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	return body
}

func TestParseSimpleReturn(t *testing.T) {
	body := parse(t, `
.ret int32
ldc.i4 42
ret
`)
	if !irtype.Equal(body.ReturnType, irtype.Int32) {
		t.Fatalf("ReturnType = %v, want int32", body.ReturnType)
	}
	instrs := body.Instructions()
	if len(instrs) != 2 {
		t.Fatalf("len(instrs) = %d, want 2", len(instrs))
	}
	if instrs[0].Opcode != cil.OpLdcI4 || instrs[0].IntOperand != 42 {
		t.Errorf("instrs[0] = %v, want ldc.i4 42", instrs[0])
	}
	if instrs[1].Opcode != cil.OpRet {
		t.Errorf("instrs[1].Opcode = %v, want ret", instrs[1].Opcode)
	}
}

func TestParseParamsLocalsAndThis(t *testing.T) {
	body := parse(t, `
.this Acme.Widget
.params int32, bool
.locals float64
.ret void
ldarg 0
stloc 0
ret
`)
	if body.This == nil || body.This.String() != "Acme.Widget" {
		t.Errorf("This = %v, want Acme.Widget", body.This)
	}
	if len(body.Params) != 2 || !irtype.Equal(body.Params[0], irtype.Int32) || !irtype.Equal(body.Params[1], irtype.Bool) {
		t.Errorf("Params = %v", body.Params)
	}
	if len(body.Locals) != 1 || !irtype.Equal(body.Locals[0].Type, irtype.Float64) {
		t.Errorf("Locals = %v", body.Locals)
	}
}

func TestParseBranchResolvesForwardLabel(t *testing.T) {
	body := parse(t, `
.ret int32
ldarg 0
brtrue positive
ldc.i4 0
ret
positive:
ldc.i4 1
ret
`)
	instrs := body.Instructions()
	var brtrue *cil.Instruction
	for _, i := range instrs {
		if i.Opcode == cil.OpBrtrue {
			brtrue = i
		}
	}
	if brtrue == nil {
		t.Fatal("expected a brtrue instruction")
	}
	if brtrue.Target == nil || brtrue.Target.Opcode != cil.OpLdcI4 || brtrue.Target.IntOperand != 1 {
		t.Errorf("brtrue.Target = %v, want the ldc.i4 1 under label 'positive'", brtrue.Target)
	}
}

func TestParseCallAndNewobjSignatures(t *testing.T) {
	body := parse(t, `
.ret int32
call int32 Acme.Widget.Frob(int32, int32)
newobj Acme.Widget(int32)
ret
`)
	instrs := body.Instructions()
	call := instrs[0]
	if call.Opcode != cil.OpCall {
		t.Fatalf("instrs[0].Opcode = %v, want call", call.Opcode)
	}
	if call.Call.Method.String() != "Acme.Widget.Frob" {
		t.Errorf("call.Call.Method = %q, want Acme.Widget.Frob", call.Call.Method.String())
	}
	if len(call.Call.Params) != 2 {
		t.Errorf("len(call.Call.Params) = %d, want 2", len(call.Call.Params))
	}

	newobj := instrs[1]
	if newobj.Opcode != cil.OpNewobj {
		t.Fatalf("instrs[1].Opcode = %v, want newobj", newobj.Opcode)
	}
	if newobj.Call.Method.String() != "Acme.Widget" {
		t.Errorf("newobj.Call.Method = %q, want Acme.Widget", newobj.Call.Method.String())
	}
}

func TestParseUnrecognizedOpcodeIsReported(t *testing.T) {
	p := NewParser(NewLexer(".ret void\nbogus_op\nret\n"))
	p.ParseMethodBody()
	if len(p.Errors()) == 0 {
		t.Error("expected an error for an unrecognized opcode")
	}
}

func TestParseUndefinedLabelIsReported(t *testing.T) {
	p := NewParser(NewLexer(".ret void\nbr nowhere\nret\n"))
	p.ParseMethodBody()
	if len(p.Errors()) == 0 {
		t.Error("expected an error for a branch to an undefined label")
	}
}

func TestParsePointerType(t *testing.T) {
	body := parse(t, `
.params int32*
.ret void
ldarg 0
ret
`)
	if len(body.Params) != 1 {
		t.Fatalf("len(Params) = %d, want 1", len(body.Params))
	}
	r := irtype.BuiltinResolver()
	info := r.Resolve(body.Params[0])
	if info.Kind != irtype.KindPointer {
		t.Errorf("Params[0] kind = %v, want KindPointer", info.Kind)
	}
}
