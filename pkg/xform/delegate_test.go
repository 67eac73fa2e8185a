package xform

import (
	"testing"

	"github.com/milcore/milc/pkg/ir"
	"github.com/milcore/milc/pkg/irtype"
	"github.com/milcore/milc/pkg/proto"
	"github.com/milcore/milc/pkg/tag"
)

var delegateType = irtype.Named("Acme.ClickHandler")

type fakeDelegateResolver struct {
	info DelegateInfo
}

func (r fakeDelegateResolver) ResolveDelegate(t irtype.Type) (DelegateInfo, bool) {
	if irtype.Equal(t, delegateType) {
		return r.info, true
	}
	return DelegateInfo{}, false
}

func testResolver() fakeDelegateResolver {
	return fakeDelegateResolver{info: DelegateInfo{
		Invoke:           tag.QualifiedName{Namespace: "Acme.ClickHandler", Parts: []string{"Invoke"}},
		InvokeParamTypes: []irtype.Type{irtype.Int32},
		Ctor:             tag.QualifiedName{Namespace: "Acme.ClickHandler", Parts: []string{".ctor"}},
		ObjType:          irtype.Pointer(irtype.Named("object")),
		FnPtrType:        irtype.Pointer(irtype.Named("Acme.ClickHandler.fnptr")),
	}}
}

// TestLowerIndirectCallThroughDelegate is scenario S4 (part 1).
func TestLowerIndirectCallThroughDelegate(t *testing.T) {
	b := ir.NewBuilder(ir.New())
	entry := b.AddBlock("entry")
	callee := b.NewValueTag("callee")
	arg := b.NewValueTag("arg")
	b.Block(entry).SetParameters([]ir.Param{
		{Tag: callee, Type: delegateType},
		{Tag: arg, Type: irtype.Int32},
	})
	sel := b.AppendInstruction(entry, ir.Instruction{
		Proto: proto.Intern(proto.IndirectCall{Ret: irtype.Int32, Params: []irtype.Type{irtype.Int32}}),
		Args:  []tag.Value{callee, arg},
	}, "call")
	b.Block(entry).SetFlow(ir.Return{Instr: ir.Instruction{Proto: proto.Intern(proto.Copy{T: irtype.Int32}), Args: []tag.Value{sel.Tag}}})
	b.WithEntryPoint(entry)

	g, err := (DelegateLowering{Resolver: testResolver()}).Apply(b.Snapshot())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	instr, ok := g.GetInstruction(sel.Tag)
	if !ok {
		t.Fatal("rewritten instruction missing")
	}
	call, ok := instr.Proto.(proto.Call)
	if !ok {
		t.Fatalf("Proto = %T, want proto.Call", instr.Proto)
	}
	if call.Lookup != proto.Virtual {
		t.Errorf("Lookup = %v, want Virtual", call.Lookup)
	}
	if call.Method.String() != "Acme.ClickHandler.Invoke" {
		t.Errorf("Method = %q, want Acme.ClickHandler.Invoke", call.Method.String())
	}
	if len(instr.Args) != 2 || instr.Args[0] != callee || instr.Args[1] != arg {
		t.Errorf("Args = %v, want [callee, arg] unchanged", instr.Args)
	}
}

// TestLowerNewDelegateWithThis is scenario S4 (part 2): a bound (HasThis)
// delegate construction lowers to NewObject(ctor, boundThis, fnptr).
func TestLowerNewDelegateWithThis(t *testing.T) {
	b := ir.NewBuilder(ir.New())
	entry := b.AddBlock("entry")
	this := b.NewValueTag("this")
	b.Block(entry).SetParameters([]ir.Param{{Tag: this, Type: irtype.Pointer(irtype.Named("Acme.Widget"))}})
	sel := b.AppendInstruction(entry, ir.Instruction{
		Proto: proto.Intern(proto.NewDelegate{
			DelegateType: delegateType,
			Callee:       tag.QualifiedName{Namespace: "Acme.Widget", Parts: []string{"OnClick"}},
			HasThis:      true,
			Lookup:       proto.Virtual,
		}),
		Args: []tag.Value{this},
	}, "del")
	b.Block(entry).SetFlow(ir.Return{Instr: ir.Instruction{Proto: proto.Intern(proto.Copy{T: delegateType}), Args: []tag.Value{sel.Tag}}})
	b.WithEntryPoint(entry)

	g, err := (DelegateLowering{Resolver: testResolver()}).Apply(b.Snapshot())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	instr, ok := g.GetInstruction(sel.Tag)
	if !ok {
		t.Fatal("rewritten instruction missing")
	}
	newObj, ok := instr.Proto.(proto.NewObject)
	if !ok {
		t.Fatalf("Proto = %T, want proto.NewObject", instr.Proto)
	}
	if newObj.Ctor.String() != "Acme.ClickHandler..ctor" {
		t.Errorf("Ctor = %q", newObj.Ctor.String())
	}
	if len(instr.Args) != 2 {
		t.Fatalf("len(Args) = %d, want 2", len(instr.Args))
	}
	if instr.Args[0] != this {
		t.Errorf("Args[0] = %v, want the original 'this' (HasThis was true)", instr.Args[0])
	}
	fpInstr, ok := g.GetInstruction(instr.Args[1])
	if !ok {
		t.Fatal("function-pointer instruction missing")
	}
	fpProto, ok := fpInstr.Proto.(proto.NewDelegate)
	if !ok {
		t.Fatalf("function-pointer Proto = %T, want proto.NewDelegate", fpInstr.Proto)
	}
	if fpProto.HasThis {
		t.Error("the function-pointer NewDelegate should not carry HasThis")
	}
	if !irtype.Equal(fpProto.DelegateType, irtype.Pointer(irtype.Named("Acme.ClickHandler.fnptr"))) {
		t.Errorf("function-pointer DelegateType = %v, want the ctor's fn-ptr parameter type", fpProto.DelegateType)
	}
}

// TestLowerNewDelegateWithoutThis covers the static-callee path: a null
// bound-object constant is synthesized since there is no captured 'this'.
func TestLowerNewDelegateWithoutThis(t *testing.T) {
	b := ir.NewBuilder(ir.New())
	entry := b.AddBlock("entry")
	sel := b.AppendInstruction(entry, ir.Instruction{
		Proto: proto.Intern(proto.NewDelegate{
			DelegateType: delegateType,
			Callee:       tag.QualifiedName{Namespace: "Acme.Widget", Parts: []string{"OnClickStatic"}},
			HasThis:      false,
			Lookup:       proto.Static,
		}),
	}, "del")
	b.Block(entry).SetFlow(ir.Return{Instr: ir.Instruction{Proto: proto.Intern(proto.Copy{T: delegateType}), Args: []tag.Value{sel.Tag}}})
	b.WithEntryPoint(entry)

	g, err := (DelegateLowering{Resolver: testResolver()}).Apply(b.Snapshot())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	instr, _ := g.GetInstruction(sel.Tag)
	newObj := instr.Proto.(proto.NewObject)
	_ = newObj
	boundInstr, ok := g.GetInstruction(instr.Args[0])
	if !ok {
		t.Fatal("bound-object instruction missing")
	}
	constant, ok := boundInstr.Proto.(proto.Constant)
	if !ok {
		t.Fatalf("bound-object Proto = %T, want proto.Constant(null)", boundInstr.Proto)
	}
	if _, isNull := constant.Value.(irtype.ConstNull); !isNull {
		t.Errorf("bound-object constant = %v, want ConstNull", constant.Value)
	}
}
