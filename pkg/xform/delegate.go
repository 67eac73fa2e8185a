package xform

import (
	"github.com/milcore/milc/pkg/ir"
	"github.com/milcore/milc/pkg/irtype"
	"github.com/milcore/milc/pkg/proto"
	"github.com/milcore/milc/pkg/tag"
)

// DelegateInfo is what the host type system reports about one delegate
// type: its Invoke method (for IndirectCall lowering) and the shape of its
// constructor (for NewDelegate lowering) — the bound-object parameter type
// and the raw function-pointer parameter type.
type DelegateInfo struct {
	Invoke           tag.QualifiedName
	InvokeParamTypes []irtype.Type
	Ctor             tag.QualifiedName
	ObjType          irtype.Type
	FnPtrType        irtype.Type
}

// DelegateResolver answers "is t a delegate type, and if so what does its
// Invoke/ctor look like" on behalf of the host type system — the same
// deferred-to-a-Resolver shape irtype.Resolver uses for structural
// questions the core can't answer on its own.
type DelegateResolver interface {
	ResolveDelegate(t irtype.Type) (DelegateInfo, bool)
}

// DelegateLowering is the canonical hard transform example from §4.6: it
// rewrites IndirectCall-through-a-delegate into a direct virtual Invoke
// call, and rewrites delegate construction (NewDelegate) into object
// construction applied to a bound-object/function-pointer pair — a
// two-step lowering that preserves virtual vs. static dispatch on the
// callee being captured.
type DelegateLowering struct {
	Resolver DelegateResolver
}

func (d DelegateLowering) Apply(g ir.Graph) (ir.Graph, error) {
	b := ir.NewBuilder(g)
	for _, bi := range snapshotInstructions(g) {
		switch p := bi.instr.Proto.(type) {
		case proto.IndirectCall:
			d.lowerIndirectCall(b, bi, p)
		case proto.NewDelegate:
			d.lowerNewDelegate(b, bi, p)
		}
	}
	return b.Snapshot(), nil
}

// lowerIndirectCall rewrites `IndirectCall` whose callee (argument 0) has
// delegate type into `Call(delegate.Invoke, Virtual)` on that same callee.
func (d DelegateLowering) lowerIndirectCall(b *ir.Builder, bi boundInstruction, p proto.IndirectCall) {
	if len(bi.instr.Args) == 0 {
		return
	}
	calleeType, ok := b.Snapshot().GetValueType(bi.instr.Args[0])
	if !ok {
		return
	}
	info, ok := d.Resolver.ResolveDelegate(calleeType)
	if !ok {
		return
	}
	params := make([]irtype.Type, 0, len(p.Params)+1)
	params = append(params, calleeType)
	params = append(params, p.Params...)
	b.Instruction(bi.value).Replace(ir.Instruction{
		Proto: proto.Intern(proto.Call{Method: info.Invoke, Lookup: proto.Virtual, Ret: p.Ret, Params: params}),
		Args:  bi.instr.Args,
	})
}

// lowerNewDelegate rewrites `NewDelegate(type, callee, hasThis, lookup)`
// into `NewObject(delegate_type.ctor)` applied to (bound_object_or_null,
// function_pointer), materializing the function pointer with a second,
// inner NewDelegate whose result type is the ctor's raw function-pointer
// parameter type rather than the delegate type itself.
func (d DelegateLowering) lowerNewDelegate(b *ir.Builder, bi boundInstruction, p proto.NewDelegate) {
	info, ok := d.Resolver.ResolveDelegate(p.DelegateType)
	if !ok {
		return
	}

	view := b.Instruction(bi.value)

	var boundTag tag.Value
	if p.HasThis && len(bi.instr.Args) > 0 {
		boundTag = bi.instr.Args[0]
	} else {
		boundTag = view.InsertBefore(ir.Instruction{
			Proto: proto.Intern(proto.Constant{Value: irtype.ConstNull{Ty: info.ObjType}, T: info.ObjType}),
		}, "bound.null").Tag
	}

	fp := view.InsertBefore(ir.Instruction{
		Proto: proto.Intern(proto.NewDelegate{DelegateType: info.FnPtrType, Callee: p.Callee, HasThis: false, Lookup: p.Lookup}),
	}, "fnptr")

	view.Replace(ir.Instruction{
		Proto: proto.Intern(proto.NewObject{Ctor: info.Ctor, Result: p.DelegateType, Params: []irtype.Type{info.ObjType, info.FnPtrType}}),
		Args:  []tag.Value{boundTag, fp.Tag},
	})
}
