// Package proto defines instruction prototypes: immutable, structurally
// interned descriptors of an operation's kind and static (non-value)
// operands. A prototype fixes everything about an operation except which
// values it is applied to; pkg/ir pairs a prototype with value-tag
// arguments to form an Instruction.
package proto

import (
	"fmt"

	"github.com/milcore/milc/pkg/irtype"
	"github.com/milcore/milc/pkg/tag"
)

// Lookup distinguishes static from virtual method dispatch on Call and
// NewDelegate.
type Lookup int

const (
	Static Lookup = iota
	Virtual
)

func (l Lookup) String() string {
	if l == Virtual {
		return "virtual"
	}
	return "static"
}

// ExceptionSpec classifies whether executing an instruction built from a
// prototype may throw.
type ExceptionSpec int

const (
	NoThrow ExceptionSpec = iota
	MayThrow
)

// Prototype is the sum type over every instruction shape the core knows.
// Conformance and Map are capabilities on the variant itself, never routed
// through inheritance.
type Prototype interface {
	implPrototype()

	// ResultType is the type of the value produced by an instance of this
	// prototype (irtype.Void for statement-only prototypes).
	ResultType() irtype.Type
	// Arity is the number of value-tag arguments an instance must carry.
	Arity() int
	// CheckParamType reports whether the type of the i-th argument is
	// acceptable. i is 0-based and must be < Arity().
	CheckParamType(i int, argType irtype.Type) bool
	// Exceptions reports whether this operation may throw.
	Exceptions() ExceptionSpec
	// Map returns a new prototype of the same variant with its types
	// rewritten by f. The result is not passed through Intern.
	Map(f func(irtype.Type) irtype.Type) Prototype
	// key returns the structural identity used for interning; equal
	// prototypes (by value) must produce equal keys.
	key() any
	String() string
}

// --- Alloca ---

type Alloca struct{ T irtype.Type }

func (Alloca) implPrototype() {}

func (p Alloca) ResultType() irtype.Type { return irtype.Pointer(p.T) }

func (Alloca) Arity() int { return 0 }

func (Alloca) CheckParamType(int, irtype.Type) bool { return false }

func (Alloca) Exceptions() ExceptionSpec { return NoThrow }

func (p Alloca) Map(f func(irtype.Type) irtype.Type) Prototype {
	return Alloca{T: f(p.T)}
}

func (p Alloca) key() any { return allocaKey{typeKey(p.T)} }

func (p Alloca) String() string { return fmt.Sprintf("alloca(%s)", p.T) }

type allocaKey struct{ t any }

// --- AllocaArray ---

type AllocaArray struct{ T irtype.Type }

func (AllocaArray) implPrototype() {}

func (p AllocaArray) ResultType() irtype.Type { return irtype.Pointer(p.T) }

func (AllocaArray) Arity() int { return 1 } // element count

func (p AllocaArray) CheckParamType(i int, t irtype.Type) bool {
	return i == 0 && isIntegral(t)
}

func (AllocaArray) Exceptions() ExceptionSpec { return NoThrow }

func (p AllocaArray) Map(f func(irtype.Type) irtype.Type) Prototype {
	return AllocaArray{T: f(p.T)}
}

func (p AllocaArray) key() any { return allocaArrayKey{typeKey(p.T)} }

func (p AllocaArray) String() string { return fmt.Sprintf("alloca_array(%s)", p.T) }

type allocaArrayKey struct{ t any }

// --- Constant ---

type Constant struct {
	Value irtype.Constant
	T     irtype.Type
}

func (Constant) implPrototype() {}

func (p Constant) ResultType() irtype.Type { return p.T }

func (Constant) Arity() int { return 0 }

func (Constant) CheckParamType(int, irtype.Type) bool { return false }

func (Constant) Exceptions() ExceptionSpec { return NoThrow }

func (p Constant) Map(f func(irtype.Type) irtype.Type) Prototype {
	return Constant{Value: p.Value, T: f(p.T)}
}

func (p Constant) key() any {
	return constKey{constValueKey(p.Value), typeKey(p.T)}
}

func (p Constant) String() string { return fmt.Sprintf("const(%s, %s)", p.Value, p.T) }

type constKey struct {
	v any
	t any
}

// constValueKey produces a comparable key for an irtype.Constant. Constant
// variants that embed a *big.Int (ConstInt) cannot be compared with == to a
// value copy, so those fold to a canonical string form; every other variant
// folds to a string of its Go type name and its String() form.
func constValueKey(c irtype.Constant) any {
	switch v := c.(type) {
	case irtype.ConstInt:
		return "int:" + v.Value.String() + "/" + fmt.Sprint(v.Width, v.Unsigned) + "/" + typeKeyString(v.Ty)
	default:
		return fmt.Sprintf("%T:%v", c, c)
	}
}

func typeKeyString(t irtype.Type) string {
	if t == nil {
		return "<nil>"
	}
	return fmt.Sprint(t.Key())
}

// --- Copy ---

type Copy struct{ T irtype.Type }

func (Copy) implPrototype() {}

func (p Copy) ResultType() irtype.Type { return p.T }

func (Copy) Arity() int { return 1 }

func (p Copy) CheckParamType(i int, t irtype.Type) bool {
	return i == 0 && irtype.Equal(t, p.T)
}

func (Copy) Exceptions() ExceptionSpec { return NoThrow }

func (p Copy) Map(f func(irtype.Type) irtype.Type) Prototype { return Copy{T: f(p.T)} }

func (p Copy) key() any { return copyKey{typeKey(p.T)} }

func (p Copy) String() string { return fmt.Sprintf("copy(%s)", p.T) }

type copyKey struct{ t any }

// --- Load ---

type Load struct{ T irtype.Type }

func (Load) implPrototype() {}

func (p Load) ResultType() irtype.Type { return p.T }

func (Load) Arity() int { return 1 } // pointer

func (p Load) CheckParamType(i int, t irtype.Type) bool {
	return i == 0 && isPointerTo(t, p.T)
}

func (Load) Exceptions() ExceptionSpec { return MayThrow } // may fault on null

func (p Load) Map(f func(irtype.Type) irtype.Type) Prototype { return Load{T: f(p.T)} }

func (p Load) key() any { return loadKey{typeKey(p.T)} }

func (p Load) String() string { return fmt.Sprintf("load(%s)", p.T) }

type loadKey struct{ t any }

// --- Store ---

type Store struct{ T irtype.Type }

func (Store) implPrototype() {}

func (Store) ResultType() irtype.Type { return irtype.Void }

func (Store) Arity() int { return 2 } // value, pointer

func (p Store) CheckParamType(i int, t irtype.Type) bool {
	switch i {
	case 0:
		return irtype.Equal(t, p.T)
	case 1:
		return isPointerTo(t, p.T)
	default:
		return false
	}
}

func (Store) Exceptions() ExceptionSpec { return MayThrow }

func (p Store) Map(f func(irtype.Type) irtype.Type) Prototype { return Store{T: f(p.T)} }

func (p Store) key() any { return storeKey{typeKey(p.T)} }

func (p Store) String() string { return fmt.Sprintf("store(%s)", p.T) }

type storeKey struct{ t any }

// --- Call ---

type Call struct {
	Method tag.QualifiedName
	Lookup Lookup
	Ret    irtype.Type
	Params []irtype.Type
}

func (Call) implPrototype() {}

func (p Call) ResultType() irtype.Type { return p.Ret }

func (p Call) Arity() int { return len(p.Params) }

func (p Call) CheckParamType(i int, t irtype.Type) bool {
	return i >= 0 && i < len(p.Params) && irtype.Equal(t, p.Params[i])
}

func (Call) Exceptions() ExceptionSpec { return MayThrow }

func (p Call) Map(f func(irtype.Type) irtype.Type) Prototype {
	params := make([]irtype.Type, len(p.Params))
	for i, t := range p.Params {
		params[i] = f(t)
	}
	return Call{Method: p.Method, Lookup: p.Lookup, Ret: f(p.Ret), Params: params}
}

func (p Call) key() any {
	return callKey{p.Method.String(), p.Lookup, typeKey(p.Ret), typeKeys(p.Params)}
}

func (p Call) String() string {
	return fmt.Sprintf("call(%s, %s)", p.Method, p.Lookup)
}

type callKey struct {
	method string
	lookup Lookup
	ret    any
	params string
}

// --- IndirectCall ---

type IndirectCall struct {
	Ret    irtype.Type
	Params []irtype.Type
}

func (IndirectCall) implPrototype() {}

func (p IndirectCall) ResultType() irtype.Type { return p.Ret }

// Arity is len(Params)+1: argument 0 is the callee (function/delegate
// pointer), the rest are the call's actual parameters.
func (p IndirectCall) Arity() int { return len(p.Params) + 1 }

func (p IndirectCall) CheckParamType(i int, t irtype.Type) bool {
	if i == 0 {
		return isCallableAs(t, p.Ret, p.Params)
	}
	j := i - 1
	return j >= 0 && j < len(p.Params) && irtype.Equal(t, p.Params[j])
}

func (IndirectCall) Exceptions() ExceptionSpec { return MayThrow }

func (p IndirectCall) Map(f func(irtype.Type) irtype.Type) Prototype {
	params := make([]irtype.Type, len(p.Params))
	for i, t := range p.Params {
		params[i] = f(t)
	}
	return IndirectCall{Ret: f(p.Ret), Params: params}
}

func (p IndirectCall) key() any {
	return indirectCallKey{typeKey(p.Ret), typeKeys(p.Params)}
}

func (p IndirectCall) String() string { return fmt.Sprintf("indirect_call(%s, ...)", p.Ret) }

type indirectCallKey struct {
	ret    any
	params string
}

// --- NewObject ---

type NewObject struct {
	Ctor   tag.QualifiedName
	Result irtype.Type
	Params []irtype.Type
}

func (NewObject) implPrototype() {}

func (p NewObject) ResultType() irtype.Type { return p.Result }

func (p NewObject) Arity() int { return len(p.Params) }

func (p NewObject) CheckParamType(i int, t irtype.Type) bool {
	return i >= 0 && i < len(p.Params) && irtype.Equal(t, p.Params[i])
}

func (NewObject) Exceptions() ExceptionSpec { return MayThrow }

func (p NewObject) Map(f func(irtype.Type) irtype.Type) Prototype {
	params := make([]irtype.Type, len(p.Params))
	for i, t := range p.Params {
		params[i] = f(t)
	}
	return NewObject{Ctor: p.Ctor, Result: f(p.Result), Params: params}
}

func (p NewObject) key() any {
	return newObjectKey{p.Ctor.String(), typeKey(p.Result), typeKeys(p.Params)}
}

func (p NewObject) String() string { return fmt.Sprintf("new_object(%s)", p.Ctor) }

type newObjectKey struct {
	ctor   string
	result any
	params string
}

// --- NewDelegate ---

type NewDelegate struct {
	DelegateType irtype.Type
	Callee       tag.QualifiedName
	HasThis      bool
	Lookup       Lookup
}

func (NewDelegate) implPrototype() {}

func (p NewDelegate) ResultType() irtype.Type { return p.DelegateType }

func (p NewDelegate) Arity() int {
	if p.HasThis {
		return 1
	}
	return 0
}

func (p NewDelegate) CheckParamType(i int, t irtype.Type) bool {
	return p.HasThis && i == 0
}

func (NewDelegate) Exceptions() ExceptionSpec { return NoThrow }

func (p NewDelegate) Map(f func(irtype.Type) irtype.Type) Prototype {
	return NewDelegate{
		DelegateType: f(p.DelegateType),
		Callee:       p.Callee,
		HasThis:      p.HasThis,
		Lookup:       p.Lookup,
	}
}

func (p NewDelegate) key() any {
	return newDelegateKey{typeKey(p.DelegateType), p.Callee.String(), p.HasThis, p.Lookup}
}

func (p NewDelegate) String() string {
	return fmt.Sprintf("new_delegate(%s, %s, this=%v, %s)", p.DelegateType, p.Callee, p.HasThis, p.Lookup)
}

type newDelegateKey struct {
	delegateType any
	callee       string
	hasThis      bool
	lookup       Lookup
}

// --- ReinterpretCast ---

type ReinterpretCast struct{ PtrT irtype.Type }

func (ReinterpretCast) implPrototype() {}

func (p ReinterpretCast) ResultType() irtype.Type { return p.PtrT }

func (ReinterpretCast) Arity() int { return 1 }

func (p ReinterpretCast) CheckParamType(i int, t irtype.Type) bool {
	return i == 0 && t != nil
}

func (ReinterpretCast) Exceptions() ExceptionSpec { return NoThrow }

func (p ReinterpretCast) Map(f func(irtype.Type) irtype.Type) Prototype {
	return ReinterpretCast{PtrT: f(p.PtrT)}
}

func (p ReinterpretCast) key() any { return reinterpretCastKey{typeKey(p.PtrT)} }

func (p ReinterpretCast) String() string { return fmt.Sprintf("reinterpret_cast(%s)", p.PtrT) }

type reinterpretCastKey struct{ t any }

// --- Intrinsic ---

type Intrinsic struct {
	Name   string
	Ret    irtype.Type
	Params []irtype.Type
	Throws ExceptionSpec
}

func (Intrinsic) implPrototype() {}

func (p Intrinsic) ResultType() irtype.Type { return p.Ret }

func (p Intrinsic) Arity() int { return len(p.Params) }

func (p Intrinsic) CheckParamType(i int, t irtype.Type) bool {
	return i >= 0 && i < len(p.Params) && irtype.Equal(t, p.Params[i])
}

func (p Intrinsic) Exceptions() ExceptionSpec { return p.Throws }

func (p Intrinsic) Map(f func(irtype.Type) irtype.Type) Prototype {
	params := make([]irtype.Type, len(p.Params))
	for i, t := range p.Params {
		params[i] = f(t)
	}
	return Intrinsic{Name: p.Name, Ret: f(p.Ret), Params: params, Throws: p.Throws}
}

func (p Intrinsic) key() any {
	return intrinsicKey{p.Name, typeKey(p.Ret), typeKeys(p.Params), p.Throws}
}

func (p Intrinsic) String() string { return fmt.Sprintf("intrinsic(%s)", p.Name) }

type intrinsicKey struct {
	name   string
	ret    any
	params string
	throws ExceptionSpec
}

// --- shared helpers ---

func typeKey(t irtype.Type) any {
	if t == nil {
		return nil
	}
	return t.Key()
}

func typeKeys(ts []irtype.Type) string {
	s := ""
	for _, t := range ts {
		s += fmt.Sprint(typeKey(t)) + ","
	}
	return s
}

func isIntegral(t irtype.Type) bool {
	info := irtype.BuiltinResolver().Resolve(t)
	return info.Kind == irtype.KindInt
}

func isPointerTo(candidate, elem irtype.Type) bool {
	return irtype.Equal(candidate, irtype.Pointer(elem))
}

// isCallableAs is the IndirectCall callee check. It accepts any callee that
// the built-in resolver classifies as a pointer or as KindOther (which
// covers named host types such as delegates). It does not compare ret or
// params with the callee's own signature, and no host Resolver is consulted.
func isCallableAs(callee, ret irtype.Type, params []irtype.Type) bool {
	info := irtype.BuiltinResolver().Resolve(callee)
	return info.Kind == irtype.KindPointer || info.Kind == irtype.KindOther
}

// CheckConformance validates argCount and per-argument types against p,
// where argTypes[i] is the result type of the i-th value-tag argument in
// the enclosing body (per §4.1). It returns the list of human-readable
// conformance errors, empty when p conforms.
func CheckConformance(p Prototype, argTypes []irtype.Type) []string {
	var errs []string
	if len(argTypes) != p.Arity() {
		errs = append(errs, fmt.Sprintf("%s: expected %d arguments, got %d", p, p.Arity(), len(argTypes)))
		return errs
	}
	for i, t := range argTypes {
		if !p.CheckParamType(i, t) {
			errs = append(errs, fmt.Sprintf("%s: argument %d has incompatible type %s", p, i, t))
		}
	}
	return errs
}
