// Package irtype defines the opaque Type handle and the Constant variant
// the IR core operates on. The core never introspects inheritance or
// generic instantiation — it only ever asks a Resolver for a type's width,
// signedness, float width, pointer-ness, or void-ness.
package irtype

// Type is an opaque handle provided by the surrounding (host language) type
// system. The core treats it as a comparable value and never looks inside
// it directly; all structural questions go through a Resolver.
type Type interface {
	implType()
	// Key returns a value comparable with ==, used by Equal and by
	// structural interning in pkg/proto.
	Key() any
	String() string
}

// Kind classifies what Resolve reports about a Type.
type Kind int

const (
	KindVoid Kind = iota
	KindInt
	KindFloat
	KindPointer
	KindOther // struct/class/array/etc — opaque to the core
)

// Info is what a Resolver reports about a single Type.
type Info struct {
	Kind     Kind
	Width    int  // bit width for KindInt/KindFloat
	Unsigned bool // only meaningful for KindInt
}

// Resolver answers structural questions about Types on behalf of the
// surrounding type system. The core only ever needs this much; it never
// walks inheritance chains or generic parameter lists itself.
type Resolver interface {
	Resolve(Type) Info
}

// primitive is the core's own minimal Type implementation, sufficient for
// translating bytecode and running the validator without a host type
// system attached. Host type systems may supply their own Type
// implementations as long as they satisfy the interface above.
type primitive struct {
	name     string
	kind     Kind
	width    int
	unsigned bool
}

func (p *primitive) implType() {}
func (p *primitive) Key() any  { return p }
func (p *primitive) String() string {
	return p.name
}

var (
	Void    Type = &primitive{name: "void", kind: KindVoid}
	Bool    Type = &primitive{name: "bool", kind: KindInt, width: 1, unsigned: true}
	Int8    Type = &primitive{name: "int8", kind: KindInt, width: 8}
	Int16   Type = &primitive{name: "int16", kind: KindInt, width: 16}
	Int32   Type = &primitive{name: "int32", kind: KindInt, width: 32}
	Int64   Type = &primitive{name: "int64", kind: KindInt, width: 64}
	UInt8   Type = &primitive{name: "uint8", kind: KindInt, width: 8, unsigned: true}
	UInt16  Type = &primitive{name: "uint16", kind: KindInt, width: 16, unsigned: true}
	UInt32  Type = &primitive{name: "uint32", kind: KindInt, width: 32, unsigned: true}
	UInt64  Type = &primitive{name: "uint64", kind: KindInt, width: 64, unsigned: true}
	Float32 Type = &primitive{name: "float32", kind: KindFloat, width: 32}
	Float64 Type = &primitive{name: "float64", kind: KindFloat, width: 64}
	Char    Type = &primitive{name: "char", kind: KindInt, width: 16, unsigned: true}
)

// pointerType wraps an element Type; pointer-ness is the one structural
// property the core itself needs to construct (for ReinterpretCast,
// function-pointer materialization in delegate lowering, etc.) without
// going through a host resolver.
type pointerType struct {
	Elem Type
}

func (p *pointerType) implType() {}
func (p *pointerType) Key() any  { return pointerKey{elemKey(p.Elem)} }
func (p *pointerType) String() string {
	return p.Elem.String() + "*"
}

type pointerKey struct{ elem any }

func elemKey(t Type) any {
	if t == nil {
		return nil
	}
	return t.Key()
}

// Pointer returns the core's built-in pointer-to-elem type. Host type
// systems with their own richer pointer representation are free to supply
// their own Type instead; the core only requires that a Resolver classify
// it as KindPointer.
func Pointer(elem Type) Type {
	return &pointerType{Elem: elem}
}

// PointerElem reports whether t is the core's own built-in pointer type,
// returning its element type. Used by tooling (the on-disk format) that
// needs to decompose a pointer structurally rather than just classify it.
func PointerElem(t Type) (Type, bool) {
	p, ok := t.(*pointerType)
	if !ok {
		return nil, false
	}
	return p.Elem, true
}

// namedType stands in for a host class/struct/delegate type by name, for
// tooling (the assembler, tests) that needs to reference a KindOther type
// without a full host type system attached.
type namedType struct {
	name string
}

func (n *namedType) implType() {}
func (n *namedType) Key() any  { return namedKey{n.name} }
func (n *namedType) String() string {
	return n.name
}

type namedKey struct{ name string }

// Named returns the core's built-in stand-in for a host-defined type
// referenced only by name. A Resolver classifies it as KindOther.
func Named(name string) Type {
	return &namedType{name: name}
}

// Equal reports structural equality: two Types are equal if their Key()
// values compare equal with ==, which is how prototype interning (pkg/proto)
// and the validator decide two value types match.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Key() == b.Key()
}

// builtinResolver answers Resolve for the core's own primitive/pointer
// types above. Host type systems compose their Resolver with this one (or
// reimplement it) to additionally resolve their own Type values.
type builtinResolver struct{}

func (builtinResolver) Resolve(t Type) Info {
	switch v := t.(type) {
	case *primitive:
		return Info{Kind: v.kind, Width: v.width, Unsigned: v.unsigned}
	case *pointerType:
		return Info{Kind: KindPointer, Width: 64}
	default:
		return Info{Kind: KindOther}
	}
}

// BuiltinResolver returns a Resolver for the core's own built-in types.
func BuiltinResolver() Resolver { return builtinResolver{} }
