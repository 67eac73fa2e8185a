package irtype

import "math/big"

// Constant is a tagged variant over the literal kinds the IR can embed
// directly in a Constant instruction prototype (spec.md §3).
type Constant interface {
	implConstant()
	// Type is the constant's IR type. ConstDefault and ConstNull return
	// the type they were built with.
	Type() Type
	String() string
}

// ConstInt is an arbitrary-width, signed-or-unsigned integer literal.
type ConstInt struct {
	Value    *big.Int
	Width    int
	Unsigned bool
	Ty       Type
}

// ConstFloat is a 32- or 64-bit floating point literal.
type ConstFloat struct {
	Value  float64
	Width  int // 32 or 64
	Single Type
}

// ConstBool is a boolean literal.
type ConstBool struct{ Value bool }

// ConstChar is a single character literal (UTF-16 code unit, matching the
// host language's char type).
type ConstChar struct{ Value uint16 }

// ConstString is a string literal.
type ConstString struct{ Value string }

// ConstNull is the null reference literal.
type ConstNull struct{ Ty Type }

// ConstDefault is the "default value of T" literal (zero/null depending on
// T's structural kind, resolved lazily by whoever lowers the constant).
type ConstDefault struct{ Ty Type }

func (ConstInt) implConstant()     {}
func (ConstFloat) implConstant()   {}
func (ConstBool) implConstant()    {}
func (ConstChar) implConstant()    {}
func (ConstString) implConstant()  {}
func (ConstNull) implConstant()    {}
func (ConstDefault) implConstant() {}

func (c ConstInt) Type() Type {
	if c.Ty != nil {
		return c.Ty
	}
	return Int32
}
func (c ConstFloat) Type() Type {
	if c.Single != nil {
		return c.Single
	}
	if c.Width == 32 {
		return Float32
	}
	return Float64
}
func (ConstBool) Type() Type     { return Bool }
func (ConstChar) Type() Type     { return Char }
func (ConstString) Type() Type   { return Pointer(Char) }
func (c ConstNull) Type() Type   { return c.Ty }
func (c ConstDefault) Type() Type { return c.Ty }

func (c ConstInt) String() string    { return c.Value.String() }
func (c ConstFloat) String() string  { return formatFloat(c.Value) }
func (c ConstBool) String() string {
	if c.Value {
		return "true"
	}
	return "false"
}
func (c ConstChar) String() string   { return string(rune(c.Value)) }
func (c ConstString) String() string { return "\"" + c.Value + "\"" }
func (ConstNull) String() string     { return "null" }
func (c ConstDefault) String() string {
	return "default(" + c.Ty.String() + ")"
}

func formatFloat(f float64) string {
	return new(big.Float).SetFloat64(f).Text('g', -1)
}

// ConstInt32 is a convenience constructor for the common case (spec.md's
// end-to-end scenario S1 pushes a plain int32 literal).
func ConstInt32(v int32) ConstInt {
	return ConstInt{Value: big.NewInt(int64(v)), Width: 32, Ty: Int32}
}

// ConstantsEqual reports whether two constants are structurally identical —
// required by Switch case-set de-duplication and by prototype interning
// for Constant(c, T) prototypes.
func ConstantsEqual(a, b Constant) bool {
	switch av := a.(type) {
	case ConstInt:
		bv, ok := b.(ConstInt)
		return ok && av.Width == bv.Width && av.Unsigned == bv.Unsigned &&
			av.Value.Cmp(bv.Value) == 0 && Equal(av.Ty, bv.Ty)
	case ConstFloat:
		bv, ok := b.(ConstFloat)
		return ok && av.Width == bv.Width && av.Value == bv.Value
	case ConstBool:
		bv, ok := b.(ConstBool)
		return ok && av.Value == bv.Value
	case ConstChar:
		bv, ok := b.(ConstChar)
		return ok && av.Value == bv.Value
	case ConstString:
		bv, ok := b.(ConstString)
		return ok && av.Value == bv.Value
	case ConstNull:
		bv, ok := b.(ConstNull)
		return ok && Equal(av.Ty, bv.Ty)
	case ConstDefault:
		bv, ok := b.(ConstDefault)
		return ok && Equal(av.Ty, bv.Ty)
	}
	return false
}
