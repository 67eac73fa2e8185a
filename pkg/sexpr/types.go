package sexpr

import (
	"fmt"

	"github.com/milcore/milc/pkg/irtype"
)

var primitiveByName = map[string]irtype.Type{
	"void":    irtype.Void,
	"bool":    irtype.Bool,
	"int8":    irtype.Int8,
	"int16":   irtype.Int16,
	"int32":   irtype.Int32,
	"int64":   irtype.Int64,
	"uint8":   irtype.UInt8,
	"uint16":  irtype.UInt16,
	"uint32":  irtype.UInt32,
	"uint64":  irtype.UInt64,
	"float32": irtype.Float32,
	"float64": irtype.Float64,
	"char":    irtype.Char,
}

// EncodeType renders t as its on-disk form: `#primitive_type("name")` for a
// built-in, `#pointer_type(elem)` for a pointer, `#type_reference("name")`
// for anything else (a host-named type, §6.1).
func EncodeType(t irtype.Type) Expr {
	if name, ok := primitiveName(t); ok {
		return List("primitive_type", Str(name))
	}
	if elem, isPtr := irtype.PointerElem(t); isPtr {
		return List("pointer_type", EncodeType(elem))
	}
	return List("type_reference", Str(t.String()))
}

func primitiveName(t irtype.Type) (string, bool) {
	for name, candidate := range primitiveByName {
		if irtype.Equal(t, candidate) {
			return name, true
		}
	}
	return "", false
}

// DecodeType parses the on-disk form produced by EncodeType.
func DecodeType(e Expr) (irtype.Type, error) {
	if e.IsAtom() {
		return nil, fmt.Errorf("sexpr: type expression must be a headed list, got atom %q", e.Atom)
	}
	switch e.Head {
	case "primitive_type":
		if len(e.Args) != 1 {
			return nil, fmt.Errorf("sexpr: primitive_type wants 1 operand, got %d", len(e.Args))
		}
		t, ok := primitiveByName[e.Args[0].Atom]
		if !ok {
			return nil, fmt.Errorf("sexpr: unknown primitive type %q", e.Args[0].Atom)
		}
		return t, nil
	case "pointer_type":
		if len(e.Args) != 1 {
			return nil, fmt.Errorf("sexpr: pointer_type wants 1 operand, got %d", len(e.Args))
		}
		elem, err := DecodeType(e.Args[0])
		if err != nil {
			return nil, err
		}
		return irtype.Pointer(elem), nil
	case "type_reference":
		if len(e.Args) != 1 {
			return nil, fmt.Errorf("sexpr: type_reference wants 1 operand, got %d", len(e.Args))
		}
		return irtype.Named(e.Args[0].Atom), nil
	default:
		return nil, fmt.Errorf("sexpr: unknown type head %q", e.Head)
	}
}
