package sexpr

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/milcore/milc/pkg/irtype"
)

// EncodeConstant renders c in its on-disk form (§6.1). Unsigned integer
// constants always encode as `const_uintN`; `const_bitN` is accepted on
// decode (as a synonym, for inputs produced by other encoders) but is
// never itself produced, since irtype.ConstInt carries only a signed/
// unsigned flag, not a separate "raw bit pattern" kind.
func EncodeConstant(c irtype.Constant) (Expr, error) {
	switch v := c.(type) {
	case irtype.ConstInt:
		head := fmt.Sprintf("const_int%d", v.Width)
		if v.Unsigned {
			head = fmt.Sprintf("const_uint%d", v.Width)
		}
		return List(head, Atm(v.Value.String())), nil
	case irtype.ConstFloat:
		return List(fmt.Sprintf("const_float%d", v.Width), Atm(formatFloatAtom(v.Value))), nil
	case irtype.ConstBool:
		return List("const_bool", Atm(strconv.FormatBool(v.Value))), nil
	case irtype.ConstChar:
		return List("const_char", Atm(strconv.Itoa(int(v.Value)))), nil
	case irtype.ConstString:
		return List("const_string", Str(v.Value)), nil
	case irtype.ConstNull:
		return List("const_null", EncodeType(v.Ty)), nil
	case irtype.ConstDefault:
		return List("const_default", EncodeType(v.Ty)), nil
	default:
		return Expr{}, fmt.Errorf("sexpr: unsupported constant type %T", v)
	}
}

func formatFloatAtom(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// DecodeConstant parses the on-disk form produced by EncodeConstant.
func DecodeConstant(e Expr) (irtype.Constant, error) {
	if e.IsAtom() {
		return nil, fmt.Errorf("sexpr: constant expression must be a headed list, got atom %q", e.Atom)
	}

	if width, ok := constIntWidth(e.Head, "const_int"); ok {
		return decodeConstInt(e, width, false)
	}
	if width, ok := constIntWidth(e.Head, "const_uint"); ok {
		return decodeConstInt(e, width, true)
	}
	if width, ok := constIntWidth(e.Head, "const_bit"); ok {
		return decodeConstInt(e, width, true)
	}

	switch {
	case e.Head == "const_float32" || e.Head == "const_float64":
		width := 32
		if e.Head == "const_float64" {
			width = 64
		}
		if len(e.Args) != 1 {
			return nil, fmt.Errorf("sexpr: %s wants 1 operand", e.Head)
		}
		f, err := strconv.ParseFloat(e.Args[0].Atom, 64)
		if err != nil {
			return nil, fmt.Errorf("sexpr: %s: %w", e.Head, err)
		}
		return irtype.ConstFloat{Value: f, Width: width}, nil
	case e.Head == "const_bool":
		if len(e.Args) != 1 {
			return nil, fmt.Errorf("sexpr: const_bool wants 1 operand")
		}
		b, err := strconv.ParseBool(e.Args[0].Atom)
		if err != nil {
			return nil, fmt.Errorf("sexpr: const_bool: %w", err)
		}
		return irtype.ConstBool{Value: b}, nil
	case e.Head == "const_char":
		if len(e.Args) != 1 {
			return nil, fmt.Errorf("sexpr: const_char wants 1 operand")
		}
		n, err := strconv.Atoi(e.Args[0].Atom)
		if err != nil {
			return nil, fmt.Errorf("sexpr: const_char: %w", err)
		}
		return irtype.ConstChar{Value: uint16(n)}, nil
	case e.Head == "const_string":
		if len(e.Args) != 1 {
			return nil, fmt.Errorf("sexpr: const_string wants 1 operand")
		}
		return irtype.ConstString{Value: e.Args[0].Atom}, nil
	case e.Head == "const_void":
		return nil, fmt.Errorf("sexpr: const_void has no irtype.Constant representation")
	case e.Head == "const_null":
		if len(e.Args) != 1 {
			return nil, fmt.Errorf("sexpr: const_null wants 1 operand")
		}
		ty, err := DecodeType(e.Args[0])
		if err != nil {
			return nil, err
		}
		return irtype.ConstNull{Ty: ty}, nil
	case e.Head == "const_default":
		if len(e.Args) != 1 {
			return nil, fmt.Errorf("sexpr: const_default wants 1 operand")
		}
		ty, err := DecodeType(e.Args[0])
		if err != nil {
			return nil, err
		}
		return irtype.ConstDefault{Ty: ty}, nil
	}
	return nil, fmt.Errorf("sexpr: unknown constant head %q", e.Head)
}

// constIntWidth matches heads like "const_int32" against a given prefix,
// returning the parsed width.
func constIntWidth(head, prefix string) (int, bool) {
	if len(head) <= len(prefix) || head[:len(prefix)] != prefix {
		return 0, false
	}
	n, err := strconv.Atoi(head[len(prefix):])
	if err != nil {
		return 0, false
	}
	return n, true
}

var canonicalIntType = map[[2]int]irtype.Type{
	{8, 0}: irtype.Int8, {16, 0}: irtype.Int16, {32, 0}: irtype.Int32, {64, 0}: irtype.Int64,
	{8, 1}: irtype.UInt8, {16, 1}: irtype.UInt16, {32, 1}: irtype.UInt32, {64, 1}: irtype.UInt64,
}

func decodeConstInt(e Expr, width int, unsigned bool) (irtype.Constant, error) {
	if len(e.Args) != 1 {
		return nil, fmt.Errorf("sexpr: %s wants 1 operand", e.Head)
	}
	v, ok := new(big.Int).SetString(e.Args[0].Atom, 10)
	if !ok {
		return nil, fmt.Errorf("sexpr: %s: not an integer literal %q", e.Head, e.Args[0].Atom)
	}
	u := 0
	if unsigned {
		u = 1
	}
	return irtype.ConstInt{Value: v, Width: width, Unsigned: unsigned, Ty: canonicalIntType[[2]int{width, u}]}, nil
}
