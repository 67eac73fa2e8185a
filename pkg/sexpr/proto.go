package sexpr

import (
	"fmt"

	"github.com/milcore/milc/pkg/irtype"
	"github.com/milcore/milc/pkg/proto"
)

// EncodePrototype renders a prototype's static shape (§6.1) — the keyed
// heads `alloca`, `alloca_array`, `const`, `copy`, `load`, `store`, `call`,
// `indirect_call`, `new_delegate`, `new_object`, `reinterpret_cast`, plus
// `intrinsic` for the core's catch-all arithmetic/runtime-helper shape.
// Instruction argument tags are not part of a prototype and are encoded
// separately by whatever owns the instruction list.
func EncodePrototype(p proto.Prototype) (Expr, error) {
	switch v := p.(type) {
	case proto.Alloca:
		return List("alloca", EncodeType(v.T)), nil
	case proto.AllocaArray:
		return List("alloca_array", EncodeType(v.T)), nil
	case proto.Constant:
		cv, err := EncodeConstant(v.Value)
		if err != nil {
			return Expr{}, err
		}
		return List("const", cv, EncodeType(v.T)), nil
	case proto.Copy:
		return List("copy", EncodeType(v.T)), nil
	case proto.Load:
		return List("load", EncodeType(v.T)), nil
	case proto.Store:
		return List("store", EncodeType(v.T)), nil
	case proto.Call:
		return List("call", encodeQualifiedName(v.Method), Atm(v.Lookup.String()), EncodeType(v.Ret), encodeTypeList(v.Params)), nil
	case proto.IndirectCall:
		return List("indirect_call", EncodeType(v.Ret), encodeTypeList(v.Params)), nil
	case proto.NewObject:
		return List("new_object", encodeQualifiedName(v.Ctor), EncodeType(v.Result), encodeTypeList(v.Params)), nil
	case proto.NewDelegate:
		return List("new_delegate", EncodeType(v.DelegateType), encodeQualifiedName(v.Callee), Atm(boolAtom(v.HasThis)), Atm(v.Lookup.String())), nil
	case proto.ReinterpretCast:
		return List("reinterpret_cast", EncodeType(v.PtrT)), nil
	case proto.Intrinsic:
		return List("intrinsic", Str(v.Name), EncodeType(v.Ret), encodeTypeList(v.Params), Atm(exceptionSpecAtom(v.Throws))), nil
	default:
		return Expr{}, fmt.Errorf("sexpr: unsupported prototype %T", v)
	}
}

// DecodePrototype is the table-driven inverse of EncodePrototype.
func DecodePrototype(e Expr) (proto.Prototype, error) {
	if e.IsAtom() {
		return nil, fmt.Errorf("sexpr: prototype expression must be a headed list, got atom %q", e.Atom)
	}
	dec, ok := protoDecoders[e.Head]
	if !ok {
		return nil, fmt.Errorf("sexpr: unknown prototype head %q", e.Head)
	}
	return dec(e)
}

var protoDecoders = map[string]func(Expr) (proto.Prototype, error){
	"alloca": func(e Expr) (proto.Prototype, error) {
		t, err := want1Type(e)
		if err != nil {
			return nil, err
		}
		return proto.Alloca{T: t}, nil
	},
	"alloca_array": func(e Expr) (proto.Prototype, error) {
		t, err := want1Type(e)
		if err != nil {
			return nil, err
		}
		return proto.AllocaArray{T: t}, nil
	},
	"const": func(e Expr) (proto.Prototype, error) {
		if len(e.Args) != 2 {
			return nil, fmt.Errorf("sexpr: const wants 2 operands, got %d", len(e.Args))
		}
		cv, err := DecodeConstant(e.Args[0])
		if err != nil {
			return nil, err
		}
		t, err := DecodeType(e.Args[1])
		if err != nil {
			return nil, err
		}
		return proto.Constant{Value: cv, T: t}, nil
	},
	"copy": func(e Expr) (proto.Prototype, error) {
		t, err := want1Type(e)
		if err != nil {
			return nil, err
		}
		return proto.Copy{T: t}, nil
	},
	"load": func(e Expr) (proto.Prototype, error) {
		t, err := want1Type(e)
		if err != nil {
			return nil, err
		}
		return proto.Load{T: t}, nil
	},
	"store": func(e Expr) (proto.Prototype, error) {
		t, err := want1Type(e)
		if err != nil {
			return nil, err
		}
		return proto.Store{T: t}, nil
	},
	"call": func(e Expr) (proto.Prototype, error) {
		if len(e.Args) != 4 {
			return nil, fmt.Errorf("sexpr: call wants 4 operands, got %d", len(e.Args))
		}
		lookup, err := decodeLookup(e.Args[1])
		if err != nil {
			return nil, err
		}
		ret, err := DecodeType(e.Args[2])
		if err != nil {
			return nil, err
		}
		params, err := decodeTypeList(e.Args[3])
		if err != nil {
			return nil, err
		}
		return proto.Call{Method: decodeQualifiedName(e.Args[0]), Lookup: lookup, Ret: ret, Params: params}, nil
	},
	"indirect_call": func(e Expr) (proto.Prototype, error) {
		if len(e.Args) != 2 {
			return nil, fmt.Errorf("sexpr: indirect_call wants 2 operands, got %d", len(e.Args))
		}
		ret, err := DecodeType(e.Args[0])
		if err != nil {
			return nil, err
		}
		params, err := decodeTypeList(e.Args[1])
		if err != nil {
			return nil, err
		}
		return proto.IndirectCall{Ret: ret, Params: params}, nil
	},
	"new_object": func(e Expr) (proto.Prototype, error) {
		if len(e.Args) != 3 {
			return nil, fmt.Errorf("sexpr: new_object wants 3 operands, got %d", len(e.Args))
		}
		result, err := DecodeType(e.Args[1])
		if err != nil {
			return nil, err
		}
		params, err := decodeTypeList(e.Args[2])
		if err != nil {
			return nil, err
		}
		return proto.NewObject{Ctor: decodeQualifiedName(e.Args[0]), Result: result, Params: params}, nil
	},
	"new_delegate": func(e Expr) (proto.Prototype, error) {
		if len(e.Args) != 4 {
			return nil, fmt.Errorf("sexpr: new_delegate wants 4 operands, got %d", len(e.Args))
		}
		delegateType, err := DecodeType(e.Args[0])
		if err != nil {
			return nil, err
		}
		hasThis, err := decodeBoolAtom(e.Args[2])
		if err != nil {
			return nil, err
		}
		lookup, err := decodeLookup(e.Args[3])
		if err != nil {
			return nil, err
		}
		return proto.NewDelegate{DelegateType: delegateType, Callee: decodeQualifiedName(e.Args[1]), HasThis: hasThis, Lookup: lookup}, nil
	},
	"reinterpret_cast": func(e Expr) (proto.Prototype, error) {
		t, err := want1Type(e)
		if err != nil {
			return nil, err
		}
		return proto.ReinterpretCast{PtrT: t}, nil
	},
	"intrinsic": func(e Expr) (proto.Prototype, error) {
		if len(e.Args) != 4 {
			return nil, fmt.Errorf("sexpr: intrinsic wants 4 operands, got %d", len(e.Args))
		}
		ret, err := DecodeType(e.Args[1])
		if err != nil {
			return nil, err
		}
		params, err := decodeTypeList(e.Args[2])
		if err != nil {
			return nil, err
		}
		throws, err := decodeExceptionSpec(e.Args[3])
		if err != nil {
			return nil, err
		}
		return proto.Intrinsic{Name: e.Args[0].Atom, Ret: ret, Params: params, Throws: throws}, nil
	},
}

func want1Type(e Expr) (irtype.Type, error) {
	if len(e.Args) != 1 {
		return nil, fmt.Errorf("sexpr: %s wants 1 operand, got %d", e.Head, len(e.Args))
	}
	return DecodeType(e.Args[0])
}

func encodeTypeList(ts []irtype.Type) Expr {
	args := make([]Expr, len(ts))
	for i, t := range ts {
		args[i] = EncodeType(t)
	}
	return List("types", args...)
}

func decodeTypeList(e Expr) ([]irtype.Type, error) {
	if e.IsAtom() || e.Head != "types" {
		return nil, fmt.Errorf("sexpr: expected a types(...) list, got %v", e)
	}
	out := make([]irtype.Type, len(e.Args))
	for i, a := range e.Args {
		t, err := DecodeType(a)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func boolAtom(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func decodeBoolAtom(e Expr) (bool, error) {
	switch e.Atom {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("sexpr: expected true/false, got %q", e.Atom)
	}
}

func decodeLookup(e Expr) (proto.Lookup, error) {
	switch e.Atom {
	case "static":
		return proto.Static, nil
	case "virtual":
		return proto.Virtual, nil
	default:
		return 0, fmt.Errorf("sexpr: unknown lookup kind %q", e.Atom)
	}
}

func exceptionSpecAtom(s proto.ExceptionSpec) string {
	if s == proto.MayThrow {
		return "maythrow"
	}
	return "nothrow"
}

func decodeExceptionSpec(e Expr) (proto.ExceptionSpec, error) {
	switch e.Atom {
	case "nothrow":
		return proto.NoThrow, nil
	case "maythrow":
		return proto.MayThrow, nil
	default:
		return 0, fmt.Errorf("sexpr: unknown exception spec %q", e.Atom)
	}
}
