package sexpr

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/milcore/milc/pkg/irtype"
	"github.com/milcore/milc/pkg/proto"
	"github.com/milcore/milc/pkg/tag"
)

// TestExprTreeStructuralEquality checks Expr trees field-by-field rather
// than via String(), catching a bug (e.g. a swapped IsQuote or an Args
// built in the wrong order) that a textual comparison would paper over if
// two different trees happened to print the same.
func TestExprTreeStructuralEquality(t *testing.T) {
	want := List("call", Str("Acme.Widget.Frob"), List("types", Atm("int32"), Atm("bool")), Atm("virtual"))
	got, err := Parse(want.String())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parsed Expr tree differs from the one that produced its text (-want +got):\n%s", diff)
	}
}

func TestParseRoundTripsExprString(t *testing.T) {
	e := List("call", Str("Acme.Widget.Frob"), Atm("virtual"))
	got, err := Parse(e.String())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.String() != e.String() {
		t.Errorf("round trip = %q, want %q", got.String(), e.String())
	}
}

func TestTypeRoundTrip(t *testing.T) {
	cases := []irtype.Type{
		irtype.Void,
		irtype.Int32,
		irtype.UInt64,
		irtype.Bool,
		irtype.Char,
		irtype.Pointer(irtype.Int32),
		irtype.Pointer(irtype.Pointer(irtype.Float64)),
		irtype.Named("Acme.Widget"),
	}
	for _, want := range cases {
		e := EncodeType(want)
		got, err := DecodeType(e)
		if err != nil {
			t.Fatalf("DecodeType(%v): %v", e, err)
		}
		if !irtype.Equal(got, want) {
			t.Errorf("round trip for %v: got %v", want, got)
		}
		// also via text form
		reparsed, err := Parse(e.String())
		if err != nil {
			t.Fatalf("Parse(%q): %v", e.String(), err)
		}
		got2, err := DecodeType(reparsed)
		if err != nil {
			t.Fatalf("DecodeType(reparsed): %v", err)
		}
		if !irtype.Equal(got2, want) {
			t.Errorf("text round trip for %v: got %v", want, got2)
		}
	}
}

func TestConstantRoundTrip(t *testing.T) {
	cases := []irtype.Constant{
		irtype.ConstInt32(42),
		irtype.ConstInt{Value: big.NewInt(-7), Width: 64, Ty: irtype.Int64},
		irtype.ConstInt{Value: big.NewInt(255), Width: 8, Unsigned: true, Ty: irtype.UInt8},
		irtype.ConstFloat{Value: 3.5, Width: 64},
		irtype.ConstBool{Value: true},
		irtype.ConstChar{Value: 'x'},
		irtype.ConstString{Value: "hello, world"},
		irtype.ConstNull{Ty: irtype.Pointer(irtype.Int32)},
		irtype.ConstDefault{Ty: irtype.Int32},
	}
	for _, want := range cases {
		e, err := EncodeConstant(want)
		if err != nil {
			t.Fatalf("EncodeConstant(%v): %v", want, err)
		}
		got, err := DecodeConstant(e)
		if err != nil {
			t.Fatalf("DecodeConstant(%v): %v", e, err)
		}
		if !irtype.ConstantsEqual(got, want) {
			t.Errorf("round trip for %v: got %v", want, got)
		}

		reparsed, err := Parse(e.String())
		if err != nil {
			t.Fatalf("Parse(%q): %v", e.String(), err)
		}
		got2, err := DecodeConstant(reparsed)
		if err != nil {
			t.Fatalf("DecodeConstant(reparsed): %v", err)
		}
		if !irtype.ConstantsEqual(got2, want) {
			t.Errorf("text round trip for %v: got %v", want, got2)
		}
	}
}

func TestPrototypeRoundTrip(t *testing.T) {
	ctor := tag.QualifiedName{Namespace: "Acme.Widget", Parts: []string{"Frob"}}
	cases := []proto.Prototype{
		proto.Alloca{T: irtype.Int32},
		proto.AllocaArray{T: irtype.Int64},
		proto.Constant{Value: irtype.ConstInt32(7), T: irtype.Int32},
		proto.Copy{T: irtype.Bool},
		proto.Load{T: irtype.Pointer(irtype.Int32)},
		proto.Store{T: irtype.Float32},
		proto.Call{Method: ctor, Lookup: proto.Virtual, Ret: irtype.Int32, Params: []irtype.Type{irtype.Int32, irtype.Bool}},
		proto.IndirectCall{Ret: irtype.Void, Params: []irtype.Type{irtype.Int32}},
		proto.NewObject{Ctor: ctor, Result: irtype.Named("Acme.Widget"), Params: []irtype.Type{irtype.Int32}},
		proto.NewDelegate{DelegateType: irtype.Named("Acme.Handler"), Callee: ctor, HasThis: true, Lookup: proto.Virtual},
		proto.ReinterpretCast{PtrT: irtype.Pointer(irtype.Int8)},
		proto.Intrinsic{Name: "arith.add", Ret: irtype.Int32, Params: []irtype.Type{irtype.Int32, irtype.Int32}, Throws: proto.NoThrow},
	}
	for _, want := range cases {
		e, err := EncodePrototype(want)
		if err != nil {
			t.Fatalf("EncodePrototype(%v): %v", want, err)
		}
		got, err := DecodePrototype(e)
		if err != nil {
			t.Fatalf("DecodePrototype(%v): %v", e, err)
		}
		// Re-encoding the decoded prototype must reproduce e exactly: a
		// stronger check than comparing String() (which elides Ret/Params
		// for some variants) and safer than == (several variants embed a
		// []irtype.Type and are not comparable).
		gotExpr, err := EncodePrototype(got)
		if err != nil {
			t.Fatalf("EncodePrototype(decoded %v): %v", want, err)
		}
		if gotExpr.String() != e.String() {
			t.Errorf("round trip for %v: decode(encode(x)) re-encodes as %q, want %q", want, gotExpr.String(), e.String())
		}

		reparsed, err := Parse(e.String())
		if err != nil {
			t.Fatalf("Parse(%q): %v", e.String(), err)
		}
		got2, err := DecodePrototype(reparsed)
		if err != nil {
			t.Fatalf("DecodePrototype(reparsed): %v", err)
		}
		got2Expr, err := EncodePrototype(got2)
		if err != nil {
			t.Fatalf("EncodePrototype(reparsed decoded %v): %v", want, err)
		}
		if got2Expr.String() != e.String() {
			t.Errorf("text round trip for %v: got %q, want %q", want, got2Expr.String(), e.String())
		}
	}
}

func TestDecodeUnknownHeadErrors(t *testing.T) {
	e := List("not_a_real_head", Atm("x"))
	if _, err := DecodeType(e); err == nil {
		t.Error("DecodeType: expected error for unknown head")
	}
	if _, err := DecodeConstant(e); err == nil {
		t.Error("DecodeConstant: expected error for unknown head")
	}
	if _, err := DecodePrototype(e); err == nil {
		t.Error("DecodePrototype: expected error for unknown head")
	}
}
