package irtype

import (
	"math/big"
	"testing"
)

func TestConstantStrings(t *testing.T) {
	cases := []struct {
		name string
		c    Constant
		want string
	}{
		{"int", ConstInt32(42), "42"},
		{"negative int", ConstInt{Value: big.NewInt(-7), Width: 32, Ty: Int32}, "-7"},
		{"bool true", ConstBool{Value: true}, "true"},
		{"bool false", ConstBool{Value: false}, "false"},
		{"string", ConstString{Value: "hi"}, "\"hi\""},
		{"null", ConstNull{Ty: Pointer(Void)}, "null"},
		{"default", ConstDefault{Ty: Int32}, "default(int32)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.c.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestConstantTypes(t *testing.T) {
	if got := ConstInt32(1).Type(); !Equal(got, Int32) {
		t.Errorf("ConstInt32.Type() = %v, want int32", got)
	}
	if got := (ConstFloat{Value: 1.5, Width: 64}).Type(); !Equal(got, Float64) {
		t.Errorf("ConstFloat{Width:64}.Type() = %v, want float64", got)
	}
	if got := (ConstFloat{Value: 1.5, Width: 32}).Type(); !Equal(got, Float32) {
		t.Errorf("ConstFloat{Width:32}.Type() = %v, want float32", got)
	}
	if got := (ConstBool{}).Type(); !Equal(got, Bool) {
		t.Errorf("ConstBool.Type() = %v, want bool", got)
	}
	if got := (ConstChar{}).Type(); !Equal(got, Char) {
		t.Errorf("ConstChar.Type() = %v, want char", got)
	}
}

func TestConstantsEqual(t *testing.T) {
	a := ConstInt32(5)
	b := ConstInt{Value: big.NewInt(5), Width: 32, Ty: Int32}
	if !ConstantsEqual(a, b) {
		t.Error("two ConstInt with the same width/sign/value/type must compare equal")
	}

	c := ConstInt32(6)
	if ConstantsEqual(a, c) {
		t.Error("ConstInt with different values must not compare equal")
	}

	if ConstantsEqual(a, ConstBool{Value: true}) {
		t.Error("constants of different kinds must never compare equal")
	}

	n1 := ConstNull{Ty: Pointer(Int32)}
	n2 := ConstNull{Ty: Pointer(Int32)}
	n3 := ConstNull{Ty: Pointer(Int64)}
	if !ConstantsEqual(n1, n2) {
		t.Error("null constants over equal pointer types must compare equal")
	}
	if ConstantsEqual(n1, n3) {
		t.Error("null constants over distinct pointer types must not compare equal")
	}

	d1 := ConstDefault{Ty: Int32}
	d2 := ConstDefault{Ty: Int32}
	if !ConstantsEqual(d1, d2) {
		t.Error("default constants over the same type must compare equal")
	}
}

func TestConstStringType(t *testing.T) {
	s := ConstString{Value: "abc"}
	got := s.Type()
	want := Pointer(Char)
	if !Equal(got, want) {
		t.Errorf("ConstString.Type() = %v, want %v", got, want)
	}
}
