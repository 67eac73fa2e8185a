package irtype

import "testing"

func TestEqualComparesStructurally(t *testing.T) {
	if !Equal(Int32, Int32) {
		t.Error("Int32 should equal itself")
	}
	if Equal(Int32, Int64) {
		t.Error("Int32 should not equal Int64")
	}
	if !Equal(Pointer(Int32), Pointer(Int32)) {
		t.Error("two Pointer(Int32) values built separately should be structurally equal")
	}
	if Equal(Pointer(Int32), Pointer(Int64)) {
		t.Error("Pointer(Int32) should not equal Pointer(Int64)")
	}
}

func TestEqualHandlesNil(t *testing.T) {
	if !Equal(nil, nil) {
		t.Error("nil should equal nil")
	}
	if Equal(nil, Int32) {
		t.Error("nil should not equal a concrete type")
	}
}

func TestNamedComparesByName(t *testing.T) {
	if !Equal(Named("Acme.Widget"), Named("Acme.Widget")) {
		t.Error("two Named values with the same name should be equal")
	}
	if Equal(Named("Acme.Widget"), Named("Acme.Gadget")) {
		t.Error("Named values with different names should not be equal")
	}
}

func TestBuiltinResolverClassifiesKinds(t *testing.T) {
	r := BuiltinResolver()
	cases := []struct {
		t    Type
		kind Kind
	}{
		{Void, KindVoid},
		{Int32, KindInt},
		{UInt64, KindInt},
		{Float64, KindFloat},
		{Pointer(Int32), KindPointer},
		{Named("Acme.Widget"), KindOther},
	}
	for _, c := range cases {
		info := r.Resolve(c.t)
		if info.Kind != c.kind {
			t.Errorf("Resolve(%s).Kind = %v, want %v", c.t, info.Kind, c.kind)
		}
	}
	if info := r.Resolve(UInt32); !info.Unsigned {
		t.Error("uint32 should resolve as unsigned")
	}
	if info := r.Resolve(Int32); info.Width != 32 {
		t.Errorf("int32 width = %d, want 32", info.Width)
	}
}

func TestPointerString(t *testing.T) {
	if s := Pointer(Int32).String(); s != "int32*" {
		t.Errorf("Pointer(Int32).String() = %q, want %q", s, "int32*")
	}
}
