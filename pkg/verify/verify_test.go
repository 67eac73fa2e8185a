package verify

import (
	"testing"

	"github.com/milcore/milc/pkg/diag"
	"github.com/milcore/milc/pkg/irtype"
)

func titles(ds []diag.Diagnostic) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Title
	}
	return out
}

func contains(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}

func TestVerifyCleanTypeHasNoDiagnostics(t *testing.T) {
	base := &TypeDecl{Name: "Acme.Base", Kind: KindClass, IsVirtual: true}
	derived := &TypeDecl{Name: "Acme.Derived", Kind: KindClass, BaseTypes: []*TypeDecl{base}}
	got := Verify(derived, irtype.BuiltinResolver())
	if len(got) != 0 {
		t.Errorf("Verify = %v, want no diagnostics", got)
	}
}

func TestVerifyEnumBackedByNonPrimitiveIsFlagged(t *testing.T) {
	e := &TypeDecl{Name: "Acme.Color", Kind: KindEnum, EnumBackingType: irtype.Named("Acme.Widget")}
	got := Verify(e, irtype.BuiltinResolver())
	if !contains(titles(got), "enum_backing_type") {
		t.Errorf("Verify = %v, want an enum_backing_type diagnostic", got)
	}
}

func TestVerifyEnumBackedByIntIsClean(t *testing.T) {
	e := &TypeDecl{Name: "Acme.Color", Kind: KindEnum, EnumBackingType: irtype.Int32}
	got := Verify(e, irtype.BuiltinResolver())
	if len(got) != 0 {
		t.Errorf("Verify = %v, want no diagnostics", got)
	}
}

func TestVerifySealedBaseTypeIsFlagged(t *testing.T) {
	sealed := &TypeDecl{Name: "Acme.Sealed", Kind: KindClass}
	derived := &TypeDecl{Name: "Acme.Derived", Kind: KindClass, BaseTypes: []*TypeDecl{sealed}}
	got := Verify(derived, irtype.BuiltinResolver())
	if !contains(titles(got), "invalid_base_type") {
		t.Errorf("Verify = %v, want an invalid_base_type diagnostic", got)
	}
}

func TestVerifyInterfaceBaseIsAllowed(t *testing.T) {
	iface := &TypeDecl{Name: "Acme.IWidget", Kind: KindInterface}
	derived := &TypeDecl{Name: "Acme.Widget", Kind: KindClass, BaseTypes: []*TypeDecl{iface}}
	got := Verify(derived, irtype.BuiltinResolver())
	if len(got) != 0 {
		t.Errorf("Verify = %v, want no diagnostics (interface base is fine)", got)
	}
}

func TestVerifyUnimplementedAbstractMemberIsFlagged(t *testing.T) {
	base := &TypeDecl{
		Name:      "Acme.Shape",
		Kind:      KindClass,
		IsVirtual: true,
		Methods:   []Member{{Name: "Area", IsAbstract: true}},
	}
	derived := &TypeDecl{Name: "Acme.Square", Kind: KindClass, BaseTypes: []*TypeDecl{base}}
	got := Verify(derived, irtype.BuiltinResolver())
	if !contains(titles(got), "unimplemented_abstract_member") {
		t.Errorf("Verify = %v, want an unimplemented_abstract_member diagnostic", got)
	}
}

func TestVerifyImplementedAbstractMemberIsClean(t *testing.T) {
	base := &TypeDecl{
		Name:      "Acme.Shape",
		Kind:      KindClass,
		IsVirtual: true,
		Methods:   []Member{{Name: "Area", IsAbstract: true}},
	}
	derived := &TypeDecl{
		Name:      "Acme.Square",
		Kind:      KindClass,
		BaseTypes: []*TypeDecl{base},
		Methods:   []Member{{Name: "Area", Overrides: "Area"}},
	}
	got := Verify(derived, irtype.BuiltinResolver())
	if len(got) != 0 {
		t.Errorf("Verify = %v, want no diagnostics", got)
	}
}
