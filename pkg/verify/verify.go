// Package verify implements the member-level type verifier (§4.7), run
// after the mid-end has otherwise finished with a method body: it walks a
// declared type's fields, methods, and properties, then its base types,
// collecting diagnostics rather than failing fast — the same
// classify-and-collect shape as pkg/cminorgen's variable-environment walk,
// applied to member/inheritance shape instead of storage class.
package verify

import (
	"fmt"

	"github.com/milcore/milc/pkg/diag"
	"github.com/milcore/milc/pkg/irtype"
)

// Kind classifies a declared type for the purposes of base-type and enum
// checking.
type Kind int

const (
	KindClass Kind = iota
	KindInterface
	KindEnum
	KindValue
)

// Member is one field, method, or property of a TypeDecl.
type Member struct {
	Name       string
	IsAbstract bool
	// Overrides is the base member this one implements, empty if it does
	// not override anything.
	Overrides string
}

// TypeDecl is the minimal shape of a host type the verifier needs: enough
// to walk its members and inheritance chain without depending on any
// particular host type system's representation.
type TypeDecl struct {
	Name            string
	Kind            Kind
	IsVirtual       bool // may serve as a base: virtual, abstract, or sealed=false
	IsAbstractType  bool
	EnumBackingType irtype.Type // meaningful only when Kind == KindEnum
	Fields          []Member
	Methods         []Member
	Properties      []Member
	BaseTypes       []*TypeDecl
}

func (t *TypeDecl) allMembers() []Member {
	out := make([]Member, 0, len(t.Fields)+len(t.Methods)+len(t.Properties))
	out = append(out, t.Fields...)
	out = append(out, t.Methods...)
	out = append(out, t.Properties...)
	return out
}

// Verify walks t, its members, then its base types, using resolver to
// classify EnumBackingType. It never aborts: every violation found becomes
// one diagnostic in the returned slice.
func Verify(t *TypeDecl, resolver irtype.Resolver) []diag.Diagnostic {
	var out []diag.Diagnostic
	if t.Kind == KindEnum {
		out = append(out, verifyEnumBacking(t, resolver)...)
	}
	for _, base := range t.BaseTypes {
		out = append(out, verifyBaseTypeUsable(t, base)...)
		out = append(out, verifyAbstractMembersImplemented(t, base)...)
	}
	return out
}

func verifyEnumBacking(t *TypeDecl, resolver irtype.Resolver) []diag.Diagnostic {
	if t.EnumBackingType == nil {
		return []diag.Diagnostic{{
			Severity: diag.Error,
			Title:    "enum_backing_type",
			Message:  fmt.Sprintf("enum %q declares no backing type", t.Name),
		}}
	}
	info := resolver.Resolve(t.EnumBackingType)
	if info.Kind != irtype.KindInt {
		return []diag.Diagnostic{{
			Severity: diag.Error,
			Title:    "enum_backing_type",
			Message:  fmt.Sprintf("enum %q is backed by %s, which is not a primitive integer type", t.Name, t.EnumBackingType),
		}}
	}
	return nil
}

func verifyBaseTypeUsable(t, base *TypeDecl) []diag.Diagnostic {
	if base.Kind == KindInterface || base.IsVirtual || base.IsAbstractType {
		return nil
	}
	return []diag.Diagnostic{{
		Severity: diag.Error,
		Title:    "invalid_base_type",
		Message:  fmt.Sprintf("%q derives from %q, which is neither virtual, abstract, nor an interface", t.Name, base.Name),
	}}
}

func verifyAbstractMembersImplemented(t, base *TypeDecl) []diag.Diagnostic {
	implemented := make(map[string]bool)
	for _, m := range t.allMembers() {
		if m.Overrides != "" {
			implemented[m.Overrides] = true
		}
	}

	var out []diag.Diagnostic
	for _, m := range base.allMembers() {
		if !m.IsAbstract {
			continue
		}
		if implemented[m.Name] {
			continue
		}
		out = append(out, diag.Diagnostic{
			Severity: diag.Error,
			Title:    "unimplemented_abstract_member",
			Message:  fmt.Sprintf("%q does not implement abstract member %q inherited from %q", t.Name, m.Name, base.Name),
		})
	}
	return out
}
