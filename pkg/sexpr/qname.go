package sexpr

import (
	"strings"

	"github.com/milcore/milc/pkg/tag"
)

// encodeQualifiedName renders q as a single dotted string atom.
func encodeQualifiedName(q tag.QualifiedName) Expr {
	return Str(q.String())
}

// decodeQualifiedName splits a dotted name on its last '.' into a namespace
// and a single trailing part, the same convention pkg/cilasm's assembler
// uses for method references.
func decodeQualifiedName(e Expr) tag.QualifiedName {
	s := e.Atom
	idx := strings.LastIndex(s, ".")
	if idx < 0 {
		return tag.QualifiedName{Namespace: s}
	}
	return tag.QualifiedName{Namespace: s[:idx], Parts: []string{s[idx+1:]}}
}
