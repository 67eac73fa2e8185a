// Package sexpr implements the on-disk symbolic-expression format (§6.1):
// nested "head(operand, operand, ...)" forms decoded and encoded through a
// table-driven head-to-function map, the same way pkg/cilasm turns text
// into pkg/cil method bodies.
package sexpr

import "strings"

// Expr is one node of a parsed s-expression: either a bare atom (a number,
// string, or identifier) or a headed list of operands.
type Expr struct {
	// Head is empty for a plain atom. Atom holds the literal text in that
	// case (already unescaped if it was a quoted string).
	Head    string
	Atom    string
	IsQuote bool
	Args    []Expr
}

// Atm builds a bare atom.
func Atm(text string) Expr { return Expr{Atom: text} }

// Str builds a quoted string atom.
func Str(text string) Expr { return Expr{Atom: text, IsQuote: true} }

// List builds a headed list.
func List(head string, args ...Expr) Expr { return Expr{Head: head, Args: args} }

// IsAtom reports whether e is a bare atom rather than a headed list.
func (e Expr) IsAtom() bool { return e.Head == "" }

func (e Expr) String() string {
	if e.IsAtom() {
		if e.IsQuote {
			return "\"" + strings.ReplaceAll(e.Atom, "\"", "\\\"") + "\""
		}
		return e.Atom
	}
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return "#" + e.Head + "(" + strings.Join(parts, ", ") + ")"
}
