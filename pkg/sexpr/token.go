package sexpr

// tokenType classifies one lexical token of the on-disk s-expression text.
type tokenType int

const (
	tokEOF tokenType = iota
	tokIllegal

	tokIdent  // bare words and numbers: head names, booleans, plain numerics
	tokString // "quoted text"

	tokHash   // #
	tokLParen // (
	tokRParen // )
	tokComma  // ,
)

type token struct {
	typ     tokenType
	literal string
}
