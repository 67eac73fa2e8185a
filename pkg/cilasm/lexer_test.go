package cilasm

import "testing"

func TestLexerTokenizesDirectiveAndInstruction(t *testing.T) {
	l := NewLexer(".ret int32\nldc.i4 -7\n")
	want := []struct {
		typ TokenType
		lit string
	}{
		{TokenDot, "."},
		{TokenIdent, "ret"},
		{TokenIdent, "int32"},
		{TokenNewline, "\n"},
		{TokenIdent, "ldc.i4"},
		{TokenInt, "-7"},
		{TokenNewline, "\n"},
		{TokenEOF, ""},
	}
	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != w.typ || tok.Literal != w.lit {
			t.Fatalf("token %d = {%v %q}, want {%v %q}", i, tok.Type, tok.Literal, w.typ, w.lit)
		}
	}
}

func TestLexerSkipsComments(t *testing.T) {
	l := NewLexer("ret ; this is a comment\nadd\n")
	tok := l.NextToken()
	if tok.Type != TokenIdent || tok.Literal != "ret" {
		t.Fatalf("first token = %v %q", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != TokenNewline {
		t.Fatalf("expected newline immediately after the comment, got %v %q", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != TokenIdent || tok.Literal != "add" {
		t.Fatalf("expected 'add' after the comment line, got %v %q", tok.Type, tok.Literal)
	}
}

func TestLexerQualifiedIdentifierIsOneToken(t *testing.T) {
	l := NewLexer("Acme.Widget.Frob")
	tok := l.NextToken()
	if tok.Type != TokenIdent || tok.Literal != "Acme.Widget.Frob" {
		t.Fatalf("token = %v %q, want one ident token", tok.Type, tok.Literal)
	}
}
