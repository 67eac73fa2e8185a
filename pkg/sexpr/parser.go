package sexpr

import "fmt"

// parser turns token. Grammar:
//
//	expr  := '#' IDENT '(' [ expr (',' expr)* ] ')' | IDENT | STRING
type parser struct {
	l    *lexer
	cur  token
	peek token
}

func newParser(input string) *parser {
	p := &parser{l: newLexer(input)}
	p.next()
	p.next()
	return p
}

func (p *parser) next() {
	p.cur = p.peek
	p.peek = p.l.nextToken()
}

// Parse decodes src into a single top-level Expr.
func Parse(src string) (Expr, error) {
	p := newParser(src)
	e, err := p.parseExpr()
	if err != nil {
		return Expr{}, err
	}
	if p.cur.typ != tokEOF {
		return Expr{}, fmt.Errorf("sexpr: unexpected trailing token %q", p.cur.literal)
	}
	return e, nil
}

func (p *parser) parseExpr() (Expr, error) {
	switch p.cur.typ {
	case tokHash:
		return p.parseList()
	case tokIdent:
		a := Atm(p.cur.literal)
		p.next()
		return a, nil
	case tokString:
		a := Str(p.cur.literal)
		p.next()
		return a, nil
	default:
		return Expr{}, fmt.Errorf("sexpr: unexpected token %q", p.cur.literal)
	}
}

func (p *parser) parseList() (Expr, error) {
	p.next() // consume '#'
	if p.cur.typ != tokIdent {
		return Expr{}, fmt.Errorf("sexpr: expected head identifier after '#', got %q", p.cur.literal)
	}
	head := p.cur.literal
	p.next()
	if p.cur.typ != tokLParen {
		return Expr{}, fmt.Errorf("sexpr: expected '(' after head %q", head)
	}
	p.next()

	var args []Expr
	if p.cur.typ != tokRParen {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return Expr{}, err
			}
			args = append(args, arg)
			if p.cur.typ == tokComma {
				p.next()
				continue
			}
			break
		}
	}
	if p.cur.typ != tokRParen {
		return Expr{}, fmt.Errorf("sexpr: expected ')' to close %q, got %q", head, p.cur.literal)
	}
	p.next()
	return List(head, args...), nil
}
