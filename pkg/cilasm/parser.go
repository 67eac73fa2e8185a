// Package cilasm implements a textual assembler for pkg/cil method bodies:
// a lexer plus a recursive-descent parser, used by tests and by the CLI's
// --dump-parse stage to print/round-trip bytecode without a host compiler
// front end attached.
//
// Syntax (one statement per line):
//
//	.this <type>
//	.params <type>, <type>, ...
//	.ret <type>
//	.locals <type>, <type>, ...
//	label:
//	ldc.i4 <int> | ldarg <int> | ldloc <int> | stloc <int>
//	ret | add | sub | mul | div | ceq | clt | cgt | throw
//	br <label> | brtrue <label> | brfalse <label>
//	call <ret-type> <Qualified.Method>(<type>, ...)
//	callvirt <ret-type> <Qualified.Method>(<type>, ...)
//	newobj <Qualified.Type>(<type>, ...)
//
// Types are primitive names (int32, uint64, float64, bool, char, void, ...)
// optionally suffixed with one or more '*' for pointers; any other
// identifier names an opaque host type (irtype.Named).
package cilasm

import (
	"fmt"
	"strconv"

	"github.com/milcore/milc/pkg/cil"
	"github.com/milcore/milc/pkg/irtype"
	"github.com/milcore/milc/pkg/tag"
)

// Parser parses the assembly text format into a cil.MethodBody.
type Parser struct {
	l         *Lexer
	curToken  Token
	peekToken Token
	errors    []string
}

func NewParser(l *Lexer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, fmt.Sprintf("line %d: %s", p.curToken.Line, msg))
}

func (p *Parser) skipNewlines() {
	for p.curToken.Type == TokenNewline {
		p.nextToken()
	}
}

// pendingInstr is one line's worth of not-yet-linked state: the
// instruction itself, and (for branches) the label it targets, resolved
// once every label has been seen.
type pendingInstr struct {
	instr       *cil.Instruction
	branchLabel string
}

// ParseMethodBody parses a complete method body. It never aborts on a
// single bad line; Errors() reports every problem found.
func (p *Parser) ParseMethodBody() cil.MethodBody {
	var body cil.MethodBody
	var pending []pendingInstr
	labels := map[string]int{}

	p.skipNewlines()
	for p.curToken.Type != TokenEOF {
		switch {
		case p.curToken.Type == TokenDot:
			p.parseDirective(&body)
		case p.curToken.Type == TokenIdent && p.peekToken.Type == TokenColon:
			labels[p.curToken.Literal] = len(pending)
			p.nextToken() // consume label ident
			p.nextToken() // consume ':'
		case p.curToken.Type == TokenIdent:
			pending = append(pending, p.parseInstruction())
		default:
			p.addError(fmt.Sprintf("unexpected token %q", p.curToken.Literal))
			p.nextToken()
		}
		p.skipNewlines()
	}

	for i, pi := range pending {
		if pi.branchLabel != "" {
			idx, ok := labels[pi.branchLabel]
			if !ok {
				p.addError(fmt.Sprintf("branch to undefined label %q", pi.branchLabel))
				continue
			}
			if idx >= len(pending) {
				p.addError(fmt.Sprintf("branch to label %q, which marks no instruction", pi.branchLabel))
				continue
			}
			pi.instr.Target = pending[idx].instr
		}
		if i+1 < len(pending) {
			pi.instr.Next = pending[i+1].instr
		}
	}
	if len(pending) > 0 {
		body.Entry = pending[0].instr
	}
	return body
}

func (p *Parser) parseDirective(body *cil.MethodBody) {
	p.nextToken() // consume '.'
	name := p.curToken.Literal
	p.nextToken()
	switch name {
	case "this":
		body.This = p.parseType()
	case "ret":
		body.ReturnType = p.parseType()
	case "params":
		body.Params = p.parseTypeList()
	case "locals":
		for _, t := range p.parseTypeList() {
			body.Locals = append(body.Locals, cil.Local{Type: t})
		}
	default:
		p.addError(fmt.Sprintf("unrecognized directive %q", name))
	}
}

func (p *Parser) parseTypeList() []irtype.Type {
	var out []irtype.Type
	out = append(out, p.parseType())
	for p.curToken.Type == TokenComma {
		p.nextToken()
		out = append(out, p.parseType())
	}
	return out
}

func (p *Parser) parseType() irtype.Type {
	name := p.curToken.Literal
	p.nextToken()
	t := namedOrPrimitive(name)
	for p.curToken.Type == TokenStar {
		t = irtype.Pointer(t)
		p.nextToken()
	}
	return t
}

var primitiveTypes = map[string]irtype.Type{
	"void": irtype.Void, "bool": irtype.Bool, "char": irtype.Char,
	"int8": irtype.Int8, "int16": irtype.Int16, "int32": irtype.Int32, "int64": irtype.Int64,
	"uint8": irtype.UInt8, "uint16": irtype.UInt16, "uint32": irtype.UInt32, "uint64": irtype.UInt64,
	"float32": irtype.Float32, "float64": irtype.Float64,
}

func namedOrPrimitive(name string) irtype.Type {
	if t, ok := primitiveTypes[name]; ok {
		return t
	}
	return irtype.Named(name)
}

func (p *Parser) parseInstruction() pendingInstr {
	op := p.curToken.Literal
	p.nextToken()

	switch op {
	case "nop":
		return pendingInstr{instr: &cil.Instruction{Opcode: cil.OpNop}}
	case "ldc.i4":
		return pendingInstr{instr: &cil.Instruction{Opcode: cil.OpLdcI4, IntOperand: p.parseInt()}}
	case "ldarg":
		return pendingInstr{instr: &cil.Instruction{Opcode: cil.OpLdarg, IntOperand: p.parseInt()}}
	case "ldloc":
		return pendingInstr{instr: &cil.Instruction{Opcode: cil.OpLdloc, IntOperand: p.parseInt()}}
	case "stloc":
		return pendingInstr{instr: &cil.Instruction{Opcode: cil.OpStloc, IntOperand: p.parseInt()}}
	case "ret":
		return pendingInstr{instr: &cil.Instruction{Opcode: cil.OpRet}}
	case "add":
		return pendingInstr{instr: &cil.Instruction{Opcode: cil.OpAdd}}
	case "sub":
		return pendingInstr{instr: &cil.Instruction{Opcode: cil.OpSub}}
	case "mul":
		return pendingInstr{instr: &cil.Instruction{Opcode: cil.OpMul}}
	case "div":
		return pendingInstr{instr: &cil.Instruction{Opcode: cil.OpDiv}}
	case "ceq":
		return pendingInstr{instr: &cil.Instruction{Opcode: cil.OpCeq}}
	case "clt":
		return pendingInstr{instr: &cil.Instruction{Opcode: cil.OpClt}}
	case "cgt":
		return pendingInstr{instr: &cil.Instruction{Opcode: cil.OpCgt}}
	case "throw":
		return pendingInstr{instr: &cil.Instruction{Opcode: cil.OpThrow}}
	case "br":
		return pendingInstr{instr: &cil.Instruction{Opcode: cil.OpBr}, branchLabel: p.parseLabelRef()}
	case "brtrue":
		return pendingInstr{instr: &cil.Instruction{Opcode: cil.OpBrtrue}, branchLabel: p.parseLabelRef()}
	case "brfalse":
		return pendingInstr{instr: &cil.Instruction{Opcode: cil.OpBrfalse}, branchLabel: p.parseLabelRef()}
	case "call":
		return pendingInstr{instr: &cil.Instruction{Opcode: cil.OpCall, Call: p.parseCallSignature()}}
	case "callvirt":
		return pendingInstr{instr: &cil.Instruction{Opcode: cil.OpCallvirt, Call: p.parseCallSignature()}}
	case "newobj":
		return pendingInstr{instr: &cil.Instruction{Opcode: cil.OpNewobj, Call: p.parseCtorSignature()}}
	default:
		p.addError(fmt.Sprintf("unrecognized opcode %q", op))
		return pendingInstr{instr: &cil.Instruction{Opcode: cil.OpNop}}
	}
}

func (p *Parser) parseInt() int32 {
	lit := p.curToken.Literal
	if p.curToken.Type != TokenInt {
		p.addError(fmt.Sprintf("expected integer operand, got %q", lit))
		return 0
	}
	p.nextToken()
	n, err := strconv.ParseInt(lit, 10, 32)
	if err != nil {
		p.addError(fmt.Sprintf("invalid integer literal %q: %v", lit, err))
		return 0
	}
	return int32(n)
}

func (p *Parser) parseLabelRef() string {
	lit := p.curToken.Literal
	if p.curToken.Type != TokenIdent {
		p.addError(fmt.Sprintf("expected a label, got %q", lit))
		return ""
	}
	p.nextToken()
	return lit
}

func (p *Parser) parseQualifiedName() tag.QualifiedName {
	lit := p.curToken.Literal
	p.nextToken()
	idx := lastDot(lit)
	if idx < 0 {
		return tag.QualifiedName{Parts: []string{lit}}
	}
	return tag.QualifiedName{Namespace: lit[:idx], Parts: []string{lit[idx+1:]}}
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

func (p *Parser) parseCallSignature() *cil.CallSignature {
	ret := p.parseType()
	method := p.parseQualifiedName()
	params := p.parseParamTypeList()
	return &cil.CallSignature{Method: method, Ret: ret, Params: params}
}

func (p *Parser) parseCtorSignature() *cil.CallSignature {
	ctor := p.parseQualifiedName()
	params := p.parseParamTypeList()
	return &cil.CallSignature{Method: ctor, Ret: irtype.Void, Params: params}
}

func (p *Parser) parseParamTypeList() []irtype.Type {
	if p.curToken.Type != TokenLParen {
		p.addError(fmt.Sprintf("expected '(' to start a parameter list, got %q", p.curToken.Literal))
		return nil
	}
	p.nextToken()
	if p.curToken.Type == TokenRParen {
		p.nextToken()
		return nil
	}
	params := p.parseTypeList()
	if p.curToken.Type != TokenRParen {
		p.addError(fmt.Sprintf("expected ')' to close a parameter list, got %q", p.curToken.Literal))
		return params
	}
	p.nextToken()
	return params
}
