package main

import (
	"fmt"
	"io"

	"github.com/milcore/milc/pkg/cil"
	"github.com/milcore/milc/pkg/ir"
	"github.com/milcore/milc/pkg/sexpr"
	"github.com/milcore/milc/pkg/tag"
)

// dumpParse prints the assembled bytecode body one instruction per line,
// the --dump-parse counterpart to the teacher's -dparse AST dump.
func dumpParse(w io.Writer, body cil.MethodBody) {
	for _, instr := range body.Instructions() {
		fmt.Fprintln(w, instr.String())
	}
}

// dumpIR prints the translated graph as on-disk s-expressions (§6.1), one
// block per section, the --dump-ir counterpart to the teacher's -drtl/
// -dltl/-dmach dumps.
func dumpIR(w io.Writer, m ir.MethodBody) {
	m.Graph.Blocks(func(b tag.Block, bb ir.BasicBlock) {
		fmt.Fprintf(w, "%s(%s):\n", b, paramList(bb.Params))
		for _, v := range bb.Instrs {
			instr, ok := m.Graph.GetInstruction(v)
			if !ok {
				continue
			}
			e, err := sexpr.EncodePrototype(instr.Proto)
			if err != nil {
				fmt.Fprintf(w, "  %s = <%v>\n", v, err)
				continue
			}
			fmt.Fprintf(w, "  %s = %s %v\n", v, e.String(), instr.Args)
		}
		fmt.Fprintf(w, "  %s\n", describeFlow(bb.Flow))
	})
}

func paramList(ps []ir.Param) string {
	s := ""
	for i, p := range ps {
		if i > 0 {
			s += ", "
		}
		s += p.Tag.String() + ": " + p.Type.String()
	}
	return s
}

func describeFlow(f ir.Flow) string {
	switch v := f.(type) {
	case ir.Jump:
		return fmt.Sprintf("jump %s", v.Branch.Target)
	case ir.Return:
		return "return"
	case ir.Switch:
		return fmt.Sprintf("switch -> default %s (%d case(s))", v.Default.Target, len(v.Cases))
	case ir.Try:
		return fmt.Sprintf("try -> success %s, exception %s", v.Success.Target, v.Exception.Target)
	case ir.Unreachable:
		return "unreachable"
	default:
		return fmt.Sprintf("%T", v)
	}
}
