package main

import (
	"fmt"
	"os"

	"github.com/milcore/milc/pkg/cilasm"
	"github.com/milcore/milc/pkg/diag"
	"github.com/milcore/milc/pkg/ir"
	"github.com/milcore/milc/pkg/irtype"
	"github.com/milcore/milc/pkg/translator"
	"github.com/milcore/milc/pkg/validator"
	"github.com/milcore/milc/pkg/xform"
)

// noopDelegateResolver never classifies anything as a delegate. It stands
// in for the host type system this CLI has none of: the delegate-lowering
// transform stage still runs on every method body, it simply never fires,
// the same way a driver wired to a real host type system would plug in a
// resolver that does.
type noopDelegateResolver struct{}

func (noopDelegateResolver) ResolveDelegate(t irtype.Type) (xform.DelegateInfo, bool) {
	return xform.DelegateInfo{}, false
}

// compileFile runs the full parse -> translate -> validate -> transform
// pipeline (§4.5-§4.7) over one assembly text file, reporting every
// diagnostic it collects along the way to sink.
func compileFile(filename string, sink *diag.Sink) (ir.MethodBody, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		unavailable := &diag.UnavailableSource{Document: filename}
		if abortErr := sink.Report(diag.Diagnostic{
			Severity: diag.Error,
			Title:    "unavailable_source",
			Message:  unavailable.Error(),
			Range:    &diag.Range{Document: filename},
		}); abortErr != nil {
			return ir.MethodBody{}, abortErr
		}
		return ir.MethodBody{}, unavailable
	}

	p := cilasm.NewParser(cilasm.NewLexer(string(src)))
	body := p.ParseMethodBody()
	for _, e := range p.Errors() {
		if abortErr := sink.Report(diag.Diagnostic{
			Severity: diag.Error,
			Title:    "parse_error",
			Message:  e,
			Range:    &diag.Range{Document: filename},
		}); abortErr != nil {
			return ir.MethodBody{}, abortErr
		}
	}
	if len(p.Errors()) != 0 {
		return ir.MethodBody{}, fmt.Errorf("%s: assembly did not parse", filename)
	}

	m, err := translator.Translate(body)
	if err != nil {
		if abortErr := sink.Report(diag.Diagnostic{
			Severity: diag.Error,
			Title:    "malformed_ir",
			Message:  err.Error(),
			Range:    &diag.Range{Document: filename},
		}); abortErr != nil {
			return ir.MethodBody{}, abortErr
		}
		return ir.MethodBody{}, err
	}

	if errs := validator.Validate(m.Graph); len(errs) != 0 {
		for _, e := range errs {
			if abortErr := sink.Report(diag.Diagnostic{
				Severity: diag.Error,
				Title:    "validation_error",
				Message:  e.Error(),
				Range:    &diag.Range{Document: filename},
			}); abortErr != nil {
				return ir.MethodBody{}, abortErr
			}
		}
		return ir.MethodBody{}, fmt.Errorf("%s: failed validation", filename)
	}

	lowered, err := (xform.DelegateLowering{Resolver: noopDelegateResolver{}}).Apply(m.Graph)
	if err != nil {
		return ir.MethodBody{}, err
	}
	m.Graph = lowered

	return m, nil
}
