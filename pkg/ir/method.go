package ir

import "github.com/milcore/milc/pkg/irtype"

// MethodBody is a graph plus the signature surface the translator and
// validator need: a return type, an optional `this` parameter, and the
// ordered input parameter list (both this and Params name value tags bound
// as the entry block's parameters).
type MethodBody struct {
	Graph      Graph
	ReturnType irtype.Type
	This       *Param
	Params     []Param
}

// ExtendedParams returns This (if present) prepended to Params — the
// "extended parameter list" the translator's entry-block setup mirrors
// (§4.5 step 2).
func (m MethodBody) ExtendedParams() []Param {
	if m.This == nil {
		return m.Params
	}
	out := make([]Param, 0, len(m.Params)+1)
	out = append(out, *m.This)
	out = append(out, m.Params...)
	return out
}
