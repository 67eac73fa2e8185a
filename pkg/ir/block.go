package ir

import (
	"github.com/milcore/milc/pkg/irtype"
	"github.com/milcore/milc/pkg/tag"
)

// Param is one typed block-entry parameter: a value supplied by every
// incoming branch, filling the role a phi node would in a classic SSA form.
type Param struct {
	Tag  tag.Value
	Type irtype.Type
}

// BasicBlock is the maximal straight-line unit of the graph: an ordered
// parameter list, an ordered list of instruction-producing value tags, and
// a single terminating Flow.
type BasicBlock struct {
	Params []Param
	Instrs []tag.Value
	Flow   Flow
}

// ParamTypes returns the block's parameter types in order, the shape a
// branch's argument-type list must match element-wise.
func (b BasicBlock) ParamTypes() []irtype.Type {
	types := make([]irtype.Type, len(b.Params))
	for i, p := range b.Params {
		types[i] = p.Type
	}
	return types
}

// IndexOf returns the position of v within Instrs, or -1 if v is not an
// instruction of this block.
func (b BasicBlock) IndexOf(v tag.Value) int {
	for i, t := range b.Instrs {
		if t == v {
			return i
		}
	}
	return -1
}
