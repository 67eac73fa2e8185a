package ir

import (
	"github.com/benbjohnson/immutable"

	"github.com/milcore/milc/pkg/irtype"
	"github.com/milcore/milc/pkg/tag"
)

// Graph is a persistent snapshot of a control-flow graph: every mutator
// below returns a new Graph value sharing structure with its receiver via
// benbjohnson/immutable's path-copying maps, rather than editing in place.
type Graph struct {
	// blocks maps tag.Block to its contents.
	blocks *immutable.Map[tag.Block, BasicBlock]
	// values maps tag.Value to the Instruction that produced it; only
	// instruction-produced values appear here, not block parameters.
	values *immutable.Map[tag.Value, Instruction]
	// types maps tag.Value to its type, covering both block parameters and
	// instruction results.
	types *immutable.Map[tag.Value, irtype.Type]
	// owners maps tag.Value to the block that owns it.
	owners *immutable.Map[tag.Value, tag.Block]

	entry   tag.Block
	counter tag.Counter
}

// New returns an empty graph with no entry point set.
func New() Graph {
	return Graph{
		blocks: immutable.NewMap[tag.Block, BasicBlock](tag.BlockHasher()),
		values: immutable.NewMap[tag.Value, Instruction](tag.ValueHasher()),
		types:  immutable.NewMap[tag.Value, irtype.Type](tag.ValueHasher()),
		owners: immutable.NewMap[tag.Value, tag.Block](tag.ValueHasher()),
	}
}

// EntryPoint returns the graph's designated entry block tag.
func (g Graph) EntryPoint() tag.Block { return g.entry }

// WithEntryPoint returns a graph identical to g but with its entry point
// set to b. b need not already be a block in g (the caller is expected to
// add it first; nothing here enforces ordering).
func (g Graph) WithEntryPoint(b tag.Block) Graph {
	g.entry = b
	return g
}

// ContainsBlock reports whether b names a block in g.
func (g Graph) ContainsBlock(b tag.Block) bool {
	_, ok := g.blocks.Get(b)
	return ok
}

// ContainsValue reports whether v names a value (instruction result or
// block parameter) in g.
func (g Graph) ContainsValue(v tag.Value) bool {
	_, ok := g.types.Get(v)
	return ok
}

// GetBasicBlock returns the block named by b.
func (g Graph) GetBasicBlock(b tag.Block) (BasicBlock, bool) {
	return g.blocks.Get(b)
}

// GetInstruction returns the instruction that produced v, if v names an
// instruction result (not a block parameter).
func (g Graph) GetInstruction(v tag.Value) (Instruction, bool) {
	return g.values.Get(v)
}

// GetValueType returns the type of value v (set whether v is a block
// parameter or an instruction result).
func (g Graph) GetValueType(v tag.Value) (irtype.Type, bool) {
	return g.types.Get(v)
}

// GetValueParent returns the block that owns v.
func (g Graph) GetValueParent(v tag.Value) (tag.Block, bool) {
	return g.owners.Get(v)
}

// Blocks calls f for every block currently in the graph; iteration order is
// unspecified.
func (g Graph) Blocks(f func(tag.Block, BasicBlock)) {
	it := g.blocks.Iterator()
	for !it.Done() {
		k, v, _ := it.Next()
		f(k, v)
	}
}

// AddBlock returns a new graph with one additional, empty block (no
// parameters, no instructions, Unreachable flow) and the tag assigned to
// it. This is the default flow required by testable property 1.
func (g Graph) AddBlock(hint string) (Graph, tag.Block) {
	b := g.counter.NewBlock(hint)
	g.blocks = g.blocks.Set(b, BasicBlock{Flow: Unreachable{}})
	return g, b
}

// RemoveBlock returns a new graph with b and every value it owns removed.
func (g Graph) RemoveBlock(b tag.Block) Graph {
	bb, ok := g.GetBasicBlock(b)
	if !ok {
		return g
	}
	for _, p := range bb.Params {
		g.types = g.types.Delete(p.Tag)
		g.owners = g.owners.Delete(p.Tag)
	}
	for _, v := range bb.Instrs {
		g.values = g.values.Delete(v)
		g.types = g.types.Delete(v)
		g.owners = g.owners.Delete(v)
	}
	g.blocks = g.blocks.Delete(b)
	if g.entry == b {
		g.entry = tag.Block{}
	}
	return g
}

// SelectedInstruction is a view onto one instruction-producing value: the
// block that owns it, the value tag itself, the instruction, and a cached
// index into the owning block's instruction list. The index is computed
// once at selection time and is only valid as long as the view's tag still
// belongs to the block it was taken from (callers re-resolve through a
// live Graph rather than trusting a stale index across edits).
type SelectedInstruction struct {
	Block tag.Block
	Tag   tag.Value
	Instr Instruction
	Index int
}

// InsertInstruction returns a new graph with instr inserted into block at
// index (0 <= index <= len(block.Instrs)), bound to a freshly minted value
// tag carrying hint, plus a SelectedInstruction view of the insertion.
func (g Graph) InsertInstruction(block tag.Block, index int, instr Instruction, hint string) (Graph, SelectedInstruction) {
	bb, ok := g.GetBasicBlock(block)
	if !ok {
		return g, SelectedInstruction{}
	}
	if index < 0 || index > len(bb.Instrs) {
		index = len(bb.Instrs)
	}
	v := g.counter.NewValue(hint)

	instrs := make([]tag.Value, 0, len(bb.Instrs)+1)
	instrs = append(instrs, bb.Instrs[:index]...)
	instrs = append(instrs, v)
	instrs = append(instrs, bb.Instrs[index:]...)
	bb.Instrs = instrs

	g.blocks = g.blocks.Set(block, bb)
	g.values = g.values.Set(v, instr)
	g.types = g.types.Set(v, instr.Proto.ResultType())
	g.owners = g.owners.Set(v, block)

	return g, SelectedInstruction{Block: block, Tag: v, Instr: instr, Index: index}
}

// ReplaceInstruction returns a new graph with the instruction named by v
// swapped for instr. v's position in its owning block, and its owning
// block, are unchanged; its recorded type is refreshed from instr's
// prototype.
func (g Graph) ReplaceInstruction(v tag.Value, instr Instruction) Graph {
	if _, ok := g.GetInstruction(v); !ok {
		return g
	}
	g.values = g.values.Set(v, instr)
	g.types = g.types.Set(v, instr.Proto.ResultType())
	return g
}

// RemoveInstruction returns a new graph with v, and its entry in its
// owning block's instruction list, removed.
func (g Graph) RemoveInstruction(v tag.Value) Graph {
	block, ok := g.GetValueParent(v)
	if !ok {
		return g
	}
	bb, ok := g.GetBasicBlock(block)
	if !ok {
		return g
	}
	idx := bb.IndexOf(v)
	if idx >= 0 {
		instrs := make([]tag.Value, 0, len(bb.Instrs)-1)
		instrs = append(instrs, bb.Instrs[:idx]...)
		instrs = append(instrs, bb.Instrs[idx+1:]...)
		bb.Instrs = instrs
		g.blocks = g.blocks.Set(block, bb)
	}
	g.values = g.values.Delete(v)
	g.types = g.types.Delete(v)
	g.owners = g.owners.Delete(v)
	return g
}

// UpdateBlockFlow returns a new graph with block's flow replaced by f.
func (g Graph) UpdateBlockFlow(block tag.Block, f Flow) Graph {
	bb, ok := g.GetBasicBlock(block)
	if !ok {
		return g
	}
	bb.Flow = f
	g.blocks = g.blocks.Set(block, bb)
	return g
}

// UpdateBlockParameters returns a new graph with block's parameter list
// replaced by params. Parameter tags present in the old list but absent
// from the new one are dropped from the value-type/owner maps; tags newly
// present are added. Callers rewiring a Switch's branches should go through
// Switch.WithBranches, which enforces the case/branch arity invariant;
// this method only maintains value bookkeeping for the block's parameters.
func (g Graph) UpdateBlockParameters(block tag.Block, params []Param) Graph {
	bb, ok := g.GetBasicBlock(block)
	if !ok {
		return g
	}
	old := make(map[tag.Value]bool, len(bb.Params))
	for _, p := range bb.Params {
		old[p.Tag] = true
	}
	keep := make(map[tag.Value]bool, len(params))
	for _, p := range params {
		keep[p.Tag] = true
		g.types = g.types.Set(p.Tag, p.Type)
		g.owners = g.owners.Set(p.Tag, block)
	}
	for v := range old {
		if !keep[v] {
			g.types = g.types.Delete(v)
			g.owners = g.owners.Delete(v)
		}
	}
	bb.Params = params
	g.blocks = g.blocks.Set(block, bb)
	return g
}

// NewValueTag mints a fresh value tag carrying hint without binding it to
// any block yet. Used by callers (the translator, block-parameter setup)
// that must hand out a tag before the block it belongs to is fully formed.
func (g Graph) NewValueTag(hint string) (Graph, tag.Value) {
	v := g.counter.NewValue(hint)
	return g, v
}

// NewBlockTag mints a fresh block tag carrying hint without adding any
// block to the graph. Used by the translator's branch-target analysis,
// which must allocate block tags before it knows their eventual contents.
func (g Graph) NewBlockTag(hint string) (Graph, tag.Block) {
	b := g.counter.NewBlock(hint)
	return g, b
}

// PreviousInstruction returns the instruction-producing value immediately
// before v in its owning block, if any.
func (g Graph) PreviousInstruction(v tag.Value) (tag.Value, bool) {
	block, ok := g.GetValueParent(v)
	if !ok {
		return tag.Value{}, false
	}
	bb, _ := g.GetBasicBlock(block)
	idx := bb.IndexOf(v)
	if idx <= 0 {
		return tag.Value{}, false
	}
	return bb.Instrs[idx-1], true
}

// NextInstruction returns the instruction-producing value immediately
// after v in its owning block, if any.
func (g Graph) NextInstruction(v tag.Value) (tag.Value, bool) {
	block, ok := g.GetValueParent(v)
	if !ok {
		return tag.Value{}, false
	}
	bb, _ := g.GetBasicBlock(block)
	idx := bb.IndexOf(v)
	if idx < 0 || idx+1 >= len(bb.Instrs) {
		return tag.Value{}, false
	}
	return bb.Instrs[idx+1], true
}
