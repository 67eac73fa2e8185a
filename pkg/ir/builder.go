package ir

import (
	"sync/atomic"

	"github.com/milcore/milc/pkg/irtype"
	"github.com/milcore/milc/pkg/tag"
)

// Builder is the mutable facade over a Graph. It holds a single atomically
// swapped pointer to the current immutable snapshot; every mutator method
// loads the current snapshot, derives a successor, and stores it back, so
// any observer holding the pointer at a given instant sees either the
// whole old graph or the whole new one, never a partial edit (§5's
// ordering guarantee).
type Builder struct {
	current atomic.Pointer[Graph]
}

// NewBuilder returns a Builder wrapping g as its initial snapshot.
func NewBuilder(g Graph) *Builder {
	b := &Builder{}
	b.current.Store(&g)
	return b
}

// Snapshot returns the builder's current immutable graph.
func (b *Builder) Snapshot() Graph {
	return *b.current.Load()
}

func (b *Builder) swap(f func(Graph) Graph) {
	for {
		old := b.current.Load()
		next := f(*old)
		if b.current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// AddBlock adds a fresh empty block and returns its tag.
func (b *Builder) AddBlock(hint string) tag.Block {
	var result tag.Block
	b.swap(func(g Graph) Graph {
		ng, t := g.AddBlock(hint)
		result = t
		return ng
	})
	return result
}

// RemoveBlock removes block and everything it owns.
func (b *Builder) RemoveBlock(block tag.Block) {
	b.swap(func(g Graph) Graph { return g.RemoveBlock(block) })
}

// InsertInstruction inserts instr into block at index and returns the
// resulting SelectedInstruction view.
func (b *Builder) InsertInstruction(block tag.Block, index int, instr Instruction, hint string) SelectedInstruction {
	var sel SelectedInstruction
	b.swap(func(g Graph) Graph {
		ng, s := g.InsertInstruction(block, index, instr, hint)
		sel = s
		return ng
	})
	return sel
}

// AppendInstruction inserts instr at the end of block's instruction list.
func (b *Builder) AppendInstruction(block tag.Block, instr Instruction, hint string) SelectedInstruction {
	bb, _ := b.Snapshot().GetBasicBlock(block)
	return b.InsertInstruction(block, len(bb.Instrs), instr, hint)
}

// ReplaceInstruction swaps the instruction named by v for instr.
func (b *Builder) ReplaceInstruction(v tag.Value, instr Instruction) {
	b.swap(func(g Graph) Graph { return g.ReplaceInstruction(v, instr) })
}

// RemoveInstruction removes v from the graph.
func (b *Builder) RemoveInstruction(v tag.Value) {
	b.swap(func(g Graph) Graph { return g.RemoveInstruction(v) })
}

// UpdateBlockFlow sets block's terminating flow to f.
func (b *Builder) UpdateBlockFlow(block tag.Block, f Flow) {
	b.swap(func(g Graph) Graph { return g.UpdateBlockFlow(block, f) })
}

// UpdateBlockParameters sets block's parameter list to params.
func (b *Builder) UpdateBlockParameters(block tag.Block, params []Param) {
	b.swap(func(g Graph) Graph { return g.UpdateBlockParameters(block, params) })
}

// WithEntryPoint sets the graph's entry point to block.
func (b *Builder) WithEntryPoint(block tag.Block) {
	b.swap(func(g Graph) Graph { return g.WithEntryPoint(block) })
}

// NewValueTag mints a fresh, as-yet-unbound value tag.
func (b *Builder) NewValueTag(hint string) tag.Value {
	var v tag.Value
	b.swap(func(g Graph) Graph {
		ng, t := g.NewValueTag(hint)
		v = t
		return ng
	})
	return v
}

// NewBlockTag mints a fresh, as-yet-unadded block tag.
func (b *Builder) NewBlockTag(hint string) tag.Block {
	var t tag.Block
	b.swap(func(g Graph) Graph {
		ng, bt := g.NewBlockTag(hint)
		t = bt
		return ng
	})
	return t
}

// BlockBuilder is a live view onto a block, bound to its tag rather than to
// any particular snapshot: every accessor re-resolves through the
// builder's current graph, so it never observes a stale body.
type BlockBuilder struct {
	builder *Builder
	tag     tag.Block
}

// Block returns a live view onto block. The view is valid only as long as
// the returned view's Valid() reports true.
func (b *Builder) Block(block tag.Block) BlockBuilder {
	return BlockBuilder{builder: b, tag: block}
}

// Valid reports whether this view's block tag still names a block in the
// builder's current graph.
func (v BlockBuilder) Valid() bool {
	return v.builder.Snapshot().ContainsBlock(v.tag)
}

// Body returns the block's current body, re-resolved through the
// builder's current graph.
func (v BlockBuilder) Body() (BasicBlock, bool) {
	return v.builder.Snapshot().GetBasicBlock(v.tag)
}

// Tag returns the block tag this view is bound to.
func (v BlockBuilder) Tag() tag.Block { return v.tag }

// Append appends instr to this block.
func (v BlockBuilder) Append(instr Instruction, hint string) SelectedInstruction {
	return v.builder.AppendInstruction(v.tag, instr, hint)
}

// SetFlow sets this block's flow.
func (v BlockBuilder) SetFlow(f Flow) {
	v.builder.UpdateBlockFlow(v.tag, f)
}

// SetParameters sets this block's parameter list.
func (v BlockBuilder) SetParameters(params []Param) {
	v.builder.UpdateBlockParameters(v.tag, params)
}

// InstructionBuilder is a live view onto a single instruction-producing
// value, bound to its value tag.
type InstructionBuilder struct {
	builder *Builder
	tag     tag.Value
}

// Instruction returns a live view onto v.
func (b *Builder) Instruction(v tag.Value) InstructionBuilder {
	return InstructionBuilder{builder: b, tag: v}
}

// Valid reports whether this view's value tag still names an instruction
// result in the builder's current graph.
func (v InstructionBuilder) Valid() bool {
	_, ok := v.builder.Snapshot().GetInstruction(v.tag)
	return ok
}

// Tag returns the value tag this view is bound to.
func (v InstructionBuilder) Tag() tag.Value { return v.tag }

// Get returns the current instruction bound to this tag.
func (v InstructionBuilder) Get() (Instruction, bool) {
	return v.builder.Snapshot().GetInstruction(v.tag)
}

// Replace swaps this view's instruction for instr.
func (v InstructionBuilder) Replace(instr Instruction) {
	v.builder.ReplaceInstruction(v.tag, instr)
}

// InsertBefore inserts instr immediately before this view's instruction in
// its owning block, returning a view onto the new instruction.
func (v InstructionBuilder) InsertBefore(instr Instruction, hint string) SelectedInstruction {
	g := v.builder.Snapshot()
	block, ok := g.GetValueParent(v.tag)
	if !ok {
		return SelectedInstruction{}
	}
	bb, _ := g.GetBasicBlock(block)
	idx := bb.IndexOf(v.tag)
	if idx < 0 {
		idx = len(bb.Instrs)
	}
	return v.builder.InsertInstruction(block, idx, instr, hint)
}

// Remove deletes this view's instruction from the graph.
func (v InstructionBuilder) Remove() {
	v.builder.RemoveInstruction(v.tag)
}

// Type returns the IR type of this view's instruction's result.
func (v InstructionBuilder) Type() (irtype.Type, bool) {
	return v.builder.Snapshot().GetValueType(v.tag)
}
