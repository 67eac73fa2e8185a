package ir

import (
	"testing"

	"github.com/milcore/milc/pkg/irtype"
	"github.com/milcore/milc/pkg/proto"
)

func TestBuilderRoundTrip(t *testing.T) {
	b := NewBuilder(New())
	entry := b.AddBlock("entry")
	sel := b.AppendInstruction(entry, Instruction{Proto: proto.Intern(proto.Constant{Value: irtype.ConstInt32(1), T: irtype.Int32})}, "c")
	b.WithEntryPoint(entry)

	snap := b.Snapshot()
	if snap.EntryPoint() != entry {
		t.Errorf("EntryPoint() = %v, want %v", snap.EntryPoint(), entry)
	}
	if !snap.ContainsValue(sel.Tag) {
		t.Error("snapshot must contain the appended instruction's value")
	}
}

func TestBlockBuilderViewTracksCurrentSnapshot(t *testing.T) {
	b := NewBuilder(New())
	entry := b.AddBlock("entry")
	view := b.Block(entry)

	if !view.Valid() {
		t.Fatal("view over a live block must be valid")
	}
	b.RemoveBlock(entry)
	if view.Valid() {
		t.Error("view must become invalid once its block is removed from the current snapshot")
	}
}

func TestInstructionBuilderInsertBeforeAndReplace(t *testing.T) {
	b := NewBuilder(New())
	entry := b.AddBlock("entry")
	second := b.AppendInstruction(entry, Instruction{Proto: proto.Intern(proto.Alloca{T: irtype.Int32})}, "second")

	view := b.Instruction(second.Tag)
	first := view.InsertBefore(Instruction{Proto: proto.Intern(proto.Alloca{T: irtype.Bool})}, "first")

	bb, _ := b.Snapshot().GetBasicBlock(entry)
	if len(bb.Instrs) != 2 || bb.Instrs[0] != first.Tag || bb.Instrs[1] != second.Tag {
		t.Errorf("instruction order = %v, want [%v %v]", bb.Instrs, first.Tag, second.Tag)
	}

	view.Replace(Instruction{Proto: proto.Intern(proto.Alloca{T: irtype.Int64})})
	got, _ := view.Get()
	if _, ok := got.Proto.(proto.Alloca); !ok {
		t.Fatalf("Replace did not take effect, got %T", got.Proto)
	}
}
