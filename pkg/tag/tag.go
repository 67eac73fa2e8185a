// Package tag defines the opaque identity tokens used throughout the IR:
// block tags and value tags. Tags compare by identity; their display names
// exist only to make dumps and diagnostics readable to a human.
package tag

import (
	"fmt"

	"github.com/benbjohnson/immutable"
)

// kind distinguishes block tags from value tags so a value tag can never be
// mistaken for a block tag even though both wrap the same counter.
type kind uint8

const (
	kindBlock kind = iota
	kindValue
)

// id is the shared underlying identity. Two tags are equal iff all of its
// fields (kind, ordinal and hint) are equal. A Counter never reuses an
// ordinal, so among the tags of one Counter the ordinal and kind alone
// decide equality.
type id struct {
	kind kind
	n    uint64
	hint string
}

// Block identifies a basic block within a flow graph.
type Block struct{ id id }

// Value identifies a value (an instruction result or a block parameter)
// within a flow graph.
type Value struct{ id id }

// Counter hands out fresh tags, unique among the tags that the same Counter
// has produced (every Counter starts from ordinal 1). A Graph or Builder owns one
// counter per method body; tags from different counters are never compared
// to each other by the core (the invariant is enforced at the Graph
// boundary, not here).
type Counter struct {
	next uint64
}

// NewBlock returns a fresh block tag with the given display hint.
func (c *Counter) NewBlock(hint string) Block {
	c.next++
	return Block{id{kind: kindBlock, n: c.next, hint: hint}}
}

// NewValue returns a fresh value tag with the given display hint.
func (c *Counter) NewValue(hint string) Value {
	c.next++
	return Value{id{kind: kindValue, n: c.next, hint: hint}}
}

// Hint returns the display hint the tag was created with.
func (t Block) Hint() string { return t.id.hint }
func (t Value) Hint() string { return t.id.hint }

// IsZero reports whether the tag is the zero value (never produced by a
// Counter, used as a sentinel for "no tag").
func (t Block) IsZero() bool { return t.id.n == 0 }
func (t Value) IsZero() bool { return t.id.n == 0 }

func (t Block) String() string {
	if t.id.hint == "" {
		return fmt.Sprintf("bb%d", t.id.n)
	}
	return fmt.Sprintf("bb%d(%s)", t.id.n, t.id.hint)
}

func (t Value) String() string {
	if t.id.hint == "" {
		return fmt.Sprintf("v%d", t.id.n)
	}
	return fmt.Sprintf("v%d(%s)", t.id.n, t.id.hint)
}

// QualifiedName is a dotted, human-readable path used to name methods,
// fields, and types referenced from instruction prototypes. It carries no
// identity semantics of its own — two prototypes referencing the same
// QualifiedName compare by its string value.
type QualifiedName struct {
	Namespace string
	Parts     []string
}

func (q QualifiedName) String() string {
	s := q.Namespace
	for _, p := range q.Parts {
		if s != "" {
			s += "."
		}
		s += p
	}
	return s
}

// BlockHasher and ValueHasher adapt Block/Value for use as keys in a
// benbjohnson/immutable.Map (pkg/ir's persistent graph maps). Hashing uses
// the counter-assigned ordinal only; the display hint is left out of the
// hash, and Equal compares the whole tag.
type blockHasher struct{}

func (blockHasher) Hash(key Block) uint32 {
	return hashOrdinal(key.id.n)
}
func (blockHasher) Equal(a, b Block) bool {
	return a == b
}

// BlockHasher returns a Hasher for Block keys.
func BlockHasher() immutable.Hasher[Block] {
	return blockHasher{}
}

type valueHasher struct{}

func (valueHasher) Hash(key Value) uint32 {
	return hashOrdinal(key.id.n)
}
func (valueHasher) Equal(a, b Value) bool {
	return a == b
}

// ValueHasher returns a Hasher for Value keys.
func ValueHasher() immutable.Hasher[Value] {
	return valueHasher{}
}

func hashOrdinal(n uint64) uint32 {
	// splitmix64 finalizer, truncated: cheap, well-distributed avalanche
	// for the small sequential counters tags are built from.
	n ^= n >> 33
	n *= 0xff51afd7ed558ccd
	n ^= n >> 33
	n *= 0xc4ceb9fe1a85ec53
	n ^= n >> 33
	return uint32(n)
}
