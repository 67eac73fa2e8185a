package proto

import (
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/immutable"
)

// protoHasher hashes the structural key() of a Prototype variant. Every
// key type produced by this package is a struct of comparable fields
// (strings, enums, or another comparable key), so Equal can use plain ==;
// Hash falls back to hashing the %#v rendering, which is stable for
// comparable structs of this shape.
type protoHasher struct{}

func (protoHasher) Hash(key any) uint32 {
	h := fnv.New32a()
	fmt.Fprintf(h, "%#v", key)
	return h.Sum32()
}

func (protoHasher) Equal(a, b any) bool {
	return a == b
}

// internCache is a process-wide, canonicalizing cache: looking up a
// prototype with an equal structural key returns the already-stored
// instance, giving pointer/interface-value identity to structurally equal
// prototypes thereafter (§4.1, testable property 2).
//
// Reads go through an atomically-loaded persistent map (benbjohnson/immutable)
// so concurrent lookups never observe a partially-built bucket; writers take
// a mutex and swap in a new map built from the old one, matching the
// builder's own atomic-snapshot-swap pattern in pkg/ir.
type internCache struct {
	mu  sync.Mutex
	cur atomic.Pointer[immutable.Map[any, Prototype]]
}

func newInternCache() *internCache {
	c := &internCache{}
	c.cur.Store(immutable.NewMap[any, Prototype](protoHasher{}))
	return c
}

func (c *internCache) intern(p Prototype) Prototype {
	k := p.key()
	if v, ok := c.cur.Load().Get(k); ok {
		return v
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.cur.Load()
	if v, ok := m.Get(k); ok {
		return v
	}
	c.cur.Store(m.Set(k, p))
	return p
}

var global = newInternCache()

// Intern returns the canonical instance for p: the first prototype built
// with a given structural key wins, and every later call with an equal key
// returns that same instance. Every exported constructor in this package
// should route its result through Intern before returning it to a caller
// that needs interning semantics (pkg/ir does this when building
// instructions).
func Intern(p Prototype) Prototype {
	return global.intern(p)
}
