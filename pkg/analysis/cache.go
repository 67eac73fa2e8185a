// Package analysis implements the macro analysis cache: a cache-of-caches
// indexed by result type, with ref-counted slots and slot compaction, plus
// one concrete worked analysis (liveness) registered against it.
package analysis

import (
	"errors"
	"fmt"

	"github.com/milcore/milc/pkg/ir"
)

// ErrAnalysisNotRegistered is returned by GetResultAs when no analysis in
// the cache produces the requested result type.
var ErrAnalysisNotRegistered = errors.New("analysis not registered for result type")

// ResultType identifies an analysis's output shape. The core treats it as
// an opaque comparable key; callers typically use a named empty struct
// type's reflect.Type, or any other comparable value unique to the result
// shape.
type ResultType = any

// Analysis computes a derived fact over a graph and knows which declared
// result types it may satisfy (its own result type plus any
// assignable/base types, per the assignability relation supplied by the
// host type system).
type Analysis interface {
	// Analyze derives this analysis's result from scratch.
	Analyze(g ir.Graph) Result
	// Provides lists every result type this analysis satisfies requests
	// for (§4.3: "registers interest in every type assignable from T").
	Provides() []ResultType
}

// Result is a derived analysis fact, held inside a cache slot. It must be
// able to decide, given a graph delta, whether it remains valid or needs
// to be recomputed.
type Result interface {
	// Update returns the Result that should replace this one after delta
	// is applied to the graph this Result was derived from — either the
	// same Result (internally refreshed) or a freshly computed one.
	Update(delta Delta, g ir.Graph, a Analysis) Result
}

// Delta describes an edit the cache should consider when asked to update.
// It is deliberately coarse (the builder doesn't yet track fine-grained
// diffs); slots that cannot cheaply tell whether they're affected simply
// recompute.
type Delta struct {
	ChangedBlocks []ir.BasicBlock
}

// slot is one cache entry: the analysis that produced it, its last
// computed result (lazily present), and how many result types currently
// point at it.
type slot struct {
	analysis Analysis
	result   Result
	has      bool
	refcount int
}

// Cache is the macro analysis cache. Zero value is a valid empty cache.
type Cache struct {
	index map[ResultType]int // result type -> slot index
	slots []slot
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{index: map[ResultType]int{}}
}

// WithAnalysis returns a new cache with a registered for every type in
// a.Provides(). Existing registrations for those types are superseded;
// slots whose refcount reaches zero as a result are dangling and are
// either reused (when exactly one goes dangling) or compacted away
// (when more than one does), per §4.3 steps 1-3.
func (c *Cache) WithAnalysis(a Analysis) *Cache {
	next := &Cache{
		index: make(map[ResultType]int, len(c.index)),
		slots: append([]slot(nil), c.slots...),
	}
	for k, v := range c.index {
		next.index[k] = v
	}

	provides := a.Provides()
	danglingSet := map[int]bool{}
	for _, t := range provides {
		if idx, ok := next.index[t]; ok {
			next.slots[idx].refcount--
			delete(next.index, t)
			if next.slots[idx].refcount <= 0 {
				danglingSet[idx] = true
			}
		}
	}

	var dangling []int
	for idx := range danglingSet {
		dangling = append(dangling, idx)
	}

	var targetIdx int
	switch {
	case len(dangling) == 1:
		targetIdx = dangling[0]
		next.slots[targetIdx] = slot{analysis: a, refcount: len(provides)}
	case len(dangling) > 1:
		// Compact: drop every dangling slot and append one fresh slot for
		// a, rewriting every surviving index reference. Distinct slots
		// iterated here in the intended way: walk every distinct slot
		// that remains live and rebuild the index against the compacted
		// slot list, rather than re-reading the stale `next.slots` by
		// position (see the open-question fix below).
		distinctCaches := next.slots
		compacted := make([]slot, 0, len(distinctCaches))
		remap := make(map[int]int, len(distinctCaches))
		for i, s := range distinctCaches {
			if danglingSet[i] {
				continue
			}
			remap[i] = len(compacted)
			compacted = append(compacted, s)
		}
		for t, idx := range next.index {
			next.index[t] = remap[idx]
		}
		compacted = append(compacted, slot{analysis: a, refcount: len(provides)})
		targetIdx = len(compacted) - 1
		next.slots = compacted
	default:
		next.slots = append(next.slots, slot{analysis: a, refcount: len(provides)})
		targetIdx = len(next.slots) - 1
	}

	for _, t := range provides {
		next.index[t] = targetIdx
	}
	return next
}

// Update maps slot -> slot.Update(delta) over every distinct slot — each
// slot decides internally whether to invalidate (recompute) or
// incrementally refresh. This is the fix for the flagged bug: the source
// iterated a second, still-empty slice immediately after constructing it;
// the correct behavior, implemented here, iterates the cache's existing
// distinct slots and builds the new slot list from them.
func (c *Cache) Update(delta Delta, g ir.Graph) *Cache {
	next := &Cache{
		index: make(map[ResultType]int, len(c.index)),
		slots: make([]slot, len(c.slots)),
	}
	for k, v := range c.index {
		next.index[k] = v
	}
	distinctCaches := c.slots
	for i, s := range distinctCaches {
		if !s.has {
			next.slots[i] = s
			continue
		}
		next.slots[i] = slot{
			analysis: s.analysis,
			result:   s.result.Update(delta, g, s.analysis),
			has:      true,
			refcount: s.refcount,
		}
	}
	return next
}

// GetResultAs returns the cached (or freshly derived) result registered
// for resultType. Two calls with the same cache and graph return the same
// Result value (result identity, §4.3's contract) because the slot's
// computed result is memoized the first time it's demanded.
func (c *Cache) GetResultAs(resultType ResultType, g ir.Graph) (Result, error) {
	idx, ok := c.index[resultType]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisNotRegistered, resultType)
	}
	s := &c.slots[idx]
	if !s.has {
		s.result = s.analysis.Analyze(g)
		s.has = true
	}
	return s.result, nil
}

// RefCount reports the current reference count of the slot providing
// resultType, or 0 if resultType has no registered provider. Exposed for
// tests exercising §8 scenario S5 (the old slot's refcount reaching zero).
func (c *Cache) RefCount(resultType ResultType) int {
	idx, ok := c.index[resultType]
	if !ok {
		return 0
	}
	return c.slots[idx].refcount
}
