package analysis

import (
	"github.com/milcore/milc/pkg/ir"
	"github.com/milcore/milc/pkg/tag"
)

// LivenessResultType is the ResultType key Liveness registers under.
type LivenessResultType struct{}

// LiveSet is the set of value tags live at some program point.
type LiveSet map[tag.Value]bool

// LivenessResult maps each block to the set of values live at its exit:
// every ArgValue argument any of its branches passes onward. Because this
// IR threads all cross-block data through explicit, typed block
// parameters (§3), a value can only be needed past its own block's exit
// by appearing as a branch argument — there is no implicit "still live in
// a register" case to chase through a dataflow fixpoint the way a
// register allocator's interference graph must.
type LivenessResult struct {
	LiveOut map[tag.Block]LiveSet
}

func (r *LivenessResult) Update(delta Delta, g ir.Graph, a Analysis) Result {
	// Liveness here has no cross-block propagation to chase (see
	// LivenessResult's doc comment): every live-out set is a direct
	// function of its own block's flow, so recomputing from the current
	// graph is both correct and cheap — no per-block incremental path is
	// worth the bookkeeping it would take to track one.
	return a.Analyze(g)
}

// Liveness is the canonical worked analysis registered against the macro
// cache in this package's tests.
type Liveness struct{}

func (Liveness) Provides() []ResultType { return []ResultType{LivenessResultType{}} }

func (Liveness) Analyze(g ir.Graph) Result {
	result := &LivenessResult{LiveOut: map[tag.Block]LiveSet{}}
	g.Blocks(func(b tag.Block, bb ir.BasicBlock) {
		live := LiveSet{}
		addBranch := func(br ir.Branch) {
			for _, a := range br.Args {
				if a.Kind == ir.ArgValue {
					live[a.Value] = true
				}
			}
		}
		switch f := bb.Flow.(type) {
		case ir.Jump:
			addBranch(f.Branch)
		case ir.Switch:
			for _, c := range f.Cases {
				addBranch(c.Branch)
			}
			addBranch(f.Default)
		case ir.Try:
			addBranch(f.Success)
			addBranch(f.Exception)
		}
		result.LiveOut[b] = live
	})
	return result
}
