package analysis

import (
	"testing"

	"github.com/milcore/milc/pkg/ir"
)

type fakeResultType struct{ name string }

type fakeResult struct {
	value string
}

func (r *fakeResult) Update(delta Delta, g ir.Graph, a Analysis) Result {
	return a.Analyze(g)
}

type fakeAnalysis struct {
	types []ResultType
	value string
}

func (f fakeAnalysis) Provides() []ResultType { return f.types }
func (f fakeAnalysis) Analyze(g ir.Graph) Result { return &fakeResult{value: f.value} }

func TestGetResultAsBeforeRegistrationFails(t *testing.T) {
	c := NewCache()
	if _, err := c.GetResultAs(fakeResultType{"T"}, ir.New()); err == nil {
		t.Error("expected an error for a never-registered result type")
	}
}

func TestWithAnalysisThenGetResultAs(t *testing.T) {
	c := NewCache()
	t1 := fakeResultType{"T1"}
	c = c.WithAnalysis(fakeAnalysis{types: []ResultType{t1}, value: "a"})

	got, err := c.GetResultAs(t1, ir.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.(*fakeResult).value != "a" {
		t.Errorf("value = %q, want %q", got.(*fakeResult).value, "a")
	}
}

func TestWithAnalysisReplacementLeavesOtherSlotsIntact(t *testing.T) {
	c := NewCache()
	t1 := fakeResultType{"T1"}
	t2 := fakeResultType{"T2"}

	c = c.WithAnalysis(fakeAnalysis{types: []ResultType{t1}, value: "A"})
	c = c.WithAnalysis(fakeAnalysis{types: []ResultType{t2}, value: "B"})

	cPrime := c.WithAnalysis(fakeAnalysis{types: []ResultType{t1}, value: "A-prime"})

	got1, err := cPrime.GetResultAs(t1, ir.New())
	if err != nil {
		t.Fatalf("GetResultAs(t1): %v", err)
	}
	if got1.(*fakeResult).value != "A-prime" {
		t.Errorf("T1 result = %q, want %q (scenario S5)", got1.(*fakeResult).value, "A-prime")
	}

	got2, err := cPrime.GetResultAs(t2, ir.New())
	if err != nil {
		t.Fatalf("GetResultAs(t2): %v", err)
	}
	if got2.(*fakeResult).value != "B" {
		t.Errorf("T2 result = %q, want %q (unaffected by A's replacement)", got2.(*fakeResult).value, "B")
	}

	// The original cache is untouched (persistent cache).
	orig1, _ := c.GetResultAs(t1, ir.New())
	if orig1.(*fakeResult).value != "A" {
		t.Error("WithAnalysis must not mutate the receiver cache")
	}
}

func TestWithAnalysisCompactsMultipleDanglingSlots(t *testing.T) {
	c := NewCache()
	t1, t2, t3 := fakeResultType{"T1"}, fakeResultType{"T2"}, fakeResultType{"T3"}

	c = c.WithAnalysis(fakeAnalysis{types: []ResultType{t1}, value: "A"})
	c = c.WithAnalysis(fakeAnalysis{types: []ResultType{t2}, value: "B"})
	c = c.WithAnalysis(fakeAnalysis{types: []ResultType{t3}, value: "C"})

	// Replace the t1, t2 and t3 providers with one analysis that satisfies
	// all three result types, making all three old slots dangling
	// simultaneously and forcing a compaction.
	replaced := c.WithAnalysis(fakeAnalysis{types: []ResultType{t1, t2, t3}, value: "D"})

	for _, rt := range []ResultType{t1, t2, t3} {
		got, err := replaced.GetResultAs(rt, ir.New())
		if err != nil {
			t.Fatalf("GetResultAs(%v): %v", rt, err)
		}
		if got.(*fakeResult).value != "D" {
			t.Errorf("result for %v = %q, want %q", rt, got.(*fakeResult).value, "D")
		}
	}
}

func TestGetResultAsIsMemoized(t *testing.T) {
	c := NewCache()
	t1 := fakeResultType{"T1"}
	calls := 0
	c = c.WithAnalysis(countingAnalysis{t: t1, calls: &calls})

	g := ir.New()
	r1, _ := c.GetResultAs(t1, g)
	r2, _ := c.GetResultAs(t1, g)
	if r1 != r2 {
		t.Error("two calls to GetResultAs on the same cache/graph must return the same Result value")
	}
	if calls != 1 {
		t.Errorf("Analyze called %d times, want 1 (memoized)", calls)
	}
}

type countingAnalysis struct {
	t     ResultType
	calls *int
}

func (c countingAnalysis) Provides() []ResultType { return []ResultType{c.t} }
func (c countingAnalysis) Analyze(g ir.Graph) Result {
	(*c.calls)++
	return &fakeResult{value: "counted"}
}
