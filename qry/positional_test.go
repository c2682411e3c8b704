package qry

import (
	"testing"

	"github.com/cwacek/qryeval/index"
	"github.com/cwacek/qryeval/model"
)

func fillerTokens(n int, overrides map[int]string) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "filler"
	}
	for pos, term := range overrides {
		out[pos] = term
	}
	return out
}

func mustTerm(t *testing.T, idx index.Facade, field, text string) *Term {
	t.Helper()
	term, err := NewTerm(idx, field, text)
	if err != nil {
		t.Fatalf("NewTerm(%s,%s): %v", field, text, err)
	}
	return term
}

// TestNearOrderedProximity reproduces the ordered NEAR/2 scenario:
// A at [1,10,20], B at [2,15,21]; only the (1,2) and (20,21) pairs are
// within 2 tokens and in order, so the synthesized positions are [2,21].
func TestNearOrderedProximity(t *testing.T) {
	idx := index.NewMemory()
	tokens := fillerTokens(22, map[int]string{1: "A", 10: "A", 20: "A", 2: "B", 15: "B", 21: "B"})
	idx.AddDocument("d1", map[string][]string{"body": tokens}, nil)

	a := mustTerm(t, idx, "body", "A")
	b := mustTerm(t, idx, "body", "B")

	near, err := NewNear(2, []Iop{a, b})
	if err != nil {
		t.Fatalf("NewNear: %v", err)
	}
	if err := near.Initialize(model.NewUnrankedBoolean()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if !near.HasMatch() {
		t.Fatal("expected a match")
	}
	if got, want := near.CurrentPosting().Positions, []int{2, 21}; !intsEqual(got, want) {
		t.Errorf("positions = %v, want %v", got, want)
	}
}

// TestWindowUnorderedSpan reproduces the unordered WINDOW/3 scenario:
// A at [5,30], B at [6,29]; window spans of 1 token each yield [6,30].
func TestWindowUnorderedSpan(t *testing.T) {
	idx := index.NewMemory()
	tokens := fillerTokens(31, map[int]string{5: "A", 30: "A", 6: "B", 29: "B"})
	idx.AddDocument("d1", map[string][]string{"body": tokens}, nil)

	a := mustTerm(t, idx, "body", "A")
	b := mustTerm(t, idx, "body", "B")

	win, err := NewWindow(3, []Iop{a, b})
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	if err := win.Initialize(model.NewUnrankedBoolean()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if !win.HasMatch() {
		t.Fatal("expected a match")
	}
	if got, want := win.CurrentPosting().Positions, []int{6, 30}; !intsEqual(got, want) {
		t.Errorf("positions = %v, want %v", got, want)
	}
}

// TestSynUnionDeduplicates checks that #SYN merges positions from
// whichever children match a docid, deduplicated and sorted.
func TestSynUnionDeduplicates(t *testing.T) {
	idx := index.NewMemory()
	tokens := fillerTokens(10, map[int]string{1: "run", 5: "running", 7: "run"})
	idx.AddDocument("d1", map[string][]string{"body": tokens}, nil)

	run := mustTerm(t, idx, "body", "run")
	running := mustTerm(t, idx, "body", "running")

	syn, err := NewSyn([]Iop{run, running})
	if err != nil {
		t.Fatalf("NewSyn: %v", err)
	}
	if err := syn.Initialize(model.NewUnrankedBoolean()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if !syn.HasMatch() {
		t.Fatal("expected a match")
	}
	if got, want := syn.CurrentPosting().Positions, []int{1, 5, 7}; !intsEqual(got, want) {
		t.Errorf("positions = %v, want %v", got, want)
	}
}

func TestNearRequiresCommonField(t *testing.T) {
	idx := index.NewMemory()
	idx.AddDocument("d1", map[string][]string{
		"body":  {"dog"},
		"title": {"dog"},
	}, nil)

	a := mustTerm(t, idx, "body", "dog")
	b := mustTerm(t, idx, "title", "dog")

	if _, err := NewNear(1, []Iop{a, b}); err == nil {
		t.Fatal("expected an error for mismatched fields")
	}
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
