package qry

import (
	"github.com/cwacek/qryeval/errs"
	"github.com/cwacek/qryeval/model"
)

// Sop is the matcher+scorer contract every scoring operator satisfies.
// HasMatch/CurrentDocid form an idempotent pair between AdvancePast
// calls.
type Sop interface {
	// Initialize recursively initializes children and, for Score,
	// caches the corpus statistics its scoring formulas need. Called
	// exactly once, before any matcher/scorer method.
	Initialize(m model.Model) error

	HasMatch(m model.Model) bool
	CurrentDocid() uint32
	AdvancePast(docid uint32)

	// Score requires HasMatch(m) to currently be true for the node's
	// current docid; calling it otherwise is a ScoringInvariantViolated
	// programming error.
	Score(m model.Model) (float64, error)

	// DefaultScore is the Indri smoothed background probability used
	// when a sibling operator matches a docid this node does not.
	// Non-Indri models never call it; implementations return 0, nil.
	DefaultScore(m model.Model, docid uint32) (float64, error)
}

func hasMatchAllSop(children []Sop, m model.Model) (uint32, bool) {
	if len(children) == 0 {
		return 0, false
	}
	for {
		var minD, maxD uint32
		first := true
		for _, c := range children {
			if !c.HasMatch(m) {
				return 0, false
			}
			d := c.CurrentDocid()
			if first {
				minD, maxD = d, d
				first = false
				continue
			}
			if d < minD {
				minD = d
			}
			if d > maxD {
				maxD = d
			}
		}
		if minD == maxD {
			return minD, true
		}
		for _, c := range children {
			if c.HasMatch(m) && c.CurrentDocid() == minD {
				c.AdvancePast(minD)
			}
		}
	}
}

func hasMatchMinSop(children []Sop, m model.Model) (uint32, bool) {
	found := false
	var min uint32
	for _, c := range children {
		if !c.HasMatch(m) {
			continue
		}
		d := c.CurrentDocid()
		if !found || d < min {
			min = d
			found = true
		}
	}
	return min, found
}

// scoreOrDefault returns child.Score(m) if it currently matches docid,
// else child.DefaultScore(m, docid). This is the primitive every Indri
// composite formula is built from.
func scoreOrDefault(c Sop, m model.Model, docid uint32) (float64, error) {
	if c.HasMatch(m) && c.CurrentDocid() == docid {
		return c.Score(m)
	}
	return c.DefaultScore(m, docid)
}

// weights is a small helper embedded by every composite scoring
// operator: nil weights means "unweighted" (all weights implicitly 1),
// matching #AND/#OR/#SUM vs. #WAND/#WSUM in the query syntax.
type weights struct {
	w     []float64 // nil for unweighted operators
	total float64
}

func newWeights(children []Sop, w []float64) weights {
	if w == nil {
		return weights{total: float64(len(children))}
	}
	total := 0.0
	for _, x := range w {
		total += x
	}
	return weights{w: w, total: total}
}

func (w weights) at(i int) float64 {
	if w.w == nil {
		return 1.0
	}
	return w.w[i]
}

var errUnsupported = func(op string, m model.Model) error {
	return errs.New(errs.UnsupportedOperator, "%s does not support %s", op, m.Kind)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
