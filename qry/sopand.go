package qry

import (
	"math"

	log "github.com/cihub/seelog"

	"github.com/cwacek/qryeval/model"
)

// And implements #AND (weights == nil) and #WAND (weights set). Under
// Boolean/BM25 models every child must match the same current docid
// (strict intersection); under Indri, matching is a union like Or/Sum,
// since a document missing some children still scores via DefaultScore.
type And struct {
	children []Sop
	w        weights
	curDocid uint32
}

func NewAnd(children []Sop) *And {
	return &And{children: children, w: newWeights(children, nil)}
}

func NewWAnd(children []Sop, weightList []float64) *And {
	return &And{children: children, w: newWeights(children, weightList)}
}

func (a *And) Initialize(m model.Model) error {
	for _, c := range a.children {
		if err := c.Initialize(m); err != nil {
			return err
		}
	}
	return nil
}

func (a *And) HasMatch(m model.Model) bool {
	var d uint32
	var ok bool
	if m.Kind == model.Indri {
		// Indri's AND is a belief operator over the union of its
		// children's matches, not a literal intersection: a document
		// missing some children still matches and scores the missing
		// ones through DefaultScore, exactly like Or and Sum already do.
		d, ok = hasMatchMinSop(a.children, m)
	} else {
		d, ok = hasMatchAllSop(a.children, m)
	}
	if ok {
		a.curDocid = d
	}
	return ok
}

func (a *And) CurrentDocid() uint32 { return a.curDocid }

func (a *And) AdvancePast(docid uint32) {
	for _, c := range a.children {
		c.AdvancePast(docid)
	}
}

func (a *And) Score(m model.Model) (float64, error) {
	switch m.Kind {
	case model.UnrankedBoolean:
		return 1.0, nil

	case model.RankedBoolean:
		// Accumulate a running minimum starting from positive infinity
		// rather than seeding with a large sentinel added to the first
		// score, which would produce meaningless totals.
		min := math.Inf(1)
		for _, c := range a.children {
			s, err := c.Score(m)
			if err != nil {
				return 0, err
			}
			if s < min {
				min = s
			}
		}
		log.Debugf("And/RankedBoolean docid %d: min child score %f", a.curDocid, min)
		return min, nil

	case model.BM25:
		// WAnd/And behave as a sum over matching children, each
		// multiplied by its own user-weight term. A zero-scoring child
		// contributes zero to the sum like any other term rather than
		// zeroing the whole expression.
		sum := 0.0
		for i, c := range a.children {
			cs, err := c.Score(m)
			if err != nil {
				return 0, err
			}
			w := a.w.at(i)
			uw := (m.K3 + 1) * w / (m.K3 + w)
			log.Debugf("WAnd/BM25 child %d: score %f weight %f -> %f", i, cs, w, cs*uw)
			sum += cs * uw
		}
		return sum, nil

	case model.Indri:
		prod := 1.0
		for i, c := range a.children {
			cs, err := scoreOrDefault(c, m, a.curDocid)
			if err != nil {
				return 0, err
			}
			prod *= math.Pow(cs, a.w.at(i)/a.w.total)
		}
		log.Debugf("And/Indri docid %d: weighted product %f", a.curDocid, prod)
		return prod, nil

	default:
		return 0, errUnsupported("And", m)
	}
}

func (a *And) DefaultScore(m model.Model, docid uint32) (float64, error) {
	if m.Kind != model.Indri {
		return 0, nil
	}
	prod := 1.0
	for i, c := range a.children {
		cs, err := c.DefaultScore(m, docid)
		if err != nil {
			return 0, err
		}
		prod *= math.Pow(cs, a.w.at(i)/a.w.total)
	}
	return prod, nil
}

var _ Sop = (*And)(nil)
