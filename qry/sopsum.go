package qry

import (
	log "github.com/cihub/seelog"

	"github.com/cwacek/qryeval/model"
)

// Sum implements #SUM (weights == nil) and #WSUM (weights set). Both
// match if any child matches (union), like Or.
type Sum struct {
	children []Sop
	w        weights
	curDocid uint32
}

func NewSum(children []Sop) *Sum {
	return &Sum{children: children, w: newWeights(children, nil)}
}

func NewWSum(children []Sop, weightList []float64) *Sum {
	return &Sum{children: children, w: newWeights(children, weightList)}
}

func (s *Sum) Initialize(m model.Model) error {
	for _, c := range s.children {
		if err := c.Initialize(m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sum) HasMatch(m model.Model) bool {
	d, ok := hasMatchMinSop(s.children, m)
	if ok {
		s.curDocid = d
	}
	return ok
}

func (s *Sum) CurrentDocid() uint32 { return s.curDocid }

func (s *Sum) AdvancePast(docid uint32) {
	for _, c := range s.children {
		c.AdvancePast(docid)
	}
}

func (s *Sum) Score(m model.Model) (float64, error) {
	switch m.Kind {
	case model.UnrankedBoolean:
		return 1.0, nil

	case model.RankedBoolean:
		// Sum/WSum sum child scores at matching children only; no
		// defaults. WSum applies each child's raw user weight.
		total := 0.0
		for i, c := range s.children {
			if !c.HasMatch(m) || c.CurrentDocid() != s.curDocid {
				continue
			}
			cs, err := c.Score(m)
			if err != nil {
				return 0, err
			}
			total += cs * s.w.at(i)
		}
		log.Debugf("WSum/RankedBoolean docid %d: total %f", s.curDocid, total)
		return total, nil

	case model.BM25:
		// Sum/WSum sum child scores at matching children only; no
		// defaults. WSum applies the same (k3+1)*w/(k3+w) user-weight
		// term WAnd uses.
		total := 0.0
		for i, c := range s.children {
			if !c.HasMatch(m) || c.CurrentDocid() != s.curDocid {
				continue
			}
			cs, err := c.Score(m)
			if err != nil {
				return 0, err
			}
			w := s.w.at(i)
			uw := (m.K3 + 1) * w / (m.K3 + w)
			total += cs * uw
		}
		log.Debugf("WSum/BM25 docid %d: total %f", s.curDocid, total)
		return total, nil

	case model.Indri:
		total := 0.0
		for i, c := range s.children {
			cs, err := scoreOrDefault(c, m, s.curDocid)
			if err != nil {
				return 0, err
			}
			total += (s.w.at(i) / s.w.total) * cs
		}
		log.Debugf("Sum/Indri docid %d: weighted total %f", s.curDocid, total)
		return total, nil

	default:
		return 0, errUnsupported("Sum", m)
	}
}

func (s *Sum) DefaultScore(m model.Model, docid uint32) (float64, error) {
	if m.Kind != model.Indri {
		return 0, nil
	}
	total := 0.0
	for i, c := range s.children {
		cs, err := c.DefaultScore(m, docid)
		if err != nil {
			return 0, err
		}
		total += (s.w.at(i) / s.w.total) * cs
	}
	return total, nil
}

var _ Sop = (*Sum)(nil)
