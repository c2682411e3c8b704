package qry

import (
	"math"

	log "github.com/cihub/seelog"

	"github.com/cwacek/qryeval/model"
)

// Or implements #OR: matches if any child matches, current docid is the
// minimum across children.
type Or struct {
	children []Sop
	curDocid uint32
}

func NewOr(children []Sop) *Or {
	return &Or{children: children}
}

func (o *Or) Initialize(m model.Model) error {
	for _, c := range o.children {
		if err := c.Initialize(m); err != nil {
			return err
		}
	}
	return nil
}

func (o *Or) HasMatch(m model.Model) bool {
	d, ok := hasMatchMinSop(o.children, m)
	if ok {
		o.curDocid = d
	}
	return ok
}

func (o *Or) CurrentDocid() uint32 { return o.curDocid }

func (o *Or) AdvancePast(docid uint32) {
	for _, c := range o.children {
		c.AdvancePast(docid)
	}
}

func (o *Or) Score(m model.Model) (float64, error) {
	switch m.Kind {
	case model.UnrankedBoolean:
		return 1.0, nil

	case model.RankedBoolean, model.BM25:
		max := math.Inf(-1)
		any := false
		for _, c := range o.children {
			if !c.HasMatch(m) || c.CurrentDocid() != o.curDocid {
				continue
			}
			s, err := c.Score(m)
			if err != nil {
				return 0, err
			}
			any = true
			if s > max {
				max = s
			}
		}
		if !any {
			return 0, nil
		}
		log.Debugf("Or docid %d: max child score %f", o.curDocid, max)
		return max, nil

	case model.Indri:
		// Noisy-or over every child, with defaults substituted for
		// children not currently at curDocid.
		prodComplement := 1.0
		for _, c := range o.children {
			cs, err := scoreOrDefault(c, m, o.curDocid)
			if err != nil {
				return 0, err
			}
			prodComplement *= 1 - cs
		}
		log.Debugf("Or/Indri docid %d: noisy-or %f", o.curDocid, 1-prodComplement)
		return 1 - prodComplement, nil

	default:
		return 0, errUnsupported("Or", m)
	}
}

func (o *Or) DefaultScore(m model.Model, docid uint32) (float64, error) {
	if m.Kind != model.Indri {
		return 0, nil
	}
	prodComplement := 1.0
	for _, c := range o.children {
		cs, err := c.DefaultScore(m, docid)
		if err != nil {
			return 0, err
		}
		prodComplement *= 1 - cs
	}
	return 1 - prodComplement, nil
}

var _ Sop = (*Or)(nil)
