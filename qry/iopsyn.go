package qry

import (
	log "github.com/cihub/seelog"

	"github.com/cwacek/qryeval/index"
	"github.com/cwacek/qryeval/model"
)

// Syn implements #SYN: a synonym union of its children's postings.
// Unlike Near/Window, Syn does not require every child to match the
// same docid; a doc matches if any child does, and its positions are
// the deduplicated union of whichever children matched.
type Syn struct {
	IopBase
	children []Iop
}

func NewSyn(children []Iop) (*Syn, error) {
	field, err := commonField(children)
	if err != nil {
		return nil, err
	}
	s := &Syn{children: children}
	s.field = field
	return s, nil
}

// Initialize eagerly synthesizes the union inverted list. Must be
// called exactly once before any matcher method.
func (s *Syn) Initialize(m model.Model) error {
	for _, c := range s.children {
		if err := c.Initialize(m); err != nil {
			return err
		}
	}

	list := make(index.InvertedList, 0)

	for {
		d, ok := minDocid(s.children)
		if !ok {
			break
		}

		var positions []int
		for _, c := range s.children {
			if c.HasMatch() && c.CurrentDocid() == d {
				positions = append(positions, c.CurrentPosting().Positions...)
			}
		}
		positions = sortedUniqueInts(positions)

		if len(positions) > 0 {
			list = append(list, index.Posting{DocId: d, Positions: positions})
		}

		for _, c := range s.children {
			if c.HasMatch() && c.CurrentDocid() == d {
				c.AdvancePast(d)
			}
		}
	}

	log.Debugf("SYN synthesized %d postings over field %s", len(list), s.field)
	s.init(s.field, list)
	return nil
}

func minDocid(children []Iop) (uint32, bool) {
	found := false
	var min uint32
	for _, c := range children {
		if !c.HasMatch() {
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

var _ Iop = (*Syn)(nil)
