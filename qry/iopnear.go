package qry

import (
	log "github.com/cihub/seelog"

	"github.com/cwacek/qryeval/errs"
	"github.com/cwacek/qryeval/index"
	"github.com/cwacek/qryeval/model"
)

// Near implements #NEAR/k: an ordered proximity match. All children
// must occur, in order, each within k tokens of the previous one.
type Near struct {
	IopBase
	children []Iop
	k        int
}

func NewNear(k int, children []Iop) (*Near, error) {
	if len(children) < 2 {
		return nil, errs.New(errs.QueryParseError, "#NEAR/%d requires at least 2 children", k)
	}
	field, err := commonField(children)
	if err != nil {
		return nil, err
	}
	n := &Near{children: children, k: k}
	n.field = field
	return n, nil
}

func (n *Near) Initialize(m model.Model) error {
	for _, c := range n.children {
		if err := c.Initialize(m); err != nil {
			return err
		}
	}

	list := make(index.InvertedList, 0)

	for {
		d, ok := advanceAllToCommonDocid(n.children)
		if !ok {
			break
		}

		positions := matchNearPositions(n.children, d, n.k)
		if len(positions) > 0 {
			list = append(list, index.Posting{DocId: d, Positions: positions})
		}

		for _, c := range n.children {
			c.AdvancePast(d)
		}
	}

	log.Debugf("NEAR/%d synthesized %d postings over field %s", n.k, len(list), n.field)
	n.init(n.field, list)
	return nil
}

// matchNearPositions walks a cursor per child, all starting at index 0.
// For every position of the first
// child, greedily chase a strictly-increasing, within-k match through
// the remaining children; on success the rightmost matched position is
// emitted and every cursor advances past what it matched, on failure
// only the first child's cursor advances.
func matchNearPositions(children []Iop, docid uint32, k int) []int {
	positions := make([][]int, len(children))
	for i, c := range children {
		if !c.HasMatch() || c.CurrentDocid() != docid {
			return nil
		}
		positions[i] = c.CurrentPosting().Positions
	}

	cursors := make([]int, len(children))
	var out []int

	for cursors[0] < len(positions[0]) {
		prev := positions[0][cursors[0]]
		matched := []int{prev}
		ok := true
		exhausted := false

		trial := append([]int(nil), cursors...)

		for j := 1; j < len(children); j++ {
			for trial[j] < len(positions[j]) && positions[j][trial[j]] <= prev {
				trial[j]++
			}
			if trial[j] >= len(positions[j]) {
				exhausted = true
				ok = false
				break
			}
			p := positions[j][trial[j]]
			if p-prev > k {
				ok = false
				break
			}
			prev = p
			matched = append(matched, p)
		}

		if exhausted {
			break
		}

		if ok {
			out = append(out, matched[len(matched)-1])
			cursors[0]++
			for j := 1; j < len(children); j++ {
				cursors[j] = trial[j] + 1
			}
		} else {
			copy(cursors[1:], trial[1:])
			cursors[0]++
		}
	}

	return out
}

var _ Iop = (*Near)(nil)
