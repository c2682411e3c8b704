package qry

import (
	log "github.com/cihub/seelog"

	"github.com/cwacek/qryeval/errs"
	"github.com/cwacek/qryeval/index"
	"github.com/cwacek/qryeval/model"
)

// Window implements #WINDOW/k: an unordered proximity match where all
// children's matched positions must fit inside a span of fewer than k
// tokens.
type Window struct {
	IopBase
	children []Iop
	k        int
}

func NewWindow(k int, children []Iop) (*Window, error) {
	if len(children) < 2 {
		return nil, errs.New(errs.QueryParseError, "#WINDOW/%d requires at least 2 children", k)
	}
	field, err := commonField(children)
	if err != nil {
		return nil, err
	}
	w := &Window{children: children, k: k}
	w.field = field
	return w, nil
}

func (w *Window) Initialize(m model.Model) error {
	for _, c := range w.children {
		if err := c.Initialize(m); err != nil {
			return err
		}
	}

	list := make(index.InvertedList, 0)

	for {
		d, ok := advanceAllToCommonDocid(w.children)
		if !ok {
			break
		}

		positions := matchWindowPositions(w.children, d, w.k)
		if len(positions) > 0 {
			list = append(list, index.Posting{DocId: d, Positions: positions})
		}

		for _, c := range w.children {
			c.AdvancePast(d)
		}
	}

	log.Debugf("WINDOW/%d synthesized %d postings over field %s", w.k, len(list), w.field)
	w.init(w.field, list)
	return nil
}

func matchWindowPositions(children []Iop, docid uint32, k int) []int {
	positions := make([][]int, len(children))
	for i, c := range children {
		if !c.HasMatch() || c.CurrentDocid() != docid {
			return nil
		}
		positions[i] = c.CurrentPosting().Positions
	}

	cursors := make([]int, len(children))
	var out []int

	for {
		for i := range children {
			if cursors[i] >= len(positions[i]) {
				return out
			}
		}

		minPos, maxPos := positions[0][cursors[0]], positions[0][cursors[0]]
		for i := 1; i < len(children); i++ {
			p := positions[i][cursors[i]]
			if p < minPos {
				minPos = p
			}
			if p > maxPos {
				maxPos = p
			}
		}

		if maxPos-minPos < k {
			out = append(out, maxPos)
			for i := range children {
				cursors[i]++
			}
		} else {
			for i := range children {
				if positions[i][cursors[i]] == minPos {
					cursors[i]++
				}
			}
		}
	}
}

var _ Iop = (*Window)(nil)
