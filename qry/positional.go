package qry

import (
	"sort"

	"github.com/cwacek/qryeval/errs"
)

// commonField validates that every child positional operator was built
// over the same field: a positional operator's field is the common
// field of its children, checked at construction time.
func commonField(children []Iop) (string, error) {
	if len(children) == 0 {
		return "", errs.New(errs.QueryParseError, "positional operator with no children")
	}
	field := children[0].Field()
	for _, c := range children[1:] {
		if c.Field() != field {
			return "", errs.New(errs.QueryParseError,
				"mismatched fields %q and %q under one positional operator", field, c.Field())
		}
	}
	return field, nil
}

// advanceAllToCommonDocid repeatedly advances whichever child sits at
// the smallest current docid until every child shares one docid, or
// reports false once any child is exhausted. This is the intersection
// half of positional-operator synthesis.
func advanceAllToCommonDocid(children []Iop) (uint32, bool) {
	for {
		var minD, maxD uint32
		first := true
		for _, c := range children {
			if !c.HasMatch() {
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
			if c.CurrentDocid() == minD {
				c.AdvancePast(minD)
			}
		}
	}
}

func sortedUniqueInts(xs []int) []int {
	sort.Ints(xs)
	out := xs[:0]
	var prev int
	for i, v := range xs {
		if i == 0 || v != prev {
			out = append(out, v)
		}
		prev = v
	}
	return out
}
