// Package qry implements the operator tree: positional operators,
// their shared cursor contract, and the scoring operators that consume
// them.
package qry

import (
	"github.com/cwacek/qryeval/index"
	"github.com/cwacek/qryeval/model"
)

// Iop is the matcher contract every positional operator satisfies:
// term, synonym, near, and window nodes are all Iops. The contract
// mirrors the PostingList/PostingListIterator pair in
// indexer/indexer.go but folds cursor state directly into the
// operator.
type Iop interface {
	// Initialize materializes any synthesized inverted list. Called
	// exactly once, before any matcher method.
	Initialize(m model.Model) error

	HasMatch() bool
	CurrentDocid() uint32
	CurrentPosting() index.Posting
	AdvancePast(docid uint32)

	Field() string
	// TfOfDoc is the position count of the current posting.
	TfOfDoc() int
	// Ctf is the collection term frequency: sum of |positions| over
	// every posting in the (possibly synthesized) inverted list.
	Ctf() int64
	// Df is the number of postings in the (possibly synthesized)
	// inverted list.
	Df() int
}

// IopBase holds a materialized, docid-ascending inverted list and a
// cursor into it. Every Iop implementation embeds this and calls init
// once its list is known (immediately for Term, after synthesis for
// Syn/Near/Window).
type IopBase struct {
	field string
	list  index.InvertedList
	i     int
	ctf   int64
}

func (b *IopBase) init(field string, list index.InvertedList) {
	b.field = field
	b.list = list
	b.i = 0
	b.ctf = 0
	for _, p := range list {
		b.ctf += int64(len(p.Positions))
	}
}

func (b *IopBase) HasMatch() bool { return b.i < len(b.list) }

func (b *IopBase) CurrentDocid() uint32 {
	return b.list[b.i].DocId
}

func (b *IopBase) CurrentPosting() index.Posting {
	return b.list[b.i]
}

func (b *IopBase) AdvancePast(docid uint32) {
	for b.i < len(b.list) && b.list[b.i].DocId <= docid {
		b.i++
	}
}

func (b *IopBase) Field() string { return b.field }

func (b *IopBase) TfOfDoc() int {
	if !b.HasMatch() {
		return 0
	}
	return len(b.list[b.i].Positions)
}

func (b *IopBase) Ctf() int64 { return b.ctf }

func (b *IopBase) Df() int { return len(b.list) }
