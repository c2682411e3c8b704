package qry

import (
	"github.com/cwacek/qryeval/errs"
	"github.com/cwacek/qryeval/index"
	"github.com/cwacek/qryeval/model"
)

// Term is a leaf positional operator backed directly by an index
// posting list: word.field query terms compile to one of these.
type Term struct {
	IopBase
	Text string
}

// NewTerm reads the (field, term) posting list from idx and returns a
// ready-to-iterate Term. Unlike Syn/Near/Window, a Term needs no
// synthesis step: the facade's list is already in the required
// docid-ascending, position-ascending order.
func NewTerm(idx index.Facade, field, text string) (*Term, error) {
	list, err := idx.Postings(field, text)
	if err != nil {
		return nil, errs.New(errs.IndexUnavailable, "reading postings for %s.%s: %v", text, field, err)
	}
	t := &Term{Text: text}
	t.init(field, list)
	return t, nil
}

// Initialize is a no-op: a Term's list comes straight from the facade
// and needs no synthesis; only composite positional operators
// (Syn/Near/Window) evaluate eagerly.
func (t *Term) Initialize(m model.Model) error { return nil }

var _ Iop = (*Term)(nil)
