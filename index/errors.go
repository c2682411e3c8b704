package index

import "github.com/cwacek/qryeval/errs"

func errField(field string) error {
	return errs.New(errs.UnknownField, "unknown field %q", field)
}

func errDocid(id interface{}) error {
	return errs.New(errs.UnknownDocid, "unknown docid %v", id)
}

// UnknownTerm is intentionally not surfaced as an error: a lookup on a
// term the index has never seen returns an empty posting list, not an
// error.
