// Package qryparse turns the query expression syntax (#AND, #OR, #SUM,
// #WAND, #WSUM, #SYN, #NEAR/k, #WINDOW/k, and field-qualified terms)
// into an operator tree. This is deliberately small glue, kept just
// complete enough to drive the rest of the system end to end. It scans
// with a text/scanner.Scanner whose IsIdentRune is customized for
// query terms, weights and field qualifiers, behind a one-token
// lookahead in the parser.
package qryparse

import (
	"strings"
	"text/scanner"
	"unicode"

	log "github.com/cihub/seelog"

	"github.com/cwacek/qryeval/errs"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokHash
	tokLParen
	tokRParen
	tokSlash
	tokIdent
)

type token struct {
	kind tokenKind
	text string
}

type tokenizer struct {
	sc *scanner.Scanner
}

func newTokenizer(query string) *tokenizer {
	sc := new(scanner.Scanner).Init(strings.NewReader(query))
	sc.Mode = scanner.ScanIdents
	sc.Whitespace = 1<<'\t' | 1<<'\n' | 1<<'\r' | 1<<' '
	sc.IsIdentRune = func(ch rune, i int) bool {
		return unicode.IsLetter(ch) || unicode.IsDigit(ch) ||
			ch == '.' || ch == '_' || ch == '-' || ch == ':'
	}
	sc.Error = func(s *scanner.Scanner, msg string) {
		log.Debugf("query scanner: %s", msg)
	}
	return &tokenizer{sc: sc}
}

func (t *tokenizer) next() token {
	r := t.sc.Scan()
	switch r {
	case scanner.EOF:
		return token{kind: tokEOF}
	case '#':
		return token{kind: tokHash, text: "#"}
	case '(':
		return token{kind: tokLParen, text: "("}
	case ')':
		return token{kind: tokRParen, text: ")"}
	case '/':
		return token{kind: tokSlash, text: "/"}
	case scanner.Ident:
		return token{kind: tokIdent, text: t.sc.TokenText()}
	default:
		return token{kind: tokIdent, text: string(r)}
	}
}

func (t *tokenizer) errf(format string, args ...interface{}) error {
	return errs.New(errs.QueryParseError, format, args...)
}
