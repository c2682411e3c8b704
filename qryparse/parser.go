package qryparse

import (
	"strconv"
	"strings"

	"github.com/cwacek/qryeval/errs"
	"github.com/cwacek/qryeval/index"
	"github.com/cwacek/qryeval/qry"
)

// Parser builds a qry.Sop operator tree from a query expression string.
type Parser struct {
	idx          index.Facade
	defaultField string

	tz   *tokenizer
	peek *token
}

// NewParser returns a Parser reading postings from idx. defaultField is
// used for bare terms with no ".field" suffix (the source's convention
// of tagging every term with a field explicitly; unqualified terms are
// rare enough in practice that a single fallback field is sufficient
// glue here).
func NewParser(idx index.Facade, defaultField string) *Parser {
	return &Parser{idx: idx, defaultField: defaultField}
}

// Parse parses a fully-formed scoring expression, e.g. the already
// defaultOp-wrapped string eval.Evaluator.ProcessQuery builds.
func (p *Parser) Parse(query string) (qry.Sop, error) {
	p.tz = newTokenizer(query)
	p.peek = nil

	root, err := p.parseSop()
	if err != nil {
		return nil, err
	}
	if tok := p.lookahead(); tok.kind != tokEOF {
		return nil, p.tz.errf("unexpected trailing input %q", tok.text)
	}
	return root, nil
}

func (p *Parser) lookahead() token {
	if p.peek == nil {
		t := p.tz.next()
		p.peek = &t
	}
	return *p.peek
}

func (p *Parser) advance() token {
	t := p.lookahead()
	p.peek = nil
	return t
}

func (p *Parser) expect(k tokenKind, what string) (token, error) {
	t := p.advance()
	if t.kind != k {
		return t, p.tz.errf("expected %s, got %q", what, t.text)
	}
	return t, nil
}

// parseSop parses one scoring-operator expression: either #OP(...) for
// a boolean/weighted combiner, or a bare term (implicitly wrapped in
// SCORE), or a bare positional expression (#SYN/#NEAR/#WINDOW, also
// implicitly wrapped in SCORE).
func (p *Parser) parseSop() (qry.Sop, error) {
	if p.lookahead().kind == tokHash {
		return p.parseOperatorAsSop()
	}
	return p.parseTermAsSop()
}

func (p *Parser) parseOperatorAsSop() (qry.Sop, error) {
	if _, err := p.expect(tokHash, "#"); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(tokIdent, "operator name")
	if err != nil {
		return nil, err
	}
	name := strings.ToUpper(nameTok.text)

	switch name {
	case "AND":
		children, err := p.parseSopChildren()
		if err != nil {
			return nil, err
		}
		return qry.NewAnd(children), nil

	case "OR":
		children, err := p.parseSopChildren()
		if err != nil {
			return nil, err
		}
		return qry.NewOr(children), nil

	case "SUM":
		children, err := p.parseSopChildren()
		if err != nil {
			return nil, err
		}
		return qry.NewSum(children), nil

	case "WAND":
		children, weights, err := p.parseWeightedSopChildren()
		if err != nil {
			return nil, err
		}
		return qry.NewWAnd(children, weights), nil

	case "WSUM":
		children, weights, err := p.parseWeightedSopChildren()
		if err != nil {
			return nil, err
		}
		return qry.NewWSum(children, weights), nil

	case "SCORE":
		if _, err := p.expect(tokLParen, "("); err != nil {
			return nil, err
		}
		child, err := p.parseIop()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, ")"); err != nil {
			return nil, err
		}
		return qry.NewScore(p.idx, child), nil

	case "SYN", "NEAR", "WINDOW":
		iop, err := p.parsePositionalOperator(name)
		if err != nil {
			return nil, err
		}
		return qry.NewScore(p.idx, iop), nil

	default:
		return nil, p.tz.errf("unknown operator #%s", nameTok.text)
	}
}

func (p *Parser) parseSopChildren() ([]qry.Sop, error) {
	if _, err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}
	var children []qry.Sop
	for p.lookahead().kind != tokRParen {
		if p.lookahead().kind == tokEOF {
			return nil, p.tz.errf("unterminated operator argument list")
		}
		c, err := p.parseSop()
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	p.advance() // ')'
	if len(children) == 0 {
		return nil, p.tz.errf("operator requires at least one argument")
	}
	return children, nil
}

func (p *Parser) parseWeightedSopChildren() ([]qry.Sop, []float64, error) {
	if _, err := p.expect(tokLParen, "("); err != nil {
		return nil, nil, err
	}
	var children []qry.Sop
	var weights []float64
	for p.lookahead().kind != tokRParen {
		if p.lookahead().kind == tokEOF {
			return nil, nil, p.tz.errf("unterminated operator argument list")
		}
		wTok, err := p.expect(tokIdent, "weight")
		if err != nil {
			return nil, nil, err
		}
		w, err := strconv.ParseFloat(wTok.text, 64)
		if err != nil {
			return nil, nil, p.tz.errf("expected numeric weight, got %q", wTok.text)
		}
		c, err := p.parseSop()
		if err != nil {
			return nil, nil, err
		}
		weights = append(weights, w)
		children = append(children, c)
	}
	p.advance() // ')'
	if len(children) == 0 {
		return nil, nil, p.tz.errf("weighted operator requires at least one (weight, argument) pair")
	}
	return children, weights, nil
}

func (p *Parser) parseTermAsSop() (qry.Sop, error) {
	iop, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	return qry.NewScore(p.idx, iop), nil
}

// parseIop parses one positional (Iop) expression: a bare term, or a
// nested #SYN/#NEAR/#WINDOW.
func (p *Parser) parseIop() (qry.Iop, error) {
	if p.lookahead().kind == tokHash {
		if _, err := p.expect(tokHash, "#"); err != nil {
			return nil, err
		}
		nameTok, err := p.expect(tokIdent, "operator name")
		if err != nil {
			return nil, err
		}
		return p.parsePositionalOperator(strings.ToUpper(nameTok.text))
	}
	return p.parseTerm()
}

func (p *Parser) parsePositionalOperator(name string) (qry.Iop, error) {
	k := 0
	if name == "NEAR" || name == "WINDOW" {
		if _, err := p.expect(tokSlash, "/"); err != nil {
			return nil, err
		}
		kTok, err := p.expect(tokIdent, "distance")
		if err != nil {
			return nil, err
		}
		kVal, err := strconv.Atoi(kTok.text)
		if err != nil {
			return nil, p.tz.errf("expected integer distance, got %q", kTok.text)
		}
		k = kVal
	}

	if _, err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}
	var children []qry.Iop
	for p.lookahead().kind != tokRParen {
		if p.lookahead().kind == tokEOF {
			return nil, p.tz.errf("unterminated operator argument list")
		}
		c, err := p.parseIop()
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	p.advance() // ')'

	switch name {
	case "SYN":
		return qry.NewSyn(children)
	case "NEAR":
		return qry.NewNear(k, children)
	case "WINDOW":
		return qry.NewWindow(k, children)
	default:
		return nil, p.tz.errf("unknown positional operator #%s", name)
	}
}

func (p *Parser) parseTerm() (qry.Iop, error) {
	tok, err := p.expect(tokIdent, "term")
	if err != nil {
		return nil, err
	}

	text, field := tok.text, p.defaultField
	if idx := strings.LastIndex(tok.text, "."); idx >= 0 {
		text, field = tok.text[:idx], tok.text[idx+1:]
	}
	if text == "" {
		return nil, errs.New(errs.QueryParseError, "empty term in %q", tok.text)
	}

	return qry.NewTerm(p.idx, field, text)
}
