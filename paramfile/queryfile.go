package paramfile

import (
	"bufio"
	"io"
	"strings"

	"github.com/cwacek/qryeval/errs"
)

// QueryLine is one "queryId:queryExpression" entry from a query file.
type QueryLine struct {
	Id         string
	Expression string
}

// ReadQueryFile parses the queryId:queryExpression line format,
// following BufferQueriesFromFile's bufio.Scanner idiom.
func ReadQueryFile(r io.Reader) ([]QueryLine, error) {
	var out []QueryLine
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		i := strings.Index(line, ":")
		if i < 0 {
			return nil, errs.New(errs.ParameterMalformed, "malformed query line %q: missing ':'", line)
		}
		out = append(out, QueryLine{
			Id:         strings.TrimSpace(line[:i]),
			Expression: strings.TrimSpace(line[i+1:]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.New(errs.IOError, "reading query file: %v", err)
	}
	return out, nil
}

// Intent is one "queryId.intentNumber:intentText" entry from an
// intents file.
type Intent struct {
	QueryId      string
	IntentNumber int
	IntentText   string
}

// ReadIntentsFile parses the intents-file format used by diversity's
// intent-aware baselines.
func ReadIntentsFile(r io.Reader) ([]Intent, error) {
	lines, err := ReadQueryFile(r)
	if err != nil {
		return nil, err
	}
	out := make([]Intent, 0, len(lines))
	for _, l := range lines {
		queryId, num, err := splitQueryIntent(l.Id)
		if err != nil {
			return nil, err
		}
		out = append(out, Intent{QueryId: queryId, IntentNumber: num, IntentText: l.Expression})
	}
	return out, nil
}

func splitQueryIntent(id string) (string, int, error) {
	i := strings.LastIndex(id, ".")
	if i < 0 {
		return "", 0, errs.New(errs.ParameterMalformed, "expected queryId.intentNumber, got %q", id)
	}
	num, err := parseNonNegativeInt(id[i+1:])
	if err != nil {
		return "", 0, errs.New(errs.ParameterMalformed, "expected queryId.intentNumber, got %q", id)
	}
	return id[:i], num, nil
}

func parseNonNegativeInt(s string) (int, error) {
	n := 0
	if s == "" {
		return 0, errs.New(errs.ParameterMalformed, "empty integer")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errs.New(errs.ParameterMalformed, "not a non-negative integer: %q", s)
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}
