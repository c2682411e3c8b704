package paramfile

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/cwacek/qryeval/errs"
	"github.com/cwacek/qryeval/eval"
)

// RankingRecord is one line of an initial-ranking file or TREC output
// file: "queryId Q0 externalDocid rank score runId".
type RankingRecord struct {
	QueryId       string
	ExternalDocid string
	Rank          int
	Score         float64
	RunId         string
}

// ReadRankingFile parses the space-separated six-column format and
// groups records by QueryId, preserving each group's on-disk order.
// A QueryId containing a dot (X.Y) denotes intent Y of query X; callers
// that need the baseline/intent split use SplitIntentId on the key.
func ReadRankingFile(r io.Reader) (map[string]*eval.ScoreList, error) {
	out := make(map[string]*eval.ScoreList)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 6 {
			return nil, errs.New(errs.ParameterMalformed, "malformed ranking line %q: expected 6 fields", line)
		}
		queryId, docid := fields[0], fields[2]
		score, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, errs.New(errs.ParameterMalformed, "malformed score in ranking line %q: %v", line, err)
		}
		if docid == "dummyRecord" {
			continue
		}
		list, ok := out[queryId]
		if !ok {
			list = eval.NewScoreList()
			out[queryId] = list
		}
		list.Append(docid, score)
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.New(errs.IOError, "reading ranking file: %v", err)
	}
	return out, nil
}

// SplitIntentId splits a "queryId.intentNumber" key into its query id
// and intent number, or returns ok=false for a plain query id with no
// intent suffix.
func SplitIntentId(key string) (queryId string, intentNumber int, ok bool) {
	q, n, err := splitQueryIntent(key)
	if err != nil {
		return key, 0, false
	}
	return q, n, true
}
