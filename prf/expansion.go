// Package prf implements pseudo-relevance-feedback query expansion:
// Indri-style expansion-term scoring accumulated over a top-k document
// ranking, and construction of the resulting weighted-AND query. The
// score-list shape (sortable slice, sort then truncate) follows
// ExpansionTermList.java, reworked as a plain Go slice with a
// sort.Interface instead of a Comparator class.
package prf

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	log "github.com/cihub/seelog"

	"github.com/cwacek/qryeval/errs"
	"github.com/cwacek/qryeval/eval"
	"github.com/cwacek/qryeval/index"
)

// Config holds the tunables read from the prf:* parameter keys.
type Config struct {
	NumDocs        int
	NumTerms       int
	Mu             float64
	OrigWeight     float64
	ExpansionField string
}

// ExpansionTerm is one (term, score) entry.
type ExpansionTerm struct {
	Term  string
	Score float64
}

// ExpansionTermList is an ordered sequence of ExpansionTerms, sortable
// score descending with ties broken by term ascending.
type ExpansionTermList struct {
	Terms []ExpansionTerm
}

func (l *ExpansionTermList) Len() int      { return len(l.Terms) }
func (l *ExpansionTermList) Swap(i, j int) { l.Terms[i], l.Terms[j] = l.Terms[j], l.Terms[i] }
func (l *ExpansionTermList) Less(i, j int) bool {
	a, b := l.Terms[i], l.Terms[j]
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Term < b.Term
}

// isFilteredTerm reports whether a stem should be excluded from
// expansion: contains '.' or ',' or any non-ASCII rune.
func isFilteredTerm(term string) bool {
	for _, r := range term {
		if r == '.' || r == ',' || r > unicode.MaxASCII {
			return true
		}
	}
	return false
}

// Expand computes expansion-term scores from the top NumDocs documents
// of baseline, using each document's term vector in field
// ExpansionField, and returns the top NumTerms terms by score.
func Expand(idx index.Facade, baseline *eval.ScoreList, cfg Config) (*ExpansionTermList, error) {
	n := cfg.NumDocs
	if n > baseline.Len() {
		n = baseline.Len()
	}

	type docInfo struct {
		docid uint32
		score float64
		L     int
		tv    *index.TermVector
	}

	docs := make([]docInfo, 0, n)
	for i := 0; i < n; i++ {
		r := baseline.Results[i]
		docid, err := idx.InternalDocid(r.ExternalDocid)
		if err != nil {
			return nil, errs.New(errs.IndexUnavailable, "internalDocid(%s): %v", r.ExternalDocid, err)
		}
		L, err := idx.FieldLength(cfg.ExpansionField, docid)
		if err != nil {
			return nil, errs.New(errs.IndexUnavailable, "fieldLength(%s,%d): %v", cfg.ExpansionField, docid, err)
		}
		tv, err := idx.TermVector(docid, cfg.ExpansionField)
		if err != nil {
			return nil, errs.New(errs.IndexUnavailable, "termVector(%d,%s): %v", docid, cfg.ExpansionField, err)
		}
		docs = append(docs, docInfo{docid: docid, score: r.Score, L: L, tv: tv})
	}
	log.Debugf("PRF expanding over top %d documents in field %s", len(docs), cfg.ExpansionField)

	type termStats struct {
		pTC float64
		idf float64
	}
	statsCache := make(map[string]termStats)
	statsFor := func(term string) (termStats, error) {
		if s, ok := statsCache[term]; ok {
			return s, nil
		}
		ctf, err := idx.TotalTermFreq(cfg.ExpansionField, term)
		if err != nil {
			return termStats{}, errs.New(errs.IndexUnavailable, "totalTermFreq(%s,%s): %v", cfg.ExpansionField, term, err)
		}
		F, err := idx.SumOfFieldLengths(cfg.ExpansionField)
		if err != nil {
			return termStats{}, errs.New(errs.IndexUnavailable, "sumOfFieldLengths(%s): %v", cfg.ExpansionField, err)
		}
		var s termStats
		if F > 0 && ctf > 0 {
			s.pTC = float64(ctf) / float64(F)
			s.idf = math.Log(float64(F) / float64(ctf))
		}
		statsCache[term] = s
		return s, nil
	}

	// sumOfPrevDocs accumulates mu*s_j/(L_j+mu) over every document
	// processed so far. A term's zero-tf contribution for any stretch
	// of documents it does not occur in equals the change in
	// sumOfPrevDocs across that stretch, times pTC*idf - so instead of
	// visiting every (term, document) pair, each term only needs to
	// "catch up" the accumulator delta since it was last touched.
	sumOfPrevDocs := 0.0
	lastTouched := make(map[string]float64)
	scores := make(map[string]float64)

	for _, d := range docs {
		for i, term := range d.tv.Stems {
			if i == 0 || isFilteredTerm(term) {
				continue
			}
			stats, err := statsFor(term)
			if err != nil {
				return nil, err
			}
			if stats.idf == 0 {
				continue
			}

			last, seen := lastTouched[term]
			if !seen {
				last = 0
			}
			gap := sumOfPrevDocs - last
			scores[term] += gap * stats.pTC * stats.idf

			tf := float64(d.tv.StemFreq[i])
			pTD := (tf + cfg.Mu*stats.pTC) / (float64(d.L) + cfg.Mu)
			scores[term] += d.score * stats.idf * pTD

			lastTouched[term] = sumOfPrevDocs + cfg.Mu*d.score/(float64(d.L)+cfg.Mu)
			log.Debugf("PRF term %q doc %d: tf=%f pTD=%f running score=%f", term, d.docid, tf, pTD, scores[term])
		}

		sumOfPrevDocs += cfg.Mu * d.score / (float64(d.L) + cfg.Mu)
	}

	// Catch up every accumulated term for any trailing documents,
	// after the last one that contained it, which never occur.
	for term, last := range lastTouched {
		if sumOfPrevDocs <= last {
			continue
		}
		stats, err := statsFor(term)
		if err != nil {
			return nil, err
		}
		scores[term] += (sumOfPrevDocs - last) * stats.pTC * stats.idf
	}

	list := &ExpansionTermList{}
	for term, score := range scores {
		list.Terms = append(list.Terms, ExpansionTerm{Term: term, Score: score})
	}
	sort.Sort(list)
	if len(list.Terms) > cfg.NumTerms {
		list.Terms = list.Terms[:cfg.NumTerms]
	}
	log.Debugf("PRF selected %d expansion terms", len(list.Terms))
	return list, nil
}

// BuildExpandedQuery constructs
// #WAND(w defaultOp(originalQuery) (1-w) #WAND(<score> <term> ...))
// as described for the PRF-expanded query.
func BuildExpandedQuery(defaultOp, originalQuery string, expansion *ExpansionTermList, origWeight float64) string {
	var sb strings.Builder
	sb.WriteString("#WAND (")
	fmt.Fprintf(&sb, "%v ", origWeight)
	sb.WriteString(defaultOp)
	sb.WriteString("(")
	sb.WriteString(originalQuery)
	sb.WriteString(") ")
	fmt.Fprintf(&sb, "%v ", 1-origWeight)
	sb.WriteString("#WAND (")
	for _, t := range expansion.Terms {
		fmt.Fprintf(&sb, "%v %s ", t.Score, t.Term)
	}
	sb.WriteString(")")
	sb.WriteString(")")
	expanded := sb.String()
	log.Debugf("PRF expanded query: %s", expanded)
	return expanded
}
