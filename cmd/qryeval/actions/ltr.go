package actions

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/cwacek/qryeval/errs"
	"github.com/cwacek/qryeval/index"
	"github.com/cwacek/qryeval/ltr"
	"github.com/cwacek/qryeval/model"
	"github.com/cwacek/qryeval/paramfile"
)

// runLTR handles retrievalAlgorithm=ltr: rather than scoring queries
// directly, it extracts the fixed per-field feature vector for every
// candidate document of every query and writes a libsvm/RankLib-style
// training file. Candidate generation and the trained model itself are
// external collaborators (spec.md 1's "external learning-to-rank
// trainers"): ltr:initialRankingFile supplies the candidate set exactly
// as an already-run first-pass ranking would, and ltr:qrelsFile
// supplies relevance labels when building a training file (a test file
// has no labels and every RelevanceScore is left at 0).
func runLTR(idx index.Facade, params *paramfile.Parameters) error {
	rankingPath, err := params.MustGet("ltr:initialRankingFile")
	if err != nil {
		return err
	}
	rf, err := os.Open(rankingPath)
	if err != nil {
		return errs.New(errs.IOError, "opening ltr initial ranking file: %v", err)
	}
	candidates, err := paramfile.ReadRankingFile(rf)
	rf.Close()
	if err != nil {
		return err
	}

	queryFilePath, err := params.MustGet("queryFilePath")
	if err != nil {
		return err
	}
	qf, err := os.Open(queryFilePath)
	if err != nil {
		return errs.New(errs.IOError, "opening query file: %v", err)
	}
	queries, err := paramfile.ReadQueryFile(qf)
	qf.Close()
	if err != nil {
		return err
	}

	var qrels map[string]map[string]int
	if path, ok := params.Get("ltr:qrelsFile"); ok && path != "" {
		qrels, err = loadQrels(path)
		if err != nil {
			return err
		}
	}

	k1, err := params.GetFloat("ltr:BM25:k_1", 1.2)
	if err != nil {
		return err
	}
	b, err := params.GetFloat("ltr:BM25:b", 0.75)
	if err != nil {
		return err
	}
	k3, err := params.GetFloat("ltr:BM25:k_3", 0)
	if err != nil {
		return err
	}
	mu, err := params.GetFloat("ltr:Indri:mu", 2500)
	if err != nil {
		return err
	}
	lambda, err := params.GetFloat("ltr:Indri:lambda", 0.4)
	if err != nil {
		return err
	}
	bm25Model := model.NewBM25(k1, b, k3)
	indriModel := model.NewIndri(mu, lambda)

	outPath, err := params.MustGet("ltr:featureVectorsFile")
	if err != nil {
		return err
	}
	outFile, err := os.Create(outPath)
	if err != nil {
		return errs.New(errs.IOError, "creating feature vectors file: %v", err)
	}
	defer outFile.Close()
	w := bufio.NewWriter(outFile)

	for _, q := range queries {
		list, ok := candidates[q.Id]
		if !ok {
			continue
		}
		terms := extractQueryTerms(q.Expression)

		for _, r := range list.Results {
			docid, err := idx.InternalDocid(r.ExternalDocid)
			if err != nil {
				return errs.New(errs.IndexUnavailable, "internalDocid(%s): %v", r.ExternalDocid, err)
			}
			fv, err := ltr.Extract(idx, terms, docid, bm25Model, indriModel)
			if err != nil {
				return err
			}
			rel := 0
			if labels, ok := qrels[q.Id]; ok {
				rel = labels[r.ExternalDocid]
			}
			record := ltr.Record{
				RelevanceScore: rel,
				ExternalDocid:  r.ExternalDocid,
				QueryId:        q.Id,
				Vector:         fv,
			}
			fmt.Fprintln(w, ltr.WriteLine(record, nil))
		}
	}

	if err := w.Flush(); err != nil {
		return errs.New(errs.IOError, "writing feature vectors file: %v", err)
	}
	return nil
}

// extractQueryTerms strips a query expression down to its bare terms,
// dropping operator names and numeric weights, since the feature
// extractor scores plain query terms against each field rather than
// the operator-tree structure.
func extractQueryTerms(expr string) []string {
	var terms []string
	for _, tok := range strings.FieldsFunc(expr, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.'
	}) {
		if _, err := strconv.ParseFloat(tok, 64); err == nil {
			continue
		}
		// Drop a ".field" qualifier so only the term itself remains.
		if i := strings.LastIndex(tok, "."); i >= 0 {
			tok = tok[:i]
		}
		if tok == "" {
			continue
		}
		lower := strings.ToLower(tok)
		switch lower {
		case "and", "or", "sum", "wand", "wsum", "syn", "near", "window":
			continue
		}
		terms = append(terms, lower)
	}
	return terms
}

// loadQrels reads TREC-style relevance judgments: 3 columns
// (queryId externalDocid relevance) or the usual 4-column format with
// an ignored iteration column.
func loadQrels(path string) (map[string]map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.New(errs.IOError, "opening qrels file: %v", err)
	}
	defer f.Close()

	out := make(map[string]map[string]int)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		queryId := fields[0]
		docid := fields[len(fields)-2]
		rel, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil {
			continue
		}
		if out[queryId] == nil {
			out[queryId] = make(map[string]int)
		}
		out[queryId][docid] = rel
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.New(errs.IOError, "reading qrels file: %v", err)
	}
	return out, nil
}
