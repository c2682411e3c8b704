package actions

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	log "github.com/cihub/seelog"

	"github.com/cwacek/qryeval/errs"
	"github.com/cwacek/qryeval/eval"
	"github.com/cwacek/qryeval/index"
	"github.com/cwacek/qryeval/model"
	"github.com/cwacek/qryeval/output"
	"github.com/cwacek/qryeval/paramfile"
	"github.com/cwacek/qryeval/prf"
)

func RunRunner() *run_action { return new(run_action) }

// run_action is the batch TREC-evaluation action: read a parameter
// file, load a corpus, evaluate every query in queryFilePath under the
// chosen retrieval model, and write trecEvalOutputPath - the "run" side
// of the teacher's split between a bulk actor (run_index_action) and a
// live server (query_engine_action).
type run_action struct {
	Args
	paramPath *string
}

func (a *run_action) Name() string { return "run" }

func (a *run_action) DefineFlags(fs *flag.FlagSet) {
	a.AddDefaultArgs(fs)
	a.paramPath = fs.String("param", "", "Path to a qryeval parameter file")
}

func (a *run_action) Run() {
	SetupLogging(*a.verbosity)

	if *a.paramPath == "" {
		log.Criticalf("param is a required argument")
		os.Exit(1)
	}

	f, err := os.Open(*a.paramPath)
	if err != nil {
		log.Criticalf("opening parameter file: %v", err)
		os.Exit(1)
	}
	params, err := paramfile.ReadParameters(f)
	f.Close()
	if err != nil {
		log.Criticalf("reading parameters: %v", err)
		os.Exit(1)
	}

	if err := runWithParameters(params); err != nil {
		log.Criticalf("%v", err)
		os.Exit(1)
	}
}

func runWithParameters(params *paramfile.Parameters) error {
	indexPath, err := params.MustGet("indexPath")
	if err != nil {
		return err
	}
	idx, err := LoadCorpus(indexPath)
	if err != nil {
		return err
	}

	algStr, err := params.MustGet("retrievalAlgorithm")
	if err != nil {
		return err
	}
	if strings.ToLower(algStr) == "ltr" {
		return runLTR(idx, params)
	}

	kind, err := model.ParseKind(strings.ToLower(algStr))
	if err != nil {
		return err
	}
	m, err := buildModel(kind, params)
	if err != nil {
		return err
	}

	defaultField := params.GetString("defaultField", "body")
	evaluator := eval.NewEvaluator(idx, m, defaultField)

	topN, err := params.GetInt("trecEvalOutputLength", 100)
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

	outPath, err := params.MustGet("trecEvalOutputPath")
	if err != nil {
		return err
	}
	outFile, err := os.Create(outPath)
	if err != nil {
		return errs.New(errs.IOError, "creating output file: %v", err)
	}
	defer outFile.Close()

	writer := output.NewWriter(outFile)
	writer.SetRunId(params.GetString("runId", ""))

	prfCfg, prfEnabled, err := buildPRFConfig(params)
	if err != nil {
		return err
	}

	prfRankings, err := loadPRFInitialRanking(params)
	if err != nil {
		return err
	}

	expansionQueryWriter, closeExpansionQueryFile, err := openExpansionQueryFile(params)
	if err != nil {
		return err
	}
	defer closeExpansionQueryFile()

	divCfg, divInputs, divEnabled, err := buildDiversityInputs(params, evaluator)
	if err != nil {
		return err
	}

	for _, q := range queries {
		var list *eval.ScoreList

		if prfEnabled && prfRankings != nil {
			// prf:initialRankingFile supplied a baseline from disk, so the
			// first pass over q's own expression is skipped entirely.
			baseline, ok := prfRankings[q.Id]
			if !ok {
				baseline = eval.NewScoreList()
			}
			expanded, expandedQuery, err := applyPRF(evaluator, idx, m, q, baseline, prfCfg)
			if err != nil {
				return err
			}
			if expandedQuery != "" && expansionQueryWriter != nil {
				fmt.Fprintf(expansionQueryWriter, "%s:%s\n", q.Id, expandedQuery)
			}
			list = expanded
		} else {
			firstPassN := topN
			if prfEnabled && prfCfg.NumDocs > firstPassN {
				firstPassN = prfCfg.NumDocs
			}

			firstPass, err := evaluator.ProcessQuery(q.Expression, firstPassN)
			if err != nil {
				if e, ok := err.(*errs.Error); ok && e.Kind.FatalToQuery() {
					log.Errorf("query %s: %v", q.Id, err)
					if werr := writer.WriteQueryResults(q.Id, eval.NewScoreList()); werr != nil {
						return werr
					}
					continue
				}
				return err
			}
			list = firstPass

			if prfEnabled {
				expanded, expandedQuery, err := applyPRF(evaluator, idx, m, q, list, prfCfg)
				if err != nil {
					return err
				}
				if expandedQuery != "" && expansionQueryWriter != nil {
					fmt.Fprintf(expansionQueryWriter, "%s:%s\n", q.Id, expandedQuery)
				}
				list = expanded
			}
		}

		list.SortAndTruncate(topN)

		if divEnabled {
			list = applyDiversity(divCfg, divInputs, q.Id, list)
		}

		if err := writer.WriteQueryResults(q.Id, list); err != nil {
			return err
		}
	}

	if expansionQueryWriter != nil {
		if err := expansionQueryWriter.Flush(); err != nil {
			return errs.New(errs.IOError, "writing expansion query file: %v", err)
		}
	}

	return writer.Flush()
}

// applyPRF runs one PRF expansion-and-reevaluate cycle: baseline is the
// initial ranking for q (either a first pass already computed, or one
// loaded from prf:initialRankingFile); expansion is scored from it and
// folded into a #WAND query which is evaluated fresh. It also returns
// the expanded query text so callers can persist it to
// prf:expansionQueryFile; an empty baseline yields no expansion and an
// empty query string.
func applyPRF(evaluator *eval.Evaluator, idx index.Facade, m model.Model, q paramfile.QueryLine, baseline *eval.ScoreList, cfg prf.Config) (*eval.ScoreList, string, error) {
	if baseline.Len() == 0 {
		return baseline, "", nil
	}
	expansion, err := prf.Expand(idx, baseline, cfg)
	if err != nil {
		return nil, "", err
	}
	expandedQuery := prf.BuildExpandedQuery(m.DefaultQrySopName(), q.Expression, expansion, cfg.OrigWeight)
	list, err := evaluator.ProcessQuery(expandedQuery, -1)
	if err != nil {
		return nil, "", err
	}
	return list, expandedQuery, nil
}

// loadPRFInitialRanking reads prf:initialRankingFile if configured, so
// PRF can use a baseline ranking from disk instead of running a first
// pass per query. Returns a nil map (not an error) when the key is
// absent.
func loadPRFInitialRanking(params *paramfile.Parameters) (map[string]*eval.ScoreList, error) {
	path, ok := params.Get("prf:initialRankingFile")
	if !ok || path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.New(errs.IOError, "opening prf initial ranking file: %v", err)
	}
	defer f.Close()
	return paramfile.ReadRankingFile(f)
}

// openExpansionQueryFile opens prf:expansionQueryFile for writing when
// configured, returning a nil writer and a no-op closer otherwise.
func openExpansionQueryFile(params *paramfile.Parameters) (*bufio.Writer, func(), error) {
	path, ok := params.Get("prf:expansionQueryFile")
	if !ok || path == "" {
		return nil, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errs.New(errs.IOError, "creating prf expansion query file: %v", err)
	}
	return bufio.NewWriter(f), func() { f.Close() }, nil
}

func buildPRFConfig(params *paramfile.Parameters) (prf.Config, bool, error) {
	if !params.GetBool("prf") {
		return prf.Config{}, false, nil
	}
	numDocs, err := params.GetInt("prf:numDocs", 20)
	if err != nil {
		return prf.Config{}, false, err
	}
	numTerms, err := params.GetInt("prf:numTerms", 10)
	if err != nil {
		return prf.Config{}, false, err
	}
	mu, err := params.GetFloat("prf:Indri:mu", 0)
	if err != nil {
		return prf.Config{}, false, err
	}
	origWeight, err := params.GetFloat("prf:Indri:origWeight", 0.5)
	if err != nil {
		return prf.Config{}, false, err
	}
	field := params.GetString("prf:expansionField", "body")

	return prf.Config{
		NumDocs:        numDocs,
		NumTerms:       numTerms,
		Mu:             mu,
		OrigWeight:     origWeight,
		ExpansionField: field,
	}, true, nil
}
