package actions

import (
	"fmt"
	"os"
	"sort"
	"strings"

	log "github.com/cihub/seelog"

	"github.com/cwacek/qryeval/diversity"
	"github.com/cwacek/qryeval/errs"
	"github.com/cwacek/qryeval/eval"
	"github.com/cwacek/qryeval/paramfile"
)

// diversityInputs resolves the per-intent baselines a query needs at
// diversification time, either from a precomputed initialRankingFile
// (both baseline and intents already scored, skipping both evaluation
// passes) or from an intentsFile whose intent text is evaluated on
// demand against the same evaluator run drives.
type diversityInputs struct {
	precomputed    map[string]*eval.ScoreList
	intentsByQuery map[string][]paramfile.Intent
	evaluator      *eval.Evaluator
	maxIn          int
}

func buildDiversityInputs(params *paramfile.Parameters, evaluator *eval.Evaluator) (diversity.Config, *diversityInputs, bool, error) {
	if !params.GetBool("diversity") {
		return diversity.Config{}, nil, false, nil
	}

	alg := diversity.XQuAD
	if strings.ToLower(params.GetString("diversity:algorithm", "xQuAD")) == "pm2" {
		alg = diversity.PM2
	}
	lambda, err := params.GetFloat("diversity:lambda", 0.5)
	if err != nil {
		return diversity.Config{}, nil, false, err
	}
	maxIn, err := params.GetInt("diversity:maxInputRankingsLength", 100)
	if err != nil {
		return diversity.Config{}, nil, false, err
	}
	maxOut, err := params.GetInt("diversity:maxResultRankingLength", 20)
	if err != nil {
		return diversity.Config{}, nil, false, err
	}

	cfg := diversity.Config{
		Algorithm:              alg,
		Lambda:                 lambda,
		MaxInputRankingsLength: maxIn,
		MaxResultRankingLength: maxOut,
	}

	di := &diversityInputs{evaluator: evaluator, maxIn: maxIn}

	if path, ok := params.Get("diversity:initialRankingFile"); ok && path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, nil, false, errs.New(errs.IOError, "opening diversity initial ranking file: %v", err)
		}
		rankings, err := paramfile.ReadRankingFile(f)
		f.Close()
		if err != nil {
			return cfg, nil, false, err
		}
		di.precomputed = rankings
	}

	if path, ok := params.Get("diversity:intentsFile"); ok && path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, nil, false, errs.New(errs.IOError, "opening intents file: %v", err)
		}
		intents, err := paramfile.ReadIntentsFile(f)
		f.Close()
		if err != nil {
			return cfg, nil, false, err
		}
		di.intentsByQuery = make(map[string][]paramfile.Intent)
		for _, in := range intents {
			di.intentsByQuery[in.QueryId] = append(di.intentsByQuery[in.QueryId], in)
		}
	}

	return cfg, di, true, nil
}

// applyDiversity resolves queryId's baseline and per-intent rankings
// and re-orders baseline via diversity.Diversify. A query with no
// resolvable intents is returned unmodified.
func applyDiversity(cfg diversity.Config, di *diversityInputs, queryId string, baseline *eval.ScoreList) *eval.ScoreList {
	var intentLists []*eval.ScoreList

	switch {
	case di.precomputed != nil:
		if b, ok := di.precomputed[queryId]; ok {
			baseline = b
		}
		for i := 1; ; i++ {
			list, ok := di.precomputed[fmt.Sprintf("%s.%d", queryId, i)]
			if !ok {
				break
			}
			intentLists = append(intentLists, list)
		}

	case di.intentsByQuery != nil:
		entries := append([]paramfile.Intent(nil), di.intentsByQuery[queryId]...)
		sort.Slice(entries, func(i, j int) bool { return entries[i].IntentNumber < entries[j].IntentNumber })
		for _, in := range entries {
			list, err := di.evaluator.ProcessQuery(in.IntentText, di.maxIn)
			if err != nil {
				log.Errorf("evaluating intent %s.%d: %v", queryId, in.IntentNumber, err)
				continue
			}
			intentLists = append(intentLists, list)
		}
	}

	if len(intentLists) == 0 {
		return baseline
	}

	results := diversity.Diversify(cfg, baseline, intentLists)
	out := eval.NewScoreList()
	for _, r := range results {
		out.Append(r.ExternalDocid, r.Score)
	}
	return out
}
