// Package diversity re-ranks a query's baseline ranking against its
// per-intent baselines for result diversification, using either xQuAD
// or PM2. There is no original-language reference implementation for
// this component; the two algorithms are built directly from their
// published forms, in the same greedy-selection-over-a-sortable-slice
// shape the rest of this module uses for ranking work.
package diversity

import (
	"sort"

	log "github.com/cihub/seelog"

	"github.com/cwacek/qryeval/eval"
)

type Algorithm string

const (
	XQuAD Algorithm = "xQuAD"
	PM2   Algorithm = "PM2"
)

type Config struct {
	Algorithm              Algorithm
	Lambda                 float64
	MaxInputRankingsLength int
	MaxResultRankingLength int
}

// Result is one re-ranked output record.
type Result struct {
	ExternalDocid string
	Score         float64
}

type probTable map[string]float64

func truncateCopy(list *eval.ScoreList, n int) *eval.ScoreList {
	out := eval.NewScoreList()
	if list == nil {
		return out
	}
	for i, r := range list.Results {
		if n > 0 && i >= n {
			break
		}
		out.Append(r.ExternalDocid, r.Score)
	}
	return out
}

// largestColumnSum implements the normalization rule: if every input
// score is already <= 1.0 the inputs are treated as probabilities and
// left untouched (divisor 1.0); otherwise every score is scaled down by
// the largest of the per-ranking score sums.
func largestColumnSum(rankings []*eval.ScoreList) float64 {
	allLE1 := true
	var maxSum float64
	for _, r := range rankings {
		var sum float64
		for _, res := range r.Results {
			if res.Score > 1.0 {
				allLE1 = false
			}
			sum += res.Score
		}
		if sum > maxSum {
			maxSum = sum
		}
	}
	if allLE1 || maxSum == 0 {
		return 1.0
	}
	return maxSum
}

func toProbTable(list *eval.ScoreList, largest float64) probTable {
	t := make(probTable, list.Len())
	for _, r := range list.Results {
		t[r.ExternalDocid] = r.Score / largest
	}
	return t
}

// Diversify reorders baseline into a length <= cfg.MaxResultRankingLength
// result using intents as the per-intent relevance rankings.
func Diversify(cfg Config, baseline *eval.ScoreList, intents []*eval.ScoreList) []Result {
	if len(intents) == 0 || baseline == nil || baseline.Len() == 0 {
		return nil
	}

	baselineTrunc := truncateCopy(baseline, cfg.MaxInputRankingsLength)
	intentsTrunc := make([]*eval.ScoreList, len(intents))
	for i, r := range intents {
		intentsTrunc[i] = truncateCopy(r, cfg.MaxInputRankingsLength)
	}

	all := append([]*eval.ScoreList{baselineTrunc}, intentsTrunc...)
	largest := largestColumnSum(all)

	pq := toProbTable(baselineTrunc, largest)
	pIntents := make([]probTable, len(intentsTrunc))
	for i, r := range intentsTrunc {
		pIntents[i] = toProbTable(r, largest)
	}

	candidates := make([]string, 0, len(baselineTrunc.Results))
	for _, r := range baselineTrunc.Results {
		candidates = append(candidates, r.ExternalDocid)
	}
	sort.Strings(candidates)

	prior := 1.0 / float64(len(pIntents))

	log.Debugf("diversifying %d candidates over %d intents with %s (lambda=%f)",
		len(candidates), len(pIntents), cfg.Algorithm, cfg.Lambda)

	switch cfg.Algorithm {
	case PM2:
		return pm2(cfg, candidates, pIntents, prior)
	default:
		return xquad(cfg, pq, candidates, pIntents, prior)
	}
}

// betterCandidate reports whether score/docid beats the current best,
// breaking ties by ascending docid as required by the deterministic
// tie-break rule.
func betterCandidate(score float64, docid string, bestScore float64, bestDocid string, haveBest bool) bool {
	if !haveBest {
		return true
	}
	if score != bestScore {
		return score > bestScore
	}
	return docid < bestDocid
}

func xquad(cfg Config, pq probTable, candidates []string, pIntents []probTable, prior float64) []Result {
	remaining := append([]string(nil), candidates...)
	coverage := make([]float64, len(pIntents))
	for i := range coverage {
		coverage[i] = 1.0
	}

	var out []Result
	for len(out) < cfg.MaxResultRankingLength && len(remaining) > 0 {
		bestIdx := -1
		var bestScore float64
		var bestDocid string
		for idx, d := range remaining {
			diversityTerm := 0.0
			for i, pi := range pIntents {
				diversityTerm += prior * pi[d] * coverage[i]
			}
			score := (1-cfg.Lambda)*pq[d] + cfg.Lambda*diversityTerm
			if betterCandidate(score, d, bestScore, bestDocid, bestIdx != -1) {
				bestIdx, bestScore, bestDocid = idx, score, d
			}
		}

		d := remaining[bestIdx]
		log.Debugf("xQuAD pick %d: %s score=%f", len(out)+1, d, bestScore)
		out = append(out, Result{ExternalDocid: d, Score: bestScore})
		for i, pi := range pIntents {
			coverage[i] *= 1 - pi[d]
		}
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return out
}

func pm2(cfg Config, candidates []string, pIntents []probTable, prior float64) []Result {
	k := len(pIntents)
	v := make([]float64, k)
	s := make([]float64, k)
	for i := range v {
		v[i] = prior * float64(cfg.MaxResultRankingLength)
	}

	remaining := append([]string(nil), candidates...)
	var out []Result
	prevScore := 0.0
	first := true

	for len(out) < cfg.MaxResultRankingLength && len(remaining) > 0 {
		q := make([]float64, k)
		bestIntent := 0
		for i := range q {
			q[i] = v[i] / (2*s[i] + 1)
			if q[i] > q[bestIntent] {
				bestIntent = i
			}
		}

		bestIdx := -1
		var bestScore float64
		var bestDocid string
		for idx, d := range remaining {
			other := 0.0
			for j := range pIntents {
				if j == bestIntent {
					continue
				}
				other += q[j] * pIntents[j][d]
			}
			score := cfg.Lambda*q[bestIntent]*pIntents[bestIntent][d] + (1-cfg.Lambda)*other
			if betterCandidate(score, d, bestScore, bestDocid, bestIdx != -1) {
				bestIdx, bestScore, bestDocid = idx, score, d
			}
		}

		d := remaining[bestIdx]
		score := bestScore
		if !first && score >= prevScore {
			score = prevScore * 0.999
		}
		log.Debugf("PM2 pick %d: %s score=%f (leading intent %d)", len(out)+1, d, score, bestIntent)
		out = append(out, Result{ExternalDocid: d, Score: score})
		prevScore = score
		first = false

		denom := 0.0
		for j := range pIntents {
			denom += pIntents[j][d]
		}
		if denom > 0 {
			for j := range pIntents {
				s[j] += pIntents[j][d] / denom
			}
		}
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return out
}

