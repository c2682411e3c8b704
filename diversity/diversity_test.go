package diversity

import (
	"math"
	"testing"

	"github.com/cwacek/qryeval/eval"
)

func scoreList(pairs ...interface{}) *eval.ScoreList {
	l := eval.NewScoreList()
	for i := 0; i < len(pairs); i += 2 {
		l.Append(pairs[i].(string), pairs[i+1].(float64))
	}
	return l
}

func TestXQuADPicksCoverageOverRawScore(t *testing.T) {
	baseline := scoreList("a", 0.5, "b", 0.4, "c", 0.3)
	intent1 := scoreList("a", 0.9, "b", 0.1)
	intent2 := scoreList("c", 0.8, "b", 0.2)

	cfg := Config{
		Algorithm:              XQuAD,
		Lambda:                 0.5,
		MaxInputRankingsLength: 10,
		MaxResultRankingLength: 2,
	}

	out := Diversify(cfg, baseline, []*eval.ScoreList{intent1, intent2})
	if len(out) != 2 {
		t.Fatalf("got %d results, want 2: %+v", len(out), out)
	}
	if out[0].ExternalDocid != "a" {
		t.Errorf("first pick = %q, want a", out[0].ExternalDocid)
	}
	if out[1].ExternalDocid != "c" {
		t.Errorf("second pick = %q, want c (not b)", out[1].ExternalDocid)
	}

	if math.Abs(out[0].Score-0.475) > 1e-9 {
		t.Errorf("first score = %v, want 0.475", out[0].Score)
	}
	if math.Abs(out[1].Score-0.35) > 1e-9 {
		t.Errorf("second score = %v, want 0.35", out[1].Score)
	}
}

func TestXQuADTieBreaksByDocidAscending(t *testing.T) {
	baseline := scoreList("z", 0.5, "a", 0.5)
	intent := scoreList("z", 0.5, "a", 0.5)

	cfg := Config{Algorithm: XQuAD, Lambda: 0.5, MaxInputRankingsLength: 10, MaxResultRankingLength: 1}
	out := Diversify(cfg, baseline, []*eval.ScoreList{intent})
	if len(out) != 1 {
		t.Fatalf("got %d results, want 1", len(out))
	}
	if out[0].ExternalDocid != "a" {
		t.Errorf("tie-break pick = %q, want a (ascending docid)", out[0].ExternalDocid)
	}
}

func TestPM2ProducesStrictlyDecreasingScores(t *testing.T) {
	baseline := scoreList("a", 0.9, "b", 0.85, "c", 0.8, "d", 0.75)
	intent1 := scoreList("a", 0.9, "b", 0.1, "c", 0.05, "d", 0.05)
	intent2 := scoreList("c", 0.9, "d", 0.8, "b", 0.1, "a", 0.05)

	cfg := Config{
		Algorithm:              PM2,
		Lambda:                 0.5,
		MaxInputRankingsLength: 10,
		MaxResultRankingLength: 4,
	}
	out := Diversify(cfg, baseline, []*eval.ScoreList{intent1, intent2})
	if len(out) != 4 {
		t.Fatalf("got %d results, want 4: %+v", len(out), out)
	}
	for i := 1; i < len(out); i++ {
		if out[i].Score >= out[i-1].Score {
			t.Errorf("scores not strictly decreasing at %d: %+v", i, out)
		}
	}
}

func TestDiversifyRespectsMaxInputRankingsLength(t *testing.T) {
	baseline := scoreList("a", 0.9, "b", 0.8, "c", 0.1)
	intent := scoreList("a", 0.9, "b", 0.8, "c", 0.1)

	cfg := Config{Algorithm: XQuAD, Lambda: 0.5, MaxInputRankingsLength: 2, MaxResultRankingLength: 3}
	out := Diversify(cfg, baseline, []*eval.ScoreList{intent})

	for _, r := range out {
		if r.ExternalDocid == "c" {
			t.Errorf("docid c should have been excluded by MaxInputRankingsLength=2, got %+v", out)
		}
	}
}

func TestDiversifyNoIntentsReturnsNil(t *testing.T) {
	baseline := scoreList("a", 0.9)
	cfg := Config{Algorithm: XQuAD, Lambda: 0.5, MaxInputRankingsLength: 10, MaxResultRankingLength: 3}
	if out := Diversify(cfg, baseline, nil); out != nil {
		t.Errorf("expected nil result with no intents, got %+v", out)
	}
}
