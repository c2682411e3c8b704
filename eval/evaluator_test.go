package eval

import (
	"math"
	"testing"

	"github.com/cwacek/qryeval/index"
	"github.com/cwacek/qryeval/model"
)

func tokens(n int, word string, at ...int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "filler"
	}
	for _, p := range at {
		out[p] = word
	}
	return out
}

// buildBM25Index reproduces the ten-document corpus from the BM25
// single-term scenario: term "dog" with df=3, ctf=5, appearing in
// d1(tf=3,L=100), d2(tf=2,L=200), d3(tf=1,L=50), and seven 500-token
// filler docs. The fillers bring avgL to 385; with avgL at or below 300
// the shorter d3 would outscore d2.
func buildBM25Index() *index.Memory {
	idx := index.NewMemory()
	idx.AddDocument("d1", map[string][]string{"body": tokens(100, "dog", 0, 1, 2)}, nil)
	idx.AddDocument("d2", map[string][]string{"body": tokens(200, "dog", 0, 1)}, nil)
	idx.AddDocument("d3", map[string][]string{"body": tokens(50, "dog", 0)}, nil)
	for i := 0; i < 7; i++ {
		idx.AddDocument("filler"+string(rune('a'+i)), map[string][]string{"body": tokens(500, "nothing")}, nil)
	}
	return idx
}

func bm25Expected(tf, df, L int, avgL float64, n int) float64 {
	k1, b, k3 := 1.2, 0.75, 0.0
	rsj := math.Log((float64(n) - float64(df) + 0.5) / (float64(df) + 0.5))
	if rsj < 0 {
		rsj = 0
	}
	tfF := float64(tf)
	tfW := tfF / (tfF + k1*((1-b)+b*float64(L)/avgL))
	userW := (k3 + 1) * 1.0 / (k3 + 1.0)
	return rsj * tfW * userW
}

func TestProcessQueryBM25SingleTerm(t *testing.T) {
	idx := buildBM25Index()
	m := model.NewBM25(1.2, 0.75, 0)
	ev := NewEvaluator(idx, m, "body")

	list, err := ev.ProcessQuery("dog.body", 10)
	if err != nil {
		t.Fatalf("ProcessQuery: %v", err)
	}

	lengths := map[string]int{"d1": 100, "d2": 200, "d3": 50}
	sumLen := 100 + 200 + 50 + 7*500
	avgL := float64(sumLen) / 10.0
	tfs := map[string]int{"d1": 3, "d2": 2, "d3": 1}

	expected := map[string]float64{}
	for doc, tf := range tfs {
		expected[doc] = bm25Expected(tf, 3, lengths[doc], avgL, 10)
	}

	if list.Len() != 3 {
		t.Fatalf("expected 3 matching documents, got %d: %+v", list.Len(), list.Results)
	}

	wantOrder := []string{"d1", "d2", "d3"}
	for i, r := range list.Results {
		if r.ExternalDocid != wantOrder[i] {
			t.Errorf("position %d: got %s, want %s", i, r.ExternalDocid, wantOrder[i])
		}
		want := expected[r.ExternalDocid]
		if math.Abs(r.Score-want) > 1e-9 {
			t.Errorf("%s: got score %v, want %v", r.ExternalDocid, r.Score, want)
		}
	}
}

// indriTermExpected reproduces model.IndriTermScore's Dirichlet-smoothed
// formula directly from corpus statistics, the way bm25Expected mirrors
// model.BM25TermScore.
func indriTermExpected(tf, L int, ctf int64, sumFieldLen int64, mu, lambda float64) float64 {
	p := float64(ctf) / float64(sumFieldLen)
	num := float64(tf) + mu*p
	return (1-lambda)*num/(float64(L)+mu) + lambda*p
}

// TestProcessQueryIndriDefaultScore reproduces the AND-with-defaults
// scenario: "dog" and "cat" over field body, d1 has dog but not cat, so
// d1's score comes from the union-matched AND multiplying dog's real
// score by cat's default score.
func TestProcessQueryIndriDefaultScore(t *testing.T) {
	idx := index.NewMemory()
	idx.AddDocument("d1", map[string][]string{"body": tokens(100, "dog", 0, 1)}, nil)
	// A second document carries "cat" so the collection has non-zero
	// ctf(cat), giving d1's missing "cat" child a meaningful default
	// score rather than the ctf=0 fallback.
	idx.AddDocument("d2", map[string][]string{"body": tokens(50, "cat", 0, 1, 2, 3)}, nil)

	mu, lambda := 2500.0, 0.4
	m := model.NewIndri(mu, lambda)
	ev := NewEvaluator(idx, m, "body")

	list, err := ev.ProcessQuery("dog.body cat.body", 10)
	if err != nil {
		t.Fatalf("ProcessQuery: %v", err)
	}
	if list.Len() != 2 {
		t.Fatalf("expected d1 and d2 to both match via the union AND, got %d: %+v", list.Len(), list.Results)
	}

	const sumFieldLen = int64(150) // 100 (d1) + 50 (d2)
	sDog := indriTermExpected(2, 100, 2, sumFieldLen, mu, lambda)        // tf(dog,d1)=2, ctf(dog)=2
	sCatDefault := indriTermExpected(0, 100, 4, sumFieldLen, mu, lambda) // ctf(cat)=4, d1's length
	wantD1 := math.Sqrt(sDog * sCatDefault)

	var gotD1 float64
	found := false
	for _, r := range list.Results {
		if r.ExternalDocid == "d1" {
			gotD1 = r.Score
			found = true
		}
	}
	if !found {
		t.Fatalf("d1 missing from results: %+v", list.Results)
	}
	if math.Abs(gotD1-wantD1) > 1e-9 {
		t.Errorf("d1: got score %v, want %v", gotD1, wantD1)
	}
}

func TestProcessQueryEmptyString(t *testing.T) {
	idx := index.NewMemory()
	m := model.NewUnrankedBoolean()
	ev := NewEvaluator(idx, m, "body")

	list, err := ev.ProcessQuery("   ", 10)
	if err != nil {
		t.Fatalf("ProcessQuery: %v", err)
	}
	if list.Len() != 0 {
		t.Errorf("expected empty ScoreList for empty query, got %d results", list.Len())
	}
}

func TestScoreListSortAndTruncate(t *testing.T) {
	list := NewScoreList()
	list.Append("b", 1.0)
	list.Append("a", 1.0)
	list.Append("c", 2.0)

	list.SortAndTruncate(2)

	if list.Len() != 2 {
		t.Fatalf("expected truncation to 2, got %d", list.Len())
	}
	if list.Results[0].ExternalDocid != "c" {
		t.Errorf("expected highest score first, got %s", list.Results[0].ExternalDocid)
	}
	if list.Results[1].ExternalDocid != "a" {
		t.Errorf("expected tie broken by docid ascending, got %s", list.Results[1].ExternalDocid)
	}

	before := append([]Result(nil), list.Results...)
	list.SortAndTruncate(2)
	for i := range before {
		if before[i] != list.Results[i] {
			t.Errorf("sort+truncate is not idempotent at %d: %v != %v", i, before[i], list.Results[i])
		}
	}
}
