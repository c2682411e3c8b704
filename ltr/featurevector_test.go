package ltr

import (
	"strings"
	"testing"

	"github.com/cwacek/qryeval/index"
	"github.com/cwacek/qryeval/model"
)

func buildLtrIndex() *index.Memory {
	idx := index.NewMemory()
	idx.AddDocument("d1", map[string][]string{
		"body":  {"dog", "runs", "fast"},
		"title": {"dog"},
	}, nil)
	idx.AddDocument("d2", map[string][]string{
		"body":  {"cat", "sleeps"},
		"title": {"cat", "nap"},
	}, nil)
	// A third document keeps df(dog)=1 below N/2, so the floored RSJ
	// weight is positive rather than ln(1.5/1.5)=0.
	idx.AddDocument("d3", map[string][]string{
		"body":  {"bird", "sings"},
		"title": {"bird"},
	}, nil)
	return idx
}

func TestExtractProducesAllFeatureSlots(t *testing.T) {
	idx := buildLtrIndex()
	bm25 := model.NewBM25(1.2, 0.75, 0)
	indri := model.NewIndri(1000, 0.4)

	docid, err := idx.InternalDocid("d1")
	if err != nil {
		t.Fatalf("InternalDocid: %v", err)
	}

	fv, err := Extract(idx, []string{"dog"}, docid, bm25, indri)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	for i := 1; i <= NumFeatures; i++ {
		if _, ok := fv.Get(i); !ok {
			t.Errorf("feature %d not set", i)
		}
	}

	bodyBM25, _ := fv.Get(bm25FeatureNumber(0))
	titleBM25, _ := fv.Get(bm25FeatureNumber(1))
	if bodyBM25 <= 0 {
		t.Errorf("body BM25 score = %v, want > 0 (dog occurs in body)", bodyBM25)
	}
	if titleBM25 <= 0 {
		t.Errorf("title BM25 score = %v, want > 0 (dog occurs in title)", titleBM25)
	}

	urlIndri, _ := fv.Get(indriFeatureNumber(2))
	if urlIndri < 0 {
		t.Errorf("url Indri score = %v, want >= 0 even with no url field content", urlIndri)
	}
}

func TestWriteLineFormat(t *testing.T) {
	fv := NewFeatureVector()
	fv.Set(1, 0.5)
	fv.Set(3, 1.25)

	line := WriteLine(Record{RelevanceScore: 2, ExternalDocid: "d1", QueryId: "9", Vector: fv}, nil)

	if !strings.HasPrefix(line, "2 qid:9 ") {
		t.Errorf("unexpected prefix: %q", line)
	}
	if !strings.Contains(line, "1:0.5 ") {
		t.Errorf("missing feature 1: %q", line)
	}
	if !strings.Contains(line, "2:0 ") {
		t.Errorf("unset feature should print as 0: %q", line)
	}
	if !strings.HasSuffix(line, "# d1") {
		t.Errorf("unexpected suffix: %q", line)
	}
}

func TestWriteLineSkipsDisabledFeatures(t *testing.T) {
	fv := NewFeatureVector()
	fv.Set(1, 0.5)
	fv.Set(2, 0.9)

	line := WriteLine(Record{RelevanceScore: 0, ExternalDocid: "d2", QueryId: "9", Vector: fv}, map[int]bool{2: true})

	if strings.Contains(line, "2:") {
		t.Errorf("disabled feature 2 leaked into line: %q", line)
	}
	if !strings.Contains(line, "1:0.5") {
		t.Errorf("expected feature 1 present: %q", line)
	}
}
