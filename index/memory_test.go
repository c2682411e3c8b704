package index

import (
	"testing"

	"github.com/cwacek/qryeval/errs"
)

func TestAddDocumentAndBasicStats(t *testing.T) {
	m := NewMemory()
	m.AddDocument("doc1", map[string][]string{"body": {"dog", "cat", "dog"}}, map[string]string{"score": "5"})
	m.AddDocument("doc2", map[string][]string{"body": {"cat"}}, nil)

	if m.NumDocs() != 2 {
		t.Fatalf("NumDocs = %d, want 2", m.NumDocs())
	}

	df, err := m.DocFreq("body", "dog")
	if err != nil || df != 1 {
		t.Errorf("DocFreq(dog) = %d, %v, want 1, nil", df, err)
	}
	df, err = m.DocFreq("body", "cat")
	if err != nil || df != 2 {
		t.Errorf("DocFreq(cat) = %d, %v, want 2, nil", df, err)
	}

	ctf, err := m.TotalTermFreq("body", "dog")
	if err != nil || ctf != 2 {
		t.Errorf("TotalTermFreq(dog) = %d, %v, want 2, nil", ctf, err)
	}

	sumLen, err := m.SumOfFieldLengths("body")
	if err != nil || sumLen != 4 {
		t.Errorf("SumOfFieldLengths = %d, %v, want 4, nil", sumLen, err)
	}

	docid, err := m.InternalDocid("doc1")
	if err != nil {
		t.Fatalf("InternalDocid: %v", err)
	}
	L, err := m.FieldLength("body", docid)
	if err != nil || L != 3 {
		t.Errorf("FieldLength = %d, %v, want 3, nil", L, err)
	}

	ext, err := m.ExternalDocid(docid)
	if err != nil || ext != "doc1" {
		t.Errorf("ExternalDocid = %q, %v, want doc1, nil", ext, err)
	}

	v, ok, err := m.Attribute("score", docid)
	if err != nil || !ok || v != "5" {
		t.Errorf("Attribute(score) = %q, %v, %v, want 5, true, nil", v, ok, err)
	}
}

func TestUnknownTermIsNotAnError(t *testing.T) {
	m := NewMemory()
	m.AddDocument("doc1", map[string][]string{"body": {"dog"}}, nil)

	df, err := m.DocFreq("body", "nonexistent")
	if err != nil {
		t.Errorf("DocFreq for unknown term should not error, got %v", err)
	}
	if df != 0 {
		t.Errorf("DocFreq for unknown term = %d, want 0", df)
	}

	postings, err := m.Postings("body", "nonexistent")
	if err != nil {
		t.Errorf("Postings for unknown term should not error, got %v", err)
	}
	if postings == nil || len(postings) != 0 {
		t.Errorf("Postings for unknown term = %v, want empty non-nil", postings)
	}
}

func TestUnknownFieldIsAnError(t *testing.T) {
	m := NewMemory()
	m.AddDocument("doc1", map[string][]string{"body": {"dog"}}, nil)

	if _, err := m.DocCount("title"); !errs.Is(err, errs.UnknownField) {
		t.Errorf("expected UnknownField error, got %v", err)
	}
	if _, err := m.SumOfFieldLengths("title"); !errs.Is(err, errs.UnknownField) {
		t.Errorf("expected UnknownField error, got %v", err)
	}
}

func TestUnknownDocidIsAnError(t *testing.T) {
	m := NewMemory()
	m.AddDocument("doc1", map[string][]string{"body": {"dog"}}, nil)

	if _, err := m.ExternalDocid(99); !errs.Is(err, errs.UnknownDocid) {
		t.Errorf("expected UnknownDocid error, got %v", err)
	}
	if _, err := m.InternalDocid("nonexistent"); !errs.Is(err, errs.UnknownDocid) {
		t.Errorf("expected UnknownDocid error, got %v", err)
	}
}

func TestPostingsOrderedByDocidAscending(t *testing.T) {
	m := NewMemory()
	m.AddDocument("doc1", map[string][]string{"body": {"dog"}}, nil)
	m.AddDocument("doc2", map[string][]string{"body": {"cat"}}, nil)
	m.AddDocument("doc3", map[string][]string{"body": {"dog"}}, nil)

	postings, err := m.Postings("body", "dog")
	if err != nil {
		t.Fatalf("Postings: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("got %d postings, want 2", len(postings))
	}
	if postings[0].DocId >= postings[1].DocId {
		t.Errorf("postings not docid-ascending: %+v", postings)
	}
}

func TestTermVectorNullStem(t *testing.T) {
	m := NewMemory()
	m.AddDocument("doc1", map[string][]string{"body": {"dog", "cat"}}, nil)
	docid, _ := m.InternalDocid("doc1")

	tv, err := m.TermVector(docid, "body")
	if err != nil {
		t.Fatalf("TermVector: %v", err)
	}
	if tv.Stems[0] != "" {
		t.Errorf("Stems[0] = %q, want empty null stem", tv.Stems[0])
	}
	if len(tv.Positions) != 2 {
		t.Fatalf("got %d positions, want 2", len(tv.Positions))
	}
}
