package qryparse

import (
	"testing"

	"github.com/cwacek/qryeval/index"
	"github.com/cwacek/qryeval/model"
)

func buildIndex(t *testing.T) *index.Memory {
	t.Helper()
	idx := index.NewMemory()
	idx.AddDocument("d1", map[string][]string{
		"body":  {"dog", "cat"},
		"title": {"dog"},
	}, nil)
	idx.AddDocument("d2", map[string][]string{
		"body": {"dog"},
	}, nil)
	return idx
}

func drain(t *testing.T, sop interface {
	HasMatch(model.Model) bool
	CurrentDocid() uint32
	AdvancePast(uint32)
}, m model.Model) []uint32 {
	t.Helper()
	var out []uint32
	for sop.HasMatch(m) {
		d := sop.CurrentDocid()
		out = append(out, d)
		sop.AdvancePast(d)
	}
	return out
}

func TestParseBareTermDefaultsToDefaultField(t *testing.T) {
	idx := buildIndex(t)
	p := NewParser(idx, "body")

	root, err := p.Parse("dog")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m := model.NewUnrankedBoolean()
	if err := root.Initialize(m); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if got := drain(t, root, m); len(got) != 2 {
		t.Errorf("got %v matches, want 2 (both docs have dog in body)", got)
	}
}

func TestParseFieldQualifiedTerm(t *testing.T) {
	idx := buildIndex(t)
	p := NewParser(idx, "body")

	root, err := p.Parse("dog.title")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m := model.NewUnrankedBoolean()
	if err := root.Initialize(m); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if got := drain(t, root, m); len(got) != 1 {
		t.Errorf("got %v matches, want 1 (only d1 has dog in title)", got)
	}
}

func TestParseAndIntersection(t *testing.T) {
	idx := buildIndex(t)
	p := NewParser(idx, "body")

	root, err := p.Parse("#AND(dog cat)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m := model.NewUnrankedBoolean()
	if err := root.Initialize(m); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if got := drain(t, root, m); len(got) != 1 || got[0] != 0 {
		t.Errorf("got %v, want [0] (only d1 has both dog and cat)", got)
	}
}

func TestParseWandWithWeights(t *testing.T) {
	idx := buildIndex(t)
	p := NewParser(idx, "body")

	root, err := p.Parse("#WAND(2.0 dog 0.5 cat)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m := model.NewBM25(1.2, 0.75, 0)
	if err := root.Initialize(m); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !root.HasMatch(m) {
		t.Fatal("expected a match")
	}
	if _, err := root.Score(m); err != nil {
		t.Fatalf("Score: %v", err)
	}
}

func TestParseNearOperator(t *testing.T) {
	idx := index.NewMemory()
	idx.AddDocument("d1", map[string][]string{"body": {"quick", "brown", "fox"}}, nil)
	p := NewParser(idx, "body")

	root, err := p.Parse("#NEAR/2(quick fox)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m := model.NewUnrankedBoolean()
	if err := root.Initialize(m); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !root.HasMatch(m) {
		t.Error("expected quick..fox within 2 tokens to match")
	}
}

func TestParseSynOperator(t *testing.T) {
	idx := index.NewMemory()
	idx.AddDocument("d1", map[string][]string{"body": {"run"}}, nil)
	idx.AddDocument("d2", map[string][]string{"body": {"running"}}, nil)
	p := NewParser(idx, "body")

	root, err := p.Parse("#SYN(run running)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m := model.NewUnrankedBoolean()
	if err := root.Initialize(m); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if got := drain(t, root, m); len(got) != 2 {
		t.Errorf("got %v matches, want 2", got)
	}
}

func TestParseUnknownOperatorErrors(t *testing.T) {
	idx := buildIndex(t)
	p := NewParser(idx, "body")
	if _, err := p.Parse("#BOGUS(dog)"); err == nil {
		t.Error("expected an error for an unknown operator")
	}
}

func TestParseUnbalancedParensErrors(t *testing.T) {
	idx := buildIndex(t)
	p := NewParser(idx, "body")
	if _, err := p.Parse("#AND(dog cat"); err == nil {
		t.Error("expected an error for an unterminated argument list")
	}
}

func TestParseTrailingInputErrors(t *testing.T) {
	idx := buildIndex(t)
	p := NewParser(idx, "body")
	if _, err := p.Parse("#AND(dog) extra"); err == nil {
		t.Error("expected an error for trailing input after a complete expression")
	}
}
