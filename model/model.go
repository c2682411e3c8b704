// Package model holds the retrieval-model value objects. Dispatch on
// retrieval model is done with a tagged variant rather than runtime
// type assertions: every scoring operator takes a Model by value and
// branches exhaustively on Kind.
package model

import (
	"math"

	"github.com/cwacek/qryeval/errs"
)

type Kind int

const (
	UnrankedBoolean Kind = iota
	RankedBoolean
	BM25
	Indri
)

func (k Kind) String() string {
	switch k {
	case UnrankedBoolean:
		return "UnrankedBoolean"
	case RankedBoolean:
		return "RankedBoolean"
	case BM25:
		return "BM25"
	case Indri:
		return "Indri"
	default:
		return "UnknownModel"
	}
}

// Model is the tagged variant every operator in qry/sop branches on.
// Only the fields relevant to Kind are meaningful; the rest are zero.
//
// Indri's origWeight is not carried here. It only matters to the
// expansion query's weighted combination of original vs. expansion
// terms, so it lives on prf.Config instead (see prf package) - the
// Indri model itself never reads it.
type Model struct {
	Kind Kind

	// BM25
	K1 float64
	B  float64
	K3 float64

	// Indri
	Mu     float64
	Lambda float64
}

func NewUnrankedBoolean() Model { return Model{Kind: UnrankedBoolean} }

func NewRankedBoolean() Model { return Model{Kind: RankedBoolean} }

func NewBM25(k1, b, k3 float64) Model {
	return Model{Kind: BM25, K1: k1, B: b, K3: k3}
}

func NewIndri(mu, lambda float64) Model {
	return Model{Kind: Indri, Mu: mu, Lambda: lambda}
}

// DefaultQrySopName returns the outermost implicit operator used to
// wrap a bare query string.
func (m Model) DefaultQrySopName() string {
	switch m.Kind {
	case Indri:
		return "#and"
	case BM25:
		return "#sum"
	default:
		return "#or"
	}
}

// BM25TermScore is the single-term BM25 contribution: RSJ weight times
// tf weight times user weight, floored at zero when a term is so
// common that RSJ would go negative.
func BM25TermScore(m Model, tf, df, n int, L int, avgLen float64) float64 {
	rsj := math.Log((float64(n) - float64(df) + 0.5) / (float64(df) + 0.5))
	if rsj < 0 {
		rsj = 0
	}
	tfF := float64(tf)
	denom := tfF + m.K1*((1-m.B)+m.B*float64(L)/avgLen)
	if denom == 0 {
		return 0
	}
	tfW := tfF / denom
	userW := (m.K3 + 1) * 1.0 / (m.K3 + 1.0)
	return rsj * tfW * userW
}

// IndriPMLE is the Dirichlet-smoothing background probability for a
// term with corpus term frequency ctf over a field whose lengths sum
// to sumFieldLen.
func IndriPMLE(ctf int64, sumFieldLen int64) float64 {
	if sumFieldLen == 0 {
		return 0
	}
	if ctf == 0 {
		return 0.5 / float64(sumFieldLen)
	}
	return float64(ctf) / float64(sumFieldLen)
}

// IndriTermScore is the single-term Dirichlet-smoothed language-model
// contribution, valid for both matching (tf > 0) and non-matching
// (tf == 0, the default score) documents.
func IndriTermScore(m Model, tf, L int, ctf int64, sumFieldLen int64) float64 {
	p := IndriPMLE(ctf, sumFieldLen)
	num := float64(tf) + m.Mu*p
	return (1-m.Lambda)*num/(float64(L)+m.Mu) + m.Lambda*p
}

func ParseKind(s string) (Kind, error) {
	switch s {
	case "unrankedboolean":
		return UnrankedBoolean, nil
	case "rankedboolean":
		return RankedBoolean, nil
	case "bm25":
		return BM25, nil
	case "indri":
		return Indri, nil
	default:
		return 0, errs.New(errs.ParameterMalformed, "unknown retrievalAlgorithm %q", s)
	}
}
