package qry

import (
	log "github.com/cihub/seelog"

	"github.com/cwacek/qryeval/errs"
	"github.com/cwacek/qryeval/index"
	"github.com/cwacek/qryeval/model"
)

// Score is the SCORE operator: it wraps a single positional child and
// dispatches to the scoring formula for the active retrieval model.
// Corpus statistics needed by BM25/Indri (N, avgL, df, ctf, field
// length totals) are cached at Initialize time so per-document scoring
// is cheap.
type Score struct {
	idx   index.Facade
	child Iop

	field       string
	n           int
	avgLen      float64
	df          int
	ctf         int64
	sumFieldLen int64
}

func NewScore(idx index.Facade, child Iop) *Score {
	return &Score{idx: idx, child: child}
}

func (s *Score) Initialize(m model.Model) error {
	if err := s.child.Initialize(m); err != nil {
		return err
	}

	s.field = s.child.Field()
	s.n = s.idx.NumDocs()
	s.df = s.child.Df()
	s.ctf = s.child.Ctf()

	docCount, err := s.idx.DocCount(s.field)
	if err != nil {
		return errs.New(errs.IndexUnavailable, "docCount(%s): %v", s.field, err)
	}
	sumLen, err := s.idx.SumOfFieldLengths(s.field)
	if err != nil {
		return errs.New(errs.IndexUnavailable, "sumOfFieldLengths(%s): %v", s.field, err)
	}
	s.sumFieldLen = sumLen
	if docCount > 0 {
		s.avgLen = float64(sumLen) / float64(docCount)
	}
	log.Debugf("Score(%s) initialized: N=%d df=%d ctf=%d avgLen=%f",
		s.field, s.n, s.df, s.ctf, s.avgLen)
	return nil
}

func (s *Score) HasMatch(m model.Model) bool { return s.child.HasMatch() }

func (s *Score) CurrentDocid() uint32 { return s.child.CurrentDocid() }

func (s *Score) AdvancePast(docid uint32) { s.child.AdvancePast(docid) }

func (s *Score) Score(m model.Model) (float64, error) {
	if !s.HasMatch(m) {
		return 0, errs.New(errs.ScoringInvariantViolated, "Score asked to score a non-matching document")
	}

	switch m.Kind {
	case model.UnrankedBoolean:
		return 1.0, nil

	case model.RankedBoolean:
		return float64(s.child.TfOfDoc()), nil

	case model.BM25:
		return s.bm25Score(m, s.child.TfOfDoc(), s.currentFieldLength()), nil

	case model.Indri:
		return s.indriScore(m, s.child.TfOfDoc(), s.currentFieldLength()), nil

	default:
		return 0, errUnsupported("Score", m)
	}
}

func (s *Score) DefaultScore(m model.Model, docid uint32) (float64, error) {
	if m.Kind != model.Indri {
		return 0, nil
	}
	L, err := s.idx.FieldLength(s.field, docid)
	if err != nil {
		return 0, errs.New(errs.IndexUnavailable, "fieldLength(%s,%d): %v", s.field, docid, err)
	}
	return s.indriScore(m, 0, L), nil
}

func (s *Score) currentFieldLength() int {
	L, err := s.idx.FieldLength(s.field, s.child.CurrentDocid())
	if err != nil {
		return 0
	}
	return L
}

func (s *Score) bm25Score(m model.Model, tf, L int) float64 {
	score := model.BM25TermScore(m, tf, s.df, s.n, L, s.avgLen)
	log.Debugf("BM25 %s: tf=%d df=%d L=%d avgLen=%f -> %f", s.field, tf, s.df, L, s.avgLen, score)
	return score
}

func (s *Score) indriScore(m model.Model, tf, L int) float64 {
	score := model.IndriTermScore(m, tf, L, s.ctf, s.sumFieldLen)
	log.Debugf("Indri %s: tf=%d L=%d ctf=%d -> %f", s.field, tf, L, s.ctf, score)
	return score
}

var _ Sop = (*Score)(nil)
