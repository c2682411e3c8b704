package eval

import (
	"strings"

	log "github.com/cihub/seelog"

	"github.com/cwacek/qryeval/errs"
	"github.com/cwacek/qryeval/index"
	"github.com/cwacek/qryeval/model"
	"github.com/cwacek/qryeval/qryparse"
)

// Evaluator drives the operator tree for one retrieval model against
// one index, the way query_engine.BM25/CosineVSM drove a flat term
// loop against a SingleTermIndex, generalized to arbitrary operator
// trees.
type Evaluator struct {
	idx          index.Facade
	model        model.Model
	defaultField string
	parser       *qryparse.Parser
}

func NewEvaluator(idx index.Facade, m model.Model, defaultField string) *Evaluator {
	return &Evaluator{
		idx:          idx,
		model:        m,
		defaultField: defaultField,
		parser:       qryparse.NewParser(idx, defaultField),
	}
}

// ProcessQuery implements the wrap/parse/initialize/iterate/sort
// algorithm: wrap qString in the model's default operator, parse it
// into a root scoring operator, initialize the tree, drain it into a
// ScoreList, then sort and truncate to topN.
func (e *Evaluator) ProcessQuery(qString string, topN int) (*ScoreList, error) {
	trimmed := strings.TrimSpace(qString)
	if trimmed == "" {
		return NewScoreList(), nil
	}

	wrapped := e.model.DefaultQrySopName() + "(" + trimmed + ")"

	root, err := e.parser.Parse(wrapped)
	if err != nil {
		return nil, err
	}

	if err := root.Initialize(e.model); err != nil {
		return nil, err
	}

	list := NewScoreList()
	for root.HasMatch(e.model) {
		docid := root.CurrentDocid()
		score, err := root.Score(e.model)
		if err != nil {
			return nil, err
		}
		ext, err := e.idx.ExternalDocid(docid)
		if err != nil {
			return nil, errs.New(errs.IndexUnavailable, "externalDocid(%d): %v", docid, err)
		}
		list.Append(ext, score)
		root.AdvancePast(docid)
	}

	log.Debugf("query %q matched %d documents", qString, list.Len())

	list.SortAndTruncate(topN)
	return list, nil
}
