package actions

import (
	"github.com/cwacek/qryeval/errs"
	"github.com/cwacek/qryeval/model"
	"github.com/cwacek/qryeval/paramfile"
)

// buildModel constructs the retrieval model named by retrievalAlgorithm,
// reading its tunables from the BM25:*/Indri:* parameter keys per
// spec.md 6, with the same defaults the source hardcodes.
func buildModel(kind model.Kind, params *paramfile.Parameters) (model.Model, error) {
	switch kind {
	case model.BM25:
		k1, err := params.GetFloat("BM25:k_1", 1.2)
		if err != nil {
			return model.Model{}, err
		}
		b, err := params.GetFloat("BM25:b", 0.75)
		if err != nil {
			return model.Model{}, err
		}
		k3, err := params.GetFloat("BM25:k_3", 0)
		if err != nil {
			return model.Model{}, err
		}
		return model.NewBM25(k1, b, k3), nil

	case model.Indri:
		mu, err := params.GetFloat("Indri:mu", 2500)
		if err != nil {
			return model.Model{}, err
		}
		lambda, err := params.GetFloat("Indri:lambda", 0.4)
		if err != nil {
			return model.Model{}, err
		}
		return model.NewIndri(mu, lambda), nil

	case model.RankedBoolean:
		return model.NewRankedBoolean(), nil

	case model.UnrankedBoolean:
		return model.NewUnrankedBoolean(), nil

	default:
		return model.Model{}, errs.New(errs.ParameterMalformed, "unsupported retrievalAlgorithm kind %v", kind)
	}
}
