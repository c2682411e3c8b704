// Package ltr extracts the per-(query,doc) feature vector consumed by
// an external learning-to-rank trainer. Feature computation reuses the
// shared BM25/Indri term-score formulas in package model; assembling
// and printing the vector follows FeatureVector.java and
// FeatureVectorFileLine.java's shape - a fixed-size slot array plus a
// libsvm/RankLib-style "n:value" line writer - reworked as a Go map
// keyed by feature number instead of a Double[] with 1-based offsets.
package ltr

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cwacek/qryeval/errs"
	"github.com/cwacek/qryeval/index"
	"github.com/cwacek/qryeval/model"
)

// Fields is the fixed set of fields scored into the feature vector.
var Fields = []string{"body", "title", "url", "inlink"}

// NumFeatures is 2 per field: a BM25 score and an Indri score.
var NumFeatures = 2 * len(Fields)

func bm25FeatureNumber(fieldIdx int) int { return 2*fieldIdx + 1 }
func indriFeatureNumber(fieldIdx int) int { return 2*fieldIdx + 2 }

// FeatureVector holds a sparse 1-based feature-number -> value map, the
// way FeatureVector.java's array leaves an entry nil until set.
type FeatureVector struct {
	values map[int]float64
}

func NewFeatureVector() *FeatureVector {
	return &FeatureVector{values: make(map[int]float64)}
}

func (fv *FeatureVector) Set(featureNumber int, value float64) {
	fv.values[featureNumber] = value
}

func (fv *FeatureVector) Get(featureNumber int) (float64, bool) {
	v, ok := fv.values[featureNumber]
	return v, ok
}

// Record pairs one document's feature vector with the labels a
// training file line needs.
type Record struct {
	RelevanceScore int
	ExternalDocid  string
	QueryId        string
	Vector         *FeatureVector
}

// Extract computes the feature vector for one (queryTerms, docid) pair:
// for each field in Fields, the summed BM25 score and summed Indri
// score of queryTerms against that field of docid.
func Extract(idx index.Facade, queryTerms []string, docid uint32, bm25, indri model.Model) (*FeatureVector, error) {
	fv := NewFeatureVector()

	for fi, field := range Fields {
		// A field the corpus never populated (e.g. no inlink anchors)
		// contributes zero rather than failing the whole extraction -
		// all NumFeatures slots (two per field) are always emitted.
		docCount, err := idx.DocCount(field)
		if err != nil {
			fv.Set(bm25FeatureNumber(fi), 0)
			fv.Set(indriFeatureNumber(fi), 0)
			continue
		}
		sumLen, err := idx.SumOfFieldLengths(field)
		if err != nil {
			fv.Set(bm25FeatureNumber(fi), 0)
			fv.Set(indriFeatureNumber(fi), 0)
			continue
		}
		L, err := idx.FieldLength(field, docid)
		if err != nil {
			return nil, errs.New(errs.IndexUnavailable, "fieldLength(%s,%d): %v", field, docid, err)
		}
		var avgLen float64
		if docCount > 0 {
			avgLen = float64(sumLen) / float64(docCount)
		}

		var bm25Sum, indriSum float64
		for _, term := range queryTerms {
			df, err := idx.DocFreq(field, term)
			if err != nil {
				return nil, errs.New(errs.IndexUnavailable, "docFreq(%s,%s): %v", field, term, err)
			}
			ctf, err := idx.TotalTermFreq(field, term)
			if err != nil {
				return nil, errs.New(errs.IndexUnavailable, "totalTermFreq(%s,%s): %v", field, term, err)
			}
			tf := termFreqInDoc(idx, field, term, docid)

			if df > 0 && avgLen > 0 {
				bm25Sum += model.BM25TermScore(bm25, tf, df, idx.NumDocs(), L, avgLen)
			}
			indriSum += model.IndriTermScore(indri, tf, L, ctf, sumLen)
		}

		fv.Set(bm25FeatureNumber(fi), bm25Sum)
		fv.Set(indriFeatureNumber(fi), indriSum)
	}

	return fv, nil
}

func termFreqInDoc(idx index.Facade, field, term string, docid uint32) int {
	postings, err := idx.Postings(field, term)
	if err != nil {
		return 0
	}
	i := sort.Search(len(postings), func(i int) bool { return postings[i].DocId >= docid })
	if i < len(postings) && postings[i].DocId == docid {
		return len(postings[i].Positions)
	}
	return 0
}

// WriteLine renders one training-file record in libsvm/RankLib format:
// "relevance qid:queryId 1:v1 2:v2 ... # externalDocid". Feature
// numbers with no value are printed as 0, matching
// FeatureVectorFileLine.toString's non-SVM branch; disabled skips them
// entirely, matching its SVM branch.
func WriteLine(r Record, disabled map[int]bool) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(r.RelevanceScore))
	sb.WriteString(" qid:")
	sb.WriteString(r.QueryId)
	sb.WriteString(" ")

	for i := 1; i <= NumFeatures; i++ {
		if disabled[i] {
			continue
		}
		val, ok := r.Vector.Get(i)
		if !ok {
			val = 0
		}
		fmt.Fprintf(&sb, "%d:%v ", i, val)
	}

	sb.WriteString("# ")
	sb.WriteString(r.ExternalDocid)
	return sb.String()
}
