// Package eval drives an operator tree to completion and turns the
// result into a sorted, truncated ranking.
package eval

import "sort"

// Result is a single (external docid, score) pair.
type Result struct {
	ExternalDocid string
	Score         float64
}

// ScoreList is an ordered sequence of Results. Zero value is an empty,
// ready-to-append list.
type ScoreList struct {
	Results []Result
}

func NewScoreList() *ScoreList {
	return &ScoreList{Results: make([]Result, 0)}
}

func (s *ScoreList) Append(docid string, score float64) {
	s.Results = append(s.Results, Result{ExternalDocid: docid, Score: score})
}

func (s *ScoreList) Len() int      { return len(s.Results) }
func (s *ScoreList) Swap(i, j int) { s.Results[i], s.Results[j] = s.Results[j], s.Results[i] }

// Less orders score descending, ties broken by external docid ascending.
func (s *ScoreList) Less(i, j int) bool {
	a, b := s.Results[i], s.Results[j]
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.ExternalDocid < b.ExternalDocid
}

// SortAndTruncate sorts in place and truncates to at most topN results.
// Applying it a second time on its own output is a no-op.
func (s *ScoreList) SortAndTruncate(topN int) {
	sort.Sort(s)
	if topN >= 0 && len(s.Results) > topN {
		s.Results = s.Results[:topN]
	}
}
