package index

import (
	"sync"

	log "github.com/cihub/seelog"
	"github.com/ryszard/goskiplist/skiplist"
)

// docLessThan orders postings by ascending docid, the way
// indexer/positional_postinglist.go ordered postings by docid string;
// here the key is the numeric internal docid every list is kept sorted
// on.
func docLessThan(a, b interface{}) bool {
	return a.(uint32) < b.(uint32)
}

type fieldStats struct {
	docCount  int
	sumLength int64
	// term -> (df, ctf)
	termDf  map[string]int
	termCtf map[string]int64
}

func newFieldStats() *fieldStats {
	return &fieldStats{
		termDf:  make(map[string]int),
		termCtf: make(map[string]int64),
	}
}

type docMeta struct {
	external   string
	fieldLen   map[string]int
	attributes map[string]string
}

// Memory is a fully in-memory, read-write-then-read-only Facade
// implementation. It plays the role the teacher's SingleTermIndex played
// for on-disk indexes, but scoped down to what a read-only query facade
// needs: no filter chain, no persistence, no lexicon trie (index
// construction is out of scope; see DESIGN.md).
type Memory struct {
	mu sync.RWMutex

	docs     []docMeta
	extToInt map[string]uint32

	fields map[string]*fieldStats

	// key: field + "\x00" + term -> docid-ordered skiplist of *Posting
	postings map[string]*skiplist.SkipList

	// docid -> field -> term vector
	vectors map[uint32]map[string]*TermVector
}

// NewMemory builds an empty in-memory index. Documents are added with
// AddDocument during a build phase; once queries start, the facade is
// treated as read-only per 5. Concurrency & Resource Model.
func NewMemory() *Memory {
	return &Memory{
		extToInt: make(map[string]uint32),
		fields:   make(map[string]*fieldStats),
		postings: make(map[string]*skiplist.SkipList),
		vectors:  make(map[uint32]map[string]*TermVector),
	}
}

func postingKey(field, term string) string {
	return field + "\x00" + term
}

// AddDocument registers one document's per-field token streams
// (already tokenized externally; tokenization policy is out of scope).
// fieldTokens maps field name to the ordered sequence of stems occurring
// in that field for this document. Positions are assigned 0-based by
// occurrence order within the field, matching the position convention
// the positional operators (qry package) expect.
func (m *Memory) AddDocument(externalId string, fieldTokens map[string][]string, attrs map[string]string) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	docid := uint32(len(m.docs))
	meta := docMeta{
		external:   externalId,
		fieldLen:   make(map[string]int),
		attributes: attrs,
	}

	docVectors := make(map[string]*TermVector)

	for field, tokens := range fieldTokens {
		fs, ok := m.fields[field]
		if !ok {
			fs = newFieldStats()
			m.fields[field] = fs
		}
		fs.docCount++
		fs.sumLength += int64(len(tokens))
		meta.fieldLen[field] = len(tokens)

		termPositions := make(map[string][]int)
		stemIndex := map[string]int{"": 0}
		tv := &TermVector{
			Stems:     []string{""},
			StemFreq:  []int{0},
			Positions: make([]int, len(tokens)),
		}

		for pos, term := range tokens {
			termPositions[term] = append(termPositions[term], pos)

			idx, seen := stemIndex[term]
			if !seen {
				idx = len(tv.Stems)
				stemIndex[term] = idx
				tv.Stems = append(tv.Stems, term)
				tv.StemFreq = append(tv.StemFreq, 0)
			}
			tv.StemFreq[idx]++
			tv.Positions[pos] = idx

			fs.termCtf[term]++
		}

		for term, positions := range termPositions {
			fs.termDf[term]++
			key := postingKey(field, term)
			sl, ok := m.postings[key]
			if !ok {
				sl = skiplist.NewCustomMap(docLessThan)
				m.postings[key] = sl
			}
			sl.Set(docid, &Posting{DocId: docid, Positions: append([]int(nil), positions...)})
		}

		tv.TotalStemFreq = make([]int, len(tv.Stems))
		for i, stem := range tv.Stems {
			if i == 0 {
				continue
			}
			tv.TotalStemFreq[i] = int(fs.termCtf[stem])
		}
		docVectors[field] = tv
	}

	m.docs = append(m.docs, meta)
	m.extToInt[externalId] = docid
	m.vectors[docid] = docVectors

	log.Debugf("indexed document %s as docid %d with %d fields", externalId, docid, len(fieldTokens))
	return docid
}

func (m *Memory) NumDocs() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

func (m *Memory) DocCount(field string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fs, ok := m.fields[field]
	if !ok {
		return 0, errField(field)
	}
	return fs.docCount, nil
}

func (m *Memory) SumOfFieldLengths(field string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fs, ok := m.fields[field]
	if !ok {
		return 0, errField(field)
	}
	return fs.sumLength, nil
}

func (m *Memory) FieldLength(field string, docid uint32) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if int(docid) >= len(m.docs) {
		return 0, errDocid(docid)
	}
	return m.docs[docid].fieldLen[field], nil
}

func (m *Memory) DocFreq(field, term string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fs, ok := m.fields[field]
	if !ok {
		return 0, nil
	}
	return fs.termDf[term], nil
}

func (m *Memory) TotalTermFreq(field, term string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fs, ok := m.fields[field]
	if !ok {
		return 0, nil
	}
	return fs.termCtf[term], nil
}

func (m *Memory) InternalDocid(externalDocid string) (uint32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.extToInt[externalDocid]
	if !ok {
		return 0, errDocid(externalDocid)
	}
	return id, nil
}

func (m *Memory) ExternalDocid(docid uint32) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if int(docid) >= len(m.docs) {
		return "", errDocid(docid)
	}
	return m.docs[docid].external, nil
}

func (m *Memory) Attribute(name string, docid uint32) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if int(docid) >= len(m.docs) {
		return "", false, errDocid(docid)
	}
	v, ok := m.docs[docid].attributes[name]
	return v, ok, nil
}

func (m *Memory) Postings(field, term string) (InvertedList, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sl, ok := m.postings[postingKey(field, term)]
	if !ok {
		return InvertedList{}, nil
	}

	out := make(InvertedList, 0, sl.Len())
	for it := sl.Iterator(); it.Next(); {
		p := it.Value().(*Posting)
		out = append(out, *p)
	}
	return out, nil
}

func (m *Memory) TermVector(docid uint32, field string) (*TermVector, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if int(docid) >= len(m.docs) {
		return nil, errDocid(docid)
	}
	fv, ok := m.vectors[docid]
	if !ok {
		return &TermVector{Stems: []string{""}, StemFreq: []int{0}, TotalStemFreq: []int{0}}, nil
	}
	tv, ok := fv[field]
	if !ok {
		return &TermVector{Stems: []string{""}, StemFreq: []int{0}, TotalStemFreq: []int{0}}, nil
	}
	return tv, nil
}

var _ Facade = (*Memory)(nil)
