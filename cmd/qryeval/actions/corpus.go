package actions

import (
	"bufio"
	"encoding/json"
	"os"

	log "github.com/cihub/seelog"

	"github.com/cwacek/qryeval/errs"
	"github.com/cwacek/qryeval/index"
)

// corpusDoc is one line of the JSON-lines format this CLI loads into
// the in-memory Facade. Building a physical index from raw documents
// (tokenization, stemming, disk-backed lexicons, phrase detection -
// what indexer/ does) is out of scope; this loader only accepts
// documents already split into per-field token streams, which is all
// index.Memory.AddDocument needs.
type corpusDoc struct {
	Id         string              `json:"id"`
	Fields     map[string][]string `json:"fields"`
	Attributes map[string]string   `json:"attributes"`
}

// LoadCorpus reads a JSON-lines pre-tokenized document collection into
// a fresh in-memory index.
func LoadCorpus(path string) (*index.Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.New(errs.IndexUnavailable, "opening corpus %s: %v", path, err)
	}
	defer f.Close()

	idx := index.NewMemory()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	n := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var doc corpusDoc
		if err := json.Unmarshal(line, &doc); err != nil {
			return nil, errs.New(errs.ParameterMalformed, "corpus line %d: %v", n+1, err)
		}
		idx.AddDocument(doc.Id, doc.Fields, doc.Attributes)
		n++
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.New(errs.IOError, "reading corpus %s: %v", path, err)
	}

	log.Infof("loaded %d documents from %s", n, path)
	return idx, nil
}
