// Package output writes ranked results in the six-column TREC format,
// following QryEval.printResults's shape and the teacher's line-oriented
// file-writing idiom (scanner/filereader trec I/O).
package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/cwacek/qryeval/errs"
	"github.com/cwacek/qryeval/eval"
)

const defaultRunId = "?"

// Writer emits TREC-format records for a run's queries to a single
// underlying writer, one query's records at a time.
type Writer struct {
	w     *bufio.Writer
	runId string
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w), runId: defaultRunId}
}

func (w *Writer) SetRunId(id string) {
	if id != "" {
		w.runId = id
	}
}

// WriteQueryResults emits one record per result, 1-based rank, or a
// single dummyRecord placeholder line if list is empty.
func (w *Writer) WriteQueryResults(queryId string, list *eval.ScoreList) error {
	if list == nil || list.Len() == 0 {
		_, err := fmt.Fprintf(w.w, "%s Q0 dummyRecord 1 0 %s\n", queryId, w.runId)
		if err != nil {
			return errs.New(errs.IOError, "writing dummy record for %s: %v", queryId, err)
		}
		return nil
	}

	for i, r := range list.Results {
		rank := i + 1
		_, err := fmt.Fprintf(w.w, "%s Q0 %s %d %v %s\n", queryId, r.ExternalDocid, rank, r.Score, w.runId)
		if err != nil {
			return errs.New(errs.IOError, "writing result %d for %s: %v", rank, queryId, err)
		}
	}
	return nil
}

func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return errs.New(errs.IOError, "flushing output: %v", err)
	}
	return nil
}
