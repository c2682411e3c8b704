package actions

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	log "github.com/cihub/seelog"
	zmq "github.com/pebbe/zmq3"

	"github.com/cwacek/qryeval/eval"
	"github.com/cwacek/qryeval/model"
	"github.com/cwacek/qryeval/paramfile"
)

func ServeRunner() *serve_action { return new(serve_action) }

// serve_action is a long-running query engine over ZeroMQ, extending
// the teacher's ZeroMQEngine request/reply pattern to the operator-tree
// evaluator in place of the source's flat BM25/CosineVSM rankers.
type serve_action struct {
	Args

	paramPath *string
	port      *int
}

func (a *serve_action) Name() string { return "serve" }

func (a *serve_action) DefineFlags(fs *flag.FlagSet) {
	a.AddDefaultArgs(fs)
	a.paramPath = fs.String("param", "", "Path to a qryeval parameter file")
	a.port = fs.Int("engine.port", 10800, "The port on which to listen for incoming queries")
}

func (a *serve_action) Run() {
	SetupLogging(*a.verbosity)

	if *a.paramPath == "" {
		log.Criticalf("param is a required argument")
		os.Exit(1)
	}

	f, err := os.Open(*a.paramPath)
	if err != nil {
		log.Criticalf("opening parameter file: %v", err)
		os.Exit(1)
	}
	params, err := paramfile.ReadParameters(f)
	f.Close()
	if err != nil {
		log.Criticalf("reading parameters: %v", err)
		os.Exit(1)
	}

	evaluator, topN, err := buildServingEvaluator(params)
	if err != nil {
		log.Criticalf("%v", err)
		os.Exit(1)
	}

	socket, err := zmq.NewSocket(zmq.REP)
	if err != nil {
		log.Criticalf("creating socket: %v", err)
		os.Exit(1)
	}
	defer socket.Close()

	if err := socket.Bind(fmt.Sprintf("tcp://*:%d", *a.port)); err != nil {
		log.Criticalf("binding port %d: %v", *a.port, err)
		os.Exit(1)
	}

	log.Infof("serving queries on port %d", *a.port)
	serveLoop(socket, evaluator, topN)
}

func serveLoop(socket *zmq.Socket, evaluator *eval.Evaluator, topN int) {
	for {
		msg, err := socket.RecvBytes(0)
		if err != nil {
			log.Criticalf("receiving query: %v", err)
			return
		}
		log.Infof("received %s", msg)

		var q Query
		if err := json.Unmarshal(msg, &q); err != nil {
			log.Errorf("decoding query: %v", err)
			reply, _ := json.Marshal(errorResponse(err.Error()))
			socket.SendBytes(reply, 0)
			continue
		}

		resp := processServeQuery(evaluator, q, topN)

		out, err := json.Marshal(resp)
		if err != nil {
			log.Criticalf("encoding response: %v", err)
			continue
		}
		socket.SendBytes(out, 0)
	}
}

func processServeQuery(evaluator *eval.Evaluator, q Query, topN int) *Response {
	list, err := evaluator.ProcessQuery(q.Text, topN)
	if err != nil {
		return errorResponse(err.Error())
	}
	return &Response{Results: list.Results}
}

// buildServingEvaluator loads the corpus and retrieval model a serve
// process needs, the same construction run.go's batch path performs,
// minus the query-file/output-file wiring a live server doesn't use.
func buildServingEvaluator(params *paramfile.Parameters) (*eval.Evaluator, int, error) {
	indexPath, err := params.MustGet("indexPath")
	if err != nil {
		return nil, 0, err
	}
	idx, err := LoadCorpus(indexPath)
	if err != nil {
		return nil, 0, err
	}

	algStr, err := params.MustGet("retrievalAlgorithm")
	if err != nil {
		return nil, 0, err
	}
	kind, err := model.ParseKind(strings.ToLower(algStr))
	if err != nil {
		return nil, 0, err
	}
	m, err := buildModel(kind, params)
	if err != nil {
		return nil, 0, err
	}

	defaultField := params.GetString("defaultField", "body")
	topN, err := params.GetInt("trecEvalOutputLength", 100)
	if err != nil {
		return nil, 0, err
	}

	return eval.NewEvaluator(idx, m, defaultField), topN, nil
}
