package actions

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	log "github.com/cihub/seelog"
	zmq "github.com/pebbe/zmq3"

	"github.com/cwacek/qryeval/paramfile"
)

func QueryRunner() *query_action { return new(query_action) }

// query_action is a thin ZeroMQ client for serve, adapted from
// scanner/actions/query.go's query_action/QuerierRunner.
type query_action struct {
	Args

	queryFile *string
	host      *string
	port      *int
}

func (a *query_action) Name() string { return "query" }

func (a *query_action) DefineFlags(fs *flag.FlagSet) {
	a.AddDefaultArgs(fs)

	a.queryFile = fs.String("queryfile", "",
		"A queryId:queryExpression file to run against a running serve process")
	a.host = fs.String("index.host", "localhost",
		"The host running the query engine")
	a.port = fs.Int("index.port", 10800,
		"The port on which the query engine can be found")
}

func (a *query_action) Run() {
	SetupLogging(*a.verbosity)

	if *a.queryFile == "" {
		log.Criticalf("queryfile is a required argument")
		os.Exit(1)
	}

	f, err := os.Open(*a.queryFile)
	if err != nil {
		log.Criticalf("opening query file: %v", err)
		os.Exit(1)
	}
	queries, err := paramfile.ReadQueryFile(f)
	f.Close()
	if err != nil {
		log.Criticalf("reading query file: %v", err)
		os.Exit(1)
	}

	socket, err := zmq.NewSocket(zmq.REQ)
	if err != nil {
		log.Criticalf("creating socket: %v", err)
		os.Exit(1)
	}
	defer socket.Close()

	addr := fmt.Sprintf("tcp://%s:%d", *a.host, *a.port)
	if err := socket.Connect(addr); err != nil {
		log.Criticalf("connecting to %s: %v", addr, err)
		os.Exit(1)
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	for _, q := range queries {
		req, err := json.Marshal(&Query{Id: q.Id, Text: q.Expression})
		if err != nil {
			log.Criticalf("encoding query %s: %v", q.Id, err)
			continue
		}
		log.Infof("sending %s", req)
		socket.SendBytes(req, 0)

		reply, err := socket.RecvBytes(0)
		if err != nil {
			log.Criticalf("receiving reply for %s: %v", q.Id, err)
			continue
		}
		log.Infof("received %s", reply)

		var resp Response
		if err := json.Unmarshal(reply, &resp); err != nil {
			log.Criticalf("decoding reply for %s: %v", q.Id, err)
			continue
		}

		if resp.Error != "" {
			fmt.Fprintf(w, "%s: error: %s\n", q.Id, resp.Error)
			continue
		}
		for i, r := range resp.Results {
			fmt.Fprintf(w, "%s Q0 %s %d %v ?\n", q.Id, r.ExternalDocid, i+1, r.Score)
		}
	}
}
