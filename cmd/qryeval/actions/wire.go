package actions

import "github.com/cwacek/qryeval/eval"

// Query is the JSON message a query client sends to a running serve
// process, adapted from query_engine.Query and trimmed to what an
// operator-tree evaluator needs: one serve process backs exactly one
// index and retrieval model, so there is no engine/indexPref selector.
type Query struct {
	Id   string
	Text string
}

// Response is the JSON message serve replies with, adapted from
// query_engine.Response.
type Response struct {
	Results []eval.Result
	Error   string
}

func errorResponse(msg string) *Response {
	return &Response{Error: msg}
}
