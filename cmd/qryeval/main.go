// Command qryeval drives the operator-tree query evaluator from the
// command line, mirroring scanner/main.go's subcommand dispatch.
package main

import (
	log "github.com/cihub/seelog"
	"github.com/cwacek/subcommand"

	"github.com/cwacek/qryeval/cmd/qryeval/actions"
)

func main() {
	defer log.Flush()

	subcommand.Parse(true,
		actions.RunRunner(),
		actions.ServeRunner(),
		actions.QueryRunner(),
	)
}
