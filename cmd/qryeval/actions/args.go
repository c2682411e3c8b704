package actions

import (
	"flag"
	"fmt"

	log "github.com/cihub/seelog"
)

// Args is embedded by every action for the shared verbosity flag,
// adapted from scanner/actions/defaults.go's Args/AddDefaultArgs.
type Args struct {
	verbosity *int
}

func (a *Args) AddDefaultArgs(fs *flag.FlagSet) {
	a.verbosity = fs.Int("v", 0, "Be verbose [1, 2, 3]")
}

// queryTraceConfig is the seelog XML config every action installs,
// adapted from the teacher's scanner/logging.go/scanner/actions/
// defaults.go pair (which each carried a private copy) into the one
// place cmd/qryeval configures logging. The format tag names the
// operator-tree evaluator rather than the teacher's scanner, since
// %Func is what lets qry/prf/diversity's Debugf trace calls (Sop
// scoring, PRF accumulation, diversification passes) show which stage
// of query evaluation emitted them at -v 3.
const queryTraceConfig = `
  <seelog type="sync" minlevel='%s'>
  <outputs formatid="qryeval">
    <console />
  </outputs>
  <formats>
  <format id="qryeval" format="qryeval: [%%LEV] %%Func :: %%Msg%%n" />
  </formats>
  </seelog>
`

// SetupLogging installs the seelog logger at the requested verbosity:
// 0/1 warn, 2 info, 3+ trace. Every action calls this once at startup
// instead of each carrying its own copy of the seelog config.
func SetupLogging(verbosity int) {
	var level string
	switch {
	case verbosity <= 1:
		level = "warn"
	case verbosity == 2:
		level = "info"
	default:
		level = "trace"
	}

	logger, err := log.LoggerFromConfigAsBytes([]byte(fmt.Sprintf(queryTraceConfig, level)))
	if err != nil {
		fmt.Println(err)
		return
	}
	log.ReplaceLogger(logger)
}
