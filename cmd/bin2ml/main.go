package main

import (
	"fmt"
	"os"

	"bin2ml/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	config.LoadEnv()

	var err error
	switch os.Args[1] {
	case "graphs":
		err = cmdGraphs(os.Args[2:])
	case "nlp":
		err = cmdNLP(os.Args[2:])
	case "walks":
		err = cmdWalks(os.Args[2:])
	case "help", "-h", "--help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `bin2ml - turn extracted function records into ML artifacts

Usage:
  bin2ml graphs --in <path> --out <dir> --kind <cfg|cg|onehopcg|globalcg>   Build graphs
  bin2ml nlp    --in <path> --out <dir> [--repr disasm|ir|esil]              Build instruction corpora
  bin2ml walks  --in <path> --out <dir> [--length n] [--count n]              Random walks over CFGs

Common flags:
  --in <path>          Record file or directory searched for *.json
  --out <dir>          Output directory
  --workers <n>        Worker pool size (default: $BIN2ML_WORKERS or CPU count)
  --min-blocks <n>     Skip functions with fewer basic blocks
  --seed <n>           Base seed for random walks (default: $BIN2ML_SEED)
  --log-level <lvl>    debug, info, warn, error (default: $LOG_LEVEL)
  --debug              Shorthand for --log-level debug
  --force              Overwrite artifacts that already exist

Graph flags:
  --feature <scheme>   gemini, discovre, dgis (cfg only)
  --dot                Also write Graphviz DOT files
  --with-callers       Add callers of the root function (cg, onehopcg)
  --metadata           Attach function metadata to call-graph nodes
  --include-unk        Keep unresolved unk.* callees

Corpus flags:
  --repr <r>           disasm, ir, esil
  --format <f>         single (one line per instruction) or funcstring (one per function)
  --no-normalise       Keep raw operands
  --reg-norm           Also mask registers
  --walks              Order instructions by random CFG walks
`)
}
