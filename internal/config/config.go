// Package config declares the grdfs CLI surface, parsed with
// github.com/alecthomas/kong: eight independent flags plus --help, exactly
// kong's sweet spot of declarative struct tags, automatic usage text, and
// typed enum validation for --device/--rules.
package config

import (
	"github.com/alecthomas/kong"
)

// Config is the parsed command line.
type Config struct {
	InputFile string `name:"input-file" short:"i" required:"" help:"Path to the input Turtle document."`

	Device string `name:"device" enum:"cpu,gpu" default:"cpu" help:"Join kernel backend (gpu is accepted but always fails to build: no GPU runtime ships)."`
	Rules  string `name:"rules" enum:"rhodf,rdfs" default:"rhodf" help:"Entailment rule set to materialize."`

	Axioms        bool `name:"axioms" help:"Inject the finite RDFS axiomatic triple set before computing closure."`
	NoLocalDedup  bool `name:"no-local-dedup" help:"Disable skipping, at join time, of entailed triples already present in the target store."`
	NoGlobalDedup bool `name:"no-global-dedup" help:"Disable deduplication against triples already present in the target store."`
	Time          bool `name:"time" help:"Print per-phase wall-clock timings to stderr."`
	PrintTriples  bool `name:"print-triples" short:"p" help:"Write the final triple set (input plus entailed) in N-Triples form to stdout."`
}

// Parse parses args (excluding the program name) into a Config, exiting the
// process via kong's own --help handling on request.
func Parse(args []string) (*Config, error) {
	var cfg Config
	parser, err := kong.New(&cfg,
		kong.Name("grdfs"),
		kong.Description("RDFS materialization closure engine."),
		kong.UsageOnError(),
	)
	if err != nil {
		return nil, err
	}
	if _, err := parser.Parse(args); err != nil {
		return nil, err
	}
	return &cfg, nil
}
