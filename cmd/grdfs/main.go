// Command grdfs loads a Turtle document, computes its RDFS (or ρDF)
// materialization closure, and optionally prints the resulting triple set
// in N-Triples form.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/0xfeedface/grdfs/internal/closure"
	"github.com/0xfeedface/grdfs/internal/config"
	"github.com/0xfeedface/grdfs/internal/diag"
	"github.com/0xfeedface/grdfs/internal/dict"
	"github.com/0xfeedface/grdfs/internal/kernel"
	"github.com/0xfeedface/grdfs/internal/ntriples"
	"github.com/0xfeedface/grdfs/internal/rdfio"
	"github.com/0xfeedface/grdfs/internal/reasoner"
	"github.com/0xfeedface/grdfs/internal/tstore"
)

// Exit codes: 0 success; non-zero on parse error, unreadable file, unknown
// device, or reasoner error.
const (
	exitOK = iota
	exitBadInput
	exitUnknownDevice
	exitReasonerError
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logger := diag.New()

	cfg, err := config.Parse(args)
	if err != nil {
		logger.Printf("%v", err)
		return exitBadInput
	}

	f, err := os.Open(cfg.InputFile)
	if err != nil {
		logger.Printf("opening input file: %v", err)
		return exitBadInput
	}
	defer f.Close()

	rt, err := selectRuntime(cfg.Device)
	if err != nil {
		logger.Printf("%v", err)
		return exitUnknownDevice
	}

	d, err := dict.New("")
	if err != nil {
		logger.Printf("creating dictionary: %v", err)
		return exitReasonerError
	}
	defer d.Close()

	vocab, err := reasoner.LoadVocab(d)
	if err != nil {
		logger.Printf("loading vocabulary: %v", err)
		return exitReasonerError
	}
	idx := reasoner.New(d, vocab)
	if cfg.NoGlobalDedup {
		idx.DisableGlobalDedup()
	}

	stopwatch := diag.NewStopwatch(os.Stderr)

	var parseErrCount int
	loadErr := stopwatch.Phase("parsing", func() error {
		tuples, err := rdfio.PullTurtle(f, func(err error) {
			parseErrCount++
			logger.Printf("%v", err)
		})
		if err != nil {
			return err
		}
		for tup := range tuples {
			if err := ingest(idx, d, tup); err != nil {
				return err
			}
		}
		return nil
	})
	if loadErr != nil {
		logger.Printf("loading input: %v", loadErr)
		return exitBadInput
	}

	if cfg.Axioms {
		if err := stopwatch.Phase("axioms", func() error {
			return idx.AddAxiomaticTriples(func(iri string) (dict.KeyId, error) {
				return d.Lookup(iri, nil)
			})
		}); err != nil {
			logger.Printf("injecting axiomatic triples: %v", err)
			return exitReasonerError
		}
	}

	ruleset := closure.RhoDF
	if cfg.Rules == "rdfs" {
		ruleset = closure.RDFS
	}

	closureErr := stopwatch.Phase("closure", func() error {
		return closure.Run(context.Background(), idx, rt, ruleset, !cfg.NoLocalDedup)
	})
	if closureErr != nil {
		logger.Printf("computing closure: %v", closureErr)
		return exitReasonerError
	}

	if cfg.Time {
		stopwatch.Report()
	}

	if cfg.PrintTriples {
		if err := printTriples(idx, d); err != nil {
			logger.Printf("writing triples: %v", err)
			return exitReasonerError
		}
	}

	return exitOK
}

// selectRuntime resolves --device to a kernel.Runtime. "gpu" is accepted by
// the flag parser but always fails here: no GPU Runtime ships in this
// module, since no OpenCL/CUDA binding is available to build one on.
func selectRuntime(device string) (kernel.Runtime, error) {
	switch device {
	case "cpu":
		return kernel.NewCPURuntime(), nil
	default:
		return nil, &kernel.KernelError{Kernel: device, Err: fmt.Errorf("unknown device %q: no runtime available", device)}
	}
}

// ingest inserts one parsed tuple into the dictionary and reasoner index,
// detecting rdf:_N container-membership predicates from the raw string
// before the predicate is looked up, per the parse-time design note in
// internal/reasoner.
func ingest(idx *reasoner.Index, d *dict.Dictionary, tup rdfio.Tuple) error {
	isMembership := reasoner.IsMembershipPredicate(tup.Predicate)

	s, err := d.Lookup(tup.Subject, tagModifierFor(tup.SubjectKind))
	if err != nil {
		return err
	}
	p, err := d.Lookup(tup.Predicate, nil)
	if err != nil {
		return err
	}
	o, err := d.Lookup(tup.Object, tagModifierFor(tup.ObjectKind))
	if err != nil {
		return err
	}

	_, err = idx.Add(tstore.Triple{Subject: s, Predicate: p, Object: o}, 0, isMembership)
	return err
}

func tagModifierFor(kind rdfio.TermKind) func(*dict.KeyId) {
	switch kind {
	case rdfio.KindBlank:
		return func(id *dict.KeyId) { *id |= dict.BlankBit }
	case rdfio.KindLiteral:
		return func(id *dict.KeyId) { *id |= dict.LiteralBit }
	default:
		return nil
	}
}

// printTriples writes every triple currently held across the three
// reasoner buckets — input plus everything entailed by the closure just
// computed — as N-Triples to stdout.
func printTriples(idx *reasoner.Index, d *dict.Dictionary) error {
	w := ntriples.NewWriter(os.Stdout, d)

	var writeErr error
	write := func(t tstore.Triple, _ tstore.Flags) bool {
		if writeErr = w.WriteTriple(t); writeErr != nil {
			return false
		}
		return true
	}

	idx.SchemaTriples.IterAll(write)
	if writeErr == nil {
		idx.TypeTriples.IterAll(write)
	}
	if writeErr == nil {
		idx.Triples.IterAll(write)
	}
	if writeErr != nil {
		return writeErr
	}
	return w.Close()
}
