// Package kernel abstracts the data-parallel backend the closure engine
// offloads its relational joins to. No OpenCL or CUDA binding is available
// to build one on, so the only Runtime shipped is a pure-host implementation
// built on golang.org/x/sync/errgroup; a future GPU backend would satisfy
// the same four-method contract (BuildProgram/Submit/ReadBuffer/
// PreferredWorkGroupSize)
// without the closure engine changing at all.
package kernel

import (
	"context"
	"fmt"
)

// Program is the result of building kernel source. The CPU runtime treats
// Source as an opaque kernel name ("join-count" / "join-materialize");
// a GPU runtime would compile it.
type Program struct {
	Source string
}

// JoinArgs is the argument set for one join-kernel invocation. Input is the
// instance-triple attribute being probed (predicates for rules 7, 2 and 3;
// the class objects of rdf:type triples for rule 9). Succ is the schema successor map
// for the relevant hierarchy.
type JoinArgs struct {
	Input []uint64
	Succ  map[uint64][]uint64

	// Counts/Offsets are populated by the "join-count" kernel and consumed
	// by the "join-materialize" kernel. The host performs the prefix-sum
	// between the two submissions.
	Counts  []int
	Offsets []int

	// DedupExisting, if non-nil, is probed during materialize to skip
	// entailed triples already present in the target store (keyed by
	// PairHash(A, B): the Companion1 value and the schema successor; C
	// never enters the key).
	DedupExisting map[uint64]struct{}
	PairHash      func(a, b uint64) uint64

	// Companion1 supplies, per input index, the first fixed attribute of
	// the entailed triple — the subject, for every rule using this join.
	Companion1 []uint64

	// Companion2, if non-nil, supplies a second fixed attribute — the
	// object, for rule 7 only (subPropertyOf inheritance), where the
	// schema successor becomes the entailed triple's *predicate* rather
	// than its object. When nil, the successor itself is the entailed
	// object and the fixed predicate is supplied by the caller outside the
	// kernel (rules 2, 3, 9 all entail rdf:type triples).
	Companion2 []uint64
}

// Emission is one row of join-materialize output. When the join's
// JoinArgs.Companion2 was nil, B is the entailed object and C is unused.
// When Companion2 was set (rule 7), B is the entailed predicate and C is
// the entailed object.
type Emission struct {
	A, B, C uint64
}

// Buffer is the output of a kernel submission. Only the fields relevant to
// the kernel that produced it are populated.
type Buffer struct {
	Counts    []int
	Offsets   []int
	Emissions []Emission
}

// KernelError reports a device (or, here, host worker-pool) build or
// execution failure. It is always fatal.
type KernelError struct {
	Kernel string
	Err    error
}

func (e *KernelError) Error() string {
	return fmt.Sprintf("kernel: %s: %v", e.Kernel, e.Err)
}

func (e *KernelError) Unwrap() error { return e.Err }

// Runtime is the host-visible contract the closure engine drives joins
// through. Submit blocks until the device (or, for CPURuntime, every
// work-group goroutine) reports completion: count and materialize are two
// separate barrier-synchronized submissions, never interleaved.
type Runtime interface {
	BuildProgram(ctx context.Context, source string) (Program, error)
	Submit(ctx context.Context, prog Program, args JoinArgs, globalSize, localSize int) (Buffer, error)
	ReadBuffer(buf Buffer) (Buffer, error)
	PreferredWorkGroupSize() int
}
