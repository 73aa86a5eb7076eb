package kernel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// CPURuntime is the pure-host Runtime backend: the "cpu" device named by
// grdfs's --device flag. It implements the same two-phase count/materialize
// join protocol a GPU backend would, just run across goroutines instead of
// work-items, so tests against it exercise the real join algorithm rather
// than a simplified stand-in.
type CPURuntime struct {
	workGroupSize int
}

// NewCPURuntime creates a CPURuntime whose preferred work-group size is
// derived from GOMAXPROCS, mirroring how a device reports its own preferred
// size for the host to round the global size up to a multiple of.
func NewCPURuntime() *CPURuntime {
	wg := runtime.GOMAXPROCS(0)
	if wg < 1 {
		wg = 1
	}
	return &CPURuntime{workGroupSize: wg}
}

func (r *CPURuntime) PreferredWorkGroupSize() int { return r.workGroupSize }

// BuildProgram on the CPU backend is a no-op validation: the only "kernels"
// it understands are join-count and join-materialize.
func (r *CPURuntime) BuildProgram(ctx context.Context, source string) (Program, error) {
	switch source {
	case "join-count", "join-materialize":
		return Program{Source: source}, nil
	default:
		return Program{}, &KernelError{Kernel: source, Err: errUnknownKernel}
	}
}

var errUnknownKernel = kernelErr("unknown kernel source")

type kernelErr string

func (e kernelErr) Error() string { return string(e) }

// Submit runs the given program's kernel across globalSize elements,
// partitioned into work-groups of at most localSize, as data-parallel
// goroutines under an errgroup.Group — the same fan-out primitive the
// example pack's own dgraph restore-mapper and erigon use for batched
// parallel work. Submit is itself the barrier: it does not return until
// every goroutine has completed.
func (r *CPURuntime) Submit(ctx context.Context, prog Program, args JoinArgs, globalSize, localSize int) (Buffer, error) {
	if localSize <= 0 {
		localSize = r.workGroupSize
	}

	switch prog.Source {
	case "join-count":
		return r.runCount(ctx, args, globalSize, localSize)
	case "join-materialize":
		return r.runMaterialize(ctx, args, globalSize, localSize)
	default:
		return Buffer{}, &KernelError{Kernel: prog.Source, Err: errUnknownKernel}
	}
}

// ReadBuffer is a no-op passthrough on the CPU backend: output already lives
// in host memory. A GPU runtime would copy device memory back here.
func (r *CPURuntime) ReadBuffer(buf Buffer) (Buffer, error) { return buf, nil }

// runCount is Phase A: for each input element, count how many schema
// successors it has (0 if the element has no entry in Succ at all).
func (r *CPURuntime) runCount(ctx context.Context, args JoinArgs, globalSize, localSize int) (Buffer, error) {
	counts := make([]int, globalSize)

	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < globalSize; lo += localSize {
		lo := lo
		hi := lo + localSize
		if hi > globalSize {
			hi = globalSize
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			for i := lo; i < hi; i++ {
				if succ, ok := args.Succ[args.Input[i]]; ok {
					counts[i] = len(succ)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Buffer{}, &KernelError{Kernel: "join-count", Err: err}
	}

	offsets := make([]int, globalSize)
	total := 0
	for i, c := range counts {
		offsets[i] = total
		total += c
	}

	return Buffer{Counts: counts, Offsets: offsets}, nil
}

// runMaterialize is Phase B: for each (input index, local successor index)
// pair implied by the scan produced in Phase A, emit the entailed triple's
// varying attributes, optionally skipping ones already present in the dedup
// hash table. When args.Companion2 is set (rule 7), the successor becomes
// Emission.B (the entailed predicate) and Companion2[i] supplies Emission.C
// (the entailed object); otherwise the successor is Emission.B alone (the
// entailed object, under a predicate fixed by the caller) and C is zero.
func (r *CPURuntime) runMaterialize(ctx context.Context, args JoinArgs, globalSize, localSize int) (Buffer, error) {
	numGroups := 0
	if len(args.Input) > 0 {
		numGroups = (len(args.Input) + localSize - 1) / localSize
	}
	// Each work-group writes only to its own slot, so concurrent writers
	// never touch the same element of perGroup — safe without locking.
	perGroup := make([][]Emission, numGroups)

	g, gctx := errgroup.WithContext(ctx)
	for groupIdx, lo := 0, 0; lo < len(args.Input); groupIdx, lo = groupIdx+1, lo+localSize {
		groupIdx, lo := groupIdx, lo
		hi := lo + localSize
		if hi > len(args.Input) {
			hi = len(args.Input)
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			var local []Emission
			for i := lo; i < hi; i++ {
				succ, ok := args.Succ[args.Input[i]]
				if !ok {
					continue
				}
				companion1 := args.Companion1[i]
				var companion2 uint64
				if args.Companion2 != nil {
					companion2 = args.Companion2[i]
				}
				for _, s := range succ {
					if args.DedupExisting != nil && args.PairHash != nil {
						h := args.PairHash(companion1, s)
						if _, exists := args.DedupExisting[h]; exists {
							continue
						}
					}
					local = append(local, Emission{A: companion1, B: s, C: companion2})
				}
			}
			perGroup[groupIdx] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Buffer{}, &KernelError{Kernel: "join-materialize", Err: err}
	}

	total := 0
	for _, grp := range perGroup {
		total += len(grp)
	}
	emissions := make([]Emission, 0, total)
	for _, grp := range perGroup {
		emissions = append(emissions, grp...)
	}

	return Buffer{Emissions: emissions}, nil
}
