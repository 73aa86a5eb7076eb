// Package closure computes RDFS entailment closure: the
// inverse-topological transitive closure over the subClassOf/subPropertyOf
// hierarchies, and the rule 7/2/3/9 (plus, for full RDFS, 1/4a/4b/6/8/10/
// 12/13) materialization passes that ride on top of it. Every join that can
// be expressed as "does this instance triple's varying attribute have a
// schema successor" is driven through a kernel.Runtime rather than walked
// in a plain host loop, so the same code path exercises CPURuntime today
// and a GPU backend unchanged tomorrow.
package closure

import (
	"context"
	"fmt"

	"github.com/0xfeedface/grdfs/internal/dict"
	"github.com/0xfeedface/grdfs/internal/kernel"
	"github.com/0xfeedface/grdfs/internal/reasoner"
	"github.com/0xfeedface/grdfs/internal/tstore"
	"github.com/RoaringBitmap/roaring/roaring64"
)

// RuleSet selects how much of RDFS entailment Run computes.
type RuleSet int

const (
	// RhoDF computes only rules 2, 3, 5, 7, 9, 11 — the "minimal RDFS"
	// fragment.
	RhoDF RuleSet = iota
	// RDFS computes RhoDF plus rules 1, 4a, 4b, 6, 8, 10, 12, 13.
	RDFS
)

// CycleError reports that a subClassOf or subPropertyOf hierarchy is not a
// DAG, so its transitive closure cannot be computed by the worklist
// algorithm this engine uses.
type CycleError struct {
	Property string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("closure: %s hierarchy contains a cycle, cannot compute transitive closure", e.Property)
}

// joinKernel names, matching internal/kernel.CPURuntime's switch.
const (
	kernelCount       = "join-count"
	kernelMaterialize = "join-materialize"
)

// Run drives the full closure computation over idx using rt for every
// instance/schema join, per the ruleset selected. localDedup enables the
// join-output-time dedup-against-existing-store optimization in Phase B
// (--no-local-dedup disables it); it never changes the final triple set,
// since Index.Add's own fingerprint check always catches duplicates —
// disabling it only means more candidate emissions reach Add before being
// rejected there.
func Run(ctx context.Context, idx *reasoner.Index, rt kernel.Runtime, rules RuleSet, localDedup bool) error {
	if idx.SubPropertyOf.Terms.GetCardinality() > 0 {
		for {
			if err := transitiveClose(idx, idx.SubPropertyOf, idx.Vocab.SubPropertyOf, "subPropertyOf"); err != nil {
				return err
			}
			n, err := joinRule7(ctx, idx, rt, localDedup)
			if err != nil {
				return err
			}
			if n == 0 {
				break
			}
		}
	}

	if len(idx.Domain) > 0 && idx.Triples.Size() > 0 {
		if err := joinRule2(ctx, idx, rt, localDedup); err != nil {
			return err
		}
	}

	if len(idx.Range) > 0 && idx.Triples.Size() > 0 {
		if err := joinRule3(ctx, idx, rt, localDedup); err != nil {
			return err
		}
	}

	if idx.SubClassOf.Terms.GetCardinality() > 0 {
		if err := transitiveClose(idx, idx.SubClassOf, idx.Vocab.SubClassOf, "subClassOf"); err != nil {
			return err
		}
	}

	if idx.SubClassOf.Terms.GetCardinality() > 0 && idx.TypeTriples.Size() > 0 {
		if err := joinRule9(ctx, idx, rt, localDedup); err != nil {
			return err
		}
	}

	if rules == RDFS {
		if err := applyRuleset146(idx); err != nil {
			return err
		}

		newSubProperty, err := applyRuleset8101213(idx)
		if err != nil {
			return err
		}
		if newSubProperty && idx.Triples.Size() > 0 {
			if _, err := joinRule7(ctx, idx, rt, localDedup); err != nil {
				return err
			}
		}
	}

	return nil
}

// transitiveClose computes the transitive closure of adj's successor map
// in place, seeding a FIFO worklist with leaf nodes (predecessor-only
// terms) and merging a node's children's children into its own successor
// set as each parent is popped; a node whose successor set grows puts its
// parents back on the worklist so they merge the larger set — the
// inverse-topological sweep
// NativeReasoner's computeClosure_InverseTopological performs, expressed
// over roaring64 bitmaps instead of pointer-keyed sets. Once the worklist
// converges, every (node, property, successor) pair is materialized into
// idx.SchemaTriples as an Entailed triple, mirroring OpenCLReasoner's own
// post-closure walk over successorMap that calls addTriple for each pair.
func transitiveClose(idx *reasoner.Index, adj *reasoner.Adjacency, propertyId dict.KeyId, property string) error {
	var queue []dict.KeyId
	finished := roaring64.New()

	for node := range adj.Predecessors {
		if _, hasChildren := adj.Successors[node]; !hasChildren {
			queue = append(queue, node)
		}
	}
	if len(queue) == 0 {
		return &CycleError{Property: property}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		changed := false
		if children, ok := adj.Successors[current]; ok {
			before := children.GetCardinality()
			// Snapshot before mutating: Successors[current] may equal children
			// itself, and growing it while ranging its own iterator is unsafe.
			snapshot := children.Clone()
			it := snapshot.Iterator()
			for it.HasNext() {
				child := dict.KeyId(it.Next())
				if grandchildren, ok := adj.Successors[child]; ok {
					adj.Successors[current].Or(grandchildren)
				}
			}
			changed = adj.Successors[current].GetCardinality() != before
		}

		if parents, ok := adj.Predecessors[current]; ok {
			it := parents.Iterator()
			for it.HasNext() {
				parent := dict.KeyId(it.Next())
				if changed || !finished.Contains(uint64(parent)) {
					queue = append(queue, parent)
					finished.Add(uint64(parent))
				}
			}
		}
	}

	for node, successors := range adj.Successors {
		it := successors.Iterator()
		for it.HasNext() {
			successor := dict.KeyId(it.Next())
			t := tstore.Triple{Subject: node, Predicate: propertyId, Object: successor}
			if _, err := idx.Add(t, tstore.Entailed, false); err != nil {
				return err
			}
		}
	}
	return nil
}

// dedupHash builds the fingerprint set a kernel join consults to skip
// entailed triples already present in target, plus the hash function it
// uses, both shared with tstore's own fingerprinting scheme so a dedup hit
// here really does mean tstore would have rejected the Add too. It only
// supports a fixed predicate: rules 2, 3 and 9 all entail rdf:type triples,
// so (subject, class) fully determines the candidate triple.
func dedupHash(target *tstore.Store, predicate dict.KeyId) (map[uint64]struct{}, func(a, b uint64) uint64) {
	existing := make(map[uint64]struct{}, target.Size())
	hashOf := func(a, b uint64) uint64 {
		t := tstore.Triple{Subject: dict.KeyId(a), Predicate: predicate, Object: dict.KeyId(b)}
		return tstore.HashTriple(t)
	}
	target.IterAll(func(t tstore.Triple, _ tstore.Flags) bool {
		existing[tstore.HashTriple(t)] = struct{}{}
		return true
	})
	return existing, hashOf
}

// successorsFromBitmaps converts a KeyId -> *roaring64.Bitmap map into the
// map[uint64][]uint64 shape kernel.JoinArgs.Succ expects.
func successorsFromBitmaps(m map[dict.KeyId]*roaring64.Bitmap) map[uint64][]uint64 {
	out := make(map[uint64][]uint64, len(m))
	for k, bm := range m {
		if bm.GetCardinality() == 0 {
			continue
		}
		vals := make([]uint64, 0, bm.GetCardinality())
		it := bm.Iterator()
		for it.HasNext() {
			vals = append(vals, it.Next())
		}
		out[uint64(k)] = vals
	}
	return out
}

// runJoin executes the count/materialize two-phase join protocol over succ,
// with input the attribute being probed and companion1 (plus optionally
// companion2) supplying the fixed attributes of the entailed triple.
func runJoin(ctx context.Context, rt kernel.Runtime, input []dict.KeyId, succ map[dict.KeyId]*roaring64.Bitmap, companion1 []dict.KeyId, companion2 []dict.KeyId, dedup map[uint64]struct{}, pairHash func(a, b uint64) uint64) ([]kernel.Emission, error) {
	if len(input) == 0 {
		return nil, nil
	}

	countProg, err := rt.BuildProgram(ctx, kernelCount)
	if err != nil {
		return nil, err
	}
	matProg, err := rt.BuildProgram(ctx, kernelMaterialize)
	if err != nil {
		return nil, err
	}

	rawInput := make([]uint64, len(input))
	for i, k := range input {
		rawInput[i] = uint64(k)
	}
	rawCompanion1 := make([]uint64, len(companion1))
	for i, k := range companion1 {
		rawCompanion1[i] = uint64(k)
	}
	var rawCompanion2 []uint64
	if companion2 != nil {
		rawCompanion2 = make([]uint64, len(companion2))
		for i, k := range companion2 {
			rawCompanion2[i] = uint64(k)
		}
	}

	rawSucc := successorsFromBitmaps(succ)
	globalSize := len(rawInput)
	localSize := rt.PreferredWorkGroupSize()

	args := kernel.JoinArgs{
		Input:      rawInput,
		Succ:       rawSucc,
		Companion1: rawCompanion1,
		Companion2: rawCompanion2,

		DedupExisting: dedup,
		PairHash:      pairHash,
	}

	countBuf, err := rt.Submit(ctx, countProg, args, globalSize, localSize)
	if err != nil {
		return nil, err
	}
	args.Counts, args.Offsets = countBuf.Counts, countBuf.Offsets

	matBuf, err := rt.Submit(ctx, matProg, args, globalSize, localSize)
	if err != nil {
		return nil, err
	}
	matBuf, err = rt.ReadBuffer(matBuf)
	if err != nil {
		return nil, err
	}
	return matBuf.Emissions, nil
}

// joinRule7 fires rule 7 (subPropertyOf inheritance): for every plain triple
// (s, p, o) whose predicate p has subPropertyOf successors, entail
// (s, p', o) for each successor p'. It returns the number of newly entailed,
// non-duplicate triples, driving the rule-5/rule-7 fixpoint loop in Run.
// joinRule7 does not use the local dedup hash: its emitted triple varies
// across all three of subject, predicate and object, but PairHash (shared
// with rules 2/3/9) only ever hashes two columns, so a hit there cannot
// distinguish two candidate objects under the same (subject, successor)
// pair. Running it would wrongly drop the second, still-novel, object.
func joinRule7(ctx context.Context, idx *reasoner.Index, rt kernel.Runtime, _ bool) (int, error) {
	predicates := idx.Triples.Predicates()
	subjects := idx.Triples.Subjects()
	objects := idx.Triples.Objects()

	emissions, err := runJoin(ctx, rt, predicates, idx.SubPropertyOf.Successors, subjects, objects, nil, nil)
	if err != nil {
		return 0, err
	}

	entailed := 0
	for _, e := range emissions {
		t := tstore.Triple{Subject: dict.KeyId(e.A), Predicate: dict.KeyId(e.B), Object: dict.KeyId(e.C)}
		novel := !idx.Triples.Has(t) && !idx.TypeTriples.Has(t) && !idx.SchemaTriples.Has(t)
		ok, err := idx.Add(t, tstore.Entailed, false)
		if err != nil {
			return entailed, err
		}
		if ok && novel {
			entailed++
		}
	}
	return entailed, nil
}

// joinRule2 fires rule 2 (domain expansion): for every plain triple (s, p, o)
// whose predicate p has an rdfs:domain class, entail (s, rdf:type, class).
func joinRule2(ctx context.Context, idx *reasoner.Index, rt kernel.Runtime, localDedup bool) error {
	predicates := idx.Triples.Predicates()
	subjects := idx.Triples.Subjects()

	var dedup map[uint64]struct{}
	var pairHash func(a, b uint64) uint64
	if localDedup {
		dedup, pairHash = dedupHash(idx.TypeTriples, idx.Vocab.RDFType)
	}

	emissions, err := runJoin(ctx, rt, predicates, idx.Domain, subjects, nil, dedup, pairHash)
	if err != nil {
		return err
	}
	return materializeType(idx, emissions)
}

// joinRule3 fires rule 3 (range expansion): for every plain triple (s, p, o)
// whose predicate p has an rdfs:range class and whose object is not a
// literal, entail (o, rdf:type, class).
func joinRule3(ctx context.Context, idx *reasoner.Index, rt kernel.Runtime, localDedup bool) error {
	predicates := idx.Triples.Predicates()
	objects := idx.Triples.Objects()

	// Rule 3 never applies to triples with a literal object (literals
	// cannot be rdfs:range-inferred class members): filter the join input
	// down to the non-literal subset before probing the schema.
	filteredPredicates := make([]dict.KeyId, 0, len(predicates))
	filteredObjects := make([]dict.KeyId, 0, len(objects))
	for i, o := range objects {
		if o.IsLiteral() {
			continue
		}
		filteredPredicates = append(filteredPredicates, predicates[i])
		filteredObjects = append(filteredObjects, o)
	}

	var dedup map[uint64]struct{}
	var pairHash func(a, b uint64) uint64
	if localDedup {
		dedup, pairHash = dedupHash(idx.TypeTriples, idx.Vocab.RDFType)
	}

	emissions, err := runJoin(ctx, rt, filteredPredicates, idx.Range, filteredObjects, nil, dedup, pairHash)
	if err != nil {
		return err
	}
	return materializeType(idx, emissions)
}

// joinRule9 fires rule 9 (subClassOf inheritance): for every rdf:type
// triple (s, rdf:type, c) whose class c has subClassOf successors, entail
// (s, rdf:type, c') for each successor c'.
func joinRule9(ctx context.Context, idx *reasoner.Index, rt kernel.Runtime, localDedup bool) error {
	objects := idx.TypeTriples.Objects()
	subjects := idx.TypeTriples.Subjects()

	var dedup map[uint64]struct{}
	var pairHash func(a, b uint64) uint64
	if localDedup {
		dedup, pairHash = dedupHash(idx.TypeTriples, idx.Vocab.RDFType)
	}

	emissions, err := runJoin(ctx, rt, objects, idx.SubClassOf.Successors, subjects, nil, dedup, pairHash)
	if err != nil {
		return err
	}
	return materializeType(idx, emissions)
}

// materializeType adds (A, rdf:type, B) for every emission — the shape
// shared by rules 2, 3 and 9, whose entailed predicate is always rdf:type.
func materializeType(idx *reasoner.Index, emissions []kernel.Emission) error {
	for _, e := range emissions {
		t := tstore.Triple{Subject: dict.KeyId(e.A), Predicate: idx.Vocab.RDFType, Object: dict.KeyId(e.B)}
		if _, err := idx.Add(t, tstore.Entailed, false); err != nil {
			return err
		}
	}
	return nil
}

// applyRuleset146 fires RDF rule 1 and RDFS rules 4a/4b/6 over every plain
// (non-type, non-schema) triple: every subject and non-literal object is a
// resource, every predicate is a property and is (reflexively)
// subPropertyOf itself.
func applyRuleset146(idx *reasoner.Index) error {
	if idx.Triples.Size() == 0 {
		return nil
	}
	n := idx.Triples.Size()
	subjects, predicates, objects := idx.Triples.Subjects(), idx.Triples.Predicates(), idx.Triples.Objects()
	for i := 0; i < n; i++ {
		s, p, o := subjects[i], predicates[i], objects[i]
		if _, err := idx.Add(tstore.Triple{Subject: s, Predicate: idx.Vocab.RDFType, Object: idx.Vocab.Resource}, tstore.Entailed, false); err != nil {
			return err
		}
		if _, err := idx.Add(tstore.Triple{Subject: p, Predicate: idx.Vocab.RDFType, Object: idx.Vocab.Property}, tstore.Entailed, false); err != nil {
			return err
		}
		if _, err := idx.Add(tstore.Triple{Subject: p, Predicate: idx.Vocab.SubPropertyOf, Object: p}, tstore.Entailed, false); err != nil {
			return err
		}
		if !o.IsLiteral() {
			if _, err := idx.Add(tstore.Triple{Subject: o, Predicate: idx.Vocab.RDFType, Object: idx.Vocab.Resource}, tstore.Entailed, false); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyRuleset8101213 fires RDFS rules 8, 10, 12, 13 over every rdf:type
// triple: rdfs:Class members are subClassOf rdfs:Resource and themselves
// (rule 8/10), rdfs:ContainerMembershipProperty members are subPropertyOf
// rdfs:member (rule 12), and rdfs:Datatype members are subClassOf
// rdfs:Literal (rule 13). It reports whether any new subPropertyOf triple
// was entailed, which forces a rule-7 re-run in Run.
func applyRuleset8101213(idx *reasoner.Index) (bool, error) {
	if idx.TypeTriples.Size() == 0 {
		return false, nil
	}
	n := idx.TypeTriples.Size()
	subjects, objects := idx.TypeTriples.Subjects(), idx.TypeTriples.Objects()
	newSubProperty := false

	for i := 0; i < n; i++ {
		s, o := subjects[i], objects[i]
		switch o {
		case idx.Vocab.Class:
			if _, err := idx.Add(tstore.Triple{Subject: s, Predicate: idx.Vocab.SubClassOf, Object: idx.Vocab.Resource}, tstore.Entailed, false); err != nil {
				return newSubProperty, err
			}
			if _, err := idx.Add(tstore.Triple{Subject: s, Predicate: idx.Vocab.SubClassOf, Object: s}, tstore.Entailed, false); err != nil {
				return newSubProperty, err
			}
		case idx.Vocab.ContainerMembershipProp:
			ok, err := idx.Add(tstore.Triple{Subject: s, Predicate: idx.Vocab.SubPropertyOf, Object: idx.Vocab.Member}, tstore.Entailed, false)
			if err != nil {
				return newSubProperty, err
			}
			if ok {
				newSubProperty = true
			}
		case idx.Vocab.Datatype:
			if _, err := idx.Add(tstore.Triple{Subject: s, Predicate: idx.Vocab.SubClassOf, Object: idx.Vocab.Literal}, tstore.Entailed, false); err != nil {
				return newSubProperty, err
			}
		}
	}
	return newSubProperty, nil
}
