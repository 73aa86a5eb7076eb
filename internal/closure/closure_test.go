package closure

import (
	"context"
	"testing"

	"github.com/0xfeedface/grdfs/internal/dict"
	"github.com/0xfeedface/grdfs/internal/kernel"
	"github.com/0xfeedface/grdfs/internal/reasoner"
	"github.com/0xfeedface/grdfs/internal/tstore"
)

func newTestIndex(t *testing.T) (*reasoner.Index, *dict.Dictionary) {
	t.Helper()
	d, err := dict.New("")
	if err != nil {
		t.Fatalf("dict.New failed: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	v, err := reasoner.LoadVocab(d)
	if err != nil {
		t.Fatalf("LoadVocab failed: %v", err)
	}
	return reasoner.New(d, v), d
}

func TestTransitiveCloseChain(t *testing.T) {
	idx, d := newTestIndex(t)

	a, _ := d.Lookup("http://example.org/A", nil)
	b, _ := d.Lookup("http://example.org/B", nil)
	c, _ := d.Lookup("http://example.org/C", nil)

	// A subClassOf B, B subClassOf C.
	mustAdd(t, idx, tstore.Triple{Subject: a, Predicate: idx.Vocab.SubClassOf, Object: b})
	mustAdd(t, idx, tstore.Triple{Subject: b, Predicate: idx.Vocab.SubClassOf, Object: c})

	if err := transitiveClose(idx, idx.SubClassOf, idx.Vocab.SubClassOf, "subClassOf"); err != nil {
		t.Fatalf("transitiveClose failed: %v", err)
	}

	succ := idx.SubClassOf.Successors[a]
	if succ == nil || !succ.Contains(uint64(c)) {
		t.Fatalf("expected A's closed successors to include C (transitively), got %v", succ)
	}

	if !idx.SchemaTriples.Has(tstore.Triple{Subject: a, Predicate: idx.Vocab.SubClassOf, Object: c}) {
		t.Fatalf("expected transitiveClose to materialize (A, subClassOf, C) into SchemaTriples")
	}

	total := idx.SchemaTriples.Size() + idx.TypeTriples.Size() + idx.Triples.Size()
	if total != 3 {
		t.Fatalf("expected 3 schema triples total (2 input + 1 entailed), got %d", total)
	}
}

func TestTransitiveCloseMaterializesScenario3CombinedSubClassAndType(t *testing.T) {
	idx, d := newTestIndex(t)
	rt := kernel.NewCPURuntime()

	a, _ := d.Lookup("http://example.org/A", nil)
	b, _ := d.Lookup("http://example.org/B", nil)
	c, _ := d.Lookup("http://example.org/C", nil)
	x, _ := d.Lookup("http://example.org/x", nil)

	mustAdd(t, idx, tstore.Triple{Subject: a, Predicate: idx.Vocab.SubClassOf, Object: b})
	mustAdd(t, idx, tstore.Triple{Subject: b, Predicate: idx.Vocab.SubClassOf, Object: c})
	mustAdd(t, idx, tstore.Triple{Subject: x, Predicate: idx.Vocab.RDFType, Object: a})

	if err := Run(context.Background(), idx, rt, RhoDF, true); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !idx.SchemaTriples.Has(tstore.Triple{Subject: a, Predicate: idx.Vocab.SubClassOf, Object: c}) {
		t.Fatalf("expected (A, subClassOf, C) to be materialized")
	}
	if !idx.TypeTriples.Has(tstore.Triple{Subject: x, Predicate: idx.Vocab.RDFType, Object: a}) {
		t.Fatalf("expected (x, type, A) present")
	}
	if !idx.TypeTriples.Has(tstore.Triple{Subject: x, Predicate: idx.Vocab.RDFType, Object: b}) {
		t.Fatalf("expected (x, type, B) present")
	}
	if !idx.TypeTriples.Has(tstore.Triple{Subject: x, Predicate: idx.Vocab.RDFType, Object: c}) {
		t.Fatalf("expected (x, type, C) present")
	}

	total := idx.SchemaTriples.Size() + idx.TypeTriples.Size() + idx.Triples.Size()
	if total != 6 {
		t.Fatalf("expected store size 6 per scenario 3, got %d", total)
	}
}

func TestTransitiveCloseDetectsCycle(t *testing.T) {
	idx, d := newTestIndex(t)

	a, _ := d.Lookup("http://example.org/A", nil)
	b, _ := d.Lookup("http://example.org/B", nil)

	mustAdd(t, idx, tstore.Triple{Subject: a, Predicate: idx.Vocab.SubClassOf, Object: b})
	mustAdd(t, idx, tstore.Triple{Subject: b, Predicate: idx.Vocab.SubClassOf, Object: a})

	err := transitiveClose(idx, idx.SubClassOf, idx.Vocab.SubClassOf, "subClassOf")
	if err == nil {
		t.Fatalf("expected a CycleError for a 2-cycle")
	}
	var cycleErr *CycleError
	if !asCycleError(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %T: %v", err, err)
	}
}

func asCycleError(err error, target **CycleError) bool {
	ce, ok := err.(*CycleError)
	if ok {
		*target = ce
	}
	return ok
}

func mustAdd(t *testing.T, idx *reasoner.Index, tr tstore.Triple) {
	t.Helper()
	if _, err := idx.Add(tr, 0, false); err != nil {
		t.Fatalf("Add(%+v) failed: %v", tr, err)
	}
}

func TestRunRhoDFEntailsRule9SubClassInheritance(t *testing.T) {
	idx, d := newTestIndex(t)
	rt := kernel.NewCPURuntime()

	dog, _ := d.Lookup("http://example.org/Dog", nil)
	animal, _ := d.Lookup("http://example.org/Animal", nil)
	fido, _ := d.Lookup("http://example.org/fido", nil)

	mustAdd(t, idx, tstore.Triple{Subject: dog, Predicate: idx.Vocab.SubClassOf, Object: animal})
	mustAdd(t, idx, tstore.Triple{Subject: fido, Predicate: idx.Vocab.RDFType, Object: dog})

	if err := Run(context.Background(), idx, rt, RhoDF, true); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !idx.TypeTriples.Has(tstore.Triple{Subject: fido, Predicate: idx.Vocab.RDFType, Object: animal}) {
		t.Fatalf("expected rule 9 to entail (fido, type, Animal)")
	}
}

func TestRunRhoDFEntailsRule7SubPropertyInheritance(t *testing.T) {
	idx, d := newTestIndex(t)
	rt := kernel.NewCPURuntime()

	ownsPet, _ := d.Lookup("http://example.org/ownsPet", nil)
	owns, _ := d.Lookup("http://example.org/owns", nil)
	alice, _ := d.Lookup("http://example.org/alice", nil)
	fido, _ := d.Lookup("http://example.org/fido", nil)

	mustAdd(t, idx, tstore.Triple{Subject: ownsPet, Predicate: idx.Vocab.SubPropertyOf, Object: owns})
	mustAdd(t, idx, tstore.Triple{Subject: alice, Predicate: ownsPet, Object: fido})

	if err := Run(context.Background(), idx, rt, RhoDF, true); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !idx.Triples.Has(tstore.Triple{Subject: alice, Predicate: owns, Object: fido}) {
		t.Fatalf("expected rule 7 to entail (alice, owns, fido)")
	}
}

func TestRunRhoDFEntailsRule2DomainExpansion(t *testing.T) {
	idx, d := newTestIndex(t)
	rt := kernel.NewCPURuntime()

	owns, _ := d.Lookup("http://example.org/owns", nil)
	person, _ := d.Lookup("http://example.org/Person", nil)
	alice, _ := d.Lookup("http://example.org/alice", nil)
	fido, _ := d.Lookup("http://example.org/fido", nil)

	mustAdd(t, idx, tstore.Triple{Subject: owns, Predicate: idx.Vocab.Domain, Object: person})
	mustAdd(t, idx, tstore.Triple{Subject: alice, Predicate: owns, Object: fido})

	if err := Run(context.Background(), idx, rt, RhoDF, true); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !idx.TypeTriples.Has(tstore.Triple{Subject: alice, Predicate: idx.Vocab.RDFType, Object: person}) {
		t.Fatalf("expected rule 2 to entail (alice, type, Person)")
	}
}

func TestRunRhoDFRule3SkipsLiteralObjects(t *testing.T) {
	idx, d := newTestIndex(t)
	rt := kernel.NewCPURuntime()

	hasName, _ := d.Lookup("http://example.org/hasName", nil)
	str, _ := d.Lookup("http://example.org/String", nil)
	fido, _ := d.Lookup("http://example.org/fido", nil)
	lit, _ := d.Lookup(`"Fido"`, func(id *dict.KeyId) { *id |= dict.LiteralBit })

	mustAdd(t, idx, tstore.Triple{Subject: hasName, Predicate: idx.Vocab.Range, Object: str})
	mustAdd(t, idx, tstore.Triple{Subject: fido, Predicate: hasName, Object: lit})

	if err := Run(context.Background(), idx, rt, RhoDF, true); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if idx.TypeTriples.Has(tstore.Triple{Subject: lit, Predicate: idx.Vocab.RDFType, Object: str}) {
		t.Fatalf("rule 3 must not fire a type entailment on a literal object")
	}
}

func TestRunFullRDFSRule12TriggersRule7Rerun(t *testing.T) {
	idx, d := newTestIndex(t)
	rt := kernel.NewCPURuntime()

	// A container-membership property declared via rdf:type, with no
	// subPropertyOf triple in the input: rule 12 must derive
	// (p, subPropertyOf, rdfs:member) and the engine must re-run rule 7
	// so that derivation actually propagates to instance data.
	p, _ := d.Lookup("http://www.w3.org/1999/02/22-rdf-syntax-ns#_1", nil)
	s, _ := d.Lookup("http://example.org/bag1", nil)
	o, _ := d.Lookup("http://example.org/item1", nil)

	mustAdd(t, idx, tstore.Triple{Subject: p, Predicate: idx.Vocab.RDFType, Object: idx.Vocab.ContainerMembershipProp})
	mustAdd(t, idx, tstore.Triple{Subject: s, Predicate: p, Object: o})

	if err := Run(context.Background(), idx, rt, RDFS, true); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !idx.SchemaTriples.Has(tstore.Triple{Subject: p, Predicate: idx.Vocab.SubPropertyOf, Object: idx.Vocab.Member}) {
		t.Fatalf("expected rule 12 to entail (p, subPropertyOf, rdfs:member)")
	}
	if !idx.Triples.Has(tstore.Triple{Subject: s, Predicate: idx.Vocab.Member, Object: o}) {
		t.Fatalf("expected the rule-7 re-run to entail (s, rdfs:member, o)")
	}
}

func TestRunNoopOnEmptyIndex(t *testing.T) {
	idx, _ := newTestIndex(t)
	rt := kernel.NewCPURuntime()

	if err := Run(context.Background(), idx, rt, RhoDF, true); err != nil {
		t.Fatalf("Run on an empty index should be a no-op, got: %v", err)
	}
	if idx.Triples.Size() != 0 || idx.TypeTriples.Size() != 0 || idx.SchemaTriples.Size() != 0 {
		t.Fatalf("expected no triples to materialize from an empty index")
	}
}
