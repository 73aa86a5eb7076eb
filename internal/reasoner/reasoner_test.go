package reasoner

import (
	"testing"

	"github.com/0xfeedface/grdfs/internal/dict"
	"github.com/0xfeedface/grdfs/internal/tstore"
)

func newTestIndex(t *testing.T) (*Index, *dict.Dictionary) {
	t.Helper()
	d, err := dict.New("")
	if err != nil {
		t.Fatalf("dict.New failed: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	v, err := LoadVocab(d)
	if err != nil {
		t.Fatalf("LoadVocab failed: %v", err)
	}
	return New(d, v), d
}

func TestAddBucketsSchemaTriples(t *testing.T) {
	idx, d := newTestIndex(t)

	a, _ := d.Lookup("http://example.org/Dog", nil)
	b, _ := d.Lookup("http://example.org/Animal", nil)

	ok, err := idx.Add(tstore.Triple{Subject: a, Predicate: idx.Vocab.SubClassOf, Object: b}, 0, false)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected first Add to succeed")
	}
	if idx.SchemaTriples.Size() != 1 {
		t.Fatalf("expected the triple in SchemaTriples, got size %d", idx.SchemaTriples.Size())
	}
	if idx.TypeTriples.Size() != 0 || idx.Triples.Size() != 0 {
		t.Fatalf("subClassOf triple leaked into the wrong bucket")
	}

	succ := idx.SubClassOf.Successors[a]
	if succ == nil || !succ.Contains(uint64(b)) {
		t.Fatalf("expected subClassOf adjacency edge %d -> %d", a, b)
	}
}

func TestAddBucketsTypeTriples(t *testing.T) {
	idx, d := newTestIndex(t)

	a, _ := d.Lookup("http://example.org/fido", nil)
	b, _ := d.Lookup("http://example.org/Dog", nil)

	ok, err := idx.Add(tstore.Triple{Subject: a, Predicate: idx.Vocab.RDFType, Object: b}, 0, false)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected Add to succeed")
	}
	if idx.TypeTriples.Size() != 1 {
		t.Fatalf("expected the triple in TypeTriples, got size %d", idx.TypeTriples.Size())
	}
}

func TestAddBucketsGeneralTriples(t *testing.T) {
	idx, d := newTestIndex(t)

	a, _ := d.Lookup("http://example.org/fido", nil)
	p, _ := d.Lookup("http://example.org/name", nil)
	o, _ := d.Lookup(`"Fido"`, nil)

	ok, err := idx.Add(tstore.Triple{Subject: a, Predicate: p, Object: o}, 0, false)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected Add to succeed")
	}
	if idx.Triples.Size() != 1 {
		t.Fatalf("expected the triple in Triples, got size %d", idx.Triples.Size())
	}
}

func TestAddRejectsDuplicateAndTracksStats(t *testing.T) {
	idx, d := newTestIndex(t)

	a, _ := d.Lookup("http://example.org/a", nil)
	b, _ := d.Lookup("http://example.org/b", nil)
	tr := tstore.Triple{Subject: a, Predicate: idx.Vocab.RDFType, Object: b}

	if _, err := idx.Add(tr, tstore.Entailed, false); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}
	ok, err := idx.Add(tr, tstore.Entailed, false)
	if err != nil {
		t.Fatalf("second Add failed: %v", err)
	}
	if ok {
		t.Fatalf("expected the duplicate Add to be rejected")
	}
	if idx.Stats.InferredTriples != 1 {
		t.Fatalf("InferredTriples = %d, want 1", idx.Stats.InferredTriples)
	}
	if idx.Stats.InferredDuplicates != 1 {
		t.Fatalf("InferredDuplicates = %d, want 1", idx.Stats.InferredDuplicates)
	}
}

func TestDisableGlobalDedupAllowsDuplicates(t *testing.T) {
	idx, d := newTestIndex(t)
	idx.DisableGlobalDedup()

	a, _ := d.Lookup("http://example.org/a", nil)
	b, _ := d.Lookup("http://example.org/b", nil)
	tr := tstore.Triple{Subject: a, Predicate: idx.Vocab.RDFType, Object: b}

	if _, err := idx.Add(tr, 0, false); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}
	ok, err := idx.Add(tr, 0, false)
	if err != nil {
		t.Fatalf("second Add failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected the duplicate Add to succeed with global dedup disabled")
	}
	if idx.TypeTriples.Size() != 2 {
		t.Fatalf("TypeTriples.Size() = %d, want 2", idx.TypeTriples.Size())
	}
}

func TestIsMembershipPredicateMatchesContainerPattern(t *testing.T) {
	cases := map[string]bool{
		"http://www.w3.org/1999/02/22-rdf-syntax-ns#_1":   true,
		"http://www.w3.org/1999/02/22-rdf-syntax-ns#_42":  true,
		"http://www.w3.org/1999/02/22-rdf-syntax-ns#type": false,
		"http://example.org/_1":                           false,
	}
	for iri, want := range cases {
		if got := IsMembershipPredicate(iri); got != want {
			t.Errorf("IsMembershipPredicate(%q) = %v, want %v", iri, got, want)
		}
	}
}

func TestAddDetectsMembershipPredicateByStringFallback(t *testing.T) {
	idx, d := newTestIndex(t)

	s, _ := d.Lookup("http://example.org/bag1", nil)
	p, _ := d.Lookup("http://www.w3.org/1999/02/22-rdf-syntax-ns#_1", nil)
	o, _ := d.Lookup("http://example.org/item", nil)

	if _, err := idx.Add(tstore.Triple{Subject: s, Predicate: p, Object: o}, 0, false); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !idx.MembershipProperties.Contains(uint64(p)) {
		t.Fatalf("expected predicate %d to be recognized via string fallback", p)
	}
}

func TestAddDetectsMembershipPredicateByHint(t *testing.T) {
	idx, d := newTestIndex(t)

	s, _ := d.Lookup("http://example.org/bag1", nil)
	p, _ := d.Lookup("http://example.org/custom-member-predicate", nil)
	o, _ := d.Lookup("http://example.org/item", nil)

	if _, err := idx.Add(tstore.Triple{Subject: s, Predicate: p, Object: o}, 0, true); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !idx.MembershipProperties.Contains(uint64(p)) {
		t.Fatalf("expected predicate %d to be recognized via the parse-time hint", p)
	}
}

func TestAddIndexesDomainAndRange(t *testing.T) {
	idx, d := newTestIndex(t)

	p, _ := d.Lookup("http://example.org/owns", nil)
	c, _ := d.Lookup("http://example.org/Person", nil)

	if _, err := idx.Add(tstore.Triple{Subject: p, Predicate: idx.Vocab.Domain, Object: c}, 0, false); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if idx.Domain[p] == nil || !idx.Domain[p].Contains(uint64(c)) {
		t.Fatalf("expected Domain[%d] to contain %d", p, c)
	}

	r, _ := d.Lookup("http://example.org/Pet", nil)
	if _, err := idx.Add(tstore.Triple{Subject: p, Predicate: idx.Vocab.Range, Object: r}, 0, false); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if idx.Range[p] == nil || !idx.Range[p].Contains(uint64(r)) {
		t.Fatalf("expected Range[%d] to contain %d", p, r)
	}
}

func TestAddAxiomaticTriplesInjectsTableAndMembershipDeclarations(t *testing.T) {
	idx, d := newTestIndex(t)

	before := idx.SchemaTriples.Size() + idx.TypeTriples.Size() + idx.Triples.Size()

	s, _ := d.Lookup("http://example.org/bag1", nil)
	p, _ := d.Lookup("http://www.w3.org/1999/02/22-rdf-syntax-ns#_1", nil)
	o, _ := d.Lookup("http://example.org/item", nil)
	if _, err := idx.Add(tstore.Triple{Subject: s, Predicate: p, Object: o}, 0, false); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	lookup := func(iri string) (dict.KeyId, error) { return d.Lookup(iri, nil) }
	if err := idx.AddAxiomaticTriples(lookup); err != nil {
		t.Fatalf("AddAxiomaticTriples failed: %v", err)
	}

	after := idx.SchemaTriples.Size() + idx.TypeTriples.Size() + idx.Triples.Size()
	if after <= before+1 {
		t.Fatalf("expected AddAxiomaticTriples to add more than the one prior triple, before=%d after=%d", before, after)
	}

	cmProp, _ := d.Lookup(IRIContainerMembershipProp, nil)
	resource, _ := d.Lookup(IRIResource, nil)
	if !idx.TypeTriples.Has(tstore.Triple{Subject: p, Predicate: idx.Vocab.RDFType, Object: cmProp}) {
		t.Fatalf("expected axioms to declare %d a ContainerMembershipProperty", p)
	}
	if !idx.SchemaTriples.Has(tstore.Triple{Subject: p, Predicate: idx.Vocab.Domain, Object: resource}) {
		t.Fatalf("expected axioms to declare domain(%d) = Resource", p)
	}
	if !idx.SchemaTriples.Has(tstore.Triple{Subject: p, Predicate: idx.Vocab.Range, Object: resource}) {
		t.Fatalf("expected axioms to declare range(%d) = Resource", p)
	}
}
