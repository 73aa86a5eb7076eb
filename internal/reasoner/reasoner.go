// Package reasoner implements the Reasoner Index: it
// categorizes incoming triples into the schema/type/general buckets,
// maintains the schema adjacency maps the closure engine walks, and injects
// the RDFS axiomatic triple set.
package reasoner

import (
	"regexp"

	"github.com/0xfeedface/grdfs/internal/axioms"
	"github.com/0xfeedface/grdfs/internal/dict"
	"github.com/0xfeedface/grdfs/internal/tstore"
	"github.com/RoaringBitmap/roaring/roaring64"
)

// membershipPattern matches rdf:_N container membership predicates
// (http://www.w3.org/1999/02/22-rdf-syntax-ns#_<digits>).
var membershipPattern = regexp.MustCompile(`^http://www\.w3\.org/1999/02/22-rdf-syntax-ns#_[0-9]+$`)

// Adjacency holds the two directed maps over a schema property (subClassOf
// or subPropertyOf), plus the set of every term mentioned by either map —
// used to seed the hierarchy scan in internal/closure. Successor/predecessor
// sets are roaring64 bitmaps rather than Go sets: they are append-only,
// ordered, and their Or/iteration primitives are exactly the transitive
// closure's "merge successors of c into successors of n" step (grounded on
// boutros-sopp's db.go, which uses the same library for its SPO/OSP/POS
// triple-index bitmaps).
type Adjacency struct {
	Successors   map[dict.KeyId]*roaring64.Bitmap
	Predecessors map[dict.KeyId]*roaring64.Bitmap
	Terms        *roaring64.Bitmap
}

func newAdjacency() *Adjacency {
	return &Adjacency{
		Successors:   make(map[dict.KeyId]*roaring64.Bitmap),
		Predecessors: make(map[dict.KeyId]*roaring64.Bitmap),
		Terms:        roaring64.New(),
	}
}

func (a *Adjacency) addEdge(s, o dict.KeyId) {
	if a.Successors[s] == nil {
		a.Successors[s] = roaring64.New()
	}
	a.Successors[s].Add(uint64(o))

	if a.Predecessors[o] == nil {
		a.Predecessors[o] = roaring64.New()
	}
	a.Predecessors[o].Add(uint64(s))

	a.Terms.Add(uint64(s))
	a.Terms.Add(uint64(o))
}

// Stats tracks counters maintained by Index.Add.
type Stats struct {
	InferredTriples    int
	InferredDuplicates int
}

// Index is the Reasoner Index: three disjoint triple stores plus the
// schema adjacency structures.
type Index struct {
	Vocab Vocab

	SchemaTriples *tstore.Store
	TypeTriples   *tstore.Store
	Triples       *tstore.Store

	SubClassOf    *Adjacency
	SubPropertyOf *Adjacency

	// Domain/Range map a property KeyId to the set of classes declared via
	// rdfs:domain / rdfs:range.
	Domain map[dict.KeyId]*roaring64.Bitmap
	Range  map[dict.KeyId]*roaring64.Bitmap

	// MembershipProperties is the set of predicates recognized as rdf:_N
	// container membership properties.
	MembershipProperties *roaring64.Bitmap

	Stats Stats

	dictionary *dict.Dictionary
}

// New creates a Reasoner Index over an already-populated Vocab.
func New(d *dict.Dictionary, v Vocab) *Index {
	return &Index{
		Vocab:                v,
		SchemaTriples:        tstore.New(),
		TypeTriples:          tstore.New(),
		Triples:              tstore.New(),
		SubClassOf:           newAdjacency(),
		SubPropertyOf:        newAdjacency(),
		Domain:               make(map[dict.KeyId]*roaring64.Bitmap),
		Range:                make(map[dict.KeyId]*roaring64.Bitmap),
		MembershipProperties: roaring64.New(),
		dictionary:           d,
	}
}

// DisableGlobalDedup turns off fingerprint deduplication across all three
// triple-store buckets, so Add never rejects a triple as a duplicate. Used
// for --no-global-dedup runs.
func (idx *Index) DisableGlobalDedup() {
	idx.SchemaTriples.DisableDedup()
	idx.TypeTriples.DisableDedup()
	idx.Triples.DisableDedup()
}

// IsMembershipPredicate reports whether predText (the raw, un-dictionaried
// string) matches the rdf:_N container-membership pattern. The driver's
// ingest loop calls this before dictionary insertion, while the original
// string is still in hand.
func IsMembershipPredicate(predText string) bool {
	return membershipPattern.MatchString(predText)
}

// Add categorizes and inserts t. It returns false if t was already present
// in its bucket (a duplicate), incrementing InferredDuplicates when the
// rejected triple was itself entailed. membershipHint, if true, marks p as
// a container-membership property without re-running the string match
// (used by the driver's ingest loop, which runs IsMembershipPredicate on the
// raw predicate text); pass false to fall back to
// the bucket's own detection.
func (idx *Index) Add(t tstore.Triple, flags tstore.Flags, membershipHint bool) (bool, error) {
	switch {
	case idx.Vocab.IsSchemaPredicate(t.Predicate):
		inserted := idx.SchemaTriples.Add(t, flags)
		if !inserted {
			idx.bumpDuplicate(flags)
			return false, nil
		}
		idx.indexSchemaTriple(t)
	case t.Predicate == idx.Vocab.RDFType:
		if !idx.TypeTriples.Add(t, flags) {
			idx.bumpDuplicate(flags)
			return false, nil
		}
	default:
		if !idx.Triples.Add(t, flags) {
			idx.bumpDuplicate(flags)
			return false, nil
		}
	}

	if membershipHint {
		idx.MembershipProperties.Add(uint64(t.Predicate))
	} else if !idx.MembershipProperties.Contains(uint64(t.Predicate)) &&
		membershipPattern.MatchString(predicateFallback(idx, t.Predicate)) {
		idx.MembershipProperties.Add(uint64(t.Predicate))
	}

	if flags&tstore.Entailed != 0 {
		idx.Stats.InferredTriples++
	}
	return true, nil
}

func (idx *Index) bumpDuplicate(flags tstore.Flags) {
	if flags&tstore.Entailed != 0 {
		idx.Stats.InferredDuplicates++
	}
}

// indexSchemaTriple updates the adjacency/domain/range structures for a
// novel schema triple.
func (idx *Index) indexSchemaTriple(t tstore.Triple) {
	switch t.Predicate {
	case idx.Vocab.SubClassOf:
		idx.SubClassOf.addEdge(t.Subject, t.Object)
	case idx.Vocab.SubPropertyOf:
		idx.SubPropertyOf.addEdge(t.Subject, t.Object)
	case idx.Vocab.Domain:
		if idx.Domain[t.Subject] == nil {
			idx.Domain[t.Subject] = roaring64.New()
		}
		idx.Domain[t.Subject].Add(uint64(t.Object))
	case idx.Vocab.Range:
		if idx.Range[t.Subject] == nil {
			idx.Range[t.Subject] = roaring64.New()
		}
		idx.Range[t.Subject].Add(uint64(t.Object))
	}
}

// predicateFallback resolves a predicate KeyId back to its string only when
// needed for the membership-pattern string-inspection fallback, used for
// predicates entering the index through a non-parse path (e.g. axioms
// injected internally, which carry no parse-time container-membership hint).
func predicateFallback(idx *Index, p dict.KeyId) string {
	s, err := idx.dictionary.Find(p)
	if err != nil {
		return ""
	}
	return s
}

// AddAxiomaticTriples injects the finite RDFS axiomatic triple set
// (internal/axioms), plus per-observed-membership-property triples. It
// must be called, if at all, only for the full-RDFS rule set, after all
// input triples have been processed.
func (idx *Index) AddAxiomaticTriples(lookup func(iri string) (dict.KeyId, error)) error {
	for _, ax := range axioms.Table {
		s, err := lookup(ax.Subject)
		if err != nil {
			return err
		}
		p, err := lookup(ax.Predicate)
		if err != nil {
			return err
		}
		o, err := lookup(ax.Object)
		if err != nil {
			return err
		}
		if _, err := idx.Add(tstore.Triple{Subject: s, Predicate: p, Object: o}, 0, false); err != nil {
			return err
		}
	}

	it := idx.MembershipProperties.Iterator()
	for it.HasNext() {
		p := dict.KeyId(it.Next())
		cmProp, err := lookup(IRIContainerMembershipProp)
		if err != nil {
			return err
		}
		resource, err := lookup(IRIResource)
		if err != nil {
			return err
		}
		if _, err := idx.Add(tstore.Triple{Subject: p, Predicate: idx.Vocab.RDFType, Object: cmProp}, 0, false); err != nil {
			return err
		}
		if _, err := idx.Add(tstore.Triple{Subject: p, Predicate: idx.Vocab.Domain, Object: resource}, 0, false); err != nil {
			return err
		}
		if _, err := idx.Add(tstore.Triple{Subject: p, Predicate: idx.Vocab.Range, Object: resource}, 0, false); err != nil {
			return err
		}
	}
	return nil
}
