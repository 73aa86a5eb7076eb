package tstore

import (
	"testing"

	"github.com/0xfeedface/grdfs/internal/dict"
)

func TestAddRejectsDuplicate(t *testing.T) {
	s := New()
	tr := Triple{Subject: 1, Predicate: 2, Object: 3}

	if !s.Add(tr, 0) {
		t.Fatalf("first Add should succeed")
	}
	if s.Add(tr, 0) {
		t.Fatalf("second Add of the same triple should report a duplicate")
	}
	if s.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", s.Size())
	}
}

func TestAddDistinguishesOrder(t *testing.T) {
	s := New()
	a := Triple{Subject: 1, Predicate: 2, Object: 3}
	b := Triple{Subject: 3, Predicate: 2, Object: 1}

	if !s.Add(a, 0) {
		t.Fatalf("Add(a) should succeed")
	}
	if !s.Add(b, 0) {
		t.Fatalf("Add(b) should succeed: distinct triple despite shared KeyIds")
	}
	if s.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", s.Size())
	}
}

func TestHasReflectsStoredTriples(t *testing.T) {
	s := New()
	tr := Triple{Subject: 10, Predicate: 20, Object: 30}

	if s.Has(tr) {
		t.Fatalf("Has should report false before Add")
	}
	s.Add(tr, 0)
	if !s.Has(tr) {
		t.Fatalf("Has should report true after Add")
	}
}

func TestIterAllPreservesInsertionOrder(t *testing.T) {
	s := New()
	want := []Triple{
		{Subject: 1, Predicate: 1, Object: 1},
		{Subject: 2, Predicate: 2, Object: 2},
		{Subject: 3, Predicate: 3, Object: 3},
	}
	for _, tr := range want {
		s.Add(tr, 0)
	}

	var got []Triple
	s.IterAll(func(tr Triple, _ Flags) bool {
		got = append(got, tr)
		return true
	})

	if len(got) != len(want) {
		t.Fatalf("IterAll yielded %d triples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("IterAll[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestIterAllStopsEarly(t *testing.T) {
	s := New()
	s.Add(Triple{Subject: 1, Predicate: 1, Object: 1}, 0)
	s.Add(Triple{Subject: 2, Predicate: 2, Object: 2}, 0)
	s.Add(Triple{Subject: 3, Predicate: 3, Object: 3}, 0)

	n := 0
	s.IterAll(func(Triple, Flags) bool {
		n++
		return n < 1
	})
	if n != 1 {
		t.Fatalf("IterAll called yield %d times, want 1", n)
	}
}

func TestIterEntailedFiltersByFlag(t *testing.T) {
	s := New()
	input := Triple{Subject: 1, Predicate: 1, Object: 1}
	entailed := Triple{Subject: 2, Predicate: 2, Object: 2}
	s.Add(input, 0)
	s.Add(entailed, Entailed)

	var got []Triple
	s.IterEntailed(func(tr Triple) bool {
		got = append(got, tr)
		return true
	})
	if len(got) != 1 || got[0] != entailed {
		t.Fatalf("IterEntailed = %+v, want only %+v", got, entailed)
	}
}

func TestColumnsAliasStoredValues(t *testing.T) {
	s := New()
	s.Add(Triple{Subject: 5, Predicate: 6, Object: 7}, 0)

	if got := s.Subjects(); len(got) != 1 || got[0] != dict.KeyId(5) {
		t.Fatalf("Subjects() = %v, want [5]", got)
	}
	if got := s.Predicates(); len(got) != 1 || got[0] != dict.KeyId(6) {
		t.Fatalf("Predicates() = %v, want [6]", got)
	}
	if got := s.Objects(); len(got) != 1 || got[0] != dict.KeyId(7) {
		t.Fatalf("Objects() = %v, want [7]", got)
	}
}

func TestHashTriplePublicWrapperMatchesInternal(t *testing.T) {
	tr := Triple{Subject: 11, Predicate: 22, Object: 33}
	if HashTriple(tr) != hashTriple(tr) {
		t.Fatalf("HashTriple and hashTriple disagree for %+v", tr)
	}
}

func TestAtReturnsFlagsAndTriple(t *testing.T) {
	s := New()
	tr := Triple{Subject: 1, Predicate: 2, Object: 3}
	s.Add(tr, Entailed)

	got, flags := s.At(0)
	if got != tr {
		t.Fatalf("At(0) triple = %+v, want %+v", got, tr)
	}
	if flags&Entailed == 0 {
		t.Fatalf("At(0) flags missing Entailed bit")
	}
}
