// Package tstore implements a fingerprint-deduplicating, columnar triple
// store. Triples are stored as four parallel slices (struct
// of arrays) rather than a slice of structs, because the closure engine's
// join kernels (internal/kernel) need contiguous KeyId arrays to hand to a
// data-parallel backend.
package tstore

import (
	"encoding/binary"

	"github.com/0xfeedface/grdfs/internal/dict"
	"github.com/zeebo/xxh3"
)

// Flags is a bitset attached to each stored triple.
type Flags uint8

// Entailed marks a triple as produced by rule firing rather than input.
const Entailed Flags = 1 << 0

// Triple is the in-memory (subject, predicate, object) tuple the store
// indexes. Flags is carried alongside but is not part of the fingerprint.
type Triple struct {
	Subject   dict.KeyId
	Predicate dict.KeyId
	Object    dict.KeyId
}

// Store is a deduplicating, insertion-ordered, columnar append log of
// triples. It is not safe for concurrent use.
type Store struct {
	subjects   []dict.KeyId
	predicates []dict.KeyId
	objects    []dict.KeyId
	flags      []Flags

	// fingerprints maps a 64-bit hash of (s,p,o) to the store index holding
	// it, for O(1) duplicate detection.
	fingerprints map[uint64]int

	// dedupDisabled, when true, makes Add skip the fingerprint check and
	// always insert (the --no-global-dedup escape hatch).
	dedupDisabled bool
}

// New creates an empty Store with fingerprint deduplication enabled.
func New() *Store {
	return &Store{
		fingerprints: make(map[uint64]int),
	}
}

// DisableDedup turns off Add's fingerprint check, so every insertion
// succeeds even if an equal triple is already present. Used for
// --no-global-dedup runs.
func (s *Store) DisableDedup() { s.dedupDisabled = true }

// HashTriple computes the store's fingerprint: an xxh3 64-bit mix of the
// triple's three KeyIds. Exported so callers outside the package (the
// closure engine's kernel-dedup hash table) can compute the same fingerprint
// a prospective Add would use, without inserting the triple first.
func HashTriple(t Triple) uint64 {
	var buf [24]byte
	binary.BigEndian.PutUint64(buf[0:8], uint64(t.Subject))
	binary.BigEndian.PutUint64(buf[8:16], uint64(t.Predicate))
	binary.BigEndian.PutUint64(buf[16:24], uint64(t.Object))
	return xxh3.Hash(buf[:])
}

func hashTriple(t Triple) uint64 { return HashTriple(t) }

// Add inserts t with the given flags. It returns false without modifying
// the store if an equal triple (by fingerprint) is already present — on the
// rare genuine 64-bit fingerprint collision between two distinct triples,
// the newer triple is rejected as a duplicate, a known accepted limitation
// of fingerprint-based dedup.
func (s *Store) Add(t Triple, flags Flags) bool {
	fp := hashTriple(t)
	if !s.dedupDisabled {
		if _, dup := s.fingerprints[fp]; dup {
			return false
		}
	}

	idx := len(s.subjects)
	s.subjects = append(s.subjects, t.Subject)
	s.predicates = append(s.predicates, t.Predicate)
	s.objects = append(s.objects, t.Object)
	s.flags = append(s.flags, flags)
	s.fingerprints[fp] = idx
	return true
}

// Has reports whether a triple with t's fingerprint is already stored.
func (s *Store) Has(t Triple) bool {
	_, ok := s.fingerprints[hashTriple(t)]
	return ok
}

// Size returns the number of stored triples.
func (s *Store) Size() int { return len(s.subjects) }

// At returns the triple and flags stored at index i, in insertion order.
func (s *Store) At(i int) (Triple, Flags) {
	return Triple{Subject: s.subjects[i], Predicate: s.predicates[i], Object: s.objects[i]}, s.flags[i]
}

// IterAll calls yield for every stored triple in insertion order, stopping
// early if yield returns false.
func (s *Store) IterAll(yield func(Triple, Flags) bool) {
	for i := range s.subjects {
		t, f := s.At(i)
		if !yield(t, f) {
			return
		}
	}
}

// IterEntailed calls yield only for triples carrying the Entailed flag.
func (s *Store) IterEntailed(yield func(Triple) bool) {
	for i := range s.subjects {
		if s.flags[i]&Entailed == 0 {
			continue
		}
		t, _ := s.At(i)
		if !yield(t) {
			return
		}
	}
}

// Subjects returns the contiguous subject column, for handoff to a join
// kernel. The returned slice aliases the store's internal state and must
// not be mutated or retained past the next Add.
func (s *Store) Subjects() []dict.KeyId { return s.subjects }

// Predicates returns the contiguous predicate column.
func (s *Store) Predicates() []dict.KeyId { return s.predicates }

// Objects returns the contiguous object column.
func (s *Store) Objects() []dict.KeyId { return s.objects }
