// Package dict implements the term dictionary: a bijective mapping between
// RDF term strings and compact 64-bit KeyIds, backed by the paged arena
// (internal/arena) so that string bodies — which dominate memory in large
// graphs — live in a remappable, append-only region instead of per-string
// heap allocations.
package dict

import (
	"encoding/binary"
	"fmt"

	"github.com/0xfeedface/grdfs/internal/arena"
	"github.com/zeebo/xxh3"
)

// KeyId is a 64-bit term identifier. The top two bits are reserved type-tag
// flags; the remaining 62 bits are a monotone sequence counter starting at 1.
type KeyId uint64

const (
	// LiteralBit marks a term as a plain or typed literal.
	LiteralBit KeyId = 1 << 63
	// BlankBit marks a term as a blank node.
	BlankBit KeyId = 1 << 62
	// CoreMask isolates the sequence-counter bits of a KeyId.
	CoreMask KeyId = ^(LiteralBit | BlankBit)
)

// IsLiteral reports whether k is tagged as a literal.
func (k KeyId) IsLiteral() bool { return k&LiteralBit != 0 }

// IsBlank reports whether k is tagged as a blank node.
func (k KeyId) IsBlank() bool { return k&BlankBit != 0 }

// Core strips the tag bits, returning the bare sequence counter.
func (k KeyId) Core() KeyId { return k & CoreMask }

// entryHeaderSize is the fixed-width prefix of a DictEntry record:
// {id:8, next_offset:8, byte_length:8}.
const entryHeaderSize = 24

// UnknownKey is returned by Find when given a KeyId that was never issued.
// This is a programmer error; callers should treat it as fatal.
type UnknownKey struct {
	Key KeyId
}

func (e *UnknownKey) Error() string {
	return fmt.Sprintf("dict: unknown key id %d", uint64(e.Key))
}

// Dictionary is the bidirectional string <-> KeyId mapping over the paged
// arena. It is not safe for concurrent use.
type Dictionary struct {
	a *arena.Arena

	// hashIndex maps a term's string hash to the arena offset of the first
	// DictEntry in its overflow chain.
	hashIndex map[uint64]int64

	// offsets[i] is the arena offset of the DictEntry for KeyId i+1.
	offsets []int64

	nextID KeyId
}

// New creates a Dictionary over a freshly opened arena.
func New(path string) (*Dictionary, error) {
	a, err := arena.New(path, arena.InitialPages)
	if err != nil {
		return nil, err
	}
	return &Dictionary{
		a:         a,
		hashIndex: make(map[uint64]int64),
		offsets:   make([]int64, 0, 1024),
		nextID:    1,
	}, nil
}

// Close releases the underlying arena.
func (d *Dictionary) Close() error { return d.a.Close() }

// Size returns the number of distinct terms issued a KeyId so far.
func (d *Dictionary) Size() int { return len(d.offsets) }

// hash computes the dictionary's stable 64-bit string hash.
func hash(s string) uint64 {
	return xxh3.HashString(s)
}

// Lookup returns the KeyId for text, allocating a new one if text has not
// been seen before. tagModifier, if non-nil, is applied to the returned id
// before it is recorded, allowing the caller to set the LITERAL/BLANK tag
// bits at insertion time without duplicating the bit layout at every call
// site.
func (d *Dictionary) Lookup(text string, tagModifier func(*KeyId)) (KeyId, error) {
	h := hash(text)

	if firstOff, ok := d.hashIndex[h]; ok {
		// Walk the overflow chain looking for an exact match.
		off := firstOff
		var prevOff int64 = -1
		for {
			id, next, body := d.readEntry(off)
			if string(body) == text {
				return id, nil
			}
			if next == 0 {
				prevOff = off
				break
			}
			off = next
		}
		id, newOff, err := d.appendEntry(text)
		if err != nil {
			return 0, err
		}
		if tagModifier != nil {
			tagModifier(&id)
			d.retagIssued(newOff, id)
		}
		d.spliceNext(prevOff, newOff)
		return id, nil
	}

	id, off, err := d.appendEntry(text)
	if err != nil {
		return 0, err
	}
	if tagModifier != nil {
		tagModifier(&id)
		d.retagIssued(off, id)
	}
	d.hashIndex[h] = off
	return id, nil
}

// appendEntry allocates and writes a new DictEntry for text, issuing the
// next sequence id. It does not touch hashIndex; callers splice the offset
// in themselves (either as a fresh chain head or onto a prior entry's
// next_offset).
func (d *Dictionary) appendEntry(text string) (KeyId, int64, error) {
	body := []byte(text)
	size := entryHeaderSize + len(body)

	off, err := d.a.AllocAligned(size, true)
	if err != nil {
		return 0, 0, err
	}

	id := d.nextID
	d.nextID++

	var header [entryHeaderSize]byte
	binary.BigEndian.PutUint64(header[0:8], uint64(id))
	binary.BigEndian.PutUint64(header[8:16], 0) // next_offset, spliced later
	binary.BigEndian.PutUint64(header[16:24], uint64(len(body)))

	d.a.WriteAt(off, header[:])
	d.a.WriteAt(off+entryHeaderSize, body)

	d.offsets = append(d.offsets, off)
	return id, off, nil
}

// retagIssued rewrites the id field of the entry at off after tagModifier
// has set the top bits, so that a later Lookup matching this entry returns
// the tagged id. offsets[] is left as it is: Find derives the body offset
// purely from the tag-stripped id and the offsets slice.
func (d *Dictionary) retagIssued(off int64, id KeyId) {
	var idBuf [8]byte
	binary.BigEndian.PutUint64(idBuf[:], uint64(id))
	d.a.WriteAt(off, idBuf[:])
}

// spliceNext threads newOff into prevOff's next_offset field. If prevOff is
// -1, newOff is the head of a brand new chain and nothing is spliced.
func (d *Dictionary) spliceNext(prevOff int64, newOff int64) {
	if prevOff < 0 {
		return
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(newOff))
	d.a.WriteAt(prevOff+8, buf[:])
}

// readEntry reads the DictEntry at off, returning its id, next_offset, and a
// slice view of its string body (valid until the next Grow).
func (d *Dictionary) readEntry(off int64) (KeyId, int64, []byte) {
	header := d.a.ReadAt(off, entryHeaderSize)
	id := KeyId(binary.BigEndian.Uint64(header[0:8]))
	next := int64(binary.BigEndian.Uint64(header[8:16]))
	length := binary.BigEndian.Uint64(header[16:24])
	body := d.a.ReadAt(off+entryHeaderSize, int(length))
	return id, next, body
}

// Find returns the string a previously issued KeyId maps to.
func (d *Dictionary) Find(key KeyId) (string, error) {
	idx := int(key.Core()) - 1
	if idx < 0 || idx >= len(d.offsets) {
		return "", &UnknownKey{Key: key}
	}
	_, _, body := d.readEntry(d.offsets[idx])
	return string(body), nil
}
