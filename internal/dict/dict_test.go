package dict

import (
	"testing"

	"github.com/0xfeedface/grdfs/internal/arena"
)

func TestLookupRoundTrip(t *testing.T) {
	d, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer d.Close()

	id, err := d.Lookup("http://example.org/s", nil)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	text, err := d.Find(id)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if text != "http://example.org/s" {
		t.Fatalf("Find returned %q, want %q", text, "http://example.org/s")
	}
}

func TestLookupIsIdempotent(t *testing.T) {
	d, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer d.Close()

	id1, err := d.Lookup("http://example.org/x", nil)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	id2, err := d.Lookup("http://example.org/x", nil)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("repeated Lookup returned different ids: %d != %d", id1, id2)
	}
	if d.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", d.Size())
	}
}

func TestLookupTagModifier(t *testing.T) {
	d, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer d.Close()

	literalTag := func(id *KeyId) { *id |= LiteralBit }
	id, err := d.Lookup(`"hello"`, literalTag)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if !id.IsLiteral() {
		t.Fatalf("expected id to carry the literal tag")
	}
	if id.IsBlank() {
		t.Fatalf("did not expect the blank tag")
	}

	text, err := d.Find(id)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if text != `"hello"` {
		t.Fatalf("Find returned %q", text)
	}
}

func TestFindUnknownKey(t *testing.T) {
	d, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer d.Close()

	if _, err := d.Find(KeyId(999)); err == nil {
		t.Fatalf("expected UnknownKey error for an unissued id")
	}
}

func TestLookupHashCollisionChain(t *testing.T) {
	d, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer d.Close()

	// Distinct strings with distinct ids, none of which should collapse
	// into one another even if they happen to share a hash bucket.
	terms := []string{
		"http://example.org/a",
		"http://example.org/b",
		"http://example.org/c",
		"http://example.org/d",
	}
	ids := make(map[KeyId]string, len(terms))
	for _, term := range terms {
		id, err := d.Lookup(term, nil)
		if err != nil {
			t.Fatalf("Lookup(%q) failed: %v", term, err)
		}
		if prev, dup := ids[id]; dup {
			t.Fatalf("terms %q and %q collided on id %d", prev, term, id)
		}
		ids[id] = term
	}

	for id, want := range ids {
		got, err := d.Find(id)
		if err != nil {
			t.Fatalf("Find(%d) failed: %v", id, err)
		}
		if got != want {
			t.Fatalf("Find(%d) = %q, want %q", id, got, want)
		}
	}
}

func TestDictionaryGrowsAcrossManyTerms(t *testing.T) {
	d, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer d.Close()

	const n = 10000
	for i := 0; i < n; i++ {
		if _, err := d.Lookup(makeTerm(i), nil); err != nil {
			t.Fatalf("Lookup[%d] failed: %v", i, err)
		}
	}
	if d.Size() != n {
		t.Fatalf("Size() = %d, want %d", d.Size(), n)
	}
	if d.a.Size() <= int64(arena.InitialPages)*arena.PageSize {
		t.Fatalf("arena size %d did not grow past its initial %d bytes", d.a.Size(), int64(arena.InitialPages)*arena.PageSize)
	}
}

func makeTerm(i int) string {
	const base = "http://example.org/term/"
	buf := make([]byte, 0, len(base)+8)
	buf = append(buf, base...)
	buf = appendInt(buf, i)
	return string(buf)
}

func appendInt(buf []byte, i int) []byte {
	if i == 0 {
		return append(buf, '0')
	}
	var digits [20]byte
	n := 0
	for i > 0 {
		digits[n] = byte('0' + i%10)
		i /= 10
		n++
	}
	for j := n - 1; j >= 0; j-- {
		buf = append(buf, digits[j])
	}
	return buf
}
