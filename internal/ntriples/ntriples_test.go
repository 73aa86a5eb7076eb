package ntriples

import (
	"bytes"
	"strings"
	"testing"

	"github.com/0xfeedface/grdfs/internal/dict"
	"github.com/0xfeedface/grdfs/internal/tstore"
)

func newTestDict(t *testing.T) *dict.Dictionary {
	t.Helper()
	d, err := dict.New("")
	if err != nil {
		t.Fatalf("dict.New failed: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestWriteTripleRendersIRIs(t *testing.T) {
	d := newTestDict(t)
	s, _ := d.Lookup("http://example.org/s", nil)
	p, _ := d.Lookup("http://example.org/p", nil)
	o, _ := d.Lookup("http://example.org/o", nil)

	var buf bytes.Buffer
	w := NewWriter(&buf, d)
	if err := w.WriteTriple(tstore.Triple{Subject: s, Predicate: p, Object: o}); err != nil {
		t.Fatalf("WriteTriple failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	want := "<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}

func TestWriteTripleRendersBlankSubject(t *testing.T) {
	d := newTestDict(t)
	s, _ := d.Lookup("_:b1", func(id *dict.KeyId) { *id |= dict.BlankBit })
	p, _ := d.Lookup("http://example.org/p", nil)
	o, _ := d.Lookup("http://example.org/o", nil)

	var buf bytes.Buffer
	w := NewWriter(&buf, d)
	if err := w.WriteTriple(tstore.Triple{Subject: s, Predicate: p, Object: o}); err != nil {
		t.Fatalf("WriteTriple failed: %v", err)
	}
	w.Close()

	if !strings.HasPrefix(buf.String(), "_:b1 ") {
		t.Fatalf("output = %q, want a blank-node subject prefix", buf.String())
	}
}

func TestWriteTripleSuppressesBlankPredicate(t *testing.T) {
	d := newTestDict(t)
	s, _ := d.Lookup("http://example.org/s", nil)
	p, _ := d.Lookup("_:badpred", func(id *dict.KeyId) { *id |= dict.BlankBit })
	o, _ := d.Lookup("http://example.org/o", nil)

	var buf bytes.Buffer
	w := NewWriter(&buf, d)
	if err := w.WriteTriple(tstore.Triple{Subject: s, Predicate: p, Object: o}); err != nil {
		t.Fatalf("WriteTriple failed: %v", err)
	}
	w.Close()

	if buf.Len() != 0 {
		t.Fatalf("expected a blank-tagged predicate to suppress output, got %q", buf.String())
	}
}

func TestWriteTripleRendersPlainLiteralObject(t *testing.T) {
	d := newTestDict(t)
	s, _ := d.Lookup("http://example.org/s", nil)
	p, _ := d.Lookup("http://example.org/p", nil)
	o, _ := d.Lookup("hello\x1f", func(id *dict.KeyId) { *id |= dict.LiteralBit })

	var buf bytes.Buffer
	w := NewWriter(&buf, d)
	if err := w.WriteTriple(tstore.Triple{Subject: s, Predicate: p, Object: o}); err != nil {
		t.Fatalf("WriteTriple failed: %v", err)
	}
	w.Close()

	want := "<http://example.org/s> <http://example.org/p> \"hello\" .\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}

func TestWriteTripleRendersLanguageTaggedLiteralObject(t *testing.T) {
	d := newTestDict(t)
	s, _ := d.Lookup("http://example.org/s", nil)
	p, _ := d.Lookup("http://example.org/p", nil)
	o, _ := d.Lookup("hello\x1f@en", func(id *dict.KeyId) { *id |= dict.LiteralBit })

	var buf bytes.Buffer
	w := NewWriter(&buf, d)
	if err := w.WriteTriple(tstore.Triple{Subject: s, Predicate: p, Object: o}); err != nil {
		t.Fatalf("WriteTriple failed: %v", err)
	}
	w.Close()

	want := "<http://example.org/s> <http://example.org/p> \"hello\"@en .\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}

func TestWriteTripleRendersDatatypedLiteralObject(t *testing.T) {
	d := newTestDict(t)
	s, _ := d.Lookup("http://example.org/s", nil)
	p, _ := d.Lookup("http://example.org/p", nil)
	o, _ := d.Lookup("42\x1fhttp://www.w3.org/2001/XMLSchema#integer", func(id *dict.KeyId) { *id |= dict.LiteralBit })

	var buf bytes.Buffer
	w := NewWriter(&buf, d)
	if err := w.WriteTriple(tstore.Triple{Subject: s, Predicate: p, Object: o}); err != nil {
		t.Fatalf("WriteTriple failed: %v", err)
	}
	w.Close()

	want := "<http://example.org/s> <http://example.org/p> \"42\"^^<http://www.w3.org/2001/XMLSchema#integer> .\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}

func TestWriteTripleEscapesSpecialCharacters(t *testing.T) {
	d := newTestDict(t)
	s, _ := d.Lookup("http://example.org/s", nil)
	p, _ := d.Lookup("http://example.org/p", nil)
	o, _ := d.Lookup("line one\nline \"two\"\x1f", func(id *dict.KeyId) { *id |= dict.LiteralBit })

	var buf bytes.Buffer
	w := NewWriter(&buf, d)
	if err := w.WriteTriple(tstore.Triple{Subject: s, Predicate: p, Object: o}); err != nil {
		t.Fatalf("WriteTriple failed: %v", err)
	}
	w.Close()

	want := "<http://example.org/s> <http://example.org/p> \"line one\\nline \\\"two\\\"\" .\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}

func TestWriteTripleMultipleLinesAccumulate(t *testing.T) {
	d := newTestDict(t)
	s1, _ := d.Lookup("http://example.org/s1", nil)
	s2, _ := d.Lookup("http://example.org/s2", nil)
	p, _ := d.Lookup("http://example.org/p", nil)
	o, _ := d.Lookup("http://example.org/o", nil)

	var buf bytes.Buffer
	w := NewWriter(&buf, d)
	if err := w.WriteTriple(tstore.Triple{Subject: s1, Predicate: p, Object: o}); err != nil {
		t.Fatalf("WriteTriple failed: %v", err)
	}
	if err := w.WriteTriple(tstore.Triple{Subject: s2, Predicate: p, Object: o}); err != nil {
		t.Fatalf("WriteTriple failed: %v", err)
	}
	w.Close()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(lines), lines)
	}
}
