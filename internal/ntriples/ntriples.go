// Package ntriples serializes entailed and input triples back to N-Triples
// text, resolving KeyIds through the dictionary. Writer style (buffered
// writer, deferred error via an errWriter, explicit Close flushing) is
// grounded on the example pack's knakk/rdf TripleEncoder, adapted to accept
// KeyIds plus a Dictionary instead of rdf.Triple values directly.
package ntriples

import (
	"bufio"
	"io"
	"strings"

	"github.com/0xfeedface/grdfs/internal/dict"
	"github.com/0xfeedface/grdfs/internal/tstore"
)

// errWriter defers write-error checking to Close, the same trick
// TripleEncoder uses so every intermediate WriteString call site doesn't
// need its own error check.
type errWriter struct {
	w   *bufio.Writer
	err error
}

func (e *errWriter) writeString(s string) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.WriteString(s)
}

// Writer serializes triples as N-Triples, one per line.
type Writer struct {
	dict *dict.Dictionary
	ew   *errWriter
}

// NewWriter creates a Writer over w, resolving terms through d.
func NewWriter(w io.Writer, d *dict.Dictionary) *Writer {
	return &Writer{
		dict: d,
		ew:   &errWriter{w: bufio.NewWriter(w)},
	}
}

// WriteTriple serializes t, a plain (non blank-tagged-predicate) triple, as
// one N-Triples line. Triples whose predicate is blank-tagged are silently
// suppressed — RDF forbids blank-node predicates, and the dictionary's
// blank tag can only land on a predicate position through a malformed
// upstream graph, so dropping it avoids emitting invalid output.
func (w *Writer) WriteTriple(t tstore.Triple) error {
	if t.Predicate.IsBlank() {
		return nil
	}

	subj, err := w.term(t.Subject)
	if err != nil {
		return err
	}
	pred, err := w.term(t.Predicate)
	if err != nil {
		return err
	}
	obj, err := w.term(t.Object)
	if err != nil {
		return err
	}

	w.ew.writeString(subj)
	w.ew.writeString(" ")
	w.ew.writeString(pred)
	w.ew.writeString(" ")
	w.ew.writeString(obj)
	w.ew.writeString(" .\n")
	return w.ew.err
}

// term resolves k to its dictionary string and renders it in N-Triples
// term syntax. Literal keys are stored as "value\x1fSubtype" (internal/rdfio
// section marker), so rendering splits on the marker to recover the lexical
// value and either a language tag ("@lang") or a datatype IRI.
func (w *Writer) term(k dict.KeyId) (string, error) {
	text, err := w.dict.Find(k)
	if err != nil {
		return "", err
	}

	switch {
	case k.IsBlank():
		return "_:" + strings.TrimPrefix(text, "_:"), nil
	case k.IsLiteral():
		return renderLiteral(text), nil
	default:
		return "<" + text + ">", nil
	}
}

// renderLiteral splits a dictionary literal key back into its N-Triples
// form. The marker byte (0x1f) cannot appear in a parsed lexical value, so
// the split is unambiguous.
func renderLiteral(text string) string {
	value, subtype, _ := strings.Cut(text, "\x1f")
	escaped := escapeLiteral(value)
	switch {
	case subtype == "":
		return `"` + escaped + `"`
	case strings.HasPrefix(subtype, "@"):
		return `"` + escaped + `"` + subtype
	default:
		return `"` + escaped + `"^^<` + subtype + ">"
	}
}

func escapeLiteral(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Close flushes buffered output and reports the first write error, if any.
func (w *Writer) Close() error {
	if w.ew.err != nil {
		return w.ew.err
	}
	if err := w.ew.w.Flush(); err != nil {
		return err
	}
	return nil
}
