// Package rdfio adapts the bundled Turtle parser (pkg/rdf) to the pull-style
// interface the reasoner driver consumes: a sequence of (subject, predicate,
// object) tuples carrying enough term-kind information for dictionary
// insertion, with per-statement parse errors recovered rather than fatal.
package rdfio

import (
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/0xfeedface/grdfs/pkg/rdf"
)

// TermKind classifies which KeyId tag a tuple's term needs.
type TermKind int

const (
	KindIRI TermKind = iota
	KindBlank
	KindLiteral
)

// Tuple is one parsed statement, with its subject/object classified by kind
// and (for literals) the datatype or language subtype that must be folded
// into the dictionary key alongside the lexical value, so two literals with
// the same value but different datatypes/languages never collide.
type Tuple struct {
	Subject   string
	Predicate string
	Object    string

	SubjectKind TermKind
	ObjectKind  TermKind

	// Subtype is empty for a plain/IRI term, "@"+language for a
	// language-tagged literal, or the datatype IRI for a typed literal.
	Subtype string
}

// ParseError reports a recovered per-statement parse failure. It is never
// fatal: PullTurtle reports it through onError and continues from the next
// line.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("rdfio: parse error: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// PullTurtle parses r as Turtle and returns a pull-style sequence of tuples.
// Per-statement errors are reported to onError (which may be nil to discard
// them) and do not stop the stream — the underlying parser resumes from the
// next line, matching ParseRecover's recovery contract.
func PullTurtle(r io.Reader, onError func(error)) (iter.Seq[Tuple], error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("rdfio: reading input: %w", err)
	}

	parser := rdf.NewTurtleParser(string(data))
	triples := parser.ParseRecover(func(err error) {
		if onError != nil {
			onError(&ParseError{Err: err})
		}
	})

	return func(yield func(Tuple) bool) {
		for _, t := range triples {
			tup, ok := tupleFromTriple(t)
			if !ok {
				if onError != nil {
					onError(&ParseError{Err: fmt.Errorf("unsupported term in triple %s", t.String())})
				}
				continue
			}
			if !yield(tup) {
				return
			}
		}
	}, nil
}

// tupleFromTriple converts a parsed *rdf.Triple into a Tuple, rejecting
// predicates that aren't IRIs (RDF disallows literal/blank predicates) and
// any term kind the dictionary doesn't model (quoted triples, RDF 1.2
// extensions out of scope for this reasoner).
func tupleFromTriple(t *rdf.Triple) (Tuple, bool) {
	predIRI, ok := t.Predicate.(*rdf.NamedNode)
	if !ok {
		return Tuple{}, false
	}

	subjText, subjKind, ok := termKey(t.Subject)
	if !ok {
		return Tuple{}, false
	}
	objText, objKind, subtype, ok := objectKey(t.Object)
	if !ok {
		return Tuple{}, false
	}

	return Tuple{
		Subject:     subjText,
		Predicate:   predIRI.IRI,
		Object:      objText,
		SubjectKind: subjKind,
		ObjectKind:  objKind,
		Subtype:     subtype,
	}, true
}

// termKey returns the dictionary text key for a subject-position term
// (IRI or blank node only — literals cannot be subjects).
func termKey(term rdf.Term) (string, TermKind, bool) {
	switch v := term.(type) {
	case *rdf.NamedNode:
		return v.IRI, KindIRI, true
	case *rdf.BlankNode:
		return "_:" + v.ID, KindBlank, true
	default:
		return "", 0, false
	}
}

// objectKey extends termKey to literal objects, returning the literal's
// subtype (datatype IRI or "@lang") alongside its text key.
func objectKey(term rdf.Term) (string, TermKind, string, bool) {
	if lit, ok := term.(*rdf.Literal); ok {
		return literalText(lit), KindLiteral, literalSubtype(lit), true
	}
	text, kind, ok := termKey(term)
	return text, kind, "", ok
}

// literalSubtype reports the datatype IRI of a typed literal, or "@"+language
// for a language-tagged literal, or "" for a plain xsd:string literal.
func literalSubtype(lit *rdf.Literal) string {
	if lit.Language != "" {
		return "@" + lit.Language
	}
	if lit.Datatype != nil {
		return lit.Datatype.IRI
	}
	return ""
}

// literalText builds the dictionary key for a literal: its lexical value
// plus subtype, joined by a control character that cannot appear in a
// parsed lexical form, so no two distinct (value, subtype) pairs can ever
// collide on the same dictionary string.
func literalText(lit *rdf.Literal) string {
	var b strings.Builder
	b.WriteString(lit.Value)
	b.WriteByte(0x1f)
	b.WriteString(literalSubtype(lit))
	return b.String()
}
