// Package axioms holds the finite RDFS axiomatic triple table: a fixed set
// of class and property axioms entailed regardless of input, encoded as a
// static table rather than computed.
package axioms

// Triple is a plain string-form axiomatic triple, looked up through the
// dictionary at injection time (internal/reasoner.AddAxiomaticTriples).
type Triple struct {
	Subject, Predicate, Object string
}

// RDF/RDFS vocabulary IRIs used only by this table.
const (
	rdfType      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	rdfsDomain   = "http://www.w3.org/2000/01/rdf-schema#domain"
	rdfsRange    = "http://www.w3.org/2000/01/rdf-schema#range"
	rdfsSubClass = "http://www.w3.org/2000/01/rdf-schema#subClassOf"
	rdfsSubProp  = "http://www.w3.org/2000/01/rdf-schema#subPropertyOf"

	resource  = "http://www.w3.org/2000/01/rdf-schema#Resource"
	propertyC = "http://www.w3.org/1999/02/22-rdf-syntax-ns#Property"
	class     = "http://www.w3.org/2000/01/rdf-schema#Class"
	literal   = "http://www.w3.org/2000/01/rdf-schema#Literal"
	statement = "http://www.w3.org/1999/02/22-rdf-syntax-ns#Statement"
	container = "http://www.w3.org/2000/01/rdf-schema#Container"
	cmProp    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#ContainerMembershipProperty"

	subjectP    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#subject"
	predicateP  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#predicate"
	objectP     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#object"
	first       = "http://www.w3.org/1999/02/22-rdf-syntax-ns#first"
	rest        = "http://www.w3.org/1999/02/22-rdf-syntax-ns#rest"
	value       = "http://www.w3.org/1999/02/22-rdf-syntax-ns#value"
	member      = "http://www.w3.org/2000/01/rdf-schema#member"
	seeAlso     = "http://www.w3.org/2000/01/rdf-schema#seeAlso"
	isDefinedBy = "http://www.w3.org/2000/01/rdf-schema#isDefinedBy"
	comment     = "http://www.w3.org/2000/01/rdf-schema#comment"
	label       = "http://www.w3.org/2000/01/rdf-schema#label"

	list       = "http://www.w3.org/1999/02/22-rdf-syntax-ns#List"
	altC       = "http://www.w3.org/1999/02/22-rdf-syntax-ns#Alt"
	bagC       = "http://www.w3.org/1999/02/22-rdf-syntax-ns#Bag"
	seqC       = "http://www.w3.org/1999/02/22-rdf-syntax-ns#Seq"
	xmlLiteral = "http://www.w3.org/1999/02/22-rdf-syntax-ns#XMLLiteral"
	datatype   = "http://www.w3.org/2000/01/rdf-schema#Datatype"
)

// Table is the finite set of RDFS axiomatic triples injected by
// AddAxiomaticTriples: domain declarations, range declarations, container
// subClassOf declarations, and the XMLLiteral/Datatype triples.
// Per-container-membership-property injections are not part of this static
// table — they depend on which membership properties were actually observed
// and are generated by internal/reasoner itself.
var Table = []Triple{
	// Domain declarations.
	{rdfType, rdfsDomain, resource},
	{rdfsDomain, rdfsDomain, propertyC},
	{rdfsRange, rdfsDomain, propertyC},
	{rdfsSubProp, rdfsDomain, propertyC},
	{rdfsSubClass, rdfsDomain, propertyC},
	{subjectP, rdfsDomain, statement},
	{predicateP, rdfsDomain, statement},
	{objectP, rdfsDomain, statement},
	{member, rdfsDomain, resource},
	{first, rdfsDomain, list},
	{rest, rdfsDomain, list},
	{seeAlso, rdfsDomain, resource},
	{isDefinedBy, rdfsDomain, resource},
	{comment, rdfsDomain, resource},
	{label, rdfsDomain, resource},
	{value, rdfsDomain, resource},

	// Range declarations.
	{rdfType, rdfsRange, class},
	{rdfsDomain, rdfsRange, class},
	{rdfsRange, rdfsRange, class},
	{rdfsSubProp, rdfsRange, propertyC},
	{rdfsSubClass, rdfsRange, class},
	{subjectP, rdfsRange, resource},
	{predicateP, rdfsRange, resource},
	{objectP, rdfsRange, resource},
	{member, rdfsRange, resource},
	{rest, rdfsRange, resource},
	{seeAlso, rdfsRange, resource},
	{isDefinedBy, rdfsRange, resource},
	{comment, rdfsRange, literal},
	{label, rdfsRange, literal},
	{value, rdfsRange, resource},

	// Container subClassOf declarations.
	{altC, rdfsSubClass, container},
	{bagC, rdfsSubClass, container},
	{seqC, rdfsSubClass, container},
	{cmProp, rdfsSubClass, propertyC},

	// Datatype triples.
	{xmlLiteral, rdfType, datatype},
	{xmlLiteral, rdfsSubClass, literal},
	{datatype, rdfsSubClass, class},
}
