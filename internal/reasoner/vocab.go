package reasoner

import "github.com/0xfeedface/grdfs/internal/dict"

// Vocab holds the KeyIds of the five reserved predicates (the four schema
// predicates plus rdf:type) and the core RDFS
// class vocabulary) the Reasoner must recognize. The driver looks these up
// first, before any input triple, so their ids are always the smallest ones
// issued. This module checks schema-predicate membership by direct equality
// against Vocab's fields rather than relying on that ordering.
type Vocab struct {
	SubClassOf    dict.KeyId
	SubPropertyOf dict.KeyId
	Domain        dict.KeyId
	Range         dict.KeyId
	RDFType       dict.KeyId

	Resource                dict.KeyId
	Class                   dict.KeyId
	Property                dict.KeyId
	Datatype                dict.KeyId
	ContainerMembershipProp dict.KeyId
	Container               dict.KeyId
	Literal                 dict.KeyId
	Member                  dict.KeyId
}

// RDFS/RDF vocabulary IRIs.
const (
	IRISubClassOf    = "http://www.w3.org/2000/01/rdf-schema#subClassOf"
	IRISubPropertyOf = "http://www.w3.org/2000/01/rdf-schema#subPropertyOf"
	IRIDomain        = "http://www.w3.org/2000/01/rdf-schema#domain"
	IRIRange         = "http://www.w3.org/2000/01/rdf-schema#range"
	IRIType          = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

	IRIResource                = "http://www.w3.org/2000/01/rdf-schema#Resource"
	IRIClass                   = "http://www.w3.org/2000/01/rdf-schema#Class"
	IRIProperty                = "http://www.w3.org/1999/02/22-rdf-syntax-ns#Property"
	IRIDatatype                = "http://www.w3.org/2000/01/rdf-schema#Datatype"
	IRIContainerMembershipProp = "http://www.w3.org/1999/02/22-rdf-syntax-ns#ContainerMembershipProperty"
	IRIContainer               = "http://www.w3.org/2000/01/rdf-schema#Container"
	IRILiteral                 = "http://www.w3.org/2000/01/rdf-schema#Literal"
	IRIMember                  = "http://www.w3.org/2000/01/rdf-schema#member"
)

// LoadVocab looks up (and thereby issues, if this is a fresh Dictionary) the
// KeyIds for every reserved vocabulary term. Callers must do this before
// processing any input triple so the reserved predicates land at the lowest
// ids.
func LoadVocab(d *dict.Dictionary) (Vocab, error) {
	lookup := func(iri string) (dict.KeyId, error) {
		return d.Lookup(iri, nil)
	}

	var v Vocab
	var err error
	if v.SubClassOf, err = lookup(IRISubClassOf); err != nil {
		return v, err
	}
	if v.SubPropertyOf, err = lookup(IRISubPropertyOf); err != nil {
		return v, err
	}
	if v.Domain, err = lookup(IRIDomain); err != nil {
		return v, err
	}
	if v.Range, err = lookup(IRIRange); err != nil {
		return v, err
	}
	if v.RDFType, err = lookup(IRIType); err != nil {
		return v, err
	}
	if v.Resource, err = lookup(IRIResource); err != nil {
		return v, err
	}
	if v.Class, err = lookup(IRIClass); err != nil {
		return v, err
	}
	if v.Property, err = lookup(IRIProperty); err != nil {
		return v, err
	}
	if v.Datatype, err = lookup(IRIDatatype); err != nil {
		return v, err
	}
	if v.ContainerMembershipProp, err = lookup(IRIContainerMembershipProp); err != nil {
		return v, err
	}
	if v.Container, err = lookup(IRIContainer); err != nil {
		return v, err
	}
	if v.Literal, err = lookup(IRILiteral); err != nil {
		return v, err
	}
	if v.Member, err = lookup(IRIMember); err != nil {
		return v, err
	}
	return v, nil
}

// IsSchemaPredicate reports whether p is one of the four schema predicates.
func (v Vocab) IsSchemaPredicate(p dict.KeyId) bool {
	return p == v.SubClassOf || p == v.SubPropertyOf || p == v.Domain || p == v.Range
}
