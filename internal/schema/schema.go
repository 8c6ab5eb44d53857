// Package schema defines the static description consumed at store
// construction time: object kinds, morphisms (directed typed edges between
// kinds), and attributes (typed edges from a kind to a value domain).
//
// A Schema is immutable once validated. Stores, the traversal API, and the
// compiler all share one Schema value; no package mutates it after
// construction.
package schema

import "github.com/tessera-db/tessera/internal/value"

// Morphism is a directed, functional relationship between two object kinds.
// Every live part of the domain kind maps to exactly one part of the
// codomain kind, unless the morphism is Optional, in which case the value
// may be unset.
type Morphism struct {
	// Name identifies the morphism. Names are unique across the schema,
	// shared with the attribute namespace, so a part field is addressable
	// by name alone.
	Name string `json:"name"`

	// Domain is the source object kind.
	Domain string `json:"domain"`

	// Codomain is the target object kind.
	Codomain string `json:"codomain"`

	// Indexed requests incremental maintenance of the reverse mapping
	// (target id -> ordered source ids). Reverse lookups on non-indexed
	// morphisms fall back to a full scan of the domain kind.
	Indexed bool `json:"indexed"`

	// Optional permits an unset value after creation. Required morphisms
	// must be supplied at AddPart and can never be cleared.
	Optional bool `json:"optional,omitempty"`
}

// Attribute is a typed, nullable field on an object kind. Attribute values
// are opaque to the store beyond their domain tag.
type Attribute struct {
	// Name identifies the attribute; shares the field namespace with
	// morphisms.
	Name string `json:"name"`

	// Kind is the owning object kind.
	Kind string `json:"kind"`

	// Domain is the value-domain tag an assigned value must carry.
	Domain value.Domain `json:"domain"`
}

// Schema is the immutable description of a relational structure.
// Construct with literal fields, then call Validate before handing it to a
// store; or use internal/compiler to build one from a CUE declaration.
type Schema struct {
	// Kinds lists object-kind names in declaration order. Declaration
	// order is the canonical kind order for dumps and iteration.
	Kinds []string `json:"kinds"`

	// Domains lists the value-domain tags the schema's attributes may
	// use. A subset of value.KnownDomains.
	Domains []value.Domain `json:"domains"`

	// Morphisms in declaration order.
	Morphisms []Morphism `json:"morphisms"`

	// Attributes in declaration order.
	Attributes []Attribute `json:"attributes"`
}

// HasKind reports whether name is a declared object kind.
func (s *Schema) HasKind(name string) bool {
	for _, k := range s.Kinds {
		if k == name {
			return true
		}
	}
	return false
}

// HasDomain reports whether d is a declared value domain.
func (s *Schema) HasDomain(d value.Domain) bool {
	for _, k := range s.Domains {
		if k == d {
			return true
		}
	}
	return false
}

// Morphism returns the morphism with the given name.
func (s *Schema) Morphism(name string) (Morphism, bool) {
	for _, m := range s.Morphisms {
		if m.Name == name {
			return m, true
		}
	}
	return Morphism{}, false
}

// Attribute returns the attribute with the given name.
func (s *Schema) Attribute(name string) (Attribute, bool) {
	for _, a := range s.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// MorphismsOf returns the morphisms whose domain is kind, in declaration
// order.
func (s *Schema) MorphismsOf(kind string) []Morphism {
	var out []Morphism
	for _, m := range s.Morphisms {
		if m.Domain == kind {
			out = append(out, m)
		}
	}
	return out
}

// AttributesOf returns the attributes owned by kind, in declaration order.
func (s *Schema) AttributesOf(kind string) []Attribute {
	var out []Attribute
	for _, a := range s.Attributes {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

// IndexedInto returns the indexed morphisms whose codomain is kind, in
// declaration order. These are the edges the cascade engine follows in the
// dependent direction.
func (s *Schema) IndexedInto(kind string) []Morphism {
	var out []Morphism
	for _, m := range s.Morphisms {
		if m.Indexed && m.Codomain == kind {
			out = append(out, m)
		}
	}
	return out
}
