// Package spatial implements the predicate layer: filtering and pairwise
// joining of parts by attribute values, using caller-supplied boolean
// callbacks. The layer interprets neither geometry nor morphisms; it scans
// the store and applies the callbacks as given.
//
// These operations are the deliberate O(n) / O(n*m) fallback for questions
// no morphism encodes. When the relationship is already structural, prefer
// Store.Incident or the traverse package: those are O(1) per hop on indexed
// morphisms.
package spatial

import (
	"github.com/tessera-db/tessera/internal/store"
	"github.com/tessera-db/tessera/internal/value"
)

// Predicate decides inclusion of a single attribute value.
// A predicate that panics propagates unmodified; the layer performs no
// error translation or suppression.
type Predicate func(value.Value) bool

// Relation decides a pairwise condition over two attribute values.
type Relation func(a, b value.Value) bool

// Pair is one result row of Join.
type Pair struct {
	A int
	B int
}

// Filter scans all live ids of kind in ascending order and returns those
// whose attribute value is present and satisfies the predicate. The
// attribute must belong to kind. Parts with an absent attribute are
// skipped. O(n) in the kind's live count.
func Filter(st *store.Store, kind, attribute string, pred Predicate) ([]int, error) {
	ids, err := st.Parts(kind)
	if err != nil {
		return nil, err
	}
	if err := checkAttribute(st, kind, attribute); err != nil {
		return nil, err
	}
	var out []int
	for _, id := range ids {
		v, err := st.Attr(id, attribute)
		if err != nil {
			return nil, err
		}
		if v == nil {
			continue
		}
		if pred(v) {
			out = append(out, id)
		}
	}
	return out, nil
}

// FilterRelation is the convenience form of Filter with a fixed right-hand
// query value: Filter(kind, attribute, v -> rel(v, query)).
func FilterRelation(st *store.Store, kind, attribute string, rel Relation, query value.Value) ([]int, error) {
	return Filter(st, kind, attribute, func(v value.Value) bool {
		return rel(v, query)
	})
}

// Join exhaustively tests the relation over every live pair, skipping pairs
// where either side's attribute is absent, and returns matches in
// (A ascending, B ascending) nested order. O(n*m); provided only as a
// fallback when no morphism encodes the relationship.
func Join(st *store.Store, kindA, attrA, kindB, attrB string, rel Relation) ([]Pair, error) {
	idsA, err := st.Parts(kindA)
	if err != nil {
		return nil, err
	}
	if err := checkAttribute(st, kindA, attrA); err != nil {
		return nil, err
	}
	idsB, err := st.Parts(kindB)
	if err != nil {
		return nil, err
	}
	if err := checkAttribute(st, kindB, attrB); err != nil {
		return nil, err
	}
	var out []Pair
	for _, a := range idsA {
		va, err := st.Attr(a, attrA)
		if err != nil {
			return nil, err
		}
		if va == nil {
			continue
		}
		for _, b := range idsB {
			vb, err := st.Attr(b, attrB)
			if err != nil {
				return nil, err
			}
			if vb == nil {
				continue
			}
			if rel(va, vb) {
				out = append(out, Pair{A: a, B: b})
			}
		}
	}
	return out, nil
}

// checkAttribute verifies the attribute exists and belongs to kind. Ids are
// only unique per kind, so a mismatched pairing would silently read another
// kind's table whenever the ids happen to overlap.
func checkAttribute(st *store.Store, kind, attribute string) error {
	a, ok := st.Schema().Attribute(attribute)
	if !ok {
		return store.NewUnknownFieldError(attribute, "attribute not declared in schema")
	}
	if a.Kind != kind {
		return store.NewUnknownFieldError(attribute, "not an attribute of kind "+kind)
	}
	return nil
}
