// Package value defines the closed set of attribute value types stored by
// the relational core.
//
// The store itself never interprets a value beyond its Domain tag; geometry
// semantics live in internal/geom and predicate callbacks supplied by
// callers. Keeping the union sealed means a type switch over Value is
// exhaustive and a schema type check is a single tag comparison.
package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Domain identifies the value domain an attribute value belongs to.
// Schema attributes declare one of these tags; SetAttr rejects any value
// whose Domain does not match the declaration.
type Domain string

const (
	DomainString  Domain = "string"
	DomainInt     Domain = "int"
	DomainFloat   Domain = "float"
	DomainBool    Domain = "bool"
	DomainPoint   Domain = "point"
	DomainPolygon Domain = "polygon"
)

// KnownDomains lists every domain tag the core understands.
var KnownDomains = []Domain{
	DomainString,
	DomainInt,
	DomainFloat,
	DomainBool,
	DomainPoint,
	DomainPolygon,
}

// IsKnownDomain reports whether d is a recognized domain tag.
func IsKnownDomain(d Domain) bool {
	for _, k := range KnownDomains {
		if k == d {
			return true
		}
	}
	return false
}

// Value is a sealed interface over the attribute value union.
// Only String, Int, Float, Bool, Point, and Polygon implement it.
type Value interface {
	// Domain returns the domain tag for this value.
	Domain() Domain

	// String renders the value deterministically for dumps and logs.
	String() string

	attrValue() // Sealed - only the types in this package implement it.
}

// String is a text value.
type String string

func (String) attrValue()       {}
func (String) Domain() Domain   { return DomainString }
func (v String) String() string { return strconv.Quote(string(v)) }

// Int is a signed integer value.
type Int int64

func (Int) attrValue()       {}
func (Int) Domain() Domain   { return DomainInt }
func (v Int) String() string { return strconv.FormatInt(int64(v), 10) }

// Float is a double-precision numeric value.
type Float float64

func (Float) attrValue()     {}
func (Float) Domain() Domain { return DomainFloat }
func (v Float) String() string {
	return strconv.FormatFloat(float64(v), 'g', -1, 64)
}

// Bool is a boolean value.
type Bool bool

func (Bool) attrValue()       {}
func (Bool) Domain() Domain   { return DomainBool }
func (v Bool) String() string { return strconv.FormatBool(bool(v)) }

// Point is a planar coordinate pair.
type Point struct {
	X float64
	Y float64
}

func (Point) attrValue()     {}
func (Point) Domain() Domain { return DomainPoint }
func (v Point) String() string {
	return fmt.Sprintf("(%s %s)",
		strconv.FormatFloat(v.X, 'g', -1, 64),
		strconv.FormatFloat(v.Y, 'g', -1, 64))
}

// Polygon is a closed ring of vertices in declaration order.
// The ring is implicitly closed; the first vertex is not repeated.
type Polygon []Point

func (Polygon) attrValue()     {}
func (Polygon) Domain() Domain { return DomainPolygon }
func (v Polygon) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, p := range v {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p.String())
	}
	b.WriteByte(']')
	return b.String()
}
