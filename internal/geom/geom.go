// Package geom supplies the geometry collaborator for the spatial predicate
// layer: planar math over value.Point and value.Polygon, exposed as predicate
// and relation functions matching the callback signatures in
// internal/spatial.
//
// The relational core stores geometry opaquely; only this package and caller
// code interpret coordinates.
package geom

import (
	"math"

	"github.com/tessera-db/tessera/internal/value"
)

// Distance returns the Euclidean distance between two points.
func Distance(a, b value.Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// ContainsPoint reports whether the polygon contains the point, using the
// even-odd ray casting rule. Points exactly on an edge may fall on either
// side; callers needing boundary guarantees should buffer the polygon.
func ContainsPoint(poly value.Polygon, p value.Point) bool {
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi, vj := poly[i], poly[j]
		if (vi.Y > p.Y) != (vj.Y > p.Y) {
			x := vj.X + (p.Y-vi.Y)/(vj.Y-vi.Y)*(vi.X-vj.X)
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// BoundsIntersect reports whether the axis-aligned bounding boxes of two
// polygons overlap. This is a conservative intersection test: a true result
// means the polygons may intersect, a false result means they cannot.
func BoundsIntersect(a, b value.Polygon) bool {
	aMinX, aMinY, aMaxX, aMaxY := bounds(a)
	bMinX, bMinY, bMaxX, bMaxY := bounds(b)
	return aMinX <= bMaxX && bMinX <= aMaxX && aMinY <= bMaxY && bMinY <= aMaxY
}

func bounds(poly value.Polygon) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range poly {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return minX, minY, maxX, maxY
}

// Covers is a relation over (polygon, point) values: it holds when a covers
// b. Non-geometric operands make the relation false rather than panicking,
// so it can be passed directly to spatial.Join.
func Covers(a, b value.Value) bool {
	poly, ok := a.(value.Polygon)
	if !ok {
		return false
	}
	p, ok := b.(value.Point)
	if !ok {
		return false
	}
	return ContainsPoint(poly, p)
}

// Within is a relation over (point, point) values: it holds when the two
// points are at most d apart.
func Within(d float64) func(a, b value.Value) bool {
	return func(a, b value.Value) bool {
		pa, ok := a.(value.Point)
		if !ok {
			return false
		}
		pb, ok := b.(value.Point)
		if !ok {
			return false
		}
		return Distance(pa, pb) <= d
	}
}

// Intersects is a relation over (polygon, polygon) values using the
// bounding-box test.
func Intersects(a, b value.Value) bool {
	pa, ok := a.(value.Polygon)
	if !ok {
		return false
	}
	pb, ok := b.(value.Polygon)
	if !ok {
		return false
	}
	return BoundsIntersect(pa, pb)
}

// GreaterThan is a relation over numeric values (Int or Float).
func GreaterThan(a, b value.Value) bool {
	fa, ok := numeric(a)
	if !ok {
		return false
	}
	fb, ok := numeric(b)
	if !ok {
		return false
	}
	return fa > fb
}

// LessThan is a relation over numeric values (Int or Float).
func LessThan(a, b value.Value) bool {
	return GreaterThan(b, a)
}

func numeric(v value.Value) (float64, bool) {
	switch n := v.(type) {
	case value.Int:
		return float64(n), true
	case value.Float:
		return float64(n), true
	default:
		return 0, false
	}
}
