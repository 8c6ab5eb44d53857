package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-db/tessera/internal/citymap"
	"github.com/tessera-db/tessera/internal/geom"
	"github.com/tessera-db/tessera/internal/store"
	"github.com/tessera-db/tessera/internal/value"
)

// buildCity creates a region with one district, one parcel, and three
// buildings with floor areas 100, 200, 300 and centroids along the x axis.
func buildCity(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(citymap.Schema())
	require.NoError(t, err)
	r, err := st.AddPart(citymap.KindRegion, store.Fields{})
	require.NoError(t, err)
	d, err := st.AddPart(citymap.KindDistrict, store.Fields{
		Refs: map[string]int{citymap.MorphDistrictOf: r},
		Attrs: map[string]value.Value{
			citymap.AttrBoundary: value.Polygon{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}},
		},
	})
	require.NoError(t, err)
	p, err := st.AddPart(citymap.KindParcel, store.Fields{Refs: map[string]int{citymap.MorphParcelOf: d}})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := st.AddPart(citymap.KindBuilding, store.Fields{
			Refs: map[string]int{citymap.MorphBuildingOn: p},
			Attrs: map[string]value.Value{
				citymap.AttrFloorArea: value.Float(float64(100 * (i + 1))),
				citymap.AttrCentroid:  value.Point{X: float64(4 * i), Y: 1},
			},
		})
		require.NoError(t, err)
	}
	return st
}

func TestFilter_ThresholdAscending(t *testing.T) {
	st := buildCity(t)

	ids, err := Filter(st, citymap.KindBuilding, citymap.AttrFloorArea, func(v value.Value) bool {
		return float64(v.(value.Float)) > 150
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, ids)
}

func TestFilter_SkipsAbsentAttributes(t *testing.T) {
	st := buildCity(t)
	// A building with no floor area never reaches the predicate.
	p := 1
	_, err := st.AddPart(citymap.KindBuilding, store.Fields{
		Refs: map[string]int{citymap.MorphBuildingOn: p},
	})
	require.NoError(t, err)

	called := 0
	ids, err := Filter(st, citymap.KindBuilding, citymap.AttrFloorArea, func(v value.Value) bool {
		called++
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids)
	assert.Equal(t, 3, called)
}

func TestFilterRelation(t *testing.T) {
	st := buildCity(t)

	ids, err := FilterRelation(st, citymap.KindBuilding, citymap.AttrFloorArea, geom.GreaterThan, value.Float(150))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, ids)
}

func TestFilter_UnknownInputs(t *testing.T) {
	st := buildCity(t)

	_, err := Filter(st, "Metro", citymap.AttrFloorArea, func(value.Value) bool { return true })
	require.Error(t, err)

	_, err = Filter(st, citymap.KindBuilding, "nope", func(value.Value) bool { return true })
	require.Error(t, err)
}

func TestFilter_AttributeOfOtherKind(t *testing.T) {
	st := buildCity(t)

	// name belongs to Region; filtering Building by it must fail instead
	// of reading Region's table at overlapping ids.
	called := 0
	_, err := Filter(st, citymap.KindBuilding, citymap.AttrName, func(value.Value) bool {
		called++
		return true
	})
	require.Error(t, err)
	var se *store.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, store.ErrCodeUnknownField, se.Code)
	assert.Zero(t, called, "predicate must never see another kind's values")
}

func TestJoin_AttributeOfOtherKind(t *testing.T) {
	st := buildCity(t)

	_, err := Join(st,
		citymap.KindBuilding, citymap.AttrBoundary,
		citymap.KindDistrict, citymap.AttrCentroid,
		geom.Covers)
	require.Error(t, err)
	var se *store.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, store.ErrCodeUnknownField, se.Code)
}

func TestJoin_NestedAscendingOrder(t *testing.T) {
	st := buildCity(t)

	pairs, err := Join(st,
		citymap.KindDistrict, citymap.AttrBoundary,
		citymap.KindBuilding, citymap.AttrCentroid,
		geom.Covers)
	require.NoError(t, err)
	// Centroids (0,1), (4,1), (8,1) all inside the district boundary.
	assert.Equal(t, []Pair{{1, 1}, {1, 2}, {1, 3}}, pairs)
}

func TestJoin_Symmetry(t *testing.T) {
	st := buildCity(t)

	covers := geom.Covers
	coveredBy := func(a, b value.Value) bool { return geom.Covers(b, a) }

	forward, err := Join(st,
		citymap.KindDistrict, citymap.AttrBoundary,
		citymap.KindBuilding, citymap.AttrCentroid,
		covers)
	require.NoError(t, err)

	backward, err := Join(st,
		citymap.KindBuilding, citymap.AttrCentroid,
		citymap.KindDistrict, citymap.AttrBoundary,
		coveredBy)
	require.NoError(t, err)

	flipped := make(map[Pair]bool, len(backward))
	for _, p := range backward {
		flipped[Pair{A: p.B, B: p.A}] = true
	}
	require.Len(t, backward, len(forward))
	for _, p := range forward {
		assert.True(t, flipped[p], "pair %v missing from flipped join", p)
	}
}

func TestJoin_SkipsAbsentOnEitherSide(t *testing.T) {
	st := buildCity(t)
	// A second district with no boundary joins with nothing.
	_, err := st.AddPart(citymap.KindDistrict, store.Fields{
		Refs: map[string]int{citymap.MorphDistrictOf: 1},
	})
	require.NoError(t, err)

	pairs, err := Join(st,
		citymap.KindDistrict, citymap.AttrBoundary,
		citymap.KindBuilding, citymap.AttrCentroid,
		geom.Covers)
	require.NoError(t, err)
	assert.Equal(t, []Pair{{1, 1}, {1, 2}, {1, 3}}, pairs)
}
