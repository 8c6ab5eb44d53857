package citymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-db/tessera/internal/store"
	"github.com/tessera-db/tessera/internal/traverse"
	"github.com/tessera-db/tessera/internal/value"
)

func TestSchema_Valid(t *testing.T) {
	require.NoError(t, Schema().Validate())
}

func TestSchema_DependencyOrder(t *testing.T) {
	order, err := Schema().DependencyOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{KindBuilding, KindRoad, KindParcel, KindDistrict, KindRegion}, order)
}

// buildScenario creates Region r1 with Districts d1, d2; Parcel p1 under
// d1; Building b1 on p1 with floor_area 100.
func buildScenario(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(Schema())
	require.NoError(t, err)

	r1, err := st.AddPart(KindRegion, store.Fields{
		Attrs: map[string]value.Value{AttrName: value.String("r1")},
	})
	require.NoError(t, err)
	d1, err := st.AddPart(KindDistrict, store.Fields{Refs: map[string]int{MorphDistrictOf: r1}})
	require.NoError(t, err)
	_, err = st.AddPart(KindDistrict, store.Fields{Refs: map[string]int{MorphDistrictOf: r1}})
	require.NoError(t, err)
	p1, err := st.AddPart(KindParcel, store.Fields{Refs: map[string]int{MorphParcelOf: d1}})
	require.NoError(t, err)
	_, err = st.AddPart(KindBuilding, store.Fields{
		Refs:  map[string]int{MorphBuildingOn: p1},
		Attrs: map[string]value.Value{AttrFloorArea: value.Float(100)},
	})
	require.NoError(t, err)
	return st
}

func TestBuildingsInRegion(t *testing.T) {
	st := buildScenario(t)

	got, err := BuildingsInRegion(st, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got)
}

func TestRegionOfBuilding(t *testing.T) {
	st := buildScenario(t)

	got, err := RegionOfBuilding(st, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestConvenienceLookupsAgreeWithGenericTraversal(t *testing.T) {
	st := buildScenario(t)

	viaChain, err := traverse.Down(st, 1, []string{MorphDistrictOf, MorphParcelOf, MorphBuildingOn})
	require.NoError(t, err)
	viaLookup, err := BuildingsInRegion(st, 1)
	require.NoError(t, err)
	assert.Equal(t, viaChain, viaLookup)
}

func TestParcelAndBuildingLookups(t *testing.T) {
	st := buildScenario(t)

	parcels, err := ParcelsInDistrict(st, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, parcels)

	parcels, err = ParcelsInDistrict(st, 2)
	require.NoError(t, err)
	assert.Empty(t, parcels)

	buildings, err := BuildingsOnParcel(st, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, buildings)

	d, err := DistrictOfParcel(st, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, d)
}

func TestRoadWithoutDistrict(t *testing.T) {
	st := buildScenario(t)

	road, err := st.AddPart(KindRoad, store.Fields{
		Attrs: map[string]value.Value{AttrLength: value.Float(2.5)},
	})
	require.NoError(t, err)

	// road_in is optional and unset; walking up from the road breaks.
	_, err = traverse.Up(st, road, []string{MorphRoadIn, MorphDistrictOf})
	assert.True(t, traverse.IsBrokenChain(err), "got %v", err)

	// Attaching it makes the chain resolve.
	require.NoError(t, st.SetRef(road, MorphRoadIn, 1))
	r, err := traverse.Up(st, road, []string{MorphRoadIn, MorphDistrictOf})
	require.NoError(t, err)
	assert.Equal(t, 1, r)
}
