// Package citymap declares the city schema as data and the fixed
// convenience lookups over it. Nothing here carries an independent
// algorithm: every lookup is an instantiation of traverse.Up or
// traverse.Down with a schema-specific chain.
package citymap

import (
	"github.com/tessera-db/tessera/internal/schema"
	"github.com/tessera-db/tessera/internal/store"
	"github.com/tessera-db/tessera/internal/traverse"
	"github.com/tessera-db/tessera/internal/value"
)

// Object kinds of the city schema.
const (
	KindRegion   = "Region"
	KindDistrict = "District"
	KindParcel   = "Parcel"
	KindBuilding = "Building"
	KindRoad     = "Road"
)

// Morphisms of the city schema. All containment edges are indexed; RoadIn
// is optional because a road may run outside any district.
const (
	MorphDistrictOf = "district_of" // District -> Region
	MorphParcelOf   = "parcel_of"   // Parcel -> District
	MorphBuildingOn = "building_on" // Building -> Parcel
	MorphRoadIn     = "road_in"     // Road -> District (optional)
)

// Attributes of the city schema.
const (
	AttrName      = "name"       // Region, District: string
	AttrBoundary  = "boundary"   // District: polygon
	AttrCentroid  = "centroid"   // Building: point
	AttrFloorArea = "floor_area" // Building: float
	AttrLength    = "length"     // Road: float
)

// Schema returns the city schema. The returned value is fresh on every
// call; callers own it.
func Schema() *schema.Schema {
	return &schema.Schema{
		Kinds: []string{KindRegion, KindDistrict, KindParcel, KindBuilding, KindRoad},
		Domains: []value.Domain{
			value.DomainString,
			value.DomainFloat,
			value.DomainPoint,
			value.DomainPolygon,
		},
		Morphisms: []schema.Morphism{
			{Name: MorphDistrictOf, Domain: KindDistrict, Codomain: KindRegion, Indexed: true},
			{Name: MorphParcelOf, Domain: KindParcel, Codomain: KindDistrict, Indexed: true},
			{Name: MorphBuildingOn, Domain: KindBuilding, Codomain: KindParcel, Indexed: true},
			{Name: MorphRoadIn, Domain: KindRoad, Codomain: KindDistrict, Indexed: true, Optional: true},
		},
		Attributes: []schema.Attribute{
			{Name: AttrName, Kind: KindRegion, Domain: value.DomainString},
			{Name: AttrBoundary, Kind: KindDistrict, Domain: value.DomainPolygon},
			{Name: AttrCentroid, Kind: KindBuilding, Domain: value.DomainPoint},
			{Name: AttrFloorArea, Kind: KindBuilding, Domain: value.DomainFloat},
			{Name: AttrLength, Kind: KindRoad, Domain: value.DomainFloat},
		},
	}
}

// downChain is the containment chain from Region to Building.
var downChain = []string{MorphDistrictOf, MorphParcelOf, MorphBuildingOn}

// upChain is the containment chain from Building to Region.
var upChain = []string{MorphBuildingOn, MorphParcelOf, MorphDistrictOf}

// BuildingsInRegion returns the buildings contained in the region, in
// source order per containment level. Duplicates would only appear if the
// containment graph had diamonds, which this schema does not.
func BuildingsInRegion(st *store.Store, region int) ([]int, error) {
	return traverse.Down(st, region, downChain)
}

// RegionOfBuilding returns the region containing the building.
func RegionOfBuilding(st *store.Store, building int) (int, error) {
	return traverse.Up(st, building, upChain)
}

// ParcelsInDistrict returns the parcels contained in the district.
func ParcelsInDistrict(st *store.Store, district int) ([]int, error) {
	return traverse.Down(st, district, []string{MorphParcelOf})
}

// BuildingsOnParcel returns the buildings on the parcel.
func BuildingsOnParcel(st *store.Store, parcel int) ([]int, error) {
	return traverse.Down(st, parcel, []string{MorphBuildingOn})
}

// DistrictOfParcel returns the district containing the parcel.
func DistrictOfParcel(st *store.Store, parcel int) (int, error) {
	return traverse.Up(st, parcel, []string{MorphParcelOf})
}
