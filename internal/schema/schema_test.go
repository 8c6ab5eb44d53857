package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-db/tessera/internal/value"
)

// chainSchema is a three-level containment hierarchy used across the
// package tests.
func chainSchema() *Schema {
	return &Schema{
		Kinds:   []string{"Region", "District", "Parcel"},
		Domains: []value.Domain{value.DomainString},
		Morphisms: []Morphism{
			{Name: "district_of", Domain: "District", Codomain: "Region", Indexed: true},
			{Name: "parcel_of", Domain: "Parcel", Codomain: "District", Indexed: true},
		},
		Attributes: []Attribute{
			{Name: "name", Kind: "Region", Domain: value.DomainString},
		},
	}
}

func TestSchema_Validate_OK(t *testing.T) {
	require.NoError(t, chainSchema().Validate())
}

func TestSchema_Validate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Schema)
	}{
		{"duplicate kind", func(s *Schema) { s.Kinds = append(s.Kinds, "Region") }},
		{"empty kind name", func(s *Schema) { s.Kinds = append(s.Kinds, "") }},
		{"unknown value domain", func(s *Schema) { s.Domains = append(s.Domains, "decimal") }},
		{"duplicate domain", func(s *Schema) { s.Domains = append(s.Domains, value.DomainString) }},
		{"unknown morphism domain kind", func(s *Schema) {
			s.Morphisms = append(s.Morphisms, Morphism{Name: "x_of", Domain: "Nope", Codomain: "Region"})
		}},
		{"unknown morphism codomain kind", func(s *Schema) {
			s.Morphisms = append(s.Morphisms, Morphism{Name: "x_of", Domain: "Parcel", Codomain: "Nope"})
		}},
		{"duplicate field name across morphisms", func(s *Schema) {
			s.Morphisms = append(s.Morphisms, Morphism{Name: "district_of", Domain: "Parcel", Codomain: "Region"})
		}},
		{"attribute clashes with morphism name", func(s *Schema) {
			s.Attributes = append(s.Attributes, Attribute{Name: "parcel_of", Kind: "Region", Domain: value.DomainString})
		}},
		{"attribute with undeclared domain", func(s *Schema) {
			s.Attributes = append(s.Attributes, Attribute{Name: "area", Kind: "Parcel", Domain: value.DomainFloat})
		}},
		{"attribute on unknown kind", func(s *Schema) {
			s.Attributes = append(s.Attributes, Attribute{Name: "area", Kind: "Nope", Domain: value.DomainString})
		}},
		{"indexed cycle", func(s *Schema) {
			s.Morphisms = append(s.Morphisms, Morphism{Name: "capital_of", Domain: "Region", Codomain: "District", Indexed: true})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := chainSchema()
			tt.mutate(s)
			err := s.Validate()
			require.Error(t, err)
			assert.True(t, IsValidationError(err), "got %T: %v", err, err)
		})
	}
}

func TestSchema_DependencyOrder(t *testing.T) {
	order, err := chainSchema().DependencyOrder()
	require.NoError(t, err)
	// Dependents first: Parcel depends on District depends on Region.
	assert.Equal(t, []string{"Parcel", "District", "Region"}, order)
}

func TestSchema_DependencyOrder_NonIndexedIgnored(t *testing.T) {
	s := chainSchema()
	// A non-indexed back edge must not create a cycle.
	s.Morphisms = append(s.Morphisms, Morphism{Name: "seat_of", Domain: "Region", Codomain: "District"})
	_, err := s.DependencyOrder()
	require.NoError(t, err)
}

func TestSchema_Lookups(t *testing.T) {
	s := chainSchema()

	m, ok := s.Morphism("parcel_of")
	require.True(t, ok)
	assert.Equal(t, "District", m.Codomain)

	_, ok = s.Morphism("nope")
	assert.False(t, ok)

	a, ok := s.Attribute("name")
	require.True(t, ok)
	assert.Equal(t, value.DomainString, a.Domain)

	assert.Len(t, s.MorphismsOf("District"), 1)
	assert.Empty(t, s.MorphismsOf("Region"))
	assert.Len(t, s.IndexedInto("Region"), 1)
	assert.Empty(t, s.IndexedInto("Parcel"))
	assert.True(t, s.HasKind("Parcel"))
	assert.False(t, s.HasKind("parcel"))
}
