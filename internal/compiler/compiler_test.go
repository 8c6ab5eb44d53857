package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-db/tessera/internal/schema"
	"github.com/tessera-db/tessera/internal/value"
)

const citySrc = `
schema: {
	kinds: ["Region", "District", "Parcel"]
	domains: ["string", "polygon"]
	morphisms: [
		{name: "district_of", domain: "District", codomain: "Region", indexed: true},
		{name: "parcel_of", domain: "Parcel", codomain: "District", indexed: true, optional: false},
	]
	attributes: [
		{name: "name", kind: "Region", domain: "string"},
		{name: "boundary", kind: "District", domain: "polygon"},
	]
}
`

func TestCompileString_City(t *testing.T) {
	sch, err := CompileString(citySrc)
	require.NoError(t, err)

	assert.Equal(t, []string{"Region", "District", "Parcel"}, sch.Kinds)
	assert.Equal(t, []value.Domain{value.DomainString, value.DomainPolygon}, sch.Domains)

	require.Len(t, sch.Morphisms, 2)
	assert.Equal(t, schema.Morphism{
		Name: "district_of", Domain: "District", Codomain: "Region", Indexed: true,
	}, sch.Morphisms[0])
	assert.False(t, sch.Morphisms[1].Optional)

	require.Len(t, sch.Attributes, 2)
	assert.Equal(t, value.DomainPolygon, sch.Attributes[1].Domain)
}

func TestCompileString_MissingSchemaStruct(t *testing.T) {
	_, err := CompileString(`other: {}`)
	require.Error(t, err)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "schema", ce.Field)
}

func TestCompileString_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no kinds", `schema: {domains: ["string"]}`},
		{"morphism without codomain", `schema: {
			kinds: ["A", "B"]
			morphisms: [{name: "m", domain: "A"}]
		}`},
		{"attribute without domain", `schema: {
			kinds: ["A"]
			domains: ["string"]
			attributes: [{name: "a", kind: "A"}]
		}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileString(tt.src)
			require.Error(t, err)
			var ce *CompileError
			assert.ErrorAs(t, err, &ce)
		})
	}
}

func TestCompileString_SchemaValidationApplies(t *testing.T) {
	// Structurally well-formed CUE whose schema references an unknown
	// kind must fail with a schema validation error, not compile.
	src := `schema: {
		kinds: ["A"]
		morphisms: [{name: "m", domain: "A", codomain: "Missing", indexed: true}]
	}`
	_, err := CompileString(src)
	require.Error(t, err)
	assert.True(t, schema.IsValidationError(err), "got %T: %v", err, err)
}

func TestCompileString_NFCNormalization(t *testing.T) {
	// "é" written as "e" + combining acute must compile to the
	// precomposed form.
	src := "schema: {kinds: [\"Café\"]}"
	sch, err := CompileString(src)
	require.NoError(t, err)
	require.Len(t, sch.Kinds, 1)
	assert.Equal(t, "Caf\u00e9", sch.Kinds[0])
}

func TestCompileString_SyntaxError(t *testing.T) {
	_, err := CompileString(`schema: {kinds: [`)
	require.Error(t, err)
}
