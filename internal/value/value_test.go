package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue_DomainTags(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want Domain
	}{
		{"string", String("x"), DomainString},
		{"int", Int(7), DomainInt},
		{"float", Float(1.5), DomainFloat},
		{"bool", Bool(true), DomainBool},
		{"point", Point{X: 1, Y: 2}, DomainPoint},
		{"polygon", Polygon{{0, 0}, {1, 0}, {0, 1}}, DomainPolygon},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.Domain())
		})
	}
}

func TestValue_StringRendering(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"string quoted", String(`a "b"`), `"a \"b\""`},
		{"int", Int(-3), "-3"},
		{"float whole", Float(100), "100"},
		{"float fractional", Float(0.5), "0.5"},
		{"bool", Bool(false), "false"},
		{"point", Point{X: 2, Y: 3}, "(2 3)"},
		{"polygon", Polygon{{0, 0}, {10, 0}, {10, 10}}, "[(0 0) (10 0) (10 10)]"},
		{"empty polygon", Polygon{}, "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.String())
		})
	}
}

func TestIsKnownDomain(t *testing.T) {
	for _, d := range KnownDomains {
		assert.True(t, IsKnownDomain(d), "domain %s", d)
	}
	assert.False(t, IsKnownDomain(Domain("decimal")))
}
