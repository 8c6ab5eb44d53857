package schema

// DependencyOrder returns the schema's kinds ordered so that every kind
// appears before any kind it points at through an indexed morphism
// (dependents first, containment targets last). The cascade engine deletes
// in this order, so the deepest dependents of a target are gone before the
// target itself is touched.
//
// The order is computed with Kahn's algorithm over the kind dependency
// graph; ties are broken by declaration order so the result is
// deterministic. An indexed-morphism cycle between kinds makes a
// dependency order impossible and is reported as a ValidationError.
func (s *Schema) DependencyOrder() ([]string, error) {
	// indeg counts indexed morphisms arriving at each kind. A kind with
	// indeg 0 has no dependents and is safe to emit.
	indeg := make(map[string]int, len(s.Kinds))
	outgoing := make(map[string][]string, len(s.Kinds)) // domain -> codomains
	for _, k := range s.Kinds {
		indeg[k] = 0
	}
	for _, m := range s.Morphisms {
		if !m.Indexed {
			continue
		}
		indeg[m.Codomain]++
		outgoing[m.Domain] = append(outgoing[m.Domain], m.Codomain)
	}

	order := make([]string, 0, len(s.Kinds))
	emitted := make(map[string]bool, len(s.Kinds))
	remaining := len(s.Kinds)
	for remaining > 0 {
		progressed := false
		for _, k := range s.Kinds {
			if emitted[k] || indeg[k] != 0 {
				continue
			}
			order = append(order, k)
			emitted[k] = true
			remaining--
			progressed = true
			for _, target := range outgoing[k] {
				indeg[target]--
			}
		}
		if !progressed {
			return nil, &ValidationError{
				Entity:  "morphism",
				Name:    "indexed",
				Message: "indexed morphisms form a cycle between kinds",
			}
		}
	}
	return order, nil
}
