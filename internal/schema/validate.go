package schema

import (
	"errors"
	"fmt"

	"github.com/tessera-db/tessera/internal/value"
)

// ValidationError reports a structural problem in a schema declaration.
type ValidationError struct {
	// Entity is the declaration class: "kind", "domain", "morphism", or
	// "attribute".
	Entity string `json:"entity"`

	// Name is the offending declaration's name.
	Name string `json:"name"`

	// Message is a human-readable description.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema %s %q: %s", e.Entity, e.Name, e.Message)
}

// IsValidationError reports whether err is a schema ValidationError.
// Uses errors.As to handle wrapped errors.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks the schema for structural consistency:
//
//   - kind and domain names are non-empty and unique
//   - every domain tag is one the value package understands
//   - morphism and attribute names are unique across the shared field
//     namespace
//   - morphism endpoints and attribute owners reference declared kinds
//   - attribute domains reference declared value domains
//   - indexed morphisms form no cycle between kinds (the cascade engine
//     needs a dependency order)
func (s *Schema) Validate() error {
	seenKinds := make(map[string]bool, len(s.Kinds))
	for _, k := range s.Kinds {
		if k == "" {
			return &ValidationError{Entity: "kind", Name: k, Message: "name must be non-empty"}
		}
		if seenKinds[k] {
			return &ValidationError{Entity: "kind", Name: k, Message: "duplicate kind"}
		}
		seenKinds[k] = true
	}

	seenDomains := make(map[value.Domain]bool, len(s.Domains))
	for _, d := range s.Domains {
		if !value.IsKnownDomain(d) {
			return &ValidationError{Entity: "domain", Name: string(d), Message: "unknown value domain"}
		}
		if seenDomains[d] {
			return &ValidationError{Entity: "domain", Name: string(d), Message: "duplicate domain"}
		}
		seenDomains[d] = true
	}

	// Morphisms and attributes share one field namespace.
	seenFields := make(map[string]bool, len(s.Morphisms)+len(s.Attributes))
	for _, m := range s.Morphisms {
		if m.Name == "" {
			return &ValidationError{Entity: "morphism", Name: m.Name, Message: "name must be non-empty"}
		}
		if seenFields[m.Name] {
			return &ValidationError{Entity: "morphism", Name: m.Name, Message: "duplicate field name"}
		}
		seenFields[m.Name] = true
		if !seenKinds[m.Domain] {
			return &ValidationError{Entity: "morphism", Name: m.Name,
				Message: fmt.Sprintf("unknown domain kind %q", m.Domain)}
		}
		if !seenKinds[m.Codomain] {
			return &ValidationError{Entity: "morphism", Name: m.Name,
				Message: fmt.Sprintf("unknown codomain kind %q", m.Codomain)}
		}
	}
	for _, a := range s.Attributes {
		if a.Name == "" {
			return &ValidationError{Entity: "attribute", Name: a.Name, Message: "name must be non-empty"}
		}
		if seenFields[a.Name] {
			return &ValidationError{Entity: "attribute", Name: a.Name, Message: "duplicate field name"}
		}
		seenFields[a.Name] = true
		if !seenKinds[a.Kind] {
			return &ValidationError{Entity: "attribute", Name: a.Name,
				Message: fmt.Sprintf("unknown kind %q", a.Kind)}
		}
		if !seenDomains[a.Domain] {
			return &ValidationError{Entity: "attribute", Name: a.Name,
				Message: fmt.Sprintf("undeclared value domain %q", a.Domain)}
		}
	}

	if _, err := s.DependencyOrder(); err != nil {
		return err
	}
	return nil
}
