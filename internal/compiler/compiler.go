// Package compiler turns CUE schema declarations into validated
// schema.Schema values. Schemas for specific domains (city, grid, world
// map) are data, not code: a declaration names its kinds, morphisms,
// domains, and attributes, and the compiler produces the immutable
// structure the store consumes.
//
// Identifier hygiene: every kind, morphism, attribute, and domain name is
// NFC-normalized during compilation, so lookups by name are canonical
// regardless of how the declaration file encoded them.
package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"golang.org/x/text/unicode/norm"

	"github.com/tessera-db/tessera/internal/schema"
	"github.com/tessera-db/tessera/internal/value"
)

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CompileFile compiles the schema declaration in a CUE file. The file must
// define a top-level "schema" struct.
func CompileFile(path string) (*schema.Schema, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	return CompileString(string(src))
}

// CompileString compiles a schema declaration from CUE source. The source
// must define a top-level "schema" struct.
func CompileString(src string) (*schema.Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	sv := v.LookupPath(cue.ParsePath("schema"))
	if !sv.Exists() {
		return nil, &CompileError{
			Field:   "schema",
			Message: "top-level schema struct is required",
			Pos:     v.Pos(),
		}
	}
	return CompileSchema(sv)
}

// CompileSchema parses a CUE value into a schema.Schema and validates it.
// The CUE value should be the schema struct itself:
//
//	schema: {
//		kinds: ["Region", "District"]
//		domains: ["string", "polygon"]
//		morphisms: [{name: "district_of", domain: "District", codomain: "Region", indexed: true}]
//		attributes: [{name: "name", kind: "Region", domain: "string"}]
//	}
func CompileSchema(v cue.Value) (*schema.Schema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	sch := &schema.Schema{}
	var err error

	sch.Kinds, err = parseStringList(v, "kinds", true)
	if err != nil {
		return nil, err
	}

	domains, err := parseStringList(v, "domains", false)
	if err != nil {
		return nil, err
	}
	for _, d := range domains {
		sch.Domains = append(sch.Domains, value.Domain(d))
	}

	sch.Morphisms, err = parseMorphisms(v)
	if err != nil {
		return nil, err
	}

	sch.Attributes, err = parseAttributes(v)
	if err != nil {
		return nil, err
	}

	if err := sch.Validate(); err != nil {
		return nil, err
	}
	return sch, nil
}

// parseStringList parses a list of NFC-normalized strings at the given
// field. A required field that is missing is a compile error; an optional
// one yields nil.
func parseStringList(v cue.Value, field string, required bool) ([]string, error) {
	lv := v.LookupPath(cue.ParsePath(field))
	if !lv.Exists() {
		if required {
			return nil, &CompileError{
				Field:   field,
				Message: field + " is required",
				Pos:     v.Pos(),
			}
		}
		return nil, nil
	}
	iter, err := lv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, norm.NFC.String(s))
	}
	return out, nil
}

// parseMorphisms parses the morphisms list. Each entry requires name,
// domain, and codomain; indexed and optional default to false.
func parseMorphisms(v cue.Value) ([]schema.Morphism, error) {
	lv := v.LookupPath(cue.ParsePath("morphisms"))
	if !lv.Exists() {
		return nil, nil
	}
	iter, err := lv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []schema.Morphism
	for iter.Next() {
		mv := iter.Value()
		var m schema.Morphism
		if m.Name, err = requiredString(mv, "name"); err != nil {
			return nil, err
		}
		if m.Domain, err = requiredString(mv, "domain"); err != nil {
			return nil, err
		}
		if m.Codomain, err = requiredString(mv, "codomain"); err != nil {
			return nil, err
		}
		if m.Indexed, err = optionalBool(mv, "indexed"); err != nil {
			return nil, err
		}
		if m.Optional, err = optionalBool(mv, "optional"); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// parseAttributes parses the attributes list. Each entry requires name,
// kind, and domain.
func parseAttributes(v cue.Value) ([]schema.Attribute, error) {
	lv := v.LookupPath(cue.ParsePath("attributes"))
	if !lv.Exists() {
		return nil, nil
	}
	iter, err := lv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []schema.Attribute
	for iter.Next() {
		av := iter.Value()
		var a schema.Attribute
		if a.Name, err = requiredString(av, "name"); err != nil {
			return nil, err
		}
		if a.Kind, err = requiredString(av, "kind"); err != nil {
			return nil, err
		}
		domain, err := requiredString(av, "domain")
		if err != nil {
			return nil, err
		}
		a.Domain = value.Domain(domain)
		out = append(out, a)
	}
	return out, nil
}

// requiredString extracts an NFC-normalized string field.
func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return norm.NFC.String(s), nil
}

// optionalBool extracts a bool field defaulting to false.
func optionalBool(v cue.Value, field string) (bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return false, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
