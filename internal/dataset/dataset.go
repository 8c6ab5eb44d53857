// Package dataset loads YAML part listings into a store. Loading initial
// data is a consumer concern, not a core one: the loader only calls the
// store's public mutation surface and owns no invariants of its own.
//
// A dataset file is an ordered list of parts. Order matters: morphism
// targets are ids, so a part must appear after every part it references.
//
//	parts:
//	  - kind: Region
//	    attrs: {name: "Old Town"}
//	  - kind: District
//	    refs: {district_of: 1}
//	    attrs: {boundary: [[0,0],[10,0],[10,10],[0,10]]}
package dataset

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/tessera-db/tessera/internal/store"
	"github.com/tessera-db/tessera/internal/value"
)

// Part is one entry of a dataset file.
type Part struct {
	// Kind is the object kind to create.
	Kind string `yaml:"kind"`

	// Refs maps morphism names to target ids of earlier parts.
	Refs map[string]int `yaml:"refs,omitempty"`

	// Attrs maps attribute names to raw YAML values, converted according
	// to the attribute's declared domain.
	Attrs map[string]any `yaml:"attrs,omitempty"`
}

// File is the top-level dataset document.
type File struct {
	Parts []Part `yaml:"parts"`
}

// Load reads a dataset document and adds every part to the store in file
// order. It returns the assigned ids, parallel to the file's part list.
// The store's own validation applies; the first failing part aborts the
// load with its position in the file.
func Load(st *store.Store, r io.Reader) ([]int, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return Add(st, f.Parts)
}

// LoadFile is Load over a file path.
func LoadFile(st *store.Store, path string) ([]int, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer fh.Close()
	return Load(st, fh)
}

// Add adds parts to the store in order and returns the assigned ids.
func Add(st *store.Store, parts []Part) ([]int, error) {
	op := uuid.Must(uuid.NewV7()).String()
	ids := make([]int, 0, len(parts))
	for i, p := range parts {
		fields, err := Convert(st, p)
		if err != nil {
			return nil, fmt.Errorf("part %d (%s): %w", i, p.Kind, err)
		}
		id, err := st.AddPart(p.Kind, fields)
		if err != nil {
			return nil, fmt.Errorf("part %d (%s): %w", i, p.Kind, err)
		}
		ids = append(ids, id)
	}
	slog.Debug("dataset load", "op", op, "parts", len(ids))
	return ids, nil
}

// Convert maps a Part's raw attribute values to typed store fields using
// the schema's declared domains.
func Convert(st *store.Store, p Part) (store.Fields, error) {
	fields := store.Fields{Refs: p.Refs}
	if len(p.Attrs) > 0 {
		fields.Attrs = make(map[string]value.Value, len(p.Attrs))
		for name, raw := range p.Attrs {
			attr, ok := st.Schema().Attribute(name)
			if !ok {
				return store.Fields{}, fmt.Errorf("unknown attribute %q", name)
			}
			v, err := convertValue(attr.Domain, raw)
			if err != nil {
				return store.Fields{}, fmt.Errorf("attribute %q: %w", name, err)
			}
			fields.Attrs[name] = v
		}
	}
	return fields, nil
}

// convertValue converts a raw YAML value to the declared domain.
func convertValue(d value.Domain, raw any) (value.Value, error) {
	switch d {
	case value.DomainString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("want string, got %T", raw)
		}
		return value.String(s), nil
	case value.DomainInt:
		n, ok := asInt(raw)
		if !ok {
			return nil, fmt.Errorf("want int, got %T", raw)
		}
		return value.Int(n), nil
	case value.DomainFloat:
		f, ok := asFloat(raw)
		if !ok {
			return nil, fmt.Errorf("want number, got %T", raw)
		}
		return value.Float(f), nil
	case value.DomainBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("want bool, got %T", raw)
		}
		return value.Bool(b), nil
	case value.DomainPoint:
		return convertPoint(raw)
	case value.DomainPolygon:
		list, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("want list of [x, y] pairs, got %T", raw)
		}
		poly := make(value.Polygon, 0, len(list))
		for i, el := range list {
			p, err := convertPoint(el)
			if err != nil {
				return nil, fmt.Errorf("vertex %d: %w", i, err)
			}
			poly = append(poly, p.(value.Point))
		}
		return poly, nil
	default:
		return nil, fmt.Errorf("unsupported domain %q", d)
	}
}

func convertPoint(raw any) (value.Value, error) {
	pair, ok := raw.([]any)
	if !ok || len(pair) != 2 {
		return nil, fmt.Errorf("want [x, y] pair, got %T", raw)
	}
	x, okX := asFloat(pair[0])
	y, okY := asFloat(pair[1])
	if !okX || !okY {
		return nil, fmt.Errorf("point coordinates must be numbers")
	}
	return value.Point{X: x, Y: y}, nil
}

func asInt(raw any) (int64, bool) {
	switch n := raw.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

func asFloat(raw any) (float64, bool) {
	switch n := raw.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
