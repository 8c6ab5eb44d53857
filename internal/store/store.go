// Package store implements the in-memory relational core: per-kind dense id
// spaces, morphism and attribute tables, incrementally maintained incidence
// indices for indexed morphisms, and the cascading delete engine.
//
// # Execution model
//
// The store is single-writer and synchronous. Every operation runs to
// completion before returning; there is no internal locking, no
// transactions, and no cancellation. Callers needing concurrent access must
// serialize writers externally. Mutations are all-or-nothing: validation
// completes before the first write, and the bulk operations (cascading
// delete) mutate a scratch clone and swap it in on success, so a reader
// between calls never observes a half-applied mutation.
//
// # Id policy
//
// Live ids of a kind form the contiguous range 1..Count(kind). Deleting
// parts renumbers the survivors and rewrites every morphism value that
// referenced a shifted id; this costs O(total live parts) per delete. A
// free-list arena with tombstones would make deletes O(1) amortized, but
// dense ids keep ascending-order traversal and filtering trivially correct,
// so the renumbering policy stands.
package store

import (
	"log/slog"
	"sort"

	"github.com/tessera-db/tessera/internal/schema"
	"github.com/tessera-db/tessera/internal/value"
)

// Cost tells an Incident caller which lookup strategy served the query.
type Cost int

const (
	// CostIndexed means the result came from the incidence table in
	// O(1) amortized time.
	CostIndexed Cost = iota

	// CostScan means the morphism is not indexed and the result came
	// from a full scan of the domain kind.
	CostScan
)

// String returns a short label for the cost class.
func (c Cost) String() string {
	if c == CostIndexed {
		return "indexed"
	}
	return "scan"
}

// Fields carries the values supplied to AddPart: morphism targets by
// morphism name and attribute values by attribute name.
type Fields struct {
	Refs  map[string]int
	Attrs map[string]value.Value
}

// Store is one mutable instance of a schema: the live id set, morphism
// table, and attribute table for each kind, plus the incidence table for
// each indexed morphism.
//
// INVARIANTS (between calls):
//   - every non-zero morphism value references a live part of the
//     codomain kind
//   - for every indexed morphism m and target t, idx[m][t] is exactly the
//     ascending set of live sources whose value is t
//   - live ids of a kind are exactly 1..counts[kind]
type Store struct {
	sch    *schema.Schema
	counts map[string]int             // kind -> live part count
	refs   map[string][]int           // morphism -> value per source id (index id-1), 0 = unset
	attrs  map[string][]value.Value   // attribute -> value per part (index id-1), nil = absent
	idx    map[string]map[int][]int   // indexed morphism -> target id -> ascending source ids
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used by bulk operations. Defaults to
// slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(st *Store) { st.logger = l }
}

// New creates an empty store for the given schema. The schema is validated
// first; an invalid schema is the only way New fails.
func New(sch *schema.Schema, opts ...Option) (*Store, error) {
	if err := sch.Validate(); err != nil {
		return nil, err
	}
	st := &Store{
		sch:    sch,
		counts: make(map[string]int, len(sch.Kinds)),
		refs:   make(map[string][]int, len(sch.Morphisms)),
		attrs:  make(map[string][]value.Value, len(sch.Attributes)),
		idx:    make(map[string]map[int][]int),
		logger: slog.Default(),
	}
	for _, k := range sch.Kinds {
		st.counts[k] = 0
	}
	for _, m := range sch.Morphisms {
		st.refs[m.Name] = nil
		if m.Indexed {
			st.idx[m.Name] = make(map[int][]int)
		}
	}
	for _, a := range sch.Attributes {
		st.attrs[a.Name] = nil
	}
	for _, opt := range opts {
		opt(st)
	}
	return st, nil
}

// Schema returns the schema this store instantiates.
func (st *Store) Schema() *schema.Schema { return st.sch }

// Count returns the number of live parts of kind.
func (st *Store) Count(kind string) (int, error) {
	n, ok := st.counts[kind]
	if !ok {
		return 0, NewUnknownKindError(kind)
	}
	return n, nil
}

// Parts returns all live ids of kind in ascending order.
func (st *Store) Parts(kind string) ([]int, error) {
	n, err := st.Count(kind)
	if err != nil {
		return nil, err
	}
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i + 1
	}
	return ids, nil
}

// live reports whether id is a live part of kind. The kind must exist.
func (st *Store) live(kind string, id int) bool {
	return id >= 1 && id <= st.counts[kind]
}

// AddPart creates a part of kind from the supplied field values and returns
// its id (the next dense id for the kind).
//
// Every non-optional morphism of the kind must be present in f.Refs, and
// every supplied target must be a live part of the morphism's codomain
// kind. Attribute values are optional but must match their declared
// domains. Validation completes before any mutation, so a failed AddPart
// leaves the store untouched.
func (st *Store) AddPart(kind string, f Fields) (int, error) {
	if _, ok := st.counts[kind]; !ok {
		return 0, NewUnknownKindError(kind)
	}
	morphs := st.sch.MorphismsOf(kind)
	attrs := st.sch.AttributesOf(kind)

	// Reject field names that do not belong to this kind.
	for name := range f.Refs {
		if !morphismOf(morphs, name) {
			return 0, NewUnknownFieldError(name, "not a morphism of kind "+kind)
		}
	}
	for name := range f.Attrs {
		if !attributeOf(attrs, name) {
			return 0, NewUnknownFieldError(name, "not an attribute of kind "+kind)
		}
	}

	// Validate every morphism value before mutating anything.
	for _, m := range morphs {
		target, present := f.Refs[m.Name]
		if !present {
			if m.Optional {
				continue
			}
			return 0, NewRefIntegrityError(kind, m.Name, 0, "required morphism not supplied")
		}
		if !st.live(m.Codomain, target) {
			return 0, NewRefIntegrityError(kind, m.Name, target, "target not live in codomain kind "+m.Codomain)
		}
	}
	for _, a := range attrs {
		v, present := f.Attrs[a.Name]
		if !present || v == nil {
			continue
		}
		if v.Domain() != a.Domain {
			return 0, NewTypeMismatchError(kind, a.Name,
				"value domain "+string(v.Domain())+" does not match declared domain "+string(a.Domain))
		}
	}

	id := st.counts[kind] + 1
	st.counts[kind] = id
	for _, m := range morphs {
		target := f.Refs[m.Name] // zero value means unset (optional only)
		st.refs[m.Name] = append(st.refs[m.Name], target)
		if m.Indexed && target != 0 {
			// The new id is the largest of its kind, so appending
			// preserves ascending order.
			st.idx[m.Name][target] = append(st.idx[m.Name][target], id)
		}
	}
	for _, a := range attrs {
		st.attrs[a.Name] = append(st.attrs[a.Name], f.Attrs[a.Name])
	}
	return id, nil
}

// Ref reads the morphism value of a part. An unset optional morphism reads
// as 0, which is never a live id.
func (st *Store) Ref(id int, morphism string) (int, error) {
	m, ok := st.sch.Morphism(morphism)
	if !ok {
		return 0, NewUnknownFieldError(morphism, "morphism not declared in schema")
	}
	if !st.live(m.Domain, id) {
		return 0, NewOutOfRangeError(m.Domain, id)
	}
	return st.refs[morphism][id-1], nil
}

// Attr reads the attribute value of a part. An absent attribute reads as
// nil.
func (st *Store) Attr(id int, attribute string) (value.Value, error) {
	a, ok := st.sch.Attribute(attribute)
	if !ok {
		return nil, NewUnknownFieldError(attribute, "attribute not declared in schema")
	}
	if !st.live(a.Kind, id) {
		return nil, NewOutOfRangeError(a.Kind, id)
	}
	return st.attrs[attribute][id-1], nil
}

// SetRef updates a part's morphism value. For an indexed morphism the
// source is removed from the old target's incidence entry and inserted into
// the new target's entry before SetRef returns.
func (st *Store) SetRef(id int, morphism string, target int) error {
	m, ok := st.sch.Morphism(morphism)
	if !ok {
		return NewUnknownFieldError(morphism, "morphism not declared in schema")
	}
	if !st.live(m.Domain, id) {
		return NewOutOfRangeError(m.Domain, id)
	}
	if !st.live(m.Codomain, target) {
		return NewRefIntegrityError(m.Domain, morphism, target, "target not live in codomain kind "+m.Codomain)
	}
	old := st.refs[morphism][id-1]
	if old == target {
		return nil
	}
	if m.Indexed {
		if old != 0 {
			st.idx[morphism][old] = removeSorted(st.idx[morphism][old], id)
		}
		st.idx[morphism][target] = insertSorted(st.idx[morphism][target], id)
	}
	st.refs[morphism][id-1] = target
	return nil
}

// ClearRef unsets a part's optional morphism value. Clearing a required
// morphism is a referential-integrity violation.
func (st *Store) ClearRef(id int, morphism string) error {
	m, ok := st.sch.Morphism(morphism)
	if !ok {
		return NewUnknownFieldError(morphism, "morphism not declared in schema")
	}
	if !m.Optional {
		return NewRefIntegrityError(m.Domain, morphism, id, "required morphism cannot be unset")
	}
	if !st.live(m.Domain, id) {
		return NewOutOfRangeError(m.Domain, id)
	}
	old := st.refs[morphism][id-1]
	if old == 0 {
		return nil
	}
	if m.Indexed {
		st.idx[morphism][old] = removeSorted(st.idx[morphism][old], id)
	}
	st.refs[morphism][id-1] = 0
	return nil
}

// SetAttr updates a part's attribute value. A nil value clears the
// attribute (attributes are nullable).
func (st *Store) SetAttr(id int, attribute string, v value.Value) error {
	a, ok := st.sch.Attribute(attribute)
	if !ok {
		return NewUnknownFieldError(attribute, "attribute not declared in schema")
	}
	if !st.live(a.Kind, id) {
		return NewOutOfRangeError(a.Kind, id)
	}
	if v != nil && v.Domain() != a.Domain {
		return NewTypeMismatchError(a.Kind, attribute,
			"value domain "+string(v.Domain())+" does not match declared domain "+string(a.Domain))
	}
	st.attrs[attribute][id-1] = v
	return nil
}

// Incident returns the sources whose morphism value equals target, in
// ascending id order, together with the cost class that served the query:
// CostIndexed for indexed morphisms (incidence table lookup), CostScan for
// non-indexed morphisms (full scan of the domain kind). Callers with a
// structural relationship should prefer indexed morphisms; the scan path
// exists as a fallback, not an engine.
func (st *Store) Incident(target int, morphism string) ([]int, Cost, error) {
	m, ok := st.sch.Morphism(morphism)
	if !ok {
		return nil, CostScan, NewUnknownFieldError(morphism, "morphism not declared in schema")
	}
	if !st.live(m.Codomain, target) {
		return nil, CostScan, NewOutOfRangeError(m.Codomain, target)
	}
	if m.Indexed {
		entry := st.idx[morphism][target]
		out := make([]int, len(entry))
		copy(out, entry)
		return out, CostIndexed, nil
	}
	var out []int
	for i, v := range st.refs[morphism] {
		if v == target {
			out = append(out, i+1)
		}
	}
	return out, CostScan, nil
}

// Clone returns a deep copy of the store sharing only the immutable schema
// and attribute values. The cascade engine mutates a clone and swaps it in
// on success.
func (st *Store) Clone() *Store {
	cp := &Store{
		sch:    st.sch,
		counts: make(map[string]int, len(st.counts)),
		refs:   make(map[string][]int, len(st.refs)),
		attrs:  make(map[string][]value.Value, len(st.attrs)),
		idx:    make(map[string]map[int][]int, len(st.idx)),
		logger: st.logger,
	}
	for k, n := range st.counts {
		cp.counts[k] = n
	}
	for name, vals := range st.refs {
		cp.refs[name] = append([]int(nil), vals...)
	}
	for name, vals := range st.attrs {
		cp.attrs[name] = append([]value.Value(nil), vals...)
	}
	for name, entries := range st.idx {
		m := make(map[int][]int, len(entries))
		for target, sources := range entries {
			m[target] = append([]int(nil), sources...)
		}
		cp.idx[name] = m
	}
	return cp
}

func morphismOf(morphs []schema.Morphism, name string) bool {
	for _, m := range morphs {
		if m.Name == name {
			return true
		}
	}
	return false
}

func attributeOf(attrs []schema.Attribute, name string) bool {
	for _, a := range attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}

// insertSorted inserts id into an ascending slice, keeping it sorted.
func insertSorted(s []int, id int) []int {
	i := sort.SearchInts(s, id)
	if i < len(s) && s[i] == id {
		return s
	}
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = id
	return s
}

// removeSorted removes id from an ascending slice if present.
func removeSorted(s []int, id int) []int {
	i := sort.SearchInts(s, id)
	if i >= len(s) || s[i] != id {
		return s
	}
	return append(s[:i], s[i+1:]...)
}
