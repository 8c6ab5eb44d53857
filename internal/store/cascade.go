package store

import (
	"github.com/google/uuid"
)

// CascadingDelete removes the part together with its full dependent
// closure: every part transitively reachable from it by following indexed
// morphisms in the reverse (dependent) direction.
//
// Removal is leaf-most-dependent-first along the schema dependency order,
// then surviving ids are compacted per kind (each id above a removed id is
// decremented) and every stored morphism value referencing a shifted id is
// rewritten. The whole operation runs against a scratch clone and is
// swapped in on success, so it is all-or-nothing: a failure leaves the
// store exactly as it was, and no reader between calls can observe a
// partially deleted closure or a half-compacted id space.
//
// A non-indexed morphism on a surviving part that references a doomed part
// would be left dangling; that is detected during validation and fails the
// whole delete with a referential-integrity error.
func (st *Store) CascadingDelete(kind string, id int) error {
	if _, ok := st.counts[kind]; !ok {
		return NewUnknownKindError(kind)
	}
	if !st.live(kind, id) {
		return NewOutOfRangeError(kind, id)
	}

	doomed := st.closure(kind, id)
	if err := st.checkNoDangling(doomed); err != nil {
		return err
	}

	removed := 0
	for _, ids := range doomed {
		removed += len(ids)
	}
	op := uuid.Must(uuid.NewV7()).String()
	st.logger.Debug("cascading delete",
		"op", op, "kind", kind, "id", id, "closure_size", removed)

	st.applyDelete(doomed)
	return nil
}

// DeleteOne removes a single part. It fails with a dependent-parts error if
// any indexed morphism has live sources pointing at the part; use
// CascadingDelete when cascading is intended. Id compaction is the same as
// for CascadingDelete.
func (st *Store) DeleteOne(kind string, id int) error {
	if _, ok := st.counts[kind]; !ok {
		return NewUnknownKindError(kind)
	}
	if !st.live(kind, id) {
		return NewOutOfRangeError(kind, id)
	}
	for _, m := range st.sch.IndexedInto(kind) {
		sources, _, err := st.Incident(id, m.Name)
		if err != nil {
			return err
		}
		if len(sources) > 0 {
			return NewDependentPartsError(kind, id, m.Name)
		}
	}
	doomed := map[string]map[int]bool{kind: {id: true}}
	if err := st.checkNoDangling(doomed); err != nil {
		return err
	}
	st.applyDelete(doomed)
	return nil
}

// closure computes the dependent closure of (kind, id): the part itself
// plus every part reachable against the direction of an indexed morphism.
func (st *Store) closure(kind string, id int) map[string]map[int]bool {
	doomed := map[string]map[int]bool{kind: {id: true}}
	type item struct {
		kind string
		id   int
	}
	work := []item{{kind, id}}
	for len(work) > 0 {
		cur := work[0]
		work = work[1:]
		for _, m := range st.sch.IndexedInto(cur.kind) {
			for _, src := range st.idx[m.Name][cur.id] {
				if doomed[m.Domain] == nil {
					doomed[m.Domain] = make(map[int]bool)
				}
				if doomed[m.Domain][src] {
					continue
				}
				doomed[m.Domain][src] = true
				work = append(work, item{m.Domain, src})
			}
		}
	}
	return doomed
}

// checkNoDangling verifies that removing the doomed set leaves no surviving
// morphism value referencing a doomed part. Indexed morphisms cannot
// dangle (their sources are in the closure by construction); only
// non-indexed morphisms need checking.
func (st *Store) checkNoDangling(doomed map[string]map[int]bool) error {
	for _, m := range st.sch.Morphisms {
		if m.Indexed {
			continue
		}
		targets := doomed[m.Codomain]
		if len(targets) == 0 {
			continue
		}
		for i, v := range st.refs[m.Name] {
			src := i + 1
			if v != 0 && targets[v] && !doomed[m.Domain][src] {
				return NewRefIntegrityError(m.Domain, m.Name, v,
					"delete would leave a dangling non-indexed reference")
			}
		}
	}
	return nil
}

// applyDelete removes the doomed parts and compacts ids, mutating a clone
// and swapping it into the receiver. Removal follows the schema dependency
// order (dependents first); because the clone is only published at the end,
// the order is about keeping the rewrite logic reviewable rather than
// about visibility.
func (st *Store) applyDelete(doomed map[string]map[int]bool) {
	cp := st.Clone()

	// Dependency order is precomputed by schema validation; Validate ran
	// in New, so the error path is unreachable here.
	order, err := st.sch.DependencyOrder()
	if err != nil {
		panic("store: schema lost its dependency order: " + err.Error())
	}

	// Per-kind remap from old id to compacted id; 0 entries mean removed.
	remap := make(map[string][]int, len(st.counts))
	for _, kind := range order {
		n := cp.counts[kind]
		kindMap := make([]int, n+1)
		next := 0
		for oldID := 1; oldID <= n; oldID++ {
			if doomed[kind][oldID] {
				continue
			}
			next++
			kindMap[oldID] = next
		}
		remap[kind] = kindMap
		cp.counts[kind] = next
	}

	// Rebuild morphism tables over survivors, rewriting shifted targets.
	for _, m := range st.sch.Morphisms {
		old := cp.refs[m.Name]
		rebuilt := make([]int, 0, cp.counts[m.Domain])
		srcMap := remap[m.Domain]
		dstMap := remap[m.Codomain]
		for oldID := 1; oldID <= len(old); oldID++ {
			if srcMap[oldID] == 0 {
				continue
			}
			v := old[oldID-1]
			if v != 0 {
				v = dstMap[v]
			}
			rebuilt = append(rebuilt, v)
		}
		cp.refs[m.Name] = rebuilt
	}

	// Rebuild attribute tables over survivors.
	for _, a := range st.sch.Attributes {
		old := cp.attrs[a.Name]
		rebuilt := cp.attrs[a.Name][:0:0]
		kindMap := remap[a.Kind]
		for oldID := 1; oldID <= len(old); oldID++ {
			if kindMap[oldID] == 0 {
				continue
			}
			rebuilt = append(rebuilt, old[oldID-1])
		}
		cp.attrs[a.Name] = rebuilt
	}

	// Rebuild incidence tables from the rewritten morphism tables.
	// Sources are visited in ascending order, so entries stay sorted.
	for _, m := range st.sch.Morphisms {
		if !m.Indexed {
			continue
		}
		entries := make(map[int][]int)
		for i, v := range cp.refs[m.Name] {
			if v != 0 {
				entries[v] = append(entries[v], i+1)
			}
		}
		cp.idx[m.Name] = entries
	}

	// Publish the fully rewritten state in one step.
	st.counts = cp.counts
	st.refs = cp.refs
	st.attrs = cp.attrs
	st.idx = cp.idx
}
