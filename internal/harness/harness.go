// Package harness executes YAML conformance scenarios against a store and
// compares final state against golden files. It exists for tests and the
// demo tooling; production code never imports it.
package harness

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-db/tessera/internal/citymap"
	"github.com/tessera-db/tessera/internal/compiler"
	"github.com/tessera-db/tessera/internal/dataset"
	"github.com/tessera-db/tessera/internal/schema"
	"github.com/tessera-db/tessera/internal/store"
	"github.com/tessera-db/tessera/internal/traverse"
)

// Run executes the scenario and applies its assertions. The built store is
// returned for further inspection.
func Run(t *testing.T, sc *Scenario) *store.Store {
	t.Helper()

	st, err := store.New(resolveSchema(t, sc))
	require.NoError(t, err, "scenario %s: store construction", sc.Name)

	_, err = dataset.Add(st, sc.Setup)
	require.NoError(t, err, "scenario %s: setup", sc.Name)

	for i, op := range sc.Ops {
		err := applyOp(st, op)
		if op.Error != "" {
			require.Error(t, err, "scenario %s: op %d should fail", sc.Name, i)
			var se *store.StoreError
			require.ErrorAs(t, err, &se, "scenario %s: op %d error type", sc.Name, i)
			assert.Equal(t, store.ErrorCode(op.Error), se.Code, "scenario %s: op %d error code", sc.Name, i)
			continue
		}
		require.NoError(t, err, "scenario %s: op %d", sc.Name, i)
	}

	for i, a := range sc.Assertions {
		applyAssertion(t, st, sc.Name, i, a)
	}
	return st
}

// RunWithGolden executes the scenario and compares the final store dump
// against testdata/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, sc *Scenario) {
	t.Helper()

	st := Run(t, sc)
	var buf bytes.Buffer
	require.NoError(t, st.Dump(&buf))

	g := goldie.New(t)
	g.Assert(t, sc.Name, buf.Bytes())
}

func resolveSchema(t *testing.T, sc *Scenario) *schema.Schema {
	t.Helper()
	if sc.Schema == "" || sc.Schema == "city" {
		return citymap.Schema()
	}
	sch, err := compiler.CompileFile(scenarioPath(sc, sc.Schema))
	require.NoError(t, err, "scenario %s: schema", sc.Name)
	return sch
}

func scenarioPath(sc *Scenario, rel string) string {
	if sc.dir == "" {
		return rel
	}
	return sc.dir + "/" + rel
}

func applyOp(st *store.Store, op Op) error {
	switch op.Op {
	case "add":
		fields, err := dataset.Convert(st, dataset.Part{Kind: op.Kind, Refs: op.Refs, Attrs: op.Attrs})
		if err != nil {
			return err
		}
		_, err = st.AddPart(op.Kind, fields)
		return err
	case "set_ref":
		return st.SetRef(op.ID, op.Field, op.Target)
	case "clear_ref":
		return st.ClearRef(op.ID, op.Field)
	case "set_attr":
		attr, ok := st.Schema().Attribute(op.Field)
		if !ok {
			return fmt.Errorf("unknown attribute %q", op.Field)
		}
		fields, err := dataset.Convert(st, dataset.Part{
			Kind:  attr.Kind,
			Attrs: map[string]any{op.Field: op.Value},
		})
		if err != nil {
			return err
		}
		return st.SetAttr(op.ID, op.Field, fields.Attrs[op.Field])
	case "delete":
		return st.DeleteOne(op.Kind, op.ID)
	case "cascade_delete":
		return st.CascadingDelete(op.Kind, op.ID)
	default:
		return fmt.Errorf("unknown op %q", op.Op)
	}
}

func applyAssertion(t *testing.T, st *store.Store, name string, i int, a Assertion) {
	t.Helper()
	label := fmt.Sprintf("scenario %s: assertion %d (%s)", name, i, a.Type)
	switch a.Type {
	case "count":
		n, err := st.Count(a.Kind)
		require.NoError(t, err, label)
		assert.Equal(t, a.Want, n, label)
	case "incident":
		ids, _, err := st.Incident(a.Target, a.Field)
		require.NoError(t, err, label)
		assert.Equal(t, a.WantIDs, ids, label)
	case "up":
		got, err := traverse.Up(st, a.ID, a.Chain)
		require.NoError(t, err, label)
		assert.Equal(t, a.Want, got, label)
	case "down":
		got, err := traverse.Down(st, a.ID, a.Chain)
		require.NoError(t, err, label)
		assert.Equal(t, a.WantIDs, got, label)
	default:
		t.Fatalf("%s: unknown assertion type %q", label, a.Type)
	}
}
