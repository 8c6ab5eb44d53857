package store

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes a deterministic plain-text rendering of the store: kinds in
// schema declaration order, parts in ascending id order, fields in
// declaration order (morphisms before attributes). Unset morphisms render
// as "-"; absent attributes are omitted. Golden tests and the stats command
// rely on this format being stable.
func (st *Store) Dump(w io.Writer) error {
	for _, kind := range st.sch.Kinds {
		n := st.counts[kind]
		if _, err := fmt.Fprintf(w, "kind %s: %d\n", kind, n); err != nil {
			return err
		}
		morphs := st.sch.MorphismsOf(kind)
		attrs := st.sch.AttributesOf(kind)
		for id := 1; id <= n; id++ {
			var b strings.Builder
			fmt.Fprintf(&b, "  %d", id)
			for _, m := range morphs {
				v := st.refs[m.Name][id-1]
				if v == 0 {
					fmt.Fprintf(&b, " %s=-", m.Name)
				} else {
					fmt.Fprintf(&b, " %s=%d", m.Name, v)
				}
			}
			for _, a := range attrs {
				v := st.attrs[a.Name][id-1]
				if v != nil {
					fmt.Fprintf(&b, " %s=%s", a.Name, v.String())
				}
			}
			b.WriteByte('\n')
			if _, err := io.WriteString(w, b.String()); err != nil {
				return err
			}
		}
	}
	return nil
}
