// Package traverse provides the generic morphism-chain operations: upward
// composition of morphism values and downward expansion of incidence
// lookups. Domain-specific lookups (internal/citymap) are fixed
// instantiations of these two functions and carry no algorithm of their
// own.
package traverse

import (
	"errors"
	"fmt"

	"github.com/tessera-db/tessera/internal/store"
)

// BrokenChainError reports an unset morphism value encountered mid-chain
// during Up.
type BrokenChainError struct {
	// Morphism is the chain link whose value was unset.
	Morphism string

	// ID is the part whose morphism value was unset.
	ID int
}

// Error implements the error interface.
func (e *BrokenChainError) Error() string {
	return fmt.Sprintf("BROKEN_CHAIN: morphism %q unset on part %d", e.Morphism, e.ID)
}

// IsBrokenChain reports whether err is a BrokenChainError.
// Uses errors.As to handle wrapped errors.
func IsBrokenChain(err error) bool {
	var be *BrokenChainError
	return errors.As(err, &be)
}

// Up composes the chain of morphisms starting at id: the result of each
// link becomes the argument of the next. The result is deterministic and
// single-valued in O(len(chain)) lookups. An unset optional morphism
// mid-chain fails with BrokenChainError.
func Up(st *store.Store, id int, chain []string) (int, error) {
	cur := id
	for _, morphism := range chain {
		next, err := st.Ref(cur, morphism)
		if err != nil {
			return 0, err
		}
		if next == 0 {
			return 0, &BrokenChainError{Morphism: morphism, ID: cur}
		}
		cur = next
	}
	return cur, nil
}

// Down expands the chain of incidence lookups starting at {id}: at each
// step the current ids are replaced by the concatenation, in source order,
// of the incident sources of each current id under the next morphism.
//
// Duplicates are preserved: a part reachable through two parents appears
// twice. Callers that need a set must deduplicate themselves.
func Down(st *store.Store, id int, chain []string) ([]int, error) {
	current := []int{id}
	for _, morphism := range chain {
		var next []int
		for _, cur := range current {
			sources, _, err := st.Incident(cur, morphism)
			if err != nil {
				return nil, err
			}
			next = append(next, sources...)
		}
		current = next
	}
	return current, nil
}
