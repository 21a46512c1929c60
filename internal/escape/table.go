package escape

import (
	"git.home.luguber.info/inful/sitepress/internal/foundation"
	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
)

// Table is an append-only arena of escaped substrings addressed by insertion index.
//
// Each slot can be taken exactly once. The zero value is ready to use.
type Table struct {
	slots []foundation.Option[string]
}

// Put stores s and returns its index.
func (t *Table) Put(s string) int {
	t.slots = append(t.slots, foundation.Some(s))
	return len(t.slots) - 1
}

// Take returns the value stored at index i and empties the slot.
func (t *Table) Take(i int) (string, error) {
	if i < 0 || i >= len(t.slots) {
		return "", errors.ConsistencyError("placeholder index out of range").
			WithContext("index", i).
			WithContext("size", len(t.slots)).
			Build()
	}
	v, ok := t.slots[i].Take()
	if !ok {
		return "", errors.ConsistencyError("placeholder already restored").
			WithContext("index", i).
			Build()
	}
	return v, nil
}

// Len reports how many values have been stored.
func (t *Table) Len() int {
	return len(t.slots)
}

// Pending reports how many stored values have not been taken yet.
func (t *Table) Pending() int {
	n := 0
	for _, s := range t.slots {
		if s.IsSome() {
			n++
		}
	}
	return n
}
