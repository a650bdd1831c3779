package labels

import (
	"github.com/retroenv/retrogolib/set"
)

// Tracker records which labelled addresses were emitted as part of the
// main output.
type Tracker struct {
	store   *Store
	visited set.Set[int]
}

// NewTracker returns a tracker for the labels of the given store.
func NewTracker(store *Store) *Tracker {
	return &Tracker{
		store:   store,
		visited: set.New[int](),
	}
}

// Visit marks the label at the address as emitted.
func (t *Tracker) Visit(address int) {
	t.visited.Add(t.store.canonical(address))
}

// Visited returns whether the label at the address was emitted.
func (t *Tracker) Visited(address int) bool {
	return t.visited.Contains(t.store.canonical(address))
}

// Unvisited returns all labelled addresses that were never emitted, in
// ascending order.
func (t *Tracker) Unvisited() []int {
	var result []int
	for _, address := range t.store.Addresses() {
		if !t.visited.Contains(address) {
			result = append(result, address)
		}
	}
	return result
}
