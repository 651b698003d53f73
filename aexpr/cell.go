package aexpr

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// A dependent is an expression node as seen from the cells it subscribes to.
type dependent interface {
	Node
	seq() uint64
	isDisposed() bool
	markDirty()
	notifyDependencyChanged() error
}

// Cell is an addressable mutable location plus the set of expressions that
// read it during their latest evaluation. The cell is an address, not a
// deduplicating store: every write propagates, whether or not the value moved.
type Cell struct {
	id    Identity
	value any
	// It's a set because an expression may read the same location many times
	// but must only be re-evaluated once per write
	dependents mapset.Set[dependent]
}

func newCell(id Identity, value any) *Cell {
	return &Cell{
		id:         id,
		value:      value,
		dependents: mapset.NewThreadUnsafeSet[dependent](),
	}
}

func (c *Cell) Identity() Identity {
	return c.id
}

// Value is the last value observed for the location, by a tracked read or a write.
func (c *Cell) Value() any {
	return c.value
}

func (c *Cell) DependentCount() int {
	return c.dependents.Cardinality()
}

func (c *Cell) subscribe(d dependent) {
	c.dependents.Add(d)
}

// unsubscribe reports whether the cell has no dependents left.
func (c *Cell) unsubscribe(d dependent) bool {
	c.dependents.Remove(d)
	return c.dependents.Cardinality() == 0
}

// snapshot copies the dependents in creation order, so propagation can iterate
// while re-evaluations subscribe and unsubscribe.
func (c *Cell) snapshot() []dependent {
	deps := c.dependents.ToSlice()
	slices.SortFunc(deps, compareDependents)
	return deps
}

func compareDependents(a, b dependent) int {
	switch {
	case a.seq() < b.seq():
		return -1
	case a.seq() > b.seq():
		return 1
	default:
		return 0
	}
}
