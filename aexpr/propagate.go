package aexpr

import (
	"errors"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// TrackRead is the read hook for instrumented locations. Outside a tracked
// evaluation it does nothing at all.
func (rs *ReactiveSystem) TrackRead(id Identity, value any) {
	rs.tracker.record(id, value)
}

// NotifyWrite is the write hook for instrumented locations, called after the
// underlying storage was updated. A location nothing depends on has no cell
// and the write is a plain mutation. Otherwise every dependent is
// re-evaluated, unconditionally, since the cell does not compare values.
// Enclosing evaluations that already read the location, other than the one
// writing it, are marked dirty and run again before they commit.
// The returned error joins every evaluation and observer failure.
func (rs *ReactiveSystem) NotifyWrite(id Identity, value any) error {
	rs.stats.Writes++
	rs.tracker.invalidate(id)
	c, ok := rs.cells.lookup(id)
	if !ok {
		return nil
	}
	c.value = value
	if rs.batchDepth > 0 {
		if rs.pendingSet.Add(c) {
			rs.pending = append(rs.pending, c)
		}
		return nil
	}
	return rs.propagate(c.snapshot())
}

// propagate notifies a snapshot of dependents. Nodes disposed by an earlier
// notification in the same pass are skipped.
func (rs *ReactiveSystem) propagate(dependents []dependent) error {
	depth := rs.tracker.push(framePropagating, nil)
	defer rs.tracker.pop(depth)

	var errs []error
	for _, d := range dependents {
		if d.isDisposed() {
			continue
		}
		rs.stats.Notifications++
		if err := d.notifyDependencyChanged(); err != nil {
			rs.report(d, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Batch defers propagation until the outermost batch returns. Each expression
// depending on any location written in the batch is then re-evaluated once.
func (rs *ReactiveSystem) Batch(fn func() error) (err error) {
	rs.batchDepth++
	defer func() {
		rs.batchDepth--
		if rs.batchDepth == 0 {
			err = errors.Join(err, rs.flush())
		}
	}()
	return fn()
}

func (rs *ReactiveSystem) flush() error {
	if len(rs.pending) == 0 {
		return nil
	}
	cells := rs.pending
	rs.pending = nil
	rs.pendingSet.Clear()

	seen := mapset.NewThreadUnsafeSet[dependent]()
	var dependents []dependent
	for _, c := range cells {
		for _, d := range c.snapshot() {
			if seen.Add(d) {
				dependents = append(dependents, d)
			}
		}
	}
	slices.SortFunc(dependents, compareDependents)
	return rs.propagate(dependents)
}
