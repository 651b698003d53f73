package aexpr

import (
	"errors"
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// Evaluator computes an expression from its bound instances, positionally.
// It must only read mutable state through instrumented locations.
type Evaluator[T any] func(args ...any) (T, error)

// Expression is a watched computation: its evaluator, bound instances, the
// baseline result, the cells read by the latest evaluation and its observers.
type Expression[T any] struct {
	rs     *ReactiveSystem
	id     uint64
	eval   Evaluator[T]
	params []any
	equals EqualsFunc[T]

	value     T
	activated bool
	disposed  bool
	// Set while the evaluator runs; writes made by the evaluator itself do not
	// re-enter it
	evaluating bool
	// Set when a location already read by the running evaluation is written
	// by someone else before it returns
	dirty bool
	// Bumped on every baseline change, so an outer fire notices a nested one
	generation uint64

	deps      mapset.Set[*Cell]
	depOrder  []*Cell
	observers []func(T)
}

// NewExpression registers an expression without evaluating it; call Activate.
func NewExpression[T any](rs *ReactiveSystem, eval Evaluator[T], instances ...any) *Expression[T] {
	e := &Expression[T]{
		rs:     rs,
		id:     rs.nextSeq(),
		eval:   eval,
		params: instances,
		equals: equalsFor[T](rs.equality),
		deps:   mapset.NewThreadUnsafeSet[*Cell](),
	}
	rs.register(e)
	return e
}

func (e *Expression[T]) ID() uint64 {
	return e.id
}

func (e *Expression[T]) seq() uint64 {
	return e.id
}

func (e *Expression[T]) isDisposed() bool {
	return e.disposed
}

func (e *Expression[T]) markDirty() {
	e.dirty = true
}

// Activate performs the first evaluation, subscribes to every location read
// and stores the result as baseline. Activating twice returns the baseline.
func (e *Expression[T]) Activate() (T, error) {
	if e.disposed {
		var zero T
		return zero, ErrDisposed
	}
	if e.activated {
		return e.value, nil
	}

	value, reads, err := e.evaluate()
	if err != nil {
		return value, err
	}
	e.commit(reads)
	e.value = value
	e.activated = true
	e.rs.logger.Debug("expression activated", "expression", e.id, "dependencies", len(reads))
	return value, nil
}

// OnChange appends an observer. It is not called for the current result, only
// for changes detected after registration.
func (e *Expression[T]) OnChange(observer func(T)) *Expression[T] {
	if e.disposed || observer == nil {
		return e
	}
	e.observers = append(e.observers, observer)
	return e
}

// SetEquals overrides the system's equality policy for this expression.
func (e *Expression[T]) SetEquals(equals EqualsFunc[T]) *Expression[T] {
	if equals != nil {
		e.equals = equals
	}
	return e
}

// Value returns the baseline result without evaluating.
func (e *Expression[T]) Value() T {
	return e.value
}

func (e *Expression[T]) Disposed() bool {
	return e.disposed
}

// Dependencies lists the locations read by the latest successful evaluation,
// in first-read order.
func (e *Expression[T]) Dependencies() []Identity {
	ids := make([]Identity, len(e.depOrder))
	for i, c := range e.depOrder {
		ids[i] = c.id
	}
	return ids
}

// Dispose unsubscribes from every cell and leaves the system's registry.
func (e *Expression[T]) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	for _, c := range e.depOrder {
		if c.unsubscribe(e) {
			e.rs.cells.release(c)
		}
	}
	e.deps.Clear()
	e.depOrder = nil
	e.observers = nil
	e.rs.forget(e)
	e.rs.logger.Debug("expression disposed", "expression", e.id)
}

// maxSettleRuns bounds how often one evaluation is restarted because the
// locations it read were written while it ran.
const maxSettleRuns = 100

// evaluate runs the evaluator until no location it read was overwritten by
// someone else during the run. Only the reads of the final run are returned.
func (e *Expression[T]) evaluate() (value T, reads []read, err error) {
	e.evaluating = true
	defer func() {
		e.evaluating = false
		e.dirty = false
	}()

	for run := 1; ; run++ {
		if run > maxSettleRuns {
			return value, nil, &EvalError{ID: e.id, Err: ErrUnsettled}
		}
		e.dirty = false
		e.rs.stats.Evaluations++
		reads, err = e.rs.track(e, func() error {
			var evalErr error
			value, evalErr = e.eval(e.params...)
			return evalErr
		})
		if err != nil {
			return value, nil, &EvalError{ID: e.id, Err: err}
		}
		if !e.dirty || e.disposed {
			return value, reads, nil
		}
		e.rs.logger.Debug("expression invalidated while evaluating", "expression", e.id, "run", run)
	}
}

// commit swaps the dependency set for exactly the locations in reads.
// New subscriptions are made before old ones are dropped so shared cells
// are never evicted in between.
func (e *Expression[T]) commit(reads []read) {
	next := mapset.NewThreadUnsafeSet[*Cell]()
	order := make([]*Cell, 0, len(reads))
	for _, r := range reads {
		c := e.rs.cells.resolve(r.id, r.value)
		if next.Add(c) {
			order = append(order, c)
		}
		c.subscribe(e)
	}
	for _, c := range e.depOrder {
		if next.Contains(c) {
			continue
		}
		if c.unsubscribe(e) {
			e.rs.cells.release(c)
		}
	}
	e.deps = next
	e.depOrder = order
}

// notifyDependencyChanged re-evaluates under a fresh tracker frame. A failed
// evaluation leaves result and dependencies as they were.
func (e *Expression[T]) notifyDependencyChanged() error {
	if e.disposed || e.evaluating || !e.activated {
		return nil
	}

	value, reads, err := e.evaluate()
	if err != nil {
		return err
	}
	if e.disposed {
		return nil
	}
	e.commit(reads)

	if e.equals(e.value, value) {
		e.rs.logger.Debug("expression unchanged", "expression", e.id)
		return nil
	}
	e.value = value
	e.generation++
	e.rs.stats.Changes++
	e.rs.logger.Debug("expression changed", "expression", e.id, "observers", len(e.observers))
	return e.fire(value)
}

// fire calls every observer in registration order. A panicking observer does
// not stop the others; the failures are joined. If an observer causes a newer
// change, the nested fire has already delivered it to everyone and this one
// stops, so no observer is left holding an older value.
func (e *Expression[T]) fire(value T) error {
	observers := slices.Clone(e.observers)
	generation := e.generation
	var errs []error
	for i, observer := range observers {
		if e.disposed || e.generation != generation {
			break
		}
		if err := callObserver(observer, value); err != nil {
			errs = append(errs, &ObserverError{ID: e.id, Index: i, Err: err})
		}
	}
	return errors.Join(errs...)
}

func callObserver[T any](observer func(T), value T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
	}()
	observer(value)
	return nil
}

func (e *Expression[T]) String() string {
	return fmt.Sprintf("expression(%d)", e.id)
}
