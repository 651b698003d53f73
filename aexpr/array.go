package aexpr

import (
	"errors"
	"fmt"
)

const lengthKey = "length"

// Array is an instrumented list. Slots are element locations and the length is
// a property location named "length".
type Array struct {
	rs    *ReactiveSystem
	id    uint64
	items []any
}

func NewArray(rs *ReactiveSystem, items ...any) *Array {
	return &Array{
		rs:    rs,
		id:    nextOwnerID(),
		items: append([]any(nil), items...),
	}
}

func (a *Array) OwnerID() uint64 {
	return a.id
}

func (a *Array) String() string {
	return fmt.Sprintf("array(#%d)", a.id)
}

// At returns the element at i, nil when out of range. Out of range reads are
// still tracked so a later write growing the array reaches them.
func (a *Array) At(i int) any {
	var v any
	if i >= 0 && i < len(a.items) {
		v = a.items[i]
	}
	a.rs.TrackRead(ElementOf(a, i), v)
	return v
}

func (a *Array) Len() int {
	n := len(a.items)
	a.rs.TrackRead(PropertyOf(a, lengthKey), n)
	return n
}

// SetAt writes slot i, growing the array with nils when i is past the end.
func (a *Array) SetAt(i int, value any) error {
	if i < 0 {
		return fmt.Errorf("aexpr: %s index %d out of range", a, i)
	}
	grew := false
	for i >= len(a.items) {
		a.items = append(a.items, nil)
		grew = true
	}
	a.items[i] = value
	err := a.rs.NotifyWrite(ElementOf(a, i), value)
	if grew {
		return errors.Join(err, a.rs.NotifyWrite(PropertyOf(a, lengthKey), len(a.items)))
	}
	return err
}

// UpdateAt is a compound assignment on slot i.
func (a *Array) UpdateAt(i int, fn func(any) any) error {
	return a.SetAt(i, fn(a.At(i)))
}

func (a *Array) Push(value any) error {
	return a.SetAt(len(a.items), value)
}

// Pop removes the last element. Popping an empty array returns nil.
func (a *Array) Pop() (any, error) {
	if len(a.items) == 0 {
		return nil, nil
	}
	i := len(a.items) - 1
	v := a.items[i]
	a.items = a.items[:i]
	err := errors.Join(
		a.rs.NotifyWrite(ElementOf(a, i), nil),
		a.rs.NotifyWrite(PropertyOf(a, lengthKey), len(a.items)),
	)
	return v, err
}

// Values reads the length and every element.
func (a *Array) Values() []any {
	out := make([]any, a.Len())
	for i := range out {
		out[i] = a.At(i)
	}
	return out
}
