package aexpr

import (
	"fmt"
	"maps"
	"slices"
)

// Frame is one instance of an enclosing scope. Variables captured from it are
// created once per frame and name, not once per access, so every closure over
// the same frame shares the same cells.
type Frame struct {
	rs     *ReactiveSystem
	id     uint64
	parent *Frame
	vars   map[string]any
}

func (rs *ReactiveSystem) NewFrame() *Frame {
	return &Frame{
		rs:   rs,
		id:   nextOwnerID(),
		vars: map[string]any{},
	}
}

// Child opens a nested scope whose lookups fall back to f.
func (f *Frame) Child() *Frame {
	c := f.rs.NewFrame()
	c.parent = f
	return c
}

func (f *Frame) OwnerID() uint64 {
	return f.id
}

func (f *Frame) String() string {
	return fmt.Sprintf("frame(#%d)", f.id)
}

// Names lists the variables declared directly in f, sorted.
func (f *Frame) Names() []string {
	return slices.Sorted(maps.Keys(f.vars))
}

// Var is a captured variable living in a frame.
type Var[T any] struct {
	frame *Frame
	name  string
	value T
}

// Capture declares name in f with an initial value. Declaring an existing name
// with the same type returns the existing variable untouched; redeclaring it
// with another type panics.
func Capture[T any](f *Frame, name string, initial T) *Var[T] {
	if existing, ok := f.vars[name]; ok {
		v, ok := existing.(*Var[T])
		if !ok {
			panic(fmt.Sprintf("aexpr: %s.%s already captured as %T", f, name, existing))
		}
		return v
	}
	v := &Var[T]{frame: f, name: name, value: initial}
	f.vars[name] = v
	return v
}

// Lookup resolves name through f and its parents, innermost first.
func Lookup[T any](f *Frame, name string) (*Var[T], bool) {
	for cur := f; cur != nil; cur = cur.parent {
		if existing, ok := cur.vars[name]; ok {
			v, ok := existing.(*Var[T])
			return v, ok
		}
	}
	return nil, false
}

func (v *Var[T]) Identity() Identity {
	return LocalOf(v.frame, v.name)
}

func (v *Var[T]) Get() T {
	v.frame.rs.TrackRead(v.Identity(), v.value)
	return v.value
}

func (v *Var[T]) Set(value T) error {
	v.value = value
	return v.frame.rs.NotifyWrite(v.Identity(), value)
}

func (v *Var[T]) Update(fn func(T) T) error {
	return v.Set(fn(v.Get()))
}

// Namespace holds the global bindings of a reactive system. All of them share
// one fixed owner.
type Namespace struct {
	rs     *ReactiveSystem
	values map[string]any
}

func (rs *ReactiveSystem) Globals() *Namespace {
	if rs.globals == nil {
		rs.globals = &Namespace{rs: rs, values: map[string]any{}}
	}
	return rs.globals
}

func (n *Namespace) Get(name string) any {
	v := n.values[name]
	n.rs.TrackRead(GlobalOf(name), v)
	return v
}

func (n *Namespace) Set(name string, value any) error {
	n.values[name] = value
	return n.rs.NotifyWrite(GlobalOf(name), value)
}

func (n *Namespace) Update(name string, fn func(any) any) error {
	return n.Set(name, fn(n.Get(name)))
}

// Global is a typed Get on the namespace.
func Global[T any](n *Namespace, name string) T {
	t, _ := n.Get(name).(T)
	return t
}
