package aexpr

import (
	"fmt"
	"maps"
	"slices"
)

// Method is a function stored in an object property. Call invokes it with the
// owning object as receiver, so reads made through this are tracked against it.
type Method func(this *Object, args ...any) any

// Object is an instrumented property bag. Every Get goes through the read hook
// and every mutation through the write hook of its reactive system.
type Object struct {
	rs    *ReactiveSystem
	id    uint64
	props map[string]any
}

func NewObject(rs *ReactiveSystem, props map[string]any) *Object {
	o := &Object{
		rs:    rs,
		id:    nextOwnerID(),
		props: make(map[string]any, len(props)),
	}
	maps.Copy(o.props, props)
	return o
}

func (o *Object) OwnerID() uint64 {
	return o.id
}

func (o *Object) String() string {
	return fmt.Sprintf("object(#%d)", o.id)
}

// Get returns the property value, nil if absent.
func (o *Object) Get(key string) any {
	v := o.props[key]
	o.rs.TrackRead(PropertyOf(o, key), v)
	return v
}

// Has is a tracked read of key: adding or deleting the key notifies.
func (o *Object) Has(key string) bool {
	v, ok := o.props[key]
	o.rs.TrackRead(PropertyOf(o, key), v)
	return ok
}

func (o *Object) Set(key string, value any) error {
	o.props[key] = value
	return o.rs.NotifyWrite(PropertyOf(o, key), value)
}

// Update is a compound assignment: read, apply fn, write. The write always
// propagates, even when fn returns the value it was given.
func (o *Object) Update(key string, fn func(any) any) error {
	return o.Set(key, fn(o.Get(key)))
}

func (o *Object) Delete(key string) error {
	if _, ok := o.props[key]; !ok {
		return nil
	}
	delete(o.props, key)
	return o.rs.NotifyWrite(PropertyOf(o, key), nil)
}

// Keys lists property names, sorted. Enumeration is not a location, so it is
// not tracked.
func (o *Object) Keys() []string {
	return slices.Sorted(maps.Keys(o.props))
}

// Call reads the named property and invokes it with o as receiver.
func (o *Object) Call(name string, args ...any) (any, error) {
	switch fn := o.Get(name).(type) {
	case Method:
		return fn(o, args...), nil
	case func(*Object, ...any) any:
		return fn(o, args...), nil
	default:
		return nil, fmt.Errorf("%w: %s.%s is %T", ErrNotCallable, o, name, fn)
	}
}

// Prop is a typed Get; a missing or mistyped property yields the zero value.
func Prop[T any](o *Object, key string) T {
	t, _ := o.Get(key).(T)
	return t
}
