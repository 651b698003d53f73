package aexpr

import "reflect"

// EqualsFunc decides whether a re-evaluated result counts as unchanged.
type EqualsFunc[T any] func(prev, next T) bool

type EqualityPolicy uint8

const (
	// StrictEquality compares comparable values by value and slices, maps,
	// pointers and channels by reference. Non-nil funcs never compare equal.
	StrictEquality EqualityPolicy = iota
	// DeepEquality compares results with reflect.DeepEqual.
	DeepEquality
)

func (p EqualityPolicy) String() string {
	switch p {
	case StrictEquality:
		return "strict"
	case DeepEquality:
		return "deep"
	default:
		return "unknown"
	}
}

func equalsFor[T any](p EqualityPolicy) EqualsFunc[T] {
	if p == DeepEquality {
		return DeepEquals[T]
	}
	return StrictEquals[T]
}

func DeepEquals[T any](prev, next T) bool {
	return reflect.DeepEqual(prev, next)
}

// StrictEquals never looks through references. NaN is not equal to itself,
// so an expression producing NaN reports a change on every re-evaluation.
func StrictEquals[T any](prev, next T) bool {
	return strictEqual(
		reflect.ValueOf(&prev).Elem(),
		reflect.ValueOf(&next).Elem(),
	)
}

func strictEqual(a, b reflect.Value) bool {
	if a.Kind() == reflect.Interface {
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}
		a, b = a.Elem(), b.Elem()
		if a.Type() != b.Type() {
			return false
		}
	}

	switch a.Kind() {
	case reflect.Slice:
		return a.Len() == b.Len() && a.UnsafePointer() == b.UnsafePointer()
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return a.UnsafePointer() == b.UnsafePointer()
	case reflect.Func:
		return a.IsNil() && b.IsNil()
	case reflect.Struct:
		for i := range a.NumField() {
			if !strictEqual(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Array:
		for i := range a.Len() {
			if !strictEqual(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	}
	return a.Equal(b)
}
