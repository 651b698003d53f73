package aexpr

//go:generate go run ../cmd/codegen --out watch_gen.go

// Watch registers and activates an expression that takes no bound instances.
func Watch[T any](rs *ReactiveSystem, fn func() (T, error)) (*Expression[T], error) {
	return WatchWith(rs, func(...any) (T, error) {
		return fn()
	})
}

// WatchWith registers an expression over explicit bound instances, which are
// handed to the evaluator positionally, and activates it. If the first
// evaluation fails the expression is disposed and the error returned.
func WatchWith[T any](rs *ReactiveSystem, fn Evaluator[T], instances ...any) (*Expression[T], error) {
	e := NewExpression(rs, fn, instances...)
	if _, err := e.Activate(); err != nil {
		e.Dispose()
		return nil, err
	}
	return e, nil
}

// MustWatch is Watch for evaluators that cannot fail; it panics if activation does.
func MustWatch[T any](rs *ReactiveSystem, fn func() T) *Expression[T] {
	e, err := Watch(rs, func() (T, error) {
		return fn(), nil
	})
	if err != nil {
		panic(err)
	}
	return e
}

func argAs[T any](v any) T {
	t, _ := v.(T)
	return t
}
