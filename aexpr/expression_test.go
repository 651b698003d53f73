package aexpr_test

import (
	"errors"
	"testing"

	"github.com/delaneyj/aexpr/aexpr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder[T any] struct {
	calls []T
}

func (r *recorder[T]) observe(v T) {
	r.calls = append(r.calls, v)
}

func times(n int) func(any) any {
	return func(v any) any {
		return v.(int) * n
	}
}

func plus(n int) func(any) any {
	return func(v any) any {
		return v.(int) + n
	}
}

func TestTransparentWrapper(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	obj := aexpr.NewObject(rs, map[string]any{
		"prop": 42,
		"func": aexpr.Method(func(this *aexpr.Object, args ...any) any {
			return aexpr.Prop[int](this, "prop") * args[0].(int)
		}),
	})

	assert.Equal(t, 42, obj.Get("prop"))
	res, err := obj.Call("func", 2)
	require.NoError(t, err)
	assert.Equal(t, 84, res)

	require.NoError(t, obj.Update("prop", func(v any) any { return v.(int) / 3 }))

	assert.Equal(t, 14, obj.Get("prop"))
	res, err = obj.Call("func", 2)
	require.NoError(t, err)
	assert.Equal(t, 28, res)

	// nothing watched, nothing registered
	assert.Zero(t, rs.Stats().Cells)
	assert.Equal(t, uint64(1), rs.Stats().Writes)
}

func TestCallOnNonMethod(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	obj := aexpr.NewObject(rs, map[string]any{"prop": 1})
	_, err := obj.Call("prop")
	assert.ErrorIs(t, err, aexpr.ErrNotCallable)
}

func TestShouldNotifyAfterWrite(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	obj := aexpr.NewObject(rs, map[string]any{"prop": 42})
	spy := &recorder[int]{}

	e, err := aexpr.Watch(rs, func() (int, error) {
		return aexpr.Prop[int](obj, "prop"), nil
	})
	require.NoError(t, err)
	e.OnChange(spy.observe)

	assert.Empty(t, spy.calls)
	require.NoError(t, obj.Set("prop", 17))
	assert.Equal(t, []int{17}, spy.calls)
}

func TestActivateReturnsInitialResult(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	obj := aexpr.NewObject(rs, map[string]any{"prop": 42})

	e := aexpr.NewExpression(rs, func(...any) (int, error) {
		return aexpr.Prop[int](obj, "prop"), nil
	})
	assert.Empty(t, e.Dependencies())
	assert.Equal(t, 1, rs.Stats().Expressions)

	v, err := e.Activate()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, []aexpr.Identity{aexpr.PropertyOf(obj, "prop")}, e.Dependencies())

	// second activation does not evaluate again
	evaluations := rs.Stats().Evaluations
	v, err = e.Activate()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, evaluations, rs.Stats().Evaluations)
}

func TestShouldRecalculateToRecognizeLatestChanges(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	obj := aexpr.NewObject(rs, map[string]any{
		"prop": "a",
		"a":    15,
		"b":    32,
	})
	spy := &recorder[int]{}

	e, err := aexpr.Watch(rs, func() (int, error) {
		return aexpr.Prop[int](obj, aexpr.Prop[string](obj, "prop")), nil
	})
	require.NoError(t, err)
	e.OnChange(spy.observe)

	require.NoError(t, obj.Set("a", 17))
	assert.Equal(t, []int{17}, spy.calls)

	require.NoError(t, obj.Set("prop", "b"))
	assert.Equal(t, []int{17, 32}, spy.calls)

	// a is no longer read, its cell is gone
	_, ok := rs.Lookup(aexpr.PropertyOf(obj, "a"))
	assert.False(t, ok)

	require.NoError(t, obj.Set("a", 42))
	assert.Equal(t, []int{17, 32}, spy.calls)

	require.NoError(t, obj.Set("b", 33))
	assert.Equal(t, []int{17, 32, 33}, spy.calls)

	assert.Equal(t, []aexpr.Identity{
		aexpr.PropertyOf(obj, "prop"),
		aexpr.PropertyOf(obj, "b"),
	}, e.Dependencies())
}

func TestAppliesTheGivenOperator(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	obj := aexpr.NewObject(rs, map[string]any{"a": 5})
	spy := &recorder[int]{}

	e, err := aexpr.Watch(rs, func() (int, error) {
		return aexpr.Prop[int](obj, "a"), nil
	})
	require.NoError(t, err)
	e.OnChange(spy.observe)

	notifications := rs.Stats().Notifications
	require.NoError(t, obj.Update("a", times(1)))
	assert.Empty(t, spy.calls)
	// the write still propagated, only the result comparison held it back
	assert.Equal(t, notifications+1, rs.Stats().Notifications)
}

func TestRetainTheReceiver(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	obj := aexpr.NewObject(rs, map[string]any{
		"a": 5,
		"func": func(this *aexpr.Object, _ ...any) any {
			return aexpr.Prop[int](this, "a") * 3
		},
	})
	spy := &recorder[int]{}

	e, err := aexpr.Watch(rs, func() (int, error) {
		v, err := obj.Call("func")
		if err != nil {
			return 0, err
		}
		return v.(int), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 15, e.Value())
	e.OnChange(spy.observe)

	require.NoError(t, obj.Set("a", 1))
	assert.Equal(t, []int{3}, spy.calls)
}

func TestNotifiesOncePerActualChange(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	obj := aexpr.NewObject(rs, map[string]any{"prop": 42})
	spy := &recorder[int]{}

	aexpr.MustWatch(rs, func() int {
		return aexpr.Prop[int](obj, "prop")
	}).OnChange(spy.observe)

	require.NoError(t, obj.Set("prop", 17))
	assert.Equal(t, []int{17}, spy.calls)

	require.NoError(t, obj.Update("prop", times(1)))
	assert.Equal(t, []int{17}, spy.calls)

	require.NoError(t, obj.Update("prop", plus(2)))
	assert.Equal(t, []int{17, 19}, spy.calls)
}

func TestObserversRunInRegistrationOrder(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	obj := aexpr.NewObject(rs, map[string]any{"v": 0})

	var order []string
	aexpr.MustWatch(rs, func() int {
		return aexpr.Prop[int](obj, "v")
	}).OnChange(func(int) {
		order = append(order, "first")
	}).OnChange(func(int) {
		order = append(order, "second")
	}).OnChange(func(int) {
		order = append(order, "third")
	})

	require.NoError(t, obj.Set("v", 1))
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestBoundInstances(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	obj1 := aexpr.NewObject(rs, map[string]any{"val": 1})
	obj2 := aexpr.NewObject(rs, map[string]any{"val": 2})
	spy := &recorder[int]{}

	e, err := aexpr.Watch2(rs, obj1, obj2, func(o1, o2 *aexpr.Object) (int, error) {
		return aexpr.Prop[int](o1, "val") + aexpr.Prop[int](o2, "val"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, e.Value())
	e.OnChange(spy.observe)

	require.NoError(t, obj1.Set("val", 10))
	assert.Equal(t, []int{12}, spy.calls)

	require.NoError(t, obj2.Set("val", 20))
	assert.Equal(t, []int{12, 30}, spy.calls)
}

func TestWatchWithVariadicInstances(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	objs := []any{
		aexpr.NewObject(rs, map[string]any{"v": 1}),
		aexpr.NewObject(rs, map[string]any{"v": 2}),
		aexpr.NewObject(rs, map[string]any{"v": 3}),
	}
	sum := func(args ...any) (int, error) {
		total := 0
		for _, arg := range args {
			total += aexpr.Prop[int](arg.(*aexpr.Object), "v")
		}
		return total, nil
	}

	e, err := aexpr.WatchWith(rs, sum, objs...)
	require.NoError(t, err)
	assert.Equal(t, 6, e.Value())

	spy := &recorder[int]{}
	e.OnChange(spy.observe)
	require.NoError(t, objs[2].(*aexpr.Object).Set("v", 10))
	assert.Equal(t, []int{13}, spy.calls)
}

func TestInstanceIsolation(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	a := aexpr.NewObject(rs, map[string]any{"v": 1})
	b := aexpr.NewObject(rs, map[string]any{"v": 1})
	value := func(o *aexpr.Object) (int, error) {
		return aexpr.Prop[int](o, "v"), nil
	}

	spyA, spyB := &recorder[int]{}, &recorder[int]{}
	ea, err := aexpr.Watch1(rs, a, value)
	require.NoError(t, err)
	ea.OnChange(spyA.observe)
	eb, err := aexpr.Watch1(rs, b, value)
	require.NoError(t, err)
	eb.OnChange(spyB.observe)

	require.NoError(t, a.Set("v", 2))
	assert.Equal(t, []int{2}, spyA.calls)
	assert.Empty(t, spyB.calls)

	require.NoError(t, b.Set("v", 5))
	assert.Equal(t, []int{2}, spyA.calls)
	assert.Equal(t, []int{5}, spyB.calls)
}

func TestOverlappingInstances(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	o1 := aexpr.NewObject(rs, map[string]any{"v": 1})
	o2 := aexpr.NewObject(rs, map[string]any{"v": 2})
	o3 := aexpr.NewObject(rs, map[string]any{"v": 2})
	sum := func(x, y *aexpr.Object) (int, error) {
		return aexpr.Prop[int](x, "v") + aexpr.Prop[int](y, "v"), nil
	}

	spy12, spy23 := &recorder[int]{}, &recorder[int]{}
	e12, err := aexpr.Watch2(rs, o1, o2, sum)
	require.NoError(t, err)
	e12.OnChange(spy12.observe)
	e23, err := aexpr.Watch2(rs, o2, o3, sum)
	require.NoError(t, err)
	e23.OnChange(spy23.observe)

	// o3 has the same shape as o2 but is its own location
	require.NoError(t, o3.Set("v", 7))
	assert.Empty(t, spy12.calls)
	assert.Equal(t, []int{9}, spy23.calls)

	require.NoError(t, o2.Set("v", 3))
	assert.Equal(t, []int{4}, spy12.calls)
	assert.Equal(t, []int{9, 10}, spy23.calls)

	cell, ok := rs.Lookup(aexpr.PropertyOf(o2, "v"))
	require.True(t, ok)
	assert.Equal(t, 2, cell.Dependents)
	assert.Equal(t, 3, cell.Value)
}

func TestShrinkingDependenciesStopNotifications(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	obj := aexpr.NewObject(rs, map[string]any{
		"useB": true,
		"a":    1,
		"b":    2,
	})
	evaluations := 0
	spy := &recorder[int]{}

	aexpr.MustWatch(rs, func() int {
		evaluations++
		v := aexpr.Prop[int](obj, "a")
		if aexpr.Prop[bool](obj, "useB") {
			v += aexpr.Prop[int](obj, "b")
		}
		return v
	}).OnChange(spy.observe)
	assert.Equal(t, 1, evaluations)
	assert.Equal(t, 3, rs.Stats().Cells)

	require.NoError(t, obj.Set("useB", false))
	assert.Equal(t, []int{1}, spy.calls)
	assert.Equal(t, 2, evaluations)
	assert.Equal(t, 2, rs.Stats().Cells)

	require.NoError(t, obj.Set("b", 100))
	assert.Equal(t, 2, evaluations)
	assert.Equal(t, []int{1}, spy.calls)

	// growing again takes effect from this evaluation on
	require.NoError(t, obj.Set("useB", true))
	assert.Equal(t, []int{1, 101}, spy.calls)
	require.NoError(t, obj.Set("b", 200))
	assert.Equal(t, []int{1, 101, 201}, spy.calls)
}

func TestDispose(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	obj := aexpr.NewObject(rs, map[string]any{"v": 1})
	spy := &recorder[int]{}

	e := aexpr.MustWatch(rs, func() int {
		return aexpr.Prop[int](obj, "v")
	}).OnChange(spy.observe)

	require.NoError(t, obj.Set("v", 2))
	e.Dispose()
	assert.True(t, e.Disposed())
	require.NoError(t, obj.Set("v", 3))

	assert.Equal(t, []int{2}, spy.calls)
	assert.Zero(t, rs.Stats().Cells)
	assert.Zero(t, rs.Stats().Expressions)

	_, err := e.Activate()
	assert.ErrorIs(t, err, aexpr.ErrDisposed)

	// disposing twice is harmless
	e.Dispose()
}

func TestDisposeDuringPropagation(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	obj := aexpr.NewObject(rs, map[string]any{"v": 1})
	value := func() int {
		return aexpr.Prop[int](obj, "v")
	}

	spy1, spy2, spy3 := &recorder[int]{}, &recorder[int]{}, &recorder[int]{}
	e1 := aexpr.MustWatch(rs, value)
	e2 := aexpr.MustWatch(rs, value).OnChange(spy2.observe)
	aexpr.MustWatch(rs, value).OnChange(spy3.observe)
	e1.OnChange(func(v int) {
		spy1.observe(v)
		e2.Dispose()
	})

	require.NoError(t, obj.Set("v", 2))
	assert.Equal(t, []int{2}, spy1.calls)
	assert.Empty(t, spy2.calls)
	assert.Equal(t, []int{2}, spy3.calls)
}

func TestObserverDisposingItself(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	obj := aexpr.NewObject(rs, map[string]any{"v": 1})
	spy := &recorder[int]{}

	var e *aexpr.Expression[int]
	e = aexpr.MustWatch(rs, func() int {
		return aexpr.Prop[int](obj, "v")
	}).OnChange(func(int) {
		e.Dispose()
	}).OnChange(spy.observe)

	require.NoError(t, obj.Set("v", 2))
	assert.Empty(t, spy.calls)
	require.NoError(t, obj.Set("v", 3))
	assert.Empty(t, spy.calls)
}

var errBoom = errors.New("boom")

func TestEvaluatorErrorKeepsBaseline(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	obj := aexpr.NewObject(rs, map[string]any{"fail": false, "v": 1})
	spy := &recorder[int]{}

	e, err := aexpr.Watch(rs, func() (int, error) {
		if aexpr.Prop[bool](obj, "fail") {
			return 0, errBoom
		}
		return aexpr.Prop[int](obj, "v"), nil
	})
	require.NoError(t, err)
	e.OnChange(spy.observe)
	deps := e.Dependencies()

	err = obj.Set("fail", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	var evalErr *aexpr.EvalError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, e.ID(), evalErr.ID)

	assert.Equal(t, 1, e.Value())
	assert.Equal(t, deps, e.Dependencies())
	assert.Empty(t, spy.calls)

	// v is still subscribed from the last successful evaluation
	err = obj.Set("v", 2)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, e.Value())

	require.NoError(t, obj.Set("fail", false))
	assert.Equal(t, []int{2}, spy.calls)
}

func TestEvaluatorPanicIsRecovered(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	obj := aexpr.NewObject(rs, map[string]any{"v": 1})

	aexpr.MustWatch(rs, func() int {
		v := aexpr.Prop[int](obj, "v")
		if v < 0 {
			panic("negative")
		}
		return v
	})

	err := obj.Set("v", -1)
	var panicErr *aexpr.PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "negative", panicErr.Value)
	assert.NotEmpty(t, panicErr.Stack)
	assert.False(t, rs.Tracking())
}

func TestFailedActivationIsDisposed(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	obj := aexpr.NewObject(rs, map[string]any{"v": 1})

	e, err := aexpr.Watch(rs, func() (int, error) {
		aexpr.Prop[int](obj, "v")
		return 0, errBoom
	})
	assert.Nil(t, e)
	assert.ErrorIs(t, err, errBoom)
	assert.Zero(t, rs.Stats().Expressions)
	assert.Zero(t, rs.Stats().Cells)
}

func TestFaultyObserverDoesNotSuppressOthers(t *testing.T) {
	var reported []error
	rs := aexpr.NewReactiveSystem(aexpr.WithOnError(func(from aexpr.Node, err error) {
		reported = append(reported, err)
	}))
	obj := aexpr.NewObject(rs, map[string]any{"v": 1})
	value := func() int {
		return aexpr.Prop[int](obj, "v")
	}

	spyA, spyB := &recorder[int]{}, &recorder[int]{}
	aexpr.MustWatch(rs, value).OnChange(func(int) {
		panic(errBoom)
	}).OnChange(spyA.observe)
	aexpr.MustWatch(rs, value).OnChange(spyB.observe)

	err := obj.Set("v", 2)
	assert.Equal(t, []int{2}, spyA.calls)
	assert.Equal(t, []int{2}, spyB.calls)

	var observerErr *aexpr.ObserverError
	require.ErrorAs(t, err, &observerErr)
	assert.Equal(t, 0, observerErr.Index)
	assert.ErrorIs(t, err, errBoom)
	assert.Len(t, reported, 1)
}

func TestObserverWritesPropagate(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	a := aexpr.NewObject(rs, map[string]any{"v": 1})
	b := aexpr.NewObject(rs, map[string]any{"v": 2})
	spy := &recorder[int]{}

	aexpr.MustWatch(rs, func() int {
		return aexpr.Prop[int](a, "v")
	}).OnChange(func(v int) {
		require.NoError(t, b.Set("v", v*2))
	})
	aexpr.MustWatch(rs, func() int {
		return aexpr.Prop[int](b, "v")
	}).OnChange(spy.observe)

	require.NoError(t, a.Set("v", 3))
	assert.Equal(t, []int{6}, spy.calls)
}

func TestEvaluatorWritesDoNotLeakReads(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	a := aexpr.NewObject(rs, map[string]any{"v": 1, "seen": 0})
	seen := &recorder[int]{}

	mirror := aexpr.MustWatch(rs, func() int {
		return aexpr.Prop[int](a, "seen")
	}).OnChange(seen.observe)

	source := aexpr.MustWatch(rs, func() int {
		v := aexpr.Prop[int](a, "v")
		if err := a.Set("seen", v); err != nil {
			panic(err)
		}
		return v
	})

	// the mirror re-evaluated inside source's evaluation under its own frame
	assert.Equal(t, []int{1}, seen.calls)
	assert.Equal(t, []aexpr.Identity{aexpr.PropertyOf(a, "v")}, source.Dependencies())
	assert.Equal(t, []aexpr.Identity{aexpr.PropertyOf(a, "seen")}, mirror.Dependencies())

	require.NoError(t, a.Set("v", 5))
	assert.Equal(t, []int{1, 5}, seen.calls)
	assert.Equal(t, 5, source.Value())
}

func TestNestedWatchInsideEvaluator(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	outerObj := aexpr.NewObject(rs, map[string]any{"v": 1})
	innerObj := aexpr.NewObject(rs, map[string]any{"v": 10})

	var inner *aexpr.Expression[int]
	outerSpy, innerSpy := &recorder[int]{}, &recorder[int]{}
	outer := aexpr.MustWatch(rs, func() int {
		if inner == nil {
			inner = aexpr.MustWatch(rs, func() int {
				return aexpr.Prop[int](innerObj, "v")
			}).OnChange(innerSpy.observe)
		}
		return aexpr.Prop[int](outerObj, "v")
	}).OnChange(outerSpy.observe)

	assert.Equal(t, []aexpr.Identity{aexpr.PropertyOf(outerObj, "v")}, outer.Dependencies())
	assert.Equal(t, []aexpr.Identity{aexpr.PropertyOf(innerObj, "v")}, inner.Dependencies())

	require.NoError(t, innerObj.Set("v", 11))
	assert.Equal(t, []int{11}, innerSpy.calls)
	assert.Empty(t, outerSpy.calls)

	require.NoError(t, outerObj.Set("v", 2))
	assert.Equal(t, []int{2}, outerSpy.calls)
}

func TestUntrackedReads(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	obj := aexpr.NewObject(rs, map[string]any{"a": 1, "b": 2})
	spy := &recorder[int]{}

	aexpr.MustWatch(rs, func() int {
		b := aexpr.Untrack(rs, func() int {
			return aexpr.Prop[int](obj, "b")
		})
		return aexpr.Prop[int](obj, "a") + b
	}).OnChange(spy.observe)

	require.NoError(t, obj.Set("b", 20))
	assert.Empty(t, spy.calls)

	require.NoError(t, obj.Set("a", 2))
	assert.Equal(t, []int{22}, spy.calls)
}

func TestBatch(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	obj := aexpr.NewObject(rs, map[string]any{"x": 0, "y": 0})
	evaluations := 0
	spy := &recorder[int]{}

	aexpr.MustWatch(rs, func() int {
		evaluations++
		return aexpr.Prop[int](obj, "x") + aexpr.Prop[int](obj, "y")
	}).OnChange(spy.observe)

	err := rs.Batch(func() error {
		if err := obj.Set("x", 1); err != nil {
			return err
		}
		// nested batches flush with the outermost one
		return rs.Batch(func() error {
			return obj.Set("y", 2)
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 2, evaluations)
	assert.Equal(t, []int{3}, spy.calls)
}

func TestBatchReturnsCallbackError(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	obj := aexpr.NewObject(rs, map[string]any{"x": 0})
	spy := &recorder[int]{}
	aexpr.MustWatch(rs, func() int {
		return aexpr.Prop[int](obj, "x")
	}).OnChange(spy.observe)

	err := rs.Batch(func() error {
		if err := obj.Set("x", 1); err != nil {
			return err
		}
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	// writes made before the failure still propagate
	assert.Equal(t, []int{1}, spy.calls)
}

func TestDeepEqualityPolicy(t *testing.T) {
	for _, tc := range []struct {
		name     string
		policy   aexpr.EqualityPolicy
		expected int
	}{
		{name: "strict", policy: aexpr.StrictEquality, expected: 1},
		{name: "deep", policy: aexpr.DeepEquality, expected: 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rs := aexpr.NewReactiveSystem(aexpr.WithEquality(tc.policy))
			obj := aexpr.NewObject(rs, map[string]any{"v": 1})
			spy := &recorder[[]int]{}

			aexpr.MustWatch(rs, func() []int {
				return []int{aexpr.Prop[int](obj, "v")}
			}).OnChange(spy.observe)

			require.NoError(t, obj.Set("v", 1))
			assert.Len(t, spy.calls, tc.expected)
		})
	}
}

func TestSetEqualsOverride(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	obj := aexpr.NewObject(rs, map[string]any{"v": 1})
	spy := &recorder[int]{}

	// only parity matters
	aexpr.MustWatch(rs, func() int {
		return aexpr.Prop[int](obj, "v")
	}).SetEquals(func(prev, next int) bool {
		return prev%2 == next%2
	}).OnChange(spy.observe)

	require.NoError(t, obj.Set("v", 3))
	assert.Empty(t, spy.calls)
	require.NoError(t, obj.Set("v", 4))
	assert.Equal(t, []int{4}, spy.calls)
}

// feedback wires b.y back into a.x through another expression's observer.
func feedback(t *testing.T, rs *aexpr.ReactiveSystem, a, b *aexpr.Object) {
	aexpr.MustWatch(rs, func() int {
		return aexpr.Prop[int](b, "y")
	}).OnChange(func(y int) {
		require.NoError(t, a.Set("x", y))
	})
}

func TestWriteDuringActivationIsNotLost(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	a := aexpr.NewObject(rs, map[string]any{"x": 0})
	b := aexpr.NewObject(rs, map[string]any{"y": 0})
	feedback(t, rs, a, b)

	e := aexpr.MustWatch(rs, func() int {
		x := aexpr.Prop[int](a, "x")
		if x == 0 {
			if err := b.Set("y", 7); err != nil {
				panic(err)
			}
		}
		return x
	})
	assert.Equal(t, 7, e.Value())
	assert.Equal(t, a.Get("x"), e.Value())

	spy := &recorder[int]{}
	e.OnChange(spy.observe)
	require.NoError(t, a.Set("x", 3))
	assert.Equal(t, []int{3}, spy.calls)
}

func TestWriteDuringReevaluationIsNotLost(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	a := aexpr.NewObject(rs, map[string]any{"x": 0})
	b := aexpr.NewObject(rs, map[string]any{"y": 0})
	trigger := aexpr.NewObject(rs, map[string]any{"on": false})
	feedback(t, rs, a, b)
	spy := &recorder[int]{}

	e := aexpr.MustWatch(rs, func() int {
		x := aexpr.Prop[int](a, "x")
		if aexpr.Prop[bool](trigger, "on") && x == 0 {
			if err := b.Set("y", 7); err != nil {
				panic(err)
			}
		}
		return x
	}).OnChange(spy.observe)
	assert.Equal(t, 0, e.Value())

	require.NoError(t, trigger.Set("on", true))
	assert.Equal(t, 7, e.Value())
	assert.Equal(t, a.Get("x"), e.Value())
	assert.Equal(t, []int{7}, spy.calls)
}

func TestEvaluationThatNeverSettles(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	a := aexpr.NewObject(rs, map[string]any{"x": 0})
	b := aexpr.NewObject(rs, map[string]any{"y": 0})
	feedback(t, rs, a, b)

	e, err := aexpr.Watch(rs, func() (int, error) {
		x := aexpr.Prop[int](a, "x")
		return x, b.Set("y", x+1)
	})
	assert.Nil(t, e)
	assert.ErrorIs(t, err, aexpr.ErrUnsettled)
}

func TestNestedChangeReachesEveryObserverLast(t *testing.T) {
	rs := aexpr.NewReactiveSystem()
	obj := aexpr.NewObject(rs, map[string]any{"x": 0})
	spy := &recorder[int]{}

	e := aexpr.MustWatch(rs, func() int {
		return aexpr.Prop[int](obj, "x")
	}).OnChange(func(x int) {
		if x == 1 {
			require.NoError(t, obj.Set("x", 2))
		}
	}).OnChange(spy.observe)

	require.NoError(t, obj.Set("x", 1))
	assert.Equal(t, 2, e.Value())
	assert.Equal(t, []int{2}, spy.calls)
}
