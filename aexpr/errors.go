package aexpr

import (
	"errors"
	"fmt"
	"runtime/debug"
)

var (
	ErrDisposed    = errors.New("aexpr: expression disposed")
	ErrNotCallable = errors.New("aexpr: property is not a method")
	// ErrUnsettled is returned when the locations an evaluator reads keep being
	// rewritten while it runs, typically an observer cycle.
	ErrUnsettled = errors.New("aexpr: expression did not settle")
)

// EvalError is returned when an evaluator fails. The expression keeps its
// previous result and dependencies.
type EvalError struct {
	ID  uint64
	Err error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("aexpr: evaluate expression %d: %v", e.ID, e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

// ObserverError is returned when a change observer panics. Remaining observers
// and other expressions still run.
type ObserverError struct {
	ID    uint64
	Index int
	Err   error
}

func (e *ObserverError) Error() string {
	return fmt.Sprintf("aexpr: expression %d observer %d: %v", e.ID, e.Index, e.Err)
}

func (e *ObserverError) Unwrap() error {
	return e.Err
}

// PanicError carries a recovered panic and the stack it was raised on.
type PanicError struct {
	Value any
	Stack []byte
}

func newPanicError(v any) *PanicError {
	return &PanicError{Value: v, Stack: debug.Stack()}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
