package aexpr

import (
	"log/slog"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// Node is a live watched expression, regardless of its result type.
type Node interface {
	ID() uint64
	Dispose()
}

type OnErrorFunc func(from Node, err error)

type Option func(*ReactiveSystem)

func WithLogger(logger *slog.Logger) Option {
	return func(rs *ReactiveSystem) {
		if logger != nil {
			rs.logger = logger
		}
	}
}

// WithOnError installs a hook receiving every evaluation and observer failure
// raised while propagating a write, in addition to the error returned from the
// write itself.
func WithOnError(onError OnErrorFunc) Option {
	return func(rs *ReactiveSystem) {
		rs.onError = onError
	}
}

// WithEquality sets the change detection policy for expressions created afterwards.
func WithEquality(policy EqualityPolicy) Option {
	return func(rs *ReactiveSystem) {
		rs.equality = policy
	}
}

// Stats is a point in time snapshot of a reactive system.
type Stats struct {
	Cells         int    // live cells in the location registry
	Expressions   int    // expressions not yet disposed
	Evaluations   uint64 // evaluator runs, initial and re-evaluations
	Notifications uint64 // dependents notified by writes
	Changes       uint64 // re-evaluations whose result differed
	Writes        uint64 // intercepted writes, tracked or not
}

// ReactiveSystem owns the location registry, the tracker stack and every live
// expression. It is single threaded: reads, writes, evaluations and observer
// calls all run to completion on the caller's goroutine.
type ReactiveSystem struct {
	logger   *slog.Logger
	onError  OnErrorFunc
	equality EqualityPolicy

	cells   *registry
	tracker tracker
	nodes   map[uint64]dependent
	lastSeq uint64

	batchDepth int
	pending    []*Cell
	pendingSet mapset.Set[*Cell]

	globals *Namespace
	stats   Stats
}

func NewReactiveSystem(opts ...Option) *ReactiveSystem {
	rs := &ReactiveSystem{
		logger:     slog.New(slog.DiscardHandler),
		nodes:      map[uint64]dependent{},
		pendingSet: mapset.NewThreadUnsafeSet[*Cell](),
	}
	for _, opt := range opts {
		opt(rs)
	}
	rs.cells = newRegistry(rs.logger)
	return rs
}

// Default is the process-wide system used by ResetAll.
var Default = NewReactiveSystem()

// ResetAll disposes every expression of the Default system.
func ResetAll() {
	Default.Reset()
}

func (rs *ReactiveSystem) nextSeq() uint64 {
	rs.lastSeq++
	return rs.lastSeq
}

func (rs *ReactiveSystem) register(n dependent) {
	rs.nodes[n.seq()] = n
}

func (rs *ReactiveSystem) forget(n dependent) {
	delete(rs.nodes, n.seq())
}

// Reset disposes every live expression: subscriptions are dropped and observer
// lists cleared. Calling it again with nothing registered does nothing.
func (rs *ReactiveSystem) Reset() {
	if len(rs.nodes) == 0 {
		return
	}
	nodes := make([]dependent, 0, len(rs.nodes))
	for _, n := range rs.nodes {
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, compareDependents)
	for _, n := range nodes {
		n.Dispose()
	}
	clear(rs.nodes)
	rs.logger.Debug("reset", "expressions", len(nodes), "cells", rs.cells.len())
}

func (rs *ReactiveSystem) Stats() Stats {
	s := rs.stats
	s.Cells = rs.cells.len()
	s.Expressions = len(rs.nodes)
	return s
}

// CellInfo is a copy of a cell's state at the time of Lookup.
type CellInfo struct {
	ID         Identity
	Value      any
	Dependents int
}

// Lookup reports the cell currently registered for id, if any expression
// depends on it. The cell itself stays private to the registry, which may
// evict it and later create a fresh one for the same identity.
func (rs *ReactiveSystem) Lookup(id Identity) (CellInfo, bool) {
	c, ok := rs.cells.lookup(id)
	if !ok {
		return CellInfo{}, false
	}
	return CellInfo{
		ID:         c.id,
		Value:      c.value,
		Dependents: c.DependentCount(),
	}, true
}

func (rs *ReactiveSystem) report(from Node, err error) {
	rs.logger.Warn("expression failed", "expression", from.ID(), "error", err)
	if rs.onError != nil {
		rs.onError(from, err)
	}
}
