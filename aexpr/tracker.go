package aexpr

import "fmt"

type read struct {
	id    Identity
	value any
}

type frameMode uint8

const (
	// frameTracked records the reads of one evaluation
	frameTracked frameMode = iota
	// frameUntracked swallows reads, inside an evaluation or not
	frameUntracked
	// framePropagating swallows reads made while notifying dependents of a
	// write, so observers never leak reads into an enclosing evaluation. It
	// also ends the search for the writer of a location.
	framePropagating
)

// trackerFrame records the locations read during one evaluation.
type trackerFrame struct {
	mode  frameMode
	owner dependent
	seen  map[Identity]int
	reads []read
}

func (f *trackerFrame) paused() bool {
	return f.mode != frameTracked
}

// tracker is an explicit stack of frames indexed by nesting depth. Frames are
// reused between evaluations; pop hands out a copy of the reads.
type tracker struct {
	frames []trackerFrame
	depth  int
}

// push opens a new frame and returns its depth, to be handed back to pop.
func (t *tracker) push(mode frameMode, owner dependent) int {
	if t.depth == len(t.frames) {
		t.frames = append(t.frames, trackerFrame{seen: map[Identity]int{}})
	}
	f := &t.frames[t.depth]
	f.mode = mode
	f.owner = owner
	clear(f.seen)
	f.reads = f.reads[:0]
	t.depth++
	return t.depth
}

func (t *tracker) pop(depth int) []read {
	if depth != t.depth || depth == 0 {
		panic(fmt.Sprintf("aexpr: tracker popped at depth %d, current depth %d", depth, t.depth))
	}
	t.depth--
	f := &t.frames[t.depth]
	f.owner = nil
	if f.paused() {
		return nil
	}
	return append([]read(nil), f.reads...)
}

func (t *tracker) current() *trackerFrame {
	if t.depth == 0 {
		return nil
	}
	return &t.frames[t.depth-1]
}

// record adds id to the current frame, keeping the value of the latest read.
func (t *tracker) record(id Identity, value any) bool {
	f := t.current()
	if f == nil || f.paused() {
		return false
	}
	if i, ok := f.seen[id]; ok {
		f.reads[i].value = value
		return true
	}
	f.seen[id] = len(f.reads)
	f.reads = append(f.reads, read{id: id, value: value})
	return true
}

// writer is the evaluation issuing a write right now, nil when the write comes
// from outside any evaluation or from an observer.
func (t *tracker) writer() dependent {
	for i := t.depth - 1; i >= 0; i-- {
		f := &t.frames[i]
		switch {
		case f.owner != nil:
			return f.owner
		case f.mode == framePropagating:
			return nil
		}
	}
	return nil
}

// invalidate marks every enclosing evaluation that already read id as dirty,
// except the one issuing the write: an evaluator writing what it reads does
// not re-enter itself.
func (t *tracker) invalidate(id Identity) {
	writer := t.writer()
	for i := t.depth - 1; i >= 0; i-- {
		f := &t.frames[i]
		if f.owner == nil || f.owner == writer {
			continue
		}
		if _, ok := f.seen[id]; ok {
			f.owner.markDirty()
		}
	}
}

// track runs fn inside a fresh frame owned by owner. The frame is popped even if fn panics,
// in which case the panic is returned as a *PanicError and no reads are kept.
func (rs *ReactiveSystem) track(owner dependent, fn func() error) (reads []read, err error) {
	depth := rs.tracker.push(frameTracked, owner)
	defer func() {
		frameReads := rs.tracker.pop(depth)
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
		if err == nil {
			reads = frameReads
		}
	}()
	err = fn()
	return nil, err
}

// Untracked runs fn without recording any of its reads into the enclosing evaluation.
func (rs *ReactiveSystem) Untracked(fn func()) {
	depth := rs.tracker.push(frameUntracked, nil)
	defer rs.tracker.pop(depth)
	fn()
}

// Untrack returns fn's result without recording any of its reads.
func Untrack[T any](rs *ReactiveSystem, fn func() T) (t T) {
	rs.Untracked(func() {
		t = fn()
	})
	return t
}

// Tracking reports whether a read right now would become a dependency.
func (rs *ReactiveSystem) Tracking() bool {
	f := rs.tracker.current()
	return f != nil && !f.paused()
}
