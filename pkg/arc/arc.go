// Package arc provides a pooled, non-atomic reference count, grounded on
// the teacher's std/types/arc package (observed in the retrieval pack only
// as arc_pool_test.go; the implementation here is written fresh against
// that test's documented contract).
//
// The reactor that owns PIT/CS/ConnTable is single-threaded (spec.md 5), so
// these counts are deliberately plain ints rather than sync/atomic: atomics
// are a seam to add if a future variant introduces multiple reactors, not a
// default (spec.md 9).
package arc

import "sync"

// Arc wraps a pooled *T with a manual reference count. Get() returns one
// reference already held; call Inc() for each additional holder (PIT
// entry, CS entry, in-flight send) and Dec() when each holder is done. When
// the count reaches zero the object is reset and returned to the pool.
type Arc[T any] struct {
	pool  *Pool[T]
	value *T
	count int32
}

// Load returns the underlying value without touching the reference count.
func (a *Arc[T]) Load() *T { return a.value }

// Inc records one additional reference holder.
func (a *Arc[T]) Inc() { a.count++ }

// Dec releases one reference holder, returning the reference count after
// the decrement. At zero, the value is reset and returned to the pool; the
// Arc must not be used again after Dec returns 0.
func (a *Arc[T]) Dec() int32 {
	a.count--
	if a.count <= 0 {
		a.pool.release(a)
	}
	return a.count
}

// Pool recycles *T allocations behind a reset function, the way the
// teacher avoids per-message-view allocation churn on the hot path.
type Pool[T any] struct {
	newFn   func() *T
	resetFn func(*T)
	sp      sync.Pool
}

// NewArcPool constructs a Pool. newFn allocates a fresh *T; resetFn restores
// a *T to its zero-equivalent state, both before a fresh *T is first handed
// out and each time a released *T goes back into the pool.
func NewArcPool[T any](newFn func() *T, resetFn func(*T)) *Pool[T] {
	p := &Pool[T]{newFn: newFn, resetFn: resetFn}
	p.sp.New = func() any {
		v := newFn()
		resetFn(v)
		return &Arc[T]{pool: p, value: v}
	}
	return p
}

// Get returns an Arc with one reference already held.
func (p *Pool[T]) Get() *Arc[T] {
	a := p.sp.Get().(*Arc[T])
	a.count = 1
	return a
}

func (p *Pool[T]) release(a *Arc[T]) {
	p.resetFn(a.value)
	p.sp.Put(a)
}
