// Package arcswap provides an atomically swappable, reference-counted
// pointer cell: any number of goroutines may concurrently Load, Store,
// Swap, or CompareAndSwap the value a Cell holds, with readers always
// observing a live, correctly-counted handle to either the pre- or
// post-replacement value.
//
// The hard part - and the reason this isn't just an atomic.Pointer - is
// reclamation: a reader that reads the pointer and then increments its
// reference count must never do so on an object a concurrent writer has
// already driven to zero and destroyed. Cell resolves this with a hybrid
// scheme (see internal/debt and internal/reclaim): a fast hazard-pointer-
// like debt table for the common case, falling back to a helping
// protocol in which a racing writer deposits a pre-incremented
// replacement for the reader to adopt.
package arcswap

import (
	"sync/atomic"

	"github.com/kolkov/arcswap/internal/genlock"
	"github.com/kolkov/arcswap/internal/reclaim"
	"github.com/kolkov/arcswap/internal/refcnt"
)

// Cell holds one logical strong reference to a value of type T,
// supporting wait-free reads and lock-free replacement. The zero Cell is
// not usable: it has no lock storage, so Store, Swap and CompareAndSwap
// panic on it. Construct one with New, or with NewEmpty for an empty
// (nullable) cell.
//
// Grounded on original_source/src/lib.rs's ArcSwapAny.
type Cell[T any] struct {
	ptr  atomic.Pointer[refcnt.Box[T]]
	lock genlock.Storage
}

// New returns a Cell pre-populated with value, holding one reference.
func New[T any](value T, opts ...Option) *Cell[T] {
	c := newCell[T](opts...)
	c.ptr.Store(refcnt.New(value))
	return c
}

// NewEmpty returns a Cell in the nullable variant's absent state.
func NewEmpty[T any](opts ...Option) *Cell[T] {
	return newCell[T](opts...)
}

func newCell[T any](opts ...Option) *Cell[T] {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Cell[T]{lock: cfg.lockStorage}
}

// Load returns a wait-free, borrowed Guard onto whatever value the Cell
// held at some instant during the call. The Guard must be released.
func (c *Cell[T]) Load() Guard[T] {
	return Guard[T]{protected: reclaim.Load(&c.ptr)}
}

// LoadFull is equivalent to Load().Own(): a strong reference that can
// outlive the Cell.
func (c *Cell[T]) LoadFull() Strong[T] {
	g := c.Load()
	return g.Own()
}

// RawAddr peeks the address of the value currently installed, with no
// synchronization stronger than a single atomic load and no effect on
// any reference count. It exists for the Cache adapter's cheap
// revalidation check (cache.rs's direct field peek); treat the result
// purely as an identity token to compare against another RawAddr or a
// Strong's Unwrap, never dereference it.
func (c *Cell[T]) RawAddr() uintptr {
	return refcnt.Addr(c.ptr.Load())
}

// Store replaces the Cell's value, dropping the reference to whatever
// was there before once every outstanding reader has been accounted for.
func (c *Cell[T]) Store(value T) {
	reclaim.Store(&c.ptr, c.lock, refcnt.New(value))
}

// Swap replaces the Cell's value and returns the previous one as a
// Strong the caller must eventually Release.
func (c *Cell[T]) Swap(value T) Strong[T] {
	old := reclaim.Swap(&c.ptr, c.lock, refcnt.New(value))
	return newStrong(old)
}

// CompareAndSwap replaces the Cell's value with new iff it currently
// holds current (compared by reference identity of current's Strong),
// returning the value the Cell held at the comparison: current itself
// on success, the differing value on failure. Grounded on
// original_source/src/strategy/hybrid.rs's CaS::compare_and_swap.
func (c *Cell[T]) CompareAndSwap(current Strong[T], new T) (observed Strong[T], swapped bool) {
	result, swapped := reclaim.CompareAndSwap(&c.ptr, c.lock, current.box, refcnt.New(new))
	return newStrong(result.ToOwned()), swapped
}

// RCU ("read, copy, update") loops: load the current value, compute
// f(old), and try to install it with a compare-and-swap, retrying on
// contention. f must be a pure function of its argument; it may be
// invoked more than once. Returns the value that was ultimately
// installed and the number of retries beyond the first attempt - a
// supplement over the distilled operation set, surfaced for callers
// instrumenting contention (original_source/src/lib.rs's rcu doesn't
// report it, but nothing prevents a richer Go return type here).
func (c *Cell[T]) RCU(f func(T) T) (result Strong[T], retries int) {
	current := c.LoadFull()
	for {
		next := refcnt.New(f(*current.Value()))
		next.Inc() // one count for the Cell, one for the returned Strong
		observed, swapped := reclaim.CompareAndSwap(&c.ptr, c.lock, current.box, next)
		current.Release()
		if swapped {
			newStrong(observed.ToOwned()).Release()
			return newStrong(next), retries
		}
		next.Dec()
		current = newStrong(observed.ToOwned())
		retries++
	}
}
