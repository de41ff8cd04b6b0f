// Package refcnt implements the managed strong reference the rest of the
// module swaps, reclaims, and pays debts against.
//
// Box[T] plays the role the design calls the "RefCnt contract": it exposes
// Freeze (drop ownership and yield a raw address, without touching the
// count), Thaw (the exact inverse: consume a raw address and produce a
// strong reference) and Peek (borrow the raw address without any count
// change). Go has no user-defined destructors and no trait with an
// associated function lacking a receiver, so rather than bolt on an
// interface + factory-function pair to imitate Rust's RefCnt trait, Box[T]
// is the one concrete adapter this module ships; see DESIGN.md for why.
package refcnt

import (
	"sync/atomic"
	"unsafe"
)

// Box is a heap-allocated, reference-counted holder of a T. The zero value
// is not valid; construct one with New.
//
// A Box's address is stable for its entire lifetime (it is never moved),
// which is what lets the rest of the module smuggle its address through a
// plain machine word (an atomic.Pointer, or - in the debt slots - a tagged
// uintptr) and hand it between goroutines.
type Box[T any] struct {
	value T
	count atomic.Int32
}

// New allocates a Box holding v with one strong reference already
// accounted for - the reference returned to the caller.
func New[T any](v T) *Box[T] {
	b := &Box[T]{value: v}
	b.count.Store(1)
	return b
}

// Value returns a pointer to the held value. The value is immutable once
// published - this module does not mediate mutation of the pointee - so
// callers must treat the returned pointer as read-only.
func (b *Box[T]) Value() *T {
	if b == nil {
		return nil
	}
	return &b.value
}

// Count reports the current strong reference count. Intended for tests and
// diagnostics only - by the time a caller observes it, it may already be
// stale.
func (b *Box[T]) Count() int32 {
	if b == nil {
		return 0
	}
	return b.count.Load()
}

// Inc increments the strong reference count by one.
func (b *Box[T]) Inc() {
	if b == nil {
		return
	}
	b.count.Add(1)
}

// IncIfAlive increments the count iff it is currently nonzero, reporting
// whether it did. Used by the weak-reference adapter (weak/) to upgrade
// a non-owning observer without reviving an object whose last strong
// owner already released it - the Go analogue of
// std::sync::Arc::upgrade's compare-exchange loop on the strong count.
func (b *Box[T]) IncIfAlive() bool {
	if b == nil {
		return false
	}
	for {
		n := b.count.Load()
		if n == 0 {
			return false
		}
		if b.count.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Dec decrements the strong reference count by one. Once it reaches zero
// the Box has no outstanding owners; there is nothing further to do here -
// Go's garbage collector reclaims the backing memory once the last
// pointer to it (including the one hidden in a debt slot's tagged uintptr)
// is gone. Dec returns true if this call observed the count drop to zero.
func (b *Box[T]) Dec() bool {
	if b == nil {
		return false
	}
	return b.count.Add(-1) == 0
}

// Freeze converts a strong reference into its raw address without
// affecting the reference count - the address is later handed back to
// Thaw exactly once per Freeze/Thaw pair (the debt protocol is the one
// place that legitimately calls Thaw more times than Freeze was called,
// provided the count never drops below one while it does so).
func Freeze[T any](b *Box[T]) unsafe.Pointer {
	return unsafe.Pointer(b)
}

// Thaw is the exact inverse of Freeze: it reinterprets a raw address
// previously produced by Freeze as a *Box[T], without touching the count.
func Thaw[T any](p unsafe.Pointer) *Box[T] {
	return (*Box[T])(p)
}

// Peek borrows the raw address of b without any ownership change. Peek(b)
// and Freeze(b) always return the same address for a live b; the two
// names exist to make call sites state their intent (peek: "don't touch
// the count", freeze: "about to hand off ownership of the count").
func Peek[T any](b *Box[T]) unsafe.Pointer {
	return unsafe.Pointer(b)
}

// Addr is a convenience for tagging/untagging debt slots: the raw address
// of b as a uintptr, suitable for storing in an atomic.Uintptr alongside
// tag bits. A nil Box yields zero, which is also the null-pointer bit
// pattern Thaw/Freeze handle for the nullable cell variant.
func Addr[T any](b *Box[T]) uintptr {
	return uintptr(Freeze(b))
}

// FromAddr is the uintptr-flavored counterpart to Thaw, used by the debt
// package which stores addresses, not typed pointers, in its slots.
func FromAddr[T any](addr uintptr) *Box[T] {
	return Thaw[T](unsafe.Pointer(addr)) //nolint:govet // debt slots intentionally round-trip addresses as uintptr
}
