// Package reclaim orchestrates the hybrid reclamation strategy: the
// reader fast/helping path (internal/debt), the writer swap/pay-all
// sweep, and the compare-and-swap slow path (internal/genlock). It is
// the one generic layer that knows about T - internal/debt and
// internal/genlock deliberately don't, so their slot/counter machinery
// is shared process-wide across every instantiation of Cell[T].
//
// Grounded directly on original_source/src/strategy/hybrid.rs's
// HybridProtection/HybridStrategy.
package reclaim

import (
	"sync/atomic"
	"unsafe"

	"github.com/kolkov/arcswap/internal/debt"
	"github.com/kolkov/arcswap/internal/refcnt"
)

// Protected is the handle returned by Load: either Borrowed (backed by an
// outstanding debt slot that must eventually be paid) or Owned (a
// materialized strong reference, no slot involved).
type Protected[T any] struct {
	box  *refcnt.Box[T]
	slot *debt.Slot
	addr uintptr
}

// Value derefs the protected handle to the value it guards. Returns nil
// for the nullable variant's absent state.
func (p Protected[T]) Value() *T {
	if p.box == nil {
		return nil
	}
	return p.box.Value()
}

// IsNull reports the nullable variant's absent state.
func (p Protected[T]) IsNull() bool { return p.box == nil }

// Release settles this handle: a Borrowed handle tries to pay its own
// slot; if a writer already paid it on the handle's behalf, the handle
// has effectively been upgraded to Owned and releasing it drops one
// strong reference. An Owned handle always drops one reference.
//
// Grounded on hybrid.rs's Drop impl for HybridProtection.
func (p Protected[T]) Release() {
	if p.slot == nil {
		// Owned: we hold our own counted reference (or nothing, for the
		// null state). The value type has no destructor contract in this
		// module, so reaching zero needs no further action here.
		if p.box != nil {
			p.box.Dec()
		}
		return
	}
	if p.slot.Pay(p.addr) {
		// We paid our own debt: we never held an owned count to begin with.
		return
	}
	// A writer already paid this slot for us: we're holding a transferred
	// count now and must drop it ourselves.
	p.box.Dec()
}

// ToOwned materializes this handle into a fully independent strong
// reference that can outlive the Cell it came from, incrementing the
// count if the handle was still Borrowed. Grounded on hybrid.rs's
// Protected::into_inner.
func (p Protected[T]) ToOwned() *refcnt.Box[T] {
	if p.slot == nil {
		return p.box
	}
	p.box.Inc()
	if p.slot.Pay(p.addr) {
		return p.box
	}
	// The slot had already been paid by a writer; that transferred count
	// is now redundant with the Inc above, so give it back.
	p.box.Dec()
	return p.box
}

func owned[T any](box *refcnt.Box[T]) Protected[T] {
	return Protected[T]{box: box}
}

func borrowed[T any](box *refcnt.Box[T], slot *debt.Slot, addr uintptr) Protected[T] {
	return Protected[T]{box: box, slot: slot, addr: addr}
}

// identity is the stable per-Cell address used to disambiguate, in the
// helping path, "a reader is racing on exactly this cell" from an
// unrelated pointer value. Any distinct, stable address works; the
// storage field's own address is the natural and cheapest choice.
func identity[T any](storage *atomic.Pointer[refcnt.Box[T]]) uintptr {
	return uintptr(unsafe.Pointer(storage))
}

// rawLoad is a small helper shared by the fast and helping attempts:
// reads storage and returns both the *refcnt.Box[T] and its raw address.
func rawLoad[T any](storage *atomic.Pointer[refcnt.Box[T]]) (*refcnt.Box[T], uintptr) {
	b := storage.Load()
	return b, uintptr(unsafe.Pointer(b))
}
