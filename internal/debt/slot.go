// Package debt implements the debt-slot reclamation protocol: the fast
// hazard-pointer-like table of per-goroutine slots, the single
// helping-path slot used when the table is saturated, and the writer-side
// pay_all sweep that settles outstanding debts against a retired pointer.
//
// Grounded directly on original_source/src/debt.rs,
// src/debt/{list,helping,mod}.rs. Node is intentionally untyped (it
// stores tagged uintptr addresses, not *T), so a single process-wide Node
// list is shared by every Cell[T] regardless of T - exactly as in the
// original, where Debt/Node don't carry a type parameter either.
package debt

import (
	"sync/atomic"
)

// Tag bits occupy the two low-order bits of every slot value. Every real
// pointer address handed to a slot comes from a Go heap allocation, which
// is always aligned to at least 8 bytes, so the low two bits are free for
// tagging without colliding with a legitimate address.
const (
	// NoDebt is the sentinel meaning "this slot is free". It is an odd
	// value in the first, unmapped page - a real pointer can never equal
	// it, mirroring the original's choice of using the low bits as a
	// reserved tag space rather than a magic address.
	NoDebt uintptr = 0b11

	// GenTag marks a slot holding a generation token (a helping-path
	// reservation, not yet resolved to a pointer).
	GenTag uintptr = 0b10

	// ReplacementTag marks a slot holding an already-incremented pointer
	// a writer deposited for a reader to adopt.
	ReplacementTag uintptr = 0b01

	// TagMask isolates the two tag bits from an address.
	TagMask uintptr = 0b11
)

// Slot is one atomic debt-recording word. Its value is always one of: the
// NoDebt sentinel, a bare pointer address (a fast-path debt, tag bits
// zero), a generation token (GenTag set), or a tagged replacement pointer
// (ReplacementTag set).
type Slot struct {
	word atomic.Uintptr
}

// NewSlot returns a free slot, ready to use.
func NewSlot() *Slot {
	s := &Slot{}
	s.word.Store(NoDebt)
	return s
}

// Load reads the current slot value with no ordering guarantee beyond
// what sync/atomic always provides (Go exposes no sub-sequential-consistency
// load on atomic.Uintptr).
func (s *Slot) Load() uintptr {
	return s.word.Load()
}

// TryClaim attempts to move the slot from free (NoDebt) to addr, the
// fast-path debt registration. It acts like a lock acquisition: success
// must be visible to a concurrent writer's pay_all scan, so it is a full
// read-modify-write regardless of Go's inability to express a
// relaxed-on-failure/SeqCst-on-success split explicitly.
func (s *Slot) TryClaim(addr uintptr) bool {
	return s.word.CompareAndSwap(NoDebt, addr)
}

// Pay clears the slot if (and only if) it still holds expected, i.e. the
// debt has not already been settled by a concurrent writer's pay_all.
// Returns true if this call is the one that cleared it (the reader, not a
// helper, paid the debt).
func (s *Slot) Pay(expected uintptr) bool {
	return s.word.CompareAndSwap(expected, NoDebt)
}

// Confirm is the helping-path analogue of Pay: it tries to move the slot
// from expected to next. On failure (a writer hijacked the slot in the
// meantime) the slot is forced back to NoDebt, since whatever the writer
// left there has already been accounted for by the writer itself.
func (s *Slot) Confirm(expected, next uintptr) bool {
	if s.word.CompareAndSwap(expected, next) {
		return true
	}
	s.word.Store(NoDebt)
	return false
}

// ClearIfEqual is the writer-side primitive used while sweeping: it pays
// the slot on behalf of whichever reader owed addr, if the slot still
// names that address. Returns true if it cleared the slot.
func (s *Slot) ClearIfEqual(addr uintptr) bool {
	return s.word.CompareAndSwap(addr, NoDebt)
}
