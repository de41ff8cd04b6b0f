package debt

import "github.com/kolkov/arcswap/internal/swaptrace"

// ReserveHelping installs a generation token into the node's single
// helping slot. storageAddr is published first (Release-ordered relative
// to the claim, which Go's sync/atomic gives us for free since every
// operation here is already a full read-modify-write or a plain atomic
// store/load) so that a concurrent writer's sweep recognizes which cell
// this node's owner is waiting on before it can possibly observe the
// token itself.
//
// Only the owning goroutine ever calls this for a given node, and only
// once its fast slots are saturated. The claim fails when the helping
// slot is still occupied by an earlier handle the same goroutine has not
// released yet; it reports that failure rather than panicking, so the
// caller can move on to another node.
//
// Grounded on original_source/src/debt/helping.rs's Slots::get_debt.
func (n *Node) ReserveHelping(gen, storageAddr uintptr) bool {
	n.PublishActiveAddr(storageAddr)
	return n.helping.TryClaim(gen)
}

// ResolveHelping is the reader-side second half of the helping path: once
// the generation token is installed and the cell's current pointer has
// been read as ptrAddr, try to settle the slot on that address.
//
// If a concurrent writer raced in and deposited a replacement instead
// (the only other party ever allowed to touch this node's helping slot),
// that replacement is consumed here and handed back as an owned handle -
// the writer already paid for it with an extra increment, so the caller
// must not pay again.
func (n *Node) ResolveHelping(gen, ptrAddr uintptr) (addr uintptr, borrowed bool) {
	if n.helping.word.CompareAndSwap(gen, ptrAddr) {
		return ptrAddr, true
	}
	replacement := n.helping.Load()
	n.helping.word.Store(NoDebt)
	return replacement &^ TagMask, false
}

// Help is the writer-side counterpart consulted while sweeping a node
// whose helping slot holds a generation token: if the reader is waiting
// on thisCellAddr, donate a pre-paid replacement so the reader doesn't
// have to retry the whole load. makeReplacement is called at most once,
// and the replacement gets a single CAS attempt; if that attempt fails,
// release is called on the replacement address so the caller can undo
// the extra increment makeReplacement performed for it.
//
// Returns true if the slot wasn't about this cell or a replacement was
// installed, false if the slot no longer held gen.
//
// Grounded on original_source/src/debt/helping.rs's Slots::help.
func (n *Node) Help(gen, thisCellAddr uintptr, makeReplacement func() uintptr, release func(uintptr)) bool {
	if n.ActiveAddr() != thisCellAddr {
		return true
	}
	replacement := makeReplacement()
	if n.helping.word.CompareAndSwap(gen, replacement|ReplacementTag) {
		swaptrace.Get().OnHelpReplace()
		return true
	}
	// The slot no longer holds gen: the reader resolved it itself (or
	// moved on to a new generation) before we could donate. Undo the
	// extra increment and leave the slot for whatever state it's in now.
	release(replacement)
	return false
}
