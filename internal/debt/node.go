package debt

import (
	"sync/atomic"

	"github.com/kolkov/arcswap/internal/alist"
	"github.com/kolkov/arcswap/internal/swaplog"
	"github.com/kolkov/arcswap/internal/swaptrace"
)

// FastSlotCount is the size of each Node's fast-path debt table. Matches
// the original's DEBT_SLOT_CNT.
const FastSlotCount = 6

// State is the lifecycle of a Node's ownership.
type State int32

const (
	// Unused: nobody owns this node, free to claim.
	Unused State = iota
	// Used: a goroutine currently owns this node and may write into its
	// slots (readers only ever CAS their own claimed slots from NoDebt;
	// writers only ever CAS an occupied slot back to NoDebt, never the
	// other direction - so ownership of "writing arbitrary new values"
	// stays with whichever goroutine holds Used).
	Used
	// Cooldown: the owning goroutine released the node, but it cannot be
	// handed to a new owner (and have its generation counter implicitly
	// reset) until no writer is still mid-traversal over it - see
	// CheckCooldown.
	Cooldown
)

// Node is one block of debt slots belonging, at any moment, to at most
// one goroutine. It is not aligned to a cache-line boundary (see the
// padding note below). Grounded directly on
// original_source/src/debt/list.rs's Node (repr(C, align(64))): the fast
// slot array, the single helping slot plus its active-storage-address
// word, the in_use state machine, and the active_writers counter are
// all carried over under the same names.
type Node struct {
	fast    [FastSlotCount]Slot
	helping Slot
	// activeAddr publishes, with Release-equivalent ordering, the address
	// of the cell a helping-path reader is currently waiting on, so a
	// concurrent writer can recognize "this is about me".
	activeAddr    atomic.Uintptr
	inUse         atomic.Int32
	activeWriters atomic.Int32
	// padding adds 16 trailing bytes, following the layout-comment style
	// of internal/race/shadowmem's CASCell (an explicit trailing byte
	// array). With it a Node is 88 bytes on 64-bit platforms: neither a
	// multiple of a 64-byte cache line nor aligned to one, so the pad
	// only adds spacing and does not rule out false sharing between
	// Nodes.
	_ [16]byte
}

var nodes alist.List[Node]

func newNode(n *Node) {
	for i := range n.fast {
		n.fast[i].word.Store(NoDebt)
	}
	n.helping.word.Store(NoDebt)
	n.inUse.Store(int32(Used))
}

// Acquire finds an Unused or Cooldown-ready node and claims it, or appends
// a fresh one to the global list. Grounded on
// original_source/src/debt/list.rs's Node::get.
func Acquire() *Node {
	if n := nodes.Find(func(n *Node) bool {
		n.checkCooldown()
		return n.inUse.CompareAndSwap(int32(Unused), int32(Used))
	}); n != nil {
		return n
	}
	swaplog.L().Debug("debt: appending a fresh node to the global list")
	return nodes.Insert(newNode)
}

// FastSlot returns the i'th fast slot.
func (n *Node) FastSlot(i int) *Slot { return &n.fast[i] }

// HelpingSlot returns the node's single helping-path slot.
func (n *Node) HelpingSlot() *Slot { return &n.helping }

// PublishActiveAddr records, for the benefit of a concurrent writer, the
// address of the cell this node's owner is currently reading from via the
// helping path.
func (n *Node) PublishActiveAddr(addr uintptr) { n.activeAddr.Store(addr) }

// ActiveAddr reads back the address published by PublishActiveAddr.
func (n *Node) ActiveAddr() uintptr { return n.activeAddr.Load() }

// ReserveWriter marks that a writer is about to traverse this node's
// slots, preventing it from completing a Cooldown->Unused transition (and
// thus resetting its generation counter) until the writer is done. The
// returned function must be called exactly once to release the
// reservation.
func (n *Node) ReserveWriter() (release func()) {
	n.activeWriters.Add(1)
	return func() { n.activeWriters.Add(-1) }
}

// StartCooldown is called by the owning goroutine when it releases the
// node (the escape hatch / generation-wrap path).
func (n *Node) StartCooldown() {
	n.inUse.Store(int32(Cooldown))
}

// checkCooldown performs a Cooldown->Unused transition if no writer is
// currently mid-traversal. This is the ABA guard: a writer walking the
// fast slots must never observe the node recycled to a new owner (and
// its generation counter reset) mid-walk.
func (n *Node) checkCooldown() {
	if n.inUse.Load() != int32(Cooldown) {
		return
	}
	if n.activeWriters.Load() == 0 {
		if n.inUse.CompareAndSwap(int32(Cooldown), int32(Unused)) {
			swaptrace.Get().OnCooldown()
		}
	}
}

// Each traverses every node in the global, process-wide list. Writers use
// this to sweep every outstanding debt on a retired pointer; it is never
// used on the fast load path.
func Each(f func(*Node)) {
	nodes.Iter(func(n *Node) bool {
		f(n)
		return true
	})
}
