package tlocal

import (
	"sync"

	"github.com/kolkov/arcswap/internal/debt"
)

// Local is the per-goroutine state: the debt.Node it currently owns and
// its private helping-path generation counter. Nothing here is touched
// by more than one goroutine at a time, so none of it needs to be
// atomic - the atomics live inside debt.Node, which is genuinely shared.
type Local struct {
	node       *debt.Node
	generation uint64
}

var handles sync.Map // int64 goroutine id -> *Local

// Current returns (creating if necessary) the calling goroutine's Local.
// Grounded on internal/race/api/race.go's `contexts sync.Map` keyed by
// goroutine id, adapted from a detector's per-access bookkeeping map to a
// reclamation node cache.
func Current() *Local {
	gid := goroutineID()
	if v, ok := handles.Load(gid); ok {
		return v.(*Local)
	}
	l := &Local{node: debt.Acquire()}
	actual, _ := handles.LoadOrStore(gid, l)
	return actual.(*Local)
}

// Node returns the node backing this goroutine's debt slots.
func (l *Local) Node() *debt.Node { return l.node }

// NextGeneration advances this goroutine's private helping-path counter
// by 4 (the low two bits stay clear for debt.GenTag/ReplacementTag) and
// returns the tagged token ready to install into a helping slot. wrapped
// reports whether the counter just rolled over back to zero - in that
// vanishingly unlikely event the node must be retired (see Rewind) so a
// stale generation from a previous era can never collide with a fresh
// one a writer is still trying to resolve.
func (l *Local) NextGeneration() (token uintptr, wrapped bool) {
	l.generation += 4
	if l.generation == 0 {
		wrapped = true
	}
	token = (l.generation &^ debt.TagMask) | debt.GenTag
	return token, wrapped
}

// Rewind retires this goroutine's current node (putting it into cooldown
// so it cannot be reused until any in-flight writer sweep finishes) and
// claims a fresh one with a reset generation counter. Called after
// NextGeneration reports a wraparound - at that point the node's
// generation counter genuinely needs to restart clean, and nothing this
// goroutine is still holding can reference a slot on it, because the
// fast/helping slots this goroutine claims are always released (or
// abandoned via Escalate, never Rewind) before a wraparound is even
// possible this many increments later.
func (l *Local) Rewind() {
	l.node.StartCooldown()
	l.node = debt.Acquire()
	l.generation = 0
}

// Escalate claims an additional node for this goroutine without retiring
// the one currently in use. Called when the current node's single
// helping slot is already busy with another handle this same goroutine
// is still holding (more concurrently-held handles on one goroutine than
// a single node's fast table plus helping slot can track at once): that
// node still has a live debt against it, so putting it into cooldown -
// as Rewind does - would let some other goroutine claim it mid-use. The
// abandoned node is never reclaimed by this goroutine again; it stays
// permanently owned, the same leak-on-the-side tradeoff Release's doc
// comment already accepts for goroutines that exit without calling it.
func (l *Local) Escalate() *debt.Node {
	l.node = debt.Acquire()
	l.generation = 0
	return l.node
}

// Release gives this goroutine's node back to the pool and forgets its
// Local entirely. Intended for long-lived worker-pool goroutines that
// know they're done touching any Cell; short-lived goroutines that exit
// without calling this simply leak their map entry, the same limitation
// a per-goroutine sync.Map registry without an exit hook always has.
func Release() {
	gid := goroutineID()
	if v, ok := handles.LoadAndDelete(gid); ok {
		v.(*Local).node.StartCooldown()
	}
}
