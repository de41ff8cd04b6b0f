package reclaim

import (
	"sync/atomic"

	"github.com/kolkov/arcswap/internal/debt"
	"github.com/kolkov/arcswap/internal/genlock"
	"github.com/kolkov/arcswap/internal/refcnt"
	"github.com/kolkov/arcswap/internal/swaplog"
	"github.com/kolkov/arcswap/internal/swaptrace"
	"github.com/kolkov/arcswap/internal/tlocal"
)

// Load is a fast debt-slot attempt, falling back to the single helping
// slot if the owning node's fast table is saturated. Grounded on
// hybrid.rs's HybridProtection::attempt plus HybridStrategy::load's
// fallback-to-helping branch (upstream falls back to a GenLock strategy
// there; this module's hybrid instead falls back to the helping path
// directly).
func Load[T any](storage *atomic.Pointer[refcnt.Box[T]]) Protected[T] {
	id := identity(storage)
	for {
		p, retry, ok := attemptFast(storage)
		if ok {
			return p
		}
		if !retry {
			break
		}
		// We paid our own fast-slot debt and discarded a stale pointer;
		// the cell has moved on, so just try the fast path again.
	}
	return attemptHelping(storage, id)
}

// attemptFast is one try at the fast debt-slot path. ok reports whether a
// usable Protected was produced; retry reports (when ok is false) whether
// the caller should simply retry the fast path rather than fall back to
// helping.
//
// A claimed fast slot is always handed back to the caller as Borrowed and
// left occupied: nothing here pays it early. That is what lets the table
// actually reach capacity when a goroutine holds several handles at once,
// routing the next Load on that goroutine's node to attemptHelping once
// ClaimFast reports the table full (slot == nil) - the reachable path
// this strategy is named for.
func attemptFast[T any](storage *atomic.Pointer[refcnt.Box[T]]) (p Protected[T], retry bool, ok bool) {
	box, addr := rawLoad(storage)
	node := tlocal.Current().Node()
	slot, _ := node.ClaimFast(addr)
	if slot == nil {
		return Protected[T]{}, false, false
	}
	_, confirmAddr := rawLoad(storage)
	if confirmAddr == addr {
		return borrowed(box, slot, addr), false, true
	}
	if slot.Pay(addr) {
		// We cleared it ourselves: nobody paid on our behalf, so box may
		// already be gone. Discard and retry the fast path from scratch.
		return Protected[T]{}, true, false
	}
	// A writer already paid this slot: it transferred ownership of addr's
	// object to us.
	return owned(refcnt.FromAddr[T](addr)), false, true
}

// attemptHelping is the helping-path fallback, used once a node's fast
// table is saturated. Grounded on original_source/src/debt/helping.rs's
// reader side.
//
// A loop rather than recursion: a goroutine holding many concurrent
// handles past what a single node's fast table and helping slot can
// track at once can need several retries in a row, one per extra
// handle, and recursing once per retry would grow the stack unboundedly
// instead of the bounded handful of iterations this actually takes.
func attemptHelping[T any](storage *atomic.Pointer[refcnt.Box[T]], id uintptr) Protected[T] {
	swaptrace.Get().OnLoadFallback()
	local := tlocal.Current()
	for {
		node := local.Node()
		gen, wrapped := local.NextGeneration()
		if wrapped {
			swaplog.L().Debug("reclaim: generation counter wrapped, retiring node to cooldown")
			local.Rewind()
			continue
		}
		if !node.ReserveHelping(gen, id) {
			// The current node's one helping slot is already doing duty
			// for another handle this same goroutine is still holding -
			// the node itself isn't stale, so (unlike a generation
			// wraparound) Rewind would be wrong here: cooling it down
			// would let some other goroutine claim a node that still has
			// a live debt outstanding against it. Escalate to an
			// additional node instead and leave this one alone.
			swaplog.L().Debug("reclaim: helping slot busy with another outstanding handle, escalating to an additional node")
			local.Escalate()
			continue
		}
		_, ptrAddr := rawLoad(storage)
		addr, isBorrowed := node.ResolveHelping(gen, ptrAddr)
		if isBorrowed {
			return borrowed(refcnt.FromAddr[T](addr), node.HelpingSlot(), addr)
		}
		return owned(refcnt.FromAddr[T](addr))
	}
}

// Store installs newBox and settles every outstanding debt against the
// previous pointer. Grounded on hybrid.rs's
// InnerStrategy::wait_for_readers plus the swap that precedes it.
func Store[T any](storage *atomic.Pointer[refcnt.Box[T]], lockStorage genlock.Storage, newBox *refcnt.Box[T]) {
	Swap(storage, lockStorage, newBox).Dec()
}

// Swap installs newBox and returns the previous value as an owned
// reference the caller must eventually Dec.
func Swap[T any](storage *atomic.Pointer[refcnt.Box[T]], lockStorage genlock.Storage, newBox *refcnt.Box[T]) *refcnt.Box[T] {
	old := storage.Swap(newBox)
	oldAddr := addrOf(old)
	payAll(storage, lockStorage, oldAddr, old)
	return old
}

// payAll drains every generation-lock reader still holding a guard taken
// against the previous pointer, pre-increments old (for liveness during
// the sweep that follows), walks every node settling fast and helping
// debts against oldAddr, and donates replacements to any helping-path
// reader racing on this exact storage.
//
// Grounded on hybrid.rs's wait_for_readers: "self.fallback.wait_for_readers(old);
// Debt::pay_all::<T>(old);" - the generation-lock drain always runs
// before the debt sweep, so a CompareAndSwap guard registered against the
// retired pointer (see CompareAndSwap below) is guaranteed to have been
// waited on before that pointer's count can reach zero here.
func payAll[T any](storage *atomic.Pointer[refcnt.Box[T]], lockStorage genlock.Storage, oldAddr uintptr, old *refcnt.Box[T]) {
	genlock.WaitForReaders(lockStorage)

	old.Inc()
	id := identity(storage)
	debt.PayAll(
		oldAddr,
		id,
		old.Inc,
		func() uintptr {
			replacement := Load(storage).ToOwned()
			return addrOf(replacement)
		},
		func(addr uintptr) {
			refcnt.FromAddr[T](addr).Dec()
		},
	)
	old.Dec()
}

// CompareAndSwap is a generation-lock guarded CAS that works whether the
// cell currently holds current or not. Grounded on hybrid.rs's
// CaS::compare_and_swap.
//
// The guard taken here is the same lockStorage that payAll's
// WaitForReaders drains on every Store/Swap against this Cell, so a
// concurrent writer's reclamation sweep cannot retire current's object
// out from under the Inc below: it blocks in WaitForReaders until this
// guard releases.
func CompareAndSwap[T any](storage *atomic.Pointer[refcnt.Box[T]], lockStorage genlock.Storage, current, newBox *refcnt.Box[T]) (result Protected[T], swapped bool) {
	guard := genlock.Lock(lockStorage)

	// A compare-exchange loop rather than a single CompareAndSwap-then-Load:
	// atomic.Pointer exposes no primitive that reports the pre-CAS value on
	// failure the way the original's compare_and_swap does, so the
	// observed value has to come from a Load taken immediately before the
	// attempt it governs, not from a separate Load issued afterwards (which
	// could by then reflect a third, later store).
	var previous *refcnt.Box[T]
	for {
		observed := storage.Load()
		if observed != current {
			previous = observed
			swapped = false
			break
		}
		if storage.CompareAndSwap(current, newBox) {
			previous = current
			swapped = true
			break
		}
		// Something else changed the pointer between our Load and our CAS
		// attempt; re-read and retry the comparison against current.
	}

	if swapped {
		// current's cell-owned count is now free to hand back to the
		// caller; release the lock before the (possibly slow) sweep, then
		// settle every debt against it exactly like a plain Swap would.
		guard.Release()
		payAll(storage, lockStorage, addrOf(previous), previous)
		return owned(previous), true
	}

	// The comparison failed: the cell still owns previous's replacement,
	// whatever that turned out to be. Inc it for the handle we're about
	// to return - still under the guard, so a concurrent Store's sweep
	// can't have already driven it to zero - then give back newBox's
	// count since it never went in.
	previous.Inc()
	guard.Release()
	newBox.Dec()
	return owned(previous), false
}

func addrOf[T any](b *refcnt.Box[T]) uintptr {
	return refcnt.Addr(b)
}
