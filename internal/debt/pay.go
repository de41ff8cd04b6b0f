package debt

// PayAll sweeps every node in the global list, settling outstanding debt
// against a pointer a writer just retired (oldAddr) and, where relevant,
// helping along any reader stuck in the helping path waiting on this
// exact cell (thisCellAddr).
//
// inc is called once for every fast-slot or bare-pointer helping-slot
// debt settled (the writer pre-paying on the reader's behalf).
// makeReplacement/release are only ever invoked for a helping-slot
// reader found waiting on thisCellAddr; see Node.Help.
//
// A writer reserves itself against the node's Cooldown transition for
// the duration of its visit to that node, so a concurrently-recycled
// node can never be observed mid-generation-reset (the same ABA guard
// Node's state machine enforces on the owning side).
//
// Grounded on original_source/src/debt/list.rs's pay_all combined with
// src/debt/helping.rs's writer-side help sweep.
func PayAll(oldAddr, thisCellAddr uintptr, inc func(), makeReplacement func() uintptr, release func(uintptr)) {
	Each(func(n *Node) {
		releaseWriter := n.ReserveWriter()
		defer releaseWriter()

		for i := range n.fast {
			if n.fast[i].ClearIfEqual(oldAddr) {
				inc()
			}
		}
		payHelping(n, oldAddr, thisCellAddr, inc, makeReplacement, release)
	})
}

func payHelping(n *Node, oldAddr, thisCellAddr uintptr, inc func(), makeReplacement func() uintptr, release func(uintptr)) {
	v := n.helping.Load()
	switch v & TagMask {
	case 0: // a bare pointer: the helping slot is doubling as a fast slot
		if v == oldAddr && n.helping.ClearIfEqual(oldAddr) {
			inc()
		}
	case GenTag: // a reader is mid-helping-path; help it if it's about us
		n.Help(v, thisCellAddr, makeReplacement, release)
	default: // ReplacementTag or NoDebt: nothing for a writer to settle
	}
}
