package debt

// ClaimFast scans the node's fixed-size fast-slot array and tries to
// claim one for addr. It returns the claimed slot, or nil once every
// slot is already occupied - the caller's signal to fall back to the
// helping path. saturated additionally reports whether this particular
// claim was the one that filled the last remaining slot; nothing here
// acts on that beyond reporting it (attemptFast leaves the slot occupied
// either way, which is what lets a node ever reach this full state).
//
// Grounded directly on original_source/src/debt.rs's Debt::new: "try each
// slot's CAS from NO_DEBT to ptr in turn".
func (n *Node) ClaimFast(addr uintptr) (slot *Slot, saturated bool) {
	for i := range n.fast {
		if n.fast[i].TryClaim(addr) {
			return &n.fast[i], n.allFastOccupied()
		}
	}
	return nil, false
}

func (n *Node) allFastOccupied() bool {
	for i := range n.fast {
		if n.fast[i].Load() == NoDebt {
			return false
		}
	}
	return true
}
