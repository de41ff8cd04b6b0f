package debt_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolkov/arcswap/internal/debt"
)

func TestAcquireReturnsDistinctNodesUntilReleased(t *testing.T) {
	n1 := debt.Acquire()
	n2 := debt.Acquire()
	require.NotSame(t, n1, n2, "two concurrently-held acquisitions must not share a node")

	n1.StartCooldown()
	n2.StartCooldown()
}

func TestClaimFastSaturation(t *testing.T) {
	n := debt.Acquire()
	defer n.StartCooldown()

	var saturatedAt = -1
	for i := 0; i < debt.FastSlotCount; i++ {
		slot, saturated := n.ClaimFast(uintptr(0x1000 + i))
		require.NotNil(t, slot)
		if saturated {
			saturatedAt = i
		}
	}
	require.Equal(t, debt.FastSlotCount-1, saturatedAt, "saturation should be reported exactly on the last slot claimed")

	// Table is now full; claiming a new address must fail.
	slot, saturated := n.ClaimFast(0xdead)
	require.Nil(t, slot)
	require.False(t, saturated)

	// Pay them all back.
	for i := 0; i < debt.FastSlotCount; i++ {
		require.True(t, n.FastSlot(i).Pay(uintptr(0x1000+i)))
	}
}

func TestEachVisitsAcquiredNodes(t *testing.T) {
	n := debt.Acquire()
	defer n.StartCooldown()

	n.FastSlot(0).TryClaim(0x42)
	defer n.FastSlot(0).Pay(0x42)

	var found bool
	debt.Each(func(candidate *debt.Node) {
		if candidate == n {
			found = true
		}
	})
	require.True(t, found)
}
