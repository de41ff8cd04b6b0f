package debt_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolkov/arcswap/internal/debt"
)

func TestPayAllSettlesFastDebt(t *testing.T) {
	n := debt.Acquire()
	defer n.StartCooldown()

	const oldAddr = uintptr(0xaaaa)
	slot, _ := n.ClaimFast(oldAddr)
	require.NotNil(t, slot)

	incs := 0
	debt.PayAll(oldAddr, testCellAddr, func() { incs++ }, func() uintptr {
		t.Fatal("makeReplacement should not be called for a plain fast-slot sweep")
		return 0
	}, func(uintptr) {})

	require.Equal(t, 1, incs)
	require.Equal(t, debt.NoDebt, slot.Load())
}

func TestPayAllIgnoresUnrelatedFastDebt(t *testing.T) {
	n := debt.Acquire()
	defer n.StartCooldown()

	slot, _ := n.ClaimFast(0xbbbb)
	require.NotNil(t, slot)
	defer slot.Pay(0xbbbb)

	incs := 0
	debt.PayAll(0xcccc, testCellAddr, func() { incs++ }, func() uintptr { return 0 }, func(uintptr) {})
	require.Equal(t, 0, incs)
	require.Equal(t, uintptr(0xbbbb), slot.Load())
}

func TestPayAllHelpsMatchingHelpingSlot(t *testing.T) {
	n := debt.Acquire()
	defer n.StartCooldown()

	const gen = uintptr(4) | debt.GenTag
	require.True(t, n.ReserveHelping(gen, testCellAddr))

	var releasedAddrs []uintptr
	debt.PayAll(0xdddd, testCellAddr, func() {}, func() uintptr {
		return 0x5000
	}, func(addr uintptr) {
		releasedAddrs = append(releasedAddrs, addr)
	})

	addr, borrowed := n.ResolveHelping(gen, 0x4444)
	require.False(t, borrowed)
	require.Equal(t, uintptr(0x5000), addr)
	require.Empty(t, releasedAddrs)
}
