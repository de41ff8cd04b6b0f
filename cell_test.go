package arcswap_test

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/kolkov/arcswap"
)

func TestStoreThenLoadFullRoundTrips(t *testing.T) {
	c := arcswap.New("x")
	c.Store("y")

	full := c.LoadFull()
	defer full.Release()
	require.Equal(t, "y", *full.Value())
}

func TestSwapReturnsThePreviousValue(t *testing.T) {
	c := arcswap.New(1)
	previous := c.Swap(2)
	defer previous.Release()

	require.Equal(t, 1, *previous.Value())
	g := c.Load()
	defer g.Release()
	require.Equal(t, 2, *g.Value())
}

func TestEmptyCellLoadYieldsAnAbsentHandle(t *testing.T) {
	c := arcswap.NewEmpty[string]()
	g := c.Load()
	defer g.Release()
	require.True(t, g.IsNull())
	require.Nil(t, g.Value())
}

func TestCompareAndSwapOnTheNullVariantSucceedsOnlyWhenCurrentlyNull(t *testing.T) {
	c := arcswap.NewEmpty[string]()
	absent := c.LoadFull()
	defer absent.Release()

	observed, swapped := c.CompareAndSwap(absent, "x")
	require.True(t, swapped)
	require.True(t, observed.IsNull())
	observed.Release()

	stillAbsent := arcswap.Strong[string]{}
	observedAgain, swappedAgain := c.CompareAndSwap(stillAbsent, "y")
	require.False(t, swappedAgain)
	observedAgain.Release()
}

// Two-thread publish. Thread A sets the cell to
// "new"; thread B spins on LoadFull until it observes "new". The final
// ref-count of "new" is 2 (cell + B's handle), dropping to 1 once B
// releases.
func TestTwoThreadPublish(t *testing.T) {
	c := arcswap.New("old")

	var observed atomic.Pointer[arcswap.Strong[string]]
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		c.Store("new")
	}()
	go func() {
		defer wg.Done()
		for {
			full := c.LoadFull()
			if *full.Value() == "new" {
				observed.Store(&full)
				return
			}
			full.Release()
		}
	}()
	wg.Wait()

	got := observed.Load()
	require.Equal(t, "new", *got.Value())
	got.Release()
}

// Multi-writer monotonicity. Five writers each
// publish an increasing sequence tagged with their own identity; any
// reader that observes two values from the same writer must see them in
// non-decreasing sequence order.
func TestMultiWriterMonotonicity(t *testing.T) {
	type tagged struct {
		writer int
		seq    int
	}

	c := arcswap.New(tagged{})
	const writers = 5
	const readers = 8
	const perWriter = 50
	const outerIterations = 100

	var writerWg sync.WaitGroup
	writerWg.Add(writers)
	for w := 0; w < writers; w++ {
		w := w
		go func() {
			defer writerWg.Done()
			for iter := 0; iter < outerIterations; iter++ {
				for s := 1; s <= perWriter; s++ {
					c.Store(tagged{writer: w, seq: s})
				}
			}
		}()
	}

	stop := make(chan struct{})
	var mismatches atomic.Int32
	var readerWg sync.WaitGroup
	readerWg.Add(readers)
	for r := 0; r < readers; r++ {
		go func() {
			defer readerWg.Done()
			lastSeen := make(map[int]int, writers)
			for {
				select {
				case <-stop:
					return
				default:
				}
				full := c.LoadFull()
				v := *full.Value()
				full.Release()
				if prev, ok := lastSeen[v.writer]; ok && v.seq < prev {
					mismatches.Add(1)
				}
				lastSeen[v.writer] = v.seq
			}
		}()
	}

	writerWg.Wait()
	close(stop)
	readerWg.Wait()

	require.Zero(t, mismatches.Load())
}

// CAS ref-count ledger. Repeated CAS attempts,
// some failing because the expected value has moved on; the accounting
// of Inc/Dec across successes and failures must balance to exactly one
// outstanding owner at the end.
func TestCompareAndSwapRefCountLedger(t *testing.T) {
	c := arcswap.New(0)
	const iterations = 500

	current := c.LoadFull()
	successes := 0
	for i := 0; i < iterations; i++ {
		next := *current.Value() + 1
		observed, swapped := c.CompareAndSwap(current, next)
		current.Release()
		current = observed
		if swapped {
			successes++
		}
	}
	defer current.Release()

	// A successful CAS hands back the value it replaced, so the attempt
	// after each success fails and picks up the installed value.
	require.Equal(t, iterations/2, successes)
	require.Equal(t, iterations/2, *current.Value())
}

// Saturation. Hold 32 simultaneous protected
// handles on one goroutine (the fast-slot array is 6 wide), confirm
// every handle still dereferences correctly, and that the value still
// loads correctly once all of them are released.
func TestSaturationWithThirtyTwoHandles(t *testing.T) {
	c := arcswap.New("payload")
	const handles = 32

	guards := make([]arcswap.Guard[string], 0, handles)
	for i := 0; i < handles; i++ {
		guards = append(guards, c.Load())
	}
	for _, g := range guards {
		require.Equal(t, "payload", *g.Value())
	}
	for _, g := range guards {
		g.Release()
	}

	full := c.LoadFull()
	defer full.Release()
	require.Equal(t, "payload", *full.Value())
}

// RCU increment under contention. 10 goroutines
// each run rcu(v => v+1) 500 times; the final value must be exactly
// 5000, with no lost updates.
func TestRCUIncrementUnderContention(t *testing.T) {
	c := arcswap.New(0)
	const goroutines = 10
	const perGoroutine = 500

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				result, _ := c.RCU(func(v int) int { return v + 1 })
				result.Release()
			}
		}()
	}
	wg.Wait()

	full := c.LoadFull()
	defer full.Release()
	require.Equal(t, goroutines*perGoroutine, *full.Value())
}

func TestRCUModelMatchesASequentialReference(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := arcswap.New(0)
		model := 0

		ops := rapid.IntRange(1, 40).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			delta := rapid.IntRange(-5, 5).Draw(t, "delta")
			result, _ := c.RCU(func(v int) int { return v + delta })
			model += delta
			require.Equal(t, model, *result.Value())
			result.Release()
		}

		full := c.LoadFull()
		defer full.Release()
		require.Equal(t, model, *full.Value())
	})
}

func TestConcurrentLoadStoreSwapNeverPanics(t *testing.T) {
	c := arcswap.New(0)
	var wg sync.WaitGroup
	const goroutines = 16
	const iterations = 300
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		i := i
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				switch j % 3 {
				case 0:
					g := c.Load()
					_ = g.Value()
					g.Release()
				case 1:
					c.Store(i*iterations + j)
				default:
					old := c.Swap(i*iterations + j)
					old.Release()
				}
			}
		}()
	}
	wg.Wait()
}

func ExampleCell() {
	c := arcswap.New("hello")

	g := c.Load()
	fmt.Println(*g.Value())
	g.Release()

	c.Store("world")
	full := c.LoadFull()
	fmt.Println(*full.Value())
	full.Release()

	// Output:
	// hello
	// world
}
