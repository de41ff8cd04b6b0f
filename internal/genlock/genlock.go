// Package genlock implements the generation-lock fallback: an
// alternative to the debt/helping path that a Storage option can select
// in place of it. Two generation buckets are counted per
// shard; a writer waits until whichever bucket readers have moved away
// from drains to zero before completing a reclamation, using double
// buffering so a continuous stream of readers can never starve it.
//
// Grounded directly on original_source/src/gen_lock.rs. Shard counters
// use go.uber.org/atomic (as petenewcomb-psg-go's otpsg companion module
// does throughout its own counters) rather than sync/atomic's typed
// atomics, purely for the more ergonomic Int64 API - both give the same
// ordering guarantees here.
package genlock

import (
	"runtime"
	"sync"

	"go.uber.org/atomic"

	"github.com/kolkov/arcswap/internal/swaplog"
	"github.com/kolkov/arcswap/internal/tlocal"
)

// GenCnt is the number of generation buckets. Matches the original's
// GEN_CNT: double buffering needs exactly two.
const GenCnt = 2

// ShardCnt is the default number of shards in Global's storage, trading
// memory for reduced contention between unrelated goroutines.
const ShardCnt = 9

// yieldEvery bounds how many busy-spin iterations WaitForReaders does
// before yielding the scheduler - matches the original's YIELD_EVERY.
const yieldEvery = 16

// maxGuards is the overflow guard on a single shard/generation counter,
// borrowed from the same trick std::sync::Arc uses: an absurdly large
// live-guard count almost certainly means a bug (a Guard that never
// released), not legitimate concurrency.
const maxGuards = int64(1<<62) - 1

// Shard is one pair of reader counters, one per generation bucket.
type Shard struct {
	counts [GenCnt]atomic.Int64
	_      [48]byte // pad towards a 64-byte cache line, as the original's #[repr(align(64))] does
}

func (s *Shard) snapshot() [GenCnt]int64 {
	var out [GenCnt]int64
	for i := range out {
		out[i] = s.counts[i].Load()
	}
	return out
}

// Storage abstracts where a generation lock's counters live: shared
// globally (Global) or embedded in a single Cell (PrivateUnsharded).
// Grounded on the original's unsafe trait LockStorage: Go has no unsafe
// trait equivalent, so the "don't mess with the values, it's a dumb
// storage" contract is just a doc comment here instead of a compiler
// guarantee.
type Storage interface {
	GenIdx() *atomic.Int64
	Shards() []*Shard
	ChooseShard() int
}

// Global is the default, process-wide lock storage: every Cell using it
// shares one set of counters, so it allocates nothing per Cell, at the
// cost of a lock on one Cell being visible to unrelated ones sharing the
// same shard.
type Global struct{}

var (
	globalGenIdx atomic.Int64
	globalShards = make([]*Shard, ShardCnt)

	shardAssignment sync.Map // int64 goroutine id -> int shard index
	nextShard       atomic.Int64
)

func init() {
	for i := range globalShards {
		globalShards[i] = &Shard{}
	}
}

func (Global) GenIdx() *atomic.Int64 { return &globalGenIdx }
func (Global) Shards() []*Shard      { return globalShards }

func (Global) ChooseShard() int {
	return chooseShard(&shardAssignment, &nextShard, ShardCnt)
}

func chooseShard(assignment *sync.Map, counter *atomic.Int64, shardCnt int) int {
	gid := tlocal.GoroutineID()
	if v, ok := assignment.Load(gid); ok {
		return v.(int)
	}
	idx := int(counter.Inc()-1) % shardCnt
	actual, _ := assignment.LoadOrStore(gid, idx)
	return actual.(int)
}

// PrivateUnsharded stores its single shard inline so a Cell given its own
// PrivateUnsharded pays no cross-Cell contention, at the cost of one
// extra allocation per such Cell and no sharding internally. The Cell
// refers to it through a pointer.
type PrivateUnsharded struct {
	genIdx atomic.Int64
	shard  Shard
}

func (s *PrivateUnsharded) GenIdx() *atomic.Int64 { return &s.genIdx }
func (s *PrivateUnsharded) Shards() []*Shard       { return []*Shard{&s.shard} }
func (s *PrivateUnsharded) ChooseShard() int        { return 0 }

// WaitForReaders blocks until every reader that observed the
// currently-active generation bucket has released its guard, advancing
// the generation as soon as the next bucket is confirmed empty. Grounded
// on the original's wait_for_readers.
func WaitForReaders(storage Storage) {
	var seenGroup [GenCnt]bool
	iter := 0
	genIdx := storage.GenIdx()
	shards := storage.Shards()

	for {
		gen := genIdx.Load()
		var groups [GenCnt]int64
		for _, sh := range shards {
			snap := sh.snapshot()
			for i := range groups {
				groups[i] += snap[i]
			}
		}
		nextGen := gen + 1
		if groups[nextGen%GenCnt] == 0 {
			genIdx.CompareAndSwap(gen, nextGen)
		}
		for i := range seenGroup {
			seenGroup[i] = seenGroup[i] || groups[i] == 0
		}

		done := true
		for _, seen := range seenGroup {
			done = done && seen
		}
		if done {
			return
		}

		iter++
		if iter%yieldEvery == 0 {
			runtime.Gosched()
		}
	}
}

// Guard is an RAII-style reader reservation; Release must be called
// exactly once, typically via defer.
type Guard struct {
	counter *atomic.Int64
}

// Lock registers a new reader against storage's currently-active
// generation bucket and returns a Guard to release it. Overflowing
// maxGuards live guards on a single counter means a Guard leaked
// somewhere and is treated as fatal, mirroring the original's
// process::abort().
func Lock(storage Storage) Guard {
	shard := storage.Shards()[storage.ChooseShard()]
	gen := storage.GenIdx().Load() % GenCnt
	counter := &shard.counts[gen]
	old := counter.Inc() - 1
	if old > maxGuards {
		swaplog.L().Fatal("genlock: guard counter overflow, a Guard was never released")
	}
	return Guard{counter: counter}
}

// Release drops the reservation this guard holds.
func (g Guard) Release() {
	g.counter.Dec()
}
