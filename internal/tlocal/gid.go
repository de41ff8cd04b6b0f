// Package tlocal gives every goroutine a private, lazily-claimed handle
// onto the process-wide debt-node list.
//
// Go has neither a stable OS-thread affinity (goroutines migrate between
// Ms) nor a goroutine-exit hook, so this cannot be a literal port of
// Rust's thread_local! with its destructor-driven cleanup. Instead a
// goroutine is identified by its runtime goroutine id, keyed into a
// shared map, with an explicit Release for callers that want to give a
// node back before they exit - the same tradeoff a race-detector's own
// per-goroutine context map documents ("no GoEnd() hook, contexts are
// never freed").
//
// Grounded on internal/race/api/goid_generic.go and goid_fallback.go: the
// runtime.Stack-parsing method, not the version-pinned assembly fast
// path (see DESIGN.md for why the assembly offsets were not carried
// over).
package tlocal

import "runtime"

// GoroutineID is the exported form of goroutineID, reused by
// internal/genlock to cache a per-goroutine shard choice the same way
// Current caches a per-goroutine debt node.
func GoroutineID() int64 { return goroutineID() }

// goroutineID returns the current goroutine's runtime id by parsing the
// first line of its own stack trace: the slow, universally portable
// method, run on every call (Current, in handle.go, does not cache the
// id itself - only the *Local the id keys into). Go exposes no cheaper
// portable primitive for this; internal/race/api's own fallback takes
// the identical approach for the identical reason and documents the same
// per-call cost (~1500ns, dominated by runtime.Stack's allocation) rather
// than caching across calls - the version-pinned assembly fast path that
// would avoid it was deliberately not carried over here (see DESIGN.md).
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parseGID(buf[:n])
}

// parseGID extracts the numeric id from a "goroutine 123 [running]:..."
// stack trace prefix, returning 0 if the format doesn't match.
func parseGID(buf []byte) int64 {
	const prefix = "goroutine "
	if len(buf) < len(prefix) || string(buf[:len(prefix)]) != prefix {
		return 0
	}
	var gid int64
	for i := len(prefix); i < len(buf); i++ {
		c := buf[i]
		if c < '0' || c > '9' {
			break
		}
		gid = gid*10 + int64(c-'0')
	}
	return gid
}
