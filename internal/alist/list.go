// Package alist implements a lock-free, append-only singly linked list.
//
// It never shrinks and never unlinks a node once published: the intended
// usage is a process-wide registry of long-lived, 'static-in-spirit
// data. Entries are handed out as stable pointers that stay valid for
// the remainder of the process.
package alist

import (
	"sync/atomic"
)

// node is one link in the chain. next never changes after the node is
// published, so it is read as a plain field - only the head pointer needs
// atomic access.
type node[T any] struct {
	next *node[T]
	data T
}

// List is a lock-free, add-only linked list of T. The zero value is an
// empty, ready-to-use list.
//
// Grounded directly on original_source/src/debt/atomic_list.rs: the
// original uses SeqCst for every operation on the grounds that "this will
// be used rarely (start of new thread), not worth the effort of proving
// anything else". Go's sync/atomic doesn't expose anything weaker than
// that for CompareAndSwap/Load on a pointer anyway, so the translation is
// direct.
type List[T any] struct {
	head atomic.Pointer[node[T]]
}

// Insert allocates a new zero-valued node and runs init on it in place
// before publishing, then prepends it to the list via a CAS retry loop,
// returning a stable pointer to the embedded data that remains valid for
// the life of the process.
//
// init receives a pointer rather than Insert taking T by value because T
// here is typically a struct embedding sync/atomic values: copying one
// (even an as-yet-unpublished, not-concurrently-used one) is the kind of
// thing `go vet`'s copylocks check rightly complains about, and the
// original Rust code has the same shape (Node::default() followed by
// in-place field stores, never a struct copy).
func (l *List[T]) Insert(init func(*T)) *T {
	n := &node[T]{}
	if init != nil {
		init(&n.data)
	}
	head := l.head.Load()
	for {
		n.next = head
		if l.head.CompareAndSwap(head, n) {
			return &n.data
		}
		head = l.head.Load()
	}
}

// Iter calls f for every element currently reachable from the head, in
// newest-to-oldest (most-recently-inserted-first) order, stopping early if
// f returns false. It is a snapshot of the list as of the initial head
// load: nodes appended concurrently by another goroutine during the walk
// may or may not be observed, but nodes already linked are never missed,
// since the list only ever grows and never unlinks.
func (l *List[T]) Iter(f func(*T) bool) {
	for n := l.head.Load(); n != nil; n = n.next {
		if !f(&n.data) {
			return
		}
	}
}

// Find returns the first element for which f returns true, or nil.
func (l *List[T]) Find(f func(*T) bool) *T {
	var found *T
	l.Iter(func(t *T) bool {
		if f(t) {
			found = t
			return false
		}
		return true
	})
	return found
}
