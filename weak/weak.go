// Package weak provides a non-owning observer of a value that was, at
// some point, held by a Strong: holding one does not keep the referent
// alive, and Upgrade reports failure once its last strong owner has
// released it.
//
// Grounded on original_source/src/weak.rs's Weak<T> RefCnt adapter, a
// weak-reference variant built outside the core reclamation path. The
// original hand-rolls weak-count
// bookkeeping because Rust's Arc has no garbage collector to ask;
// Go does, so this is built on Go 1.24's weak.Pointer instead of a
// second, hand-rolled count racing against the one the GC already
// tracks precisely. A Box[T] stored as a Cell's own T (e.g.
// arcswap.New[weak.Box[Thing]](...)) reproduces the original's
// ArcSwapWeak - storing a weak reference inside a Cell needs no special
// integration beyond Cell already being generic.
package weak

import (
	stdweak "weak"

	"github.com/kolkov/arcswap"
	"github.com/kolkov/arcswap/internal/refcnt"
)

// Box is a non-owning observer onto a refcnt.Box. The zero Box is
// valid and always fails to Upgrade, mirroring Weak::new() in the
// original.
type Box[T any] struct {
	ptr stdweak.Pointer[refcnt.Box[T]]
}

// Downgrade captures a non-owning observer of s's current referent. It
// does not consume or release s.
func Downgrade[T any](s arcswap.Strong[T]) Box[T] {
	b := s.Unwrap()
	if b == nil {
		return Box[T]{}
	}
	return Box[T]{ptr: stdweak.Make(b)}
}

// Upgrade attempts to recover a Strong reference to w's referent. It
// fails (ok is false) once the referent's logical strong count has
// already reached zero - whether or not the garbage collector has
// since reclaimed the backing memory - mirroring
// std::sync::Weak::upgrade's refusal to revive a dropped Arc.
func (w Box[T]) Upgrade() (s arcswap.Strong[T], ok bool) {
	b := w.ptr.Value()
	if b == nil || !b.IncIfAlive() {
		return arcswap.Strong[T]{}, false
	}
	return arcswap.WrapBox(b), true
}

// IsNull reports whether w currently observes nothing - either because
// it was downgraded from a null Strong, or because the garbage
// collector has already reclaimed the referent.
func (w Box[T]) IsNull() bool {
	return w.ptr.Value() == nil
}
