package arcswap

import "github.com/kolkov/arcswap/internal/refcnt"

// Strong is an owned, reference-counted handle that can safely outlive
// the Cell it came from. Obtained from LoadFull, Swap, or by calling Own
// on a Guard (see guard.go).
//
// The zero Strong is valid and represents the nullable variant's absent
// state (IsNull reports true, Release is a no-op) - the same state a
// Cell constructed with NewEmpty starts in.
type Strong[T any] struct {
	box *refcnt.Box[T]
}

func newStrong[T any](box *refcnt.Box[T]) Strong[T] {
	return Strong[T]{box: box}
}

// Value returns the guarded value, or nil if this Strong holds the
// nullable variant's absent state.
func (s Strong[T]) Value() *T {
	if s.box == nil {
		return nil
	}
	return s.box.Value()
}

// IsNull reports whether this Strong holds the nullable variant's absent
// state.
func (s Strong[T]) IsNull() bool { return s.box == nil }

// Clone increments the reference count and returns an independent
// Strong referring to the same value.
func (s Strong[T]) Clone() Strong[T] {
	s.box.Inc()
	return s
}

// Release decrements the reference count. Every Strong obtained from a
// Cell (directly or via Clone) must eventually be released exactly
// once.
func (s Strong[T]) Release() {
	if s.box != nil {
		s.box.Dec()
	}
}

// Unwrap exposes the refcnt.Box backing this Strong, for the
// collaborator packages built directly on internal/refcnt (cache, weak)
// rather than going back through Cell's debt/genlock machinery.
// Ordinary callers have no use for it. Returns nil for the nullable
// variant's absent state.
func (s Strong[T]) Unwrap() *refcnt.Box[T] { return s.box }

// WrapBox is the inverse of Unwrap: it adopts an existing refcnt.Box -
// assumed to already carry one accounted-for strong count - into a
// Strong. Used by the weak package's Upgrade.
func WrapBox[T any](b *refcnt.Box[T]) Strong[T] { return Strong[T]{box: b} }
