package arcswap

import "github.com/kolkov/arcswap/internal/reclaim"

// Guard is the handle returned by Load: a wait-free, borrowed view of
// whatever the Cell held at some instant between the call and the
// return. It must be released with Release when the caller is done
// dereferencing it. Each unreleased guard can occupy a debt slot of the
// calling goroutine's node; once a goroutine holds more guards than its
// fast slots can track, its further loads take the helping path, a
// performance concern rather than a correctness one.
type Guard[T any] struct {
	protected reclaim.Protected[T]
}

// Value derefs the guard. Returns nil for the nullable variant's absent
// state.
func (g Guard[T]) Value() *T { return g.protected.Value() }

// IsNull reports the nullable variant's absent state.
func (g Guard[T]) IsNull() bool { return g.protected.IsNull() }

// Release settles the debt (if any) this guard represents. Must be
// called exactly once.
func (g Guard[T]) Release() { g.protected.Release() }

// Own upgrades the guard into a Strong reference that can outlive the
// Cell it was loaded from, consuming the guard (callers must not call
// Release after Own).
func (g Guard[T]) Own() Strong[T] {
	return newStrong(g.protected.ToOwned())
}
