// Package access provides a minimal abstraction over "a thing I can
// Load from", so generic code can depend on that capability instead of
// a concrete *arcswap.Cell[T].
//
// Grounded on original_source/src/access.rs's Access/DynAccess pair: an
// ergonomic wrapper over the core load operation. Rust draws a further
// distinction between
// Access (a generic trait bound, monomorphized per caller) and
// DynAccess (a boxed trait object, dynamically dispatched) because those
// are two different mechanisms in Rust. An interface value in Go is
// already dynamically dispatched, so one interface plays both roles
// here; there is no Go counterpart to DynAccess/DynGuard to port.
package access

import "github.com/kolkov/arcswap"

// Accessor is satisfied by anything that can produce a Guard onto a T -
// in practice, *arcswap.Cell[T]. Code that only needs to read a value,
// never replace it, should accept an Accessor[T] rather than a
// *arcswap.Cell[T].
type Accessor[T any] interface {
	Load() arcswap.Guard[T]
}

// Load is a free function so call sites read naturally; *arcswap.Cell[T]
// already satisfies Accessor[T] with no adapter required.
func Load[T any](a Accessor[T]) arcswap.Guard[T] {
	return a.Load()
}
