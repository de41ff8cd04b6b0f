// Package cache provides a memoizing "cached view" over a Cell: a
// caller that reloads far more often than the Cell actually changes can
// skip the reclamation-path Load and instead revalidate with a single
// cheap address comparison.
//
// Grounded on original_source/src/cache.rs's Cache<A, T>: a "cached
// view" convenience wrapper that memoizes a load and invalidates it by
// raw-pointer comparison, built entirely on Cell's public surface
// rather than reaching into internal/reclaim itself.
package cache

import (
	"github.com/kolkov/arcswap"
	"github.com/kolkov/arcswap/internal/refcnt"
)

// Cache holds the last Strong loaded from a Cell, plus the Cell it came
// from. The zero Cache is not valid; construct one with New.
type Cache[T any] struct {
	cell   *arcswap.Cell[T]
	cached arcswap.Strong[T]
}

// New creates a Cache pinned to cell, performing one Load immediately.
func New[T any](cell *arcswap.Cell[T]) *Cache[T] {
	return &Cache[T]{cell: cell, cached: cell.LoadFull()}
}

// Cell returns the Cache's underlying Cell.
func (c *Cache[T]) Cell() *arcswap.Cell[T] { return c.cell }

// Load revalidates against the Cell and returns the (possibly
// refreshed) cached value.
func (c *Cache[T]) Load() *T {
	c.Revalidate()
	return c.LoadNoRevalidate()
}

// LoadNoRevalidate returns the cached value without checking whether the
// Cell has moved on since the last revalidation.
func (c *Cache[T]) LoadNoRevalidate() *T {
	return c.cached.Value()
}

// Revalidate re-Loads from the Cell iff the Cell's current value differs,
// by address, from what is cached. The common case - nothing changed -
// costs one atomic load and a pointer comparison, no reclamation-path
// traffic at all.
func (c *Cache[T]) Revalidate() {
	if c.cell.RawAddr() == refcnt.Addr(c.cached.Unwrap()) {
		return
	}
	c.cached.Release()
	c.cached = c.cell.LoadFull()
}

// Close releases the cached strong reference. Call when done with the
// Cache; using it afterward is a use-after-close bug, same as using a
// released Strong directly.
func (c *Cache[T]) Close() {
	c.cached.Release()
}
