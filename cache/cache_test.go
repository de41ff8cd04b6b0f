package cache_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolkov/arcswap"
	"github.com/kolkov/arcswap/cache"
)

func TestCachedValueRevalidatesOnlyAfterAStore(t *testing.T) {
	c := arcswap.New(42)
	c1 := cache.New(c)
	defer c1.Close()
	c2 := cache.New(c)
	defer c2.Close()

	require.Equal(t, 42, *c1.Load())
	require.Equal(t, 42, *c2.Load())

	c.Store(43)
	require.Equal(t, 42, *c1.LoadNoRevalidate())
	require.Equal(t, 43, *c1.Load())
}

func TestCacheKeepsTheCellAliveThroughARawPointer(t *testing.T) {
	cell := arcswap.New(1)
	c := cache.New(cell)
	require.Same(t, cell, c.Cell())
	c.Close()
}

func TestCacheOverAnEmptyCell(t *testing.T) {
	cell := arcswap.NewEmpty[int]()
	c := cache.New(cell)
	defer c.Close()

	require.Nil(t, c.Load())
	cell.Store(7)
	require.Equal(t, 7, *c.Load())
}
