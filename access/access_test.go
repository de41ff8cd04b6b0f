package access_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolkov/arcswap"
	"github.com/kolkov/arcswap/access"
)

func TestCellSatisfiesAccessorWithNoAdapter(t *testing.T) {
	c := arcswap.New(42)
	var a access.Accessor[int] = c

	g := access.Load(a)
	defer g.Release()
	require.Equal(t, 42, *g.Value())
}

func TestAccessorAcceptsAnythingShapedLikeALoader(t *testing.T) {
	fake := fakeAccessor{cell: arcswap.New("x")}
	g := access.Load[string](fake)
	defer g.Release()
	require.Equal(t, "x", *g.Value())
}

type fakeAccessor struct {
	cell *arcswap.Cell[string]
}

func (f fakeAccessor) Load() arcswap.Guard[string] { return f.cell.Load() }
