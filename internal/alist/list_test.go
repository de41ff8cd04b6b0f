package alist_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolkov/arcswap/internal/alist"
)

func TestInsertAndIterOrder(t *testing.T) {
	var l alist.List[int]
	first := l.Insert(func(v *int) { *v = 1 })
	second := l.Insert(func(v *int) { *v = 2 })

	var seen []int
	l.Iter(func(v *int) bool {
		seen = append(seen, *v)
		return true
	})
	// Most-recently-inserted first.
	require.Equal(t, []int{2, 1}, seen)
	require.Equal(t, 1, *first)
	require.Equal(t, 2, *second)
}

func TestFindStopsEarly(t *testing.T) {
	var l alist.List[int]
	l.Insert(func(v *int) { *v = 10 })
	l.Insert(func(v *int) { *v = 20 })
	l.Insert(func(v *int) { *v = 30 })

	found := l.Find(func(v *int) bool { return *v == 20 })
	require.NotNil(t, found)
	require.Equal(t, 20, *found)

	require.Nil(t, l.Find(func(v *int) bool { return *v == 999 }))
}

func TestConcurrentInsertsAllSurvive(t *testing.T) {
	var l alist.List[int]
	const n = 200

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			l.Insert(func(v *int) { *v = i })
		}()
	}
	wg.Wait()

	seen := make(map[int]bool, n)
	l.Iter(func(v *int) bool {
		seen[*v] = true
		return true
	})
	require.Len(t, seen, n)
}
