package infra

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderedKeyComparator(t *testing.T) {
	intCmp := OrderedKeyComparator[int]()
	assert.Equal(t, int64(-1), intCmp.Compare(1, 2))
	assert.Equal(t, int64(0), intCmp.Compare(2, 2))
	assert.Equal(t, int64(1), intCmp.Compare(3, 2))

	strCmp := OrderedKeyComparator[string]()
	assert.Less(t, strCmp.Compare("abc", "abd"), int64(0))
	assert.Greater(t, strCmp.Compare("b", "abc"), int64(0))
	assert.Equal(t, int64(0), strCmp.Compare("k", "k"))
}

func TestOrderedKeyComparator_NaN(t *testing.T) {
	cmp := OrderedKeyComparator[float64]()
	nan := math.NaN()
	require.Equal(t, int64(0), cmp.Compare(nan, nan))
	require.Equal(t, int64(-1), cmp.Compare(nan, math.Inf(-1)))
	require.Equal(t, int64(1), cmp.Compare(0.5, nan))

	arr := []float64{3.0, nan, -1.0, 2.5}
	sort.Slice(arr, func(i, j int) bool {
		return cmp.Compare(arr[i], arr[j]) < 0
	})
	require.True(t, math.IsNaN(arr[0]))
	require.Equal(t, []float64{-1.0, 2.5, 3.0}, arr[1:])
}

func TestReverseComparator(t *testing.T) {
	cmp := OrderedKeyComparator[uint64]()
	rev := ReverseComparator(cmp)
	assert.Equal(t, int64(1), rev.Compare(1, 2))
	assert.Equal(t, int64(-1), rev.Compare(2, 1))
	assert.Equal(t, int64(0), rev.Compare(2, 2))

	// Double reverse unwraps to the original order.
	again := ReverseComparator(rev)
	assert.Equal(t, int64(-1), again.Compare(1, 2))

	assert.Nil(t, ReverseComparator[int](nil))
}

func TestComparatorFunc(t *testing.T) {
	byLen := ComparatorFunc[string](func(i, j string) int64 {
		return int64(len(i) - len(j))
	})
	assert.Less(t, byLen.Compare("a", "bb"), int64(0))
	assert.Equal(t, int64(0), byLen.Compare("ab", "cd"))
}

func TestDestroyer(t *testing.T) {
	destroyed := make([]string, 0, 2)
	d := DestroyerFunc[string](func(item string) {
		destroyed = append(destroyed, item)
	})
	Destroy[string](d, "a")
	d.Destroy("b")
	require.Equal(t, []string{"a", "b"}, destroyed)

	// nil destroyers are no-op
	Destroy[string](nil, "c")
	var nilFn DestroyerFunc[string]
	nilFn.Destroy("d")
	Destroy[string](nilFn, "e")
	require.Len(t, destroyed, 2)
}

func TestSameRef(t *testing.T) {
	a, b := new(int), new(int)
	m := map[string]int{}
	sl := make([]int, 4)
	ch := make(chan int)
	testcases := []struct {
		name string
		same bool
		fn   func() bool
	}{
		{"same pointer", true, func() bool { return SameRef(a, a) }},
		{"other pointer", false, func() bool { return SameRef(a, b) }},
		{"nil pointer", false, func() bool { return SameRef[*int](nil, nil) }},
		{"same map", true, func() bool { return SameRef(m, m) }},
		{"same slice", true, func() bool { return SameRef(sl, sl) }},
		{"sub slice", false, func() bool { return SameRef(sl, sl[:2]) }},
		{"same chan", true, func() bool { return SameRef(ch, ch) }},
		{"equal ints", false, func() bool { return SameRef(1, 1) }},
		{"equal strings", false, func() bool { return SameRef("k", "k") }},
		{"boxed same pointer", true, func() bool { return SameRef[any](a, a) }},
		{"boxed other types", false, func() bool { return SameRef[any](a, m) }},
		{"boxed nil", false, func() bool { return SameRef[any](nil, a) }},
		{"boxed ints", false, func() bool { return SameRef[any](1, 1) }},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			require.Equal(tt, tc.same, tc.fn())
		})
	}
}
