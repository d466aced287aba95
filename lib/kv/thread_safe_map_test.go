package kv

import (
	randv2 "math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"testing"

	antsv2 "github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/require"
)

func genStrKeys(strLen, count int) []string {
	src := randv2.New(randv2.NewPCG(uint64(strLen), uint64(count)))
	const letters = "abcdefghijklmnopqrstuvwxyz"
	keys := make([]string, 0, count)
	set := make(map[string]struct{}, count)
	for len(keys) < count {
		var b strings.Builder
		for i := 0; i < strLen; i++ {
			b.WriteByte(letters[src.IntN(len(letters))])
		}
		key := b.String()
		if _, ok := set[key]; ok {
			continue
		}
		set[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

func TestThreadSafeOrderedMap_SimpleCRUD(t *testing.T) {
	keys := genStrKeys(8, 10000)
	_m := NewThreadSafeOrderedMap[string, int](NewOrderedRBMap[string, int]())
	for i, key := range keys {
		require.NoError(t, _m.Put(key, i))
	}

	_keys := _m.ListKeys()
	require.Equal(t, len(keys), len(_keys))
	require.ElementsMatch(t, keys, _keys)
	require.IsNonDecreasing(t, _keys)

	i := 1001
	res, exists := _m.Get(keys[i])
	require.True(t, exists)
	require.Equal(t, i, res)

	require.NoError(t, _m.Delete(keys[i]))
	require.False(t, _m.Contains(keys[i]))
	require.Equal(t, int64(len(keys)-1), _m.Len())
	require.NoError(t, _m.Replace(keys[i], i))

	vals := _m.ListValues(keys[0], "not-exists", keys[i])
	require.Equal(t, []int{0, i}, vals)
	require.Len(t, _m.ListValues(), len(keys))

	aKeys := _m.ListKeys(nil, func(key string) bool {
		return strings.HasPrefix(key, "a")
	}, func(key string) bool {
		return strings.HasPrefix(key, "b")
	})
	for _, key := range aKeys {
		require.True(t, key[0] == 'a' || key[0] == 'b')
	}
	require.IsNonDecreasing(t, aKeys)

	minKey, _, ok := _m.Min()
	require.True(t, ok)
	require.Equal(t, _keys[0], minKey)
	maxKey, _, ok := _m.Max()
	require.True(t, ok)
	require.Equal(t, _keys[len(_keys)-1], maxKey)

	count := 0
	_m.Foreach(func(idx int64, key string, val int) bool {
		count++
		return true
	})
	require.Equal(t, len(keys), count)
	require.Len(t, _m.Values(), len(keys))

	_m.Clear()
	require.Equal(t, int64(0), _m.Len())
	_m.Release()
	require.Error(t, _m.Put("a", 1))
}

func TestThreadSafeOrderedMap_ConcurrentPut(t *testing.T) {
	testcases := []struct {
		name string
		opts []ThreadSafeMapOption[int, int]
	}{
		{"futex", nil},
		{"sync.Mutex", []ThreadSafeMapOption[int, int]{WithThreadSafeMapLocker[int, int](&sync.Mutex{})}},
		{"nil locker", []ThreadSafeMapOption[int, int]{WithThreadSafeMapLocker[int, int](nil), nil}},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			const workers, total = 16, 500
			m := NewThreadSafeOrderedMap[int, int](NewOrderedRBMap[int, int](), tc.opts...)
			p, err := antsv2.NewPool(workers, antsv2.WithPreAlloc(true))
			require.NoError(tt, err)
			defer p.Release()

			var wg sync.WaitGroup
			wg.Add(workers)
			for w := 0; w < workers; w++ {
				base := w * total
				err = p.Submit(func() {
					defer wg.Done()
					for i := 0; i < total; i++ {
						_ = m.Put(base+i, i)
						if i%3 == 0 {
							_ = m.Delete(base + i)
						}
						_, _ = m.Get(base + i/2)
					}
				})
				require.NoError(tt, err)
			}
			wg.Wait()

			expected := workers * (total - (total+2)/3)
			require.Equal(tt, int64(expected), m.Len())
			keys := m.Keys()
			require.Len(tt, keys, expected)
			require.IsIncreasing(tt, keys)
			for _, key := range keys {
				require.NotZero(tt, (key%total)%3, strconv.Itoa(key))
			}
		})
	}
}

func BenchmarkThreadSafeOrderedMap(b *testing.B) {
	keys := genStrKeys(8, 1<<12)
	mod := len(keys) - 1
	m := NewThreadSafeOrderedMap[string, string](NewOrderedRBMap[string, string]())
	for _, k := range keys {
		_ = m.Put(k, k)
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_, _ = m.Get(keys[i&mod])
			i++
		}
	})
	b.ReportAllocs()
}
