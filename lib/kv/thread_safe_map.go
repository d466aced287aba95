package kv

import (
	"sync"

	"github.com/samber/lo"

	"github.com/benz9527/rbkit/lib/lock"
)

var (
	_ ThreadSafeOrderedMap[int, int] = (*threadSafeOrderedMap[int, int])(nil)
	_ TreeStater                     = (*threadSafeOrderedMap[int, int])(nil)
)

type threadSafeOrderedMap[K, V any] struct {
	lock  sync.Locker
	items OrderedMap[K, V]
}

func (t *threadSafeOrderedMap[K, V]) Len() int64 {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.items.Len()
}

func (t *threadSafeOrderedMap[K, V]) Put(key K, val V) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.items.Put(key, val)
}

func (t *threadSafeOrderedMap[K, V]) Replace(key K, val V) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.items.Replace(key, val)
}

func (t *threadSafeOrderedMap[K, V]) Get(key K) (val V, exists bool) {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.items.Get(key)
}

func (t *threadSafeOrderedMap[K, V]) Contains(key K) bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.items.Contains(key)
}

func (t *threadSafeOrderedMap[K, V]) Delete(key K) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.items.Delete(key)
}

func (t *threadSafeOrderedMap[K, V]) Min() (key K, val V, exists bool) {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.items.Min()
}

func (t *threadSafeOrderedMap[K, V]) Max() (key K, val V, exists bool) {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.items.Max()
}

func (t *threadSafeOrderedMap[K, V]) Foreach(action func(idx int64, key K, val V) bool) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.items.Foreach(action)
}

func (t *threadSafeOrderedMap[K, V]) Keys() []K {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.items.Keys()
}

func (t *threadSafeOrderedMap[K, V]) Values() []V {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.items.Values()
}

// BlackHeight returns 0 if the items are not backed by a rbtree.
func (t *threadSafeOrderedMap[K, V]) BlackHeight() int {
	t.lock.Lock()
	defer t.lock.Unlock()
	if stater, ok := t.items.(TreeStater); ok {
		return stater.BlackHeight()
	}
	return 0
}

// ListKeys returns the ordered keys matched by any of the filters.
// All keys are returned if there is no filter.
func (t *threadSafeOrderedMap[K, V]) ListKeys(filters ...KeyFilterFunc[K]) []K {
	realFilters := lo.Filter(filters, func(filter KeyFilterFunc[K], _ int) bool {
		return filter != nil
	})

	keys := t.Keys()
	if len(realFilters) == 0 {
		return keys
	}
	return lo.Filter(keys, func(key K, _ int) bool {
		return lo.SomeBy(realFilters, func(filter KeyFilterFunc[K]) bool {
			return filter(key)
		})
	})
}

// ListValues returns the values of the present keys in the passed in order.
// All values are returned in key order if there is no key.
func (t *threadSafeOrderedMap[K, V]) ListValues(keys ...K) []V {
	if len(keys) == 0 {
		return t.Values()
	}

	t.lock.Lock()
	defer t.lock.Unlock()
	return lo.FilterMap(keys, func(key K, _ int) (V, bool) {
		return t.items.Get(key)
	})
}

func (t *threadSafeOrderedMap[K, V]) Clear() {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.items.Clear()
}

func (t *threadSafeOrderedMap[K, V]) Release() {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.items.Release()
}

type ThreadSafeMapOption[K, V any] func(m *threadSafeOrderedMap[K, V])

// WithThreadSafeMapLocker replaces the default futex mutex.
func WithThreadSafeMapLocker[K, V any](locker sync.Locker) ThreadSafeMapOption[K, V] {
	return func(m *threadSafeOrderedMap[K, V]) {
		if locker != nil {
			m.lock = locker
		}
	}
}

// NewThreadSafeOrderedMap takes the ownership of the items, do not access
// it directly afterwards.
func NewThreadSafeOrderedMap[K, V any](items OrderedMap[K, V], opts ...ThreadSafeMapOption[K, V]) ThreadSafeOrderedMap[K, V] {
	m := &threadSafeOrderedMap[K, V]{
		lock:  &lock.FutexMutex{},
		items: items,
	}
	for _, o := range opts {
		if o == nil {
			continue
		}
		o(m)
	}
	return m
}
