package kv

// OrderedMap keeps the key-val pairs sorted by the key comparator.
// Not thread safe, wraps it by NewThreadSafeOrderedMap for concurrent access.
type OrderedMap[K, V any] interface {
	Len() int64
	// Put inserts or updates the val. If the key exists, the stored key is
	// kept and the passed in key is destroyed.
	Put(key K, val V) error
	// Replace inserts or replaces both the stored key and val.
	Replace(key K, val V) error
	Get(key K) (val V, exists bool)
	Contains(key K) bool
	// Delete is no-op if the key is absent.
	Delete(key K) error
	Min() (key K, val V, exists bool)
	Max() (key K, val V, exists bool)
	// Foreach visits in order until the action returns false.
	Foreach(action func(idx int64, key K, val V) bool)
	Keys() []K
	Values() []V
	Clear()
	Release()
}

// OrderedSet keeps the unique keys sorted by the key comparator.
type OrderedSet[K any] interface {
	Len() int64
	// Add keeps the stored key if it exists and destroys the passed in one.
	Add(key K) error
	// Replace destroys the stored key and keeps the passed in one.
	Replace(key K) error
	Contains(key K) bool
	Remove(key K) error
	Min() (key K, exists bool)
	Max() (key K, exists bool)
	Foreach(action func(idx int64, key K) bool)
	Keys() []K
	Clear()
	Release()
}

// TreeStater exposes the shape of the backing rbtree for the stats.
type TreeStater interface {
	Len() int64
	BlackHeight() int
}

type KeyFilterFunc[K any] func(key K) bool

// ThreadSafeOrderedMap serializes every call by a single lock.
// The Foreach action runs with the lock held, it must not call back
// into the same map.
type ThreadSafeOrderedMap[K, V any] interface {
	OrderedMap[K, V]
	ListKeys(filters ...KeyFilterFunc[K]) []K
	ListValues(keys ...K) []V
	// BlackHeight is 0 if the items are not backed by a rbtree.
	BlackHeight() int
}
