package kv

import (
	"github.com/benz9527/rbkit/lib/infra"
	"github.com/benz9527/rbkit/lib/tree"
)

var (
	_ OrderedMap[int, int] = (*rbMap[int, int])(nil)
	_ TreeStater           = (*rbMap[int, int])(nil)
)

type rbMap[K, V any] struct {
	tree tree.RBTree[K, V]
}

func (m *rbMap[K, V]) Len() int64 {
	return m.tree.Len()
}

func (m *rbMap[K, V]) Put(key K, val V) error {
	return m.tree.Insert(key, val)
}

func (m *rbMap[K, V]) Replace(key K, val V) error {
	return m.tree.Replace(key, val)
}

func (m *rbMap[K, V]) Get(key K) (val V, exists bool) {
	return m.tree.Search(key)
}

func (m *rbMap[K, V]) Contains(key K) bool {
	return m.tree.Contains(key)
}

func (m *rbMap[K, V]) Delete(key K) error {
	return m.tree.Remove(key)
}

func (m *rbMap[K, V]) Min() (key K, val V, exists bool) {
	return m.tree.Min()
}

func (m *rbMap[K, V]) Max() (key K, val V, exists bool) {
	return m.tree.Max()
}

func (m *rbMap[K, V]) Foreach(action func(idx int64, key K, val V) bool) {
	if action == nil {
		return
	}
	m.tree.Foreach(func(idx int64, _ tree.RBColor, key K, val V) bool {
		return action(idx, key, val)
	})
}

func (m *rbMap[K, V]) Keys() []K {
	keys := make([]K, 0, m.tree.Len())
	m.tree.Foreach(func(_ int64, _ tree.RBColor, key K, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func (m *rbMap[K, V]) Values() []V {
	vals := make([]V, 0, m.tree.Len())
	m.tree.Foreach(func(_ int64, _ tree.RBColor, _ K, val V) bool {
		vals = append(vals, val)
		return true
	})
	return vals
}

func (m *rbMap[K, V]) BlackHeight() int {
	return tree.BlackHeight[K, V](m.tree)
}

func (m *rbMap[K, V]) Clear() {
	m.tree.Clear()
}

func (m *rbMap[K, V]) Release() {
	m.tree.Release()
}

type MapOption[K, V any] func(opts *mapOpts[K, V])

type mapOpts[K, V any] struct {
	treeOpts []tree.RBTreeOpt[K, V]
}

func WithMapDesc[K, V any]() MapOption[K, V] {
	return func(opts *mapOpts[K, V]) {
		opts.treeOpts = append(opts.treeOpts, tree.WithRBTreeDesc[K, V]())
	}
}

func WithMapKeyDestroyer[K, V any](d infra.Destroyer[K]) MapOption[K, V] {
	return func(opts *mapOpts[K, V]) {
		opts.treeOpts = append(opts.treeOpts, tree.WithRBTreeKeyDestroyer[K, V](d))
	}
}

func WithMapValDestroyer[K, V any](d infra.Destroyer[V]) MapOption[K, V] {
	return func(opts *mapOpts[K, V]) {
		opts.treeOpts = append(opts.treeOpts, tree.WithRBTreeValDestroyer[K, V](d))
	}
}

func WithMapRemoveBorrowSucc[K, V any]() MapOption[K, V] {
	return func(opts *mapOpts[K, V]) {
		opts.treeOpts = append(opts.treeOpts, tree.WithRBTreeRemoveBorrowSucc[K, V]())
	}
}

func applyMapOpts[K, V any](opts ...MapOption[K, V]) []tree.RBTreeOpt[K, V] {
	o := &mapOpts[K, V]{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(o)
	}
	return o.treeOpts
}

func NewRBMap[K, V any](cmp infra.Comparator[K], opts ...MapOption[K, V]) (OrderedMap[K, V], error) {
	t, err := tree.NewRBTree[K, V](cmp, applyMapOpts[K, V](opts...)...)
	if err != nil {
		return nil, err
	}
	return &rbMap[K, V]{tree: t}, nil
}

func NewOrderedRBMap[K infra.OrderedKey, V any](opts ...MapOption[K, V]) OrderedMap[K, V] {
	return &rbMap[K, V]{
		tree: tree.NewOrderedRBTree[K, V](applyMapOpts[K, V](opts...)...),
	}
}
