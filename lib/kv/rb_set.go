package kv

import (
	"github.com/benz9527/rbkit/lib/infra"
	"github.com/benz9527/rbkit/lib/tree"
)

var (
	_ OrderedSet[int] = (*rbSet[int])(nil)
	_ TreeStater      = (*rbSet[int])(nil)
)

// The set variant stores no val, the empty struct takes no space.
type rbSet[K any] struct {
	tree tree.RBTree[K, struct{}]
}

func (s *rbSet[K]) Len() int64 {
	return s.tree.Len()
}

func (s *rbSet[K]) Add(key K) error {
	return s.tree.Insert(key, struct{}{})
}

func (s *rbSet[K]) Replace(key K) error {
	return s.tree.Replace(key, struct{}{})
}

func (s *rbSet[K]) Contains(key K) bool {
	return s.tree.Contains(key)
}

func (s *rbSet[K]) Remove(key K) error {
	return s.tree.Remove(key)
}

func (s *rbSet[K]) Min() (key K, exists bool) {
	key, _, exists = s.tree.Min()
	return
}

func (s *rbSet[K]) Max() (key K, exists bool) {
	key, _, exists = s.tree.Max()
	return
}

func (s *rbSet[K]) Foreach(action func(idx int64, key K) bool) {
	if action == nil {
		return
	}
	s.tree.Foreach(func(idx int64, _ tree.RBColor, key K, _ struct{}) bool {
		return action(idx, key)
	})
}

func (s *rbSet[K]) Keys() []K {
	keys := make([]K, 0, s.tree.Len())
	s.tree.Foreach(func(_ int64, _ tree.RBColor, key K, _ struct{}) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func (s *rbSet[K]) BlackHeight() int {
	return tree.BlackHeight[K, struct{}](s.tree)
}

func (s *rbSet[K]) Clear() {
	s.tree.Clear()
}

func (s *rbSet[K]) Release() {
	s.tree.Release()
}

type SetOption[K any] func(opts *setOpts[K])

type setOpts[K any] struct {
	treeOpts []tree.RBTreeOpt[K, struct{}]
}

func WithSetDesc[K any]() SetOption[K] {
	return func(opts *setOpts[K]) {
		opts.treeOpts = append(opts.treeOpts, tree.WithRBTreeDesc[K, struct{}]())
	}
}

func WithSetKeyDestroyer[K any](d infra.Destroyer[K]) SetOption[K] {
	return func(opts *setOpts[K]) {
		opts.treeOpts = append(opts.treeOpts, tree.WithRBTreeKeyDestroyer[K, struct{}](d))
	}
}

func WithSetRemoveBorrowSucc[K any]() SetOption[K] {
	return func(opts *setOpts[K]) {
		opts.treeOpts = append(opts.treeOpts, tree.WithRBTreeRemoveBorrowSucc[K, struct{}]())
	}
}

func applySetOpts[K any](opts ...SetOption[K]) []tree.RBTreeOpt[K, struct{}] {
	o := &setOpts[K]{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(o)
	}
	return o.treeOpts
}

func NewRBSet[K any](cmp infra.Comparator[K], opts ...SetOption[K]) (OrderedSet[K], error) {
	t, err := tree.NewRBTree[K, struct{}](cmp, applySetOpts[K](opts...)...)
	if err != nil {
		return nil, err
	}
	return &rbSet[K]{tree: t}, nil
}

func NewOrderedRBSet[K infra.OrderedKey](opts ...SetOption[K]) OrderedSet[K] {
	return &rbSet[K]{
		tree: tree.NewOrderedRBTree[K, struct{}](applySetOpts[K](opts...)...),
	}
}
