package tree

type RBColor uint8

const (
	Black RBColor = iota
	Red
)

func (c RBColor) String() string {
	switch c {
	case Black:
		return "Black"
	case Red:
		return "Red"
	default:
	}
	return "Unknown"
}

// RBDirection is the position of a node under its parent.
// Left and Right are negated to each other.
type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

func (d RBDirection) opposite() RBDirection {
	return -d
}

func (d RBDirection) String() string {
	switch d {
	case Left:
		return "Left"
	case Root:
		return "Root"
	case Right:
		return "Right"
	default:
	}
	return "Unknown"
}

// RBNode is the read-only view of a tree node.
type RBNode[K, V any] interface {
	Key() K
	Val() V
	Color() RBColor
	Left() RBNode[K, V]
	Right() RBNode[K, V]
	Parent() RBNode[K, V]
}

// RBTree is not thread safe. The keys and values handed to Insert and
// Replace are owned by the tree until they are removed, replaced or cleared,
// then the destroyers are called on them exactly once.
type RBTree[K, V any] interface {
	Len() int64
	Root() RBNode[K, V]
	// Insert adds the key-val pair. If the key exists, the stored key is kept,
	// the stored val is destroyed and replaced, and the passed in key is
	// destroyed.
	// A passed in key or val referring to the very object already stored
	// (same pointer, map, chan or slice) is never destroyed, it stays in
	// the tree.
	Insert(key K, val V) error
	// Replace adds the key-val pair. If the key exists, both the stored key
	// and val are destroyed and replaced. The same aliasing rule as Insert
	// applies.
	Replace(key K, val V) error
	Search(key K) (V, bool)
	Contains(key K) bool
	Min() (K, V, bool)
	Max() (K, V, bool)
	// Remove is no-op if the key is absent.
	Remove(key K) error
	// Foreach visits in ascending order until the action returns false.
	// The action must not mutate the tree.
	Foreach(action func(idx int64, color RBColor, key K, val V) bool)
	Clear()
	// Release clears the tree and rejects any later mutation.
	Release()
}
