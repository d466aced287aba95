package tree

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/multierr"

	"github.com/benz9527/rbkit/lib/infra"
	"github.com/benz9527/rbkit/lib/queue"
)

// rbtree rule validation utilities.
// They only walk the read-only RBNode view, so they can tell a broken
// engine apart from a correct one.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

var (
	errRBTreeRedViolation   = errors.New("rbtree red violation")
	errRBTreeBlackViolation = errors.New("rbtree black violation")
	errRBTreeRootViolation  = errors.New("rbtree red root")
	errRBTreeLinkViolation  = errors.New("rbtree parent link violation")
	errRBTreeOrderViolation = errors.New("rbtree order violation")
	errRBTreeSizeViolation  = errors.New("rbtree size violation")
)

func isBlack[K, V any](node RBNode[K, V]) bool {
	return node == nil || node.Color() == Black
}

func isRed[K, V any](node RBNode[K, V]) bool {
	return node != nil && node.Color() == Red
}

func blackDepthTo[K, V any](target, to RBNode[K, V]) int {
	depth := 0
	for aux := target; aux != nil && aux != to; aux = aux.Parent() {
		if isBlack[K, V](aux) {
			depth++
		}
	}
	return depth
}

// Inorder traversal to validate the rbtree properties.
func RedViolationValidate[K, V any](tree RBTree[K, V]) error {
	aux := tree.Root()
	if aux == nil {
		return nil
	}

	stack := queue.NewLinkedStack[RBNode[K, V]]()
	defer stack.Release()

	for ; aux != nil; aux = aux.Left() {
		stack.Push(aux)
	}

	for !stack.IsEmpty() {
		aux, _ = stack.Pop()
		if isRed[K, V](aux) && (isRed[K, V](aux.Left()) || isRed[K, V](aux.Right())) {
			return fmt.Errorf("%w at key %v", errRBTreeRedViolation, aux.Key())
		}
		for aux = aux.Right(); aux != nil; aux = aux.Left() {
			stack.Push(aux)
		}
	}
	return nil
}

// BFS traversal to load all nodes with at least one nil leaf.
func bfsLeaves[K, V any](tree RBTree[K, V]) []RBNode[K, V] {
	aux := tree.Root()
	if aux == nil {
		return nil
	}

	leaves := make([]RBNode[K, V], 0, tree.Len()>>1+1)
	q := queue.NewLinkedQueue[RBNode[K, V]](queue.WithLinkedItems[RBNode[K, V]](aux))
	defer q.Release()

	for !q.IsEmpty() {
		aux, _ = q.Dequeue()
		l, r := aux.Left(), aux.Right()
		if /* nil leaves, keep one */ l == nil || r == nil {
			leaves = append(leaves, aux)
		}
		if l != nil {
			q.Enqueue(l)
		}
		if r != nil {
			q.Enqueue(r)
		}
	}
	return leaves
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

2-3-4 tree like:

	       <8> --- [13] --- <15>
			  /  \             /    \
			 /    \           /      \
		  <1>-[6][11]      [14] <16>-[17]

Each leaf node to root node black depth are equal.
*/
func BlackViolationValidate[K, V any](tree RBTree[K, V]) error {
	leaves := bfsLeaves[K, V](tree)
	if leaves == nil {
		return nil
	}

	blackDepth := blackDepthTo[K, V](leaves[0], nil)
	for i := 1; i < len(leaves); i++ {
		if depth := blackDepthTo[K, V](leaves[i], nil); depth != blackDepth {
			return fmt.Errorf("%w at key %v, black depth %d != %d",
				errRBTreeBlackViolation, leaves[i].Key(), depth, blackDepth)
		}
	}
	return nil
}

func RootColorValidate[K, V any](tree RBTree[K, V]) error {
	if root := tree.Root(); isRed[K, V](root) {
		return fmt.Errorf("%w at key %v", errRBTreeRootViolation, root.Key())
	}
	return nil
}

// ParentLinkValidate checks every child points back to its parent and
// the number of linked nodes matches the tree length.
func ParentLinkValidate[K, V any](tree RBTree[K, V]) error {
	root := tree.Root()
	if root == nil {
		if tree.Len() != 0 {
			return fmt.Errorf("%w, empty root with len %d", errRBTreeSizeViolation, tree.Len())
		}
		return nil
	}
	if root.Parent() != nil {
		return fmt.Errorf("%w, root has parent", errRBTreeLinkViolation)
	}

	var count int64
	stack := queue.NewLinkedStack[RBNode[K, V]](queue.WithLinkedItems[RBNode[K, V]](root))
	defer stack.Release()
	for !stack.IsEmpty() {
		aux, _ := stack.Pop()
		count++
		for _, c := range []RBNode[K, V]{aux.Left(), aux.Right()} {
			if c == nil {
				continue
			}
			if c.Parent() != aux {
				return fmt.Errorf("%w at key %v", errRBTreeLinkViolation, c.Key())
			}
			stack.Push(c)
		}
	}
	if count != tree.Len() {
		return fmt.Errorf("%w, linked %d != len %d", errRBTreeSizeViolation, count, tree.Len())
	}
	return nil
}

// OrderViolationValidate checks the inorder sequence is strictly ascending
// under the cmp. Desc trees have to pass the reversed comparator.
func OrderViolationValidate[K, V any](tree RBTree[K, V], cmp infra.Comparator[K]) error {
	if cmp == nil {
		return ErrRBTreeNilComparator
	}

	var (
		prev K
		err  error
	)
	tree.Foreach(func(idx int64, color RBColor, key K, val V) bool {
		if idx > 0 && cmp.Compare(prev, key) >= 0 {
			err = fmt.Errorf("%w at index %d, key %v after %v", errRBTreeOrderViolation, idx, key, prev)
			return false
		}
		prev = key
		return true
	})
	return err
}

// BlackHeight counts the black nodes from the root to the leftmost nil leaf.
func BlackHeight[K, V any](tree RBTree[K, V]) int {
	height := 0
	for aux := tree.Root(); aux != nil; aux = aux.Left() {
		if isBlack[K, V](aux) {
			height++
		}
	}
	return height
}

// MaxBlackHeight is the upper bound 2*log2(n+1) of an n nodes rbtree.
func MaxBlackHeight(n int64) int {
	return int(2 * math.Log2(float64(n)+1))
}

// Validate runs all of the validations and combines the failures.
func Validate[K, V any](tree RBTree[K, V], cmp infra.Comparator[K]) error {
	return multierr.Combine(
		RootColorValidate[K, V](tree),
		ParentLinkValidate[K, V](tree),
		RedViolationValidate[K, V](tree),
		BlackViolationValidate[K, V](tree),
		OrderViolationValidate[K, V](tree, cmp),
	)
}
