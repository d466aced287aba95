package tree

import (
	"github.com/benz9527/rbkit/lib/infra"
)

type rbNode[K, V any] struct {
	parent *rbNode[K, V] // lookup only, never drives the destruction
	left   *rbNode[K, V]
	right  *rbNode[K, V]
	key    K
	val    V
	color  RBColor
}

func (node *rbNode[K, V]) Color() RBColor {
	return node.color
}

func (node *rbNode[K, V]) Key() K {
	return node.key
}

func (node *rbNode[K, V]) Val() V {
	return node.val
}

// Avoid to return the typed nil pointer as a non-nil interface.

func (node *rbNode[K, V]) Left() RBNode[K, V] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *rbNode[K, V]) Parent() RBNode[K, V] {
	if node == nil || node.parent == nil {
		return nil
	}
	return node.parent
}

func (node *rbNode[K, V]) Right() RBNode[K, V] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

// All NIL nodes are considered black.
func (node *rbNode[K, V]) isBlack() bool {
	return node == nil || node.color == Black
}

func (node *rbNode[K, V]) isRed() bool {
	return node != nil && node.color == Red
}

func (node *rbNode[K, V]) isRoot() bool {
	return node != nil && node.parent == nil
}

func (node *rbNode[K, V]) direction() RBDirection {
	if node == nil {
		invariantViolation("nil leaf node without direction")
	}

	if node.isRoot() {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	if node == node.parent.right {
		return Right
	}
	invariantViolation("node is neither left nor right child of its parent")
	return Root
}

func (node *rbNode[K, V]) child(dir RBDirection) *rbNode[K, V] {
	switch dir {
	case Left:
		return node.left
	case Right:
		return node.right
	default:
		invariantViolation("child lookup at " + dir.String())
	}
	return nil
}

// setChild links c under node and fixes the back-reference.
func (node *rbNode[K, V]) setChild(dir RBDirection, c *rbNode[K, V]) {
	switch dir {
	case Left:
		node.left = c
	case Right:
		node.right = c
	default:
		invariantViolation("child link at " + dir.String())
	}
	if c != nil {
		c.parent = node
	}
}

func (node *rbNode[K, V]) sibling() *rbNode[K, V] {
	dir := node.direction()
	if dir == Root {
		return nil
	}
	return node.parent.child(dir.opposite())
}

func (node *rbNode[K, V]) uncle() *rbNode[K, V] {
	return node.parent.sibling()
}

func (node *rbNode[K, V]) minimum() *rbNode[K, V] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *rbNode[K, V]) maximum() *rbNode[K, V] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

type rbTree[K, V any] struct {
	root           *rbNode[K, V]
	cmp            infra.Comparator[K]
	keyDestroyer   infra.Destroyer[K]
	valDestroyer   infra.Destroyer[V]
	count          int64
	isDesc         bool
	isRmBorrowSucc bool
	released       bool
}

func (tree *rbTree[K, V]) Len() int64 {
	return tree.count
}

func (tree *rbTree[K, V]) Root() RBNode[K, V] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

func (tree *rbTree[K, V]) destroy(key K, val V) {
	infra.Destroy[K](tree.keyDestroyer, key)
	infra.Destroy[V](tree.valDestroyer, val)
}

// dropKey destroys the dropped key unless it is the kept one itself,
// which happens if the same pointer key is passed in again.
func (tree *rbTree[K, V]) dropKey(dropped, kept K) {
	if tree.keyDestroyer == nil || infra.SameRef[K](dropped, kept) {
		return
	}
	tree.keyDestroyer.Destroy(dropped)
}

func (tree *rbTree[K, V]) dropVal(dropped, kept V) {
	if tree.valDestroyer == nil || infra.SameRef[V](dropped, kept) {
		return
	}
	tree.valDestroyer.Destroy(dropped)
}

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.
// (Conclusion) If a node X has exactly one child, it must be a red child,
//   because if it were black, its NIL descendants would sit at a different
//   black depth than X's NIL child, violating p4.
// So the shortest path nodes are black nodes. Otherwise,
// the path must contain red node.
// The longest path nodes' number is 2 * shortest path nodes' number.

/*
rotate(X, Left), the right child S moves up:

		 |                         |
		 X                         S
		/ \    rotate(X, Left)    / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc

rotate(S, Right) is the mirror, the left child X moves up:

			 |                         |
			 X                         S
			/ \    rotate(S, Right)   / \
	       L   S    <============    X   R
			  / \                   / \
			Sc   Sd               Sc   Sd

The in-order sequence is unchanged and the subtrees L, Sc, Sd keep their
black height. Returns the node moved up.
*/
func (tree *rbTree[K, V]) rotate(x *rbNode[K, V], dir RBDirection) *rbNode[K, V] {
	if x == nil {
		invariantViolation("rotate nil node")
	}
	y := x.child(dir.opposite())
	if y == nil {
		invariantViolation("rotate " + dir.String() + " without the opposite child")
	}

	p, xDir := x.parent, x.direction()
	x.setChild(dir.opposite(), y.child(dir))
	y.setChild(dir, x)

	if xDir == Root {
		tree.root = y
		y.parent = nil
	} else {
		p.setChild(xDir, y)
	}
	return y
}

func (tree *rbTree[K, V]) leftRotate(x *rbNode[K, V]) *rbNode[K, V] {
	return tree.rotate(x, Left)
}

func (tree *rbTree[K, V]) rightRotate(x *rbNode[K, V]) *rbNode[K, V] {
	return tree.rotate(x, Right)
}

func (tree *rbTree[K, V]) Insert(key K, val V) error {
	return tree.insert(key, val, false)
}

func (tree *rbTree[K, V]) Replace(key K, val V) error {
	return tree.insert(key, val, true)
}

// i0: Empty rbtree, the new node becomes the root and painted to black.
func (tree *rbTree[K, V]) insert(key K, val V, replace bool) error {
	if tree.released {
		return infra.WrapErrorStack(ErrRBTreeReleased)
	}

	var (
		y   *rbNode[K, V]
		dir = Root
	)
	for x := tree.root; x != nil; {
		res := tree.cmp.Compare(key, x.key)
		if /* equal */ res == 0 {
			tree.dropVal(x.val, val)
			if replace {
				tree.dropKey(x.key, key)
				x.key = key
			} else {
				// Keep the stored key, the passed in one is dropped.
				tree.dropKey(key, x.key)
			}
			x.val = val
			return nil
		}

		y = x
		if /* less */ res < 0 {
			dir, x = Left, x.left
		} else /* greater */ {
			dir, x = Right, x.right
		}
	}

	z := &rbNode[K, V]{
		key:   key,
		val:   val,
		color: Red,
	}
	if /* i0 */ y == nil {
		tree.root = z
	} else {
		y.setChild(dir, z)
	}
	tree.count++
	tree.insertRebalance(z)
	return nil
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

i1: Current node X is the root, repaint it into black.

i2: Current node X's parent P is black, hold p3 and p4.

i3: If both the parent P and the uncle U are red, grandpa G is black.
(red-violation)
After repainted G into red may be still red-violation.
Continue to fix grandpa.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

i4: The parent P is red but the uncle U is black. (red-violation)
X is opposite direction to P. Rotate P to P's direction.
After rotation may be still red-violation. Here must enter i5 to fix.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

i5: Handle i4 scenario, current node is the same direction as parent.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	[U]                         [U]               [U]
*/
func (tree *rbTree[K, V]) insertRebalance(x *rbNode[K, V]) {
	for {
		p := x.parent
		if /* i1 */ p == nil {
			x.color = Black
			return
		}

		if /* i2 */ p.isBlack() {
			return
		}

		g := p.parent
		if g == nil {
			invariantViolation("red root, violate (i3)")
		}

		if /* i3 */ u := x.uncle(); u.isRed() {
			p.color, u.color, g.color = Black, Black, Red
			x = g
			continue
		}

		pDir := p.direction()
		if /* i4 */ x.direction() != pDir {
			tree.rotate(p, pDir)
			x, p = p, x // enter i5 to fix
		}

		/* i5 */
		p.color, g.color = Black, Red
		tree.rotate(g, pDir.opposite())
		return
	}
}

func (tree *rbTree[K, V]) search(key K) *rbNode[K, V] {
	for aux := tree.root; aux != nil; {
		res := tree.cmp.Compare(key, aux.key)
		if res == 0 {
			return aux
		} else if res > 0 {
			aux = aux.right
		} else {
			aux = aux.left
		}
	}
	return nil
}

func (tree *rbTree[K, V]) Search(key K) (val V, ok bool) {
	if x := tree.search(key); x != nil {
		return x.val, true
	}
	return val, false
}

func (tree *rbTree[K, V]) Contains(key K) bool {
	return tree.search(key) != nil
}

func (tree *rbTree[K, V]) Min() (key K, val V, ok bool) {
	if x := tree.root.minimum(); x != nil {
		return x.key, x.val, true
	}
	return key, val, false
}

func (tree *rbTree[K, V]) Max() (key K, val V, ok bool) {
	if x := tree.root.maximum(); x != nil {
		return x.key, x.val, true
	}
	return key, val, false
}

func (tree *rbTree[K, V]) Remove(key K) error {
	if tree.released {
		return infra.WrapErrorStack(ErrRBTreeReleased)
	}
	if z := tree.search(key); z != nil {
		tree.removeNode(z)
	}
	return nil
}

/*
r1: Current node X has left and right node.
Find node X's pred (or succ) to replace it to be removed.
Swap the key and value only. The pred has no right child and
the succ has no left child.

Find pred:

	  |                    |
	  X                    L
	 / \                  / \
	L  ..   swap(X, L)   X  ..
		|   =========>       |
		P                    P
	   / \                  / \
	  S  ..                S  ..

Find succ:

	  |                    |
	  X                    S
	 / \                  / \
	L  ..   swap(X, S)   L  ..
		|   =========>       |
		P                    P
	   / \                  / \
	  S  ..                X  ..

r2: Current node X is red, it must be a leaf, unlink directly.

r3: Current node X is black with a red child. Repaint the child into black
and splice it into X's position.

r4: Current node X is a black leaf. Unlink it makes a black-violation, so
rebalance before unlink, the sibling and parent are still reachable.
*/
func (tree *rbTree[K, V]) removeNode(z *rbNode[K, V]) {
	y := z
	if /* r1 */ z.left != nil && z.right != nil {
		if tree.isRmBorrowSucc {
			y = z.right.minimum()
		} else {
			y = z.left.maximum()
		}
		z.key, y.key = y.key, z.key
		z.val, y.val = y.val, z.val
	}

	child := y.left
	if child == nil {
		child = y.right
	}

	if y.isBlack() {
		if /* r3 */ child.isRed() {
			child.color = Black
		} else /* r4 */ {
			if child != nil {
				invariantViolation("black node with a single black child, violate (r4)")
			}
			tree.removeRebalance(y)
		}
	}

	// Splice the child into y's position.
	if dir := y.direction(); dir == Root {
		tree.root = child
		if child != nil {
			child.parent = nil
		}
	} else {
		y.parent.setChild(dir, child)
	}
	tree.count--

	tree.destroy(y.key, y.val)
	var (
		zeroK K
		zeroV V
	)
	y.parent, y.left, y.right = nil, nil, nil
	y.key, y.val = zeroK, zeroV
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

Sc is the same direction to X and it X's sibling's child node. (near nephew)
Sd is the opposite direction to X and it X's sibling's child node. (far nephew)

The figures show X as the left child, the right child case is the mirror
by swapping the directions. Both are executed by the same code.

rm1: Current node X is the root, the black deficit is absorbed.

rm2: Current node X's sibling S is red, so the parent P, nephew node Sc and Sd
must be black. (Otherwise, red-violation)
Repaint S into black, P into red, rotate P to X's direction.
Then X has a black sibling Sc, enter rm3-rm6.

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [Sd]  ======>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

rm3: All of current node X's parent P, the sibling S, nephew node Sc and Sd
are black.
Unable to satisfy p4 locally. We have to paint the S into red.
Then continue to handle P.

	  [P]             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm4: Current node X's parent P is red, the sibling S, nephew node Sc and Sd
are black.
Repaint S into red and P into black.

	  <P>             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm5: Current node X's sibling S is black, nephew node Sc is red and Sd
is black. Ignore X's parent P's color (red or black is okay)
Repaint S into red, Sc into black, rotate S to X's opposite direction.
Enter into rm6 to fix.

	                        {P}                {P}
	  {P}                   / \                / \
	  / \    r-rotate(S)  [X] <Sc>   repaint  [X] [Sc]
	[X] [S]  ==========>        \    ======>       \
	    / \                     [S]                <S>
	  <Sc> [Sd]                   \                  \
	                              [Sd]               [Sd]

rm6: Current node X's sibling S is black, nephew node Sd is red.
Ignore X's parent P's color and Sc's color.
(1) Paint S into P's color, P into black, Sd into black.
(2) Rotate P to X's direction.

	  {P}                   {S}                {S}
	  / \    l-rotate(P)    / \     repaint    / \
	[X] [S]  ==========>  {P} <Sd>  ======>  [P] [Sd]
	    / \               / \                / \
	 {Sc} <Sd>          [X] {Sc}           [X] {Sc}
*/
func (tree *rbTree[K, V]) removeRebalance(x *rbNode[K, V]) {
	for {
		p := x.parent
		if /* rm1 */ p == nil {
			return
		}

		dir := x.direction()
		s := p.child(dir.opposite())
		if s == nil {
			invariantViolation("black deficit without sibling, violate (rm2)")
		}

		if /* rm2 */ s.isRed() {
			p.color, s.color = Red, Black
			tree.rotate(p, dir)
			if s = p.child(dir.opposite()); s == nil {
				invariantViolation("black deficit without sibling, violate (rm2)")
			}
		}

		sc, sd := s.child(dir), s.child(dir.opposite())
		if sc.isBlack() && sd.isBlack() {
			if /* rm3 */ p.isBlack() {
				s.color = Red
				x = p
				continue
			}
			/* rm4 */
			p.color, s.color = Black, Red
			return
		}

		if /* rm5 */ sd.isBlack() {
			s.color, sc.color = Red, Black
			tree.rotate(s, dir.opposite())
			s, sd = sc, s
		}

		/* rm6 */
		s.color, p.color, sd.color = p.color, Black, Black
		tree.rotate(p, dir)
		return
	}
}

// Inorder traversal by the parent links, without recursion or stack.
// prev tells where we came from:
// (1) from the parent, go down to the left subtree first.
// (2) from the left child, visit then go down to the right or go up.
// (3) from the right child, go up.
func (tree *rbTree[K, V]) Foreach(action func(idx int64, color RBColor, key K, val V) bool) {
	if action == nil {
		return
	}

	var (
		prev, next *rbNode[K, V]
		idx        int64
	)
	for curr := tree.root; curr != nil; prev, curr = curr, next {
		switch prev {
		case curr.parent:
			if curr.left != nil {
				next = curr.left
				continue
			}
		case curr.left:
		case curr.right:
			next = curr.parent
			continue
		default:
			invariantViolation("inorder traversal arrives from an unlinked node")
		}

		if !action(idx, curr.color, curr.key, curr.val) {
			return
		}
		idx++
		if curr.right != nil {
			next = curr.right
		} else {
			next = curr.parent
		}
	}
}

// Clear prunes the leaves one by one without recursion, so the
// call stack is bounded whatever the tree depth is.
func (tree *rbTree[K, V]) Clear() {
	var (
		zeroK K
		zeroV V
	)
	for aux := tree.root; aux != nil; {
		if aux.left != nil {
			aux = aux.left
			continue
		}
		if aux.right != nil {
			aux = aux.right
			continue
		}

		p := aux.parent
		switch {
		case p == nil:
			tree.root = nil
		case aux == p.left:
			p.left = nil
		default:
			p.right = nil
		}
		tree.count--
		tree.destroy(aux.key, aux.val)
		aux.parent, aux.key, aux.val = nil, zeroK, zeroV
		aux = p
	}
	tree.count = 0
}

func (tree *rbTree[K, V]) Release() {
	tree.Clear()
	tree.released = true
}

type RBTreeOpt[K, V any] func(*rbTree[K, V])

// WithRBTreeDesc reverses the order of the comparator.
func WithRBTreeDesc[K, V any]() RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.isDesc = true
	}
}

// WithRBTreeRemoveBorrowSucc removes a node with two children by borrowing
// its successor instead of its predecessor.
func WithRBTreeRemoveBorrowSucc[K, V any]() RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.isRmBorrowSucc = true
	}
}

func WithRBTreeKeyDestroyer[K, V any](d infra.Destroyer[K]) RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.keyDestroyer = d
	}
}

func WithRBTreeValDestroyer[K, V any](d infra.Destroyer[V]) RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.valDestroyer = d
	}
}

func isNilComparator[K any](cmp infra.Comparator[K]) bool {
	if cmp == nil {
		return true
	}
	fn, ok := cmp.(infra.ComparatorFunc[K])
	return ok && fn == nil
}

func newRBTree[K, V any](cmp infra.Comparator[K], opts ...RBTreeOpt[K, V]) (*rbTree[K, V], error) {
	if isNilComparator[K](cmp) {
		return nil, infra.WrapErrorStack(ErrRBTreeNilComparator)
	}

	tree := &rbTree[K, V]{
		cmp:            cmp,
		isDesc:         false,
		isRmBorrowSucc: false,
	}
	for _, o := range opts {
		if o == nil {
			continue
		}
		o(tree)
	}
	if tree.isDesc {
		tree.cmp = infra.ReverseComparator[K](tree.cmp)
	}
	return tree, nil
}

func NewRBTree[K, V any](cmp infra.Comparator[K], opts ...RBTreeOpt[K, V]) (RBTree[K, V], error) {
	tree, err := newRBTree[K, V](cmp, opts...)
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// NewOrderedRBTree uses the natural order of the builtin ordered key.
func NewOrderedRBTree[K infra.OrderedKey, V any](opts ...RBTreeOpt[K, V]) RBTree[K, V] {
	tree, _ := newRBTree[K, V](infra.OrderedKeyComparator[K](), opts...)
	return tree
}
