package tree

import (
	"errors"

	"github.com/benz9527/rbkit/lib/infra"
)

var (
	ErrRBTreeNilComparator      = errors.New("[rbtree] nil comparator")
	ErrRBTreeReleased           = errors.New("[rbtree] tree released")
	ErrRBTreeInvariantViolation = errors.New("[rbtree] invariant violation")
)

// The tree structure is broken by a bug, not by the caller input.
// Continue to mutate it will corrupt all later operations.
func invariantViolation(msg string) {
	panic( /* debug assertion */ infra.WrapErrorStackWithMessage(ErrRBTreeInvariantViolation, msg))
}
