package infra

import (
	"reflect"
)

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Integer is a constraint that permits any integer type.
type Integer interface {
	Signed | Unsigned
}

// Float is a constraint that permits any floating-point type.
type Float interface {
	~float32 | ~float64
}

// OrderedKey
// byte => ~uint8
type OrderedKey interface {
	Integer | Float | ~string
}

// Comparator is the ordering capability bound to a container at construction.
// Assume i is the new key.
//  1. i == j, return 0.
//  2. i > j, return positive, turn to right part.
//  3. i < j, return negative, turn to left part.
//
// It must be a strict total order over the keys.
type Comparator[K any] interface {
	Compare(i, j K) int64
}

// ComparatorFunc adapts a plain function to the Comparator interface.
type ComparatorFunc[K any] func(i, j K) int64

func (fn ComparatorFunc[K]) Compare(i, j K) int64 {
	return fn(i, j)
}

// OrderedKeyComparator is the natural ascending order of the builtin ordered types.
// NaN is ordered before every other float so that the order stays total.
func OrderedKeyComparator[K OrderedKey]() Comparator[K] {
	return ComparatorFunc[K](func(i, j K) int64 {
		iNaN, jNaN := i != i, j != j
		switch {
		case iNaN && jNaN:
			return 0
		case iNaN:
			return -1
		case jNaN:
			return 1
		case i < j:
			return -1
		case i > j:
			return 1
		default:
		}
		return 0
	})
}

type reverseComparator[K any] struct {
	cmp Comparator[K]
}

func (rc reverseComparator[K]) Compare(i, j K) int64 {
	return rc.cmp.Compare(j, i)
}

// ReverseComparator flips the order of cmp. A nil cmp stays nil.
func ReverseComparator[K any](cmp Comparator[K]) Comparator[K] {
	if cmp == nil {
		return nil
	}
	if rc, ok := cmp.(reverseComparator[K]); ok {
		return rc.cmp
	}
	return reverseComparator[K]{cmp: cmp}
}

// Destroyer is the cleanup capability. It is called exactly once on
// every key or value that leaves a container.
type Destroyer[T any] interface {
	Destroy(item T)
}

// DestroyerFunc adapts a plain function to the Destroyer interface.
type DestroyerFunc[T any] func(item T)

func (fn DestroyerFunc[T]) Destroy(item T) {
	if fn == nil {
		return
	}
	fn(item)
}

// Destroy calls d on item, a nil d is a no-op.
func Destroy[T any](d Destroyer[T], item T) {
	if d == nil {
		return
	}
	d.Destroy(item)
}

// SameRef reports whether a and b refer to the same object, so destroying
// one destroys the other. Only the pointer, map, chan, slice and unsafe
// pointer kinds (also boxed in an interface) can share an object, the
// other kinds are copied on every pass.
func SameRef[T any](a, b T) bool {
	va, vb := reflect.ValueOf(&a).Elem(), reflect.ValueOf(&b).Elem()
	if va.Kind() == reflect.Interface {
		if va.IsNil() || vb.IsNil() {
			return false
		}
		va, vb = va.Elem(), vb.Elem()
		if va.Type() != vb.Type() {
			return false
		}
	}
	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return !va.IsNil() && va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return !va.IsNil() && va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	default:
	}
	return false
}
