package queue

import "github.com/benz9527/rbkit/lib/infra"

var _ Stack[int] = (*linkedStack[int])(nil)

type linkedStack[E any] struct {
	head      *linkedNode[E]
	destroyer infra.Destroyer[E]
	count     int64
}

func (s *linkedStack[E]) Len() int64 {
	return s.count
}

func (s *linkedStack[E]) IsEmpty() bool {
	return s.head == nil
}

func (s *linkedStack[E]) Push(item E) {
	s.head = &linkedNode[E]{
		next: s.head,
		item: item,
	}
	s.count++
}

func (s *linkedStack[E]) Pop() (item E, ok bool) {
	if s.head == nil {
		return item, false
	}
	node := s.head
	s.head, node.next = node.next, nil
	s.count--
	return node.item, true
}

func (s *linkedStack[E]) Peek() (item E, ok bool) {
	if s.head == nil {
		return item, false
	}
	return s.head.item, true
}

func (s *linkedStack[E]) Release() {
	for !s.IsEmpty() {
		item, _ := s.Pop()
		infra.Destroy[E](s.destroyer, item)
	}
}

func NewLinkedStack[E any](opts ...LinkedOption[E]) Stack[E] {
	cfg := applyLinkedOpts[E](opts...)
	s := &linkedStack[E]{
		destroyer: cfg.destroyer,
	}
	for _, item := range cfg.initItems {
		s.Push(item)
	}
	return s
}
