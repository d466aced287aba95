package queue

import "github.com/benz9527/rbkit/lib/infra"

var _ Queue[int] = (*linkedQueue[int])(nil)

type linkedQueue[E any] struct {
	head      *linkedNode[E]
	tail      *linkedNode[E]
	destroyer infra.Destroyer[E]
	count     int64
}

func (q *linkedQueue[E]) Len() int64 {
	return q.count
}

func (q *linkedQueue[E]) IsEmpty() bool {
	return q.head == nil
}

func (q *linkedQueue[E]) Enqueue(item E) {
	node := &linkedNode[E]{
		item: item,
	}
	if q.tail != nil {
		q.tail.next = node
		q.tail = node
	} else {
		q.head, q.tail = node, node
	}
	q.count++
}

func (q *linkedQueue[E]) Dequeue() (item E, ok bool) {
	if q.head == nil {
		return item, false
	}
	node := q.head
	q.head, node.next = node.next, nil
	if q.head == nil {
		q.tail = nil
	}
	q.count--
	return node.item, true
}

func (q *linkedQueue[E]) Peek() (item E, ok bool) {
	if q.head == nil {
		return item, false
	}
	return q.head.item, true
}

func (q *linkedQueue[E]) Release() {
	for !q.IsEmpty() {
		item, _ := q.Dequeue()
		infra.Destroy[E](q.destroyer, item)
	}
}

func NewLinkedQueue[E any](opts ...LinkedOption[E]) Queue[E] {
	cfg := applyLinkedOpts[E](opts...)
	q := &linkedQueue[E]{
		destroyer: cfg.destroyer,
	}
	for _, item := range cfg.initItems {
		q.Enqueue(item)
	}
	return q
}
