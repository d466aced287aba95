package queue

import "github.com/benz9527/rbkit/lib/infra"

// Both the stack and the queue are not thread safe.

// Stack is a singly linked LIFO container.
type Stack[E any] interface {
	Len() int64
	IsEmpty() bool
	Push(item E)
	// Pop removes the top item. The ok is false if the stack is empty.
	Pop() (item E, ok bool)
	Peek() (item E, ok bool)
	// Release drops all items, the destroyer is called on each of them.
	Release()
}

// Queue is a singly linked FIFO container.
type Queue[E any] interface {
	Len() int64
	IsEmpty() bool
	Enqueue(item E)
	// Dequeue removes the head item. The ok is false if the queue is empty.
	Dequeue() (item E, ok bool)
	Peek() (item E, ok bool)
	// Release drops all items, the destroyer is called on each of them.
	Release()
}

type linkedNode[E any] struct {
	next *linkedNode[E]
	item E
}

type linkedCfg[E any] struct {
	destroyer infra.Destroyer[E]
	initItems []E
}

type LinkedOption[E any] func(cfg *linkedCfg[E])

// WithLinkedDestroyer the destroyer takes the ownership of the remaining
// items on Release. Popped or dequeued items belong to the caller.
func WithLinkedDestroyer[E any](destroyer infra.Destroyer[E]) LinkedOption[E] {
	return func(cfg *linkedCfg[E]) {
		cfg.destroyer = destroyer
	}
}

// WithLinkedItems pushes or enqueues the items in order at construction.
func WithLinkedItems[E any](items ...E) LinkedOption[E] {
	return func(cfg *linkedCfg[E]) {
		cfg.initItems = append(cfg.initItems, items...)
	}
}

func applyLinkedOpts[E any](opts ...LinkedOption[E]) *linkedCfg[E] {
	cfg := &linkedCfg[E]{}
	for _, o := range opts {
		if o == nil {
			continue
		}
		o(cfg)
	}
	return cfg
}
