// Package queue holds pending work items between producers on the input
// path and a background consumer.
package queue

import "sync"

// Queue is a thread-safe FIFO of comparable items. The same item may be
// queued more than once; DrainUnique collapses repeats.
type Queue[T comparable] struct {
	mu    sync.Mutex
	items []T
}

// New creates a new empty queue.
func New[T comparable]() *Queue[T] {
	return &Queue[T]{}
}

// Push appends items to the queue.
func (q *Queue[T]) Push(items ...T) {
	q.mu.Lock()
	q.items = append(q.items, items...)
	q.mu.Unlock()
}

// Empty returns true if the queue has no items.
func (q *Queue[T]) Empty() bool {
	return q.Len() == 0
}

// Len returns the number of queued items, repeats included.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain returns all items in push order and clears the queue.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

// DrainUnique is Drain keeping only the first occurrence of each item.
func (q *Queue[T]) DrainUnique() []T {
	items := q.Drain()
	if len(items) < 2 {
		return items
	}
	seen := make(map[T]struct{}, len(items))
	out := items[:0]
	for _, it := range items {
		if _, dup := seen[it]; dup {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
