// Package queue implements a value-based binary heap with stable ordering.
package queue

// Item is an entry of the priority queue.
type Item[T any] struct {
	Value    T       // Value is the payload, which can be arbitrary.
	Priority float64 // Priority orders the items.
	seq      uint64  // seq breaks priority ties in insertion order.
}

// PriorityQueue is a binary heap holding Items.
// Items with equal priority are popped in insertion order.
// It does NOT implement container/heap to avoid interface overhead.
type PriorityQueue[T any] struct {
	isMaxHeap bool      // true = max heap, false = min heap
	items     []Item[T] // Value-based storage
	seq       uint64
}

// NewMin initializes a new priority queue with minimum priority.
func NewMin[T any](capacity int) *PriorityQueue[T] {
	return &PriorityQueue[T]{
		isMaxHeap: false,
		items:     make([]Item[T], 0, capacity),
	}
}

// NewMax initializes a new priority queue with maximum priority.
func NewMax[T any](capacity int) *PriorityQueue[T] {
	return &PriorityQueue[T]{
		isMaxHeap: true,
		items:     make([]Item[T], 0, capacity),
	}
}

// Len returns the number of elements in the priority queue.
func (pq *PriorityQueue[T]) Len() int { return len(pq.items) }

// Reset clears the priority queue for reuse.
func (pq *PriorityQueue[T]) Reset() {
	clear(pq.items)
	pq.items = pq.items[:0]
	pq.seq = 0
}

// TopItem returns the top element of the heap.
func (pq *PriorityQueue[T]) TopItem() (Item[T], bool) {
	if len(pq.items) == 0 {
		return Item[T]{}, false
	}
	return pq.items[0], true
}

// Push inserts a value while maintaining the heap invariant.
func (pq *PriorityQueue[T]) Push(value T, priority float64) {
	pq.items = append(pq.items, Item[T]{Value: value, Priority: priority, seq: pq.seq})
	pq.seq++
	pq.siftUp(len(pq.items) - 1)
}

// PopItem removes and returns the top element while maintaining the heap invariant.
func (pq *PriorityQueue[T]) PopItem() (Item[T], bool) {
	n := len(pq.items)
	if n == 0 {
		return Item[T]{}, false
	}
	root := pq.items[0]
	last := pq.items[n-1]
	pq.items[n-1] = Item[T]{} // Zero out for GC
	pq.items = pq.items[:n-1]
	if n-1 > 0 {
		pq.items[0] = last
		pq.siftDown(0)
	}
	return root, true
}

// Pop removes and returns the top value.
func (pq *PriorityQueue[T]) Pop() (T, bool) {
	item, ok := pq.PopItem()
	return item.Value, ok
}

func (pq *PriorityQueue[T]) less(i, j int) bool {
	a, b := pq.items[i], pq.items[j]
	if a.Priority != b.Priority {
		if pq.isMaxHeap {
			return a.Priority > b.Priority
		}
		return a.Priority < b.Priority
	}
	return a.seq < b.seq
}

func (pq *PriorityQueue[T]) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !pq.less(i, p) {
			return
		}
		pq.items[i], pq.items[p] = pq.items[p], pq.items[i]
		i = p
	}
}

func (pq *PriorityQueue[T]) siftDown(i int) {
	n := len(pq.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		r := l + 1
		if r < n && pq.less(r, l) {
			best = r
		}
		if !pq.less(best, i) {
			return
		}
		pq.items[i], pq.items[best] = pq.items[best], pq.items[i]
		i = best
	}
}
