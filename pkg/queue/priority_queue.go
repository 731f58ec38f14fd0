package queue

import (
	"container/heap"

	"golang.org/x/exp/constraints"
)

// Item is one entry in a PriorityQueue, pairing a value with the priority
// it was pushed at and the heap index needed for in-place priority updates.
type Item[V any, P constraints.Ordered] struct {
	object   V
	priority P
	index    int
}

func (item *Item[V, P]) Value() V { return item.object }

type pqHeap[V any, P constraints.Ordered] []*Item[V, P]

func (pq *pqHeap[V, P]) Len() int { return len(*pq) }

func (pq *pqHeap[V, P]) Less(i, j int) bool {
	return (*pq)[i].priority < (*pq)[j].priority
}

func (pq *pqHeap[V, P]) Swap(i, j int) {
	(*pq)[i], (*pq)[j] = (*pq)[j], (*pq)[i]
	(*pq)[i].index = i
	(*pq)[j].index = j
}

func (pq *pqHeap[V, P]) Push(x any) {
	item := x.(*Item[V, P])
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *pqHeap[V, P]) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[0 : n-1]
	return item
}

// PriorityQueue is a minimum-priority heap, used for both the PIT's
// by-expiry index and the Content Store's by-expiry and
// by-recommended-cache-time indexes, grounded on std/types/priority_queue's generic wrapper over
// container/heap.
type PriorityQueue[V any, P constraints.Ordered] struct {
	pq pqHeap[V, P]
}

func NewPriorityQueue[V any, P constraints.Ordered]() *PriorityQueue[V, P] {
	return &PriorityQueue[V, P]{}
}

func (pq *PriorityQueue[V, P]) Len() int { return pq.pq.Len() }

func (pq *PriorityQueue[V, P]) Push(value V, priority P) *Item[V, P] {
	item := &Item[V, P]{object: value, priority: priority}
	heap.Push(&pq.pq, item)
	return item
}

func (pq *PriorityQueue[V, P]) Peek() V { return pq.pq[0].object }

func (pq *PriorityQueue[V, P]) PeekPriority() P { return pq.pq[0].priority }

func (pq *PriorityQueue[V, P]) Pop() V {
	return heap.Pop(&pq.pq).(*Item[V, P]).object
}

// Remove removes item from the queue regardless of its current position.
func (pq *PriorityQueue[V, P]) Remove(item *Item[V, P]) {
	heap.Remove(&pq.pq, item.index)
}

func (pq *PriorityQueue[V, P]) Update(item *Item[V, P], value V, priority P) {
	item.object = value
	pq.UpdatePriority(item, priority)
}

func (pq *PriorityQueue[V, P]) UpdatePriority(item *Item[V, P], priority P) {
	item.priority = priority
	heap.Fix(&pq.pq, item.index)
}
