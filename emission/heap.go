// Priority heap: a generic ordered container keyed by time, with stable
// tie-breaking and in-place remove.
//
// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause
package emission

import "time"

// heapIndexUnset is the sentinel ready_index/heap-index value meaning "not
// currently a member of any heap".
const heapIndexUnset = -1

// heapEntry is satisfied by any node that can live in a Heap: Version,
// Changeset and Tag all embed heapHandle and get it for free. time is the
// primary ordering key; seq is the deterministic tie-break (the source
// left tie-break unspecified, since it fell out of allocation order - we
// assign seq monotonically at construction so two runs over identical
// input always emit in the same order).
type heapEntry interface {
	heapTime() time.Time
	heapSeq() uint64
	heapIndex() int
	setHeapIndex(i int)
}

// heapHandle is embedded in every node that can be a member of a Heap. It
// holds the node's current slot, the way the source's ready_index field
// does, so Remove is O(log n) instead of a linear search.
type heapHandle struct {
	seq   uint64
	index int
}

func (h *heapHandle) heapSeq() uint64   { return h.seq }
func (h *heapHandle) heapIndex() int    { return h.index }
func (h *heapHandle) setHeapIndex(i int) { h.index = i }

// Heap is a min-heap ordered by (time, seq). The same generic type backs
// the ready-versions heap, the ready-changesets heap and the ready-tags
// heap. From golang.org/pkg/container/heap/#example__intHeap, reworked as
// a generic container with an index back-pointer per entry.
type Heap[T heapEntry] struct {
	entries []T
}

// Empty reports whether the heap has no entries.
func (h *Heap[T]) Empty() bool { return len(h.entries) == 0 }

// Len reports the number of entries in the heap.
func (h *Heap[T]) Len() int { return len(h.entries) }

// Front returns the earliest entry without removing it. Panics if empty.
func (h *Heap[T]) Front() T { return h.entries[0] }

func (h *Heap[T]) less(i, j int) bool {
	a, b := h.entries[i], h.entries[j]
	at, bt := a.heapTime(), b.heapTime()
	if at.Equal(bt) {
		return a.heapSeq() < b.heapSeq()
	}
	return at.Before(bt)
}

func (h *Heap[T]) swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
	h.entries[i].setHeapIndex(i)
	h.entries[j].setHeapIndex(j)
}

// Insert adds an entry to the heap.
func (h *Heap[T]) Insert(v T) {
	v.setHeapIndex(len(h.entries))
	h.entries = append(h.entries, v)
	h.siftUp(len(h.entries) - 1)
}

// PopFront removes and returns the earliest entry. Panics if empty.
func (h *Heap[T]) PopFront() T {
	return h.Remove(h.entries[0])
}

// Remove deletes v from the heap in O(log n) using its back-pointer, the
// same trick container/heap.Remove plays with an explicit index.
func (h *Heap[T]) Remove(v T) T {
	i := v.heapIndex()
	n := len(h.entries) - 1
	if i != n {
		h.swap(i, n)
		h.entries = h.entries[:n]
		h.siftDown(i)
		h.siftUp(i)
	} else {
		h.entries = h.entries[:n]
	}
	v.setHeapIndex(heapIndexUnset)
	return v
}

func (h *Heap[T]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(i, parent) {
			break
		}
		h.swap(i, parent)
		i = parent
	}
}

func (h *Heap[T]) siftDown(i int) {
	n := len(h.entries)
	for {
		left := 2*i + 1
		if left >= n {
			return
		}
		smallest := left
		if right := left + 1; right < n && h.less(right, left) {
			smallest = right
		}
		if !h.less(smallest, i) {
			return
		}
		h.swap(i, smallest)
		i = smallest
	}
}
