package orchestrator

import (
	"container/heap"

	"github.com/nao1215/archivist/internal/model"
)

// frontierQueue orders model.FrontierEntry values by (Priority, Depth,
// Sequence), ascending: lower priority numbers dequeue first (admission
// assigns 0 to main-content candidates and 1 to navigation candidates),
// ties broken by shallower depth, then by discovery order. This is the
// "ordered set of not-yet-fetched admitted URLs" the glossary describes.
type frontierQueue struct {
	entries []model.FrontierEntry
}

func newFrontierQueue() *frontierQueue {
	return &frontierQueue{}
}

func (q *frontierQueue) Len() int { return len(q.entries) }

func (q *frontierQueue) Less(i, j int) bool {
	a, b := q.entries[i], q.entries[j]
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	if a.Depth != b.Depth {
		return a.Depth < b.Depth
	}
	return a.Sequence < b.Sequence
}

func (q *frontierQueue) Swap(i, j int) {
	q.entries[i], q.entries[j] = q.entries[j], q.entries[i]
}

func (q *frontierQueue) Push(x any) {
	q.entries = append(q.entries, x.(model.FrontierEntry))
}

func (q *frontierQueue) Pop() any {
	old := q.entries
	n := len(old)
	entry := old[n-1]
	q.entries = old[:n-1]
	return entry
}

// push inserts entry, maintaining heap order.
func (q *frontierQueue) push(entry model.FrontierEntry) {
	heap.Push(q, entry)
}

// pop removes and returns the next entry to fetch. ok is false when the
// frontier is empty.
func (q *frontierQueue) pop() (model.FrontierEntry, bool) {
	if q.Len() == 0 {
		return model.FrontierEntry{}, false
	}
	return heap.Pop(q).(model.FrontierEntry), true
}
