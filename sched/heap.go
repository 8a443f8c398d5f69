package sched

// taskHeap is the runnable priority queue of spec.md §3: tasks whose
// runnable bit is set and which are not the currently executing task,
// ordered by ascending TotalRuntimeNs (min-heap on runtime). Ties are
// broken by insertion order, for a stable pick within a single pop.
type taskHeap struct {
	items []*Task
	seq   []uint64
}

func (h *taskHeap) Len() int { return len(h.items) }

func (h *taskHeap) Less(i, j int) bool {
	ri, rj := h.items[i].Info.TotalRuntimeNs, h.items[j].Info.TotalRuntimeNs
	if ri != rj {
		return ri < rj
	}
	return h.seq[i] < h.seq[j]
}

func (h *taskHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.seq[i], h.seq[j] = h.seq[j], h.seq[i]
}

func (h *taskHeap) Push(x interface{}) {
	e := x.(taskHeapEntry)
	h.items = append(h.items, e.task)
	h.seq = append(h.seq, e.seq)
}

func (h *taskHeap) Pop() interface{} {
	n := len(h.items)
	t := h.items[n-1]
	s := h.seq[n-1]
	h.items = h.items[:n-1]
	h.seq = h.seq[:n-1]
	return taskHeapEntry{task: t, seq: s}
}

type taskHeapEntry struct {
	task *Task
	seq  uint64
}
