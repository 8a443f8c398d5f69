// Package clock implements the logical monotonic clock of spec.md §4.6: a
// nanosecond counter advanced from the physical clock source's tick
// callback, a time-ordered queue of one-shot deadline callbacks, and the
// only form of sleep available before the scheduler exists
// (sleep_busy). Callback storage is grounded on the priority-queue shape
// the runnable heap (sched package) also needs — container/heap is the
// idiomatic stdlib choice here; no third-party priority-queue library
// applies below a freestanding kernel with no host OS underneath it.
package clock

import (
	"container/heap"

	"github.com/nyxkernel/corekernel/cpu"
	"github.com/nyxkernel/corekernel/klog"
	"github.com/nyxkernel/corekernel/spinlock"
)

// Callback is a one-shot deadline handler. Runs in interrupt-tick context:
// must be short, and must not acquire any lock that outer task code might
// already be holding across interrupts (spec.md §4.6).
type Callback func()

type entry struct {
	deadline uint64
	seq      uint64
	fn       Callback
}

type entryHeap []entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].seq < h[j].seq
}
func (h entryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x interface{}) { *h = append(*h, x.(entry)) }
func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Clock is the logical clock's state: nowNs plus the pending callback
// queue, exclusively mutated under lock per spec.md §5's shared-resource
// policy.
type Clock struct {
	lock     spinlock.Lock
	nowNs    uint64
	pending  entryHeap
	nextSeq  uint64
}

// New returns a Clock starting at zero. There is exactly one of these in
// the running kernel; cmd/kernel owns it and wires it to hpet/pit's
// on-tick hook.
func New() *Clock {
	c := &Clock{}
	heap.Init(&c.pending)
	return c
}

// Now returns the current logical time in nanoseconds.
func (c *Clock) Now() uint64 {
	g := c.lock.Lock()
	defer g.Release()
	return c.nowNs
}

// ScheduleAt registers fn to run once the clock reaches deadlineNs. A
// deadline already in the past fires on the next Tick, per spec.md §8's
// boundary behavior.
func (c *Clock) ScheduleAt(deadlineNs uint64, fn Callback) {
	g := c.lock.Lock()
	defer g.Release()
	seq := c.nextSeq
	c.nextSeq++
	heap.Push(&c.pending, entry{deadline: deadlineNs, seq: seq, fn: fn})
}

// Tick advances the logical clock by deltaNs (the elapsed time the
// physical clock source computed from its own counter delta, so missed
// ticks are still accounted for) and fires every callback whose deadline
// has now passed, in ascending deadline order. Registered as the on-tick
// hook with the physical clock source; runs in interrupt-tick context.
func (c *Clock) Tick(deltaNs uint64) {
	g := c.lock.Lock()
	c.nowNs += deltaNs
	now := c.nowNs

	var due []Callback
	for c.pending.Len() > 0 && c.pending[0].deadline <= now {
		e := heap.Pop(&c.pending).(entry)
		due = append(due, e.fn)
	}
	g.Release()

	for _, fn := range due {
		runCallback(fn)
	}
}

// runCallback invokes fn, recovering a panic so one bad callback does not
// take down the tick handler — spec.md §7's "recoverable" case.
func runCallback(fn Callback) {
	defer func() {
		if r := recover(); r != nil {
			klog.Emergency("clock: callback panicked, continuing")
		}
	}()
	fn()
}

// SleepBusy loops halting the CPU (wait-for-interrupt) until Now() has
// advanced by at least ms milliseconds. This is the only permissible form
// of sleep before the scheduler is active (spec.md §4.6).
func (c *Clock) SleepBusy(ms uint64) {
	target := c.Now() + ms*1_000_000
	for c.Now() < target {
		cpu.Hlt()
	}
}
