// Scheduler ties the pieces of C8 together: task creation, the runnable
// heap, the virtual-runtime-ordered switch procedure, preemption, and
// sleep/wake via the logical clock's deadline callbacks.
//
// A note on how this package models "current task": spec.md §4.8 derives
// the running task by masking the live stack pointer, specifically so no
// global variable is needed. This package keeps a `current *Task` field
// as a convenience for CurrentTask() callers, but it is not load-bearing
// for the switch itself — archSwitch hands control to the real
// architectural mechanism (cpu.SwitchTo, switch_amd64.go), and TaskInfoAt
// (task.go) independently implements and is tested against the real
// masking invariant spec.md §8 asks for.
package sched

import (
	"container/heap"

	"github.com/nyxkernel/corekernel/clock"
	"github.com/nyxkernel/corekernel/clocksrc"
	"github.com/nyxkernel/corekernel/kernelerr"
	"github.com/nyxkernel/corekernel/layout"
	"github.com/nyxkernel/corekernel/spinlock"
)

// Scheduler owns the task table, the runnable heap, and the scheduler
// lock that serializes every mutation of either, per spec.md §5's
// shared-resource policy.
type Scheduler struct {
	lock spinlock.Lock

	tasks    map[uint64]*Task
	runnable taskHeap
	nextID   uint64
	nextSeq  uint64

	current *Task

	// pendingRelease is the guard covering whichever switch is currently
	// in flight, set immediately before every switchTo call and consumed
	// exactly once on the other side — by archSwitch itself if the
	// incoming task is resuming mid-call, or by runTaskEntry if it is
	// running for the first time. Since only one logical execution
	// context is ever live on this single CPU, there is never more than
	// one outstanding guard to track.
	pendingRelease *spinlock.Guard

	timeSource   clocksrc.Source
	logicalClock *clock.Clock
}

// New creates a Scheduler with task 0 (the idle task) present and
// running. idleBody is the idle loop's body (conventionally: halt until
// interrupted, forever).
func New(timeSource clocksrc.Source, logicalClock *clock.Clock, idleBody func()) *Scheduler {
	s := &Scheduler{
		tasks:        make(map[uint64]*Task),
		nextID:       1,
		timeSource:   timeSource,
		logicalClock: logicalClock,
	}
	heap.Init(&s.runnable)

	idle := newTask(0, 0, idleBody)
	idle.Info.LastScheduledNs = timeSource.GetTimeNs()
	idle.started = true // idle is "running" from boot, not entered via the trampoline
	s.tasks[0] = idle
	s.current = idle
	activeScheduler = s
	return s
}

// CreateTask allocates a task, pre-seeds its stack, and pushes it onto
// the runnable heap. Returns its id (always > 0 — id 0 is permanently
// reserved for the idle task, and ids are monotonic, so the collision
// spec.md §8 calls out as impossible never arises by construction).
func (s *Scheduler) CreateTask(pageRoot uintptr, body func()) uint64 {
	g := s.lock.Lock()
	defer g.Release()

	id := s.nextID
	s.nextID++

	t := newTask(id, pageRoot, body)
	s.tasks[id] = t
	s.pushRunnableLocked(t)
	return id
}

func (s *Scheduler) pushRunnableLocked(t *Task) {
	seq := s.nextSeq
	s.nextSeq++
	heap.Push(&s.runnable, taskHeapEntry{task: t, seq: seq})
}

// pickNextLocked pops the minimum-runtime runnable task, or returns the
// idle task if the heap is empty.
func (s *Scheduler) pickNextLocked() *Task {
	if s.runnable.Len() == 0 {
		return s.tasks[0]
	}
	e := heap.Pop(&s.runnable).(taskHeapEntry)
	return e.task
}

// Switch performs the switch procedure of spec.md §4.8. Must be called
// while holding the scheduler lock; guard is released as part of the
// architectural switch, per the requirement that the real guard survive
// across the stack swap and only be dropped once execution resumes on
// the incoming task's stack (spec.md §4.7).
func (s *Scheduler) Switch(guard *spinlock.Guard) {
	now := s.timeSource.GetTimeNs()
	taskCount := uint64(len(s.tasks))
	if taskCount == 0 {
		taskCount = 1
	}

	outgoing := s.current
	if outgoing != nil {
		outgoing.Info.TotalRuntimeNs += (now - outgoing.Info.LastScheduledNs) * taskCount
		if outgoing.Info.Runnable() && outgoing.Info.ID != 0 {
			s.pushRunnableLocked(outgoing)
		}
	}

	incoming := s.pickNextLocked()
	incoming.Info.LastScheduledNs = now
	incoming.Info.RunUntilNs = now + layout.SchedLatencyNs/taskCount

	s.current = incoming
	s.archSwitch(outgoing, incoming, guard)
}

// archSwitch is the architecture-level context switch: hand outgoing's
// and incoming's saved-stack state to switchTo, which does the actual
// register-save/RSP-swap/CR3-reload work (cpu.SwitchTo in production,
// switch_amd64.go), and release whichever guard is covering this
// transition once switchTo returns.
//
// switchTo returning here at all is specific to incoming having already
// run before: switchTo's RET lands back in the outgoing stack's own call
// site, which is this exact line, only when that stack has a real return
// address to resume — i.e. incoming was previously switched away from
// mid-call. For a task running for the first time, switchTo's RET lands
// at the pre-seeded trampoline (entry_amd64.s) instead, which releases
// the guard itself (runTaskEntry, entry_amd64.go) and calls Body — this
// line is never reached for that transition, so releasePending's no-op
// guard against a nil pendingRelease is what keeps this call harmless
// rather than a double release.
func (s *Scheduler) archSwitch(outgoing, incoming *Task, guard *spinlock.Guard) {
	s.pendingRelease = guard
	switchTo(outgoing, incoming)
	s.releasePending()
}

// releasePending consumes whichever guard is covering the switch that
// just brought the current context in, releasing it exactly once no
// matter which side of the switch observes it first.
func (s *Scheduler) releasePending() {
	g := s.pendingRelease
	if g == nil {
		return
	}
	s.pendingRelease = nil
	g.Release()
}

// CurrentTask returns the task the processor is (modeled as) currently
// executing.
func (s *Scheduler) CurrentTask() *Task {
	g := s.lock.Lock()
	defer g.Release()
	return s.current
}

// Yield voluntarily gives up the processor: acquire scheduler lock,
// switch.
func (s *Scheduler) Yield() {
	g := s.lock.Lock()
	s.Switch(g)
}

// CheckRuntime implements preemption: called by the device-interrupt
// shim after its handler returns and before EOI (interrupt.Controller's
// postHandler hook). If the current task's run_until_ns has passed, a
// full switch happens; otherwise the lock is simply released.
func (s *Scheduler) CheckRuntime(uint8) {
	g := s.lock.Lock()
	now := s.timeSource.GetTimeNs()
	if s.current != nil && now >= s.current.Info.RunUntilNs {
		s.Switch(g)
		return
	}
	g.Release()
}

// Sleep suspends the current task for ms milliseconds: its runnable bit
// is cleared, a logical-clock callback is registered to set it again and
// push it back onto the runnable heap once the deadline passes, and the
// switch procedure runs. Sleeping for 0 ms still goes through this path —
// the deadline is already due, so the wake callback fires on the very
// next tick, which is the boundary behavior spec.md §8 calls equivalent
// to Yield.
func (s *Scheduler) Sleep(ms uint64) {
	g := s.lock.Lock()

	until := s.logicalClock.Now() + ms*1_000_000
	cur := s.current
	cur.Info.SetRunnable(false)

	s.logicalClock.ScheduleAt(until, func() {
		wg := s.lock.Lock()
		defer wg.Release()
		cur.Info.SetRunnable(true)
		if cur.Info.ID != 0 {
			s.pushRunnableLocked(cur)
		}
	})

	s.Switch(g)
}

// TaskByID looks up a task by handle. An unknown id is fatal at runtime
// per spec.md §7's classification, so this halts rather than returning
// kernelerr.ErrInvalidTaskHandle to a caller that would have to remember
// to check it.
func (s *Scheduler) TaskByID(id uint64) (*Task, error) {
	g := s.lock.Lock()
	defer g.Release()
	t, ok := s.tasks[id]
	if !ok {
		kernelerr.Halt(kernelerr.ErrInvalidTaskHandle)
	}
	return t, nil
}

// TaskCount returns the number of tasks currently known to the scheduler
// (including the idle task).
func (s *Scheduler) TaskCount() int {
	g := s.lock.Lock()
	defer g.Release()
	return len(s.tasks)
}
