// Package sched implements C8 of spec.md: task creation, the runnable
// heap, the architectural context switch, preemption, and sleep/wake.
//
// Task stack pre-seeding (the shape pushed onto a brand-new task's stack
// so the first switch into it lands at the entry trampoline with its
// argument) is supplemented from the original source's
// src/kernel/sched/task.rs: a fixed entry-point return address just above
// six zeroed callee-saved-register slots, and the task's own identity
// placed just above that return address for the trampoline to consume.
// See entry_amd64.s/entry_amd64.go for the switch-side half of this.
package sched

import (
	"unsafe"

	"github.com/nyxkernel/corekernel/layout"
)

const flagRunnable uint64 = 1 << 0

// TaskInfo is the fixed-size header at offset 0 of every 8 KiB task
// region, per spec.md §3. The remainder of the region is the task's
// kernel stack, growing downward from the top.
type TaskInfo struct {
	ID              uint64
	SavedSP         uintptr
	SavedPageRoot   uintptr
	LastScheduledNs uint64
	RunUntilNs      uint64
	TotalRuntimeNs  uint64
	Flags           uint64
}

func (t *TaskInfo) Runnable() bool    { return t.Flags&flagRunnable != 0 }
func (t *TaskInfo) SetRunnable(v bool) {
	if v {
		t.Flags |= flagRunnable
	} else {
		t.Flags &^= flagRunnable
	}
}

// Task owns one 8 KiB naturally-aligned region: TaskInfo at the base,
// kernel stack in the remainder. raw keeps the oversized backing array
// alive (and thus the aligned region within it) for as long as the Task
// exists — nothing else holds a reference into the middle of raw.
type Task struct {
	raw     []byte
	base    uintptr
	Info    *TaskInfo
	Body    func()
	started bool
}

// newTaskRegion allocates an 8 KiB naturally-aligned region. Go's
// allocator gives no alignment guarantee for an 8 KiB slice, so this over-
// allocates and aligns within the buffer, exactly the kind of bump-
// allocator-adjacent concern spec.md §1 scopes out of the core — the core
// only needs *an* aligned region, not a general-purpose allocator.
func newTaskRegion() (raw []byte, base uintptr) {
	raw = make([]byte, layout.TaskRegionSize*2)
	start := uintptr(unsafe.Pointer(&raw[0]))
	base = (start + layout.TaskRegionSize - 1) &^ uintptr(layout.TaskRegionSize-1)
	return raw, base
}

// TaskInfoAt recovers a TaskInfo pointer by masking any address within
// its 8 KiB region with ~(8 KiB - 1), per spec.md §3's invariant. This is
// how "current task" is identified without any global variable.
func TaskInfoAt(addr uintptr) *TaskInfo {
	return (*TaskInfo)(unsafe.Pointer(layout.AlignedTaskBase(addr)))
}

// entryFrameSize is the 64 bytes newTask reserves at the top of a fresh
// task's stack: six zeroed callee-saved-register slots (matching
// cpu.SwitchTo's push/pop order), the trampoline's own entry address, and
// the task pointer the trampoline recovers once it lands. Grounded on the
// original source's src/kernel/sched/task.rs pre-seeded stack layout.
const entryFrameSize = 64

// newTask allocates a region, fills in TaskInfo, and pre-seeds the top of
// the stack so the first architectural switch into it lands at
// taskEntryTrampoline (entry_amd64.s) with this task's pointer waiting
// just above the trampoline's own return address. body is the fixed
// task-body function runTaskEntry (entry_amd64.go) calls once the
// trampoline has recovered it.
func newTask(id uint64, pageRoot uintptr, body func()) *Task {
	raw, base := newTaskRegion()
	info := (*TaskInfo)(unsafe.Pointer(base))
	*info = TaskInfo{
		ID:            id,
		SavedPageRoot: pageRoot,
		Flags:         flagRunnable,
	}

	t := &Task{raw: raw, base: base, Info: info, Body: body}

	top := t.stackTop()
	frame := top - entryFrameSize
	slots := (*[8]uint64)(unsafe.Pointer(frame))
	slots[0] = 0 // R15
	slots[1] = 0 // R14
	slots[2] = 0 // R13
	slots[3] = 0 // R12
	slots[4] = 0 // BP
	slots[5] = 0 // BX
	slots[6] = uint64(trampolineEntryAddr())
	slots[7] = uint64(uintptr(unsafe.Pointer(t)))

	t.Info.SavedSP = frame
	return t
}

// stackTop returns the address one past the top of the task's stack.
func (t *Task) stackTop() uintptr {
	return t.base + layout.TaskRegionSize
}
