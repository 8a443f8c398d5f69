//go:build amd64

// Package cpu provides the architecture primitives the rest of the core
// builds on: port I/O, control-register access, interrupt-flag control and
// the handful of instructions (rdtsc, hlt, pause, invlpg) that have no
// stdlib equivalent. Bodies live in cpu_amd64.s, in the style of the
// teacher's runtime-provided intrinsics (runtime.Rdtsc, runtime.IRQwake)
// and tamago's internal/reg register-access helpers.
package cpu

// Outb writes a byte to an IO port.
//
//go:noescape
func Outb(port uint16, val uint8)

// Inb reads a byte from an IO port.
//
//go:noescape
func Inb(port uint16) uint8

// Outl writes a dword to an IO port.
//
//go:noescape
func Outl(port uint16, val uint32)

// Inl reads a dword from an IO port.
//
//go:noescape
func Inl(port uint16) uint32

// Rdtsc returns the processor timestamp counter.
//
//go:noescape
func Rdtsc() uint64

// Hlt halts the processor until the next interrupt.
//
//go:noescape
func Hlt()

// Pause issues the spin-wait hint instruction between test-and-set
// attempts, per the original source's spinlock loop.
//
//go:noescape
func Pause()

// Cli disables maskable interrupts and returns nothing; callers needing
// the prior state should use SaveFlagsCli.
//
//go:noescape
func Cli()

// Sti enables maskable interrupts.
//
//go:noescape
func Sti()

// SaveFlagsCli atomically reads RFLAGS and disables interrupts, returning
// whether interrupts were enabled beforehand (the IF bit).
//
//go:noescape
func SaveFlagsCli() bool

// ReadCR3 returns the current page-table root.
//
//go:noescape
func ReadCR3() uintptr

// WriteCR3 loads a new page-table root, flushing the TLB.
//
//go:noescape
func WriteCR3(root uintptr)

// Invlpg invalidates a single TLB entry.
//
//go:noescape
func Invlpg(addr uintptr)

// LoadIDT loads the interrupt descriptor table from a 10-byte IDTR image
// (2-byte limit, 8-byte base).
//
//go:noescape
func LoadIDT(idtr uintptr)

// LoadGDT loads the global descriptor table from a 10-byte GDTR image.
//
//go:noescape
func LoadGDT(gdtr uintptr)

// ReloadSegments reloads CS via a far return and DS/ES/SS/FS/GS from the
// given flat data selector; called by gdt's Table.Install.
//
//go:noescape
func ReloadSegments(codeSel, dataSel uint16)

// SwitchTo performs the architectural half of a task context switch:
// saves the six callee-saved registers of the currently running stack
// and stores its RSP into *savedSP, then loads newSP into RSP (and, if
// switchCR3 is set, newCR3 into CR3) before returning — which, for a
// stack that has never run before, "returns" into whatever entry point
// was pre-seeded as its return address rather than back to this
// function's caller. savedSP may be nil, for the very first switch away
// from a context with nothing worth saving.
//
//go:noescape
func SwitchTo(savedSP *uintptr, newSP uintptr, newCR3 uintptr, switchCR3 bool)
