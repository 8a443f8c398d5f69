// Package hpet implements the primary clock source of spec.md §4.5: the
// high-precision event timer. It reads its femtosecond tick period out of
// the capabilities register, programs comparator 0 in periodic mode at a
// 1 ms interval, and exposes clocksrc.Source.
//
// The two-phase comparator program sequence (write the accumulator value
// once to arm periodic mode, once more to set the actual comparator
// value) is not spelled out in spec.md §4.5 beyond "configures comparator
// 0 in periodic mode"; it is supplemented here from the original source's
// src/arch/x86_64/hpet.rs, per SPEC_FULL.md §C.
package hpet

import (
	"sync/atomic"

	"github.com/nyxkernel/corekernel/clocksrc"
	"github.com/nyxkernel/corekernel/layout"
)

// Register offsets within the HPET's 1 KiB MMIO window.
const (
	regCapabilities = 0x000
	regConfig       = 0x010
	regCounter      = 0x0F0

	timer0ConfigBase = 0x100
	timer0CompBase   = 0x108

	configEnable = 1 << 0

	timerCfgPeriodic    = 1 << 3
	timerCfgSetValAllow = 1 << 6

	periodShift = 32
)

// regs64 is the tiny MMIO seam tests fake out, same pattern as
// interrupt.mmio32 but for 64-bit registers, since every HPET register is
// a full qword.
type regs64 interface {
	Read64(offset uintptr) uint64
	Write64(offset uintptr, val uint64)
}

// HPET is the running comparator-0 periodic timer.
type HPET struct {
	regs       regs64
	periodNs   uint64
	lastCount  uint64
	onTick     atomic.Pointer[clocksrc.TickFunc]
}

// Init reads the capabilities register, derives the tick period, arms
// comparator 0 in periodic mode for a 1 ms interval, and enables the main
// counter. Returns a Source ready for clock.Clock to be wired to via
// OnTick.
func Init(regs regs64) (*HPET, error) {
	h := &HPET{regs: regs}

	caps := regs.Read64(regCapabilities)
	periodFs := caps >> periodShift
	h.periodNs = periodFs / 1_000_000 // femtoseconds -> nanoseconds

	ticksPerMs := layout.TickIntervalNs / h.periodNs
	if ticksPerMs == 0 {
		ticksPerMs = 1
	}

	// Phase 1: arm periodic mode and allow writing the comparator's
	// accumulator directly.
	regs.Write64(timer0ConfigBase, timerCfgPeriodic|timerCfgSetValAllow)
	// Phase 2: set the actual comparator period.
	regs.Write64(timer0CompBase, ticksPerMs)
	// Re-arm so the *next* periodic reload also uses ticksPerMs (the
	// first write above only seeds the comparator; HPET hardware latches
	// the periodic accumulator on a second write while the allow bit is
	// still set).
	regs.Write64(timer0CompBase, ticksPerMs)

	regs.Write64(regConfig, configEnable)
	h.lastCount = regs.Read64(regCounter)

	return h, nil
}

// GetTimeNs returns the current main-counter value converted to
// nanoseconds.
func (h *HPET) GetTimeNs() uint64 {
	return h.regs.Read64(regCounter) * h.periodNs
}

// OnTick installs the callback invoked by HandleInterrupt.
func (h *HPET) OnTick(fn clocksrc.TickFunc) {
	h.onTick.Store(&fn)
}

// HandleInterrupt is registered as the interrupt.HandlerFunc for
// VectorTimer. It computes the elapsed time since the previous tick from
// the counter delta (so missed ticks are still counted, per spec.md
// §4.5) and invokes the installed tick callback.
func (h *HPET) HandleInterrupt(uint8) {
	count := h.regs.Read64(regCounter)
	delta := (count - h.lastCount) * h.periodNs
	h.lastCount = count

	if fn := h.onTick.Load(); fn != nil {
		(*fn)(delta)
	}
}

// TickIntervalNs is the configured tick rate; always layout.TickIntervalNs
// once Init succeeds.
func (h *HPET) TickIntervalNs() uint64 {
	return layout.TickIntervalNs
}
