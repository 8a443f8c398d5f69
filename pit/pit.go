// Package pit implements the legacy programmable interval timer fallback
// clock source, used when the HPET's ACPI table is missing (spec.md
// §4.5 permits either falling back to the PIT or panicking; this core
// falls back). Same clocksrc.Source interface as hpet, so cmd/kernel can
// wire whichever one came up without the rest of the core caring.
//
// The 1.193182 MHz base-frequency divisor arithmetic is supplemented from
// the original source's src/arch/x86_64/pit.rs, per SPEC_FULL.md §C.
package pit

import (
	"sync/atomic"

	"github.com/nyxkernel/corekernel/clocksrc"
	"github.com/nyxkernel/corekernel/cpu"
	"github.com/nyxkernel/corekernel/layout"
)

const (
	portChannel0 = 0x40
	portCommand  = 0x43

	modeSquareWave  = 0x36 // channel 0, lobyte/hibyte, mode 3, binary
	baseFrequencyHz = 1_193_182
	targetHz        = 1000 // 1 ms tick, matching layout.TickIntervalNs
)

// PIT is the running rate-generator fallback clock source.
type PIT struct {
	divisor  uint16
	elapsed  uint64
	onTick   atomic.Pointer[clocksrc.TickFunc]
}

// Init programs channel 0 in mode 3 (square wave) at ~1 kHz.
func Init() (*PIT, error) {
	divisor := uint16(baseFrequencyHz / targetHz)
	cpu.Outb(portCommand, modeSquareWave)
	cpu.Outb(portChannel0, uint8(divisor))
	cpu.Outb(portChannel0, uint8(divisor>>8))
	return &PIT{divisor: divisor}, nil
}

// GetTimeNs returns elapsed nanoseconds since Init, accumulated tick by
// tick (the PIT, unlike the HPET, exposes no free-running counter a
// driver can read directly once armed in rate-generator mode).
func (p *PIT) GetTimeNs() uint64 {
	return atomic.LoadUint64(&p.elapsed)
}

// OnTick installs the callback invoked by HandleInterrupt.
func (p *PIT) OnTick(fn clocksrc.TickFunc) {
	p.onTick.Store(&fn)
}

// HandleInterrupt is registered as the interrupt.HandlerFunc for
// VectorTimer. The PIT ticks at a fixed, known rate, so unlike the HPET
// there is no counter delta to compute — every interrupt is exactly one
// tick interval.
func (p *PIT) HandleInterrupt(uint8) {
	atomic.AddUint64(&p.elapsed, layout.TickIntervalNs)
	if fn := p.onTick.Load(); fn != nil {
		(*fn)(layout.TickIntervalNs)
	}
}
