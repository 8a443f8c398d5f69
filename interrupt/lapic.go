package interrupt

// Local controller (LAPIC) register offsets, per the MMIO layout the
// platform exposes at InterruptControllers.LocalControllerAddr.
const (
	lapicRegID        = 0x020
	lapicRegEOI       = 0x0B0
	lapicRegSpurious  = 0x0F0
	lapicSpuriousEn   = 0x100 // APIC software-enable bit
)

type localController struct {
	regs mmio32
}

func newLocalController(regs mmio32) *localController {
	return &localController{regs: regs}
}

// id returns this processor's local controller id, read out of the ID
// register's top byte.
func (l *localController) id() uint8 {
	return uint8(l.regs.Read32(lapicRegID) >> 24)
}

// enable sets the spurious-interrupt vector and the software-enable bit,
// completing local controller bring-up per spec.md §4.4.
func (l *localController) enable(spuriousVector uint8) {
	l.regs.Write32(lapicRegSpurious, uint32(spuriousVector)|lapicSpuriousEn)
}

// eoi writes the end-of-interrupt register. Every interrupt handler must
// call this (via Controller.EndOfInterrupt) before returning.
func (l *localController) eoi() {
	l.regs.Write32(lapicRegEOI, 0)
}
