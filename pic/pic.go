// Package pic masks the legacy 8259 programmable interrupt controller.
// The core routes everything through the IO/local controller pair (LAPIC
// + IOAPIC); the 8259 must be fully masked during interrupt.Init so it
// never races the IOAPIC for the same lines, per spec.md §4.4.
package pic

import "github.com/nyxkernel/corekernel/cpu"

const (
	masterCommand = 0x20
	masterData    = 0x21
	slaveCommand  = 0xA0
	slaveData     = 0xA1

	maskAll = 0xFF
)

// PortWriter is the byte-wide port-I/O seam MaskAll writes through.
// Production wires CPUPort (real OUT instructions, privileged and
// unavailable to a hosted test binary); tests supply a recording fake.
type PortWriter interface {
	Outb(port uint16, val uint8)
}

// CPUPort is the real 8259 command/data port window.
type CPUPort struct{}

func (CPUPort) Outb(port uint16, val uint8) { cpu.Outb(port, val) }

// MaskAll masks every line on both the master and slave 8259s.
func MaskAll(p PortWriter) {
	p.Outb(masterData, maskAll)
	p.Outb(slaveData, maskAll)
}
