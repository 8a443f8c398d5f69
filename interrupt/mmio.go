package interrupt

import "unsafe"

// mmio32 is the tiny seam between the LAPIC/IOAPIC register windows and
// the rest of the package, so tests can supply an in-memory fake instead
// of touching real MMIO (spec.md's ambient test-tooling requirement —
// see SPEC_FULL.md §A.4). Grounded on tamago's internal/reg pattern of a
// narrow register-access interface wrapping raw pointer math.
type mmio32 interface {
	Read32(offset uintptr) uint32
	Write32(offset uintptr, val uint32)
}

// realMMIO addresses a real MMIO window at a kernel-virtual base.
type realMMIO struct {
	base uintptr
}

func (m realMMIO) Read32(offset uintptr) uint32 {
	return *(*uint32)(unsafe.Pointer(m.base + offset))
}

func (m realMMIO) Write32(offset uintptr, val uint32) {
	*(*uint32)(unsafe.Pointer(m.base + offset)) = val
}

// fakeMMIO backs unit tests: a plain map keyed by offset.
type fakeMMIO struct {
	regs map[uintptr]uint32
}

func newFakeMMIO() *fakeMMIO {
	return &fakeMMIO{regs: make(map[uintptr]uint32)}
}

func (m *fakeMMIO) Read32(offset uintptr) uint32 {
	return m.regs[offset]
}

func (m *fakeMMIO) Write32(offset uintptr, val uint32) {
	m.regs[offset] = val
}

// fakePortWriter backs unit tests in place of pic.CPUPort.
type fakePortWriter struct {
	writes map[uint16]uint8
}

func newFakePortWriter() *fakePortWriter {
	return &fakePortWriter{writes: make(map[uint16]uint8)}
}

func (p *fakePortWriter) Outb(port uint16, val uint8) {
	p.writes[port] = val
}
