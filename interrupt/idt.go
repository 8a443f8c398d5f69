package interrupt

// idtEntry is one 16-byte x86-64 interrupt-gate descriptor. Per spec.md
// §3, an entry is either unused (present=0) or active (present=1,
// type=interrupt-gate); transitions only happen during init — runtime
// changes touch the redirection table and the per-vector slot array, not
// the IDT itself.
type idtEntry struct {
	offsetLow  uint16
	selector   uint16
	ist        uint8
	typeAttr   uint8
	offsetMid  uint16
	offsetHigh uint32
	reserved   uint32
}

const (
	idtTypeInterruptGate = 0xE
	idtPresentBit        = 0x80
	idtDPL0              = 0x00
)

// newIDTEntry builds an active interrupt-gate descriptor pointing at
// handlerAddr in the given code segment selector.
func newIDTEntry(handlerAddr uintptr, selector uint16) idtEntry {
	return idtEntry{
		offsetLow:  uint16(handlerAddr),
		selector:   selector,
		ist:        0,
		typeAttr:   idtPresentBit | idtDPL0 | idtTypeInterruptGate,
		offsetMid:  uint16(handlerAddr >> 16),
		offsetHigh: uint32(handlerAddr >> 32),
	}
}

// Present reports whether the entry is active.
func (e idtEntry) Present() bool {
	return e.typeAttr&idtPresentBit != 0
}

// idtr is the 10-byte image LoadIDT expects: a 2-byte limit followed by
// an 8-byte base.
type idtr struct {
	limit uint16
	base  uint64
}
