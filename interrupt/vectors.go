package interrupt

// Fixed interrupt vector map, per spec.md §6.
const (
	VectorGeneralProtection uint8 = 0x0D
	VectorPageFault         uint8 = 0x0E

	VectorTimer  uint8 = 0x20 // IO controller line 2
	VectorKbd    uint8 = 0x21 // line 1
	VectorSerial uint8 = 0x24 // line 4

	VectorDynamicFirst uint8 = 0x26
	VectorDynamicLast  uint8 = 0x7F

	VectorSpurious uint8 = 0xFF

	lineTimer  uint8 = 2
	lineKbd    uint8 = 1
	lineSerial uint8 = 4
	lineMouse  uint8 = 12
)

// numIDTEntries is the size of the fixed IDT, at least 40 per spec.md §3.
const numIDTEntries = 128

// numVectorSlots is the size of the per-vector handler slot array
// (vectors 0..127), per spec.md §3.
const numVectorSlots = 128
