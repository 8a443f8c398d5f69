package interrupt

import "testing"

func TestLocalControllerID(t *testing.T) {
	regs := newFakeMMIO()
	regs.Write32(lapicRegID, 5<<24)
	l := newLocalController(regs)

	if got := l.id(); got != 5 {
		t.Fatalf("id() = %d, want 5", got)
	}
}

func TestLocalControllerEnableSetsSpuriousVectorAndEnableBit(t *testing.T) {
	regs := newFakeMMIO()
	l := newLocalController(regs)
	l.enable(VectorSpurious)

	got := regs.Read32(lapicRegSpurious)
	if got&0xFF != uint32(VectorSpurious) {
		t.Fatalf("spurious vector = %#x, want %#x", got&0xFF, VectorSpurious)
	}
	if got&lapicSpuriousEn == 0 {
		t.Fatal("software-enable bit not set")
	}
}

func TestLocalControllerEOIWritesZero(t *testing.T) {
	regs := newFakeMMIO()
	regs.Write32(lapicRegEOI, 0xFF)
	l := newLocalController(regs)
	l.eoi()

	if got := regs.Read32(lapicRegEOI); got != 0 {
		t.Fatalf("EOI register = %#x, want 0", got)
	}
}
