package pic

import "testing"

type fakePort struct {
	writes map[uint16]uint8
}

func newFakePort() *fakePort {
	return &fakePort{writes: make(map[uint16]uint8)}
}

func (p *fakePort) Outb(port uint16, val uint8) {
	p.writes[port] = val
}

func TestMaskAllMasksBothControllers(t *testing.T) {
	p := newFakePort()
	MaskAll(p)

	if p.writes[masterData] != maskAll {
		t.Fatalf("master data port = %#x, want %#x", p.writes[masterData], maskAll)
	}
	if p.writes[slaveData] != maskAll {
		t.Fatalf("slave data port = %#x, want %#x", p.writes[slaveData], maskAll)
	}
}
