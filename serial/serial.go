// Package serial declares the external collaborator interface for the
// UART byte device. The device itself (a 16550-style driver) is out of
// scope for the core per spec.md §1; this package exists only so the core
// has something concrete to log diagnostics and panics to, per §7.
package serial

// Port is the minimal surface the core depends on. A real driver
// implements Write over the 16550 register set; tests use Null or a
// buffering fake.
type Port interface {
	WriteByte(b byte) error
	Write(p []byte) (int, error)
}

// Null discards everything written to it. Used before the real serial
// driver is brought up, and in tests that don't care about log output.
type Null struct{}

func (Null) WriteByte(byte) error      { return nil }
func (Null) Write(p []byte) (int, error) { return len(p), nil }

// Buffer is an in-memory Port, used by tests to assert on what the core
// logged without touching real hardware.
type Buffer struct {
	data []byte
}

func (b *Buffer) WriteByte(c byte) error {
	b.data = append(b.data, c)
	return nil
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

// String returns everything written so far.
func (b *Buffer) String() string {
	return string(b.data)
}
