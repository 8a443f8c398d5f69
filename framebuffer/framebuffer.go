// Package framebuffer describes the boot-handed graphical surface. This is
// a produced-output-only external collaborator per spec.md §1: the core
// decodes its geometry out of the handoff record (boot.Handoff) and never
// touches the pixel contents itself.
package framebuffer

// PixelFormat enumerates the handoff record's pixel-format tag.
type PixelFormat uint64

const (
	PixelFormatRGB PixelFormat = iota
	PixelFormatBGR
	PixelFormatBitMask
	PixelFormatBltOnly
)

// View is the kernel-side mutable byte slice plus geometry, borrowed
// (never copied) from the physical framebuffer the loader identified.
type View struct {
	Pixels       []byte
	Width        uint64
	Height       uint64
	PixelsPerRow uint64
	Format       PixelFormat
}
