// Package kconfig holds the handful of genuinely runtime-tunable knobs the
// core has (clock source choice, log verbosity). A freestanding kernel has
// no environment variables or config files, so these are either compiled
// defaults or decoded from an optional TLV blob the loader may place after
// the handoff record.
package kconfig

import (
	"errors"

	"github.com/nyxkernel/corekernel/klog"
)

// ClockSource selects which periodic tick source hpet/pit wiring prefers.
type ClockSource uint8

const (
	ClockSourceAuto ClockSource = iota
	ClockSourceHPET
	ClockSourcePIT
)

// Config is the decoded (or defaulted) set of boot-time knobs.
type Config struct {
	LogLevel    klog.Level
	Clock       ClockSource
	IdleStackOK bool
}

// Default returns the compiled-in configuration used when the loader
// supplies no config blob.
func Default() Config {
	return Config{
		LogLevel:    klog.LevelInfo,
		Clock:       ClockSourceAuto,
		IdleStackOK: true,
	}
}

// tag values for the TLV config blob.
const (
	tagLogLevel = 1
	tagClock    = 2
)

// ErrTruncatedConfig is returned when the blob ends mid-record.
var ErrTruncatedConfig = errors.New("kconfig: truncated config blob")

// FromHandoff decodes an optional tag-length-value configuration blob.
// Unknown tags are skipped so the format can grow without breaking older
// kernels. A nil or empty blob yields Default().
func FromHandoff(blob []byte) (Config, error) {
	cfg := Default()
	if len(blob) == 0 {
		return cfg, nil
	}
	for off := 0; off < len(blob); {
		if off+2 > len(blob) {
			return cfg, ErrTruncatedConfig
		}
		tag := blob[off]
		length := int(blob[off+1])
		off += 2
		if off+length > len(blob) {
			return cfg, ErrTruncatedConfig
		}
		val := blob[off : off+length]
		off += length

		switch tag {
		case tagLogLevel:
			if length >= 1 {
				cfg.LogLevel = klog.Level(val[0])
			}
		case tagClock:
			if length >= 1 {
				cfg.Clock = ClockSource(val[0])
			}
		default:
			// unknown tag: already skipped by the off advance above
		}
	}
	return cfg, nil
}
