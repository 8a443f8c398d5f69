package boot

import "errors"

// ErrInvalidHandoff is returned when the handoff record fails the
// shallow sanity check Handoff performs (spec.md §4.1: "fails only by
// aborting if the record is obviously invalid").
var ErrInvalidHandoff = errors.New("boot: invalid handoff record")
