package utils

import "sync/atomic"

var acceleratorsHidden atomic.Bool

// HideAccelerators restricts device creation to the general-purpose CPU for
// the rest of the process. Call it once at startup, before any device is
// created.
func HideAccelerators() {
	acceleratorsHidden.Store(true)
}

// AcceleratorsVisible reports whether parallel and GPU backends may be used
func AcceleratorsVisible() bool {
	return !acceleratorsHidden.Load()
}
