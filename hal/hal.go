// Package hal describes the platform capabilities the chip drivers are built
// on: byte-wide port I/O, the interrupt mask and the interrupt callback slots.
//
// Every driver operation that touches a chip more than once brackets its port
// sequence with IRQMask.Disable and IRQMask.Enable. Enable is unconditional,
// so callers must not nest driver operations inside their own masked section.
package hal

// PortIO is the primitive port-read/port-write capability of the platform
type PortIO interface {
	In(port uint8) uint8
	Out(port uint8, value uint8)
}

// IRQMask masks and unmasks the maskable interrupt source
type IRQMask interface {
	Disable()
	Enable()
}

// ControllerReader returns the debounced button state of a controller. n is
// 1 or 2.
type ControllerReader interface {
	Controller(n int) uint16
}

// Delayer waits for approximately the given number of microseconds
type Delayer interface {
	DelayMicroseconds(count int)
}

// BusyDelay is the countdown delay loop. It is only close enough to a
// microsecond on the original hardware.
type BusyDelay struct{}

// DelayMicroseconds implements Delayer
func (BusyDelay) DelayMicroseconds(count int) {
	for ; count > 0; count-- {
	}
}

// Hook is an optional interrupt callback slot
type Hook struct {
	fn func()
}

// VDPHook is called on the VDP frame interrupt.
var VDPHook Hook

// SpinnerHook is called on the spinner interrupt.
var SpinnerHook Hook

// Install sets the callback. The slot is written with the interrupt masked.
func (h *Hook) Install(mask IRQMask, fn func()) {
	mask.Disable()
	h.fn = fn
	mask.Enable()
}

// Clear removes the callback
func (h *Hook) Clear(mask IRQMask) {
	h.Install(mask, nil)
}

// Installed reports whether a callback is present
func (h *Hook) Installed() bool {
	return h.fn != nil
}

// Fire calls the callback if one is installed
func (h *Hook) Fire() {
	if h.fn != nil {
		h.fn()
	}
}
