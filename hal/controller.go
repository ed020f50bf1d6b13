package hal

// PortController reads the two controllers through the strobe ports. The
// joystick half is selected by writing the reset port and the keypad half by
// writing the set port; both read back active low.
type PortController struct {
	io     PortIO
	irq    IRQMask
	wiring ControllerWiring
}

// NewPortController binds a controller reader to its wiring
func NewPortController(io PortIO, irq IRQMask, wiring ControllerWiring) *PortController {
	return &PortController{io: io, irq: irq, wiring: wiring}
}

// Controller implements ControllerReader. The keypad half is in the high byte
// and the joystick half in the low byte, both active high. Any n other than 2
// reads controller 1.
func (c *PortController) Controller(n int) uint16 {
	port := c.wiring.PortOne
	if n == 2 {
		port = c.wiring.PortTwo
	}

	c.irq.Disable()
	c.io.Out(c.wiring.StrobeResetPort, 0)
	joystick := ^c.io.In(port)
	c.io.Out(c.wiring.StrobeSetPort, 0)
	keypad := ^c.io.In(port)
	c.irq.Enable()

	return uint16(keypad)<<8 | uint16(joystick)
}
