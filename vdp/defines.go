package vdp

// Mode is the display mode. The values are the M3/M2/M1 selection used to
// derive the mode bits of registers 0 and 1.
type Mode uint8

const (
	GraphicsI  Mode = 0
	GraphicsII Mode = 1
	Bitmap     Mode = 2 // multicolor
	Text       Mode = 4
)

func (m Mode) valid() bool {
	switch m {
	case GraphicsI, GraphicsII, Bitmap, Text:
		return true
	}
	return false
}

func (m Mode) String() string {
	switch m {
	case GraphicsI:
		return "graphics I"
	case GraphicsII:
		return "graphics II"
	case Bitmap:
		return "bitmap"
	case Text:
		return "text"
	}
	return "unknown"
}

// Register numbers
const (
	Register0 = iota // mode and external video
	Register1        // mode, sprites, interrupt, blank, memory size
	Register2        // name table address
	Register3        // color table address
	Register4        // pattern table address
	Register5        // sprite attribute table address
	Register6        // sprite pattern table address
	Register7        // text and background color
)

// Register 1 bits
const (
	reg1VRAM16K      = 7
	reg1Blank        = 6
	reg1IRQ          = 5
	reg1SpriteSize   = 1
	reg1SpriteMagnif = 0

	// mask that keeps everything in register 1 except the M1/M2 mode bits
	reg1KeepMask = 0xE3
)

// Default table addresses
const (
	NameTableAddr            = 0x3800
	ColorTableAddr           = 0x2000
	PatternTableAddr         = 0x0000
	SpriteAttributeTableAddr = 0x3B80
	SpritePatternTableAddr   = 0x1800
)

// Table address register scale. The register holds the address shifted
// right by this amount.
const (
	nameTableScale            = 10
	colorTableScale           = 6
	patternTableScale         = 11
	spriteAttributeTableScale = 7
	spritePatternTableScale   = 11
)

// Graphics II only supports tables at $0000 or $2000. These are the register
// values for each.
const (
	gfx2ColorLow    = 0x7F
	gfx2ColorHigh   = 0xFF
	gfx2PatternLow  = 0x03
	gfx2PatternHigh = 0x07
	gfx2Split       = 0x1000
)

// Color is a 4 bit palette index
type Color uint8

const (
	Transparent Color = iota
	Black
	MediumGreen
	LightGreen
	DarkBlue
	LightBlue
	DarkRed
	Cyan
	MediumRed
	LightRed
	DarkYellow
	LightYellow
	DarkGreen
	Magenta
	Grey
	White
)

// Status register bits
const (
	StatusInterrupt   = 0x80 // frame interrupt flag
	StatusFifthSprite = 0x40
	StatusCollision   = 0x20
	StatusSpriteMask  = 0x1F // number of the fifth sprite
)

const (
	// MemSize is the VRAM size, $0000 to $3FFF
	MemSize = 1 << 14

	// address bits sent to the chip
	addrMask = MemSize - 1

	// SpriteTerminator in the vertical position field stops sprite
	// processing
	SpriteTerminator = 0xD0

	registerWrite = 0x80
	vramWrite     = 0x40
	vramRead      = 0x00

	selfTestPattern = 0x55
	selfTestChunk   = 256
)
