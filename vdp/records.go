package vdp

// Record sizes in VRAM
const (
	PatternSize         = 8
	SpritePattern16Size = 32
	SpriteAttributeSize = 4
	PixelBlockSize      = 2
)

// Pattern is an 8x8 pattern, one byte per row, bit 7 leftmost
type Pattern [PatternSize]uint8

// SpritePattern16 is a 16x16 sprite pattern. The quarters are stored upper
// left, lower left, upper right, lower right.
type SpritePattern16 [SpritePattern16Size]uint8

// ColorEntry is one byte of the color table. Foreground colors the 1 bits of
// a pattern row and Background the 0 bits.
type ColorEntry struct {
	Foreground Color
	Background Color
}

// Byte encodes the entry, foreground in the high nibble
func (c ColorEntry) Byte() uint8 {
	return uint8(c.Foreground&0x0F)<<4 | uint8(c.Background&0x0F)
}

// DecodeColorEntry splits a color table byte
func DecodeColorEntry(b uint8) ColorEntry {
	return ColorEntry{Foreground: Color(b >> 4), Background: Color(b & 0x0F)}
}

// PixelBlock is one multicolor (bitmap mode) block of 2x2 fat pixels:
//
//	| A | B |
//	| C | D |
//
// Names in each group of four rows index the same pattern bytes, rows
// 0,4,8... use the first pair of bytes of the 8 byte pattern, rows 1,5,9...
// the second pair and so on.
type PixelBlock struct {
	A, B, C, D Color
}

// Bytes encodes the block, A and C in the high nibbles
func (p PixelBlock) Bytes() [PixelBlockSize]uint8 {
	return [PixelBlockSize]uint8{
		uint8(p.A&0x0F)<<4 | uint8(p.B&0x0F),
		uint8(p.C&0x0F)<<4 | uint8(p.D&0x0F),
	}
}

// DecodePixelBlock splits two pattern bytes into colors
func DecodePixelBlock(b [PixelBlockSize]uint8) PixelBlock {
	return PixelBlock{
		A: Color(b[0] >> 4), B: Color(b[0] & 0x0F),
		C: Color(b[1] >> 4), D: Color(b[1] & 0x0F),
	}
}

// sprite attribute byte 3
const (
	spriteColorMask  = 0x0F
	spriteEarlyClock = 0x80
)

// SpriteAttribute is one entry of the sprite attribute table
type SpriteAttribute struct {
	Y     uint8 // vertical position, SpriteTerminator ends the list
	X     uint8
	Name  uint8 // sprite pattern number
	Color Color

	// EarlyClock shifts the sprite 32 pixels left so it can slide off the
	// left edge
	EarlyClock bool
}

// Bytes encodes the attribute in table order
func (s SpriteAttribute) Bytes() [SpriteAttributeSize]uint8 {
	b := [SpriteAttributeSize]uint8{s.Y, s.X, s.Name, uint8(s.Color) & spriteColorMask}
	if s.EarlyClock {
		b[3] |= spriteEarlyClock
	}
	return b
}

// DecodeSpriteAttribute reads an attribute from table bytes. Bits 4 to 6 of
// the last byte are unused and ignored.
func DecodeSpriteAttribute(b [SpriteAttributeSize]uint8) SpriteAttribute {
	return SpriteAttribute{
		Y:          b[0],
		X:          b[1],
		Name:       b[2],
		Color:      Color(b[3] & spriteColorMask),
		EarlyClock: b[3]&spriteEarlyClock != 0,
	}
}

// TerminatorSprite is the record that halts sprite processing
var TerminatorSprite = SpriteAttribute{Y: SpriteTerminator, Color: Transparent}

// EncodeSprites lays out attributes back to back for WriteTableRecord
func EncodeSprites(sprites []SpriteAttribute) []uint8 {
	out := make([]uint8, 0, len(sprites)*SpriteAttributeSize)
	for _, s := range sprites {
		b := s.Bytes()
		out = append(out, b[:]...)
	}
	return out
}

// EncodePatterns lays out patterns back to back for WriteTableRecord
func EncodePatterns(patterns []Pattern) []uint8 {
	out := make([]uint8, 0, len(patterns)*PatternSize)
	for _, p := range patterns {
		out = append(out, p[:]...)
	}
	return out
}
