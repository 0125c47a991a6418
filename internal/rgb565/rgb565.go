// Package rgb565 converts 24-bit hex colors to the 16-bit RGB565 encoding used
// by the firmware's TFT display.
//
// Bit layout, most-significant bit first:
//
//	RRRRR GGGGGG BBBBB
//
// Channels are reduced by truncation: the low bits are dropped, never rounded.
// Downstream headers depend on these exact bit patterns.
package rgb565

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ErrInvalidFormat is returned when a hex color is not exactly six hex digits
// after removing one optional leading "#".
var ErrInvalidFormat = errors.New("invalid hex color")

// ///////////////////////////////////////////////
// Bit Layout
// ///////////////////////////////////////////////

const (
	redBits   = 5
	greenBits = 6
	blueBits  = 5

	blueShift  = 0
	greenShift = blueShift + blueBits
	redShift   = greenShift + greenBits

	redMask   = 1<<redBits - 1
	greenMask = 1<<greenBits - 1
	blueMask  = 1<<blueBits - 1
)

// Color is a packed RGB565 value. It implements [color.Color].
type Color uint16

// Model converts any [color.Color] to [Color] by truncating each channel.
var Model = color.ModelFunc(func(c color.Color) color.Color {
	if v, ok := c.(Color); ok {
		return v
	}
	return FromNRGBA(color.NRGBAModel.Convert(c).(color.NRGBA))
})

// Pack truncates 8-bit channels to 5/6/5 bits and packs them.
func Pack(r, g, b uint8) Color {
	r5 := uint16(r>>(8-redBits)) & redMask
	g6 := uint16(g>>(8-greenBits)) & greenMask
	b5 := uint16(b>>(8-blueBits)) & blueMask
	return Color(r5<<redShift | g6<<greenShift | b5<<blueShift)
}

// FromNRGBA packs c, ignoring alpha.
func FromNRGBA(c color.NRGBA) Color {
	return Pack(c.R, c.G, c.B)
}

// Channels returns the reduced-depth red (5 bit), green (6 bit) and blue
// (5 bit) components.
func (c Color) Channels() (r5, g6, b5 uint8) {
	return uint8(c>>redShift) & redMask,
		uint8(c>>greenShift) & greenMask,
		uint8(c>>blueShift) & blueMask
}

// NRGBA expands c back to 8 bits per channel by replicating the high bits into
// the vacated low bits, so full-scale channels map to 0xFF.
func (c Color) NRGBA() color.NRGBA {
	r5, g6, b5 := c.Channels()
	return color.NRGBA{
		R: r5<<(8-redBits) | r5>>(2*redBits-8),
		G: g6<<(8-greenBits) | g6>>(2*greenBits-8),
		B: b5<<(8-blueBits) | b5>>(2*blueBits-8),
		A: 0xFF,
	}
}

// RGBA implements [color.Color].
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

// Hex returns the expanded color as "#rrggbb".
func (c Color) Hex() string {
	n := c.NRGBA()
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}

// String formats c as a zero-padded C hex literal, e.g. "0xf800".
func (c Color) String() string {
	return Format(uint16(c))
}

// Format renders v as "0x" followed by four lower-case hex digits.
func Format(v uint16) string {
	return fmt.Sprintf("0x%04x", v)
}

// ///////////////////////////////////////////////
// Parsing
// ///////////////////////////////////////////////

// ParseHex parses a "#RRGGBB" or "RRGGBB" string into an opaque color.NRGBA.
// Digits are case-insensitive. Only a single leading "#" is removed.
func ParseHex(hex string) (color.NRGBA, error) {
	digits := strings.TrimPrefix(hex, "#")
	if len(digits) != 6 {
		return color.NRGBA{}, fmt.Errorf("%w %q: must be 6 hex digits", ErrInvalidFormat, hex)
	}
	var ch [3]uint8
	for i := range ch {
		v, err := strconv.ParseUint(digits[2*i:2*i+2], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w %q: %q is not hexadecimal", ErrInvalidFormat, hex, digits[2*i:2*i+2])
		}
		ch[i] = uint8(v)
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: 0xFF}, nil
}

// Parse parses a hex color string into a [Color].
func Parse(hex string) (Color, error) {
	c, err := ParseHex(hex)
	if err != nil {
		return 0, err
	}
	return FromNRGBA(c), nil
}

// Convert maps a hex color string to its packed RGB565 value.
// Malformed input yields an error wrapping [ErrInvalidFormat].
func Convert(hex string) (uint16, error) {
	c, err := Parse(hex)
	return uint16(c), err
}
