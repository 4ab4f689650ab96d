package colorpick

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Color is a packed 0xAARRGGBB colour.
type Color uint32

// Predefined colors.
const (
	// Transparent is also the "unset" sentinel for picked colours.
	Transparent Color = 0x00000000
	Black       Color = 0xFF000000
	White       Color = 0xFFFFFFFF
)

// ARGB packs four 8-bit channels.
func ARGB(a, r, g, b uint8) Color {
	return Color(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// RGB packs an opaque colour.
func RGB(r, g, b uint8) Color {
	return ARGB(0xFF, r, g, b)
}

// FromRGBA converts a non-premultiplied 8-bit colour.
func FromRGBA(c color.RGBA) Color {
	return ARGB(c.A, c.R, c.G, c.B)
}

// A returns the alpha channel.
func (c Color) A() uint8 { return uint8(c >> 24) }

// R returns the red channel.
func (c Color) R() uint8 { return uint8(c >> 16) }

// G returns the green channel.
func (c Color) G() uint8 { return uint8(c >> 8) }

// B returns the blue channel.
func (c Color) B() uint8 { return uint8(c) }

// NRGBA converts to the standard library representation.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R(), G: c.G(), B: c.B(), A: c.A()}
}

// String formats the colour as #AARRGGBB.
func (c Color) String() string {
	return fmt.Sprintf("#%08X", uint32(c))
}

// ParseColor parses "#RRGGBB", "#AARRGGBB" or "0xAARRGGBB".
func ParseColor(s string) (Color, error) {
	h := strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(h, "#"):
		h = h[1:]
	case strings.HasPrefix(h, "0x"), strings.HasPrefix(h, "0X"):
		h = h[2:]
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("colorpick: parse color %q: %w", s, err)
	}
	switch len(h) {
	case 6:
		return Color(0xFF000000 | uint32(v)), nil
	case 8:
		return Color(v), nil
	default:
		return 0, fmt.Errorf("colorpick: parse color %q: want 6 or 8 hex digits", s)
	}
}

// Luminance returns the perceived brightness of c on a 0..255 scale
// (0.299R + 0.587G + 0.114B). Alpha is ignored.
func Luminance(c Color) float64 {
	return float64(299*uint32(c.R())+587*uint32(c.G())+114*uint32(c.B())) / 1000
}

// InterpolateColor blends start towards end channel by channel. A fraction
// outside [0, 1] yields end.
func InterpolateColor(start, end Color, fraction float64) Color {
	if !(fraction >= 0 && fraction <= 1) {
		return end
	}
	lerp := func(s, e uint8) uint8 {
		return uint8(math.Round(float64(s) + (float64(e)-float64(s))*fraction))
	}
	return ARGB(
		lerp(start.A(), end.A()),
		lerp(start.R(), end.R()),
		lerp(start.G(), end.G()),
		lerp(start.B(), end.B()),
	)
}

// Contrast thresholds on the 0..255 luminance scale.
const (
	// ContrastThresholdLow applies while the current contrast colour is dark.
	ContrastThresholdLow = 150

	// ContrastThresholdHigh applies otherwise.
	ContrastThresholdHigh = 220
)

// ContrastColor returns Black or White to draw over c. The threshold
// depends on whether the previous contrast colour was dark, so a value
// near the boundary does not flip the result back and forth.
func ContrastColor(c Color, prevDark bool) Color {
	threshold := float64(ContrastThresholdHigh)
	if prevDark {
		threshold = ContrastThresholdLow
	}
	if Luminance(c) < threshold {
		return White
	}
	return Black
}

// grayLuminance returns an opaque gray whose luminance is lum.
func grayLuminance(lum uint8) Color {
	return RGB(lum, lum, lum)
}
