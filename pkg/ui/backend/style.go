package backend

import (
	"fmt"
	"strconv"
	"strings"
)

// Color represents a terminal color.
// Values 0-255 are palette colors, values >= 256 are true colors.
type Color int32

// Color constants
const (
	ColorDefault Color = -1
	ColorBlack   Color = 0
	ColorRed     Color = 1
	ColorGreen   Color = 2
	ColorYellow  Color = 3
	ColorBlue    Color = 4
	ColorMagenta Color = 5
	ColorCyan    Color = 6
	ColorWhite   Color = 7

	// Bright variants
	ColorBrightBlack   Color = 8
	ColorBrightRed     Color = 9
	ColorBrightGreen   Color = 10
	ColorBrightYellow  Color = 11
	ColorBrightBlue    Color = 12
	ColorBrightMagenta Color = 13
	ColorBrightCyan    Color = 14
	ColorBrightWhite   Color = 15
)

const rgbFlag = 0x01000000

// ColorRGB creates a true color from RGB components.
func ColorRGB(r, g, b uint8) Color {
	return Color(int32(r)<<16 | int32(g)<<8 | int32(b) | rgbFlag)
}

// ColorIndexed returns the 256-color palette entry n.
func ColorIndexed(n uint8) Color {
	return Color(n)
}

// IsRGB returns true if this is a true color (not palette).
func (c Color) IsRGB() bool {
	return c != ColorDefault && c&rgbFlag != 0
}

// IsDefault reports whether c is the terminal's default color.
func (c Color) IsDefault() bool {
	return c == ColorDefault
}

// RGB returns the red, green, blue components of an RGB color.
// Returns 0, 0, 0 for non-RGB colors.
func (c Color) RGB() (r, g, b uint8) {
	if !c.IsRGB() {
		return 0, 0, 0
	}
	return uint8((c >> 16) & 0xFF), uint8((c >> 8) & 0xFF), uint8(c & 0xFF)
}

func (c Color) String() string {
	switch {
	case c == ColorDefault:
		return "default"
	case c.IsRGB():
		r, g, b := c.RGB()
		return fmt.Sprintf("#%02x%02x%02x", r, g, b)
	case c >= 0 && c < 16:
		return colorNames[c]
	default:
		return strconv.Itoa(int(c))
	}
}

var colorNames = [16]string{
	"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white",
	"bright-black", "bright-red", "bright-green", "bright-yellow",
	"bright-blue", "bright-magenta", "bright-cyan", "bright-white",
}

// ParseColor accepts a palette name ("red", "bright-cyan"), a palette index
// ("0".."255"), a hex triplet ("#rrggbb") or "default"/"".
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "default" {
		return ColorDefault, nil
	}
	for i, name := range colorNames {
		if s == name {
			return Color(i), nil
		}
	}
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) != 6 {
			return ColorDefault, fmt.Errorf("invalid hex color %q", s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return ColorDefault, fmt.Errorf("invalid hex color %q", s)
		}
		return ColorRGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 255 {
		return ColorDefault, fmt.Errorf("unknown color %q", s)
	}
	return Color(n), nil
}

// AttrMask represents text attributes.
type AttrMask uint32

// Attribute flags
const (
	AttrBold AttrMask = 1 << iota
	AttrBlink
	AttrReverse
	AttrUnderline
	AttrDim
	AttrItalic
	AttrStrikeThrough
)

// Style combines foreground, background colors and attributes.
// Styles are comparable values.
type Style struct {
	fg    Color
	bg    Color
	attrs AttrMask
}

// DefaultStyle returns the default style (default colors, no attributes).
func DefaultStyle() Style {
	return Style{fg: ColorDefault, bg: ColorDefault}
}

// Foreground sets the foreground color.
func (s Style) Foreground(c Color) Style {
	s.fg = c
	return s
}

// Background sets the background color.
func (s Style) Background(c Color) Style {
	s.bg = c
	return s
}

func (s Style) with(attr AttrMask, on bool) Style {
	if on {
		s.attrs |= attr
	} else {
		s.attrs &^= attr
	}
	return s
}

func (s Style) Bold(on bool) Style          { return s.with(AttrBold, on) }
func (s Style) Italic(on bool) Style        { return s.with(AttrItalic, on) }
func (s Style) Dim(on bool) Style           { return s.with(AttrDim, on) }
func (s Style) Underline(on bool) Style     { return s.with(AttrUnderline, on) }
func (s Style) Reverse(on bool) Style       { return s.with(AttrReverse, on) }
func (s Style) Blink(on bool) Style         { return s.with(AttrBlink, on) }
func (s Style) StrikeThrough(on bool) Style { return s.with(AttrStrikeThrough, on) }

// Toggled flips reverse video. Selections and cursors use it so they stay
// visible on top of any existing style.
func (s Style) Toggled() Style {
	s.attrs ^= AttrReverse
	return s
}

// Attributes returns all attributes.
func (s Style) Attributes() AttrMask {
	return s.attrs
}

// FG returns the foreground color.
func (s Style) FG() Color {
	return s.fg
}

// BG returns the background color.
func (s Style) BG() Color {
	return s.bg
}

// Decompose returns the foreground, background, and attributes.
func (s Style) Decompose() (fg, bg Color, attrs AttrMask) {
	return s.fg, s.bg, s.attrs
}
