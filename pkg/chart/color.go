package chart

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/chartdir/pkg/errors"
)

// Color is a 0xAARRGGBB color. An alpha byte of 0x00 is opaque and 0xFF is
// fully transparent. The 0xffff.... block addresses palette entries and the
// 0xfffe.... block addresses the chart's dynamic color table.
type Color int32

// Special colors.
const (
	Transparent     Color = -0x1000000 // 0xff000000
	Palette         Color = -0x10000   // 0xffff0000, palette entry 0
	BackgroundColor Color = Palette    // palette entry 0
	LineColor       Color = Palette + 1
	TextColor       Color = Palette + 2
	SameAsMainColor Color = Palette + 7
	DataColor       Color = Palette + 8

	// Auto asks for the default for the slot being colored: the next data
	// color for layers, no edge for outlines.
	Auto Color = -1

	dynamicBase Color = -0x20000 // 0xfffe0000

	blockMask    = 0xffff0000
	paletteBlock = 0xffff0000
	dynamicBlock = 0xfffe0000
)

// NoValue marks a missing data point. Points carrying it are not drawn.
const NoValue = 1.7e308

// RGB builds an opaque color from its components.
func RGB(r, g, b uint8) Color {
	return Color(int32(uint32(r)<<16 | uint32(g)<<8 | uint32(b)))
}

// PaletteIndex reports the palette entry c refers to, if any.
func (c Color) PaletteIndex() (int, bool) {
	if uint32(c)&blockMask == paletteBlock && c != Auto {
		return int(uint32(c) & 0xffff), true
	}
	return 0, false
}

// DynamicIndex reports the dynamic color table entry c refers to, if any.
func (c Color) DynamicIndex() (int, bool) {
	if uint32(c)&blockMask == dynamicBlock {
		return int(uint32(c) & 0xffff), true
	}
	return 0, false
}

// RGBA splits an explicit color into components. The returned alpha uses the
// usual convention (255 is opaque).
func (c Color) RGBA() (r, g, b, a uint8) {
	v := uint32(c)
	return uint8(v >> 16), uint8(v >> 8), uint8(v), 255 - uint8(v>>24)
}

// IsTransparent reports whether c is an explicit, fully transparent color.
func (c Color) IsTransparent() bool {
	if _, ok := c.PaletteIndex(); ok {
		return false
	}
	if _, ok := c.DynamicIndex(); ok {
		return false
	}
	return uint32(c)>>24 == 0xff
}

// String formats c as an unsigned hex literal.
func (c Color) String() string {
	return fmt.Sprintf("0x%08x", uint32(c))
}

var namedColors = map[string]Color{
	"transparent":     Transparent,
	"palette":         Palette,
	"backgroundcolor": BackgroundColor,
	"textcolor":       TextColor,
	"linecolor":       LineColor,
	"datacolor":       DataColor,
	"sameasmaincolor": SameAsMainColor,
}

// ParseColor parses a color argument. It accepts the symbolic names
// Transparent, Palette, BackgroundColor, TextColor, LineColor, DataColor
// and SameAsMainColor (case-insensitive), "#rrggbb", and any integer
// literal (decimal, 0x hex or 0 octal). Integers wider than 32 bits wrap.
func ParseColor(s string) (Color, error) {
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, nil
	}
	if len(s) == 7 && s[0] == '#' {
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err == nil {
			return Color(int32(uint32(v))), nil
		}
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		u, uerr := strconv.ParseUint(s, 0, 64)
		if uerr != nil {
			return 0, errors.New(errors.ErrCodeInvalidColor, "expected integer but got %q", s)
		}
		v = int64(u)
	}
	return Color(int32(uint32(v))), nil
}

// Line patterns understood by DashLineColor, by name.
var lineTypes = map[string]int{
	"dashline":    0x0505,
	"dotline":     0x0202,
	"dotdashline": 0x05050205,
	"altdashline": 0x0A050505,
}

// ParseLinePattern parses a dash pattern given either as an integer or as
// one of DashLine, DotLine, DotDashLine, AltDashLine.
func ParseLinePattern(s string) (int, error) {
	if p, ok := lineTypes[strings.ToLower(s)]; ok {
		return p, nil
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "expected integer but got %q", s)
	}
	return int(uint32(v)), nil
}

// DashArray expands a packed dash pattern into alternating on/off segment
// lengths. Each byte, least significant first, is one segment.
func DashArray(pattern int) []float64 {
	var out []float64
	v := uint32(pattern)
	for v != 0 {
		out = append(out, float64(v&0xff))
		v >>= 8
	}
	return out
}

// DynamicKind distinguishes entries of the dynamic color table.
type DynamicKind string

const (
	DynamicDash     DynamicKind = "dash"
	DynamicPattern  DynamicKind = "pattern"
	DynamicGradient DynamicKind = "gradient"
)

// DynamicColor is a color that cannot be expressed as a single ARGB value.
type DynamicColor struct {
	Kind DynamicKind `json:"kind"`

	// Dash line color.
	Color Color     `json:"color,omitempty"`
	Dash  []float64 `json:"dash,omitempty"`

	// Pattern color: either a bitmap or an image file.
	Pixels []Color `json:"pixels,omitempty"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
	Image  string  `json:"image,omitempty"`

	// Gradient color: position/color pairs.
	Stops []GradientStop `json:"stops,omitempty"`
	Angle float64        `json:"angle,omitempty"`
	Scale float64        `json:"scale,omitempty"`

	StartX int `json:"start_x,omitempty"`
	StartY int `json:"start_y,omitempty"`
}

// GradientStop is one position/color pair of a gradient. Positions run from
// 0 to 0x100.
type GradientStop struct {
	Position int   `json:"position"`
	Color    Color `json:"color"`
}

// Named gradients.
var gradients = map[string][]int{
	"goldgradient":       {0x000000, 0xFFE743, 0x000060, 0xFFFFE0, 0x0000B0, 0xFFF0B0, 0x000100, 0xFFE743},
	"silvergradient":     {0x000000, 0xC8C8C8, 0x000060, 0xF8F8F8, 0x0000B0, 0xE0E0E0, 0x000100, 0xC8C8C8},
	"redmetalgradient":   {0x000000, 0xE09898, 0x000060, 0xFFF0F0, 0x0000B0, 0xF0D8D8, 0x000100, 0xE09898},
	"bluemetalgradient":  {0x000000, 0x9898E0, 0x000060, 0xF0F0FF, 0x0000B0, 0xD8D8F0, 0x000100, 0x9898E0},
	"greenmetalgradient": {0x000000, 0x98E098, 0x000060, 0xF0FFF0, 0x0000B0, 0xD8F0D8, 0x000100, 0x98E098},
}

// NamedGradient returns the stops of a built-in gradient.
func NamedGradient(name string) ([]GradientStop, bool) {
	arr, ok := gradients[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	ints := make([]Color, len(arr))
	for i, v := range arr {
		ints[i] = Color(v)
	}
	return GradientStops(ints), true
}

// GradientStops pairs up a flat position/color array. A trailing unpaired
// value is dropped.
func GradientStops(arr []Color) []GradientStop {
	stops := make([]GradientStop, 0, len(arr)/2)
	for i := 0; i+1 < len(arr); i += 2 {
		stops = append(stops, GradientStop{Position: int(arr[i]), Color: arr[i+1]})
	}
	return stops
}

func (c *Chart) addDynamic(d DynamicColor) Color {
	c.Dynamic = append(c.Dynamic, d)
	return dynamicBase + Color(len(c.Dynamic)-1)
}

// DashLineColor registers a dashed variant of color and returns its handle.
func (c *Chart) DashLineColor(color Color, pattern int) Color {
	return c.addDynamic(DynamicColor{Kind: DynamicDash, Color: color, Dash: DashArray(pattern)})
}

// PatternColor registers a width x height bitmap fill.
func (c *Chart) PatternColor(pixels []Color, width, height, startX, startY int) (Color, error) {
	if width*height != len(pixels) {
		return 0, errors.New(errors.ErrCodeInvalidInput, "wrong width/height for the pattern bitmap")
	}
	return c.addDynamic(DynamicColor{
		Kind:   DynamicPattern,
		Pixels: pixels,
		Width:  width,
		Height: height,
		StartX: startX,
		StartY: startY,
	}), nil
}

// PatternImageColor registers a fill that tiles an image file.
func (c *Chart) PatternImageColor(image string, startX, startY int) Color {
	return c.addDynamic(DynamicColor{Kind: DynamicPattern, Image: image, StartX: startX, StartY: startY})
}

// GradientColor registers a multi-stop gradient.
func (c *Chart) GradientColor(stops []GradientStop, angle, scale float64, startX, startY int) Color {
	return c.addDynamic(DynamicColor{
		Kind:   DynamicGradient,
		Stops:  stops,
		Angle:  angle,
		Scale:  scale,
		StartX: startX,
		StartY: startY,
	})
}

// Resolve maps palette references and dynamic colors to an explicit ARGB
// value. Dynamic colors resolve to a flat stand-in: the base color of a
// dash, the first pixel of a bitmap, the mean of a gradient's stops. Auto
// is returned unchanged.
func (c *Chart) Resolve(col Color) Color {
	for depth := 0; depth < 4; depth++ {
		if col == Auto {
			return col
		}
		if n, ok := col.PaletteIndex(); ok {
			col = c.Colors().Entry(n)
			continue
		}
		if n, ok := col.DynamicIndex(); ok {
			if n >= len(c.Dynamic) {
				return Transparent
			}
			col = c.Dynamic[n].flat()
			continue
		}
		return col
	}
	return col
}

// Dash returns the dash pattern carried by a dynamic dash color.
func (c *Chart) Dash(col Color) []float64 {
	if n, ok := col.DynamicIndex(); ok && n < len(c.Dynamic) && c.Dynamic[n].Kind == DynamicDash {
		return c.Dynamic[n].Dash
	}
	return nil
}

func (d DynamicColor) flat() Color {
	switch d.Kind {
	case DynamicDash:
		return d.Color
	case DynamicPattern:
		if len(d.Pixels) > 0 {
			return d.Pixels[0]
		}
		return 0x808080
	case DynamicGradient:
		if len(d.Stops) == 0 {
			return Transparent
		}
		var a, r, g, b int
		for _, s := range d.Stops {
			v := uint32(s.Color)
			a += int(v >> 24 & 0xff)
			r += int(v >> 16 & 0xff)
			g += int(v >> 8 & 0xff)
			b += int(v & 0xff)
		}
		n := len(d.Stops)
		return Color(int32(uint32(a/n)<<24 | uint32(r/n)<<16 | uint32(g/n)<<8 | uint32(b/n)))
	}
	return Transparent
}
