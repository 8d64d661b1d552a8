package chart

import "strings"

// ColorTable is an indexed palette. Entry 0 is the background, 1 the
// default line color, 2 the default text color, entries 3 to 7 are reserved
// and data colors start at entry 8.
type ColorTable []Color

// Number of leading palette entries that are not data colors.
const paletteReserved = 8

var dataColors = []Color{
	0xff3333, 0x33ff33, 0x6666ff, 0xffff00, 0xff66ff, 0x99ffff, 0xffcc33,
	0xcccccc, 0xcc9999, 0x339966, 0x999900, 0xcc3300, 0x669999, 0x993333,
	0x006600, 0x990099, 0xff9966, 0x99ff99, 0x9999ff, 0xcc6600, 0x33cc33,
	0xcc99ff, 0xff6666, 0x99cc66, 0x009999, 0xcc3333, 0x9933ff, 0xff0000,
	0x0000ff, 0x00ff00, 0xffcc99, 0x999999,
}

func buildPalette(bg, line, text Color, data []Color, alpha uint32) ColorTable {
	p := ColorTable{bg, line, text}
	for len(p) < paletteReserved {
		p = append(p, 0x808080)
	}
	for _, c := range data {
		p = append(p, Color(int32(uint32(c)|alpha<<24)))
	}
	return p
}

// Built-in palettes.
var (
	DefaultPalette      = buildPalette(0xffffff, 0x000000, 0x000000, dataColors, 0)
	WhiteOnBlackPalette = buildPalette(0x000000, 0xffffff, 0xffffff, dataColors, 0)
	TransparentPalette  = buildPalette(0xffffff, 0x000000, 0x000000, dataColors, 0x80)
)

var namedPalettes = map[string]ColorTable{
	"defaultpalette":      DefaultPalette,
	"whiteonblackpalette": WhiteOnBlackPalette,
	"transparentpalette":  TransparentPalette,
}

// NamedPalette looks up a built-in palette case-insensitively.
func NamedPalette(name string) (ColorTable, bool) {
	p, ok := namedPalettes[strings.ToLower(name)]
	return p, ok
}

// OverlayPalette returns the default palette with its leading entries
// replaced by colors. A -1 entry ends the list early.
func OverlayPalette(colors []Color) ColorTable {
	p := append(ColorTable(nil), DefaultPalette...)
	for i, c := range colors {
		if c == Auto {
			break
		}
		if i < len(p) {
			p[i] = c
		} else {
			p = append(p, c)
		}
	}
	return p
}

// Entry returns palette entry n. Data entries past the end wrap around the
// data section.
func (p ColorTable) Entry(n int) Color {
	if n < 0 {
		n = 0
	}
	if n < len(p) {
		return p[n]
	}
	if len(p) <= paletteReserved {
		return DefaultPalette.Entry(n)
	}
	return p[paletteReserved+(n-paletteReserved)%(len(p)-paletteReserved)]
}

// DataEntry returns the i-th data color.
func (p ColorTable) DataEntry(i int) Color {
	return p.Entry(paletteReserved + i)
}
