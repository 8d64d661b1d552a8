// Package chart defines the chart model manipulated by chartdir commands.
//
// A [Chart] is plain data: every command mutates it through one of the
// methods below and the renderer turns it into an image on demand. Because
// the model is JSON-serializable, any handle store can persist it.
//
// # Kinds
//
// XY charts carry axes and up to [MaxLayers] layers. Pie charts carry a
// single data series. Operations that only make sense for one kind fail
// with a WRONG_CHART_TYPE error on the other.
//
// # Colors
//
// Colors use the 0xAARRGGBB convention with an inverted alpha byte, see
// [Color]. Palette references and dynamic colors are resolved at render
// time against the chart's own tables.
package chart

import (
	"encoding/json"
	"strings"

	"github.com/matzehuels/chartdir/pkg/errors"
)

// MaxLayers is the number of layer slots an XY chart has.
const MaxLayers = 5

// Kind is the chart type chosen at creation.
type Kind string

const (
	KindXY  Kind = "xy"
	KindPie Kind = "pie"
)

// ParseKind maps a create type argument to a kind. "pie" (any case) makes a
// pie chart and everything else an XY chart.
func ParseKind(s string) Kind {
	if strings.EqualFold(s, "pie") {
		return KindPie
	}
	return KindXY
}

// Background describes the chart background box.
type Background struct {
	Color  Color `json:"color"`
	Edge   Color `json:"edge"`
	Border int   `json:"border"`
}

// Font is a text style. An empty Name selects the default font.
type Font struct {
	Name  string  `json:"name,omitempty"`
	Size  float64 `json:"size"`
	Color Color   `json:"color"`
	Angle float64 `json:"angle,omitempty"`
}

// Image is a background image placed inside the chart or the plot area.
type Image struct {
	File  string    `json:"file"`
	Align Alignment `json:"align"`
}

// PlotArea is the rectangle the XY layers are drawn in.
type PlotArea struct {
	X             int    `json:"x"`
	Y             int    `json:"y"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Background    Color  `json:"background"`
	AltBackground Color  `json:"alt_background"`
	Edge          Color  `json:"edge"`
	HGrid         Color  `json:"hgrid"`
	VGrid         Color  `json:"vgrid"`
	BgImage       *Image `json:"bg_image,omitempty"`
}

// NewPlotArea returns a plot area with the default colors: transparent
// background, no alternate background, line-colored edge, light grey
// horizontal grid and no vertical grid.
func NewPlotArea(x, y, width, height int) PlotArea {
	return PlotArea{
		X:             x,
		Y:             y,
		Width:         width,
		Height:        height,
		Background:    Transparent,
		AltBackground: Auto,
		Edge:          LineColor,
		HGrid:         0xc0c0c0,
		VGrid:         Transparent,
	}
}

// Legend is the legend box listing the data sets.
type Legend struct {
	X          int       `json:"x"`
	Y          int       `json:"y"`
	Vertical   bool      `json:"vertical"`
	Background Color     `json:"background"`
	Edge       Color     `json:"edge"`
	Font       Font      `json:"font"`
	Align      Alignment `json:"align"`
}

// NewLegend returns a vertical, transparent legend anchored top-left at x, y.
func NewLegend(x, y int) Legend {
	return Legend{
		X:          x,
		Y:          y,
		Vertical:   true,
		Background: Transparent,
		Edge:       Auto,
		Font:       Font{Size: 8, Color: TextColor},
		Align:      TopLeft,
	}
}

// Title is a chart title docked to one side of the chart.
type Title struct {
	Text       string    `json:"text"`
	Align      Alignment `json:"align"`
	Font       Font      `json:"font"`
	Background Color     `json:"background"`
	Edge       Color     `json:"edge"`
	Border     int       `json:"border"`
}

// NewTitle returns a top title in 12pt text color on a transparent box.
func NewTitle(text string) Title {
	return Title{
		Text:       text,
		Align:      Top,
		Font:       Font{Size: 12, Color: TextColor},
		Background: Transparent,
		Edge:       Transparent,
	}
}

// Text is free text placed at an absolute position.
type Text struct {
	X        int       `json:"x"`
	Y        int       `json:"y"`
	Text     string    `json:"text"`
	Font     Font      `json:"font"`
	Align    Alignment `json:"align"`
	Vertical bool      `json:"vertical,omitempty"`
}

// NewText returns 8pt text anchored top-left at x, y.
func NewText(x, y int, text string) Text {
	return Text{X: x, Y: y, Text: text, Font: Font{Size: 8, Color: TextColor}, Align: TopLeft}
}

// Sync ties the secondary Y axis to the primary one: y2 = slope*y + intercept.
type Sync struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// Chart is the full model behind a chart handle.
type Chart struct {
	Kind       Kind       `json:"kind"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Background Background `json:"background"`

	PlotArea  *PlotArea  `json:"plot_area,omitempty"`
	Titles    []Title    `json:"titles,omitempty"`
	Legend    *Legend    `json:"legend,omitempty"`
	Texts     []Text     `json:"texts,omitempty"`
	Palette   ColorTable `json:"palette,omitempty"`
	BgImage   *Image     `json:"bg_image,omitempty"`
	Wallpaper string     `json:"wallpaper,omitempty"`

	XAxis        Axis  `json:"x_axis"`
	XAxis2       Axis  `json:"x_axis2"`
	YAxis        Axis  `json:"y_axis"`
	YAxis2       Axis  `json:"y_axis2"`
	YAxisOnRight bool  `json:"y_axis_on_right,omitempty"`
	Sync         *Sync `json:"sync,omitempty"`

	Layers [MaxLayers]*Layer `json:"layers"`
	Pie    Pie               `json:"pie"`

	Dynamic []DynamicColor `json:"dynamic,omitempty"`
}

// New creates a chart of the given kind with a white, borderless
// background.
func New(kind Kind, width, height int) (*Chart, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid chart size %dx%d", width, height)
	}
	if kind != KindPie {
		kind = KindXY
	}
	return &Chart{
		Kind:       kind,
		Width:      width,
		Height:     height,
		Background: Background{Color: 0xffffff, Edge: Auto},
		Pie:        Pie{Radius: -1},
	}, nil
}

// Require fails with WRONG_CHART_TYPE unless c is of the given kind.
func (c *Chart) Require(kind Kind) error {
	if c.Kind != kind {
		return errors.New(errors.ErrCodeWrongType, "wrong chart type")
	}
	return nil
}

// SetBackground sets the background color, edge color and 3D border width.
func (c *Chart) SetBackground(bg, edge Color, border int) {
	c.Background = Background{Color: bg, Edge: edge, Border: border}
}

// SetSize changes the image size.
func (c *Chart) SetSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "invalid chart size %dx%d", width, height)
	}
	c.Width, c.Height = width, height
	return nil
}

// SetPlotArea places the plot area of an XY chart. A background image
// previously attached to the plot area is kept.
func (c *Chart) SetPlotArea(pa PlotArea) error {
	if err := c.Require(KindXY); err != nil {
		return err
	}
	if c.PlotArea != nil && pa.BgImage == nil {
		pa.BgImage = c.PlotArea.BgImage
	}
	c.PlotArea = &pa
	return nil
}

// AddLegend sets the legend box. A chart has at most one legend.
func (c *Chart) AddLegend(l Legend) {
	c.Legend = &l
}

// AddTitle adds a title.
func (c *Chart) AddTitle(t Title) {
	c.Titles = append(c.Titles, t)
}

// AddText adds free text.
func (c *Chart) AddText(t Text) {
	c.Texts = append(c.Texts, t)
}

// SetColors replaces the palette.
func (c *Chart) SetColors(p ColorTable) {
	c.Palette = append(ColorTable(nil), p...)
}

// Colors returns the palette in effect.
func (c *Chart) Colors() ColorTable {
	if len(c.Palette) == 0 {
		return DefaultPalette
	}
	return c.Palette
}

// SetBgImage sets a background image for the whole chart, or for the plot
// area when plotArea is set. The plot area variant is a no-op until a plot
// area exists.
func (c *Chart) SetBgImage(file string, align Alignment, plotArea bool) {
	img := &Image{File: file, Align: align}
	if !plotArea {
		c.BgImage = img
		return
	}
	if c.PlotArea != nil {
		c.PlotArea.BgImage = img
	}
}

// SetWallpaper tiles an image file across the chart background.
func (c *Chart) SetWallpaper(file string) {
	c.Wallpaper = file
}

// SyncYAxis makes the secondary Y axis follow the primary one.
func (c *Chart) SyncYAxis(slope, intercept float64) error {
	if err := c.Require(KindXY); err != nil {
		return err
	}
	c.Sync = &Sync{Slope: slope, Intercept: intercept}
	return nil
}

// SetYAxisOnRight swaps the sides of the primary and secondary Y axes.
func (c *Chart) SetYAxisOnRight(right bool) error {
	if err := c.Require(KindXY); err != nil {
		return err
	}
	c.YAxisOnRight = right
	return nil
}

// Clone returns a deep copy of c.
func (c *Chart) Clone() (*Chart, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "copy chart")
	}
	var out Chart
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "copy chart")
	}
	return &out, nil
}
