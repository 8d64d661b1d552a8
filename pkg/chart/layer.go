package chart

import (
	"strings"

	"github.com/matzehuels/chartdir/pkg/errors"
)

// LayerType is the kind of drawing a layer produces.
type LayerType string

const (
	LayerLine  LayerType = "line"
	LayerBar   LayerType = "bar"
	LayerArea  LayerType = "area"
	LayerTrend LayerType = "trend"
)

// ParseLayerType accepts line, bar, area and trend (exact, lower case).
func ParseLayerType(s string) (LayerType, error) {
	switch t := LayerType(s); t {
	case LayerLine, LayerBar, LayerArea, LayerTrend:
		return t, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "wrong layer type: should be one of line bar area trend")
}

// CombineMethod is how multiple data sets of one layer share the space.
type CombineMethod string

const (
	Overlay CombineMethod = "Overlay"
	Stack   CombineMethod = "Stack"
	Depth   CombineMethod = "Depth"
	Side    CombineMethod = "Side"
)

var combineMethods = []CombineMethod{Overlay, Stack, Depth, Side}

// ParseCombineMethod matches case-insensitively. Unknown names fall through
// to Side.
func ParseCombineMethod(s string) CombineMethod {
	for _, m := range combineMethods {
		if strings.EqualFold(s, string(m)) {
			return m
		}
	}
	return Side
}

// Symbol is a data point marker. Names outside the built-in set are image
// files.
type Symbol string

const (
	NoSymbol               Symbol = "NoSymbol"
	SquareSymbol           Symbol = "SquareSymbol"
	DiamondSymbol          Symbol = "DiamondSymbol"
	TriangleSymbol         Symbol = "TriangleSymbol"
	RightTriangleSymbol    Symbol = "RightTriangleSymbol"
	LeftTriangleSymbol     Symbol = "LeftTriangleSymbol"
	InvertedTriangleSymbol Symbol = "InvertedTriangleSymbol"
	CircleSymbol           Symbol = "CircleSymbol"
	CrossSymbol            Symbol = "CrossSymbol"
	Cross2Symbol           Symbol = "Cross2Symbol"
)

var symbols = []Symbol{
	NoSymbol, SquareSymbol, DiamondSymbol, TriangleSymbol, RightTriangleSymbol,
	LeftTriangleSymbol, InvertedTriangleSymbol, CircleSymbol, CrossSymbol, Cross2Symbol,
}

// ParseSymbol resolves a built-in symbol name case-insensitively.
func ParseSymbol(s string) (Symbol, bool) {
	for _, sym := range symbols {
		if strings.EqualFold(s, string(sym)) {
			return sym, true
		}
	}
	return "", false
}

// DataSet is one series of values within a layer.
type DataSet struct {
	Values          []float64 `json:"values"`
	Name            string    `json:"name,omitempty"`
	Color           Color     `json:"color"`
	EdgeColor       Color     `json:"edge_color"`
	ShadowColor     Color     `json:"shadow_color"`
	ShadowEdgeColor Color     `json:"shadow_edge_color"`
	Symbol          Symbol    `json:"symbol,omitempty"`
	SymbolImage     string    `json:"symbol_image,omitempty"`
	SymbolSize      int       `json:"symbol_size,omitempty"`
	SymbolFill      Color     `json:"symbol_fill"`
	SymbolEdge      Color     `json:"symbol_edge"`
}

func newDataSet(values []float64, name string, color Color) DataSet {
	return DataSet{
		Values:          append([]float64(nil), values...),
		Name:            name,
		Color:           color,
		EdgeColor:       Auto,
		ShadowColor:     Auto,
		ShadowEdgeColor: Auto,
		SymbolFill:      Auto,
		SymbolEdge:      Auto,
	}
}

// SetSymbol sets a built-in marker.
func (d *DataSet) SetSymbol(sym Symbol, size int, fill, edge Color) {
	d.Symbol, d.SymbolImage = sym, ""
	d.SymbolSize, d.SymbolFill, d.SymbolEdge = size, fill, edge
}

// SetSymbolImage uses an image file as the marker.
func (d *DataSet) SetSymbolImage(file string) {
	d.Symbol, d.SymbolImage = "", file
}

// SetColors sets the fill, edge and shadow colors.
func (d *DataSet) SetColors(color, edge, shadow, shadowEdge Color) {
	d.Color, d.EdgeColor, d.ShadowColor, d.ShadowEdgeColor = color, edge, shadow, shadowEdge
}

// Layer is a drawing primitive holding one or more data sets.
type Layer struct {
	Type     LayerType `json:"type"`
	DataSets []DataSet `json:"data_sets"`

	// Per-bar colors and names of a multi-color bar layer.
	BarColors []Color  `json:"bar_colors,omitempty"`
	BarNames  []string `json:"bar_names,omitempty"`

	LineWidth      int           `json:"line_width,omitempty"`
	ThreeD         bool          `json:"three_d,omitempty"`
	Depth          int           `json:"depth,omitempty"`
	DepthGap       int           `json:"depth_gap,omitempty"`
	BarGap         *float64      `json:"bar_gap,omitempty"`
	SubBarGap      float64       `json:"sub_bar_gap,omitempty"`
	GapColor       *Color        `json:"gap_color,omitempty"`
	GapWidth       int           `json:"gap_width,omitempty"`
	BorderColor    *Color        `json:"border_color,omitempty"`
	RaiseEffect    int           `json:"raise_effect,omitempty"`
	Combine        CombineMethod `json:"combine,omitempty"`
	DataLabels     *Font         `json:"data_labels,omitempty"`
	AggregateLabel *Font         `json:"aggregate_labels,omitempty"`
}

// DefaultSubBarGap is used when setbargap omits it.
const DefaultSubBarGap = 0.2

// NewLayer creates a layer with a single data set.
func NewLayer(typ LayerType, values []float64, name string, color Color) *Layer {
	return &Layer{Type: typ, DataSets: []DataSet{newDataSet(values, name, color)}}
}

// NewMultiColorBarLayer creates a bar layer where every bar has its own
// color and name. Either slice may be empty.
func NewMultiColorBarLayer(values []float64, colors []Color, names []string) *Layer {
	l := NewLayer(LayerBar, values, "", Auto)
	l.BarColors = append([]Color(nil), colors...)
	l.BarNames = append([]string(nil), names...)
	return l
}

// AddLayer places l in the lowest free slot and returns the slot.
func (c *Chart) AddLayer(l *Layer) (int, error) {
	if err := c.Require(KindXY); err != nil {
		return 0, err
	}
	for i := range c.Layers {
		if c.Layers[i] == nil {
			c.Layers[i] = l
			return i, nil
		}
	}
	return 0, errors.New(errors.ErrCodeNoLayerSlots, "no more available layer slots left")
}

// Layer returns the layer in slot.
func (c *Chart) Layer(slot int) (*Layer, error) {
	if err := c.Require(KindXY); err != nil {
		return nil, err
	}
	if slot < 0 || slot >= MaxLayers || c.Layers[slot] == nil {
		return nil, errors.New(errors.ErrCodeInvalidLayer, "wrong layer #")
	}
	return c.Layers[slot], nil
}

// AddDataSet appends a data set.
func (l *Layer) AddDataSet(values []float64, name string, color Color) {
	l.DataSets = append(l.DataSets, newDataSet(values, name, color))
}

// DataSet returns data set i.
func (l *Layer) DataSet(i int) (*DataSet, bool) {
	if i < 0 || i >= len(l.DataSets) {
		return nil, false
	}
	return &l.DataSets[i], true
}

// SetLineWidth sets the line width used by line, area and trend layers.
func (l *Layer) SetLineWidth(width int) { l.LineWidth = width }

// Set3D switches the layer to 3D. Negative depth or gap keeps the default.
func (l *Layer) Set3D(depth, gap int) {
	l.ThreeD, l.Depth, l.DepthGap = true, depth, gap
}

// SetCombineMethod sets how data sets are combined.
func (l *Layer) SetCombineMethod(m CombineMethod) { l.Combine = m }

// CombineMethod returns the combine method in effect. Bar layers default
// to Side and everything else to Overlay.
func (l *Layer) CombineMethod() CombineMethod {
	if l.Combine != "" {
		return l.Combine
	}
	if l.Type == LayerBar {
		return Side
	}
	return Overlay
}

// SetBarGap sets the gap between bar groups and between bars of a group,
// as fractions of the slot width. Non-bar layers ignore it.
func (l *Layer) SetBarGap(gap, subGap float64) {
	if l.Type != LayerBar {
		return
	}
	l.BarGap, l.SubBarGap = &gap, subGap
}

// SetGapColor sets the color drawn across NoValue gaps of a line layer.
// Other layers ignore it.
func (l *Layer) SetGapColor(color Color, width int) {
	if l.Type != LayerLine {
		return
	}
	l.GapColor, l.GapWidth = &color, width
}

// SetBorderColor sets the bar border color and raised-edge width.
func (l *Layer) SetBorderColor(color Color, raise int) {
	l.BorderColor, l.RaiseEffect = &color, raise
}

// SetDataLabelStyle enables per-point value labels.
func (l *Layer) SetDataLabelStyle(f Font) { l.DataLabels = &f }

// SetAggregateLabelStyle enables labels with the stacked total per index.
func (l *Layer) SetAggregateLabelStyle(f Font) { l.AggregateLabel = &f }
