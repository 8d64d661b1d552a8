package chart

import "github.com/matzehuels/chartdir/pkg/errors"

// AxisID names one of the four axes of an XY chart.
type AxisID string

const (
	AxisX  AxisID = "x"
	AxisX2 AxisID = "x2"
	AxisY  AxisID = "y"
	AxisY2 AxisID = "y2"
)

// ScaleMode selects how an axis maps values to positions.
type ScaleMode string

const (
	ScaleLinear ScaleMode = "linear"
	ScaleLog    ScaleMode = "log"
)

// Scale is an explicit axis range. A zero TickInc lets the renderer pick
// the ticks.
type Scale struct {
	Mode    ScaleMode `json:"mode"`
	Lower   float64   `json:"lower"`
	Upper   float64   `json:"upper"`
	TickInc float64   `json:"tick_inc,omitempty"`
}

// AutoScale tunes automatic ranges. Top and Bottom are fractions of the data
// span added beyond the data. ZeroAffinity is how readily the range is
// extended to include zero: 0 never, 1 always.
type AutoScale struct {
	Top          float64 `json:"top"`
	Bottom       float64 `json:"bottom"`
	ZeroAffinity float64 `json:"zero_affinity"`
}

// DefaultZeroAffinity is used when setautoscale omits it.
const DefaultZeroAffinity = 0.8

// Mark is a reference line across the plot area at a fixed axis value.
type Mark struct {
	Value     float64   `json:"value"`
	LineColor Color     `json:"line_color"`
	LineWidth int       `json:"line_width"`
	Text      string    `json:"text,omitempty"`
	Align     Alignment `json:"align"`
	Font      Font      `json:"font"`
	OnTop     bool      `json:"on_top"`
	TickColor Color     `json:"tick_color"`
}

// NewMark returns a mark with an 8pt top-centered label drawn on top of the
// layers. The tick takes the line color.
func NewMark(value float64, lineColor Color, lineWidth int, text string) Mark {
	return Mark{
		Value:     value,
		LineColor: lineColor,
		LineWidth: lineWidth,
		Text:      text,
		Align:     TopCenter,
		Font:      Font{Size: 8, Color: TextColor},
		OnTop:     true,
		TickColor: lineColor,
	}
}

// Zone is a colored band between two axis values.
type Zone struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Color Color   `json:"color"`
}

// Axis holds everything configured on one axis.
type Axis struct {
	Title       string     `json:"title,omitempty"`
	Labels      []string   `json:"labels,omitempty"`
	LabelStyle  *Font      `json:"label_style,omitempty"`
	LabelFormat string     `json:"label_format,omitempty"`
	Indent      *bool      `json:"indent,omitempty"`
	Scale       *Scale     `json:"scale,omitempty"`
	AutoScale   *AutoScale `json:"auto_scale,omitempty"`
	TickDensity int        `json:"tick_density,omitempty"`
	MajorTick   int        `json:"major_tick,omitempty"`
	MinorTick   int        `json:"minor_tick,omitempty"`
	Width       int        `json:"width,omitempty"`
	TopMargin   int        `json:"top_margin,omitempty"`
	Marks       []Mark     `json:"marks,omitempty"`
	Zones       []Zone     `json:"zones,omitempty"`
}

// Axis returns the axis with the given id. Only XY charts have axes.
func (c *Chart) Axis(id AxisID) (*Axis, error) {
	if err := c.Require(KindXY); err != nil {
		return nil, err
	}
	switch id {
	case AxisX:
		return &c.XAxis, nil
	case AxisX2:
		return &c.XAxis2, nil
	case AxisY:
		return &c.YAxis, nil
	case AxisY2:
		return &c.YAxis2, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown axis %q", id)
}

// SetTitle sets the axis title.
func (a *Axis) SetTitle(title string) { a.Title = title }

// SetLabels sets the category labels, one per data index.
func (a *Axis) SetLabels(labels []string) { a.Labels = append([]string(nil), labels...) }

// SetLabelStyle sets the tick label font.
func (a *Axis) SetLabelStyle(f Font) { a.LabelStyle = &f }

// SetLabelFormat sets a printf-style format for numeric tick labels.
func (a *Axis) SetLabelFormat(format string) { a.LabelFormat = format }

// SetIndent controls whether the first and last categories are indented
// half a slot from the axis ends.
func (a *Axis) SetIndent(indent bool) { a.Indent = &indent }

// SetLinearScale fixes the axis range.
func (a *Axis) SetLinearScale(lower, upper, tickInc float64) {
	a.Scale = &Scale{Mode: ScaleLinear, Lower: lower, Upper: upper, TickInc: tickInc}
}

// SetLogScale fixes a logarithmic axis range.
func (a *Axis) SetLogScale(lower, upper, tickInc float64) error {
	if lower <= 0 || upper <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "log scale limits must be positive")
	}
	a.Scale = &Scale{Mode: ScaleLog, Lower: lower, Upper: upper, TickInc: tickInc}
	return nil
}

// SetAutoScale configures automatic range selection and drops any fixed
// linear scale.
func (a *Axis) SetAutoScale(top, bottom, zeroAffinity float64) {
	a.AutoScale = &AutoScale{Top: top, Bottom: bottom, ZeroAffinity: zeroAffinity}
	if a.Scale != nil && a.Scale.Mode == ScaleLinear {
		a.Scale = nil
	}
}

// SetTickDensity sets the preferred distance between ticks in pixels.
func (a *Axis) SetTickDensity(density int) { a.TickDensity = density }

// SetTickLength sets major and minor tick lengths.
func (a *Axis) SetTickLength(major, minor int) { a.MajorTick, a.MinorTick = major, minor }

// SetWidth sets the axis line width.
func (a *Axis) SetWidth(width int) { a.Width = width }

// SetTopMargin reserves space between the top of the axis and the plot area.
func (a *Axis) SetTopMargin(margin int) { a.TopMargin = margin }

// AddMark adds a reference mark.
func (a *Axis) AddMark(m Mark) {
	if m.TickColor == 0 {
		m.TickColor = m.LineColor
	}
	a.Marks = append(a.Marks, m)
}

// AddZone adds a colored band.
func (a *Axis) AddZone(z Zone) { a.Zones = append(a.Zones, z) }
