package render

import (
	"github.com/golang/freetype/truetype"
	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/matzehuels/chartdir/pkg/chart"
)

// dpi makes font sizes in points equal pixel sizes.
const dpi = 72

// builder translates one chart model for one render.
type builder struct {
	r    *Renderer
	c    *chart.Chart
	col  colors
	font *truetype.Font

	// underlay is set when background images are composited under the
	// rendered output; the chart is then drawn on a transparent
	// background.
	underlay bool

	legend      []legendEntry
	unsupported map[string]bool
}

func newBuilder(r *Renderer, c *chart.Chart) *builder {
	b := &builder{
		r:           r,
		c:           c,
		col:         colors{c: c},
		font:        r.fonts.Default(),
		unsupported: make(map[string]bool),
	}
	b.underlay = c.BgImage != nil || c.Wallpaper != "" || (c.PlotArea != nil && c.PlotArea.BgImage != nil)
	return b
}

// loadFont resolves a font name, falling back to the default face.
func (b *builder) loadFont(name string) *truetype.Font {
	if name == "" {
		return b.font
	}
	f, err := b.r.fonts.Load(name)
	if err != nil {
		b.r.logger.Debug("font fallback", "font", name, "error", err)
		return b.font
	}
	return f
}

func (b *builder) style(f chart.Font) textStyle {
	size := f.Size
	if size <= 0 {
		size = 8
	}
	return textStyle{
		font:  b.loadFont(f.Name),
		size:  size,
		color: b.col.draw(f.Color, chart.TextColor),
		angle: f.Angle,
	}
}

// background is the style of the whole image box.
func (b *builder) background() gochart.Style {
	fill := b.col.draw(b.c.Background.Color, chart.BackgroundColor)
	if b.underlay {
		fill = transparent
	}
	return gochart.Style{
		FillColor:   fill,
		StrokeColor: b.col.draw(b.c.Background.Edge, chart.Auto),
		StrokeWidth: 1,
	}
}

func (b *builder) note(feature string) {
	b.unsupported[feature] = true
}

// collectUnsupported records model settings the wrapped library cannot
// draw.
func (b *builder) collectUnsupported() {
	c := b.c
	if c.Background.Border > 0 {
		b.note("raised background border")
	}
	for _, d := range c.Dynamic {
		if d.Kind != chart.DynamicDash {
			b.note("pattern and gradient fills")
		}
	}
	if c.Kind == chart.KindPie {
		if c.Pie.ThreeD {
			b.note("3D pie")
		}
		return
	}
	for _, a := range []*chart.Axis{&c.XAxis, &c.YAxis, &c.YAxis2} {
		if a.MajorTick != 0 || a.MinorTick != 0 {
			b.note("tick lengths")
		}
	}
	x2 := c.XAxis2
	if x2.Title != "" || len(x2.Labels) > 0 || len(x2.Marks) > 0 || len(x2.Zones) > 0 || x2.Scale != nil {
		b.note("secondary x axis")
	}
	for _, l := range c.Layers {
		if l == nil {
			continue
		}
		if l.ThreeD || l.Depth > 0 {
			b.note("3D depth")
		}
		if l.RaiseEffect != 0 {
			b.note("bar raise effect")
		}
		for _, ds := range l.DataSets {
			if ds.SymbolImage != "" {
				b.note("symbol images")
			}
		}
	}
}

func (b *builder) logUnsupported() {
	b.collectUnsupported()
	for f := range b.unsupported {
		b.r.logger.Debug("not rendered", "feature", f)
	}
}
