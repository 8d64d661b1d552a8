package render

import (
	"math"
	"strings"

	"github.com/golang/freetype/truetype"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/matzehuels/chartdir/pkg/chart"
)

// rect fills and outlines an axis-aligned rectangle. A transparent stroke
// skips the outline.
func rect(r gochart.Renderer, x0, y0, x1, y1 int, fill, stroke drawing.Color, width float64) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	r.ResetStyle()
	r.SetFillColor(fill)
	r.SetStrokeColor(stroke)
	r.SetStrokeWidth(width)
	r.MoveTo(x0, y0)
	r.LineTo(x1, y0)
	r.LineTo(x1, y1)
	r.LineTo(x0, y1)
	r.Close()
	switch {
	case stroke.A == 0 && fill.A == 0:
	case stroke.A == 0:
		r.Fill()
	case fill.A == 0:
		r.Stroke()
	default:
		r.FillStroke()
	}
}

// line strokes a straight segment.
func line(r gochart.Renderer, x0, y0, x1, y1 int, color drawing.Color, width float64, dash []float64) {
	if color.A == 0 || width <= 0 {
		return
	}
	r.ResetStyle()
	r.SetStrokeColor(color)
	r.SetStrokeWidth(width)
	if len(dash) > 0 {
		r.SetStrokeDashArray(dash)
	}
	r.MoveTo(x0, y0)
	r.LineTo(x1, y1)
	r.Stroke()
}

// polygon fills and outlines a closed path.
func polygon(r gochart.Renderer, pts [][2]int, fill, stroke drawing.Color) {
	if len(pts) < 3 {
		return
	}
	r.ResetStyle()
	r.SetFillColor(fill)
	r.SetStrokeColor(stroke)
	r.SetStrokeWidth(1)
	r.MoveTo(pts[0][0], pts[0][1])
	for _, p := range pts[1:] {
		r.LineTo(p[0], p[1])
	}
	r.Close()
	if stroke.A == 0 {
		r.Fill()
		return
	}
	r.FillStroke()
}

// symbol draws a data point marker of the given size centered at x, y.
func symbol(r gochart.Renderer, sym chart.Symbol, x, y, size int, fill, edge drawing.Color) {
	h := size / 2
	if h < 1 {
		h = 1
	}
	switch sym {
	case chart.NoSymbol, "":
	case chart.SquareSymbol:
		rect(r, x-h, y-h, x+h, y+h, fill, edge, 1)
	case chart.DiamondSymbol:
		polygon(r, [][2]int{{x, y - h}, {x + h, y}, {x, y + h}, {x - h, y}}, fill, edge)
	case chart.TriangleSymbol:
		polygon(r, [][2]int{{x, y - h}, {x + h, y + h}, {x - h, y + h}}, fill, edge)
	case chart.InvertedTriangleSymbol:
		polygon(r, [][2]int{{x - h, y - h}, {x + h, y - h}, {x, y + h}}, fill, edge)
	case chart.RightTriangleSymbol:
		polygon(r, [][2]int{{x - h, y - h}, {x + h, y}, {x - h, y + h}}, fill, edge)
	case chart.LeftTriangleSymbol:
		polygon(r, [][2]int{{x + h, y - h}, {x + h, y + h}, {x - h, y}}, fill, edge)
	case chart.CrossSymbol:
		t := h / 3
		if t < 1 {
			t = 1
		}
		polygon(r, [][2]int{
			{x - t, y - h}, {x + t, y - h}, {x + t, y - t}, {x + h, y - t},
			{x + h, y + t}, {x + t, y + t}, {x + t, y + h}, {x - t, y + h},
			{x - t, y + t}, {x - h, y + t}, {x - h, y - t}, {x - t, y - t},
		}, fill, edge)
	case chart.Cross2Symbol:
		line(r, x-h, y-h, x+h, y+h, fill, 2, nil)
		line(r, x-h, y+h, x+h, y-h, fill, 2, nil)
	default:
		r.ResetStyle()
		r.SetFillColor(fill)
		r.SetStrokeColor(edge)
		r.SetStrokeWidth(1)
		r.Circle(float64(h), x, y)
		if edge.A == 0 {
			r.Fill()
		} else {
			r.FillStroke()
		}
	}
}

// textStyle is a resolved font.
type textStyle struct {
	font  *truetype.Font
	size  float64
	color drawing.Color
	angle float64
}

func (t textStyle) apply(r gochart.Renderer) {
	r.ResetStyle()
	r.SetFont(t.font)
	r.SetFontSize(t.size)
	r.SetFontColor(t.color)
}

// measure returns the width and height of a possibly multi-line string.
func (t textStyle) measure(r gochart.Renderer, s string) (int, int) {
	t.apply(r)
	var w, h int
	for i, ln := range strings.Split(s, "\n") {
		b := r.MeasureText(ln)
		if b.Width() > w {
			w = b.Width()
		}
		h += b.Height()
		if i > 0 {
			h += lineSpacing(t.size)
		}
	}
	return w, h
}

func lineSpacing(size float64) int {
	return int(math.Ceil(size / 4))
}

// text draws s so that the anchor point x, y sits at the given alignment
// of the text box: TopLeft puts the box's top-left corner at x, y.
func (t textStyle) text(r gochart.Renderer, s string, x, y int, align chart.Alignment) {
	if s == "" || t.color.A == 0 {
		return
	}
	w, h := t.measure(r, s)
	left, top := anchor(x, y, w, h, align)

	t.apply(r)
	if t.angle != 0 {
		r.SetTextRotation(t.angle * math.Pi / 180)
		defer r.ClearTextRotation()
	}
	for _, ln := range strings.Split(s, "\n") {
		b := r.MeasureText(ln)
		lx := left
		switch align.Horizontal() {
		case 0:
			lx = left + (w-b.Width())/2
		case 1:
			lx = left + w - b.Width()
		}
		top += b.Height()
		r.Text(ln, lx, top)
		top += lineSpacing(t.size)
	}
}

// anchor returns the top-left corner of a w x h box aligned on x, y.
func anchor(x, y, w, h int, align chart.Alignment) (int, int) {
	switch align.Horizontal() {
	case 0:
		x -= w / 2
	case 1:
		x -= w
	}
	switch align.Vertical() {
	case 0:
		y -= h / 2
	case 1:
		y -= h
	}
	return x, y
}

// place returns the top-left corner of a w x h box aligned inside the
// rectangle bx, by, bw, bh.
func place(bx, by, bw, bh, w, h int, align chart.Alignment) (int, int) {
	x := bx + (bw-w)/2
	switch align.Horizontal() {
	case -1:
		x = bx
	case 1:
		x = bx + bw - w
	}
	y := by + (bh-h)/2
	switch align.Vertical() {
	case -1:
		y = by
	case 1:
		y = by + bh - h
	}
	return x, y
}
