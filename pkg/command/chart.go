package command

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/chartdir/pkg/chart"
	"github.com/matzehuels/chartdir/pkg/errors"
	"github.com/matzehuels/chartdir/pkg/render"
)

// update runs fn on chart id. Parameters are read and checked before fn
// changes anything.
func (in *Interp) update(ctx context.Context, id uint64, fn func(c *chart.Chart) error) (Result, error) {
	return Empty, in.reg.Use(ctx, id, fn)
}

func (in *Interp) setBackground(ctx context.Context, id uint64, a *args) (Result, error) {
	return in.update(ctx, id, func(c *chart.Chart) error {
		a.need(1)
		bg := a.color(0, 0)
		edge := a.color(1, chart.Auto)
		border := a.int(2, 0)
		if err := a.done("setbackground #chart bgcolor ?edgecolor? ?border?"); err != nil {
			return err
		}
		c.SetBackground(bg, edge, border)
		return nil
	})
}

func (in *Interp) setSize(ctx context.Context, id uint64, a *args) (Result, error) {
	return in.update(ctx, id, func(c *chart.Chart) error {
		a.need(2)
		w, h := a.int(0, 0), a.int(1, 0)
		if err := a.done("setsize #chart width height"); err != nil {
			return err
		}
		return c.SetSize(w, h)
	})
}

func (in *Interp) setPlotArea(ctx context.Context, id uint64, a *args) (Result, error) {
	return in.update(ctx, id, func(c *chart.Chart) error {
		if err := c.Require(chart.KindXY); err != nil {
			return err
		}
		a.need(4)
		pa := chart.NewPlotArea(a.int(0, 0), a.int(1, 0), a.int(2, 0), a.int(3, 0))
		pa.Background = a.color(4, pa.Background)
		pa.AltBackground = a.color(5, pa.AltBackground)
		pa.Edge = a.color(6, pa.Edge)
		pa.HGrid = a.color(7, pa.HGrid)
		pa.VGrid = a.color(8, pa.VGrid)
		if err := a.done("setplotarea #chart x y width height ?bgcolor? ?altbgcolor? ?edgecolor? ?hgridcolor? ?vgridcolor?"); err != nil {
			return err
		}
		return c.SetPlotArea(pa)
	})
}

func (in *Interp) addLegend(ctx context.Context, id uint64, a *args) (Result, error) {
	return in.update(ctx, id, func(c *chart.Chart) error {
		a.need(2)
		l := chart.NewLegend(a.int(0, 0), a.int(1, 0))
		l.Vertical = a.bool(2, l.Vertical)
		l.Background = a.color(3, l.Background)
		l.Edge = a.color(4, l.Edge)
		l.Font = a.font(5, 6, 7, 8, l.Font)
		l.Align = a.align(9, l.Align)
		if err := a.done("addlegend #chart x y ?vertical? ?bgcolor? ?edgecolor? ?font? ?fontheight? ?fontcolor? ?fontangle? ?align?"); err != nil {
			return err
		}
		c.AddLegend(l)
		return nil
	})
}

func (in *Interp) addTitle(ctx context.Context, id uint64, a *args) (Result, error) {
	return in.update(ctx, id, func(c *chart.Chart) error {
		a.need(1)
		t := chart.NewTitle(a.str(0, ""))
		// A named but unknown alignment centers the title.
		t.Align = chart.ParseAlignment(a.str(1, "Top"), chart.Center)
		t.Font = a.font(2, 3, 4, -1, t.Font)
		t.Background = a.color(5, t.Background)
		t.Edge = a.color(6, t.Edge)
		t.Border = a.int(7, 0)
		if err := a.done("addtitle #chart title ?alignment? ?font? ?fontheight? ?fontcolor? ?bgcolor? ?edgecolor? ?border?"); err != nil {
			return err
		}
		c.AddTitle(t)
		return nil
	})
}

func (in *Interp) addText(ctx context.Context, id uint64, a *args) (Result, error) {
	return in.update(ctx, id, func(c *chart.Chart) error {
		a.need(3)
		t := chart.NewText(a.int(0, 0), a.int(1, 0), a.str(2, ""))
		t.Font = a.font(3, 4, 5, -1, t.Font)
		t.Align = a.align(6, t.Align)
		t.Font.Angle = a.float(7, 0)
		t.Vertical = a.bool(8, false)
		if err := a.done("addtext #chart x y text ?font? ?fontsize? ?fontcolor? ?alignment? ?angle? ?vertical?"); err != nil {
			return err
		}
		c.AddText(t)
		return nil
	})
}

func (in *Interp) setBgImage(ctx context.Context, id uint64, a *args) (Result, error) {
	return in.update(ctx, id, func(c *chart.Chart) error {
		a.need(1)
		file := a.path(0)
		align := a.align(1, chart.Center)
		// Any third word selects the plot area.
		plotArea := a.has(2)
		if err := a.done("setbgimage #chart name ?align? ?-plotarea?"); err != nil {
			return err
		}
		c.SetBgImage(file, align, plotArea)
		return nil
	})
}

func (in *Interp) setWallpaper(ctx context.Context, id uint64, a *args) (Result, error) {
	return in.update(ctx, id, func(c *chart.Chart) error {
		a.need(1)
		file := a.path(0)
		if err := a.done("setwallpaper #chart name"); err != nil {
			return err
		}
		c.SetWallpaper(file)
		return nil
	})
}

func (in *Interp) setColors(ctx context.Context, id uint64, a *args) (Result, error) {
	return in.update(ctx, id, func(c *chart.Chart) error {
		a.need(1)
		if p, ok := chart.NamedPalette(a.str(0, "")); ok {
			c.SetColors(p)
			return nil
		}
		colors := a.colors(0)
		if err := a.done("setcolors #chart palette"); err != nil {
			return err
		}
		c.SetColors(chart.OverlayPalette(colors))
		return nil
	})
}

// =============================================================================
// Dynamic colors
// =============================================================================

func (in *Interp) dashLineColor(ctx context.Context, id uint64, a *args) (Result, error) {
	var out chart.Color
	err := in.reg.Use(ctx, id, func(c *chart.Chart) error {
		a.need(2)
		color := a.color(0, 0)
		pattern := 0
		if a.has(1) {
			p, err := chart.ParseLinePattern(a.str(1, ""))
			if err != nil {
				a.fail(err)
			}
			pattern = p
		}
		if err := a.done("dashlinecolor #chart color pattern"); err != nil {
			return err
		}
		out = c.DashLineColor(color, pattern)
		return nil
	})
	if err != nil {
		return Empty, err
	}
	return colorResult(out), nil
}

func (in *Interp) patternColor(ctx context.Context, id uint64, a *args) (Result, error) {
	var out chart.Color
	err := in.reg.Use(ctx, id, func(c *chart.Chart) error {
		const usage = "patterncolor #chart pattern ?width? ?height? ?startx? ?starty?"
		a.need(1)
		items := a.list(0)
		width, height := a.int(1, 0), a.int(2, 0)
		startX, startY := a.int(3, 0), a.int(4, 0)
		if err := a.done(usage); err != nil {
			return err
		}
		// A single non-integer element names an image file.
		if len(items) == 1 {
			if _, err := parseInt(items[0]); err != nil {
				if err := errors.ValidatePath(items[0]); err != nil {
					return err
				}
				out = c.PatternImageColor(items[0], startX, startY)
				return nil
			}
		}
		pixels := a.colors(0)
		if err := a.done(usage); err != nil {
			return err
		}
		col, err := c.PatternColor(pixels, width, height, startX, startY)
		out = col
		return err
	})
	if err != nil {
		return Empty, err
	}
	return colorResult(out), nil
}

func (in *Interp) gradientColor(ctx context.Context, id uint64, a *args) (Result, error) {
	var out chart.Color
	err := in.reg.Use(ctx, id, func(c *chart.Chart) error {
		const usage = "gradientcolor #chart array ?angle? ?scale? ?startx? ?starty?"
		a.need(1)
		items := a.list(0)
		angle, scale := a.float(1, 90), a.float(2, 1)
		startX, startY := a.int(3, 0), a.int(4, 0)
		if err := a.done(usage); err != nil {
			return err
		}
		var stops []chart.GradientStop
		if len(items) == 1 {
			stops, _ = chart.NamedGradient(items[0])
		}
		if stops == nil {
			arr := a.colors(0)
			if err := a.done(usage); err != nil {
				return err
			}
			stops = chart.GradientStops(arr)
		}
		out = c.GradientColor(stops, angle, scale, startX, startY)
		return nil
	})
	if err != nil {
		return Empty, err
	}
	return colorResult(out), nil
}

// =============================================================================
// Output
// =============================================================================

// snapshot touches id and returns a copy of its chart for rendering outside
// the store lock.
func (in *Interp) snapshot(ctx context.Context, id uint64) (*chart.Chart, error) {
	var snap *chart.Chart
	err := in.reg.Use(ctx, id, func(c *chart.Chart) error {
		var err error
		snap, err = c.Clone()
		return err
	})
	return snap, err
}

func (in *Interp) renderFormat(ctx context.Context, id uint64, a *args) ([]byte, render.Format, error) {
	c, err := in.snapshot(ctx, id)
	if err != nil {
		return nil, "", err
	}
	f, err := render.ParseFormat(a.str(0, ""))
	if err != nil {
		return nil, "", err
	}
	data, err := in.renderer.Render(ctx, c, f)
	return data, f, err
}

func (in *Interp) image(ctx context.Context, id uint64, a *args) (Result, error) {
	data, f, err := in.renderFormat(ctx, id, a)
	if err != nil {
		return Empty, err
	}
	return Bytes(data, f.ContentType()), nil
}

// respond writes the image to the current request. The result is 1 when
// the write succeeded and 0 otherwise.
func (in *Interp) respond(ctx context.Context, id uint64, a *args) (Result, error) {
	data, f, err := in.renderFormat(ctx, id, a)
	if err != nil {
		return Empty, err
	}
	resp := responderFrom(ctx)
	if resp == nil {
		return Empty, errors.New(errors.ErrCodeNoConnection, "no connection")
	}
	if err := resp.Respond(data, f.ContentType()); err != nil {
		in.log(ctx).Debug("return image", "chart", id, "error", err)
		return Int(0), nil
	}
	return Int(1), nil
}

func (in *Interp) save(ctx context.Context, id uint64, a *args) (Result, error) {
	c, err := in.snapshot(ctx, id)
	if err != nil {
		return Empty, err
	}
	a.need(1)
	name := a.path(0)
	if err := a.done("save #chart filename"); err != nil {
		return Empty, err
	}
	f, err := render.FormatFromFilename(name)
	if err != nil {
		return Empty, err
	}
	data, err := in.renderer.Render(ctx, c, f)
	if err != nil {
		return Empty, err
	}

	path, err := errors.ResolvePath(in.outputDir, name)
	if err != nil {
		return Empty, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Empty, errors.Wrap(errors.ErrCodeInternal, err, "create output directory")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Empty, errors.Wrap(errors.ErrCodeInternal, err, "write %s", name)
	}
	in.log(ctx).Debug("chart saved", "chart", id, "path", path, "bytes", len(data))
	return Empty, nil
}

func (in *Interp) destroy(ctx context.Context, id uint64, _ *args) (Result, error) {
	return Empty, in.reg.Destroy(ctx, id)
}
