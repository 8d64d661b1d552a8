package command

import (
	"context"

	"github.com/matzehuels/chartdir/pkg/chart"
	"github.com/matzehuels/chartdir/pkg/errors"
)

// axisSub is one axis subcommand. Its words start after the subcommand
// name.
type axisSub struct {
	usage string
	run   func(c *chart.Chart, ax *chart.Axis, a *args) error
}

var xAxisOrder = []string{
	"settitle", "setlabels", "setlabelstyle", "setindent", "setlinearscale",
	"setticklength", "setwidth", "addmark", "addzone",
}

var yAxisOrder = []string{
	"settitle", "setformat", "setlabelstyle", "settopmargin", "setlinearscale",
	"setautoscale", "settickdensity", "setlogscale", "setticklength", "setwidth",
	"addmark", "addzone", "syncyaxis", "setyaxisonright",
}

var axisSubs = map[string]axisSub{
	"settitle": {"text", func(_ *chart.Chart, ax *chart.Axis, a *args) error {
		a.need(1)
		title := a.str(0, "")
		if a.err == nil {
			ax.SetTitle(title)
		}
		return a.err
	}},
	"setlabels": {"labels", func(_ *chart.Chart, ax *chart.Axis, a *args) error {
		a.need(1)
		labels := a.list(0)
		if a.err == nil {
			ax.SetLabels(labels)
		}
		return a.err
	}},
	"setlabelstyle": {"font fontsize fontcolor fontangle", func(_ *chart.Chart, ax *chart.Axis, a *args) error {
		a.need(4)
		f := a.font(0, 1, 2, 3, chart.Font{})
		if a.err == nil {
			ax.SetLabelStyle(f)
		}
		return a.err
	}},
	"setindent": {"indent", func(_ *chart.Chart, ax *chart.Axis, a *args) error {
		a.need(1)
		indent := a.bool(0, true)
		if a.err == nil {
			ax.SetIndent(indent)
		}
		return a.err
	}},
	"setlinearscale": {"lowerlimit upperlimit ?tickinc?", func(_ *chart.Chart, ax *chart.Axis, a *args) error {
		a.need(2)
		lo, hi, inc := a.float(0, 0), a.float(1, 0), a.float(2, 0)
		if a.err == nil {
			ax.SetLinearScale(lo, hi, inc)
		}
		return a.err
	}},
	"setlogscale": {"lowerlimit upperlimit ?tickinc?", func(_ *chart.Chart, ax *chart.Axis, a *args) error {
		a.need(2)
		lo, hi, inc := a.float(0, 0), a.float(1, 0), a.float(2, 0)
		if a.err != nil {
			return a.err
		}
		return ax.SetLogScale(lo, hi, inc)
	}},
	"setautoscale": {"topextension ?bottomextension? ?zeroaffinity?", func(_ *chart.Chart, ax *chart.Axis, a *args) error {
		a.need(1)
		top, bottom, za := a.float(0, 0), a.float(1, 0), a.float(2, chart.DefaultZeroAffinity)
		if a.err == nil {
			ax.SetAutoScale(top, bottom, za)
		}
		return a.err
	}},
	"setticklength": {"major ?minor?", func(_ *chart.Chart, ax *chart.Axis, a *args) error {
		a.need(1)
		major, minor := a.int(0, 0), a.int(1, 0)
		if a.err == nil {
			ax.SetTickLength(major, minor)
		}
		return a.err
	}},
	"settickdensity": {"density", func(_ *chart.Chart, ax *chart.Axis, a *args) error {
		a.need(1)
		d := a.int(0, 0)
		if a.err == nil {
			ax.SetTickDensity(d)
		}
		return a.err
	}},
	"setwidth": {"width", func(_ *chart.Chart, ax *chart.Axis, a *args) error {
		a.need(1)
		w := a.int(0, 0)
		if a.err == nil {
			ax.SetWidth(w)
		}
		return a.err
	}},
	"settopmargin": {"margin", func(_ *chart.Chart, ax *chart.Axis, a *args) error {
		a.need(1)
		m := a.int(0, 0)
		if a.err == nil {
			ax.SetTopMargin(m)
		}
		return a.err
	}},
	"setformat": {"format", func(c *chart.Chart, _ *chart.Axis, a *args) error {
		a.need(1)
		format := a.str(0, "")
		if a.err == nil {
			// The format always applies to the primary Y axis.
			c.YAxis.SetLabelFormat(format)
		}
		return a.err
	}},
	"addmark": {"value linecolor linewidth text ?align? ?font? ?fontsize? ?fontcolor? ?fontangle? ?ontop? ?tickcolor?", func(_ *chart.Chart, ax *chart.Axis, a *args) error {
		a.need(4)
		m := chart.NewMark(a.float(0, 0), a.color(1, 0), a.int(2, 0), a.str(3, ""))
		m.Align = a.align(4, chart.TopCenter)
		m.Font = a.font(5, 6, 7, 8, m.Font)
		m.OnTop = a.bool(9, true)
		m.TickColor = a.color(10, m.TickColor)
		if a.err == nil {
			ax.AddMark(m)
		}
		return a.err
	}},
	"addzone": {"start end color", func(_ *chart.Chart, ax *chart.Axis, a *args) error {
		a.need(3)
		z := chart.Zone{Start: a.float(0, 0), End: a.float(1, 0), Color: a.color(2, 0)}
		if a.err == nil {
			ax.AddZone(z)
		}
		return a.err
	}},
	"syncyaxis": {"slope ?intercept?", func(c *chart.Chart, _ *chart.Axis, a *args) error {
		a.need(1)
		slope, intercept := a.float(0, 0), a.float(1, 0)
		if a.err != nil {
			return a.err
		}
		return c.SyncYAxis(slope, intercept)
	}},
	"setyaxisonright": {"onright", func(c *chart.Chart, _ *chart.Axis, a *args) error {
		a.need(1)
		right := a.bool(0, true)
		if a.err != nil {
			return a.err
		}
		return c.SetYAxisOnRight(right)
	}},
}

// axisCommand handles xaxis, xaxis2, yaxis and yaxis2.
func axisCommand(id chart.AxisID) chartHandler {
	name := "xaxis"
	order := xAxisOrder
	switch id {
	case chart.AxisX2:
		name = "xaxis2"
	case chart.AxisY:
		name, order = "yaxis", yAxisOrder
	case chart.AxisY2:
		name, order = "yaxis2", yAxisOrder
	}
	return func(in *Interp, ctx context.Context, chartID uint64, a *args) (Result, error) {
		return in.update(ctx, chartID, func(c *chart.Chart) error {
			if err := c.Require(chart.KindXY); err != nil {
				return err
			}
			if !a.has(0) {
				return errors.Usage(name + " #chart command ...")
			}
			subName := a.words[0]
			sub, ok := axisSubs[subName]
			if !ok || !contains(order, subName) {
				return badCommand("command", subName, order)
			}
			ax, err := c.Axis(id)
			if err != nil {
				return err
			}
			sa := newArgs(a.words[1:])
			if err := sub.run(c, ax, sa); err != nil {
				if sa.err != nil {
					return sa.done(name + " #chart " + subName + " " + sub.usage)
				}
				return err
			}
			return nil
		})
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
