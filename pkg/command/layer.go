package command

import (
	"context"

	"github.com/matzehuels/chartdir/pkg/chart"
	"github.com/matzehuels/chartdir/pkg/errors"
)

// layerSub is a layer subcommand addressing an existing layer. Its words
// start after the layer slot.
type layerSub struct {
	usage string
	run   func(l *chart.Layer, a *args) error
}

var layerOrder = []string{
	"create", "setlinewidth", "setdatasymbol", "dataset", "setdatacolor",
	"set3d", "setdepth", "setdatacombinemethod", "setbargap", "setgapcolor",
	"setbordercolor", "setdatalabelstyle", "setaggregatelabelstyle",
}

var layerSubs = map[string]layerSub{
	"setlinewidth": {"width", func(l *chart.Layer, a *args) error {
		a.need(1)
		w := a.int(0, 0)
		if a.err == nil {
			l.SetLineWidth(w)
		}
		return a.err
	}},
	"setdatasymbol": {"#dataset symbol ?size? ?fillcolor? ?edgecolor?", func(l *chart.Layer, a *args) error {
		a.need(2)
		ds := a.dataSet(l, 0)
		name := a.str(1, "")
		size := a.int(2, 5)
		fill, edge := a.color(3, chart.Auto), a.color(4, chart.Auto)
		if a.err != nil {
			return a.err
		}
		if sym, ok := chart.ParseSymbol(name); ok {
			ds.SetSymbol(sym, size, fill, edge)
			return nil
		}
		// Anything that is not a built-in symbol is an image file.
		if err := errors.ValidatePath(name); err != nil {
			return err
		}
		ds.SetSymbolImage(name)
		return nil
	}},
	"dataset": {"data ?name? ?color?", func(l *chart.Layer, a *args) error {
		a.need(1)
		data := a.floats(0)
		name := a.str(1, "")
		color := a.color(2, chart.Auto)
		if a.err == nil {
			l.AddDataSet(data, name, color)
		}
		return a.err
	}},
	"setdatacolor": {"#dataset color ?edgecolor? ?shadowcolor? ?shadowedgecolor?", func(l *chart.Layer, a *args) error {
		a.need(2)
		ds := a.dataSet(l, 0)
		color := a.color(1, chart.Auto)
		edge, shadow, shadowEdge := a.color(2, chart.Auto), a.color(3, chart.Auto), a.color(4, chart.Auto)
		if a.err == nil {
			ds.SetColors(color, edge, shadow, shadowEdge)
		}
		return a.err
	}},
	"set3d": {"", func(l *chart.Layer, a *args) error {
		l.Set3D(-1, -1)
		return nil
	}},
	"setdepth": {"depth ?gap?", func(l *chart.Layer, a *args) error {
		a.need(1)
		depth, gap := a.int(0, 0), a.int(1, -1)
		if a.err == nil {
			l.Set3D(depth, gap)
		}
		return a.err
	}},
	"setdatacombinemethod": {"method", func(l *chart.Layer, a *args) error {
		a.need(1)
		m := chart.ParseCombineMethod(a.str(0, ""))
		if a.err == nil {
			l.SetCombineMethod(m)
		}
		return a.err
	}},
	"setbargap": {"gap ?subgap?", func(l *chart.Layer, a *args) error {
		a.need(1)
		gap, sub := a.float(0, 0), a.float(1, chart.DefaultSubBarGap)
		if a.err == nil {
			l.SetBarGap(gap, sub)
		}
		return a.err
	}},
	"setgapcolor": {"color ?width?", func(l *chart.Layer, a *args) error {
		a.need(1)
		color, width := a.color(0, 0), a.int(1, -1)
		if a.err == nil {
			l.SetGapColor(color, width)
		}
		return a.err
	}},
	"setbordercolor": {"color ?raiseeffect?", func(l *chart.Layer, a *args) error {
		a.need(1)
		color, raise := a.color(0, 0), a.int(1, 0)
		if a.err == nil {
			l.SetBorderColor(color, raise)
		}
		return a.err
	}},
	"setdatalabelstyle": {"font ?fontsize? ?fontcolor? ?fontangle?", func(l *chart.Layer, a *args) error {
		a.need(1)
		f := a.font(0, 1, 2, 3, chart.Font{Size: 8, Color: chart.TextColor})
		if a.err == nil {
			l.SetDataLabelStyle(f)
		}
		return a.err
	}},
	"setaggregatelabelstyle": {"font ?fontsize? ?fontcolor? ?fontangle?", func(l *chart.Layer, a *args) error {
		a.need(1)
		f := a.font(0, 1, 2, 3, chart.Font{Size: 8, Color: chart.TextColor})
		if a.err == nil {
			l.SetAggregateLabelStyle(f)
		}
		return a.err
	}},
}

// dataSet reads a data set index of l.
func (a *args) dataSet(l *chart.Layer, i int) *chart.DataSet {
	n := a.int(i, 0)
	if a.err != nil {
		return nil
	}
	ds, ok := l.DataSet(n)
	if !ok {
		a.fail(errors.New(errors.ErrCodeInvalidInput, "wrong dataset #"))
		return nil
	}
	return ds
}

func (in *Interp) layer(ctx context.Context, id uint64, a *args) (Result, error) {
	if !a.has(0) {
		return Empty, errors.Usage("layer #chart command ...")
	}
	subName := a.words[0]
	if subName == "create" {
		return in.layerCreate(ctx, id, newArgs(a.words[1:]))
	}
	sub, ok := layerSubs[subName]
	usage := "layer #chart " + subName + " #layer"
	if sub.usage != "" {
		usage += " " + sub.usage
	}
	return in.update(ctx, id, func(c *chart.Chart) error {
		if err := c.Require(chart.KindXY); err != nil {
			return err
		}
		if !ok {
			return badCommand("command", subName, layerOrder)
		}
		if !a.has(1) {
			return errors.Usage(usage)
		}
		slot, err := parseInt(a.words[1])
		if err != nil {
			return errors.Usage(usage)
		}
		l, err := c.Layer(slot)
		if err != nil {
			return err
		}
		sa := newArgs(a.words[2:])
		if err := sub.run(l, sa); err != nil {
			if sa.err != nil {
				return sa.done(usage)
			}
			return err
		}
		return nil
	})
}

func (in *Interp) layerCreate(ctx context.Context, id uint64, a *args) (Result, error) {
	const usage = "layer #chart create type data ?names? ?colors?"
	slot := 0
	err := in.reg.Use(ctx, id, func(c *chart.Chart) error {
		if err := c.Require(chart.KindXY); err != nil {
			return err
		}
		if !hasFreeSlot(c) {
			return errors.New(errors.ErrCodeNoLayerSlots, "no more available layer slots left")
		}
		a.need(2)
		var typ chart.LayerType
		if a.has(0) {
			t, err := chart.ParseLayerType(a.words[0])
			if err != nil {
				return err
			}
			typ = t
		}
		data := a.floats(1)
		if err := a.done(usage); err != nil {
			return err
		}

		l, err := newLayer(typ, data, a)
		if err != nil {
			return err
		}
		if err := a.done(usage); err != nil {
			return err
		}
		slot, err = c.AddLayer(l)
		return err
	})
	if err != nil {
		return Empty, err
	}
	in.log(ctx).Debug("layer created", "chart", id, "slot", slot)
	return Int(int64(slot)), nil
}

// newLayer builds the layer for layer create. A bar layer takes one name
// per bar when the names list matches the data length, otherwise the word
// names the data set. With per-bar names or colors every bar gets its own
// color, and a single color is ignored in favor of the palette.
func newLayer(typ chart.LayerType, data []float64, a *args) (*chart.Layer, error) {
	if typ != chart.LayerBar {
		return chart.NewLayer(typ, data, a.str(2, ""), a.color(3, chart.Auto)), nil
	}

	var names []string
	name := ""
	if a.has(2) {
		if items := a.list(2); len(items) == len(data) && len(data) > 0 {
			names = items
		} else {
			name = a.words[2]
		}
	}
	colors := a.colors(3)
	if a.err != nil {
		return nil, a.err
	}
	if len(colors) > 1 && len(colors) != len(data) {
		return nil, errors.Usage("layer #chart create type data ?names? ?colors?, invalid number of items in colors")
	}

	if len(colors) <= 1 && names == nil {
		color := chart.Auto
		if len(colors) == 1 {
			color = colors[0]
		}
		return chart.NewLayer(typ, data, name, color), nil
	}
	if len(colors) == 1 {
		colors = nil
	}
	l := chart.NewMultiColorBarLayer(data, colors, names)
	l.DataSets[0].Name = name
	return l, nil
}

func hasFreeSlot(c *chart.Chart) bool {
	for _, l := range c.Layers {
		if l == nil {
			return true
		}
	}
	return false
}

// =============================================================================
// Pie
// =============================================================================

var pieOrder = []string{"setdata", "set3d", "setpiesize"}

func (in *Interp) pie(ctx context.Context, id uint64, a *args) (Result, error) {
	if !a.has(0) {
		return Empty, errors.Usage("pie #chart command ...")
	}
	subName := a.words[0]
	switch subName {
	case "setdata", "set3d", "setpiesize":
	default:
		return Empty, badCommand("command", subName, pieOrder)
	}
	sa := newArgs(a.words[1:])
	return in.update(ctx, id, func(c *chart.Chart) error {
		if err := c.Require(chart.KindPie); err != nil {
			return err
		}
		switch subName {
		case "setdata":
			sa.need(1)
			data := sa.floats(0)
			labels := sa.list(1)
			if err := sa.done("pie #chart setdata data ?labels?"); err != nil {
				return err
			}
			return c.SetPieData(data, labels)
		case "set3d":
			return c.SetPie3D()
		default:
			sa.need(3)
			x, y, r := sa.int(0, 0), sa.int(1, 0), sa.int(2, 0)
			if err := sa.done("pie #chart setpiesize x y r"); err != nil {
				return err
			}
			return c.SetPieSize(x, y, r)
		}
	})
}
