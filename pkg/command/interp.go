// Package command implements the chartdir command language.
//
// A command is a list of words: the command name, usually a chart handle,
// then positional arguments. Optional arguments are positional too and
// take their documented default when absent:
//
//	res, err := in.Exec(ctx, []string{"create", "xy", "400", "300"})
//	in.Exec(ctx, []string{"layer", res.String(), "create", "line", "1 4 2 8", "sales"})
//	img, err := in.Exec(ctx, []string{"image", res.String(), "png"})
//
// Chart handles live in a [registry.Registry]; every command that names a
// handle touches it before running. Scripts (see [ParseScript]) run a
// sequence of commands with variables.
package command

import (
	"context"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartdir/pkg/buildinfo"
	"github.com/matzehuels/chartdir/pkg/chart"
	"github.com/matzehuels/chartdir/pkg/errors"
	"github.com/matzehuels/chartdir/pkg/observability"
	"github.com/matzehuels/chartdir/pkg/registry"
	"github.com/matzehuels/chartdir/pkg/render"
)

// Responder writes an image to the client of the current request. The
// return command uses the responder carried by the context.
type Responder interface {
	Respond(data []byte, contentType string) error
}

type responderKey struct{}

// WithResponder attaches r to ctx.
func WithResponder(ctx context.Context, r Responder) context.Context {
	return context.WithValue(ctx, responderKey{}, r)
}

func responderFrom(ctx context.Context) Responder {
	r, _ := ctx.Value(responderKey{}).(Responder)
	return r
}

type loggerKey struct{}

// WithLogger attaches a logger to ctx. Commands run under ctx log through
// it instead of the interpreter's own logger, so a server can tag command
// logs with the request they belong to.
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func (in *Interp) log(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return in.logger
}

// Options configures an Interp.
type Options struct {
	Registry *registry.Registry
	Renderer *render.Renderer

	// OutputDir is where save writes files.
	OutputDir string

	Logger *log.Logger
}

// Interp executes commands. It is safe for concurrent use.
type Interp struct {
	reg       *registry.Registry
	renderer  *render.Renderer
	outputDir string
	logger    *log.Logger
}

// New creates an interpreter.
func New(opts Options) *Interp {
	in := &Interp{
		reg:       opts.Registry,
		renderer:  opts.Renderer,
		outputDir: opts.OutputDir,
		logger:    opts.Logger,
	}
	if in.reg == nil {
		in.reg = registry.New(registry.NewMemoryStore(), registry.DefaultIdleTimeout)
	}
	if in.renderer == nil {
		in.renderer = render.New(render.Options{})
	}
	if in.outputDir == "" {
		in.outputDir = "."
	}
	if in.logger == nil {
		in.logger = log.New(io.Discard)
	}
	return in
}

// Registry returns the handle registry.
func (in *Interp) Registry() *registry.Registry { return in.reg }

// Renderer returns the renderer used by image, save and return.
func (in *Interp) Renderer() *render.Renderer { return in.renderer }

type (
	// handler runs a command that needs no chart.
	handler func(in *Interp, ctx context.Context, a *args) (Result, error)
	// chartHandler runs a command on a chart handle.
	chartHandler func(in *Interp, ctx context.Context, id uint64, a *args) (Result, error)
)

var globalCommands = map[string]handler{
	"gc":               (*Interp).gc,
	"charts":           (*Interp).charts,
	"version":          constant(Text(buildinfo.Short())),
	"novalue":          constant(Float(chart.NoValue)),
	"transparentcolor": constant(colorResult(chart.Transparent)),
	"palettecolor":     constant(colorResult(chart.Palette)),
	"linecolor":        constant(colorResult(chart.LineColor)),
	"textcolor":        constant(colorResult(chart.TextColor)),
	"datacolor":        constant(colorResult(chart.DataColor)),
	"sameasmaincolor":  constant(colorResult(chart.SameAsMainColor)),
	"backgroundcolor":  constant(colorResult(chart.BackgroundColor)),
	"create":           (*Interp).create,
}

var chartCommands = map[string]chartHandler{
	"setbackground": (*Interp).setBackground,
	"setplotarea":   (*Interp).setPlotArea,
	"addlegend":     (*Interp).addLegend,
	"addtitle":      (*Interp).addTitle,
	"addtext":       (*Interp).addText,
	"setsize":       (*Interp).setSize,
	"setbgimage":    (*Interp).setBgImage,
	"setwallpaper":  (*Interp).setWallpaper,
	"setcolors":     (*Interp).setColors,
	"xaxis":         axisCommand(chart.AxisX),
	"xaxis2":        axisCommand(chart.AxisX2),
	"yaxis":         axisCommand(chart.AxisY),
	"yaxis2":        axisCommand(chart.AxisY2),
	"layer":         (*Interp).layer,
	"pie":           (*Interp).pie,
	"dashlinecolor": (*Interp).dashLineColor,
	"patterncolor":  (*Interp).patternColor,
	"gradientcolor": (*Interp).gradientColor,
	"save":          (*Interp).save,
	"image":         (*Interp).image,
	"return":        (*Interp).respond,
	"destroy":       (*Interp).destroy,
}

// commandOrder is the order commands are listed in error messages.
var commandOrder = []string{
	"gc", "charts", "version", "novalue", "transparentcolor", "palettecolor",
	"linecolor", "textcolor", "datacolor", "sameasmaincolor", "backgroundcolor",
	"create", "setbackground", "setplotarea", "addlegend", "addtitle", "setsize",
	"setbgimage", "setwallpaper", "yaxis", "xaxis", "yaxis2", "xaxis2", "layer",
	"dashlinecolor", "patterncolor", "gradientcolor", "addtext", "setcolors",
	"pie", "save", "destroy", "image", "return",
}

// Commands lists every top-level command name in sorted order.
func Commands() []string {
	out := append([]string(nil), commandOrder...)
	sort.Strings(out)
	return out
}

// Exec runs one command. words[0] is the command name.
func (in *Interp) Exec(ctx context.Context, words []string) (Result, error) {
	if len(words) == 0 {
		return Empty, errors.Usage("command ...")
	}
	name := words[0]
	start := time.Now()
	res, err := in.exec(ctx, name, words[1:])
	observability.Command().OnCommand(ctx, name, time.Since(start), err)
	if err != nil {
		in.log(ctx).Debug("command failed", "command", name, "error", err)
	}
	return res, err
}

func (in *Interp) exec(ctx context.Context, name string, rest []string) (Result, error) {
	if h, ok := globalCommands[name]; ok {
		return h(in, ctx, newArgs(rest))
	}
	h, ok := chartCommands[name]
	if !ok {
		return Empty, badCommand("command", name, commandOrder)
	}
	if len(rest) == 0 {
		return Empty, errors.Usage(name + " #chart ...")
	}
	id, err := parseHandle(rest[0])
	if err != nil {
		return Empty, err
	}
	return h(in, ctx, id, newArgs(rest[1:]))
}

// badCommand formats the error for an unknown command or subcommand.
func badCommand(kind, name string, valid []string) error {
	var b strings.Builder
	for i, v := range valid {
		switch {
		case i == 0:
		case i == len(valid)-1:
			b.WriteString(", or ")
		default:
			b.WriteString(", ")
		}
		b.WriteString(v)
	}
	return errors.New(errors.ErrCodeUnknown, "bad %s %q: must be %s", kind, name, b.String())
}

func parseHandle(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "expected integer but got %q", s)
	}
	return id, nil
}

func constant(r Result) handler {
	return func(*Interp, context.Context, *args) (Result, error) { return r, nil }
}

func colorResult(c chart.Color) Result { return Int(int64(c)) }

func (in *Interp) gc(ctx context.Context, _ *args) (Result, error) {
	ids, err := in.reg.GC(ctx)
	if err != nil {
		return Empty, err
	}
	out := make([]Result, len(ids))
	for i, id := range ids {
		out[i] = Int(int64(id))
	}
	return List(out...), nil
}

func (in *Interp) charts(ctx context.Context, _ *args) (Result, error) {
	entries, err := in.reg.Charts(ctx)
	if err != nil {
		return Empty, err
	}
	out := make([]Result, 0, 2*len(entries))
	for _, e := range entries {
		out = append(out, Int(int64(e.ID)), Int(e.AccessTime.Unix()))
	}
	return List(out...), nil
}

func (in *Interp) create(ctx context.Context, a *args) (Result, error) {
	const usage = "create type width height ?bgcolor? ?edgecolor? ?border?"
	a.need(3)
	kind := chart.ParseKind(a.str(0, ""))
	width, height := a.int(1, 500), a.int(2, 300)
	bg := a.color(3, 0xffffff)
	edge := a.color(4, chart.Auto)
	border := a.int(5, 0)
	if err := a.done(usage); err != nil {
		return Empty, err
	}

	c, err := chart.New(kind, width, height)
	if err != nil {
		return Empty, err
	}
	c.SetBackground(bg, edge, border)
	id, err := in.reg.Create(ctx, c)
	if err != nil {
		return Empty, err
	}
	in.log(ctx).Debug("chart created", "id", id, "kind", kind, "width", width, "height", height)
	return Int(int64(id)), nil
}
