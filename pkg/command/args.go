package command

import (
	"strconv"
	"strings"

	"github.com/google/shlex"

	"github.com/matzehuels/chartdir/pkg/chart"
	"github.com/matzehuels/chartdir/pkg/errors"
)

// args reads the parameters of one command. Required positions are
// declared with need; optional positions take a default when absent. The
// first failure sticks, and done turns it into a usage error.
type args struct {
	words []string
	err   error
}

func newArgs(words []string) *args { return &args{words: words} }

func (a *args) fail(err error) {
	if a.err == nil {
		a.err = err
	}
}

func (a *args) has(i int) bool { return i < len(a.words) }

// need requires at least n parameters.
func (a *args) need(n int) {
	if len(a.words) < n {
		a.fail(errors.New(errors.ErrCodeUsage, "missing arguments"))
	}
}

// done returns the usage error for usage if any read failed.
func (a *args) done(usage string) error {
	if a.err == nil {
		return nil
	}
	e := errors.Usage(usage)
	if errors.GetCode(a.err) != errors.ErrCodeUsage {
		e.Cause = a.err
	}
	return e
}

func (a *args) str(i int, def string) string {
	if !a.has(i) {
		return def
	}
	return a.words[i]
}

func (a *args) int(i int, def int) int {
	if !a.has(i) {
		return def
	}
	v, err := parseInt(a.words[i])
	if err != nil {
		a.fail(err)
	}
	return v
}

func (a *args) float(i int, def float64) float64 {
	if !a.has(i) {
		return def
	}
	v, err := parseFloat(a.words[i])
	if err != nil {
		a.fail(err)
	}
	return v
}

func (a *args) bool(i int, def bool) bool {
	if !a.has(i) {
		return def
	}
	s := a.words[i]
	if v, err := strconv.ParseInt(s, 0, 64); err == nil {
		return v != 0
	}
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	a.fail(errors.New(errors.ErrCodeInvalidInput, "expected boolean value but got %q", s))
	return def
}

func (a *args) color(i int, def chart.Color) chart.Color {
	if !a.has(i) {
		return def
	}
	c, err := chart.ParseColor(a.words[i])
	if err != nil {
		a.fail(err)
	}
	return c
}

func (a *args) align(i int, def chart.Alignment) chart.Alignment {
	if !a.has(i) {
		return def
	}
	return chart.ParseAlignment(a.words[i], def)
}

// list splits a list word into its elements.
func (a *args) list(i int) []string {
	if !a.has(i) {
		return nil
	}
	items, err := splitList(a.words[i])
	if err != nil {
		a.fail(err)
	}
	return items
}

func (a *args) floats(i int) []float64 {
	items := a.list(i)
	out := make([]float64, 0, len(items))
	for _, s := range items {
		v, err := parseFloat(s)
		if err != nil {
			a.fail(err)
			return nil
		}
		out = append(out, v)
	}
	return out
}

func (a *args) colors(i int) []chart.Color {
	items := a.list(i)
	out := make([]chart.Color, 0, len(items))
	for _, s := range items {
		c, err := chart.ParseColor(s)
		if err != nil {
			a.fail(err)
			return nil
		}
		out = append(out, c)
	}
	return out
}

// path reads a file name and rejects names that could escape their
// directory.
func (a *args) path(i int) string {
	s := a.str(i, "")
	if a.has(i) {
		if err := errors.ValidatePath(s); err != nil {
			a.fail(err)
		}
	}
	return s
}

// font reads the font, size, color and angle group that several commands
// take. Absent values keep the fields of def.
func (a *args) font(name, size, color, angle int, def chart.Font) chart.Font {
	f := def
	f.Name = a.str(name, def.Name)
	f.Size = a.float(size, def.Size)
	f.Color = a.color(color, def.Color)
	if angle >= 0 {
		f.Angle = a.float(angle, def.Angle)
	}
	return f
}

// splitList splits a list word on white space. Elements may be quoted
// when the list contains quotes.
func splitList(s string) ([]string, error) {
	if !strings.ContainsAny(s, "\"'\\") {
		return strings.Fields(s), nil
	}
	items, err := shlex.Split(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed list %q", s)
	}
	return items, nil
}

func parseInt(s string) (int, error) {
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "expected integer but got %q", s)
	}
	return int(v), nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "expected floating-point number but got %q", s)
	}
	return v, nil
}
