package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/chartdir/pkg/chart"
)

// defaultTickDensity is the preferred distance between ticks in pixels.
const defaultTickDensity = 30

// span is a resolved axis: value limits plus tick positions. On a log axis
// every value is the base-10 logarithm of the data value.
type span struct {
	Min, Max float64
	Ticks    []float64
	Step     float64
	Log      bool
}

// niceStep rounds raw up to 1, 2 or 5 times a power of ten.
func niceStep(raw float64) float64 {
	if raw <= 0 || math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 1
	}
	base := math.Pow(10, math.Floor(math.Log10(raw)))
	switch f := raw / base; {
	case f <= 1:
		return base
	case f <= 2:
		return 2 * base
	case f <= 5:
		return 5 * base
	}
	return 10 * base
}

// ticksBetween lists the multiples of step within [lo, hi].
func ticksBetween(lo, hi, step float64) []float64 {
	if step <= 0 || hi < lo {
		return nil
	}
	const maxTicks = 1000
	eps := step * 1e-9
	first := math.Ceil((lo - eps) / step)
	var out []float64
	for i := 0; i < maxTicks; i++ {
		v := (first + float64(i)) * step
		if v > hi+eps {
			break
		}
		if math.Abs(v) < eps {
			v = 0
		}
		out = append(out, v)
	}
	return out
}

// tickCount is how many intervals fit on an axis of length pixels.
func tickCount(length, density int) int {
	if density <= 0 {
		density = defaultTickDensity
	}
	n := length / density
	if n < 2 {
		n = 2
	}
	return n
}

// autoSpan picks a range around [lo, hi]. forceZero always includes zero,
// which bar layers need for their baseline.
func autoSpan(lo, hi float64, as chart.AutoScale, forceZero bool, length, density int) span {
	if lo > hi {
		lo, hi = 0, 10
	}
	za := as.ZeroAffinity
	if lo >= 0 && (forceZero || lo <= za*hi) {
		lo = 0
	}
	if hi <= 0 && (forceZero || hi >= za*lo) {
		hi = 0
	}
	if lo == hi {
		d := math.Abs(lo) / 2
		if d == 0 {
			d = 1
		}
		if lo != 0 {
			lo -= d
		}
		hi += d
	}

	width := hi - lo
	hi += width * as.Top
	if lo != 0 {
		lo -= width * as.Bottom
	}

	step := niceStep((hi - lo) / float64(tickCount(length, density)))
	min := math.Floor(lo/step) * step
	max := math.Ceil(hi/step) * step
	if max <= min {
		max = min + step
	}
	return span{Min: min, Max: max, Step: step, Ticks: ticksBetween(min, max, step)}
}

// fixedSpan uses an explicit scale. Log scales are returned in log space.
func fixedSpan(s chart.Scale, length, density int) span {
	lo, hi := s.Lower, s.Upper
	if lo > hi {
		lo, hi = hi, lo
	}
	if s.Mode == chart.ScaleLog {
		return logSpan(lo, hi, s.TickInc)
	}
	if lo == hi {
		hi = lo + 1
	}
	step := s.TickInc
	if step <= 0 {
		step = niceStep((hi - lo) / float64(tickCount(length, density)))
	}
	return span{Min: lo, Max: hi, Step: step, Ticks: ticksBetween(lo, hi, step)}
}

// logSpan ticks every power of ten, or every power of tickInc when it is
// greater than one.
func logSpan(lo, hi, tickInc float64) span {
	if lo <= 0 {
		lo = 1
	}
	if hi <= lo {
		hi = lo * 10
	}
	min, max := math.Log10(lo), math.Log10(hi)
	step := 1.0
	if tickInc > 1 {
		step = math.Log10(tickInc)
	}
	return span{Min: min, Max: max, Step: step, Ticks: ticksBetween(min, max, step), Log: true}
}

// syncSpan derives a secondary axis as slope*v + intercept of the primary.
func syncSpan(p span, s chart.Sync) span {
	f := func(v float64) float64 { return s.Slope*v + s.Intercept }
	min, max := f(p.Min), f(p.Max)
	if min > max {
		min, max = max, min
	}
	if min == max {
		max = min + 1
	}
	out := span{Min: min, Max: max, Step: math.Abs(p.Step * s.Slope)}
	for _, t := range p.Ticks {
		out.Ticks = append(out.Ticks, f(t))
	}
	return out
}

// value maps a data value into axis space. ok is false for values a log
// axis cannot show and for missing points.
func (s span) value(v float64) (float64, bool) {
	if v == chart.NoValue || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if s.Log {
		if v <= 0 {
			return 0, false
		}
		return math.Log10(v), true
	}
	return v, true
}

// baseline is where bars start: zero, clamped into the range.
func (s span) baseline() float64 {
	if s.Log {
		return s.Min
	}
	return math.Max(s.Min, math.Min(s.Max, 0))
}

// label formats a tick in data space.
func (s span) label(v float64, format string) string {
	if s.Log {
		v = math.Pow(10, v)
	}
	return formatValue(v, s.decimals(), format)
}

func (s span) decimals() int {
	if s.Log || s.Step <= 0 {
		return -1
	}
	d := int(-math.Floor(math.Log10(s.Step)))
	if d < 0 {
		return 0
	}
	return d
}

// formatValue renders a number. format may contain a printf verb or the
// {value} placeholder; an empty format prints the number with decimals
// digits (-1 for the shortest exact form).
func formatValue(v float64, decimals int, format string) string {
	num := strconv.FormatFloat(v, 'f', decimals, 64)
	if decimals < 0 {
		num = strconv.FormatFloat(v, 'g', 10, 64)
	}
	switch {
	case format == "":
		return num
	case strings.Contains(format, "{value}"):
		return strings.ReplaceAll(format, "{value}", num)
	case strings.Contains(format, "%"):
		return fmt.Sprintf(format, v)
	}
	return format
}
