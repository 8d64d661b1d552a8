package chart

import (
	"testing"

	"github.com/matzehuels/chartdir/pkg/errors"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"Transparent", Transparent},
		{"transparent", Transparent},
		{"Palette", Palette},
		{"BackgroundColor", BackgroundColor},
		{"TEXTCOLOR", TextColor},
		{"LineColor", LineColor},
		{"DataColor", DataColor},
		{"SameAsMainColor", SameAsMainColor},
		{"0xff0000", 0xff0000},
		{"16711680", 0xff0000},
		{"-1", Auto},
		{"0xffff0000", Palette},
		{"#00ff00", 0x00ff00},
		{"0x80ffffff", Color(-0x7f000001)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if err != nil {
				t.Fatalf("ParseColor(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseColorInvalid(t *testing.T) {
	for _, in := range []string{"", "red", "0xzz", "#12345"} {
		_, err := ParseColor(in)
		if !errors.Is(err, errors.ErrCodeInvalidColor) {
			t.Errorf("ParseColor(%q) error = %v, want INVALID_COLOR", in, err)
		}
	}
}

func TestColorConstants(t *testing.T) {
	tests := []struct {
		color Color
		want  string
	}{
		{Transparent, "0xff000000"},
		{Palette, "0xffff0000"},
		{LineColor, "0xffff0001"},
		{TextColor, "0xffff0002"},
		{SameAsMainColor, "0xffff0007"},
		{DataColor, "0xffff0008"},
	}
	for _, tt := range tests {
		if got := tt.color.String(); got != tt.want {
			t.Errorf("constant = %s, want %s", got, tt.want)
		}
	}
}

func TestPaletteIndex(t *testing.T) {
	if n, ok := (DataColor + 3).PaletteIndex(); !ok || n != 11 {
		t.Errorf("PaletteIndex = %d, %v, want 11, true", n, ok)
	}
	if _, ok := Auto.PaletteIndex(); ok {
		t.Error("Auto should not be a palette reference")
	}
	if _, ok := Color(0xff0000).PaletteIndex(); ok {
		t.Error("explicit color should not be a palette reference")
	}
}

func TestRGBA(t *testing.T) {
	r, g, b, a := Color(0x112233).RGBA()
	if r != 0x11 || g != 0x22 || b != 0x33 || a != 255 {
		t.Errorf("RGBA = %x %x %x %x", r, g, b, a)
	}
	_, _, _, a = Transparent.RGBA()
	if a != 0 {
		t.Errorf("Transparent alpha = %d, want 0", a)
	}
	if !Transparent.IsTransparent() {
		t.Error("Transparent.IsTransparent() = false")
	}
	if Palette.IsTransparent() {
		t.Error("Palette.IsTransparent() = true")
	}
}

func TestDashArray(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    []float64
	}{
		{"dash", "DashLine", []float64{5, 5}},
		{"dot", "dotline", []float64{2, 2}},
		{"dotdash", "DotDashLine", []float64{5, 2, 5, 5}},
		{"altdash", "AltDashLine", []float64{5, 5, 5, 10}},
		{"int", "0x0303", []float64{3, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseLinePattern(tt.pattern)
			if err != nil {
				t.Fatalf("ParseLinePattern: %v", err)
			}
			got := DashArray(p)
			if len(got) != len(tt.want) {
				t.Fatalf("DashArray = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("DashArray = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestDynamicColors(t *testing.T) {
	c, _ := New(KindXY, 100, 100)

	dash := c.DashLineColor(0xff0000, 0x0505)
	if n, ok := dash.DynamicIndex(); !ok || n != 0 {
		t.Fatalf("DynamicIndex = %d, %v", n, ok)
	}
	if got := c.Resolve(dash); got != 0xff0000 {
		t.Errorf("Resolve(dash) = %s", got)
	}
	if len(c.Dash(dash)) != 2 {
		t.Errorf("Dash = %v", c.Dash(dash))
	}

	pat, err := c.PatternColor([]Color{0x00ff00, 0, 0, 0}, 2, 2, 0, 0)
	if err != nil {
		t.Fatalf("PatternColor: %v", err)
	}
	if n, _ := pat.DynamicIndex(); n != 1 {
		t.Errorf("pattern index = %d, want 1", n)
	}
	if got := c.Resolve(pat); got != 0x00ff00 {
		t.Errorf("Resolve(pattern) = %s", got)
	}

	stops, ok := NamedGradient("GoldGradient")
	if !ok || len(stops) != 4 {
		t.Fatalf("NamedGradient = %v, %v", stops, ok)
	}
	grad := c.GradientColor(GradientStops([]Color{0, 0x000000, 0x100, 0x0000ff}), 90, 1, 0, 0)
	if got := c.Resolve(grad); got != 0x00007f {
		t.Errorf("Resolve(gradient) = %s", got)
	}
}

func TestPatternColorBadSize(t *testing.T) {
	c, _ := New(KindXY, 100, 100)
	_, err := c.PatternColor([]Color{1, 2, 3}, 2, 2, 0, 0)
	if err == nil || errors.UserMessage(err) != "wrong width/height for the pattern bitmap" {
		t.Errorf("PatternColor error = %v", err)
	}
}

func TestPatternColorEmpty(t *testing.T) {
	c, _ := New(KindXY, 100, 100)
	pat, err := c.PatternColor(nil, 0, 0, 0, 0)
	if err != nil {
		t.Fatalf("PatternColor: %v", err)
	}
	if _, ok := pat.DynamicIndex(); !ok {
		t.Errorf("pattern %s is not a dynamic color", pat)
	}
	if got := c.Resolve(pat); got != 0x808080 {
		t.Errorf("Resolve(empty pattern) = %s", got)
	}
}

func TestResolvePalette(t *testing.T) {
	c, _ := New(KindXY, 100, 100)
	if got := c.Resolve(BackgroundColor); got != 0xffffff {
		t.Errorf("Resolve(BackgroundColor) = %s", got)
	}
	if got := c.Resolve(DataColor); got != 0xff3333 {
		t.Errorf("Resolve(DataColor) = %s", got)
	}
	c.SetColors(WhiteOnBlackPalette)
	if got := c.Resolve(TextColor); got != 0xffffff {
		t.Errorf("Resolve(TextColor) on white-on-black = %s", got)
	}
	if got := c.Resolve(Auto); got != Auto {
		t.Errorf("Resolve(Auto) = %s", got)
	}
}
