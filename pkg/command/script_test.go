package command

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/chartdir/pkg/errors"
)

func TestParseScript(t *testing.T) {
	src := `# sales chart
c = chartdir create xy 400 300

layer $c create line "1 4 2 8" \
    sales
save ${c} out.png   # trailing comment
`
	stmts, err := ParseScript(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(stmts) != 3 {
		t.Fatalf("got %d statements, want 3: %+v", len(stmts), stmts)
	}

	tests := []struct {
		line int
		v    string
		args string
	}{
		{2, "c", "create|xy|400|300"},
		{4, "", "layer|$c|create|line|1 4 2 8|sales"},
		{6, "", "save|${c}|out.png"},
	}
	for i, tt := range tests {
		st := stmts[i]
		if st.Line != tt.line || st.Var != tt.v || strings.Join(st.Args, "|") != tt.args {
			t.Errorf("stmt %d = %+v, want line %d var %q args %s", i, st, tt.line, tt.v, tt.args)
		}
	}
}

func TestParseScriptErrors(t *testing.T) {
	tests := []string{
		`create xy "400 300`,
		`c =`,
		`c = chartdir`,
	}
	for _, src := range tests {
		if _, err := ParseScript(src); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("ParseScript(%q) err = %v, want INVALID_INPUT", src, err)
		}
	}
}

func TestRunScript(t *testing.T) {
	in := newInterp(t)
	src := `
c = create xy 300 200 $bg
slot = layer $c create bar "3 5 7" revenue
layer $c setbordercolor $slot 0x000000
charts
`
	res, err := in.RunScript(context.Background(), src, map[string]string{"bg": "0xf0f0f0"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Type != TypeList || res.String() != fmt.Sprintf("1 %d", res.List[1].Int) {
		t.Errorf("last result = %v", res)
	}
	c := load(t, in, "1")
	if c.Background.Color != 0xf0f0f0 {
		t.Errorf("bg = %v", c.Background.Color)
	}
	if c.Layers[0] == nil || c.Layers[0].BorderColor == nil {
		t.Errorf("layer = %+v", c.Layers[0])
	}
}

func TestRunScriptPrefixedBinding(t *testing.T) {
	in := newInterp(t)
	src := "c = chartdir create xy 300 200\nns_chartdir layer $c create line \"1 2\"\nd = ns_chartdir setsize $c 320 240\n"
	if _, err := in.RunScript(context.Background(), src, nil); err != nil {
		t.Fatal(err)
	}
	c := load(t, in, "1")
	if c.Width != 320 || c.Layers[0] == nil {
		t.Errorf("chart = %dx%d, layer %+v", c.Width, c.Height, c.Layers[0])
	}
}

func TestRunScriptStopsAtFirstError(t *testing.T) {
	in := newInterp(t)
	src := "c = create xy 300 200\nsetsize $c 10\ndestroy $c\n"

	_, err := in.RunScript(context.Background(), src, nil)
	if !errors.Is(err, errors.ErrCodeUsage) {
		t.Fatalf("err = %v, want USAGE", err)
	}
	if msg := errors.UserMessage(err); !strings.HasPrefix(msg, "line 2: wrong # args") {
		t.Errorf("message = %q", msg)
	}
	// destroy never ran.
	if got := len(exec(t, in, "charts").List); got != 2 {
		t.Errorf("charts = %d items, want 2", got)
	}
}

func TestRunScriptUnknownVariable(t *testing.T) {
	in := newInterp(t)
	_, err := in.RunScript(context.Background(), "destroy $nope", nil)
	if got, want := errors.UserMessage(err), `line 1: can't read "nope": no such variable`; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func ExampleInterp_RunScript() {
	in := New(Options{})
	res, err := in.RunScript(context.Background(), `
c = create pie 200 200
pie $c setdata "25 18 15" "Labor Production Facilities"
charts
`, nil)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(res.List[0])
	// Output: 1
}
