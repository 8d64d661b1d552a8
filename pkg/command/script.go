package command

import (
	"context"
	"os"
	"strings"

	"github.com/google/shlex"

	"github.com/matzehuels/chartdir/pkg/errors"
)

// Statement is one command of a script.
type Statement struct {
	// Line is the 1-based line the statement starts on.
	Line int
	// Var, when set, receives the text form of the result.
	Var  string
	Args []string
}

// ParseScript splits src into statements. Each statement is one line; a
// trailing backslash continues it on the next line. Words follow shell
// quoting rules and a word starting with # begins a comment. A leading
// "chartdir" word is optional, and "name = command ..." binds the result.
//
//	c = create xy 400 300
//	layer $c create line "1 4 2 8" sales
//	save $c sales.png
func ParseScript(src string) ([]Statement, error) {
	var stmts []Statement
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	for i := 0; i < len(lines); i++ {
		start := i + 1
		line := lines[i]
		for strings.HasSuffix(line, `\`) && i+1 < len(lines) {
			i++
			line = strings.TrimSuffix(line, `\`) + " " + lines[i]
		}
		text := strings.TrimSpace(line)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		words, err := shlex.Split(text)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d: malformed command", start)
		}
		st := Statement{Line: start}
		if len(words) >= 2 && words[1] == "=" {
			st.Var, words = words[0], words[2:]
		}
		if len(words) > 0 && (words[0] == "chartdir" || words[0] == "ns_chartdir") {
			words = words[1:]
		}
		if len(words) == 0 {
			if st.Var != "" {
				return nil, errors.New(errors.ErrCodeInvalidInput, "line %d: missing command after %s =", start, st.Var)
			}
			continue
		}
		st.Args = words
		stmts = append(stmts, st)
	}
	return stmts, nil
}

// Run executes stmts in order with the given variables and returns the
// result of the last statement. $name and ${name} are replaced in every
// word before the statement runs. The first failing statement stops the
// script; its error keeps the command's code.
func (in *Interp) Run(ctx context.Context, stmts []Statement, vars map[string]string) (Result, error) {
	env := make(map[string]string, len(vars))
	for k, v := range vars {
		env[k] = v
	}
	res := Empty
	for _, st := range stmts {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		words, err := substitute(st.Args, env)
		if err != nil {
			return res, lineError(st.Line, err)
		}
		r, err := in.Exec(ctx, words)
		if err != nil {
			return res, lineError(st.Line, err)
		}
		res = r
		if st.Var != "" {
			env[st.Var] = r.String()
		}
	}
	return res, nil
}

// RunScript parses and runs src.
func (in *Interp) RunScript(ctx context.Context, src string, vars map[string]string) (Result, error) {
	stmts, err := ParseScript(src)
	if err != nil {
		return Empty, err
	}
	return in.Run(ctx, stmts, vars)
}

func substitute(words []string, env map[string]string) ([]string, error) {
	var missing string
	out := make([]string, len(words))
	for i, w := range words {
		if !strings.Contains(w, "$") {
			out[i] = w
			continue
		}
		out[i] = os.Expand(w, func(name string) string {
			v, ok := env[name]
			if !ok && missing == "" {
				missing = name
			}
			return v
		})
	}
	if missing != "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "can't read %q: no such variable", missing)
	}
	return out, nil
}

func lineError(line int, err error) error {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return errors.New(code, "line %d: %s", line, errors.UserMessage(err))
}
