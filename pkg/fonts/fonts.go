// Package fonts resolves the font names used by chart commands to parsed
// TrueType fonts.
//
// The Go font family is compiled into the binary, so charts render the same
// everywhere without system fonts. Common Windows font file names (arial.ttf,
// arialbd.ttf, cour.ttf, ...) map onto the matching Go face. Any other name
// is loaded from the configured font directory.
package fonts

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/matzehuels/chartdir/pkg/errors"
)

// Built-in face names.
const (
	Regular    = "regular"
	Bold       = "bold"
	Italic     = "italic"
	BoldItalic = "bolditalic"
	Medium     = "medium"
	Mono       = "mono"
	MonoBold   = "monobold"
)

var builtin = map[string][]byte{
	Regular:    goregular.TTF,
	Bold:       gobold.TTF,
	Italic:     goitalic.TTF,
	BoldItalic: gobolditalic.TTF,
	Medium:     gomedium.TTF,
	Mono:       gomono.TTF,
	MonoBold:   gomonobold.TTF,
}

// aliases maps well-known font file names onto built-in faces.
var aliases = map[string]string{
	"arial.ttf":    Regular,
	"arialbd.ttf":  Bold,
	"ariali.ttf":   Italic,
	"arialbi.ttf":  BoldItalic,
	"verdana.ttf":  Regular,
	"verdanab.ttf": Bold,
	"verdanai.ttf": Italic,
	"verdanaz.ttf": BoldItalic,
	"times.ttf":    Regular,
	"timesbd.ttf":  Bold,
	"timesi.ttf":   Italic,
	"timesbi.ttf":  BoldItalic,
	"tahoma.ttf":   Regular,
	"tahomabd.ttf": Bold,
	"cour.ttf":     Mono,
	"courbd.ttf":   MonoBold,
	"sans":         Regular,
	"sans-serif":   Regular,
	"monospace":    Mono,
}

// Loader parses and caches fonts. It is safe for concurrent use.
type Loader struct {
	dir string

	mu    sync.Mutex
	cache map[string]*truetype.Font
}

// NewLoader returns a loader that looks up non-built-in names in dir.
// An empty dir restricts lookups to the built-in faces.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir, cache: make(map[string]*truetype.Font)}
}

// Canonical returns the built-in face a name resolves to, if any.
// Names are matched case-insensitively; an empty name is Regular.
func Canonical(name string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return Regular, true
	}
	if _, ok := builtin[key]; ok {
		return key, true
	}
	if face, ok := aliases[key]; ok {
		return face, true
	}
	return "", false
}

// Default returns the regular built-in face.
func (l *Loader) Default() *truetype.Font {
	f, err := l.Load(Regular)
	if err != nil {
		// The embedded fonts are known-good.
		panic(err)
	}
	return f
}

// Load returns the font for name.
func (l *Loader) Load(name string) (*truetype.Font, error) {
	face, isBuiltin := Canonical(name)
	key := face
	if !isBuiltin {
		key = "file:" + name
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if f, ok := l.cache[key]; ok {
		return f, nil
	}

	var data []byte
	if isBuiltin {
		data = builtin[face]
	} else {
		var err error
		if data, err = l.read(name); err != nil {
			return nil, err
		}
	}

	f, err := truetype.Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse font %q", name)
	}
	l.cache[key] = f
	return f, nil
}

func (l *Loader) read(name string) ([]byte, error) {
	if l.dir == "" {
		return nil, errors.New(errors.ErrCodeFileNotFound, "unknown font %q", name)
	}
	path, err := errors.ResolvePath(l.dir, filepath.ToSlash(name))
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "font %q not found", name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read font %q", name)
	}
	return data, nil
}
