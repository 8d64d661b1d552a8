// Package render turns a chart model into image bytes.
//
// Drawing is delegated to go-chart: the model is translated into a
// go-chart Chart (XY kinds) or PieChart and rendered through its PNG or SVG
// renderer. Everything go-chart has no counterpart for (bars with combine
// methods, marks, zones, positioned titles and legends) is expressed as
// custom series and renderables on the same canvas.
//
// # Formats
//
// PNG and SVG come straight from go-chart. JPEG, GIF and BMP are re-encoded
// from the PNG output, and PDF is converted from the SVG output with
// rsvg-convert (librsvg):
//
//	r := render.New(render.Options{ImageDir: "images"})
//	png, err := r.Render(ctx, c, render.PNG)
//
// # Caching
//
// Output bytes depend only on the serialized model and the format, so the
// [Renderer] keys its artifact cache on a hash of both.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/matzehuels/chartdir/pkg/cache"
	"github.com/matzehuels/chartdir/pkg/chart"
	"github.com/matzehuels/chartdir/pkg/errors"
	"github.com/matzehuels/chartdir/pkg/fonts"
	"github.com/matzehuels/chartdir/pkg/observability"
)

// Format is an output image format.
type Format string

const (
	PNG  Format = "png"
	SVG  Format = "svg"
	JPEG Format = "jpg"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	PDF  Format = "pdf"
)

// Formats lists every supported format.
var Formats = []Format{PNG, SVG, JPEG, GIF, BMP, PDF}

// DefaultTTL is how long rendered artifacts stay cached.
const DefaultTTL = time.Hour

// ParseFormat resolves a format name case-insensitively. An empty name is
// PNG.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "", "png":
		return PNG, nil
	case "svg":
		return SVG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "gif":
		return GIF, nil
	case "bmp":
		return BMP, nil
	case "pdf":
		return PDF, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported image format %q", name)
}

// FormatFromFilename picks the format from a file extension.
func FormatFromFilename(name string) (Format, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		return "", errors.New(errors.ErrCodeInvalidFormat, "cannot tell image format of %q", name)
	}
	return ParseFormat(ext)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case SVG:
		return "image/svg+xml"
	case JPEG:
		return "image/jpeg"
	case GIF:
		return "image/gif"
	case BMP:
		return "image/bmp"
	case PDF:
		return "application/pdf"
	}
	return "image/png"
}

// Options configures a Renderer.
type Options struct {
	// ImageDir is where background images, wallpapers and pattern images
	// are looked up.
	ImageDir string

	// Fonts resolves font names. Nil uses built-in faces only.
	Fonts *fonts.Loader

	// Cache stores rendered artifacts. Nil disables caching.
	Cache cache.Cache

	// Keyer builds cache keys. Nil uses the default keyer.
	Keyer cache.Keyer

	// TTL is the artifact lifetime in the cache. Zero uses DefaultTTL.
	TTL time.Duration

	Logger *log.Logger
}

// Renderer renders chart models. It is safe for concurrent use.
type Renderer struct {
	imageDir string
	fonts    *fonts.Loader
	cache    cache.Cache
	keyer    cache.Keyer
	ttl      time.Duration
	logger   *log.Logger
}

// New creates a renderer.
func New(opts Options) *Renderer {
	r := &Renderer{
		imageDir: opts.ImageDir,
		fonts:    opts.Fonts,
		cache:    opts.Cache,
		keyer:    opts.Keyer,
		ttl:      opts.TTL,
		logger:   opts.Logger,
	}
	if r.fonts == nil {
		r.fonts = fonts.NewLoader("")
	}
	if r.cache == nil {
		r.cache = cache.NewNullCache()
	}
	if r.keyer == nil {
		r.keyer = cache.NewDefaultKeyer()
	}
	if r.ttl == 0 {
		r.ttl = DefaultTTL
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}
	return r
}

// Render draws c in format f.
func (r *Renderer) Render(ctx context.Context, c *chart.Chart, f Format) ([]byte, error) {
	start := time.Now()
	hooks := observability.Render()
	hooks.OnRenderStart(ctx, string(c.Kind), string(f))

	data, err := r.render(ctx, c, f)
	hooks.OnRenderComplete(ctx, string(c.Kind), string(f), len(data), time.Since(start), err)
	return data, err
}

func (r *Renderer) render(ctx context.Context, c *chart.Chart, f Format) ([]byte, error) {
	model, err := json.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "serialize chart")
	}
	key := r.keyer.ArtifactKey(cache.Hash(model), cache.ArtifactKeyOpts{Format: string(f)})

	if data, hit, err := r.cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	base := PNG
	if f == SVG || f == PDF {
		base = SVG
	}
	data, err := r.draw(c, base)
	if err != nil {
		return nil, err
	}
	if data, err = convert(data, base, f); err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
		r.logger.Debug("cache artifact", "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return data, nil
}

// drawable is what go-chart's Chart and PieChart have in common.
type drawable interface {
	Render(rp gochart.RendererProvider, w io.Writer) error
}

// draw renders c as PNG or SVG.
func (r *Renderer) draw(c *chart.Chart, base Format) ([]byte, error) {
	b := newBuilder(r, c)

	var d drawable
	var err error
	if c.Kind == chart.KindPie {
		d, err = b.pie()
	} else {
		d, err = b.xy()
	}
	if err != nil {
		return nil, err
	}
	b.logUnsupported()

	provider := gochart.PNG
	if base == SVG {
		provider = gochart.SVG
	}
	var buf bytes.Buffer
	if err := d.Render(provider, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "render chart")
	}
	if !b.underlay {
		return buf.Bytes(), nil
	}
	if base == SVG {
		return b.underlaySVG(buf.Bytes())
	}
	return b.underlayPNG(buf.Bytes())
}
