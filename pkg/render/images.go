package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/chartdir/pkg/chart"
	"github.com/matzehuels/chartdir/pkg/errors"
)

// loadImage decodes a PNG, JPEG, GIF, BMP or WebP file from the image
// directory.
func (r *Renderer) loadImage(name string) (image.Image, error) {
	path, err := errors.ResolvePath(r.imageDir, name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "image %q not found", name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open image %q", name)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode image %q", name)
	}
	return img, nil
}

// layer is one image placed under the chart.
type layer struct {
	img  image.Image
	rect image.Rectangle // clip rectangle
	at   image.Point     // top-left corner of the image
	tile bool
}

// fill is a solid rectangle drawn under the chart.
type fill struct {
	color color.RGBA
	rect  image.Rectangle
}

// underlays returns what goes under the chart, bottom first: the
// background color, the wallpaper, the chart background image, then the
// plot area color and image.
func (b *builder) underlays() ([]fill, []layer, error) {
	c := b.c
	full := image.Rect(0, 0, c.Width, c.Height)
	fills := []fill{{color: b.rgba(c.Background.Color, chart.BackgroundColor), rect: full}}
	var layers []layer

	if c.Wallpaper != "" {
		img, err := b.r.loadImage(c.Wallpaper)
		if err != nil {
			return nil, nil, err
		}
		layers = append(layers, layer{img: img, rect: full, tile: true})
	}
	if c.BgImage != nil {
		img, err := b.r.loadImage(c.BgImage.File)
		if err != nil {
			return nil, nil, err
		}
		layers = append(layers, b.aligned(img, full, c.BgImage.Align))
	}
	if pa := c.PlotArea; pa != nil && pa.BgImage != nil {
		img, err := b.r.loadImage(pa.BgImage.File)
		if err != nil {
			return nil, nil, err
		}
		area := image.Rect(pa.X, pa.Y, pa.X+pa.Width, pa.Y+pa.Height)
		// The plot area color sits between the chart images and the plot
		// area image, so it is drawn as a clipped layer.
		layers = append(layers, layer{img: image.NewUniform(b.rgba(pa.Background, chart.Transparent)), rect: area})
		layers = append(layers, b.aligned(img, area, pa.BgImage.Align))
	}
	return fills, layers, nil
}

func (b *builder) aligned(img image.Image, box image.Rectangle, align chart.Alignment) layer {
	size := img.Bounds().Size()
	x, y := place(box.Min.X, box.Min.Y, box.Dx(), box.Dy(), size.X, size.Y, align)
	return layer{img: img, rect: box, at: image.Pt(x, y)}
}

func (b *builder) rgba(col, fallback chart.Color) color.RGBA {
	d := b.col.draw(col, fallback)
	// color.RGBA is alpha-premultiplied.
	a := uint32(d.A)
	return color.RGBA{
		R: uint8(uint32(d.R) * a / 255),
		G: uint8(uint32(d.G) * a / 255),
		B: uint8(uint32(d.B) * a / 255),
		A: d.A,
	}
}

// underlayPNG composites the background images under a PNG rendered on a
// transparent background.
func (b *builder) underlayPNG(fg []byte) ([]byte, error) {
	fills, layers, err := b.underlays()
	if err != nil {
		return nil, err
	}
	top, err := png.Decode(bytes.NewReader(fg))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "decode rendered chart")
	}

	dst := image.NewRGBA(top.Bounds())
	for _, f := range fills {
		draw.Draw(dst, f.rect, image.NewUniform(f.color), image.Point{}, draw.Src)
	}
	for _, l := range layers {
		if l.tile {
			size := l.img.Bounds().Size()
			if size.X == 0 || size.Y == 0 {
				continue
			}
			for y := l.rect.Min.Y; y < l.rect.Max.Y; y += size.Y {
				for x := l.rect.Min.X; x < l.rect.Max.X; x += size.X {
					r := image.Rect(x, y, x+size.X, y+size.Y).Intersect(l.rect)
					draw.Draw(dst, r, l.img, l.img.Bounds().Min, draw.Over)
				}
			}
			continue
		}
		r := image.Rectangle{Min: l.at, Max: l.at.Add(l.img.Bounds().Size())}
		if _, uniform := l.img.(*image.Uniform); uniform {
			r = l.rect
		}
		r = r.Intersect(l.rect)
		sp := l.img.Bounds().Min.Add(r.Min.Sub(l.at))
		draw.Draw(dst, r, l.img, sp, draw.Over)
	}
	draw.Draw(dst, dst.Bounds(), top, top.Bounds().Min, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "encode chart")
	}
	return buf.Bytes(), nil
}

// underlaySVG inserts the background rectangle and images right after the
// opening svg element, so they paint before anything go-chart drew.
func (b *builder) underlaySVG(svg []byte) ([]byte, error) {
	fills, layers, err := b.underlays()
	if err != nil {
		return nil, err
	}
	start := bytes.Index(svg, []byte("<svg"))
	end := -1
	if start >= 0 {
		end = bytes.IndexByte(svg[start:], '>')
	}
	if end < 0 {
		return nil, errors.New(errors.ErrCodeRender, "rendered SVG has no root element")
	}
	end += start + 1

	var ins bytes.Buffer
	for _, f := range fills {
		fmt.Fprintf(&ins, `<rect x="%d" y="%d" width="%d" height="%d" style="%s"/>`,
			f.rect.Min.X, f.rect.Min.Y, f.rect.Dx(), f.rect.Dy(), svgFill(f.color))
	}
	for i, l := range layers {
		if u, ok := l.img.(*image.Uniform); ok {
			c := color.RGBAModel.Convert(u.C).(color.RGBA)
			fmt.Fprintf(&ins, `<rect x="%d" y="%d" width="%d" height="%d" style="%s"/>`,
				l.rect.Min.X, l.rect.Min.Y, l.rect.Dx(), l.rect.Dy(), svgFill(c))
			continue
		}
		uri, err := dataURI(l.img)
		if err != nil {
			return nil, err
		}
		size := l.img.Bounds().Size()
		clip := fmt.Sprintf("bgclip%d", i)
		fmt.Fprintf(&ins, `<defs><clipPath id="%s"><rect x="%d" y="%d" width="%d" height="%d"/></clipPath>`,
			clip, l.rect.Min.X, l.rect.Min.Y, l.rect.Dx(), l.rect.Dy())
		if l.tile {
			fmt.Fprintf(&ins, `<pattern id="%s-tile" patternUnits="userSpaceOnUse" width="%d" height="%d"><image width="%d" height="%d" href="%s"/></pattern></defs>`,
				clip, size.X, size.Y, size.X, size.Y, uri)
			fmt.Fprintf(&ins, `<rect x="%d" y="%d" width="%d" height="%d" fill="url(#%s-tile)"/>`,
				l.rect.Min.X, l.rect.Min.Y, l.rect.Dx(), l.rect.Dy(), clip)
			continue
		}
		ins.WriteString(`</defs>`)
		fmt.Fprintf(&ins, `<image x="%d" y="%d" width="%d" height="%d" clip-path="url(#%s)" href="%s"/>`,
			l.at.X, l.at.Y, size.X, size.Y, clip, uri)
	}

	out := make([]byte, 0, len(svg)+ins.Len())
	out = append(out, svg[:end]...)
	out = append(out, ins.Bytes()...)
	out = append(out, svg[end:]...)
	return out, nil
}

func svgFill(c color.RGBA) string {
	if c.A == 0 {
		return "fill:none"
	}
	// Undo premultiplication for the CSS color.
	a := uint32(c.A)
	return fmt.Sprintf("fill:rgba(%d,%d,%d,%.3f)",
		uint32(c.R)*255/a, uint32(c.G)*255/a, uint32(c.B)*255/a, float64(c.A)/255)
}

func dataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", errors.Wrap(errors.ErrCodeRender, err, "encode background image")
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
