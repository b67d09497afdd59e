// Package surface provides the headless drawing target used for recording,
// offline export and the command line modes.
package surface

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"

	"github.com/frog-london/Tara-Voice/internal/field"
	"github.com/frog-london/Tara-Voice/internal/mask"
)

// Canvas is a raster target that owns its pixels. It is not shared: the live
// preview, the capture path and the offline exporter each hold their own.
type Canvas struct {
	img *image.RGBA
	dc  *gg.Context

	cutKey   maskKey
	cutAlpha *image.Alpha
}

type maskKey struct {
	img         image.Image
	x, y, s, an float64
}

var _ field.Target = (*Canvas)(nil)

// NewCanvas allocates a w×h canvas.
func NewCanvas(w, h int) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	return &Canvas{img: img, dc: gg.NewContextForRGBA(img)}
}

// Image is the canvas backing store. It is overwritten by the next draw.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Width of the canvas in pixels.
func (c *Canvas) Width() int { return c.img.Bounds().Dx() }

// Height of the canvas in pixels.
func (c *Canvas) Height() int { return c.img.Bounds().Dy() }

func (c *Canvas) Clear(bg color.RGBA, transparent bool) {
	if transparent {
		draw.Draw(c.img, c.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
		return
	}
	c.dc.SetColor(bg)
	c.dc.Clear()
}

// FillCircles adds every dot to one path and fills it once. A non-nil mask
// is cut out of the dots by inverting its coverage into the clip mask.
func (c *Canvas) FillCircles(dots []field.Dot, fill color.RGBA, m *field.MaskLayer) {
	if m != nil && m.Image != nil {
		if err := c.dc.SetMask(c.cutOut(m)); err == nil {
			defer c.dc.ResetClip()
		}
	}
	c.dc.SetColor(fill)
	for _, d := range dots {
		c.dc.DrawCircle(d.X, d.Y, d.R)
	}
	c.dc.Fill()
}

// cutOut returns the inverted mask coverage, reusing the previous raster
// while the placement is unchanged.
func (c *Canvas) cutOut(m *field.MaskLayer) *image.Alpha {
	key := maskKey{m.Image, m.X, m.Y, m.Size, m.Angle}
	if c.cutAlpha != nil && key == c.cutKey {
		return c.cutAlpha
	}
	a := mask.Alpha(m, c.Width(), c.Height())
	for i, v := range a.Pix {
		a.Pix[i] = 255 - v
	}
	c.cutKey, c.cutAlpha = key, a
	return a
}
