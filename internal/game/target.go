package game

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/frog-london/Tara-Voice/internal/field"
)

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// dotsPerBatch keeps a batch's vertex indices inside uint16.
const dotsPerBatch = 512

// screenTarget replays frames onto the window. Dots are filled as one path
// per batch; with a mask they go to an offscreen layer first so the mask can
// be cut out of the dots alone.
type screenTarget struct {
	dst   *ebiten.Image
	layer *ebiten.Image

	maskSrc image.Image
	maskImg *ebiten.Image

	vs []ebiten.Vertex
	is []uint16
}

var _ field.Target = (*screenTarget)(nil)

func (t *screenTarget) Clear(bg color.RGBA, transparent bool) {
	if transparent {
		t.dst.Clear()
		return
	}
	t.dst.Fill(bg)
}

func (t *screenTarget) FillCircles(dots []field.Dot, fill color.RGBA, m *field.MaskLayer) {
	if m == nil || m.Image == nil {
		t.fill(t.dst, dots, fill)
		return
	}
	b := t.dst.Bounds()
	if t.layer == nil || t.layer.Bounds() != b {
		if t.layer != nil {
			t.layer.Deallocate()
		}
		t.layer = ebiten.NewImage(b.Dx(), b.Dy())
	}
	t.layer.Clear()
	t.fill(t.layer, dots, fill)
	t.cutOut(m)
	t.dst.DrawImage(t.layer, nil)
}

func (t *screenTarget) fill(dst *ebiten.Image, dots []field.Dot, fill color.RGBA) {
	var path vector.Path
	for i, d := range dots {
		path.MoveTo(float32(d.X+d.R), float32(d.Y))
		path.Arc(float32(d.X), float32(d.Y), float32(d.R), 0, 2*math.Pi, vector.Clockwise)
		path.Close()
		if (i+1)%dotsPerBatch == 0 {
			t.flush(dst, &path, fill)
			path = vector.Path{}
		}
	}
	t.flush(dst, &path, fill)
}

func (t *screenTarget) flush(dst *ebiten.Image, path *vector.Path, fill color.RGBA) {
	t.vs, t.is = path.AppendVerticesAndIndicesForFilling(t.vs[:0], t.is[:0])
	if len(t.is) == 0 {
		return
	}
	r, g, b, a := fill.RGBA()
	for i := range t.vs {
		t.vs[i].SrcX = 1
		t.vs[i].SrcY = 1
		t.vs[i].ColorR = float32(r) / 0xffff
		t.vs[i].ColorG = float32(g) / 0xffff
		t.vs[i].ColorB = float32(b) / 0xffff
		t.vs[i].ColorA = float32(a) / 0xffff
	}
	op := &ebiten.DrawTrianglesOptions{}
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	op.AntiAlias = true
	op.FillRule = ebiten.NonZero
	dst.DrawTriangles(t.vs, t.is, whiteSubImage, op)
}

// cutOut erases the mask's coverage from the dot layer.
func (t *screenTarget) cutOut(m *field.MaskLayer) {
	if t.maskSrc != m.Image {
		if t.maskImg != nil {
			t.maskImg.Deallocate()
		}
		t.maskImg = ebiten.NewImageFromImage(m.Image)
		t.maskSrc = m.Image
	}
	sb := t.maskImg.Bounds()
	w, h := float64(sb.Dx()), float64(sb.Dy())
	scale := m.Size / math.Max(w, h)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-w/2, -h/2)
	op.GeoM.Scale(scale, scale)
	op.GeoM.Rotate(m.Angle)
	op.GeoM.Translate(m.X, m.Y)
	op.Filter = ebiten.FilterLinear
	op.Blend = ebiten.BlendDestinationOut
	t.layer.DrawImage(t.maskImg, op)
}
