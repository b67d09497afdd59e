package mask

import (
	"image"
	"math"

	"github.com/frog-london/Tara-Voice/internal/field"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Alpha rasterises layer into a w×h coverage image in canvas space: the mask
// is scaled so its longer side is layer.Size, rotated about its own centre by
// layer.Angle and centred on (layer.X, layer.Y). Pixels the mask covers are
// opaque.
func Alpha(layer *field.MaskLayer, w, h int) *image.Alpha {
	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	if layer == nil || layer.Image == nil || layer.Size <= 0 {
		return dst
	}
	src := layer.Image
	sb := src.Bounds()
	if sb.Empty() {
		return dst
	}
	draw.BiLinear.Transform(dst, Transform(layer, sb), src, sb, draw.Over, nil)
	return dst
}

// Transform is the source-to-canvas affine matrix for layer.
func Transform(layer *field.MaskLayer, sb image.Rectangle) f64.Aff3 {
	sw, sh := float64(sb.Dx()), float64(sb.Dy())
	s := layer.Size / math.Max(sw, sh)
	cw := float64(sb.Min.X) + sw/2
	ch := float64(sb.Min.Y) + sh/2
	sin, cos := math.Sincos(layer.Angle)
	return f64.Aff3{
		s * cos, -s * sin, layer.X - s*(cos*cw-sin*ch),
		s * sin, s * cos, layer.Y - s*(sin*cw+cos*ch),
	}
}
