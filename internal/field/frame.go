package field

import (
	"image"
	"image/color"
	"math"
	"time"

	"github.com/frog-london/Tara-Voice/internal/anim"
)

// MaskLayer is an image cut out of the dots, centred at (X, Y), scaled to
// Size px on its longer side and rotated by Angle radians.
type MaskLayer struct {
	Image image.Image
	X, Y  float64
	Size  float64
	Angle float64
}

// Frame is the complete draw command list for one frame.
type Frame struct {
	Width, Height int
	Background    color.RGBA
	// Transparent skips the background fill.
	Transparent bool
	Fill        color.RGBA
	Dots        []Dot
	Mask        *MaskLayer
}

// Target is a drawing destination a Frame can be replayed onto. Each
// destination owns its pixels.
type Target interface {
	Clear(bg color.RGBA, transparent bool)
	// FillCircles draws every dot as one batched fill, cutting out the mask
	// when it is non-nil.
	FillCircles(dots []Dot, fill color.RGBA, mask *MaskLayer)
}

// Replay draws f onto t.
func (f *Frame) Replay(t Target) {
	t.Clear(f.Background, f.Transparent)
	if len(f.Dots) > 0 {
		t.FillCircles(f.Dots, f.Fill, f.Mask)
	}
}

const (
	thinkingSteps  = 4
	thinkingStep   = time.Second
	thinkingRotate = 900 * time.Millisecond
)

// ThinkingAngle is the mask rotation in radians after elapsed time in the
// thinking state: four eased half-turns of 0.9s, each followed by a 0.1s
// hold, repeated.
func ThinkingAngle(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	step := int(elapsed / thinkingStep)
	local := elapsed - time.Duration(step)*thinkingStep
	turn := 1.0
	if local < thinkingRotate {
		turn = anim.EaseInOut(float64(local) / float64(thinkingRotate))
	}
	return math.Mod((float64(step%thinkingSteps)+turn)*math.Pi, 2*math.Pi)
}
