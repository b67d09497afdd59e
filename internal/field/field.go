// Package field renders the halftone dot field. Render is a pure function of
// the parameters, the animation layers and the time; its Frame is replayed
// against whichever drawing target is active.
package field

import (
	"fmt"
	"math"
	"time"

	"github.com/frog-london/Tara-Voice/internal/anim"
	"github.com/frog-london/Tara-Voice/internal/config"
	"github.com/frog-london/Tara-Voice/internal/falloff"
)

// Params is the per-frame geometry and mode selection derived from config.
type Params struct {
	Width, Height int
	GridDensity   int
	Falloff       falloff.Model

	CenterX, CenterY float64
	ClipRadius       float64

	Audio        bool
	Mode         config.AnimationMode
	Sensitivity  float64
	Influence    anim.Influence
	PulseGain    float64
	TrebleJitter float64

	Looping  bool
	LoopType config.LoopAnimation
}

// ParamsFrom derives render parameters from a normalised config.
func ParamsFrom(cfg config.Config) (Params, error) {
	curve, err := falloff.ParseCurve(cfg.FalloffType)
	if err != nil {
		return Params{}, fmt.Errorf("field: %w", err)
	}
	cx, cy := cfg.Center()
	return Params{
		Width:       cfg.Width,
		Height:      cfg.Height,
		GridDensity: cfg.GridDensity,
		Falloff: falloff.Model{
			Curve:     curve,
			Intensity: cfg.FalloffIntensity,
			MinSize:   cfg.MinDotSize,
			MaxSize:   cfg.MaxDotSize,
		},
		CenterX:     cx,
		CenterY:     cy,
		ClipRadius:  cfg.CircularRadius,
		Audio:       cfg.AudioEnabled,
		Mode:        cfg.AudioAnimationMode,
		Sensitivity: cfg.AudioSensitivity,
		Influence: anim.Influence{
			Bass:   cfg.BassInfluence,
			Mid:    cfg.MidInfluence,
			Treble: cfg.TrebleInfluence,
		},
		PulseGain:    cfg.PulseGain,
		TrebleJitter: cfg.TrebleJitter,
		Looping:      cfg.LoopingMode,
		LoopType:     cfg.LoopAnimationType,
	}, nil
}

// Layers are the animation managers consulted while rendering. Nil managers
// are skipped.
type Layers struct {
	Waves      *anim.WaveManager
	Ripples    *anim.RippleManager
	Pulse      *anim.LoopPulse
	LoopRipple *anim.LoopRipple
	Levels     anim.Levels
}

// Dot is one surviving circle; R is its radius.
type Dot struct {
	X, Y, R float64
}

// Point is a lattice point flowing through the modifier chain. Size is a
// diameter.
type Point struct {
	Index    int
	X, Y     float64
	Distance float64
	Size     float64
}

func (p *Point) moveRadially(cx, cy, offset float64) {
	if offset == 0 || p.Distance == 0 {
		return
	}
	ux, uy := (p.X-cx)/p.Distance, (p.Y-cy)/p.Distance
	p.X += ux * offset
	p.Y += uy * offset
	p.Distance = math.Hypot(p.X-cx, p.Y-cy)
}

// Render computes every visible dot at time now, appending to dst.
func Render(p Params, l Layers, now time.Duration, dst []Dot) []Dot {
	grid := NewGrid(p.Width, p.Height, p.GridDensity)
	mods := Modifiers(p, l, now)
	for i := 0; i < grid.Len(); i++ {
		x, y := grid.At(i)
		pt := Point{Index: i, X: x, Y: y, Distance: math.Hypot(x-p.CenterX, y-p.CenterY)}
		pt.Size = p.Falloff.Diameter(pt.Distance, p.ClipRadius)
		for _, m := range mods {
			m(&pt)
		}
		if pt.Size <= 0 {
			continue
		}
		// no partial dots at the boundary
		if pt.Distance+pt.Size/2 > p.ClipRadius {
			continue
		}
		dst = append(dst, Dot{X: pt.X, Y: pt.Y, R: pt.Size / 2})
	}
	return dst
}
