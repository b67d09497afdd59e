package field

import (
	"math"
	"time"

	"github.com/frog-london/Tara-Voice/internal/config"
)

// Modifier adjusts a point after the base falloff.
type Modifier func(p *Point)

// jitterBucket is how long a jitter offset is held before it is re-rolled.
const jitterBucket = 50 * time.Millisecond

// Modifiers resolves the active layers into an ordered chain once per tick.
// Loop mode uses only the selected loop manager; otherwise the audio mode
// picks pulse, wave, ripple or all three, followed by treble jitter.
func Modifiers(p Params, l Layers, now time.Duration) []Modifier {
	var mods []Modifier
	if p.Looping {
		switch p.LoopType {
		case config.LoopPulse:
			if l.Pulse != nil {
				pulse := l.Pulse
				mods = append(mods, func(pt *Point) {
					pt.Size *= 1 + pulse.Boost(pt.Distance)
				})
			}
		case config.LoopRipple:
			if l.LoopRipple != nil {
				ripple := l.LoopRipple
				mods = append(mods, func(pt *Point) {
					pt.Size *= ripple.SizeModulation(pt.Distance)
				})
			}
		}
		return mods
	}
	if !p.Audio {
		return nil
	}

	mode := p.Mode
	if mode == config.ModePulse || mode == config.ModeCombined {
		if k := 1 + p.PulseGain*l.Levels.Weighted(p.Influence, p.Sensitivity); k != 1 {
			mods = append(mods, func(pt *Point) { pt.Size *= k })
		}
	}
	if (mode == config.ModeWave || mode == config.ModeCombined) && l.Waves != nil {
		waves := l.Waves
		mods = append(mods, func(pt *Point) {
			pt.Size *= 1 + waves.Influence(pt.X, pt.Y)
		})
	}
	if (mode == config.ModeRipple || mode == config.ModeCombined) && l.Ripples != nil {
		ripples := l.Ripples
		cx, cy := p.CenterX, p.CenterY
		mods = append(mods, func(pt *Point) {
			offset, size := ripples.Displacement(pt.X, pt.Y)
			pt.moveRadially(cx, cy, offset)
			pt.Size *= size
		})
	}
	if amount := p.TrebleJitter * l.Levels.Treble; amount > 0 {
		seed := uint64(now / jitterBucket)
		cx, cy := p.CenterX, p.CenterY
		mods = append(mods, jitter(amount, seed, cx, cy))
	}
	return mods
}

func jitter(amount float64, seed uint64, cx, cy float64) Modifier {
	return func(pt *Point) {
		h := splitmix(uint64(pt.Index)<<32 ^ seed)
		dx := unitFloat(h)*2 - 1
		dy := unitFloat(splitmix(h))*2 - 1
		pt.X += dx * amount
		pt.Y += dy * amount
		pt.Distance = math.Hypot(pt.X-cx, pt.Y-cy)
	}
}

func splitmix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

func unitFloat(h uint64) float64 {
	return float64(h>>11) / (1 << 53)
}
