package anim

import (
	"math"
	"time"
)

const (
	rippleThreshold = 0.002

	// rippleDisplacement is the peak radial offset in px of a full-amplitude ripple.
	rippleDisplacement = 6.0
	rippleSizeGain     = 0.6

	minRippleSize = 0.3
	maxRippleSize = 2.0
)

var rippleProfiles = [len(Bands)]profile{
	Bass:   {speed: 1.5, reach: 1.0, decay: 0.99, cooldown: 400 * time.Millisecond, width: 50, harmonic: 1, gain: 1.0},
	Mid:    {speed: 2.5, reach: 0.8, decay: 0.98, cooldown: 200 * time.Millisecond, width: 35, harmonic: 2, gain: 0.7},
	Treble: {speed: 4, reach: 0.6, decay: 0.96, cooldown: 50 * time.Millisecond, width: 20, harmonic: 3, gain: 0.4},
}

// RippleManager spawns expanding waveform rings that push dots radially and
// modulate their size.
type RippleManager struct {
	center
	pool
}

// NewRippleManager returns a manager centred at (x, y) whose ripples travel
// at most maxRadius.
func NewRippleManager(x, y, maxRadius float64) *RippleManager {
	return &RippleManager{center: center{x: x, y: y, maxRadius: maxRadius}}
}

// SetGeometry moves the centre and reach. Live ripples are kept.
func (m *RippleManager) SetGeometry(x, y, maxRadius float64) {
	m.center = center{x: x, y: y, maxRadius: maxRadius}
}

// Spawn appends one ripple for band b with the given amplitude.
func (m *RippleManager) Spawn(b Band, amplitude float64, now time.Duration) {
	m.add(newEmission(b, rippleProfiles[b], amplitude, m.maxRadius, now), now)
}

// Update advances and prunes the pool, then spawns per band as WaveManager does
// with the ripple thresholds and cooldowns.
func (m *RippleManager) Update(now time.Duration, levels Levels, sensitivity float64, in Influence) {
	m.advance()
	spawnAll(&m.pool, &rippleProfiles, rippleThreshold, now, levels, sensitivity, in, m.Spawn)
}

// Displacement returns the radial offset in px for the point (x, y) and a
// size multiplier clamped to [0.3, 2].
func (m *RippleManager) Displacement(x, y float64) (offset, size float64) {
	if len(m.emissions) == 0 {
		return 0, 1
	}
	d := m.distance(x, y)
	var mod float64
	for _, e := range m.emissions {
		pr := rippleProfiles[e.Band]
		rel := d - e.Radius
		if math.Abs(rel) >= pr.width {
			continue
		}
		// phase runs -π..π across the ring; the envelope closes it at both edges
		phase := math.Pi * rel / pr.width
		env := 0.5 * (1 + math.Cos(phase))
		a := e.Intensity * pr.gain
		offset += math.Sin(phase*pr.harmonic) * env * a * rippleDisplacement
		mod += math.Cos(phase*pr.harmonic) * env * a * rippleSizeGain
	}
	return offset, clamp(1+mod, minRippleSize, maxRippleSize)
}

// Emissions returns the live pool. The slice is owned by the manager.
func (m *RippleManager) Emissions() []Emission { return m.emissions }

// Clear drops every ripple and resets cooldowns.
func (m *RippleManager) Clear() { m.clear() }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
