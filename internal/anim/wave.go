package anim

import (
	"math"
	"time"
)

const (
	waveThreshold = 0.001
	waveCap       = 2.0
)

var waveProfiles = [len(Bands)]profile{
	Bass:   {speed: 2, reach: 1.0, decay: 0.985, cooldown: 200 * time.Millisecond, width: 60},
	Mid:    {speed: 3.5, reach: 0.75, decay: 0.97, cooldown: 100 * time.Millisecond, width: 40},
	Treble: {speed: 5, reach: 0.5, decay: 0.95, cooldown: 50 * time.Millisecond, width: 25},
}

// WaveManager spawns expanding intensity rings from band levels and answers
// how strongly each point is lit by them.
type WaveManager struct {
	center
	pool
}

// NewWaveManager returns a manager centred at (x, y) whose emissions travel
// at most maxRadius.
func NewWaveManager(x, y, maxRadius float64) *WaveManager {
	return &WaveManager{center: center{x: x, y: y, maxRadius: maxRadius}}
}

// SetGeometry moves the centre and reach. Live emissions are kept.
func (m *WaveManager) SetGeometry(x, y, maxRadius float64) {
	m.center = center{x: x, y: y, maxRadius: maxRadius}
}

// Spawn appends one emission for band b.
func (m *WaveManager) Spawn(b Band, intensity float64, now time.Duration) {
	m.add(newEmission(b, waveProfiles[b], intensity, m.maxRadius, now), now)
}

// Update advances and prunes the pool, then spawns one emission per band
// whose adjusted level crosses the threshold outside its cooldown.
func (m *WaveManager) Update(now time.Duration, levels Levels, sensitivity float64, in Influence) {
	m.advance()
	spawnAll(&m.pool, &waveProfiles, waveThreshold, now, levels, sensitivity, in, m.Spawn)
}

// Influence sums the linear ring falloff of every emission passing (x, y),
// weighted by intensity and capped at 2.
func (m *WaveManager) Influence(x, y float64) float64 {
	if len(m.emissions) == 0 {
		return 0
	}
	d := m.distance(x, y)
	var sum float64
	for _, e := range m.emissions {
		w := waveProfiles[e.Band].width
		off := math.Abs(d - e.Radius)
		if off >= w {
			continue
		}
		sum += (1 - off/w) * e.Intensity
	}
	return math.Min(sum, waveCap)
}

// Emissions returns the live pool. The slice is owned by the manager.
func (m *WaveManager) Emissions() []Emission { return m.emissions }

// Clear drops every emission and resets cooldowns.
func (m *WaveManager) Clear() { m.clear() }
