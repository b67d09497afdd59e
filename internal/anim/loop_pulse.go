package anim

import "time"

// LoopPulse is a breathing ring evaluated analytically from elapsed time.
// The front expands from the centre to Reach over the first half of each
// cycle and contracts back over the second half.
type LoopPulse struct {
	Duration time.Duration
	// Cycles is the number of cycles to play; negative means forever.
	Cycles int

	Intensity    float64
	Reach        float64 // px
	FalloffWidth float64 // px

	start     time.Duration
	cycle     int
	progress  float64
	front     float64
	completed bool
}

// NewLoopPulse returns a pulse started at time zero.
func NewLoopPulse(duration time.Duration, cycles int) *LoopPulse {
	return &LoopPulse{Duration: duration, Cycles: cycles}
}

// SetGeometry sets the reach, ring half-width and boost of the pulse.
func (p *LoopPulse) SetGeometry(reach, falloffWidth, intensity float64) {
	p.Reach = reach
	p.FalloffWidth = falloffWidth
	p.Intensity = intensity
}

// Reset restarts the clock at now.
func (p *LoopPulse) Reset(now time.Duration) {
	p.start = now
	p.cycle = 0
	p.progress = 0
	p.front = 0
	p.completed = false
}

// Complete forces the terminal state.
func (p *LoopPulse) Complete() {
	p.completed = true
	p.front = 0
}

// Update evaluates the pulse at now.
func (p *LoopPulse) Update(now time.Duration) {
	if p.completed || p.Duration <= 0 {
		return
	}
	elapsed := now - p.start
	if elapsed < 0 {
		elapsed = 0
	}
	if p.Cycles > 0 && elapsed >= p.Duration*time.Duration(p.Cycles) {
		p.Complete()
		return
	}
	p.cycle = int(elapsed / p.Duration)
	p.progress = float64(elapsed%p.Duration) / float64(p.Duration)

	eased := EaseInOut(p.progress)
	tri := 2 * eased
	if eased >= 0.5 {
		tri = 2 * (1 - eased)
	}
	p.front = p.Reach * tri
}

// IsAnimationComplete reports whether the last cycle has finished.
func (p *LoopPulse) IsAnimationComplete() bool { return p.completed }

// Cycle is the index of the current cycle.
func (p *LoopPulse) Cycle() int { return p.cycle }

// Progress is the raw position within the current cycle in [0, 1).
func (p *LoopPulse) Progress() float64 { return p.progress }

// Front is the current radius of the pulse front.
func (p *LoopPulse) Front() float64 { return p.front }

// Boost returns the size boost for a point at distance from the centre.
// Points well inside the front get the full intensity, points within
// FalloffWidth of either side of the front a linear ramp, and points
// beyond nothing.
func (p *LoopPulse) Boost(distance float64) float64 {
	if p.completed {
		return 0
	}
	w := p.FalloffWidth
	if w <= 0 {
		if distance <= p.front {
			return p.Intensity
		}
		return 0
	}
	inner, outer := p.front-w, p.front+w
	switch {
	case distance <= inner:
		return p.Intensity
	case distance >= outer:
		return 0
	default:
		return p.Intensity * (outer - distance) / (2 * w)
	}
}
