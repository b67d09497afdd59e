package anim

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	// spawnWindow is how far into a cycle a ripple may still be spawned.
	spawnWindow = 100 * time.Millisecond

	// lifetimeFactor lets a ripple travel past the clip radius before it is dropped.
	lifetimeFactor = 1.1

	// edgeFade is the fraction of the travel over which the ring fades out.
	edgeFade = 0.15

	minLoopRippleSize = 0.2
	maxLoopRippleSize = 3.0
)

// Ripple is the single ring alive under a LoopRipple.
type Ripple struct {
	ID        uuid.UUID
	Born      time.Duration
	Radius    float64
	Speed     float64 // px per second
	Amplitude float64
	MaxRadius float64
	Cycle     int
}

// LoopRipple emits one ring per cycle that crosses the clip radius in exactly
// one loop duration, followed by an optional pause.
type LoopRipple struct {
	Duration time.Duration
	Pause    time.Duration
	// Cycles is the number of cycles to play; negative means forever.
	Cycles int

	ClipRadius float64
	RingWidth  float64
	Sharpness  float64
	Intensity  float64
	Boost      float64

	start     time.Duration
	last      time.Duration
	cycle     int
	ripple    *Ripple
	completed bool
}

// NewLoopRipple returns a loop ripple started at time zero.
func NewLoopRipple(duration, pause time.Duration, cycles int) *LoopRipple {
	return &LoopRipple{Duration: duration, Pause: pause, Cycles: cycles, cycle: -1}
}

// SetGeometry sets the ring shape. The clip radius only affects ripples
// spawned afterwards.
func (r *LoopRipple) SetGeometry(clipRadius, ringWidth, sharpness, intensity, boost float64) {
	r.ClipRadius = clipRadius
	r.RingWidth = ringWidth
	r.Sharpness = sharpness
	r.Intensity = intensity
	r.Boost = boost
}

// Reset restarts the clock at now and drops the live ripple.
func (r *LoopRipple) Reset(now time.Duration) {
	r.start = now
	r.last = now
	r.cycle = -1
	r.ripple = nil
	r.completed = false
}

// Complete forces the terminal state.
func (r *LoopRipple) Complete() {
	r.completed = true
	r.ripple = nil
}

func (r *LoopRipple) period() time.Duration { return LoopRipplePeriod(r.Duration, r.Pause) }

// LoopRipplePeriod is the length of one loop ripple cycle. A pause starts
// once the ripple has run out its lifetime; without a pause the next ripple
// is spawned right at duration.
func LoopRipplePeriod(duration, pause time.Duration) time.Duration {
	if pause <= 0 {
		return duration
	}
	return time.Duration(lifetimeFactor*float64(duration)) + pause
}

// Update advances the live ripple by the time measured since the previous
// update and spawns the ripple of a new cycle.
func (r *LoopRipple) Update(now time.Duration) {
	if r.completed || r.Duration <= 0 {
		return
	}
	dt := now - r.last
	if dt < 0 {
		dt = 0
	}
	r.last = now

	elapsed := now - r.start
	if elapsed < 0 {
		elapsed = 0
	}
	period := r.period()
	if r.Cycles > 0 && elapsed >= period*time.Duration(r.Cycles) {
		r.Complete()
		return
	}

	if rp := r.ripple; rp != nil {
		rp.Radius += rp.Speed * dt.Seconds()
		if rp.Radius >= rp.MaxRadius*lifetimeFactor {
			r.ripple = nil
		}
	}

	idx := int(elapsed / period)
	inCycle := elapsed - time.Duration(idx)*period
	// A slow tick may land past the window; the first tick of the cycle
	// still spawns and the radius catches up below.
	if idx != r.cycle && (inCycle < spawnWindow || inCycle <= dt) {
		r.spawn(now, idx, inCycle)
	}
}

func (r *LoopRipple) spawn(now time.Duration, idx int, inCycle time.Duration) {
	speed := r.ClipRadius / r.Duration.Seconds()
	r.cycle = idx
	r.ripple = &Ripple{
		ID:        uuid.New(),
		Born:      now - inCycle,
		Radius:    speed * inCycle.Seconds(),
		Speed:     speed,
		Amplitude: r.Intensity,
		MaxRadius: r.ClipRadius,
		Cycle:     idx,
	}
}

// IsAnimationComplete reports whether the last cycle has finished.
func (r *LoopRipple) IsAnimationComplete() bool { return r.completed }

// Current returns the live ripple, or nil between ripples.
func (r *LoopRipple) Current() *Ripple { return r.ripple }

// Cycle is the index of the most recently spawned cycle, -1 before the first.
func (r *LoopRipple) Cycle() int { return r.cycle }

// SizeModulation returns the size multiplier for a point at distance from
// the centre: a Gaussian ring around the ripple radius, faded out over the
// last part of its travel and clamped to [0.2, 3].
func (r *LoopRipple) SizeModulation(distance float64) float64 {
	rp := r.ripple
	if rp == nil || r.RingWidth <= 0 {
		return 1
	}
	rel := (distance - rp.Radius) / r.RingWidth
	ring := math.Exp(-r.Sharpness * rel * rel)

	fade := 1.0
	if rp.MaxRadius > 0 {
		travel := rp.Radius / rp.MaxRadius
		if travel > 1-edgeFade {
			fade = math.Max(0, (1-travel)/edgeFade)
		}
	}
	return clamp(1+r.Boost*rp.Amplitude*ring*fade, minLoopRippleSize, maxLoopRippleSize)
}
