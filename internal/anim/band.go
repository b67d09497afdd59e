// Package anim holds the stateful animation managers of the halftone field:
// the audio-reactive wave and ripple pools and the deterministic loop
// pulse and loop ripple.
//
// Every manager is driven from a single tick and is not safe for concurrent
// use. Time is a duration on the caller's clock.
package anim

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Band is one partition of the audio spectrum.
type Band int

const (
	Bass Band = iota
	Mid
	Treble
)

// Bands lists the bands in spawn order.
var Bands = [...]Band{Bass, Mid, Treble}

func (b Band) String() string {
	switch b {
	case Bass:
		return "bass"
	case Mid:
		return "mid"
	case Treble:
		return "treble"
	default:
		return fmt.Sprintf("Band(%d)", int(b))
	}
}

// Levels are the normalised band levels delivered by the audio analyser,
// each in [0, 1].
type Levels struct {
	Bass    float64
	Mid     float64
	Treble  float64
	Average float64
}

// Band returns the level of b.
func (l Levels) Band(b Band) float64 {
	switch b {
	case Bass:
		return l.Bass
	case Mid:
		return l.Mid
	case Treble:
		return l.Treble
	}
	return 0
}

// Influence weights each band before thresholding.
type Influence struct {
	Bass   float64
	Mid    float64
	Treble float64
}

// Band returns the weight of b.
func (in Influence) Band(b Band) float64 {
	switch b {
	case Bass:
		return in.Bass
	case Mid:
		return in.Mid
	case Treble:
		return in.Treble
	}
	return 0
}

// Weighted mixes the three band levels by influence and sensitivity.
func (l Levels) Weighted(in Influence, sensitivity float64) float64 {
	return (l.Bass*in.Bass + l.Mid*in.Mid + l.Treble*in.Treble) / 3 * sensitivity
}

// profile is the kinematics of one band inside a manager.
type profile struct {
	speed    float64 // px per tick
	reach    float64 // fraction of the manager's max radius
	decay    float64 // intensity multiplier per tick
	cooldown time.Duration
	width    float64 // ring half-width in px
	harmonic float64
	gain     float64
}

// Emission is a transient ring spawned by a band crossing its threshold.
// Radius never decreases and Intensity never increases while it is alive.
type Emission struct {
	ID        uuid.UUID
	Band      Band
	Born      time.Duration
	Radius    float64
	Speed     float64
	Intensity float64
	MaxRadius float64
	Decay     float64
}

// intensityFloor is the level below which an emission is dropped.
const intensityFloor = 0.01

// pool is the unordered set of live emissions shared by both reactive managers.
type pool struct {
	emissions []Emission
	lastSpawn [len(Bands)]time.Duration
	spawned   [len(Bands)]bool
}

// advance moves every emission one tick forward and drops the expired ones.
func (p *pool) advance() {
	live := p.emissions[:0]
	for _, e := range p.emissions {
		e.Radius += e.Speed
		e.Intensity *= e.Decay
		if e.Radius >= e.MaxRadius || e.Intensity < intensityFloor {
			continue
		}
		live = append(live, e)
	}
	for i := len(live); i < len(p.emissions); i++ {
		p.emissions[i] = Emission{}
	}
	p.emissions = live
}

func (p *pool) ready(b Band, now, cooldown time.Duration) bool {
	return !p.spawned[b] || now-p.lastSpawn[b] > cooldown
}

func (p *pool) add(e Emission, now time.Duration) {
	p.emissions = append(p.emissions, e)
	p.lastSpawn[e.Band] = now
	p.spawned[e.Band] = true
}

func (p *pool) clear() {
	p.emissions = p.emissions[:0]
	p.spawned = [len(Bands)]bool{}
}

// center is the reference point and reach shared by the reactive managers.
// It may be moved at any time; live emissions keep their absolute radius.
type center struct {
	x, y      float64
	maxRadius float64
}

func (c *center) distance(x, y float64) float64 {
	return math.Hypot(x-c.x, y-c.y)
}

// spawnAll applies the threshold and cooldown gate to every band.
func spawnAll(p *pool, profiles *[len(Bands)]profile, threshold float64, now time.Duration,
	levels Levels, sensitivity float64, in Influence, spawn func(Band, float64, time.Duration)) {
	for _, b := range Bands {
		adjusted := levels.Band(b) * in.Band(b) * sensitivity
		// an emission born under the floor would be pruned on the next advance
		if adjusted <= threshold || adjusted < intensityFloor {
			continue
		}
		if p.ready(b, now, profiles[b].cooldown) {
			spawn(b, math.Min(adjusted, 1), now)
		}
	}
}

func newEmission(b Band, pr profile, intensity, maxRadius float64, now time.Duration) Emission {
	return Emission{
		ID:        uuid.New(),
		Band:      b,
		Born:      now,
		Speed:     pr.speed,
		Intensity: intensity,
		MaxRadius: maxRadius * pr.reach,
		Decay:     pr.decay,
	}
}
