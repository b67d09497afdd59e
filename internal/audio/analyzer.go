// Package audio plays a decoded audio file and reduces what is playing to
// the four normalised levels the field reacts to.
package audio

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/frog-london/Tara-Voice/internal/anim"
)

const (
	bassCutoff   = 250.0
	trebleCutoff = 4000.0

	// levels are compressed like the magnitude bars of a spectrum display
	compression = 0.3
	noiseGate   = 1e-4

	springFrequency = 8.0
	springDamping   = 1.0
)

// Analyzer splits a sample window into bass, mid and treble with a pair of
// one-pole low-pass filters, measures each band's RMS and smooths the result
// with critically damped springs.
type Analyzer struct {
	aBass, aTreble float64
	spring         harmonica.Spring
	pos, vel       [4]float64
}

// NewAnalyzer prepares an analyser for audio at sampleRate, updated fps times
// a second.
func NewAnalyzer(sampleRate, fps int) *Analyzer {
	rate := float64(max(1, sampleRate))
	return &Analyzer{
		aBass:   onePole(bassCutoff, rate),
		aTreble: onePole(trebleCutoff, rate),
		spring:  harmonica.NewSpring(harmonica.FPS(max(1, fps)), springFrequency, springDamping),
	}
}

func onePole(cutoff, rate float64) float64 {
	return 1 - math.Exp(-2*math.Pi*cutoff/rate)
}

// Raw measures the unsmoothed levels of samples.
func (a *Analyzer) Raw(samples [][2]float64) anim.Levels {
	if len(samples) == 0 {
		return anim.Levels{}
	}
	var lowB, lowT float64
	var sb, sm, st float64
	for _, s := range samples {
		x := (s[0] + s[1]) * 0.5
		lowB += a.aBass * (x - lowB)
		lowT += a.aTreble * (x - lowT)
		b, m, t := lowB, lowT-lowB, x-lowT
		sb += b * b
		sm += m * m
		st += t * t
	}
	n := float64(len(samples))
	l := anim.Levels{
		Bass:   level(sb / n),
		Mid:    level(sm / n),
		Treble: level(st / n),
	}
	l.Average = (l.Bass + l.Mid + l.Treble) / 3
	return l
}

func level(meanSquare float64) float64 {
	rms := math.Sqrt(meanSquare)
	if rms < noiseGate {
		return 0
	}
	return min(1, math.Pow(rms, compression))
}

// Analyze measures samples and advances the smoothing by one frame.
func (a *Analyzer) Analyze(samples [][2]float64) anim.Levels {
	raw := a.Raw(samples)
	target := [4]float64{raw.Bass, raw.Mid, raw.Treble, raw.Average}
	var out [4]float64
	for i := range target {
		a.pos[i], a.vel[i] = a.spring.Update(a.pos[i], a.vel[i], target[i])
		out[i] = min(1, max(0, a.pos[i]))
	}
	return anim.Levels{Bass: out[0], Mid: out[1], Treble: out[2], Average: out[3]}
}

// Reset drops the smoothing state.
func (a *Analyzer) Reset() {
	a.pos = [4]float64{}
	a.vel = [4]float64{}
}
