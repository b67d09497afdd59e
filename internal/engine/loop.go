package engine

import (
	"time"

	"github.com/frog-london/Tara-Voice/internal/anim"
	"github.com/frog-london/Tara-Voice/internal/config"
	"github.com/frog-london/Tara-Voice/internal/field"
)

// loopClock drives the loop managers from a clock that only runs while the
// loop is playing.
type loopClock struct {
	kind    config.LoopAnimation
	pulse   *anim.LoopPulse
	ripple  *anim.LoopRipple
	t       time.Duration
	playing bool
	started bool
}

// newLoopManagers builds both loop managers for cfg. The live loop and the
// offline exporter use the same construction so they render identically.
func newLoopManagers(cfg config.Config, p field.Params) (*anim.LoopPulse, *anim.LoopRipple) {
	pulse := anim.NewLoopPulse(cfg.LoopPeriod(), cfg.LoopCycles)
	ripple := anim.NewLoopRipple(cfg.LoopPeriod(), cfg.CyclePause(), cfg.LoopCycles)
	setLoopGeometry(pulse, ripple, cfg, p)
	return pulse, ripple
}

func setLoopGeometry(pulse *anim.LoopPulse, ripple *anim.LoopRipple, cfg config.Config, p field.Params) {
	clip := p.ClipRadius
	pulse.SetGeometry(clip*cfg.PulseMaxRadius/100, clip*cfg.PulseFalloffWidth/100, cfg.PulseIntensity)
	ripple.SetGeometry(clip, cfg.RippleRingWidth, cfg.RippleFalloffSharpness,
		cfg.RippleIntensity, cfg.RippleBoostAmount)
}

func (l *loopClock) rebuild(cfg config.Config, p field.Params) {
	l.kind = cfg.LoopAnimationType
	l.pulse, l.ripple = newLoopManagers(cfg, p)
	l.t = 0
	l.playing = false
	l.started = false
}

func (l *loopClock) setGeometry(cfg config.Config, p field.Params) {
	setLoopGeometry(l.pulse, l.ripple, cfg, p)
}

// play resumes the loop, restarting it from cycle zero when it has not run
// yet or already finished.
func (l *loopClock) play() {
	if !l.started || l.complete() {
		l.t = 0
		l.pulse.Reset(0)
		l.ripple.Reset(0)
		l.started = true
		l.update()
	}
	l.playing = true
}

func (l *loopClock) pause() { l.playing = false }

// advance moves the loop clock by dt and reports whether the loop finished
// during this step.
func (l *loopClock) advance(dt time.Duration) bool {
	if !l.playing {
		return false
	}
	l.t += dt
	l.update()
	if l.complete() {
		l.playing = false
		return true
	}
	return false
}

func (l *loopClock) update() {
	switch l.kind {
	case config.LoopPulse:
		l.pulse.Update(l.t)
	case config.LoopRipple:
		l.ripple.Update(l.t)
	}
}

func (l *loopClock) layers() (*anim.LoopPulse, *anim.LoopRipple) {
	return l.pulse, l.ripple
}

func (l *loopClock) complete() bool {
	switch l.kind {
	case config.LoopPulse:
		return l.pulse.IsAnimationComplete()
	case config.LoopRipple:
		return l.ripple.IsAnimationComplete()
	}
	return false
}

func (l *loopClock) cycle() int {
	if l.kind == config.LoopPulse {
		return l.pulse.Cycle()
	}
	return l.ripple.Cycle()
}

// PlayLoop starts or resumes the loop animation. A finished loop restarts
// from its first cycle.
func (e *Engine) PlayLoop() error {
	if !e.cfg.LoopingMode {
		return ErrNotLooping
	}
	e.loop.play()
	return nil
}

// PauseLoop freezes the loop animation.
func (e *Engine) PauseLoop() error {
	if !e.cfg.LoopingMode {
		return ErrNotLooping
	}
	e.loop.pause()
	return nil
}

// LoopPlaying reports whether the loop clock is running.
func (e *Engine) LoopPlaying() bool { return e.loop.playing }

// RestartLoop rewinds the loop to its first cycle and plays it.
func (e *Engine) RestartLoop() error {
	if !e.cfg.LoopingMode {
		return ErrNotLooping
	}
	e.loop.started = false
	e.loop.play()
	return nil
}
