// Package engine owns everything that changes from tick to tick: the
// animation managers, the dot colour, the mask, recordings and exports.
// All methods are meant to be called from one goroutine, the one driving
// Tick; background work reports back through Tick.
package engine

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"github.com/frog-london/Tara-Voice/internal/anim"
	"github.com/frog-london/Tara-Voice/internal/config"
	"github.com/frog-london/Tara-Voice/internal/field"
	"github.com/frog-london/Tara-Voice/internal/logging"
	"github.com/frog-london/Tara-Voice/internal/mask"
	"github.com/frog-london/Tara-Voice/internal/palette"
	"github.com/frog-london/Tara-Voice/internal/record"
	"github.com/frog-london/Tara-Voice/internal/vectorize"
)

var (
	ErrAlreadyRecording = errors.New("engine: already recording")
	ErrNotLooping       = errors.New("engine: loop mode is off")
	ErrExportRunning    = errors.New("engine: export already running")
)

// Engine is the halftone field and its animation state.
type Engine struct {
	cfg    config.Config
	params field.Params
	log    *slog.Logger
	now    func() time.Time
	fetch  mask.FetchFunc

	epoch    time.Time
	clock    time.Duration
	lastTick time.Time
	ticked   bool

	levels  anim.Levels
	waves   *anim.WaveManager
	ripples *anim.RippleManager

	loop loopClock

	dot         *palette.Animator
	background  color.RGBA
	transparent bool

	masks         *mask.Loader
	thinkingStart time.Duration

	frame field.Frame

	newEncoder EncoderFactory
	onStatus   func(string)
	message    string
	capture    *record.LiveCapture

	offline *offlineRun

	svg       *svgRun
	svgBudget time.Duration
}

// New builds an engine for cfg.
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	e := &Engine{
		now:        time.Now,
		newEncoder: defaultEncoder,
		svgBudget:  4 * time.Millisecond,
	}
	for _, o := range opts {
		o(e)
	}
	e.log = logging.OrNop(e.log)
	e.masks = mask.NewLoader(e.log, e.fetch)
	e.epoch = e.now()

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	params, err := field.ParamsFrom(cfg)
	if err != nil {
		return nil, err
	}
	dot, err := palette.Parse(desiredDotColor(cfg))
	if err != nil {
		return nil, fmt.Errorf("engine: dotColor: %w", err)
	}
	e.dot = palette.NewAnimator(dot)
	e.cfg = cfg
	e.params = params
	if err := e.applyBackground(cfg); err != nil {
		return nil, err
	}
	e.waves = anim.NewWaveManager(params.CenterX, params.CenterY, params.ClipRadius)
	e.ripples = anim.NewRippleManager(params.CenterX, params.CenterY, params.ClipRadius)
	e.loop.rebuild(cfg, params)
	if cfg.LoopingMode {
		e.loop.play()
	}
	e.applyMask(cfg)
	e.frame = e.buildFrame(0, nil)
	return e, nil
}

// Config returns the active configuration.
func (e *Engine) Config() config.Config { return e.cfg }

// Now is the engine clock: time since the engine was created, as of the
// last tick.
func (e *Engine) Now() time.Duration { return e.clock }

// SetConfig replaces the configuration. Running emissions keep their radius,
// a changed dot colour fades over the transition duration, and changed loop
// timing restarts the loop.
func (e *Engine) SetConfig(cfg config.Config) error {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return err
	}
	params, err := field.ParamsFrom(cfg)
	if err != nil {
		return err
	}
	dot, err := palette.Parse(desiredDotColor(cfg))
	if err != nil {
		return fmt.Errorf("engine: dotColor: %w", err)
	}
	if err := e.applyBackground(cfg); err != nil {
		return err
	}
	old := e.cfg
	e.cfg = cfg
	e.params = params

	if dot != e.dot.Resting() {
		e.dot.Start(dot, e.clock, cfg.Transition())
	}
	e.waves.SetGeometry(params.CenterX, params.CenterY, params.ClipRadius)
	e.ripples.SetGeometry(params.CenterX, params.CenterY, params.ClipRadius)
	if !cfg.AudioEnabled {
		e.waves.Clear()
		e.ripples.Clear()
	}

	if loopTimingChanged(old, cfg) {
		e.loop.rebuild(cfg, params)
		if cfg.LoopingMode {
			e.loop.play()
		}
	} else {
		e.loop.setGeometry(cfg, params)
	}
	if !cfg.LoopingMode {
		e.loop.pause()
	}

	if cfg.IsThinking && !old.IsThinking {
		e.thinkingStart = e.clock
	}
	e.applyMask(cfg)
	return nil
}

func desiredDotColor(cfg config.Config) string {
	if cfg.TargetColor != "" {
		return cfg.TargetColor
	}
	return cfg.DotColor
}

func loopTimingChanged(a, b config.Config) bool {
	return a.LoopingMode != b.LoopingMode ||
		a.LoopDuration != b.LoopDuration ||
		a.LoopCycles != b.LoopCycles ||
		a.LoopAnimationType != b.LoopAnimationType ||
		a.RippleCyclePause != b.RippleCyclePause
}

func (e *Engine) applyBackground(cfg config.Config) error {
	bg, err := palette.Parse(cfg.BackgroundColor)
	switch {
	case errors.Is(err, palette.ErrTransparent):
		e.background, e.transparent = color.RGBA{}, true
	case err != nil:
		return fmt.Errorf("engine: backgroundColor: %w", err)
	default:
		e.background, e.transparent = bg, false
	}
	return nil
}

func (e *Engine) applyMask(cfg config.Config) {
	if !cfg.MaskEnabled || cfg.MaskSvgPath == "" {
		e.masks.Clear()
		return
	}
	e.masks.Request(cfg.MaskSvgPath, cfg.MaskSize)
}

// Tick advances every animation to now, feeds in the latest audio levels,
// collects background results and renders the frame.
func (e *Engine) Tick(now time.Time, levels anim.Levels) {
	dt := time.Duration(0)
	if e.ticked {
		dt = max(0, now.Sub(e.lastTick))
	}
	e.ticked = true
	e.lastTick = now
	e.clock = max(e.clock, now.Sub(e.epoch))
	e.levels = levels

	e.masks.Poll()
	e.dot.Update(e.clock)

	if e.cfg.AudioEnabled && !e.cfg.LoopingMode {
		e.waves.Update(e.clock, levels, e.params.Sensitivity, e.params.Influence)
		e.ripples.Update(e.clock, levels, e.params.Sensitivity, e.params.Influence)
	}
	if e.cfg.LoopingMode {
		if e.loop.advance(dt) {
			e.log.Info("loop finished", "cycles", e.cfg.LoopCycles)
		}
	}

	e.frame = e.buildFrame(e.clock, e.frame.Dots[:0])

	e.tickCapture()
	e.tickOffline()
	e.tickSVG()
}

// buildFrame renders the field at engine time t with the live managers.
func (e *Engine) buildFrame(t time.Duration, dots []field.Dot) field.Frame {
	layers := field.Layers{Levels: e.levels}
	if e.cfg.LoopingMode {
		layers.Pulse, layers.LoopRipple = e.loop.layers()
	} else if e.cfg.AudioEnabled {
		layers.Waves, layers.Ripples = e.waves, e.ripples
	}
	return field.Frame{
		Width:       e.params.Width,
		Height:      e.params.Height,
		Background:  e.background,
		Transparent: e.transparent,
		Fill:        e.dot.Color(t),
		Dots:        field.Render(e.params, layers, t, dots),
		Mask:        e.maskLayer(t),
	}
}

// maskLayer places the loaded mask at the field centre, turning it while
// thinking.
func (e *Engine) maskLayer(t time.Duration) *field.MaskLayer {
	m := e.masks.Current()
	if !e.cfg.MaskEnabled || m == nil {
		return nil
	}
	side := float64(min(e.params.Width, e.params.Height))
	layer := &field.MaskLayer{
		Image: m.Image,
		X:     e.params.CenterX,
		Y:     e.params.CenterY,
		Size:  side * m.Size / 100,
	}
	if e.cfg.IsThinking {
		layer.Angle = field.ThinkingAngle(t - e.thinkingOrigin())
	}
	return layer
}

// thinkingOrigin is the engine time the thinking rotation counts from.
func (e *Engine) thinkingOrigin() time.Duration {
	if e.cfg.MaskRotationStartTime > 0 {
		return time.Duration(e.cfg.MaskRotationStartTime * float64(time.Second))
	}
	return e.thinkingStart
}

// Frame is the frame rendered by the last tick. It is rebuilt in place on
// the next tick.
func (e *Engine) Frame() *field.Frame { return &e.frame }

// DrawTo replays the current frame onto t.
func (e *Engine) DrawTo(t field.Target) { e.frame.Replay(t) }

// StartColorTransition fades the dot colour to target over d. A zero
// duration switches at once.
func (e *Engine) StartColorTransition(target string, d time.Duration) error {
	c, err := palette.Parse(target)
	if err != nil {
		return err
	}
	e.dot.Start(c, e.clock, d)
	e.log.Debug("colour transition", "to", palette.Hex(c), "duration", d)
	return nil
}

// Status is a snapshot of the engine for display.
type Status struct {
	Message string

	Recording      bool
	Frames         int
	ExpectedFrames int

	Exporting   bool
	ExportDone  int
	ExportTotal int
	ExportErr   error

	SVGRunning  bool
	SVGProgress vectorize.Progress

	MaskLoading bool
	MaskErr     string

	Color         string
	Transitioning bool

	Looping      bool
	LoopPlaying  bool
	LoopComplete bool
	LoopCycle    int
	Dots         int
}

// Status reports the current state.
func (e *Engine) Status() Status {
	s := Status{
		Message:       e.message,
		MaskLoading:   e.masks.Loading(),
		MaskErr:       e.masks.Err(),
		Color:         palette.Hex(e.dot.Color(e.clock)),
		Transitioning: e.dot.Active(),
		Looping:       e.cfg.LoopingMode,
		LoopPlaying:   e.loop.playing,
		LoopComplete:  e.loop.complete(),
		LoopCycle:     e.loop.cycle(),
		Dots:          len(e.frame.Dots),
	}
	if c := e.capture; c != nil {
		s.Recording = c.Recording()
		s.Frames = c.Frames()
		s.ExpectedFrames = c.Expected()
	}
	if o := e.offline; o != nil {
		s.Exporting = !o.finished
		s.ExportDone = int(o.done.Load())
		s.ExportTotal = o.total
		s.ExportErr = o.err
	}
	if j := e.svg; j != nil {
		s.SVGRunning = true
		s.SVGProgress = j.progress
	}
	return s
}

func (e *Engine) setStatus(msg string) {
	e.message = msg
	if e.onStatus != nil {
		e.onStatus(msg)
	}
}

// Close stops a running recording and cancels an offline export.
func (e *Engine) Close() error {
	var err error
	if e.capture != nil {
		err = e.capture.Stop()
	}
	if e.offline != nil && !e.offline.finished {
		e.offline.cancel()
		err = errors.Join(err, <-e.offline.result)
		e.offline.finished = true
	}
	e.masks.Clear()
	return err
}
