package engine

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"sync/atomic"
	"time"

	"github.com/frog-london/Tara-Voice/internal/anim"
	"github.com/frog-london/Tara-Voice/internal/config"
	"github.com/frog-london/Tara-Voice/internal/field"
	"github.com/frog-london/Tara-Voice/internal/record"
	"github.com/frog-london/Tara-Voice/internal/surface"
	"github.com/frog-london/Tara-Voice/internal/vectorize"
)

// StartRecording captures the live frames into enc at the capture frame
// rate. A nil enc is opened with the engine's encoder factory. In loop mode
// the loop restarts so the recording holds the whole animation, and a finite
// loop stops the recording on its own.
func (e *Engine) StartRecording(enc record.Encoder) error {
	if e.capture != nil && e.capture.Recording() {
		return ErrAlreadyRecording
	}
	w, h, fps := e.params.Width, e.params.Height, e.cfg.CaptureFps()
	if enc == nil {
		var err error
		if enc, err = e.newEncoder(w, h, fps); err != nil {
			e.log.Warn("encoder unavailable", "err", err)
			e.setStatus("recording unavailable: " + err.Error())
			return fmt.Errorf("engine: start recording: %w", err)
		}
	}

	expected := 0
	if e.cfg.LoopingMode {
		if e.cfg.LoopCycles > 0 {
			expected = record.ExpectedFrames(fps, e.cfg.TotalLoopDuration())
		}
		_ = e.RestartLoop()
	}
	if m, ok := enc.(*record.MJPEGEncoder); ok {
		e.log.Info("recording to file", "path", m.Path)
	}
	c, err := record.StartLive(enc, record.LiveOptions{
		Width: w, Height: h, FPS: fps,
		Expected: expected,
		Status:   e.setStatus,
		Release:  func() { e.log.Debug("capture released") },
		Now:      e.now,
		Log:      e.log,
	})
	if err != nil {
		_ = enc.Close()
		e.setStatus("recording unavailable: " + err.Error())
		return err
	}
	e.capture = c
	return nil
}

// StopRecording flushes and closes the running recording. Calling it when
// nothing is recording does nothing.
func (e *Engine) StopRecording() error {
	if e.capture == nil {
		return nil
	}
	return e.capture.Stop()
}

// Recording reports whether a live capture is running.
func (e *Engine) Recording() bool {
	return e.capture != nil && e.capture.Recording()
}

func (e *Engine) tickCapture() {
	c := e.capture
	if c == nil || !c.Recording() {
		return
	}
	_ = c.Tick(func(s *surface.Canvas) { e.frame.Replay(s) })
}

type offlineRun struct {
	cancel   context.CancelFunc
	result   chan error
	done     atomic.Int64
	reported int64
	total    int
	progress func(done, total int)
	finished bool
	err      error
}

// StartOfflineExport renders the loop animation frame by frame into enc in
// the background. A nil enc is opened with the engine's encoder factory.
// progress, when set, is called from Tick as frames complete.
func (e *Engine) StartOfflineExport(ctx context.Context, enc record.Encoder, progress func(done, total int)) error {
	if !e.cfg.LoopingMode {
		return ErrNotLooping
	}
	if e.offline != nil && !e.offline.finished {
		return ErrExportRunning
	}
	cfg, params := e.cfg, e.params
	if enc == nil {
		var err error
		if enc, err = e.newEncoder(params.Width, params.Height, cfg.FrameRate); err != nil {
			e.setStatus("export unavailable: " + err.Error())
			return fmt.Errorf("engine: start offline export: %w", err)
		}
	}

	x := &record.OfflineExporter{
		Width:    params.Width,
		Height:   params.Height,
		FPS:      cfg.FrameRate,
		Samples:  cfg.OfflineTemporalSamples,
		Duration: cfg.TotalLoopDuration(),
		Render:   e.offlineRenderer(cfg, params),
		Encoder:  enc,
		Log:      e.log,
		Now:      e.now,
	}
	ctx, cancel := context.WithCancel(ctx)
	run := &offlineRun{
		cancel:   cancel,
		result:   make(chan error, 1),
		total:    x.Frames(),
		progress: progress,
	}
	x.Progress = func(done, _ int) { run.done.Store(int64(done)) }
	e.offline = run
	e.setStatus(fmt.Sprintf("exporting %d frames", run.total))

	go func() {
		defer cancel()
		run.result <- x.Run(ctx)
	}()
	return nil
}

// CancelOfflineExport stops a running offline export. The result arrives on
// a later tick.
func (e *Engine) CancelOfflineExport() {
	if e.offline != nil && !e.offline.finished {
		e.offline.cancel()
	}
}

// Exporting reports whether an offline export is running.
func (e *Engine) Exporting() bool { return e.offline != nil && !e.offline.finished }

func (e *Engine) tickOffline() {
	o := e.offline
	if o == nil || o.finished {
		return
	}
	o.report()
	select {
	case err := <-o.result:
		o.report()
		o.finished = true
		o.err = err
		switch {
		case errors.Is(err, context.Canceled):
			e.setStatus("export cancelled")
		case err != nil:
			e.log.Warn("offline export failed", "err", err)
			e.setStatus("export failed: " + err.Error())
		default:
			e.setStatus(fmt.Sprintf("export finished (%d frames)", o.total))
		}
	default:
	}
}

func (o *offlineRun) report() {
	d := o.done.Load()
	if d == o.reported {
		return
	}
	o.reported = d
	if o.progress != nil {
		o.progress(int(d), o.total)
	}
}

// offlineScene renders the loop at synthetic times with its own loop
// managers, so the export never touches the live state. Colours and the mask
// are fixed at the moment the export starts; a thinking mask keeps turning
// from the angle it had then.
type offlineScene struct {
	cfg    config.Config
	params field.Params
	pulse  *anim.LoopPulse
	ripple *anim.LoopRipple
	layers field.Layers

	fill        color.RGBA
	bg          color.RGBA
	transparent bool
	mask        *field.MaskLayer
	// thinking time already elapsed when the export started
	thinkingPhase time.Duration

	dots []field.Dot
}

func (e *Engine) newOfflineScene(cfg config.Config, params field.Params) *offlineScene {
	pulse, ripple := newLoopManagers(cfg, params)
	pulse.Reset(0)
	ripple.Reset(0)
	sc := &offlineScene{
		cfg:         cfg,
		params:      params,
		pulse:       pulse,
		ripple:      ripple,
		layers:      field.Layers{Pulse: pulse, LoopRipple: ripple},
		fill:        e.dot.Resting(),
		bg:          e.background,
		transparent: e.transparent,
	}
	if m := e.maskLayer(e.clock); m != nil {
		cp := *m
		sc.mask = &cp
		sc.thinkingPhase = e.clock - e.thinkingOrigin()
	}
	return sc
}

func (sc *offlineScene) frame(t time.Duration) field.Frame {
	switch sc.cfg.LoopAnimationType {
	case config.LoopPulse:
		sc.pulse.Update(t)
	case config.LoopRipple:
		sc.ripple.Update(t)
	}
	sc.dots = field.Render(sc.params, sc.layers, t, sc.dots[:0])
	f := field.Frame{
		Width: sc.params.Width, Height: sc.params.Height,
		Background: sc.bg, Transparent: sc.transparent,
		Fill: sc.fill, Dots: sc.dots,
	}
	if sc.mask != nil {
		m := *sc.mask
		if sc.cfg.IsThinking {
			m.Angle = field.ThinkingAngle(sc.thinkingPhase + t)
		}
		f.Mask = &m
	}
	return f
}

func (e *Engine) offlineRenderer(cfg config.Config, params field.Params) record.RenderFunc {
	sc := e.newOfflineScene(cfg, params)
	return func(t time.Duration, c *surface.Canvas) {
		f := sc.frame(t)
		f.Replay(c)
	}
}

type svgRun struct {
	job      *vectorize.Job
	progress vectorize.Progress
	onDone   func(doc string)
}

func (e *Engine) svgOptions() vectorize.Options {
	return vectorize.Options{
		Width:       float64(e.params.Width),
		Height:      float64(e.params.Height),
		Background:  e.background,
		Transparent: e.transparent,
		Fill:        e.frame.Fill,
		Log:         e.log,
	}
}

func circles(dots []field.Dot) []vectorize.Circle {
	out := make([]vectorize.Circle, len(dots))
	for i, d := range dots {
		out[i] = vectorize.Circle{X: d.X, Y: d.Y, R: d.R}
	}
	return out
}

// ExportSVG starts optimising the current frame into an SVG document. The
// work is spread over the following ticks; onDone receives the document and
// progress every step.
func (e *Engine) ExportSVG(onDone func(doc string), progress func(vectorize.Progress)) error {
	if e.svg != nil {
		return ErrExportRunning
	}
	run := &svgRun{onDone: onDone}
	opts := e.svgOptions()
	opts.Progress = func(p vectorize.Progress) {
		run.progress = p
		if progress != nil {
			progress(p)
		}
	}
	run.job = vectorize.NewJob(circles(e.frame.Dots), opts)
	e.svg = run
	e.setStatus(fmt.Sprintf("optimising %d dots", len(e.frame.Dots)))
	return nil
}

// ExportSVGNow optimises the current frame synchronously.
func (e *Engine) ExportSVGNow() string {
	return vectorize.Optimize(circles(e.frame.Dots), e.svgOptions())
}

func (e *Engine) tickSVG() {
	run := e.svg
	if run == nil {
		return
	}
	if run.job.StepFor(e.svgBudget) {
		return
	}
	e.svg = nil
	msg := "svg export finished"
	if run.progress.Fallback {
		msg = "svg export finished without merging"
	}
	e.setStatus(msg)
	if run.onDone != nil {
		run.onDone(run.job.Result())
	}
}

