package record

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frog-london/Tara-Voice/internal/logging"
	"github.com/frog-london/Tara-Voice/internal/surface"
)

// ErrNotRecording is returned by Tick after the capture stopped.
var ErrNotRecording = errors.New("record: not recording")

// DrawFunc renders the current frame onto c.
type DrawFunc func(c *surface.Canvas)

// LiveOptions configure a LiveCapture.
type LiveOptions struct {
	Width, Height int
	FPS           int
	// Expected stops the capture after that many frames; 0 records until
	// Stop.
	Expected int

	// Status receives human readable state changes.
	Status func(msg string)
	// Release is called once when the capture stops.
	Release func()

	Now func() time.Time
	Log *slog.Logger
}

// LiveCapture records frames at a fixed rate while being ticked at the
// display rate. Ticks accumulate wall time and emit one frame per elapsed
// step. When the last draw took longer than a step the previous frame is
// written again instead of drawing.
type LiveCapture struct {
	enc    Encoder
	canvas *surface.Canvas
	opts   LiveOptions
	log    *slog.Logger
	now    func() time.Time

	step     time.Duration
	acc      time.Duration
	last     time.Time
	started  time.Time
	lastDraw time.Duration

	frames     int
	duplicated int
	stopped    bool
	err        error
}

// StartLive begins a capture into enc.
func StartLive(enc Encoder, opts LiveOptions) (*LiveCapture, error) {
	if enc == nil {
		return nil, errors.New("record: nil encoder")
	}
	if opts.FPS <= 0 {
		return nil, fmt.Errorf("record: invalid frame rate %d", opts.FPS)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c := &LiveCapture{
		enc:    enc,
		canvas: surface.NewCanvas(opts.Width, opts.Height),
		opts:   opts,
		log:    logging.OrNop(opts.Log),
		now:    opts.Now,
		step:   time.Second / time.Duration(opts.FPS),
	}
	c.started = c.now()
	c.last = c.started
	// the first frame is due immediately
	c.acc = c.step
	c.log.Info("recording started", "fps", opts.FPS, "expected", opts.Expected,
		"w", opts.Width, "h", opts.Height)
	c.status(fmt.Sprintf("recording at %d fps", opts.FPS))
	return c, nil
}

// Tick advances the accumulator and writes every frame that came due. draw
// is called at most once per tick.
func (c *LiveCapture) Tick(draw DrawFunc) error {
	if c.stopped {
		return ErrNotRecording
	}
	now := c.now()
	c.acc += now.Sub(c.last)
	c.last = now

	drawn := false
	for c.acc >= c.step {
		c.acc -= c.step
		switch {
		case drawn:
		case c.frames > 0 && c.lastDraw > c.step:
			c.duplicated++
			c.lastDraw = 0
			c.log.Debug("frame duplicated", "frame", c.frames)
		default:
			t0 := c.now()
			draw(c.canvas)
			c.lastDraw = c.now().Sub(t0)
			drawn = true
		}
		ts := time.Duration(c.frames) * c.step
		if err := c.enc.WriteFrame(c.canvas.Image(), ts); err != nil {
			c.err = err
			c.log.Warn("recording failed", "err", err)
			c.status("recording failed: " + err.Error())
			c.Stop()
			return err
		}
		c.frames++
		if c.opts.Expected > 0 && c.frames >= c.opts.Expected {
			return c.Stop()
		}
	}
	return nil
}

// Stop flushes the encoder and releases the capture. It is safe to call more
// than once.
func (c *LiveCapture) Stop() error {
	if c.stopped {
		return nil
	}
	c.stopped = true
	err := c.enc.Close()
	if c.opts.Release != nil {
		c.opts.Release()
	}
	if err != nil {
		c.log.Warn("closing encoder", "err", err)
		c.status("recording stopped with error: " + err.Error())
		return err
	}
	c.log.Info("recording stopped", "frames", c.frames, "duplicated", c.duplicated,
		"elapsed", c.now().Sub(c.started))
	c.status(fmt.Sprintf("recording saved (%d frames)", c.frames))
	return nil
}

// Recording reports whether the capture is still running.
func (c *LiveCapture) Recording() bool { return !c.stopped }

// Frames written so far.
func (c *LiveCapture) Frames() int { return c.frames }

// Duplicated is the number of frames that reused the previous image.
func (c *LiveCapture) Duplicated() int { return c.duplicated }

// Expected is the frame count the capture stops at, 0 if open ended.
func (c *LiveCapture) Expected() int { return c.opts.Expected }

// Err is the write error that ended the capture, if any.
func (c *LiveCapture) Err() error { return c.err }

func (c *LiveCapture) status(msg string) {
	if c.opts.Status != nil {
		c.opts.Status(msg)
	}
}

// ExpectedFrames is fps × total for a bounded animation, 0 when total is
// not positive.
func ExpectedFrames(fps int, total time.Duration) int {
	if total <= 0 {
		return 0
	}
	return int(float64(fps)*total.Seconds() + 0.5)
}
