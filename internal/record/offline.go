package record

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"time"

	"golang.org/x/image/draw"

	"github.com/frog-london/Tara-Voice/internal/logging"
	"github.com/frog-london/Tara-Voice/internal/surface"
)

// RenderFunc draws the field at animation time t onto c. Calls arrive with
// non-decreasing t.
type RenderFunc func(t time.Duration, c *surface.Canvas)

// OfflineExporter renders frames from synthetic timestamps instead of the
// wall clock, averaging Samples sub-frames per output frame. Frames are
// handed to the encoder no faster than real time.
type OfflineExporter struct {
	Width, Height int
	FPS           int
	// Samples per frame, 1 to 4.
	Samples  int
	Duration time.Duration
	Render   RenderFunc
	Encoder  Encoder

	// Progress is called after each frame.
	Progress func(done, total int)
	Log      *slog.Logger

	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// Frames is the number of output frames the export produces.
func (x *OfflineExporter) Frames() int {
	return ExpectedFrames(x.FPS, x.Duration)
}

// SampleTime is the synthetic time of sub-sample s of frame i.
func SampleTime(i, s, samples, fps int) time.Duration {
	sec := (float64(i) + (float64(s)+0.5)/float64(samples)) / float64(fps)
	return time.Duration(math.Round(sec * float64(time.Second)))
}

// FrameTimestamp is frame i's presentation time rounded to the microsecond.
func FrameTimestamp(i, fps int) time.Duration {
	us := math.Round(float64(i) / float64(fps) * 1e6)
	return time.Duration(us) * time.Microsecond
}

// Run renders every frame and closes the encoder.
func (x *OfflineExporter) Run(ctx context.Context) (err error) {
	if x.Render == nil || x.Encoder == nil {
		return errors.New("record: exporter needs a renderer and an encoder")
	}
	if x.FPS <= 0 {
		return fmt.Errorf("record: invalid frame rate %d", x.FPS)
	}
	log := logging.OrNop(x.Log)
	now, sleep := x.Now, x.Sleep
	if now == nil {
		now = time.Now
	}
	if sleep == nil {
		sleep = sleepContext
	}
	samples := max(1, min(4, x.Samples))
	defer func() {
		if cerr := x.Encoder.Close(); err == nil {
			err = cerr
		}
	}()

	total := x.Frames()
	rect := image.Rect(0, 0, x.Width, x.Height)
	acc := image.NewRGBA(rect)
	sub := surface.NewCanvas(x.Width, x.Height)
	step := time.Second / time.Duration(x.FPS)
	start := now()
	log.Info("offline export started", "frames", total, "samples", samples, "fps", x.FPS)

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			log.Info("offline export cancelled", "frame", i)
			return err
		}
		for s := 0; s < samples; s++ {
			x.Render(SampleTime(i, s, samples, x.FPS), sub)
			composite(acc, sub.Image(), s)
		}
		if err := x.Encoder.WriteFrame(acc, FrameTimestamp(i, x.FPS)); err != nil {
			return fmt.Errorf("record: offline frame %d: %w", i, err)
		}
		if x.Progress != nil {
			x.Progress(i+1, total)
		}
		deadline := start.Add(time.Duration(i+1) * step)
		if wait := deadline.Sub(now()); wait > 0 && i+1 < total {
			if err := sleep(ctx, wait); err != nil {
				return err
			}
		}
	}
	log.Info("offline export finished", "frames", total, "elapsed", now().Sub(start))
	return nil
}

// composite folds sub-sample s into the running average held in acc.
func composite(acc *image.RGBA, src *image.RGBA, s int) {
	if s == 0 {
		draw.Draw(acc, acc.Bounds(), src, image.Point{}, draw.Src)
		return
	}
	w := uint8(math.Round(255 / float64(s+1)))
	draw.DrawMask(acc, acc.Bounds(), src, image.Point{}, image.NewUniform(color.Alpha{A: w}), image.Point{}, draw.Over)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
