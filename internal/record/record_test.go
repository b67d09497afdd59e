package record

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/frog-london/Tara-Voice/internal/surface"
)

type fakeEncoder struct {
	stamps []time.Duration
	pixels []color.RGBA
	closed int
	fail   error
}

func (e *fakeEncoder) WriteFrame(img image.Image, ts time.Duration) error {
	if e.fail != nil {
		return e.fail
	}
	e.stamps = append(e.stamps, ts)
	e.pixels = append(e.pixels, img.(*image.RGBA).RGBAAt(0, 0))
	return nil
}

func (e *fakeEncoder) Close() error {
	e.closed++
	return nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestLiveCaptureFixedStep(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	enc := &fakeEncoder{}
	draws := 0
	c, err := StartLive(enc, LiveOptions{Width: 4, Height: 4, FPS: 10, Now: clock.now})
	if err != nil {
		t.Fatal(err)
	}
	draw := func(*surface.Canvas) { draws++ }

	// first tick writes the frame that is due at start
	if err := c.Tick(draw); err != nil {
		t.Fatal(err)
	}
	// 16ms display ticks: 100ms frame steps
	for i := 0; i < 25; i++ {
		clock.advance(16 * time.Millisecond)
		if err := c.Tick(draw); err != nil {
			t.Fatal(err)
		}
	}
	// 400ms elapsed: frames at 0, 100, 200, 300, 400
	if c.Frames() != 5 {
		t.Fatalf("frames = %d, want 5", c.Frames())
	}
	for i, ts := range enc.stamps {
		if ts != time.Duration(i)*100*time.Millisecond {
			t.Errorf("frame %d at %v", i, ts)
		}
	}
	if draws != 5 {
		t.Errorf("draws = %d", draws)
	}
}

func TestLiveCaptureDuplicatesSlowFrames(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	enc := &fakeEncoder{}
	c, _ := StartLive(enc, LiveOptions{Width: 2, Height: 2, FPS: 10, Now: clock.now})

	draws := 0
	slow := func(*surface.Canvas) {
		draws++
		clock.advance(150 * time.Millisecond)
	}
	c.Tick(slow) // frame 0, draw costs 150ms
	c.Tick(slow) // 150ms accumulated: frame 1 reuses frame 0
	if c.Frames() != 2 || draws != 1 || c.Duplicated() != 1 {
		t.Fatalf("frames=%d draws=%d duplicated=%d", c.Frames(), draws, c.Duplicated())
	}
	clock.advance(100 * time.Millisecond)
	c.Tick(slow) // next frame draws again
	if draws != 2 {
		t.Errorf("draws = %d, want a redraw after the duplicate", draws)
	}
}

func TestLiveCaptureAutoStopAndIdempotentStop(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	enc := &fakeEncoder{}
	released := 0
	var msgs []string
	c, _ := StartLive(enc, LiveOptions{
		Width: 2, Height: 2, FPS: 10,
		Expected: ExpectedFrames(10, 300*time.Millisecond),
		Release:  func() { released++ },
		Status:   func(m string) { msgs = append(msgs, m) },
		Now:      clock.now,
	})
	for i := 0; i < 10 && c.Recording(); i++ {
		c.Tick(func(*surface.Canvas) {})
		clock.advance(100 * time.Millisecond)
	}
	if c.Recording() {
		t.Fatal("capture did not stop at the expected frame count")
	}
	if c.Frames() != 3 {
		t.Errorf("frames = %d, want 3", c.Frames())
	}
	if err := c.Stop(); err != nil {
		t.Fatal(err)
	}
	if enc.closed != 1 || released != 1 {
		t.Errorf("closed=%d released=%d, want once each", enc.closed, released)
	}
	if !errors.Is(c.Tick(func(*surface.Canvas) {}), ErrNotRecording) {
		t.Error("tick after stop should fail")
	}
	if len(msgs) != 2 {
		t.Errorf("status messages = %q", msgs)
	}
}

func TestLiveCaptureEncoderFailureStops(t *testing.T) {
	enc := &fakeEncoder{fail: errors.New("disk full")}
	released := false
	c, _ := StartLive(enc, LiveOptions{Width: 2, Height: 2, FPS: 30, Release: func() { released = true }})
	if err := c.Tick(func(*surface.Canvas) {}); err == nil {
		t.Fatal("expected write error")
	}
	if c.Recording() || !released || c.Err() == nil {
		t.Error("failed capture not torn down")
	}
}

func TestSampleTimes(t *testing.T) {
	tests := []struct {
		i, s, samples, fps int
		want               time.Duration
	}{
		{0, 0, 1, 10, 50 * time.Millisecond},
		{0, 0, 2, 10, 25 * time.Millisecond},
		{0, 1, 2, 10, 75 * time.Millisecond},
		{3, 3, 4, 10, 387500 * time.Microsecond},
	}
	for _, tt := range tests {
		if got := SampleTime(tt.i, tt.s, tt.samples, tt.fps); got != tt.want {
			t.Errorf("SampleTime(%d, %d, %d, %d) = %v, want %v", tt.i, tt.s, tt.samples, tt.fps, got, tt.want)
		}
	}
	if got := FrameTimestamp(1, 30); got != 33333*time.Microsecond {
		t.Errorf("FrameTimestamp(1, 30) = %v", got)
	}
	if got := FrameTimestamp(2, 30); got != 66667*time.Microsecond {
		t.Errorf("FrameTimestamp(2, 30) = %v", got)
	}
}

func TestOfflineExportAveragesAndPaces(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var slept []time.Duration
	var times []time.Duration
	enc := &fakeEncoder{}
	var progress []int

	x := &OfflineExporter{
		Width: 2, Height: 2, FPS: 10, Samples: 2,
		Duration: 300 * time.Millisecond,
		Encoder:  enc,
		Render: func(ts time.Duration, c *surface.Canvas) {
			times = append(times, ts)
			// alternate black and white sub-frames
			v := uint8(0)
			if len(times)%2 == 0 {
				v = 255
			}
			c.Clear(color.RGBA{v, v, v, 255}, false)
			clock.advance(10 * time.Millisecond)
		},
		Progress: func(done, total int) { progress = append(progress, done) },
		Now:      clock.now,
		Sleep: func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			clock.advance(d)
			return nil
		},
	}
	if err := x.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(enc.stamps) != 3 || enc.closed != 1 {
		t.Fatalf("stamps=%v closed=%d", enc.stamps, enc.closed)
	}
	wantTimes := []time.Duration{25, 75, 125, 175, 225, 275}
	for i, w := range wantTimes {
		if times[i] != w*time.Millisecond {
			t.Errorf("sample %d at %v, want %vms", i, times[i], w)
		}
	}
	for _, px := range enc.pixels {
		if px.R < 126 || px.R > 129 {
			t.Errorf("averaged pixel = %v, want mid grey", px)
		}
	}
	// 20ms of rendering per 100ms frame leaves 80ms to sleep, except after
	// the last frame
	if len(slept) != 2 || slept[0] != 80*time.Millisecond {
		t.Errorf("slept = %v", slept)
	}
	if len(progress) != 3 || progress[2] != 3 {
		t.Errorf("progress = %v", progress)
	}
}

func TestOfflineExportCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	enc := &fakeEncoder{}
	x := &OfflineExporter{
		Width: 1, Height: 1, FPS: 10, Samples: 1, Duration: time.Second,
		Encoder: enc,
		Render:  func(time.Duration, *surface.Canvas) {},
		Sleep: func(context.Context, time.Duration) error {
			cancel()
			return nil
		},
	}
	err := x.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if len(enc.stamps) != 1 || enc.closed != 1 {
		t.Errorf("frames=%d closed=%d", len(enc.stamps), enc.closed)
	}
}
