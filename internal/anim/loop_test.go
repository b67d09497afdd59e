package anim

import (
	"math"
	"testing"
	"time"
)

func TestLoopPulseCompletion(t *testing.T) {
	p := NewLoopPulse(time.Second, 2)
	p.Reset(0)

	p.Update(1900 * time.Millisecond)
	if p.IsAnimationComplete() {
		t.Fatal("complete at 1.9s")
	}
	p.Update(2 * time.Second)
	if !p.IsAnimationComplete() {
		t.Fatal("not complete at 2.0s")
	}
	p.Update(2500 * time.Millisecond)
	if !p.IsAnimationComplete() {
		t.Fatal("completion must be terminal")
	}
}

func TestLoopPulseInfinite(t *testing.T) {
	p := NewLoopPulse(time.Second, -1)
	p.Reset(0)
	p.Update(time.Hour)
	if p.IsAnimationComplete() {
		t.Fatal("infinite pulse completed")
	}
	if p.Cycle() != 3600 {
		t.Errorf("Cycle = %d, want 3600", p.Cycle())
	}
}

func TestLoopPulseFront(t *testing.T) {
	p := NewLoopPulse(time.Second, -1)
	p.SetGeometry(200, 10, 0.5)
	p.Reset(0)

	p.Update(0)
	if p.Front() != 0 {
		t.Errorf("front at start = %v", p.Front())
	}
	p.Update(500 * time.Millisecond)
	if math.Abs(p.Front()-200) > 1e-9 {
		t.Errorf("front at half cycle = %v, want reach", p.Front())
	}
	p.Update(999 * time.Millisecond)
	if p.Front() > 1 {
		t.Errorf("front near cycle end = %v, want ~0", p.Front())
	}
}

func TestLoopPulseBoostProfile(t *testing.T) {
	p := NewLoopPulse(time.Second, -1)
	p.SetGeometry(200, 10, 0.5)
	p.Reset(0)
	p.Update(500 * time.Millisecond) // front = 200

	tests := []struct {
		d, want float64
	}{
		{0, 0.5},
		{190, 0.5},
		{200, 0.25},
		{205, 0.125},
		{210, 0},
		{400, 0},
	}
	for _, tt := range tests {
		if got := p.Boost(tt.d); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Boost(%v) = %v, want %v", tt.d, got, tt.want)
		}
	}

	p.Complete()
	if p.Boost(0) != 0 {
		t.Error("completed pulse still boosts")
	}
	p.Reset(time.Second)
	if p.IsAnimationComplete() {
		t.Error("Reset did not clear completion")
	}
}

func TestLoopRippleReachesClipAtDuration(t *testing.T) {
	r := NewLoopRipple(2*time.Second, 0, -1)
	r.SetGeometry(250, 40, 2, 1, 0.8)
	r.Reset(0)

	step := time.Second / 60
	now := time.Duration(0)
	r.Update(now)
	if r.Current() == nil || r.Current().Radius != 0 {
		t.Fatal("ripple not spawned at cycle start")
	}
	for now < 2*time.Second-step/2 {
		now += step
		r.Update(now)
	}
	got := r.Current().Radius
	want := 250 * now.Seconds() / 2
	if math.Abs(got-want) > 1e-6 || math.Abs(got-250) > 250*step.Seconds()/2 {
		t.Errorf("radius at %v = %v, want ~250", now, got)
	}
}

func TestLoopRippleUsesMeasuredDelta(t *testing.T) {
	r := NewLoopRipple(time.Second, 0, -1)
	r.SetGeometry(100, 10, 1, 1, 1)
	r.Reset(0)
	r.Update(0)
	// irregular tick spacing must not change where the ripple is
	for _, at := range []time.Duration{7, 40, 41, 90, 300, 301, 650} {
		r.Update(at * time.Millisecond)
	}
	if got := r.Current().Radius; math.Abs(got-65) > 1e-9 {
		t.Errorf("radius = %v, want 65", got)
	}
}

func TestLoopRippleOnePerCycleWithPause(t *testing.T) {
	r := NewLoopRipple(time.Second, 500*time.Millisecond, 2)
	r.SetGeometry(100, 10, 1, 1, 1)
	r.Reset(0)

	var born []time.Duration
	seen := map[string]bool{}
	step := 10 * time.Millisecond
	for now := time.Duration(0); now < 4*time.Second; now += step {
		r.Update(now)
		c := r.Current()
		if c != nil && !seen[c.ID.String()] {
			seen[c.ID.String()] = true
			born = append(born, c.Born)
		}
		// the first ripple lives until 1.1s, then the 0.5s pause runs
		if now > 1120*time.Millisecond && now < 1600*time.Millisecond && c != nil {
			t.Fatalf("ripple alive during pause at %v", now)
		}
	}
	if len(born) != 2 {
		t.Fatalf("spawned %d ripples, want 2", len(born))
	}
	if born[1] != 1600*time.Millisecond {
		t.Errorf("second ripple born at %v, want 1.6s", born[1])
	}
	if !r.IsAnimationComplete() {
		t.Error("not complete after two cycles")
	}
}

func TestLoopRipplePeriod(t *testing.T) {
	tests := []struct {
		duration, pause, want time.Duration
	}{
		{time.Second, 0, time.Second},
		{time.Second, 500 * time.Millisecond, 1600 * time.Millisecond},
		{2 * time.Second, time.Second, 3200 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := LoopRipplePeriod(tt.duration, tt.pause); got != tt.want {
			t.Errorf("LoopRipplePeriod(%v, %v) = %v, want %v", tt.duration, tt.pause, got, tt.want)
		}
	}
}

func TestLoopRippleLateFirstTickStillSpawns(t *testing.T) {
	r := NewLoopRipple(time.Second, 0, -1)
	r.SetGeometry(100, 10, 1, 1, 1)
	r.Reset(0)
	r.Update(200 * time.Millisecond)
	if r.Current() == nil {
		t.Fatal("slow first tick skipped the cycle")
	}
	if got := r.Current().Radius; math.Abs(got-20) > 1e-9 {
		t.Errorf("radius = %v, want 20", got)
	}
}

func TestLoopRippleSizeModulation(t *testing.T) {
	r := NewLoopRipple(time.Second, 0, -1)
	r.SetGeometry(200, 20, 2, 1, 0.8)
	r.Reset(0)
	r.Update(0)
	r.Update(500 * time.Millisecond) // radius 100

	if got := r.SizeModulation(100); math.Abs(got-1.8) > 1e-9 {
		t.Errorf("peak = %v, want 1.8", got)
	}
	if got := r.SizeModulation(120); got >= 1.8 || got <= 1 {
		t.Errorf("ring flank = %v, want in (1, 1.8)", got)
	}

	r.Update(950 * time.Millisecond) // radius 190, travel 0.95
	peak := r.SizeModulation(190)
	if want := 1 + 0.8*(0.05/edgeFade); math.Abs(peak-want) > 1e-9 {
		t.Errorf("faded peak = %v, want %v", peak, want)
	}

	r.SetGeometry(200, 20, 2, 1, 10)
	r.Update(0)
	for d := 0.0; d < 300; d += 5 {
		if m := r.SizeModulation(d); m < minLoopRippleSize || m > maxLoopRippleSize {
			t.Fatalf("modulation %v outside clamp", m)
		}
	}
}

func TestEaseInOutSymmetric(t *testing.T) {
	for p := 0.0; p <= 1; p += 0.05 {
		if d := EaseInOut(p) + EaseInOut(1-p) - 1; math.Abs(d) > 1e-9 {
			t.Fatalf("ease not symmetric at %v", p)
		}
	}
	if EaseInOut(0) != 0 || EaseInOut(1) != 1 || EaseInOut(0.5) != 0.5 {
		t.Fatal("ease endpoints wrong")
	}
}
