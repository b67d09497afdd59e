package field

import (
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/frog-london/Tara-Voice/internal/anim"
	"github.com/frog-london/Tara-Voice/internal/config"
)

func scenarioParams(t *testing.T) Params {
	t.Helper()
	cfg := config.Default()
	cfg.Width, cfg.Height = 600, 600
	cfg.GridDensity = 36
	cfg.CenterX, cfg.CenterY = 50, 50
	cfg.CircularRadius = 250
	cfg.FalloffType = "linear"
	cfg.MinDotSize, cfg.MaxDotSize = 1, 85
	p, err := ParamsFrom(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestGridCentredLattice(t *testing.T) {
	g := NewGrid(600, 600, 36)
	if g.Spacing != 16 {
		t.Fatalf("spacing = %v, want 16", g.Spacing)
	}
	found := false
	for i := 0; i < g.Len(); i++ {
		if x, y := g.At(i); x == 300 && y == 300 {
			found = true
		}
	}
	if !found {
		t.Fatal("no lattice point at the canvas centre")
	}

	g = NewGrid(640, 640, 40)
	if x, y := g.At(0); x != 8 || y != 8 {
		t.Errorf("first point = (%v, %v), want half a spacing in", x, y)
	}
}

func TestRenderScenario(t *testing.T) {
	p := scenarioParams(t)
	dots := Render(p, Layers{}, 0, nil)
	if len(dots) == 0 {
		t.Fatal("no dots rendered")
	}

	var centre *Dot
	for i := range dots {
		d := &dots[i]
		if d.X == 300 && d.Y == 300 {
			centre = d
		}
		dist := math.Hypot(d.X-300, d.Y-300)
		if dist+d.R > 250+1e-9 {
			t.Fatalf("dot at (%v, %v) r=%v crosses the clip radius", d.X, d.Y, d.R)
		}
	}
	if centre == nil {
		t.Fatal("centre dot missing")
	}
	if centre.R*2 != 85 {
		t.Errorf("centre diameter = %v, want 85", centre.R*2)
	}

	// every rejected lattice point really crosses the boundary
	g := NewGrid(600, 600, 36)
	kept := map[[2]float64]bool{}
	for _, d := range dots {
		kept[[2]float64{d.X, d.Y}] = true
	}
	for i := 0; i < g.Len(); i++ {
		x, y := g.At(i)
		if kept[[2]float64{x, y}] {
			continue
		}
		dist := math.Hypot(x-300, y-300)
		if dist+p.Falloff.Diameter(dist, 250)/2 <= 250 {
			t.Fatalf("point (%v, %v) rejected but inside the clip", x, y)
		}
	}
}

func TestLoopPulseModifier(t *testing.T) {
	p := scenarioParams(t)
	p.Looping = true
	p.LoopType = config.LoopPulse

	pulse := anim.NewLoopPulse(time.Second, -1)
	pulse.SetGeometry(250, 10, 0.5)
	pulse.Reset(0)
	pulse.Update(500 * time.Millisecond)

	base := Render(p, Layers{}, 0, nil)
	boosted := Render(p, Layers{Pulse: pulse}, 0, nil)

	var baseCentre, boostCentre float64
	for _, d := range base {
		if d.X == 300 && d.Y == 300 {
			baseCentre = d.R
		}
	}
	for _, d := range boosted {
		if d.X == 300 && d.Y == 300 {
			boostCentre = d.R
		}
	}
	if math.Abs(boostCentre-baseCentre*1.5) > 1e-9 {
		t.Errorf("boosted centre r = %v, want %v", boostCentre, baseCentre*1.5)
	}
}

func TestAudioModesSelectLayers(t *testing.T) {
	p := scenarioParams(t)
	p.Audio = true
	p.Sensitivity = 1
	p.Influence = anim.Influence{Bass: 1, Mid: 1, Treble: 1}
	p.PulseGain = 0.5

	waves := anim.NewWaveManager(300, 300, 250)
	ripples := anim.NewRippleManager(300, 300, 250)
	l := Layers{Waves: waves, Ripples: ripples, Levels: anim.Levels{Bass: 0.6, Mid: 0.3}}

	tests := []struct {
		mode config.AnimationMode
		want int
	}{
		{config.ModePulse, 1},
		{config.ModeWave, 1},
		{config.ModeRipple, 1},
		{config.ModeCombined, 3},
	}
	for _, tt := range tests {
		p.Mode = tt.mode
		if got := len(Modifiers(p, l, 0)); got != tt.want {
			t.Errorf("%s: %d modifiers, want %d", tt.mode, got, tt.want)
		}
	}

	p.Audio = false
	if got := len(Modifiers(p, l, 0)); got != 0 {
		t.Errorf("audio disabled: %d modifiers", got)
	}
}

func TestTrebleJitterDeterministic(t *testing.T) {
	p := scenarioParams(t)
	p.Audio = true
	p.Mode = config.ModeWave
	p.TrebleJitter = 2
	l := Layers{Levels: anim.Levels{Treble: 1}}

	a := Render(p, l, 10*time.Millisecond, nil)
	b := Render(p, l, 20*time.Millisecond, nil)
	if len(a) != len(b) {
		t.Fatalf("same bucket rendered %d and %d dots", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("jitter changed within one bucket")
		}
	}
	plain := Render(scenarioParams(t), Layers{}, 0, nil)
	moved := 0
	for i := range a {
		if i < len(plain) && a[i] != plain[i] {
			moved++
		}
	}
	if moved == 0 {
		t.Error("jitter moved no dots")
	}
}

type recordingTarget struct {
	cleared bool
	dots    int
	mask    *MaskLayer
}

func (r *recordingTarget) Clear(color.RGBA, bool) { r.cleared = true }
func (r *recordingTarget) FillCircles(d []Dot, _ color.RGBA, m *MaskLayer) {
	r.dots += len(d)
	r.mask = m
}

func TestFrameReplay(t *testing.T) {
	f := Frame{Dots: []Dot{{1, 1, 1}, {5, 5, 1}}, Mask: &MaskLayer{Size: 3}}
	var rt recordingTarget
	f.Replay(&rt)
	if !rt.cleared || rt.dots != 2 || rt.mask == nil {
		t.Errorf("replay = %+v", rt)
	}
}

func TestThinkingAngle(t *testing.T) {
	tests := []struct {
		at   time.Duration
		want float64
	}{
		{0, 0},
		{450 * time.Millisecond, math.Pi / 2},
		{950 * time.Millisecond, math.Pi},
		{1950 * time.Millisecond, 0},
		{3950 * time.Millisecond, 0},
	}
	for _, tt := range tests {
		got := ThinkingAngle(tt.at)
		diff := math.Abs(got - tt.want)
		if diff > 1e-9 && math.Abs(diff-2*math.Pi) > 1e-9 {
			t.Errorf("ThinkingAngle(%v) = %v, want %v", tt.at, got, tt.want)
		}
	}
	// holds still during the pause
	if ThinkingAngle(920*time.Millisecond) != ThinkingAngle(990*time.Millisecond) {
		t.Error("angle moved during the pause")
	}
}
