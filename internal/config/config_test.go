package config

import (
	"testing"
	"time"
)

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
gridDensity = 20
falloffType = "exponential"
loopingMode = true
loopDuration = 1.5
loopCycles = 3
loopAnimationType = "pulse"
dotColor = "#ff0000"
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.GridDensity != 20 {
		t.Errorf("GridDensity = %d, want 20", cfg.GridDensity)
	}
	if cfg.FalloffType != "exponential" {
		t.Errorf("FalloffType = %q", cfg.FalloffType)
	}
	if cfg.LoopPeriod() != 1500*time.Millisecond {
		t.Errorf("LoopPeriod = %v", cfg.LoopPeriod())
	}
	if cfg.TotalLoopDuration() != 4500*time.Millisecond {
		t.Errorf("TotalLoopDuration = %v", cfg.TotalLoopDuration())
	}
	// untouched keys keep their defaults
	if cfg.MaxDotSize != 85 {
		t.Errorf("MaxDotSize = %v, want default 85", cfg.MaxDotSize)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	if _, err := Parse([]byte(`notAField = 1`)); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestParseRejectsUnknownFalloff(t *testing.T) {
	if _, err := Parse([]byte(`falloffType = "cubic"`)); err == nil {
		t.Fatal("expected error for unknown falloff type")
	}
}

func TestParseAcceptsCurveNames(t *testing.T) {
	for _, name := range []string{"linear", "exponential", "inverse-square", "inverseSquare"} {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(`falloffType = "` + name + `"`)); err != nil {
				t.Errorf("falloffType %q rejected: %v", name, err)
			}
		})
	}
}

func TestTotalLoopDurationForRipple(t *testing.T) {
	cfg := Default()
	cfg.LoopAnimationType = LoopRipple
	cfg.LoopDuration = 1
	cfg.LoopCycles = 2
	cfg.RippleCyclePause = 0.5
	if got := cfg.TotalLoopDuration(); got != 3200*time.Millisecond {
		t.Errorf("with pause: %v, want 3.2s", got)
	}
	cfg.RippleCyclePause = 0
	if got := cfg.TotalLoopDuration(); got != 2*time.Second {
		t.Errorf("without pause: %v, want 2s", got)
	}
}

func TestNormalizeClamps(t *testing.T) {
	cfg := Default()
	cfg.GridDensity = 0
	cfg.MinDotSize = 10
	cfg.MaxDotSize = 5
	cfg.CenterX = 140
	cfg.OfflineTemporalSamples = 9
	cfg.LoopCycles = 0
	cfg.AudioAnimationMode = "bogus"
	cfg.Normalize()

	if cfg.GridDensity != 1 {
		t.Errorf("GridDensity = %d", cfg.GridDensity)
	}
	if cfg.MaxDotSize != 10 {
		t.Errorf("MaxDotSize = %v, want 10", cfg.MaxDotSize)
	}
	if cfg.CenterX != 100 {
		t.Errorf("CenterX = %v", cfg.CenterX)
	}
	if cfg.OfflineTemporalSamples != 4 {
		t.Errorf("OfflineTemporalSamples = %d", cfg.OfflineTemporalSamples)
	}
	if cfg.LoopCycles != -1 {
		t.Errorf("LoopCycles = %d", cfg.LoopCycles)
	}
	if cfg.AudioAnimationMode != ModeCombined {
		t.Errorf("AudioAnimationMode = %q", cfg.AudioAnimationMode)
	}
}

func TestCaptureFpsCap(t *testing.T) {
	cfg := Default()
	cfg.Width, cfg.Height = 3840, 2160
	cfg.FrameRate = 60
	if got := cfg.CaptureFps(); got != LargeCanvasFps {
		t.Errorf("CaptureFps = %d, want %d", got, LargeCanvasFps)
	}
	cfg.AutoCapFps = false
	if got := cfg.CaptureFps(); got != 60 {
		t.Errorf("CaptureFps = %d, want 60", got)
	}
}

func TestCenter(t *testing.T) {
	cfg := Default()
	cfg.Width, cfg.Height = 600, 400
	cfg.CenterX, cfg.CenterY = 25, 50
	x, y := cfg.Center()
	if x != 150 || y != 200 {
		t.Errorf("Center = (%v, %v), want (150, 200)", x, y)
	}
}
