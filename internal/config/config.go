// Package config holds the configuration contract consumed by the engine
// every tick, plus the fixed constants of the live window.
package config

import (
	"fmt"
	"math"
	"time"

	"github.com/frog-london/Tara-Voice/internal/anim"
	"github.com/frog-london/Tara-Voice/internal/falloff"
)

const (
	WindowWidth  = 600
	WindowHeight = 600

	VisualRingSize = 8192
	LevelWindow    = 2048

	// LargeCanvasPixels is the area above which capture fps is capped when
	// AutoCapFps is set.
	LargeCanvasPixels = 1920 * 1080
	LargeCanvasFps    = 30
)

// AnimationMode selects the audio-reactive layers applied outside loop mode.
type AnimationMode string

const (
	ModePulse    AnimationMode = "pulse"
	ModeRipple   AnimationMode = "ripple"
	ModeWave     AnimationMode = "wave"
	ModeCombined AnimationMode = "combined"
)

// LoopAnimation selects the deterministic loop manager.
type LoopAnimation string

const (
	LoopPulse  LoopAnimation = "pulse"
	LoopRipple LoopAnimation = "ripple"
)

// Transparent is the background colour value that disables the background fill.
const Transparent = "transparent"

// Config is the full parameter set of the halftone field.
type Config struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`

	GridDensity      int     `toml:"gridDensity"`
	MinDotSize       float64 `toml:"minDotSize"`
	MaxDotSize       float64 `toml:"maxDotSize"`
	FalloffType      string  `toml:"falloffType"`
	FalloffIntensity float64 `toml:"falloffIntensity"`

	// CenterX and CenterY are percentages of the canvas size.
	CenterX        float64 `toml:"centerX"`
	CenterY        float64 `toml:"centerY"`
	CircularRadius float64 `toml:"circularRadius"`

	AudioEnabled       bool          `toml:"audioEnabled"`
	AudioSensitivity   float64       `toml:"audioSensitivity"`
	BassInfluence      float64       `toml:"bassInfluence"`
	MidInfluence       float64       `toml:"midInfluence"`
	TrebleInfluence    float64       `toml:"trebleInfluence"`
	AudioAnimationMode AnimationMode `toml:"audioAnimationMode"`
	PulseGain          float64       `toml:"pulseGain"`
	TrebleJitter       float64       `toml:"trebleJitter"`

	LoopingMode       bool          `toml:"loopingMode"`
	LoopDuration      float64       `toml:"loopDuration"` // seconds
	LoopCycles        int           `toml:"loopCycles"`   // -1 = infinite
	LoopAnimationType LoopAnimation `toml:"loopAnimationType"`

	// Pulse geometry is expressed in percent of the clip radius.
	PulseMaxRadius    float64 `toml:"pulseMaxRadius"`
	PulseFalloffWidth float64 `toml:"pulseFalloffWidth"`
	PulseIntensity    float64 `toml:"pulseIntensity"`

	RippleRingWidth        float64 `toml:"rippleRingWidth"`
	RippleIntensity        float64 `toml:"rippleIntensity"`
	RippleFalloffSharpness float64 `toml:"rippleFalloffSharpness"`
	RippleCyclePause       float64 `toml:"rippleCyclePause"` // seconds
	RippleBoostAmount      float64 `toml:"rippleBoostAmount"`

	DotColor           string  `toml:"dotColor"`
	BackgroundColor    string  `toml:"backgroundColor"`
	TargetColor        string  `toml:"targetColor"`
	TransitionDuration float64 `toml:"transitionDuration"` // milliseconds

	MaskEnabled           bool    `toml:"maskEnabled"`
	MaskSvgPath           string  `toml:"maskSvgPath"`
	MaskSize              float64 `toml:"maskSize"` // percent of the shorter canvas side
	IsThinking            bool    `toml:"isThinking"`
	MaskRotationStartTime float64 `toml:"maskRotationStartTime"` // seconds on the engine clock

	FrameRate              int  `toml:"frameRate"`
	OfflineTemporalSamples int  `toml:"offlineTemporalSamples"`
	AutoCapFps             bool `toml:"autoCapFps"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Width:  WindowWidth,
		Height: WindowHeight,

		GridDensity:      36,
		MinDotSize:       1,
		MaxDotSize:       85,
		FalloffType:      "linear",
		FalloffIntensity: 1,

		CenterX:        50,
		CenterY:        50,
		CircularRadius: 250,

		AudioEnabled:       false,
		AudioSensitivity:   1,
		BassInfluence:      1,
		MidInfluence:       1,
		TrebleInfluence:    1,
		AudioAnimationMode: ModeCombined,
		PulseGain:          0.5,
		TrebleJitter:       0,

		LoopingMode:       false,
		LoopDuration:      2,
		LoopCycles:        -1,
		LoopAnimationType: LoopRipple,

		PulseMaxRadius:    100,
		PulseFalloffWidth: 20,
		PulseIntensity:    0.6,

		RippleRingWidth:        40,
		RippleIntensity:        1,
		RippleFalloffSharpness: 2,
		RippleCyclePause:       0.5,
		RippleBoostAmount:      0.8,

		DotColor:           "#000000",
		BackgroundColor:    "#ffffff",
		TransitionDuration: 500,

		MaskSize: 40,

		FrameRate:              60,
		OfflineTemporalSamples: 2,
		AutoCapFps:             true,
	}
}

// Normalize clamps every field into its valid range and fills unset enums.
func (c *Config) Normalize() {
	if c.Width <= 0 {
		c.Width = WindowWidth
	}
	if c.Height <= 0 {
		c.Height = WindowHeight
	}
	if c.GridDensity < 1 {
		c.GridDensity = 1
	}
	if c.MinDotSize < 0 {
		c.MinDotSize = 0
	}
	if c.MaxDotSize < c.MinDotSize {
		c.MaxDotSize = c.MinDotSize
	}
	if c.FalloffIntensity <= 0 {
		c.FalloffIntensity = 1
	}
	c.CenterX = clamp(c.CenterX, 0, 100)
	c.CenterY = clamp(c.CenterY, 0, 100)
	if c.CircularRadius < 0 {
		c.CircularRadius = 0
	}
	if c.AudioSensitivity < 0 {
		c.AudioSensitivity = 0
	}
	switch c.AudioAnimationMode {
	case ModePulse, ModeRipple, ModeWave, ModeCombined:
	default:
		c.AudioAnimationMode = ModeCombined
	}
	if c.LoopDuration <= 0 {
		c.LoopDuration = 1
	}
	if c.LoopCycles == 0 || c.LoopCycles < -1 {
		c.LoopCycles = -1
	}
	switch c.LoopAnimationType {
	case LoopPulse, LoopRipple:
	default:
		c.LoopAnimationType = LoopRipple
	}
	c.PulseMaxRadius = clamp(c.PulseMaxRadius, 0, 100)
	c.PulseFalloffWidth = clamp(c.PulseFalloffWidth, 0, 100)
	if c.RippleRingWidth <= 0 {
		c.RippleRingWidth = 1
	}
	if c.RippleFalloffSharpness <= 0 {
		c.RippleFalloffSharpness = 1
	}
	if c.RippleCyclePause < 0 {
		c.RippleCyclePause = 0
	}
	if c.DotColor == "" {
		c.DotColor = "#000000"
	}
	if c.BackgroundColor == "" {
		c.BackgroundColor = Transparent
	}
	if c.TransitionDuration < 0 {
		c.TransitionDuration = 0
	}
	c.MaskSize = clamp(c.MaskSize, 0, 100)
	if c.FrameRate < 1 {
		c.FrameRate = 1
	}
	if c.FrameRate > 120 {
		c.FrameRate = 120
	}
	if c.OfflineTemporalSamples < 1 {
		c.OfflineTemporalSamples = 1
	}
	if c.OfflineTemporalSamples > 4 {
		c.OfflineTemporalSamples = 4
	}
}

// Validate reports configuration values that cannot be repaired by Normalize.
func (c Config) Validate() error {
	if _, err := falloff.ParseCurve(c.FalloffType); err != nil {
		return fmt.Errorf("config: unknown falloffType %q", c.FalloffType)
	}
	if math.IsNaN(c.CircularRadius) || math.IsInf(c.CircularRadius, 0) {
		return fmt.Errorf("config: circularRadius must be finite")
	}
	return nil
}

// Center returns the field centre in pixels.
func (c Config) Center() (x, y float64) {
	return c.CenterX / 100 * float64(c.Width), c.CenterY / 100 * float64(c.Height)
}

// LoopPeriod is the duration of one loop cycle.
func (c Config) LoopPeriod() time.Duration {
	return seconds(c.LoopDuration)
}

// CyclePause is the gap between a loop ripple expiring and the next spawn.
func (c Config) CyclePause() time.Duration {
	return seconds(c.RippleCyclePause)
}

// TotalLoopDuration is the length of a finite loop run, or one cycle when
// the loop is infinite.
func (c Config) TotalLoopDuration() time.Duration {
	cycles := c.LoopCycles
	if cycles < 1 {
		cycles = 1
	}
	cycle := c.LoopPeriod()
	if c.LoopAnimationType == LoopRipple {
		cycle = anim.LoopRipplePeriod(cycle, c.CyclePause())
	}
	return time.Duration(cycles) * cycle
}

// Transition returns the colour transition duration.
func (c Config) Transition() time.Duration {
	return time.Duration(c.TransitionDuration * float64(time.Millisecond))
}

// CaptureFps returns the live capture rate after the large canvas cap.
func (c Config) CaptureFps() int {
	if c.AutoCapFps && c.Width*c.Height > LargeCanvasPixels && c.FrameRate > LargeCanvasFps {
		return LargeCanvasFps
	}
	return c.FrameRate
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
