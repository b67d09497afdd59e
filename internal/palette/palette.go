// Package palette parses field colours and interpolates between them.
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrTransparent is returned by Parse for the "transparent" keyword.
var ErrTransparent = errors.New("palette: transparent has no RGB value")

// Parse reads "#RRGGBB" or "#RGB". The keyword "transparent" yields
// ErrTransparent so callers can skip the fill.
func Parse(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "transparent") {
		return color.RGBA{}, ErrTransparent
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return color.RGBA{}, fmt.Errorf("palette: parse %q: %w", s, err)
	}
	return toRGBA(c), nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) color.RGBA {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex formats c as "#rrggbb".
func Hex(c color.RGBA) string {
	return fromRGBA(c).Hex()
}

// Lerp mixes a and b linearly per RGB channel, p in [0, 1].
func Lerp(a, b color.RGBA, p float64) color.RGBA {
	if p <= 0 {
		return a
	}
	if p >= 1 {
		return b
	}
	return toRGBA(fromRGBA(a).BlendRgb(fromRGBA(b), p))
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

func fromRGBA(c color.RGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Transition is a one-shot interpolation from From to To.
type Transition struct {
	From     color.RGBA
	To       color.RGBA
	Start    time.Duration
	Duration time.Duration
}

// Progress is the clamped fraction of the transition elapsed at now.
func (t Transition) Progress(now time.Duration) float64 {
	if t.Duration <= 0 {
		return 1
	}
	p := float64(now-t.Start) / float64(t.Duration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Sample returns the colour at now and whether the transition has finished.
func (t Transition) Sample(now time.Duration) (color.RGBA, bool) {
	p := t.Progress(now)
	return Lerp(t.From, t.To, p), p >= 1
}

// Animator holds a resting colour and at most one running transition.
type Animator struct {
	resting color.RGBA
	active  *Transition
}

// NewAnimator returns an animator resting at c.
func NewAnimator(c color.RGBA) *Animator {
	return &Animator{resting: c}
}

// Start begins a transition from the colour currently shown at now.
// A zero duration switches immediately.
func (a *Animator) Start(to color.RGBA, now, d time.Duration) {
	from := a.Color(now)
	if d <= 0 {
		a.resting = to
		a.active = nil
		return
	}
	a.active = &Transition{From: from, To: to, Start: now, Duration: d}
}

// Update resolves a finished transition into the resting colour.
func (a *Animator) Update(now time.Duration) {
	if a.active == nil {
		return
	}
	if _, done := a.active.Sample(now); done {
		a.resting = a.active.To
		a.active = nil
	}
}

// Color is the colour shown at now.
func (a *Animator) Color(now time.Duration) color.RGBA {
	if a.active == nil {
		return a.resting
	}
	c, _ := a.active.Sample(now)
	return c
}

// Active reports whether a transition is running.
func (a *Animator) Active() bool { return a.active != nil }

// Resting is the colour the animator settles on.
func (a *Animator) Resting() color.RGBA {
	if a.active != nil {
		return a.active.To
	}
	return a.resting
}
