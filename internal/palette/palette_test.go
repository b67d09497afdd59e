package palette

import (
	"errors"
	"image/color"
	"testing"
	"time"
)

func TestTransitionMidpoint(t *testing.T) {
	tr := Transition{
		From:     MustParse("#000000"),
		To:       MustParse("#FFFFFF"),
		Duration: 500 * time.Millisecond,
	}
	got, done := tr.Sample(250 * time.Millisecond)
	if done {
		t.Fatal("transition reported done halfway")
	}
	for _, ch := range []uint8{got.R, got.G, got.B} {
		if ch < 127 || ch > 129 {
			t.Fatalf("midpoint = %v, want rgb(128,128,128)±1", got)
		}
	}
	if _, done := tr.Sample(500 * time.Millisecond); !done {
		t.Fatal("transition not done at its duration")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#ff0000", color.RGBA{255, 0, 0, 255}},
		{"#FF8000", color.RGBA{255, 128, 0, 255}},
		{"#0f0", color.RGBA{0, 255, 0, 255}},
		{"336699", color.RGBA{0x33, 0x66, 0x99, 255}},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("Parse(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := Parse("transparent"); !errors.Is(err, ErrTransparent) {
		t.Errorf("Parse(transparent) err = %v", err)
	}
	if _, err := Parse("#zzz"); err == nil {
		t.Error("Parse(#zzz) succeeded")
	}
}

func TestAnimatorResolvesAndRestarts(t *testing.T) {
	black, white, red := MustParse("#000"), MustParse("#fff"), MustParse("#f00")
	a := NewAnimator(black)

	a.Start(white, 0, 100*time.Millisecond)
	if !a.Active() {
		t.Fatal("transition not active")
	}
	a.Update(100 * time.Millisecond)
	if a.Active() || a.Color(100*time.Millisecond) != white {
		t.Fatal("transition not resolved into resting colour")
	}

	// restarting mid-way starts from the colour on screen
	a.Start(black, 200*time.Millisecond, 100*time.Millisecond)
	mid := a.Color(250 * time.Millisecond)
	a.Start(red, 250*time.Millisecond, 100*time.Millisecond)
	if got := a.Color(250 * time.Millisecond); got != mid {
		t.Errorf("restart jumped from %v to %v", mid, got)
	}
	if a.Resting() != red {
		t.Errorf("Resting = %v, want red", a.Resting())
	}
}

func TestAnimatorInstantSwitch(t *testing.T) {
	a := NewAnimator(MustParse("#123456"))
	a.Start(MustParse("#abcdef"), time.Second, 0)
	if a.Active() {
		t.Fatal("zero duration must not leave a transition running")
	}
	if Hex(a.Color(time.Second)) != "#abcdef" {
		t.Errorf("colour = %s", Hex(a.Color(time.Second)))
	}
}
