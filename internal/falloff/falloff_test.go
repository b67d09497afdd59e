package falloff

import (
	"math"
	"testing"
)

func TestLinearEndpoints(t *testing.T) {
	m := Model{Curve: Linear, Intensity: 1, MinSize: 1, MaxSize: 85}
	if got := m.Diameter(0, 250); got != 85 {
		t.Errorf("Diameter(0) = %v, want 85", got)
	}
	if got := m.Diameter(250, 250); math.Abs(got-1) > 1e-9 {
		t.Errorf("Diameter(max) = %v, want 1", got)
	}
	if got := m.Diameter(125, 250); math.Abs(got-43) > 1e-9 {
		t.Errorf("Diameter(mid) = %v, want 43", got)
	}
	// beyond maxDistance the curve is clamped
	if got := m.Diameter(400, 250); got != 1 {
		t.Errorf("Diameter(beyond) = %v, want 1", got)
	}
}

func TestCurvesNonIncreasing(t *testing.T) {
	for _, c := range []Curve{Linear, Exponential, InverseSquare} {
		t.Run(c.String(), func(t *testing.T) {
			prev := math.Inf(1)
			for d := 0.0; d <= 300; d += 2.5 {
				got := Diameter(c, 3, 2, 40, d, 250)
				if got > prev+1e-12 {
					t.Fatalf("diameter increased at d=%v: %v > %v", d, got, prev)
				}
				if got < 2 || got > 40 {
					t.Fatalf("diameter %v outside [2, 40] at d=%v", got, d)
				}
				prev = got
			}
			if got := Diameter(c, 3, 2, 40, 0, 250); got != 40 {
				t.Errorf("Diameter(0) = %v, want max", got)
			}
		})
	}
}

func TestZeroMaxDistance(t *testing.T) {
	if got := Diameter(Linear, 1, 3, 9, 0, 0); got != 3 {
		t.Errorf("Diameter with zero maxDistance = %v, want min", got)
	}
}

func TestParseCurve(t *testing.T) {
	tests := []struct {
		in   string
		want Curve
		err  bool
	}{
		{"linear", Linear, false},
		{"exponential", Exponential, false},
		{"inverse-square", InverseSquare, false},
		{"cubic", Linear, true},
	}
	for _, tt := range tests {
		got, err := ParseCurve(tt.in)
		if (err != nil) != tt.err || got != tt.want {
			t.Errorf("ParseCurve(%q) = %v, %v", tt.in, got, err)
		}
	}
}
