// Package falloff maps distance from the field centre to a base dot diameter.
package falloff

import (
	"fmt"
	"math"
)

// Curve selects the shape of the falloff.
type Curve int

const (
	Linear Curve = iota
	Exponential
	InverseSquare
)

func (c Curve) String() string {
	switch c {
	case Linear:
		return "linear"
	case Exponential:
		return "exponential"
	case InverseSquare:
		return "inverse-square"
	default:
		return fmt.Sprintf("Curve(%d)", int(c))
	}
}

// ParseCurve accepts the names used in configuration files.
func ParseCurve(s string) (Curve, error) {
	switch s {
	case "linear", "":
		return Linear, nil
	case "exponential":
		return Exponential, nil
	case "inverse-square", "inverseSquare":
		return InverseSquare, nil
	}
	return Linear, fmt.Errorf("falloff: unknown curve %q", s)
}

// Eval returns the unclamped curve value at the normalised distance d.
// k is the falloff intensity.
func (c Curve) Eval(d, k float64) float64 {
	switch c {
	case Exponential:
		return math.Exp(-d * k)
	case InverseSquare:
		return 1 / (1 + d*k)
	default:
		return 1 - d
	}
}

// Model is a configured falloff.
type Model struct {
	Curve     Curve
	Intensity float64
	MinSize   float64
	MaxSize   float64
}

// Diameter returns the base dot diameter for a point at distance from the
// centre, where maxDistance maps to the far end of the curve.
func (m Model) Diameter(distance, maxDistance float64) float64 {
	return Diameter(m.Curve, m.Intensity, m.MinSize, m.MaxSize, distance, maxDistance)
}

// Diameter is the pure form of Model.Diameter.
func Diameter(c Curve, k, minSize, maxSize, distance, maxDistance float64) float64 {
	d := 1.0
	if maxDistance > 0 {
		d = distance / maxDistance
	}
	return minSize + (maxSize-minSize)*clamp01(c.Eval(d, k))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
