package anim

import "math"

// EaseInOut is the symmetric cubic ease used by the loop animations.
func EaseInOut(p float64) float64 {
	p = clamp(p, 0, 1)
	if p < 0.5 {
		return 4 * p * p * p
	}
	return 1 - math.Pow(-2*p+2, 3)/2
}
