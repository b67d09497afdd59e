package vectorize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	polyclip "github.com/ctessum/polyclip-go"
)

// Circle is one surviving dot.
type Circle struct {
	X, Y, R float64
}

func (c Circle) overlaps(o Circle) bool {
	return math.Hypot(c.X-o.X, c.Y-o.Y) < c.R+o.R
}

const (
	minSegments = 16
	maxSegments = 64
	// target chord length in px when picking a segment count
	segmentLength = 4.0
)

func segments(r float64) int {
	n := int(math.Ceil(2 * math.Pi * r / segmentLength))
	return max(minSegments, min(maxSegments, n))
}

// polygon approximates c counter-clockwise.
func polygon(c Circle) polyclip.Polygon {
	n := segments(c.R)
	ring := make(polyclip.Contour, n)
	for i := range ring {
		a := 2 * math.Pi * float64(i) / float64(n)
		sin, cos := math.Sincos(a)
		ring[i] = polyclip.Point{X: c.X + c.R*cos, Y: c.Y + c.R*sin}
	}
	return polyclip.Polygon{ring}
}

// construct is the polygon boolean union behind union.
var construct = func(a, b polyclip.Polygon) polyclip.Polygon {
	return a.Construct(polyclip.UNION, b)
}

// union merges next into acc. A panic inside the clipper or an empty result
// is reported as an error and acc is left untouched.
func union(acc polyclip.Polygon, next polyclip.Polygon) (out polyclip.Polygon, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("vectorize: union panicked: %v", r)
		}
	}()
	out = construct(acc, next)
	if len(out) == 0 {
		return nil, errEmptyUnion
	}
	for _, ring := range out {
		for _, p := range ring {
			if math.IsNaN(p.X) || math.IsNaN(p.Y) {
				return nil, errEmptyUnion
			}
		}
	}
	return out, nil
}

// outerRings drops every ring nested inside another ring.
func outerRings(p polyclip.Polygon) []polyclip.Contour {
	var out []polyclip.Contour
	for i, ring := range p {
		if len(ring) < 3 {
			continue
		}
		nested := false
		for j, other := range p {
			if i != j && len(other) >= 3 && other.Contains(ring[0]) {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, ring)
		}
	}
	return out
}

func ff(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// arcPath is a full circle as two half arcs.
func arcPath(c Circle) string {
	r := ff(c.R)
	return fmt.Sprintf("M%s %sA%s %s 0 1 0 %s %sA%s %s 0 1 0 %s %sZ",
		ff(c.X-c.R), ff(c.Y),
		r, r, ff(c.X+c.R), ff(c.Y),
		r, r, ff(c.X-c.R), ff(c.Y))
}

// ringsPath writes rings as closed polylines in one path.
func ringsPath(rings []polyclip.Contour) string {
	var b strings.Builder
	for _, ring := range rings {
		for i, p := range ring {
			if i == 0 {
				b.WriteByte('M')
			} else {
				b.WriteByte('L')
			}
			b.WriteString(ff(p.X))
			b.WriteByte(' ')
			b.WriteString(ff(p.Y))
		}
		b.WriteByte('Z')
	}
	return b.String()
}
