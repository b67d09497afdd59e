package field

import "math"

// Grid is the regular lattice the dots sit on.
type Grid struct {
	Spacing float64
	OffsetX float64
	OffsetY float64
	Cols    int
	Rows    int
}

// NewGrid lays out a lattice with spacing floor(min(w,h)/density). The
// lattice is centred on the canvas, which puts the first point half a
// spacing from the edge whenever the side is a multiple of the spacing.
func NewGrid(width, height, density int) Grid {
	if density < 1 {
		density = 1
	}
	spacing := math.Floor(float64(min(width, height)) / float64(density))
	if spacing < 1 {
		spacing = 1
	}
	cols := int(float64(width) / spacing)
	rows := int(float64(height) / spacing)
	return Grid{
		Spacing: spacing,
		OffsetX: (float64(width) - float64(cols-1)*spacing) / 2,
		OffsetY: (float64(height) - float64(rows-1)*spacing) / 2,
		Cols:    cols,
		Rows:    rows,
	}
}

// Len is the number of lattice points.
func (g Grid) Len() int { return g.Cols * g.Rows }

// At returns the position of point i in row-major order.
func (g Grid) At(i int) (x, y float64) {
	col, row := i%g.Cols, i/g.Cols
	return g.OffsetX + float64(col)*g.Spacing, g.OffsetY + float64(row)*g.Spacing
}
