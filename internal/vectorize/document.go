package vectorize

import (
	"bytes"
	"fmt"
	"image/color"

	svg "github.com/ajstarks/svgo/float"
)

func fillAttr(c color.RGBA) string {
	return fmt.Sprintf(`fill="#%02x%02x%02x"`, c.R, c.G, c.B)
}

// document writes the header, the background rect and one path per entry.
func document(paths []string, opts Options) string {
	var buf bytes.Buffer
	s := svg.New(&buf)
	s.Startview(opts.Width, opts.Height, 0, 0, opts.Width, opts.Height)
	bg := `fill="none"`
	if !opts.Transparent {
		bg = fillAttr(opts.Background)
	}
	s.Rect(0, 0, opts.Width, opts.Height, bg)
	fill := fillAttr(opts.Fill)
	for _, d := range paths {
		s.Path(d, fill)
	}
	s.End()
	return buf.String()
}

// NaiveSVG writes one circular path per dot without any merging.
func NaiveSVG(circles []Circle, opts Options) string {
	paths := make([]string, len(circles))
	for i, c := range circles {
		paths[i] = arcPath(c)
	}
	return document(paths, opts)
}
