// Package mask loads the image cut out of the dot field and places it into
// canvas space.
package mask

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"path/filepath"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedMask is returned for data that is neither a raster image nor
// an SVG document.
var ErrUnsupportedMask = errors.New("mask: unsupported image format")

// svgRasterSize is the longer side an SVG is rasterised at before placement.
const svgRasterSize = 1024

// Decode turns raw bytes into an image. name is only used to recognise SVG by
// extension when the content sniff is inconclusive.
func Decode(name string, data []byte) (image.Image, error) {
	if isSVG(name, data) {
		return decodeSVG(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupportedMask
		}
		return nil, fmt.Errorf("mask: decode %s: %w", name, err)
	}
	return img, nil
}

func isSVG(name string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(name), ".svg") {
		return true
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.Contains(head, []byte("<svg"))
}

func decodeSVG(data []byte) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("mask: parse svg: %w", err)
	}
	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		return nil, ErrUnsupportedMask
	}
	scale := svgRasterSize / math.Max(vw, vh)
	w, h := int(math.Ceil(vw*scale)), int(math.Ceil(vh*scale))

	icon.SetTarget(0, 0, float64(w), float64(h))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.Transparent, image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return img, nil
}
