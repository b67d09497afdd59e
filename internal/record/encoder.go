// Package record captures the dot field to video, either live at a fixed
// frame rate or offline with temporal supersampling.
package record

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"time"

	"github.com/icza/mjpeg"
)

// ErrEncoderClosed is returned when writing to a closed encoder.
var ErrEncoderClosed = errors.New("record: encoder closed")

// Encoder consumes frames in order. ts is the frame's presentation time.
type Encoder interface {
	WriteFrame(img image.Image, ts time.Duration) error
	Close() error
}

// DefaultQuality is the JPEG quality of each video frame.
const DefaultQuality = 90

// MJPEGEncoder writes a Motion-JPEG AVI file. The container stores a fixed
// frame rate, so timestamps only have to be monotonic.
type MJPEGEncoder struct {
	Path    string
	Quality int

	avi    mjpeg.AviWriter
	buf    bytes.Buffer
	last   time.Duration
	frames int
	closed bool
}

// NewMJPEGEncoder creates path and prepares it for w×h frames at fps.
func NewMJPEGEncoder(path string, w, h, fps int) (*MJPEGEncoder, error) {
	avi, err := mjpeg.New(path, int32(w), int32(h), int32(fps))
	if err != nil {
		return nil, fmt.Errorf("record: create %s: %w", path, err)
	}
	return &MJPEGEncoder{Path: path, Quality: DefaultQuality, avi: avi, last: -1}, nil
}

// NewTempMJPEGEncoder writes to a temporary file; read it back with Bytes
// once closed.
func NewTempMJPEGEncoder(w, h, fps int) (*MJPEGEncoder, error) {
	f, err := os.CreateTemp("", "halftone-*.avi")
	if err != nil {
		return nil, fmt.Errorf("record: temp file: %w", err)
	}
	name := f.Name()
	f.Close()
	return NewMJPEGEncoder(name, w, h, fps)
}

func (e *MJPEGEncoder) WriteFrame(img image.Image, ts time.Duration) error {
	if e.closed {
		return ErrEncoderClosed
	}
	if ts < e.last {
		return fmt.Errorf("record: frame at %v after %v", ts, e.last)
	}
	e.buf.Reset()
	if err := jpeg.Encode(&e.buf, img, &jpeg.Options{Quality: e.Quality}); err != nil {
		return fmt.Errorf("record: encode frame %d: %w", e.frames, err)
	}
	if err := e.avi.AddFrame(e.buf.Bytes()); err != nil {
		return fmt.Errorf("record: add frame %d: %w", e.frames, err)
	}
	e.last = ts
	e.frames++
	return nil
}

// Frames is the number of frames written.
func (e *MJPEGEncoder) Frames() int { return e.frames }

// Close finalises the AVI index. Closing twice is a no-op.
func (e *MJPEGEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	return e.avi.Close()
}

// Bytes reads the finished file.
func (e *MJPEGEncoder) Bytes() ([]byte, error) {
	if !e.closed {
		return nil, errors.New("record: encoder still open")
	}
	return os.ReadFile(e.Path)
}
