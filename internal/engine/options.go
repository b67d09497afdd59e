package engine

import (
	"log/slog"
	"time"

	"github.com/frog-london/Tara-Voice/internal/mask"
	"github.com/frog-london/Tara-Voice/internal/record"
)

// EncoderFactory opens an encoder for a w×h capture at fps.
type EncoderFactory func(w, h, fps int) (record.Encoder, error)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Nothing is logged by default.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithClock replaces the wall clock used by recording.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMaskFetch replaces how mask bytes are read.
func WithMaskFetch(f mask.FetchFunc) Option {
	return func(e *Engine) { e.fetch = f }
}

// WithEncoderFactory sets the encoder used by StartRecording when no encoder
// is passed in. The default writes a temporary AVI file.
func WithEncoderFactory(f EncoderFactory) Option {
	return func(e *Engine) { e.newEncoder = f }
}

// WithStatus receives human readable status changes.
func WithStatus(f func(msg string)) Option {
	return func(e *Engine) { e.onStatus = f }
}

// WithSVGBudget limits how long each tick works on an SVG export.
func WithSVGBudget(d time.Duration) Option {
	return func(e *Engine) { e.svgBudget = d }
}

func defaultEncoder(w, h, fps int) (record.Encoder, error) {
	return record.NewTempMJPEGEncoder(w, h, fps)
}
