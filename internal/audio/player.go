package audio

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"

	"github.com/frog-london/Tara-Voice/internal/anim"
	"github.com/frog-london/Tara-Voice/internal/config"
	"github.com/frog-london/Tara-Voice/internal/logging"
)

// ErrUnsupportedAudio is returned for files that are not wav, mp3 or flac.
var ErrUnsupportedAudio = errors.New("audio: unsupported file type")

// Patterns lists the file patterns Decode understands.
var Patterns = []string{"*.wav", "*.mp3", "*.flac"}

// Decode picks a decoder by file extension.
func Decode(r io.ReadCloser, path string) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		return wav.Decode(r)
	case ".mp3":
		return mp3.Decode(r)
	case ".flac":
		return flac.Decode(r)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedAudio, ext)
	}
}

// Player plays one file at a time through the speaker and exposes the band
// levels of what is currently audible. Levels, Load and the other methods
// are called from the tick goroutine; the speaker goroutine only touches the
// tap and the end flag.
type Player struct {
	log *slog.Logger
	fps int

	initRate beep.SampleRate
	initDone bool

	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	tap      *Tap
	analyzer *Analyzer
	ended    atomic.Bool
	paused   bool
	path     string
}

// NewPlayer returns an idle player whose levels are smoothed for fps.
func NewPlayer(log *slog.Logger, fps int) *Player {
	return &Player{log: logging.OrNop(log), fps: fps}
}

// Load stops the current file and starts playing path.
func (p *Player) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	streamer, format, err := Decode(f, path)
	if err != nil {
		_ = f.Close()
		return err
	}

	// Prepare audio chain: streamer -> tap -> ctrl
	t := NewTap(streamer, config.VisualRingSize)
	ctrl := &beep.Ctrl{Streamer: t, Paused: false}

	bufferSize := format.SampleRate.N(time.Second / 20)
	switch {
	case !p.initDone:
		if err := speaker.Init(format.SampleRate, bufferSize); err != nil {
			_ = streamer.Close()
			return fmt.Errorf("audio: speaker: %w", err)
		}
		p.initDone = true
	case p.initRate != format.SampleRate:
		speaker.Clear()
		if err := speaker.Init(format.SampleRate, bufferSize); err != nil {
			_ = streamer.Close()
			return fmt.Errorf("audio: speaker: %w", err)
		}
	default:
		speaker.Clear()
	}
	p.initRate = format.SampleRate
	p.release()

	p.file = f
	p.streamer = streamer
	p.format = format
	p.ctrl = ctrl
	p.tap = t
	p.analyzer = NewAnalyzer(int(format.SampleRate), p.fps)
	p.paused = false
	p.path = path
	p.ended.Store(false)

	speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
		p.ended.Store(true)
	})))
	p.log.Info("audio playing", "path", path, "rate", int(format.SampleRate),
		"duration", p.Duration())
	return nil
}

// TogglePause pauses or resumes playback.
func (p *Player) TogglePause() {
	if p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.paused = !p.paused
	p.ctrl.Paused = p.paused
	speaker.Unlock()
}

// Playing reports whether audio is loaded, unpaused and not finished.
func (p *Player) Playing() bool {
	p.reap()
	return p.ctrl != nil && !p.paused
}

// Path of the loaded file.
func (p *Player) Path() string { return p.path }

// Duration of the loaded file.
func (p *Player) Duration() time.Duration {
	if p.streamer == nil {
		return 0
	}
	return p.format.SampleRate.D(p.streamer.Len())
}

// Position is the playback position.
func (p *Player) Position() time.Duration {
	if p.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := p.streamer.Position()
	speaker.Unlock()
	return p.format.SampleRate.D(pos)
}

// Levels analyses the most recent samples. Silence is returned while paused
// or idle.
func (p *Player) Levels() anim.Levels {
	p.reap()
	if p.tap == nil || p.paused {
		if p.analyzer != nil {
			return p.analyzer.Analyze(nil)
		}
		return anim.Levels{}
	}
	return p.analyzer.Analyze(p.tap.Snapshot(config.LevelWindow))
}

// reap closes the file once the speaker reported the end of the stream.
func (p *Player) reap() {
	if p.streamer != nil && p.ended.Load() {
		p.log.Info("audio finished", "path", p.path)
		p.release()
	}
}

func (p *Player) release() {
	if p.streamer != nil {
		_ = p.streamer.Close()
		p.streamer = nil
	}
	if p.file != nil {
		_ = p.file.Close()
		p.file = nil
	}
	p.ctrl = nil
	p.tap = nil
}

// Close stops playback.
func (p *Player) Close() {
	if p.initDone {
		speaker.Clear()
	}
	p.release()
}
