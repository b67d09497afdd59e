// Package game shows the halftone field in a window and maps keys onto the
// engine.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/frog-london/Tara-Voice/internal/anim"
	"github.com/frog-london/Tara-Voice/internal/audio"
	"github.com/frog-london/Tara-Voice/internal/config"
	"github.com/frog-london/Tara-Voice/internal/engine"
	"github.com/frog-london/Tara-Voice/internal/logging"
	"github.com/frog-london/Tara-Voice/internal/record"
)

// swatches are cycled through with C.
var swatches = []string{"#000000", "#1e3a8a", "#be123c", "#047857", "#7c3aed"}

// Game is the ebiten.Game driving the engine once per display refresh.
type Game struct {
	eng    *engine.Engine
	player *audio.Player
	log    *slog.Logger
	target screenTarget

	cancelExport context.CancelFunc
	swatch       int

	// input edge detection
	prevKey map[ebiten.Key]bool

	lastErr error
}

// New wraps eng. player may be nil when audio is unavailable.
func New(eng *engine.Engine, player *audio.Player, log *slog.Logger) *Game {
	return &Game{
		eng:     eng,
		player:  player,
		log:     logging.OrNop(log),
		prevKey: map[ebiten.Key]bool{},
	}
}

func (g *Game) Update() error {
	justPressed := func(k ebiten.Key) bool {
		pressed := ebiten.IsKeyPressed(k)
		jp := pressed && !g.prevKey[k]
		g.prevKey[k] = pressed
		return jp
	}

	if justPressed(ebiten.KeyEscape) || justPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if justPressed(ebiten.KeySpace) || inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.togglePlay()
	}
	if justPressed(ebiten.KeyL) {
		g.update(func(c *config.Config) { c.LoopingMode = !c.LoopingMode })
	}
	if justPressed(ebiten.KeyP) {
		g.update(func(c *config.Config) {
			if c.LoopAnimationType == config.LoopPulse {
				c.LoopAnimationType = config.LoopRipple
			} else {
				c.LoopAnimationType = config.LoopPulse
			}
		})
	}
	if justPressed(ebiten.KeyR) {
		g.toggleRecording()
	}
	if justPressed(ebiten.KeyO) {
		g.startOffline()
	}
	if justPressed(ebiten.KeyX) && g.cancelExport != nil {
		g.cancelExport()
		g.cancelExport = nil
	}
	if justPressed(ebiten.KeyS) {
		g.exportSVG()
	}
	if justPressed(ebiten.KeyM) {
		g.chooseMask()
	}
	if justPressed(ebiten.KeyA) {
		g.chooseAudio()
	}
	if justPressed(ebiten.KeyC) {
		g.swatch = (g.swatch + 1) % len(swatches)
		cfg := g.eng.Config()
		g.setErr(g.eng.StartColorTransition(swatches[g.swatch], cfg.Transition()))
	}
	if justPressed(ebiten.KeyT) {
		g.update(func(c *config.Config) { c.IsThinking = !c.IsThinking })
	}

	g.eng.Tick(time.Now(), g.levels())
	if g.cancelExport != nil && !g.eng.Exporting() {
		g.cancelExport()
		g.cancelExport = nil
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.target.dst = screen
	g.eng.DrawTo(&g.target)
	ebitenutil.DebugPrintAt(screen, g.statusLine(), 12, 12)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	cfg := g.eng.Config()
	return cfg.Width, cfg.Height
}

func (g *Game) levels() (l anim.Levels) {
	if g.player == nil {
		return l
	}
	return g.player.Levels()
}

func (g *Game) setErr(err error) {
	if err != nil {
		g.lastErr = err
		g.log.Warn("action failed", "err", err)
	}
}

func (g *Game) update(f func(c *config.Config)) {
	cfg := g.eng.Config()
	f(&cfg)
	g.setErr(g.eng.SetConfig(cfg))
}

// togglePlay pauses the loop in loop mode and the audio otherwise.
func (g *Game) togglePlay() {
	if g.eng.Config().LoopingMode {
		if g.eng.LoopPlaying() {
			g.setErr(g.eng.PauseLoop())
		} else {
			g.setErr(g.eng.PlayLoop())
		}
		return
	}
	if g.player != nil {
		g.player.TogglePause()
	}
}

func (g *Game) toggleRecording() {
	if g.eng.Recording() {
		g.setErr(g.eng.StopRecording())
		return
	}
	path, err := saveVideo("recording.avi")
	if err != nil || path == "" {
		g.setErr(err)
		return
	}
	cfg := g.eng.Config()
	enc, err := record.NewMJPEGEncoder(path, cfg.Width, cfg.Height, cfg.CaptureFps())
	if err != nil {
		g.setErr(err)
		return
	}
	g.setErr(g.eng.StartRecording(enc))
}

func (g *Game) startOffline() {
	if g.eng.Exporting() {
		return
	}
	path, err := saveVideo("export.avi")
	if err != nil || path == "" {
		g.setErr(err)
		return
	}
	cfg := g.eng.Config()
	enc, err := record.NewMJPEGEncoder(path, cfg.Width, cfg.Height, cfg.FrameRate)
	if err != nil {
		g.setErr(err)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := g.eng.StartOfflineExport(ctx, enc, nil); err != nil {
		cancel()
		_ = enc.Close()
		g.setErr(err)
		return
	}
	g.cancelExport = cancel
}

func (g *Game) exportSVG() {
	path, err := saveSVG()
	if err != nil || path == "" {
		g.setErr(err)
		return
	}
	err = g.eng.ExportSVG(func(doc string) {
		g.setErr(os.WriteFile(path, []byte(doc), 0o644))
		g.log.Info("svg written", "path", path, "bytes", len(doc))
	}, nil)
	g.setErr(err)
}

func (g *Game) chooseMask() {
	path, err := openMask()
	if err != nil {
		g.setErr(err)
		return
	}
	g.update(func(c *config.Config) {
		c.MaskSvgPath = path
		c.MaskEnabled = path != ""
	})
}

func (g *Game) chooseAudio() {
	if g.player == nil {
		return
	}
	path, err := openAudio()
	if err != nil || path == "" {
		g.setErr(err)
		return
	}
	if err := g.player.Load(path); err != nil {
		g.setErr(fmt.Errorf("load %s: %w", path, err))
		return
	}
	g.update(func(c *config.Config) {
		c.AudioEnabled = true
		c.LoopingMode = false
	})
}

func (g *Game) statusLine() string {
	s := g.eng.Status()
	var parts []string
	if s.Looping {
		state := "paused"
		switch {
		case s.LoopComplete:
			state = "done"
		case s.LoopPlaying:
			state = "playing"
		}
		parts = append(parts, fmt.Sprintf("loop %s cycle %d", state, s.LoopCycle+1))
	} else if g.player != nil && g.player.Playing() {
		parts = append(parts, fmt.Sprintf("audio %s/%s",
			formatDuration(g.player.Position()), formatDuration(g.player.Duration())))
	}
	if s.Recording {
		rec := fmt.Sprintf("REC %d", s.Frames)
		if s.ExpectedFrames > 0 {
			rec += fmt.Sprintf("/%d", s.ExpectedFrames)
		}
		parts = append(parts, rec)
	}
	if s.Exporting {
		parts = append(parts, fmt.Sprintf("export %d/%d", s.ExportDone, s.ExportTotal))
	}
	if s.SVGRunning {
		p := s.SVGProgress
		parts = append(parts, fmt.Sprintf("svg %s %d/%d", p.Phase, p.Done, p.Total))
	}
	if s.MaskLoading {
		parts = append(parts, "mask loading")
	}
	if s.MaskErr != "" {
		parts = append(parts, "mask: "+s.MaskErr)
	}
	if s.Message != "" {
		parts = append(parts, s.Message)
	}
	if g.lastErr != nil {
		parts = append(parts, "Error: "+g.lastErr.Error())
	}
	parts = append(parts, fmt.Sprintf("%d dots", s.Dots))
	return strings.Join(parts, " | ")
}

// Help is the key reference shown in the window title.
const Help = "Space: play/pause, L: loop, P: pulse/ripple, R: record, O: offline export, " +
	"S: SVG, M: mask, A: audio, C: colour, T: thinking, Esc/Q: quit"

// formatDuration renders d as MM:SS, clamping negatives to zero.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d/time.Minute), int(d%time.Minute/time.Second))
}
