package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/frog-london/Tara-Voice/internal/anim"
	"github.com/frog-london/Tara-Voice/internal/audio"
	"github.com/frog-london/Tara-Voice/internal/config"
	"github.com/frog-london/Tara-Voice/internal/engine"
	"github.com/frog-london/Tara-Voice/internal/game"
	"github.com/frog-london/Tara-Voice/internal/logging"
	"github.com/frog-london/Tara-Voice/internal/record"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML configuration file")
		width      = flag.Int("width", 0, "canvas width, overrides the config")
		height     = flag.Int("height", 0, "canvas height, overrides the config")
		audioPath  = flag.String("audio", "", "audio file to play on start")
		maskPath   = flag.String("mask", "", "mask image (svg, png, jpeg, webp)")
		svgOut     = flag.String("svg", "", "write one optimised SVG frame to this file and exit")
		offlineOut = flag.String("offline", "", "render the loop to this AVI file and exit")
		logLevel   = flag.String("log-level", "info", "debug, info, warn, error or off")
	)
	flag.Parse()

	log := logging.New(os.Stderr, *logLevel)
	if err := run(log, options{
		configPath: *configPath,
		width:      *width,
		height:     *height,
		audioPath:  *audioPath,
		maskPath:   *maskPath,
		svgOut:     *svgOut,
		offlineOut: *offlineOut,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	width      int
	height     int
	audioPath  string
	maskPath   string
	svgOut     string
	offlineOut string
}

func loadConfig(o options) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return cfg, err
		}
	}
	if o.width > 0 {
		cfg.Width = o.width
	}
	if o.height > 0 {
		cfg.Height = o.height
	}
	if o.maskPath != "" {
		cfg.MaskEnabled = true
		cfg.MaskSvgPath = o.maskPath
	}
	if o.offlineOut != "" {
		cfg.LoopingMode = true
	}
	cfg.Normalize()
	return cfg, cfg.Validate()
}

func run(log *slog.Logger, o options) error {
	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}
	eng, err := engine.New(cfg,
		engine.WithLogger(log),
		engine.WithStatus(func(msg string) { log.Info(msg) }),
	)
	if err != nil {
		return err
	}
	defer eng.Close()

	switch {
	case o.svgOut != "":
		return writeSVG(eng, o.svgOut)
	case o.offlineOut != "":
		return exportOffline(log, eng, o.offlineOut)
	}

	player := audio.NewPlayer(log, cfg.FrameRate)
	defer player.Close()
	if o.audioPath != "" {
		if err := player.Load(o.audioPath); err != nil {
			return err
		}
		cfg.AudioEnabled = true
		cfg.LoopingMode = false
		if err := eng.SetConfig(cfg); err != nil {
			return err
		}
	}

	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle("Halftone Field - " + game.Help)
	ebiten.SetTPS(cfg.FrameRate)

	g := game.New(eng, player, log)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

func writeSVG(eng *engine.Engine, path string) error {
	eng.Tick(time.Now(), anim.Levels{})
	return os.WriteFile(path, []byte(eng.ExportSVGNow()), 0o644)
}

func exportOffline(log *slog.Logger, eng *engine.Engine, path string) error {
	cfg := eng.Config()
	enc, err := record.NewMJPEGEncoder(path, cfg.Width, cfg.Height, cfg.FrameRate)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// the export snapshots the mask, so let it finish loading first
	eng.Tick(time.Now(), anim.Levels{})
	for eng.Status().MaskLoading {
		time.Sleep(10 * time.Millisecond)
		eng.Tick(time.Now(), anim.Levels{})
	}
	err = eng.StartOfflineExport(ctx, enc, func(done, total int) {
		log.Debug("offline export", "frame", done, "total", total)
	})
	if err != nil {
		_ = enc.Close()
		return err
	}

	ticker := time.NewTicker(time.Second / time.Duration(cfg.FrameRate))
	defer ticker.Stop()
	for eng.Exporting() {
		<-ticker.C
		eng.Tick(time.Now(), anim.Levels{})
	}
	return eng.Status().ExportErr
}
