package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/milk9111/mobengine/config"
	"github.com/milk9111/mobengine/logging"
	"github.com/milk9111/mobengine/prefabs"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (yaml, toml or json)")
	areaName := flag.String("area", "", "area file in the content dir, overrides sandbox.area")
	debug := flag.Bool("debug", false, "draw state names, reaches and hitboxes")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *debug {
		cfg.Logger.Level = "debug"
	}
	if err := logging.Init("sandbox", cfg.Logger); err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logging.Sync() }()

	prefabs.SetDir(cfg.Content.Dir)
	if *areaName != "" {
		cfg.Sandbox.Area = *areaName
	}

	sb := NewSandbox(cfg, *debug)
	if cfg.Content.Watch {
		w, err := prefabs.WatchDir(cfg.Content.Dir, cfg.Content.Settle)
		if err != nil {
			logging.Warn("content watch disabled", zap.String("dir", cfg.Content.Dir), zap.Error(err))
		} else {
			defer w.Close()
			sb.watcher = w
		}
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("mobengine sandbox")
	ebiten.SetTPS(cfg.Sandbox.TPS)

	if err := ebiten.RunGame(sb); err != nil {
		logging.Fatal("sandbox stopped", zap.Error(err))
	}
}
