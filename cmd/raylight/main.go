package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"chosenoffset.com/raylight/internal/config"
	"chosenoffset.com/raylight/internal/game"
	"chosenoffset.com/raylight/internal/logging"
	ebitenrender "chosenoffset.com/raylight/internal/render/ebiten"
)

func main() {
	configPath := flag.String("config", "", "YAML file overriding the built-in defaults")
	statsPath := flag.String("stats", "", "write frame statistics CSV to this file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if err := run(*configPath, *statsPath, *debug); err != nil {
		fmt.Fprintln(os.Stderr, "raylight:", err)
		os.Exit(1)
	}
}

func run(configPath, statsPath string, debug bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if statsPath != "" {
		cfg.Telemetry.StatsPath = statsPath
	}

	if err := logging.Init(debug || cfg.Logging.Debug); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logging.Sync()

	// Initialize the renderer backend (ebiten)
	renderer := ebitenrender.NewRenderer(cfg.Lighting.MaxTextureSize)
	inputMgr := ebitenrender.NewInputManager()
	loader := ebitenrender.NewResourceLoader()
	engine := ebitenrender.NewEngine()

	g, err := game.New(cfg, renderer, inputMgr, loader)
	if err != nil {
		return err
	}
	defer func() {
		if err := g.Close(); err != nil {
			logging.Log.Warn("Closing demo", zap.Error(err))
		}
	}()

	// Set up the window
	engine.SetWindowSize(cfg.Screen.Width, cfg.Screen.Height)
	engine.SetWindowTitle(cfg.Screen.Title)
	engine.SetWindowResizable(true)

	logging.Log.Info("Starting demo",
		zap.Int("width", cfg.Screen.Width),
		zap.Int("height", cfg.Screen.Height),
		zap.String("stats", cfg.Telemetry.StatsPath))
	if err := engine.RunGame(g); err != nil && !errors.Is(err, game.ErrQuit) {
		return err
	}
	return nil
}
