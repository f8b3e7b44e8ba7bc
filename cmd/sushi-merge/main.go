package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/debug"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/sushi-merge/audio"
	"github.com/lixenwraith/sushi-merge/config"
	"github.com/lixenwraith/sushi-merge/engine"
	"github.com/lixenwraith/sushi-merge/level"
)

var (
	levelFlag = flag.String("level", "", "Level name from the pack (default SUSHI_LEVEL)")
	seedFlag  = flag.Uint64("seed", 0, "Level seed, 0 draws one (default SUSHI_SEED)")
	packFlag  = flag.String("pack", "", "TOML level pack, empty uses the built-in pack")
	debugFlag = flag.Bool("debug", false, "Write a debug log under logs/")
	muteFlag  = flag.Bool("mute", false, "Disable audio")
	listFlag  = flag.Bool("list", false, "List pack levels and exit")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	applyFlags(&cfg)

	pack, err := loadPack(cfg.Pack)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load level pack: %v\n", err)
		os.Exit(1)
	}
	if *listFlag {
		for _, s := range pack.Levels {
			fmt.Println(s)
		}
		return
	}
	start := pack.Index(cfg.Level)
	if start < 0 {
		fmt.Fprintf(os.Stderr, "Unknown level %q, available: %v\n", cfg.Level, pack.Names())
		os.Exit(1)
	}

	logFile := setupLogging(cfg.Debug, cfg.LogFile)
	if logFile != nil {
		defer logFile.Close()
	}
	logger := log.Default()

	clock := engine.NewMonotonicTimeProvider()
	game := engine.New(engine.Config{
		Clock:          clock,
		Logger:         logger,
		HintDelay:      cfg.HintDelay,
		FreezeDuration: cfg.Freeze,
	})

	player := audio.NewPlayer(cfg.AudioConfig(), logger)
	if err := player.Init(); err != nil {
		fmt.Printf("Audio initialization failed: %v (continuing without audio)\n", err)
	}
	defer player.Close()
	game.Register(audio.Handler[*engine.Game](player))

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		os.Exit(1)
	}

	// Restore the terminal before printing a crash
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "\n\x1b[31mSUSHI-MERGE CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()
	defer screen.Fini()

	u := newUI(screen, game, pack, clock, logger, uiOptions{
		SettleDelay: cfg.SettleDelay,
		AdDelay:     cfg.AdDelay,
	})
	u.start(start, cfg.Seed)
	u.run()
}

// applyFlags lets explicitly set flags override the environment
func applyFlags(cfg *config.Client) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "level":
			cfg.Level = *levelFlag
		case "seed":
			cfg.Seed = *seedFlag
		case "pack":
			cfg.Pack = *packFlag
		case "debug":
			cfg.Debug = *debugFlag
		case "mute":
			cfg.Audio = !*muteFlag
		}
	})
}

func loadPack(path string) (*level.Pack, error) {
	if path == "" {
		return level.DefaultPack(), nil
	}
	return level.LoadPack(path)
}
