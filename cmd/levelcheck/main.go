package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lixenwraith/sushi-merge/catalog"
	"github.com/lixenwraith/sushi-merge/config"
	"github.com/lixenwraith/sushi-merge/level"
)

var (
	levelsFlag  = flag.String("levels", "", "Comma-separated level names, empty checks the whole pack")
	packFlag    = flag.String("pack", "", "TOML level pack, empty uses the built-in pack")
	seedsFlag   = flag.Int("seeds", 0, "Seeds per level (default SUSHI_CHECK_SEEDS)")
	baseFlag    = flag.Uint64("base", 0, "First seed (default SUSHI_CHECK_BASE_SEED)")
	workersFlag = flag.Int("workers", -1, "Concurrent generators, 0 is unbounded (default SUSHI_CHECK_WORKERS)")
	metricsFlag = flag.String("metrics", "", "Write Prometheus textfile metrics to this path")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadCheck()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if *seedsFlag > 0 {
		cfg.Seeds = *seedsFlag
	}
	if *baseFlag > 0 {
		cfg.BaseSeed = *baseFlag
	}
	if *workersFlag >= 0 {
		cfg.Workers = *workersFlag
	}
	if *metricsFlag != "" {
		cfg.Metrics = *metricsFlag
	}

	pack := level.DefaultPack()
	if *packFlag != "" {
		if pack, err = level.LoadPack(*packFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load level pack: %v\n", err)
			os.Exit(1)
		}
	}
	specs, err := selectLevels(pack, *levelsFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reg := prometheus.NewRegistry()
	c := newChecker(catalog.Default(), newMetrics(reg))
	reports, err := c.sweep(ctx, specs, cfg.BaseSeed, cfg.Seeds, cfg.Workers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if cfg.Metrics != "" {
		if err := prometheus.WriteToTextfile(cfg.Metrics, reg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write metrics: %v\n", err)
			os.Exit(1)
		}
	}

	failed := printReports(os.Stdout, reports)
	if failed {
		os.Exit(1)
	}
}

func selectLevels(pack *level.Pack, names string) ([]level.Spec, error) {
	if names == "" {
		return pack.Levels, nil
	}
	var out []level.Spec
	for _, name := range strings.Split(names, ",") {
		s, err := pack.Level(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
