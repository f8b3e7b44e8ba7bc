package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/lixenwraith/sushi-merge/audio"
)

// Client configures the terminal game, flags override these after parsing
type Client struct {
	Level       string         `env:"SUSHI_LEVEL" envDefault:"classic"`
	Pack        string         `env:"SUSHI_PACK"`
	Seed        uint64         `env:"SUSHI_SEED"` // Zero picks a random seed
	Audio       bool           `env:"SUSHI_AUDIO" envDefault:"true"`
	Volume      int            `env:"SUSHI_VOLUME" envDefault:"50"`
	CueVolumes  map[string]int `env:"SUSHI_CUE_VOLUMES"`
	HintDelay   time.Duration  `env:"SUSHI_HINT_DELAY" envDefault:"5s"`
	Freeze      time.Duration  `env:"SUSHI_FREEZE" envDefault:"10s"`
	SettleDelay time.Duration  `env:"SUSHI_SETTLE_DELAY" envDefault:"400ms"`
	AdDelay     time.Duration  `env:"SUSHI_AD_DELAY" envDefault:"2s"`
	Debug       bool           `env:"SUSHI_DEBUG"`
	LogFile     string         `env:"SUSHI_LOG_FILE" envDefault:"sushi-merge.log"`
}

// LoadClient parses the client environment and validates it
func LoadClient() (Client, error) {
	var c Client
	if err := ParseEnv(&c); err != nil {
		return Client{}, err
	}
	if err := c.Validate(); err != nil {
		return Client{}, err
	}
	return c, nil
}

// Validate rejects values the game cannot run with
func (c Client) Validate() error {
	if c.Volume < 0 || c.Volume > 100 {
		return fmt.Errorf("volume %d outside 0..100", c.Volume)
	}
	for name, v := range c.CueVolumes {
		if _, ok := audio.ParseCue(name); !ok {
			return fmt.Errorf("unknown cue %q", name)
		}
		if v < 0 || v > 100 {
			return fmt.Errorf("cue %s volume %d outside 0..100", name, v)
		}
	}
	if c.HintDelay < 0 || c.Freeze < 0 || c.SettleDelay < 0 || c.AdDelay < 0 {
		return errors.New("negative duration")
	}
	return nil
}

// AudioConfig converts percent volumes to the mixer settings
func (c Client) AudioConfig() audio.Config {
	cfg := audio.DefaultConfig()
	cfg.Enabled = c.Audio
	cfg.Master = float64(c.Volume) / 100
	for name, v := range c.CueVolumes {
		if cue, ok := audio.ParseCue(name); ok {
			cfg.Volumes[cue] = float64(v) / 100
		}
	}
	return cfg
}

// Check configures the batch level checker
type Check struct {
	Seeds    int    `env:"SUSHI_CHECK_SEEDS" envDefault:"1000"`
	Workers  int    `env:"SUSHI_CHECK_WORKERS"` // Zero uses GOMAXPROCS
	BaseSeed uint64 `env:"SUSHI_CHECK_BASE_SEED" envDefault:"1"`
	Metrics  string `env:"SUSHI_CHECK_METRICS"` // Prometheus textfile path, empty disables
}

// LoadCheck parses the level checker environment
func LoadCheck() (Check, error) {
	var c Check
	if err := ParseEnv(&c); err != nil {
		return Check{}, err
	}
	if c.Seeds <= 0 {
		return Check{}, fmt.Errorf("seed count %d must be positive", c.Seeds)
	}
	if c.Workers < 0 {
		return Check{}, fmt.Errorf("worker count %d must not be negative", c.Workers)
	}
	return c, nil
}
