// Package config loads the recorder's flat, yaml-tagged configuration file,
// the same convention the teacher module uses throughout (e.g. the various
// modules/*/config.go structs it composes into its top-level Config).
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/fran0x/dixit/persist"
)

// Config is the recorder's top-level configuration: the feed to subscribe
// to (in this demonstration, the synthetic producer's own tuning knobs) and
// the persistence layer's own settings.
type Config struct {
	Feed    FeedConfig    `yaml:"feed"`
	Persist persist.Config `yaml:"persist"`
	LogLevel string        `yaml:"log_level"`
}

// FeedConfig tunes the synthetic market data producer in internal/marketdata.
type FeedConfig struct {
	Symbol      string  `yaml:"symbol"`
	RecordsPerSecond int `yaml:"records_per_second"`
}

// Default returns a Config usable without any file on disk: persistence
// writes under ./data, keeping prior files, recording every table, at a
// modest synthetic rate.
func Default() Config {
	return Config{
		Feed: FeedConfig{
			Symbol:           "BTC-USD",
			RecordsPerSecond: 10,
		},
		Persist: persist.Config{
			Directory: "./data",
			Keep:      true,
		},
		LogLevel: "info",
	}
}

// Load reads and parses a YAML config file at path, starting from Default()
// so a partial file only overrides what it mentions.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, nil
}
