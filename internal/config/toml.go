// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Track     TrackConfig     `toml:"track"`
	Histogram HistogramConfig `toml:"histogram"`
	Simulate  SimulateConfig  `toml:"simulate"`
}

// TrackConfig maps live tracking settings.
type TrackConfig struct {
	Input          *string `toml:"in"`
	Simulate       *bool   `toml:"simulate"`
	Pace           *string `toml:"pace"`
	Replay         *bool   `toml:"replay"`
	ReplayMaxSleep *string `toml:"replay-max-sleep"`
	Record         *bool   `toml:"record"`
}

// HistogramConfig maps histogram display settings.
type HistogramConfig struct {
	BinSize *float64 `toml:"bin-size"`
	Range   *float64 `toml:"range"`
}

// SimulateConfig maps synthetic event generator settings.
type SimulateConfig struct {
	Count     *int     `toml:"count"`
	Seed      *int64   `toml:"seed"`
	MinGapMs  *float64 `toml:"min-gap"`
	MaxGapMs  *float64 `toml:"max-gap"`
	EarlyPct  *float64 `toml:"early"`
	HoldMs    *float64 `toml:"hold"`
	PairGapMs *float64 `toml:"pair-gap"`
	Unbound   *float64 `toml:"unbound"`
	Realtime  *bool    `toml:"realtime"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
