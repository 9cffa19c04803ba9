package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds user defaults loaded from the config file. Flags given
// on the command line always win over config values.
type Config struct {
	Direction    string `toml:"direction"`
	MaxTextWidth int    `toml:"max-text-width"`
	MinBoxWidth  int    `toml:"min-box-width"`
	HSpacing     int    `toml:"h-spacing"`
	VSpacing     int    `toml:"v-spacing"`
	Shadow       *bool  `toml:"shadow"` // pointer so an absent key keeps the default
	Rounded      bool   `toml:"rounded"`
	Compact      bool   `toml:"compact"`

	PNG PNGConfig `toml:"png"`
}

// PNGConfig holds user defaults for PNG export.
type PNGConfig struct {
	Font       string `toml:"font"`
	FontSize   int    `toml:"font-size"`
	Scale      int    `toml:"scale"`
	Padding    int    `toml:"padding"`
	Background string `toml:"background"`
	Foreground string `toml:"foreground"`
}

// loadConfig reads the config file at path. A missing file is not an
// error; it returns an empty config.
func loadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// userConfig loads the config from the standard location, returning an
// empty config when no file exists or the location is unavailable.
func userConfig() (Config, error) {
	path, err := configPath()
	if err != nil {
		return Config{}, nil
	}
	return loadConfig(path)
}
