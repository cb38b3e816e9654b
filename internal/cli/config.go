package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pkgtree/pkg/errors"
)

// Config holds user defaults loaded from the optional config file at
// $XDG_CONFIG_HOME/pkgtree/config.toml (falling back to ~/.config).
// Command-line flags always take precedence over config values.
type Config struct {
	// Warn is the default warning mode: silence, suppress or fail.
	Warn string `toml:"warn"`

	// Indent is the default JSON indent width.
	Indent int `toml:"indent"`

	// SitePackages are extra site-packages directories to scan.
	SitePackages []string `toml:"site_packages"`
}

// defaultConfigPath returns the config file location, or empty when no home
// directory can be determined.
func defaultConfigPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "pkgtree", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pkgtree", "config.toml")
}

// loadConfig reads the config file at path. A missing file is not an error:
// the zero Config is returned and every default stays in effect.
func loadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	return cfg, nil
}
