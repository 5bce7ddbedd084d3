// Package config handles global sitefix configuration and per-site tables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the global sitefix configuration.
type Config struct {
	// DefaultSite is the name of the default site (from Sites map).
	DefaultSite string `toml:"default_site"`

	// Sites is a map of site names to exported site root directories.
	Sites map[string]string `toml:"sites"`

	// Workers is the number of files processed concurrently by `sitefix fix`.
	// Zero or one means sequential processing.
	Workers int `toml:"workers"`

	// Audit enables the append-only change journal in <site>/.sitefix/audit.log.
	Audit bool `toml:"audit"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an optional accent color for CLI output and markdown rendering.
	// Supported values are ANSI color codes ("0" to "255") or hex colors ("#RRGGBB").
	Accent string `toml:"accent"`
}

// GetSitePath returns the path for a named site.
// If name is empty, returns the default site path.
func (c *Config) GetSitePath(name string) (string, error) {
	if name == "" {
		name = c.DefaultSite
	}
	if name == "" {
		return "", fmt.Errorf("no default site configured")
	}
	if path, ok := c.Sites[name]; ok {
		return path, nil
	}
	return "", fmt.Errorf("site '%s' not found in config", name)
}

// GetDefaultSitePath returns the default site path.
func (c *Config) GetDefaultSitePath() (string, error) {
	return c.GetSitePath("")
}

// Load loads the configuration from the default location.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &Config{}, nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if config.Workers < 0 {
		return nil, fmt.Errorf("invalid config %s: workers must be >= 0", path)
	}
	return &config, nil
}

// DefaultPath returns the default config file path.
// Checks ~/.config/sitefix/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "sitefix", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "sitefix", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}

// ResolveConfigPath returns the explicit path when given, the default path otherwise.
func ResolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return DefaultPath()
}
