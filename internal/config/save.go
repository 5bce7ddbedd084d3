package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/estimation-maison/sitefix/internal/atomicfile"
)

const siteConfigHeader = `# sitefix site configuration
# Tables used to resolve legacy WordPress links in this export.
# Remove a key to fall back to the built-in default.

`

// WriteSiteConfig writes cfg as sitefix.yaml at the site root atomically.
// It refuses to overwrite an existing file unless force is set.
func WriteSiteConfig(siteRoot string, cfg *SiteConfig, force bool) (string, error) {
	if cfg == nil {
		cfg = DefaultSiteConfig()
	}
	path := filepath.Join(siteRoot, SiteConfigFile)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("%s already exists", path)
		}
	}

	var buf bytes.Buffer
	buf.WriteString(siteConfigHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return path, fmt.Errorf("failed to encode site config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return path, fmt.Errorf("failed to encode site config: %w", err)
	}

	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
