// Package cli implements the command-line interface.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/estimation-maison/sitefix/internal/config"
	"github.com/estimation-maison/sitefix/internal/logger"
	"github.com/estimation-maison/sitefix/internal/ui"
)

var (
	// Global flags
	siteName     string // Named site from config
	sitePathFlag string // Explicit path
	configPath   string
	verbose      bool

	// Resolved values
	resolvedSitePath   string
	resolvedConfigPath string
	cfg                *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sitefix",
	Short: "Repair links in a static WordPress export",
	Long: `sitefix repairs the links of a statically exported WordPress site.

It scans the first-level page folders of the export, maps every legacy
WordPress page reference (?p=<id> links, REST paths, flat .html links) to the
canonical folder/index.html path, and rewrites the HTML files in place through
an ordered set of idempotent passes. Running it twice changes nothing the
second time.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(verbose)

		var err error
		cfg, resolvedConfigPath, err = loadGlobalConfigWithPath()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		ui.ConfigureTheme(cfg.UI.Accent)
		logger.Debug("config: %s", resolvedConfigPath)

		// Skip site resolution for commands that don't need it
		switch cmd.Name() {
		case "init", "completion", "help", "version", "passes", "docs":
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "completion" {
			return nil
		}

		resolvedSitePath, err = resolveSitePath()
		if err != nil {
			return err
		}
		info, err := os.Stat(resolvedSitePath)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("site not found: %s", resolvedSitePath)
		}
		logger.Debug("site: %s", resolvedSitePath)
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&siteName, "site", "s", "", "Named site from config")
	rootCmd.PersistentFlags().StringVar(&sitePathFlag, "site-path", "", "Explicit path to the exported site root")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for scripts)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Print resolution details to stderr")
}

// resolveSitePath picks the site root: explicit path > named site > default
// site > current directory.
func resolveSitePath() (string, error) {
	if sitePathFlag != "" {
		return sitePathFlag, nil
	}
	if siteName != "" {
		path, err := cfg.GetSitePath(siteName)
		if err != nil {
			return "", fmt.Errorf("site '%s' not found\n\nAdd it under [sites] in %s", siteName, resolvedConfigPath)
		}
		return path, nil
	}
	if cfg != nil && cfg.DefaultSite != "" {
		return cfg.GetDefaultSitePath()
	}
	return os.Getwd()
}

// getSitePath returns the resolved site path.
func getSitePath() string {
	return resolvedSitePath
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	if cfg == nil {
		return &config.Config{}
	}
	return cfg
}

func loadGlobalConfigWithPath() (*config.Config, string, error) {
	resolvedPath := config.ResolveConfigPath(configPath)

	var loadedCfg *config.Config
	var err error
	if strings.TrimSpace(configPath) != "" {
		loadedCfg, err = config.LoadFrom(configPath)
	} else {
		loadedCfg, err = config.Load()
	}
	if err != nil {
		return nil, "", err
	}
	if loadedCfg == nil {
		loadedCfg = &config.Config{}
	}

	return loadedCfg, resolvedPath, nil
}
