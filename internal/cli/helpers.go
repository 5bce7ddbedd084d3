package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/estimation-maison/sitefix/internal/config"
	"github.com/estimation-maison/sitefix/internal/inventory"
	"github.com/estimation-maison/sitefix/internal/logger"
	"github.com/estimation-maison/sitefix/internal/resolver"
)

// siteContext is everything a command needs to work on one site. It is built
// once per invocation and read-only afterwards.
type siteContext struct {
	Root      string
	Config    *config.SiteConfig
	Tables    *config.Tables
	Inventory *inventory.Inventory
	Resolver  *resolver.Resolver
}

// loadTables loads sitefix.yaml (or the defaults) and validates it.
func loadTables(root string) (*config.SiteConfig, *config.Tables, error) {
	siteCfg, err := config.LoadSiteConfig(root)
	if err != nil {
		return nil, nil, err
	}
	tables, err := siteCfg.Tables()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid %s: %w", config.SiteConfigFile, err)
	}
	return siteCfg, tables, nil
}

// loadSite builds the inventory and resolver for the site at root.
// The returned error code is meant for handleError.
func loadSite(root string) (*siteContext, string, error) {
	siteCfg, tables, err := loadTables(root)
	if err != nil {
		return nil, ErrSiteConfigInvalid, err
	}

	logger.Section("Inventory")
	inv, err := inventory.Build(root, inventory.Options{
		FolderPrefix: tables.FolderPrefix,
		IndexFile:    tables.IndexFile,
	})
	if err != nil {
		return nil, ErrSiteUnreadable, err
	}
	logger.Info("%d pages, %d legacy ids", len(inv.Pages), len(inv.IDs()))
	for _, s := range inv.Skipped {
		logger.Warn("skipped %s: %s", s.Folder, s.Err)
	}
	for _, c := range inv.Collisions {
		logger.Warn("%s collision on %q: %v", c.Kind, c.Key, c.Paths)
	}

	return &siteContext{
		Root:      root,
		Config:    siteCfg,
		Tables:    tables,
		Inventory: inv,
		Resolver:  resolver.New(inv, tables),
	}, "", nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
