package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/estimation-maison/sitefix/internal/audit"
	"github.com/estimation-maison/sitefix/internal/logger"
	"github.com/estimation-maison/sitefix/internal/site"
	"github.com/estimation-maison/sitefix/internal/ui"
)

var pruneDryRun bool

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove leftover export files from the site root",
	Long: `Removes the files at the site root that match the prune_patterns of
sitefix.yaml: the index.html%3Fp=<id>.html duplicates WordPress exports leave
behind, xmlrpc.php endpoints and retired pages. Run 'sitefix fix' first so no
link still points at them.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root := getSitePath()
		_, tables, err := loadTables(root)
		if err != nil {
			return handleError(ErrSiteConfigInvalid, err, "")
		}

		removed, err := site.Prune(root, tables.PrunePatterns, pruneDryRun)
		if err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		journal := audit.New(root, getConfig().Audit && !pruneDryRun)
		for _, name := range removed {
			if err := journal.LogPrune(name); err != nil {
				logger.Warn("audit: %v", err)
			}
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"dry_run": pruneDryRun,
				"files":   removed,
			}, &Meta{Count: len(removed), Run: journal.RunID()})
			return nil
		}

		if len(removed) == 0 {
			fmt.Println(ui.Info("Nothing to prune"))
			return nil
		}
		verb := "removed"
		if pruneDryRun {
			verb = "would remove"
		}
		for _, name := range removed {
			fmt.Printf("  %s %s\n", verb, ui.FilePath(name))
		}
		if pruneDryRun {
			fmt.Println(ui.Infof("Dry run: %d %s", len(removed), ui.Plural(len(removed), "file", "files")))
		} else {
			fmt.Println(ui.Successf("Removed %d %s", len(removed), ui.Plural(len(removed), "file", "files")))
		}
		return nil
	},
}

func init() {
	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "List the files without removing them")
	rootCmd.AddCommand(pruneCmd)
}
