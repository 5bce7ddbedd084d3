package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/estimation-maison/sitefix/internal/audit"
	"github.com/estimation-maison/sitefix/internal/batch"
	"github.com/estimation-maison/sitefix/internal/inventory"
	"github.com/estimation-maison/sitefix/internal/passes"
	"github.com/estimation-maison/sitefix/internal/site"
	"github.com/estimation-maison/sitefix/internal/ui"
)

var (
	fixDryRun          bool
	fixPasses          []string
	fixWorkers         int
	fixAllowCollisions bool
)

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Rewrite legacy links in every HTML file of the site",
	Long: `Rebuilds the page inventory, then rewrites every .html file of the site
through the rewrite passes (see 'sitefix passes'). Files are written back only
when their content changed.

Collisions in the inventory (two folders with the same slug, two pages with the
same WordPress ID) make link resolution depend on scan order, so fix refuses to
write while they exist unless --allow-collisions is given.

Examples:
  sitefix fix --dry-run
  sitefix fix --pass legacy-links --pass double-dots
  sitefix fix --workers 8 --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		root := getSitePath()

		sc, code, err := loadSite(root)
		if err != nil {
			return handleError(code, err, "")
		}

		if err := sc.Inventory.Err(); err != nil && !fixAllowCollisions {
			return handleErrorWithDetails(ErrInventoryCollisions,
				fmt.Sprintf("%v: %s", err, describeCollisions(sc)),
				"Rename one of the folders, or pass --allow-collisions to keep the first page in scan order",
				sc.Inventory.Collisions)
		}

		pipeline, err := passes.Default(sc.Resolver).Select(fixPasses)
		if err != nil {
			return handleError(ErrUnknownPass, err, "Run 'sitefix passes' to list pass names")
		}

		files, err := site.Discover(root)
		if err != nil {
			return handleError(ErrSiteUnreadable, err, "")
		}

		workers := getConfig().Workers
		if cmd.Flags().Changed("workers") {
			workers = fixWorkers
		}
		if workers < 0 {
			return handleErrorMsg(ErrInvalidInput, "--workers must be >= 0", "")
		}

		journal := audit.New(root, getConfig().Audit && !fixDryRun)
		mutator := &batch.Mutator{
			Root:    root,
			DryRun:  fixDryRun,
			Workers: workers,
			Audit:   journal,
		}

		var spinner *ui.Spinner
		if !isJSONOutput() {
			spinner = ui.NewSpinner(fmt.Sprintf("Rewriting %d files", len(files)))
			spinner.Start()
		}
		report, err := mutator.Process(commandContext(cmd), files, pipeline)
		if spinner != nil {
			spinner.Stop()
		}
		if err != nil {
			return handleError(ErrInternal, err, "")
		}

		if isJSONOutput() {
			warnings := append(skippedWarnings(sc.Inventory.Skipped), diagnosticWarnings(report)...)
			outputSuccessWithWarnings(fixData(report), warnings, &Meta{
				Count:      report.Changed,
				Run:        journal.RunID(),
				DurationMs: time.Since(start).Milliseconds(),
			})
			return nil
		}

		printFixReport(report, len(files), sc.Inventory.Skipped)
		if len(report.Failures) > 0 {
			return fmt.Errorf("%d %s could not be processed", len(report.Failures), ui.Plural(len(report.Failures), "file", "files"))
		}
		return nil
	},
}

func fixData(report *batch.Report) map[string]interface{} {
	var modified []batch.FileResult
	for _, f := range report.Files {
		if f.Status == batch.StatusModified {
			modified = append(modified, f)
		}
	}
	return map[string]interface{}{
		"dry_run":  report.DryRun,
		"scanned":  len(report.Files),
		"changed":  report.Changed,
		"modified": modified,
		"failures": report.Failures,
	}
}

// skippedWarnings reports folders left out of the inventory; links to them
// cannot be resolved during this run.
func skippedWarnings(skipped []inventory.Skipped) []Warning {
	warnings := make([]Warning, 0, len(skipped))
	for _, s := range skipped {
		warnings = append(warnings, Warning{
			Code:    WarnSkippedFolder,
			Message: fmt.Sprintf("folder left out of the inventory: %s", s.Err),
			File:    s.Folder,
		})
	}
	return warnings
}

func diagnosticWarnings(report *batch.Report) []Warning {
	warnings := make([]Warning, 0, len(report.Diagnostics))
	for _, d := range report.Diagnostics {
		warnings = append(warnings, Warning{
			Code:    strings.ToUpper(strings.ReplaceAll(d.Pass, "-", "_")),
			Message: fmt.Sprintf("%s (%q)", d.Message, d.Text),
			File:    d.File,
		})
	}
	return warnings
}

func printFixReport(report *batch.Report, scanned int, skipped []inventory.Skipped) {
	verb := "updated"
	if report.DryRun {
		verb = "would update"
	}

	if len(skipped) > 0 {
		folders := make([]string, 0, len(skipped))
		for _, s := range skipped {
			folders = append(folders, s.Folder)
		}
		fmt.Println(ui.Warningf("%d %s skipped, links to them fall back to the hub: %s",
			len(skipped), ui.Plural(len(skipped), "folder", "folders"), strings.Join(folders, ", ")))
	}

	for _, f := range report.Files {
		switch f.Status {
		case batch.StatusModified:
			fmt.Printf("  %s %s %s\n", verb, ui.FilePath(f.Path), ui.Hint(strings.Join(f.Passes, ", ")))
		case batch.StatusError:
			fmt.Println(ui.Errorf("%s: %s", f.Path, f.Error))
		}
	}
	for _, d := range report.Diagnostics {
		fmt.Println(ui.Warningf("%s: %s (%q)", d.File, d.Message, d.Text))
	}

	if report.DryRun {
		fmt.Println(ui.Infof("Dry run: %d of %d files would change", report.Changed, scanned))
		return
	}
	fmt.Println(ui.Successf("%d of %d files updated", report.Changed, scanned))
}

func describeCollisions(sc *siteContext) string {
	parts := make([]string, 0, len(sc.Inventory.Collisions))
	for _, c := range sc.Inventory.Collisions {
		parts = append(parts, fmt.Sprintf("%s %q claimed by %s", c.Kind, c.Key, strings.Join(c.Paths, ", ")))
	}
	return strings.Join(parts, "; ")
}

func init() {
	fixCmd.Flags().BoolVar(&fixDryRun, "dry-run", false, "Report the files that would change without writing them")
	fixCmd.Flags().StringSliceVar(&fixPasses, "pass", nil, "Run only the named pass (repeatable)")
	fixCmd.Flags().IntVar(&fixWorkers, "workers", 0, "Files processed concurrently (default from config, 0 or 1 = sequential)")
	fixCmd.Flags().BoolVar(&fixAllowCollisions, "allow-collisions", false, "Write even when the inventory has colliding keys")
	rootCmd.AddCommand(fixCmd)
}
