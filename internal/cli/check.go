package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/estimation-maison/sitefix/internal/batch"
	"github.com/estimation-maison/sitefix/internal/passes"
	"github.com/estimation-maison/sitefix/internal/site"
	"github.com/estimation-maison/sitefix/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report what fix and prune would do, and links that lead nowhere",
	Long: `Runs every read-only analysis on the site without modifying it:

  - inventory collisions and skipped folders
  - files the rewrite passes would change, and links they cannot resolve
  - relative links whose target file does not exist
  - leftover export files that prune would remove

Exits non-zero when collisions, pending rewrites, failures or broken links are
found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root := getSitePath()
		sc, code, err := loadSite(root)
		if err != nil {
			return handleError(code, err, "")
		}

		files, err := site.Discover(root)
		if err != nil {
			return handleError(ErrSiteUnreadable, err, "")
		}

		mutator := &batch.Mutator{Root: root, DryRun: true, Workers: getConfig().Workers}
		report, err := mutator.Process(commandContext(cmd), files, passes.Default(sc.Resolver))
		if err != nil {
			return handleError(ErrInternal, err, "")
		}

		broken, err := site.BrokenLinks(root, files)
		if err != nil {
			return handleError(ErrSiteUnreadable, err, "")
		}

		leftovers, err := site.Prune(root, sc.Tables.PrunePatterns, true)
		if err != nil {
			return handleError(ErrSiteConfigInvalid, err, "")
		}

		result := &checkResult{
			Root:      root,
			Pages:     len(sc.Inventory.Pages),
			Files:     len(files),
			site:      sc,
			report:    report,
			Broken:    broken,
			Leftovers: leftovers,
		}
		problems := result.problems()

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"pages":         result.Pages,
				"files":         result.Files,
				"collisions":    sc.Inventory.Collisions,
				"skipped":       sc.Inventory.Skipped,
				"non_canonical": sc.Inventory.NonCanonical,
				"pending":       fixData(report)["modified"],
				"failures":      report.Failures,
				"diagnostics":   report.Diagnostics,
				"broken_links":  broken,
				"leftovers":     leftovers,
				"problems":      problems,
			}, &Meta{Count: problems})
			return nil
		}

		md := result.markdown()
		rendered, err := ui.RenderMarkdown(md, ui.NewDisplayContext().TermWidth)
		if err != nil {
			rendered = md
		}
		fmt.Print(rendered)

		if problems > 0 {
			return fmt.Errorf("check found %d %s", problems, ui.Plural(problems, "problem", "problems"))
		}
		fmt.Println(ui.Success("No problems found"))
		return nil
	},
}

type checkResult struct {
	Root      string
	Pages     int
	Files     int
	Broken    []site.BrokenLink
	Leftovers []string

	site   *siteContext
	report *batch.Report
}

func (r *checkResult) problems() int {
	return len(r.site.Inventory.Collisions) + r.report.Changed + len(r.report.Failures) + len(r.Broken)
}

// markdown builds the human report rendered with glamour.
func (r *checkResult) markdown() string {
	var b strings.Builder
	inv := r.site.Inventory

	fmt.Fprintf(&b, "# Site check\n\n")
	fmt.Fprintf(&b, "%d pages, %d HTML files in `%s`\n\n", r.Pages, r.Files, r.Root)

	section := func(title string, n int) {
		fmt.Fprintf(&b, "\n## %s (%d)\n\n", title, n)
	}

	if len(inv.Collisions) > 0 {
		section("Collisions", len(inv.Collisions))
		for _, c := range inv.Collisions {
			fmt.Fprintf(&b, "- %s `%s`: %s (first kept)\n", c.Kind, c.Key, codeList(c.Paths))
		}
	}
	if len(inv.Skipped) > 0 {
		section("Skipped folders", len(inv.Skipped))
		for _, s := range inv.Skipped {
			fmt.Fprintf(&b, "- `%s`: %s\n", s.Folder, s.Err)
		}
	}
	if r.report.Changed > 0 {
		section("Pending rewrites", r.report.Changed)
		for _, f := range r.report.Files {
			if f.Status == batch.StatusModified {
				fmt.Fprintf(&b, "- `%s`: %s\n", f.Path, strings.Join(f.Passes, ", "))
			}
		}
	}
	if len(r.report.Failures) > 0 {
		section("Unreadable files", len(r.report.Failures))
		for _, f := range r.report.Failures {
			fmt.Fprintf(&b, "- `%s`: %s\n", f.Path, f.Error)
		}
	}
	if len(r.report.Diagnostics) > 0 {
		section("Unresolved links", len(r.report.Diagnostics))
		for _, d := range r.report.Diagnostics {
			fmt.Fprintf(&b, "- `%s`: %s (\"%s\")\n", d.File, d.Message, d.Text)
		}
	}
	if len(r.Broken) > 0 {
		section("Broken links", len(r.Broken))
		for _, l := range r.Broken {
			fmt.Fprintf(&b, "- `%s` links to missing `%s`\n", l.File, l.Target)
		}
	}
	if len(r.Leftovers) > 0 {
		section("Leftover export files", len(r.Leftovers))
		fmt.Fprintf(&b, "Remove them with `sitefix prune`.\n\n")
		for _, name := range r.Leftovers {
			fmt.Fprintf(&b, "- `%s`\n", name)
		}
	}
	return b.String()
}

func codeList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "`" + s + "`"
	}
	return strings.Join(quoted, ", ")
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
