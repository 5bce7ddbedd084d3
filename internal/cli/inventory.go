package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/estimation-maison/sitefix/internal/ui"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "List the pages found in the site and their legacy IDs",
	Long: `Scans the first-level folders of the site and prints the page inventory used
to resolve links: folder, slug, WordPress page ID and title. Collisions, skipped
folders and folder names that are not canonical slugs are reported after the
table.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, code, err := loadSite(getSitePath())
		if err != nil {
			return handleError(code, err, "")
		}
		inv := sc.Inventory

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"pages":         inv.Pages,
				"collisions":    inv.Collisions,
				"skipped":       inv.Skipped,
				"non_canonical": inv.NonCanonical,
			}, &Meta{Count: len(inv.Pages)})
			return nil
		}

		if len(inv.Pages) == 0 {
			fmt.Println(ui.Info("No pages found"))
			return nil
		}

		tbl := ui.NewResultsTable(ui.NewDisplayContext(), ui.InventoryLayout)
		for i, p := range inv.Pages {
			label := p.Folder
			if p.Slug != p.Folder {
				label = fmt.Sprintf("%s %s", p.Folder, ui.Hint("("+p.Slug+")"))
			}
			tbl.AddRow(ui.ResultRow{
				Num:   i + 1,
				Cells: []string{ui.FormatRowNum(i+1, len(inv.Pages)), label, p.LegacyID, ui.TruncateWithEllipsis(p.Title, 50)},
			})
		}
		fmt.Println(tbl.Render())
		fmt.Printf("%s %s\n", ui.Header("Pages"), ui.Count(len(inv.Pages), "page", "pages"))

		for _, c := range inv.Collisions {
			fmt.Println(ui.Warningf("%s %q claimed by %v (first kept)", c.Kind, c.Key, c.Paths))
		}
		for _, s := range inv.Skipped {
			fmt.Println(ui.Warningf("skipped %s: %s", s.Folder, s.Err))
		}
		for _, f := range inv.NonCanonical {
			fmt.Println(ui.Infof("folder %s is not a canonical slug; only fuzzy matches can reach it", ui.FilePath(f)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inventoryCmd)
}
