package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/estimation-maison/sitefix/internal/config"
	"github.com/estimation-maison/sitefix/internal/inventory"
	"github.com/estimation-maison/sitefix/internal/passes"
	"github.com/estimation-maison/sitefix/internal/resolver"
	"github.com/estimation-maison/sitefix/internal/ui"
)

type passInfo struct {
	Order       int    `json:"order"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var passesCmd = &cobra.Command{
	Use:   "passes",
	Short: "List the rewrite passes in the order fix applies them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, err := config.DefaultSiteConfig().Tables()
		if err != nil {
			return handleError(ErrInternal, err, "")
		}
		pipeline := passes.Default(resolver.New(inventory.New(nil), tables))

		var infos []passInfo
		for i, p := range pipeline.Passes() {
			infos = append(infos, passInfo{Order: i + 1, Name: p.Name(), Description: p.Description()})
		}

		if isJSONOutput() {
			outputSuccess(infos, &Meta{Count: len(infos)})
			return nil
		}

		for _, p := range infos {
			fmt.Printf("%d. %s  %s\n", p.Order, ui.Accent.Render(p.Name), ui.Hint(p.Description))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(passesCmd)
}
