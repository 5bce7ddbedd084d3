package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/estimation-maison/sitefix/internal/config"
	"github.com/estimation-maison/sitefix/internal/ui"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default sitefix.yaml at the site root",
	Long: `Writes sitefix.yaml with the built-in tables (folder prefix, hub page, legacy
page IDs, provinces, redirects, prune patterns) so they can be edited for the
site. Without a path the site is resolved from --site-path, --site or the
config file, falling back to the current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var root string
		if len(args) == 1 {
			root = args[0]
		} else {
			var err error
			if root, err = resolveSitePath(); err != nil {
				return handleError(ErrSiteNotFound, err, "")
			}
		}

		if info, err := os.Stat(root); err != nil || !info.IsDir() {
			return handleErrorMsg(ErrSiteNotFound, fmt.Sprintf("site not found: %s", root), "")
		}

		path, err := config.WriteSiteConfig(root, config.DefaultSiteConfig(), initForce)
		if err != nil {
			if _, statErr := os.Stat(path); statErr == nil && !initForce {
				return handleError(ErrFileExists, err, "Use --force to overwrite it")
			}
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"file": path}, nil)
			return nil
		}
		fmt.Println(ui.Successf("Wrote %s", ui.FilePath(path)))
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing sitefix.yaml")
	rootCmd.AddCommand(initCmd)
}
