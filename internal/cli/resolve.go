package cli

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/estimation-maison/sitefix/internal/config"
	"github.com/estimation-maison/sitefix/internal/paths"
	"github.com/estimation-maison/sitefix/internal/resolver"
	"github.com/estimation-maison/sitefix/internal/ui"
)

var (
	resolveID       string
	resolveFrom     string
	resolveProvince bool
)

var numericArg = regexp.MustCompile(`^\d+$`)

var resolveCmd = &cobra.Command{
	Use:   "resolve <text|id>",
	Short: "Show how a link would be resolved",
	Long: `Resolves link evidence against the current inventory and prints the canonical
path and the rule that produced it. A numeric argument is treated as a legacy
WordPress ID, anything else as anchor text.

Examples:
  sitefix resolve 2805
  sitefix resolve "Estimation immobilière à Namur" --from prix-m2-a-mons/index.html
  sitefix resolve "Namur" --id 2811
  sitefix resolve --province "Flandre-Occidentale"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := strings.TrimSpace(args[0])
		if input == "" {
			return handleErrorMsg(ErrMissingArgument, "nothing to resolve", "")
		}

		sc, code, err := loadSite(getSitePath())
		if err != nil {
			return handleError(code, err, "")
		}

		if resolveProvince {
			return outputProvince(sc, input)
		}

		m := resolver.LinkMatch{Text: input, LegacyID: resolveID}
		if resolveID == "" && numericArg.MatchString(input) {
			m = resolver.LinkMatch{LegacyID: input}
		}
		res := sc.Resolver.Resolve(m)

		depth := paths.Depth(resolveFrom)
		target := res.Path
		if !res.Resolved() {
			target = sc.Resolver.HubPage()
		}
		href := paths.Href(depth, target)

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"input":  m,
				"result": res,
				"href":   href,
			}, nil)
			return nil
		}

		if !res.Resolved() {
			fmt.Println(ui.Warningf("unresolved, falls back to %s", ui.FilePath(href)))
			return nil
		}
		fmt.Printf("%s %s\n", ui.FilePath(href), ui.Hint("("+string(res.Method)+")"))
		if res.Ambiguous() {
			fmt.Println(ui.Warningf("ambiguous: %s", strings.Join(res.Candidates, ", ")))
		}
		return nil
	},
}

func outputProvince(sc *siteContext, name string) error {
	prov, ok := sc.Resolver.ResolveProvince(name)
	if !ok {
		return handleErrorMsg(ErrInvalidInput, fmt.Sprintf("unknown province %q", name),
			"Provinces are listed in "+config.SiteConfigFile)
	}
	href := paths.Href(paths.Depth(resolveFrom), prov.Path)
	if isJSONOutput() {
		outputSuccess(map[string]interface{}{
			"province": prov,
			"href":     href,
		}, nil)
		return nil
	}
	fmt.Printf("%s %s\n", ui.FilePath(href), ui.Hint("("+prov.Name+")"))
	return nil
}

func init() {
	resolveCmd.Flags().StringVar(&resolveID, "id", "", "Legacy WordPress ID to try before the text")
	resolveCmd.Flags().StringVar(&resolveFrom, "from", "", "Site-relative file the link appears in (sets the ../ prefix)")
	resolveCmd.Flags().BoolVar(&resolveProvince, "province", false, "Resolve a province name instead of a page link")
	rootCmd.AddCommand(resolveCmd)
}
