package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	builtindocs "github.com/estimation-maison/sitefix/docs"
	"github.com/estimation-maison/sitefix/internal/ui"
)

var (
	docsStdoutIsTerminal = func() bool { return isatty.IsTerminal(os.Stdout.Fd()) }
	docsMarkdownRender   = ui.RenderMarkdown
)

type docsTopicView struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

var docsCmd = &cobra.Command{
	Use:   "docs [topic]",
	Short: "Read the guides bundled with sitefix",
	Long: `Read long-form guides bundled into the sitefix binary.

Without a topic, lists the available guides. For command usage, use
'sitefix help <command>'.

Examples:
  sitefix docs
  sitefix docs passes
  sitefix docs resolution --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topics, err := listDocsTopics(builtindocs.FS)
		if err != nil {
			return handleError(ErrInternal, err, "Rebuild sitefix so bundled docs are available")
		}

		if len(args) == 0 {
			return outputDocsTopics(topics)
		}

		topic, ok := findDocsTopic(topics, args[0])
		if !ok {
			ids := make([]string, 0, len(topics))
			for _, t := range topics {
				ids = append(ids, t.ID)
			}
			return handleErrorWithDetails(ErrInvalidInput,
				fmt.Sprintf("unknown docs topic %q", args[0]),
				"Run 'sitefix docs' to list topics",
				map[string]interface{}{"topics": ids})
		}

		content, err := fs.ReadFile(builtindocs.FS, topic.Path)
		if err != nil {
			return handleError(ErrInternal, err, "")
		}
		return outputDocsTopicContent(topic, string(content))
	},
}

// listDocsTopics returns one topic per Markdown file, titled by its first
// level-one heading.
func listDocsTopics(fsys fs.FS) ([]docsTopicView, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	var topics []docsTopicView
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".md" {
			continue
		}
		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, err
		}
		id := strings.TrimSuffix(e.Name(), ".md")
		topics = append(topics, docsTopicView{
			ID:    id,
			Title: docsTitle(string(data), id),
			Path:  e.Name(),
		})
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].ID < topics[j].ID })
	return topics, nil
}

func docsTitle(content, fallback string) string {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return fallback
}

func findDocsTopic(topics []docsTopicView, query string) (docsTopicView, bool) {
	query = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(query)), ".md")
	for _, t := range topics {
		if t.ID == query {
			return t, true
		}
	}
	return docsTopicView{}, false
}

func outputDocsTopics(topics []docsTopicView) error {
	if isJSONOutput() {
		outputSuccess(map[string]interface{}{"topics": topics}, &Meta{Count: len(topics)})
		return nil
	}

	fmt.Println(ui.Header("Guides"))
	for _, t := range topics {
		fmt.Printf("  %s  %s\n", ui.Accent.Render(t.ID), ui.Hint(t.Title))
	}
	fmt.Println()
	fmt.Println(ui.Hint("Read one with: sitefix docs <topic>"))
	return nil
}

func outputDocsTopicContent(topic docsTopicView, content string) error {
	if isJSONOutput() {
		outputSuccess(map[string]interface{}{
			"id":      topic.ID,
			"title":   topic.Title,
			"content": content,
		}, nil)
		return nil
	}

	if !docsStdoutIsTerminal() {
		fmt.Print(content)
		return nil
	}

	rendered, err := docsMarkdownRender(content, ui.NewDisplayContext().TermWidth)
	if err != nil {
		fmt.Print(content)
		return nil
	}
	fmt.Print(rendered)
	return nil
}

func init() {
	rootCmd.AddCommand(docsCmd)
}
