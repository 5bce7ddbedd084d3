// Package passes implements the rewrite pipeline applied to each exported page.
//
// A pass is a pure transformation of one document's content. Every pass exposes
// Applied, a predicate telling whether there is anything left for it to do, so a
// second run of the pipeline over its own output is a no-op.
package passes

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/estimation-maison/sitefix/internal/paths"
	"github.com/estimation-maison/sitefix/internal/resolver"
)

// Document is one page as seen by the passes.
type Document struct {
	RelPath string // site-root-relative, '/' separated
	Depth   int
	Content string
}

// NewDocument builds a Document, deriving its depth from relPath.
func NewDocument(relPath, content string) *Document {
	return &Document{RelPath: relPath, Depth: paths.Depth(relPath), Content: content}
}

// Diagnostic reports an item a pass could not handle cleanly.
type Diagnostic struct {
	File    string `json:"file"`
	Pass    string `json:"pass"`
	Text    string `json:"text"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: [%s] %s (%q)", d.File, d.Pass, d.Message, d.Text)
}

// Pass is one idempotent rewrite step.
type Pass interface {
	Name() string
	Description() string
	// Applied reports whether doc already satisfies the pass.
	Applied(doc *Document) bool
	// Apply returns the rewritten content. It must not modify doc.
	Apply(doc *Document) (string, []Diagnostic)
}

// Pipeline runs passes in their declared order.
type Pipeline struct {
	passes []Pass
}

// NewPipeline creates a pipeline from passes, in order.
func NewPipeline(passes ...Pass) *Pipeline {
	return &Pipeline{passes: passes}
}

// Default returns the standard pipeline for a site.
func Default(r *resolver.Resolver) *Pipeline {
	t := r.Tables()
	return NewPipeline(
		NewWordPressCleanup(t.SiteURL),
		NewLegacyLinks(r),
		NewFlatPages(r.Inventory(), t.IndexFile),
		NewDottedProvinceLinks(r),
		NewRedirects(t.Redirects),
		NewProvinceLink(r),
		NewDoubleDots(),
	)
}

// Passes returns the passes in order.
func (p *Pipeline) Passes() []Pass {
	return append([]Pass(nil), p.passes...)
}

// Select returns a pipeline restricted to the named passes, keeping the declared
// order. An empty selection returns p unchanged.
func (p *Pipeline) Select(names []string) (*Pipeline, error) {
	if len(names) == 0 {
		return p, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var selected []Pass
	for _, pass := range p.passes {
		if want[pass.Name()] {
			selected = append(selected, pass)
			delete(want, pass.Name())
		}
	}
	for n := range want {
		return nil, fmt.Errorf("unknown pass %q", n)
	}
	return NewPipeline(selected...), nil
}

// Outcome is the result of running a pipeline over one document.
type Outcome struct {
	Content     string
	Changed     bool
	Applied     []string // passes that changed the content
	Diagnostics []Diagnostic
}

// Run applies every pass whose Applied predicate is false, in order.
func (p *Pipeline) Run(doc Document) Outcome {
	original := doc.Content
	var out Outcome
	for _, pass := range p.passes {
		if pass.Applied(&doc) {
			continue
		}
		content, diags := pass.Apply(&doc)
		out.Diagnostics = append(out.Diagnostics, diags...)
		if content != doc.Content {
			out.Applied = append(out.Applied, pass.Name())
			doc.Content = content
		}
	}
	out.Content = doc.Content
	out.Changed = doc.Content != original
	return out
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// anchorText returns the visible text of an anchor body.
func anchorText(body string) string {
	return strings.TrimSpace(html.UnescapeString(tagPattern.ReplaceAllString(body, "")))
}
