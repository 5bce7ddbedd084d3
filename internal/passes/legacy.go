package passes

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/estimation-maison/sitefix/internal/paths"
	"github.com/estimation-maison/sitefix/internal/resolver"
)

// Anchors whose href is an exported querystring page or a REST resource path.
// Groups: attributes before href, opening quote, href, querystring ID, resource ID,
// closing quote, attributes after href, anchor body. Tag, attribute and
// percent-escape case varies between exports.
var legacyAnchor = regexp.MustCompile(
	`(?i)<a\b([^>]*?)\s+href=(["'])((?:\.\./)*index\.html%3Fp=(\d+)\.html|[^"'>]*?wp/v2/pages/(\d+)/?)(["'])([^>]*)>((?s:.*?))</a>`)

type legacyLinks struct {
	r *resolver.Resolver
}

// NewLegacyLinks returns the pass rewriting legacy WordPress anchors to canonical
// relative paths.
func NewLegacyLinks(r *resolver.Resolver) Pass {
	return &legacyLinks{r: r}
}

func (p *legacyLinks) Name() string { return "legacy-links" }

func (p *legacyLinks) Description() string {
	return "resolve legacy WordPress page links by ID, then by anchor text"
}

func (p *legacyLinks) Applied(doc *Document) bool {
	return !legacyAnchor.MatchString(doc.Content)
}

func (p *legacyLinks) Apply(doc *Document) (string, []Diagnostic) {
	var diags []Diagnostic
	out := legacyAnchor.ReplaceAllStringFunc(doc.Content, func(anchor string) string {
		g := legacyAnchor.FindStringSubmatch(anchor)
		if g[2] != g[6] {
			return anchor
		}
		id := g[4]
		if id == "" {
			id = g[5]
		}
		text := anchorText(g[8])

		path, res := p.r.ResolveOr(resolver.LinkMatch{Text: text, LegacyID: id}, p.r.HubPage())
		switch {
		case !res.Resolved():
			diags = append(diags, Diagnostic{
				File:    doc.RelPath,
				Pass:    p.Name(),
				Text:    text,
				Message: fmt.Sprintf("unresolved link (id %s), using %s", id, path),
			})
		case res.Ambiguous():
			diags = append(diags, Diagnostic{
				File:    doc.RelPath,
				Pass:    p.Name(),
				Text:    text,
				Message: fmt.Sprintf("ambiguous match %s, candidates: %s", res.Path, strings.Join(res.Candidates, ", ")),
			})
		}
		if path == "" {
			return anchor
		}

		q := g[2]
		return "<a" + g[1] + " href=" + q + paths.Href(doc.Depth, path) + q + g[7] + ">" + g[8] + "</a>"
	})
	return out, diags
}
