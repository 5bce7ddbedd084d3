package passes

import (
	"regexp"
	"strings"

	"github.com/estimation-maison/sitefix/internal/paths"
)

// WordPress API and feed discovery tags left behind by the export.
var wpLinkTag = regexp.MustCompile(`<link\b[^>]*\bhref=["'][^"']*(?:wp-json|feed/|comments/|xmlrpc)[^"']*["'][^>]*>[ \t]*\n?`)

// Tags whose href/src may point at the live site.
var linkingTag = regexp.MustCompile(`<(?:a|img|script|source|iframe)\b[^>]*>`)

type wordPressCleanup struct {
	siteURL string
	attr    *regexp.Regexp
}

// NewWordPressCleanup returns the pass removing WordPress API link tags and making
// absolute links to siteURL relative. The trailing slash of siteURL is optional in
// links. An empty siteURL disables the URL rewrite.
func NewWordPressCleanup(siteURL string) Pass {
	siteURL = strings.TrimRight(siteURL, "/")
	p := &wordPressCleanup{siteURL: siteURL}
	if siteURL != "" {
		p.attr = regexp.MustCompile(`\b(href|src)=(["'])` + regexp.QuoteMeta(siteURL) + `((?:[/#][^"']*)?)(["'])`)
	}
	return p
}

func (p *wordPressCleanup) Name() string { return "wp-cleanup" }

func (p *wordPressCleanup) Description() string {
	return "remove WordPress API link tags and make absolute site URLs relative"
}

func (p *wordPressCleanup) Applied(doc *Document) bool {
	if wpLinkTag.MatchString(doc.Content) {
		return false
	}
	if p.attr == nil {
		return true
	}
	for _, tag := range linkingTag.FindAllString(doc.Content, -1) {
		if p.attr.MatchString(tag) {
			return false
		}
	}
	return true
}

func (p *wordPressCleanup) Apply(doc *Document) (string, []Diagnostic) {
	out := wpLinkTag.ReplaceAllString(doc.Content, "")
	if p.attr == nil {
		return out, nil
	}
	prefix := paths.Prefix(doc.Depth)
	out = linkingTag.ReplaceAllStringFunc(out, func(tag string) string {
		return p.attr.ReplaceAllStringFunc(tag, func(m string) string {
			g := p.attr.FindStringSubmatch(m)
			rest := strings.TrimPrefix(g[3], "/")
			if rest == "" || strings.HasPrefix(rest, "#") {
				rest = "index.html" + rest
			}
			return g[1] + "=" + g[2] + prefix + rest + g[4]
		})
	})
	return out, nil
}
