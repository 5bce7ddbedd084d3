package passes

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/estimation-maison/sitefix/internal/config"
	"github.com/estimation-maison/sitefix/internal/inventory"
	"github.com/estimation-maison/sitefix/internal/paths"
	"github.com/estimation-maison/sitefix/internal/resolver"
	"github.com/estimation-maison/sitefix/internal/slugs"
)

// href="(../)*name.html"
var flatHref = regexp.MustCompile(`\bhref=(["'])(?:\.\./)*([a-z0-9][a-z0-9-]*)\.html(["'])`)

type flatPages struct {
	inv       *inventory.Inventory
	indexFile string
}

// NewFlatPages returns the pass turning links to "<folder>.html" into links to
// the folder's index document when that folder is an inventory page.
func NewFlatPages(inv *inventory.Inventory, indexFile string) Pass {
	if indexFile == "" {
		indexFile = "index.html"
	}
	return &flatPages{inv: inv, indexFile: indexFile}
}

func (p *flatPages) Name() string { return "flat-pages" }

func (p *flatPages) Description() string {
	return "point <folder>.html links at <folder>/index.html"
}

func (p *flatPages) target(name string) (string, bool) {
	rel := name + "/" + p.indexFile
	return rel, p.inv.HasPath(rel)
}

func (p *flatPages) Applied(doc *Document) bool {
	for _, g := range flatHref.FindAllStringSubmatch(doc.Content, -1) {
		if _, ok := p.target(g[2]); ok && g[1] == g[3] {
			return false
		}
	}
	return true
}

func (p *flatPages) Apply(doc *Document) (string, []Diagnostic) {
	out := flatHref.ReplaceAllStringFunc(doc.Content, func(m string) string {
		g := flatHref.FindStringSubmatch(m)
		rel, ok := p.target(g[2])
		if !ok || g[1] != g[3] {
			return m
		}
		return "href=" + g[1] + paths.Href(doc.Depth, rel) + g[3]
	})
	return out, nil
}

// href="(../)*name./" and href="(../)*name." left by a broken export of the
// province pages.
var dottedHref = regexp.MustCompile(`\bhref=(["'])(?:\.\./)*([a-z0-9][a-z0-9-]*)\./?(["'])`)

type dottedProvinceLinks struct {
	// folders maps "prix-m2-<variant>" to its province.
	folders map[string]config.ProvinceEntry
	// prefixes are the folder prefixes of province pages ("prix-m2-").
	prefixes     []string
	folderPrefix string
}

// NewDottedProvinceLinks returns the pass repairing province hrefs that end in a
// stray dot, such as "prix-m2-antwerpen./". Only exact province folder names are
// rewritten; city folders and other dotted hrefs are left alone.
func NewDottedProvinceLinks(r *resolver.Resolver) Pass {
	t := r.Tables()
	p := &dottedProvinceLinks{
		folders:      make(map[string]config.ProvinceEntry),
		folderPrefix: t.FolderPrefix,
	}
	seen := make(map[string]bool)
	for _, prov := range t.Provinces {
		folder, _, _ := strings.Cut(prov.Path, "/")
		if _, ok := p.folders[folder]; !ok {
			p.folders[folder] = prov
		}
		canonical := slugs.Normalize(prov.Name)
		if canonical == "" || !strings.HasSuffix(folder, canonical) {
			continue
		}
		prefix := strings.TrimSuffix(folder, canonical)
		if prefix == "" {
			continue
		}
		if !seen[prefix] {
			seen[prefix] = true
			p.prefixes = append(p.prefixes, prefix)
		}
		if _, ok := p.folders[prefix+prov.Key]; !ok {
			p.folders[prefix+prov.Key] = prov
		}
	}
	return p
}

func (p *dottedProvinceLinks) Name() string { return "dotted-province" }

func (p *dottedProvinceLinks) Description() string {
	return "repair province links ending in a stray dot"
}

func (p *dottedProvinceLinks) lookup(name string) (config.ProvinceEntry, bool) {
	if p.folderPrefix != "" && strings.HasPrefix(name, p.folderPrefix) {
		return config.ProvinceEntry{}, false
	}
	prov, ok := p.folders[name]
	return prov, ok
}

// looksProvincial reports whether name has a province folder prefix without
// being a city folder.
func (p *dottedProvinceLinks) looksProvincial(name string) bool {
	if p.folderPrefix != "" && strings.HasPrefix(name, p.folderPrefix) {
		return false
	}
	for _, prefix := range p.prefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func (p *dottedProvinceLinks) Applied(doc *Document) bool {
	for _, g := range dottedHref.FindAllStringSubmatch(doc.Content, -1) {
		if _, ok := p.lookup(g[2]); ok && g[1] == g[3] {
			return false
		}
	}
	return true
}

func (p *dottedProvinceLinks) Apply(doc *Document) (string, []Diagnostic) {
	var diags []Diagnostic
	out := dottedHref.ReplaceAllStringFunc(doc.Content, func(m string) string {
		g := dottedHref.FindStringSubmatch(m)
		if g[1] != g[3] {
			return m
		}
		prov, ok := p.lookup(g[2])
		if !ok {
			if p.looksProvincial(g[2]) {
				diags = append(diags, Diagnostic{
					File:    doc.RelPath,
					Pass:    p.Name(),
					Text:    g[2],
					Message: "dotted link does not name a known province",
				})
			}
			return m
		}
		return "href=" + g[1] + paths.Href(doc.Depth, prov.Path) + g[1]
	})
	return out, diags
}

type redirectRule struct {
	pattern *regexp.Regexp
	to      string
}

type redirects struct {
	rules []redirectRule
}

// NewRedirects returns the pass rewriting hrefs to retired pages.
func NewRedirects(table []config.Redirect) Pass {
	p := &redirects{}
	for _, r := range table {
		p.rules = append(p.rules, redirectRule{
			pattern: regexp.MustCompile(`\bhref=(["'])(?:\.\./)*` + regexp.QuoteMeta(r.From) + `(["'])`),
			to:      r.To,
		})
	}
	return p
}

func (p *redirects) Name() string { return "redirects" }

func (p *redirects) Description() string {
	return fmt.Sprintf("rewrite links to retired pages (%d rules)", len(p.rules))
}

func (p *redirects) Applied(doc *Document) bool {
	for _, rule := range p.rules {
		if rule.pattern.MatchString(doc.Content) {
			return false
		}
	}
	return true
}

func (p *redirects) Apply(doc *Document) (string, []Diagnostic) {
	out := doc.Content
	for _, rule := range p.rules {
		href := paths.Href(doc.Depth, rule.to)
		out = rule.pattern.ReplaceAllString(out, "href=${1}"+escapeReplacement(href)+"${2}")
	}
	return out, nil
}

// escapeReplacement protects '$' in literal replacement text.
func escapeReplacement(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}
