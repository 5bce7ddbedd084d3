package passes

import (
	"html"
	"regexp"
	"strings"

	"github.com/estimation-maison/sitefix/internal/paths"
	"github.com/estimation-maison/sitefix/internal/resolver"
)

// "province de Namur." / "province d'Anvers." / "province d&rsquo;Anvers."
var provinceMention = regexp.MustCompile(`province (?:de |d'|d’|d&rsquo;|d&#8217;)([^.<]+)\.`)

type provinceLink struct {
	r   *resolver.Resolver
	hub *regexp.Regexp
}

// NewProvinceLink returns the pass that, on city pages, replaces the link to the
// generic province listing with a link to the page of the province the city
// belongs to.
func NewProvinceLink(r *resolver.Resolver) Pass {
	p := &provinceLink{r: r}
	if hub := r.Tables().ProvinceHub; hub != "" {
		p.hub = regexp.MustCompile(`\bhref=(["'])(?:\.\./)*` + regexp.QuoteMeta(hub) + `(["'])`)
	}
	return p
}

func (p *provinceLink) Name() string { return "province-link" }

func (p *provinceLink) Description() string {
	return "link city pages to their own province page"
}

func (p *provinceLink) cityPage(doc *Document) bool {
	prefix := p.r.Tables().FolderPrefix
	return prefix != "" && doc.Depth == 1 && strings.HasPrefix(doc.RelPath, prefix)
}

func (p *provinceLink) Applied(doc *Document) bool {
	if p.hub == nil || !p.cityPage(doc) {
		return true
	}
	return !p.hub.MatchString(doc.Content) || !provinceMention.MatchString(doc.Content)
}

func (p *provinceLink) Apply(doc *Document) (string, []Diagnostic) {
	m := provinceMention.FindStringSubmatch(doc.Content)
	if m == nil {
		return doc.Content, nil
	}
	name := strings.TrimSpace(html.UnescapeString(m[1]))
	prov, ok := p.r.ResolveProvince(name)
	if !ok {
		return doc.Content, []Diagnostic{{
			File:    doc.RelPath,
			Pass:    p.Name(),
			Text:    name,
			Message: "unknown province, generic province link kept",
		}}
	}
	href := paths.Href(doc.Depth, prov.Path)
	return p.hub.ReplaceAllString(doc.Content, "href=${1}"+escapeReplacement(href)+"${2}"), nil
}

// "province de Namur.." -> "province de Namur.", leaving ellipses alone.
var doubleDot = regexp.MustCompile(`(province (?:de |d'|d’|d&rsquo;|d&#8217;)[\p{L}\- ]+)\.\.([^.]|$)`)

type doubleDots struct{}

// NewDoubleDots returns the pass collapsing "province de X.." into a single dot.
func NewDoubleDots() Pass { return doubleDots{} }

func (doubleDots) Name() string { return "double-dots" }

func (doubleDots) Description() string {
	return `collapse "province de X.." typos`
}

func (doubleDots) Applied(doc *Document) bool {
	return !doubleDot.MatchString(doc.Content)
}

func (doubleDots) Apply(doc *Document) (string, []Diagnostic) {
	return doubleDot.ReplaceAllString(doc.Content, "$1.$2"), nil
}
