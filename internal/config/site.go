package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/estimation-maison/sitefix/internal/slugs"
)

// SiteConfigFile is the per-site configuration file, stored at the site root.
const SiteConfigFile = "sitefix.yaml"

// SiteConfig represents site-level configuration from sitefix.yaml.
//
// Every field is optional. Missing scalars and lists take the built-in defaults
// for the estimation-maison export; legacy_pages entries are merged over the
// default table.
type SiteConfig struct {
	// FolderPrefix is stripped from city folder names to derive their slug.
	FolderPrefix string `yaml:"folder_prefix,omitempty"`

	// IndexFile is the document read in each first-level folder.
	IndexFile string `yaml:"index_file,omitempty"`

	// HubPage is the fallback target for links that cannot be resolved.
	HubPage string `yaml:"hub_page,omitempty"`

	// ProvinceHub is the generic province listing that city pages link to
	// before their province link is specialised.
	ProvinceHub string `yaml:"province_hub,omitempty"`

	// SiteURL is the absolute origin of the live site; absolute links to it are
	// made relative.
	SiteURL string `yaml:"site_url,omitempty"`

	// LabelPrefixes are stripped from anchor text before city resolution
	// ("Estimation immobilière à Namur" -> "Namur").
	LabelPrefixes []string `yaml:"label_prefixes,omitempty"`

	// LegacyPages maps WordPress page IDs of top-level pages to canonical paths.
	LegacyPages map[string]string `yaml:"legacy_pages,omitempty"`

	// Provinces is the hand-authored province table.
	Provinces []ProvinceConfig `yaml:"provinces,omitempty"`

	// Redirects rewrites hrefs to retired pages.
	Redirects []Redirect `yaml:"redirects,omitempty"`

	// PrunePatterns are glob patterns of export leftovers at the site root.
	PrunePatterns []string `yaml:"prune_patterns,omitempty"`
}

// ProvinceConfig is one province with the spellings it may appear under.
type ProvinceConfig struct {
	Name     string   `yaml:"name"`
	Path     string   `yaml:"path"`
	Variants []string `yaml:"variants,omitempty"`
}

// Redirect maps a retired root-relative page to its replacement.
type Redirect struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// DefaultSiteConfig returns the built-in tables for the estimation-maison export.
func DefaultSiteConfig() *SiteConfig {
	return &SiteConfig{
		FolderPrefix: "prix-m2-a-",
		IndexFile:    "index.html",
		HubPage:      "estimation-par-ville/index.html",
		ProvinceHub:  "prix-m2-par-province/index.html",
		SiteURL:      "https://estimation-maison.be/",
		LabelPrefixes: []string{
			"Estimation immobilière à ",
			"Prix m² à ",
		},
		LegacyPages: map[string]string{
			"3":    "index.html",
			"15":   "estimation-maison/index.html",
			"27":   "estimation-appartement/index.html",
			"30":   "estimation-bien-immobilier/index.html",
			"139":  "a-propos/index.html",
			"1516": "prix-m2-par-province/index.html",
			"2805": "estimation-par-ville/index.html",
			"2845": "mentions-legales/index.html",
			"2860": "politique-de-confidentialite/index.html",
			"2739": "prix-m2-par-province/index.html",
			"2741": "prix-m2-par-province/index.html",
			"2743": "prix-m2-par-province/index.html",
			"2745": "prix-m2-par-province/index.html",
			"2747": "prix-m2-par-province/index.html",
			"2749": "prix-m2-par-province/index.html",
			"2751": "prix-m2-par-province/index.html",
			"2753": "prix-m2-par-province/index.html",
			"2755": "prix-m2-par-province/index.html",
			"2757": "prix-m2-par-province/index.html",
			"2759": "prix-m2-par-province/index.html",
		},
		Provinces: []ProvinceConfig{
			{Name: "Anvers", Path: "prix-m2-anvers/index.html", Variants: []string{"antwerpen"}},
			{Name: "Brabant flamand", Path: "prix-m2-brabant-flamand/index.html"},
			{Name: "Brabant wallon", Path: "prix-m2-brabant-wallon/index.html"},
			{Name: "Bruxelles", Path: "prix-m2-bruxelles/index.html"},
			{Name: "Flandre occidentale", Path: "prix-m2-flandre-occidentale/index.html"},
			{Name: "Flandre orientale", Path: "prix-m2-flandre-orientale/index.html"},
			{Name: "Hainaut", Path: "prix-m2-hainaut/index.html"},
			{Name: "Liège", Path: "prix-m2-liege/index.html"},
			{Name: "Limbourg", Path: "prix-m2-limbourg/index.html"},
			{Name: "Luxembourg", Path: "prix-m2-luxembourg/index.html"},
			{Name: "Namur", Path: "prix-m2-namur/index.html"},
		},
		Redirects: []Redirect{
			{From: "simulateur.html", To: "index.html"},
		},
		PrunePatterns: []string{
			"index.html%3Fp=*.html",
			"xmlrpc.php*",
			"simulateur.html",
		},
	}
}

// LoadSiteConfig loads sitefix.yaml from the site root, layered over the defaults.
// A missing file yields the defaults.
func LoadSiteConfig(siteRoot string) (*SiteConfig, error) {
	cfg := DefaultSiteConfig()

	path := filepath.Join(siteRoot, SiteConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var override SiteConfig
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.merge(&override)
	return cfg, nil
}

func (c *SiteConfig) merge(o *SiteConfig) {
	if o.FolderPrefix != "" {
		c.FolderPrefix = o.FolderPrefix
	}
	if o.IndexFile != "" {
		c.IndexFile = o.IndexFile
	}
	if o.HubPage != "" {
		c.HubPage = o.HubPage
	}
	if o.ProvinceHub != "" {
		c.ProvinceHub = o.ProvinceHub
	}
	if o.SiteURL != "" {
		c.SiteURL = o.SiteURL
	}
	if len(o.LabelPrefixes) > 0 {
		c.LabelPrefixes = o.LabelPrefixes
	}
	for id, path := range o.LegacyPages {
		if c.LegacyPages == nil {
			c.LegacyPages = make(map[string]string)
		}
		c.LegacyPages[id] = path
	}
	if len(o.Provinces) > 0 {
		c.Provinces = o.Provinces
	}
	if len(o.Redirects) > 0 {
		c.Redirects = o.Redirects
	}
	if len(o.PrunePatterns) > 0 {
		c.PrunePatterns = o.PrunePatterns
	}
}

// ProvinceEntry is one normalized spelling of a province.
type ProvinceEntry struct {
	// Key is the normalized variant ("flandre-occidentale", "antwerpen").
	Key string
	// Name is the canonical display name ("Flandre occidentale").
	Name string
	// Path is the canonical root-relative path of the province page.
	Path string
}

// Tables is the immutable lookup configuration built once per run and shared by
// pointer with the resolver and the rewrite passes.
type Tables struct {
	FolderPrefix  string
	IndexFile     string
	HubPage       string
	ProvinceHub   string
	SiteURL       string
	LabelPrefixes []string
	LegacyPages   map[string]string
	Provinces     []ProvinceEntry
	Redirects     []Redirect
	PrunePatterns []string
}

var digitsOnly = regexp.MustCompile(`^\d+$`)

// Tables validates the site configuration and expands it into lookup tables.
func (c *SiteConfig) Tables() (*Tables, error) {
	if strings.TrimSpace(c.HubPage) == "" {
		return nil, fmt.Errorf("hub_page is required")
	}
	if strings.TrimSpace(c.IndexFile) == "" {
		return nil, fmt.Errorf("index_file is required")
	}

	t := &Tables{
		FolderPrefix:  c.FolderPrefix,
		IndexFile:     c.IndexFile,
		HubPage:       c.HubPage,
		ProvinceHub:   c.ProvinceHub,
		SiteURL:       c.SiteURL,
		LabelPrefixes: append([]string(nil), c.LabelPrefixes...),
		LegacyPages:   make(map[string]string, len(c.LegacyPages)),
		Redirects:     append([]Redirect(nil), c.Redirects...),
		PrunePatterns: append([]string(nil), c.PrunePatterns...),
	}

	for id, path := range c.LegacyPages {
		if !digitsOnly.MatchString(id) {
			return nil, fmt.Errorf("legacy_pages: id %q is not numeric", id)
		}
		if path == "" {
			return nil, fmt.Errorf("legacy_pages: id %s has an empty path", id)
		}
		t.LegacyPages[id] = path
	}

	seen := make(map[string]string)
	for _, p := range c.Provinces {
		if p.Name == "" || p.Path == "" {
			return nil, fmt.Errorf("provinces: entry %q needs both name and path", p.Name)
		}
		for _, variant := range append([]string{p.Name}, p.Variants...) {
			key := slugs.Normalize(variant)
			if key == "" {
				continue
			}
			if owner, ok := seen[key]; ok {
				if owner != p.Name {
					return nil, fmt.Errorf("provinces: variant %q claimed by both %s and %s", variant, owner, p.Name)
				}
				continue
			}
			seen[key] = p.Name
			t.Provinces = append(t.Provinces, ProvinceEntry{Key: key, Name: p.Name, Path: p.Path})
		}
	}

	for _, r := range c.Redirects {
		if r.From == "" || r.To == "" {
			return nil, fmt.Errorf("redirects: from and to are required")
		}
	}

	return t, nil
}
