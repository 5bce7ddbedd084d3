// Package resolver maps link evidence (a legacy WordPress ID and/or the visible
// anchor text) to the canonical path of a page in the site inventory.
package resolver

import (
	"strings"

	"github.com/estimation-maison/sitefix/internal/config"
	"github.com/estimation-maison/sitefix/internal/inventory"
	"github.com/estimation-maison/sitefix/internal/slugs"
)

// Method records which rule produced a resolution.
type Method string

const (
	MethodLegacyID   Method = "legacy_id"
	MethodExact      Method = "exact"
	MethodFuzzy      Method = "fuzzy"
	MethodUnresolved Method = "unresolved"
)

// LinkMatch is the evidence extracted from one anchor.
type LinkMatch struct {
	// Text is the visible label, used as a fuzzy key.
	Text string
	// LegacyID is the numeric WordPress ID embedded in the href, if any.
	LegacyID string
}

// Result is the outcome of resolving one LinkMatch.
type Result struct {
	// Path is the canonical root-relative path (empty if unresolved).
	Path string `json:"path,omitempty"`

	// Method is the rule that produced Path.
	Method Method `json:"method"`

	// Key is the normalized text used for slug lookups.
	Key string `json:"key,omitempty"`

	// Candidates lists every slug that satisfied the fuzzy containment test, in
	// scan order. Path is the first one; more than one means the match was
	// ambiguous.
	Candidates []string `json:"candidates,omitempty"`
}

// Resolved reports whether a path was found.
func (r Result) Resolved() bool {
	return r.Method != MethodUnresolved
}

// Ambiguous reports whether the fuzzy fallback had several candidates.
func (r Result) Ambiguous() bool {
	return r.Method == MethodFuzzy && len(r.Candidates) > 1
}

// Resolver resolves links against one inventory snapshot and the static tables.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	inv    *inventory.Inventory
	tables *config.Tables
}

// New creates a Resolver. tables may be nil when no static tables are needed.
func New(inv *inventory.Inventory, tables *config.Tables) *Resolver {
	if tables == nil {
		tables = &config.Tables{}
	}
	return &Resolver{inv: inv, tables: tables}
}

// Resolve returns the best canonical path for m.
//
// Priority: legacy ID (inventory first, then the static legacy page table), exact
// slug of the normalized text, then the first slug in scan order that contains or
// is contained in the normalized text.
func (r *Resolver) Resolve(m LinkMatch) Result {
	if m.LegacyID != "" {
		if p, ok := r.inv.PathForID(m.LegacyID); ok {
			return Result{Path: p, Method: MethodLegacyID}
		}
		if p, ok := r.tables.LegacyPages[m.LegacyID]; ok {
			return Result{Path: p, Method: MethodLegacyID}
		}
	}

	key := slugs.Normalize(r.CityName(m.Text))
	if key == "" {
		return Result{Method: MethodUnresolved}
	}

	if p, ok := r.inv.PathForSlug(key); ok {
		return Result{Path: p, Method: MethodExact, Key: key}
	}

	var candidates []string
	for _, slug := range r.inv.Slugs() {
		if strings.Contains(key, slug) || strings.Contains(slug, key) {
			candidates = append(candidates, slug)
		}
	}
	if len(candidates) > 0 {
		p, _ := r.inv.PathForSlug(candidates[0])
		return Result{Path: p, Method: MethodFuzzy, Key: key, Candidates: candidates}
	}

	return Result{Method: MethodUnresolved, Key: key}
}

// ResolveOr resolves m and substitutes fallback when nothing matched.
func (r *Resolver) ResolveOr(m LinkMatch, fallback string) (string, Result) {
	res := r.Resolve(m)
	if !res.Resolved() {
		return fallback, res
	}
	return res.Path, res
}

// CityName strips a configured label prefix from anchor text:
// "Estimation immobilière à Namur" -> "Namur".
func (r *Resolver) CityName(text string) string {
	text = strings.TrimSpace(text)
	for _, prefix := range r.tables.LabelPrefixes {
		if strings.HasPrefix(text, prefix) {
			return strings.TrimSpace(text[len(prefix):])
		}
	}
	return text
}

// ResolveProvince finds a province entry by name using the same strategy as
// Resolve: exact normalized key, then bidirectional containment in table order.
func (r *Resolver) ResolveProvince(name string) (config.ProvinceEntry, bool) {
	key := slugs.Normalize(name)
	if key == "" {
		return config.ProvinceEntry{}, false
	}
	for _, p := range r.tables.Provinces {
		if p.Key == key {
			return p, true
		}
	}
	for _, p := range r.tables.Provinces {
		if strings.Contains(key, p.Key) || strings.Contains(p.Key, key) {
			return p, true
		}
	}
	return config.ProvinceEntry{}, false
}

// HubPage returns the configured fallback target for unresolved links.
func (r *Resolver) HubPage() string {
	return r.tables.HubPage
}

// Inventory returns the snapshot the resolver reads from.
func (r *Resolver) Inventory() *inventory.Inventory {
	return r.inv
}

// Tables returns the static lookup tables.
func (r *Resolver) Tables() *config.Tables {
	return r.tables
}
