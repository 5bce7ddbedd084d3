// Package inventory builds the per-run lookup tables of an exported site: folder
// slug -> canonical path and legacy WordPress ID -> canonical path.
//
// The inventory is rebuilt from disk on every invocation and never mutated after
// Build returns.
package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/estimation-maison/sitefix/internal/paths"
	"github.com/estimation-maison/sitefix/internal/slugs"
)

// ErrCollisions is returned by Inventory.Err when two pages claim the same key.
var ErrCollisions = errors.New("inventory has colliding keys")

// Legacy ID markers, tried in order. The querystring form appears in the
// shortlink/canonical tags of the export, the REST form in its alternate links.
var legacyIDMarkers = []*regexp.Regexp{
	regexp.MustCompile(`\?p=(\d+)`),
	regexp.MustCompile(`wp/v2/pages/(\d+)`),
}

// Page is a first-level page of the exported site.
type Page struct {
	RelPath  string // "prix-m2-a-namur/index.html"
	Folder   string // "prix-m2-a-namur"
	Slug     string // "namur"
	LegacyID string // "2811", empty when the page carries none
	Depth    int
	Title    string // first <h1>, display only
}

// CollisionKind names the table a collision happened in.
type CollisionKind string

const (
	CollisionSlug     CollisionKind = "slug"
	CollisionLegacyID CollisionKind = "legacy_id"
)

// Collision records every path that claimed the same key. Paths[0] keeps the
// mapping; the others are ignored for resolution.
type Collision struct {
	Kind  CollisionKind `json:"kind"`
	Key   string        `json:"key"`
	Paths []string      `json:"paths"`
}

// Skipped is a folder whose index document could not be read.
type Skipped struct {
	Folder string `json:"folder"`
	Err    string `json:"error"`
}

// Options controls how a site tree is scanned.
type Options struct {
	// FolderPrefix is stripped from folder names to derive slugs.
	FolderPrefix string
	// IndexFile is the document read in each folder. Defaults to index.html.
	IndexFile string
}

// Inventory holds the lookup tables for one run.
type Inventory struct {
	Root  string
	Pages []Page

	slugToPath map[string]string
	slugOrder  []string
	idToPath   map[string]string
	paths      map[string]struct{}

	Collisions   []Collision
	Skipped      []Skipped
	NonCanonical []string // folders whose derived slug is not a canonical slug
}

// Build scans the first-level folders of root in lexical order.
//
// Unreadable or missing index documents are recorded in Skipped. Only a failure to
// list root itself is returned as an error.
func Build(root string, opts Options) (*Inventory, error) {
	if opts.IndexFile == "" {
		opts.IndexFile = "index.html"
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read site root %s: %w", root, err)
	}

	var pages []Page
	var skipped []Skipped
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		indexPath := filepath.Join(root, name, opts.IndexFile)
		content, err := os.ReadFile(indexPath)
		if err != nil {
			skipped = append(skipped, Skipped{Folder: name, Err: err.Error()})
			continue
		}

		relPath := name + "/" + filepath.ToSlash(opts.IndexFile)
		pages = append(pages, Page{
			RelPath:  relPath,
			Folder:   name,
			Slug:     slugs.FolderSlug(name, opts.FolderPrefix),
			LegacyID: ExtractLegacyID(string(content)),
			Depth:    paths.Depth(relPath),
			Title:    extractTitle(string(content)),
		})
	}

	inv := New(pages)
	inv.Root = root
	inv.Skipped = skipped
	return inv, nil
}

// New builds an inventory from already discovered pages, in the given order.
func New(pages []Page) *Inventory {
	inv := &Inventory{
		Pages:      pages,
		slugToPath: make(map[string]string, len(pages)),
		idToPath:   make(map[string]string),
		paths:      make(map[string]struct{}, len(pages)),
	}

	collisionAt := make(map[string]int)
	record := func(kind CollisionKind, key, kept, path string) {
		ck := string(kind) + "\x00" + key
		if i, ok := collisionAt[ck]; ok {
			inv.Collisions[i].Paths = append(inv.Collisions[i].Paths, path)
			return
		}
		collisionAt[ck] = len(inv.Collisions)
		inv.Collisions = append(inv.Collisions, Collision{Kind: kind, Key: key, Paths: []string{kept, path}})
	}

	for _, p := range pages {
		inv.paths[p.RelPath] = struct{}{}

		if p.Slug != "" {
			if kept, ok := inv.slugToPath[p.Slug]; ok {
				record(CollisionSlug, p.Slug, kept, p.RelPath)
			} else {
				inv.slugToPath[p.Slug] = p.RelPath
				inv.slugOrder = append(inv.slugOrder, p.Slug)
			}
			if !slugs.IsCanonical(p.Slug) {
				inv.NonCanonical = append(inv.NonCanonical, p.Folder)
			}
		}

		if p.LegacyID != "" {
			if kept, ok := inv.idToPath[p.LegacyID]; ok {
				record(CollisionLegacyID, p.LegacyID, kept, p.RelPath)
			} else {
				inv.idToPath[p.LegacyID] = p.RelPath
			}
		}
	}

	return inv
}

// ExtractLegacyID returns the first legacy WordPress ID found in content, trying
// the querystring marker before the REST path marker. Empty when neither matches.
func ExtractLegacyID(content string) string {
	for _, re := range legacyIDMarkers {
		if m := re.FindStringSubmatch(content); m != nil {
			return m[1]
		}
	}
	return ""
}

func extractTitle(content string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

// PathForSlug returns the canonical path registered for slug.
func (inv *Inventory) PathForSlug(slug string) (string, bool) {
	p, ok := inv.slugToPath[slug]
	return p, ok
}

// PathForID returns the canonical path of the page carrying legacy ID id.
func (inv *Inventory) PathForID(id string) (string, bool) {
	p, ok := inv.idToPath[id]
	return p, ok
}

// Slugs returns the slug keys in scan order.
func (inv *Inventory) Slugs() []string {
	return append([]string(nil), inv.slugOrder...)
}

// IDs returns the legacy IDs, numerically sorted.
func (inv *Inventory) IDs() []string {
	ids := make([]string, 0, len(inv.idToPath))
	for id := range inv.idToPath {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if len(ids[i]) != len(ids[j]) {
			return len(ids[i]) < len(ids[j])
		}
		return ids[i] < ids[j]
	})
	return ids
}

// HasPath reports whether relPath is the index document of a scanned page.
func (inv *Inventory) HasPath(relPath string) bool {
	_, ok := inv.paths[relPath]
	return ok
}

// Err returns ErrCollisions (wrapped with a count) if any key was claimed twice.
func (inv *Inventory) Err() error {
	if len(inv.Collisions) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d collision(s)", ErrCollisions, len(inv.Collisions))
}
