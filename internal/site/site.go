// Package site walks an exported site tree: it lists the HTML files to rewrite,
// removes leftover export artifacts and finds relative links to missing files.
package site

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/estimation-maison/sitefix/internal/audit"
	"github.com/estimation-maison/sitefix/internal/paths"
)

// Discover returns every .html file under root as '/'-separated relative paths in
// lexical order. Hidden entries and the tool's state directory are skipped.
func Discover(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			return nil
		}
		if p == root {
			return nil
		}

		name := d.Name()
		if strings.HasPrefix(name, ".") || name == audit.Dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(name, ".html") {
			return nil
		}

		rel, err := paths.RelFromRoot(root, p)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk site %s: %w", root, err)
	}
	return files, nil
}

// Prune removes the regular files directly under root that match any of the
// glob patterns and returns their names in lexical order. With dryRun nothing is
// removed.
func Prune(root string, patterns []string, dryRun bool) ([]string, error) {
	seen := make(map[string]bool)
	var matched []string
	for _, pattern := range patterns {
		if strings.ContainsRune(pattern, '/') {
			return nil, fmt.Errorf("prune pattern %q must not contain a path separator", pattern)
		}
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid prune pattern %q: %w", pattern, err)
		}
		hits, err := filepath.Glob(filepath.Join(root, pattern))
		if err != nil {
			return nil, err
		}
		for _, hit := range hits {
			name := filepath.Base(hit)
			if seen[name] {
				continue
			}
			info, err := os.Lstat(hit)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			seen[name] = true
			matched = append(matched, name)
		}
	}
	sort.Strings(matched)

	if dryRun {
		return matched, nil
	}
	for _, name := range matched {
		if err := os.Remove(filepath.Join(root, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	return matched, nil
}

// BrokenLink is a relative href whose target is not in the site tree.
type BrokenLink struct {
	File   string `json:"file"`
	Href   string `json:"href"`
	Target string `json:"target"`
	Text   string `json:"text,omitempty"`
}

// BrokenLinks scans the anchors of files (relative to root) and reports relative
// hrefs that point at missing files. Absolute URLs, fragments and mail links
// are ignored. Unreadable files are skipped.
func BrokenLinks(root string, files []string) ([]BrokenLink, error) {
	var broken []BrokenLink
	for _, rel := range files {
		f, err := os.Open(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", rel, err)
		}

		doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			target, ok := linkTarget(rel, href)
			if !ok || targetExists(root, target) {
				return
			}
			broken = append(broken, BrokenLink{
				File:   rel,
				Href:   href,
				Target: target,
				Text:   strings.TrimSpace(a.Text()),
			})
		})
	}
	return broken, nil
}

// linkTarget resolves href against the directory of the file it appears in.
// ok is false for hrefs that do not name a file of the site.
func linkTarget(fromRel, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "//") {
		return "", false
	}
	if u, err := url.Parse(href); err == nil && u.Scheme != "" {
		return "", false
	}
	if i := strings.IndexAny(href, "#?"); i >= 0 {
		href = href[:i]
	}
	if href == "" {
		return "", false
	}

	target := path.Join(path.Dir(fromRel), href)
	if strings.HasSuffix(href, "/") || target == "." {
		target = path.Join(target, "index.html")
	}
	return target, true
}

func targetExists(root, target string) bool {
	if target == ".." || strings.HasPrefix(target, "../") {
		return false
	}
	candidates := []string{target}
	if unescaped, err := url.PathUnescape(target); err == nil && unescaped != target {
		candidates = append(candidates, unescaped)
	}
	for _, c := range candidates {
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(c)))
		if err != nil {
			continue
		}
		if !info.IsDir() {
			return true
		}
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(c), "index.html")); err == nil {
			return true
		}
	}
	return false
}
