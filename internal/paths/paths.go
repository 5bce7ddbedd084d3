// Package paths provides canonical helpers for site-relative file paths:
// - depth of a file below the site root (e.g. "prix-m2-a-namur/index.html" -> 1)
// - the "../" prefix that climbs back to the root from that depth
// - rewritten hrefs pointing at a root-relative canonical path
package paths

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathOutsideSite is returned when a path escapes the site root.
var ErrPathOutsideSite = errors.New("path is outside site root")

// normalizeRelPath normalizes a site-relative path-like value:
// - converts OS separators to '/'
// - trims leading "./" and leading "/"
// - collapses repeated '/'
func normalizeRelPath(p string) string {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p
}

// Depth returns the number of directory levels between the site root and the
// directory holding relPath. "index.html" is depth 0, "a/index.html" depth 1.
func Depth(relPath string) int {
	return strings.Count(normalizeRelPath(relPath), "/")
}

// Prefix returns "../" repeated depth times. Depth zero (or negative) yields "".
func Prefix(depth int) string {
	if depth <= 0 {
		return ""
	}
	return strings.Repeat("../", depth)
}

// Href builds the href for resolved as seen from a file at depth.
// resolved is assumed root-relative and separator-clean; it is not normalized.
func Href(depth int, resolved string) string {
	return Prefix(depth) + resolved
}

// RelFromRoot returns path relative to root using '/' separators.
func RelFromRoot(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("relative path for %s: %w", path, err)
	}
	return filepath.ToSlash(rel), nil
}

// ValidateWithinSite returns ErrPathOutsideSite if path does not live under root.
func ValidateWithinSite(root, path string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrPathOutsideSite, path)
	}
	return nil
}
