// Package testutil provides reusable fixtures for sitefix tests: a temporary
// exported site tree built from literal HTML snippets.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// TestSite represents a temporary exported site for testing.
type TestSite struct {
	Path  string
	t     *testing.T
	files map[string]string
}

// NewTestSite creates a new test site builder.
// Call Build() to create the actual directory.
func NewTestSite(t *testing.T) *TestSite {
	t.Helper()
	return &TestSite{
		t:     t,
		files: make(map[string]string),
	}
}

// WithFile adds a file to the site. The path is relative to the site root.
func (s *TestSite) WithFile(path, content string) *TestSite {
	s.files[path] = content
	return s
}

// WithPage adds folder/index.html with the given body wrapped in a minimal
// document. legacyID, when non-empty, is embedded as a WordPress shortlink.
func (s *TestSite) WithPage(folder, legacyID, body string) *TestSite {
	head := ""
	if legacyID != "" {
		head = fmt.Sprintf("<link rel='shortlink' href='https://estimation-maison.be/?p=%s' />", legacyID)
	}
	return s.WithFile(folder+"/index.html", PageHTML(head, body))
}

// WithSiteYAML sets the sitefix.yaml content for the site.
func (s *TestSite) WithSiteYAML(yaml string) *TestSite {
	s.files["sitefix.yaml"] = yaml
	return s
}

// Build creates the site directory and all configured files.
func (s *TestSite) Build() *TestSite {
	s.t.Helper()

	s.Path = s.t.TempDir()

	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.WriteFile(name, s.files[name])
	}
	return s
}

// WriteFile writes a file into the built site, creating directories as needed.
func (s *TestSite) WriteFile(relPath, content string) {
	s.t.Helper()
	fullPath := filepath.Join(s.Path, relPath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		s.t.Fatalf("failed to create directory %s: %v", dir, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		s.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}
}

// ReadFile reads a file from the site.
func (s *TestSite) ReadFile(relPath string) string {
	s.t.Helper()
	fullPath := filepath.Join(s.Path, relPath)
	content, err := os.ReadFile(fullPath)
	if err != nil {
		s.t.Fatalf("failed to read file %s: %v", fullPath, err)
	}
	return string(content)
}

// FileExists checks if a file exists in the site.
func (s *TestSite) FileExists(relPath string) bool {
	s.t.Helper()
	_, err := os.Stat(filepath.Join(s.Path, relPath))
	return err == nil
}

// Abs returns the absolute path of a site-relative path.
func (s *TestSite) Abs(relPath string) string {
	return filepath.Join(s.Path, relPath)
}

// PageHTML wraps head and body fragments into a minimal exported page.
func PageHTML(head, body string) string {
	return "<!DOCTYPE html>\n<html><head>" + head + "</head>\n<body>\n" + body + "\n</body></html>\n"
}
