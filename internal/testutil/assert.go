package testutil

import (
	"strings"
)

// AssertFileExists fails the test if the file does not exist.
func (s *TestSite) AssertFileExists(relPath string) {
	s.t.Helper()
	if !s.FileExists(relPath) {
		s.t.Errorf("expected file to exist: %s", relPath)
	}
}

// AssertFileNotExists fails the test if the file exists.
func (s *TestSite) AssertFileNotExists(relPath string) {
	s.t.Helper()
	if s.FileExists(relPath) {
		s.t.Errorf("expected file to not exist: %s", relPath)
	}
}

// AssertFileContains fails the test if the file does not contain the substring.
func (s *TestSite) AssertFileContains(relPath, substr string) {
	s.t.Helper()
	content := s.ReadFile(relPath)
	if !strings.Contains(content, substr) {
		s.t.Errorf("expected file %s to contain %q, got:\n%s", relPath, substr, content)
	}
}

// AssertFileNotContains fails the test if the file contains the substring.
func (s *TestSite) AssertFileNotContains(relPath, substr string) {
	s.t.Helper()
	content := s.ReadFile(relPath)
	if strings.Contains(content, substr) {
		s.t.Errorf("expected file %s to not contain %q, got:\n%s", relPath, substr, content)
	}
}
