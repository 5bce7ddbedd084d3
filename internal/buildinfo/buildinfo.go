// Package buildinfo holds release metadata set at link time, e.g.
//
//	go build -ldflags "-X github.com/estimation-maison/sitefix/internal/buildinfo.Version=v0.3.0"
//
// The values stay empty for local builds; `sitefix version` then falls back to
// the module build information.
package buildinfo

var (
	Version = ""
	Commit  = ""
	Date    = ""
)
