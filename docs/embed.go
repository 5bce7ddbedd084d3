// Package docs bundles the long-form guides shown by `sitefix docs`.
package docs

import "embed"

// FS contains the Markdown guides bundled with the sitefix binary, one topic
// per file.
//
//go:embed *.md
var FS embed.FS
