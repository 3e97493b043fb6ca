// Package web holds the server-rendered templates and static assets.
package web

import "embed"

// EmbeddedFS contains templates/ and static/ for release builds.
//
//go:embed templates static
var EmbeddedFS embed.FS
