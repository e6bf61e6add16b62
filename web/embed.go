// Package web provides embedded static assets (CSS, JS) for the PrepDeck
// pages, served at /static/. HTMX itself loads from the unpkg CDN.
package web

import "embed"

// StaticFS embeds the web/static/ directory tree.
//
//go:embed all:static
var StaticFS embed.FS
