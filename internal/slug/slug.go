// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug checks and builds the URL slugs that key categories,
// topics and questions.
package slug

import (
	gslug "github.com/gosimple/slug"
)

// maxLength bounds path parameters before they reach the backend.
const maxLength = 200

// Generate creates a URL-friendly slug from the given string.
// Example: "Data Structures & Algorithms" → "data-structures-and-algorithms"
func Generate(s string) string {
	return gslug.Make(s)
}

// Valid reports whether s is a well-formed slug that may be used as a
// backend path segment.
func Valid(s string) bool {
	return len(s) <= maxLength && gslug.IsSlug(s)
}
