// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown converts question descriptions and solutions into HTML
// using goldmark. Raw HTML in the source is escaped, since content is
// authored through the backend by any admin.
package markdown

import (
	"bytes"
	"html/template"
	"strings"

	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// DefaultLanguage is the highlighter used for solutions.
const DefaultLanguage = "javascript"

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,         // tables, strikethrough, autolinks, task lists
		extension.Typographer, // smart quotes and dashes
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
			highlighting.WithGuessLanguage(true),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
)

// ToHTML converts Markdown source into HTML.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Code renders source as one highlighted code block in lang. The fence is
// made longer than any backtick run inside source so it cannot be closed
// early.
func Code(source, lang string) (string, error) {
	if lang == "" {
		lang = DefaultLanguage
	}
	fence := strings.Repeat("`", max(3, longestRun(source, '`')+1))
	var b strings.Builder
	b.WriteString(fence)
	b.WriteString(lang)
	b.WriteByte('\n')
	b.WriteString(source)
	if !strings.HasSuffix(source, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(fence)
	b.WriteByte('\n')
	return ToHTML(b.String())
}

// Safe renders source for templates, falling back to escaped text if
// conversion fails.
func Safe(source string) template.HTML {
	out, err := ToHTML(source)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(out)
}

// SafeCode is Code for templates.
func SafeCode(source, lang string) template.HTML {
	out, err := Code(source, lang)
	if err != nil {
		return template.HTML("<pre><code>" + template.HTMLEscapeString(source) + "</code></pre>")
	}
	return template.HTML(out)
}

func longestRun(s string, c byte) int {
	best, cur := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			cur++
			best = max(best, cur)
		} else {
			cur = 0
		}
	}
	return best
}
