// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the PrepDeck pages.
// It supports full-page and HTMX partial rendering, automatically detecting
// the request type via the HX-Request header.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"prepdeck/internal/flash"
	"prepdeck/internal/markdown"
	"prepdeck/internal/middleware"
	"prepdeck/internal/models"
	"prepdeck/internal/session"
)

//go:embed templates/*.html templates/partials/*.html
var templateFS embed.FS

// ThemeCookie stores the light/dark preference in the browser.
const ThemeCookie = "pd_theme"

// PageData holds all data passed to page templates.
type PageData struct {
	Title     string         // Page title for <title> tag
	Section   string         // Active navbar section (e.g., "categories", "profile")
	Session   *session.Data  // Current user session (nil if unauthenticated)
	CSRFToken string         // CSRF token for forms and HTMX headers
	Theme     string         // "light" or "dark"
	Status    int            // HTTP status, 200 when zero
	Data      map[string]any // Page-specific data
	Flashes   []flash.Toast  // One-time notification messages
}

// User returns the signed-in user or nil.
func (p *PageData) User() *models.User {
	if p == nil || p.Session == nil {
		return nil
	}
	return p.Session.User
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	partials  *template.Template
	funcMap   template.FuncMap
	flashes   *flash.Store
}

// standaloneTemplates lists templates that render as full HTML pages
// without the base layout (they have their own <html>, <head>, etc.).
var standaloneTemplates = map[string]bool{
	"signin": true,
	"signup": true,
}

// New creates a Renderer by parsing all templates from the embedded
// filesystem. Each page template is paired with the base layout and the
// shared partials. Queued flash toasts are read from flashes when a page
// renders; flashes may be nil.
func New(devMode bool, flashes *flash.Store) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		flashes:   flashes,
	}
	r.funcMap = template.FuncMap{
		// deref safely dereferences a string pointer for use in templates.
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		// isDev returns true when the app runs in development mode.
		"isDev": func() bool {
			return devMode
		},
		"markdown": markdown.Safe,
		"code": func(source string) template.HTML {
			return markdown.SafeCode(source, markdown.DefaultLanguage)
		},
		// The verified filter arrives as any because a missing map entry
		// reaches the template as an untyped nil.
		"visible": func(verified, canModify bool, filter any) bool {
			return models.Visible(verified, canModify, asFilter(filter))
		},
		"filterLabel": func(filter any) string {
			return models.FilterLabel(asFilter(filter))
		},
		"filterValue": func(filter any) string {
			return models.FormatVerifiedFilter(asFilter(filter))
		},
		"filters": func() []models.FilterOption {
			return models.FilterOptions
		},
		// dict builds a map from alternating keys and values so a partial
		// can receive more than one argument.
		"dict": func(kv ...any) (map[string]any, error) {
			if len(kv)%2 != 0 {
				return nil, fmt.Errorf("dict: odd number of arguments")
			}
			m := make(map[string]any, len(kv)/2)
			for i := 0; i < len(kv); i += 2 {
				k, ok := kv[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
				}
				m[k] = kv[i+1]
			}
			return m, nil
		},
	}

	partials, err := template.New("partials").Funcs(r.funcMap).ParseFS(templateFS, "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse partials: %w", err)
	}
	r.partials = partials

	pages, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob templates: %w", err)
	}

	// Parse each page template paired with the base layout.
	for _, page := range pages {
		name := path.Base(page)
		if name == "base.html" {
			continue
		}
		tmplName := strings.TrimSuffix(name, ".html")

		root := "base.html"
		files := []string{"templates/base.html", "templates/partials/*.html", page}
		if standaloneTemplates[tmplName] {
			root = name
			files = []string{"templates/partials/*.html", page}
		}

		tmpl, err := template.New(root).Funcs(r.funcMap).ParseFS(templateFS, files...)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[tmplName] = tmpl
	}

	return r, nil
}

// Page renders a full page or an HTMX partial, depending on the request
// headers. For HTMX requests, only the "content" block is sent and queued
// toasts travel in the HX-Trigger header.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}
	rn.prepare(w, r, data)

	execName := "base.html"
	if standaloneTemplates[name] {
		execName = name + ".html"
	}
	if middleware.IsHTMX(r) {
		execName = "content"
		flash.Trigger(w, data.Flashes...)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, execName, data); err != nil {
		slog.Error("render page failed", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	rn.write(w, data.Status, &buf)
}

// Partial renders one named partial for an HTMX swap. Toasts are attached
// through the HX-Trigger header.
func (rn *Renderer) Partial(w http.ResponseWriter, r *http.Request, name string, data *PageData, toasts ...flash.Toast) {
	rn.prepare(w, r, data)
	flash.Trigger(w, append(data.Flashes, toasts...)...)

	var buf bytes.Buffer
	if err := rn.partials.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("render partial failed", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	rn.write(w, data.Status, &buf)
}

// prepare injects the request-scoped fields every template expects.
func (rn *Renderer) prepare(w http.ResponseWriter, r *http.Request, data *PageData) {
	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}
	if data.Theme == "" {
		data.Theme = ThemeFromRequest(r)
	}
	if rn.flashes != nil {
		data.Flashes = append(data.Flashes, rn.flashes.Pop(w, r)...)
	}
}

func (rn *Renderer) write(w http.ResponseWriter, status int, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status != 0 {
		w.WriteHeader(status)
	}
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}

func asFilter(v any) *bool {
	f, _ := v.(*bool)
	return f
}

// ThemeFromRequest returns the stored theme, "light" by default.
func ThemeFromRequest(r *http.Request) string {
	if c, err := r.Cookie(ThemeCookie); err == nil && c.Value == "dark" {
		return "dark"
	}
	return "light"
}
