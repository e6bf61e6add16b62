// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"net/url"

	"prepdeck/internal/middleware"
	"prepdeck/internal/render"
)

// themeMaxAge keeps the preference for a year.
const themeMaxAge = 365 * 24 * 60 * 60

// Theme toggles between the light and dark theme and returns to the page
// the toggle was pressed on.
func Theme(secure bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next := "dark"
		if render.ThemeFromRequest(r) == "dark" {
			next = "light"
		}
		http.SetCookie(w, &http.Cookie{
			Name:     render.ThemeCookie,
			Value:    next,
			Path:     "/",
			MaxAge:   themeMaxAge,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
		middleware.Redirect(w, r, middleware.SafeRedirect(refererPath(r)))
	}
}

// refererPath returns the path and query of the Referer header, or "".
func refererPath(r *http.Request) string {
	u, err := url.Parse(r.Referer())
	if err != nil || u.Path == "" {
		return ""
	}
	if u.Host != "" && u.Host != r.Host {
		return ""
	}
	return u.RequestURI()
}
