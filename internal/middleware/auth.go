// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"prepdeck/internal/flash"
	"prepdeck/internal/models"
	"prepdeck/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// SessionKey is the context key for the session data.
	SessionKey contextKey = "session"
	// SessionIDKey is the context key for the session ID.
	SessionIDKey contextKey = "session_id"

	// PrevURLParam carries the page to return to after sign-in.
	PrevURLParam = "prevUrl"
)

// LoadSession retrieves the session from Valkey and stores it in the
// request context. Downstream handlers can access it via SessionFromCtx().
// It never calls the backend and does not enforce authentication.
func LoadSession(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := store.Get(r.Context(), r)
			if err != nil {
				// Treat as unauthenticated.
				slog.Warn("session load failed", "error", err, "request_id", RequestIDFromCtx(r.Context()))
				next.ServeHTTP(w, r)
				return
			}

			if data != nil {
				ctx := context.WithValue(r.Context(), SessionKey, data)
				ctx = context.WithValue(ctx, SessionIDKey, session.ID(r))
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser sends unauthenticated visitors to the sign-in page with the
// requested URL in prevUrl. Must be applied after LoadSession.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !SessionFromCtx(r.Context()).Authenticated() {
			RedirectToSignIn(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PublicOnly keeps signed-in users off the sign-in and sign-up pages by
// sending them on to prevUrl, or home.
func PublicOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromCtx(r.Context()).Authenticated() {
			Redirect(w, r, SafeRedirect(r.URL.Query().Get(PrevURLParam)))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdminMode returns 403 unless the user is an admin with admin
// mode switched on. Must be applied after RequireUser.
func RequireAdminMode(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !UserFromCtx(r.Context()).CanAdminister() {
			refuse(w, r, http.StatusForbidden, "Switch on admin mode to make changes.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSuperAdmin returns 403 unless the user may verify content.
func RequireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !UserFromCtx(r.Context()).CanVerify() {
			refuse(w, r, http.StatusForbidden, "Only super admins in admin mode can verify content.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RedirectToSignIn redirects to /signin, remembering where the user was.
// For HTMX requests the page the user is on is remembered, not the
// fragment URL.
func RedirectToSignIn(w http.ResponseWriter, r *http.Request) {
	prev := r.URL.RequestURI()
	if IsHTMX(r) {
		if cur, err := url.Parse(r.Header.Get("HX-Current-URL")); err == nil && cur.Path != "" {
			prev = cur.RequestURI()
		}
	}
	target := "/signin"
	if prev = SafeRedirect(prev); prev != "/" {
		target += "?" + PrevURLParam + "=" + url.QueryEscape(prev)
	}
	Redirect(w, r, target)
}

// Redirect issues a 303, or an HX-Redirect for HTMX requests so the whole
// page navigates instead of swapping the target into a fragment.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	if IsHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// SafeRedirect returns raw if it is a same-origin absolute path and "/"
// otherwise. Protocol-relative URLs, backslashes and schemes are refused.
func SafeRedirect(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return "/"
	}
	if strings.ContainsAny(raw, "\\\r\n\t") {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return raw
}

// IsHTMX reports whether the request was made by HTMX.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// refuse answers with status. HTMX does not swap error responses, so an
// HTMX caller gets toast as a toast with the swap cancelled.
func refuse(w http.ResponseWriter, r *http.Request, status int, toast string) {
	if IsHTMX(r) {
		w.Header().Set("HX-Reswap", "none")
		flash.Trigger(w, flash.Failed(toast))
	}
	http.Error(w, http.StatusText(status), status)
}

// SessionFromCtx extracts the session data from the request context.
// Returns nil if no session is loaded (user is not authenticated).
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}

// SessionIDFromCtx returns the ID of the loaded session, or "".
func SessionIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(SessionIDKey).(string)
	return id
}

// UserFromCtx returns the signed-in user, or nil.
func UserFromCtx(ctx context.Context) *models.User {
	if data := SessionFromCtx(ctx); data != nil {
		return data.User
	}
	return nil
}
