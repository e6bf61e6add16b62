// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for PrepDeck. Handlers are
// grouped by concern (auth, catalog, questions, profile) and receive
// their dependencies through the handler struct.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"prepdeck/internal/apiclient"
	"prepdeck/internal/debounce"
	"prepdeck/internal/flash"
	"prepdeck/internal/middleware"
	"prepdeck/internal/models"
	"prepdeck/internal/pager"
	"prepdeck/internal/render"
	"prepdeck/internal/session"
	"prepdeck/internal/slug"
	"prepdeck/internal/store"
)

// Deps holds what every handler group needs.
type Deps struct {
	Renderer *render.Renderer
	Sessions *session.Store
	Flashes  *flash.Store
	API      *apiclient.Client
	State    *store.Store
	Guard    *pager.Guard
	Searches *debounce.Group

	PageSize       int
	SearchDebounce time.Duration
}

// base carries the shared dependencies and helpers of all handler groups.
type base struct {
	Deps
}

func newBase(d Deps) base {
	if d.Guard == nil {
		d.Guard = pager.NewGuard()
	}
	if d.Searches == nil {
		d.Searches = debounce.NewGroup()
	}
	if d.PageSize <= 0 {
		d.PageSize = apiclient.DefaultPageSize
	}
	return base{Deps: d}
}

// client returns the API client acting as the signed-in user.
func (b *base) client(r *http.Request) *apiclient.Client {
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		return b.API.WithToken(sess.Token)
	}
	return b.API
}

// scope returns the state of the requesting session.
func (b *base) scope(r *http.Request) *store.Scope {
	return b.State.Scope(middleware.SessionIDFromCtx(r.Context()))
}

// listKey names a list of the requesting session for the pager guard and
// the search debouncer.
func listKey(r *http.Request, list string) string {
	return middleware.SessionIDFromCtx(r.Context()) + ":" + list
}

// searching reports whether the request is a keystroke of a search box
// that swaps the given results container.
func searching(r *http.Request, target string) bool {
	return middleware.IsHTMX(r) && r.Header.Get("HX-Target") == target
}

// settle waits out the search debounce for list. It reports false when a
// newer keystroke superseded this request, which then answers 204 so
// HTMX leaves the page alone.
func (b *base) settle(w http.ResponseWriter, r *http.Request, list string) bool {
	if b.SearchDebounce <= 0 {
		return true
	}
	if b.Searches.Wait(r.Context(), listKey(r, list), b.SearchDebounce) {
		return true
	}
	w.WriteHeader(http.StatusNoContent)
	return false
}

// verifiedFilter reads the verified filter. Only users who can verify
// see the filter menu, so it is ignored for everyone else.
func verifiedFilter(r *http.Request) *bool {
	if !middleware.UserFromCtx(r.Context()).CanVerify() {
		return nil
	}
	return models.ParseVerifiedFilter(r.URL.Query().Get("verified"))
}

// slugParam returns the named URL parameter if it is a well-formed slug.
// Otherwise it answers 404 and returns false.
func (b *base) slugParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	s := chi.URLParam(r, name)
	if !slug.Valid(s) {
		b.notFound(w, r)
		return "", false
	}
	return s, true
}

// notFound renders the 404 page, or a toast for HTMX requests.
func (b *base) notFound(w http.ResponseWriter, r *http.Request) {
	if middleware.IsHTMX(r) {
		b.toast(w, http.StatusNotFound, flash.Failed("Not found."))
		return
	}
	b.Renderer.Page(w, r, "error", &render.PageData{
		Title:  "Not found",
		Status: http.StatusNotFound,
		Data:   map[string]any{"Message": "The page you are looking for does not exist."},
	})
}

// toast answers an HTMX request with toasts and no swap.
func (b *base) toast(w http.ResponseWriter, status int, toasts ...flash.Toast) {
	flash.Trigger(w, toasts...)
	w.Header().Set("HX-Reswap", "none")
	w.WriteHeader(status)
}

// expired handles a backend 401: the session is dropped and the user is
// sent to sign in. It reports whether err was a 401.
func (b *base) expired(w http.ResponseWriter, r *http.Request, err error) bool {
	if !apiclient.IsUnauthorized(err) {
		return false
	}
	slog.Info("backend rejected session token", "path", r.URL.Path)
	ctx := context.WithoutCancel(r.Context())
	if err := b.State.Clear(ctx, middleware.SessionIDFromCtx(r.Context())); err != nil {
		slog.Warn("clear session state failed", "error", err)
	}
	if err := b.Sessions.Destroy(ctx, w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	middleware.RedirectToSignIn(w, r)
	return true
}

// failed answers a failed HTMX action. A 401 signs the user out; anything
// else is logged and surfaced as an error toast.
func (b *base) failed(w http.ResponseWriter, r *http.Request, op string, err error) {
	if b.expired(w, r, err) {
		return
	}
	logFailure(r, op, err)
	b.toast(w, statusFor(err), flash.Failed(apiclient.UserMessage(err)))
}

// logFailure logs a backend failure. Business errors are the caller's
// fault and log at warn level.
func logFailure(r *http.Request, op string, err error) {
	if errors.Is(err, context.Canceled) {
		slog.Debug(op+" cancelled", "path", r.URL.Path)
		return
	}
	if _, ok := apiclient.AsAPIError(err); ok {
		slog.Warn(op+" rejected", "error", err, "request_id", middleware.RequestIDFromCtx(r.Context()))
		return
	}
	slog.Error(op+" failed", "error", err, "request_id", middleware.RequestIDFromCtx(r.Context()))
}

// statusFor maps a backend failure to the status of our response.
func statusFor(err error) int {
	if apiErr, ok := apiclient.AsAPIError(err); ok && apiErr.Status >= 400 && apiErr.Status < 500 {
		return apiErr.Status
	}
	if apiErr, ok := apiclient.AsAPIError(err); ok && apiErr.Status < 400 {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}

// patchEntry replaces the cached entry for oldSlug with updated. A rename
// that changed the slug drops the old entry and adds the new one.
func patchEntry[T models.Slugged](ctx context.Context, list store.Repository[T], oldSlug string, updated T) error {
	if updated.GetSlug() == oldSlug {
		ok, err := list.Update(ctx, updated)
		if err != nil || ok {
			return err
		}
	} else if err := list.Remove(ctx, oldSlug); err != nil {
		return err
	}
	return list.Add(ctx, updated)
}
