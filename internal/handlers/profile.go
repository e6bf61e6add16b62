// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"prepdeck/internal/apiclient"
	"prepdeck/internal/flash"
	"prepdeck/internal/form"
	"prepdeck/internal/imaging"
	"prepdeck/internal/middleware"
	"prepdeck/internal/models"
	"prepdeck/internal/render"
	"prepdeck/internal/storage"
)

// maxAvatarSize is the largest avatar upload accepted (5 MB).
const maxAvatarSize = 5 << 20

// Profile groups the account handlers.
type Profile struct {
	base
	// Storage is nil when no bucket is configured, which disables avatar
	// uploads.
	Storage *storage.Client
}

// NewProfile creates the profile handler group.
func NewProfile(d Deps, st *storage.Client) *Profile {
	return &Profile{base: newBase(d), Storage: st}
}

func profileForm() *form.Form {
	return form.New(
		form.Field{
			Name:     "firstName",
			Label:    "First name",
			Kind:     form.Text,
			Required: true,
			Validate: form.Rule("min=3", "First name must be at least 3 characters long"),
		},
		form.Field{
			Name:     "lastName",
			Label:    "Last name",
			Kind:     form.Text,
			Required: true,
			Validate: form.Rule("min=3", "Last name must be at least 3 characters long"),
		},
		form.Field{
			Name:     "phone",
			Label:    "Phone",
			Kind:     form.Tel,
			Required: true,
			Validate: form.Rule("min=10", "Phone must be at least 10 characters long"),
		},
	)
}

// Show renders the profile page filled with the session user.
func (p *Profile) Show(w http.ResponseWriter, r *http.Request) {
	f := profileForm()
	if u := middleware.UserFromCtx(r.Context()); u != nil {
		f.Fill(form.Values{"firstName": u.FirstName, "lastName": u.LastName, "phone": u.Phone})
	}
	p.page(w, r, f, 0, nil)
}

// Update saves the names and phone.
func (p *Profile) Update(w http.ResponseWriter, r *http.Request) {
	f := profileForm()
	f.Bind(formValues(r))

	var updated *models.User
	err := f.Submit(r.Context(), func(ctx context.Context, v form.Values) error {
		first, last, phone := v.Get("firstName"), v.Get("lastName"), v.Get("phone")
		var err error
		updated, err = p.client(r).UpdateUser(ctx, apiclient.UserPatch{FirstName: &first, LastName: &last, Phone: &phone})
		return err
	})
	switch {
	case err == nil:
	case errors.Is(err, form.ErrInvalid):
		p.page(w, r, f, http.StatusUnprocessableEntity, nil)
		return
	case errors.Is(err, form.ErrBusy):
		w.WriteHeader(http.StatusNoContent)
		return
	default:
		if p.expired(w, r, err) {
			return
		}
		logFailure(r, "update profile", err)
		p.page(w, r, f, statusFor(err), []flash.Toast{flash.Failed(apiclient.UserMessage(err))})
		return
	}

	p.userChanged(r, updated)
	p.Flashes.Add(w, r, flash.Succeeded("Profile updated successfully!"))
	middleware.Redirect(w, r, "/profile")
}

// Avatar uploads a new avatar, normalized to a square PNG, and removes the
// previous one from the bucket.
func (p *Profile) Avatar(w http.ResponseWriter, r *http.Request) {
	if p.Storage == nil {
		p.notFound(w, r)
		return
	}
	// Uploads are plain form posts, so failures go back as a flash.
	fail := func(msg string) {
		p.Flashes.Add(w, r, flash.Failed(msg))
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
	}

	file, _, err := r.FormFile("avatar")
	if err != nil {
		slog.Debug("avatar form read failed", "error", err)
		fail("Choose an image up to 5 MB.")
		return
	}
	defer file.Close()

	src, err := io.ReadAll(io.LimitReader(file, maxAvatarSize+1))
	if err != nil || len(src) > maxAvatarSize {
		fail("Choose an image up to 5 MB.")
		return
	}
	img, err := imaging.Avatar(src)
	if err != nil {
		if !errors.Is(err, imaging.ErrUnsupported) {
			slog.Error("avatar processing failed", "error", err)
		}
		fail("The image could not be read. Use PNG, JPEG, GIF or WebP.")
		return
	}

	user := middleware.UserFromCtx(r.Context())
	previous := user.AvatarURL()
	avatarURL, err := p.Storage.PutAvatar(r.Context(), user.Email, imaging.ContentType, img)
	if err != nil {
		slog.Error("avatar upload failed", "error", err)
		fail("The avatar could not be uploaded, please try again.")
		return
	}

	updated, err := p.client(r).UpdateUser(r.Context(), apiclient.UserPatch{Avatar: &avatarURL})
	if err != nil {
		if p.expired(w, r, err) {
			return
		}
		logFailure(r, "update avatar", err)
		// The backend kept the old avatar, so the new object is orphaned.
		if derr := p.Storage.DeleteAvatar(context.WithoutCancel(r.Context()), avatarURL); derr != nil {
			slog.Warn("orphaned avatar delete failed", "url", avatarURL, "error", derr)
		}
		fail(apiclient.UserMessage(err))
		return
	}

	if _, ok := p.Storage.ExtractKey(previous); ok && previous != avatarURL {
		if err := p.Storage.DeleteAvatar(context.WithoutCancel(r.Context()), previous); err != nil {
			slog.Warn("old avatar delete failed", "url", previous, "error", err)
		}
	}
	p.userChanged(r, updated)
	p.Flashes.Add(w, r, flash.Succeeded("Avatar updated successfully!"))
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// AdminMode switches the admin affordances on or off and reloads the page
// so every control re-renders for the new mode.
func (p *Profile) AdminMode(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if !user.IsAdmin() {
		p.toast(w, http.StatusForbidden, flash.Failed("Admin mode is only available to administrators."))
		return
	}
	on := r.FormValue("adminMode") == "true"

	updated, err := p.client(r).UpdateUser(r.Context(), apiclient.UserPatch{AdminMode: &on})
	if err != nil {
		p.failed(w, r, "toggle admin mode", err)
		return
	}
	p.userChanged(r, updated)

	msg := "Admin mode disabled."
	if on {
		msg = "Admin mode enabled."
	}
	p.Flashes.Add(w, r, flash.Succeeded(msg))
	if middleware.IsHTMX(r) {
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusOK)
		return
	}
	middleware.Redirect(w, r, middleware.SafeRedirect(refererPath(r)))
}

// userChanged stores the user returned by the backend in the session.
func (p *Profile) userChanged(r *http.Request, u *models.User) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || u == nil {
		return
	}
	next := *sess
	next.User = u
	if err := p.Sessions.Update(r.Context(), r, &next); err != nil {
		slog.Warn("session user update failed", "error", err)
	}
}

func (p *Profile) page(w http.ResponseWriter, r *http.Request, f *form.Form, status int, toasts []flash.Toast) {
	p.Renderer.Page(w, r, "profile", &render.PageData{
		Title:   "Profile",
		Section: "profile",
		Status:  status,
		Flashes: toasts,
		Data: map[string]any{
			"Form":         f,
			"AvatarUpload": p.Storage != nil,
		},
	})
}
