// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package flash carries toast notifications across a redirect in a signed
// cookie, and to HTMX requests through the HX-Trigger response header.
package flash

import (
	"encoding/gob"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	cookieName = "pd_flash"
	flashKey   = "toasts"

	// TriggerEvent is the client-side event raised for HTMX toasts.
	TriggerEvent = "toast"
)

// Type is the toast severity.
type Type string

const (
	Success Type = "success"
	Error   Type = "error"
	Info    Type = "info"
)

// Toast is one transient notification.
type Toast struct {
	Type    Type   `json:"type"`
	Message string `json:"message"`
}

func init() {
	gob.Register(Toast{})
}

// Store reads and writes toasts in a signed cookie.
type Store struct {
	cookies *sessions.CookieStore
}

// New creates a Store whose cookie is signed with secret.
func New(secret []byte, secure bool) *Store {
	cs := sessions.NewCookieStore(secret)
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Store{cookies: cs}
}

// Add queues t for the next rendered page.
func (s *Store) Add(w http.ResponseWriter, r *http.Request, t Toast) {
	sess, err := s.cookies.Get(r, cookieName)
	if err != nil {
		// A cookie signed with a rotated secret decodes to a fresh session.
		slog.Debug("flash cookie reset", "error", err)
	}
	sess.AddFlash(t, flashKey)
	if err := sess.Save(r, w); err != nil {
		slog.Error("flash save failed", "error", err)
	}
}

// Pop returns and clears the queued toasts.
func (s *Store) Pop(w http.ResponseWriter, r *http.Request) []Toast {
	sess, err := s.cookies.Get(r, cookieName)
	if err != nil {
		return nil
	}
	raw := sess.Flashes(flashKey)
	if len(raw) == 0 {
		return nil
	}
	if err := sess.Save(r, w); err != nil {
		slog.Error("flash save failed", "error", err)
	}
	out := make([]Toast, 0, len(raw))
	for _, v := range raw {
		if t, ok := v.(Toast); ok {
			out = append(out, t)
		}
	}
	return out
}

// Trigger attaches toasts to an HTMX response. The client listens for
// the TriggerEvent and renders each entry.
func Trigger(w http.ResponseWriter, toasts ...Toast) {
	if len(toasts) == 0 {
		return
	}
	payload, err := json.Marshal(map[string][]Toast{TriggerEvent: toasts})
	if err != nil {
		return
	}
	w.Header().Set("HX-Trigger", string(payload))
}

// Succeeded builds a success toast.
func Succeeded(msg string) Toast { return Toast{Type: Success, Message: msg} }

// Failed builds an error toast.
func Failed(msg string) Toast { return Toast{Type: Error, Message: msg} }
