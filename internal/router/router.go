// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for
// PrepDeck. Routes are grouped by the guard they need: public-only auth
// pages, signed-in pages, and admin-mode or super-admin actions.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"prepdeck/internal/handlers"
	"prepdeck/internal/middleware"
	"prepdeck/internal/session"
	"prepdeck/web"
)

// maxBodySize bounds every request body. Avatar uploads are the largest.
const maxBodySize = 8 << 20

// Config bundles what the router wires together.
type Config struct {
	Sessions *session.Store
	// AuthLimiter throttles sign-in and sign-up posts. Nil disables it.
	AuthLimiter *middleware.RateLimiter
	Secure      bool

	Auth      *handlers.Auth
	Catalog   *handlers.Catalog
	Questions *handlers.Questions
	Profile   *handlers.Profile
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(cfg Config) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check and assets: no session, no CSRF.
	r.Get("/health", healthHandler)
	r.Handle("/static/*", staticHandler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.LimitBody(maxBodySize))
		r.Use(middleware.NewCSRF(cfg.Secure))
		r.Use(middleware.LoadSession(cfg.Sessions))

		r.Post("/theme", handlers.Theme(cfg.Secure))

		// Auth pages, only while signed out.
		r.Group(func(r chi.Router) {
			r.Use(middleware.PublicOnly)
			r.Get("/signin", cfg.Auth.SignInPage)
			r.Get("/signup", cfg.Auth.SignUpPage)
			r.Group(func(r chi.Router) {
				if cfg.AuthLimiter != nil {
					r.Use(cfg.AuthLimiter.Middleware)
				}
				r.Post("/signin", cfg.Auth.SignInSubmit)
				r.Post("/signup", cfg.Auth.SignUpSubmit)
			})
		})

		// Everything else needs a signed-in user.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)

			r.Post("/signout", cfg.Auth.SignOut)

			// Categories
			r.Get("/", cfg.Catalog.Categories)
			r.Get("/categories/more", cfg.Catalog.CategoriesMore)

			// Topics and question lists of a category
			r.Route("/category/{category}", func(r chi.Router) {
				r.Get("/", cfg.Catalog.Topics)
				r.Get("/topics/more", cfg.Catalog.TopicsMore)
				r.Get("/questions", cfg.Questions.CategoryQuestions)
				r.Get("/topic/{topic}", cfg.Questions.TopicQuestions)
				r.Get("/question/{question}", cfg.Questions.Question)
			})

			// Profile
			r.Get("/profile", cfg.Profile.Show)
			r.Post("/profile", cfg.Profile.Update)
			r.Post("/profile/avatar", cfg.Profile.Avatar)
			r.Post("/profile/admin-mode", cfg.Profile.AdminMode)

			// Admin mode: create, rename, delete, edit questions.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdminMode)

				r.Post("/categories", cfg.Catalog.CategoryCreate)
				r.Patch("/categories/{slug}", cfg.Catalog.CategoryUpdate)
				r.Delete("/categories/{slug}", cfg.Catalog.CategoryDelete)

				r.Post("/topics", cfg.Catalog.TopicCreate)
				r.Patch("/topics/{slug}", cfg.Catalog.TopicUpdate)
				r.Delete("/topics/{slug}", cfg.Catalog.TopicDelete)

				r.Get("/question/create", cfg.Questions.NewQuestion)
				r.Post("/question/create", cfg.Questions.CreateQuestion)
				r.Route("/question/{slug}", func(r chi.Router) {
					r.Post("/edit", cfg.Questions.Edit)
					r.Post("/draft", cfg.Questions.Draft)
					r.Post("/cancel", cfg.Questions.Cancel)
					r.Post("/save", cfg.Questions.Save)
					r.Get("/topics", cfg.Questions.TopicOptions)
				})
			})

			// Verification is reserved for super admins.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSuperAdmin)
				r.Post("/categories/{slug}/verify", cfg.Catalog.CategoryVerify)
				r.Post("/topics/{slug}/verify", cfg.Catalog.TopicVerify)
			})
		})
	})

	return r
}

// staticHandler serves the embedded web/static tree under /static/.
func staticHandler() http.Handler {
	sub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
