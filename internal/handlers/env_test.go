// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// env_test.go provides shared test infrastructure for handler tests: a fake
// REST backend on httptest, Valkey on miniredis, and a router carrying the
// same guards as production.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"prepdeck/internal/apiclient"
	"prepdeck/internal/cache"
	"prepdeck/internal/flash"
	"prepdeck/internal/middleware"
	"prepdeck/internal/models"
	"prepdeck/internal/render"
	"prepdeck/internal/session"
	"prepdeck/internal/store"
)

// apiCall is one request received by the fake backend.
type apiCall struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]any
	Token  string
}

// fakeAPI is an httptest backend that records every call. Routes use
// ServeMux patterns such as "GET /category/all".
type fakeAPI struct {
	srv *httptest.Server
	mux *http.ServeMux

	mu    sync.Mutex
	calls []apiCall
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{mux: http.NewServeMux()}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := apiCall{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Token:  strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "),
		}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &call.Body)
			r.Body = io.NopCloser(strings.NewReader(string(raw)))
		}
		f.mu.Lock()
		f.calls = append(f.calls, call)
		f.mu.Unlock()
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

// handle registers a handler for pattern.
func (f *fakeAPI) handle(pattern string, h http.HandlerFunc) {
	f.mux.HandleFunc(pattern, h)
}

// reply registers a handler answering status with v as JSON.
func (f *fakeAPI) reply(pattern string, status int, v any) {
	f.handle(pattern, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, v)
	})
}

// callsTo returns the recorded calls for method and path.
func (f *fakeAPI) callsTo(method, path string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// total returns how many calls the backend received.
func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// testEnv bundles the wired handler groups and their backing services.
type testEnv struct {
	api      *fakeAPI
	mr       *miniredis.Miniredis
	sessions *session.Store
	state    *store.Store
	deps     Deps
	router   chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, func(*Deps) {})
}

// newTestEnvWith lets a test adjust the dependencies before the handler
// groups are built.
func newTestEnvWith(t *testing.T, adjust func(*Deps)) *testEnv {
	t.Helper()
	api := newFakeAPI(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	flashes := flash.New([]byte("test-flash-secret-0123456789abcdef"), false)
	renderer, err := render.New(false, flashes)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	sessions := session.NewStore(client, false, time.Hour)
	state := store.New(cache.NewValkey(client, "state:", time.Hour))

	deps := Deps{
		Renderer: renderer,
		Sessions: sessions,
		Flashes:  flashes,
		API:      apiclient.New(api.srv.URL, 2*time.Second),
		State:    state,
		PageSize: 10,
	}
	adjust(&deps)

	env := &testEnv{api: api, mr: mr, sessions: sessions, state: state, deps: deps}
	env.router = env.routes()
	return env
}

// routes mirrors the production route table and guards.
func (e *testEnv) routes() chi.Router {
	auth := NewAuth(e.deps)
	catalog := NewCatalog(e.deps)
	questions := NewQuestions(e.deps)
	profile := NewProfile(e.deps, nil)

	r := chi.NewRouter()
	r.Use(middleware.LoadSession(e.sessions))
	r.Post("/theme", Theme(false))
	r.Group(func(r chi.Router) {
		r.Use(middleware.PublicOnly)
		r.Get("/signin", auth.SignInPage)
		r.Post("/signin", auth.SignInSubmit)
		r.Get("/signup", auth.SignUpPage)
		r.Post("/signup", auth.SignUpSubmit)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Post("/signout", auth.SignOut)
		r.Get("/", catalog.Categories)
		r.Get("/categories/more", catalog.CategoriesMore)
		r.Get("/category/{category}", catalog.Topics)
		r.Get("/category/{category}/topics/more", catalog.TopicsMore)
		r.Get("/category/{category}/questions", questions.CategoryQuestions)
		r.Get("/category/{category}/topic/{topic}", questions.TopicQuestions)
		r.Get("/category/{category}/question/{question}", questions.Question)
		r.Get("/profile", profile.Show)
		r.Post("/profile", profile.Update)
		r.Post("/profile/avatar", profile.Avatar)
		r.Post("/profile/admin-mode", profile.AdminMode)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdminMode)
			r.Post("/categories", catalog.CategoryCreate)
			r.Patch("/categories/{slug}", catalog.CategoryUpdate)
			r.Delete("/categories/{slug}", catalog.CategoryDelete)
			r.Post("/topics", catalog.TopicCreate)
			r.Patch("/topics/{slug}", catalog.TopicUpdate)
			r.Delete("/topics/{slug}", catalog.TopicDelete)
			r.Get("/question/create", questions.NewQuestion)
			r.Post("/question/create", questions.CreateQuestion)
			r.Post("/question/{slug}/edit", questions.Edit)
			r.Post("/question/{slug}/draft", questions.Draft)
			r.Post("/question/{slug}/cancel", questions.Cancel)
			r.Post("/question/{slug}/save", questions.Save)
			r.Get("/question/{slug}/topics", questions.TopicOptions)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSuperAdmin)
			r.Post("/categories/{slug}/verify", catalog.CategoryVerify)
			r.Post("/topics/{slug}/verify", catalog.TopicVerify)
		})
	})
	return r
}

// signIn creates a session for a user with role and admin mode and returns
// its cookie and ID.
func (e *testEnv) signIn(t *testing.T, role models.Role, adminMode bool) (*http.Cookie, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	id, err := e.sessions.Create(context.Background(), rec, &session.Data{
		Token: "tok-" + string(role),
		User: &models.User{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Phone:     "0123456789",
			Email:     "ada@prepdeck.local",
			Role:      role,
			AdminMode: adminMode,
		},
	})
	if err != nil {
		t.Fatalf("session create: %v", err)
	}
	return rec.Result().Cookies()[0], id
}

// request builds a request. A non-nil form is sent url-encoded.
type request struct {
	method string
	target string
	form   url.Values
	cookie *http.Cookie
	htmx   bool
	hxTarg string
}

func (e *testEnv) do(t *testing.T, req request) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if req.form != nil {
		body = strings.NewReader(req.form.Encode())
	}
	r := httptest.NewRequest(req.method, req.target, body)
	if req.form != nil {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if req.cookie != nil {
		r.AddCookie(req.cookie)
	}
	if req.htmx {
		r.Header.Set("HX-Request", "true")
		if req.hxTarg != "" {
			r.Header.Set("HX-Target", req.hxTarg)
		}
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, r)
	return rec
}

// toasts decodes the HX-Trigger toast payload of a response.
func toasts(t *testing.T, rec *httptest.ResponseRecorder) []flash.Toast {
	t.Helper()
	raw := rec.Header().Get("HX-Trigger")
	if raw == "" {
		return nil
	}
	var trig map[string][]flash.Toast
	if err := json.Unmarshal([]byte(raw), &trig); err != nil {
		t.Fatalf("HX-Trigger %q: %v", raw, err)
	}
	return trig[flash.TriggerEvent]
}

// hasToast reports whether a toast with msg was raised.
func hasToast(list []flash.Toast, msg string) bool {
	for _, tt := range list {
		if tt.Message == msg {
			return true
		}
	}
	return false
}

// categoryPage answers GET /category/all with ten categories per page.
func categoryPage(totalPages int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil || page < 1 {
			page = 1
		}
		var data []models.Category
		for i := 1; i <= 10; i++ {
			n := (page-1)*10 + i
			data = append(data, models.Category{
				Name:      "Category " + strconv.Itoa(n),
				Slug:      "category-" + strconv.Itoa(n),
				Verified:  true,
				CanModify: true,
			})
		}
		writeJSON(w, http.StatusOK, models.Page[models.Category]{Data: data, Page: page, TotalPages: totalPages})
	}
}
