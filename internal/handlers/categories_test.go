// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"prepdeck/internal/models"
	"prepdeck/internal/pager"
)

func TestCategories_LoadThenLoadMore(t *testing.T) {
	env := newTestEnv(t)
	env.api.handle("GET /category/all", categoryPage(2))
	cookie, id := env.signIn(t, models.RoleUser, false)

	rec := env.do(t, request{method: http.MethodGet, target: "/", cookie: cookie})
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /: got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Category 10") || !strings.Contains(body, "/categories/more") {
		t.Error("first page or load more control missing")
	}

	rec = env.do(t, request{method: http.MethodGet, target: "/categories/more", cookie: cookie, htmx: true})
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /categories/more: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Category 20") {
		t.Error("second page missing from load more")
	}

	calls := env.api.callsTo(http.MethodGet, "/category/all")
	if len(calls) != 2 {
		t.Fatalf("list calls = %d, want 2", len(calls))
	}
	if calls[0].Query.Get("page") != "1" || calls[1].Query.Get("page") != "2" || calls[1].Query.Get("limit") != "10" {
		t.Errorf("queries = %v, %v", calls[0].Query, calls[1].Query)
	}
	items, _ := env.state.Scope(id).Categories.List(context.Background())
	if len(items) != 20 {
		t.Errorf("cached categories = %d, want 20", len(items))
	}

	// The last page is loaded, so another request fetches nothing.
	env.do(t, request{method: http.MethodGet, target: "/categories/more", cookie: cookie, htmx: true})
	if n := len(env.api.callsTo(http.MethodGet, "/category/all")); n != 2 {
		t.Errorf("list calls after the last page = %d, want 2", n)
	}
}

func TestCategories_VerifiedFilterOnlyForSuperAdmin(t *testing.T) {
	tests := []struct {
		name string
		role models.Role
		want string
	}{
		{"super admin", models.RoleSuperAdmin, "false"},
		{"admin", models.RoleAdmin, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.api.handle("GET /category/all", categoryPage(1))
			cookie, _ := env.signIn(t, tt.role, true)

			env.do(t, request{method: http.MethodGet, target: "/?verified=false", cookie: cookie})

			calls := env.api.callsTo(http.MethodGet, "/category/all")
			if len(calls) != 1 {
				t.Fatalf("list calls = %d", len(calls))
			}
			if got := calls[0].Query.Get("isVerified"); got != tt.want {
				t.Errorf("isVerified = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCategories_FailureKeepsCachedItems(t *testing.T) {
	env := newTestEnv(t)
	env.api.reply("GET /category/all", http.StatusInternalServerError, map[string]any{"error": "database unavailable"})
	cookie, id := env.signIn(t, models.RoleUser, false)
	sc := env.state.Scope(id)
	if err := sc.Categories.Replace(context.Background(), []models.Category{{Name: "Go", Slug: "go", Verified: true}}); err != nil {
		t.Fatal(err)
	}
	// The cached list belongs to the same (empty) query.
	if err := pageState(sc, listCategories).Set(context.Background(), pager.State{Page: 1, TotalPages: 1}); err != nil {
		t.Fatal(err)
	}

	rec := env.do(t, request{method: http.MethodGet, target: "/", cookie: cookie, htmx: true})

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ">Go<") {
		t.Error("cached category not rendered")
	}
	if !hasToast(toasts(t, rec), "database unavailable") {
		t.Errorf("toasts = %+v", toasts(t, rec))
	}
}

func TestCategoryCreate_AppendsAndToasts(t *testing.T) {
	env := newTestEnv(t)
	env.api.reply("POST /category/create", http.StatusOK, map[string]any{
		"data": models.Category{Name: "Arrays", Slug: "arrays", CanModify: true},
	})
	cookie, id := env.signIn(t, models.RoleAdmin, true)
	if err := env.state.Scope(id).Categories.Replace(context.Background(), []models.Category{{Name: "Go", Slug: "go"}}); err != nil {
		t.Fatal(err)
	}

	rec := env.do(t, request{
		method: http.MethodPost,
		target: "/categories",
		form:   url.Values{"name": {"Arrays"}},
		cookie: cookie,
		htmx:   true,
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	if !hasToast(toasts(t, rec), "Category created successfully!") {
		t.Errorf("toasts = %+v", toasts(t, rec))
	}
	if !strings.Contains(rec.Body.String(), "Arrays") {
		t.Error("created card not rendered")
	}
	calls := env.api.callsTo(http.MethodPost, "/category/create")
	if len(calls) != 1 || calls[0].Body["name"] != "Arrays" || calls[0].Token != "tok-ADMIN" {
		t.Errorf("create calls = %+v", calls)
	}

	items, _ := env.state.Scope(id).Categories.List(context.Background())
	if len(items) != 2 || items[1].Slug != "arrays" {
		t.Errorf("cached categories = %+v", items)
	}
	if n := len(env.api.callsTo(http.MethodGet, "/category/all")); n != 0 {
		t.Errorf("list refetched %d times after create", n)
	}
}

func TestCategoryCreate_InvalidFormSkipsBackend(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.signIn(t, models.RoleAdmin, true)

	rec := env.do(t, request{
		method: http.MethodPost,
		target: "/categories",
		form:   url.Values{"name": {"   "}},
		cookie: cookie,
		htmx:   true,
	})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want 422", rec.Code)
	}
	if !hasToast(toasts(t, rec), "Category name is required") {
		t.Errorf("toasts = %+v", toasts(t, rec))
	}
	if env.api.total() != 0 {
		t.Errorf("backend called %d times", env.api.total())
	}
}

func TestCategoryCreate_Guards(t *testing.T) {
	tests := []struct {
		name      string
		role      models.Role
		adminMode bool
		want      int
	}{
		{"user", models.RoleUser, true, http.StatusForbidden},
		{"admin without admin mode", models.RoleAdmin, false, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			cookie, _ := env.signIn(t, tt.role, tt.adminMode)
			rec := env.do(t, request{method: http.MethodPost, target: "/categories", form: url.Values{"name": {"X"}}, cookie: cookie, htmx: true})
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
			if env.api.total() != 0 {
				t.Error("backend called through a guard")
			}
		})
	}
}

func TestCategoryVerify_PatchesCachedEntry(t *testing.T) {
	env := newTestEnv(t)
	env.api.reply("PATCH /category/update/arrays", http.StatusOK, models.Category{Name: "Arrays", Slug: "arrays", Verified: true})
	cookie, id := env.signIn(t, models.RoleSuperAdmin, true)
	sc := env.state.Scope(id)
	if err := sc.Categories.Replace(context.Background(), []models.Category{
		{Name: "Go", Slug: "go"},
		{Name: "Arrays", Slug: "arrays"},
	}); err != nil {
		t.Fatal(err)
	}

	rec := env.do(t, request{
		method: http.MethodPost,
		target: "/categories/arrays/verify",
		form:   url.Values{"verified": {"true"}},
		cookie: cookie,
		htmx:   true,
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	calls := env.api.callsTo(http.MethodPatch, "/category/update/arrays")
	if len(calls) != 1 || calls[0].Body["verified"] != true || len(calls[0].Body) != 1 {
		t.Errorf("update calls = %+v", calls)
	}
	got, ok, _ := sc.Categories.Find(context.Background(), "arrays")
	if !ok || !got.Verified {
		t.Errorf("cached entry = %+v", got)
	}
	if n := len(env.api.callsTo(http.MethodGet, "/category/all")); n != 0 {
		t.Errorf("list refetched %d times", n)
	}
}

func TestCategoryVerify_RequiresSuperAdmin(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.signIn(t, models.RoleAdmin, true)

	rec := env.do(t, request{method: http.MethodPost, target: "/categories/arrays/verify", form: url.Values{"verified": {"true"}}, cookie: cookie, htmx: true})
	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rec.Code)
	}
}

func TestCategoryUpdate_RenameMovesSlug(t *testing.T) {
	env := newTestEnv(t)
	env.api.reply("PATCH /category/update/go", http.StatusOK, models.Category{Name: "Golang", Slug: "golang"})
	cookie, id := env.signIn(t, models.RoleAdmin, true)
	sc := env.state.Scope(id)
	if err := sc.Categories.Replace(context.Background(), []models.Category{{Name: "Go", Slug: "go"}}); err != nil {
		t.Fatal(err)
	}

	rec := env.do(t, request{method: http.MethodPatch, target: "/categories/go", form: url.Values{"name": {"Golang"}}, cookie: cookie, htmx: true})

	if !hasToast(toasts(t, rec), "Category updated successfully!") {
		t.Errorf("toasts = %+v", toasts(t, rec))
	}
	if _, ok, _ := sc.Categories.Find(context.Background(), "go"); ok {
		t.Error("old slug still cached")
	}
	if got, ok, _ := sc.Categories.Find(context.Background(), "golang"); !ok || got.Name != "Golang" {
		t.Errorf("renamed entry = %+v", got)
	}
}

func TestCategoryDelete_RemovesEntry(t *testing.T) {
	env := newTestEnv(t)
	env.api.reply("DELETE /category/delete/go", http.StatusOK, map[string]any{})
	cookie, id := env.signIn(t, models.RoleAdmin, true)
	sc := env.state.Scope(id)
	if err := sc.Categories.Replace(context.Background(), []models.Category{{Name: "Go", Slug: "go"}, {Name: "Rust", Slug: "rust"}}); err != nil {
		t.Fatal(err)
	}

	rec := env.do(t, request{method: http.MethodDelete, target: "/categories/go", cookie: cookie, htmx: true})

	if rec.Code != http.StatusOK || !hasToast(toasts(t, rec), "Category deleted successfully!") {
		t.Errorf("got %d, toasts %+v", rec.Code, toasts(t, rec))
	}
	items, _ := sc.Categories.List(context.Background())
	if len(items) != 1 || items[0].Slug != "rust" {
		t.Errorf("cached categories = %+v", items)
	}
}

func TestCategories_BackendUnauthorizedSignsOut(t *testing.T) {
	env := newTestEnv(t)
	env.api.reply("GET /category/all", http.StatusUnauthorized, map[string]any{"error": "jwt expired"})
	cookie, id := env.signIn(t, models.RoleUser, false)
	if err := env.state.Scope(id).Categories.Replace(context.Background(), []models.Category{{Name: "Go", Slug: "go"}}); err != nil {
		t.Fatal(err)
	}

	rec := env.do(t, request{method: http.MethodGet, target: "/", cookie: cookie})
	if rec.Code != http.StatusSeeOther || !strings.HasPrefix(rec.Header().Get("Location"), "/signin") {
		t.Fatalf("got %d to %q", rec.Code, rec.Header().Get("Location"))
	}

	// Both the session and the cached state are gone.
	rec = env.do(t, request{method: http.MethodGet, target: "/", cookie: cookie})
	if rec.Code != http.StatusSeeOther {
		t.Errorf("second request: got %d, want redirect", rec.Code)
	}
	if items, _ := env.state.Scope(id).Categories.List(context.Background()); len(items) != 0 {
		t.Errorf("state not cleared: %+v", items)
	}
}

func TestCategories_SupersededSearchAnswers204(t *testing.T) {
	env := newTestEnvWith(t, func(d *Deps) { d.SearchDebounce = 100 * time.Millisecond })
	env.api.handle("GET /category/all", categoryPage(1))
	cookie, _ := env.signIn(t, models.RoleUser, false)

	var (
		wg    sync.WaitGroup
		first int
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		rec := env.do(t, request{method: http.MethodGet, target: "/?query=ar", cookie: cookie, htmx: true, hxTarg: "category-results"})
		first = rec.Code
	}()
	time.Sleep(20 * time.Millisecond)
	last := env.do(t, request{method: http.MethodGet, target: "/?query=arrays", cookie: cookie, htmx: true, hxTarg: "category-results"})
	wg.Wait()

	if first != http.StatusNoContent {
		t.Errorf("superseded request: got %d, want 204", first)
	}
	if last.Code != http.StatusOK {
		t.Errorf("trailing request: got %d, want 200", last.Code)
	}
	calls := env.api.callsTo(http.MethodGet, "/category/all")
	if len(calls) != 1 || calls[0].Query.Get("searchValue") != "arrays" {
		t.Errorf("list calls = %+v", calls)
	}
}
