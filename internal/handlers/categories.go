// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"prepdeck/internal/apiclient"
	"prepdeck/internal/flash"
	"prepdeck/internal/form"
	"prepdeck/internal/models"
	"prepdeck/internal/pager"
	"prepdeck/internal/render"
)

// Catalog groups the category and topic handlers.
type Catalog struct {
	base
}

// NewCatalog creates the category and topic handler group.
func NewCatalog(d Deps) *Catalog {
	return &Catalog{base: newBase(d)}
}

func categoryForm() *form.Form {
	return form.New(form.Field{
		Name:            "name",
		Label:           "Category Name",
		Kind:            form.Text,
		Required:        true,
		RequiredMessage: "Category name is required",
	})
}

// Categories renders the category grid. Search keystrokes swap only the
// results container.
func (c *Catalog) Categories(w http.ResponseWriter, r *http.Request) {
	q := pager.Query{
		Search:   strings.TrimSpace(r.URL.Query().Get("query")),
		Verified: verifiedFilter(r),
	}
	partial := searching(r, "category-results")
	if partial && !c.settle(w, r, listCategories) {
		return
	}

	p := c.categoryPager(r)
	var toasts []flash.Toast
	items, st, err := p.Load(r.Context(), q)
	if err != nil {
		if c.expired(w, r, err) {
			return
		}
		if !errors.Is(err, pager.ErrBusy) {
			logFailure(r, "load categories", err)
			toasts = append(toasts, flash.Failed(apiclient.UserMessage(err)))
		}
		// Whatever the store still holds is shown.
		items, _ = c.scope(r).Categories.List(r.Context())
		st, _ = p.State(r.Context())
	}

	data := &render.PageData{
		Title:   "Categories",
		Section: "categories",
		Flashes: toasts,
		Data: map[string]any{
			"Categories": items,
			"Query":      q.Search,
			"Verified":   q.Verified,
			"HasMore":    st.HasMore(),
		},
	}
	if partial {
		c.Renderer.Partial(w, r, "category_results", data)
		return
	}
	c.Renderer.Page(w, r, "categories", data)
}

// CategoriesMore appends the next page of categories.
func (c *Catalog) CategoriesMore(w http.ResponseWriter, r *http.Request) {
	fresh, st, err := c.categoryPager(r).LoadMore(r.Context())
	switch {
	case errors.Is(err, pager.ErrBusy):
		w.WriteHeader(http.StatusNoContent)
		return
	case errors.Is(err, pager.ErrNoMore):
		// Render the empty tail so the button goes away.
	case err != nil:
		c.failed(w, r, "load more categories", err)
		return
	}
	c.Renderer.Partial(w, r, "category_more", &render.PageData{
		Data: map[string]any{
			"Categories": fresh,
			"Verified":   st.Query.Verified,
			"HasMore":    st.HasMore(),
		},
	})
}

// CategoryCreate creates a category and appends it to the cached list.
func (c *Catalog) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	f := categoryForm()
	f.Bind(formValues(r))

	var created *models.Category
	err := f.Submit(r.Context(), func(ctx context.Context, v form.Values) error {
		var err error
		created, err = c.client(r).CreateCategory(ctx, apiclient.CategoryInput{Name: v.Get("name")})
		return err
	})
	if c.formFailed(w, r, f, "create category", err) {
		return
	}

	if err := c.scope(r).Categories.Add(r.Context(), *created); err != nil {
		slog.Warn("cache created category failed", "slug", created.Slug, "error", err)
	}
	c.Renderer.Partial(w, r, "category_item", &render.PageData{
		Data: map[string]any{"Category": *created},
	}, flash.Succeeded("Category created successfully!"))
}

// CategoryUpdate renames a category and patches the cached entry.
func (c *Catalog) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	slugVal, ok := c.slugParam(w, r, "slug")
	if !ok {
		return
	}
	f := categoryForm()
	f.Bind(formValues(r))

	var updated *models.Category
	err := f.Submit(r.Context(), func(ctx context.Context, v form.Values) error {
		var err error
		updated, err = c.client(r).UpdateCategory(ctx, slugVal, apiclient.CategoryInput{Name: v.Get("name")})
		return err
	})
	if c.formFailed(w, r, f, "update category", err) {
		return
	}
	c.categoryPatched(w, r, slugVal, *updated)
}

// CategoryVerify sets the verified flag of a category.
func (c *Catalog) CategoryVerify(w http.ResponseWriter, r *http.Request) {
	slugVal, ok := c.slugParam(w, r, "slug")
	if !ok {
		return
	}
	verified, err := strconv.ParseBool(r.FormValue("verified"))
	if err != nil {
		c.toast(w, http.StatusBadRequest, flash.Failed("Invalid verified value."))
		return
	}

	updated, err := c.client(r).UpdateCategory(r.Context(), slugVal, apiclient.CategoryInput{Verified: &verified})
	if err != nil {
		c.failed(w, r, "verify category", err)
		return
	}
	c.categoryPatched(w, r, slugVal, *updated)
}

func (c *Catalog) categoryPatched(w http.ResponseWriter, r *http.Request, oldSlug string, updated models.Category) {
	if err := patchEntry(r.Context(), c.scope(r).Categories, oldSlug, updated); err != nil {
		slog.Warn("cache updated category failed", "slug", oldSlug, "error", err)
	}
	c.Renderer.Partial(w, r, "category_item", &render.PageData{
		Data: map[string]any{"Category": updated},
	}, flash.Succeeded("Category updated successfully!"))
}

// CategoryDelete deletes a category and drops it from the cached list.
func (c *Catalog) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	slugVal, ok := c.slugParam(w, r, "slug")
	if !ok {
		return
	}
	if err := c.client(r).DeleteCategory(r.Context(), slugVal); err != nil {
		c.failed(w, r, "delete category", err)
		return
	}
	if err := c.scope(r).Categories.Remove(r.Context(), slugVal); err != nil {
		slog.Warn("uncache deleted category failed", "slug", slugVal, "error", err)
	}
	flash.Trigger(w, flash.Succeeded("Category deleted successfully!"))
	w.WriteHeader(http.StatusOK)
}

// formFailed answers a form submission that did not succeed. It reports
// whether a response was written.
func (b *base) formFailed(w http.ResponseWriter, r *http.Request, f *form.Form, op string, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, form.ErrInvalid):
		var toasts []flash.Toast
		for _, fld := range f.Fields() {
			if msg := f.Error(fld.Name); msg != "" {
				toasts = append(toasts, flash.Failed(msg))
			}
		}
		b.toast(w, http.StatusUnprocessableEntity, toasts...)
	case errors.Is(err, form.ErrBusy):
		w.WriteHeader(http.StatusNoContent)
	default:
		b.failed(w, r, op, err)
	}
	return true
}

// formValues returns the parsed request body, or the query for methods
// whose parameters HTMX sends in the URL.
func formValues(r *http.Request) url.Values {
	if err := r.ParseForm(); err != nil {
		slog.Debug("parse form failed", "error", err)
	}
	return r.Form
}
