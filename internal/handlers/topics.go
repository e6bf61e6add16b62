// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"prepdeck/internal/apiclient"
	"prepdeck/internal/flash"
	"prepdeck/internal/form"
	"prepdeck/internal/models"
	"prepdeck/internal/pager"
	"prepdeck/internal/render"
	"prepdeck/internal/slug"
)

func topicForm() *form.Form {
	return form.New(
		form.Field{
			Name:            "name",
			Label:           "Topic Name",
			Kind:            form.Text,
			Required:        true,
			RequiredMessage: "Topic name is required",
		},
		form.Field{
			Name:     "category",
			Label:    "Category",
			Kind:     form.Text,
			Required: true,
			Validate: func(v string) string {
				if !slug.Valid(v) {
					return "is not a valid category"
				}
				return ""
			},
		},
	)
}

// Topics renders the topics of one category.
func (c *Catalog) Topics(w http.ResponseWriter, r *http.Request) {
	category, ok := c.slugParam(w, r, "category")
	if !ok {
		return
	}
	q := pager.Query{
		Parent:   category,
		Search:   strings.TrimSpace(r.URL.Query().Get("query")),
		Verified: verifiedFilter(r),
	}
	partial := searching(r, "topic-results")
	if partial && !c.settle(w, r, listTopics) {
		return
	}

	p := c.topicPager(r)
	var toasts []flash.Toast
	items, st, err := p.Load(r.Context(), q)
	if err != nil {
		if c.expired(w, r, err) {
			return
		}
		if !errors.Is(err, pager.ErrBusy) {
			logFailure(r, "load topics", err)
			toasts = append(toasts, flash.Failed(apiclient.UserMessage(err)))
		}
		st, _ = p.State(r.Context())
		items = nil
		if st.Query.Parent == category {
			items, _ = c.scope(r).Topics.List(r.Context())
		}
	}

	data := &render.PageData{
		Title:   "Topics",
		Section: "categories",
		Flashes: toasts,
		Data: map[string]any{
			"Category":     category,
			"CategoryName": c.categoryName(r, category, items),
			"Topics":       items,
			"Query":        q.Search,
			"Verified":     q.Verified,
			"HasMore":      st.HasMore(),
			"MoreURL":      "/category/" + category + "/topics/more",
		},
	}
	if partial {
		c.Renderer.Partial(w, r, "topic_results", data)
		return
	}
	c.Renderer.Page(w, r, "topics", data)
}

// categoryName finds a display name for a category slug: from the loaded
// topics, then from the cached categories, falling back to the slug.
func (c *Catalog) categoryName(r *http.Request, category string, topics []models.Topic) string {
	for _, t := range topics {
		if t.Category.Slug == category && t.Category.Name != "" {
			return t.Category.Name
		}
	}
	if cat, ok, _ := c.scope(r).Categories.Find(r.Context(), category); ok {
		return cat.Name
	}
	return category
}

// TopicsMore appends the next page of topics.
func (c *Catalog) TopicsMore(w http.ResponseWriter, r *http.Request) {
	category, ok := c.slugParam(w, r, "category")
	if !ok {
		return
	}
	p := c.topicPager(r)
	if st, err := p.State(r.Context()); err == nil && st.Query.Parent != category {
		// The cached list belongs to another category.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	fresh, st, err := p.LoadMore(r.Context())
	switch {
	case errors.Is(err, pager.ErrBusy):
		w.WriteHeader(http.StatusNoContent)
		return
	case errors.Is(err, pager.ErrNoMore):
	case err != nil:
		c.failed(w, r, "load more topics", err)
		return
	}
	c.Renderer.Partial(w, r, "topic_more", &render.PageData{
		Data: map[string]any{
			"Topics":   fresh,
			"Verified": st.Query.Verified,
			"HasMore":  st.HasMore(),
			"MoreURL":  "/category/" + category + "/topics/more",
		},
	})
}

// TopicCreate creates a topic and appends it to the cached list.
func (c *Catalog) TopicCreate(w http.ResponseWriter, r *http.Request) {
	f := topicForm()
	f.Bind(formValues(r))

	var created *models.Topic
	err := f.Submit(r.Context(), func(ctx context.Context, v form.Values) error {
		var err error
		created, err = c.client(r).CreateTopic(ctx, apiclient.TopicInput{Name: v.Get("name"), Category: v.Get("category")})
		return err
	})
	if c.formFailed(w, r, f, "create topic", err) {
		return
	}

	if err := c.scope(r).Topics.Add(r.Context(), *created); err != nil {
		slog.Warn("cache created topic failed", "slug", created.Slug, "error", err)
	}
	c.Renderer.Partial(w, r, "topic_item", &render.PageData{
		Data: map[string]any{"Topic": *created},
	}, flash.Succeeded("Topic created successfully!"))
}

// TopicUpdate renames a topic and patches the cached entry.
func (c *Catalog) TopicUpdate(w http.ResponseWriter, r *http.Request) {
	slugVal, ok := c.slugParam(w, r, "slug")
	if !ok {
		return
	}
	f := topicForm()
	f.Bind(formValues(r))

	var updated *models.Topic
	err := f.Submit(r.Context(), func(ctx context.Context, v form.Values) error {
		var err error
		updated, err = c.client(r).UpdateTopic(ctx, slugVal, apiclient.TopicInput{Name: v.Get("name"), Category: v.Get("category")})
		return err
	})
	if c.formFailed(w, r, f, "update topic", err) {
		return
	}
	c.topicPatched(w, r, slugVal, *updated)
}

// TopicVerify sets the verified flag of a topic.
func (c *Catalog) TopicVerify(w http.ResponseWriter, r *http.Request) {
	slugVal, ok := c.slugParam(w, r, "slug")
	if !ok {
		return
	}
	verified, err := strconv.ParseBool(r.FormValue("verified"))
	if err != nil {
		c.toast(w, http.StatusBadRequest, flash.Failed("Invalid verified value."))
		return
	}

	updated, err := c.client(r).UpdateTopic(r.Context(), slugVal, apiclient.TopicInput{Verified: &verified})
	if err != nil {
		c.failed(w, r, "verify topic", err)
		return
	}
	c.topicPatched(w, r, slugVal, *updated)
}

func (c *Catalog) topicPatched(w http.ResponseWriter, r *http.Request, oldSlug string, updated models.Topic) {
	sc := c.scope(r)
	if err := patchEntry(r.Context(), sc.Topics, oldSlug, updated); err != nil {
		slog.Warn("cache updated topic failed", "slug", oldSlug, "error", err)
	}
	if _, ok, _ := sc.TopicOptions.Find(r.Context(), oldSlug); ok {
		if err := patchEntry(r.Context(), sc.TopicOptions, oldSlug, models.TopicOption(updated)); err != nil {
			slog.Warn("cache updated topic option failed", "slug", oldSlug, "error", err)
		}
	}
	c.Renderer.Partial(w, r, "topic_item", &render.PageData{
		Data: map[string]any{"Topic": updated},
	}, flash.Succeeded("Topic updated successfully!"))
}

// TopicDelete deletes a topic and drops it from the cached lists.
func (c *Catalog) TopicDelete(w http.ResponseWriter, r *http.Request) {
	slugVal, ok := c.slugParam(w, r, "slug")
	if !ok {
		return
	}
	if err := c.client(r).DeleteTopic(r.Context(), slugVal); err != nil {
		c.failed(w, r, "delete topic", err)
		return
	}
	sc := c.scope(r)
	if err := sc.Topics.Remove(r.Context(), slugVal); err != nil {
		slog.Warn("uncache deleted topic failed", "slug", slugVal, "error", err)
	}
	if err := sc.TopicOptions.Remove(r.Context(), slugVal); err != nil {
		slog.Warn("uncache deleted topic option failed", "slug", slugVal, "error", err)
	}
	flash.Trigger(w, flash.Succeeded("Topic deleted successfully!"))
	w.WriteHeader(http.StatusOK)
}
