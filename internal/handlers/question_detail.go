// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"prepdeck/internal/apiclient"
	"prepdeck/internal/editor"
	"prepdeck/internal/flash"
	"prepdeck/internal/middleware"
	"prepdeck/internal/models"
	"prepdeck/internal/pager"
	"prepdeck/internal/render"
)

// Question renders the detail page of a question. The question and the
// first page of the topic dropdown load concurrently; a dropdown failure
// only raises a toast.
func (q *Questions) Question(w http.ResponseWriter, r *http.Request) {
	category, ok := q.slugParam(w, r, "category")
	if !ok {
		return
	}
	slugVal, ok := q.slugParam(w, r, "question")
	if !ok {
		return
	}
	sc := q.scope(r)
	user := middleware.UserFromCtx(r.Context())

	var (
		details *models.QuestionDetails
		optErr  error
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		details, err = q.client(r).QuestionDetails(ctx, slugVal)
		return err
	})
	if user.CanAdminister() {
		p := q.topicOptionPager(r)
		g.Go(func() error {
			if _, _, err := p.Load(ctx, pager.Query{}); err != nil && !errors.Is(err, pager.ErrBusy) {
				optErr = err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if cached, found, _ := sc.Opened.Get(r.Context()); found && cached.Slug == slugVal && !apiclient.IsUnauthorized(err) {
			logFailure(r, "load question", err)
			q.renderQuestion(w, r, category, cached, flash.Failed(apiclient.UserMessage(err)))
			return
		}
		q.detailFailed(w, r, err)
		return
	}

	if err := sc.Opened.Set(r.Context(), *details); err != nil {
		slog.Warn("cache opened question failed", "slug", slugVal, "error", err)
	}
	// A fresh visit leaves edit mode.
	if err := sc.Draft.Clear(r.Context()); err != nil {
		slog.Warn("clear question draft failed", "error", err)
	}

	var toasts []flash.Toast
	if optErr != nil {
		if q.expired(w, r, optErr) {
			return
		}
		logFailure(r, "load topic options", optErr)
		toasts = append(toasts, flash.Failed(apiclient.UserMessage(optErr)))
	}
	q.renderQuestion(w, r, category, *details, toasts...)
}

func (q *Questions) renderQuestion(w http.ResponseWriter, r *http.Request, category string, d models.QuestionDetails, toasts ...flash.Toast) {
	if category == "" {
		category = d.Topic.Category.Slug
	}
	q.Renderer.Page(w, r, "question", &render.PageData{
		Title:   d.Title,
		Section: "questions",
		Flashes: toasts,
		Data: map[string]any{
			"Category": category,
			"Question": d,
		},
	})
}

// opened returns the question the session is looking at, loading it when
// the cached one is for another slug.
func (q *Questions) opened(ctx context.Context, r *http.Request, slugVal string) (models.QuestionDetails, error) {
	sc := q.scope(r)
	if cur, ok, err := sc.Opened.Get(ctx); err == nil && ok && cur.Slug == slugVal {
		return cur, nil
	}
	d, err := q.client(r).QuestionDetails(ctx, slugVal)
	if err != nil {
		return models.QuestionDetails{}, err
	}
	if err := sc.Opened.Set(ctx, *d); err != nil {
		slog.Warn("cache opened question failed", "slug", slugVal, "error", err)
	}
	return *d, nil
}

// Edit enters edit mode: a draft copy of the opened question is stored
// and the editor replaces the view.
func (q *Questions) Edit(w http.ResponseWriter, r *http.Request) {
	slugVal, ok := q.slugParam(w, r, "slug")
	if !ok {
		return
	}
	cur, err := q.opened(r.Context(), r, slugVal)
	if err != nil {
		q.detailFailed(w, r, err)
		return
	}
	if !middleware.UserFromCtx(r.Context()).CanModify(cur.CanModify) {
		q.toast(w, http.StatusForbidden, flash.Failed("You cannot edit this question."))
		return
	}

	d := editor.Begin(cur)
	if err := q.scope(r).Draft.Set(r.Context(), d); err != nil {
		q.failed(w, r, "store draft", err)
		return
	}
	q.renderEditor(w, r, d)
}

// Draft applies field edits to the stored draft and refreshes the Save
// control.
func (q *Questions) Draft(w http.ResponseWriter, r *http.Request) {
	slugVal, ok := q.slugParam(w, r, "slug")
	if !ok {
		return
	}
	d, ok := q.draftFor(w, r, slugVal)
	if !ok {
		return
	}
	if !q.applyEdits(w, r, &d) {
		return
	}
	q.Renderer.Partial(w, r, "editor_controls", &render.PageData{
		Data: map[string]any{
			"Question": d.Current,
			"Dirty":    d.Dirty(),
			"OOB":      true,
		},
	})
}

// Cancel leaves edit mode and restores the original without calling the
// backend.
func (q *Questions) Cancel(w http.ResponseWriter, r *http.Request) {
	slugVal, ok := q.slugParam(w, r, "slug")
	if !ok {
		return
	}
	sc := q.scope(r)
	orig, found := models.QuestionDetails{}, false
	if d, ok, err := sc.Draft.Get(r.Context()); err == nil && ok && d.Original.Slug == slugVal {
		orig, found = d.Cancel(), true
	}
	if err := sc.Draft.Clear(r.Context()); err != nil {
		slog.Warn("clear question draft failed", "error", err)
	}
	if !found {
		var err error
		if orig, err = q.opened(r.Context(), r, slugVal); err != nil {
			q.detailFailed(w, r, err)
			return
		}
	}
	if err := sc.Opened.Set(r.Context(), orig); err != nil {
		slog.Warn("cache opened question failed", "slug", slugVal, "error", err)
	}
	q.Renderer.Partial(w, r, "question_view", &render.PageData{
		Data: map[string]any{"Question": orig},
	})
}

// Save sends the changed fields of the draft, replaces the opened
// question with the server's copy and leaves edit mode.
func (q *Questions) Save(w http.ResponseWriter, r *http.Request) {
	slugVal, ok := q.slugParam(w, r, "slug")
	if !ok {
		return
	}
	d, ok := q.draftFor(w, r, slugVal)
	if !ok {
		return
	}
	if !q.applyEdits(w, r, &d) {
		return
	}
	patch := d.Patch()
	if !d.Dirty() || patch.Empty() {
		q.toast(w, http.StatusUnprocessableEntity, flash.Toast{Type: flash.Info, Message: "There are no changes to save."})
		return
	}
	if strings.TrimSpace(d.Current.Title) == "" {
		q.toast(w, http.StatusUnprocessableEntity, flash.Failed("Title is required"))
		return
	}

	updated, err := q.client(r).UpdateQuestion(r.Context(), slugVal, patch)
	if err != nil {
		q.failed(w, r, "update question", err)
		return
	}
	if updated.Slug == "" {
		// Some backends answer with an empty body; keep what was sent.
		updated = &d.Current
	}

	sc := q.scope(r)
	if err := sc.Opened.Set(r.Context(), *updated); err != nil {
		slog.Warn("cache opened question failed", "slug", slugVal, "error", err)
	}
	if err := sc.Draft.Clear(r.Context()); err != nil {
		slog.Warn("clear question draft failed", "error", err)
	}
	if _, err := sc.Questions.Update(r.Context(), summary(*updated)); err != nil {
		slog.Warn("cache updated question failed", "slug", slugVal, "error", err)
	}
	q.Renderer.Partial(w, r, "question_view", &render.PageData{
		Data: map[string]any{"Question": *updated},
	}, flash.Succeeded("Question updated successfully!"))
}

// TopicOptions answers the topic dropdown: a search replaces the options,
// more=1 appends the next page.
func (q *Questions) TopicOptions(w http.ResponseWriter, r *http.Request) {
	slugVal, ok := q.slugParam(w, r, "slug")
	if !ok {
		return
	}
	p := q.topicOptionPager(r)

	if r.URL.Query().Get("more") != "" {
		fresh, st, err := p.LoadMore(r.Context())
		switch {
		case errors.Is(err, pager.ErrBusy):
			w.WriteHeader(http.StatusNoContent)
			return
		case errors.Is(err, pager.ErrNoMore):
		case err != nil:
			q.failed(w, r, "load more topic options", err)
			return
		}
		q.Renderer.Partial(w, r, "topic_options_more", &render.PageData{
			Data: map[string]any{
				"Options":     fresh,
				"OptionsMore": st.HasMore(),
				"PickerFor":   slugVal,
			},
		})
		return
	}

	if !q.settle(w, r, listTopicOptions) {
		return
	}
	items, st, err := p.Load(r.Context(), pager.Query{Search: strings.TrimSpace(r.URL.Query().Get("topicSearch"))})
	if err != nil {
		if errors.Is(err, pager.ErrBusy) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		q.failed(w, r, "load topic options", err)
		return
	}
	// The more control lives outside the select; refresh it out of band.
	q.Renderer.Partial(w, r, "topic_options_more", &render.PageData{
		Data: map[string]any{
			"Options":     items,
			"OptionsMore": st.HasMore(),
			"PickerFor":   slugVal,
		},
	})
}

// draftFor returns the stored draft of slugVal. A missing or foreign
// draft answers 409 so the page can be reloaded.
func (q *Questions) draftFor(w http.ResponseWriter, r *http.Request, slugVal string) (editor.Draft, bool) {
	d, ok, err := q.scope(r).Draft.Get(r.Context())
	if err != nil {
		q.failed(w, r, "load draft", err)
		return editor.Draft{}, false
	}
	if !ok || d.Original.Slug != slugVal {
		q.toast(w, http.StatusConflict, flash.Failed("This edit is no longer active. Reload the page to edit again."))
		return editor.Draft{}, false
	}
	return d, true
}

// applyEdits copies the submitted editor fields into d and stores it.
func (q *Questions) applyEdits(w http.ResponseWriter, r *http.Request, d *editor.Draft) bool {
	vals := formValues(r)
	for _, field := range []string{editor.FieldTitle, editor.FieldDescription, editor.FieldSolution} {
		if _, sent := vals[field]; !sent {
			continue
		}
		if err := d.Set(field, vals.Get(field)); err != nil {
			q.toast(w, http.StatusBadRequest, flash.Failed(err.Error()))
			return false
		}
	}
	sc := q.scope(r)
	if topic := vals.Get(editor.FieldTopic); topic != "" && topic != d.Current.Topic.Slug {
		opt, found, err := sc.TopicOptions.Find(r.Context(), topic)
		if topic == d.Original.Topic.Slug {
			opt, found, err = models.Option{Label: d.Original.Topic.Name, Value: topic}, true, nil
		}
		if err != nil || !found {
			q.toast(w, http.StatusUnprocessableEntity, flash.Failed("Select a topic from the list."))
			return false
		}
		d.SetTopic(opt)
	}
	if err := sc.Draft.Set(r.Context(), *d); err != nil {
		q.failed(w, r, "store draft", err)
		return false
	}
	return true
}

func (q *Questions) renderEditor(w http.ResponseWriter, r *http.Request, d editor.Draft) {
	opts, err := q.scope(r).TopicOptions.List(r.Context())
	if err != nil {
		slog.Warn("list topic options failed", "error", err)
	}
	p := q.topicOptionPager(r)
	st, _ := p.State(r.Context())
	if len(opts) == 0 {
		if opts, st, err = p.Load(r.Context(), pager.Query{}); err != nil && !errors.Is(err, pager.ErrBusy) {
			logFailure(r, "load topic options", err)
		}
	}
	// The current topic is always selectable.
	cur := models.Option{Label: d.Current.Topic.Name, Value: d.Current.Topic.Slug}
	if cur.Value != "" && !containsOption(opts, cur.Value) {
		opts = append([]models.Option{cur}, opts...)
	}
	q.Renderer.Partial(w, r, "question_editor", &render.PageData{
		Data: map[string]any{
			"Question":    d.Current,
			"Dirty":       d.Dirty(),
			"PickerFor":   d.Original.Slug,
			"TopicSlug":   d.Current.Topic.Slug,
			"Options":     opts,
			"OptionsMore": st.HasMore(),
		},
	})
}

func containsOption(opts []models.Option, value string) bool {
	for _, o := range opts {
		if o.Value == value {
			return true
		}
	}
	return false
}
