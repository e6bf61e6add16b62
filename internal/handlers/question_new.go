// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"prepdeck/internal/apiclient"
	"prepdeck/internal/flash"
	"prepdeck/internal/form"
	"prepdeck/internal/middleware"
	"prepdeck/internal/models"
	"prepdeck/internal/pager"
	"prepdeck/internal/render"
)

func questionForm(topics []models.Option) *form.Form {
	opts := make([]form.Option, len(topics))
	for i, t := range topics {
		opts[i] = form.Option{Label: t.Label, Value: t.Value}
	}
	return form.New(
		form.Field{
			Name:     "title",
			Label:    "Title",
			Kind:     form.Text,
			Required: true,
			Validate: form.Rule("max=300", "Title is too long (max 300 characters)."),
		},
		form.Field{
			Name:     "description",
			Label:    "Description",
			Kind:     form.TextArea,
			Required: true,
			Validate: form.Rule("max=100000", "Description is too long (max 100,000 characters)."),
		},
		form.Field{
			Name:     "solution",
			Label:    "Solution",
			Kind:     form.TextArea,
			Validate: form.Rule("max=100000", "Solution is too long (max 100,000 characters)."),
		},
		form.Field{
			Name:     "youtubeLink",
			Label:    "YouTube link",
			Kind:     form.URL,
			Validate: form.Optional(form.Rule("url", "")),
		},
		form.Field{
			Name:     "websiteLink",
			Label:    "Documentation link",
			Kind:     form.URL,
			Validate: form.Optional(form.Rule("url", "")),
		},
		form.Field{
			Name:     "type",
			Label:    "Type",
			Kind:     form.Select,
			Required: true,
			Validate: form.Rule("oneof="+string(models.QuestionCoding)+" "+string(models.QuestionTheory), "must be CODING or THEORY"),
			Options: []form.Option{
				{Label: "Coding", Value: string(models.QuestionCoding)},
				{Label: "Theory", Value: string(models.QuestionTheory)},
			},
		},
		form.Field{Name: "topic", Label: "Topic", Kind: form.Select, Required: true, Options: opts},
	)
}

// topicChoices returns the first page of the topic dropdown, loading it
// when the session has none cached.
func (q *Questions) topicChoices(r *http.Request) []models.Option {
	opts, err := q.scope(r).TopicOptions.List(r.Context())
	if err == nil && len(opts) > 0 {
		return opts
	}
	opts, _, err = q.topicOptionPager(r).Load(r.Context(), pager.Query{})
	if err != nil && !errors.Is(err, pager.ErrBusy) {
		logFailure(r, "load topic options", err)
	}
	return opts
}

// NewQuestion renders the question create form.
func (q *Questions) NewQuestion(w http.ResponseWriter, r *http.Request) {
	f := questionForm(q.topicChoices(r))
	f.Fill(form.Values{"type": string(models.QuestionCoding)})
	q.Renderer.Page(w, r, "question_new", &render.PageData{
		Title:   "New question",
		Section: "questions",
		Data:    map[string]any{"Form": f},
	})
}

// CreateQuestion validates the form, creates the question and opens it.
func (q *Questions) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	f := questionForm(q.topicChoices(r))
	f.Bind(formValues(r))

	var created *models.QuestionDetails
	err := f.Submit(r.Context(), func(ctx context.Context, v form.Values) error {
		var err error
		created, err = q.client(r).CreateQuestion(ctx, models.QuestionInput{
			Title:       v.Get("title"),
			Description: v.Get("description"),
			Solution:    v.Get("solution"),
			YoutubeLink: v.Get("youtubeLink"),
			WebsiteLink: v.Get("websiteLink"),
			Type:        models.QuestionType(v.Get("type")),
			Topic:       v.Get("topic"),
		})
		return err
	})
	if err != nil {
		if q.expired(w, r, err) {
			return
		}
		data := &render.PageData{
			Title:   "New question",
			Section: "questions",
			Status:  http.StatusUnprocessableEntity,
			Data:    map[string]any{"Form": f},
		}
		if !errors.Is(err, form.ErrInvalid) {
			logFailure(r, "create question", err)
			data.Status = statusFor(err)
			data.Flashes = []flash.Toast{flash.Failed(apiclient.UserMessage(err))}
		}
		q.Renderer.Page(w, r, "question_new", data)
		return
	}

	if created.Slug != "" {
		if err := q.scope(r).Questions.Add(r.Context(), summary(*created)); err != nil {
			slog.Warn("cache created question failed", "slug", created.Slug, "error", err)
		}
	}
	q.Flashes.Add(w, r, flash.Succeeded("Question created successfully!"))
	category := created.Topic.Category.Slug
	if category == "" || created.Slug == "" {
		middleware.Redirect(w, r, "/")
		return
	}
	middleware.Redirect(w, r, "/category/"+category+"/question/"+created.Slug)
}
