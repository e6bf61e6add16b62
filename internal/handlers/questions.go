// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"prepdeck/internal/apiclient"
	"prepdeck/internal/flash"
	"prepdeck/internal/middleware"
	"prepdeck/internal/models"
	"prepdeck/internal/render"
	"prepdeck/internal/store"
)

// Questions groups the question list, detail, edit and create handlers.
type Questions struct {
	base
}

// NewQuestions creates the question handler group.
func NewQuestions(d Deps) *Questions {
	return &Questions{base: newBase(d)}
}

// questionList describes one question listing page.
type questionList struct {
	category  string
	topic     string
	heading   string
	backURL   string
	backLabel string
	searchURL string
}

// owner identifies the list the cached questions belong to.
func (l questionList) owner() string {
	return l.category + "/" + l.topic
}

// CategoryQuestions lists every question of a category.
func (q *Questions) CategoryQuestions(w http.ResponseWriter, r *http.Request) {
	category, ok := q.slugParam(w, r, "category")
	if !ok {
		return
	}
	name := category
	if cat, found, _ := q.scope(r).Categories.Find(r.Context(), category); found {
		name = cat.Name
	}
	q.list(w, r, questionList{
		category:  category,
		heading:   name + " questions",
		backURL:   "/category/" + category,
		backLabel: "Topics",
		searchURL: "/category/" + category + "/questions",
	})
}

// TopicQuestions lists the questions of one topic.
func (q *Questions) TopicQuestions(w http.ResponseWriter, r *http.Request) {
	category, ok := q.slugParam(w, r, "category")
	if !ok {
		return
	}
	topic, ok := q.slugParam(w, r, "topic")
	if !ok {
		return
	}
	name := topic
	if t, found, _ := q.scope(r).Topics.Find(r.Context(), topic); found {
		name = t.Name
	}
	q.list(w, r, questionList{
		category:  category,
		topic:     topic,
		heading:   name,
		backURL:   "/category/" + category,
		backLabel: "Topics",
		searchURL: "/category/" + category + "/topic/" + topic,
	})
}

func (q *Questions) list(w http.ResponseWriter, r *http.Request, l questionList) {
	search := strings.TrimSpace(r.URL.Query().Get("query"))
	verified := verifiedFilter(r)
	partial := searching(r, "question-results")
	if partial && !q.settle(w, r, listQuestions) {
		return
	}

	sc := q.scope(r)
	owner := store.NewValue[string](sc.KV(), sc.Key("questions-owner"))
	var toasts []flash.Toast

	items, err := q.client(r).ListQuestions(r.Context(), apiclient.QuestionQuery{
		CategorySlug: l.category,
		TopicSlug:    l.topic,
		Search:       search,
		Verified:     verified,
	})
	if err != nil {
		if q.expired(w, r, err) {
			return
		}
		logFailure(r, "load questions", err)
		toasts = append(toasts, flash.Failed(apiclient.UserMessage(err)))
		items = nil
		if cur, _, _ := owner.Get(r.Context()); cur == l.owner() {
			items, _ = sc.Questions.List(r.Context())
		}
	} else {
		if err := sc.Questions.Replace(r.Context(), items); err != nil {
			slog.Warn("cache questions failed", "error", err)
		}
		if err := owner.Set(r.Context(), l.owner()); err != nil {
			slog.Warn("cache questions owner failed", "error", err)
		}
	}

	data := &render.PageData{
		Title:   l.heading,
		Section: "questions",
		Flashes: toasts,
		Data: map[string]any{
			"Category":  l.category,
			"Questions": items,
			"Heading":   l.heading,
			"BackURL":   l.backURL,
			"BackLabel": l.backLabel,
			"SearchURL": l.searchURL,
			"Query":     search,
			"Verified":  verified,
		},
	}
	if partial {
		q.Renderer.Partial(w, r, "question_rows", data)
		return
	}
	q.Renderer.Page(w, r, "questions", data)
}

// detailFailed renders the error page for a question that could not be
// loaded.
func (q *Questions) detailFailed(w http.ResponseWriter, r *http.Request, err error) {
	if q.expired(w, r, err) {
		return
	}
	logFailure(r, "load question", err)
	if apiErr, ok := apiclient.AsAPIError(err); ok && apiErr.Status == http.StatusNotFound {
		q.notFound(w, r)
		return
	}
	if middleware.IsHTMX(r) {
		q.toast(w, statusFor(err), flash.Failed(apiclient.UserMessage(err)))
		return
	}
	q.Renderer.Page(w, r, "error", &render.PageData{
		Title:  "Question unavailable",
		Status: statusFor(err),
		Data:   map[string]any{"Message": apiclient.UserMessage(err)},
	})
}

// summary converts question details into the list form.
func summary(d models.QuestionDetails) models.Question {
	return models.Question{
		Title:       d.Title,
		Description: d.Description,
		YoutubeLink: d.YoutubeLink,
		WebsiteLink: d.WebsiteLink,
		Verified:    d.Verified,
		Type:        d.Type,
		Slug:        d.Slug,
	}
}
