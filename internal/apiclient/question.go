// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"prepdeck/internal/models"
)

// QuestionQuery filters the question list. It is not paginated.
type QuestionQuery struct {
	CategorySlug string
	TopicSlug    string
	Search       string
	Verified     *bool
}

func (q QuestionQuery) values() url.Values {
	v := url.Values{}
	if q.CategorySlug != "" {
		v.Set("categorySlug", q.CategorySlug)
	}
	if q.TopicSlug != "" {
		v.Set("topicSlug", q.TopicSlug)
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("searchValue", s)
	}
	if q.Verified != nil {
		v.Set("verified", strconv.FormatBool(*q.Verified))
	}
	return v
}

type questionListResponse struct {
	Data []models.Question `json:"data"`
}

type questionDetailsResponse struct {
	Question models.QuestionDetails `json:"question"`
}

// ListQuestions returns every question matching q.
func (c *Client) ListQuestions(ctx context.Context, q QuestionQuery) ([]models.Question, error) {
	var res questionListResponse
	if err := c.do(ctx, http.MethodGet, "/question/all", q.values(), nil, &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

// QuestionDetails returns the full form of one question.
func (c *Client) QuestionDetails(ctx context.Context, slug string) (*models.QuestionDetails, error) {
	var res questionDetailsResponse
	if err := c.do(ctx, http.MethodGet, "/question/details/"+segment(slug), nil, nil, &res); err != nil {
		return nil, err
	}
	return &res.Question, nil
}

// CreateQuestion creates a question under the topic named in the input.
func (c *Client) CreateQuestion(ctx context.Context, in models.QuestionInput) (*models.QuestionDetails, error) {
	var res questionDetailsResponse
	if err := c.do(ctx, http.MethodPost, "/question/create", nil, in, &res); err != nil {
		return nil, err
	}
	return &res.Question, nil
}

// UpdateQuestion patches the question identified by slug.
func (c *Client) UpdateQuestion(ctx context.Context, slug string, in models.QuestionPatch) (*models.QuestionDetails, error) {
	var res questionDetailsResponse
	if err := c.do(ctx, http.MethodPatch, "/question/update/"+segment(slug), nil, in, &res); err != nil {
		return nil, err
	}
	return &res.Question, nil
}
