// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package apiclient

import (
	"context"
	"net/http"
	"strings"

	"prepdeck/internal/models"
)

// TopicInput is the create/update body for topics.
type TopicInput struct {
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"` // category slug
	Verified *bool  `json:"verified,omitempty"`
}

// ListTopics fetches one page of topics. An empty category lists topics
// across all categories (used by the question topic dropdown).
func (c *Client) ListTopics(ctx context.Context, category string, q ListQuery) (models.Page[models.Topic], error) {
	v := q.values()
	if strings.TrimSpace(category) != "" {
		v.Set("categorySlug", category)
	}
	var page models.Page[models.Topic]
	err := c.do(ctx, http.MethodGet, "/topic/all", v, nil, &page)
	return page, err
}

// CreateTopic creates a topic and returns it as stored.
func (c *Client) CreateTopic(ctx context.Context, in TopicInput) (*models.Topic, error) {
	var t models.Topic
	if err := c.doEntity(ctx, http.MethodPost, "/topic/create", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTopic patches the topic identified by slug.
func (c *Client) UpdateTopic(ctx context.Context, slug string, in TopicInput) (*models.Topic, error) {
	var t models.Topic
	if err := c.doEntity(ctx, http.MethodPatch, "/topic/update/"+segment(slug), in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTopic removes the topic identified by slug.
func (c *Client) DeleteTopic(ctx context.Context, slug string) error {
	return c.do(ctx, http.MethodDelete, "/topic/delete/"+segment(slug), nil, nil, nil)
}
