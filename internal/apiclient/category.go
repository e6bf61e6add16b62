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

// DefaultPageSize is the category page size the backend expects.
const DefaultPageSize = 10

// ListQuery selects one page of a paginated list.
type ListQuery struct {
	Page     int
	Limit    int // 0 omits the parameter
	Search   string
	Verified *bool
}

// values encodes the query the way the backend reads it: blank searches
// and unset filters are left out entirely.
func (q ListQuery) values() url.Values {
	v := url.Values{}
	page := q.Page
	if page < 1 {
		page = 1
	}
	v.Set("page", strconv.Itoa(page))
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if strings.TrimSpace(q.Search) != "" {
		v.Set("searchValue", q.Search)
	}
	if q.Verified != nil {
		v.Set("isVerified", strconv.FormatBool(*q.Verified))
	}
	return v
}

// CategoryInput is the create/update body. Verified is only sent when set.
type CategoryInput struct {
	Name     string `json:"name,omitempty"`
	Verified *bool  `json:"verified,omitempty"`
}

// ListCategories fetches one page of categories.
func (c *Client) ListCategories(ctx context.Context, q ListQuery) (models.Page[models.Category], error) {
	if q.Limit == 0 {
		q.Limit = DefaultPageSize
	}
	var page models.Page[models.Category]
	err := c.do(ctx, http.MethodGet, "/category/all", q.values(), nil, &page)
	return page, err
}

// CreateCategory creates a category and returns it as stored.
func (c *Client) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	var cat models.Category
	if err := c.doEntity(ctx, http.MethodPost, "/category/create", in, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// UpdateCategory patches the category identified by slug.
func (c *Client) UpdateCategory(ctx context.Context, slug string, in CategoryInput) (*models.Category, error) {
	var cat models.Category
	if err := c.doEntity(ctx, http.MethodPatch, "/category/update/"+segment(slug), in, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// DeleteCategory removes the category identified by slug.
func (c *Client) DeleteCategory(ctx context.Context, slug string) error {
	return c.do(ctx, http.MethodDelete, "/category/delete/"+segment(slug), nil, nil, nil)
}
