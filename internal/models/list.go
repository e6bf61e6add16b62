// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "strings"

// Slugged is implemented by every listable entity. The slug is both the
// list key and the API path segment.
type Slugged interface {
	GetSlug() string
}

// Page is one page of a paginated list response.
type Page[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
}

// HasMore reports whether pages remain after this one.
func (p Page[T]) HasMore() bool {
	return p.Page < p.TotalPages
}

// FilterOption is one entry of the verified filter menu.
type FilterOption struct {
	Label string
	Value string
}

// FilterOptions lists the verified filter menu entries in display order.
var FilterOptions = []FilterOption{
	{Label: "All", Value: ""},
	{Label: "VERIFIED", Value: "true"},
	{Label: "NOT VERIFIED", Value: "false"},
}

// ParseVerifiedFilter converts a query value into a tri-state filter.
// Anything other than "true" or "false" means no filter.
func ParseVerifiedFilter(raw string) *bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	}
	return nil
}

// FormatVerifiedFilter is the inverse of ParseVerifiedFilter.
func FormatVerifiedFilter(f *bool) string {
	if f == nil {
		return ""
	}
	if *f {
		return "true"
	}
	return "false"
}

// FilterLabel returns the menu label for the filter, or "Options" when unset.
func FilterLabel(f *bool) string {
	if f == nil {
		return "Options"
	}
	for _, o := range FilterOptions {
		if o.Value == FormatVerifiedFilter(f) {
			return o.Label
		}
	}
	return "Options"
}

// Visible decides whether a list entry renders. Unverified entries are
// hidden from viewers who cannot modify them, and an active filter must
// match the verified flag.
func Visible(verified, canModify bool, filter *bool) bool {
	if !canModify && !verified {
		return false
	}
	if filter != nil && *filter != verified {
		return false
	}
	return true
}
