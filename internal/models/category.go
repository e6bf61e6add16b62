// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Category is the top-level grouping of topics.
type Category struct {
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Verified  bool   `json:"verified"`
	CanModify bool   `json:"canModify"`
}

// GetSlug implements Slugged.
func (c Category) GetSlug() string { return c.Slug }

// CategoryRef is the embedded category reference carried by topics.
type CategoryRef struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Topic belongs to exactly one category.
type Topic struct {
	Name      string      `json:"name"`
	Slug      string      `json:"slug"`
	Verified  bool        `json:"verified"`
	CanModify bool        `json:"canModify"`
	Category  CategoryRef `json:"category"`
}

// GetSlug implements Slugged.
func (t Topic) GetSlug() string { return t.Slug }

// Option is a dropdown entry whose value is an entity slug.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// GetSlug implements Slugged.
func (o Option) GetSlug() string { return o.Value }

// TopicOption maps a topic to a dropdown option.
func TopicOption(t Topic) Option {
	return Option{Label: t.Name, Value: t.Slug}
}
