// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store holds the per-session mirror of server state: ordered,
// slug-keyed lists of categories, topics, questions and dropdown options,
// plus single values such as the opened question. Lists are replaced on
// page-1 loads, appended on "load more", and spliced on point mutations.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"prepdeck/internal/cache"
	"prepdeck/internal/models"
)

// Repository is the read/update contract for one cached entity list.
type Repository[T models.Slugged] interface {
	List(ctx context.Context) ([]T, error)
	Find(ctx context.Context, slug string) (T, bool, error)
	Replace(ctx context.Context, items []T) error
	Append(ctx context.Context, items []T) error
	Add(ctx context.Context, item T) error
	Update(ctx context.Context, item T) (bool, error)
	Remove(ctx context.Context, slug string) error
}

// Per-entity repositories.
type (
	CategoryRepository = Repository[models.Category]
	TopicRepository    = Repository[models.Topic]
	QuestionRepository = Repository[models.Question]
	OptionRepository   = Repository[models.Option]
)

// Collection is a Repository persisted as one JSON array in a KV.
// Each operation is a read-modify-write of the whole list; concurrent
// writers to the same key are last-writer-wins.
type Collection[T models.Slugged] struct {
	kv  cache.KV
	key string
}

// NewCollection returns the collection stored under key.
func NewCollection[T models.Slugged](kv cache.KV, key string) *Collection[T] {
	return &Collection[T]{kv: kv, key: key}
}

// List returns the cached items in order. A missing list is empty.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	raw, ok, err := c.kv.Get(ctx, c.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("store decode %s: %w", c.key, err)
	}
	return items, nil
}

// Find returns the item with the given slug.
func (c *Collection[T]) Find(ctx context.Context, slug string) (T, bool, error) {
	var zero T
	items, err := c.List(ctx)
	if err != nil {
		return zero, false, err
	}
	for _, it := range items {
		if it.GetSlug() == slug {
			return it, true, nil
		}
	}
	return zero, false, nil
}

// Replace discards the cached list and stores items in its place.
func (c *Collection[T]) Replace(ctx context.Context, items []T) error {
	return c.save(ctx, dedupe(nil, items))
}

// Append adds items after the existing ones, skipping slugs already present.
func (c *Collection[T]) Append(ctx context.Context, items []T) error {
	current, err := c.List(ctx)
	if err != nil {
		return err
	}
	return c.save(ctx, dedupe(current, items))
}

// Add appends a newly created item. If the slug is already cached the
// entry is replaced in place, so the slug appears exactly once.
func (c *Collection[T]) Add(ctx context.Context, item T) error {
	current, err := c.List(ctx)
	if err != nil {
		return err
	}
	if replaceBySlug(current, item) {
		return c.save(ctx, current)
	}
	return c.save(ctx, append(current, item))
}

// Update replaces the entry whose slug matches item. It reports false,
// leaving the list untouched, when no entry matches.
func (c *Collection[T]) Update(ctx context.Context, item T) (bool, error) {
	current, err := c.List(ctx)
	if err != nil {
		return false, err
	}
	if !replaceBySlug(current, item) {
		return false, nil
	}
	return true, c.save(ctx, current)
}

// Remove filters out every entry with the given slug.
func (c *Collection[T]) Remove(ctx context.Context, slug string) error {
	current, err := c.List(ctx)
	if err != nil {
		return err
	}
	kept := current[:0]
	for _, it := range current {
		if it.GetSlug() != slug {
			kept = append(kept, it)
		}
	}
	return c.save(ctx, kept)
}

// Clear drops the cached list.
func (c *Collection[T]) Clear(ctx context.Context) error {
	return c.kv.Delete(ctx, c.key)
}

func (c *Collection[T]) save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("store encode %s: %w", c.key, err)
	}
	return c.kv.Set(ctx, c.key, raw)
}

// dedupe appends next to base, dropping any slug already seen.
func dedupe[T models.Slugged](base, next []T) []T {
	seen := make(map[string]struct{}, len(base)+len(next))
	out := make([]T, 0, len(base)+len(next))
	for _, group := range [][]T{base, next} {
		for _, it := range group {
			if _, dup := seen[it.GetSlug()]; dup {
				continue
			}
			seen[it.GetSlug()] = struct{}{}
			out = append(out, it)
		}
	}
	return out
}

// replaceBySlug swaps the entry sharing item's slug and reports whether
// a match was found.
func replaceBySlug[T models.Slugged](items []T, item T) bool {
	found := false
	for i, it := range items {
		if it.GetSlug() == item.GetSlug() {
			items[i] = item
			found = true
			break
		}
	}
	return found
}
