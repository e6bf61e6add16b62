// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package pager drives paginated lists: a fresh query loads page 1 and
// replaces the cached list, "load more" fetches the next page and appends.
// Cached items live in a store.Collection, the position in a store.Value.
package pager

import (
	"context"
	"errors"
	"fmt"

	"prepdeck/internal/models"
	"prepdeck/internal/store"
)

var (
	// ErrBusy is returned when a fetch for the same list is in flight.
	ErrBusy = errors.New("pager: list is loading")
	// ErrNoMore is returned by LoadMore once the last page is cached.
	ErrNoMore = errors.New("pager: no more pages")
)

// Query is the filter part of a list request.
type Query struct {
	Parent   string `json:"parent,omitempty"` // owning category slug, for topic lists
	Search   string `json:"search"`
	Verified *bool  `json:"verified"`
}

// Equal reports whether both queries select the same list.
func (q Query) Equal(o Query) bool {
	if q.Parent != o.Parent || q.Search != o.Search {
		return false
	}
	if q.Verified == nil || o.Verified == nil {
		return q.Verified == nil && o.Verified == nil
	}
	return *q.Verified == *o.Verified
}

// State is the cached pagination position of one list.
type State struct {
	Query      Query `json:"query"`
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
}

// HasMore reports whether pages remain after the cached ones.
func (s State) HasMore() bool {
	return s.Page < s.TotalPages
}

// Fetcher loads one page of a list from the backend.
type Fetcher[T any] func(ctx context.Context, page int, q Query) (models.Page[T], error)

// Controller ties a cached list, its position and a fetcher together.
type Controller[T models.Slugged] struct {
	key   string
	guard *Guard
	list  store.Repository[T]
	state *store.Value[State]
	fetch Fetcher[T]
}

// New creates a Controller. key identifies the list for the busy guard and
// must be unique per session and list.
func New[T models.Slugged](guard *Guard, key string, list store.Repository[T], state *store.Value[State], fetch Fetcher[T]) *Controller[T] {
	return &Controller[T]{key: key, guard: guard, list: list, state: state, fetch: fetch}
}

// State returns the cached position. A list never loaded is the zero State.
func (c *Controller[T]) State(ctx context.Context) (State, error) {
	st, _, err := c.state.Get(ctx)
	return st, err
}

// Loading reports whether a fetch for this list is in flight.
func (c *Controller[T]) Loading() bool {
	return c.guard.Busy(c.key)
}

// Load fetches page 1 of q and replaces the cached list with it. When q
// differs from the cached query the list is discarded before the fetch, so
// a failed fetch leaves it empty rather than showing stale matches.
func (c *Controller[T]) Load(ctx context.Context, q Query) ([]T, State, error) {
	release, ok := c.guard.TryAcquire(c.key)
	if !ok {
		return nil, State{}, ErrBusy
	}
	defer release()

	prev, found, err := c.state.Get(ctx)
	if err != nil {
		return nil, State{}, err
	}
	if !found || !prev.Query.Equal(q) {
		prev = State{Query: q}
		if err := c.list.Replace(ctx, nil); err != nil {
			return nil, prev, err
		}
		if err := c.state.Set(ctx, prev); err != nil {
			return nil, prev, err
		}
	}

	res, err := c.fetch(ctx, 1, q)
	if err != nil {
		return nil, prev, fmt.Errorf("load page 1: %w", err)
	}
	if err := c.list.Replace(ctx, res.Data); err != nil {
		return nil, prev, err
	}
	next := State{Query: q, Page: pageOr(res.Page, 1), TotalPages: res.TotalPages}
	if err := c.state.Set(ctx, next); err != nil {
		return nil, prev, err
	}
	items, err := c.list.List(ctx)
	return items, next, err
}

// LoadMore fetches the page after the cached one and appends it. It returns
// only the items that were not cached yet. Nothing is requested while the
// list is loading or when no pages remain.
func (c *Controller[T]) LoadMore(ctx context.Context) ([]T, State, error) {
	release, ok := c.guard.TryAcquire(c.key)
	if !ok {
		return nil, State{}, ErrBusy
	}
	defer release()

	st, _, err := c.state.Get(ctx)
	if err != nil {
		return nil, st, err
	}
	if !st.HasMore() {
		return nil, st, ErrNoMore
	}

	want := st.Page + 1
	res, err := c.fetch(ctx, want, st.Query)
	if err != nil {
		return nil, st, fmt.Errorf("load page %d: %w", want, err)
	}

	current, err := c.list.List(ctx)
	if err != nil {
		return nil, st, err
	}
	seen := make(map[string]struct{}, len(current))
	for _, it := range current {
		seen[it.GetSlug()] = struct{}{}
	}
	fresh := make([]T, 0, len(res.Data))
	for _, it := range res.Data {
		if _, dup := seen[it.GetSlug()]; dup {
			continue
		}
		seen[it.GetSlug()] = struct{}{}
		fresh = append(fresh, it)
	}
	if err := c.list.Append(ctx, fresh); err != nil {
		return nil, st, err
	}

	next := State{Query: st.Query, Page: pageOr(res.Page, want), TotalPages: res.TotalPages}
	if err := c.state.Set(ctx, next); err != nil {
		return nil, st, err
	}
	return fresh, next, nil
}

func pageOr(page, fallback int) int {
	if page < 1 {
		return fallback
	}
	return page
}
