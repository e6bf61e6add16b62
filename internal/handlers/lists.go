// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"

	"prepdeck/internal/apiclient"
	"prepdeck/internal/models"
	"prepdeck/internal/pager"
	"prepdeck/internal/store"
)

// Names of the session lists. Each has its own pager state and guard key.
const (
	listCategories   = "categories"
	listTopics       = "topics"
	listTopicOptions = "topic-options"
	listQuestions    = "questions"
)

func pageState(sc *store.Scope, list string) *store.Value[pager.State] {
	return store.NewValue[pager.State](sc.KV(), sc.Key(list+"-page"))
}

func (b *base) categoryPager(r *http.Request) *pager.Controller[models.Category] {
	sc := b.scope(r)
	api := b.client(r)
	limit := b.PageSize
	return pager.New[models.Category](b.Guard, listKey(r, listCategories), sc.Categories, pageState(sc, listCategories),
		func(ctx context.Context, page int, q pager.Query) (models.Page[models.Category], error) {
			return api.ListCategories(ctx, apiclient.ListQuery{Page: page, Limit: limit, Search: q.Search, Verified: q.Verified})
		})
}

func (b *base) topicPager(r *http.Request) *pager.Controller[models.Topic] {
	sc := b.scope(r)
	api := b.client(r)
	limit := b.PageSize
	return pager.New[models.Topic](b.Guard, listKey(r, listTopics), sc.Topics, pageState(sc, listTopics),
		func(ctx context.Context, page int, q pager.Query) (models.Page[models.Topic], error) {
			return api.ListTopics(ctx, q.Parent, apiclient.ListQuery{Page: page, Limit: limit, Search: q.Search, Verified: q.Verified})
		})
}

// topicOptionPager lists topics across all categories as dropdown options.
func (b *base) topicOptionPager(r *http.Request) *pager.Controller[models.Option] {
	sc := b.scope(r)
	api := b.client(r)
	return pager.New[models.Option](b.Guard, listKey(r, listTopicOptions), sc.TopicOptions, pageState(sc, listTopicOptions),
		func(ctx context.Context, page int, q pager.Query) (models.Page[models.Option], error) {
			res, err := api.ListTopics(ctx, "", apiclient.ListQuery{Page: page, Search: q.Search})
			if err != nil {
				return models.Page[models.Option]{}, err
			}
			opts := make([]models.Option, len(res.Data))
			for i, t := range res.Data {
				opts[i] = models.TopicOption(t)
			}
			return models.Page[models.Option]{Data: opts, Page: res.Page, TotalPages: res.TotalPages}, nil
		})
}
