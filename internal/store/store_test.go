// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"prepdeck/internal/cache"
	"prepdeck/internal/editor"
	"prepdeck/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(cache.NewValkey(client, "state:", 0))
}

func categories(from, to int) []models.Category {
	var out []models.Category
	for i := from; i <= to; i++ {
		out = append(out, models.Category{Name: fmt.Sprintf("Cat %d", i), Slug: fmt.Sprintf("cat-%d", i)})
	}
	return out
}

func slugs[T models.Slugged](items []T) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.GetSlug()
	}
	return out
}

func TestCollection_EmptyList(t *testing.T) {
	sc := testStore(t).Scope("s1")
	items, err := sc.Categories.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", items)
	}
}

func TestCollection_ReplaceThenAppend(t *testing.T) {
	ctx := context.Background()
	sc := testStore(t).Scope("s1")

	if err := sc.Categories.Replace(ctx, categories(1, 10)); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	// Overlapping page: cat-10 must not be duplicated.
	if err := sc.Categories.Append(ctx, categories(10, 20)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	items, _ := sc.Categories.List(ctx)
	if len(items) != 20 {
		t.Fatalf("expected 20 items, got %d", len(items))
	}
	if items[0].Slug != "cat-1" || items[19].Slug != "cat-20" {
		t.Errorf("unexpected order: %v", slugs(items))
	}

	if err := sc.Categories.Replace(ctx, categories(5, 6)); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	items, _ = sc.Categories.List(ctx)
	if len(items) != 2 {
		t.Errorf("Replace should discard previous items, got %v", slugs(items))
	}
}

func TestCollection_AddExactlyOnce(t *testing.T) {
	ctx := context.Background()
	sc := testStore(t).Scope("s1")
	_ = sc.Categories.Replace(ctx, categories(1, 2))

	if err := sc.Categories.Add(ctx, models.Category{Name: "New", Slug: "new"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := sc.Categories.Add(ctx, models.Category{Name: "Renamed", Slug: "new"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	items, _ := sc.Categories.List(ctx)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %v", slugs(items))
	}
	if items[2].Name != "Renamed" {
		t.Errorf("second Add should replace in place, got %q", items[2].Name)
	}
}

func TestCollection_UpdateAndRemove(t *testing.T) {
	ctx := context.Background()
	sc := testStore(t).Scope("s1")
	_ = sc.Categories.Replace(ctx, categories(1, 3))

	ok, err := sc.Categories.Update(ctx, models.Category{Name: "Two", Slug: "cat-2", Verified: true})
	if err != nil || !ok {
		t.Fatalf("Update: ok=%v err=%v", ok, err)
	}
	got, found, _ := sc.Categories.Find(ctx, "cat-2")
	if !found || !got.Verified || got.Name != "Two" {
		t.Errorf("Find after Update = %+v, %v", got, found)
	}

	ok, _ = sc.Categories.Update(ctx, models.Category{Slug: "missing"})
	if ok {
		t.Error("Update of missing slug should report false")
	}
	items, _ := sc.Categories.List(ctx)
	if len(items) != 3 {
		t.Errorf("Update of missing slug changed the list: %v", slugs(items))
	}

	if err := sc.Categories.Remove(ctx, "cat-2"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	items, _ = sc.Categories.List(ctx)
	want := []string{"cat-1", "cat-3"}
	if fmt.Sprint(slugs(items)) != fmt.Sprint(want) {
		t.Errorf("after Remove got %v, want %v", slugs(items), want)
	}
}

func TestScope_Isolation(t *testing.T) {
	ctx := context.Background()
	st := testStore(t)
	a, b := st.Scope("a"), st.Scope("b")

	_ = a.Categories.Replace(ctx, categories(1, 2))
	items, _ := b.Categories.List(ctx)
	if len(items) != 0 {
		t.Errorf("session b sees session a state: %v", slugs(items))
	}
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	st := testStore(t)
	a, b := st.Scope("a"), st.Scope("b")

	_ = a.Categories.Replace(ctx, categories(1, 2))
	_ = a.Opened.Set(ctx, models.QuestionDetails{Title: "Q", Slug: "q"})
	_ = a.Draft.Set(ctx, editor.Begin(models.QuestionDetails{Title: "Q", Slug: "q"}))
	_ = b.Categories.Replace(ctx, categories(1, 1))

	if err := st.Clear(ctx, "a"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if items, _ := a.Categories.List(ctx); len(items) != 0 {
		t.Errorf("categories survived Clear: %v", slugs(items))
	}
	if _, ok, _ := a.Opened.Get(ctx); ok {
		t.Error("opened question survived Clear")
	}
	if _, ok, _ := a.Draft.Get(ctx); ok {
		t.Error("draft survived Clear")
	}
	if items, _ := b.Categories.List(ctx); len(items) != 1 {
		t.Error("Clear removed another session's state")
	}
}

func TestValue_GetSetClear(t *testing.T) {
	ctx := context.Background()
	sc := testStore(t).Scope("s1")

	if _, ok, err := sc.Opened.Get(ctx); ok || err != nil {
		t.Fatalf("empty Get = %v, %v", ok, err)
	}
	want := models.QuestionDetails{Title: "Two sum", Slug: "two-sum", Type: models.QuestionCoding}
	if err := sc.Opened.Set(ctx, want); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := sc.Opened.Get(ctx)
	if err != nil || !ok {
		t.Fatalf("Get: %v %v", ok, err)
	}
	if got.Title != want.Title || got.Type != want.Type {
		t.Errorf("Get = %+v", got)
	}
	if err := sc.Opened.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := sc.Opened.Get(ctx); ok {
		t.Error("value survived Clear")
	}
}

func TestOptions_KeyedByValue(t *testing.T) {
	ctx := context.Background()
	sc := testStore(t).Scope("s1")
	topic := models.Topic{Name: "Arrays", Slug: "arrays"}

	_ = sc.TopicOptions.Replace(ctx, []models.Option{models.TopicOption(topic)})
	_ = sc.TopicOptions.Add(ctx, models.TopicOption(topic))
	items, _ := sc.TopicOptions.List(ctx)
	if len(items) != 1 || items[0].Label != "Arrays" {
		t.Errorf("options = %+v", items)
	}
}
