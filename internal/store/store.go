// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"

	"prepdeck/internal/cache"
	"prepdeck/internal/editor"
	"prepdeck/internal/models"
)

// Store hands out session-scoped state. Its lifecycle: lists are
// populated by the first load of each page, replaced on later loads,
// and cleared on sign-out.
type Store struct {
	kv cache.KV
}

// New creates a Store over kv.
func New(kv cache.KV) *Store {
	return &Store{kv: kv}
}

// Scope is the state of one session.
type Scope struct {
	kv     cache.KV
	prefix string

	Categories   *Collection[models.Category]
	Topics       *Collection[models.Topic]
	Questions    *Collection[models.Question]
	TopicOptions *Collection[models.Option]
	Opened       *Value[models.QuestionDetails]
	Draft        *Value[editor.Draft]
}

// Scope returns the state of the session with the given ID.
func (s *Store) Scope(sessionID string) *Scope {
	sc := &Scope{kv: s.kv, prefix: sessionID + ":"}
	sc.Categories = NewCollection[models.Category](s.kv, sc.Key("categories"))
	sc.Topics = NewCollection[models.Topic](s.kv, sc.Key("topics"))
	sc.Questions = NewCollection[models.Question](s.kv, sc.Key("questions"))
	sc.TopicOptions = NewCollection[models.Option](s.kv, sc.Key("topic-options"))
	sc.Opened = NewValue[models.QuestionDetails](s.kv, sc.Key("opened-question"))
	sc.Draft = NewValue[editor.Draft](s.kv, sc.Key("question-draft"))
	return sc
}

// Clear drops all state of a session.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if _, err := s.kv.DeletePrefix(ctx, sessionID+":"); err != nil {
		return fmt.Errorf("store clear: %w", err)
	}
	return nil
}

// Key namespaces name within the session.
func (sc *Scope) Key(name string) string {
	return sc.prefix + name
}

// KV exposes the backing KV for values owned by other packages.
func (sc *Scope) KV() cache.KV {
	return sc.kv
}
