// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package debounce coalesces bursts of search requests so only the last
// one of a burst proceeds.
package debounce

import (
	"context"
	"sync"
	"time"
)

// Group debounces blocking callers by key. Each HTTP request of a search
// burst calls Wait; only the last one to arrive gets true.
type Group struct {
	mu  sync.Mutex
	seq map[string]uint64
}

// NewGroup creates an empty Group.
func NewGroup() *Group {
	return &Group{seq: make(map[string]uint64)}
}

// Wait blocks for delay and reports whether no later Wait for key started
// in the meantime. It returns false if ctx ends first.
func (g *Group) Wait(ctx context.Context, key string, delay time.Duration) bool {
	g.mu.Lock()
	g.seq[key]++
	mine := g.seq[key]
	g.mu.Unlock()

	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			g.forget(key, mine)
			return false
		case <-t.C:
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seq[key] != mine {
		return false
	}
	delete(g.seq, key)
	return true
}

func (g *Group) forget(key string, mine uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seq[key] == mine {
		delete(g.seq, key)
	}
}
