package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/freeeve/broadside/internal/model"
)

type mockMatchRepo struct {
	mu      sync.Mutex
	matches map[string]*model.Match
	order   []string
}

func newMockMatchRepo() *mockMatchRepo {
	return &mockMatchRepo{matches: make(map[string]*model.Match)}
}

func (m *mockMatchRepo) Create(_ context.Context, match *model.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.matches[match.ID]; ok {
		return fmt.Errorf("duplicate match %s", match.ID)
	}
	cp := *match
	m.matches[match.ID] = &cp
	m.order = append(m.order, match.ID)
	return nil
}

func (m *mockMatchRepo) Finish(_ context.Context, match *model.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.matches[match.ID]; !ok {
		return fmt.Errorf("match %s not found", match.ID)
	}
	cp := *match
	m.matches[match.ID] = &cp
	return nil
}

func (m *mockMatchRepo) FindByID(_ context.Context, id string) (*model.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	match, ok := m.matches[id]
	if !ok {
		return nil, nil
	}
	cp := *match
	return &cp, nil
}

func (m *mockMatchRepo) ListRecent(_ context.Context, limit int) ([]model.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Match
	for i := len(m.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *m.matches[m.order[i]])
	}
	return out, nil
}

type mockMatchCache struct {
	mu        sync.Mutex
	snapshots map[string]json.RawMessage
	focus     map[string]map[string]int
	published map[string][]json.RawMessage
}

func newMockMatchCache() *mockMatchCache {
	return &mockMatchCache{
		snapshots: make(map[string]json.RawMessage),
		focus:     make(map[string]map[string]int),
		published: make(map[string][]json.RawMessage),
	}
}

func (c *mockMatchCache) SetSnapshot(_ context.Context, matchID string, snap json.RawMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots[matchID] = snap
	return nil
}

func (c *mockMatchCache) GetSnapshot(_ context.Context, matchID string) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshots[matchID], nil
}

func (c *mockMatchCache) SetFocus(_ context.Context, matchID string, counts map[string]int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focus[matchID] = counts
	return nil
}

func (c *mockMatchCache) GetFocus(_ context.Context, matchID string) (map[string]int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focus[matchID], nil
}

func (c *mockMatchCache) Publish(_ context.Context, matchID string, event json.RawMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published[matchID] = append(c.published[matchID], event)
	return nil
}

func (c *mockMatchCache) DeleteMatchData(_ context.Context, matchID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.snapshots, matchID)
	delete(c.focus, matchID)
	return nil
}

type recordedEvent struct {
	matchID   string
	eventType string
}

type mockBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *mockBroadcaster) BroadcastMatchEvent(matchID, eventType string, _ any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{matchID: matchID, eventType: eventType})
}

func (b *mockBroadcaster) count(eventType string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.eventType == eventType {
			n++
		}
	}
	return n
}
