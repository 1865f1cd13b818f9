// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryHistory is an in-memory History, used when no database path is
// configured and as a test double.
type MemoryHistory struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	nextID  int64
	now     func() time.Time
}

// NewMemoryHistory creates an empty in-memory store.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{
		entries: make(map[string]*Entry),
		now:     time.Now,
	}
}

func (m *MemoryHistory) Append(text, kind string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if kind == "" {
		kind = KindQuery
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if e, ok := m.entries[text]; ok {
		e.Uses++
		e.LastUsed = now
		return nil
	}
	m.nextID++
	m.entries[text] = &Entry{
		ID:       m.nextID,
		Text:     text,
		Kind:     kind,
		Uses:     1,
		LastUsed: now,
		Created:  now,
	}
	return nil
}

func (m *MemoryHistory) Touch(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[text]; ok {
		e.Uses++
		e.LastUsed = m.now()
	}
	return nil
}

func (m *MemoryHistory) Search(needle string, limit int) ([]Entry, error) {
	if needle == "" {
		return m.Recent(limit)
	}
	if limit <= 0 {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	lower := strings.ToLower(needle)
	var hits []Entry
	for _, e := range m.entries {
		if strings.Contains(strings.ToLower(e.Text), lower) {
			hits = append(hits, *e)
		}
	}
	m.rankByFrecency(hits)
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (m *MemoryHistory) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		all = append(all, *e)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].LastUsed.After(all[j].LastUsed)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// rankByFrecency sorts hits with the same bucket weighting the SQLite
// store applies in SQL.
func (m *MemoryHistory) rankByFrecency(hits []Entry) {
	now := m.now()
	score := func(e Entry) int64 {
		age := now.Sub(e.LastUsed)
		switch {
		case age <= time.Hour:
			return e.Uses * 8
		case age <= 24*time.Hour:
			return e.Uses * 4
		case age <= 7*24*time.Hour:
			return e.Uses * 2
		default:
			return e.Uses
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		si, sj := score(hits[i]), score(hits[j])
		if si != sj {
			return si > sj
		}
		return hits[i].LastUsed.After(hits[j].LastUsed)
	})
}

func (m *MemoryHistory) Stats() (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Stats{Entries: int64(len(m.entries))}
	for _, e := range m.entries {
		if e.LastUsed.After(s.LastUsed) {
			s.LastUsed = e.LastUsed
		}
	}
	return s, nil
}

func (m *MemoryHistory) Flush() error { return nil }

func (m *MemoryHistory) Close() error { return nil }

var _ History = (*MemoryHistory)(nil)
