// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/marquee/internal/recommend"
)

type pairKey struct{ userID, itemID int }

// MemoryStore keeps every record in process memory. It is used by tests and
// by one-shot CLI runs over CSV datasets.
type MemoryStore struct {
	mu       sync.RWMutex
	closed   bool
	items    map[int]recommend.Item
	ratings  map[pairKey]recommend.Rating
	comments map[int]recommend.Comment
	nextID   int
	now      func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:    make(map[int]recommend.Item),
		ratings:  make(map[pairKey]recommend.Rating),
		comments: make(map[int]recommend.Comment),
		now:      time.Now,
	}
}

// PutItem implements Store.
func (m *MemoryStore) PutItem(_ context.Context, item recommend.Item) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false, ErrClosed
	}
	_, exists := m.items[item.ID]
	m.items[item.ID] = item.WithNormalizedTitle()
	return !exists, nil
}

// GetItem implements Store.
func (m *MemoryStore) GetItem(_ context.Context, id int) (recommend.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return recommend.Item{}, ErrClosed
	}
	item, ok := m.items[id]
	if !ok {
		return recommend.Item{}, ErrNotFound
	}
	return item, nil
}

// ListItems implements Store.
func (m *MemoryStore) ListItems(_ context.Context) ([]recommend.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	out := make([]recommend.Item, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// PutRating implements Store.
func (m *MemoryStore) PutRating(_ context.Context, r recommend.Rating) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.ratings[pairKey{r.UserID, r.ItemID}] = r
	return nil
}

// GetRating implements Store.
func (m *MemoryStore) GetRating(_ context.Context, userID, itemID int) (recommend.Rating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return recommend.Rating{}, ErrClosed
	}
	r, ok := m.ratings[pairKey{userID, itemID}]
	if !ok {
		return recommend.Rating{}, ErrNotFound
	}
	return r, nil
}

// DeleteRating implements Store.
func (m *MemoryStore) DeleteRating(_ context.Context, userID, itemID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	key := pairKey{userID, itemID}
	if _, ok := m.ratings[key]; !ok {
		return ErrNotFound
	}
	delete(m.ratings, key)
	return nil
}

// ListRatings implements Store.
func (m *MemoryStore) ListRatings(_ context.Context) ([]recommend.Rating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	out := make([]recommend.Rating, 0, len(m.ratings))
	for _, r := range m.ratings {
		out = append(out, r)
	}
	sortRatings(out)
	return out, nil
}

// ListRatingsByItem implements Store.
func (m *MemoryStore) ListRatingsByItem(_ context.Context, itemID int) ([]recommend.Rating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	var out []recommend.Rating
	for k, r := range m.ratings {
		if k.itemID == itemID {
			out = append(out, r)
		}
	}
	sortRatings(out)
	return out, nil
}

// CreateComment implements Store.
func (m *MemoryStore) CreateComment(_ context.Context, c recommend.Comment) (recommend.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return recommend.Comment{}, ErrClosed
	}
	if c.ID > 0 {
		// Imported datasets carry their own ids.
		if c.ID > m.nextID {
			m.nextID = c.ID
		}
	} else {
		m.nextID++
		c.ID = m.nextID
	}
	now := m.now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	m.comments[c.ID] = c
	return c, nil
}

// GetComment implements Store.
func (m *MemoryStore) GetComment(_ context.Context, id int) (recommend.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return recommend.Comment{}, ErrClosed
	}
	c, ok := m.comments[id]
	if !ok {
		return recommend.Comment{}, ErrNotFound
	}
	return c, nil
}

// UpdateComment implements Store.
func (m *MemoryStore) UpdateComment(_ context.Context, c recommend.Comment) (recommend.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return recommend.Comment{}, ErrClosed
	}
	existing, ok := m.comments[c.ID]
	if !ok {
		return recommend.Comment{}, ErrNotFound
	}
	existing.Content = c.Content
	existing.Polarity = c.Polarity
	existing.UpdatedAt = m.now()
	m.comments[c.ID] = existing
	return existing, nil
}

// DeleteComment implements Store.
func (m *MemoryStore) DeleteComment(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if _, ok := m.comments[id]; !ok {
		return ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

// ListComments implements Store.
func (m *MemoryStore) ListComments(_ context.Context) ([]recommend.Comment, error) {
	return m.listComments(func(recommend.Comment) bool { return true })
}

// ListCommentsByItem implements Store.
func (m *MemoryStore) ListCommentsByItem(_ context.Context, itemID int) ([]recommend.Comment, error) {
	return m.listComments(func(c recommend.Comment) bool { return c.ItemID == itemID })
}

func (m *MemoryStore) listComments(keep func(recommend.Comment) bool) ([]recommend.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	out := make([]recommend.Comment, 0, len(m.comments))
	for _, c := range m.comments {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Close implements Store. Further calls return ErrClosed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
