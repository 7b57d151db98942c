// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package algorithms

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/tomtom215/marquee/internal/recommend"
)

// mockItems implements ItemLookup for testing.
type mockItems struct {
	items map[int]recommend.Item
	err   error
	calls int
}

func (m *mockItems) GetItem(ctx context.Context, id int) (recommend.Item, error) {
	m.calls++
	if m.err != nil {
		return recommend.Item{}, m.err
	}
	item, ok := m.items[id]
	if !ok {
		return recommend.Item{}, recommend.ErrNotFound
	}
	return item, nil
}

func toyStoryItems() *mockItems {
	return &mockItems{items: map[int]recommend.Item{
		1: {ID: 1, Title: "Toy Story"},
		2: {ID: 2, Title: "Toy Story 2"},
		3: {ID: 3, Title: "Other Movie"},
	}}
}

// toyStoryData: users 1-3 have no comments and love Toy Story, users 1-2
// also love Toy Story 2. User 4 loves Toy Story but is untrusted. User 5
// only loves an unrelated movie.
func toyStoryData() ([]recommend.Rating, []recommend.Comment) {
	ratings := []recommend.Rating{
		{UserID: 1, ItemID: 1, Score: 5},
		{UserID: 2, ItemID: 1, Score: 5},
		{UserID: 3, ItemID: 1, Score: 4.5},
		{UserID: 1, ItemID: 2, Score: 5},
		{UserID: 2, ItemID: 2, Score: 4.5},
		{UserID: 4, ItemID: 1, Score: 5},
		{UserID: 5, ItemID: 3, Score: 5},
	}
	comments := []recommend.Comment{
		{ID: 1, UserID: 4, ItemID: 1, Content: "meh", Polarity: -0.3},
	}
	return ratings, comments
}

func mustPool(t *testing.T, ratings []recommend.Rating, comments []recommend.Comment) *recommend.TrustPool {
	t.Helper()
	pool, err := ComputeTrustPool(ratings, comments, recommend.DefaultThresholds())
	if err != nil {
		t.Fatalf("ComputeTrustPool() error = %v", err)
	}
	return pool
}

func TestCollaborativeScoreNumeric(t *testing.T) {
	ratings, comments := toyStoryData()
	pool := mustPool(t, ratings, comments)
	scorer := NewCollaborative(recommend.DefaultThresholds(), recommend.DefaultConfig().Limits, toyStoryItems())

	got, err := scorer.Score(context.Background(), 1, pool, pool.All)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(Score()) = %d, want 2: %+v", len(got), got)
	}

	// Fans {1,2,3}. Candidate likers {1,2,3,4}; user 5 is outside the
	// candidate set and must not widen the denominator.
	//   item 2: fan 2/3, general 2/4, score 4/3
	//   item 1: fan 3/3, general 4/4, score 1
	want := []struct {
		id      int
		title   string
		fan     float64
		general float64
		score   float64
	}{
		{2, "Toy Story 2", 2.0 / 3.0, 0.5, 4.0 / 3.0},
		{1, "Toy Story", 1, 1, 1},
	}
	for i, w := range want {
		g := got[i]
		if g.ID != w.id || g.Title != w.title {
			t.Errorf("item %d = (%d, %q), want (%d, %q)", i, g.ID, g.Title, w.id, w.title)
		}
		if math.Abs(g.FanRate-w.fan) > 1e-12 {
			t.Errorf("item %d FanRate = %f, want %f", i, g.FanRate, w.fan)
		}
		if math.Abs(g.GeneralRate-w.general) > 1e-12 {
			t.Errorf("item %d GeneralRate = %f, want %f", i, g.GeneralRate, w.general)
		}
		if math.Abs(g.Score-w.score) > 1e-12 {
			t.Errorf("item %d Score = %f, want %f", i, g.Score, w.score)
		}
	}
}

func TestCollaborativeScoreNoSignal(t *testing.T) {
	ratings, comments := toyStoryData()
	pool := mustPool(t, ratings, comments)
	scorer := NewCollaborative(recommend.DefaultThresholds(), recommend.DefaultConfig().Limits, toyStoryItems())

	tests := []struct {
		name string
		seed int
		pool *recommend.TrustPool
	}{
		{"seed without trusted fans", 99, pool},
		{"nil pool", 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var all *recommend.RatingIndex
			if tt.pool != nil {
				all = tt.pool.All
			}
			got, err := scorer.Score(context.Background(), tt.seed, tt.pool, all)
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if len(got) != 0 {
				t.Errorf("Score() = %v, want empty", got)
			}
		})
	}
}

func TestCollaborativeMinFanShareExclusive(t *testing.T) {
	// Ten fans of item 1; exactly one of them (10%) also likes item 2.
	var ratings []recommend.Rating
	for u := 1; u <= 10; u++ {
		ratings = append(ratings, recommend.Rating{UserID: u, ItemID: 1, Score: 5})
	}
	ratings = append(ratings, recommend.Rating{UserID: 1, ItemID: 2, Score: 5})

	pool := mustPool(t, ratings, nil)
	scorer := NewCollaborative(recommend.DefaultThresholds(), recommend.LimitsConfig{TopN: 10, ExcludeSeed: true}, nil)

	got, err := scorer.Score(context.Background(), 1, pool, pool.All)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Score() = %v, want empty: 10%% is not above the fan share", got)
	}
}

func TestCollaborativeLikedUsesAllRatings(t *testing.T) {
	// User 1 is a trusted commenter; their 3.0 rating of item 1 makes them a
	// fan, but only ratings above 4 count as likes.
	ratings := []recommend.Rating{
		{UserID: 1, ItemID: 1, Score: 3},
		{UserID: 1, ItemID: 2, Score: 4},
		{UserID: 1, ItemID: 3, Score: 4.5},
	}
	comments := []recommend.Comment{{ID: 1, UserID: 1, ItemID: 1, Polarity: 0.9}}
	pool := mustPool(t, ratings, comments)
	scorer := NewCollaborative(recommend.DefaultThresholds(), recommend.DefaultConfig().Limits, nil)

	got, err := scorer.Score(context.Background(), 1, pool, pool.All)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != 3 {
		t.Errorf("Score() = %+v, want only item 3", got)
	}
}

func TestCollaborativeTopNAndMissingItems(t *testing.T) {
	var ratings []recommend.Rating
	for u := 1; u <= 3; u++ {
		for item := 1; item <= 15; item++ {
			ratings = append(ratings, recommend.Rating{UserID: u, ItemID: item, Score: 5})
		}
	}
	pool := mustPool(t, ratings, nil)

	items := &mockItems{items: map[int]recommend.Item{}}
	for id := 1; id <= 15; id++ {
		if id == 2 {
			continue // vanished from the store
		}
		items.items[id] = recommend.Item{ID: id, Title: "Movie"}
	}

	scorer := NewCollaborative(recommend.DefaultThresholds(), recommend.LimitsConfig{TopN: 10}, items)
	got, err := scorer.Score(context.Background(), 1, pool, pool.All)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("len(Score()) = %d, want 10", len(got))
	}
	// Equal scores order by item id; item 2 is skipped.
	wantIDs := []int{1, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Errorf("got[%d].ID = %d, want %d", i, got[i].ID, id)
		}
	}
}

func TestCollaborativeLookupError(t *testing.T) {
	ratings, comments := toyStoryData()
	pool := mustPool(t, ratings, comments)
	lookupErr := errors.New("store offline")
	scorer := NewCollaborative(recommend.DefaultThresholds(), recommend.DefaultConfig().Limits, &mockItems{err: lookupErr})

	_, err := scorer.Score(context.Background(), 1, pool, pool.All)
	if !errors.Is(err, lookupErr) {
		t.Errorf("Score() error = %v, want %v", err, lookupErr)
	}
}

func TestCollaborativeCancelledContext(t *testing.T) {
	ratings, comments := toyStoryData()
	pool := mustPool(t, ratings, comments)
	scorer := NewCollaborative(recommend.DefaultThresholds(), recommend.DefaultConfig().Limits, toyStoryItems())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := scorer.Score(ctx, 1, pool, pool.All); !errors.Is(err, context.Canceled) {
		t.Errorf("Score() error = %v, want context.Canceled", err)
	}
}
