// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/recommend"
)

// Each implementation runs the same behavioral suite.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		s := NewMemoryStore()
		t.Cleanup(func() { _ = s.Close() })
		fn(t, s)
	})

	t.Run("badger", func(t *testing.T) {
		s, err := OpenBadger(BadgerConfig{Path: t.TempDir()}, zerolog.Nop())
		if err != nil {
			t.Fatalf("OpenBadger() error = %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		fn(t, s)
	})
}

func TestStore_Items(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		created, err := s.PutItem(ctx, recommend.Item{ID: 2, Title: "Jumanji (1995)"})
		if err != nil || !created {
			t.Fatalf("PutItem() = %v, %v; want true, nil", created, err)
		}
		created, err = s.PutItem(ctx, recommend.Item{ID: 2, Title: "Jumanji"})
		if err != nil || created {
			t.Fatalf("PutItem() replace = %v, %v; want false, nil", created, err)
		}
		if _, err := s.PutItem(ctx, recommend.Item{ID: 1, Title: "Toy Story (1995)"}); err != nil {
			t.Fatalf("PutItem() error = %v", err)
		}

		item, err := s.GetItem(ctx, 2)
		if err != nil {
			t.Fatalf("GetItem() error = %v", err)
		}
		if item.Title != "Jumanji" {
			t.Errorf("Title = %q, want replaced title", item.Title)
		}
		if item.NormalizedTitle == "" {
			t.Error("NormalizedTitle should be filled on write")
		}

		if _, err := s.GetItem(ctx, 99); !errors.Is(err, recommend.ErrNotFound) {
			t.Errorf("GetItem(missing) error = %v, want ErrNotFound", err)
		}

		items, err := s.ListItems(ctx)
		if err != nil {
			t.Fatalf("ListItems() error = %v", err)
		}
		if len(items) != 2 || items[0].ID != 1 || items[1].ID != 2 {
			t.Errorf("ListItems() = %+v, want ids [1 2]", items)
		}
	})
}

func TestStore_Ratings(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		for _, r := range []recommend.Rating{
			{UserID: 2, ItemID: 10, Score: 3},
			{UserID: 1, ItemID: 10, Score: 5},
			{UserID: 1, ItemID: 5, Score: 4},
			{UserID: 2, ItemID: 10, Score: 4}, // upsert
		} {
			if err := s.PutRating(ctx, r); err != nil {
				t.Fatalf("PutRating() error = %v", err)
			}
		}

		all, err := s.ListRatings(ctx)
		if err != nil {
			t.Fatalf("ListRatings() error = %v", err)
		}
		want := []recommend.Rating{
			{UserID: 1, ItemID: 5, Score: 4},
			{UserID: 1, ItemID: 10, Score: 5},
			{UserID: 2, ItemID: 10, Score: 4},
		}
		if len(all) != len(want) {
			t.Fatalf("ListRatings() = %+v, want %+v", all, want)
		}
		for i := range want {
			if all[i] != want[i] {
				t.Errorf("rating[%d] = %+v, want %+v", i, all[i], want[i])
			}
		}

		got, err := s.GetRating(ctx, 2, 10)
		if err != nil || got.Score != 4 {
			t.Errorf("GetRating() = %+v, %v", got, err)
		}

		st, err := Stats(ctx, s, 10)
		if err != nil {
			t.Fatalf("Stats() error = %v", err)
		}
		if st.Votes != 2 || st.Average != 4.5 {
			t.Errorf("Stats() = %+v, want 2 votes averaging 4.5", st)
		}

		if err := s.DeleteRating(ctx, 1, 10); err != nil {
			t.Fatalf("DeleteRating() error = %v", err)
		}
		if err := s.DeleteRating(ctx, 1, 10); !errors.Is(err, ErrNotFound) {
			t.Errorf("second DeleteRating() error = %v, want ErrNotFound", err)
		}
		if _, err := s.GetRating(ctx, 1, 10); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetRating(deleted) error = %v, want ErrNotFound", err)
		}

		empty, err := Stats(ctx, s, 77)
		if err != nil || empty.Votes != 0 || empty.Average != 0 {
			t.Errorf("Stats(unrated) = %+v, %v", empty, err)
		}
	})
}

func TestStore_Comments(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		a, err := s.CreateComment(ctx, recommend.Comment{UserID: 1, ItemID: 10, Content: "loved it", Polarity: 0.7})
		if err != nil {
			t.Fatalf("CreateComment() error = %v", err)
		}
		b, _ := s.CreateComment(ctx, recommend.Comment{UserID: 2, ItemID: 20, Content: "meh", Polarity: 0})
		c, _ := s.CreateComment(ctx, recommend.Comment{UserID: 3, ItemID: 10, Content: "awful", Polarity: -0.8})

		if a.ID == 0 || b.ID <= a.ID || c.ID <= b.ID {
			t.Fatalf("ids not increasing: %d %d %d", a.ID, b.ID, c.ID)
		}
		if a.CreatedAt.IsZero() || a.UpdatedAt.IsZero() {
			t.Error("timestamps should be set")
		}

		byItem, err := s.ListCommentsByItem(ctx, 10)
		if err != nil {
			t.Fatalf("ListCommentsByItem() error = %v", err)
		}
		if len(byItem) != 2 || byItem[0].ID != a.ID || byItem[1].ID != c.ID {
			t.Errorf("ListCommentsByItem(10) = %+v", byItem)
		}

		updated, err := s.UpdateComment(ctx, recommend.Comment{ID: b.ID, Content: "actually great", Polarity: 0.8})
		if err != nil {
			t.Fatalf("UpdateComment() error = %v", err)
		}
		if updated.UserID != 2 || updated.ItemID != 20 || updated.Content != "actually great" {
			t.Errorf("UpdateComment() = %+v, want owner and movie kept", updated)
		}
		if _, err := s.UpdateComment(ctx, recommend.Comment{ID: 999, Content: "x"}); !errors.Is(err, ErrNotFound) {
			t.Errorf("UpdateComment(missing) error = %v, want ErrNotFound", err)
		}

		if err := s.DeleteComment(ctx, a.ID); err != nil {
			t.Fatalf("DeleteComment() error = %v", err)
		}
		if _, err := s.GetComment(ctx, a.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetComment(deleted) error = %v", err)
		}
		byItem, _ = s.ListCommentsByItem(ctx, 10)
		if len(byItem) != 1 || byItem[0].ID != c.ID {
			t.Errorf("index not cleaned after delete: %+v", byItem)
		}

		all, err := s.ListComments(ctx)
		if err != nil || len(all) != 2 {
			t.Errorf("ListComments() = %d comments, %v; want 2", len(all), err)
		}
	})
}

func TestStore_ImportedCommentIDs(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		if _, err := s.CreateComment(ctx, recommend.Comment{ID: 40, UserID: 1, ItemID: 1, Content: "kept id"}); err != nil {
			t.Fatalf("CreateComment() error = %v", err)
		}
		next, err := s.CreateComment(ctx, recommend.Comment{UserID: 1, ItemID: 1, Content: "auto id"})
		if err != nil {
			t.Fatalf("CreateComment() error = %v", err)
		}
		if next.ID != 41 {
			t.Errorf("auto id = %d, want 41", next.ID)
		}
	})
}

func TestStore_Closed(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		if err := s.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if _, err := s.ListRatings(context.Background()); !errors.Is(err, ErrClosed) {
			t.Errorf("ListRatings() after Close error = %v, want ErrClosed", err)
		}
	})
}

func TestBadgerStore_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := OpenBadger(BadgerConfig{Path: dir}, zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	first, _ := s.CreateComment(ctx, recommend.Comment{UserID: 1, ItemID: 1, Content: "first"})
	if err := s.PutRating(ctx, recommend.Rating{UserID: 1, ItemID: 1, Score: 5}); err != nil {
		t.Fatalf("PutRating() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s, err = OpenBadger(BadgerConfig{Path: dir}, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	second, err := s.CreateComment(ctx, recommend.Comment{UserID: 1, ItemID: 1, Content: "second"})
	if err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	if second.ID != first.ID+1 {
		t.Errorf("id after reopen = %d, want %d", second.ID, first.ID+1)
	}
	if r, err := s.GetRating(ctx, 1, 1); err != nil || r.Score != 5 {
		t.Errorf("rating lost across reopen: %+v, %v", r, err)
	}
}

func TestOpenBadger_RequiresPath(t *testing.T) {
	if _, err := OpenBadger(BadgerConfig{}, zerolog.Nop()); err == nil {
		t.Error("expected error for empty path")
	}
}
