// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package algorithms

import (
	"fmt"
	"math"
	"reflect"
	"sync"
	"testing"

	"github.com/tomtom215/marquee/internal/recommend"
)

func defaultIndexConfig() recommend.IndexConfig {
	return recommend.DefaultConfig().Index
}

func movieCorpus() []recommend.Item {
	return []recommend.Item{
		{ID: 1, Title: "Jumanji (1995)"},
		{ID: 2, Title: "Heat (1995)"},
		{ID: 3, Title: "The Dark Knight (2008)"},
		{ID: 4, Title: "Finding Nemo (2003)"},
		{ID: 5, Title: "Grumpier Old Men (1995)"},
	}
}

func resultIDs(results []recommend.SearchResult) []int {
	ids := make([]int, len(results))
	for i, r := range results {
		ids[i] = r.Item.ID
	}
	return ids
}

func TestTerms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		maxN int
		want []string
	}{
		{
			name: "unigrams and bigrams",
			in:   "Toy Story (1995)",
			maxN: 2,
			want: []string{"toy", "story", "1995", "toy story", "story 1995"},
		},
		{
			name: "single characters dropped before bigrams",
			in:   "Toy Story 2",
			maxN: 2,
			want: []string{"toy", "story", "toy story"},
		},
		{
			name: "punctuation stripped",
			in:   "Monsters, Inc.",
			maxN: 1,
			want: []string{"monsters", "inc"},
		},
		{
			name: "nothing left",
			in:   "?! a",
			maxN: 2,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := terms(tt.in, tt.maxN)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("terms(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTitleIndexSearchRanksOwnTitleFirst(t *testing.T) {
	idx := NewTitleIndex(defaultIndexConfig())
	corpus := movieCorpus()
	idx.Build(corpus)

	for _, item := range corpus {
		t.Run(item.Title, func(t *testing.T) {
			results := idx.Search(item.Title, 10)
			if len(results) == 0 {
				t.Fatal("Search() returned no results")
			}
			if results[0].Item.ID != item.ID {
				t.Errorf("top result = %d, want %d (results %v)", results[0].Item.ID, item.ID, resultIDs(results))
			}
			if math.Abs(results[0].Similarity-1) > 1e-9 {
				t.Errorf("self similarity = %f, want 1", results[0].Similarity)
			}
			for i := 1; i < len(results); i++ {
				if results[i].Similarity > results[i-1].Similarity {
					t.Errorf("results not sorted at %d: %f > %f", i, results[i].Similarity, results[i-1].Similarity)
				}
			}
		})
	}
}

func TestTitleIndexSearchEmptyCorpus(t *testing.T) {
	idx := NewTitleIndex(defaultIndexConfig())

	if got := idx.Search("Toy Story", 10); len(got) != 0 {
		t.Errorf("Search() on unbuilt index = %v, want empty", got)
	}

	idx.Build(nil)
	if got := idx.Search("Toy Story", 10); len(got) != 0 {
		t.Errorf("Search() on empty corpus = %v, want empty", got)
	}
}

func TestTitleIndexSearchZeroVectorQuery(t *testing.T) {
	idx := NewTitleIndex(defaultIndexConfig())
	idx.Build(movieCorpus())

	results := idx.Search("zzzz qqqq", 3)

	if want := []int{1, 2, 3}; !reflect.DeepEqual(resultIDs(results), want) {
		t.Errorf("Search() = %v, want corpus order %v", resultIDs(results), want)
	}
	for _, r := range results {
		if r.Similarity != 0 {
			t.Errorf("similarity of %d = %f, want 0", r.Item.ID, r.Similarity)
		}
	}
}

func TestTitleIndexSearchTopK(t *testing.T) {
	idx := NewTitleIndex(defaultIndexConfig())
	idx.Build(movieCorpus())

	tests := []struct {
		name string
		k    int
		want int
	}{
		{"k smaller than corpus", 2, 2},
		{"k larger than corpus", 50, 5},
		{"k defaults to 10", 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idx.Search("Heat 1995", tt.k)
			if len(got) != tt.want {
				t.Fatalf("len(Search()) = %d, want %d", len(got), tt.want)
			}
			if got[0].Item.ID != 2 {
				t.Errorf("top result = %d, want 2", got[0].Item.ID)
			}
		})
	}
}

func TestTitleIndexTiesKeepIndexOrder(t *testing.T) {
	idx := NewTitleIndex(recommend.IndexConfig{MaxNGram: 2, SmoothIDF: true})
	idx.Build([]recommend.Item{
		{ID: 7, Title: "Other Film"},
		{ID: 1, Title: "Toy Story"},
		{ID: 2, Title: "Toy Story 2"},
	})

	results := idx.Search("Toy Story", 3)

	if want := []int{1, 2, 7}; !reflect.DeepEqual(resultIDs(results), want) {
		t.Errorf("Search() = %v, want %v", resultIDs(results), want)
	}
	if results[0].Similarity != results[1].Similarity {
		t.Errorf("expected a tie, got %f and %f", results[0].Similarity, results[1].Similarity)
	}
}

func TestTitleIndexIDFWeighting(t *testing.T) {
	corpus := []recommend.Item{
		{ID: 1, Title: "Toy Story"},
		{ID: 2, Title: "Toy Story 2"},
	}

	// Every term occurs in every title, so ln(N/df) is zero everywhere.
	plain := NewTitleIndex(recommend.IndexConfig{MaxNGram: 2})
	plain.Build(corpus)
	for _, r := range plain.Search("Toy Story", 2) {
		if r.Similarity != 0 {
			t.Errorf("unsmoothed similarity of %d = %f, want 0", r.Item.ID, r.Similarity)
		}
	}

	smooth := NewTitleIndex(recommend.IndexConfig{MaxNGram: 2, SmoothIDF: true})
	smooth.Build(corpus)
	for _, r := range smooth.Search("Toy Story", 2) {
		if math.Abs(r.Similarity-1) > 1e-9 {
			t.Errorf("smoothed similarity of %d = %f, want 1", r.Item.ID, r.Similarity)
		}
	}

	if got := idf(4, 1, false); math.Abs(got-math.Log(4)) > 1e-12 {
		t.Errorf("idf(4, 1) = %f, want ln 4", got)
	}
}

func TestTitleIndexIngest(t *testing.T) {
	idx := NewTitleIndex(defaultIndexConfig())
	idx.Build(movieCorpus())

	t.Run("unseen vocabulary is stored and retrievable", func(t *testing.T) {
		added := idx.Ingest(recommend.Item{ID: 10, Title: "Zyzzyva Quixotic"})
		if added != 1 {
			t.Fatalf("Ingest() = %d, want 1", added)
		}
		if idx.Len() != 6 {
			t.Errorf("Len() = %d, want 6", idx.Len())
		}
		item, ok := idx.Lookup(10)
		if !ok {
			t.Fatal("Lookup(10) not found")
		}
		if item.NormalizedTitle != "Zyzzyva Quixotic" {
			t.Errorf("NormalizedTitle = %q", item.NormalizedTitle)
		}
		if got := idx.Search("Zyzzyva", 10); len(got) != 6 {
			t.Errorf("Search() len = %d, want 6", len(got))
		}
	})

	t.Run("known vocabulary becomes searchable", func(t *testing.T) {
		if added := idx.Ingest(recommend.Item{ID: 11, Title: "Heat"}); added != 1 {
			t.Fatalf("Ingest() = %d, want 1", added)
		}
		results := idx.Search("heat", 2)
		if results[0].Item.ID != 11 {
			t.Errorf("top result = %d, want 11", results[0].Item.ID)
		}
		if results[1].Item.ID != 2 {
			t.Errorf("second result = %d, want 2", results[1].Item.ID)
		}
	})

	t.Run("duplicate ids are skipped", func(t *testing.T) {
		if added := idx.Ingest(recommend.Item{ID: 2, Title: "Heat Again"}); added != 0 {
			t.Errorf("Ingest() = %d, want 0", added)
		}
	})

	t.Run("vocabulary stays frozen", func(t *testing.T) {
		before := idx.VocabularySize()
		idx.Ingest(recommend.Item{ID: 12, Title: "Brand New Words"})
		if idx.VocabularySize() != before {
			t.Errorf("VocabularySize() = %d, want %d", idx.VocabularySize(), before)
		}
	})
}

func TestTitleIndexConcurrentIngestAndSearch(t *testing.T) {
	idx := NewTitleIndex(defaultIndexConfig())
	idx.Build(movieCorpus())

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				idx.Ingest(recommend.Item{ID: 100 + w*50 + i, Title: fmt.Sprintf("Heat Part %d", i)})
			}
		}(w)
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				for _, res := range idx.Search("heat", 5) {
					if res.Item.Title == "" {
						t.Error("observed a partially built row")
					}
				}
			}
		}()
	}
	wg.Wait()

	if idx.Len() != 5+200 {
		t.Errorf("Len() = %d, want %d", idx.Len(), 205)
	}
}

func TestTopK(t *testing.T) {
	top := newTopK(3)
	scores := []float64{0.2, 0.9, 0.5, 0.9, 0.1, 0.5}
	for pos, s := range scores {
		top.offer(pos, s)
	}

	got := top.sorted()
	want := []hit{{pos: 1, score: 0.9}, {pos: 3, score: 0.9}, {pos: 2, score: 0.5}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sorted() = %v, want %v", got, want)
	}
}

func TestTitleIndexReplace(t *testing.T) {
	idx := NewTitleIndex(defaultIndexConfig())
	idx.Build(movieCorpus())

	if !idx.Replace(recommend.Item{ID: 2, Title: "Jumanji Returns"}) {
		t.Fatal("Replace() = false for a retitled item")
	}
	if idx.Len() != 5 {
		t.Errorf("Len() = %d, want 5", idx.Len())
	}
	item, _ := idx.Lookup(2)
	if item.Title != "Jumanji Returns" || item.NormalizedTitle != "Jumanji Returns" {
		t.Errorf("Lookup(2) = %+v", item)
	}

	results := idx.Search("jumanji", 2)
	if got := resultIDs(results); !reflect.DeepEqual(got, []int{1, 2}) && !reflect.DeepEqual(got, []int{2, 1}) {
		t.Errorf("Search(jumanji) = %v, want items 1 and 2", got)
	}
	for _, r := range results {
		if r.Similarity <= 0 {
			t.Errorf("item %d similarity = %f, want > 0", r.Item.ID, r.Similarity)
		}
	}
	if got := idx.Search("heat", 1); got[0].Similarity != 0 {
		t.Errorf("old title still matches: %+v", got[0])
	}

	tests := []struct {
		name string
		item recommend.Item
	}{
		{"unchanged title", recommend.Item{ID: 2, Title: "Jumanji Returns"}},
		{"unknown id", recommend.Item{ID: 99, Title: "Heat"}},
	}
	for _, tt := range tests {
		if idx.Replace(tt.item) {
			t.Errorf("%s: Replace() = true, want false", tt.name)
		}
	}
}
