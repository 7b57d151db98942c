// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package algorithms

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/recommend"
)

// DefaultSearchK is used when Search is called with k <= 0.
const DefaultSearchK = 10

// TitleIndex is a TF-IDF vector space over movie titles.
//
// The vocabulary (unigrams and bigrams) and the idf weights are learned by
// Build and then frozen. Ingest projects new titles into that vocabulary,
// dropping unseen terms, and appends their rows; Replace re-projects a
// retitled row the same way. Rebuilding is the only way to learn new
// vocabulary.
//
// A term's weight in a title is its in-title frequency multiplied by
// ln(N / df), where N is the corpus size at build time and df the number of
// titles containing the term.
type TitleIndex struct {
	cfg recommend.IndexConfig

	mu    sync.RWMutex
	vocab *vocabulary
	rows  []titleRow  // append-only; Replace swaps in a copy
	ids   map[int]int // item id -> row
	built time.Time
}

// vocabulary is immutable once published.
type vocabulary struct {
	terms   map[string]int // term -> column
	idf     []float64
	docs    int
	version int
}

// titleRow is one indexed title. Rows are never modified in place, so a
// search can keep reading the slice it loaded.
type titleRow struct {
	item recommend.Item
	vec  sparseVector
}

// sparseVector holds non-zero weights ordered by column.
type sparseVector struct {
	cols []int
	vals []float64
	norm float64
}

// NewTitleIndex creates an empty index. Call Build before searching.
//
//nolint:gocritic // hugeParam: cfg passed by value for immutability
func NewTitleIndex(cfg recommend.IndexConfig) *TitleIndex {
	if cfg.MaxNGram < 1 || cfg.MaxNGram > 2 {
		cfg.MaxNGram = 2
	}
	return &TitleIndex{
		cfg:   cfg,
		vocab: &vocabulary{terms: map[string]int{}},
		ids:   make(map[int]int),
	}
}

// Build replaces the index with the given items, learning a new vocabulary.
// Items with a duplicate ID after the first are ignored.
func (t *TitleIndex) Build(items []recommend.Item) {
	unique := make([]recommend.Item, 0, len(items))
	seen := make(map[int]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		unique = append(unique, it.WithNormalizedTitle())
	}

	docTerms := make([][]string, len(unique))
	df := make(map[string]int)
	for i, it := range unique {
		docTerms[i] = terms(it.NormalizedTitle, t.cfg.MaxNGram)
		distinct := make(map[string]struct{}, len(docTerms[i]))
		for _, term := range docTerms[i] {
			if _, ok := distinct[term]; ok {
				continue
			}
			distinct[term] = struct{}{}
			df[term]++
		}
	}

	// Columns follow lexical order so that builds are reproducible.
	sorted := make([]string, 0, len(df))
	for term := range df {
		sorted = append(sorted, term)
	}
	sort.Strings(sorted)

	t.mu.RLock()
	version := t.vocab.version + 1
	t.mu.RUnlock()

	vocab := &vocabulary{
		terms:   make(map[string]int, len(sorted)),
		idf:     make([]float64, len(sorted)),
		docs:    len(unique),
		version: version,
	}
	for col, term := range sorted {
		vocab.terms[term] = col
		vocab.idf[col] = idf(len(unique), df[term], t.cfg.SmoothIDF)
	}

	rows := make([]titleRow, len(unique))
	ids := make(map[int]int, len(unique))
	for i, it := range unique {
		rows[i] = titleRow{item: it, vec: vocab.weigh(docTerms[i])}
		ids[it.ID] = i
	}

	t.mu.Lock()
	t.vocab = vocab
	t.rows = rows
	t.ids = ids
	t.built = time.Now()
	t.mu.Unlock()
	metrics.SetTitleIndexItems(len(rows))
}

// Ingest appends new items projected into the existing vocabulary and
// returns how many were added. Items already indexed are skipped. An item
// whose title holds only unseen terms is stored with an empty vector: it is
// retrievable by ID but never similar to anything.
func (t *TitleIndex) Ingest(items ...recommend.Item) int {
	for {
		t.mu.RLock()
		vocab := t.vocab
		t.mu.RUnlock()

		pending := make([]titleRow, 0, len(items))
		for _, it := range items {
			it = it.WithNormalizedTitle()
			pending = append(pending, titleRow{
				item: it,
				vec:  vocab.weigh(terms(it.NormalizedTitle, t.cfg.MaxNGram)),
			})
		}

		t.mu.Lock()
		if t.vocab != vocab {
			// Rebuilt while we were projecting.
			t.mu.Unlock()
			continue
		}
		added := 0
		for _, row := range pending {
			if _, exists := t.ids[row.item.ID]; exists {
				continue
			}
			t.ids[row.item.ID] = len(t.rows)
			t.rows = append(t.rows, row)
			added++
		}
		n := len(t.rows)
		t.mu.Unlock()
		metrics.SetTitleIndexItems(n)
		return added
	}
}

// Replace re-projects an indexed item whose title changed. It reports false
// when the item is not indexed or its title is unchanged.
//
//nolint:gocritic // hugeParam: item passed by value for immutability
func (t *TitleIndex) Replace(item recommend.Item) bool {
	item = item.WithNormalizedTitle()
	for {
		t.mu.RLock()
		vocab := t.vocab
		t.mu.RUnlock()

		row := titleRow{item: item, vec: vocab.weigh(terms(item.NormalizedTitle, t.cfg.MaxNGram))}

		t.mu.Lock()
		if t.vocab != vocab {
			t.mu.Unlock()
			continue
		}
		pos, ok := t.ids[item.ID]
		if !ok || t.rows[pos].item.Title == item.Title {
			t.mu.Unlock()
			return false
		}
		rows := make([]titleRow, len(t.rows), cap(t.rows))
		copy(rows, t.rows)
		rows[pos] = row
		t.rows = rows
		t.mu.Unlock()
		return true
	}
}

// Search returns the k items most similar to query, most similar first.
// Ties keep index order. A query with no known terms matches everything
// with similarity zero, so the first k items in index order are returned.
func (t *TitleIndex) Search(query string, k int) []recommend.SearchResult {
	if k <= 0 {
		k = DefaultSearchK
	}

	t.mu.RLock()
	vocab := t.vocab
	rows := t.rows
	t.mu.RUnlock()

	if len(rows) == 0 {
		return []recommend.SearchResult{}
	}

	q := vocab.weigh(terms(query, t.cfg.MaxNGram))

	top := newTopK(k)
	for pos := range rows {
		top.offer(pos, cosine(q, rows[pos].vec))
	}

	hits := top.sorted()
	results := make([]recommend.SearchResult, len(hits))
	for i, h := range hits {
		results[i] = recommend.SearchResult{
			Item:       rows[h.pos].item,
			Similarity: h.score,
			Position:   h.pos,
		}
	}
	return results
}

// Lookup returns an indexed item by ID.
func (t *TitleIndex) Lookup(id int) (recommend.Item, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	pos, ok := t.ids[id]
	if !ok {
		return recommend.Item{}, false
	}
	return t.rows[pos].item, true
}

// Len returns the number of indexed items.
func (t *TitleIndex) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// VocabularySize returns the number of terms learned by the last Build.
func (t *TitleIndex) VocabularySize() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.vocab.terms)
}

// BuiltAt returns when Build last ran.
func (t *TitleIndex) BuiltAt() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.built
}

// weigh projects terms onto the vocabulary. Unknown terms are dropped.
func (v *vocabulary) weigh(docTerms []string) sparseVector {
	tf := make(map[int]float64, len(docTerms))
	for _, term := range docTerms {
		if col, ok := v.terms[term]; ok {
			tf[col]++
		}
	}

	vec := sparseVector{
		cols: make([]int, 0, len(tf)),
		vals: make([]float64, 0, len(tf)),
	}
	for col := range tf {
		vec.cols = append(vec.cols, col)
	}
	sort.Ints(vec.cols)

	var sumSq float64
	cols := vec.cols[:0]
	for _, col := range vec.cols {
		w := tf[col] * v.idf[col]
		if w == 0 {
			continue
		}
		cols = append(cols, col)
		vec.vals = append(vec.vals, w)
		sumSq += w * w
	}
	vec.cols = cols
	vec.norm = math.Sqrt(sumSq)
	return vec
}

// idf returns the inverse document frequency of a term present in df of n titles.
func idf(n, df int, smooth bool) float64 {
	if smooth {
		return math.Log(float64(1+n)/float64(1+df)) + 1
	}
	return math.Log(float64(n) / float64(df))
}

// cosine returns the cosine similarity of two sparse vectors, 0 if either is empty.
func cosine(a, b sparseVector) float64 {
	if a.norm == 0 || b.norm == 0 {
		return 0
	}

	var dot float64
	i, j := 0, 0
	for i < len(a.cols) && j < len(b.cols) {
		switch {
		case a.cols[i] == b.cols[j]:
			dot += a.vals[i] * b.vals[j]
			i++
			j++
		case a.cols[i] < b.cols[j]:
			i++
		default:
			j++
		}
	}

	sim := dot / (a.norm * b.norm)
	// Clamp rounding noise so identical vectors compare as exactly 1.
	if sim > 1 {
		sim = 1
	}
	return sim
}
