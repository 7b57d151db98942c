// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"regexp"
	"sort"
	"time"
)

// titleCleaner matches every character a normalized title may not contain.
var titleCleaner = regexp.MustCompile(`[^a-zA-Z0-9 ]`)

// NormalizeTitle strips everything except ASCII letters, digits and spaces.
func NormalizeTitle(title string) string {
	return titleCleaner.ReplaceAllString(title, "")
}

// Item is a movie known to the recommender.
type Item struct {
	// ID is the movie identifier from the record store.
	ID int `json:"id" validate:"gt=0"`

	// Title is the display title, e.g. "Toy Story (1995)".
	Title string `json:"title" validate:"required,notblank,max=512"`

	// NormalizedTitle is Title with punctuation removed. Filled by WithNormalizedTitle.
	NormalizedTitle string `json:"normalized_title,omitempty"`
}

// WithNormalizedTitle returns a copy of the item with NormalizedTitle computed.
//
//nolint:gocritic // hugeParam: item passed by value for immutability
func (i Item) WithNormalizedTitle() Item {
	i.NormalizedTitle = NormalizeTitle(i.Title)
	return i
}

// Rating is one user's score for one movie. At most one exists per (UserID, ItemID).
type Rating struct {
	UserID int     `json:"user_id" validate:"gt=0"`
	ItemID int     `json:"item_id" validate:"gt=0"`
	Score  float64 `json:"rating" validate:"finite,gte=0,lte=5"`
}

// Comment is a free-text review with its sentiment polarity.
type Comment struct {
	// ID is assigned by the record store on insert.
	ID int `json:"id"`

	UserID int `json:"user_id" validate:"gt=0"`
	ItemID int `json:"item_id" validate:"gt=0"`

	// Content is the review text.
	Content string `json:"content" validate:"required,notblank,max=4096"`

	// Polarity is the sentiment of Content in [-1, 1], computed when the
	// comment is created and again only if Content changes.
	Polarity float64 `json:"polarity" validate:"finite,gte=-1,lte=1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserTrust is the derived trust signal of a single user.
type UserTrust struct {
	UserID int `json:"user_id"`

	// AveragePolarity is the mean polarity over the user's comments.
	// Meaningful only when HasComments is true.
	AveragePolarity float64 `json:"average_polarity"`

	// HasComments is false for users who never commented.
	HasComments bool `json:"has_comments"`

	// CommentCount is the number of comments averaged.
	CommentCount int `json:"comment_count"`
}

// RatingIndex is an immutable set of ratings with per-user and per-item lookups.
// Ratings are ordered by (ItemID, UserID).
type RatingIndex struct {
	ratings []Rating
	byUser  map[int][]Rating
	byItem  map[int][]Rating
}

// NewRatingIndex copies and indexes ratings. A later rating for the same
// (UserID, ItemID) replaces an earlier one.
func NewRatingIndex(ratings []Rating) *RatingIndex {
	type key struct{ user, item int }
	latest := make(map[key]int, len(ratings))
	rows := make([]Rating, 0, len(ratings))
	for _, r := range ratings {
		k := key{r.UserID, r.ItemID}
		if pos, ok := latest[k]; ok {
			rows[pos] = r
			continue
		}
		latest[k] = len(rows)
		rows = append(rows, r)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ItemID != rows[j].ItemID {
			return rows[i].ItemID < rows[j].ItemID
		}
		return rows[i].UserID < rows[j].UserID
	})

	idx := &RatingIndex{
		ratings: rows,
		byUser:  make(map[int][]Rating),
		byItem:  make(map[int][]Rating),
	}
	for _, r := range rows {
		idx.byUser[r.UserID] = append(idx.byUser[r.UserID], r)
		idx.byItem[r.ItemID] = append(idx.byItem[r.ItemID], r)
	}
	return idx
}

// Len returns the number of ratings.
func (x *RatingIndex) Len() int {
	if x == nil {
		return 0
	}
	return len(x.ratings)
}

// All returns every rating. The slice must not be modified.
func (x *RatingIndex) All() []Rating {
	if x == nil {
		return nil
	}
	return x.ratings
}

// ByUser returns the ratings written by userID, ordered by item.
func (x *RatingIndex) ByUser(userID int) []Rating {
	if x == nil {
		return nil
	}
	return x.byUser[userID]
}

// ByItem returns the ratings of itemID, ordered by user.
func (x *RatingIndex) ByItem(itemID int) []Rating {
	if x == nil {
		return nil
	}
	return x.byItem[itemID]
}

// UserCount returns the number of distinct users with at least one rating.
func (x *RatingIndex) UserCount() int {
	if x == nil {
		return 0
	}
	return len(x.byUser)
}

// TrustPool is a point-in-time snapshot of the ratings eligible to drive
// collaborative recommendations. A published pool is never modified.
type TrustPool struct {
	// Generation increases by one with every successful recomputation.
	Generation uint64 `json:"generation"`

	// ComputedAt is when the snapshot was built.
	ComputedAt time.Time `json:"computed_at"`

	// Trusted holds the included ratings.
	Trusted *RatingIndex `json:"-"`

	// All holds every rating seen by the recomputation, so that scoring
	// within one request reads a single consistent view.
	All *RatingIndex `json:"-"`

	// Trust holds the derived trust of every user that commented.
	Trust map[int]UserTrust `json:"-"`
}

// Size returns the number of included ratings.
func (p *TrustPool) Size() int {
	if p == nil {
		return 0
	}
	return p.Trusted.Len()
}

// Fans returns the distinct users in the pool who rated itemID, ascending.
func (p *TrustPool) Fans(itemID int) []int {
	if p == nil {
		return nil
	}
	rows := p.Trusted.ByItem(itemID)
	fans := make([]int, 0, len(rows))
	for _, r := range rows {
		fans = append(fans, r.UserID)
	}
	return fans
}

// SearchResult is one title-index hit.
type SearchResult struct {
	Item Item `json:"item"`

	// Similarity is the cosine similarity between query and title, in [0, 1].
	Similarity float64 `json:"similarity"`

	// Position is the row of the item in the index.
	Position int `json:"position"`
}

// ScoredItem is one recommended movie.
type ScoredItem struct {
	ID    int    `json:"id"`
	Title string `json:"title"`

	// Score is the collaborative relevance (fan rate / general rate).
	// Zero on the content-only path.
	Score float64 `json:"score,omitempty"`

	// FanRate and GeneralRate are the two factors of Score.
	FanRate     float64 `json:"fan_rate,omitempty"`
	GeneralRate float64 `json:"general_rate,omitempty"`
}

// Source identifies which tier of the fallback ladder produced a response.
type Source int

const (
	// SourceNone means the query matched nothing.
	SourceNone Source = iota
	// SourceCollaborative means a candidate anchored a collaborative result.
	SourceCollaborative
	// SourceContent means only title similarity was available.
	SourceContent
)

// String returns the label used in logs, metrics and JSON.
func (s Source) String() string {
	switch s {
	case SourceCollaborative:
		return "collaborative"
	case SourceContent:
		return "content"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Request is a recommendation query.
type Request struct {
	// Query is the free-text title to search for.
	Query string `json:"title" validate:"required,max=512"`

	// K is the number of title candidates to consider. Zero uses the configured default.
	K int `json:"k,omitempty" validate:"gte=0,lte=100"`

	// RequestID is propagated into logs. Generated when empty.
	RequestID string `json:"-"`
}

// Response is the result of a recommendation query.
type Response struct {
	Items []ScoredItem `json:"items"`

	// Source is the ladder tier that produced Items.
	Source Source `json:"source"`

	// AnchorItemID is the title candidate whose fans produced Items.
	// Zero unless Source is SourceCollaborative.
	AnchorItemID int `json:"anchor_item_id,omitempty"`

	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata describes how a response was produced.
type ResponseMetadata struct {
	RequestID string `json:"request_id"`
	Query     string `json:"query"`

	// Candidates is the number of title candidates considered.
	Candidates int `json:"candidates"`

	// Attempts is the number of candidates the collaborative scorer ran on.
	Attempts int `json:"attempts"`

	// PoolGeneration is the trust pool snapshot that was read.
	PoolGeneration uint64 `json:"pool_generation"`

	LatencyMS int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
}

// Status is a point-in-time view of the engine.
type Status struct {
	IndexedItems   int       `json:"indexed_items"`
	PoolGeneration uint64    `json:"pool_generation"`
	PoolSize       int       `json:"pool_size"`
	PoolComputedAt time.Time `json:"pool_computed_at"`
	Requests       int64     `json:"requests"`
	CacheHits      int64     `json:"cache_hits"`
	CacheMisses    int64     `json:"cache_misses"`
	Errors         int64     `json:"errors"`
	ScoreErrors    int64     `json:"score_errors"`
}
